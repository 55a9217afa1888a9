package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cultivo/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// listSpec describes how a shared.Filter maps onto one table
type listSpec struct {
	// sortFields is the whitelist of sortable columns
	sortFields map[string]bool
	// defaultSort is used when the requested sort is not allowed
	defaultSort string
	// searchColumns are OR-combined for the free-text search
	searchColumns []string
	// dateColumn is compared with DateFrom/DateTo; created_at when empty
	dateColumn string
	// filters maps a filter key to its column. Unknown keys are ignored.
	filters map[string]string
}

// where applies search, date range and equality filters
func (s listSpec) where(q *gorm.DB, f shared.Filter) *gorm.DB {
	if term := strings.TrimSpace(f.Search); term != "" && len(s.searchColumns) > 0 {
		pattern := "%" + strings.ToLower(term) + "%"
		conds := make([]string, len(s.searchColumns))
		args := make([]interface{}, len(s.searchColumns))
		for i, col := range s.searchColumns {
			conds[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = pattern
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	dateCol := s.dateColumn
	if dateCol == "" {
		dateCol = "created_at"
	}
	if f.DateFrom != nil {
		q = q.Where(dateCol+" >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where(dateCol+" <= ?", *f.DateTo)
	}

	for key, value := range f.Filters {
		col, ok := s.filters[key]
		if !ok {
			continue
		}
		q = q.Where(clause.Eq{Column: clause.Column{Name: col}, Value: value})
	}
	return q
}

// page applies ordering and pagination
func (s listSpec) page(q *gorm.DB, f shared.Filter) *gorm.DB {
	field := ValidateSortField(f.OrderBy, s.sortFields, s.defaultSort)
	q = q.Order(field + " " + ValidateSortOrder(f.OrderDir))
	if field != "id" {
		// stable order for rows sharing the sort value
		q = q.Order("id " + ValidateSortOrder(f.OrderDir))
	}
	if f.PageSize > 0 {
		q = q.Offset(f.Offset()).Limit(f.PageSize)
	}
	return q
}

// dbError converts gorm errors into domain errors; other errors are wrapped with op
func dbError(err error, entity, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewNotFoundError(entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewAlreadyExistsError(entity + " already exists")
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de
	}
	return fmt.Errorf("failed to %s %s: %w", op, strings.ToLower(entity), err)
}
