package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultPageSize is used when a list request does not specify a limit
	DefaultPageSize = 20
	// MaxPageSize caps the number of rows returned by a single list request
	MaxPageSize = 100
)

// Filter represents query filter options
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Filters  map[string]interface{}
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: DefaultPageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}

// Normalize clamps page and page size into their allowed ranges
func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if f.Filters == nil {
		f.Filters = make(map[string]interface{})
	}
}

// Offset returns the row offset for the current page
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// With sets a filter value when it is non-empty and returns the filter
func (f Filter) With(key string, value interface{}) Filter {
	if f.Filters == nil {
		f.Filters = make(map[string]interface{})
	}
	switch v := value.(type) {
	case nil:
		return f
	case string:
		if v == "" {
			return f
		}
	case *string:
		if v == nil || *v == "" {
			return f
		}
		value = *v
	}
	f.Filters[key] = value
	return f
}

// PageResult is the list envelope returned by every list operation
type PageResult[T any] struct {
	Records    []T   `json:"records"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewPageResult creates a page result; totalPages is ceil(total/limit)
func NewPageResult[T any](records []T, total int64, page, limit int) PageResult[T] {
	if records == nil {
		records = make([]T, 0)
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	return PageResult[T]{
		Records:    records,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: TotalPages(total, limit),
	}
}

// TotalPages returns ceil(total/limit)
func TotalPages(total int64, limit int) int {
	if limit < 1 || total <= 0 {
		return 0
	}
	pages := int(total) / limit
	if int(total)%limit > 0 {
		pages++
	}
	return pages
}

// MapPage converts the records of a page result
func MapPage[T, R any](page PageResult[T], fn func(T) R) PageResult[R] {
	out := make([]R, len(page.Records))
	for i, r := range page.Records {
		out[i] = fn(r)
	}
	return PageResult[R]{
		Records:    out,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	}
}

// Repository is the base interface for entity repositories
type Repository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindAll(ctx context.Context, filter Filter) ([]T, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Create(ctx context.Context, entity *T) error
	Save(ctx context.Context, entity *T) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Transactor runs fn inside a single store transaction. Repositories called
// with the ctx passed to fn take part in that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Lister is the read side of a repository
type Lister[T any] interface {
	FindAll(ctx context.Context, filter Filter) ([]T, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}

// ListPage normalizes filter, loads one page and counts the matching rows
func ListPage[T any](ctx context.Context, repo Lister[T], filter Filter) (PageResult[T], error) {
	filter.Normalize()
	records, err := repo.FindAll(ctx, filter)
	if err != nil {
		return PageResult[T]{}, err
	}
	total, err := repo.Count(ctx, filter)
	if err != nil {
		return PageResult[T]{}, err
	}
	return NewPageResult(records, total, filter.Page, filter.PageSize), nil
}
