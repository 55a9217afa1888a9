package persistence

import (
	"context"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormRepository implements shared.Repository[T] for a single table
type gormRepository[T any] struct {
	db     *gorm.DB
	entity string
	spec   listSpec
}

func newGormRepository[T any](db *gorm.DB, entity string, spec listSpec) gormRepository[T] {
	return gormRepository[T]{db: db, entity: entity, spec: spec}
}

// FindByID finds an entity by its ID
func (r *gormRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var out T
	if err := conn(ctx, r.db).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, dbError(err, r.entity, "find")
	}
	return &out, nil
}

// FindAll finds the page of entities matching the filter
func (r *gormRepository[T]) FindAll(ctx context.Context, filter shared.Filter) ([]T, error) {
	out := make([]T, 0)
	q := r.spec.where(conn(ctx, r.db).Model(new(T)), filter)
	if err := r.spec.page(q, filter).Find(&out).Error; err != nil {
		return nil, dbError(err, r.entity, "list")
	}
	return out, nil
}

// Count counts entities matching the filter, ignoring pagination
func (r *gormRepository[T]) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.spec.where(conn(ctx, r.db).Model(new(T)), filter).Count(&count).Error; err != nil {
		return 0, dbError(err, r.entity, "count")
	}
	return count, nil
}

// Create inserts a new entity
func (r *gormRepository[T]) Create(ctx context.Context, entity *T) error {
	return dbError(conn(ctx, r.db).Create(entity).Error, r.entity, "create")
}

// Save updates all columns of an existing entity. Associations are not touched.
func (r *gormRepository[T]) Save(ctx context.Context, entity *T) error {
	return dbError(conn(ctx, r.db).Omit(clause.Associations).Save(entity).Error, r.entity, "save")
}

// Exists checks if an entity with the given ID exists
func (r *gormRepository[T]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, "id = ?", id)
}

func (r *gormRepository[T]) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(new(T)).Where(query, args...).Count(&count).Error; err != nil {
		return false, dbError(err, r.entity, "check")
	}
	return count > 0, nil
}

func (r *gormRepository[T]) countWhere(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(new(T)).Where(query, args...).Count(&count).Error; err != nil {
		return 0, dbError(err, r.entity, "count")
	}
	return count, nil
}

// findWhere returns the first row matching the condition
func (r *gormRepository[T]) findWhere(ctx context.Context, query string, args ...interface{}) (*T, error) {
	var out T
	if err := conn(ctx, r.db).Where(query, args...).First(&out).Error; err != nil {
		return nil, dbError(err, r.entity, "find")
	}
	return &out, nil
}

func (r *gormRepository[T]) findByIDs(ctx context.Context, ids []uuid.UUID) ([]T, error) {
	out := make([]T, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, dbError(err, r.entity, "list")
	}
	return out, nil
}

var _ shared.Repository[struct{}] = (*gormRepository[struct{}])(nil)
