package persistence

import (
	"context"

	"github.com/cultivo/backend/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseOrderRepository implements trade.PurchaseOrderRepository
type GormPurchaseOrderRepository struct {
	gormRepository[trade.PurchaseOrder]
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{newGormRepository[trade.PurchaseOrder](db, "Purchase order", listSpec{
		sortFields:    PurchaseOrderSortFields,
		defaultSort:   "order_date",
		searchColumns: []string{"po_number", "notes"},
		dateColumn:    "order_date",
		filters: map[string]string{
			"status":      "status",
			"supplier_id": "supplier_id",
		},
	})}
}

// FindByID finds a purchase order with its items
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var po trade.PurchaseOrder
	if err := conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", id).
		First(&po).Error; err != nil {
		return nil, dbError(err, r.entity, "find")
	}
	return &po, nil
}

// Save updates the order header and replaces its items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *trade.PurchaseOrder) error {
	return NewTransactor(r.db).WithinTransaction(ctx, func(ctx context.Context) error {
		db := conn(ctx, r.db)
		if err := db.Omit(clause.Associations).Save(po).Error; err != nil {
			return dbError(err, r.entity, "save")
		}
		if err := db.Where("purchase_order_id = ?", po.ID).Delete(&trade.PurchaseOrderItem{}).Error; err != nil {
			return dbError(err, "Purchase order item", "delete")
		}
		if len(po.Items) == 0 {
			return nil
		}
		return dbError(db.Create(&po.Items).Error, "Purchase order item", "create")
	})
}

// GormDispatchRepository implements trade.DispatchRepository
type GormDispatchRepository struct {
	gormRepository[trade.Dispatch]
}

// NewGormDispatchRepository creates a new GormDispatchRepository
func NewGormDispatchRepository(db *gorm.DB) *GormDispatchRepository {
	return &GormDispatchRepository{newGormRepository[trade.Dispatch](db, "Dispatch", listSpec{
		sortFields:    DispatchSortFields,
		defaultSort:   "dispatch_date",
		searchColumns: []string{"dispatch_number", "notes"},
		dateColumn:    "dispatch_date",
		filters: map[string]string{
			"status":    "status",
			"client_id": "client_id",
		},
	})}
}

func preloadDispatchItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// FindByID finds a dispatch with its items
func (r *GormDispatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Dispatch, error) {
	var d trade.Dispatch
	if err := conn(ctx, r.db).
		Preload("Items", preloadDispatchItems).
		Where("id = ?", id).
		First(&d).Error; err != nil {
		return nil, dbError(err, r.entity, "find")
	}
	return &d, nil
}

// FindByIDForUpdate loads the dispatch with its items and locks the dispatch row.
// Row locks are only taken on PostgreSQL.
func (r *GormDispatchRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Dispatch, error) {
	q := conn(ctx, r.db)
	if isPostgres(q) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var d trade.Dispatch
	if err := q.Preload("Items", preloadDispatchItems).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, dbError(err, r.entity, "lock")
	}
	return &d, nil
}

// Save updates the dispatch header and replaces its items
func (r *GormDispatchRepository) Save(ctx context.Context, d *trade.Dispatch) error {
	return NewTransactor(r.db).WithinTransaction(ctx, func(ctx context.Context) error {
		db := conn(ctx, r.db)
		if err := db.Omit(clause.Associations).Save(d).Error; err != nil {
			return dbError(err, r.entity, "save")
		}
		if err := db.Where("dispatch_id = ?", d.ID).Delete(&trade.DispatchItem{}).Error; err != nil {
			return dbError(err, "Dispatch item", "delete")
		}
		if len(d.Items) == 0 {
			return nil
		}
		return dbError(db.Create(&d.Items).Error, "Dispatch item", "create")
	})
}

var (
	_ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
	_ trade.DispatchRepository      = (*GormDispatchRepository)(nil)
)
