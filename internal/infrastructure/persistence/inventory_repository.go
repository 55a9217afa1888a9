package persistence

import (
	"context"

	"github.com/cultivo/backend/internal/domain/inventory"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLotRepository implements inventory.LotRepository
type GormLotRepository struct {
	gormRepository[inventory.Lot]
}

// NewGormLotRepository creates a new GormLotRepository
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{newGormRepository[inventory.Lot](db, "Lot", listSpec{
		sortFields:    LotSortFields,
		defaultSort:   "created_at",
		searchColumns: []string{"lot_number", "product_name", "location"},
		filters: map[string]string{
			"status":       "status",
			"product_type": "product_type",
			"batch_id":     "batch_id",
		},
	})}
}

// FindByIDs finds multiple lots by their IDs
func (r *GormLotRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Lot, error) {
	return r.findByIDs(ctx, ids)
}

type batchLotRow struct {
	BatchID        uuid.UUID
	BatchNumber    string
	LotCount       int64
	TotalAvailable decimal.NullDecimal
}

// SummarizeByBatch groups lots by their source batch with the available stock
func (r *GormLotRepository) SummarizeByBatch(ctx context.Context) ([]inventory.BatchLotSummary, error) {
	rows := make([]batchLotRow, 0)
	if err := conn(ctx, r.db).Table("inventory_lots AS l").
		Select("l.batch_id AS batch_id, b.batch_number AS batch_number, COUNT(l.id) AS lot_count, SUM(s.available_quantity) AS total_available").
		Joins("LEFT JOIN batches b ON b.id = l.batch_id").
		Joins("LEFT JOIN stock_levels s ON s.lot_id = l.id").
		Where("l.batch_id IS NOT NULL").
		Group("l.batch_id, b.batch_number").
		Order("b.batch_number ASC").
		Scan(&rows).Error; err != nil {
		return nil, dbError(err, r.entity, "summarize")
	}

	out := make([]inventory.BatchLotSummary, len(rows))
	for i, row := range rows {
		out[i] = inventory.BatchLotSummary{
			BatchID:        row.BatchID,
			BatchNumber:    row.BatchNumber,
			LotCount:       row.LotCount,
			TotalAvailable: row.TotalAvailable.Decimal,
		}
	}
	return out, nil
}

// GormStockLevelRepository implements inventory.StockLevelRepository
type GormStockLevelRepository struct {
	db *gorm.DB
}

// NewGormStockLevelRepository creates a new GormStockLevelRepository
func NewGormStockLevelRepository(db *gorm.DB) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db}
}

// FindByLot returns the stock level of a lot
func (r *GormStockLevelRepository) FindByLot(ctx context.Context, lotID uuid.UUID) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	if err := conn(ctx, r.db).Where("lot_id = ?", lotID).First(&level).Error; err != nil {
		return nil, dbError(err, "Stock level", "find")
	}
	return &level, nil
}

// FindByLotForUpdate returns the stock level and locks the row until the transaction ends.
// Row locks are only taken on PostgreSQL.
func (r *GormStockLevelRepository) FindByLotForUpdate(ctx context.Context, lotID uuid.UUID) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	q := conn(ctx, r.db)
	if isPostgres(q) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where("lot_id = ?", lotID).First(&level).Error; err != nil {
		return nil, dbError(err, "Stock level", "lock")
	}
	return &level, nil
}

// Create inserts a stock level
func (r *GormStockLevelRepository) Create(ctx context.Context, level *inventory.StockLevel) error {
	return dbError(conn(ctx, r.db).Create(level).Error, "Stock level", "create")
}

// Save updates a stock level
func (r *GormStockLevelRepository) Save(ctx context.Context, level *inventory.StockLevel) error {
	return dbError(conn(ctx, r.db).Save(level).Error, "Stock level", "save")
}

// GormStockMovementRepository implements inventory.StockMovementRepository
type GormStockMovementRepository struct {
	db   *gorm.DB
	spec listSpec
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db, spec: listSpec{
		sortFields:  StockMovementSortFields,
		defaultSort: "created_at",
		filters:     map[string]string{"movement_type": "movement_type"},
	}}
}

// Create appends a movement to the ledger
func (r *GormStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	return dbError(conn(ctx, r.db).Create(movement).Error, "Stock movement", "create")
}

// FindByLot returns a page of the lot's movements and the total count
func (r *GormStockMovementRepository) FindByLot(ctx context.Context, lotID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, int64, error) {
	base := r.spec.where(conn(ctx, r.db).Model(&inventory.StockMovement{}).Where("lot_id = ?", lotID), filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, dbError(err, "Stock movement", "count")
	}

	movements := make([]inventory.StockMovement, 0)
	if err := r.spec.page(base.Session(&gorm.Session{}), filter).Find(&movements).Error; err != nil {
		return nil, 0, dbError(err, "Stock movement", "list")
	}
	return movements, total, nil
}

var (
	_ inventory.LotRepository           = (*GormLotRepository)(nil)
	_ inventory.StockLevelRepository    = (*GormStockLevelRepository)(nil)
	_ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
)
