package persistence

import (
	"context"

	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBatchRepository implements cultivation.BatchRepository
type GormBatchRepository struct {
	gormRepository[cultivation.Batch]
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{newGormRepository[cultivation.Batch](db, "Batch", listSpec{
		sortFields:    BatchSortFields,
		defaultSort:   "created_at",
		searchColumns: []string{"batch_number", "name", "room"},
		filters: map[string]string{
			"status":          "status",
			"current_stage":   "current_stage",
			"strain_id":       "strain_id",
			"growth_cycle_id": "growth_cycle_id",
			"room":            "room",
		},
	})}
}

// FindByIDs finds multiple batches by their IDs
func (r *GormBatchRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]cultivation.Batch, error) {
	return r.findByIDs(ctx, ids)
}

// GormBatchStageRepository implements cultivation.BatchStageRepository
type GormBatchStageRepository struct {
	db *gorm.DB
}

// NewGormBatchStageRepository creates a new GormBatchStageRepository
func NewGormBatchStageRepository(db *gorm.DB) *GormBatchStageRepository {
	return &GormBatchStageRepository{db: db}
}

// Create inserts a stage record
func (r *GormBatchStageRepository) Create(ctx context.Context, stage *cultivation.BatchStage) error {
	return dbError(conn(ctx, r.db).Create(stage).Error, "Batch stage", "create")
}

// Save updates a stage record
func (r *GormBatchStageRepository) Save(ctx context.Context, stage *cultivation.BatchStage) error {
	return dbError(conn(ctx, r.db).Save(stage).Error, "Batch stage", "save")
}

// FindOpenByBatch returns the stage record that has not been completed yet
func (r *GormBatchStageRepository) FindOpenByBatch(ctx context.Context, batchID uuid.UUID) (*cultivation.BatchStage, error) {
	var stage cultivation.BatchStage
	err := conn(ctx, r.db).
		Where("batch_id = ? AND completed_at IS NULL", batchID).
		Order("started_at DESC").
		First(&stage).Error
	if err != nil {
		return nil, dbError(err, "Open batch stage", "find")
	}
	return &stage, nil
}

// FindByBatch returns the stage history of a batch, oldest first
func (r *GormBatchStageRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]cultivation.BatchStage, error) {
	stages := make([]cultivation.BatchStage, 0)
	if err := conn(ctx, r.db).
		Where("batch_id = ?", batchID).
		Order("started_at ASC").
		Find(&stages).Error; err != nil {
		return nil, dbError(err, "Batch stage", "list")
	}
	return stages, nil
}

// GormStrainRepository implements cultivation.StrainRepository
type GormStrainRepository struct {
	gormRepository[cultivation.Strain]
}

// NewGormStrainRepository creates a new GormStrainRepository
func NewGormStrainRepository(db *gorm.DB) *GormStrainRepository {
	return &GormStrainRepository{newGormRepository[cultivation.Strain](db, "Strain", listSpec{
		sortFields:    StrainSortFields,
		defaultSort:   "name",
		searchColumns: []string{"name", "description"},
		filters:       map[string]string{"strain_type": "strain_type"},
	})}
}

// ExistsByName checks if a strain with the given name exists, case-insensitively
func (r *GormStrainRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	return r.exists(ctx, "LOWER(name) = LOWER(?)", name)
}

// GormGrowthCycleRepository implements cultivation.GrowthCycleRepository
type GormGrowthCycleRepository struct {
	gormRepository[cultivation.GrowthCycle]
}

// NewGormGrowthCycleRepository creates a new GormGrowthCycleRepository
func NewGormGrowthCycleRepository(db *gorm.DB) *GormGrowthCycleRepository {
	return &GormGrowthCycleRepository{newGormRepository[cultivation.GrowthCycle](db, "Growth cycle", listSpec{
		sortFields:    GrowthCycleSortFields,
		defaultSort:   "start_date",
		searchColumns: []string{"name", "room", "notes"},
		dateColumn:    "start_date",
		filters:       map[string]string{"status": "status", "room": "room"},
	})}
}

// GormStageRepository implements cultivation.StageRepository
type GormStageRepository struct {
	gormRepository[cultivation.Stage]
}

// NewGormStageRepository creates a new GormStageRepository
func NewGormStageRepository(db *gorm.DB) *GormStageRepository {
	return &GormStageRepository{newGormRepository[cultivation.Stage](db, "Stage", listSpec{
		sortFields:    StageSortFields,
		defaultSort:   "sequence",
		searchColumns: []string{"name", "description"},
		filters:       map[string]string{"stage_type": "stage_type", "is_active": "is_active"},
	})}
}

// GormDailyLogRepository implements cultivation.DailyLogRepository
type GormDailyLogRepository struct {
	gormRepository[cultivation.DailyLog]
}

// NewGormDailyLogRepository creates a new GormDailyLogRepository
func NewGormDailyLogRepository(db *gorm.DB) *GormDailyLogRepository {
	return &GormDailyLogRepository{newGormRepository[cultivation.DailyLog](db, "Daily log", listSpec{
		sortFields:    DailyLogSortFields,
		defaultSort:   "log_date",
		searchColumns: []string{"observations"},
		dateColumn:    "log_date",
		filters:       map[string]string{"batch_id": "batch_id"},
	})}
}

// CountByBatch counts the daily logs recorded for a batch
func (r *GormDailyLogRepository) CountByBatch(ctx context.Context, batchID uuid.UUID) (int64, error) {
	return r.countWhere(ctx, "batch_id = ?", batchID)
}

// GormPackagingRecordRepository implements cultivation.PackagingRecordRepository
type GormPackagingRecordRepository struct {
	gormRepository[cultivation.PackagingRecord]
}

// NewGormPackagingRecordRepository creates a new GormPackagingRecordRepository
func NewGormPackagingRecordRepository(db *gorm.DB) *GormPackagingRecordRepository {
	return &GormPackagingRecordRepository{newGormRepository[cultivation.PackagingRecord](db, "Packaging record", listSpec{
		sortFields:    PackagingSortFields,
		defaultSort:   "packaged_at",
		searchColumns: []string{"package_type", "label_code", "notes"},
		dateColumn:    "packaged_at",
		filters:       map[string]string{"batch_id": "batch_id", "lot_id": "lot_id", "status": "status"},
	})}
}

// GormFinishedGoodRepository implements cultivation.FinishedGoodRepository
type GormFinishedGoodRepository struct {
	gormRepository[cultivation.FinishedGood]
}

// NewGormFinishedGoodRepository creates a new GormFinishedGoodRepository
func NewGormFinishedGoodRepository(db *gorm.DB) *GormFinishedGoodRepository {
	return &GormFinishedGoodRepository{newGormRepository[cultivation.FinishedGood](db, "Finished good", listSpec{
		sortFields:    FinishedGoodSortFields,
		defaultSort:   "created_at",
		searchColumns: []string{"product_name", "product_type"},
		filters:       map[string]string{"batch_id": "batch_id", "status": "status", "product_type": "product_type"},
	})}
}

// GormWasteRecordRepository implements cultivation.WasteRecordRepository
type GormWasteRecordRepository struct {
	gormRepository[cultivation.WasteRecord]
}

// NewGormWasteRecordRepository creates a new GormWasteRecordRepository
func NewGormWasteRecordRepository(db *gorm.DB) *GormWasteRecordRepository {
	return &GormWasteRecordRepository{newGormRepository[cultivation.WasteRecord](db, "Waste record", listSpec{
		sortFields:    WasteSortFields,
		defaultSort:   "disposed_at",
		searchColumns: []string{"reason"},
		dateColumn:    "disposed_at",
		filters:       map[string]string{"batch_id": "batch_id", "waste_type": "waste_type", "disposal_method": "disposal_method"},
	})}
}

// GormStageReviewRepository implements cultivation.StageReviewRepository
type GormStageReviewRepository struct {
	gormRepository[cultivation.StageReview]
}

// NewGormStageReviewRepository creates a new GormStageReviewRepository
func NewGormStageReviewRepository(db *gorm.DB) *GormStageReviewRepository {
	return &GormStageReviewRepository{newGormRepository[cultivation.StageReview](db, "Stage review", listSpec{
		sortFields:    StageReviewSortFields,
		defaultSort:   "created_at",
		searchColumns: []string{"comments"},
		filters:       map[string]string{"batch_id": "batch_id", "stage": "stage", "status": "status"},
	})}
}

var (
	_ cultivation.BatchRepository           = (*GormBatchRepository)(nil)
	_ cultivation.BatchStageRepository      = (*GormBatchStageRepository)(nil)
	_ cultivation.StrainRepository          = (*GormStrainRepository)(nil)
	_ cultivation.GrowthCycleRepository     = (*GormGrowthCycleRepository)(nil)
	_ cultivation.StageRepository           = (*GormStageRepository)(nil)
	_ cultivation.DailyLogRepository        = (*GormDailyLogRepository)(nil)
	_ cultivation.PackagingRecordRepository = (*GormPackagingRecordRepository)(nil)
	_ cultivation.FinishedGoodRepository    = (*GormFinishedGoodRepository)(nil)
	_ cultivation.WasteRecordRepository     = (*GormWasteRecordRepository)(nil)
	_ cultivation.StageReviewRepository     = (*GormStageReviewRepository)(nil)
)
