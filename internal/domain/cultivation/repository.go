package cultivation

import (
	"context"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BatchRepository defines the persistence operations for batches
type BatchRepository interface {
	shared.Repository[Batch]
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Batch, error)
}

// BatchStageRepository defines the persistence operations for batch stage history
type BatchStageRepository interface {
	Create(ctx context.Context, stage *BatchStage) error
	Save(ctx context.Context, stage *BatchStage) error
	FindOpenByBatch(ctx context.Context, batchID uuid.UUID) (*BatchStage, error)
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]BatchStage, error)
}

// StrainRepository defines the persistence operations for strains
type StrainRepository interface {
	shared.Repository[Strain]
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// GrowthCycleRepository defines the persistence operations for growth cycles
type GrowthCycleRepository interface {
	shared.Repository[GrowthCycle]
}

// StageRepository defines the persistence operations for stage definitions
type StageRepository interface {
	shared.Repository[Stage]
}

// DailyLogRepository defines the persistence operations for daily logs
type DailyLogRepository interface {
	shared.Repository[DailyLog]
	CountByBatch(ctx context.Context, batchID uuid.UUID) (int64, error)
}

// PackagingRecordRepository defines the persistence operations for packaging runs
type PackagingRecordRepository interface {
	shared.Repository[PackagingRecord]
}

// FinishedGoodRepository defines the persistence operations for finished goods
type FinishedGoodRepository interface {
	shared.Repository[FinishedGood]
}

// WasteRecordRepository defines the persistence operations for waste records
type WasteRecordRepository interface {
	shared.Repository[WasteRecord]
}

// StageReviewRepository defines the persistence operations for stage reviews
type StageReviewRepository interface {
	shared.Repository[StageReview]
}
