package qms

import (
	"context"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EbrRepository defines the persistence operations for eBR records
type EbrRepository interface {
	shared.Repository[EbrRecord]
	FindByBatch(ctx context.Context, batchID uuid.UUID) (*EbrRecord, error)
	ExistsByBatch(ctx context.Context, batchID uuid.UUID) (bool, error)
	ScoreRows(ctx context.Context) ([]EbrScoreRow, error)
}

// ChecklistRepository defines the persistence operations for eBR checklist items.
// Items are never deleted.
type ChecklistRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ChecklistItem, error)
	FindByEbr(ctx context.Context, ebrID uuid.UUID) ([]ChecklistItem, error)
	Create(ctx context.Context, item *ChecklistItem) error
	Save(ctx context.Context, item *ChecklistItem) error
}

// DeviationRepository defines the persistence operations for deviations
type DeviationRepository interface {
	shared.Repository[Deviation]
	CountByBatchAndSeverity(ctx context.Context, batchID uuid.UUID, severity Severity) (int64, error)
}

// CapaRepository defines the persistence operations for CAPAs
type CapaRepository interface {
	shared.Repository[Capa]
}

// AuditRepository defines the persistence operations for audits
type AuditRepository interface {
	shared.Repository[Audit]
}

// SopRepository defines the persistence operations for SOPs
type SopRepository interface {
	shared.Repository[Sop]
	ExistsByDocumentNumber(ctx context.Context, documentNumber string) (bool, error)
}

// TrainingRepository defines the persistence operations for training records
type TrainingRepository interface {
	shared.Repository[TrainingRecord]
}

// EnvironmentRepository defines the persistence operations for environmental readings
type EnvironmentRepository interface {
	shared.Repository[EnvironmentalReading]
	CountAlertsByBatch(ctx context.Context, batchID uuid.UUID) (int64, error)
	SummarizeRooms(ctx context.Context) ([]RoomSummary, error)
}

// QualityRecordRepository defines the persistence operations for quality records
type QualityRecordRepository interface {
	shared.Repository[QualityRecord]
}
