package cultivation

import (
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BatchStage records the time a batch spent in one growth stage
type BatchStage struct {
	shared.BaseEntity
	BatchID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"batch_id"`
	Stage       GrowthStage `gorm:"type:varchar(20);not null" json:"stage"`
	StartedAt   time.Time   `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time  `json:"completed_at"`
	Notes       string      `gorm:"type:text" json:"notes"`
	RecordedBy  *uuid.UUID  `gorm:"type:uuid" json:"recorded_by"`
}

// TableName returns the table name for GORM
func (BatchStage) TableName() string {
	return "batch_stages"
}

// NewBatchStage opens a stage record for a batch
func NewBatchStage(batchID uuid.UUID, stage GrowthStage, notes string, recordedBy uuid.UUID) (*BatchStage, error) {
	if !stage.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid growth stage")
	}
	bs := &BatchStage{
		BaseEntity: shared.NewBaseEntity(),
		BatchID:    batchID,
		Stage:      stage,
		StartedAt:  time.Now(),
		Notes:      notes,
	}
	if recordedBy != uuid.Nil {
		bs.RecordedBy = &recordedBy
	}
	return bs, nil
}

// IsOpen reports whether the stage has not been completed yet
func (bs *BatchStage) IsOpen() bool {
	return bs.CompletedAt == nil
}

// Complete closes the stage record
func (bs *BatchStage) Complete(at time.Time) {
	bs.CompletedAt = &at
	bs.Touch()
}
