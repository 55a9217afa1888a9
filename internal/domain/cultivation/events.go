package cultivation

import (
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	AggregateTypeBatch        = "Batch"
	AggregateTypeFinishedGood = "FinishedGood"
	AggregateTypeStageReview  = "StageReview"

	EventTypeBatchStageAdvanced       = "batch.stage_advanced"
	EventTypeBatchStatusChanged       = "batch.status_changed"
	EventTypeFinishedGoodStatusChange = "finished_good.status_changed"
	EventTypeStageReviewDecided       = "stage_review.decided"
)

// BatchStageAdvancedEvent is raised when a batch moves to its next growth stage
type BatchStageAdvancedEvent struct {
	shared.BaseDomainEvent
	BatchNumber string      `json:"batch_number"`
	FromStage   GrowthStage `json:"from_stage"`
	ToStage     GrowthStage `json:"to_stage"`
}

// NewBatchStageAdvancedEvent creates a BatchStageAdvancedEvent
func NewBatchStageAdvancedEvent(b *Batch, from, to GrowthStage, actorID uuid.UUID) *BatchStageAdvancedEvent {
	return &BatchStageAdvancedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchStageAdvanced, AggregateTypeBatch, b.ID, actorID),
		BatchNumber:     b.BatchNumber,
		FromStage:       from,
		ToStage:         to,
	}
}

// BatchStatusChangedEvent is raised when a batch changes lifecycle status
type BatchStatusChangedEvent struct {
	shared.BaseDomainEvent
	BatchNumber string      `json:"batch_number"`
	FromStatus  BatchStatus `json:"from_status"`
	ToStatus    BatchStatus `json:"to_status"`
}

// NewBatchStatusChangedEvent creates a BatchStatusChangedEvent
func NewBatchStatusChangedEvent(b *Batch, from, to BatchStatus, actorID uuid.UUID) *BatchStatusChangedEvent {
	return &BatchStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchStatusChanged, AggregateTypeBatch, b.ID, actorID),
		BatchNumber:     b.BatchNumber,
		FromStatus:      from,
		ToStatus:        to,
	}
}

// FinishedGoodStatusChangedEvent is raised when a finished good is released, rejected or recalled
type FinishedGoodStatusChangedEvent struct {
	shared.BaseDomainEvent
	BatchID     uuid.UUID          `json:"batch_id"`
	ProductName string             `json:"product_name"`
	FromStatus  FinishedGoodStatus `json:"from_status"`
	ToStatus    FinishedGoodStatus `json:"to_status"`
	Reason      string             `json:"reason,omitempty"`
}

// NewFinishedGoodStatusChangedEvent creates a FinishedGoodStatusChangedEvent
func NewFinishedGoodStatusChangedEvent(g *FinishedGood, from FinishedGoodStatus, actorID uuid.UUID) *FinishedGoodStatusChangedEvent {
	return &FinishedGoodStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFinishedGoodStatusChange, AggregateTypeFinishedGood, g.ID, actorID),
		BatchID:         g.BatchID,
		ProductName:     g.ProductName,
		FromStatus:      from,
		ToStatus:        g.Status,
		Reason:          g.StatusReason,
	}
}

// StageReviewDecidedEvent is raised when a stage review is approved or rejected
type StageReviewDecidedEvent struct {
	shared.BaseDomainEvent
	BatchID  uuid.UUID         `json:"batch_id"`
	Stage    GrowthStage       `json:"stage"`
	Decision StageReviewStatus `json:"decision"`
}

// NewStageReviewDecidedEvent creates a StageReviewDecidedEvent
func NewStageReviewDecidedEvent(r *StageReview, actorID uuid.UUID) *StageReviewDecidedEvent {
	return &StageReviewDecidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStageReviewDecided, AggregateTypeStageReview, r.ID, actorID),
		BatchID:         r.BatchID,
		Stage:           r.Stage,
		Decision:        r.Status,
	}
}
