package qms

import (
	"strings"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrainingStatus tracks a training assignment
type TrainingStatus string

const (
	TrainingStatusAssigned   TrainingStatus = "assigned"
	TrainingStatusInProgress TrainingStatus = "in_progress"
	TrainingStatusCompleted  TrainingStatus = "completed"
	TrainingStatusExpired    TrainingStatus = "expired"
)

// TrainingStatusTransitions is the allowed status graph for training records
var TrainingStatusTransitions = shared.NewTransitions("training status", map[TrainingStatus][]TrainingStatus{
	TrainingStatusAssigned:   {TrainingStatusInProgress, TrainingStatusCompleted, TrainingStatusExpired},
	TrainingStatusInProgress: {TrainingStatusCompleted, TrainingStatusExpired},
	TrainingStatusCompleted:  {},
	TrainingStatusExpired:    {},
})

// TrainingRecord assigns a training, usually on an SOP, to a user
type TrainingRecord struct {
	shared.BaseEntity
	shared.EventSource `gorm:"-" json:"-"`
	UserID             uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"`
	SopID              *uuid.UUID          `gorm:"type:uuid;index" json:"sop_id"`
	Title              string              `gorm:"type:varchar(200);not null" json:"title"`
	Status             TrainingStatus      `gorm:"type:varchar(20);not null;default:'assigned';index" json:"status"`
	DueDate            *time.Time          `json:"due_date"`
	CompletedAt        *time.Time          `json:"completed_at"`
	Score              decimal.NullDecimal `gorm:"type:decimal(5,2)" json:"score"`
	Notes              string              `gorm:"type:text" json:"notes"`
	AssignedBy         *uuid.UUID          `gorm:"type:uuid" json:"assigned_by"`
}

// TableName returns the table name for GORM
func (TrainingRecord) TableName() string {
	return "training_records"
}

// NewTrainingRecord assigns a training to a user
func NewTrainingRecord(userID uuid.UUID, sopID *uuid.UUID, title string, dueDate *time.Time, notes string, assignedBy uuid.UUID) (*TrainingRecord, error) {
	if userID == uuid.Nil {
		return nil, shared.NewInvalidInputError("User is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewInvalidInputError("Training title cannot be empty")
	}
	t := &TrainingRecord{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		SopID:      sopID,
		Title:      title,
		Status:     TrainingStatusAssigned,
		DueDate:    dueDate,
		Notes:      notes,
	}
	if assignedBy != uuid.Nil {
		t.AssignedBy = &assignedBy
	}
	return t, nil
}

// Update edits an open training assignment
func (t *TrainingRecord) Update(title, notes *string, dueDate *time.Time) error {
	if TrainingStatusTransitions.IsTerminal(t.Status) {
		return shared.NewInvalidStateError("Finished training records cannot be modified")
	}
	if title != nil {
		v := strings.TrimSpace(*title)
		if v == "" {
			return shared.NewInvalidInputError("Training title cannot be empty")
		}
		t.Title = v
	}
	if notes != nil {
		t.Notes = *notes
	}
	if dueDate != nil {
		t.DueDate = dueDate
	}
	t.Touch()
	return nil
}

// Start marks the training in progress
func (t *TrainingRecord) Start() error {
	if err := TrainingStatusTransitions.Check(t.Status, TrainingStatusInProgress); err != nil {
		return err
	}
	t.Status = TrainingStatusInProgress
	t.Touch()
	return nil
}

// Complete marks the training completed with an optional score
func (t *TrainingRecord) Complete(actorID uuid.UUID, score *decimal.Decimal) error {
	if err := TrainingStatusTransitions.Check(t.Status, TrainingStatusCompleted); err != nil {
		return err
	}
	if score != nil {
		if score.IsNegative() || score.GreaterThan(decimal.NewFromInt(100)) {
			return shared.NewInvalidInputError("Training score must be between 0 and 100")
		}
		t.Score = decimal.NewNullDecimal(score.Round(2))
	}
	now := time.Now()
	t.Status = TrainingStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.AddDomainEvent(NewRecordEvent(EventTypeTrainingCompleted, AggregateTypeTraining, t.ID, actorID, t.Title, string(t.Status), ""))
	return nil
}

// Expire marks an unfinished training as expired
func (t *TrainingRecord) Expire() error {
	if err := TrainingStatusTransitions.Check(t.Status, TrainingStatusExpired); err != nil {
		return err
	}
	t.Status = TrainingStatusExpired
	t.Touch()
	return nil
}
