package qms

import (
	"strings"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ActionType distinguishes corrective from preventive actions
type ActionType string

const (
	ActionTypeCorrective ActionType = "corrective"
	ActionTypePreventive ActionType = "preventive"
)

// IsValid checks if the action type is known
func (t ActionType) IsValid() bool {
	return t == ActionTypeCorrective || t == ActionTypePreventive
}

// CapaStatus tracks a CAPA from assignment to verification
type CapaStatus string

const (
	CapaStatusOpen       CapaStatus = "open"
	CapaStatusInProgress CapaStatus = "in_progress"
	CapaStatusCompleted  CapaStatus = "completed"
	CapaStatusVerified   CapaStatus = "verified"
	CapaStatusCancelled  CapaStatus = "cancelled"
)

// CapaStatusTransitions is the allowed status graph for CAPAs
var CapaStatusTransitions = shared.NewTransitions("CAPA status", map[CapaStatus][]CapaStatus{
	CapaStatusOpen:       {CapaStatusInProgress, CapaStatusCompleted, CapaStatusCancelled},
	CapaStatusInProgress: {CapaStatusCompleted, CapaStatusCancelled},
	CapaStatusCompleted:  {CapaStatusVerified},
	CapaStatusVerified:   {},
	CapaStatusCancelled:  {},
})

// Capa is a corrective or preventive action, usually raised from a deviation
type Capa struct {
	shared.BaseEntity
	shared.EventSource `gorm:"-" json:"-"`
	CapaNumber         string     `gorm:"type:varchar(50);not null;uniqueIndex" json:"capa_number"`
	DeviationID        *uuid.UUID `gorm:"type:uuid;index" json:"deviation_id"`
	Title              string     `gorm:"type:varchar(200);not null" json:"title"`
	Description        string     `gorm:"type:text" json:"description"`
	ActionType         ActionType `gorm:"type:varchar(20);not null" json:"action_type"`
	Status             CapaStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	AssignedTo         *uuid.UUID `gorm:"type:uuid;index" json:"assigned_to"`
	DueDate            *time.Time `json:"due_date"`
	CompletedAt        *time.Time `json:"completed_at"`
	EffectivenessNotes string     `gorm:"type:text" json:"effectiveness_notes"`
	CreatedBy          *uuid.UUID `gorm:"type:uuid" json:"created_by"`
}

// TableName returns the table name for GORM
func (Capa) TableName() string {
	return "capas"
}

// NewCapa creates an open CAPA
func NewCapa(title, description string, actionType ActionType, deviationID, assignedTo *uuid.UUID, dueDate *time.Time, createdBy uuid.UUID) (*Capa, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewInvalidInputError("CAPA title cannot be empty")
	}
	if !actionType.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid CAPA action type")
	}
	c := &Capa{
		BaseEntity:  shared.NewBaseEntity(),
		CapaNumber:  shared.GenerateNumber("CAPA"),
		DeviationID: deviationID,
		Title:       title,
		Description: description,
		ActionType:  actionType,
		Status:      CapaStatusOpen,
		AssignedTo:  assignedTo,
		DueDate:     dueDate,
	}
	if createdBy != uuid.Nil {
		c.CreatedBy = &createdBy
	}
	return c, nil
}

// Update applies the editable attributes of an unfinished CAPA
func (c *Capa) Update(title, description *string, assignedTo *uuid.UUID, dueDate *time.Time) error {
	if c.Status != CapaStatusOpen && c.Status != CapaStatusInProgress {
		return shared.NewInvalidStateError("Only open or in-progress CAPAs can be modified")
	}
	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			return shared.NewInvalidInputError("CAPA title cannot be empty")
		}
		c.Title = t
	}
	if description != nil {
		c.Description = *description
	}
	if assignedTo != nil {
		c.AssignedTo = assignedTo
	}
	if dueDate != nil {
		c.DueDate = dueDate
	}
	c.Touch()
	return nil
}

// Start moves an open CAPA into progress
func (c *Capa) Start() error {
	if err := CapaStatusTransitions.Check(c.Status, CapaStatusInProgress); err != nil {
		return err
	}
	c.Status = CapaStatusInProgress
	c.Touch()
	return nil
}

// Complete marks the CAPA done with optional effectiveness notes
func (c *Capa) Complete(actorID uuid.UUID, notes string) error {
	if err := CapaStatusTransitions.Check(c.Status, CapaStatusCompleted); err != nil {
		return err
	}
	now := time.Now()
	c.Status = CapaStatusCompleted
	c.CompletedAt = &now
	if notes != "" {
		c.EffectivenessNotes = notes
	}
	c.UpdatedAt = now
	c.AddDomainEvent(NewRecordEvent(EventTypeCapaCompleted, AggregateTypeCapa, c.ID, actorID, c.CapaNumber, string(c.Status), notes))
	return nil
}

// Verify confirms the effectiveness of a completed CAPA
func (c *Capa) Verify(actorID uuid.UUID, notes string) error {
	if err := CapaStatusTransitions.Check(c.Status, CapaStatusVerified); err != nil {
		return err
	}
	c.Status = CapaStatusVerified
	if notes != "" {
		c.EffectivenessNotes = notes
	}
	c.Touch()
	c.AddDomainEvent(NewRecordEvent(EventTypeCapaVerified, AggregateTypeCapa, c.ID, actorID, c.CapaNumber, string(c.Status), notes))
	return nil
}

// Cancel cancels an unfinished CAPA
func (c *Capa) Cancel() error {
	if err := CapaStatusTransitions.Check(c.Status, CapaStatusCancelled); err != nil {
		return err
	}
	c.Status = CapaStatusCancelled
	c.Touch()
	return nil
}
