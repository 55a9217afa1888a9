package cultivation

import (
	"strings"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// GrowthCycleStatus represents the status of a growth cycle
type GrowthCycleStatus string

const (
	GrowthCycleStatusPlanned   GrowthCycleStatus = "planned"
	GrowthCycleStatusActive    GrowthCycleStatus = "active"
	GrowthCycleStatusCompleted GrowthCycleStatus = "completed"
	GrowthCycleStatusCancelled GrowthCycleStatus = "cancelled"
)

// GrowthCycleStatusTransitions is the allowed status graph for growth cycles
var GrowthCycleStatusTransitions = shared.NewTransitions("growth cycle status", map[GrowthCycleStatus][]GrowthCycleStatus{
	GrowthCycleStatusPlanned:   {GrowthCycleStatusActive, GrowthCycleStatusCancelled},
	GrowthCycleStatusActive:    {GrowthCycleStatusCompleted, GrowthCycleStatusCancelled},
	GrowthCycleStatusCompleted: {},
	GrowthCycleStatusCancelled: {},
})

// GrowthCycle groups batches grown together in a room over a period
type GrowthCycle struct {
	shared.BaseEntity
	Name            string            `gorm:"type:varchar(200);not null" json:"name"`
	Room            string            `gorm:"type:varchar(100)" json:"room"`
	StartDate       time.Time         `gorm:"not null" json:"start_date"`
	ExpectedEndDate *time.Time        `json:"expected_end_date"`
	EndDate         *time.Time        `json:"end_date"`
	Status          GrowthCycleStatus `gorm:"type:varchar(20);not null;default:'planned';index" json:"status"`
	Notes           string            `gorm:"type:text" json:"notes"`
	CreatedBy       *uuid.UUID        `gorm:"type:uuid" json:"created_by"`
}

// TableName returns the table name for GORM
func (GrowthCycle) TableName() string {
	return "growth_cycles"
}

// NewGrowthCycle creates a planned growth cycle
func NewGrowthCycle(name, room string, startDate time.Time, expectedEnd *time.Time, notes string, createdBy uuid.UUID) (*GrowthCycle, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewInvalidInputError("Growth cycle name cannot be empty")
	}
	if startDate.IsZero() {
		return nil, shared.NewInvalidInputError("Start date is required")
	}
	if expectedEnd != nil && expectedEnd.Before(startDate) {
		return nil, shared.NewInvalidInputError("Expected end date cannot be before the start date")
	}
	gc := &GrowthCycle{
		BaseEntity:      shared.NewBaseEntity(),
		Name:            name,
		Room:            room,
		StartDate:       startDate,
		ExpectedEndDate: expectedEnd,
		Status:          GrowthCycleStatusPlanned,
		Notes:           notes,
	}
	if createdBy != uuid.Nil {
		gc.CreatedBy = &createdBy
	}
	return gc, nil
}

// Update applies the editable attributes; nil values are left unchanged
func (gc *GrowthCycle) Update(name, room *string, expectedEnd *time.Time, notes *string) error {
	if GrowthCycleStatusTransitions.IsTerminal(gc.Status) {
		return shared.NewInvalidStateError("Closed growth cycles cannot be modified")
	}
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return shared.NewInvalidInputError("Growth cycle name cannot be empty")
		}
		gc.Name = n
	}
	if room != nil {
		gc.Room = *room
	}
	if expectedEnd != nil {
		if expectedEnd.Before(gc.StartDate) {
			return shared.NewInvalidInputError("Expected end date cannot be before the start date")
		}
		gc.ExpectedEndDate = expectedEnd
	}
	if notes != nil {
		gc.Notes = *notes
	}
	gc.Touch()
	return nil
}

// TransitionTo moves the cycle along the status graph. Closing a cycle sets its end date.
func (gc *GrowthCycle) TransitionTo(target GrowthCycleStatus) error {
	if err := GrowthCycleStatusTransitions.Check(gc.Status, target); err != nil {
		return err
	}
	gc.Status = target
	if GrowthCycleStatusTransitions.IsTerminal(target) {
		now := time.Now()
		gc.EndDate = &now
	}
	gc.Touch()
	return nil
}
