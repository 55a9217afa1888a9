package qms

import (
	"strings"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Severity grades a deviation
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// IsValid checks if the severity is known
func (s Severity) IsValid() bool {
	switch s {
	case SeverityMinor, SeverityMajor, SeverityCritical:
		return true
	}
	return false
}

// DeviationStatus tracks a deviation through investigation
type DeviationStatus string

const (
	DeviationStatusOpen          DeviationStatus = "open"
	DeviationStatusInvestigating DeviationStatus = "investigating"
	DeviationStatusResolved      DeviationStatus = "resolved"
	DeviationStatusClosed        DeviationStatus = "closed"
)

// DeviationStatusTransitions is the allowed status graph for deviations
var DeviationStatusTransitions = shared.NewTransitions("deviation status", map[DeviationStatus][]DeviationStatus{
	DeviationStatusOpen:          {DeviationStatusInvestigating, DeviationStatusResolved},
	DeviationStatusInvestigating: {DeviationStatusResolved},
	DeviationStatusResolved:      {DeviationStatusClosed},
	DeviationStatusClosed:        {},
})

// Deviation is a logged departure from expected process or quality parameters
type Deviation struct {
	shared.BaseEntity
	shared.EventSource `gorm:"-" json:"-"`
	DeviationNumber    string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"deviation_number"`
	Title              string          `gorm:"type:varchar(200);not null" json:"title"`
	Description        string          `gorm:"type:text" json:"description"`
	Severity           Severity        `gorm:"type:varchar(20);not null;index" json:"severity"`
	Status             DeviationStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	BatchID            *uuid.UUID      `gorm:"type:uuid;index" json:"batch_id"`
	ReportedBy         uuid.UUID       `gorm:"type:uuid;not null" json:"reported_by"`
	RootCause          string          `gorm:"type:text" json:"root_cause"`
	Resolution         string          `gorm:"type:text" json:"resolution"`
	ResolvedBy         *uuid.UUID      `gorm:"type:uuid" json:"resolved_by"`
	ResolvedAt         *time.Time      `json:"resolved_at"`
}

// TableName returns the table name for GORM
func (Deviation) TableName() string {
	return "deviations"
}

// NewDeviation reports an open deviation
func NewDeviation(title, description string, severity Severity, batchID *uuid.UUID, reportedBy uuid.UUID) (*Deviation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewInvalidInputError("Deviation title cannot be empty")
	}
	if !severity.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid deviation severity")
	}
	d := &Deviation{
		BaseEntity:      shared.NewBaseEntity(),
		DeviationNumber: shared.GenerateNumber("DEV"),
		Title:           title,
		Description:     description,
		Severity:        severity,
		Status:          DeviationStatusOpen,
		BatchID:         batchID,
		ReportedBy:      reportedBy,
	}
	d.AddDomainEvent(NewRecordEvent(EventTypeDeviationReported, AggregateTypeDeviation, d.ID, reportedBy, d.DeviationNumber, string(severity), title))
	return d, nil
}

// Update applies the editable attributes; closed deviations are read-only
func (d *Deviation) Update(title, description *string, severity *Severity) error {
	if d.Status == DeviationStatusClosed {
		return shared.NewInvalidStateError("Closed deviations cannot be modified")
	}
	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			return shared.NewInvalidInputError("Deviation title cannot be empty")
		}
		d.Title = t
	}
	if description != nil {
		d.Description = *description
	}
	if severity != nil {
		if !severity.IsValid() {
			return shared.NewInvalidInputError("Invalid deviation severity")
		}
		d.Severity = *severity
	}
	d.Touch()
	return nil
}

// StartInvestigation moves an open deviation under investigation
func (d *Deviation) StartInvestigation() error {
	if err := DeviationStatusTransitions.Check(d.Status, DeviationStatusInvestigating); err != nil {
		return err
	}
	d.Status = DeviationStatusInvestigating
	d.Touch()
	return nil
}

// Resolve records the root cause and resolution
func (d *Deviation) Resolve(actorID uuid.UUID, rootCause, resolution string) error {
	if strings.TrimSpace(resolution) == "" {
		return shared.NewInvalidInputError("Resolution is required")
	}
	if err := DeviationStatusTransitions.Check(d.Status, DeviationStatusResolved); err != nil {
		return err
	}
	now := time.Now()
	d.Status = DeviationStatusResolved
	d.RootCause = rootCause
	d.Resolution = resolution
	d.ResolvedBy = &actorID
	d.ResolvedAt = &now
	d.UpdatedAt = now
	d.AddDomainEvent(NewRecordEvent(EventTypeDeviationResolved, AggregateTypeDeviation, d.ID, actorID, d.DeviationNumber, string(d.Status), resolution))
	return nil
}

// Close closes a resolved deviation
func (d *Deviation) Close(actorID uuid.UUID) error {
	if err := DeviationStatusTransitions.Check(d.Status, DeviationStatusClosed); err != nil {
		return err
	}
	d.Status = DeviationStatusClosed
	d.Touch()
	d.AddDomainEvent(NewRecordEvent(EventTypeDeviationClosed, AggregateTypeDeviation, d.ID, actorID, d.DeviationNumber, string(d.Status), ""))
	return nil
}
