package qms

import (
	"strings"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditType classifies an audit
type AuditType string

const (
	AuditTypeInternal   AuditType = "internal"
	AuditTypeExternal   AuditType = "external"
	AuditTypeRegulatory AuditType = "regulatory"
	AuditTypeSupplier   AuditType = "supplier"
)

// IsValid checks if the audit type is known
func (t AuditType) IsValid() bool {
	switch t {
	case AuditTypeInternal, AuditTypeExternal, AuditTypeRegulatory, AuditTypeSupplier:
		return true
	}
	return false
}

// AuditStatus tracks an audit from scheduling to completion
type AuditStatus string

const (
	AuditStatusScheduled  AuditStatus = "scheduled"
	AuditStatusInProgress AuditStatus = "in_progress"
	AuditStatusCompleted  AuditStatus = "completed"
	AuditStatusCancelled  AuditStatus = "cancelled"
)

// AuditStatusTransitions is the allowed status graph for audits
var AuditStatusTransitions = shared.NewTransitions("audit status", map[AuditStatus][]AuditStatus{
	AuditStatusScheduled:  {AuditStatusInProgress, AuditStatusCancelled},
	AuditStatusInProgress: {AuditStatusCompleted, AuditStatusCancelled},
	AuditStatusCompleted:  {},
	AuditStatusCancelled:  {},
})

// Audit is a scheduled quality audit
type Audit struct {
	shared.BaseEntity
	shared.EventSource `gorm:"-" json:"-"`
	Title              string              `gorm:"type:varchar(200);not null" json:"title"`
	AuditType          AuditType           `gorm:"type:varchar(20);not null;index" json:"audit_type"`
	Scope              string              `gorm:"type:text" json:"scope"`
	Status             AuditStatus         `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	ScheduledDate      time.Time           `gorm:"not null;index" json:"scheduled_date"`
	CompletedAt        *time.Time          `json:"completed_at"`
	LeadAuditor        string              `gorm:"type:varchar(200)" json:"lead_auditor"`
	Findings           string              `gorm:"type:text" json:"findings"`
	Score              decimal.NullDecimal `gorm:"type:decimal(5,2)" json:"score"`
	CreatedBy          *uuid.UUID          `gorm:"type:uuid" json:"created_by"`
}

// TableName returns the table name for GORM
func (Audit) TableName() string {
	return "audits"
}

// NewAudit schedules an audit
func NewAudit(title string, auditType AuditType, scope string, scheduledDate time.Time, leadAuditor string, createdBy uuid.UUID) (*Audit, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewInvalidInputError("Audit title cannot be empty")
	}
	if !auditType.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid audit type")
	}
	if scheduledDate.IsZero() {
		return nil, shared.NewInvalidInputError("Scheduled date is required")
	}
	a := &Audit{
		BaseEntity:    shared.NewBaseEntity(),
		Title:         title,
		AuditType:     auditType,
		Scope:         scope,
		Status:        AuditStatusScheduled,
		ScheduledDate: scheduledDate,
		LeadAuditor:   leadAuditor,
	}
	if createdBy != uuid.Nil {
		a.CreatedBy = &createdBy
	}
	return a, nil
}

// Update applies the editable attributes of an unfinished audit
func (a *Audit) Update(title, scope, leadAuditor *string, scheduledDate *time.Time) error {
	if AuditStatusTransitions.IsTerminal(a.Status) {
		return shared.NewInvalidStateError("Finished audits cannot be modified")
	}
	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			return shared.NewInvalidInputError("Audit title cannot be empty")
		}
		a.Title = t
	}
	if scope != nil {
		a.Scope = *scope
	}
	if leadAuditor != nil {
		a.LeadAuditor = *leadAuditor
	}
	if scheduledDate != nil {
		a.ScheduledDate = *scheduledDate
	}
	a.Touch()
	return nil
}

// Start begins a scheduled audit
func (a *Audit) Start() error {
	if err := AuditStatusTransitions.Check(a.Status, AuditStatusInProgress); err != nil {
		return err
	}
	a.Status = AuditStatusInProgress
	a.Touch()
	return nil
}

// Complete records findings and an optional score
func (a *Audit) Complete(actorID uuid.UUID, findings string, score *decimal.Decimal) error {
	if err := AuditStatusTransitions.Check(a.Status, AuditStatusCompleted); err != nil {
		return err
	}
	if score != nil {
		if score.IsNegative() || score.GreaterThan(decimal.NewFromInt(100)) {
			return shared.NewInvalidInputError("Audit score must be between 0 and 100")
		}
		a.Score = decimal.NewNullDecimal(score.Round(2))
	}
	now := time.Now()
	a.Status = AuditStatusCompleted
	a.Findings = findings
	a.CompletedAt = &now
	a.UpdatedAt = now
	a.AddDomainEvent(NewRecordEvent(EventTypeAuditCompleted, AggregateTypeAudit, a.ID, actorID, a.Title, string(a.Status), ""))
	return nil
}

// Cancel cancels an unfinished audit
func (a *Audit) Cancel() error {
	if err := AuditStatusTransitions.Check(a.Status, AuditStatusCancelled); err != nil {
		return err
	}
	a.Status = AuditStatusCancelled
	a.Touch()
	return nil
}
