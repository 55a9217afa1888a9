package qms

import (
	"strings"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComplianceStatus is the review status shown on an eBR
type ComplianceStatus string

const (
	ComplianceStatusPending  ComplianceStatus = "pending"
	ComplianceStatusApproved ComplianceStatus = "approved"
	ComplianceStatusRejected ComplianceStatus = "rejected"
	ComplianceStatusReopened ComplianceStatus = "reopened"
)

// IsValid checks if the compliance status is known
func (s ComplianceStatus) IsValid() bool {
	switch s {
	case ComplianceStatusPending, ComplianceStatusApproved, ComplianceStatusRejected, ComplianceStatusReopened:
		return true
	}
	return false
}

// PassFailStatus is the quality verdict of an eBR. A nil *PassFailStatus means unset.
type PassFailStatus string

const (
	PassFailPass        PassFailStatus = "pass"
	PassFailFail        PassFailStatus = "fail"
	PassFailConditional PassFailStatus = "conditional"
)

// IsValid checks if the pass/fail status is known
func (s PassFailStatus) IsValid() bool {
	switch s {
	case PassFailPass, PassFailFail, PassFailConditional:
		return true
	}
	return false
}

// Disposition is the terminal decision on an eBR
type Disposition string

const (
	DispositionPending  Disposition = "pending"
	DispositionApproved Disposition = "approved"
	DispositionRejected Disposition = "rejected"
)

// DispositionTransitions allows re-approving an approved record and re-rejecting a
// rejected one, but switching between approved and rejected requires a reopen.
var DispositionTransitions = shared.NewTransitions("eBR disposition", map[Disposition][]Disposition{
	DispositionPending:  {DispositionApproved, DispositionRejected},
	DispositionApproved: {DispositionApproved, DispositionPending},
	DispositionRejected: {DispositionRejected, DispositionPending},
})

// BatchSnapshot is the batch data copied onto an eBR when it is created
type BatchSnapshot struct {
	BatchID                  uuid.UUID
	BatchName                string
	Strain                   string
	Stage                    string
	StartDate                *time.Time
	TotalPlants              int
	DailyLogsCount           int
	CriticalDeviationsCount  int
	EnvironmentalAlertsCount int
}

// EbrRecord is the electronic batch record: a compliance snapshot and sign-off for one batch
type EbrRecord struct {
	shared.BaseEntity
	shared.EventSource `gorm:"-" json:"-"`

	EbrNumber string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"ebr_number"`
	BatchID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"batch_id"`

	BatchName   string    `gorm:"type:varchar(200);not null" json:"batch_name"`
	Strain      string    `gorm:"type:varchar(200)" json:"strain"`
	Stage       string    `gorm:"type:varchar(20)" json:"stage"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	TotalPlants int       `gorm:"not null;default:0" json:"total_plants"`

	ComplianceStatus ComplianceStatus    `gorm:"type:varchar(20);not null;default:'pending';index" json:"compliance_status"`
	PassFailStatus   *PassFailStatus     `gorm:"type:varchar(20);index" json:"pass_fail_status"`
	ComplianceScore  decimal.NullDecimal `gorm:"type:decimal(5,2)" json:"compliance_score"`
	Disposition      Disposition         `gorm:"type:varchar(20);not null;default:'pending'" json:"disposition"`

	ApprovedBy *uuid.UUID `gorm:"type:uuid" json:"approved_by"`
	ApprovedAt *time.Time `json:"approved_at"`

	RejectionReason      string `gorm:"type:text" json:"rejection_reason"`
	RequiresReprocessing bool   `gorm:"not null;default:false" json:"requires_reprocessing"`

	ReviewedBy  *uuid.UUID `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	ReviewNotes string     `gorm:"type:text" json:"review_notes"`

	PackagingComplete        bool `gorm:"not null;default:false" json:"packaging_complete"`
	StageReviewsComplete     bool `gorm:"not null;default:false" json:"stage_reviews_complete"`
	DailyLogsCount           int  `gorm:"not null;default:0" json:"daily_logs_count"`
	CriticalDeviationsCount  int  `gorm:"not null;default:0" json:"critical_deviations_count"`
	EnvironmentalAlertsCount int  `gorm:"not null;default:0" json:"environmental_alerts_count"`
	FailedHygieneChecksCount int  `gorm:"not null;default:0" json:"failed_hygiene_checks_count"`

	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"created_by"`
}

// TableName returns the table name for GORM
func (EbrRecord) TableName() string {
	return "qms_ebr"
}

// NewEbrRecord creates a pending eBR from a batch snapshot
func NewEbrRecord(snap BatchSnapshot, createdBy uuid.UUID) (*EbrRecord, error) {
	if snap.BatchID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Batch is required")
	}
	start := time.Now()
	if snap.StartDate != nil && !snap.StartDate.IsZero() {
		start = *snap.StartDate
	}

	r := &EbrRecord{
		BaseEntity:               shared.NewBaseEntity(),
		EbrNumber:                shared.GenerateNumber("EBR"),
		BatchID:                  snap.BatchID,
		BatchName:                snap.BatchName,
		Strain:                   snap.Strain,
		Stage:                    snap.Stage,
		StartDate:                start,
		TotalPlants:              snap.TotalPlants,
		ComplianceStatus:         ComplianceStatusPending,
		Disposition:              DispositionPending,
		PackagingComplete:        snap.Stage == "packaging",
		DailyLogsCount:           snap.DailyLogsCount,
		CriticalDeviationsCount:  snap.CriticalDeviationsCount,
		EnvironmentalAlertsCount: snap.EnvironmentalAlertsCount,
	}
	if createdBy != uuid.Nil {
		r.CreatedBy = &createdBy
	}
	r.AddDomainEvent(NewEbrEvent(EventTypeEbrCreated, r, createdBy, ""))
	return r, nil
}

// IsPassFail reports whether the verdict equals s
func (r *EbrRecord) IsPassFail(s PassFailStatus) bool {
	return r.PassFailStatus != nil && *r.PassFailStatus == s
}

func (r *EbrRecord) setPassFail(s PassFailStatus) {
	v := s
	r.PassFailStatus = &v
}

func (r *EbrRecord) review(reviewerID uuid.UUID, at time.Time) {
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &at
}

// Approve records a passing disposition. Approving an approved record refreshes the
// approval metadata; approving a rejected record requires Reopen first.
func (r *EbrRecord) Approve(approverID uuid.UUID, reason string) error {
	if approverID == uuid.Nil {
		return shared.NewInvalidInputError("Approver is required")
	}
	if !DispositionTransitions.CanTransition(r.Disposition, DispositionApproved) {
		return shared.NewInvalidStateError("eBR record has been rejected; reopen it before approving")
	}
	already := r.Disposition == DispositionApproved
	now := time.Now()
	r.ApprovedBy = &approverID
	r.ApprovedAt = &now
	r.setPassFail(PassFailPass)
	r.ComplianceStatus = ComplianceStatusApproved
	r.Disposition = DispositionApproved
	r.ReviewNotes = reason
	r.review(approverID, now)
	r.UpdatedAt = now
	if !already {
		r.AddDomainEvent(NewEbrEvent(EventTypeEbrApproved, r, approverID, reason))
	}
	return nil
}

// Reject records a failing disposition. The rejector is stored in approved_by/approved_at.
func (r *EbrRecord) Reject(rejectorID uuid.UUID, reason string, requiresReprocessing bool) error {
	if rejectorID == uuid.Nil {
		return shared.NewInvalidInputError("Rejector is required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewInvalidInputError("Rejection reason is required")
	}
	if !DispositionTransitions.CanTransition(r.Disposition, DispositionRejected) {
		return shared.NewInvalidStateError("eBR record has been approved; reopen it before rejecting")
	}
	now := time.Now()
	r.ApprovedBy = &rejectorID
	r.ApprovedAt = &now
	r.setPassFail(PassFailFail)
	r.ComplianceStatus = ComplianceStatusRejected
	r.Disposition = DispositionRejected
	r.RejectionReason = reason
	r.RequiresReprocessing = requiresReprocessing
	r.ReviewNotes = reason
	r.review(rejectorID, now)
	r.UpdatedAt = now
	r.AddDomainEvent(NewEbrEvent(EventTypeEbrRejected, r, rejectorID, reason))
	return nil
}

// Reopen returns a decided record to pending so it can be decided again
func (r *EbrRecord) Reopen(actorID uuid.UUID, reason string) error {
	if r.Disposition == DispositionPending {
		return shared.NewInvalidStateError("eBR record has no disposition to reopen")
	}
	if err := DispositionTransitions.Check(r.Disposition, DispositionPending); err != nil {
		return err
	}
	now := time.Now()
	r.Disposition = DispositionPending
	r.ComplianceStatus = ComplianceStatusReopened
	r.PassFailStatus = nil
	r.ApprovedBy = nil
	r.ApprovedAt = nil
	r.RejectionReason = ""
	r.RequiresReprocessing = false
	r.ReviewNotes = reason
	r.review(actorID, now)
	r.UpdatedAt = now
	r.AddDomainEvent(NewEbrEvent(EventTypeEbrReopened, r, actorID, reason))
	return nil
}

// ScoreCompliance records the reviewer's score. Marking conditional sets the verdict
// without deciding the record.
func (r *EbrRecord) ScoreCompliance(reviewerID uuid.UUID, score decimal.Decimal, conditional bool, notes string) error {
	if r.Disposition != DispositionPending {
		return shared.NewInvalidStateError("Cannot score a decided eBR record; reopen it first")
	}
	if score.IsNegative() || score.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewInvalidInputError("Compliance score must be between 0 and 100")
	}
	now := time.Now()
	r.ComplianceScore = decimal.NewNullDecimal(score.Round(2))
	if conditional {
		r.setPassFail(PassFailConditional)
	}
	if notes != "" {
		r.ReviewNotes = notes
	}
	r.review(reviewerID, now)
	r.UpdatedAt = now
	return nil
}

// UpdateCompleteness sets the review completeness flags
func (r *EbrRecord) UpdateCompleteness(packagingComplete, stageReviewsComplete *bool, failedHygieneChecks *int) error {
	if failedHygieneChecks != nil && *failedHygieneChecks < 0 {
		return shared.NewInvalidInputError("Failed hygiene checks cannot be negative")
	}
	if packagingComplete != nil {
		r.PackagingComplete = *packagingComplete
	}
	if stageReviewsComplete != nil {
		r.StageReviewsComplete = *stageReviewsComplete
	}
	if failedHygieneChecks != nil {
		r.FailedHygieneChecksCount = *failedHygieneChecks
	}
	r.Touch()
	return nil
}
