package qms

import (
	"strings"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SopStatus tracks an SOP document through review
type SopStatus string

const (
	SopStatusDraft       SopStatus = "draft"
	SopStatusUnderReview SopStatus = "under_review"
	SopStatusApproved    SopStatus = "approved"
	SopStatusObsolete    SopStatus = "obsolete"
)

// SopStatusTransitions is the allowed status graph for SOPs
var SopStatusTransitions = shared.NewTransitions("SOP status", map[SopStatus][]SopStatus{
	SopStatusDraft:       {SopStatusUnderReview},
	SopStatusUnderReview: {SopStatusApproved, SopStatusDraft},
	SopStatusApproved:    {SopStatusObsolete},
	SopStatusObsolete:    {},
})

// Sop is a standard operating procedure document
type Sop struct {
	shared.BaseEntity
	shared.EventSource `gorm:"-" json:"-"`
	DocumentNumber     string     `gorm:"type:varchar(50);not null;uniqueIndex" json:"document_number"`
	Title              string     `gorm:"type:varchar(200);not null" json:"title"`
	Version            string     `gorm:"type:varchar(20);not null;default:'1.0'" json:"version"`
	Category           string     `gorm:"type:varchar(100);index" json:"category"`
	Content            string     `gorm:"type:text" json:"content"`
	Status             SopStatus  `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	EffectiveDate      *time.Time `json:"effective_date"`
	ApprovedBy         *uuid.UUID `gorm:"type:uuid" json:"approved_by"`
	ApprovedAt         *time.Time `json:"approved_at"`
	CreatedBy          *uuid.UUID `gorm:"type:uuid" json:"created_by"`
}

// TableName returns the table name for GORM
func (Sop) TableName() string {
	return "sops"
}

// NewSop creates a draft SOP
func NewSop(documentNumber, title, version, category, content string, effectiveDate *time.Time, createdBy uuid.UUID) (*Sop, error) {
	documentNumber = strings.TrimSpace(documentNumber)
	title = strings.TrimSpace(title)
	if documentNumber == "" {
		return nil, shared.NewInvalidInputError("Document number cannot be empty")
	}
	if title == "" {
		return nil, shared.NewInvalidInputError("SOP title cannot be empty")
	}
	if version == "" {
		version = "1.0"
	}
	s := &Sop{
		BaseEntity:     shared.NewBaseEntity(),
		DocumentNumber: documentNumber,
		Title:          title,
		Version:        version,
		Category:       category,
		Content:        content,
		Status:         SopStatusDraft,
		EffectiveDate:  effectiveDate,
	}
	if createdBy != uuid.Nil {
		s.CreatedBy = &createdBy
	}
	return s, nil
}

// Update edits a draft SOP
func (s *Sop) Update(title, version, category, content *string, effectiveDate *time.Time) error {
	if s.Status != SopStatusDraft {
		return shared.NewInvalidStateError("Only draft SOPs can be modified")
	}
	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			return shared.NewInvalidInputError("SOP title cannot be empty")
		}
		s.Title = t
	}
	if version != nil && *version != "" {
		s.Version = *version
	}
	if category != nil {
		s.Category = *category
	}
	if content != nil {
		s.Content = *content
	}
	if effectiveDate != nil {
		s.EffectiveDate = effectiveDate
	}
	s.Touch()
	return nil
}

func (s *Sop) moveTo(target SopStatus) error {
	if err := SopStatusTransitions.Check(s.Status, target); err != nil {
		return err
	}
	s.Status = target
	s.Touch()
	return nil
}

// SubmitForReview sends a draft to review
func (s *Sop) SubmitForReview() error {
	return s.moveTo(SopStatusUnderReview)
}

// ReturnToDraft sends a document under review back to draft
func (s *Sop) ReturnToDraft() error {
	return s.moveTo(SopStatusDraft)
}

// Obsolete retires an approved SOP
func (s *Sop) Obsolete() error {
	return s.moveTo(SopStatusObsolete)
}

// Approve approves an SOP under review. The effective date defaults to the approval time.
func (s *Sop) Approve(approverID uuid.UUID) error {
	if err := s.moveTo(SopStatusApproved); err != nil {
		return err
	}
	now := time.Now()
	s.ApprovedBy = &approverID
	s.ApprovedAt = &now
	if s.EffectiveDate == nil {
		s.EffectiveDate = &now
	}
	s.AddDomainEvent(NewRecordEvent(EventTypeSopApproved, AggregateTypeSop, s.ID, approverID, s.DocumentNumber, string(s.Status), s.Version))
	return nil
}
