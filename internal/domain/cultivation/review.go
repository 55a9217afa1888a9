package cultivation

import (
	"strings"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StageReviewStatus is the outcome of a stage review
type StageReviewStatus string

const (
	StageReviewStatusPending  StageReviewStatus = "pending"
	StageReviewStatusApproved StageReviewStatus = "approved"
	StageReviewStatusRejected StageReviewStatus = "rejected"
)

// StageReviewTransitions is the allowed status graph for stage reviews
var StageReviewTransitions = shared.NewTransitions("stage review status", map[StageReviewStatus][]StageReviewStatus{
	StageReviewStatusPending:  {StageReviewStatusApproved, StageReviewStatusRejected},
	StageReviewStatusApproved: {},
	StageReviewStatusRejected: {},
})

// StageReview is a supervisor sign-off on one growth stage of a batch
type StageReview struct {
	shared.BaseEntity
	shared.EventSource `gorm:"-" json:"-"`
	BatchID            uuid.UUID         `gorm:"type:uuid;not null;index" json:"batch_id"`
	Stage              GrowthStage       `gorm:"type:varchar(20);not null;index" json:"stage"`
	Status             StageReviewStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Comments           string            `gorm:"type:text" json:"comments"`
	RequestedBy        *uuid.UUID        `gorm:"type:uuid" json:"requested_by"`
	ReviewedBy         *uuid.UUID        `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt         *time.Time        `json:"reviewed_at"`
}

// TableName returns the table name for GORM
func (StageReview) TableName() string {
	return "stage_reviews"
}

// NewStageReview opens a pending review of a batch stage
func NewStageReview(batchID uuid.UUID, stage GrowthStage, comments string, requestedBy uuid.UUID) (*StageReview, error) {
	if batchID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Batch is required")
	}
	if !stage.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid growth stage")
	}
	r := &StageReview{
		BaseEntity: shared.NewBaseEntity(),
		BatchID:    batchID,
		Stage:      stage,
		Status:     StageReviewStatusPending,
		Comments:   strings.TrimSpace(comments),
	}
	if requestedBy != uuid.Nil {
		r.RequestedBy = &requestedBy
	}
	return r, nil
}

// UpdateComments edits the comments of a pending review
func (r *StageReview) UpdateComments(comments string) error {
	if r.Status != StageReviewStatusPending {
		return shared.NewInvalidStateError("Decided reviews cannot be modified")
	}
	r.Comments = strings.TrimSpace(comments)
	r.Touch()
	return nil
}

// Decide approves or rejects the review. A rejection needs comments.
func (r *StageReview) Decide(to StageReviewStatus, reviewerID uuid.UUID, comments string) error {
	if err := StageReviewTransitions.Check(r.Status, to); err != nil {
		return err
	}
	comments = strings.TrimSpace(comments)
	if to == StageReviewStatusRejected && comments == "" && r.Comments == "" {
		return shared.NewInvalidInputError("A rejection requires comments")
	}
	now := time.Now()
	r.Status = to
	if comments != "" {
		r.Comments = comments
	}
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &now
	r.UpdatedAt = now
	r.AddDomainEvent(NewStageReviewDecidedEvent(r, reviewerID))
	return nil
}
