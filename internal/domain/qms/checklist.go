package qms

import (
	"strings"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ItemCategory groups checklist items by review area
type ItemCategory string

const (
	ItemCategoryDocumentation ItemCategory = "documentation"
	ItemCategoryDeviations    ItemCategory = "deviations"
	ItemCategoryEnvironmental ItemCategory = "environmental"
	ItemCategoryQuality       ItemCategory = "quality"
	ItemCategoryPackaging     ItemCategory = "packaging"
	ItemCategoryTesting       ItemCategory = "testing"
)

// IsValid checks if the category is one of the six review areas
func (c ItemCategory) IsValid() bool {
	switch c {
	case ItemCategoryDocumentation, ItemCategoryDeviations, ItemCategoryEnvironmental,
		ItemCategoryQuality, ItemCategoryPackaging, ItemCategoryTesting:
		return true
	}
	return false
}

// ChecklistItem is one line of the sequential eBR review
type ChecklistItem struct {
	shared.BaseEntity
	EbrID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"ebr_id"`
	ChecklistText string            `gorm:"column:checklist_item;type:text;not null" json:"checklist_item"`
	ItemCategory  ItemCategory      `gorm:"type:varchar(20);not null" json:"item_category"`
	IsCompliant   *bool             `json:"is_compliant"`
	Comments      string            `gorm:"type:text" json:"comments"`
	EvidenceURLs  shared.StringList `gorm:"column:evidence_urls;type:text" json:"evidence_urls"`
	ReviewerID    uuid.UUID         `gorm:"type:uuid;not null" json:"reviewer_id"`
	ReviewedAt    *time.Time        `json:"reviewed_at"`
}

// TableName returns the table name for GORM
func (ChecklistItem) TableName() string {
	return "ebr_review_checklist"
}

// NewChecklistItem creates a checklist item for an eBR
func NewChecklistItem(ebrID, reviewerID uuid.UUID, text string, category ItemCategory, isCompliant *bool, comments string, evidence []string) (*ChecklistItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, shared.NewInvalidInputError("Checklist item cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid checklist item category")
	}
	if reviewerID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Reviewer is required")
	}
	item := &ChecklistItem{
		BaseEntity:    shared.NewBaseEntity(),
		EbrID:         ebrID,
		ChecklistText: text,
		ItemCategory:  category,
		IsCompliant:   isCompliant,
		Comments:      comments,
		EvidenceURLs:  shared.StringList(append([]string{}, evidence...)),
		ReviewerID:    reviewerID,
	}
	if isCompliant != nil {
		now := time.Now()
		item.ReviewedAt = &now
	}
	return item, nil
}

// ChecklistPatch is a partial update of a checklist item
type ChecklistPatch struct {
	IsCompliant  *bool
	Comments     *string
	EvidenceURLs *[]string
	ReviewedAt   *time.Time
}

// Apply updates the fields present in the patch
func (i *ChecklistItem) Apply(p ChecklistPatch) {
	if p.IsCompliant != nil {
		v := *p.IsCompliant
		i.IsCompliant = &v
	}
	if p.Comments != nil {
		i.Comments = *p.Comments
	}
	if p.EvidenceURLs != nil {
		i.EvidenceURLs = shared.StringList(append([]string{}, (*p.EvidenceURLs)...))
	}
	if p.ReviewedAt != nil {
		at := *p.ReviewedAt
		i.ReviewedAt = &at
	} else if p.IsCompliant != nil && i.ReviewedAt == nil {
		now := time.Now()
		i.ReviewedAt = &now
	}
	i.Touch()
}
