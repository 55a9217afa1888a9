package cultivation

import (
	"strings"

	"github.com/cultivo/backend/internal/domain/shared"
)

// Stage is a configurable definition of a lifecycle phase
type Stage struct {
	shared.BaseEntity
	Name                 string      `gorm:"type:varchar(100);not null" json:"name"`
	StageType            GrowthStage `gorm:"type:varchar(20);not null;index" json:"stage_type"`
	Sequence             int         `gorm:"not null;default:0" json:"sequence"`
	ExpectedDurationDays int         `gorm:"not null;default:0" json:"expected_duration_days"`
	Description          string      `gorm:"type:text" json:"description"`
	IsActive             bool        `gorm:"not null;default:true" json:"is_active"`
}

// TableName returns the table name for GORM
func (Stage) TableName() string {
	return "stages"
}

// NewStage creates an active stage definition
func NewStage(name string, stageType GrowthStage, sequence, durationDays int, description string) (*Stage, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewInvalidInputError("Stage name cannot be empty")
	}
	if !stageType.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid stage type")
	}
	if durationDays < 0 {
		return nil, shared.NewInvalidInputError("Expected duration cannot be negative")
	}
	return &Stage{
		BaseEntity:           shared.NewBaseEntity(),
		Name:                 name,
		StageType:            stageType,
		Sequence:             sequence,
		ExpectedDurationDays: durationDays,
		Description:          description,
		IsActive:             true,
	}, nil
}

// Update applies the editable attributes; nil values are left unchanged
func (s *Stage) Update(name *string, sequence, durationDays *int, description *string, isActive *bool) error {
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return shared.NewInvalidInputError("Stage name cannot be empty")
		}
		s.Name = n
	}
	if sequence != nil {
		s.Sequence = *sequence
	}
	if durationDays != nil {
		if *durationDays < 0 {
			return shared.NewInvalidInputError("Expected duration cannot be negative")
		}
		s.ExpectedDurationDays = *durationDays
	}
	if description != nil {
		s.Description = *description
	}
	if isActive != nil {
		s.IsActive = *isActive
	}
	s.Touch()
	return nil
}
