package cultivation

import (
	"strings"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StrainType classifies a strain
type StrainType string

const (
	StrainTypeIndica StrainType = "indica"
	StrainTypeSativa StrainType = "sativa"
	StrainTypeHybrid StrainType = "hybrid"
)

// IsValid checks if the strain type is known
func (t StrainType) IsValid() bool {
	switch t {
	case StrainTypeIndica, StrainTypeSativa, StrainTypeHybrid:
		return true
	}
	return false
}

// Strain is a cultivar grown in batches
type Strain struct {
	shared.BaseEntity
	Name          string          `gorm:"type:varchar(200);not null;uniqueIndex" json:"name"`
	StrainType    StrainType      `gorm:"type:varchar(20);not null" json:"strain_type"`
	THCPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"thc_percentage"`
	CBDPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"cbd_percentage"`
	Description   string          `gorm:"type:text" json:"description"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
}

// TableName returns the table name for GORM
func (Strain) TableName() string {
	return "strains"
}

var hundred = decimal.NewFromInt(100)

func validPercentage(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(hundred)
}

// NewStrain creates a strain
func NewStrain(name string, strainType StrainType, thc, cbd decimal.Decimal, description string, createdBy uuid.UUID) (*Strain, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewInvalidInputError("Strain name cannot be empty")
	}
	if !strainType.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid strain type")
	}
	if !validPercentage(thc) || !validPercentage(cbd) {
		return nil, shared.NewInvalidInputError("Potency percentages must be between 0 and 100")
	}
	s := &Strain{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          name,
		StrainType:    strainType,
		THCPercentage: thc,
		CBDPercentage: cbd,
		Description:   description,
	}
	if createdBy != uuid.Nil {
		s.CreatedBy = &createdBy
	}
	return s, nil
}

// Update applies the editable attributes; nil values are left unchanged
func (s *Strain) Update(name *string, strainType *StrainType, thc, cbd *decimal.Decimal, description *string) error {
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return shared.NewInvalidInputError("Strain name cannot be empty")
		}
		s.Name = n
	}
	if strainType != nil {
		if !strainType.IsValid() {
			return shared.NewInvalidInputError("Invalid strain type")
		}
		s.StrainType = *strainType
	}
	if thc != nil {
		if !validPercentage(*thc) {
			return shared.NewInvalidInputError("THC percentage must be between 0 and 100")
		}
		s.THCPercentage = *thc
	}
	if cbd != nil {
		if !validPercentage(*cbd) {
			return shared.NewInvalidInputError("CBD percentage must be between 0 and 100")
		}
		s.CBDPercentage = *cbd
	}
	if description != nil {
		s.Description = *description
	}
	s.Touch()
	return nil
}
