package cultivation

import (
	"strings"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WasteType classifies disposed plant material
type WasteType string

const (
	WasteTypePlantMaterial WasteType = "plant_material"
	WasteTypeTrim          WasteType = "trim"
	WasteTypeRoots         WasteType = "roots"
	WasteTypeFailedProduct WasteType = "failed_product"
	WasteTypeOther         WasteType = "other"
)

// IsValid checks if the waste type is known
func (t WasteType) IsValid() bool {
	switch t {
	case WasteTypePlantMaterial, WasteTypeTrim, WasteTypeRoots, WasteTypeFailedProduct, WasteTypeOther:
		return true
	}
	return false
}

// DisposalMethod is how waste was rendered unusable
type DisposalMethod string

const (
	DisposalMethodCompost      DisposalMethod = "compost"
	DisposalMethodIncineration DisposalMethod = "incineration"
	DisposalMethodGrinding     DisposalMethod = "grinding"
	DisposalMethodLandfill     DisposalMethod = "landfill"
)

// IsValid checks if the disposal method is known
func (m DisposalMethod) IsValid() bool {
	switch m {
	case DisposalMethodCompost, DisposalMethodIncineration, DisposalMethodGrinding, DisposalMethodLandfill:
		return true
	}
	return false
}

// WasteRecord documents the disposal of material from a batch
type WasteRecord struct {
	shared.BaseEntity
	BatchID        *uuid.UUID      `gorm:"type:uuid;index" json:"batch_id"`
	WasteType      WasteType       `gorm:"type:varchar(30);not null;index" json:"waste_type"`
	Quantity       decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"quantity"`
	Unit           string          `gorm:"type:varchar(20);not null" json:"unit"`
	DisposalMethod DisposalMethod  `gorm:"type:varchar(30);not null" json:"disposal_method"`
	Reason         string          `gorm:"type:text" json:"reason"`
	DisposedAt     time.Time       `gorm:"not null;index" json:"disposed_at"`
	RecordedBy     *uuid.UUID      `gorm:"type:uuid" json:"recorded_by"`
	WitnessedBy    *uuid.UUID      `gorm:"type:uuid" json:"witnessed_by"`
}

// TableName returns the table name for GORM
func (WasteRecord) TableName() string {
	return "waste_records"
}

// WasteInput holds the attributes of a waste record
type WasteInput struct {
	BatchID        *uuid.UUID
	WasteType      *WasteType
	Quantity       *decimal.Decimal
	Unit           *string
	DisposalMethod *DisposalMethod
	Reason         *string
	DisposedAt     *time.Time
	WitnessedBy    *uuid.UUID
}

// NewWasteRecord records a disposal. The witness, when given, must not be the recorder.
func NewWasteRecord(in WasteInput, recordedBy uuid.UUID) (*WasteRecord, error) {
	if in.WasteType == nil {
		return nil, shared.NewInvalidInputError("Waste type is required")
	}
	if in.Quantity == nil {
		return nil, shared.NewInvalidInputError("Quantity is required")
	}
	if in.DisposalMethod == nil {
		return nil, shared.NewInvalidInputError("Disposal method is required")
	}
	w := &WasteRecord{
		BaseEntity: shared.NewBaseEntity(),
		Unit:       "g",
		DisposedAt: time.Now(),
	}
	if recordedBy != uuid.Nil {
		w.RecordedBy = &recordedBy
	}
	if err := w.Apply(in); err != nil {
		return nil, err
	}
	return w, nil
}

// Apply sets the attributes present in in
func (w *WasteRecord) Apply(in WasteInput) error {
	if in.WasteType != nil && !in.WasteType.IsValid() {
		return shared.NewInvalidInputError("Invalid waste type")
	}
	if in.DisposalMethod != nil && !in.DisposalMethod.IsValid() {
		return shared.NewInvalidInputError("Invalid disposal method")
	}
	if in.Quantity != nil && !in.Quantity.IsPositive() {
		return shared.NewInvalidInputError("Quantity must be positive")
	}
	if in.WitnessedBy != nil && w.RecordedBy != nil && *in.WitnessedBy == *w.RecordedBy {
		return shared.NewInvalidInputError("Waste must be witnessed by someone other than the recorder")
	}
	if in.BatchID != nil {
		w.BatchID = in.BatchID
	}
	if in.WasteType != nil {
		w.WasteType = *in.WasteType
	}
	if in.Quantity != nil {
		w.Quantity = *in.Quantity
	}
	if in.Unit != nil && *in.Unit != "" {
		w.Unit = *in.Unit
	}
	if in.DisposalMethod != nil {
		w.DisposalMethod = *in.DisposalMethod
	}
	if in.Reason != nil {
		w.Reason = strings.TrimSpace(*in.Reason)
	}
	if in.DisposedAt != nil && !in.DisposedAt.IsZero() {
		w.DisposedAt = *in.DisposedAt
	}
	if in.WitnessedBy != nil {
		w.WitnessedBy = in.WitnessedBy
	}
	w.Touch()
	return nil
}
