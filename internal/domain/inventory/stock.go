package inventory

import (
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLevel holds the current quantities of a lot
type StockLevel struct {
	shared.BaseEntity
	LotID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"lot_id"`
	AvailableQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"available_quantity"`
	ReservedQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"reserved_quantity"`
}

// TableName returns the table name for GORM
func (StockLevel) TableName() string {
	return "stock_levels"
}

// NewStockLevel creates a stock level with an opening quantity
func NewStockLevel(lotID uuid.UUID, available decimal.Decimal) *StockLevel {
	return &StockLevel{
		BaseEntity:        shared.NewBaseEntity(),
		LotID:             lotID,
		AvailableQuantity: available,
		ReservedQuantity:  decimal.Zero,
	}
}

// Adjust changes the available quantity by delta. The result cannot go negative.
func (s *StockLevel) Adjust(delta decimal.Decimal) error {
	next := s.AvailableQuantity.Add(delta)
	if next.IsNegative() {
		return shared.ErrInsufficientStock
	}
	s.AvailableQuantity = next
	s.Touch()
	return nil
}

// Dispatch removes quantity from available, clamped at zero, and adds it to reserved.
// It returns the quantity actually taken from available.
func (s *StockLevel) Dispatch(quantity decimal.Decimal) decimal.Decimal {
	taken := decimal.Min(quantity, s.AvailableQuantity)
	if taken.IsNegative() {
		taken = decimal.Zero
	}
	s.AvailableQuantity = decimal.Max(decimal.Zero, s.AvailableQuantity.Sub(quantity))
	s.ReservedQuantity = s.ReservedQuantity.Add(quantity)
	s.Touch()
	return taken
}

// MovementType classifies a stock movement
type MovementType string

const (
	MovementTypeReceipt    MovementType = "receipt"
	MovementTypeAdjustment MovementType = "adjustment"
	MovementTypeDispatch   MovementType = "dispatch"
)

// StockMovement is an append-only ledger entry for a lot
type StockMovement struct {
	shared.BaseEntity
	LotID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"lot_id"`
	MovementType  MovementType    `gorm:"type:varchar(20);not null" json:"movement_type"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"balance_after"`
	ReferenceType string          `gorm:"type:varchar(50)" json:"reference_type"`
	ReferenceID   *uuid.UUID      `gorm:"type:uuid" json:"reference_id"`
	Notes         string          `gorm:"type:text" json:"notes"`
	PerformedBy   *uuid.UUID      `gorm:"type:uuid" json:"performed_by"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement records a movement against a lot
func NewStockMovement(lotID uuid.UUID, movementType MovementType, quantity, balanceAfter decimal.Decimal, referenceType string, referenceID *uuid.UUID, notes string, performedBy uuid.UUID) *StockMovement {
	m := &StockMovement{
		BaseEntity:    shared.NewBaseEntity(),
		LotID:         lotID,
		MovementType:  movementType,
		Quantity:      quantity,
		BalanceAfter:  balanceAfter,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		Notes:         notes,
	}
	if performedBy != uuid.Nil {
		m.PerformedBy = &performedBy
	}
	return m
}
