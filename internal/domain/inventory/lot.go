package inventory

import (
	"strings"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotStatus represents the availability of a lot
type LotStatus string

const (
	LotStatusAvailable   LotStatus = "available"
	LotStatusQuarantined LotStatus = "quarantined"
	LotStatusDepleted    LotStatus = "depleted"
)

// LotStatusTransitions is the allowed status graph for lots
var LotStatusTransitions = shared.NewTransitions("lot status", map[LotStatus][]LotStatus{
	LotStatusAvailable:   {LotStatusQuarantined, LotStatusDepleted},
	LotStatusQuarantined: {LotStatusAvailable, LotStatusDepleted},
	LotStatusDepleted:    {},
})

// Lot is a traceable quantity of product, usually produced by a batch
type Lot struct {
	shared.BaseEntity
	LotNumber       string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"lot_number"`
	BatchID         *uuid.UUID      `gorm:"type:uuid;index" json:"batch_id"`
	ProductName     string          `gorm:"type:varchar(200);not null" json:"product_name"`
	ProductType     string          `gorm:"type:varchar(50);index" json:"product_type"`
	Unit            string          `gorm:"type:varchar(20);not null;default:'g'" json:"unit"`
	InitialQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"initial_quantity"`
	Status          LotStatus       `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`
	ExpiryDate      *time.Time      `json:"expiry_date"`
	Location        string          `gorm:"type:varchar(100)" json:"location"`
	CreatedBy       *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
}

// TableName returns the table name for GORM
func (Lot) TableName() string {
	return "inventory_lots"
}

// NewLot creates an available lot. An empty lot number is generated.
func NewLot(lotNumber string, batchID *uuid.UUID, productName, productType, unit string, quantity decimal.Decimal, expiry *time.Time, location string, createdBy uuid.UUID) (*Lot, error) {
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return nil, shared.NewInvalidInputError("Product name cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewInvalidInputError("Quantity cannot be negative")
	}
	if lotNumber == "" {
		lotNumber = shared.GenerateNumber("LOT")
	}
	if unit == "" {
		unit = "g"
	}
	l := &Lot{
		BaseEntity:      shared.NewBaseEntity(),
		LotNumber:       lotNumber,
		BatchID:         batchID,
		ProductName:     productName,
		ProductType:     productType,
		Unit:            unit,
		InitialQuantity: quantity,
		Status:          LotStatusAvailable,
		ExpiryDate:      expiry,
		Location:        location,
	}
	if createdBy != uuid.Nil {
		l.CreatedBy = &createdBy
	}
	return l, nil
}

// Update applies the editable descriptive attributes
func (l *Lot) Update(productName, productType, location *string, expiry *time.Time) error {
	if productName != nil {
		n := strings.TrimSpace(*productName)
		if n == "" {
			return shared.NewInvalidInputError("Product name cannot be empty")
		}
		l.ProductName = n
	}
	if productType != nil {
		l.ProductType = *productType
	}
	if location != nil {
		l.Location = *location
	}
	if expiry != nil {
		l.ExpiryDate = expiry
	}
	l.Touch()
	return nil
}

// ChangeStatus moves the lot along the status graph
func (l *Lot) ChangeStatus(target LotStatus) error {
	if err := LotStatusTransitions.Check(l.Status, target); err != nil {
		return err
	}
	l.Status = target
	l.Touch()
	return nil
}

// BatchLotSummary aggregates lots by their source batch
type BatchLotSummary struct {
	BatchID        uuid.UUID       `json:"batch_id"`
	BatchNumber    string          `json:"batch_number"`
	LotCount       int64           `json:"lot_count"`
	TotalAvailable decimal.Decimal `json:"total_available"`
}
