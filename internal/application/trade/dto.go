package trade

import (
	"time"

	"github.com/cultivo/backend/internal/domain/inventory"
	"github.com/cultivo/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineRequest is one purchase order line
type OrderLineRequest struct {
	Description string          `json:"description" binding:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Unit        string          `json:"unit" binding:"omitempty,max=20"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseOrderRequest represents a request to raise a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID   uuid.UUID          `json:"supplier_id" binding:"required"`
	OrderDate    *time.Time         `json:"order_date"`
	ExpectedDate *time.Time         `json:"expected_date"`
	Notes        string             `json:"notes" binding:"max=2000"`
	Items        []OrderLineRequest `json:"items" binding:"omitempty,dive"`
}

// UpdatePurchaseOrderRequest represents a request to edit a draft purchase order.
// A non-nil Items replaces the whole line set.
type UpdatePurchaseOrderRequest struct {
	ExpectedDate *time.Time         `json:"expected_date"`
	Notes        *string            `json:"notes" binding:"omitempty,max=2000"`
	Items        []OrderLineRequest `json:"items" binding:"omitempty,dive"`
}

func orderLines(items []OrderLineRequest) []trade.OrderLine {
	lines := make([]trade.OrderLine, len(items))
	for i, item := range items {
		lines[i] = trade.OrderLine{
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
		}
	}
	return lines
}

// DispatchLineRequest is one dispatch line
type DispatchLineRequest struct {
	LotID    uuid.UUID       `json:"lot_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// CreateDispatchRequest represents a request to prepare a dispatch
type CreateDispatchRequest struct {
	ClientID     uuid.UUID             `json:"client_id" binding:"required"`
	DispatchDate *time.Time            `json:"dispatch_date"`
	Notes        string                `json:"notes" binding:"max=2000"`
	Items        []DispatchLineRequest `json:"items" binding:"omitempty,dive"`
}

// UpdateDispatchRequest represents a request to edit a draft dispatch
type UpdateDispatchRequest struct {
	DispatchDate *time.Time            `json:"dispatch_date"`
	Notes        *string               `json:"notes" binding:"omitempty,max=2000"`
	Items        []DispatchLineRequest `json:"items" binding:"omitempty,dive"`
}

func dispatchLines(items []DispatchLineRequest) []trade.DispatchLine {
	lines := make([]trade.DispatchLine, len(items))
	for i, item := range items {
		lines[i] = trade.DispatchLine{LotID: item.LotID, Quantity: item.Quantity}
	}
	return lines
}

// ConfirmDispatchResponse is the confirmed dispatch with the stock it moved
type ConfirmDispatchResponse struct {
	Dispatch  *trade.Dispatch           `json:"dispatch"`
	Movements []inventory.StockMovement `json:"movements"`
}
