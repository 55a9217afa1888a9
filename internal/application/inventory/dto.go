package inventory

import (
	"time"

	"github.com/cultivo/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateLotRequest receives a lot into inventory
type CreateLotRequest struct {
	LotNumber   string          `json:"lot_number" binding:"omitempty,max=50"`
	BatchID     *uuid.UUID      `json:"batch_id"`
	ProductName string          `json:"product_name" binding:"required,max=200"`
	ProductType string          `json:"product_type" binding:"max=50"`
	Unit        string          `json:"unit" binding:"max=20"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	ExpiryDate  *time.Time      `json:"expiry_date"`
	Location    string          `json:"location" binding:"max=100"`
}

// UpdateLotRequest is a partial lot update
type UpdateLotRequest struct {
	ProductName *string    `json:"product_name" binding:"omitempty,min=1,max=200"`
	ProductType *string    `json:"product_type" binding:"omitempty,max=50"`
	Location    *string    `json:"location" binding:"omitempty,max=100"`
	ExpiryDate  *time.Time `json:"expiry_date"`
}

// AdjustStockRequest adds to or removes from the available quantity
type AdjustStockRequest struct {
	Delta  decimal.Decimal `json:"delta" binding:"required"`
	Reason string          `json:"reason" binding:"required,max=500"`
}

// ChangeLotStatusRequest moves a lot along its status graph
type ChangeLotStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available quarantined depleted"`
}

// LotResponse is a lot with its stock level
type LotResponse struct {
	inventory.Lot
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
}

func toLotResponse(lot *inventory.Lot, level *inventory.StockLevel) LotResponse {
	resp := LotResponse{Lot: *lot}
	if level != nil {
		resp.AvailableQuantity = level.AvailableQuantity
		resp.ReservedQuantity = level.ReservedQuantity
	}
	return resp
}

// AdjustStockResponse reports a stock adjustment
type AdjustStockResponse struct {
	Level    inventory.StockLevel    `json:"stock_level"`
	Movement inventory.StockMovement `json:"movement"`
}
