package handler

import (
	"context"

	inventoryapp "github.com/cultivo/backend/internal/application/inventory"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InventoryHandler serves lots, stock movements and the per-batch summary
type InventoryHandler struct {
	BaseHandler
	lots *inventoryapp.LotService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(lots *inventoryapp.LotService) *InventoryHandler {
	return &InventoryHandler{lots: lots}
}

// ListLots GET /inventory/lots
func (h *InventoryHandler) ListLots(c *gin.Context) {
	list(&h.BaseHandler, c, h.lots.List, "status", "product_type", "batch_id")
}

// GetLot GET /inventory/lots/:id
func (h *InventoryHandler) GetLot(c *gin.Context) {
	byID(&h.BaseHandler, c, h.lots.GetByID)
}

// CreateLot POST /inventory/lots
func (h *InventoryHandler) CreateLot(c *gin.Context) {
	create(&h.BaseHandler, c, h.lots.Create)
}

// UpdateLot PUT|PATCH /inventory/lots/:id
func (h *InventoryHandler) UpdateLot(c *gin.Context) {
	withBody(&h.BaseHandler, c, h.lots.Update)
}

// AdjustStock POST /inventory/lots/:id/adjust
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	actor := actorID(c)
	withBody(&h.BaseHandler, c, func(ctx context.Context, id uuid.UUID, req inventoryapp.AdjustStockRequest) (any, error) {
		return h.lots.AdjustStock(ctx, actor, id, req)
	})
}

// ChangeLotStatus POST /inventory/lots/:id/status
func (h *InventoryHandler) ChangeLotStatus(c *gin.Context) {
	withBody(&h.BaseHandler, c, h.lots.ChangeStatus)
}

// ListMovements GET /inventory/lots/:id/movements
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	list(&h.BaseHandler, c, func(ctx context.Context, filter shared.Filter) (any, error) {
		return h.lots.ListMovements(ctx, id, filter)
	}, "movement_type")
}

// BatchSummary GET /inventory/batches
func (h *InventoryHandler) BatchSummary(c *gin.Context) {
	summary, err := h.lots.SummarizeByBatch(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, summary)
}
