package handler

import (
	tradeapp "github.com/cultivo/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// TradeHandler serves purchase orders and dispatches
type TradeHandler struct {
	BaseHandler
	orders     *tradeapp.PurchaseOrderService
	dispatches *tradeapp.DispatchService
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(orders *tradeapp.PurchaseOrderService, dispatches *tradeapp.DispatchService) *TradeHandler {
	return &TradeHandler{orders: orders, dispatches: dispatches}
}

// ListPurchaseOrders GET /purchase-orders
func (h *TradeHandler) ListPurchaseOrders(c *gin.Context) {
	list(&h.BaseHandler, c, h.orders.List, "status", "supplier_id")
}

// GetPurchaseOrder GET /purchase-orders/:id
func (h *TradeHandler) GetPurchaseOrder(c *gin.Context) {
	byID(&h.BaseHandler, c, h.orders.GetByID)
}

// CreatePurchaseOrder POST /purchase-orders
func (h *TradeHandler) CreatePurchaseOrder(c *gin.Context) {
	create(&h.BaseHandler, c, h.orders.Create)
}

// UpdatePurchaseOrder PUT|PATCH /purchase-orders/:id
func (h *TradeHandler) UpdatePurchaseOrder(c *gin.Context) {
	withBody(&h.BaseHandler, c, h.orders.Update)
}

// SubmitPurchaseOrder POST /purchase-orders/:id/submit
func (h *TradeHandler) SubmitPurchaseOrder(c *gin.Context) {
	byID(&h.BaseHandler, c, asActor(c, h.orders.Submit))
}

// ApprovePurchaseOrder POST /purchase-orders/:id/approve
func (h *TradeHandler) ApprovePurchaseOrder(c *gin.Context) {
	byID(&h.BaseHandler, c, asActor(c, h.orders.Approve))
}

// ReceivePurchaseOrder POST /purchase-orders/:id/receive
func (h *TradeHandler) ReceivePurchaseOrder(c *gin.Context) {
	byID(&h.BaseHandler, c, asActor(c, h.orders.Receive))
}

// CancelPurchaseOrder POST /purchase-orders/:id/cancel
func (h *TradeHandler) CancelPurchaseOrder(c *gin.Context) {
	byID(&h.BaseHandler, c, asActor(c, h.orders.Cancel))
}

// ListDispatches GET /dispatches
func (h *TradeHandler) ListDispatches(c *gin.Context) {
	list(&h.BaseHandler, c, h.dispatches.List, "status", "client_id")
}

// GetDispatch GET /dispatches/:id
func (h *TradeHandler) GetDispatch(c *gin.Context) {
	byID(&h.BaseHandler, c, h.dispatches.GetByID)
}

// CreateDispatch POST /dispatches
func (h *TradeHandler) CreateDispatch(c *gin.Context) {
	create(&h.BaseHandler, c, h.dispatches.Create)
}

// UpdateDispatch PUT|PATCH /dispatches/:id
func (h *TradeHandler) UpdateDispatch(c *gin.Context) {
	withBody(&h.BaseHandler, c, h.dispatches.Update)
}

// ConfirmDispatch POST /dispatches/:id/confirm decrements lot stock
func (h *TradeHandler) ConfirmDispatch(c *gin.Context) {
	byID(&h.BaseHandler, c, asActor(c, h.dispatches.ConfirmDispatch))
}

// ShipDispatch POST /dispatches/:id/ship
func (h *TradeHandler) ShipDispatch(c *gin.Context) {
	byID(&h.BaseHandler, c, asActor(c, h.dispatches.Ship))
}

// DeliverDispatch POST /dispatches/:id/deliver
func (h *TradeHandler) DeliverDispatch(c *gin.Context) {
	byID(&h.BaseHandler, c, asActor(c, h.dispatches.Deliver))
}

// CancelDispatch POST /dispatches/:id/cancel
func (h *TradeHandler) CancelDispatch(c *gin.Context) {
	byID(&h.BaseHandler, c, asActor(c, h.dispatches.Cancel))
}
