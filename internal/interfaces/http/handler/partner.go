package handler

import (
	partnerapp "github.com/cultivo/backend/internal/application/partner"
	"github.com/gin-gonic/gin"
)

// PartnerHandler serves suppliers and clients
type PartnerHandler struct {
	BaseHandler
	suppliers *partnerapp.SupplierService
	clients   *partnerapp.ClientService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(suppliers *partnerapp.SupplierService, clients *partnerapp.ClientService) *PartnerHandler {
	return &PartnerHandler{suppliers: suppliers, clients: clients}
}

// ListSuppliers GET /suppliers
func (h *PartnerHandler) ListSuppliers(c *gin.Context) {
	list(&h.BaseHandler, c, h.suppliers.List, "status")
}

// GetSupplier GET /suppliers/:id
func (h *PartnerHandler) GetSupplier(c *gin.Context) {
	byID(&h.BaseHandler, c, h.suppliers.GetByID)
}

// CreateSupplier POST /suppliers
func (h *PartnerHandler) CreateSupplier(c *gin.Context) {
	create(&h.BaseHandler, c, h.suppliers.Create)
}

// UpdateSupplier PUT|PATCH /suppliers/:id
func (h *PartnerHandler) UpdateSupplier(c *gin.Context) {
	withBody(&h.BaseHandler, c, h.suppliers.Update)
}

// ListClients GET /clients
func (h *PartnerHandler) ListClients(c *gin.Context) {
	list(&h.BaseHandler, c, h.clients.List, "status", "client_type")
}

// GetClient GET /clients/:id
func (h *PartnerHandler) GetClient(c *gin.Context) {
	byID(&h.BaseHandler, c, h.clients.GetByID)
}

// CreateClient POST /clients
func (h *PartnerHandler) CreateClient(c *gin.Context) {
	create(&h.BaseHandler, c, h.clients.Create)
}

// UpdateClient PUT|PATCH /clients/:id
func (h *PartnerHandler) UpdateClient(c *gin.Context) {
	withBody(&h.BaseHandler, c, h.clients.Update)
}

// DeleteClient DELETE /clients/:id deactivates the client
func (h *PartnerHandler) DeleteClient(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.clients.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessMessage(c, nil, "Client deactivated")
}
