package trade

import (
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	AggregateTypePurchaseOrder = "PurchaseOrder"
	AggregateTypeDispatch      = "Dispatch"

	EventTypePurchaseOrderStatusChanged = "purchase_order.status_changed"
	EventTypeDispatchStatusChanged      = "dispatch.status_changed"
)

// PurchaseOrderStatusChangedEvent is raised on every purchase order transition
type PurchaseOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	PONumber   string              `json:"po_number"`
	FromStatus PurchaseOrderStatus `json:"from_status"`
	ToStatus   PurchaseOrderStatus `json:"to_status"`
}

// NewPurchaseOrderStatusChangedEvent creates a PurchaseOrderStatusChangedEvent
func NewPurchaseOrderStatusChangedEvent(po *PurchaseOrder, from PurchaseOrderStatus, actorID uuid.UUID) *PurchaseOrderStatusChangedEvent {
	return &PurchaseOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderStatusChanged, AggregateTypePurchaseOrder, po.ID, actorID),
		PONumber:        po.PONumber,
		FromStatus:      from,
		ToStatus:        po.Status,
	}
}

// DispatchStatusChangedEvent is raised on every dispatch transition
type DispatchStatusChangedEvent struct {
	shared.BaseDomainEvent
	DispatchNumber string         `json:"dispatch_number"`
	FromStatus     DispatchStatus `json:"from_status"`
	ToStatus       DispatchStatus `json:"to_status"`
}

// NewDispatchStatusChangedEvent creates a DispatchStatusChangedEvent
func NewDispatchStatusChangedEvent(d *Dispatch, from DispatchStatus, actorID uuid.UUID) *DispatchStatusChangedEvent {
	return &DispatchStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDispatchStatusChanged, AggregateTypeDispatch, d.ID, actorID),
		DispatchNumber:  d.DispatchNumber,
		FromStatus:      from,
		ToStatus:        d.Status,
	}
}
