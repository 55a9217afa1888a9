package trade

import (
	"context"

	"github.com/cultivo/backend/internal/domain/partner"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/cultivo/backend/internal/domain/trade"
	"github.com/google/uuid"
)

// PurchaseOrderService handles purchase orders raised against suppliers
type PurchaseOrderService struct {
	poRepo       trade.PurchaseOrderRepository
	supplierRepo partner.SupplierRepository
	events       shared.EventPublisher
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(poRepo trade.PurchaseOrderRepository, supplierRepo partner.SupplierRepository) *PurchaseOrderService {
	return &PurchaseOrderService{poRepo: poRepo, supplierRepo: supplierRepo}
}

// SetEventPublisher sets the publisher for status change events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// List returns a page of purchase orders
func (s *PurchaseOrderService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[trade.PurchaseOrder], error) {
	return shared.ListPage[trade.PurchaseOrder](ctx, s.poRepo, filter)
}

// GetByID returns a purchase order with its items
func (s *PurchaseOrderService) GetByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return s.poRepo.FindByID(ctx, id)
}

// Create raises a draft purchase order
func (s *PurchaseOrderService) Create(ctx context.Context, actorID uuid.UUID, req CreatePurchaseOrderRequest) (*trade.PurchaseOrder, error) {
	exists, err := s.supplierRepo.Exists(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewNotFoundError("Supplier")
	}

	po, err := trade.NewPurchaseOrder(req.SupplierID, req.OrderDate, req.ExpectedDate, req.Notes, orderLines(req.Items), actorID)
	if err != nil {
		return nil, err
	}
	if err := s.poRepo.Create(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// Update edits a draft purchase order
func (s *PurchaseOrderService) Update(ctx context.Context, id uuid.UUID, req UpdatePurchaseOrderRequest) (*trade.PurchaseOrder, error) {
	po, err := s.poRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := po.Update(req.ExpectedDate, req.Notes); err != nil {
		return nil, err
	}
	if req.Items != nil {
		if err := po.SetItems(orderLines(req.Items)); err != nil {
			return nil, err
		}
	}
	if err := s.poRepo.Save(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// Submit sends a draft order for approval
func (s *PurchaseOrderService) Submit(ctx context.Context, actorID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return s.apply(ctx, id, func(po *trade.PurchaseOrder) error { return po.Submit(actorID) })
}

// Approve approves a submitted order
func (s *PurchaseOrderService) Approve(ctx context.Context, actorID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return s.apply(ctx, id, func(po *trade.PurchaseOrder) error { return po.Approve(actorID) })
}

// Receive marks an approved order as received
func (s *PurchaseOrderService) Receive(ctx context.Context, actorID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return s.apply(ctx, id, func(po *trade.PurchaseOrder) error { return po.Receive(actorID) })
}

// Cancel cancels an order that has not been received
func (s *PurchaseOrderService) Cancel(ctx context.Context, actorID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return s.apply(ctx, id, func(po *trade.PurchaseOrder) error { return po.Cancel(actorID) })
}

func (s *PurchaseOrderService) apply(ctx context.Context, id uuid.UUID, fn func(*trade.PurchaseOrder) error) (*trade.PurchaseOrder, error) {
	po, err := s.poRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(po); err != nil {
		return nil, err
	}
	if err := s.poRepo.Save(ctx, po); err != nil {
		return nil, err
	}
	if err := shared.PublishPending(ctx, s.events, &po.EventSource); err != nil {
		return nil, err
	}
	return po, nil
}
