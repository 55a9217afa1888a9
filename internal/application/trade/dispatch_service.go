package trade

import (
	"context"
	"fmt"

	"github.com/cultivo/backend/internal/domain/inventory"
	"github.com/cultivo/backend/internal/domain/partner"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/cultivo/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockDispatcher draws lot stock for a dispatch inside the caller's transaction
type StockDispatcher interface {
	DispatchStock(ctx context.Context, actorID, lotID uuid.UUID, quantity decimal.Decimal, dispatchID uuid.UUID, note string) (*inventory.StockMovement, error)
}

// DispatchService handles outbound dispatches to clients
type DispatchService struct {
	dispatchRepo trade.DispatchRepository
	clientRepo   partner.ClientRepository
	lotRepo      inventory.LotRepository
	stock        StockDispatcher
	tx           shared.Transactor
	events       shared.EventPublisher
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(
	dispatchRepo trade.DispatchRepository,
	clientRepo partner.ClientRepository,
	lotRepo inventory.LotRepository,
	stock StockDispatcher,
	tx shared.Transactor,
) *DispatchService {
	return &DispatchService{
		dispatchRepo: dispatchRepo,
		clientRepo:   clientRepo,
		lotRepo:      lotRepo,
		stock:        stock,
		tx:           tx,
	}
}

// SetEventPublisher sets the publisher for status change events
func (s *DispatchService) SetEventPublisher(publisher shared.EventPublisher) {
	s.events = publisher
}

// List returns a page of dispatches
func (s *DispatchService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[trade.Dispatch], error) {
	return shared.ListPage[trade.Dispatch](ctx, s.dispatchRepo, filter)
}

// GetByID returns a dispatch with its items
func (s *DispatchService) GetByID(ctx context.Context, id uuid.UUID) (*trade.Dispatch, error) {
	return s.dispatchRepo.FindByID(ctx, id)
}

// Create prepares a draft dispatch
func (s *DispatchService) Create(ctx context.Context, actorID uuid.UUID, req CreateDispatchRequest) (*trade.Dispatch, error) {
	exists, err := s.clientRepo.Exists(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewNotFoundError("Client")
	}

	d, err := trade.NewDispatch(req.ClientID, req.DispatchDate, req.Notes, dispatchLines(req.Items), actorID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureLots(ctx, d); err != nil {
		return nil, err
	}
	if err := s.dispatchRepo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Update edits a draft dispatch. A non-nil item list replaces the lines.
func (s *DispatchService) Update(ctx context.Context, id uuid.UUID, req UpdateDispatchRequest) (*trade.Dispatch, error) {
	d, err := s.dispatchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.Update(req.DispatchDate, req.Notes); err != nil {
		return nil, err
	}
	if req.Items != nil {
		if err := d.SetItems(dispatchLines(req.Items)); err != nil {
			return nil, err
		}
		if err := s.ensureLots(ctx, d); err != nil {
			return nil, err
		}
	}
	if err := s.dispatchRepo.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ConfirmDispatch confirms a draft dispatch and draws every item from stock.
// All writes share one transaction; any failure leaves stock untouched.
func (s *DispatchService) ConfirmDispatch(ctx context.Context, actorID, id uuid.UUID) (*ConfirmDispatchResponse, error) {
	var resp *ConfirmDispatchResponse
	var confirmed *trade.Dispatch

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		d, err := s.dispatchRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := d.Confirm(actorID); err != nil {
			return err
		}

		movements := make([]inventory.StockMovement, 0, len(d.Items))
		note := fmt.Sprintf("Dispatch %s", d.DispatchNumber)
		for _, item := range d.Items {
			movement, err := s.stock.DispatchStock(ctx, actorID, item.LotID, item.Quantity, d.ID, note)
			if err != nil {
				return err
			}
			movements = append(movements, *movement)
		}

		if err := s.dispatchRepo.Save(ctx, d); err != nil {
			return err
		}
		confirmed = d
		resp = &ConfirmDispatchResponse{Dispatch: d, Movements: movements}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := shared.PublishPending(ctx, s.events, &confirmed.EventSource); err != nil {
		return nil, err
	}
	return resp, nil
}

// Ship marks a confirmed dispatch shipped
func (s *DispatchService) Ship(ctx context.Context, actorID, id uuid.UUID) (*trade.Dispatch, error) {
	return s.apply(ctx, id, func(d *trade.Dispatch) error { return d.Ship(actorID) })
}

// Deliver marks a shipped dispatch delivered
func (s *DispatchService) Deliver(ctx context.Context, actorID, id uuid.UUID) (*trade.Dispatch, error) {
	return s.apply(ctx, id, func(d *trade.Dispatch) error { return d.Deliver(actorID) })
}

// Cancel cancels a dispatch that has not shipped. Stock drawn at confirmation is not returned.
func (s *DispatchService) Cancel(ctx context.Context, actorID, id uuid.UUID) (*trade.Dispatch, error) {
	return s.apply(ctx, id, func(d *trade.Dispatch) error { return d.Cancel(actorID) })
}

func (s *DispatchService) apply(ctx context.Context, id uuid.UUID, fn func(*trade.Dispatch) error) (*trade.Dispatch, error) {
	d, err := s.dispatchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		return nil, err
	}
	if err := s.dispatchRepo.Save(ctx, d); err != nil {
		return nil, err
	}
	if err := shared.PublishPending(ctx, s.events, &d.EventSource); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DispatchService) ensureLots(ctx context.Context, d *trade.Dispatch) error {
	ids := d.LotIDs()
	if len(ids) == 0 {
		return nil
	}
	lots, err := s.lotRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(lots) != len(ids) {
		return shared.NewNotFoundError("Lot")
	}
	return nil
}
