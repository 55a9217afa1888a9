package trade

import (
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DispatchStatus represents the status of a dispatch
type DispatchStatus string

const (
	DispatchStatusDraft     DispatchStatus = "draft"
	DispatchStatusConfirmed DispatchStatus = "confirmed"
	DispatchStatusShipped   DispatchStatus = "shipped"
	DispatchStatusDelivered DispatchStatus = "delivered"
	DispatchStatusCancelled DispatchStatus = "cancelled"
)

// DispatchStatusTransitions is the allowed status graph for dispatches
var DispatchStatusTransitions = shared.NewTransitions("dispatch status", map[DispatchStatus][]DispatchStatus{
	DispatchStatusDraft:     {DispatchStatusConfirmed, DispatchStatusCancelled},
	DispatchStatusConfirmed: {DispatchStatusShipped, DispatchStatusCancelled},
	DispatchStatusShipped:   {DispatchStatusDelivered},
	DispatchStatusDelivered: {},
	DispatchStatusCancelled: {},
})

// DispatchItem is a quantity of one lot on a dispatch
type DispatchItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DispatchID uuid.UUID       `gorm:"type:uuid;not null;index" json:"dispatch_id"`
	LotID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"lot_id"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
}

// TableName returns the table name for GORM
func (DispatchItem) TableName() string {
	return "dispatch_items"
}

// DispatchLine is the input for a dispatch item
type DispatchLine struct {
	LotID    uuid.UUID
	Quantity decimal.Decimal
}

// Dispatch is an outbound shipment of lots to a client
type Dispatch struct {
	shared.BaseEntity
	shared.EventSource `gorm:"-" json:"-"`
	DispatchNumber     string         `gorm:"type:varchar(50);not null;uniqueIndex" json:"dispatch_number"`
	ClientID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"client_id"`
	Status             DispatchStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	DispatchDate       time.Time      `gorm:"not null;index" json:"dispatch_date"`
	Notes              string         `gorm:"type:text" json:"notes"`
	ConfirmedBy        *uuid.UUID     `gorm:"type:uuid" json:"confirmed_by"`
	ConfirmedAt        *time.Time     `json:"confirmed_at"`
	CreatedBy          *uuid.UUID     `gorm:"type:uuid" json:"created_by"`
	Items              []DispatchItem `gorm:"foreignKey:DispatchID;references:ID" json:"items"`
}

// TableName returns the table name for GORM
func (Dispatch) TableName() string {
	return "dispatches"
}

// NewDispatch creates a draft dispatch
func NewDispatch(clientID uuid.UUID, dispatchDate *time.Time, notes string, lines []DispatchLine, createdBy uuid.UUID) (*Dispatch, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Client is required")
	}
	date := time.Now()
	if dispatchDate != nil && !dispatchDate.IsZero() {
		date = *dispatchDate
	}
	d := &Dispatch{
		BaseEntity:     shared.NewBaseEntity(),
		DispatchNumber: shared.GenerateNumber("DSP"),
		ClientID:       clientID,
		Status:         DispatchStatusDraft,
		DispatchDate:   date,
		Notes:          notes,
	}
	if createdBy != uuid.Nil {
		d.CreatedBy = &createdBy
	}
	if err := d.SetItems(lines); err != nil {
		return nil, err
	}
	return d, nil
}

// SetItems replaces the items of a draft dispatch
func (d *Dispatch) SetItems(lines []DispatchLine) error {
	if d.Status != DispatchStatusDraft {
		return shared.NewInvalidStateError("Only draft dispatches can be modified")
	}
	items := make([]DispatchItem, 0, len(lines))
	for _, line := range lines {
		if line.LotID == uuid.Nil {
			return shared.NewInvalidInputError("Lot is required for every dispatch item")
		}
		if !line.Quantity.IsPositive() {
			return shared.NewInvalidInputError("Dispatch quantity must be positive")
		}
		items = append(items, DispatchItem{
			ID:         uuid.New(),
			DispatchID: d.ID,
			LotID:      line.LotID,
			Quantity:   line.Quantity,
			CreatedAt:  time.Now(),
		})
	}
	d.Items = items
	d.Touch()
	return nil
}

// LotIDs returns the distinct lots referenced by the items
func (d *Dispatch) LotIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(d.Items))
	ids := make([]uuid.UUID, 0, len(d.Items))
	for _, item := range d.Items {
		if _, ok := seen[item.LotID]; ok {
			continue
		}
		seen[item.LotID] = struct{}{}
		ids = append(ids, item.LotID)
	}
	return ids
}

// Update applies header changes to a draft dispatch
func (d *Dispatch) Update(dispatchDate *time.Time, notes *string) error {
	if d.Status != DispatchStatusDraft {
		return shared.NewInvalidStateError("Only draft dispatches can be modified")
	}
	if dispatchDate != nil {
		d.DispatchDate = *dispatchDate
	}
	if notes != nil {
		d.Notes = *notes
	}
	d.Touch()
	return nil
}

func (d *Dispatch) moveTo(target DispatchStatus, actorID uuid.UUID) error {
	if err := DispatchStatusTransitions.Check(d.Status, target); err != nil {
		return err
	}
	from := d.Status
	d.Status = target
	d.Touch()
	d.AddDomainEvent(NewDispatchStatusChangedEvent(d, from, actorID))
	return nil
}

// Confirm marks the dispatch confirmed. Stock is drawn by the caller in the same transaction.
func (d *Dispatch) Confirm(actorID uuid.UUID) error {
	if len(d.Items) == 0 {
		return shared.NewInvalidStateError("Cannot confirm a dispatch without items")
	}
	if err := d.moveTo(DispatchStatusConfirmed, actorID); err != nil {
		return err
	}
	now := time.Now()
	d.ConfirmedBy = &actorID
	d.ConfirmedAt = &now
	return nil
}

// Ship marks a confirmed dispatch shipped
func (d *Dispatch) Ship(actorID uuid.UUID) error {
	return d.moveTo(DispatchStatusShipped, actorID)
}

// Deliver marks a shipped dispatch delivered
func (d *Dispatch) Deliver(actorID uuid.UUID) error {
	return d.moveTo(DispatchStatusDelivered, actorID)
}

// Cancel cancels a dispatch that has not shipped
func (d *Dispatch) Cancel(actorID uuid.UUID) error {
	return d.moveTo(DispatchStatusCancelled, actorID)
}
