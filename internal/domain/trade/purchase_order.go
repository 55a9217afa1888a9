package trade

import (
	"strings"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "draft"
	PurchaseOrderStatusSubmitted PurchaseOrderStatus = "submitted"
	PurchaseOrderStatusApproved  PurchaseOrderStatus = "approved"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "received"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// PurchaseOrderStatusTransitions is the allowed status graph for purchase orders
var PurchaseOrderStatusTransitions = shared.NewTransitions("purchase order status", map[PurchaseOrderStatus][]PurchaseOrderStatus{
	PurchaseOrderStatusDraft:     {PurchaseOrderStatusSubmitted, PurchaseOrderStatusCancelled},
	PurchaseOrderStatusSubmitted: {PurchaseOrderStatusApproved, PurchaseOrderStatusCancelled},
	PurchaseOrderStatusApproved:  {PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled},
	PurchaseOrderStatusReceived:  {},
	PurchaseOrderStatusCancelled: {},
})

// PurchaseOrderItem is a line of a purchase order
type PurchaseOrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"column:purchase_order_id;type:uuid;not null;index" json:"purchase_order_id"`
	Description string          `gorm:"type:varchar(500);not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit        string          `gorm:"type:varchar(20);not null" json:"unit"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"line_total"` // Quantity * UnitPrice
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// OrderLine is the input for a purchase order item
type OrderLine struct {
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
}

func newPurchaseOrderItem(orderID uuid.UUID, line OrderLine) (PurchaseOrderItem, error) {
	if strings.TrimSpace(line.Description) == "" {
		return PurchaseOrderItem{}, shared.NewInvalidInputError("Item description cannot be empty")
	}
	if !line.Quantity.IsPositive() {
		return PurchaseOrderItem{}, shared.NewInvalidInputError("Quantity must be positive")
	}
	if line.UnitPrice.IsNegative() {
		return PurchaseOrderItem{}, shared.NewInvalidInputError("Unit price cannot be negative")
	}
	unit := line.Unit
	if unit == "" {
		unit = "unit"
	}
	return PurchaseOrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		Description: strings.TrimSpace(line.Description),
		Quantity:    line.Quantity,
		Unit:        unit,
		UnitPrice:   line.UnitPrice,
		LineTotal:   line.Quantity.Mul(line.UnitPrice).Round(4),
		CreatedAt:   time.Now(),
	}, nil
}

// PurchaseOrder is an order placed with a supplier
type PurchaseOrder struct {
	shared.BaseEntity
	shared.EventSource `gorm:"-" json:"-"`
	PONumber           string              `gorm:"column:po_number;type:varchar(50);not null;uniqueIndex" json:"po_number"`
	SupplierID         uuid.UUID           `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Status             PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	OrderDate          time.Time           `gorm:"not null;index" json:"order_date"`
	ExpectedDate       *time.Time          `json:"expected_date"`
	TotalAmount        decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"total_amount"`
	Notes              string              `gorm:"type:text" json:"notes"`
	ApprovedBy         *uuid.UUID          `gorm:"type:uuid" json:"approved_by"`
	ApprovedAt         *time.Time          `json:"approved_at"`
	ReceivedAt         *time.Time          `json:"received_at"`
	CreatedBy          *uuid.UUID          `gorm:"type:uuid" json:"created_by"`
	Items              []PurchaseOrderItem `gorm:"foreignKey:OrderID;references:ID" json:"items"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a draft purchase order
func NewPurchaseOrder(supplierID uuid.UUID, orderDate *time.Time, expectedDate *time.Time, notes string, lines []OrderLine, createdBy uuid.UUID) (*PurchaseOrder, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Supplier is required")
	}
	date := time.Now()
	if orderDate != nil && !orderDate.IsZero() {
		date = *orderDate
	}
	po := &PurchaseOrder{
		BaseEntity:   shared.NewBaseEntity(),
		PONumber:     shared.GenerateNumber("PO"),
		SupplierID:   supplierID,
		Status:       PurchaseOrderStatusDraft,
		OrderDate:    date,
		ExpectedDate: expectedDate,
		Notes:        notes,
	}
	if createdBy != uuid.Nil {
		po.CreatedBy = &createdBy
	}
	if err := po.SetItems(lines); err != nil {
		return nil, err
	}
	return po, nil
}

// SetItems replaces the lines of a draft order and recalculates the total
func (po *PurchaseOrder) SetItems(lines []OrderLine) error {
	if po.Status != PurchaseOrderStatusDraft {
		return shared.NewInvalidStateError("Only draft purchase orders can be modified")
	}
	items := make([]PurchaseOrderItem, 0, len(lines))
	for _, line := range lines {
		item, err := newPurchaseOrderItem(po.ID, line)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	po.Items = items
	po.recalculateTotal()
	po.Touch()
	return nil
}

func (po *PurchaseOrder) recalculateTotal() {
	total := decimal.Zero
	for _, item := range po.Items {
		total = total.Add(item.LineTotal)
	}
	po.TotalAmount = total
}

// Update applies header changes to a draft order
func (po *PurchaseOrder) Update(expectedDate *time.Time, notes *string) error {
	if po.Status != PurchaseOrderStatusDraft {
		return shared.NewInvalidStateError("Only draft purchase orders can be modified")
	}
	if expectedDate != nil {
		po.ExpectedDate = expectedDate
	}
	if notes != nil {
		po.Notes = *notes
	}
	po.Touch()
	return nil
}

func (po *PurchaseOrder) moveTo(target PurchaseOrderStatus, actorID uuid.UUID) error {
	if err := PurchaseOrderStatusTransitions.Check(po.Status, target); err != nil {
		return err
	}
	from := po.Status
	po.Status = target
	po.Touch()
	po.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(po, from, actorID))
	return nil
}

// Submit sends a draft order for approval. Orders without items cannot be submitted.
func (po *PurchaseOrder) Submit(actorID uuid.UUID) error {
	if len(po.Items) == 0 {
		return shared.NewInvalidStateError("Cannot submit a purchase order without items")
	}
	return po.moveTo(PurchaseOrderStatusSubmitted, actorID)
}

// Approve approves a submitted order
func (po *PurchaseOrder) Approve(actorID uuid.UUID) error {
	if err := po.moveTo(PurchaseOrderStatusApproved, actorID); err != nil {
		return err
	}
	now := time.Now()
	po.ApprovedBy = &actorID
	po.ApprovedAt = &now
	return nil
}

// Receive marks an approved order as received
func (po *PurchaseOrder) Receive(actorID uuid.UUID) error {
	if err := po.moveTo(PurchaseOrderStatusReceived, actorID); err != nil {
		return err
	}
	now := time.Now()
	po.ReceivedAt = &now
	return nil
}

// Cancel cancels an order that has not been received
func (po *PurchaseOrder) Cancel(actorID uuid.UUID) error {
	return po.moveTo(PurchaseOrderStatusCancelled, actorID)
}
