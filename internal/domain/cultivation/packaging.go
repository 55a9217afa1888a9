package cultivation

import (
	"strings"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PackagingStatus tracks a packaging run
type PackagingStatus string

const (
	PackagingStatusInProgress PackagingStatus = "in_progress"
	PackagingStatusCompleted  PackagingStatus = "completed"
)

// PackagingStatusTransitions is the allowed status graph for packaging runs
var PackagingStatusTransitions = shared.NewTransitions("packaging status", map[PackagingStatus][]PackagingStatus{
	PackagingStatusInProgress: {PackagingStatusCompleted},
	PackagingStatusCompleted:  {},
})

// PackagingRecord is one packaging run of a batch's product
type PackagingRecord struct {
	shared.BaseEntity
	BatchID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"batch_id"`
	LotID        *uuid.UUID      `gorm:"type:uuid;index" json:"lot_id"`
	PackageType  string          `gorm:"type:varchar(50);not null" json:"package_type"`
	PackageCount int             `gorm:"not null" json:"package_count"`
	UnitWeight   decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"unit_weight"`
	TotalWeight  decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"total_weight"`
	Unit         string          `gorm:"type:varchar(20);not null" json:"unit"`
	LabelCode    string          `gorm:"type:varchar(100);index" json:"label_code"`
	Status       PackagingStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PackagedAt   time.Time       `gorm:"not null;index" json:"packaged_at"`
	CompletedAt  *time.Time      `json:"completed_at"`
	Notes        string          `gorm:"type:text" json:"notes"`
	PackagedBy   *uuid.UUID      `gorm:"type:uuid" json:"packaged_by"`
}

// TableName returns the table name for GORM
func (PackagingRecord) TableName() string {
	return "packaging_records"
}

// PackagingInput holds the attributes of a packaging run
type PackagingInput struct {
	LotID        *uuid.UUID
	PackageType  *string
	PackageCount *int
	UnitWeight   *decimal.Decimal
	Unit         *string
	LabelCode    *string
	PackagedAt   *time.Time
	Notes        *string
}

// NewPackagingRecord starts a packaging run for a batch
func NewPackagingRecord(batchID uuid.UUID, in PackagingInput, packagedBy uuid.UUID) (*PackagingRecord, error) {
	if batchID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Batch is required")
	}
	if in.PackageType == nil || strings.TrimSpace(*in.PackageType) == "" {
		return nil, shared.NewInvalidInputError("Package type is required")
	}
	p := &PackagingRecord{
		BaseEntity: shared.NewBaseEntity(),
		BatchID:    batchID,
		Unit:       "g",
		Status:     PackagingStatusInProgress,
		PackagedAt: time.Now(),
	}
	if err := p.Apply(in); err != nil {
		return nil, err
	}
	if packagedBy != uuid.Nil {
		p.PackagedBy = &packagedBy
	}
	return p, nil
}

// Apply sets the attributes present in in and recomputes the total weight
func (p *PackagingRecord) Apply(in PackagingInput) error {
	if p.Status == PackagingStatusCompleted {
		return shared.NewInvalidStateError("Completed packaging runs cannot be modified")
	}
	if in.PackageCount != nil && *in.PackageCount < 0 {
		return shared.NewInvalidInputError("Package count cannot be negative")
	}
	if in.UnitWeight != nil && in.UnitWeight.IsNegative() {
		return shared.NewInvalidInputError("Unit weight cannot be negative")
	}
	if in.PackageType != nil {
		t := strings.TrimSpace(*in.PackageType)
		if t == "" {
			return shared.NewInvalidInputError("Package type is required")
		}
		p.PackageType = t
	}
	if in.LotID != nil {
		p.LotID = in.LotID
	}
	if in.PackageCount != nil {
		p.PackageCount = *in.PackageCount
	}
	if in.UnitWeight != nil {
		p.UnitWeight = *in.UnitWeight
	}
	if in.Unit != nil && *in.Unit != "" {
		p.Unit = *in.Unit
	}
	if in.LabelCode != nil {
		p.LabelCode = strings.TrimSpace(*in.LabelCode)
	}
	if in.PackagedAt != nil && !in.PackagedAt.IsZero() {
		p.PackagedAt = *in.PackagedAt
	}
	if in.Notes != nil {
		p.Notes = *in.Notes
	}
	p.TotalWeight = p.UnitWeight.Mul(decimal.NewFromInt(int64(p.PackageCount)))
	p.Touch()
	return nil
}

// Complete closes the packaging run. At least one package is required.
func (p *PackagingRecord) Complete() error {
	if err := PackagingStatusTransitions.Check(p.Status, PackagingStatusCompleted); err != nil {
		return err
	}
	if p.PackageCount == 0 {
		return shared.NewInvalidStateError("A packaging run needs at least one package")
	}
	now := time.Now()
	p.Status = PackagingStatusCompleted
	p.CompletedAt = &now
	p.UpdatedAt = now
	return nil
}

// FinishedGoodStatus is the release state of a finished good
type FinishedGoodStatus string

const (
	FinishedGoodStatusQuarantine FinishedGoodStatus = "quarantine"
	FinishedGoodStatusReleased   FinishedGoodStatus = "released"
	FinishedGoodStatusRejected   FinishedGoodStatus = "rejected"
	FinishedGoodStatusRecalled   FinishedGoodStatus = "recalled"
)

// FinishedGoodStatusTransitions is the allowed status graph for finished goods
var FinishedGoodStatusTransitions = shared.NewTransitions("finished good status", map[FinishedGoodStatus][]FinishedGoodStatus{
	FinishedGoodStatusQuarantine: {FinishedGoodStatusReleased, FinishedGoodStatusRejected},
	FinishedGoodStatusReleased:   {FinishedGoodStatusRecalled},
	FinishedGoodStatusRejected:   {},
	FinishedGoodStatusRecalled:   {},
})

// FinishedGood is sellable product held in quarantine until released
type FinishedGood struct {
	shared.BaseEntity
	shared.EventSource `gorm:"-" json:"-"`
	BatchID            uuid.UUID          `gorm:"type:uuid;not null;index" json:"batch_id"`
	LotID              *uuid.UUID         `gorm:"type:uuid;index" json:"lot_id"`
	ProductName        string             `gorm:"type:varchar(200);not null" json:"product_name"`
	ProductType        string             `gorm:"type:varchar(50)" json:"product_type"`
	Quantity           decimal.Decimal    `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit               string             `gorm:"type:varchar(20);not null" json:"unit"`
	Status             FinishedGoodStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	StatusReason       string             `gorm:"type:text" json:"status_reason"`
	ReleasedBy         *uuid.UUID         `gorm:"type:uuid" json:"released_by"`
	ReleasedAt         *time.Time         `json:"released_at"`
	CreatedBy          *uuid.UUID         `gorm:"type:uuid" json:"created_by"`
}

// TableName returns the table name for GORM
func (FinishedGood) TableName() string {
	return "finished_goods"
}

// NewFinishedGood registers finished product in quarantine
func NewFinishedGood(batchID uuid.UUID, lotID *uuid.UUID, productName, productType string, quantity decimal.Decimal, unit string, createdBy uuid.UUID) (*FinishedGood, error) {
	if batchID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Batch is required")
	}
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return nil, shared.NewInvalidInputError("Product name cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewInvalidInputError("Quantity must be positive")
	}
	if unit == "" {
		unit = "g"
	}
	g := &FinishedGood{
		BaseEntity:  shared.NewBaseEntity(),
		BatchID:     batchID,
		LotID:       lotID,
		ProductName: productName,
		ProductType: productType,
		Quantity:    quantity,
		Unit:        unit,
		Status:      FinishedGoodStatusQuarantine,
	}
	if createdBy != uuid.Nil {
		g.CreatedBy = &createdBy
	}
	return g, nil
}

// Update edits a finished good still in quarantine
func (g *FinishedGood) Update(productName, productType *string, quantity *decimal.Decimal) error {
	if g.Status != FinishedGoodStatusQuarantine {
		return shared.NewInvalidStateError("Only quarantined goods can be modified")
	}
	if productName != nil {
		n := strings.TrimSpace(*productName)
		if n == "" {
			return shared.NewInvalidInputError("Product name cannot be empty")
		}
		g.ProductName = n
	}
	if productType != nil {
		g.ProductType = *productType
	}
	if quantity != nil {
		if !quantity.IsPositive() {
			return shared.NewInvalidInputError("Quantity must be positive")
		}
		g.Quantity = *quantity
	}
	g.Touch()
	return nil
}

// ChangeStatus moves the good along its release graph. Rejections and recalls need a reason.
func (g *FinishedGood) ChangeStatus(to FinishedGoodStatus, reason string, actorID uuid.UUID) error {
	if err := FinishedGoodStatusTransitions.Check(g.Status, to); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if (to == FinishedGoodStatusRejected || to == FinishedGoodStatusRecalled) && reason == "" {
		return shared.NewInvalidInputError("A reason is required")
	}
	from := g.Status
	now := time.Now()
	if to == FinishedGoodStatusReleased {
		g.ReleasedBy = &actorID
		g.ReleasedAt = &now
	}
	g.Status = to
	g.StatusReason = reason
	g.UpdatedAt = now
	g.AddDomainEvent(NewFinishedGoodStatusChangedEvent(g, from, actorID))
	return nil
}
