package cultivation

import (
	"fmt"
	"strings"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// GrowthStage is a phase in the cultivation lifecycle
type GrowthStage string

const (
	GrowthStageCloning    GrowthStage = "cloning"
	GrowthStageVegetative GrowthStage = "vegetative"
	GrowthStageFlowering  GrowthStage = "flowering"
	GrowthStageHarvest    GrowthStage = "harvest"
	GrowthStageDrying     GrowthStage = "drying"
	GrowthStagePackaging  GrowthStage = "packaging"
)

var growthStageOrder = []GrowthStage{
	GrowthStageCloning,
	GrowthStageVegetative,
	GrowthStageFlowering,
	GrowthStageHarvest,
	GrowthStageDrying,
	GrowthStagePackaging,
}

// AllGrowthStages returns the stages in lifecycle order
func AllGrowthStages() []GrowthStage {
	out := make([]GrowthStage, len(growthStageOrder))
	copy(out, growthStageOrder)
	return out
}

// Index returns the position of the stage in the lifecycle, or -1
func (s GrowthStage) Index() int {
	for i, st := range growthStageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// IsValid checks if the stage is a known GrowthStage
func (s GrowthStage) IsValid() bool {
	return s.Index() >= 0
}

// Next returns the stage after s; false when s is the last stage
func (s GrowthStage) Next() (GrowthStage, bool) {
	i := s.Index()
	if i < 0 || i == len(growthStageOrder)-1 {
		return "", false
	}
	return growthStageOrder[i+1], true
}

// Progress returns the lifecycle completion percentage reached at this stage
func (s GrowthStage) Progress() int {
	i := s.Index()
	if i < 0 {
		return 0
	}
	return i * 100 / (len(growthStageOrder) - 1)
}

// BatchStatus represents the lifecycle status of a batch
type BatchStatus string

const (
	BatchStatusActive    BatchStatus = "active"
	BatchStatusCompleted BatchStatus = "completed"
	BatchStatusArchived  BatchStatus = "archived"
)

// BatchStatusTransitions is the allowed status graph for batches
var BatchStatusTransitions = shared.NewTransitions("batch status", map[BatchStatus][]BatchStatus{
	BatchStatusActive:    {BatchStatusCompleted, BatchStatusArchived},
	BatchStatusCompleted: {BatchStatusArchived},
	BatchStatusArchived:  {},
})

// IsValid checks if the status is a valid BatchStatus
func (s BatchStatus) IsValid() bool {
	return BatchStatusTransitions.IsValid(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s BatchStatus) CanTransitionTo(target BatchStatus) bool {
	return BatchStatusTransitions.CanTransition(s, target)
}

// Batch is a production unit: plants of one strain in one growth cycle and room
type Batch struct {
	shared.BaseEntity
	shared.EventSource `gorm:"-" json:"-"`
	BatchNumber        string      `gorm:"type:varchar(50);not null;uniqueIndex" json:"batch_number"`
	Name               string      `gorm:"type:varchar(200);not null" json:"name"`
	StrainID           uuid.UUID   `gorm:"type:uuid;not null;index" json:"strain_id"`
	GrowthCycleID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"growth_cycle_id"`
	Room               string      `gorm:"type:varchar(100)" json:"room"`
	PlantCount         int         `gorm:"not null;default:0" json:"plant_count"`
	Progress           int         `gorm:"not null;default:0" json:"progress"`
	CurrentStage       GrowthStage `gorm:"type:varchar(20);not null;default:'cloning'" json:"current_stage"`
	Status             BatchStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	StartDate          *time.Time  `json:"start_date"`
	CreatedBy          *uuid.UUID  `gorm:"type:uuid" json:"created_by"`
}

// TableName returns the table name for GORM
func (Batch) TableName() string {
	return "batches"
}

// NewBatch creates a batch in the cloning stage
func NewBatch(batchNumber, name string, strainID, cycleID uuid.UUID, room string, plantCount int, startDate *time.Time, createdBy uuid.UUID) (*Batch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewInvalidInputError("Batch name cannot be empty")
	}
	if strainID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Strain is required")
	}
	if cycleID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Growth cycle is required")
	}
	if plantCount < 0 {
		return nil, shared.NewInvalidInputError("Plant count cannot be negative")
	}
	if batchNumber == "" {
		batchNumber = shared.GenerateNumber("B")
	}

	b := &Batch{
		BaseEntity:    shared.NewBaseEntity(),
		BatchNumber:   batchNumber,
		Name:          name,
		StrainID:      strainID,
		GrowthCycleID: cycleID,
		Room:          room,
		PlantCount:    plantCount,
		Progress:      0,
		CurrentStage:  GrowthStageCloning,
		Status:        BatchStatusActive,
		StartDate:     startDate,
	}
	if createdBy != uuid.Nil {
		b.CreatedBy = &createdBy
	}
	return b, nil
}

// Update applies the editable attributes; nil values are left unchanged
func (b *Batch) Update(name, room *string, plantCount, progress *int) error {
	if b.Status == BatchStatusArchived {
		return shared.NewInvalidStateError("Archived batches cannot be modified")
	}
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return shared.NewInvalidInputError("Batch name cannot be empty")
		}
		b.Name = n
	}
	if room != nil {
		b.Room = *room
	}
	if plantCount != nil {
		if *plantCount < 0 {
			return shared.NewInvalidInputError("Plant count cannot be negative")
		}
		b.PlantCount = *plantCount
	}
	if progress != nil {
		if *progress < 0 || *progress > 100 {
			return shared.NewInvalidInputError("Progress must be between 0 and 100")
		}
		b.Progress = *progress
	}
	b.Touch()
	return nil
}

// AdvanceStage moves the batch to the next growth stage
func (b *Batch) AdvanceStage(actorID uuid.UUID) (from, to GrowthStage, err error) {
	if b.Status != BatchStatusActive {
		return "", "", shared.NewInvalidStateError(fmt.Sprintf("Cannot advance stage of a %s batch", b.Status))
	}
	next, ok := b.CurrentStage.Next()
	if !ok {
		return "", "", shared.NewInvalidStateError(fmt.Sprintf("Batch is already in the final stage (%s)", b.CurrentStage))
	}
	from = b.CurrentStage
	b.CurrentStage = next
	b.Progress = next.Progress()
	b.Touch()
	b.AddDomainEvent(NewBatchStageAdvancedEvent(b, from, next, actorID))
	return from, next, nil
}

// ChangeStatus moves the batch along the status graph
func (b *Batch) ChangeStatus(target BatchStatus, actorID uuid.UUID) error {
	if err := BatchStatusTransitions.Check(b.Status, target); err != nil {
		return err
	}
	from := b.Status
	b.Status = target
	if target == BatchStatusCompleted {
		b.Progress = 100
	}
	b.Touch()
	b.AddDomainEvent(NewBatchStatusChangedEvent(b, from, target, actorID))
	return nil
}
