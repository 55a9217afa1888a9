package cultivation

import (
	"time"

	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Batch DTOs
// =============================================================================

// CreateBatchRequest represents a request to start a new batch
type CreateBatchRequest struct {
	BatchNumber   string     `json:"batch_number" binding:"omitempty,max=50"`
	Name          string     `json:"name" binding:"required,min=1,max=200"`
	StrainID      uuid.UUID  `json:"strain_id" binding:"required"`
	GrowthCycleID uuid.UUID  `json:"growth_cycle_id" binding:"required"`
	Room          string     `json:"room" binding:"max=100"`
	PlantCount    int        `json:"plant_count" binding:"min=0"`
	StartDate     *time.Time `json:"start_date"`
}

// UpdateBatchRequest represents a partial batch update
type UpdateBatchRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=1,max=200"`
	Room       *string `json:"room" binding:"omitempty,max=100"`
	PlantCount *int    `json:"plant_count" binding:"omitempty,min=0"`
	Progress   *int    `json:"progress" binding:"omitempty,min=0,max=100"`
}

// AdvanceStageRequest moves a batch to its next growth stage
type AdvanceStageRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

// ChangeBatchStatusRequest moves a batch along its status graph
type ChangeBatchStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active completed archived"`
}

// BatchResponse represents a batch in API responses
type BatchResponse struct {
	ID            uuid.UUID  `json:"id"`
	BatchNumber   string     `json:"batch_number"`
	Name          string     `json:"name"`
	StrainID      uuid.UUID  `json:"strain_id"`
	StrainName    string     `json:"strain_name,omitempty"`
	GrowthCycleID uuid.UUID  `json:"growth_cycle_id"`
	Room          string     `json:"room"`
	PlantCount    int        `json:"plant_count"`
	Progress      int        `json:"progress"`
	CurrentStage  string     `json:"current_stage"`
	Status        string     `json:"status"`
	StartDate     *time.Time `json:"start_date"`
	CreatedBy     *uuid.UUID `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ToBatchResponse converts a batch to its response
func ToBatchResponse(b *cultivation.Batch) BatchResponse {
	return BatchResponse{
		ID:            b.ID,
		BatchNumber:   b.BatchNumber,
		Name:          b.Name,
		StrainID:      b.StrainID,
		GrowthCycleID: b.GrowthCycleID,
		Room:          b.Room,
		PlantCount:    b.PlantCount,
		Progress:      b.Progress,
		CurrentStage:  string(b.CurrentStage),
		Status:        string(b.Status),
		StartDate:     b.StartDate,
		CreatedBy:     b.CreatedBy,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// AdvanceStageResponse reports a stage change
type AdvanceStageResponse struct {
	Batch     BatchResponse          `json:"batch"`
	FromStage string                 `json:"from_stage"`
	ToStage   string                 `json:"to_stage"`
	Stage     cultivation.BatchStage `json:"stage"`
}

// =============================================================================
// Growth cycle DTOs
// =============================================================================

// CreateGrowthCycleRequest represents a request to plan a growth cycle
type CreateGrowthCycleRequest struct {
	Name            string     `json:"name" binding:"required,min=1,max=200"`
	Room            string     `json:"room" binding:"max=100"`
	StartDate       time.Time  `json:"start_date" binding:"required"`
	ExpectedEndDate *time.Time `json:"expected_end_date"`
	Notes           string     `json:"notes"`
}

// UpdateGrowthCycleRequest represents a partial growth cycle update
type UpdateGrowthCycleRequest struct {
	Name            *string    `json:"name" binding:"omitempty,min=1,max=200"`
	Room            *string    `json:"room" binding:"omitempty,max=100"`
	ExpectedEndDate *time.Time `json:"expected_end_date"`
	Notes           *string    `json:"notes"`
}

// =============================================================================
// Strain DTOs
// =============================================================================

// CreateStrainRequest represents a request to register a strain
type CreateStrainRequest struct {
	Name          string           `json:"name" binding:"required,min=1,max=200"`
	StrainType    string           `json:"strain_type" binding:"required,oneof=indica sativa hybrid"`
	THCPercentage *decimal.Decimal `json:"thc_percentage"`
	CBDPercentage *decimal.Decimal `json:"cbd_percentage"`
	Description   string           `json:"description"`
}

// UpdateStrainRequest represents a partial strain update
type UpdateStrainRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=200"`
	StrainType    *string          `json:"strain_type" binding:"omitempty,oneof=indica sativa hybrid"`
	THCPercentage *decimal.Decimal `json:"thc_percentage"`
	CBDPercentage *decimal.Decimal `json:"cbd_percentage"`
	Description   *string          `json:"description"`
}

// =============================================================================
// Stage DTOs
// =============================================================================

// CreateStageRequest represents a request to define a stage
type CreateStageRequest struct {
	Name                 string `json:"name" binding:"required,min=1,max=100"`
	StageType            string `json:"stage_type" binding:"required,oneof=cloning vegetative flowering harvest drying packaging"`
	Sequence             int    `json:"sequence"`
	ExpectedDurationDays int    `json:"expected_duration_days" binding:"min=0"`
	Description          string `json:"description"`
}

// UpdateStageRequest represents a partial stage update
type UpdateStageRequest struct {
	Name                 *string `json:"name" binding:"omitempty,min=1,max=100"`
	Sequence             *int    `json:"sequence"`
	ExpectedDurationDays *int    `json:"expected_duration_days" binding:"omitempty,min=0"`
	Description          *string `json:"description"`
	IsActive             *bool   `json:"is_active"`
}

// =============================================================================
// Daily log DTOs
// =============================================================================

// CreateDailyLogRequest represents a daily observation sheet
type CreateDailyLogRequest struct {
	BatchID      uuid.UUID        `json:"batch_id" binding:"required"`
	LogDate      *time.Time       `json:"log_date"`
	Temperature  *decimal.Decimal `json:"temperature"`
	Humidity     *decimal.Decimal `json:"humidity"`
	PH           *decimal.Decimal `json:"ph"`
	EC           *decimal.Decimal `json:"ec"`
	WateringML   *int             `json:"watering_ml" binding:"omitempty,min=0"`
	Observations *string          `json:"observations"`
}

// UpdateDailyLogRequest represents a partial daily log update
type UpdateDailyLogRequest struct {
	Temperature  *decimal.Decimal `json:"temperature"`
	Humidity     *decimal.Decimal `json:"humidity"`
	PH           *decimal.Decimal `json:"ph"`
	EC           *decimal.Decimal `json:"ec"`
	WateringML   *int             `json:"watering_ml" binding:"omitempty,min=0"`
	Observations *string          `json:"observations"`
}

func (r UpdateDailyLogRequest) readings() cultivation.DailyLogReadings {
	return cultivation.DailyLogReadings{
		Temperature:  r.Temperature,
		Humidity:     r.Humidity,
		PH:           r.PH,
		EC:           r.EC,
		WateringML:   r.WateringML,
		Observations: r.Observations,
	}
}

// =============================================================================
// Post-harvest DTOs
// =============================================================================

// CreatePackagingRequest starts a packaging run
type CreatePackagingRequest struct {
	BatchID      uuid.UUID        `json:"batch_id" binding:"required"`
	LotID        *uuid.UUID       `json:"lot_id"`
	PackageType  string           `json:"package_type" binding:"required,max=50"`
	PackageCount *int             `json:"package_count" binding:"omitempty,min=0"`
	UnitWeight   *decimal.Decimal `json:"unit_weight"`
	Unit         *string          `json:"unit" binding:"omitempty,max=20"`
	LabelCode    *string          `json:"label_code" binding:"omitempty,max=100"`
	PackagedAt   *time.Time       `json:"packaged_at"`
	Notes        *string          `json:"notes"`
}

// UpdatePackagingRequest is a partial packaging update
type UpdatePackagingRequest struct {
	LotID        *uuid.UUID       `json:"lot_id"`
	PackageType  *string          `json:"package_type" binding:"omitempty,min=1,max=50"`
	PackageCount *int             `json:"package_count" binding:"omitempty,min=0"`
	UnitWeight   *decimal.Decimal `json:"unit_weight"`
	Unit         *string          `json:"unit" binding:"omitempty,max=20"`
	LabelCode    *string          `json:"label_code" binding:"omitempty,max=100"`
	PackagedAt   *time.Time       `json:"packaged_at"`
	Notes        *string          `json:"notes"`
}

func (r UpdatePackagingRequest) input() cultivation.PackagingInput {
	return cultivation.PackagingInput{
		LotID:        r.LotID,
		PackageType:  r.PackageType,
		PackageCount: r.PackageCount,
		UnitWeight:   r.UnitWeight,
		Unit:         r.Unit,
		LabelCode:    r.LabelCode,
		PackagedAt:   r.PackagedAt,
		Notes:        r.Notes,
	}
}

// CreateFinishedGoodRequest registers finished product in quarantine
type CreateFinishedGoodRequest struct {
	BatchID     uuid.UUID       `json:"batch_id" binding:"required"`
	LotID       *uuid.UUID      `json:"lot_id"`
	ProductName string          `json:"product_name" binding:"required,max=200"`
	ProductType string          `json:"product_type" binding:"max=50"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Unit        string          `json:"unit" binding:"max=20"`
}

// UpdateFinishedGoodRequest is a partial finished good update
type UpdateFinishedGoodRequest struct {
	ProductName *string          `json:"product_name" binding:"omitempty,min=1,max=200"`
	ProductType *string          `json:"product_type" binding:"omitempty,max=50"`
	Quantity    *decimal.Decimal `json:"quantity"`
}

// FinishedGoodStatusRequest moves a finished good to a new release status
type FinishedGoodStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=released rejected recalled"`
	Reason string `json:"reason"`
}

// CreateWasteRequest records a disposal
type CreateWasteRequest struct {
	BatchID        *uuid.UUID      `json:"batch_id"`
	WasteType      string          `json:"waste_type" binding:"required,oneof=plant_material trim roots failed_product other"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	Unit           *string         `json:"unit" binding:"omitempty,max=20"`
	DisposalMethod string          `json:"disposal_method" binding:"required,oneof=compost incineration grinding landfill"`
	Reason         *string         `json:"reason"`
	DisposedAt     *time.Time      `json:"disposed_at"`
	WitnessedBy    *uuid.UUID      `json:"witnessed_by"`
}

// UpdateWasteRequest is a partial waste record update
type UpdateWasteRequest struct {
	WasteType      *string          `json:"waste_type" binding:"omitempty,oneof=plant_material trim roots failed_product other"`
	Quantity       *decimal.Decimal `json:"quantity"`
	Unit           *string          `json:"unit" binding:"omitempty,max=20"`
	DisposalMethod *string          `json:"disposal_method" binding:"omitempty,oneof=compost incineration grinding landfill"`
	Reason         *string          `json:"reason"`
	DisposedAt     *time.Time       `json:"disposed_at"`
	WitnessedBy    *uuid.UUID       `json:"witnessed_by"`
}

func (r UpdateWasteRequest) input() cultivation.WasteInput {
	in := cultivation.WasteInput{
		Quantity:    r.Quantity,
		Unit:        r.Unit,
		Reason:      r.Reason,
		DisposedAt:  r.DisposedAt,
		WitnessedBy: r.WitnessedBy,
	}
	if r.WasteType != nil {
		t := cultivation.WasteType(*r.WasteType)
		in.WasteType = &t
	}
	if r.DisposalMethod != nil {
		m := cultivation.DisposalMethod(*r.DisposalMethod)
		in.DisposalMethod = &m
	}
	return in
}

// CreateStageReviewRequest opens a review of a batch stage
type CreateStageReviewRequest struct {
	BatchID  uuid.UUID `json:"batch_id" binding:"required"`
	Stage    string    `json:"stage" binding:"required,oneof=cloning vegetative flowering harvest drying packaging"`
	Comments string    `json:"comments"`
}

// UpdateStageReviewRequest edits the comments of a pending review
type UpdateStageReviewRequest struct {
	Comments string `json:"comments" binding:"required"`
}

// DecideStageReviewRequest approves or rejects a stage review
type DecideStageReviewRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected"`
	Comments string `json:"comments"`
}
