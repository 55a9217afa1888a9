package cultivation

import (
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailyLog is an operator's daily observation sheet for a batch
type DailyLog struct {
	shared.BaseEntity
	BatchID      uuid.UUID           `gorm:"type:uuid;not null;index" json:"batch_id"`
	LogDate      time.Time           `gorm:"not null;index" json:"log_date"`
	Temperature  decimal.NullDecimal `gorm:"type:decimal(6,2)" json:"temperature"`
	Humidity     decimal.NullDecimal `gorm:"type:decimal(6,2)" json:"humidity"`
	PH           decimal.NullDecimal `gorm:"column:ph;type:decimal(4,2)" json:"ph"`
	EC           decimal.NullDecimal `gorm:"column:ec;type:decimal(6,2)" json:"ec"`
	WateringML   *int                `gorm:"column:watering_ml" json:"watering_ml"`
	Observations string              `gorm:"type:text" json:"observations"`
	LoggedBy     *uuid.UUID          `gorm:"type:uuid" json:"logged_by"`
}

// TableName returns the table name for GORM
func (DailyLog) TableName() string {
	return "daily_logs"
}

// DailyLogReadings holds the optional measured values of a daily log
type DailyLogReadings struct {
	Temperature  *decimal.Decimal
	Humidity     *decimal.Decimal
	PH           *decimal.Decimal
	EC           *decimal.Decimal
	WateringML   *int
	Observations *string
}

// NewDailyLog creates a daily log for a batch
func NewDailyLog(batchID uuid.UUID, logDate time.Time, readings DailyLogReadings, loggedBy uuid.UUID) (*DailyLog, error) {
	if batchID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Batch is required")
	}
	if logDate.IsZero() {
		logDate = time.Now()
	}
	l := &DailyLog{
		BaseEntity: shared.NewBaseEntity(),
		BatchID:    batchID,
		LogDate:    logDate,
	}
	if err := l.Apply(readings); err != nil {
		return nil, err
	}
	if loggedBy != uuid.Nil {
		l.LoggedBy = &loggedBy
	}
	return l, nil
}

// Apply sets the readings that are present
func (l *DailyLog) Apply(r DailyLogReadings) error {
	if r.Humidity != nil && (r.Humidity.IsNegative() || r.Humidity.GreaterThan(decimal.NewFromInt(100))) {
		return shared.NewInvalidInputError("Humidity must be between 0 and 100")
	}
	if r.PH != nil && (r.PH.IsNegative() || r.PH.GreaterThan(decimal.NewFromInt(14))) {
		return shared.NewInvalidInputError("pH must be between 0 and 14")
	}
	if r.WateringML != nil && *r.WateringML < 0 {
		return shared.NewInvalidInputError("Watering volume cannot be negative")
	}
	if r.Temperature != nil {
		l.Temperature = decimal.NewNullDecimal(*r.Temperature)
	}
	if r.Humidity != nil {
		l.Humidity = decimal.NewNullDecimal(*r.Humidity)
	}
	if r.PH != nil {
		l.PH = decimal.NewNullDecimal(*r.PH)
	}
	if r.EC != nil {
		l.EC = decimal.NewNullDecimal(*r.EC)
	}
	if r.WateringML != nil {
		l.WateringML = r.WateringML
	}
	if r.Observations != nil {
		l.Observations = *r.Observations
	}
	l.Touch()
	return nil
}
