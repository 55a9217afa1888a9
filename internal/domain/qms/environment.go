package qms

import (
	"strings"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AlertThresholds are the acceptable ranges for environmental readings.
// A zero bound is not checked.
type AlertThresholds struct {
	MinTemperature decimal.Decimal
	MaxTemperature decimal.Decimal
	MinHumidity    decimal.Decimal
	MaxHumidity    decimal.Decimal
	MaxCO2         decimal.Decimal
}

func outside(v decimal.NullDecimal, lo, hi decimal.Decimal) bool {
	if !v.Valid {
		return false
	}
	if !lo.IsZero() && v.Decimal.LessThan(lo) {
		return true
	}
	if !hi.IsZero() && v.Decimal.GreaterThan(hi) {
		return true
	}
	return false
}

// EnvironmentalReading is a sensor or manual reading for a room
type EnvironmentalReading struct {
	shared.BaseEntity
	Room        string              `gorm:"type:varchar(100);not null;index" json:"room"`
	BatchID     *uuid.UUID          `gorm:"type:uuid;index" json:"batch_id"`
	Temperature decimal.NullDecimal `gorm:"type:decimal(6,2)" json:"temperature"`
	Humidity    decimal.NullDecimal `gorm:"type:decimal(5,2)" json:"humidity"`
	CO2PPM      decimal.NullDecimal `gorm:"column:co2_ppm;type:decimal(8,2)" json:"co2_ppm"`
	VPD         decimal.NullDecimal `gorm:"column:vpd;type:decimal(5,2)" json:"vpd"`
	RecordedAt  time.Time           `gorm:"not null;index" json:"recorded_at"`
	RecordedBy  *uuid.UUID          `gorm:"type:uuid" json:"recorded_by"`
	IsAlert     bool                `gorm:"not null;default:false;index" json:"is_alert"`
}

// TableName returns the table name for GORM
func (EnvironmentalReading) TableName() string {
	return "environmental_readings"
}

// NewEnvironmentalReading creates a reading and flags it against the thresholds
func NewEnvironmentalReading(room string, batchID *uuid.UUID, temperature, humidity, co2, vpd decimal.NullDecimal, recordedAt *time.Time, recordedBy uuid.UUID, th AlertThresholds) (*EnvironmentalReading, error) {
	room = strings.TrimSpace(room)
	if room == "" {
		return nil, shared.NewInvalidInputError("Room is required")
	}
	if humidity.Valid && (humidity.Decimal.IsNegative() || humidity.Decimal.GreaterThan(decimal.NewFromInt(100))) {
		return nil, shared.NewInvalidInputError("Humidity must be between 0 and 100")
	}
	if co2.Valid && co2.Decimal.IsNegative() {
		return nil, shared.NewInvalidInputError("CO2 cannot be negative")
	}
	at := time.Now()
	if recordedAt != nil && !recordedAt.IsZero() {
		at = *recordedAt
	}
	r := &EnvironmentalReading{
		BaseEntity:  shared.NewBaseEntity(),
		Room:        room,
		BatchID:     batchID,
		Temperature: temperature,
		Humidity:    humidity,
		CO2PPM:      co2,
		VPD:         vpd,
		RecordedAt:  at,
	}
	if recordedBy != uuid.Nil {
		r.RecordedBy = &recordedBy
	}
	r.IsAlert = r.Exceeds(th)
	return r, nil
}

// Exceeds reports whether any value is outside the thresholds
func (r *EnvironmentalReading) Exceeds(th AlertThresholds) bool {
	return outside(r.Temperature, th.MinTemperature, th.MaxTemperature) ||
		outside(r.Humidity, th.MinHumidity, th.MaxHumidity) ||
		outside(r.CO2PPM, decimal.Zero, th.MaxCO2)
}

// RoomSummary is the latest state of one room
type RoomSummary struct {
	Room          string                `json:"room"`
	ReadingCount  int64                 `json:"reading_count"`
	AlertCount    int64                 `json:"alert_count"`
	LatestReading *EnvironmentalReading `json:"latest_reading"`
}
