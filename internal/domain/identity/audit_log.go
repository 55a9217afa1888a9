package identity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only record of a user action
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID    *uuid.UUID `gorm:"type:uuid;index" json:"actor_id"`
	Action     string     `gorm:"type:varchar(100);not null;index" json:"action"`
	EntityType string     `gorm:"type:varchar(50);not null;index" json:"entity_type"`
	EntityID   *uuid.UUID `gorm:"type:uuid;index" json:"entity_id"`
	Details    string     `gorm:"type:text" json:"details"`
	CreatedAt  time.Time  `gorm:"not null;index" json:"created_at"`
}

// TableName returns the table name for GORM
func (AuditLog) TableName() string {
	return "audit_logs"
}

// NewAuditLog creates an audit entry. details is stored as JSON.
func NewAuditLog(actorID uuid.UUID, action, entityType string, entityID uuid.UUID, details any) *AuditLog {
	entry := &AuditLog{
		ID:         uuid.New(),
		Action:     action,
		EntityType: entityType,
		CreatedAt:  time.Now(),
	}
	if actorID != uuid.Nil {
		entry.ActorID = &actorID
	}
	if entityID != uuid.Nil {
		entry.EntityID = &entityID
	}
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			entry.Details = string(b)
		}
	}
	return entry
}
