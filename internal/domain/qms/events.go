package qms

import (
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	AggregateTypeEbr           = "EbrRecord"
	AggregateTypeDeviation     = "Deviation"
	AggregateTypeCapa          = "Capa"
	AggregateTypeAudit         = "Audit"
	AggregateTypeSop           = "Sop"
	AggregateTypeTraining      = "TrainingRecord"
	AggregateTypeQualityRecord = "QualityRecord"

	EventTypeEbrCreated             = "ebr.created"
	EventTypeEbrApproved            = "ebr.approved"
	EventTypeEbrRejected            = "ebr.rejected"
	EventTypeEbrReopened            = "ebr.reopened"
	EventTypeDeviationReported      = "deviation.reported"
	EventTypeDeviationResolved      = "deviation.resolved"
	EventTypeDeviationClosed        = "deviation.closed"
	EventTypeCapaCompleted          = "capa.completed"
	EventTypeCapaVerified           = "capa.verified"
	EventTypeAuditCompleted         = "audit.completed"
	EventTypeSopApproved            = "sop.approved"
	EventTypeTrainingCompleted      = "training.completed"
	EventTypeQualityRecordConcluded = "quality_record.concluded"
)

// EbrEvent is raised on eBR lifecycle changes
type EbrEvent struct {
	shared.BaseDomainEvent
	EbrNumber        string           `json:"ebr_number"`
	BatchID          uuid.UUID        `json:"batch_id"`
	ComplianceStatus ComplianceStatus `json:"compliance_status"`
	Reason           string           `json:"reason,omitempty"`
}

// NewEbrEvent creates an EbrEvent of the given type
func NewEbrEvent(eventType string, r *EbrRecord, actorID uuid.UUID, reason string) *EbrEvent {
	return &EbrEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(eventType, AggregateTypeEbr, r.ID, actorID),
		EbrNumber:        r.EbrNumber,
		BatchID:          r.BatchID,
		ComplianceStatus: r.ComplianceStatus,
		Reason:           reason,
	}
}

// RecordEvent is raised when a QMS record reaches a milestone status
type RecordEvent struct {
	shared.BaseDomainEvent
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Note      string `json:"note,omitempty"`
}

// NewRecordEvent creates a RecordEvent
func NewRecordEvent(eventType, aggType string, id, actorID uuid.UUID, reference, status, note string) *RecordEvent {
	return &RecordEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggType, id, actorID),
		Reference:       reference,
		Status:          status,
		Note:            note,
	}
}
