package qms

import (
	"strings"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// QualityRecordType classifies a quality record
type QualityRecordType string

const (
	QualityRecordTypeInspection  QualityRecordType = "inspection"
	QualityRecordTypeLabTest     QualityRecordType = "lab_test"
	QualityRecordTypeCalibration QualityRecordType = "calibration"
	QualityRecordTypeSanitation  QualityRecordType = "sanitation"
	QualityRecordTypeComplaint   QualityRecordType = "complaint"
)

// IsValid checks if the record type is known
func (t QualityRecordType) IsValid() bool {
	switch t {
	case QualityRecordTypeInspection, QualityRecordTypeLabTest, QualityRecordTypeCalibration,
		QualityRecordTypeSanitation, QualityRecordTypeComplaint:
		return true
	}
	return false
}

// QualityResult is the outcome recorded on a quality record
type QualityResult string

const (
	QualityResultPending QualityResult = "pending"
	QualityResultPass    QualityResult = "pass"
	QualityResultFail    QualityResult = "fail"
)

// QualityResultTransitions is the allowed result graph for quality records
var QualityResultTransitions = shared.NewTransitions("quality result", map[QualityResult][]QualityResult{
	QualityResultPending: {QualityResultPass, QualityResultFail},
	QualityResultPass:    {},
	QualityResultFail:    {},
})

// QualityRecord is a general quality document tied optionally to a batch or lot
type QualityRecord struct {
	shared.BaseEntity
	shared.EventSource `gorm:"-" json:"-"`
	RecordNumber       string            `gorm:"type:varchar(50);not null;uniqueIndex" json:"record_number"`
	RecordType         QualityRecordType `gorm:"type:varchar(30);not null;index" json:"record_type"`
	Title              string            `gorm:"type:varchar(200);not null" json:"title"`
	Description        string            `gorm:"type:text" json:"description"`
	BatchID            *uuid.UUID        `gorm:"type:uuid;index" json:"batch_id"`
	LotID              *uuid.UUID        `gorm:"type:uuid;index" json:"lot_id"`
	Result             QualityResult     `gorm:"type:varchar(20);not null;default:'pending';index" json:"result"`
	Attachments        shared.StringList `gorm:"type:text" json:"attachments"`
	RecordedAt         time.Time         `gorm:"not null;index" json:"recorded_at"`
	RecordedBy         *uuid.UUID        `gorm:"type:uuid" json:"recorded_by"`
	ConcludedBy        *uuid.UUID        `gorm:"type:uuid" json:"concluded_by"`
	ConcludedAt        *time.Time        `json:"concluded_at"`
}

// TableName returns the table name for GORM
func (QualityRecord) TableName() string {
	return "qms_records"
}

// NewQualityRecord opens a pending quality record
func NewQualityRecord(recordType QualityRecordType, title, description string, batchID, lotID *uuid.UUID, attachments []string, recordedBy uuid.UUID) (*QualityRecord, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewInvalidInputError("Record title cannot be empty")
	}
	if !recordType.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid record type")
	}
	r := &QualityRecord{
		BaseEntity:   shared.NewBaseEntity(),
		RecordNumber: shared.GenerateNumber("QR"),
		RecordType:   recordType,
		Title:        title,
		Description:  description,
		BatchID:      batchID,
		LotID:        lotID,
		Result:       QualityResultPending,
		Attachments:  shared.StringList(attachments),
		RecordedAt:   time.Now(),
	}
	if r.Attachments == nil {
		r.Attachments = shared.StringList{}
	}
	if recordedBy != uuid.Nil {
		r.RecordedBy = &recordedBy
	}
	return r, nil
}

// Update edits a pending record
func (r *QualityRecord) Update(title, description *string, attachments []string) error {
	if QualityResultTransitions.IsTerminal(r.Result) {
		return shared.NewInvalidStateError("Concluded quality records cannot be modified")
	}
	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			return shared.NewInvalidInputError("Record title cannot be empty")
		}
		r.Title = t
	}
	if description != nil {
		r.Description = *description
	}
	if attachments != nil {
		r.Attachments = shared.StringList(attachments)
	}
	r.Touch()
	return nil
}

// Conclude records the pass or fail outcome
func (r *QualityRecord) Conclude(result QualityResult, actorID uuid.UUID, note string) error {
	if err := QualityResultTransitions.Check(r.Result, result); err != nil {
		return err
	}
	now := time.Now()
	r.Result = result
	r.ConcludedBy = &actorID
	r.ConcludedAt = &now
	r.UpdatedAt = now
	r.AddDomainEvent(NewRecordEvent(EventTypeQualityRecordConcluded, AggregateTypeQualityRecord, r.ID, actorID, r.RecordNumber, string(r.Result), note))
	return nil
}
