package qms

import (
	"time"

	"github.com/cultivo/backend/internal/domain/qms"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// eBR DTOs
// =============================================================================

// CreateEbrRecordRequest opens an eBR for a batch
type CreateEbrRecordRequest struct {
	BatchID uuid.UUID `json:"batch_id" binding:"required"`
}

// ApproveEbrRequest approves an eBR record
type ApproveEbrRequest struct {
	Reason string `json:"reason" binding:"max=2000"`
}

// RejectEbrRequest rejects an eBR record
type RejectEbrRequest struct {
	Reason               string `json:"reason" binding:"required,max=2000"`
	RequiresReprocessing bool   `json:"requires_reprocessing"`
}

// ReopenEbrRequest returns a decided eBR to pending
type ReopenEbrRequest struct {
	Reason string `json:"reason" binding:"required,max=2000"`
}

// ComplianceScoreRequest scores an eBR before its final disposition
type ComplianceScoreRequest struct {
	Score       decimal.Decimal `json:"score" binding:"required"`
	Conditional bool            `json:"conditional"`
	Notes       string          `json:"notes" binding:"max=2000"`
}

// CompletenessRequest updates the completeness flags of an eBR
type CompletenessRequest struct {
	PackagingComplete        *bool `json:"packaging_complete"`
	StageReviewsComplete     *bool `json:"stage_reviews_complete"`
	FailedHygieneChecksCount *int  `json:"failed_hygiene_checks_count" binding:"omitempty,min=0"`
}

// EbrRecordResponse is an eBR record with display fields
type EbrRecordResponse struct {
	qms.EbrRecord
	BatchNumber  string `json:"batch_number"`
	CreatorName  string `json:"creator_name"`
	ApproverName string `json:"approver_name"`
}

// EbrDetailsResponse is an eBR record with its checklist
type EbrDetailsResponse struct {
	Record    EbrRecordResponse   `json:"record"`
	Checklist []qms.ChecklistItem `json:"checklist"`
}

// AddChecklistItemRequest adds a review item to an eBR
type AddChecklistItemRequest struct {
	EbrID         uuid.UUID `json:"ebr_id" binding:"required"`
	ChecklistItem string    `json:"checklist_item" binding:"required,max=2000"`
	ItemCategory  string    `json:"item_category" binding:"required,oneof=documentation deviations environmental quality packaging testing"`
	IsCompliant   *bool     `json:"is_compliant"`
	Comments      string    `json:"comments"`
	EvidenceURLs  []string  `json:"evidence_urls" binding:"omitempty,dive,url"`
}

// UpdateChecklistItemRequest is a partial checklist item update
type UpdateChecklistItemRequest struct {
	IsCompliant  *bool      `json:"is_compliant"`
	Comments     *string    `json:"comments"`
	EvidenceURLs *[]string  `json:"evidence_urls" binding:"omitempty,dive,url"`
	ReviewedAt   *time.Time `json:"reviewed_at"`
}

// EvidenceUploadRequest asks for an upload URL for a checklist evidence file
type EvidenceUploadRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
}

// EvidenceUploadResponse carries the presigned upload target
type EvidenceUploadResponse struct {
	UploadURL  string    `json:"upload_url"`
	ObjectURL  string    `json:"object_url"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// EbrSummary is the compact record listing of the ops endpoint
type EbrSummary struct {
	ID        uuid.UUID `json:"id"`
	EbrNumber string    `json:"ebr_number"`
	BatchName string    `json:"batch_name"`
	CreatedAt time.Time `json:"created_at"`
}

// =============================================================================
// Deviation DTOs
// =============================================================================

// CreateDeviationRequest reports a deviation
type CreateDeviationRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description"`
	Severity    string     `json:"severity" binding:"required,oneof=minor major critical"`
	BatchID     *uuid.UUID `json:"batch_id"`
}

// UpdateDeviationRequest is a partial deviation update
type UpdateDeviationRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Severity    *string `json:"severity" binding:"omitempty,oneof=minor major critical"`
}

// ResolveDeviationRequest records the outcome of an investigation
type ResolveDeviationRequest struct {
	RootCause  string `json:"root_cause"`
	Resolution string `json:"resolution" binding:"required"`
}

// =============================================================================
// CAPA DTOs
// =============================================================================

// CreateCapaRequest raises a CAPA
type CreateCapaRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description"`
	ActionType  string     `json:"action_type" binding:"required,oneof=corrective preventive"`
	DeviationID *uuid.UUID `json:"deviation_id"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

// UpdateCapaRequest is a partial CAPA update
type UpdateCapaRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

// CapaNotesRequest carries the notes of a completion or verification
type CapaNotesRequest struct {
	Notes string `json:"notes"`
}

// =============================================================================
// Audit DTOs
// =============================================================================

// CreateAuditRequest schedules an audit
type CreateAuditRequest struct {
	Title         string    `json:"title" binding:"required,max=200"`
	AuditType     string    `json:"audit_type" binding:"required,oneof=internal external regulatory supplier"`
	Scope         string    `json:"scope"`
	ScheduledDate time.Time `json:"scheduled_date" binding:"required"`
	LeadAuditor   string    `json:"lead_auditor" binding:"max=200"`
}

// UpdateAuditRequest is a partial audit update
type UpdateAuditRequest struct {
	Title         *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Scope         *string    `json:"scope"`
	LeadAuditor   *string    `json:"lead_auditor" binding:"omitempty,max=200"`
	ScheduledDate *time.Time `json:"scheduled_date"`
}

// CompleteAuditRequest records audit findings
type CompleteAuditRequest struct {
	Findings string           `json:"findings"`
	Score    *decimal.Decimal `json:"score"`
}

// =============================================================================
// SOP DTOs
// =============================================================================

// CreateSopRequest drafts an SOP
type CreateSopRequest struct {
	DocumentNumber string     `json:"document_number" binding:"required,max=50"`
	Title          string     `json:"title" binding:"required,max=200"`
	Version        string     `json:"version" binding:"max=20"`
	Category       string     `json:"category" binding:"max=100"`
	Content        string     `json:"content"`
	EffectiveDate  *time.Time `json:"effective_date"`
}

// UpdateSopRequest is a partial update of a draft SOP
type UpdateSopRequest struct {
	Title         *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Version       *string    `json:"version" binding:"omitempty,max=20"`
	Category      *string    `json:"category" binding:"omitempty,max=100"`
	Content       *string    `json:"content"`
	EffectiveDate *time.Time `json:"effective_date"`
}

// =============================================================================
// Training DTOs
// =============================================================================

// CreateTrainingRequest assigns a training to a user
type CreateTrainingRequest struct {
	UserID  uuid.UUID  `json:"user_id" binding:"required"`
	SopID   *uuid.UUID `json:"sop_id"`
	Title   string     `json:"title" binding:"required,max=200"`
	DueDate *time.Time `json:"due_date"`
	Notes   string     `json:"notes"`
}

// UpdateTrainingRequest is a partial training update
type UpdateTrainingRequest struct {
	Title   *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Notes   *string    `json:"notes"`
	DueDate *time.Time `json:"due_date"`
}

// CompleteTrainingRequest records a training completion
type CompleteTrainingRequest struct {
	Score *decimal.Decimal `json:"score"`
}

// =============================================================================
// Environment DTOs
// =============================================================================

// CreateReadingRequest records an environmental reading
type CreateReadingRequest struct {
	Room        string           `json:"room" binding:"required,max=100"`
	BatchID     *uuid.UUID       `json:"batch_id"`
	Temperature *decimal.Decimal `json:"temperature"`
	Humidity    *decimal.Decimal `json:"humidity"`
	CO2PPM      *decimal.Decimal `json:"co2_ppm"`
	VPD         *decimal.Decimal `json:"vpd"`
	RecordedAt  *time.Time       `json:"recorded_at"`
}

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

// =============================================================================
// Quality record DTOs
// =============================================================================

// CreateQualityRecordRequest opens a quality record
type CreateQualityRecordRequest struct {
	RecordType  string     `json:"record_type" binding:"required,oneof=inspection lab_test calibration sanitation complaint"`
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description"`
	BatchID     *uuid.UUID `json:"batch_id"`
	LotID       *uuid.UUID `json:"lot_id"`
	Attachments []string   `json:"attachments" binding:"omitempty,dive,url"`
}

// UpdateQualityRecordRequest is a partial quality record update
type UpdateQualityRecordRequest struct {
	Title       *string  `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string  `json:"description"`
	Attachments []string `json:"attachments" binding:"omitempty,dive,url"`
}

// ConcludeQualityRecordRequest records the result of a quality record
type ConcludeQualityRecordRequest struct {
	Result string `json:"result" binding:"required,oneof=pass fail"`
	Note   string `json:"note"`
}
