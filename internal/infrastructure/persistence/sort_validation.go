package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// Allowed sort fields per table. Every map includes the base entity columns.

func sortFields(fields ...string) map[string]bool {
	m := map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
	}
	for _, f := range fields {
		m[f] = true
	}
	return m
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = sortFields()

var (
	BatchSortFields        = sortFields("batch_number", "name", "room", "plant_count", "progress", "current_stage", "status", "start_date")
	GrowthCycleSortFields  = sortFields("name", "room", "start_date", "expected_end_date", "status")
	StrainSortFields       = sortFields("name", "strain_type", "thc_percentage", "cbd_percentage")
	StageSortFields        = sortFields("name", "stage_type", "sequence", "expected_duration_days")
	DailyLogSortFields     = sortFields("log_date", "temperature", "humidity")
	PackagingSortFields    = sortFields("package_type", "package_count", "total_weight", "status", "packaged_at")
	FinishedGoodSortFields = sortFields("product_name", "product_type", "quantity", "status", "released_at")
	WasteSortFields        = sortFields("waste_type", "quantity", "disposal_method", "disposed_at")
	StageReviewSortFields  = sortFields("stage", "status", "reviewed_at")

	EbrSortFields           = sortFields("ebr_number", "batch_name", "strain", "stage", "start_date", "compliance_status", "pass_fail_status", "compliance_score", "approved_at")
	DeviationSortFields     = sortFields("deviation_number", "title", "severity", "status", "resolved_at")
	CapaSortFields          = sortFields("capa_number", "title", "action_type", "status", "due_date", "completed_at")
	AuditSortFields         = sortFields("title", "audit_type", "status", "scheduled_date", "completed_at", "score")
	SopSortFields           = sortFields("document_number", "title", "version", "category", "status", "effective_date")
	TrainingSortFields      = sortFields("title", "status", "due_date", "completed_at", "score")
	EnvironmentSortFields   = sortFields("room", "recorded_at", "temperature", "humidity", "co2_ppm")
	QualityRecordSortFields = sortFields("record_number", "record_type", "title", "result", "recorded_at")

	LotSortFields           = sortFields("lot_number", "product_name", "product_type", "status", "expiry_date", "initial_quantity")
	StockMovementSortFields = sortFields("movement_type", "quantity")

	SupplierSortFields      = sortFields("name", "contact_name", "email", "status")
	ClientSortFields        = sortFields("name", "email", "client_type", "status")
	PurchaseOrderSortFields = sortFields("po_number", "status", "order_date", "expected_date", "total_amount")
	DispatchSortFields      = sortFields("dispatch_number", "status", "dispatch_date", "confirmed_at")

	ProfileSortFields    = sortFields("email", "full_name", "role", "status", "last_login_at")
	InvitationSortFields = sortFields("email", "role", "status", "expires_at")
	AuditLogSortFields   = map[string]bool{"id": true, "created_at": true, "action": true, "entity_type": true}
)
