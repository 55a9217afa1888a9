package handler

import (
	"net/http"

	qmsapp "github.com/cultivo/backend/internal/application/qms"
	"github.com/gin-gonic/gin"
)

// EbrHandler serves electronic batch records and their review checklists
type EbrHandler struct {
	BaseHandler
	ebr         *qmsapp.EbrService
	diagnostics *qmsapp.EbrDiagnostics
}

// NewEbrHandler creates a new EbrHandler
func NewEbrHandler(ebr *qmsapp.EbrService, diagnostics *qmsapp.EbrDiagnostics) *EbrHandler {
	return &EbrHandler{ebr: ebr, diagnostics: diagnostics}
}

// List GET /qms/ebr
func (h *EbrHandler) List(c *gin.Context) {
	filter, ok := h.ParseFilter(c, "batch_id", "compliance_status", "pass_fail_status")
	if !ok {
		return
	}
	page, err := h.ebr.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, page)
}

// Get GET /qms/ebr/:id
func (h *EbrHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	record, err := h.ebr.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, record)
}

// GetByBatch answers data:null when the batch has no record yet.
// GET /qms/ebr/batch/:batchId
func (h *EbrHandler) GetByBatch(c *gin.Context) {
	batchID, ok := h.ParseID(c, "batchId")
	if !ok {
		return
	}
	record, err := h.ebr.GetByBatch(c.Request.Context(), batchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if record == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
		return
	}
	h.Success(c, record)
}

// Checklist GET /qms/ebr/:id/checklist
func (h *EbrHandler) Checklist(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	items, err := h.ebr.GetChecklist(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, items)
}

// Details GET /qms/ebr/:id/details
func (h *EbrHandler) Details(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	details, err := h.ebr.GetDetails(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, details)
}

// Statistics GET /qms/ebr/statistics
func (h *EbrHandler) Statistics(c *gin.Context) {
	stats, err := h.ebr.GetStatistics(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, stats)
}

// Create POST /qms/ebr
func (h *EbrHandler) Create(c *gin.Context) {
	var req qmsapp.CreateEbrRecordRequest
	if !h.BindJSON(c, &req) {
		return
	}
	record, err := h.ebr.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, record)
}

// AddChecklistItem POST /qms/ebr/checklist
func (h *EbrHandler) AddChecklistItem(c *gin.Context) {
	var req qmsapp.AddChecklistItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item, err := h.ebr.AddChecklistItem(c.Request.Context(), actorID(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, item)
}

// UpdateChecklistItem PATCH /qms/ebr/checklist/:itemId
func (h *EbrHandler) UpdateChecklistItem(c *gin.Context) {
	itemID, ok := h.ParseID(c, "itemId")
	if !ok {
		return
	}
	var req qmsapp.UpdateChecklistItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item, err := h.ebr.UpdateChecklistItem(c.Request.Context(), itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, item)
}

// RequestEvidenceUpload POST /qms/ebr/checklist/:itemId/evidence
func (h *EbrHandler) RequestEvidenceUpload(c *gin.Context) {
	itemID, ok := h.ParseID(c, "itemId")
	if !ok {
		return
	}
	var req qmsapp.EvidenceUploadRequest
	if !h.BindJSON(c, &req) {
		return
	}
	upload, err := h.ebr.RequestEvidenceUpload(c.Request.Context(), itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, upload)
}

// Approve POST /qms/ebr/:id/approve
func (h *EbrHandler) Approve(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req qmsapp.ApproveEbrRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}
	record, err := h.ebr.Approve(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessMessage(c, record, "eBR record approved")
}

// Reject POST /qms/ebr/:id/reject
func (h *EbrHandler) Reject(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req qmsapp.RejectEbrRequest
	if !h.BindJSON(c, &req) {
		return
	}
	record, err := h.ebr.Reject(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessMessage(c, record, "eBR record rejected")
}

// Reopen POST /qms/ebr/:id/reopen
func (h *EbrHandler) Reopen(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req qmsapp.ReopenEbrRequest
	if !h.BindJSON(c, &req) {
		return
	}
	record, err := h.ebr.Reopen(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessMessage(c, record, "eBR record reopened")
}

// SetComplianceScore POST /qms/ebr/:id/score
func (h *EbrHandler) SetComplianceScore(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req qmsapp.ComplianceScoreRequest
	if !h.BindJSON(c, &req) {
		return
	}
	record, err := h.ebr.SetComplianceScore(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, record)
}

// UpdateCompleteness PATCH /qms/ebr/:id/completeness
func (h *EbrHandler) UpdateCompleteness(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req qmsapp.CompletenessRequest
	if !h.BindJSON(c, &req) {
		return
	}
	record, err := h.ebr.UpdateCompleteness(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, record)
}

// RecentRecords is the ops listing. GET /ops/ebr
func (h *EbrHandler) RecentRecords(c *gin.Context) {
	records, err := h.diagnostics.ListRecentRecords(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, records)
}
