package handler

import (
	"context"

	qmsapp "github.com/cultivo/backend/internal/application/qms"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QmsHandler serves deviations, CAPAs, audits, SOPs, training, environment readings and quality records
type QmsHandler struct {
	BaseHandler
	deviations  *qmsapp.DeviationService
	capas       *qmsapp.CapaService
	audits      *qmsapp.AuditService
	sops        *qmsapp.SopService
	training    *qmsapp.TrainingService
	environment *qmsapp.EnvironmentService
	records     *qmsapp.QualityRecordService
}

// NewQmsHandler creates a new QmsHandler
func NewQmsHandler(
	deviations *qmsapp.DeviationService,
	capas *qmsapp.CapaService,
	audits *qmsapp.AuditService,
	sops *qmsapp.SopService,
	training *qmsapp.TrainingService,
	environment *qmsapp.EnvironmentService,
	records *qmsapp.QualityRecordService,
) *QmsHandler {
	return &QmsHandler{
		deviations:  deviations,
		capas:       capas,
		audits:      audits,
		sops:        sops,
		training:    training,
		environment: environment,
		records:     records,
	}
}

// Deviations

// ListDeviations GET /qms/deviations
func (h *QmsHandler) ListDeviations(c *gin.Context) {
	list(&h.BaseHandler, c, h.deviations.List, "status", "severity", "batch_id")
}

// GetDeviation GET /qms/deviations/:id
func (h *QmsHandler) GetDeviation(c *gin.Context) {
	byID(&h.BaseHandler, c, h.deviations.GetByID)
}

// CreateDeviation POST /qms/deviations
func (h *QmsHandler) CreateDeviation(c *gin.Context) {
	create(&h.BaseHandler, c, h.deviations.Create)
}

// UpdateDeviation PUT|PATCH /qms/deviations/:id
func (h *QmsHandler) UpdateDeviation(c *gin.Context) {
	withBody(&h.BaseHandler, c, h.deviations.Update)
}

// StartInvestigation POST /qms/deviations/:id/investigate
func (h *QmsHandler) StartInvestigation(c *gin.Context) {
	byID(&h.BaseHandler, c, h.deviations.StartInvestigation)
}

// ResolveDeviation POST /qms/deviations/:id/resolve
func (h *QmsHandler) ResolveDeviation(c *gin.Context) {
	actor := actorID(c)
	withBody(&h.BaseHandler, c, func(ctx context.Context, id uuid.UUID, req qmsapp.ResolveDeviationRequest) (any, error) {
		return h.deviations.Resolve(ctx, actor, id, req)
	})
}

// CloseDeviation POST /qms/deviations/:id/close
func (h *QmsHandler) CloseDeviation(c *gin.Context) {
	byID(&h.BaseHandler, c, asActor(c, h.deviations.Close))
}

// CAPAs

// ListCapas GET /qms/capas
func (h *QmsHandler) ListCapas(c *gin.Context) {
	list(&h.BaseHandler, c, h.capas.List, "status", "action_type", "deviation_id", "assigned_to")
}

// GetCapa GET /qms/capas/:id
func (h *QmsHandler) GetCapa(c *gin.Context) {
	byID(&h.BaseHandler, c, h.capas.GetByID)
}

// CreateCapa POST /qms/capas
func (h *QmsHandler) CreateCapa(c *gin.Context) {
	create(&h.BaseHandler, c, h.capas.Create)
}

// UpdateCapa PUT|PATCH /qms/capas/:id
func (h *QmsHandler) UpdateCapa(c *gin.Context) {
	withBody(&h.BaseHandler, c, h.capas.Update)
}

// StartCapa POST /qms/capas/:id/start
func (h *QmsHandler) StartCapa(c *gin.Context) {
	byID(&h.BaseHandler, c, h.capas.Start)
}

// CompleteCapa POST /qms/capas/:id/complete
func (h *QmsHandler) CompleteCapa(c *gin.Context) {
	actor := actorID(c)
	withBody(&h.BaseHandler, c, func(ctx context.Context, id uuid.UUID, req qmsapp.CapaNotesRequest) (any, error) {
		return h.capas.Complete(ctx, actor, id, req)
	})
}

// VerifyCapa POST /qms/capas/:id/verify
func (h *QmsHandler) VerifyCapa(c *gin.Context) {
	actor := actorID(c)
	withBody(&h.BaseHandler, c, func(ctx context.Context, id uuid.UUID, req qmsapp.CapaNotesRequest) (any, error) {
		return h.capas.Verify(ctx, actor, id, req)
	})
}

// CancelCapa POST /qms/capas/:id/cancel
func (h *QmsHandler) CancelCapa(c *gin.Context) {
	byID(&h.BaseHandler, c, h.capas.Cancel)
}

// Audits

// ListAudits GET /audits
func (h *QmsHandler) ListAudits(c *gin.Context) {
	list(&h.BaseHandler, c, h.audits.List, "status", "audit_type")
}

// GetAudit GET /audits/:id
func (h *QmsHandler) GetAudit(c *gin.Context) {
	byID(&h.BaseHandler, c, h.audits.GetByID)
}

// CreateAudit POST /audits
func (h *QmsHandler) CreateAudit(c *gin.Context) {
	create(&h.BaseHandler, c, h.audits.Create)
}

// UpdateAudit PUT|PATCH /audits/:id
func (h *QmsHandler) UpdateAudit(c *gin.Context) {
	withBody(&h.BaseHandler, c, h.audits.Update)
}

// StartAudit POST /audits/:id/start
func (h *QmsHandler) StartAudit(c *gin.Context) {
	byID(&h.BaseHandler, c, h.audits.Start)
}

// CompleteAudit POST /audits/:id/complete
func (h *QmsHandler) CompleteAudit(c *gin.Context) {
	actor := actorID(c)
	withBody(&h.BaseHandler, c, func(ctx context.Context, id uuid.UUID, req qmsapp.CompleteAuditRequest) (any, error) {
		return h.audits.Complete(ctx, actor, id, req)
	})
}

// CancelAudit POST /audits/:id/cancel
func (h *QmsHandler) CancelAudit(c *gin.Context) {
	byID(&h.BaseHandler, c, h.audits.Cancel)
}

// SOPs

// ListSops GET /qms/sops
func (h *QmsHandler) ListSops(c *gin.Context) {
	list(&h.BaseHandler, c, h.sops.List, "status", "category")
}

// GetSop GET /qms/sops/:id
func (h *QmsHandler) GetSop(c *gin.Context) {
	byID(&h.BaseHandler, c, h.sops.GetByID)
}

// CreateSop POST /qms/sops
func (h *QmsHandler) CreateSop(c *gin.Context) {
	create(&h.BaseHandler, c, h.sops.Create)
}

// UpdateSop PUT|PATCH /qms/sops/:id
func (h *QmsHandler) UpdateSop(c *gin.Context) {
	withBody(&h.BaseHandler, c, h.sops.Update)
}

// SubmitSop POST /qms/sops/:id/submit
func (h *QmsHandler) SubmitSop(c *gin.Context) {
	byID(&h.BaseHandler, c, h.sops.SubmitForReview)
}

// ReturnSopToDraft POST /qms/sops/:id/return
func (h *QmsHandler) ReturnSopToDraft(c *gin.Context) {
	byID(&h.BaseHandler, c, h.sops.ReturnToDraft)
}

// ApproveSop POST /qms/sops/:id/approve
func (h *QmsHandler) ApproveSop(c *gin.Context) {
	byID(&h.BaseHandler, c, asActor(c, h.sops.Approve))
}

// ObsoleteSop POST /qms/sops/:id/obsolete
func (h *QmsHandler) ObsoleteSop(c *gin.Context) {
	byID(&h.BaseHandler, c, h.sops.Obsolete)
}

// Training

// ListTraining GET /qms/training
func (h *QmsHandler) ListTraining(c *gin.Context) {
	list(&h.BaseHandler, c, h.training.List, "status", "user_id", "sop_id")
}

// GetTraining GET /qms/training/:id
func (h *QmsHandler) GetTraining(c *gin.Context) {
	byID(&h.BaseHandler, c, h.training.GetByID)
}

// CreateTraining POST /qms/training
func (h *QmsHandler) CreateTraining(c *gin.Context) {
	create(&h.BaseHandler, c, h.training.Create)
}

// UpdateTraining PUT|PATCH /qms/training/:id
func (h *QmsHandler) UpdateTraining(c *gin.Context) {
	withBody(&h.BaseHandler, c, h.training.Update)
}

// StartTraining POST /qms/training/:id/start
func (h *QmsHandler) StartTraining(c *gin.Context) {
	byID(&h.BaseHandler, c, h.training.Start)
}

// CompleteTraining POST /qms/training/:id/complete
func (h *QmsHandler) CompleteTraining(c *gin.Context) {
	actor := actorID(c)
	withBody(&h.BaseHandler, c, func(ctx context.Context, id uuid.UUID, req qmsapp.CompleteTrainingRequest) (any, error) {
		return h.training.MarkCompleted(ctx, actor, id, req)
	})
}

// ExpireTraining POST /qms/training/:id/expire
func (h *QmsHandler) ExpireTraining(c *gin.Context) {
	byID(&h.BaseHandler, c, h.training.Expire)
}

// Environment

// ListReadings GET /qms/environment
func (h *QmsHandler) ListReadings(c *gin.Context) {
	list(&h.BaseHandler, c, h.environment.List, "room", "batch_id", "alerts_only")
}

// GetReading GET /qms/environment/:id
func (h *QmsHandler) GetReading(c *gin.Context) {
	byID(&h.BaseHandler, c, h.environment.GetByID)
}

// CreateReading POST /qms/environment
func (h *QmsHandler) CreateReading(c *gin.Context) {
	create(&h.BaseHandler, c, h.environment.Create)
}

// EnvironmentSummary GET /qms/environment/summary
func (h *QmsHandler) EnvironmentSummary(c *gin.Context) {
	summary, err := h.environment.Summary(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, summary)
}

// Quality records

// ListQualityRecords GET /qms/records
func (h *QmsHandler) ListQualityRecords(c *gin.Context) {
	list(&h.BaseHandler, c, h.records.List, "record_type", "result", "batch_id", "lot_id")
}

// GetQualityRecord GET /qms/records/:id
func (h *QmsHandler) GetQualityRecord(c *gin.Context) {
	byID(&h.BaseHandler, c, h.records.GetByID)
}

// CreateQualityRecord POST /qms/records
func (h *QmsHandler) CreateQualityRecord(c *gin.Context) {
	create(&h.BaseHandler, c, h.records.Create)
}

// UpdateQualityRecord PUT|PATCH /qms/records/:id
func (h *QmsHandler) UpdateQualityRecord(c *gin.Context) {
	withBody(&h.BaseHandler, c, h.records.Update)
}

// ConcludeQualityRecord POST /qms/records/:id/conclude
func (h *QmsHandler) ConcludeQualityRecord(c *gin.Context) {
	actor := actorID(c)
	withBody(&h.BaseHandler, c, func(ctx context.Context, id uuid.UUID, req qmsapp.ConcludeQualityRecordRequest) (any, error) {
		return h.records.Conclude(ctx, actor, id, req)
	})
}
