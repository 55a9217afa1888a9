package handler

import (
	"context"

	cultivationapp "github.com/cultivo/backend/internal/application/cultivation"
	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CultivationHandler serves batches, growth cycles, strains, stages and daily logs
type CultivationHandler struct {
	BaseHandler
	batches   *cultivationapp.BatchService
	cycles    *cultivationapp.GrowthCycleService
	strains   *cultivationapp.StrainService
	stages    *cultivationapp.StageService
	dailyLogs *cultivationapp.DailyLogService
}

// NewCultivationHandler creates a new CultivationHandler
func NewCultivationHandler(
	batches *cultivationapp.BatchService,
	cycles *cultivationapp.GrowthCycleService,
	strains *cultivationapp.StrainService,
	stages *cultivationapp.StageService,
	dailyLogs *cultivationapp.DailyLogService,
) *CultivationHandler {
	return &CultivationHandler{
		batches:   batches,
		cycles:    cycles,
		strains:   strains,
		stages:    stages,
		dailyLogs: dailyLogs,
	}
}

// ListBatches GET /erp/batches
func (h *CultivationHandler) ListBatches(c *gin.Context) {
	filter, ok := h.ParseFilter(c, "status", "current_stage", "strain_id", "growth_cycle_id", "room")
	if !ok {
		return
	}
	page, err := h.batches.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, page)
}

// GetBatch GET /erp/batches/:id
func (h *CultivationHandler) GetBatch(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	batch, err := h.batches.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, batch)
}

// CreateBatch POST /erp/batches
func (h *CultivationHandler) CreateBatch(c *gin.Context) {
	var req cultivationapp.CreateBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}
	batch, err := h.batches.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, batch)
}

// UpdateBatch PUT|PATCH /erp/batches/:id
func (h *CultivationHandler) UpdateBatch(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req cultivationapp.UpdateBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}
	batch, err := h.batches.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, batch)
}

// AdvanceStage POST /erp/batches/:id/advance
func (h *CultivationHandler) AdvanceStage(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req cultivationapp.AdvanceStageRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}
	result, err := h.batches.AdvanceStage(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// ChangeBatchStatus POST /erp/batches/:id/status
func (h *CultivationHandler) ChangeBatchStatus(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req cultivationapp.ChangeBatchStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	batch, err := h.batches.ChangeStatus(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, batch)
}

// ListBatchStages GET /erp/batches/:id/stages
func (h *CultivationHandler) ListBatchStages(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	stages, err := h.batches.ListStages(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, stages)
}

// ListGrowthCycles GET /erp/growth_cycles
func (h *CultivationHandler) ListGrowthCycles(c *gin.Context) {
	filter, ok := h.ParseFilter(c, "status", "room")
	if !ok {
		return
	}
	page, err := h.cycles.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, page)
}

// GetGrowthCycle GET /erp/growth_cycles/:id
func (h *CultivationHandler) GetGrowthCycle(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	cycle, err := h.cycles.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cycle)
}

// CreateGrowthCycle POST /erp/growth_cycles
func (h *CultivationHandler) CreateGrowthCycle(c *gin.Context) {
	var req cultivationapp.CreateGrowthCycleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cycle, err := h.cycles.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, cycle)
}

// UpdateGrowthCycle PUT|PATCH /erp/growth_cycles/:id
func (h *CultivationHandler) UpdateGrowthCycle(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req cultivationapp.UpdateGrowthCycleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cycle, err := h.cycles.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cycle)
}

// StartGrowthCycle POST /erp/growth_cycles/:id/start
func (h *CultivationHandler) StartGrowthCycle(c *gin.Context) {
	h.cycleTransition(c, h.cycles.Start)
}

// CompleteGrowthCycle POST /erp/growth_cycles/:id/complete
func (h *CultivationHandler) CompleteGrowthCycle(c *gin.Context) {
	h.cycleTransition(c, h.cycles.Complete)
}

// CancelGrowthCycle POST /erp/growth_cycles/:id/cancel
func (h *CultivationHandler) CancelGrowthCycle(c *gin.Context) {
	h.cycleTransition(c, h.cycles.Cancel)
}

func (h *CultivationHandler) cycleTransition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*cultivation.GrowthCycle, error)) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	cycle, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, cycle)
}

// ListStrains GET /erp/strains
func (h *CultivationHandler) ListStrains(c *gin.Context) {
	filter, ok := h.ParseFilter(c, "strain_type")
	if !ok {
		return
	}
	page, err := h.strains.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, page)
}

// GetStrain GET /erp/strains/:id
func (h *CultivationHandler) GetStrain(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	strain, err := h.strains.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, strain)
}

// CreateStrain POST /erp/strains
func (h *CultivationHandler) CreateStrain(c *gin.Context) {
	var req cultivationapp.CreateStrainRequest
	if !h.BindJSON(c, &req) {
		return
	}
	strain, err := h.strains.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, strain)
}

// UpdateStrain PUT|PATCH /erp/strains/:id
func (h *CultivationHandler) UpdateStrain(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req cultivationapp.UpdateStrainRequest
	if !h.BindJSON(c, &req) {
		return
	}
	strain, err := h.strains.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, strain)
}

// ListStages lists stage definitions in growth order. GET /stages
func (h *CultivationHandler) ListStages(c *gin.Context) {
	filter, ok := h.ParseFilter(c, "stage_type", "is_active")
	if !ok {
		return
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}
	page, err := h.stages.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, page)
}

// GetStage GET /stages/:id
func (h *CultivationHandler) GetStage(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	stage, err := h.stages.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, stage)
}

// CreateStage POST /stages
func (h *CultivationHandler) CreateStage(c *gin.Context) {
	var req cultivationapp.CreateStageRequest
	if !h.BindJSON(c, &req) {
		return
	}
	stage, err := h.stages.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, stage)
}

// UpdateStage PUT|PATCH /stages/:id
func (h *CultivationHandler) UpdateStage(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req cultivationapp.UpdateStageRequest
	if !h.BindJSON(c, &req) {
		return
	}
	stage, err := h.stages.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, stage)
}

// ListDailyLogs GET /erp/daily_logs
func (h *CultivationHandler) ListDailyLogs(c *gin.Context) {
	filter, ok := h.ParseFilter(c, "batch_id")
	if !ok {
		return
	}
	page, err := h.dailyLogs.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, page)
}

// GetDailyLog GET /erp/daily_logs/:id
func (h *CultivationHandler) GetDailyLog(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	log, err := h.dailyLogs.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, log)
}

// CreateDailyLog POST /erp/daily_logs
func (h *CultivationHandler) CreateDailyLog(c *gin.Context) {
	var req cultivationapp.CreateDailyLogRequest
	if !h.BindJSON(c, &req) {
		return
	}
	log, err := h.dailyLogs.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, log)
}

// UpdateDailyLog PUT|PATCH /erp/daily_logs/:id
func (h *CultivationHandler) UpdateDailyLog(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req cultivationapp.UpdateDailyLogRequest
	if !h.BindJSON(c, &req) {
		return
	}
	log, err := h.dailyLogs.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, log)
}
