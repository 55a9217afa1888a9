package handler

import (
	"context"

	cultivationapp "github.com/cultivo/backend/internal/application/cultivation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PostHarvestHandler serves packaging runs, finished goods, waste records and stage reviews
type PostHarvestHandler struct {
	BaseHandler
	packaging     *cultivationapp.PackagingService
	finishedGoods *cultivationapp.FinishedGoodService
	waste         *cultivationapp.WasteService
	reviews       *cultivationapp.StageReviewService
}

// NewPostHarvestHandler creates a new PostHarvestHandler
func NewPostHarvestHandler(
	packaging *cultivationapp.PackagingService,
	finishedGoods *cultivationapp.FinishedGoodService,
	waste *cultivationapp.WasteService,
	reviews *cultivationapp.StageReviewService,
) *PostHarvestHandler {
	return &PostHarvestHandler{
		packaging:     packaging,
		finishedGoods: finishedGoods,
		waste:         waste,
		reviews:       reviews,
	}
}

// ListPackaging GET /erp/packaging
func (h *PostHarvestHandler) ListPackaging(c *gin.Context) {
	list(&h.BaseHandler, c, h.packaging.List, "batch_id", "lot_id", "status")
}

// GetPackaging GET /erp/packaging/:id
func (h *PostHarvestHandler) GetPackaging(c *gin.Context) {
	byID(&h.BaseHandler, c, h.packaging.GetByID)
}

// CreatePackaging POST /erp/packaging
func (h *PostHarvestHandler) CreatePackaging(c *gin.Context) {
	create(&h.BaseHandler, c, h.packaging.Create)
}

// UpdatePackaging PUT|PATCH /erp/packaging/:id
func (h *PostHarvestHandler) UpdatePackaging(c *gin.Context) {
	withBody(&h.BaseHandler, c, h.packaging.Update)
}

// CompletePackaging POST /erp/packaging/:id/complete
func (h *PostHarvestHandler) CompletePackaging(c *gin.Context) {
	byID(&h.BaseHandler, c, h.packaging.Complete)
}

// ListFinishedGoods GET /erp/finished_goods
func (h *PostHarvestHandler) ListFinishedGoods(c *gin.Context) {
	list(&h.BaseHandler, c, h.finishedGoods.List, "batch_id", "status", "product_type")
}

// GetFinishedGood GET /erp/finished_goods/:id
func (h *PostHarvestHandler) GetFinishedGood(c *gin.Context) {
	byID(&h.BaseHandler, c, h.finishedGoods.GetByID)
}

// CreateFinishedGood POST /erp/finished_goods
func (h *PostHarvestHandler) CreateFinishedGood(c *gin.Context) {
	create(&h.BaseHandler, c, h.finishedGoods.Create)
}

// UpdateFinishedGood PUT|PATCH /erp/finished_goods/:id
func (h *PostHarvestHandler) UpdateFinishedGood(c *gin.Context) {
	withBody(&h.BaseHandler, c, h.finishedGoods.Update)
}

// ChangeFinishedGoodStatus POST /erp/finished_goods/:id/status
func (h *PostHarvestHandler) ChangeFinishedGoodStatus(c *gin.Context) {
	actor := actorID(c)
	withBody(&h.BaseHandler, c, func(ctx context.Context, id uuid.UUID, req cultivationapp.FinishedGoodStatusRequest) (any, error) {
		return h.finishedGoods.ChangeStatus(ctx, actor, id, req)
	})
}

// ListWaste GET /erp/waste
func (h *PostHarvestHandler) ListWaste(c *gin.Context) {
	list(&h.BaseHandler, c, h.waste.List, "batch_id", "waste_type", "disposal_method")
}

// GetWaste GET /erp/waste/:id
func (h *PostHarvestHandler) GetWaste(c *gin.Context) {
	byID(&h.BaseHandler, c, h.waste.GetByID)
}

// CreateWaste POST /erp/waste
func (h *PostHarvestHandler) CreateWaste(c *gin.Context) {
	create(&h.BaseHandler, c, h.waste.Create)
}

// UpdateWaste PUT|PATCH /erp/waste/:id
func (h *PostHarvestHandler) UpdateWaste(c *gin.Context) {
	withBody(&h.BaseHandler, c, h.waste.Update)
}

// ListReviews GET /erp/review
func (h *PostHarvestHandler) ListReviews(c *gin.Context) {
	list(&h.BaseHandler, c, h.reviews.List, "batch_id", "stage", "status")
}

// GetReview GET /erp/review/:id
func (h *PostHarvestHandler) GetReview(c *gin.Context) {
	byID(&h.BaseHandler, c, h.reviews.GetByID)
}

// CreateReview POST /erp/review
func (h *PostHarvestHandler) CreateReview(c *gin.Context) {
	create(&h.BaseHandler, c, h.reviews.Create)
}

// UpdateReview PUT|PATCH /erp/review/:id
func (h *PostHarvestHandler) UpdateReview(c *gin.Context) {
	withBody(&h.BaseHandler, c, h.reviews.Update)
}

// DecideReview POST /erp/review/:id/decide
func (h *PostHarvestHandler) DecideReview(c *gin.Context) {
	actor := actorID(c)
	withBody(&h.BaseHandler, c, func(ctx context.Context, id uuid.UUID, req cultivationapp.DecideStageReviewRequest) (any, error) {
		return h.reviews.Decide(ctx, actor, id, req)
	})
}
