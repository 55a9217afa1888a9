package router

import (
	"net/http"

	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/infrastructure/logger"
	"github.com/cultivo/backend/internal/infrastructure/telemetry"
	"github.com/cultivo/backend/internal/interfaces/http/handler"
	"github.com/cultivo/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	anyWriter  = []identity.Role{identity.RoleAdmin, identity.RoleManager, identity.RoleOperator}
	managers   = []identity.Role{identity.RoleAdmin, identity.RoleManager}
	quality    = []identity.Role{identity.RoleAdmin, identity.RoleQAManager}
	qualityOps = []identity.Role{identity.RoleAdmin, identity.RoleQAManager, identity.RoleOperator}
	reviewers  = []identity.Role{identity.RoleAdmin, identity.RoleManager, identity.RoleQAManager}
	adminsOnly = []identity.Role{identity.RoleAdmin}
)

// Handlers bundles every HTTP handler the API mounts
type Handlers struct {
	System      *handler.SystemHandler
	Auth        *handler.AuthHandler
	Users       *handler.UserHandler
	Cultivation *handler.CultivationHandler
	PostHarvest *handler.PostHarvestHandler
	Ebr         *handler.EbrHandler
	Qms         *handler.QmsHandler
	Inventory   *handler.InventoryHandler
	Partners    *handler.PartnerHandler
	Trade       *handler.TradeHandler
}

// EngineConfig carries the middleware settings of the HTTP engine
type EngineConfig struct {
	Logger         *zap.Logger
	ServiceName    string
	TracingEnabled bool
	Metrics        *telemetry.HTTPMetrics
	Gatherer       prometheus.Gatherer
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	MaxBodySize    int64
	RateLimiter    *middleware.RateLimiter
	TrustedProxies []string
	JWT            middleware.JWTMiddlewareConfig
	Profiles       middleware.ProfileFinder
}

// NewEngine builds the gin engine with the global middleware chain and every route
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	_ = engine.SetTrustedProxies(cfg.TrustedProxies)

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled),
		middleware.SpanAttributes(),
		middleware.Metrics(cfg.Metrics),
		middleware.Secure(cfg.Security),
		middleware.CORS(cfg.CORS),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	engine.GET("/health", h.System.Health)
	if cfg.Gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Route not found", "code": "NOT_FOUND"})
	})

	if cfg.JWT.Logger == nil {
		cfg.JWT.Logger = log
	}
	protected := []gin.HandlerFunc{
		middleware.JWTAuth(cfg.JWT),
		middleware.ActiveProfile(cfg.Profiles, log),
	}

	api := NewRouter(engine)
	api.Register(publicAuthRoutes(h.Auth))
	for _, group := range ProtectedGroups(h) {
		api.Register(group.Use(protected...))
	}
	api.Setup()

	return engine
}

func publicAuthRoutes(h *handler.AuthHandler) *DomainGroup {
	return NewDomainGroup("auth", "/auth").
		POST("/signup", h.Signup).
		POST("/login", h.Login).
		POST("/refresh", h.Refresh).
		POST("/verify-email", h.VerifyEmail).
		POST("/forgot-password", h.ForgotPassword).
		POST("/reset-password", h.ResetPassword)
}

// ProtectedGroups returns the authenticated route groups with their role allow-lists
func ProtectedGroups(h Handlers) []*DomainGroup {
	return []*DomainGroup{
		sessionRoutes(h.Auth),
		userRoutes(h.Users),
		auditLogRoutes(h.Users),
		erpRoutes(h.Cultivation, h.PostHarvest),
		stageRoutes(h.Cultivation),
		qmsRoutes(h.Ebr, h.Qms),
		auditRoutes(h.Qms),
		inventoryRoutes(h.Inventory),
		partnerRoutes(h.Partners),
		tradeRoutes(h.Trade),
		opsRoutes(h.Ebr),
	}
}

func sessionRoutes(h *handler.AuthHandler) *DomainGroup {
	return NewDomainGroup("session", "/auth").
		GET("/me", h.Me).
		POST("/logout", h.Logout).
		POST("/change-password", h.ChangePassword)
}

func userRoutes(h *handler.UserHandler) *DomainGroup {
	g := NewDomainGroup("users", "/users").Writes(adminsOnly...)
	g.Handle(http.MethodGet, "", adminsOnly, h.List).
		Handle(http.MethodGet, "/invitations", adminsOnly, h.ListInvitations).
		POST("/invitations", h.Invite).
		POST("/invitations/:id/revoke", h.RevokeInvitation).
		Handle(http.MethodGet, "/:id", adminsOnly, h.Get).
		PATCH("/:id", h.Update)
	return g
}

func auditLogRoutes(h *handler.UserHandler) *DomainGroup {
	return NewDomainGroup("audit-logs", "/audit-logs").
		Handle(http.MethodGet, "", quality, h.ListAuditLogs)
}

func erpRoutes(h *handler.CultivationHandler, ph *handler.PostHarvestHandler) *DomainGroup {
	g := NewDomainGroup("erp", "/erp").Writes(anyWriter...)

	g.Group("batches", "/batches").
		GET("", h.ListBatches).
		POST("", h.CreateBatch).
		GET("/:id", h.GetBatch).
		Update("/:id", h.UpdateBatch).
		POST("/:id/advance", h.AdvanceStage).
		POST("/:id/status", h.ChangeBatchStatus).
		GET("/:id/stages", h.ListBatchStages)

	g.Group("growth_cycles", "/growth_cycles").
		GET("", h.ListGrowthCycles).
		POST("", h.CreateGrowthCycle).
		GET("/:id", h.GetGrowthCycle).
		Update("/:id", h.UpdateGrowthCycle).
		POST("/:id/start", h.StartGrowthCycle).
		POST("/:id/complete", h.CompleteGrowthCycle).
		POST("/:id/cancel", h.CancelGrowthCycle)

	g.Group("strains", "/strains").
		GET("", h.ListStrains).
		POST("", h.CreateStrain).
		GET("/:id", h.GetStrain).
		Update("/:id", h.UpdateStrain)

	g.Group("daily_logs", "/daily_logs").
		GET("", h.ListDailyLogs).
		POST("", h.CreateDailyLog).
		GET("/:id", h.GetDailyLog).
		Update("/:id", h.UpdateDailyLog)

	g.Group("packaging", "/packaging").
		GET("", ph.ListPackaging).
		POST("", ph.CreatePackaging).
		GET("/:id", ph.GetPackaging).
		Update("/:id", ph.UpdatePackaging).
		POST("/:id/complete", ph.CompletePackaging)

	g.Group("finished_goods", "/finished_goods").
		GET("", ph.ListFinishedGoods).
		POST("", ph.CreateFinishedGood).
		GET("/:id", ph.GetFinishedGood).
		Update("/:id", ph.UpdateFinishedGood).
		Handle(http.MethodPost, "/:id/status", quality, ph.ChangeFinishedGoodStatus)

	g.Group("waste", "/waste").
		GET("", ph.ListWaste).
		POST("", ph.CreateWaste).
		GET("/:id", ph.GetWaste).
		Update("/:id", ph.UpdateWaste)

	g.Group("review", "/review").
		GET("", ph.ListReviews).
		POST("", ph.CreateReview).
		GET("/:id", ph.GetReview).
		Update("/:id", ph.UpdateReview).
		Handle(http.MethodPost, "/:id/decide", reviewers, ph.DecideReview)

	return g
}

func stageRoutes(h *handler.CultivationHandler) *DomainGroup {
	return NewDomainGroup("stages", "/stages").Writes(managers...).
		GET("", h.ListStages).
		POST("", h.CreateStage).
		GET("/:id", h.GetStage).
		Update("/:id", h.UpdateStage)
}

func qmsRoutes(ebr *handler.EbrHandler, h *handler.QmsHandler) *DomainGroup {
	g := NewDomainGroup("qms", "/qms").Writes(quality...)

	g.Group("ebr", "/ebr").
		GET("", ebr.List).
		POST("", ebr.Create).
		GET("/statistics", ebr.Statistics).
		GET("/batch/:batchId", ebr.GetByBatch).
		POST("/checklist", ebr.AddChecklistItem).
		PATCH("/checklist/:itemId", ebr.UpdateChecklistItem).
		POST("/checklist/:itemId/evidence", ebr.RequestEvidenceUpload).
		GET("/:id", ebr.Get).
		GET("/:id/checklist", ebr.Checklist).
		GET("/:id/details", ebr.Details).
		POST("/:id/approve", ebr.Approve).
		POST("/:id/reject", ebr.Reject).
		POST("/:id/reopen", ebr.Reopen).
		POST("/:id/score", ebr.SetComplianceScore).
		PATCH("/:id/completeness", ebr.UpdateCompleteness)

	g.Group("deviations", "/deviations").
		GET("", h.ListDeviations).
		Handle(http.MethodPost, "", qualityOps, h.CreateDeviation).
		GET("/:id", h.GetDeviation).
		Update("/:id", h.UpdateDeviation).
		POST("/:id/investigate", h.StartInvestigation).
		POST("/:id/resolve", h.ResolveDeviation).
		POST("/:id/close", h.CloseDeviation)

	g.Group("capas", "/capas").
		GET("", h.ListCapas).
		POST("", h.CreateCapa).
		GET("/:id", h.GetCapa).
		Update("/:id", h.UpdateCapa).
		POST("/:id/start", h.StartCapa).
		POST("/:id/complete", h.CompleteCapa).
		POST("/:id/verify", h.VerifyCapa).
		POST("/:id/cancel", h.CancelCapa)

	g.Group("sops", "/sops").
		GET("", h.ListSops).
		POST("", h.CreateSop).
		GET("/:id", h.GetSop).
		Update("/:id", h.UpdateSop).
		POST("/:id/submit", h.SubmitSop).
		POST("/:id/return", h.ReturnSopToDraft).
		POST("/:id/approve", h.ApproveSop).
		POST("/:id/obsolete", h.ObsoleteSop)

	g.Group("training", "/training").
		GET("", h.ListTraining).
		POST("", h.CreateTraining).
		GET("/:id", h.GetTraining).
		Update("/:id", h.UpdateTraining).
		Handle(http.MethodPost, "/:id/start", qualityOps, h.StartTraining).
		Handle(http.MethodPost, "/:id/complete", qualityOps, h.CompleteTraining).
		POST("/:id/expire", h.ExpireTraining)

	g.Group("environment", "/environment").
		GET("", h.ListReadings).
		Handle(http.MethodPost, "", qualityOps, h.CreateReading).
		GET("/summary", h.EnvironmentSummary).
		GET("/:id", h.GetReading)

	g.Group("records", "/records").
		GET("", h.ListQualityRecords).
		Handle(http.MethodPost, "", qualityOps, h.CreateQualityRecord).
		GET("/:id", h.GetQualityRecord).
		Update("/:id", h.UpdateQualityRecord).
		POST("/:id/conclude", h.ConcludeQualityRecord)

	return g
}

func auditRoutes(h *handler.QmsHandler) *DomainGroup {
	return NewDomainGroup("audits", "/audits").Writes(quality...).
		GET("", h.ListAudits).
		POST("", h.CreateAudit).
		GET("/:id", h.GetAudit).
		Update("/:id", h.UpdateAudit).
		POST("/:id/start", h.StartAudit).
		POST("/:id/complete", h.CompleteAudit).
		POST("/:id/cancel", h.CancelAudit)
}

func inventoryRoutes(h *handler.InventoryHandler) *DomainGroup {
	g := NewDomainGroup("inventory", "/inventory").Writes(anyWriter...)
	g.Group("lots", "/lots").
		GET("", h.ListLots).
		POST("", h.CreateLot).
		GET("/:id", h.GetLot).
		Update("/:id", h.UpdateLot).
		POST("/:id/adjust", h.AdjustStock).
		POST("/:id/status", h.ChangeLotStatus).
		GET("/:id/movements", h.ListMovements)
	g.GET("/batches", h.BatchSummary)
	return g
}

func partnerRoutes(h *handler.PartnerHandler) *DomainGroup {
	g := NewDomainGroup("partners", "").Writes(managers...)
	g.Group("suppliers", "/suppliers").
		GET("", h.ListSuppliers).
		POST("", h.CreateSupplier).
		GET("/:id", h.GetSupplier).
		Update("/:id", h.UpdateSupplier)
	g.Group("clients", "/clients").
		GET("", h.ListClients).
		POST("", h.CreateClient).
		GET("/:id", h.GetClient).
		Update("/:id", h.UpdateClient).
		DELETE("/:id", h.DeleteClient)
	return g
}

func tradeRoutes(h *handler.TradeHandler) *DomainGroup {
	g := NewDomainGroup("trade", "").Writes(managers...)
	g.Group("purchase-orders", "/purchase-orders").
		GET("", h.ListPurchaseOrders).
		POST("", h.CreatePurchaseOrder).
		GET("/:id", h.GetPurchaseOrder).
		Update("/:id", h.UpdatePurchaseOrder).
		POST("/:id/submit", h.SubmitPurchaseOrder).
		POST("/:id/approve", h.ApprovePurchaseOrder).
		POST("/:id/receive", h.ReceivePurchaseOrder).
		POST("/:id/cancel", h.CancelPurchaseOrder)
	g.Group("dispatches", "/dispatches").
		GET("", h.ListDispatches).
		POST("", h.CreateDispatch).
		GET("/:id", h.GetDispatch).
		Update("/:id", h.UpdateDispatch).
		POST("/:id/confirm", h.ConfirmDispatch).
		POST("/:id/ship", h.ShipDispatch).
		POST("/:id/deliver", h.DeliverDispatch).
		POST("/:id/cancel", h.CancelDispatch)
	return g
}

func opsRoutes(h *handler.EbrHandler) *DomainGroup {
	return NewDomainGroup("ops", "/ops").
		Handle(http.MethodGet, "/ebr", adminsOnly, h.RecentRecords)
}
