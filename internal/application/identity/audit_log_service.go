package identity

import (
	"context"

	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditLogService reads the audit trail
type AuditLogService struct {
	repo identity.AuditLogRepository
}

// NewAuditLogService creates a new AuditLogService
func NewAuditLogService(repo identity.AuditLogRepository) *AuditLogService {
	return &AuditLogService{repo: repo}
}

// List returns a page of audit entries, newest first unless ordered otherwise
func (s *AuditLogService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[identity.AuditLog], error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
		filter.OrderDir = "desc"
	}
	return shared.ListPage[identity.AuditLog](ctx, s.repo, filter)
}

// AuditEventHandler appends an audit entry for each domain event it receives
type AuditEventHandler struct {
	repo       identity.AuditLogRepository
	eventTypes []string
	logger     *zap.Logger
}

// NewAuditEventHandler creates a handler for the event types. With none it
// records every event.
func NewAuditEventHandler(repo identity.AuditLogRepository, logger *zap.Logger, eventTypes ...string) *AuditEventHandler {
	return &AuditEventHandler{repo: repo, eventTypes: eventTypes, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *AuditEventHandler) EventTypes() []string {
	return h.eventTypes
}

// Handle writes the audit entry. The event itself is stored as details.
func (h *AuditEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	entry := identity.NewAuditLog(event.ActorID(), event.EventType(), event.AggregateType(), event.AggregateID(), event)
	entry.CreatedAt = event.OccurredAt()
	if err := h.repo.Create(ctx, entry); err != nil {
		h.logger.Error("Failed to write audit log",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Error(err))
		return err
	}
	return nil
}

var _ shared.EventHandler = (*AuditEventHandler)(nil)
