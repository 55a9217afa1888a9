package persistence

import (
	"context"
	"strings"

	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProfileRepository implements identity.ProfileRepository
type GormProfileRepository struct {
	gormRepository[identity.Profile]
}

// NewGormProfileRepository creates a new GormProfileRepository
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{newGormRepository[identity.Profile](db, "User", listSpec{
		sortFields:    ProfileSortFields,
		defaultSort:   "created_at",
		searchColumns: []string{"email", "full_name"},
		filters: map[string]string{
			"role":   "role",
			"status": "status",
		},
	})}
}

// FindByEmail finds a profile by its normalized email
func (r *GormProfileRepository) FindByEmail(ctx context.Context, email string) (*identity.Profile, error) {
	return r.findWhere(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// FindByVerificationToken finds the profile awaiting verification with the token
func (r *GormProfileRepository) FindByVerificationToken(ctx context.Context, token string) (*identity.Profile, error) {
	if token == "" {
		return nil, shared.NewNotFoundError(r.entity)
	}
	return r.findWhere(ctx, "verification_token = ?", token)
}

// FindByResetToken finds the profile holding the password reset token
func (r *GormProfileRepository) FindByResetToken(ctx context.Context, token string) (*identity.Profile, error) {
	if token == "" {
		return nil, shared.NewNotFoundError(r.entity)
	}
	return r.findWhere(ctx, "reset_token = ?", token)
}

// FindByIDs finds multiple profiles by their IDs
func (r *GormProfileRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.Profile, error) {
	return r.findByIDs(ctx, ids)
}

// ExistsByEmail checks if the email is registered
func (r *GormProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// GormInvitationRepository implements identity.InvitationRepository
type GormInvitationRepository struct {
	gormRepository[identity.Invitation]
}

// NewGormInvitationRepository creates a new GormInvitationRepository
func NewGormInvitationRepository(db *gorm.DB) *GormInvitationRepository {
	return &GormInvitationRepository{newGormRepository[identity.Invitation](db, "Invitation", listSpec{
		sortFields:    InvitationSortFields,
		defaultSort:   "created_at",
		searchColumns: []string{"email"},
		filters: map[string]string{
			"status": "status",
			"role":   "role",
			"email":  "email",
		},
	})}
}

// FindByToken finds an invitation by its token
func (r *GormInvitationRepository) FindByToken(ctx context.Context, token string) (*identity.Invitation, error) {
	if token == "" {
		return nil, shared.NewNotFoundError(r.entity)
	}
	return r.findWhere(ctx, "token = ?", token)
}

// GormAuditLogRepository implements identity.AuditLogRepository
type GormAuditLogRepository struct {
	db   *gorm.DB
	spec listSpec
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db, spec: listSpec{
		sortFields:    AuditLogSortFields,
		defaultSort:   "created_at",
		searchColumns: []string{"action", "details"},
		filters: map[string]string{
			"actor_id":    "actor_id",
			"entity_type": "entity_type",
			"entity_id":   "entity_id",
			"action":      "action",
		},
	}}
}

// Create appends an entry
func (r *GormAuditLogRepository) Create(ctx context.Context, entry *identity.AuditLog) error {
	return dbError(conn(ctx, r.db).Create(entry).Error, "Audit log", "create")
}

// FindAll returns a page of entries, newest first by default
func (r *GormAuditLogRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.AuditLog, error) {
	entries := make([]identity.AuditLog, 0)
	q := r.spec.where(conn(ctx, r.db).Model(&identity.AuditLog{}), filter)
	if err := r.spec.page(q, filter).Find(&entries).Error; err != nil {
		return nil, dbError(err, "Audit log", "list")
	}
	return entries, nil
}

// Count counts entries matching the filter
func (r *GormAuditLogRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.spec.where(conn(ctx, r.db).Model(&identity.AuditLog{}), filter).Count(&count).Error; err != nil {
		return 0, dbError(err, "Audit log", "count")
	}
	return count, nil
}

var (
	_ identity.ProfileRepository    = (*GormProfileRepository)(nil)
	_ identity.InvitationRepository = (*GormInvitationRepository)(nil)
	_ identity.AuditLogRepository   = (*GormAuditLogRepository)(nil)
)
