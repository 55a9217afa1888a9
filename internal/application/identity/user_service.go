package identity

import (
	"context"
	"time"

	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles profile administration and invitations
type UserService struct {
	profiles      identity.ProfileRepository
	invitations   identity.InvitationRepository
	audit         identity.AuditLogRepository
	tx            shared.Transactor
	notifier      Notifier
	invitationTTL time.Duration
	logger        *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	profiles identity.ProfileRepository,
	invitations identity.InvitationRepository,
	audit identity.AuditLogRepository,
	tx shared.Transactor,
	notifier Notifier,
	invitationTTL time.Duration,
	logger *zap.Logger,
) *UserService {
	if invitationTTL <= 0 {
		invitationTTL = 7 * 24 * time.Hour
	}
	return &UserService{
		profiles:      profiles,
		invitations:   invitations,
		audit:         audit,
		tx:            tx,
		notifier:      notifier,
		invitationTTL: invitationTTL,
		logger:        logger,
	}
}

// List returns a page of users
func (s *UserService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[UserInfo], error) {
	page, err := shared.ListPage[identity.Profile](ctx, s.profiles, filter)
	if err != nil {
		return shared.PageResult[UserInfo]{}, err
	}
	return shared.MapPage(page, ToUserInfo), nil
}

// GetByID returns a user
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(*profile)
	return &info, nil
}

// Update changes the role or status of a user. Admins cannot change their own.
func (s *UserService) Update(ctx context.Context, actorID, id uuid.UUID, req UpdateUserRequest) (*UserInfo, error) {
	if actorID == id {
		return nil, shared.NewInvalidStateError("You cannot change your own role or status")
	}
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details := map[string]any{}
	if req.Role != nil && *req.Role != profile.Role {
		details["role"] = map[string]any{"from": profile.Role, "to": *req.Role}
		if err := profile.ChangeRole(*req.Role); err != nil {
			return nil, err
		}
	}
	if req.Status != nil && *req.Status != profile.Status {
		details["status"] = map[string]any{"from": profile.Status, "to": *req.Status}
		if err := profile.ChangeStatus(*req.Status); err != nil {
			return nil, err
		}
	}

	if len(details) > 0 {
		err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := s.profiles.Save(ctx, profile); err != nil {
				return err
			}
			return s.audit.Create(ctx, identity.NewAuditLog(actorID, AuditActionUserUpdated, AuditEntityProfile, profile.ID, details))
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("User updated",
			zap.String("user_id", profile.ID.String()),
			zap.String("actor_id", actorID.String()),
			zap.String("role", string(profile.Role)),
			zap.String("status", string(profile.Status)))
	}

	info := ToUserInfo(*profile)
	return &info, nil
}

// Invite creates an invitation and emails the signup link
func (s *UserService) Invite(ctx context.Context, actorID uuid.UUID, req InviteUserRequest) (*identity.Invitation, error) {
	invitation, err := identity.NewInvitation(req.Email, req.Role, actorID, s.invitationTTL)
	if err != nil {
		return nil, err
	}
	exists, err := s.profiles.ExistsByEmail(ctx, invitation.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewAlreadyExistsError("User with this email already exists")
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.invitations.Create(ctx, invitation); err != nil {
			return err
		}
		return s.audit.Create(ctx, identity.NewAuditLog(actorID, AuditActionInvited, AuditEntityInvitation, invitation.ID, map[string]any{
			"email": invitation.Email,
			"role":  invitation.Role,
		}))
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.SendInvitation(ctx, invitation.Email, invitation.Role, invitation.Token, invitation.ExpiresAt); err != nil {
			s.logger.Warn("Failed to send invitation email", zap.String("invitation_id", invitation.ID.String()), zap.Error(err))
		}
	}
	return invitation, nil
}

// ListInvitations returns a page of invitations
func (s *UserService) ListInvitations(ctx context.Context, filter shared.Filter) (shared.PageResult[identity.Invitation], error) {
	return shared.ListPage[identity.Invitation](ctx, s.invitations, filter)
}

// RevokeInvitation cancels a pending invitation
func (s *UserService) RevokeInvitation(ctx context.Context, actorID, id uuid.UUID) (*identity.Invitation, error) {
	invitation, err := s.invitations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := invitation.Revoke(); err != nil {
		return nil, err
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.invitations.Save(ctx, invitation); err != nil {
			return err
		}
		return s.audit.Create(ctx, identity.NewAuditLog(actorID, AuditActionInviteRevoked, AuditEntityInvitation, invitation.ID, nil))
	})
	if err != nil {
		return nil, err
	}
	return invitation, nil
}
