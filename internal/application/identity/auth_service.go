package identity

import (
	"context"
	"errors"
	"time"

	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/cultivo/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Audit actions written by the auth and user services
const (
	AuditActionSignup          = "user.signup"
	AuditActionPasswordReset   = "user.password_reset"
	AuditActionPasswordChanged = "user.password_changed"
	AuditActionUserUpdated     = "user.updated"
	AuditActionInvited         = "invitation.created"
	AuditActionInviteRevoked   = "invitation.revoked"
	AuditEntityProfile         = "profile"
	AuditEntityInvitation      = "invitation"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	ResetTokenTTL time.Duration // lifetime of password reset tokens
	SessionTTL    time.Duration // how long a session revocation is remembered, at least the refresh token lifetime
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		ResetTokenTTL: time.Hour,
		SessionTTL:    7 * 24 * time.Hour,
	}
}

// AuthService handles authentication operations
type AuthService struct {
	profiles    identity.ProfileRepository
	invitations identity.InvitationRepository
	audit       identity.AuditLogRepository
	tx          shared.Transactor
	jwtService  *auth.JWTService
	blacklist   auth.TokenBlacklist
	notifier    Notifier
	config      AuthServiceConfig
	logger      *zap.Logger
}

// NewAuthService creates a new authentication service. blacklist and notifier may be nil.
func NewAuthService(
	profiles identity.ProfileRepository,
	invitations identity.InvitationRepository,
	audit identity.AuditLogRepository,
	tx shared.Transactor,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	notifier Notifier,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		profiles:    profiles,
		invitations: invitations,
		audit:       audit,
		tx:          tx,
		jwtService:  jwtService,
		blacklist:   blacklist,
		notifier:    notifier,
		config:      config,
		logger:      logger,
	}
}

// Signup registers a profile. A valid invitation sets the role and activates
// the account; otherwise the account stays pending until the email is verified.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*SignupResult, error) {
	email, err := identity.NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	exists, err := s.profiles.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewAlreadyExistsError("User with this email already exists")
	}

	var invitation *identity.Invitation
	role := identity.RoleViewer
	if input.InvitationToken != "" {
		invitation, err = s.invitations.FindByToken(ctx, input.InvitationToken)
		if err != nil {
			if shared.IsNotFound(err) {
				return nil, shared.NewInvalidInputError("Invalid invitation")
			}
			return nil, err
		}
		if !invitation.Usable(email, time.Now()) {
			return nil, shared.NewInvalidStateError("Invitation is not valid for this email")
		}
		role = invitation.Role
	}

	profile, err := identity.NewProfile(email, input.Password, input.FullName, role)
	if err != nil {
		return nil, err
	}
	if invitation != nil {
		if err := profile.Activate(); err != nil {
			return nil, err
		}
		if err := invitation.Accept(); err != nil {
			return nil, err
		}
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.profiles.Create(ctx, profile); err != nil {
			return err
		}
		if invitation != nil {
			if err := s.invitations.Save(ctx, invitation); err != nil {
				return err
			}
		}
		return s.audit.Create(ctx, identity.NewAuditLog(profile.ID, AuditActionSignup, AuditEntityProfile, profile.ID, map[string]any{
			"role":    profile.Role,
			"invited": invitation != nil,
		}))
	})
	if err != nil {
		return nil, err
	}

	requiresVerification := !profile.IsActive()
	if requiresVerification && s.notifier != nil && profile.VerificationToken != nil {
		if err := s.notifier.SendVerification(ctx, profile.Email, profile.DisplayName(), *profile.VerificationToken); err != nil {
			s.logger.Warn("Failed to send verification email", zap.String("user_id", profile.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("User signed up",
		zap.String("user_id", profile.ID.String()),
		zap.String("role", string(profile.Role)),
		zap.Bool("invited", invitation != nil))

	return &SignupResult{User: ToUserInfo(*profile), RequiresVerification: requiresVerification}, nil
}

// Login authenticates a profile and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	profile, err := s.profiles.FindByEmail(ctx, input.Email)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, invalidCredentials()
		}
		return nil, err
	}
	if !profile.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", profile.ID.String()))
		return nil, invalidCredentials()
	}
	if err := accountUsable(profile); err != nil {
		s.logger.Warn("Login attempt for unusable account",
			zap.String("user_id", profile.ID.String()),
			zap.String("status", string(profile.Status)))
		return nil, err
	}

	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: profile.ID,
		Email:  profile.Email,
		Role:   string(profile.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	profile.RecordLogin()
	if err := s.profiles.Save(ctx, profile); err != nil {
		// the login still succeeds
		s.logger.Error("Failed to record login", zap.String("user_id", profile.ID.String()), zap.Error(err))
	}

	s.logger.Info("User logged in", zap.String("user_id", profile.ID.String()))

	return &LoginResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserInfo(*profile),
	}, nil
}

// RefreshToken exchanges a refresh token for a new pair. The role is re-read
// from the profile so role changes apply on refresh.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*RefreshTokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, tokenError(err)
	}
	if err := auth.CheckRevoked(ctx, s.blacklist, claims); err != nil {
		return nil, tokenError(err)
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("TOKEN_INVALID", "User no longer exists")
		}
		return nil, err
	}
	if !profile.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	pair, err := s.jwtService.RefreshTokenPair(refreshToken, profile.Email, string(profile.Role))
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, tokenError(err)
	}

	return &RefreshTokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}, nil
}

// VerifyEmail activates the pending profile holding the token
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*UserInfo, error) {
	profile, err := s.profiles.FindByVerificationToken(ctx, token)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewInvalidInputError("Invalid or expired verification token")
		}
		return nil, err
	}
	if err := profile.Activate(); err != nil {
		return nil, err
	}
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	info := ToUserInfo(*profile)
	return &info, nil
}

// RequestPasswordReset emails a reset token. Unknown or disabled addresses
// are ignored so the response does not reveal which emails are registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	profile, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil
		}
		return err
	}
	if profile.Status == identity.ProfileStatusInactive || profile.Status == identity.ProfileStatusSuspended {
		return nil
	}

	token := profile.IssueResetToken(s.config.ResetTokenTTL)
	if err := s.profiles.Save(ctx, profile); err != nil {
		return err
	}
	if s.notifier == nil {
		return nil
	}
	if err := s.notifier.SendPasswordReset(ctx, profile.Email, profile.DisplayName(), token, *profile.ResetExpiresAt); err != nil {
		s.logger.Warn("Failed to send password reset email", zap.String("user_id", profile.ID.String()), zap.Error(err))
	}
	return nil
}

// ResetPassword sets a new password with a reset token and ends all sessions
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	profile, err := s.profiles.FindByResetToken(ctx, token)
	if err != nil {
		if shared.IsNotFound(err) {
			return invalidResetToken()
		}
		return err
	}
	if !profile.ResetTokenValid(time.Now()) {
		return invalidResetToken()
	}
	if err := profile.SetPassword(password); err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.profiles.Save(ctx, profile); err != nil {
			return err
		}
		return s.audit.Create(ctx, identity.NewAuditLog(profile.ID, AuditActionPasswordReset, AuditEntityProfile, profile.ID, nil))
	})
	if err != nil {
		return err
	}
	s.revokeSessions(ctx, profile.ID)
	return nil
}

// ChangePassword replaces the password after checking the current one.
// Every existing token of the profile is revoked, including the caller's.
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	profile, err := s.profiles.FindByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if err := profile.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.profiles.Save(ctx, profile); err != nil {
			return err
		}
		return s.audit.Create(ctx, identity.NewAuditLog(profile.ID, AuditActionPasswordChanged, AuditEntityProfile, profile.ID, nil))
	})
	if err != nil {
		return err
	}
	s.revokeSessions(ctx, profile.ID)
	s.logger.Info("User password changed", zap.String("user_id", profile.ID.String()))
	return nil
}

// Logout blacklists the access token until it expires
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil || claims == nil || claims.ID == "" {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke token", zap.String("user_id", claims.UserID), zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke token")
	}
	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

// Me returns the profile of the caller
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(*profile)
	return &info, nil
}

func (s *AuthService) revokeSessions(ctx context.Context, userID uuid.UUID) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.RevokeSessions(ctx, userID.String(), s.config.SessionTTL); err != nil {
		s.logger.Error("Failed to revoke sessions", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func accountUsable(p *identity.Profile) error {
	switch p.Status {
	case identity.ProfileStatusActive:
		return nil
	case identity.ProfileStatusPending:
		return shared.NewDomainError("ACCOUNT_PENDING", "Email address has not been verified")
	case identity.ProfileStatusSuspended:
		return shared.NewDomainError("ACCOUNT_SUSPENDED", "Account has been suspended")
	default:
		return shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}
}

func invalidCredentials() error {
	return shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
}

func invalidResetToken() error {
	return shared.NewInvalidInputError("Invalid or expired reset token")
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType), errors.Is(err, auth.ErrInvalidClaims):
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
	}
}
