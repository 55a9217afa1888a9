package identity

import (
	"context"
	"testing"
	"time"

	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/cultivo/backend/internal/infrastructure/auth"
	"github.com/cultivo/backend/internal/infrastructure/cache"
	"github.com/cultivo/backend/internal/infrastructure/config"
	"github.com/cultivo/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "harvest2024"

type authFixture struct {
	profiles    *MockProfileRepository
	invitations *MockInvitationRepository
	audit       *MockAuditLogRepository
	notifier    *MockNotifier
	blacklist   *cache.MemoryRevocationStore
	jwt         *auth.JWTService
	svc         *AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		profiles:    new(MockProfileRepository),
		invitations: new(MockInvitationRepository),
		audit:       new(MockAuditLogRepository),
		notifier:    new(MockNotifier),
		blacklist:   cache.NewMemoryRevocationStore(),
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-chars",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 24 * time.Hour,
			Issuer:                 "cultivo-test",
			MaxRefreshCount:        3,
		}),
	}
	f.svc = NewAuthService(f.profiles, f.invitations, f.audit, &testutil.Transactor{},
		f.jwt, f.blacklist, f.notifier, DefaultAuthServiceConfig(), zap.NewNop())
	return f
}

func activeProfile(t *testing.T, role identity.Role) *identity.Profile {
	t.Helper()
	p, err := identity.NewProfile("grower@example.com", testPassword, "Grower", role)
	require.NoError(t, err)
	require.NoError(t, p.Activate())
	return p
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.Code
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("without invitation stays pending and sends verification", func(t *testing.T) {
		f := newAuthFixture()
		f.profiles.On("ExistsByEmail", ctx, "new@example.com").Return(false, nil)
		f.profiles.On("Create", ctx, mock.AnythingOfType("*identity.Profile")).Return(nil)
		f.audit.On("Create", ctx, mock.AnythingOfType("*identity.AuditLog")).Return(nil)
		f.notifier.On("SendVerification", ctx, "new@example.com", "New", mock.AnythingOfType("string")).Return(nil)

		res, err := f.svc.Signup(ctx, SignupInput{Email: " New@Example.com ", Password: testPassword, FullName: "New"})

		require.NoError(t, err)
		assert.True(t, res.RequiresVerification)
		assert.Equal(t, identity.ProfileStatusPending, res.User.Status)
		assert.Equal(t, identity.RoleViewer, res.User.Role)
		f.notifier.AssertExpectations(t)
	})

	t.Run("invitation sets role and activates", func(t *testing.T) {
		f := newAuthFixture()
		inv, err := identity.NewInvitation("qa@example.com", identity.RoleQAManager, uuid.New(), time.Hour)
		require.NoError(t, err)
		f.profiles.On("ExistsByEmail", ctx, "qa@example.com").Return(false, nil)
		f.invitations.On("FindByToken", ctx, inv.Token).Return(inv, nil)
		f.profiles.On("Create", ctx, mock.AnythingOfType("*identity.Profile")).Return(nil)
		f.invitations.On("Save", ctx, inv).Return(nil)
		f.audit.On("Create", ctx, mock.AnythingOfType("*identity.AuditLog")).Return(nil)

		res, err := f.svc.Signup(ctx, SignupInput{Email: "qa@example.com", Password: testPassword, InvitationToken: inv.Token})

		require.NoError(t, err)
		assert.False(t, res.RequiresVerification)
		assert.Equal(t, identity.RoleQAManager, res.User.Role)
		assert.Equal(t, identity.ProfileStatusActive, res.User.Status)
		assert.Equal(t, identity.InvitationStatusAccepted, inv.Status)
		f.notifier.AssertNotCalled(t, "SendVerification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invitation for another email", func(t *testing.T) {
		f := newAuthFixture()
		inv, err := identity.NewInvitation("qa@example.com", identity.RoleQAManager, uuid.New(), time.Hour)
		require.NoError(t, err)
		f.profiles.On("ExistsByEmail", ctx, "other@example.com").Return(false, nil)
		f.invitations.On("FindByToken", ctx, inv.Token).Return(inv, nil)

		_, err = f.svc.Signup(ctx, SignupInput{Email: "other@example.com", Password: testPassword, InvitationToken: inv.Token})

		assert.Equal(t, "INVALID_STATE", codeOf(t, err))
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newAuthFixture()
		f.profiles.On("ExistsByEmail", ctx, "grower@example.com").Return(true, nil)

		_, err := f.svc.Signup(ctx, SignupInput{Email: "grower@example.com", Password: testPassword})

		assert.Equal(t, "ALREADY_EXISTS", codeOf(t, err))
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success issues tokens carrying the role", func(t *testing.T) {
		f := newAuthFixture()
		p := activeProfile(t, identity.RoleOperator)
		f.profiles.On("FindByEmail", ctx, p.Email).Return(p, nil)
		f.profiles.On("Save", ctx, p).Return(nil)

		res, err := f.svc.Login(ctx, LoginInput{Email: p.Email, Password: testPassword})

		require.NoError(t, err)
		claims, err := f.jwt.ValidateAccessToken(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, p.ID.String(), claims.UserID)
		assert.Equal(t, "operator", claims.Role)
		assert.NotNil(t, p.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture()
		p := activeProfile(t, identity.RoleOperator)
		f.profiles.On("FindByEmail", ctx, p.Email).Return(p, nil)

		_, err := f.svc.Login(ctx, LoginInput{Email: p.Email, Password: "wrong-pass1"})

		assert.Equal(t, "INVALID_CREDENTIALS", codeOf(t, err))
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture()
		f.profiles.On("FindByEmail", ctx, "ghost@example.com").Return(nil, shared.NewNotFoundError("User"))

		_, err := f.svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: testPassword})

		assert.Equal(t, "INVALID_CREDENTIALS", codeOf(t, err))
	})

	t.Run("pending account", func(t *testing.T) {
		f := newAuthFixture()
		p, err := identity.NewProfile("pending@example.com", testPassword, "", identity.RoleViewer)
		require.NoError(t, err)
		f.profiles.On("FindByEmail", ctx, p.Email).Return(p, nil)

		_, err = f.svc.Login(ctx, LoginInput{Email: p.Email, Password: testPassword})

		assert.Equal(t, "ACCOUNT_PENDING", codeOf(t, err))
	})
}

func TestAuthService_RefreshRereadsRole(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	p := activeProfile(t, identity.RoleViewer)

	pair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{UserID: p.ID, Email: p.Email, Role: string(p.Role)})
	require.NoError(t, err)
	require.NoError(t, p.ChangeRole(identity.RoleManager))
	f.profiles.On("FindByID", ctx, p.ID).Return(p, nil)

	res, err := f.svc.RefreshToken(ctx, pair.RefreshToken)

	require.NoError(t, err)
	claims, err := f.jwt.ValidateAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "manager", claims.Role)

	_, err = f.svc.RefreshToken(ctx, res.AccessToken)
	assert.Equal(t, "TOKEN_INVALID", codeOf(t, err))
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	p := activeProfile(t, identity.RoleViewer)

	pair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{UserID: p.ID, Email: p.Email, Role: string(p.Role)})
	require.NoError(t, err)
	claims, err := f.jwt.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, auth.CheckRevoked(ctx, f.blacklist, claims))
	require.NoError(t, f.svc.Logout(ctx, claims))
	assert.ErrorIs(t, auth.CheckRevoked(ctx, f.blacklist, claims), auth.ErrTokenBlacklisted)
}

func TestAuthService_PasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email is silently accepted", func(t *testing.T) {
		f := newAuthFixture()
		f.profiles.On("FindByEmail", ctx, "ghost@example.com").Return(nil, shared.NewNotFoundError("User"))

		require.NoError(t, f.svc.RequestPasswordReset(ctx, "ghost@example.com"))
		f.notifier.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("request then reset", func(t *testing.T) {
		f := newAuthFixture()
		p := activeProfile(t, identity.RoleOperator)
		f.profiles.On("FindByEmail", ctx, p.Email).Return(p, nil)
		f.profiles.On("Save", ctx, p).Return(nil)
		f.notifier.On("SendPasswordReset", ctx, p.Email, "Grower", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

		require.NoError(t, f.svc.RequestPasswordReset(ctx, p.Email))
		require.NotNil(t, p.ResetToken)
		token := *p.ResetToken

		f.profiles.On("FindByResetToken", ctx, token).Return(p, nil)
		f.audit.On("Create", ctx, mock.AnythingOfType("*identity.AuditLog")).Return(nil)

		require.NoError(t, f.svc.ResetPassword(ctx, token, "newharvest99"))
		assert.True(t, p.VerifyPassword("newharvest99"))
		assert.Nil(t, p.ResetToken)

		revoked, err := f.blacklist.SessionRevoked(ctx, p.ID.String(), time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newAuthFixture()
		p := activeProfile(t, identity.RoleOperator)
		token := p.IssueResetToken(-time.Minute)
		f.profiles.On("FindByResetToken", ctx, token).Return(p, nil)

		err := f.svc.ResetPassword(ctx, token, "newharvest99")

		assert.Equal(t, "INVALID_INPUT", codeOf(t, err))
	})
}

func TestAuthService_VerifyEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	p, err := identity.NewProfile("pending@example.com", testPassword, "", identity.RoleViewer)
	require.NoError(t, err)
	token := *p.VerificationToken
	f.profiles.On("FindByVerificationToken", ctx, token).Return(p, nil)
	f.profiles.On("Save", ctx, p).Return(nil)
	f.profiles.On("FindByVerificationToken", ctx, "stale").Return(nil, shared.NewNotFoundError("User"))

	info, err := f.svc.VerifyEmail(ctx, token)

	require.NoError(t, err)
	assert.Equal(t, identity.ProfileStatusActive, info.Status)
	assert.True(t, info.EmailVerified)

	_, err = f.svc.VerifyEmail(ctx, "stale")
	assert.Equal(t, "INVALID_INPUT", codeOf(t, err))
}
