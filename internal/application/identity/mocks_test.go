package identity

import (
	"context"
	"time"

	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/cultivo/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockProfileRepository struct {
	testutil.MockRepository[identity.Profile]
}

func (m *MockProfileRepository) profile(args mock.Arguments) (*identity.Profile, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByEmail(ctx context.Context, email string) (*identity.Profile, error) {
	return m.profile(m.Called(ctx, email))
}

func (m *MockProfileRepository) FindByVerificationToken(ctx context.Context, token string) (*identity.Profile, error) {
	return m.profile(m.Called(ctx, token))
}

func (m *MockProfileRepository) FindByResetToken(ctx context.Context, token string) (*identity.Profile, error) {
	return m.profile(m.Called(ctx, token))
}

func (m *MockProfileRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.Profile, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type MockInvitationRepository struct {
	testutil.MockRepository[identity.Invitation]
}

func (m *MockInvitationRepository) FindByToken(ctx context.Context, token string) (*identity.Invitation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Invitation), args.Error(1)
}

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, entry *identity.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockAuditLogRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.AuditLog, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.AuditLog), args.Error(1)
}

func (m *MockAuditLogRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendVerification(ctx context.Context, to, name, token string) error {
	return m.Called(ctx, to, name, token).Error(0)
}

func (m *MockNotifier) SendPasswordReset(ctx context.Context, to, name, token string, expiresAt time.Time) error {
	return m.Called(ctx, to, name, token, expiresAt).Error(0)
}

func (m *MockNotifier) SendInvitation(ctx context.Context, to string, role identity.Role, token string, expiresAt time.Time) error {
	return m.Called(ctx, to, role, token, expiresAt).Error(0)
}
