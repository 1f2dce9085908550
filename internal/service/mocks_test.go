package service

import (
	"context"

	"reqflow/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockRequestRepo struct{ mock.Mock }

func (m *mockRequestRepo) Create(ctx context.Context, req *model.Request) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockRequestRepo) FindByID(ctx context.Context, id string) (*model.Request, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*model.Request), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRequestRepo) FindByIDForUpdate(ctx context.Context, id string) (*model.Request, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*model.Request), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRequestRepo) ListForRequester(ctx context.Context, requesterID uuid.UUID) ([]model.Request, error) {
	args := m.Called(ctx, requesterID)
	if r := args.Get(0); r != nil {
		return r.([]model.Request), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRequestRepo) ListPendingForApprover(ctx context.Context, role model.Role, groupIDs []int64, anyGroup bool) ([]model.Request, error) {
	args := m.Called(ctx, role, groupIDs, anyGroup)
	if r := args.Get(0); r != nil {
		return r.([]model.Request), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRequestRepo) ListTouchedBy(ctx context.Context, userID uuid.UUID, userName string) ([]model.Request, error) {
	args := m.Called(ctx, userID, userName)
	if r := args.Get(0); r != nil {
		return r.([]model.Request), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRequestRepo) NextID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockRequestRepo) UpdateTransition(ctx context.Context, req *model.Request, expectedApprover model.Role) (int64, error) {
	args := m.Called(ctx, req, expectedApprover)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRequestRepo) UpdatePayload(ctx context.Context, req *model.Request) error {
	return m.Called(ctx, req).Error(0)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if r := args.Get(0); r != nil {
		return r.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) StoreRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockUserRepo) GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	args := m.Called(ctx, token)
	if r := args.Get(0); r != nil {
		return r.(*model.RefreshToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockUserRepo) DeleteRefreshTokensForUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockAuditRepo struct{ mock.Mock }

func (m *mockAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockAuditRepo) List(ctx context.Context, action string, page, limit int) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, action, page, limit)
	if r := args.Get(0); r != nil {
		return r.([]model.AuditLog), args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

// passthroughTx runs the transactional closure directly against the ambient
// context, standing in for a real database transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}
