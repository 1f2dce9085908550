package service

import (
	"context"
	"testing"
	"time"

	"reqflow/internal/model"
	"reqflow/internal/workflow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates user with hashed password", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		auditRepo := new(mockAuditRepo)
		svc := NewAuthService(userRepo, auditRepo)

		userRepo.On("GetByUsername", ctx, "alice").Return(nil, gorm.ErrRecordNotFound).Once()
		userRepo.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Username == "alice" &&
				u.Role == model.RoleRequester &&
				u.Password != "secret123" &&
				bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret123")) == nil
		})).Return(nil).Once()
		auditRepo.On("Log", ctx, mock.MatchedBy(func(e *model.AuditLog) bool {
			return e.Action == model.ActionRegisterUser
		})).Return(nil).Once()

		resp, err := svc.Register(ctx, RegisterRequest{
			Name:       "Alice",
			Username:   "alice",
			Password:   "secret123",
			Role:       "REQUESTER",
			Department: "IT",
			GroupIDs:   []int64{1},
		})
		require.NoError(t, err)
		assert.Equal(t, "alice", resp.Username)
		assert.Equal(t, []int64{1}, resp.GroupIDs)
		userRepo.AssertExpectations(t)
	})

	t.Run("Invalid role", func(t *testing.T) {
		svc := NewAuthService(new(mockUserRepo), new(mockAuditRepo))
		_, err := svc.Register(ctx, RegisterRequest{
			Name: "Bob", Username: "bob", Password: "secret123", Role: "SUPERVISOR", Department: "IT",
		})
		assert.ErrorIs(t, err, workflow.ErrValidation)
	})

	t.Run("Duplicate username", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		svc := NewAuthService(userRepo, new(mockAuditRepo))

		userRepo.On("GetByUsername", ctx, "alice").Return(&model.User{Username: "alice"}, nil).Once()

		_, err := svc.Register(ctx, RegisterRequest{
			Name: "Alice", Username: "alice", Password: "secret123", Role: "REQUESTER", Department: "IT",
		})
		assert.ErrorIs(t, err, workflow.ErrValidation)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	user := &model.User{
		ID:       uuid.New(),
		Name:     "Alice",
		Username: "alice",
		Role:     model.RoleRequester,
	}

	t.Run("Valid credentials issue both tokens", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		svc := NewAuthService(userRepo, new(mockAuditRepo))
		u := *user
		u.Password = hashOf(t, "secret123")

		userRepo.On("GetByUsername", ctx, "alice").Return(&u, nil).Once()
		userRepo.On("StoreRefreshToken", ctx, mock.MatchedBy(func(rt *model.RefreshToken) bool {
			return rt.UserID == u.ID && rt.Token != "" && rt.ExpiresAt.After(time.Now())
		})).Return(nil).Once()

		tokens, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "secret123"})
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.Token)
		assert.NotEmpty(t, tokens.RefreshToken)
	})

	t.Run("Wrong password and unknown user give the same error", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		svc := NewAuthService(userRepo, new(mockAuditRepo))
		u := *user
		u.Password = hashOf(t, "secret123")

		userRepo.On("GetByUsername", ctx, "alice").Return(&u, nil).Once()
		userRepo.On("GetByUsername", ctx, "mallory").Return(nil, gorm.ErrRecordNotFound).Once()

		_, errWrongPass := svc.Login(ctx, LoginRequest{Username: "alice", Password: "nope"})
		_, errNoUser := svc.Login(ctx, LoginRequest{Username: "mallory", Password: "nope"})
		require.Error(t, errWrongPass)
		require.Error(t, errNoUser)
		assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: uuid.New(), Name: "Alice", Username: "alice", Role: model.RoleRequester}

	t.Run("Rotates the refresh token", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		svc := NewAuthService(userRepo, new(mockAuditRepo))
		stored := &model.RefreshToken{
			UserID:    user.ID,
			Token:     "old-token",
			ExpiresAt: time.Now().Add(time.Hour),
		}

		userRepo.On("GetRefreshToken", ctx, "old-token").Return(stored, nil).Once()
		userRepo.On("GetByID", ctx, user.ID.String()).Return(user, nil).Once()
		userRepo.On("DeleteRefreshToken", ctx, "old-token").Return(nil).Once()
		userRepo.On("StoreRefreshToken", ctx, mock.MatchedBy(func(rt *model.RefreshToken) bool {
			return rt.Token != "old-token"
		})).Return(nil).Once()

		tokens, err := svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: "old-token"})
		require.NoError(t, err)
		assert.NotEqual(t, "old-token", tokens.RefreshToken)
		userRepo.AssertExpectations(t)
	})

	t.Run("Expired token is deleted and refused", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		svc := NewAuthService(userRepo, new(mockAuditRepo))
		stored := &model.RefreshToken{
			UserID:    user.ID,
			Token:     "stale",
			ExpiresAt: time.Now().Add(-time.Minute),
		}

		userRepo.On("GetRefreshToken", ctx, "stale").Return(stored, nil).Once()
		userRepo.On("DeleteRefreshToken", ctx, "stale").Return(nil).Once()

		_, err := svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: "stale"})
		assert.Error(t, err)
		userRepo.AssertExpectations(t)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("Rehashes and invalidates sessions", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		auditRepo := new(mockAuditRepo)
		svc := NewAuthService(userRepo, auditRepo)
		user := &model.User{ID: uuid.New(), Username: "alice", Password: hashOf(t, "old-pass-1")}

		userRepo.On("GetByID", ctx, user.ID.String()).Return(user, nil).Once()
		userRepo.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
			return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("new-pass-1")) == nil
		})).Return(nil).Once()
		userRepo.On("DeleteRefreshTokensForUser", ctx, user.ID.String()).Return(nil).Once()
		auditRepo.On("Log", ctx, mock.MatchedBy(func(e *model.AuditLog) bool {
			return e.Action == model.ActionChangePassword
		})).Return(nil).Once()

		err := svc.ChangePassword(ctx, user.ID.String(), ChangePasswordRequest{
			CurrentPassword: "old-pass-1",
			NewPassword:     "new-pass-1",
		})
		require.NoError(t, err)
		userRepo.AssertExpectations(t)
	})

	t.Run("Wrong current password is denied", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		svc := NewAuthService(userRepo, new(mockAuditRepo))
		user := &model.User{ID: uuid.New(), Username: "alice", Password: hashOf(t, "old-pass-1")}

		userRepo.On("GetByID", ctx, user.ID.String()).Return(user, nil).Once()

		err := svc.ChangePassword(ctx, user.ID.String(), ChangePasswordRequest{
			CurrentPassword: "guess",
			NewPassword:     "new-pass-1",
		})
		assert.ErrorIs(t, err, workflow.ErrAuthorization)
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
