package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reqflow/internal/middleware"
	"reqflow/internal/model"
	"reqflow/internal/repository"
	"reqflow/internal/workflow"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// DTOs for request validation
type RegisterRequest struct {
	Name       string  `json:"name" binding:"required"`
	Username   string  `json:"username" binding:"required"`
	Password   string  `json:"password" binding:"required,min=6"`
	Role       string  `json:"role" binding:"required"`
	Department string  `json:"department" binding:"required"`
	GroupIDs   []int64 `json:"group_ids"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// DTO for returning User without exposing sensitive data
type UserResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Username   string     `json:"username"`
	Role       model.Role `json:"role"`
	Department string     `json:"department"`
	GroupIDs   []int64    `json:"group_ids"`
	CreatedAt  string     `json:"created_at"`
}

// AuthService covers registration, login and session maintenance. The
// workflow core never sees credentials; it receives an already
// authenticated user id.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error
}

type authService struct {
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
}

// NewAuthService returns a new instance of AuthService
func NewAuthService(userRepo repository.UserRepository, auditRepo repository.AuditRepository) AuthService {
	return &authService{userRepo: userRepo, auditRepo: auditRepo}
}

// Helper: parse model to standard json API response
func mapToUserResponse(user *model.User) *UserResponse {
	groups := []int64(user.GroupIDs)
	if groups == nil {
		groups = []int64{}
	}
	return &UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Username:   user.Username,
		Role:       user.Role,
		Department: user.Department,
		GroupIDs:   groups,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
	}
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	role := model.Role(req.Role)
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: invalid role %q", workflow.ErrValidation, req.Role)
	}

	if _, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("%w: username already exists", workflow.ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:       req.Name,
		Username:   req.Username,
		Password:   string(hashedPassword),
		Role:       role,
		Department: req.Department,
		GroupIDs:   req.GroupIDs,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	details, _ := json.Marshal(map[string]interface{}{"role": role, "department": req.Department})
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:     &user.ID,
		Action:     model.ActionRegisterUser,
		EntityID:   user.ID.String(),
		EntityName: user.Username,
		Details:    string(details),
	})

	return mapToUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, errors.New("invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid username or password")
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error) {
	stored, err := s.userRepo.GetRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.userRepo.DeleteRefreshToken(ctx, req.RefreshToken)
		return nil, errors.New("refresh token expired")
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID.String())
	if err != nil {
		return nil, errors.New("user not found")
	}

	// Rotate: the old refresh token is single-use.
	if err := s.userRepo.DeleteRefreshToken(ctx, req.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.userRepo.DeleteRefreshToken(ctx, refreshToken)
}

func (s *authService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, workflow.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return mapToUserResponse(user), nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %s: %w", userID, workflow.ErrNotFound)
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", workflow.ErrAuthorization)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	// Changing the password invalidates outstanding refresh tokens.
	_ = s.userRepo.DeleteRefreshTokensForUser(ctx, userID)

	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:     &user.ID,
		Action:     model.ActionChangePassword,
		EntityID:   user.ID.String(),
		EntityName: user.Username,
		Details:    "{}",
	})

	return nil
}

func (s *authService) issueTokens(ctx context.Context, user *model.User) (*TokenResponse, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"name": user.Name,
		"exp":  time.Now().Add(accessTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	refresh := &model.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.userRepo.StoreRefreshToken(ctx, refresh); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenResponse{Token: tokenString, RefreshToken: refresh.Token}, nil
}
