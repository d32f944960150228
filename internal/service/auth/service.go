package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/carewell/carehome-api/internal/model"
	"github.com/carewell/carehome-api/internal/repository"
	"github.com/carewell/carehome-api/pkg/auth"
	apperrors "github.com/carewell/carehome-api/pkg/errors"
	"github.com/carewell/carehome-api/pkg/security"
)

// Service handles registration, login and token checks.
type Service struct {
	userRepo repository.UserRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher) *Service {
	return &Service{
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("username already exists")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	role := req.Role
	if role == "" {
		role = model.RoleStaff
	}

	user := &model.User{
		Base:         model.Base{ID: uuid.New()},
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.Unauthorized("invalid username or password", nil)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized("invalid username or password", nil)
	}

	token, err := s.jwtSvc.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.LoginResponse{Token: token, User: user}, nil
}

// VerifyAdmin validates the token and re-reads the user's role from storage
// so a stale token cannot keep admin rights after a role change.
func (s *Service) VerifyAdmin(ctx context.Context, token string) (*auth.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token", err)
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.Unauthorized("user no longer exists", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.Role != model.RoleAdmin {
		return nil, apperrors.Forbidden("admin role required")
	}

	claims.Role = user.Role
	return claims, nil
}

// ValidateToken verifies a bearer token without a role check.
func (s *Service) ValidateToken(ctx context.Context, token string) (*auth.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token", err)
	}
	return claims, nil
}
