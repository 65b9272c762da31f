package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/helpdesk-br/chamado-service/internal/auth"
	"github.com/helpdesk-br/chamado-service/internal/domain"
	"github.com/helpdesk-br/chamado-service/internal/repository"
	apperrors "github.com/helpdesk-br/chamado-service/pkg/util"
)

// AuthService handles registration, login and account self-service.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	activity   *ActivityService
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Activity   *ActivityService
	BcryptCost int
	Logger     *zap.Logger
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		activity:   deps.Activity,
		bcryptCost: deps.BcryptCost,
		logger:     logger,
	}
}

// AuthResult carries a signed token alongside the account it belongs to.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a new account with the Usuário role and signs it in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("nome e e-mail são obrigatórios", nil)
	}
	if len(password) < 6 {
		return nil, apperrors.NewValidationError("senha deve ter no mínimo 6 caracteres", nil)
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("e-mail já cadastrado", nil)
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUsuario,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return s.issueToken(ctx, user)
}

// Login verifies credentials and issues a token. A successful login counts
// as activity for the online window.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("credenciais inválidas")
		}
		return nil, apperrors.MapError(err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("credenciais inválidas")
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	user.LastActivityAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Warn("failed to stamp last login", zap.String("user_id", user.ID), zap.Error(err))
	}
	if s.activity != nil {
		if _, err := s.activity.Heartbeat(ctx, user.ID); err != nil {
			s.logger.Warn("login heartbeat failed", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return s.issueToken(ctx, user)
}

// Me returns the fresh account record for the authenticated caller.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Usuário", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateProfile changes the caller's name and, when it is not already in use,
// e-mail address.
func (s *AuthService) UpdateProfile(ctx context.Context, caller *domain.User, name, email string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("nome e e-mail são obrigatórios", nil)
	}

	if email != caller.Email {
		if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil && existing.ID != caller.ID {
			return nil, apperrors.NewConflict("e-mail já cadastrado", nil)
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
	}

	caller.Name = name
	caller.Email = email
	if err := s.users.Update(ctx, caller); err != nil {
		return nil, apperrors.MapError(err)
	}
	return caller, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *AuthService) ChangePassword(ctx context.Context, caller *domain.User, current, next string) error {
	if err := auth.ComparePassword(caller.PasswordHash, current); err != nil {
		return apperrors.NewUnauthorized("senha atual incorreta")
	}
	if len(next) < 6 {
		return apperrors.NewValidationError("senha deve ter no mínimo 6 caracteres", nil)
	}

	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	caller.PasswordHash = hash
	if err := s.users.Update(ctx, caller); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// RefreshToken issues a fresh token for the already-authenticated caller.
func (s *AuthService) RefreshToken(ctx context.Context, caller *domain.User) (*AuthResult, error) {
	return s.issueToken(ctx, caller)
}

// TokenManager exposes the signer for the auth middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

func (s *AuthService) issueToken(_ context.Context, user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
