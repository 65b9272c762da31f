package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-br/chamado-service/internal/auth"
	"github.com/helpdesk-br/chamado-service/internal/domain"
	"github.com/helpdesk-br/chamado-service/internal/repository"
	apperrors "github.com/helpdesk-br/chamado-service/pkg/util"
)

// UserService manages accounts on behalf of administrators: creating
// technician and admin accounts, changing roles and removing users.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

func requireAdmin(actor *domain.User) error {
	if actor == nil || actor.Role != domain.RoleAdministrador {
		return apperrors.NewForbidden("acesso restrito a administradores")
	}
	return nil
}

// ListUsers returns every account.
func (s *UserService) ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// GetUser fetches a single account.
func (s *UserService) GetUser(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Usuário", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// CreateUser creates an account with an arbitrary role.
func (s *UserService) CreateUser(ctx context.Context, actor *domain.User, name, email, password string, role domain.UserRole) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("nome e e-mail são obrigatórios", nil)
	}
	if len(password) < 6 {
		return nil, apperrors.NewValidationError("senha deve ter no mínimo 6 caracteres", nil)
	}
	if role != domain.RoleUsuario && role != domain.RoleTecnico && role != domain.RoleAdministrador {
		return nil, apperrors.NewValidationError("perfil inválido", map[string]any{"role": role})
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
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateUser changes name, e-mail and role of an account. The second return
// reports whether the role changed, so the caller can demand a fresh login.
func (s *UserService) UpdateUser(ctx context.Context, actor *domain.User, id, name, email string, role domain.UserRole) (*domain.User, bool, error) {
	user, err := s.GetUser(ctx, actor, id)
	if err != nil {
		return nil, false, err
	}

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name != "" {
		user.Name = name
	}
	if email != "" && email != user.Email {
		if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil && existing.ID != id {
			return nil, false, apperrors.NewConflict("e-mail já cadastrado", nil)
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, false, apperrors.MapError(err)
		}
		user.Email = email
	}
	roleChanged := false
	if role == domain.RoleUsuario || role == domain.RoleTecnico || role == domain.RoleAdministrador {
		roleChanged = user.Role != role
		user.Role = role
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, false, apperrors.MapError(err)
	}
	return user, roleChanged, nil
}

// DeleteUser removes an account. Administrators cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, actor *domain.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if actor.ID == id {
		return apperrors.NewValidationError("não é possível excluir a própria conta", nil)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Usuário", map[string]any{"user_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}
