package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-br/chamado-service/internal/api/dto"
	"github.com/helpdesk-br/chamado-service/internal/auth"
	"github.com/helpdesk-br/chamado-service/internal/domain"
	"github.com/helpdesk-br/chamado-service/internal/service"
	apperrors "github.com/helpdesk-br/chamado-service/pkg/util"
)

// AuthHandler serves registration, login and account self-service.
type AuthHandler struct {
	auth     *service.AuthService
	activity *service.ActivityService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, activity *service.ActivityService) *AuthHandler {
	return &AuthHandler{auth: authService, activity: activity}
}

// Register POST /api/auth/registrar.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Register(c.UserContext(), req.Nome, req.Email, req.Senha)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": authResponse(result)})
}

// Login POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Senha)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(result)})
}

// Me GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	user, err := h.auth.Me(c.UserContext(), principal.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// UpdateProfile PUT /api/auth/me.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.UpdateProfile(c.UserContext(), principal, req.Nome, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// ChangePassword POST /api/auth/senha.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.auth.ChangePassword(c.UserContext(), principal, req.SenhaAtual, req.NovaSenha); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Refresh POST /api/auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	result, err := h.auth.RefreshToken(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(result)})
}

// Heartbeat POST /api/auth/heartbeat.
func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	at, err := h.activity.Heartbeat(c.UserContext(), principal.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.HeartbeatResponse{LastActivityAt: at}})
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Usuario:   userResponse(result.User),
	}
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:              user.ID,
		Nome:            user.Name,
		Email:           user.Email,
		Role:            int(user.Role),
		RoleLabel:       user.Role.Label(),
		CriadoEm:        user.CreatedAt,
		UltimoLogin:     user.LastLoginAt,
		UltimaAtividade: user.LastActivityAt,
	}
}
