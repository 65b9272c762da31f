package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-br/chamado-service/internal/ai"
	"github.com/helpdesk-br/chamado-service/internal/api/dto"
	"github.com/helpdesk-br/chamado-service/internal/auth"
	"github.com/helpdesk-br/chamado-service/internal/service"
	apperrors "github.com/helpdesk-br/chamado-service/pkg/util"
)

// ChatHandler serves the standalone assistant chat and the triage endpoint.
type ChatHandler struct {
	chat      *service.ChatService
	assistant ai.Assistant
}

// NewChatHandler constructs handler.
func NewChatHandler(chat *service.ChatService, assistant ai.Assistant) *ChatHandler {
	return &ChatHandler{chat: chat, assistant: assistant}
}

// SendMessage POST /api/chat/mensagens.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SendChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	userMsg, aiMsg, err := h.chat.SendMessage(c.UserContext(), principal, req.Texto)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.ChatExchangeResponse{
		Mensagem: messageResponse(userMsg),
		Resposta: messageResponse(aiMsg),
	}})
}

// ListMessages GET /api/chat/mensagens.
func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	msgs, err := h.chat.ListMessages(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, *messageResponse(&msgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Analyze POST /api/chat/analisar. Proxies a description to the triage model;
// a nil analysis means the model was unavailable and the caller should fall
// back to manual classification.
func (h *ChatHandler) Analyze(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Descricao == "" {
		return apperrors.NewValidationError("descrição é obrigatória", nil)
	}

	// Unlike ticket creation, this surface exists solely for the analysis,
	// so an AI outage is surfaced instead of masked with fallbacks.
	analysis, err := h.assistant.Analyze(c.UserContext(), req.Descricao)
	if err != nil || analysis == nil {
		return apperrors.NewUpstreamUnavailable("serviço de análise indisponível")
	}
	return c.JSON(fiber.Map{"data": dto.AnalyzeResponse{
		Titulo:          analysis.Titulo,
		Categoria:       analysis.Categoria,
		Prioridade:      analysis.Prioridade,
		SugestaoSolucao: analysis.SugestaoSolucao,
	}})
}
