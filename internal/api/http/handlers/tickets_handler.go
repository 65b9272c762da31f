package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-br/chamado-service/internal/api/dto"
	"github.com/helpdesk-br/chamado-service/internal/auth"
	"github.com/helpdesk-br/chamado-service/internal/domain"
	"github.com/helpdesk-br/chamado-service/internal/service"
	apperrors "github.com/helpdesk-br/chamado-service/pkg/util"
)

// TicketsHandler manages chamado endpoints for end users and staff.
type TicketsHandler struct {
	tickets *service.TicketService
	typing  *service.TypingService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, typing *service.TypingService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, typing: typing}
}

// CreateTicket POST /api/chamados.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, msgs, err := h.tickets.CreateTicket(c.UserContext(), principal, req.Mensagem)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket, msgs)})
}

// ListMine GET /api/chamados.
func (h *TicketsHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	rows, err := h.tickets.ListOwnTickets(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(rows)})
}

// ListAssigned GET /api/chamados/atribuidos.
func (h *TicketsHandler) ListAssigned(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	rows, err := h.tickets.ListTechnicianTickets(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(rows)})
}

// ListAll GET /api/chamados/todos.
func (h *TicketsHandler) ListAll(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	rows, err := h.tickets.ListAllTickets(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(rows)})
}

// GetTicket GET /api/chamados/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	ticket, msgs, err := h.tickets.GetTicketDetail(c.UserContext(), principal, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, msgs)})
}

// AddMessage POST /api/chamados/:id/mensagens.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.AddMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	userMsg, aiMsg, err := h.tickets.AddMessage(c.UserContext(), principal, ticketID, req.Texto)
	if err != nil {
		return err
	}
	resp := dto.ChatExchangeResponse{Mensagem: messageResponse(userMsg)}
	if aiMsg != nil {
		resp.Resposta = messageResponse(aiMsg)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": resp})
}

// ListMessages GET /api/chamados/:id/mensagens?afterId=N.
func (h *TicketsHandler) ListMessages(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	afterID, _ := strconv.ParseInt(c.Query("afterId", "0"), 10, 64)

	msgs, err := h.tickets.ListMessagesAfter(c.UserContext(), principal, ticketID, afterID)
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, *messageResponse(&msgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// PatchStatus PATCH /api/chamados/:id/status.
func (h *TicketsHandler) PatchStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.PatchStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.PatchStatus(c.UserContext(), principal, ticketID, domain.TicketStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(&domain.TicketWithStats{Ticket: *ticket})})
}

// Escalate POST /api/chamados/:id/escalar.
func (h *TicketsHandler) Escalate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}

	ticket, assignee, err := h.tickets.Escalate(c.UserContext(), principal, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.EscalateResponse{
		ID:          ticket.ID,
		Status:      string(ticket.Status),
		TecnicoID:   ticket.TecnicoID,
		TecnicoNome: assignee.Name,
	}})
}

// Resolve POST /api/chamados/:id/resolver.
func (h *TicketsHandler) Resolve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}

	ticket, err := h.tickets.Resolve(c.UserContext(), principal, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(&domain.TicketWithStats{Ticket: *ticket})})
}

// SetTyping POST /api/chamados/:id/typing.
func (h *TicketsHandler) SetTyping(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.SetTypingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.GetForParticipant(c.UserContext(), principal, ticketID)
	if err != nil {
		return err
	}
	kind := domain.SenderKindUser
	if ticket.AssignedTo(principal.ID) {
		kind = domain.SenderKindTecnico
	}
	h.typing.SetTyping(ticketID, principal.ID, principal.Name, kind, req.IsTyping)
	return c.SendStatus(fiber.StatusNoContent)
}

// GetTyping GET /api/chamados/:id/typing.
func (h *TicketsHandler) GetTyping(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}

	if _, err := h.tickets.GetForParticipant(c.UserContext(), principal, ticketID); err != nil {
		return err
	}
	statuses := h.typing.TypingUsers(ticketID, principal.ID)
	items := make([]dto.TypingStatusResponse, 0, len(statuses))
	for _, s := range statuses {
		items = append(items, dto.TypingStatusResponse{
			UserID:     s.UserID,
			UserName:   s.UserName,
			UserType:   string(s.UserType),
			IsTyping:   s.IsTyping,
			LastUpdate: s.LastUpdate,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("id de chamado inválido", nil)
	}
	return id, nil
}

func ticketSummaries(rows []domain.TicketWithStats) []dto.TicketSummary {
	items := make([]dto.TicketSummary, 0, len(rows))
	for i := range rows {
		items = append(items, ticketSummary(&rows[i]))
	}
	return items
}

func ticketSummary(row *domain.TicketWithStats) dto.TicketSummary {
	return dto.TicketSummary{
		ID:                row.ID,
		Titulo:            row.Titulo,
		Status:            string(row.Status),
		Categoria:         row.Categoria,
		Prioridade:        row.Prioridade,
		NomeUsuario:       row.NomeUsuario,
		Email:             row.Email,
		AtribuidoATecnico: row.AtribuidoATecnico,
		TecnicoID:         row.TecnicoID,
		CriadoEm:          row.CriadoEm,
		AtualizadoEm:      row.AtualizadoEm,
		TotalMensagens:    row.TotalMensagens,
		UltimaMensagem:    row.UltimaMensagem,
	}
}

func ticketDetail(ticket *domain.Ticket, messages []domain.ChatMessage) dto.TicketDetail {
	msgs := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		msgs = append(msgs, *messageResponse(&messages[i]))
	}
	return dto.TicketDetail{
		ID:                ticket.ID,
		Titulo:            ticket.Titulo,
		Status:            string(ticket.Status),
		Categoria:         ticket.Categoria,
		Prioridade:        ticket.Prioridade,
		NomeUsuario:       ticket.NomeUsuario,
		Email:             ticket.Email,
		UserID:            ticket.UserID,
		AtribuidoATecnico: ticket.AtribuidoATecnico,
		TecnicoID:         ticket.TecnicoID,
		CriadoEm:          ticket.CriadoEm,
		AtualizadoEm:      ticket.AtualizadoEm,
		Mensagens:         msgs,
	}
}

func messageResponse(msg *domain.ChatMessage) *dto.MessageResponse {
	return &dto.MessageResponse{
		ID:         msg.ID,
		Texto:      msg.Body,
		IsUser:     msg.IsUser,
		SenderID:   msg.SenderID,
		SenderType: string(msg.SenderKind),
		CreatedAt:  msg.CreatedAt,
	}
}
