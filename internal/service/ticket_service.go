package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/helpdesk-br/chamado-service/internal/ai"
	"github.com/helpdesk-br/chamado-service/internal/domain"
	"github.com/helpdesk-br/chamado-service/internal/events"
	"github.com/helpdesk-br/chamado-service/internal/repository"
	apperrors "github.com/helpdesk-br/chamado-service/pkg/util"
)

const (
	minInitialMessageLen = 10
	maxMessageLen        = 5000
	maxInitialMessageLen = 1000
)

// TicketService owns the chamado lifecycle: creation with AI triage,
// conversation, escalation to a technician and resolution.
type TicketService struct {
	tickets    repository.TicketRepository
	messages   repository.MessageRepository
	assistant  ai.Assistant
	selector   *AssignmentService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	MessageRepo repository.MessageRepository
	Assistant   ai.Assistant
	Selector    *AssignmentService
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		messages:   deps.MessageRepo,
		assistant:  deps.Assistant,
		selector:   deps.Selector,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateTicket opens a chamado from the caller's problem description. The AI
// classifies the description into title/category/priority and drafts the
// first reply; when the AI is unavailable the ticket is still created with
// fallback values; AI downtime must never block creation.
func (s *TicketService) CreateTicket(ctx context.Context, caller *domain.User, initialMessage string) (*domain.Ticket, []domain.ChatMessage, error) {
	initialMessage = strings.TrimSpace(initialMessage)
	// Limits count characters, not bytes; accented text must not skew them.
	if utf8.RuneCountInString(initialMessage) < minInitialMessageLen {
		return nil, nil, apperrors.NewValidationError("Descrição deve ter no mínimo 10 caracteres", nil)
	}
	if utf8.RuneCountInString(initialMessage) > maxInitialMessageLen {
		return nil, nil, apperrors.NewValidationError("Descrição deve ter no máximo 1000 caracteres", nil)
	}

	ticket := &domain.Ticket{
		UserID:      caller.ID,
		NomeUsuario: caller.Name,
		Titulo:      ai.FallbackTitle,
		Status:      domain.TicketStatusInProgress,
	}
	if caller.Email != "" {
		email := caller.Email
		ticket.Email = &email
	}

	analysis, err := s.assistant.Analyze(ctx, initialMessage)
	if err != nil || analysis == nil {
		s.logger.Warn("ai analysis unavailable, using fallback values", zap.Error(err))
	} else {
		if analysis.Titulo != "" {
			ticket.Titulo = analysis.Titulo
		}
		if analysis.Categoria != "" {
			categoria := analysis.Categoria
			ticket.Categoria = &categoria
		}
		if analysis.Prioridade != "" {
			prioridade := analysis.Prioridade
			ticket.Prioridade = &prioridade
		}
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	userMsg, err := s.appendMessage(ctx, ticket.ID, initialMessage, &caller.ID, domain.SenderKindUser)
	if err != nil {
		return nil, nil, err
	}

	replyText := s.assistant.Reply(ctx, initialMessage, nil)
	aiMsg, err := s.appendMessage(ctx, ticket.ID, replyText, nil, domain.SenderKindAI)
	if err != nil {
		return nil, nil, err
	}

	s.publishEvent(ctx, caller, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Titulo:     ticket.Titulo,
			Categoria:  ticket.Categoria,
			Prioridade: ticket.Prioridade,
		},
	})

	return ticket, []domain.ChatMessage{*userMsg, *aiMsg}, nil
}

// AddMessage appends the caller's message to the conversation. While no
// technician is assigned the AI answers with the recent history as context;
// once assigned the conversation is human-only.
func (s *TicketService) AddMessage(ctx context.Context, caller *domain.User, ticketID int64, text string) (*domain.ChatMessage, *domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, apperrors.NewValidationError("Mensagem não pode estar vazia", nil)
	}
	if utf8.RuneCountInString(text) > maxMessageLen {
		return nil, nil, apperrors.NewValidationError("Mensagem deve ter no máximo 5000 caracteres", nil)
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if ticket.UserID != caller.ID && !ticket.AssignedTo(caller.ID) {
		return nil, nil, apperrors.NewForbidden("acesso negado ao chamado")
	}
	if ticket.Status == domain.TicketStatusResolved {
		return nil, nil, apperrors.NewInvalidState("Este chamado já foi resolvido e não aceita mais mensagens")
	}

	kind := domain.SenderKindUser
	if ticket.AssignedTo(caller.ID) {
		kind = domain.SenderKindTecnico
	}

	// Snapshot the history before appending so the prompt excludes the new
	// message; the AI call itself runs without any ticket-level lock.
	var history []domain.ChatMessage
	aiEligible := ticket.TecnicoID == nil
	if aiEligible {
		history, err = s.messages.ListByTicket(ctx, ticketID)
		if err != nil {
			return nil, nil, apperrors.MapError(err)
		}
	}

	userMsg, err := s.appendMessage(ctx, ticketID, text, &caller.ID, kind)
	if err != nil {
		return nil, nil, err
	}

	var aiMsg *domain.ChatMessage
	if aiEligible {
		replyText := s.assistant.Reply(ctx, text, history)
		aiMsg, err = s.appendMessage(ctx, ticketID, replyText, nil, domain.SenderKindAI)
		if err != nil {
			return nil, nil, err
		}
	}

	// Only the timestamp is written here; a concurrent escalation may have
	// assigned the ticket while the AI call was pending, and a full-row write
	// from the stale snapshot would undo it.
	if err := s.tickets.Touch(ctx, ticketID); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, caller, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticketID,
		Payload: events.TicketMessageAddedPayload{
			MessageID:   userMsg.ID,
			SenderKind:  kind,
			AIResponded: aiMsg != nil,
			BodyPreview: preview(text, 120),
		},
	})

	return userMsg, aiMsg, nil
}

// PatchStatus sets the ticket status. Owner-only; setting a resolved ticket
// back to "Em Andamento" is the reopen path.
func (s *TicketService) PatchStatus(ctx context.Context, caller *domain.User, ticketID int64, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("status inválido", map[string]any{"status": newStatus})
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != caller.ID {
		return nil, apperrors.NewForbidden("apenas o solicitante pode alterar o status")
	}

	oldStatus := ticket.Status
	if err := s.tickets.SetStatus(ctx, ticketID, newStatus); err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket, err = s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, caller, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticketID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return ticket, nil
}

// Escalate hands the ticket to a technician. Owner-only, at most once per
// ticket: the sticky latch makes a second escalation fail even under
// concurrent calls, because the repository write is conditional on the latch
// still being clear.
func (s *TicketService) Escalate(ctx context.Context, caller *domain.User, ticketID int64) (*domain.Ticket, *domain.User, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if ticket.UserID != caller.ID {
		return nil, nil, apperrors.NewForbidden("apenas o solicitante pode escalar o chamado")
	}
	if ticket.AtribuidoATecnico {
		return nil, nil, apperrors.NewInvalidState("Este chamado já foi atribuído a um técnico")
	}

	assignee, err := s.selector.PickAssignee(ctx)
	if err != nil {
		return nil, nil, err
	}
	if assignee == nil {
		return nil, nil, apperrors.NewNoTechnicianAvailable()
	}

	if err := s.tickets.AssignTechnician(ctx, ticketID, assignee.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the race: another escalation set the latch first.
			return nil, nil, apperrors.NewInvalidState("Este chamado já foi atribuído a um técnico")
		}
		return nil, nil, apperrors.MapError(err)
	}

	ticket, err = s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}

	s.publishEvent(ctx, caller, events.Event{
		Type:     events.EventTicketEscalated,
		TicketID: ticketID,
		Payload: events.TicketEscalatedPayload{
			TecnicoID:   assignee.ID,
			TecnicoNome: assignee.Name,
		},
	})
	return ticket, assignee, nil
}

// Resolve marks the ticket resolved. Allowed for the assigned technician or
// any administrator; resolving an already-resolved ticket is a no-op success.
func (s *TicketService) Resolve(ctx context.Context, caller *domain.User, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.AssignedTo(caller.ID) && caller.Role != domain.RoleAdministrador {
		return nil, apperrors.NewForbidden("apenas o técnico atribuído ou um administrador pode resolver")
	}
	if ticket.Status == domain.TicketStatusResolved {
		return ticket, nil
	}

	if err := s.tickets.SetStatus(ctx, ticketID, domain.TicketStatusResolved); err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket, err = s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, caller, events.Event{
		Type:     events.EventTicketResolved,
		TicketID: ticketID,
		Payload: events.TicketResolvedPayload{
			ResolvedByID: caller.ID,
			AdminAction:  !ticket.AssignedTo(caller.ID),
		},
	})
	return ticket, nil
}

// ListOwnTickets returns the caller's tickets, most recently touched first.
func (s *TicketService) ListOwnTickets(ctx context.Context, caller *domain.User) ([]domain.TicketWithStats, error) {
	ownerID := caller.ID
	rows, err := s.tickets.ListWithStats(ctx, repository.TicketFilter{OwnerID: &ownerID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rows, nil
}

// ListTechnicianTickets returns tickets assigned to the caller.
func (s *TicketService) ListTechnicianTickets(ctx context.Context, caller *domain.User) ([]domain.TicketWithStats, error) {
	if caller.Role != domain.RoleTecnico && caller.Role != domain.RoleAdministrador {
		return nil, apperrors.NewForbidden("acesso restrito a técnicos e administradores")
	}
	tecnicoID := caller.ID
	rows, err := s.tickets.ListWithStats(ctx, repository.TicketFilter{TecnicoID: &tecnicoID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rows, nil
}

// ListAllTickets returns every ticket, for the reporting view.
func (s *TicketService) ListAllTickets(ctx context.Context, caller *domain.User) ([]domain.TicketWithStats, error) {
	if caller.Role != domain.RoleTecnico && caller.Role != domain.RoleAdministrador {
		return nil, apperrors.NewForbidden("acesso restrito a técnicos e administradores")
	}
	rows, err := s.tickets.ListWithStats(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rows, nil
}

// GetTicketDetail returns the ticket with its full conversation. Accessible
// to the owner and the assigned technician.
func (s *TicketService) GetTicketDetail(ctx context.Context, caller *domain.User, ticketID int64) (*domain.Ticket, []domain.ChatMessage, error) {
	ticket, err := s.GetForParticipant(ctx, caller, ticketID)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, msgs, nil
}

// ListMessagesAfter is the polling primitive: messages with ID strictly
// greater than afterID, ascending. Read-only.
func (s *TicketService) ListMessagesAfter(ctx context.Context, caller *domain.User, ticketID, afterID int64) ([]domain.ChatMessage, error) {
	if _, err := s.GetForParticipant(ctx, caller, ticketID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListAfter(ctx, ticketID, afterID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

// GetForParticipant fetches the ticket and checks that the caller is the
// owner or the assigned technician. Used by the typing endpoints too.
func (s *TicketService) GetForParticipant(ctx context.Context, caller *domain.User, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != caller.ID && !ticket.AssignedTo(caller.ID) {
		return nil, apperrors.NewForbidden("acesso negado ao chamado")
	}
	return ticket, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Chamado", map[string]any{"chamado_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) appendMessage(ctx context.Context, ticketID int64, body string, senderID *string, kind domain.SenderKind) (*domain.ChatMessage, error) {
	msg := &domain.ChatMessage{
		TicketID:   &ticketID,
		Body:       body,
		IsUser:     kind != domain.SenderKindAI,
		SenderID:   senderID,
		SenderKind: kind,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}
	return msg, nil
}

func (s *TicketService) publishEvent(ctx context.Context, actor *domain.User, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Actor = events.Actor{UserID: actor.ID, Role: actor.Role}
	_ = s.dispatcher.Publish(ctx, event)
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
