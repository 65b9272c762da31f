package events

import (
	"time"

	"github.com/helpdesk-br/chamado-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketMessageAdded  EventType = "ticket_message_added"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketEscalated     EventType = "ticket_escalated"
	EventTicketResolved      EventType = "ticket_resolved"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string          `json:"user_id"`
	Role   domain.UserRole `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Titulo     string  `json:"titulo"`
	Categoria  *string `json:"categoria,omitempty"`
	Prioridade *string `json:"prioridade,omitempty"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID   int64             `json:"message_id"`
	SenderKind  domain.SenderKind `json:"sender_kind"`
	AIResponded bool              `json:"ai_responded"`
	BodyPreview string            `json:"body_preview"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	TecnicoID   string `json:"tecnico_id"`
	TecnicoNome string `json:"tecnico_nome"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	ResolvedByID string `json:"resolved_by_id"`
	AdminAction  bool   `json:"admin_action"`
}
