package domain

import "time"

// SenderKind indicates who authored a chat message.
type SenderKind string

const (
	SenderKindUser    SenderKind = "user"
	SenderKindTecnico SenderKind = "tecnico"
	SenderKindAI      SenderKind = "ai"
)

// ChatMessage is one entry in a ticket conversation. Messages are append-only
// and totally ordered by (created_at, id); the monotonically increasing ID
// doubles as the cursor for incremental fetches.
//
// SenderID is nil for AI-authored messages. TicketID is nil for messages on
// the standalone chat surface that is not attached to any ticket.
type ChatMessage struct {
	ID         int64
	TicketID   *int64
	Body       string
	IsUser     bool
	SenderID   *string
	SenderKind SenderKind
	CreatedAt  time.Time
}
