package domain

import "time"

// TicketStatus enumerates lifecycle states for chamados. The literal values
// are what the frontend compares against, so they stay in Portuguese.
type TicketStatus string

const (
	TicketStatusInProgress TicketStatus = "Em Andamento"
	TicketStatusResolved   TicketStatus = "Resolvido"
)

// Valid reports whether the status is one of the known states.
func (s TicketStatus) Valid() bool {
	return s == TicketStatusInProgress || s == TicketStatusResolved
}

// Ticket is the aggregate for support requests (chamados).
//
// AtribuidoATecnico is a one-way latch: once a ticket has been escalated to a
// technician it is never auto re-escalated. A future reassignment feature must
// clear the latch explicitly rather than inferring intent from a TecnicoID
// change.
type Ticket struct {
	ID                int64
	UserID            string
	TecnicoID         *string
	AtribuidoATecnico bool
	NomeUsuario       string
	Email             *string
	Titulo            string
	Status            TicketStatus
	Categoria         *string
	Prioridade        *string
	CriadoEm          time.Time
	AtualizadoEm      *time.Time
}

// AssignedTo reports whether the given user is the assigned technician.
func (t *Ticket) AssignedTo(userID string) bool {
	return t.TecnicoID != nil && *t.TecnicoID == userID
}

// TicketWithStats decorates a ticket with conversation roll-ups for listings.
type TicketWithStats struct {
	Ticket
	TotalMensagens int
	UltimaMensagem *string
}
