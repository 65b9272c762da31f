package dto

import "time"

// CreateTicketRequest opens a chamado from a problem description.
type CreateTicketRequest struct {
	Mensagem string `json:"mensagem"`
}

// PatchStatusRequest changes the ticket status.
type PatchStatusRequest struct {
	Status string `json:"status"`
}

// AddMessageRequest appends a message to the conversation.
type AddMessageRequest struct {
	Texto string `json:"texto"`
}

// SetTypingRequest flips the caller's typing indicator.
type SetTypingRequest struct {
	IsTyping bool `json:"isTyping"`
}

// TicketSummary is the list-view shape, with conversation stats.
type TicketSummary struct {
	ID                int64      `json:"id"`
	Titulo            string     `json:"titulo"`
	Status            string     `json:"status"`
	Categoria         *string    `json:"categoria"`
	Prioridade        *string    `json:"prioridade"`
	NomeUsuario       string     `json:"nomeUsuario"`
	Email             *string    `json:"email,omitempty"`
	AtribuidoATecnico bool       `json:"atribuidoATecnico"`
	TecnicoID         *string    `json:"tecnicoId"`
	CriadoEm          time.Time  `json:"criadoEm"`
	AtualizadoEm      *time.Time `json:"atualizadoEm"`
	TotalMensagens    int        `json:"totalMensagens"`
	UltimaMensagem    *string    `json:"ultimaMensagem"`
}

// TicketDetail is the single-ticket shape including the conversation.
type TicketDetail struct {
	ID                int64             `json:"id"`
	Titulo            string            `json:"titulo"`
	Status            string            `json:"status"`
	Categoria         *string           `json:"categoria"`
	Prioridade        *string           `json:"prioridade"`
	NomeUsuario       string            `json:"nomeUsuario"`
	Email             *string           `json:"email,omitempty"`
	UserID            string            `json:"userId"`
	AtribuidoATecnico bool              `json:"atribuidoATecnico"`
	TecnicoID         *string           `json:"tecnicoId"`
	CriadoEm          time.Time         `json:"criadoEm"`
	AtualizadoEm      *time.Time        `json:"atualizadoEm"`
	Mensagens         []MessageResponse `json:"mensagens"`
}

// EscalateResponse reports the technician the ticket was handed to.
type EscalateResponse struct {
	ID          int64   `json:"id"`
	Status      string  `json:"status"`
	TecnicoID   *string `json:"tecnicoId"`
	TecnicoNome string  `json:"tecnicoNome"`
}

// TypingStatusResponse is one participant's typing entry.
type TypingStatusResponse struct {
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	UserType   string    `json:"userType"`
	IsTyping   bool      `json:"isTyping"`
	LastUpdate time.Time `json:"lastUpdate"`
}
