package dto

import "time"

// SendChatMessageRequest sends a message to the standalone assistant chat.
type SendChatMessageRequest struct {
	Texto string `json:"texto"`
}

// MessageResponse is a single chat message, in ticket and standalone chats.
type MessageResponse struct {
	ID         int64     `json:"id"`
	Texto      string    `json:"texto"`
	IsUser     bool      `json:"isUser"`
	SenderID   *string   `json:"senderId"`
	SenderType string    `json:"senderType"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ChatExchangeResponse pairs the stored user message with the reply, when the
// assistant answered.
type ChatExchangeResponse struct {
	Mensagem *MessageResponse `json:"mensagem"`
	Resposta *MessageResponse `json:"resposta,omitempty"`
}

// AnalyzeRequest asks for a triage of a problem description.
type AnalyzeRequest struct {
	Descricao string `json:"descricao"`
}

// AnalyzeResponse carries the triage result.
type AnalyzeResponse struct {
	Titulo          string `json:"titulo"`
	Categoria       string `json:"categoria"`
	Prioridade      string `json:"prioridade"`
	SugestaoSolucao string `json:"sugestaoSolucao"`
}
