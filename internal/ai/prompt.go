package ai

import (
	"strings"

	"github.com/helpdesk-br/chamado-service/internal/domain"
)

// historyLimit caps the prompt context to the most recent messages.
const historyLimit = 10

// buildPrompt prefixes the message with the recent conversation, oldest
// first, so the model can answer in context.
func buildPrompt(message string, history []domain.ChatMessage) string {
	context := historyContext(history)
	if context == "" {
		return message
	}
	return context + "\n\nUsuário: " + message
}

func historyContext(history []domain.ChatMessage) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}

	var sb strings.Builder
	sb.WriteString("Histórico da conversa:\n\n")
	for _, msg := range history {
		if msg.IsUser {
			sb.WriteString("Usuário: ")
		} else {
			sb.WriteString("Assistente: ")
		}
		sb.WriteString(msg.Body)
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatSuggestion turns an analysis into the chat answer shown to the user.
// Title, category and priority live on the ticket header, so only the
// suggestion text is returned. The service escapes newlines; undo that here.
func formatSuggestion(analysis *domain.TicketAnalysis) string {
	return strings.ReplaceAll(analysis.SugestaoSolucao, "\\n", "\n")
}
