package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/helpdesk-br/chamado-service/internal/ai"
	"github.com/helpdesk-br/chamado-service/internal/domain"
	"github.com/helpdesk-br/chamado-service/internal/repository"
	apperrors "github.com/helpdesk-br/chamado-service/pkg/util"
)

// ChatService handles the standalone assistant chat that is not tied to any
// chamado. Every exchange is persisted with a NULL ticket reference.
type ChatService struct {
	messages  repository.MessageRepository
	assistant ai.Assistant
	logger    *zap.Logger
}

// NewChatService constructs the service.
func NewChatService(messages repository.MessageRepository, assistant ai.Assistant, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{messages: messages, assistant: assistant, logger: logger}
}

// SendMessage stores the user's message, asks the assistant for a reply with
// the standalone history as context, and stores the reply too.
func (s *ChatService) SendMessage(ctx context.Context, caller *domain.User, text string) (*domain.ChatMessage, *domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, apperrors.NewValidationError("Mensagem não pode estar vazia", nil)
	}
	if utf8.RuneCountInString(text) > maxMessageLen {
		return nil, nil, apperrors.NewValidationError("Mensagem deve ter no máximo 5000 caracteres", nil)
	}

	history, err := s.messages.ListStandalone(ctx)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	userMsg := &domain.ChatMessage{
		Body:       text,
		IsUser:     true,
		SenderID:   &caller.ID,
		SenderKind: domain.SenderKindUser,
	}
	if err := s.messages.Create(ctx, userMsg); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	replyText := s.assistant.Reply(ctx, text, history)
	aiMsg := &domain.ChatMessage{
		Body:       replyText,
		IsUser:     false,
		SenderKind: domain.SenderKindAI,
	}
	if err := s.messages.Create(ctx, aiMsg); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	return userMsg, aiMsg, nil
}

// ListMessages returns the standalone conversation in append order.
func (s *ChatService) ListMessages(ctx context.Context) ([]domain.ChatMessage, error) {
	msgs, err := s.messages.ListStandalone(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}
