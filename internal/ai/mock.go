package ai

import (
	"context"

	"github.com/helpdesk-br/chamado-service/internal/domain"
)

// MockAssistant is a deterministic Assistant for tests and local development
// without the classification service.
type MockAssistant struct {
	Analysis   *domain.TicketAnalysis
	AnalyzeErr error
	// AnalyzeCalls records every description passed to Analyze.
	AnalyzeCalls []string
	ReplyCalls   int
}

// NewMockAssistant returns a mock with a canned analysis.
func NewMockAssistant() *MockAssistant {
	return &MockAssistant{
		Analysis: &domain.TicketAnalysis{
			Titulo:          "Chamado de teste",
			Categoria:       "Hardware",
			Prioridade:      "Média",
			SugestaoSolucao: "Tente reiniciar o equipamento.",
		},
	}
}

func (m *MockAssistant) Analyze(_ context.Context, descricao string) (*domain.TicketAnalysis, error) {
	m.AnalyzeCalls = append(m.AnalyzeCalls, descricao)
	if m.AnalyzeErr != nil {
		return nil, m.AnalyzeErr
	}
	return m.Analysis, nil
}

func (m *MockAssistant) Reply(ctx context.Context, message string, history []domain.ChatMessage) string {
	m.ReplyCalls++
	analysis, err := m.Analyze(ctx, buildPrompt(message, history))
	if err != nil || analysis == nil || analysis.SugestaoSolucao == "" {
		return FallbackReply
	}
	return formatSuggestion(analysis)
}
