package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/helpdesk-br/chamado-service/internal/config"
	"github.com/helpdesk-br/chamado-service/internal/domain"
)

// FallbackReply is returned whenever the classification service cannot
// produce a usable answer. Chat must degrade, never fail, on AI outages.
const FallbackReply = "Desculpe, não consegui processar sua mensagem no momento. Por favor, tente novamente."

// FallbackTitle is used when ticket creation proceeds without an analysis.
const FallbackTitle = "Novo Chamado"

// Assistant is the capability the ticket workflows depend on. Analyze may
// fail; Reply never does, it degrades to FallbackReply internally.
type Assistant interface {
	Analyze(ctx context.Context, descricao string) (*domain.TicketAnalysis, error)
	Reply(ctx context.Context, message string, history []domain.ChatMessage) string
}

// Client talks to the external classification service over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewClient builds a client with the configured per-call timeout.
func NewClient(cfg config.AIConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		baseURL:    cfg.BaseURL,
		logger:     logger,
	}
}

type analyzeRequest struct {
	Descricao string `json:"descricao"`
}

// Analyze posts the description to /analisar and decodes the classification.
func (c *Client) Analyze(ctx context.Context, descricao string) (*domain.TicketAnalysis, error) {
	body, err := json.Marshal(analyzeRequest{Descricao: descricao})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analisar", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("ai service unreachable", zap.String("url", c.baseURL), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("ai service returned error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", payload))
		return nil, fmt.Errorf("ai service status %d", resp.StatusCode)
	}

	var analysis domain.TicketAnalysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return nil, fmt.Errorf("decode ai response: %w", err)
	}
	return &analysis, nil
}

// Reply generates a chat answer for the message, giving the model the recent
// conversation as context. Any failure falls back to the apology text.
func (c *Client) Reply(ctx context.Context, message string, history []domain.ChatMessage) string {
	analysis, err := c.Analyze(ctx, buildPrompt(message, history))
	if err != nil || analysis == nil || analysis.SugestaoSolucao == "" {
		return FallbackReply
	}
	return formatSuggestion(analysis)
}
