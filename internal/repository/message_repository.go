package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-br/chamado-service/internal/domain"
)

// MessageRepository manages chat messages. Messages are append-only; the
// database assigns ids atomically so append order and id order always agree.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.ChatMessage, error)
	// ListAfter returns messages with id strictly greater than afterID,
	// ascending. afterID zero reads from the beginning.
	ListAfter(ctx context.Context, ticketID int64, afterID int64) ([]domain.ChatMessage, error)
	ListStandalone(ctx context.Context) ([]domain.ChatMessage, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	const query = `
        INSERT INTO chat_messages (chamado_id, body, is_user, sender_id, sender_kind)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		msg.TicketID,
		msg.Body,
		msg.IsUser,
		msg.SenderID,
		msg.SenderKind,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *messageRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.ChatMessage, error) {
	const query = `
        SELECT id, chamado_id, body, is_user, sender_id, sender_kind, created_at
        FROM chat_messages WHERE chamado_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *messageRepository) ListAfter(ctx context.Context, ticketID int64, afterID int64) ([]domain.ChatMessage, error) {
	const query = `
        SELECT id, chamado_id, body, is_user, sender_id, sender_kind, created_at
        FROM chat_messages WHERE chamado_id=$1 AND id > $2 ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID, afterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *messageRepository) ListStandalone(ctx context.Context) ([]domain.ChatMessage, error) {
	const query = `
        SELECT id, chamado_id, body, is_user, sender_id, sender_kind, created_at
        FROM chat_messages WHERE chamado_id IS NULL ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func scanMessages(rows pgx.Rows) ([]domain.ChatMessage, error) {
	var result []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.Body,
			&msg.IsUser,
			&msg.SenderID,
			&msg.SenderKind,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
