package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-br/chamado-service/internal/domain"
)

// TicketFilter narrows ticket listings.
type TicketFilter struct {
	OwnerID   *string
	TecnicoID *string
}

// TicketRepository encapsulates chamado persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Touch bumps atualizado_em without rewriting any other column, so a
	// snapshot read before a slow AI call can never clobber a concurrent
	// assignment.
	Touch(ctx context.Context, ticketID int64) error
	// SetStatus updates the status column and atualizado_em, nothing else.
	SetStatus(ctx context.Context, ticketID int64, status domain.TicketStatus) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	// AssignTechnician sets the technician and the sticky latch in one
	// conditional write. Returns pgx.ErrNoRows when the latch was already
	// set, so concurrent escalations cannot both succeed.
	AssignTechnician(ctx context.Context, ticketID int64, tecnicoID string) error
	ListWithStats(ctx context.Context, filter TicketFilter) ([]domain.TicketWithStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO chamados (user_id, tecnico_id, atribuido_a_tecnico, nome_usuario, email, titulo, status, categoria, prioridade)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, criado_em`
	return r.pool.QueryRow(ctx, query,
		ticket.UserID,
		ticket.TecnicoID,
		ticket.AtribuidoATecnico,
		ticket.NomeUsuario,
		ticket.Email,
		ticket.Titulo,
		ticket.Status,
		ticket.Categoria,
		ticket.Prioridade,
	).Scan(&ticket.ID, &ticket.CriadoEm)
}

func (r *ticketRepository) Touch(ctx context.Context, ticketID int64) error {
	const query = `UPDATE chamados SET atualizado_em=NOW() WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) SetStatus(ctx context.Context, ticketID int64, status domain.TicketStatus) error {
	const query = `UPDATE chamados SET status=$1, atualizado_em=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `
        SELECT id, user_id, tecnico_id, atribuido_a_tecnico, nome_usuario, email,
               titulo, status, categoria, prioridade, criado_em, atualizado_em
        FROM chamados WHERE id=$1`

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.TecnicoID,
		&ticket.AtribuidoATecnico,
		&ticket.NomeUsuario,
		&ticket.Email,
		&ticket.Titulo,
		&ticket.Status,
		&ticket.Categoria,
		&ticket.Prioridade,
		&ticket.CriadoEm,
		&ticket.AtualizadoEm,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) AssignTechnician(ctx context.Context, ticketID int64, tecnicoID string) error {
	const query = `
        UPDATE chamados SET tecnico_id=$1, atribuido_a_tecnico=TRUE, atualizado_em=NOW()
        WHERE id=$2 AND atribuido_a_tecnico=FALSE`
	cmd, err := r.pool.Exec(ctx, query, tecnicoID, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) ListWithStats(ctx context.Context, filter TicketFilter) ([]domain.TicketWithStats, error) {
	base := `
        SELECT c.id, c.user_id, c.tecnico_id, c.atribuido_a_tecnico, c.nome_usuario, c.email,
               c.titulo, c.status, c.categoria, c.prioridade, c.criado_em, c.atualizado_em,
               (SELECT COUNT(*) FROM chat_messages m WHERE m.chamado_id = c.id),
               (SELECT m.body FROM chat_messages m WHERE m.chamado_id = c.id ORDER BY m.id DESC LIMIT 1)
        FROM chamados c`

	clauses := ""
	args := []any{}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = " WHERE c.user_id=$1"
	} else if filter.TecnicoID != nil {
		args = append(args, *filter.TecnicoID)
		clauses = " WHERE c.tecnico_id=$1"
	}

	query := base + clauses + ` ORDER BY COALESCE(c.atualizado_em, c.criado_em) DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketWithStats
	for rows.Next() {
		var row domain.TicketWithStats
		if err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.TecnicoID,
			&row.AtribuidoATecnico,
			&row.NomeUsuario,
			&row.Email,
			&row.Titulo,
			&row.Status,
			&row.Categoria,
			&row.Prioridade,
			&row.CriadoEm,
			&row.AtualizadoEm,
			&row.TotalMensagens,
			&row.UltimaMensagem,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
