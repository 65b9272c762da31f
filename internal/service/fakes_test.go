package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-br/chamado-service/internal/domain"
	"github.com/helpdesk-br/chamado-service/internal/repository"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[int64]domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[int64]domain.Ticket)}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	ticket.ID = r.nextID
	ticket.CriadoEm = time.Now().UTC()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Touch(_ context.Context, ticketID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now().UTC()
	ticket.AtualizadoEm = &now
	r.tickets[ticketID] = ticket
	return nil
}

func (r *fakeTicketRepo) SetStatus(_ context.Context, ticketID int64, status domain.TicketStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now().UTC()
	ticket.Status = status
	ticket.AtualizadoEm = &now
	r.tickets[ticketID] = ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := ticket
	return &copied, nil
}

func (r *fakeTicketRepo) AssignTechnician(_ context.Context, ticketID int64, tecnicoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[ticketID]
	if !ok || ticket.AtribuidoATecnico {
		return pgx.ErrNoRows
	}
	now := time.Now().UTC()
	ticket.TecnicoID = &tecnicoID
	ticket.AtribuidoATecnico = true
	ticket.AtualizadoEm = &now
	r.tickets[ticketID] = ticket
	return nil
}

func (r *fakeTicketRepo) ListWithStats(_ context.Context, filter repository.TicketFilter) ([]domain.TicketWithStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketWithStats
	for _, ticket := range r.tickets {
		if filter.OwnerID != nil && ticket.UserID != *filter.OwnerID {
			continue
		}
		if filter.TecnicoID != nil && (ticket.TecnicoID == nil || *ticket.TecnicoID != *filter.TecnicoID) {
			continue
		}
		result = append(result, domain.TicketWithStats{Ticket: ticket})
	}
	sort.Slice(result, func(i, j int) bool {
		return touchedAt(result[i].Ticket).After(touchedAt(result[j].Ticket))
	})
	return result, nil
}

func touchedAt(t domain.Ticket) time.Time {
	if t.AtualizadoEm != nil {
		return *t.AtualizadoEm
	}
	return t.CriadoEm
}

type fakeMessageRepo struct {
	mu     sync.Mutex
	nextID int64
	msgs   []domain.ChatMessage
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg.ID = r.nextID
	msg.CreatedAt = time.Now().UTC()
	r.msgs = append(r.msgs, *msg)
	return nil
}

func (r *fakeMessageRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.ChatMessage
	for _, msg := range r.msgs {
		if msg.TicketID != nil && *msg.TicketID == ticketID {
			result = append(result, msg)
		}
	}
	return result, nil
}

func (r *fakeMessageRepo) ListAfter(_ context.Context, ticketID, afterID int64) ([]domain.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.ChatMessage
	for _, msg := range r.msgs {
		if msg.TicketID != nil && *msg.TicketID == ticketID && msg.ID > afterID {
			result = append(result, msg)
		}
	}
	return result, nil
}

func (r *fakeMessageRepo) ListStandalone(_ context.Context) ([]domain.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.ChatMessage
	for _, msg := range r.msgs {
		if msg.TicketID == nil {
			result = append(result, msg)
		}
	}
	return result, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newFakeUserRepo(seed ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]domain.User)}
	for _, user := range seed {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.CreatedAt = time.Now().UTC()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role domain.UserRole) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		if user.Role == role {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeUserRepo) UpdateLastActivity(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.LastActivityAt = &at
	r.users[id] = user
	return nil
}
