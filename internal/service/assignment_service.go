package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/helpdesk-br/chamado-service/internal/domain"
	"github.com/helpdesk-br/chamado-service/internal/repository"
	apperrors "github.com/helpdesk-br/chamado-service/pkg/util"
)

// Candidate pairs an account with its freshest known activity timestamp.
type Candidate struct {
	User     domain.User
	LastSeen *time.Time
}

// AssignmentService picks the technician an escalated ticket is handed to.
//
// The random source is injected so tests can make the pick deterministic.
type AssignmentService struct {
	users    repository.UserRepository
	activity *ActivityService
	window   time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// AssignmentDependencies bundles selector inputs.
type AssignmentDependencies struct {
	UserRepo repository.UserRepository
	Activity *ActivityService
	Window   time.Duration
	Rand     *rand.Rand
}

// NewAssignmentService creates the service. A nil Rand falls back to a
// time-seeded source.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &AssignmentService{
		users:    deps.UserRepo,
		activity: deps.Activity,
		window:   deps.Window,
		rng:      rng,
	}
}

// PickAssignee loads the current technician and administrator pools and runs
// the selection policy. Returns nil when every pool is empty.
func (s *AssignmentService) PickAssignee(ctx context.Context) (*domain.User, error) {
	tecnicos, err := s.users.ListByRole(ctx, domain.RoleTecnico)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	admins, err := s.users.ListByRole(ctx, domain.RoleAdministrador)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	picked := s.SelectAssignee(s.candidates(ctx, tecnicos), s.candidates(ctx, admins), time.Now().UTC())
	if picked == nil {
		return nil, nil
	}
	return &picked.User, nil
}

// SelectAssignee applies the pool-priority policy:
//
//  1. technicians seen within the online window
//  2. any technician
//  3. administrators seen within the online window
//  4. any administrator
//
// The first non-empty pool wins and one member is chosen uniformly at random.
// Current workload is not considered.
func (s *AssignmentService) SelectAssignee(technicians, administrators []Candidate, now time.Time) *Candidate {
	pools := [][]Candidate{
		filterOnline(technicians, now, s.window),
		technicians,
		filterOnline(administrators, now, s.window),
		administrators,
	}
	for _, pool := range pools {
		if len(pool) > 0 {
			return &pool[s.intn(len(pool))]
		}
	}
	return nil
}

func (s *AssignmentService) candidates(ctx context.Context, users []domain.User) []Candidate {
	result := make([]Candidate, 0, len(users))
	for i := range users {
		result = append(result, Candidate{
			User:     users[i],
			LastSeen: s.activity.LastSeen(ctx, &users[i]),
		})
	}
	return result
}

func (s *AssignmentService) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func filterOnline(pool []Candidate, now time.Time, window time.Duration) []Candidate {
	var online []Candidate
	for _, c := range pool {
		if c.LastSeen != nil && now.Sub(*c.LastSeen) <= window {
			online = append(online, c)
		}
	}
	return online
}
