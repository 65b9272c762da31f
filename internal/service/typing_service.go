package service

import (
	"sort"
	"sync"
	"time"

	"github.com/helpdesk-br/chamado-service/internal/domain"
)

// TypingService tracks which participants are typing in each ticket. State is
// in-process only and lost on restart, which is acceptable for a presence
// indicator. Entries expire lazily on read.
type TypingService struct {
	mu       sync.Mutex
	timeout  time.Duration
	now      func() time.Time
	byTicket map[int64]map[string]domain.TypingStatus
}

// NewTypingService creates the tracker with the given staleness timeout.
func NewTypingService(timeout time.Duration) *TypingService {
	return newTypingService(timeout, time.Now)
}

func newTypingService(timeout time.Duration, clock func() time.Time) *TypingService {
	return &TypingService{
		timeout:  timeout,
		now:      clock,
		byTicket: make(map[int64]map[string]domain.TypingStatus),
	}
}

// SetTyping upserts the participant's entry when typing, removes it otherwise.
func (s *TypingService) SetTyping(ticketID int64, userID, userName string, kind domain.SenderKind, isTyping bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.byTicket[ticketID]
	if !ok {
		if !isTyping {
			return
		}
		entries = make(map[string]domain.TypingStatus)
		s.byTicket[ticketID] = entries
	}

	if isTyping {
		entries[userID] = domain.TypingStatus{
			UserID:     userID,
			UserName:   userName,
			UserType:   kind,
			IsTyping:   true,
			LastUpdate: s.now().UTC(),
		}
		return
	}
	delete(entries, userID)
}

// TypingUsers returns everyone currently typing in the ticket except the
// caller, evicting entries older than the timeout on the way.
func (s *TypingService) TypingUsers(ticketID int64, excludeUserID string) []domain.TypingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.byTicket[ticketID]
	if !ok {
		return []domain.TypingStatus{}
	}

	now := s.now().UTC()
	active := make([]domain.TypingStatus, 0, len(entries))
	for userID, status := range entries {
		if now.Sub(status.LastUpdate) > s.timeout {
			delete(entries, userID)
			continue
		}
		if userID == excludeUserID {
			continue
		}
		active = append(active, status)
	}

	sort.Slice(active, func(i, j int) bool {
		return active[i].UserID < active[j].UserID
	})
	return active
}

// ClearTyping removes the participant's entry, typically on disconnect.
func (s *TypingService) ClearTyping(ticketID int64, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entries, ok := s.byTicket[ticketID]; ok {
		delete(entries, userID)
	}
}
