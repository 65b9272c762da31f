package domain

import "time"

// TypingStatus is the ephemeral typing-presence entry for one participant in
// one ticket. Never persisted; entries older than the configured timeout are
// evicted lazily on read.
type TypingStatus struct {
	UserID     string
	UserName   string
	UserType   SenderKind
	IsTyping   bool
	LastUpdate time.Time
}
