package api

import "time"

// SessionStore keeps live intake sessions.
type SessionStore interface {
	Create() *Session
	GetOrCreate(id string) *Session
	Get(id string) (*Session, bool)
	CleanupBefore(cutoff time.Time) []string
	Len() int
}

var _ SessionStore = (*memoryStore)(nil)
