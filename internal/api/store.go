package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soaringjerry/SheHuMaan/internal/intake"
	"github.com/soaringjerry/SheHuMaan/internal/services"
)

// Session is one visitor's intake. mu guards machine; it is never held
// across a classifier call.
type Session struct {
	ID string

	mu       sync.Mutex
	machine  *intake.Machine
	lastSeen time.Time

	once      sync.Once
	submitter *services.SubmissionService
	out       *outbox
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	steps    []intake.Step
	now      func() time.Time
}

func newMemoryStore(steps []intake.Step, now func() time.Time) *memoryStore {
	if now == nil {
		now = time.Now
	}
	return &memoryStore{sessions: map[string]*Session{}, steps: steps, now: now}
}

func (s *memoryStore) newSession(id string) *Session {
	return &Session{ID: id, machine: intake.NewMachine(s.steps), lastSeen: s.now()}
}

func (s *memoryStore) Create() *Session {
	sess := s.newSession(uuid.NewString())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return sess
}

// GetOrCreate returns the session for id, starting a fresh intake when the
// id is unknown (for example after a restart with a persistent result store).
func (s *memoryStore) GetOrCreate(id string) *Session {
	if sess, ok := s.Get(id); ok {
		return sess
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := s.newSession(id)
	s.sessions[id] = sess
	return sess
}

func (s *memoryStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		sess.touch(s.now())
	}
	return sess, ok
}

// CleanupBefore drops sessions idle since before cutoff and returns their ids.
func (s *memoryStore) CleanupBefore(cutoff time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []string
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}

func (s *memoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
