package results

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrAbsent is returned by Load when there is no usable result: nothing was
// saved, the record expired, or it could not be decoded. It is an expected
// outcome, not a failure.
var ErrAbsent = errors.New("no assessment result")

// Store holds at most one Result for one session. Save replaces wholesale.
type Store interface {
	Load(ctx context.Context) (*Result, error)
	Save(ctx context.Context, r *Result) error
	Clear(ctx context.Context) error
}

// Provider hands out the Store scoped to a session.
type Provider interface {
	ForSession(sessionID string) Store
	Forget(sessionID string) error
	Close() error
}

// decodeRecord turns a persisted record into a Result, folding malformed
// records into ErrAbsent while keeping the cause in the chain.
func decodeRecord(data []byte) (*Result, error) {
	r, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAbsent, err)
	}
	return r, nil
}

// MemoryStore keeps the encoded record in memory. Loads decode a fresh copy.
type MemoryStore struct {
	mu     sync.RWMutex
	record []byte
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load(_ context.Context) (*Result, error) {
	s.mu.RLock()
	record := s.record
	s.mu.RUnlock()
	if record == nil {
		return nil, ErrAbsent
	}
	return decodeRecord(record)
}

func (s *MemoryStore) Save(_ context.Context, r *Result) error {
	b, err := Encode(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.record = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.record = nil
	s.mu.Unlock()
	return nil
}

// MemoryProvider keeps one MemoryStore per session.
type MemoryProvider struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{stores: map[string]*MemoryStore{}}
}

func (p *MemoryProvider) ForSession(sessionID string) Store {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.stores[sessionID]
	if !ok {
		s = NewMemoryStore()
		p.stores[sessionID] = s
	}
	return s
}

func (p *MemoryProvider) Forget(sessionID string) error {
	p.mu.Lock()
	delete(p.stores, sessionID)
	p.mu.Unlock()
	return nil
}

func (p *MemoryProvider) Close() error { return nil }

var (
	_ Store    = (*MemoryStore)(nil)
	_ Provider = (*MemoryProvider)(nil)
)
