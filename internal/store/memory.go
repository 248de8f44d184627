package store

import (
	"context"
	"sync"

	"github.com/baranaytass/syncwatch-platform/internal/errs"
	"github.com/baranaytass/syncwatch-platform/internal/model"
)

// MemorySessionStore is an in-memory SessionStore used by tests. The
// production path is always the gorm store behind the redis cache.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*model.Session)}
}

func (s *MemorySessionStore) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, errs.ErrSessionNotFound
	}
	return copySession(sess), nil
}

func (s *MemorySessionStore) Create(ctx context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = copySession(sess)
	return nil
}

func (s *MemorySessionStore) Update(ctx context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; !ok {
		return errs.ErrSessionNotFound
	}
	s.sessions[sess.ID] = copySession(sess)
	return nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// copySession returns a deep copy so callers never share mutable state
// with the store.
func copySession(sess *model.Session) *model.Session {
	out := *sess
	out.Participants = append([]string(nil), sess.Participants...)
	if sess.VideoState != nil {
		vs := *sess.VideoState
		out.VideoState = &vs
	}
	return &out
}

var _ SessionStore = (*MemorySessionStore)(nil)
