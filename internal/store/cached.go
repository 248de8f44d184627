package store

import (
	"context"

	"github.com/baranaytass/syncwatch-platform/internal/model"
)

// CachedSessionStore decorates a durable SessionStore with an advisory
// cache: reads go cache-first, every successful write refreshes the entry.
// A failed refresh invalidates the entry instead; a stale snapshot left in
// front of a newer durable row would be read back and read-modify-written
// over the newer state, turning a cache failure into durable data loss.
type CachedSessionStore struct {
	durable SessionStore
	cache   SessionCache
}

// NewCachedSessionStore wraps durable with cache.
func NewCachedSessionStore(durable SessionStore, cache SessionCache) *CachedSessionStore {
	return &CachedSessionStore{durable: durable, cache: cache}
}

func (s *CachedSessionStore) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	if sess, ok := s.cache.Get(ctx, sessionID); ok {
		return sess, nil
	}
	sess, err := s.durable.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.refresh(ctx, sess)
	return sess, nil
}

func (s *CachedSessionStore) Create(ctx context.Context, sess *model.Session) error {
	if err := s.durable.Create(ctx, sess); err != nil {
		return err
	}
	s.refresh(ctx, sess)
	return nil
}

func (s *CachedSessionStore) Update(ctx context.Context, sess *model.Session) error {
	if err := s.durable.Update(ctx, sess); err != nil {
		return err
	}
	s.refresh(ctx, sess)
	return nil
}

// refresh re-sets the cache entry, dropping it when the set fails so the
// next read falls through to the durable store.
func (s *CachedSessionStore) refresh(ctx context.Context, sess *model.Session) {
	if err := s.cache.Set(ctx, sess); err != nil {
		s.cache.Invalidate(ctx, sess.ID)
	}
}

func (s *CachedSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.durable.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, sessionID)
	return nil
}

var _ SessionStore = (*CachedSessionStore)(nil)
