// Package store owns the durable representation of watch sessions and a
// best-effort cache in front of it.
package store

import (
	"context"

	"github.com/baranaytass/syncwatch-platform/internal/model"
)

// SessionStore is the persistence boundary for watch sessions. Get returns
// errs.ErrSessionNotFound for absent ids; store-level failures surface as
// errs.DatabaseError.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*model.Session, error)
	Create(ctx context.Context, sess *model.Session) error
	Update(ctx context.Context, sess *model.Session) error
	Delete(ctx context.Context, sessionID string) error
}

// SessionCache is the advisory cache in front of the durable store. A miss
// or cache failure never blocks correctness; callers fall through to the
// durable store. Set reports failure so callers can invalidate instead of
// leaving a stale entry in front of a newer durable row.
type SessionCache interface {
	Get(ctx context.Context, sessionID string) (*model.Session, bool)
	Set(ctx context.Context, sess *model.Session) error
	Invalidate(ctx context.Context, sessionID string)
}
