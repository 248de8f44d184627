package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/baranaytass/syncwatch-platform/internal/errs"
	"github.com/baranaytass/syncwatch-platform/internal/model"
	"github.com/baranaytass/syncwatch-platform/internal/store"
)

// SessionService owns the watch session lifecycle: the status state
// machine, participant bookkeeping and video-source assignment. Every
// mutation for a session runs under that session's lock, so concurrent
// events from different connections apply in arrival order.
type SessionService struct {
	store store.SessionStore
	log   *zap.Logger
	locks sync.Map // sessionID -> *sync.Mutex
}

// NewSessionService creates a session service over the given store.
func NewSessionService(st store.SessionStore, log *zap.Logger) *SessionService {
	return &SessionService{store: st, log: log}
}

func (s *SessionService) lockFor(sessionID string) *sync.Mutex {
	lk, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return lk.(*sync.Mutex)
}

// mutate is the single write path for a session: lock, load, apply fn,
// refresh UpdatedAt, write through the store. fn sees the current snapshot
// and mutates it in place.
func (s *SessionService) mutate(ctx context.Context, sessionID string, fn func(*model.Session) error) (*model.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, errs.Validationf("session id is required")
	}
	lk := s.lockFor(sessionID)
	lk.Lock()
	defer lk.Unlock()

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Create creates a new session in WAITING with the creator as the only
// participant.
func (s *SessionService) Create(ctx context.Context, creatorID string) (*model.Session, error) {
	creatorID = strings.TrimSpace(creatorID)
	if creatorID == "" {
		return nil, errs.Validationf("creator id is required")
	}
	now := time.Now()
	sess := &model.Session{
		ID:           uuid.New().String(),
		CreatorID:    creatorID,
		Status:       model.SessionStatusWaiting,
		Participants: []string{creatorID},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	s.log.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("creator_id", creatorID))
	return sess, nil
}

// Join adds a participant to the session. Repeated joins by the same id
// are no-ops on the set but still return the current snapshot. A second
// distinct participant activates a WAITING session. Joining an ended
// session fails with ErrSessionNotFound: ended is terminal, a new watch
// needs a new session.
func (s *SessionService) Join(ctx context.Context, sessionID, participantID string) (*model.Session, error) {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return nil, errs.Validationf("participant id is required")
	}
	sess, err := s.mutate(ctx, sessionID, func(sess *model.Session) error {
		if sess.Status == model.SessionStatusEnded {
			return errs.ErrSessionNotFound
		}
		if !sess.HasParticipant(participantID) {
			sess.Participants = append(sess.Participants, participantID)
		}
		if len(sess.Participants) > 1 && sess.Status == model.SessionStatusWaiting {
			sess.Status = model.SessionStatusActive
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("participant joined",
		zap.String("session_id", sess.ID),
		zap.String("participant_id", participantID),
		zap.String("status", string(sess.Status)))
	return sess, nil
}

// Leave removes a participant. When the last participant leaves the
// session ends; the row stays, status is the logical delete marker.
func (s *SessionService) Leave(ctx context.Context, sessionID, participantID string) (*model.Session, error) {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return nil, errs.Validationf("participant id is required")
	}
	sess, err := s.mutate(ctx, sessionID, func(sess *model.Session) error {
		kept := sess.Participants[:0]
		for _, p := range sess.Participants {
			if p != participantID {
				kept = append(kept, p)
			}
		}
		sess.Participants = kept
		if len(sess.Participants) == 0 {
			sess.Status = model.SessionStatusEnded
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("participant left",
		zap.String("session_id", sess.ID),
		zap.String("participant_id", participantID),
		zap.String("status", string(sess.Status)))
	return sess, nil
}

// Get returns the current session snapshot.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, errs.Validationf("session id is required")
	}
	return s.store.Get(ctx, sessionID)
}

// SetVideoURL assigns the video source. Assigning a video activates a
// WAITING session; a video state loaded for a different source is cleared.
func (s *SessionService) SetVideoURL(ctx context.Context, sessionID, url string) (*model.Session, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errs.Validationf("video url is required")
	}
	sess, err := s.mutate(ctx, sessionID, func(sess *model.Session) error {
		if sess.Status == model.SessionStatusEnded {
			return errs.ErrSessionNotFound
		}
		if sess.VideoState != nil && sess.VideoState.URL != url {
			sess.VideoState = nil
		}
		sess.VideoURL = url
		sess.Status = model.SessionStatusActive
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("video url set",
		zap.String("session_id", sess.ID),
		zap.String("url", url))
	return sess, nil
}

// UpdateVideoState persists a new video state. States arriving without a
// writer timestamp are stamped with the current logical time; stamped
// states keep their timestamp so last-writer-wins arbitration holds.
func (s *SessionService) UpdateVideoState(ctx context.Context, sessionID string, vs *model.VideoState) (*model.Session, error) {
	if vs == nil {
		return nil, errs.Validationf("video state is required")
	}
	return s.mutate(ctx, sessionID, func(sess *model.Session) error {
		applyVideoState(sess, vs)
		return nil
	})
}

// End forces the session to ENDED regardless of participant count. Idempotent.
func (s *SessionService) End(ctx context.Context, sessionID string) (*model.Session, error) {
	sess, err := s.mutate(ctx, sessionID, func(sess *model.Session) error {
		sess.Status = model.SessionStatusEnded
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("session ended", zap.String("session_id", sess.ID))
	return sess, nil
}

// applyVideoState writes a copy of vs onto the session, keeping the
// session's video url in step with the state's source. The caller's value
// is never touched; the stored copy is returned.
func applyVideoState(sess *model.Session, vs *model.VideoState) *model.VideoState {
	st := *vs
	if st.LastUpdated == 0 {
		st.LastUpdated = nowMillis()
	}
	sess.VideoState = &st
	if st.URL != "" {
		sess.VideoURL = st.URL
	}
	return &st
}

// nowMillis is the service's logical clock (unix ms).
func nowMillis() int64 {
	return time.Now().UnixMilli()
}
