package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/baranaytass/syncwatch-platform/internal/errs"
	"github.com/baranaytass/syncwatch-platform/internal/model"
)

// Duration drift beyond this many seconds means the two sides are not
// watching the same source.
const maxDurationDriftSeconds = 5.0

// SyncEngine translates client playback events into the next canonical
// video state, guards against inconsistent states and arbitrates racing
// updates by last-writer-wins. All persistence goes through the session
// service's per-session write path.
type SyncEngine struct {
	sessions *SessionService
	log      *zap.Logger
}

// NewSyncEngine creates a sync engine over the session service.
func NewSyncEngine(sessions *SessionService, log *zap.Logger) *SyncEngine {
	return &SyncEngine{sessions: sessions, log: log}
}

// HandleVideoEvent applies a playback event to the session's current video
// state and persists the result. An unrecognized event type is a logged
// no-op returning the prior state unchanged. The load-apply-persist cycle
// runs inside the session's critical section.
func (e *SyncEngine) HandleVideoEvent(ctx context.Context, sessionID string, ev *model.VideoEvent, participantID string) (*model.VideoState, error) {
	if ev == nil {
		return nil, errs.Validationf("video event is required")
	}
	if !knownEventType(ev.Type) {
		e.log.Warn("unrecognized video event type",
			zap.String("session_id", sessionID),
			zap.String("participant_id", participantID),
			zap.String("type", string(ev.Type)))
		sess, err := e.sessions.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if sess.VideoState != nil {
			return sess.VideoState, nil
		}
		return &model.VideoState{URL: sess.VideoURL}, nil
	}

	var out *model.VideoState
	_, err := e.sessions.mutate(ctx, sessionID, func(sess *model.Session) error {
		cur := sess.VideoState
		if cur == nil {
			cur = &model.VideoState{URL: sess.VideoURL}
		}
		next := applyVideoEvent(*cur, ev)
		if sess.VideoState != nil && !e.ValidateVideoSync(sess.VideoState, &next) {
			e.log.Warn("video state drift detected",
				zap.String("session_id", sessionID),
				zap.String("participant_id", participantID),
				zap.String("current_url", sess.VideoState.URL),
				zap.String("next_url", next.URL))
		}
		if err := validateStateShape(&next); err != nil {
			return err
		}
		if sess.Status != model.SessionStatusActive {
			return errs.ErrSyncFailed
		}
		out = applyVideoState(sess, &next)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SyncVideoState validates and persists a video state. Fails with
// ErrSyncFailed when the owning session is not active.
func (e *SyncEngine) SyncVideoState(ctx context.Context, sessionID string, vs *model.VideoState) error {
	if vs == nil {
		return errs.Validationf("video state is required")
	}
	if err := validateStateShape(vs); err != nil {
		return err
	}
	_, err := e.sessions.mutate(ctx, sessionID, func(sess *model.Session) error {
		if sess.Status != model.SessionStatusActive {
			return errs.ErrSyncFailed
		}
		applyVideoState(sess, vs)
		return nil
	})
	return err
}

// ValidateVideoSync reports whether next is consistent with current.
// Only source drift counts: a URL mismatch, or both sides reporting a
// known duration differing by more than 5 seconds. Large currentTime
// deltas are deliberate seeks, never conflicts.
func (e *SyncEngine) ValidateVideoSync(current, next *model.VideoState) bool {
	if current.URL != next.URL {
		return false
	}
	if current.Duration > 0 && next.Duration > 0 &&
		math.Abs(current.Duration-next.Duration) > maxDurationDriftSeconds {
		return false
	}
	return true
}

// ResolveConflict selects the candidate with the greatest LastUpdated
// (pure last-writer-wins) and persists it. A single-element list is the
// trivial no-conflict case and still goes through persistence.
func (e *SyncEngine) ResolveConflict(ctx context.Context, sessionID string, candidates []*model.VideoState) (*model.VideoState, error) {
	if len(candidates) == 0 {
		return nil, errs.Validationf("at least one candidate state is required")
	}
	winner := candidates[0]
	for _, c := range candidates[1:] {
		if c.LastUpdated > winner.LastUpdated {
			winner = c
		}
	}
	if len(candidates) > 1 {
		e.log.Info("video state conflict resolved",
			zap.String("session_id", sessionID),
			zap.Int("candidates", len(candidates)),
			zap.Int64("winner_ts", winner.LastUpdated))
	}
	if err := e.SyncVideoState(ctx, sessionID, winner); err != nil {
		return nil, err
	}
	return winner, nil
}

func knownEventType(t model.VideoEventType) bool {
	switch t {
	case model.VideoEventPlay, model.VideoEventPause, model.VideoEventSeek,
		model.VideoEventLoad, model.VideoEventEnded:
		return true
	}
	return false
}

// applyVideoEvent computes the next state from the prior one. Every branch
// stamps LastUpdated with the event's timestamp.
func applyVideoEvent(cur model.VideoState, ev *model.VideoEvent) model.VideoState {
	next := cur
	switch ev.Type {
	case model.VideoEventPlay:
		next.CurrentTime = ev.CurrentTime
		next.IsPlaying = true
	case model.VideoEventPause:
		next.CurrentTime = ev.CurrentTime
		next.IsPlaying = false
	case model.VideoEventSeek:
		next.CurrentTime = ev.CurrentTime
	case model.VideoEventLoad:
		if ev.URL != "" {
			next.URL = ev.URL
		}
		next.CurrentTime = 0
		next.IsPlaying = false
	case model.VideoEventEnded:
		next.CurrentTime = next.Duration
		next.IsPlaying = false
	}
	next.LastUpdated = ev.Timestamp
	return next
}

func validateStateShape(vs *model.VideoState) error {
	if vs.CurrentTime < 0 {
		return errs.Validationf("current time must be non-negative")
	}
	if vs.Duration < 0 {
		return errs.Validationf("duration must be non-negative")
	}
	if vs.Duration > 0 && vs.CurrentTime > vs.Duration {
		return errs.Validationf("current time %.2f exceeds duration %.2f", vs.CurrentTime, vs.Duration)
	}
	return nil
}
