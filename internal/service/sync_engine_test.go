package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/baranaytass/syncwatch-platform/internal/errs"
	"github.com/baranaytass/syncwatch-platform/internal/model"
)

func newTestEngine() (*SyncEngine, *SessionService) {
	svc := newTestService()
	return NewSyncEngine(svc, zap.NewNop()), svc
}

// activeSession creates a two-participant session, which makes it active.
func activeSession(t *testing.T, svc *SessionService) string {
	t.Helper()
	ctx := context.Background()
	sess, err := svc.Create(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.Join(ctx, sess.ID, "bob")
	require.NoError(t, err)
	return sess.ID
}

func TestLoadThenPlayRoundTrip(t *testing.T) {
	engine, svc := newTestEngine()
	ctx := context.Background()
	id := activeSession(t, svc)

	_, err := engine.HandleVideoEvent(ctx, id, &model.VideoEvent{
		Type: model.VideoEventLoad, URL: "https://x/video.mp4", Timestamp: 100,
	}, "alice")
	require.NoError(t, err)

	state, err := engine.HandleVideoEvent(ctx, id, &model.VideoEvent{
		Type: model.VideoEventPlay, CurrentTime: 5, Timestamp: 200,
	}, "bob")
	require.NoError(t, err)
	assert.Equal(t, "https://x/video.mp4", state.URL)
	assert.Equal(t, 5.0, state.CurrentTime)
	assert.True(t, state.IsPlaying)
	assert.Equal(t, int64(200), state.LastUpdated)
}

func TestEventEffects(t *testing.T) {
	engine, svc := newTestEngine()
	ctx := context.Background()
	id := activeSession(t, svc)

	base := &model.VideoState{
		URL: "https://x/video.mp4", CurrentTime: 10, IsPlaying: true,
		Duration: 300, LastUpdated: 1,
	}
	require.NoError(t, engine.SyncVideoState(ctx, id, base))

	state, err := engine.HandleVideoEvent(ctx, id, &model.VideoEvent{
		Type: model.VideoEventPause, CurrentTime: 42, Timestamp: 2,
	}, "bob")
	require.NoError(t, err)
	assert.Equal(t, 42.0, state.CurrentTime)
	assert.False(t, state.IsPlaying)

	// SEEK leaves the play flag alone.
	state, err = engine.HandleVideoEvent(ctx, id, &model.VideoEvent{
		Type: model.VideoEventSeek, CurrentTime: 250, Timestamp: 3,
	}, "bob")
	require.NoError(t, err)
	assert.Equal(t, 250.0, state.CurrentTime)
	assert.False(t, state.IsPlaying)

	state, err = engine.HandleVideoEvent(ctx, id, &model.VideoEvent{
		Type: model.VideoEventEnded, Timestamp: 4,
	}, "bob")
	require.NoError(t, err)
	assert.Equal(t, 300.0, state.CurrentTime)
	assert.False(t, state.IsPlaying)

	// LOAD rewinds and keeps the prior URL when the event has none.
	state, err = engine.HandleVideoEvent(ctx, id, &model.VideoEvent{
		Type: model.VideoEventLoad, Timestamp: 5,
	}, "bob")
	require.NoError(t, err)
	assert.Equal(t, "https://x/video.mp4", state.URL)
	assert.Zero(t, state.CurrentTime)
	assert.False(t, state.IsPlaying)
}

func TestUnknownEventIsNoop(t *testing.T) {
	engine, svc := newTestEngine()
	ctx := context.Background()
	id := activeSession(t, svc)

	prior := &model.VideoState{URL: "https://x/video.mp4", CurrentTime: 10, LastUpdated: 1}
	require.NoError(t, engine.SyncVideoState(ctx, id, prior))

	state, err := engine.HandleVideoEvent(ctx, id, &model.VideoEvent{
		Type: model.VideoEventType("SPEED"), CurrentTime: 99, Timestamp: 9,
	}, "bob")
	require.NoError(t, err)
	assert.Equal(t, prior.CurrentTime, state.CurrentTime)
	assert.Equal(t, prior.LastUpdated, state.LastUpdated)

	sess, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sess.VideoState.LastUpdated)
}

func TestSyncVideoStateRequiresActiveSession(t *testing.T) {
	engine, svc := newTestEngine()
	ctx := context.Background()
	sess, err := svc.Create(ctx, "alice")
	require.NoError(t, err)

	err = engine.SyncVideoState(ctx, sess.ID, &model.VideoState{URL: "https://x/v.mp4"})
	assert.ErrorIs(t, err, errs.ErrSyncFailed)
}

func TestSyncVideoStateShapeChecks(t *testing.T) {
	engine, svc := newTestEngine()
	ctx := context.Background()
	id := activeSession(t, svc)

	var ve *errs.ValidationError
	err := engine.SyncVideoState(ctx, id, nil)
	require.ErrorAs(t, err, &ve)

	err = engine.SyncVideoState(ctx, id, &model.VideoState{CurrentTime: -1})
	require.ErrorAs(t, err, &ve)

	err = engine.SyncVideoState(ctx, id, &model.VideoState{Duration: -1})
	require.ErrorAs(t, err, &ve)

	err = engine.SyncVideoState(ctx, id, &model.VideoState{CurrentTime: 20, Duration: 10})
	require.ErrorAs(t, err, &ve)
}

func TestValidateVideoSync(t *testing.T) {
	engine, _ := newTestEngine()

	a := &model.VideoState{URL: "https://x/a.mp4", CurrentTime: 0, Duration: 300}
	b := &model.VideoState{URL: "https://x/a.mp4", CurrentTime: 9999, Duration: 300}
	// A huge time delta alone is a seek, not a conflict.
	assert.True(t, engine.ValidateVideoSync(a, b))

	c := &model.VideoState{URL: "https://x/b.mp4", CurrentTime: 0, Duration: 300}
	assert.False(t, engine.ValidateVideoSync(a, c))

	d := &model.VideoState{URL: "https://x/a.mp4", Duration: 310}
	assert.False(t, engine.ValidateVideoSync(a, d))

	// Unknown duration on either side never conflicts.
	e := &model.VideoState{URL: "https://x/a.mp4", Duration: 0}
	assert.True(t, engine.ValidateVideoSync(a, e))

	f := &model.VideoState{URL: "https://x/a.mp4", Duration: 303}
	assert.True(t, engine.ValidateVideoSync(a, f))
}

func TestResolveConflictLastWriterWins(t *testing.T) {
	engine, svc := newTestEngine()
	ctx := context.Background()
	id := activeSession(t, svc)

	older := &model.VideoState{URL: "https://x/a.mp4", CurrentTime: 10, LastUpdated: 100}
	newer := &model.VideoState{URL: "https://x/a.mp4", CurrentTime: 20, LastUpdated: 200}

	winner, err := engine.ResolveConflict(ctx, id, []*model.VideoState{older, newer})
	require.NoError(t, err)
	assert.Equal(t, newer, winner)

	sess, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(200), sess.VideoState.LastUpdated)
	assert.Equal(t, 20.0, sess.VideoState.CurrentTime)
}

func TestResolveConflictSingleCandidate(t *testing.T) {
	engine, svc := newTestEngine()
	ctx := context.Background()
	id := activeSession(t, svc)

	only := &model.VideoState{URL: "https://x/a.mp4", CurrentTime: 7, LastUpdated: 123}
	winner, err := engine.ResolveConflict(ctx, id, []*model.VideoState{only})
	require.NoError(t, err)
	assert.Equal(t, only, winner)
	assert.Equal(t, int64(123), winner.LastUpdated)
}

func TestResolveConflictEmptyList(t *testing.T) {
	engine, _ := newTestEngine()
	_, err := engine.ResolveConflict(context.Background(), "some-session", nil)
	var ve *errs.ValidationError
	assert.ErrorAs(t, err, &ve)
}
