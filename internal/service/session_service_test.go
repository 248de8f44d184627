package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/baranaytass/syncwatch-platform/internal/errs"
	"github.com/baranaytass/syncwatch-platform/internal/model"
	"github.com/baranaytass/syncwatch-platform/internal/store"
)

func newTestService() *SessionService {
	return NewSessionService(store.NewMemorySessionStore(), zap.NewNop())
}

func TestCreateSession(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, err := svc.Create(ctx, "  alice  ")
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusWaiting, sess.Status)
	assert.Equal(t, "alice", sess.CreatorID)
	assert.Equal(t, []string{"alice"}, sess.Participants)
	assert.NotEmpty(t, sess.ID)
}

func TestCreateSessionValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, creator := range []string{"", "   "} {
		_, err := svc.Create(ctx, creator)
		var ve *errs.ValidationError
		require.ErrorAs(t, err, &ve)
	}
}

func TestJoinSessionIdempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	sess, err := svc.Create(ctx, "alice")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := svc.Join(ctx, sess.ID, "bob")
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, got.Participants)
	}
}

func TestJoinActivatesAndStaysActive(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	sess, err := svc.Create(ctx, "alice")
	require.NoError(t, err)

	got, err := svc.Join(ctx, sess.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusActive, got.Status)

	// Dropping back to one participant never reverts to waiting.
	got, err = svc.Leave(ctx, sess.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusActive, got.Status)
	assert.Equal(t, []string{"alice"}, got.Participants)
}

func TestLastLeaveEndsSession(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	sess, err := svc.Create(ctx, "alice")
	require.NoError(t, err)

	got, err := svc.Leave(ctx, sess.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusEnded, got.Status)
	assert.Empty(t, got.Participants)

	// Ended is terminal: rejoining requires a new session.
	_, err = svc.Join(ctx, sess.ID, "alice")
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)
}

func TestJoinUnknownSession(t *testing.T) {
	svc := newTestService()
	_, err := svc.Join(context.Background(), "no-such-session", "bob")
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)
}

func TestJoinValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	sess, err := svc.Create(ctx, "alice")
	require.NoError(t, err)

	_, err = svc.Join(ctx, sess.ID, "  ")
	var ve *errs.ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = svc.Join(ctx, "", "bob")
	require.ErrorAs(t, err, &ve)
}

func TestSetVideoURLActivates(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	sess, err := svc.Create(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, model.SessionStatusWaiting, sess.Status)

	got, err := svc.SetVideoURL(ctx, sess.ID, "  https://x/video.mp4  ")
	require.NoError(t, err)
	assert.Equal(t, "https://x/video.mp4", got.VideoURL)
	assert.Equal(t, model.SessionStatusActive, got.Status)
}

func TestSetVideoURLClearsMismatchedState(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	sess, err := svc.Create(ctx, "alice")
	require.NoError(t, err)

	_, err = svc.SetVideoURL(ctx, sess.ID, "https://x/a.mp4")
	require.NoError(t, err)
	_, err = svc.UpdateVideoState(ctx, sess.ID, &model.VideoState{URL: "https://x/a.mp4", CurrentTime: 30, LastUpdated: 1})
	require.NoError(t, err)

	// Same source: state survives.
	got, err := svc.SetVideoURL(ctx, sess.ID, "https://x/a.mp4")
	require.NoError(t, err)
	require.NotNil(t, got.VideoState)

	// New source: stale state is dropped.
	got, err = svc.SetVideoURL(ctx, sess.ID, "https://x/b.mp4")
	require.NoError(t, err)
	assert.Nil(t, got.VideoState)
	assert.Equal(t, "https://x/b.mp4", got.VideoURL)
}

func TestUpdateVideoStateStampsWhenUnset(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	sess, err := svc.Create(ctx, "alice")
	require.NoError(t, err)

	got, err := svc.UpdateVideoState(ctx, sess.ID, &model.VideoState{URL: "https://x/a.mp4", CurrentTime: 5})
	require.NoError(t, err)
	require.NotNil(t, got.VideoState)
	assert.NotZero(t, got.VideoState.LastUpdated)
	assert.Equal(t, "https://x/a.mp4", got.VideoURL)

	// A writer-stamped state keeps its timestamp.
	got, err = svc.UpdateVideoState(ctx, sess.ID, &model.VideoState{URL: "https://x/a.mp4", CurrentTime: 6, LastUpdated: 42})
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.VideoState.LastUpdated)

	_, err = svc.UpdateVideoState(ctx, sess.ID, nil)
	var ve *errs.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUpdateVideoStateLeavesCallerValueAlone(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	sess, err := svc.Create(ctx, "alice")
	require.NoError(t, err)

	in := &model.VideoState{URL: "https://x/a.mp4", CurrentTime: 5}
	got, err := svc.UpdateVideoState(ctx, sess.ID, in)
	require.NoError(t, err)

	// The service stamps its own copy, never the caller's value.
	assert.Zero(t, in.LastUpdated)
	require.NotNil(t, got.VideoState)
	assert.NotSame(t, in, got.VideoState)

	// Mutating the caller's value after the call changes nothing stored.
	in.CurrentTime = 999
	again, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, again.VideoState.CurrentTime)
}

func TestEndSessionIdempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	sess, err := svc.Create(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.Join(ctx, sess.ID, "bob")
	require.NoError(t, err)

	got, err := svc.End(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusEnded, got.Status)

	got, err = svc.End(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusEnded, got.Status)
}

func TestMutationRefreshesUpdatedAt(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	sess, err := svc.Create(ctx, "alice")
	require.NoError(t, err)

	got, err := svc.Join(ctx, sess.ID, "bob")
	require.NoError(t, err)
	assert.False(t, got.UpdatedAt.Before(sess.UpdatedAt))
}
