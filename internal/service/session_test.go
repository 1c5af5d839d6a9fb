package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/vitalchat/backend/internal/mocks"
	"github.com/pageza/vitalchat/backend/internal/models"
	"github.com/pageza/vitalchat/backend/internal/service"
	"github.com/pageza/vitalchat/backend/internal/testhelpers"
)

const testSecret = "test-session-secret-with-32-chars!!"

func newRedisSessionManager(t *testing.T) (*service.SessionManager, *service.RedisSessionStore) {
	client, _ := testhelpers.SetupRedis(t)
	store := service.NewRedisSessionStore(client)
	return service.NewSessionManager(store, testSecret, 24*time.Hour), store
}

func TestRegenerateIssuesNewID(t *testing.T) {
	ctx := context.Background()
	mgr, store := newRedisSessionManager(t)
	handle := &models.AccountHandle{ID: 1, Username: "alice"}

	first, err := mgr.Regenerate(ctx, "", handle)
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.AccountID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), first.ExpiresAt, time.Minute)

	second, err := mgr.Regenerate(ctx, first.ID, handle)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = store.Get(ctx, first.ID)
	assert.ErrorIs(t, err, service.ErrSessionNotFound, "previous session is discarded")

	loaded, err := mgr.Load(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.Username)
}

func TestRegenerateSetsRedisTTL(t *testing.T) {
	client, mr := testhelpers.SetupRedis(t)
	mgr := service.NewSessionManager(service.NewRedisSessionStore(client), testSecret, time.Hour)

	s, err := mgr.Regenerate(context.Background(), "", &models.AccountHandle{ID: 3})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("session:"+s.ID))

	mr.FastForward(2 * time.Hour)
	_, err = mgr.Load(context.Background(), s.ID)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestRegenerateAbortsOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	handle := &models.AccountHandle{ID: 1, Username: "alice"}

	t.Run("delete fails", func(t *testing.T) {
		store := new(mocks.MockSessionStore)
		store.On("Delete", mock.Anything, "old").Return(errors.New("redis down"))
		mgr := service.NewSessionManager(store, testSecret, time.Hour)

		s, err := mgr.Regenerate(ctx, "old", handle)
		assert.Nil(t, s)
		assert.ErrorIs(t, err, service.ErrSessionRegenerate)
		store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("save fails", func(t *testing.T) {
		store := new(mocks.MockSessionStore)
		store.On("Delete", mock.Anything, "old").Return(nil)
		store.On("Save", mock.Anything, mock.Anything, time.Hour).Return(errors.New("redis down"))
		mgr := service.NewSessionManager(store, testSecret, time.Hour)

		s, err := mgr.Regenerate(ctx, "old", handle)
		assert.Nil(t, s)
		assert.ErrorIs(t, err, service.ErrSessionRegenerate)
		store.AssertExpectations(t)
	})

	t.Run("no handle", func(t *testing.T) {
		mgr := service.NewSessionManager(new(mocks.MockSessionStore), testSecret, time.Hour)
		_, err := mgr.Regenerate(ctx, "", nil)
		assert.ErrorIs(t, err, service.ErrSessionRegenerate)
	})
}

func TestTouchAndDestroy(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newRedisSessionManager(t)

	s, err := mgr.Regenerate(ctx, "", &models.AccountHandle{ID: 5, Username: "eve"})
	require.NoError(t, err)

	touched, err := mgr.Touch(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, s.ID, touched.ID)
	assert.False(t, touched.ExpiresAt.Before(s.ExpiresAt))

	require.NoError(t, mgr.Destroy(ctx, s.ID))
	_, err = mgr.Load(ctx, s.ID)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)

	_, err = mgr.Load(ctx, "")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestSessionCookieRoundTrip(t *testing.T) {
	mgr, _ := newRedisSessionManager(t)
	s := &models.Session{ID: "abc-123", ExpiresAt: time.Now().Add(time.Hour)}

	value, err := mgr.EncodeCookie(s)
	require.NoError(t, err)

	id, err := mgr.DecodeCookie(value)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)

	other := service.NewSessionManager(nil, "another-secret-of-sufficient-length", time.Hour)
	_, err = other.DecodeCookie(value)
	assert.ErrorIs(t, err, service.ErrSessionNotFound, "foreign signature is rejected")

	_, err = mgr.DecodeCookie("garbage")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)

	expired := &models.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Minute)}
	value, err = mgr.EncodeCookie(expired)
	require.NoError(t, err)
	_, err = mgr.DecodeCookie(value)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}
