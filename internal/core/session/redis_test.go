package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"pantry-pal/internal/infrastructure/config"
	"pantry-pal/internal/pkg/common"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(config.RedisConfig{
		Addr:      mr.Addr(),
		KeyPrefix: "pantrypal:test:",
	}, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(config.RedisConfig{Addr: addr}, time.Minute)
	assert.Error(t, err)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "a", []byte(`{"n":1}`)))
	assert.True(t, mr.Exists("pantrypal:test:a"))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(got))

	require.NoError(t, s.Update(ctx, "a", func([]byte) ([]byte, error) {
		return []byte(`{"n":2}`), nil
	}))
	got, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":2}`, string(got))

	require.NoError(t, s.Delete(ctx, "a"))
	err = s.Update(ctx, "a", func(b []byte) ([]byte, error) { return b, nil })
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Ping(ctx))
}

func TestRedisStoreGetRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	require.NoError(t, s.Set(ctx, "a", []byte(`{}`)))
	mr.FastForward(40 * time.Second)
	_, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL("pantrypal:test:a"))

	mr.FastForward(2 * time.Minute)
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreUpdateConflict(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t)
	require.NoError(t, s.Set(ctx, "a", []byte(`{"n":1}`)))

	calls := 0
	err := s.Update(ctx, "a", func(current []byte) ([]byte, error) {
		calls++
		// 另一個寫入者在交易提交前改動了同一個 key
		require.NoError(t, s.Set(ctx, "a", []byte(`{"n":99}`)))
		return []byte(`{"n":2}`), nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, http.StatusConflict, common.AsCustomError(err).Status)
	assert.Equal(t, 1, calls)

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":99}`, string(got))
}

func TestRedisStoreUpdateCallbackError(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t)
	require.NoError(t, s.Set(ctx, "a", []byte(`{"n":1}`)))

	err := s.Update(ctx, "a", func([]byte) ([]byte, error) {
		return nil, ErrItemExists
	})
	assert.ErrorIs(t, err, ErrItemExists)

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(got))
}

func TestRedisBackedService(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t)
	svc := NewService(s)

	sess, err := svc.Create(ctx)
	require.NoError(t, err)

	sess, err = svc.AddGroceries(ctx, sess.ID, []common.GroceryItem{{Name: "Milk"}, {Name: "milk"}})
	require.NoError(t, err)
	assert.Len(t, sess.Groceries, 1)

	got, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.Groceries, got.Groceries)

	_, err = svc.ClearGroceries(ctx, sess.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, sess.ID, func(current *Session) error {
		current.Groceries = nil
		raw, err := s.Get(ctx, sess.ID)
		require.NoError(t, err)
		return s.Set(ctx, sess.ID, raw)
	})
	assert.ErrorIs(t, err, ErrConflict)
}
