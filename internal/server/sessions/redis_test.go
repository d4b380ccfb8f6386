package sessions

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client, err := NewRedisClient(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	s := &Session{
		ID:        uuid.NewString(),
		UserName:  "alice",
		Role:      models.RoleFaculty,
		Captcha:   "x1y2z",
		ExpiresAt: time.Now().Add(time.Minute).UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.UserName, got.UserName)
	assert.Equal(t, s.Role, got.Role)
	assert.Equal(t, s.Captcha, got.Captcha)
	assert.True(t, s.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRedisStore_ExpiredSaveDeletes(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	id := uuid.NewString()
	require.NoError(t, store.Save(ctx, &Session{ID: id, ExpiresAt: time.Now().Add(time.Minute)}))
	require.NoError(t, store.Save(ctx, &Session{ID: id, ExpiresAt: time.Now().Add(-time.Second)}))

	_, err := store.Get(ctx, id)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRedisStore_Update(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	_, err := store.Update(ctx, uuid.NewString(), func(*Session) error { return nil })
	assert.ErrorIs(t, err, common.ErrorNotFound)

	id := uuid.NewString()
	require.NoError(t, store.Save(ctx, &Session{ID: id, UserName: "abc", ExpiresAt: time.Now().Add(time.Minute)}))
	t.Cleanup(func() { _ = store.Delete(ctx, id) })

	s, err := store.Update(ctx, id, func(s *Session) error {
		s.Captcha = "XYZ12"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "XYZ12", s.Captcha)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "XYZ12", got.Captcha)
	assert.Equal(t, "abc", got.UserName)
}

func TestRedisStore_ConsumeCaptchaOnce(t *testing.T) {
	store := newRedisStore(t)
	m := NewManager(store, time.Minute)
	ctx := context.Background()

	s, err := m.IssueCaptcha(ctx, "", "ABCDE")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Delete(ctx, s.ID) })

	const workers = 16
	codes := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := m.ConsumeCaptcha(ctx, s.ID)
			assert.NoError(t, err)
			codes <- code
		}()
	}
	wg.Wait()
	close(codes)

	got := 0
	for code := range codes {
		if code != "" {
			got++
		}
	}
	assert.Equal(t, 1, got)
}

func TestRedisStore_UpdateAfterDelete(t *testing.T) {
	store := newRedisStore(t)
	m := NewManager(store, time.Minute)
	ctx := context.Background()

	s, err := m.Authenticate(ctx, "", "abc", models.RoleStudent)
	require.NoError(t, err)
	require.NoError(t, m.Clear(ctx, s.ID))

	issued, err := m.IssueCaptcha(ctx, s.ID, "XYZ12")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Delete(ctx, issued.ID) })

	assert.NotEqual(t, s.ID, issued.ID)
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
