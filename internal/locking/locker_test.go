package locking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	srv := miniredis.RunT(t)
	client, err := NewRedisClient("redis://"+srv.Addr(), "", 0, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client), srv
}

func TestNewRedisClient_AddressForms(t *testing.T) {
	srv := miniredis.RunT(t)
	srv.RequireAuth("secret")
	ctx := context.Background()

	plain, err := NewRedisClient(srv.Addr(), "secret", 0, zerolog.Nop())
	require.NoError(t, err)
	defer plain.Close()
	assert.Equal(t, srv.Addr(), plain.Options().Addr)
	require.NoError(t, plain.Ping(ctx).Err())

	fromURL, err := NewRedisClient("redis://:secret@"+srv.Addr()+"/2", "", 0, zerolog.Nop())
	require.NoError(t, err)
	defer fromURL.Close()
	assert.Equal(t, srv.Addr(), fromURL.Options().Addr)
	assert.Equal(t, 2, fromURL.Options().DB)
	require.NoError(t, fromURL.Set(ctx, "k", "v", 0).Err())
	assert.True(t, srv.DB(2).Exists("k"))

	overridden, err := NewRedisClient("redis://:wrong@"+srv.Addr()+"/2", "secret", 3, zerolog.Nop())
	require.NoError(t, err)
	defer overridden.Close()
	assert.Equal(t, "secret", overridden.Options().Password)
	assert.Equal(t, 3, overridden.Options().DB)
	assert.NoError(t, overridden.Ping(ctx).Err())
}

func TestNewRedisClient_TLSAndInvalidURL(t *testing.T) {
	tlsClient, err := NewRedisClient("rediss://127.0.0.1:1", "", 0, zerolog.Nop())
	require.NoError(t, err)
	defer tlsClient.Close()
	assert.NotNil(t, tlsClient.Options().TLSConfig)

	_, err = NewRedisClient("redis://127.0.0.1:6379/notadb", "", 0, zerolog.Nop())
	assert.Error(t, err)
}

func TestRedisLocker_ExclusivePerStore(t *testing.T) {
	locker, _ := newRedisLocker(t)
	ctx := context.Background()
	storeA, storeB := uuid.New(), uuid.New()

	lease, err := locker.Acquire(ctx, storeA, time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, storeA, time.Minute)
	assert.ErrorIs(t, err, ErrLocked)

	other, err := locker.Acquire(ctx, storeB, time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, lease.Release(ctx))

	again, err := locker.Acquire(ctx, storeA, time.Minute)
	require.NoError(t, err)
	assert.NoError(t, again.Release(ctx))
}

func TestRedisLocker_ExpiredLeaseCanBeTaken(t *testing.T) {
	locker, srv := newRedisLocker(t)
	ctx := context.Background()
	storeID := uuid.New()

	stale, err := locker.Acquire(ctx, storeID, time.Second)
	require.NoError(t, err)

	srv.FastForward(2 * time.Second)

	fresh, err := locker.Acquire(ctx, storeID, time.Minute)
	require.NoError(t, err)

	// Releasing the expired lease must not drop the new holder's key.
	require.NoError(t, stale.Release(ctx))
	assert.True(t, srv.Exists(locker.key(storeID)))

	require.NoError(t, fresh.Release(ctx))
	assert.False(t, srv.Exists(locker.key(storeID)))
}

func TestRedisLocker_ConnectionError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer client.Close()

	_, err := NewRedisLocker(client).Acquire(context.Background(), uuid.New(), time.Minute)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLocked)
}

type MockLeaseRepository struct {
	mock.Mock
}

func (m *MockLeaseRepository) Acquire(ctx context.Context, storeID uuid.UUID, token string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, storeID, token, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeaseRepository) Release(ctx context.Context, storeID uuid.UUID, token string) error {
	args := m.Called(ctx, storeID, token)
	return args.Error(0)
}

func TestLeaseLocker_AcquireAndRelease(t *testing.T) {
	repo := new(MockLeaseRepository)
	ctx := context.Background()
	storeID := uuid.New()

	var token string
	repo.On("Acquire", ctx, storeID, mock.AnythingOfType("string"), time.Minute).
		Run(func(args mock.Arguments) { token = args.String(2) }).
		Return(true, nil)
	repo.On("Release", ctx, storeID, mock.MatchedBy(func(s string) bool { return s == token })).Return(nil)

	lease, err := NewLeaseLocker(repo).Acquire(ctx, storeID, time.Minute)
	require.NoError(t, err)
	require.NoError(t, lease.Release(ctx))

	assert.NotEmpty(t, token)
	repo.AssertExpectations(t)
}

func TestLeaseLocker_Held(t *testing.T) {
	repo := new(MockLeaseRepository)
	repo.On("Acquire", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	_, err := NewLeaseLocker(repo).Acquire(context.Background(), uuid.New(), time.Minute)
	assert.ErrorIs(t, err, ErrLocked)
}

func TestLeaseLocker_RepositoryError(t *testing.T) {
	repo := new(MockLeaseRepository)
	repo.On("Acquire", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("db down"))

	_, err := NewLeaseLocker(repo).Acquire(context.Background(), uuid.New(), time.Minute)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLocked)
}
