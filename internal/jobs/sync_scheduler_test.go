package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"woosync/internal/models"
	"woosync/internal/services"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) SyncStore(ctx context.Context, storeID uuid.UUID) (*models.SyncResult, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyncResult), args.Error(1)
}

func (m *MockSyncService) SyncAll(ctx context.Context) ([]services.StoreSyncOutcome, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.StoreSyncOutcome), args.Error(1)
}

func TestNewSyncScheduler_RejectsNonPositiveInterval(t *testing.T) {
	_, err := NewSyncScheduler(&MockSyncService{}, 0, zerolog.Nop())
	assert.Error(t, err)
}

func TestRunOnce(t *testing.T) {
	svc := &MockSyncService{}
	svc.On("SyncAll", mock.Anything).Return([]services.StoreSyncOutcome{
		{StoreID: uuid.New(), Result: &models.SyncResult{}},
		{StoreID: uuid.New(), Err: services.ErrStoreMisconfigured},
	}, nil).Once()

	s, err := NewSyncScheduler(svc, time.Hour, zerolog.Nop())
	require.NoError(t, err)

	assert.NoError(t, s.RunOnce(context.Background()))
	svc.AssertExpectations(t)
}

func TestRunOnce_ListFailure(t *testing.T) {
	svc := &MockSyncService{}
	svc.On("SyncAll", mock.Anything).Return(nil, errors.New("db down")).Once()

	s, err := NewSyncScheduler(svc, time.Hour, zerolog.Nop())
	require.NoError(t, err)

	assert.Error(t, s.RunOnce(context.Background()))
}

func TestScheduler_RunsJobOnInterval(t *testing.T) {
	called := make(chan struct{}, 10)
	svc := &MockSyncService{}
	svc.On("SyncAll", mock.Anything).
		Run(func(mock.Arguments) { called <- struct{}{} }).
		Return([]services.StoreSyncOutcome{}, nil)

	s, err := NewSyncScheduler(svc, 50*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	s.Start()
	defer func() { assert.NoError(t, s.Stop()) }()

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("sync job did not run")
	}
}
