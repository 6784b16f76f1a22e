package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cassiomorais/txviewer/internal/domain/employee"
	domainErrors "github.com/cassiomorais/txviewer/internal/domain/errors"
	"github.com/cassiomorais/txviewer/internal/domain/transaction"
	"github.com/cassiomorais/txviewer/internal/gateway/mocks"
	"github.com/cassiomorais/txviewer/internal/infrastructure/observability"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	b, ok := m.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return b, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = value
	m.ttls[key] = ttl
	return nil
}

// lockingCache simulates another instance that holds the refresh lock.
type lockingCache struct {
	*memoryCache
	held     bool
	onDenied func()
	released int
}

func (l *lockingCache) TryLock(_ context.Context, _ string, _ time.Duration) (func(context.Context) error, bool, error) {
	if l.held {
		if l.onDenied != nil {
			l.onDenied()
		}
		return func(context.Context) error { return nil }, false, nil
	}
	return func(context.Context) error { l.released++; return nil }, true, nil
}

var roster = []employee.Employee{
	{ID: "1", FirstName: "Ann", LastName: "Lee"},
	{ID: "2", FirstName: "Bo", LastName: "Chan"},
}

func TestCachedRoster_MissThenHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	api.EXPECT().Employees(gomock.Any()).Return(roster, nil).Times(1)

	cache := newMemoryCache()
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	c := NewCachedRoster(api, cache, time.Minute, WithCacheMetrics(metrics))

	first, err := c.Employees(context.Background())
	require.NoError(t, err)
	second, err := c.Employees(context.Background())
	require.NoError(t, err)

	assert.Equal(t, roster, first)
	assert.Equal(t, roster, second)
	assert.Equal(t, time.Minute, cache.ttls[rosterKey])
	assert.Equal(t, float64(1), promtest.ToFloat64(metrics.RosterCacheRequests.WithLabelValues(cacheMiss)))
	assert.Equal(t, float64(1), promtest.ToFloat64(metrics.RosterCacheRequests.WithLabelValues(cacheHit)))
}

func TestCachedRoster_EmptyRosterIsCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	api.EXPECT().Employees(gomock.Any()).Return([]employee.Employee{}, nil).Times(1)

	c := NewCachedRoster(api, newMemoryCache(), time.Minute)

	_, err := c.Employees(context.Background())
	require.NoError(t, err)
	got, err := c.Employees(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCachedRoster_ReadFailureDegradesToUpstream(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	api.EXPECT().Employees(gomock.Any()).Return(roster, nil).Times(2)

	cache := newMemoryCache()
	cache.getErr = errors.New("connection refused")
	c := NewCachedRoster(api, cache, time.Minute)

	for i := 0; i < 2; i++ {
		got, err := c.Employees(context.Background())
		require.NoError(t, err)
		assert.Equal(t, roster, got)
	}
}

func TestCachedRoster_WriteFailureStillReturnsRoster(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	api.EXPECT().Employees(gomock.Any()).Return(roster, nil)

	cache := newMemoryCache()
	cache.setErr = errors.New("OOM command not allowed")
	c := NewCachedRoster(api, cache, time.Minute)

	got, err := c.Employees(context.Background())

	require.NoError(t, err)
	assert.Equal(t, roster, got)
}

func TestCachedRoster_UpstreamErrorIsNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	upstreamErr := domainErrors.NewUpstreamError("employees", 503, nil)
	api.EXPECT().Employees(gomock.Any()).Return(nil, upstreamErr)

	cache := newMemoryCache()
	c := NewCachedRoster(api, cache, time.Minute)

	_, err := c.Employees(context.Background())

	assert.ErrorIs(t, err, domainErrors.ErrNetworkFailure)
	assert.Empty(t, cache.entries)
}

func TestCachedRoster_CorruptEntryIsRefetched(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	api.EXPECT().Employees(gomock.Any()).Return(roster, nil)

	cache := newMemoryCache()
	cache.entries[rosterKey] = []byte("{not a roster")
	c := NewCachedRoster(api, cache, time.Minute)

	got, err := c.Employees(context.Background())

	require.NoError(t, err)
	assert.Equal(t, roster, got)
	assert.JSONEq(t, `[{"id":"1","firstName":"Ann","lastName":"Lee"},{"id":"2","firstName":"Bo","lastName":"Chan"}]`,
		string(cache.entries[rosterKey]))
}

func TestCachedRoster_TransactionsAreNeverCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	page := transaction.Page{Items: []transaction.Transaction{{ID: "a"}}}
	api.EXPECT().Transactions(gomock.Any(), gomock.Nil()).Return(page, nil).Times(2)
	api.EXPECT().TransactionsByEmployee(gomock.Any(), "1").Return([]transaction.Transaction{{ID: "tx1"}}, nil).Times(2)

	cache := newMemoryCache()
	c := NewCachedRoster(api, cache, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := c.Transactions(context.Background(), nil)
		require.NoError(t, err)
		_, err = c.TransactionsByEmployee(context.Background(), "1")
		require.NoError(t, err)
	}
	assert.Empty(t, cache.entries)
}

func TestCachedRoster_WaitsForOtherInstanceRefresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	api.EXPECT().Employees(gomock.Any()).Times(0)

	cache := &lockingCache{memoryCache: newMemoryCache(), held: true}
	cache.onDenied = func() {
		cache.entries[rosterKey] = []byte(`[{"id":"1","firstName":"Ann","lastName":"Lee"}]`)
	}
	c := NewCachedRoster(api, cache, time.Minute, WithRefreshWait(time.Millisecond))

	got, err := c.Employees(context.Background())

	require.NoError(t, err)
	assert.Equal(t, roster[:1], got)
}

func TestCachedRoster_FetchesWhenOtherInstanceIsSlow(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	api.EXPECT().Employees(gomock.Any()).Return(roster, nil)

	cache := &lockingCache{memoryCache: newMemoryCache(), held: true}
	c := NewCachedRoster(api, cache, time.Minute, WithRefreshWait(time.Millisecond))

	got, err := c.Employees(context.Background())

	require.NoError(t, err)
	assert.Equal(t, roster, got)
}

func TestCachedRoster_ReleasesRefreshLock(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	api.EXPECT().Employees(gomock.Any()).Return(roster, nil)

	cache := &lockingCache{memoryCache: newMemoryCache()}
	c := NewCachedRoster(api, cache, time.Minute)

	_, err := c.Employees(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, cache.released)
	assert.Contains(t, cache.entries, rosterKey)
}
