package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"trade-dashboard/src/logger"
	"trade-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T) *models.MConfig {
	return &models.MConfig{Storage: models.MStorageConfig{
		DBType:        "sqlite",
		DBPath:        filepath.Join(t.TempDir(), "audit.db"),
		RetentionDays: 30,
	}}
}

func openSQLite(t *testing.T, cfg *models.MConfig) *SQLiteAuditStore {
	t.Helper()
	store, err := NewSQLiteAuditStore(cfg, logger.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, store.Initialize())
	t.Cleanup(func() { store.Close() })
	return store
}

// -----------------------------------------------------------------------------

func TestSQLiteAuditStore(t *testing.T) {
	cfg := sqliteConfig(t)
	store := openSQLite(t, cfg)

	now := time.Now().UTC().Truncate(time.Millisecond)
	entries := []models.MAuditEntry{
		{SessionID: "s1", Screen: "trades", Action: "query", Params: "/api/trades/CR-1", Outcome: "success", DurationMs: 12, CreatedAt: now.Add(-2 * time.Minute)},
		{SessionID: "s1", Screen: "funds", Action: "delete", Params: "DELETE /api/funds/F1", Outcome: "failure", Message: "Fund is locked", CreatedAt: now.Add(-time.Minute)},
		{SessionID: "s2", Screen: "messages", Action: "query", Outcome: "validation", CreatedAt: now.AddDate(0, 0, -45)},
	}
	for _, e := range entries {
		require.NoError(t, store.SaveAuditEntry(e))
	}

	t.Run("newest first", func(t *testing.T) {
		got, err := store.RecentEntries(2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "funds", got[0].Screen)
		assert.Equal(t, "Fund is locked", got[0].Message)
		assert.True(t, entries[1].CreatedAt.Equal(got[0].CreatedAt))
		assert.Equal(t, int64(12), got[1].DurationMs)
	})

	t.Run("cleanup removes entries past retention", func(t *testing.T) {
		require.NoError(t, store.CleanupOldData())
		got, err := store.RecentEntries(10)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		for _, e := range got {
			assert.NotEqual(t, "s2", e.SessionID)
		}
	})

	t.Run("tables survive a reopen", func(t *testing.T) {
		require.NoError(t, store.Close())
		reopened := openSQLite(t, cfg)
		got, err := reopened.RecentEntries(10)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

// -----------------------------------------------------------------------------

func TestNewAuditStore(t *testing.T) {
	t.Run("none disables the audit log", func(t *testing.T) {
		store, err := NewAuditStore(&models.MConfig{Storage: models.MStorageConfig{DBType: "none"}}, logger.NewNopLogger())
		assert.NoError(t, err)
		assert.Nil(t, store)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewAuditStore(&models.MConfig{Storage: models.MStorageConfig{DBType: "mongo"}}, logger.NewNopLogger())
		assert.Error(t, err)
	})

	t.Run("sqlite writes through the queue", func(t *testing.T) {
		cfg := sqliteConfig(t)
		store, err := NewAuditStore(cfg, logger.NewNopLogger())
		require.NoError(t, err)
		require.IsType(t, &AsyncAuditStore{}, store)

		for i := 0; i < 5; i++ {
			require.NoError(t, store.SaveAuditEntry(models.MAuditEntry{SessionID: "s1", Screen: "trades", Action: "query", Outcome: "success"}))
		}
		require.NoError(t, store.Close())

		reopened := openSQLite(t, cfg)
		got, err := reopened.RecentEntries(10)
		require.NoError(t, err)
		assert.Len(t, got, 5)
	})
}

// -----------------------------------------------------------------------------

type MockAuditStore struct {
	mock.Mock
}

func (m *MockAuditStore) Initialize() error { return m.Called().Error(0) }

func (m *MockAuditStore) SaveAuditEntry(entry models.MAuditEntry) error {
	return m.Called(entry).Error(0)
}

func (m *MockAuditStore) RecentEntries(limit int) ([]models.MAuditEntry, error) {
	args := m.Called(limit)
	return args.Get(0).([]models.MAuditEntry), args.Error(1)
}

func (m *MockAuditStore) CleanupOldData() error { return m.Called().Error(0) }

func (m *MockAuditStore) Close() error { return m.Called().Error(0) }

func TestAsyncAuditStore(t *testing.T) {
	inner := new(MockAuditStore)
	inner.On("SaveAuditEntry", mock.MatchedBy(func(e models.MAuditEntry) bool { return e.Screen == "bad" })).Return(errors.New("disk full"))
	inner.On("SaveAuditEntry", mock.Anything).Return(nil)
	inner.On("RecentEntries", 3).Return([]models.MAuditEntry{}, nil)
	inner.On("Close").Return(nil).Once()

	store := NewAsyncAuditStore(inner, logger.NewNopLogger(), 8)
	assert.NoError(t, store.SaveAuditEntry(models.MAuditEntry{Screen: "trades"}))
	assert.NoError(t, store.SaveAuditEntry(models.MAuditEntry{Screen: "bad"}))

	_, err := store.RecentEntries(3)
	assert.NoError(t, err)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
	inner.AssertNumberOfCalls(t, "SaveAuditEntry", 2)
	inner.AssertNumberOfCalls(t, "Close", 1)

	assert.Error(t, store.SaveAuditEntry(models.MAuditEntry{Screen: "late"}))
}
