package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/npmacro/internal/testutil"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(nil)

	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestSQLiteStore_OpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	assert.Equal(t, path, store.Path())
	require.NoError(t, store.SetContentHash("a_macro.go", "abc", "a_expanded.go"))
	require.NoError(t, store.Close())

	reopened := NewSQLiteStore(nil)
	require.NoError(t, reopened.Open(path))
	defer reopened.Close()

	hash, err := reopened.GetContentHash("a_macro.go")
	require.NoError(t, err)
	assert.Equal(t, "abc", hash)
}

func TestSQLiteStore_Migrations(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Verify tables exist by querying them
	for _, table := range []string{"runs", "content_hashes", "call_sites"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		if assert.NoError(t, err, "table %s", table) {
			rows.Close()
		}
	}

	// Running again is a no-op.
	require.NoError(t, store.Migrate())
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)

	_, err := store.CreateRun(".")
	assert.EqualError(t, err, "database not opened")

	_, err = store.GetContentHash("x")
	assert.EqualError(t, err, "database not opened")

	err = store.ReplaceSites("run", "x", nil)
	assert.EqualError(t, err, "database not opened")

	assert.NoError(t, store.Close())
}

// --- Run lifecycle tests ---

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	tests := []struct {
		name   string
		status RunStatus
		stats  RunStats
		errMsg string
	}{
		{
			name:   "completed run",
			status: RunStatusCompleted,
			stats:  RunStats{Files: 3, Expanded: 2, Skipped: 1, Sites: 7},
		},
		{
			name:   "failed run",
			status: RunStatusFailed,
			stats:  RunStats{Files: 2, Expanded: 1, Failed: 1, Sites: 2},
			errMsg: "p_macro.go:3:9: call has no arguments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)

			run, err := store.CreateRun("/src")
			require.NoError(t, err)
			assert.NotEmpty(t, run.ID)
			assert.Equal(t, RunStatusRunning, run.Status)
			assert.Nil(t, run.CompletedAt)

			require.NoError(t, store.CompleteRun(run.ID, tt.status, tt.stats, tt.errMsg))

			got, err := store.GetRun(run.ID)
			require.NoError(t, err)
			assert.Equal(t, "/src", got.Root)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.stats, got.Stats)
			assert.Equal(t, tt.errMsg, got.Error)
			require.NotNil(t, got.CompletedAt)
			assert.False(t, got.CompletedAt.Before(got.StartedAt))
		})
	}
}

func TestSQLiteStore_RunNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetRun("missing")
	assert.EqualError(t, err, "run not found: missing")

	err = store.CompleteRun("missing", RunStatusCompleted, RunStats{}, "")
	assert.EqualError(t, err, "run not found: missing")
}

func TestSQLiteStore_LatestAndList(t *testing.T) {
	store := setupTestStore(t)

	latest, err := store.GetLatestRun()
	require.NoError(t, err)
	assert.Nil(t, latest)

	first, err := store.CreateRun("/a")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := store.CreateRun("/b")
	require.NoError(t, err)

	latest, err = store.GetLatestRun()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)

	runs, err = store.ListRuns(1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

// --- Content hash tests ---

func TestSQLiteStore_ContentHashes(t *testing.T) {
	store := setupTestStore(t)

	hash, err := store.GetContentHash("cart_macro.go")
	require.NoError(t, err)
	assert.Empty(t, hash)

	require.NoError(t, store.SetContentHash("cart_macro.go", "h1", "cart_expanded.go"))
	require.NoError(t, store.SetContentHash("cart_macro.go", "h2", "cart_expanded.go"))
	require.NoError(t, store.SetContentHash("a_macro.go", "h3", "a_expanded.go"))

	hash, err = store.GetContentHash("cart_macro.go")
	require.NoError(t, err)
	assert.Equal(t, "h2", hash)

	all, err := store.ListContentHashes()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a_macro.go", all[0].FilePath)
	assert.Equal(t, "cart_expanded.go", all[1].OutputPath)

	require.NoError(t, store.DeleteContentHash("cart_macro.go"))
	hash, err = store.GetContentHash("cart_macro.go")
	require.NoError(t, err)
	assert.Empty(t, hash)
}

// --- Call site tests ---

func TestSQLiteStore_Sites(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateRun("/src")
	require.NoError(t, err)

	sites := []Site{
		{Line: 12, Column: 9, Source: "npm.Calc(a + b)", Post: "none", Leaves: 2, Operators: 1},
		{Line: 4, Column: 2, Source: `npm.Calc(x, "yuan", 0)`, Post: "yuan", Leaves: 1, HasFallback: true},
	}
	require.NoError(t, store.ReplaceSites(run.ID, "cart_macro.go", sites))
	require.NoError(t, store.ReplaceSites(run.ID, "b_macro.go", sites[:1]))

	got, err := store.ListSites("cart_macro.go")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 4, got[0].Line)
	assert.True(t, got[0].HasFallback)
	assert.Equal(t, "yuan", got[0].Post)
	assert.Equal(t, run.ID, got[0].RunID)
	assert.Equal(t, "npm.Calc(a + b)", got[1].Source)

	all, err := store.ListSites("")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "b_macro.go", all[0].FilePath)

	// Replacing drops the previous sites of the file.
	require.NoError(t, store.ReplaceSites(run.ID, "cart_macro.go", nil))
	got, err = store.ListSites("cart_macro.go")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStore_SitesRequireRun(t *testing.T) {
	store := setupTestStore(t)

	err := store.ReplaceSites("no-such-run", "a_macro.go", []Site{{Line: 1, Source: "npm.Calc(1)", Post: "none"}})
	assert.Error(t, err)
}
