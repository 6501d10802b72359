package database_test

import (
	"testing"

	"github.com/dom/snake-game-api/internal/testutil"
)

// forEachDriver runs fn against SQLite and, outside -short, PostgreSQL.
func forEachDriver(t *testing.T, fn func(t *testing.T, testDB *testutil.TestDB)) {
	t.Helper()

	t.Run("sqlite", func(t *testing.T) {
		fn(t, testutil.NewSQLiteDB(t))
	})

	t.Run("postgres", func(t *testing.T) {
		if testing.Short() {
			t.Skip("skipping postgres container in short mode")
		}
		fn(t, testutil.NewTestDB(t))
	})
}
