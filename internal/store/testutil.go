package store

import (
	"path/filepath"
	"testing"

	"github.com/verustcode/docsynth/internal/database"
)

// SetupTestDB opens a fresh SQLite index in a temporary directory.
// The database is closed when the test ends.
func SetupTestDB(t *testing.T) Store {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close(db)
	})
	return NewStore(db)
}
