// package testing contains shared testing utilities
package testing

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/mkhault/calsync/internal/shared"
)

// MustOpenDB opens an in-memory SQLite database with the full schema
// applied, closed automatically when the test ends.
func MustOpenDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
