package library

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/vmunix/mediad/internal/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

// ptr is a helper to create pointer to value
func ptr[T any](v T) *T {
	return &v
}

// newRootLink inserts a root directory link for tests to parent under.
func newRootLink(t *testing.T, store *Store, path string, kind MediaKind) *MediaLink {
	t.Helper()
	l := &MediaLink{
		GID:        uuid.NewString(),
		Path:       path,
		Descriptor: DescriptorRootDirectory,
		MediaKind:  kind,
	}
	if err := store.InsertLink(l); err != nil {
		t.Fatalf("insert root link: %v", err)
	}
	return l
}
