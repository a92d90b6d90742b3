package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	tables := []string{"checksums", "duplicate_sightings", "decisions", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheck_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	err := Check(db)
	if err == nil {
		t.Error("Check() expected error for fresh database, got nil")
	}
	if err.Error() != "database has no schema version (needs migration)" {
		t.Errorf("Check() error = %q, want error about needing migration", err.Error())
	}
}

func TestCheck_AfterMigration(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	if err := Check(db); err != nil {
		t.Errorf("Check() after migration returned error: %v", err)
	}
}

func TestUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := Up(db); err != nil {
		t.Fatalf("First Up() failed: %v", err)
	}
	if err := Up(db); err != nil {
		t.Errorf("Second Up() failed: %v (should be idempotent)", err)
	}
	if err := Check(db); err != nil {
		t.Errorf("Check() after double migration returned error: %v", err)
	}
}

func TestSchema_ChecksumPrimaryKey(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	_, err := db.Exec("INSERT INTO checksums (checksum, path, size, first_seen) VALUES ('abc', '/a', 1, datetime('now'))")
	if err != nil {
		t.Fatalf("Failed to insert checksum: %v", err)
	}

	// Same checksum again violates the primary key.
	_, err = db.Exec("INSERT INTO checksums (checksum, path, size, first_seen) VALUES ('abc', '/b', 1, datetime('now'))")
	if err == nil {
		t.Error("Expected primary key violation for duplicate checksum, but insert succeeded")
	}
}

func TestSchema_SightingForeignKey(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	// Sighting without a registered checksum violates the FK.
	_, err := db.Exec("INSERT INTO duplicate_sightings (checksum, path, size, seen_at) VALUES ('missing', '/x', 1, datetime('now'))")
	if err == nil {
		t.Error("Expected foreign key violation, but insert succeeded")
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	return db
}
