package shared

import (
	"database/sql"
	"testing"
)

func setupMigratedDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	if err != nil {
		t.Fatalf("schema query failed: %v", err)
	}
	return count > 0
}

func TestRunMigrations(t *testing.T) {
	db := setupMigratedDB(t)

	for _, table := range []string{"runs", "checkpoints", "schema_migrations"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %q missing after migrations", table)
		}
	}

	// Re-running is a no-op, not an error.
	if err := RunMigrations(db); err != nil {
		t.Errorf("second RunMigrations() error = %v", err)
	}
}

func TestRollbackMigration(t *testing.T) {
	db := setupMigratedDB(t)

	if err := RollbackMigration(db); err != nil {
		t.Fatalf("RollbackMigration() error = %v", err)
	}
	if tableExists(t, db, "checkpoints") {
		t.Error("checkpoints table still present after rollback")
	}
	if !tableExists(t, db, "runs") {
		t.Error("rollback removed more than the latest migration")
	}

	version, err := getCurrentVersion(db)
	if err != nil {
		t.Fatalf("getCurrentVersion() error = %v", err)
	}
	if version != 0 {
		t.Errorf("current version = %d, want 0", version)
	}

	if err := RollbackMigration(db); err != nil {
		t.Fatalf("RollbackMigration() error = %v", err)
	}
	if tableExists(t, db, "runs") {
		t.Error("runs table still present after rolling back everything")
	}

	if err := RollbackMigration(db); err == nil {
		t.Error("expected an error when nothing is left to roll back")
	}
}
