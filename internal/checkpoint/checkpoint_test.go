package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"tgclone/internal/shared"
)

func TestKey(t *testing.T) {
	got := Key(12345, "My New Channel")
	want := "checkpoint_12345_My_New_Channel"
	if got != want {
		t.Errorf("Key() = %v, want %v", got, want)
	}

	if Key(1, "a") == Key(2, "a") {
		t.Error("different sources must yield different keys")
	}
	if Key(1, "a") == Key(1, "b") {
		t.Error("different titles must yield different keys")
	}
}

func TestFileStore(t *testing.T) {
	t.Run("load absent returns nil", func(t *testing.T) {
		store, err := NewFileStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileStore() error = %v", err)
		}

		cp, err := store.Load("missing")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cp != nil {
			t.Errorf("Load() = %+v, want nil", cp)
		}
	})

	t.Run("save and load roundtrip", func(t *testing.T) {
		store, err := NewFileStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileStore() error = %v", err)
		}

		key := Key(99, "Roundtrip")
		saved := &Checkpoint{ChannelID: 777, ChannelTitle: "Roundtrip", Processed: 42}
		if err := store.Save(key, saved); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		cp, err := store.Load(key)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cp == nil {
			t.Fatal("Load() returned nil after Save")
		}
		if cp.ChannelID != 777 || cp.ChannelTitle != "Roundtrip" || cp.Processed != 42 {
			t.Errorf("Load() = %+v, want %+v", cp, saved)
		}
	})

	t.Run("corrupt file starts fresh", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewFileStore(dir)
		if err != nil {
			t.Fatalf("NewFileStore() error = %v", err)
		}

		key := "checkpoint_1_Corrupt"
		if err := os.WriteFile(filepath.Join(dir, key+".json"), []byte("{not json"), 0644); err != nil {
			t.Fatalf("failed to write corrupt file: %v", err)
		}

		cp, err := store.Load(key)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cp != nil {
			t.Errorf("Load() = %+v, want nil for corrupt state", cp)
		}
	})

	t.Run("delete removes the file", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewFileStore(dir)
		if err != nil {
			t.Fatalf("NewFileStore() error = %v", err)
		}

		key := "checkpoint_2_Gone"
		if err := store.Save(key, &Checkpoint{ChannelID: 1}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := store.Delete(key); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, key+".json")); !os.IsNotExist(err) {
			t.Error("checkpoint file still exists after Delete")
		}
	})

	t.Run("delete missing is not an error", func(t *testing.T) {
		store, err := NewFileStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileStore() error = %v", err)
		}
		if err := store.Delete("never_saved"); err != nil {
			t.Errorf("Delete() error = %v, want nil", err)
		}
	})
}

func TestSQLiteStore(t *testing.T) {
	setup := func(t *testing.T) *SQLiteStore {
		t.Helper()

		db, err := shared.NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create test database: %v", err)
		}
		t.Cleanup(func() { db.Close() })

		if err := shared.RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		return NewSQLiteStore(db)
	}

	t.Run("load absent returns nil", func(t *testing.T) {
		store := setup(t)

		cp, err := store.Load("missing")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cp != nil {
			t.Errorf("Load() = %+v, want nil", cp)
		}
	})

	t.Run("save and load roundtrip", func(t *testing.T) {
		store := setup(t)

		key := Key(7, "DB Roundtrip")
		if err := store.Save(key, &Checkpoint{ChannelID: 88, ChannelTitle: "DB Roundtrip", Processed: 10}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		cp, err := store.Load(key)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cp == nil || cp.ChannelID != 88 || cp.Processed != 10 {
			t.Errorf("Load() = %+v, want ChannelID 88, Processed 10", cp)
		}
	})

	t.Run("save upserts", func(t *testing.T) {
		store := setup(t)

		key := Key(8, "Upsert")
		if err := store.Save(key, &Checkpoint{ChannelID: 1, ChannelTitle: "Upsert", Processed: 5}); err != nil {
			t.Fatalf("first Save() error = %v", err)
		}
		if err := store.Save(key, &Checkpoint{ChannelID: 1, ChannelTitle: "Upsert", Processed: 15}); err != nil {
			t.Fatalf("second Save() error = %v", err)
		}

		cp, err := store.Load(key)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cp == nil || cp.Processed != 15 {
			t.Errorf("Load() = %+v, want Processed 15", cp)
		}
	})

	t.Run("delete", func(t *testing.T) {
		store := setup(t)

		key := Key(9, "Delete")
		if err := store.Save(key, &Checkpoint{ChannelID: 2}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := store.Delete(key); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		cp, err := store.Load(key)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cp != nil {
			t.Error("checkpoint still present after Delete")
		}

		if err := store.Delete(key); err != nil {
			t.Errorf("Delete() of missing key error = %v, want nil", err)
		}
	})
}
