package repository

import (
	"path/filepath"
	"testing"

	"mochiteach/internal/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping sqlite-backed test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE kv_store (
		kv_key TEXT PRIMARY KEY,
		kv_value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		t.Fatalf("failed to create kv_store: %v", err)
	}
	return db
}

func TestKVReadAbsentKey(t *testing.T) {
	repo := NewKVRepository(newTestDB(t))

	value, ok, err := repo.Read("lessons")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if ok || value != "" {
		t.Errorf("Read(absent) = (%q, %v), want empty and false", value, ok)
	}
}

func TestKVWriteReadRoundTrip(t *testing.T) {
	repo := NewKVRepository(newTestDB(t))

	if err := repo.Write("lessons", `[{"id":"abc"}]`); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	value, ok, err := repo.Read("lessons")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !ok {
		t.Fatal("Read() reports key absent after Write")
	}
	if value != `[{"id":"abc"}]` {
		t.Errorf("Read() = %q", value)
	}
}

func TestKVWriteReplacesValue(t *testing.T) {
	repo := NewKVRepository(newTestDB(t))

	if err := repo.Write("lessons", "first"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := repo.Write("lessons", "second"); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}

	value, ok, err := repo.Read("lessons")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !ok || value != "second" {
		t.Errorf("Read() after rewrite = (%q, %v), want (\"second\", true)", value, ok)
	}
}

func TestKVKeysAreIndependent(t *testing.T) {
	repo := NewKVRepository(newTestDB(t))

	if err := repo.Write("lessons", "a"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := repo.Write("settings", "b"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	value, _, err := repo.Read("lessons")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if value != "a" {
		t.Errorf("writing one key changed another: %q", value)
	}
}
