package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"mochiteach/internal/database"
)

// KVRepository persists opaque string blobs under fixed keys. The lesson
// collection is stored this way: one JSON array under a single key, rewritten
// whole on every change.
type KVRepository struct {
	db database.DBTX
}

// NewKVRepository creates a new key-value repository
func NewKVRepository(db database.DBTX) *KVRepository {
	return &KVRepository{db: db}
}

// Read returns the value stored under key. The second return value is false
// when the key is absent; absence is not an error.
func (r *KVRepository) Read(key string) (string, bool, error) {
	var value string
	query := "SELECT kv_value FROM kv_store WHERE kv_key = ?"
	err := r.db.QueryRow(query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

// Write stores value under key, replacing any previous value
func (r *KVRepository) Write(key, value string) error {
	if _, err := r.db.Exec(r.db.GetDialect().UpsertKVQuery(), key, value); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}
