package database

import (
	"strings"
	"testing"
)

func TestDialectBasics(t *testing.T) {
	tests := []struct {
		name                 string
		dialect              Dialect
		driverName           string
		migrationsSubdir     string
		supportsLastInsertID bool
	}{
		{
			name:                 "sqlite",
			dialect:              NewSQLiteDialect(),
			driverName:           "sqlite3",
			migrationsSubdir:     "sqlite",
			supportsLastInsertID: true,
		},
		{
			name:                 "postgres",
			dialect:              NewPostgresDialect(),
			driverName:           "postgres",
			migrationsSubdir:     "postgres",
			supportsLastInsertID: false,
		},
		{
			name:                 "mysql",
			dialect:              NewMySQLDialect(),
			driverName:           "mysql",
			migrationsSubdir:     "mysql",
			supportsLastInsertID: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.DriverName(); got != tt.driverName {
				t.Errorf("DriverName() = %v, want %v", got, tt.driverName)
			}
			if got := tt.dialect.MigrationsSubdir(); got != tt.migrationsSubdir {
				t.Errorf("MigrationsSubdir() = %v, want %v", got, tt.migrationsSubdir)
			}
			if got := tt.dialect.SupportsLastInsertId(); got != tt.supportsLastInsertID {
				t.Errorf("SupportsLastInsertId() = %v, want %v", got, tt.supportsLastInsertID)
			}
		})
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT kv_value FROM kv_store WHERE kv_key = ?",
			expected: "SELECT kv_value FROM kv_store WHERE kv_key = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT kv_value FROM kv_store WHERE kv_key = ?",
			expected: "SELECT kv_value FROM kv_store WHERE kv_key = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO users (email, name) VALUES (?, ?)",
			expected: "INSERT INTO users (email, name) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE users SET email = ?, name = ? WHERE id = ?",
			expected: "UPDATE users SET email = ?, name = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestUpsertKVQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		contains string
	}{
		{
			name:     "sqlite uses ON CONFLICT",
			dialect:  NewSQLiteDialect(),
			contains: "ON CONFLICT(kv_key)",
		},
		{
			name:     "postgres uses ON CONFLICT",
			dialect:  NewPostgresDialect(),
			contains: "ON CONFLICT (kv_key)",
		},
		{
			name:     "mysql uses ON DUPLICATE KEY",
			dialect:  NewMySQLDialect(),
			contains: "ON DUPLICATE KEY UPDATE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := tt.dialect.UpsertKVQuery()
			if !strings.Contains(query, "INSERT INTO kv_store") {
				t.Errorf("UpsertKVQuery() does not target kv_store: %q", query)
			}
			if !strings.Contains(query, tt.contains) {
				t.Errorf("UpsertKVQuery() = %q, want it to contain %q", query, tt.contains)
			}
			// Two placeholders, pre-rewrite
			if strings.Count(query, "?") != 2 {
				t.Errorf("UpsertKVQuery() has %d placeholders, want 2", strings.Count(query, "?"))
			}
		})
	}
}
