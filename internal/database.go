package internal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	_ "modernc.org/sqlite"
)

// sessionKVSchema is the single key/value table backing the local store
const sessionKVSchema = `
CREATE TABLE IF NOT EXISTS sessionKV (
	key   TEXT PRIMARY KEY,
	value TEXT
)`

// OpenDatabase opens (creating if needed) the SQLite session store
func OpenDatabase(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, &StorageError{Path: path, Op: "open", Err: err}
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// OpenReadOnlyDatabase opens an existing session store without write access
func OpenReadOnlyDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the sessionKV table if it is missing
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(sessionKVSchema); err != nil {
		return fmt.Errorf("create sessionKV table: %w", err)
	}
	return nil
}

// QuerySessionKV queries the sessionKV table with a LIKE pattern
func QuerySessionKV(db *sql.DB, pattern string) ([]KeyValuePair, error) {
	query := "SELECT key, value FROM sessionKV WHERE key LIKE ? AND value IS NOT NULL ORDER BY key"
	return queryPairs(db, query, pattern)
}

// QuerySessionKVPrefix returns the rows whose key starts with prefix.
// The match is exact and case-sensitive; _ and % are literal.
func QuerySessionKVPrefix(db *sql.DB, prefix string) ([]KeyValuePair, error) {
	query := "SELECT key, value FROM sessionKV WHERE substr(key, 1, ?) = ? AND value IS NOT NULL ORDER BY key"
	return queryPairs(db, query, utf8.RuneCountInString(prefix), prefix)
}

func queryPairs(db *sql.DB, query string, args ...any) ([]KeyValuePair, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var pairs []KeyValuePair
	for rows.Next() {
		var pair KeyValuePair
		var value sql.NullString
		if err := rows.Scan(&pair.Key, &value); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if value.Valid {
			pair.Value = value.String
			pairs = append(pairs, pair)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return pairs, nil
}

// GetSessionKV reads a single key
func GetSessionKV(db *sql.DB, key string) (string, bool, error) {
	var value sql.NullString
	err := db.QueryRow("SELECT value FROM sessionKV WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value.String, value.Valid, nil
}

// PutSessionKV inserts or replaces a single key
func PutSessionKV(db *sql.DB, key, value string) error {
	_, err := db.Exec("INSERT OR REPLACE INTO sessionKV (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// DeleteSessionKV removes a single key
func DeleteSessionKV(db *sql.DB, key string) (int64, error) {
	return execDelete(db, "DELETE FROM sessionKV WHERE key = ?", key)
}

// DeleteSessionKVPrefix removes every key starting with prefix.
// substr counts characters, not bytes.
func DeleteSessionKVPrefix(db *sql.DB, prefix string) (int64, error) {
	return execDelete(db, "DELETE FROM sessionKV WHERE substr(key, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix)
}

func execDelete(db *sql.DB, query string, args ...any) (int64, error) {
	res, err := db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete %v: %w", args, err)
	}
	return res.RowsAffected()
}

// KeyValuePair represents a key-value pair from sessionKV
type KeyValuePair struct {
	Key   string
	Value string
}
