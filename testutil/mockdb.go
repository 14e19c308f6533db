package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

const sessionKVTable = `
CREATE TABLE IF NOT EXISTS sessionKV (
	key TEXT PRIMARY KEY,
	value TEXT
)`

// CreateInMemoryDB creates an in-memory SQLite database with an empty
// sessionKV table. It is closed when the test ends.
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(sessionKVTable); err != nil {
		t.Fatalf("Failed to create sessionKV table: %v", err)
	}
	return db
}

// CreateTestDB creates a test database holding two sessions and one
// project file
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)

	rows := []struct {
		key   string
		value string
	}{
		{
			key:   "session:AAAA0001",
			value: `{"id":"AAAA0001","settings":{"model":"gemini-test","topK":40,"temperature":0.5},"messages":[{"id":"m1","role":"user","content":"Hello","timestamp":"2024-01-01T00:00:00Z"}],"createdAt":"2024-01-01T00:00:00Z"}`,
		},
		{
			key:   "session:BBBB0002",
			value: `{"id":"BBBB0002","settings":{},"messages":[]}`,
		},
		{
			key:   "projectFile:AAAA0001:pf1",
			value: `{"path":"notes.md","content":"aGk=","size":2,"mimeType":"text/markdown","id":"pf1","version":1}`,
		},
	}

	stmt, err := db.Prepare("INSERT INTO sessionKV (key, value) VALUES (?, ?)")
	if err != nil {
		t.Fatalf("Failed to prepare insert statement: %v", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row.key, row.value); err != nil {
			t.Fatalf("Failed to insert %s: %v", row.key, err)
		}
	}
	return db
}

// InsertKV inserts a raw row into sessionKV
func InsertKV(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	if _, err := db.Exec("INSERT OR REPLACE INTO sessionKV (key, value) VALUES (?, ?)", key, value); err != nil {
		t.Fatalf("Failed to insert %s: %v", key, err)
	}
}
