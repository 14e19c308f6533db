package internal

import (
	"errors"
	"testing"

	"github.com/iksnae/session-archive/testutil"
)

func TestNewStorage(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)

	storage := NewStorage(db)
	if storage == nil {
		t.Fatal("NewStorage() returned nil")
	}
	if storage.db != db {
		t.Error("NewStorage() did not set database correctly")
	}
}

func TestStorage_LoadSession(t *testing.T) {
	storage := NewStorage(testutil.CreateTestDB(t))

	session, err := storage.LoadSession("AAAA0001")
	if err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}
	if session.ID != "AAAA0001" {
		t.Errorf("ID = %q", session.ID)
	}
	if len(session.Messages) != 1 || session.Messages[0].Role != RoleUser {
		t.Errorf("unexpected messages: %+v", session.Messages)
	}
	if got, ok := session.Settings["topK"].(int64); !ok || got != 40 {
		t.Errorf("topK = %#v, want int64(40)", session.Settings["topK"])
	}
	if got, ok := session.Settings["temperature"].(float64); !ok || got != 0.5 {
		t.Errorf("temperature = %#v, want 0.5", session.Settings["temperature"])
	}
	if len(session.ProjectFiles) != 1 || session.ProjectFiles[0].Path != "notes.md" {
		t.Errorf("unexpected project files: %+v", session.ProjectFiles)
	}
}

func TestStorage_LoadSession_NotFound(t *testing.T) {
	storage := NewStorage(testutil.CreateTestDB(t))

	_, err := storage.LoadSession("AAAA000%")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("LoadSession() error = %v, want ErrSessionNotFound", err)
	}
}

func TestStorage_LoadSession_Corrupt(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	testutil.InsertKV(t, db, "session:BAD", "not json")

	_, err := NewStorage(db).LoadSession("BAD")
	var storageErr *StorageError
	if !errors.As(err, &storageErr) || storageErr.Op != "parse" {
		t.Errorf("LoadSession() error = %v, want parse StorageError", err)
	}
}

func TestStorage_SaveAndLoad(t *testing.T) {
	storage := NewStorage(testutil.CreateInMemoryDB(t))

	session := CreateTestSession("ROUND001")
	pf := NewProjectFile("src/a.ts", []byte("let a = 1"))
	session.ProjectFiles = []ProjectFile{pf}

	if err := storage.SaveSession(session); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	got, err := storage.LoadSession("ROUND001")
	if err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(got.Messages))
	}
	if got.Messages[1].Files[0].Content != session.Messages[1].Files[0].Content {
		t.Error("attachment content changed")
	}
	if got.Settings.String("model") != "gemini-test" {
		t.Errorf("model = %q", got.Settings.String("model"))
	}
	if len(got.ProjectFiles) != 1 || got.ProjectFiles[0].ID != pf.ID {
		t.Errorf("project files = %+v", got.ProjectFiles)
	}
}

func TestStorage_LoadProjectFiles_ExactSession(t *testing.T) {
	storage := NewStorage(testutil.CreateInMemoryDB(t))
	for _, id := range []string{"ABCD", "abcd", "A_CD", "A%"} {
		if err := storage.SaveSession(CreateTestSession(id)); err != nil {
			t.Fatalf("SaveSession(%s) error = %v", id, err)
		}
	}
	pf := NewProjectFile("notes.md", []byte("only ABCD"))
	if err := storage.SaveProjectFile("ABCD", &pf); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		id   string
		want int
	}{
		{"ABCD", 1},
		{"abcd", 0},
		{"A_CD", 0},
		{"A%", 0},
	}
	for _, tt := range tests {
		session, err := storage.LoadSession(tt.id)
		if err != nil {
			t.Fatalf("LoadSession(%s) error = %v", tt.id, err)
		}
		if len(session.ProjectFiles) != tt.want {
			t.Errorf("LoadSession(%s) has %d project files, want %d", tt.id, len(session.ProjectFiles), tt.want)
		}
	}
}

func TestStorage_SaveAndLoad_WholeFloat(t *testing.T) {
	storage := NewStorage(testutil.CreateInMemoryDB(t))
	session := CreateTestSession("FLOAT001")
	session.Settings["topP"] = 1.0

	if err := storage.SaveSession(session); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	got, err := storage.LoadSession("FLOAT001")
	if err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}
	if v, ok := got.Settings["topP"].(float64); !ok || v != 1.0 {
		t.Errorf("topP = %#v, want float64(1)", got.Settings["topP"])
	}
}

func TestStorage_SaveSession_NoID(t *testing.T) {
	storage := NewStorage(testutil.CreateInMemoryDB(t))
	if err := storage.SaveSession(&Session{}); err == nil {
		t.Error("SaveSession() without id should fail")
	}
}

func TestStorage_ListSessions(t *testing.T) {
	db := testutil.CreateTestDB(t)
	testutil.InsertKV(t, db, "session:BROKEN", "{")

	sessions, err := NewStorage(db).ListSessions()
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("ListSessions() returned %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != "AAAA0001" || sessions[1].ID != "BBBB0002" {
		t.Errorf("unexpected order: %s, %s", sessions[0].ID, sessions[1].ID)
	}
}

func TestStorage_HasAndDeleteSession(t *testing.T) {
	storage := NewStorage(testutil.CreateTestDB(t))

	ok, err := storage.HasSession("AAAA0001")
	if err != nil || !ok {
		t.Fatalf("HasSession() = %v, %v", ok, err)
	}

	if err := storage.DeleteSession("AAAA0001"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if ok, _ := storage.HasSession("AAAA0001"); ok {
		t.Error("session still present after delete")
	}
	files, err := storage.LoadProjectFiles("AAAA0001")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("project files survived delete: %+v", files)
	}

	if err := storage.DeleteSession("AAAA0001"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second DeleteSession() error = %v, want ErrSessionNotFound", err)
	}
}

func TestStorage_SaveProjectFile_Versioning(t *testing.T) {
	storage := NewStorage(testutil.CreateInMemoryDB(t))
	pf := NewProjectFile("a.txt", []byte("one"))

	if err := storage.SaveProjectFile("S", &pf); err != nil {
		t.Fatal(err)
	}
	if _, err := pf.Update([]byte("two")); err != nil {
		t.Fatal(err)
	}
	if err := storage.SaveProjectFile("S", &pf); err != nil {
		t.Fatal(err)
	}

	files, err := storage.LoadProjectFiles("S")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d project files, want 1", len(files))
	}
	if files[0].Version != 2 {
		t.Errorf("Version = %d, want 2", files[0].Version)
	}
}

func TestSplitKey(t *testing.T) {
	tests := []struct {
		key    string
		prefix string
		want   int
	}{
		{"projectFile:S:F", projectFileKeyPrefix, 3},
		{"session:S", sessionKeyPrefix, 2},
		{"other:S", sessionKeyPrefix, 0},
	}
	for _, tt := range tests {
		if got := splitKey(tt.key, tt.prefix); len(got) != tt.want {
			t.Errorf("splitKey(%q) = %v, want %d parts", tt.key, got, tt.want)
		}
	}
}
