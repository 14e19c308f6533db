package internal

import (
	"strings"
	"testing"
	"time"
)

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleModel, RoleSystem} {
		if !r.Valid() {
			t.Errorf("%q should be valid", r)
		}
	}
	if Role("assistant").Valid() || Role("").Valid() {
		t.Error("unknown roles should be invalid")
	}
}

func TestNewSession(t *testing.T) {
	s := NewSession(nil)
	if len(s.ID) != 8 || strings.ToUpper(s.ID) != s.ID {
		t.Errorf("ID = %q, want 8 upper-case characters", s.ID)
	}
	if s.Settings.String("model") == "" {
		t.Error("nil settings should fall back to defaults")
	}
	if s.Messages == nil || len(s.Messages) != 0 {
		t.Errorf("Messages = %#v, want empty slice", s.Messages)
	}
	if s.CreatedAt == "" || s.CreatedAt != s.UpdatedAt {
		t.Errorf("timestamps = %q / %q", s.CreatedAt, s.UpdatedAt)
	}

	custom := NewSession(Settings{"model": "X"})
	if custom.Settings.String("model") != "X" {
		t.Error("explicit settings should be kept")
	}
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage(RoleUser, "hi", nil)
	if msg.ID == "" || msg.Role != RoleUser || msg.Content != "hi" {
		t.Errorf("NewMessage() = %+v", msg)
	}
	if _, err := time.Parse(time.RFC3339Nano, msg.Timestamp); err != nil {
		t.Errorf("Timestamp %q is not RFC3339: %v", msg.Timestamp, err)
	}
	if msg.Files != nil {
		t.Error("Files should stay nil without attachments")
	}
}

func TestNewAlert(t *testing.T) {
	msg := NewAlert("quota exceeded")
	if !msg.IsAlert || msg.Role != RoleSystem || msg.Content != "API ERROR - quota exceeded" {
		t.Errorf("NewAlert() = %+v", msg)
	}
}

func TestSession_Counters(t *testing.T) {
	s := CreateTestSession("c1")
	s.Append(CreateTestMessage(RoleUser, "more", NewAttachment("x.bin", make([]byte, 100))))

	if got := s.FileCount(); got != 2 {
		t.Errorf("FileCount() = %d, want 2", got)
	}
	if got := s.TotalFileBytes(); got != 112 {
		t.Errorf("TotalFileBytes() = %d, want 112", got)
	}
	if s.UpdatedAt == "2024-01-01T00:00:05Z" {
		t.Error("Append() should refresh UpdatedAt")
	}
}

func TestSession_FindMessage(t *testing.T) {
	s := CreateTestSession("f1")
	if got := s.FindMessage("2024-01-01T00:00:05Z1"); got != 1 {
		t.Errorf("FindMessage() = %d, want 1", got)
	}
	if got := s.FindMessage("missing"); got != -1 {
		t.Errorf("FindMessage() = %d, want -1", got)
	}
}

func TestSession_Clone(t *testing.T) {
	s := CreateTestSession("k1")
	s.Settings["stop"] = []any{"a"}
	c := s.Clone()

	c.Settings["model"] = "changed"
	c.Settings["stop"].([]any)[0] = "b"
	c.Messages[0].Content = "changed"
	c.Messages[1].Files[0].Path = "changed.go"

	if s.Settings.String("model") != "gemini-test" {
		t.Error("settings shared with clone")
	}
	if s.Settings["stop"].([]any)[0] != "a" {
		t.Error("nested setting shared with clone")
	}
	if s.Messages[0].Content == "changed" || s.Messages[1].Files[0].Path == "changed.go" {
		t.Error("messages shared with clone")
	}
}
