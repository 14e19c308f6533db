package internal

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message
type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModel, RoleSystem:
		return true
	}
	return false
}

// Session is the unit persisted to and restored from an archive
type Session struct {
	ID           string        `json:"id" yaml:"id"`
	Settings     Settings      `json:"settings" yaml:"settings"`
	Messages     []Message     `json:"messages" yaml:"messages"`
	ProjectFiles []ProjectFile `json:"projectFiles,omitempty" yaml:"project_files,omitempty"`
	CreatedAt    string        `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt    string        `json:"updatedAt,omitempty" yaml:"updated_at,omitempty"`
}

// Message is a single turn of a conversation
type Message struct {
	ID        string       `json:"id" yaml:"id"`
	Role      Role         `json:"role" yaml:"role"`
	Content   string       `json:"content" yaml:"content"`
	Timestamp string       `json:"timestamp" yaml:"timestamp"`
	Files     []Attachment `json:"files,omitempty" yaml:"files,omitempty"`
	IsAlert   bool         `json:"isAlert,omitempty" yaml:"is_alert,omitempty"`
}

// NewSessionID returns a short upper-case session identifier
func NewSessionID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// NewSession creates an empty session with the given settings
func NewSession(settings Settings) *Session {
	now := Now()
	if settings == nil {
		settings = DefaultSettings()
	}
	return &Session{
		ID:        NewSessionID(),
		Settings:  settings,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewMessage creates a message stamped with the current time
func NewMessage(role Role, content string, files []Attachment) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: Now(),
		Files:     files,
	}
}

// NewAlert creates a system notice for a failed model request
func NewAlert(text string) Message {
	msg := NewMessage(RoleSystem, "API ERROR - "+text, nil)
	msg.IsAlert = true
	return msg
}

// Now returns the current instant in the timestamp format used by messages
func Now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Append adds a message and refreshes UpdatedAt
func (s *Session) Append(msg Message) {
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = Now()
}

// FileCount returns the number of attachments across all messages
func (s *Session) FileCount() int {
	n := 0
	for _, msg := range s.Messages {
		n += len(msg.Files)
	}
	return n
}

// TotalFileBytes returns the decoded size of all attachments
func (s *Session) TotalFileBytes() int64 {
	var total int64
	for _, msg := range s.Messages {
		for _, f := range msg.Files {
			total += f.Size
		}
	}
	return total
}

// FindMessage returns the position of the message with the given id, or -1
func (s *Session) FindMessage(id string) int {
	for i, msg := range s.Messages {
		if msg.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy that shares no mutable state with s
func (s *Session) Clone() *Session {
	out := *s
	out.Settings = s.Settings.Clone()
	out.Messages = make([]Message, len(s.Messages))
	for i, msg := range s.Messages {
		out.Messages[i] = msg
		if msg.Files != nil {
			out.Messages[i].Files = append([]Attachment(nil), msg.Files...)
		}
	}
	if s.ProjectFiles != nil {
		out.ProjectFiles = append([]ProjectFile(nil), s.ProjectFiles...)
	}
	return &out
}
