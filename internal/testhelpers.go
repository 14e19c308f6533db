package internal

// CreateTestSession creates a test session with sample data
func CreateTestSession(id string) *Session {
	return &Session{
		ID: id,
		Settings: Settings{
			"model":       "gemini-test",
			"temperature": 0.7,
		},
		Messages: []Message{
			{
				ID:        "2024-01-01T00:00:00Z0",
				Role:      RoleUser,
				Content:   "Hello, how are you?",
				Timestamp: "2024-01-01T00:00:00Z",
			},
			{
				ID:        "2024-01-01T00:00:05Z1",
				Role:      RoleModel,
				Content:   "Here you go:\n```go:main.go\npackage main\n```",
				Timestamp: "2024-01-01T00:00:05Z",
				Files: []Attachment{
					NewAttachment("main.go", []byte("package main")),
				},
			},
		},
		CreatedAt: "2024-01-01T00:00:00Z",
		UpdatedAt: "2024-01-01T00:00:05Z",
	}
}

// CreateTestSessionWithMessages creates a test session with custom messages
func CreateTestSessionWithMessages(id string, messages []Message) *Session {
	return &Session{
		ID:       id,
		Settings: Settings{"model": "gemini-test"},
		Messages: messages,
	}
}

// CreateTestMessage creates a message with a fixed timestamp
func CreateTestMessage(role Role, content string, files ...Attachment) Message {
	return Message{
		ID:        "2024-01-01T00:00:00Z",
		Role:      role,
		Content:   content,
		Timestamp: "2024-01-01T00:00:00Z",
		Files:     files,
	}
}
