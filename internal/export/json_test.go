package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/session-archive/internal"
)

func TestJSONExporter_Export(t *testing.T) {
	tests := []struct {
		name    string
		session *internal.Session
	}{
		{name: "basic session", session: internal.CreateTestSession("test1")},
		{name: "empty session", session: internal.CreateTestSessionWithMessages("test2", []internal.Message{})},
		{
			name: "session with markup",
			session: internal.CreateTestSessionWithMessages("test3", []internal.Message{
				internal.CreateTestMessage(internal.RoleUser, "<b>&</b>"),
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &JSONExporter{}

			if err := exporter.Export(tt.session, &buf); err != nil {
				t.Fatalf("JSONExporter.Export() error = %v", err)
			}

			output := buf.String()
			var session internal.Session
			if err := json.Unmarshal([]byte(output), &session); err != nil {
				t.Fatalf("Output is not valid JSON: %v\nOutput: %s", err, output)
			}
			if session.ID != tt.session.ID {
				t.Errorf("ID = %q, want %q", session.ID, tt.session.ID)
			}
			if len(session.Messages) != len(tt.session.Messages) {
				t.Errorf("got %d messages, want %d", len(session.Messages), len(tt.session.Messages))
			}
			if !strings.Contains(output, "  ") {
				t.Errorf("Output should be pretty-printed with indentation")
			}
		})
	}
}

func TestJSONExporter_NoHTMLEscaping(t *testing.T) {
	var buf bytes.Buffer
	session := internal.CreateTestSessionWithMessages("s", []internal.Message{
		internal.CreateTestMessage(internal.RoleUser, "<b>&</b>"),
	})
	if err := (&JSONExporter{}).Export(session, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<b>&</b>") {
		t.Errorf("markup should be written verbatim, got:\n%s", buf.String())
	}
}

func TestJSONExporter_Extension(t *testing.T) {
	exporter := &JSONExporter{}
	if got := exporter.Extension(); got != "json" {
		t.Errorf("JSONExporter.Extension() = %v, want json", got)
	}
}
