package cmd

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestHealthcheckCommand(t *testing.T) {
	useTempStore(t)
	seedSession(t, "S1")

	out, err := executeCommand(t, "healthcheck", "--verbose")
	if err != nil {
		t.Fatalf("healthcheck error = %v\n%s", err, out)
	}
	for _, s := range []string{"Session store opened", "Found 1 session(s)", "Archive round trip succeeded", "Catalog consistent", "Health check passed"} {
		if !strings.Contains(out, s) {
			t.Errorf("healthcheck output missing %q:\n%s", s, out)
		}
	}
}

func TestHealthcheckCommand_EmptyStore(t *testing.T) {
	useTempStore(t)

	out, err := executeCommand(t, "healthcheck")
	if err != nil {
		t.Fatalf("healthcheck error = %v", err)
	}
	if !strings.Contains(out, "No sessions found") {
		t.Errorf("expected empty store warning:\n%s", out)
	}
}

func TestArchiveSelfTest(t *testing.T) {
	if err := archiveSelfTest(); err != nil {
		t.Errorf("archiveSelfTest() error = %v", err)
	}
}

func TestInspectCommand(t *testing.T) {
	useTempStore(t)
	seedSession(t, "S1")

	out, err := executeCommand(t, "inspect")
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	for _, s := range []string{"Table: sessionKV", "key: TEXT [PRIMARY KEY]", "session: 1", "Sample Data"} {
		if !strings.Contains(out, s) {
			t.Errorf("inspect output missing %q:\n%s", s, out)
		}
	}

	out, err = executeCommand(t, "inspect", "--format", "json", "--sample", "0")
	if err != nil {
		t.Fatalf("inspect --format json error = %v", err)
	}
	var report DatabaseReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON report: %v\n%s", err, out)
	}
	if len(report.Tables) != 1 || report.Tables[0].Name != "sessionKV" || report.Tables[0].Rows != 1 {
		t.Errorf("unexpected report %+v", report)
	}
	if report.Tables[0].Prefixes["session"] != 1 || len(report.Tables[0].Samples) != 0 {
		t.Errorf("unexpected table report %+v", report.Tables[0])
	}

	if _, err := executeCommand(t, "inspect", "--format", "xml"); err == nil {
		t.Error("unsupported format should fail")
	}
}

func TestPreviewValue(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want string
	}{
		{name: "nil", val: nil, want: "<NULL>"},
		{name: "bytes", val: []byte("abc"), want: "abc"},
		{name: "multiline", val: "a\nb", want: "a..."},
		{name: "number", val: int64(3), want: "3"},
		{name: "long", val: strings.Repeat("x", 250), want: strings.Repeat("x", 200) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := previewValue(tt.val); got != tt.want {
				t.Errorf("previewValue() = %q, want %q", got, tt.want)
			}
		})
	}
}
