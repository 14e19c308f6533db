package export

import (
	"testing"
)

func TestNewExporter(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantExt string
		wantErr bool
	}{
		{name: "jsonl format", format: "jsonl", wantExt: "jsonl"},
		{name: "markdown format", format: "md", wantExt: "md"},
		{name: "markdown format long", format: "markdown", wantExt: "md"},
		{name: "yaml format", format: "yaml", wantExt: "yaml"},
		{name: "yml alias", format: "yml", wantExt: "yaml"},
		{name: "json format", format: "json", wantExt: "json"},
		{name: "cbor format", format: "cbor", wantExt: "cbor"},
		{name: "zip format", format: "zip", wantExt: "zip"},
		{name: "archive alias", format: "archive", wantExt: "zip"},
		{name: "unsupported format", format: "xml", wantErr: true},
		{name: "empty format", format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewExporter() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr {
				if exporter != nil {
					t.Errorf("NewExporter() returned exporter %T, want nil", exporter)
				}
				return
			}
			if exporter == nil {
				t.Fatal("NewExporter() returned nil exporter")
			}
			if got := exporter.Extension(); got != tt.wantExt {
				t.Errorf("Exporter.Extension() = %v, want %v", got, tt.wantExt)
			}
		})
	}
}

func TestFormatsAreAccepted(t *testing.T) {
	for _, format := range Formats {
		if _, err := NewExporter(format); err != nil {
			t.Errorf("NewExporter(%q) error = %v", format, err)
		}
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(&ArchiveExporter{}, "AB12CD34"); got != "session_AB12CD34.zip" {
		t.Errorf("FileName() = %q", got)
	}
	if got := FileName(&MarkdownExporter{}, "x"); got != "session_x.md" {
		t.Errorf("FileName() = %q", got)
	}
}
