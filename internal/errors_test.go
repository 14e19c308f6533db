package internal

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStorageError(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := &StorageError{
		Path: "/test/path",
		Op:   "open",
		Err:  originalErr,
	}

	// Test Error() method
	errorMsg := err.Error()
	if errorMsg == "" {
		t.Error("StorageError.Error() returned empty string")
	}
	if !strings.Contains(errorMsg, "storage error") {
		t.Errorf("StorageError.Error() should contain 'storage error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "/test/path") {
		t.Errorf("StorageError.Error() should contain path, got: %q", errorMsg)
	}

	// Test Unwrap() method
	if !errors.Is(err, originalErr) {
		t.Error("StorageError.Unwrap() should return original error")
	}
}

func TestDocumentError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &DocumentError{Kind: ErrMalformedDocument, Field: "Values[2]", Err: cause}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "MalformedDocument") || !strings.Contains(errorMsg, "Values[2]") {
		t.Errorf("DocumentError.Error() = %q", errorMsg)
	}
	if !errors.Is(err, ErrMalformedDocument) {
		t.Error("DocumentError should match its kind")
	}
	if !errors.Is(err, cause) {
		t.Error("DocumentError should unwrap to its cause")
	}
	if errors.Is(err, ErrSchemaViolation) {
		t.Error("DocumentError should not match other kinds")
	}
}

func TestArchiveError(t *testing.T) {
	inner := &DocumentError{Kind: ErrSchemaViolation, Field: "Fields", Err: errors.New("no fields declared")}
	err := &ArchiveError{Kind: ErrSchemaViolation, Entry: "manifest.bejson", Err: inner}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "archive error") || !strings.Contains(errorMsg, "manifest.bejson") {
		t.Errorf("ArchiveError.Error() = %q", errorMsg)
	}

	var docErr *DocumentError
	if !errors.As(err, &docErr) || docErr.Field != "Fields" {
		t.Error("ArchiveError should unwrap to the DocumentError")
	}

	bare := &ArchiveError{Kind: ErrMissingConfig, Entry: "config.bejson"}
	if !errors.Is(bare, ErrMissingConfig) {
		t.Error("ArchiveError without cause should still match its kind")
	}
	if strings.Contains(bare.Error(), "<nil>") {
		t.Errorf("ArchiveError.Error() should omit a missing cause, got %q", bare.Error())
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain", err: errors.New("boom"), want: ""},
		{name: "sentinel", err: ErrSparseManifest, want: "SparseManifest"},
		{name: "archive", err: &ArchiveError{Kind: ErrOrphanFileRecord}, want: "OrphanFileRecord"},
		{name: "wrapped", err: fmt.Errorf("import: %w", &ArchiveError{Kind: ErrIndexConflict}), want: "IndexConflict"},
		{name: "document", err: &DocumentError{Kind: ErrMalformedDocument}, want: "MalformedDocument"},
		{name: "storage", err: &StorageError{Op: "read", Err: errors.New("x")}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorKind(tt.err); got != tt.want {
				t.Errorf("ErrorKind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExportError(t *testing.T) {
	originalErr := errors.New("write failed")
	err := &ExportError{
		Format: "jsonl",
		Path:   "/output/file.jsonl",
		Err:    originalErr,
	}

	// Test Error() method
	errorMsg := err.Error()
	if errorMsg == "" {
		t.Error("ExportError.Error() returned empty string")
	}
	if !strings.Contains(errorMsg, "export error") {
		t.Errorf("ExportError.Error() should contain 'export error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "jsonl") {
		t.Errorf("ExportError.Error() should contain format, got: %q", errorMsg)
	}

	// Test Unwrap() method
	if !errors.Is(err, originalErr) {
		t.Error("ExportError.Unwrap() should return original error")
	}
}
