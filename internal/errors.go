package internal

import (
	"errors"
	"fmt"
)

// Failure kinds reported by the BEJSON codec and the archive reader.
// Every ArchiveError and DocumentError carries exactly one of these.
var (
	ErrMalformedDocument = errors.New("MalformedDocument")
	ErrSchemaViolation   = errors.New("SchemaViolation")
	ErrMissingConfig     = errors.New("MissingConfig")
	ErrMissingManifest   = errors.New("MissingManifest")
	ErrMissingPayload    = errors.New("MissingPayload")
	ErrIndexConflict     = errors.New("IndexConflict")
	ErrSparseManifest    = errors.New("SparseManifest")
	ErrOrphanFileRecord  = errors.New("OrphanFileRecord")
)

var errorKinds = []error{
	ErrMalformedDocument,
	ErrSchemaViolation,
	ErrMissingConfig,
	ErrMissingManifest,
	ErrMissingPayload,
	ErrIndexConflict,
	ErrSparseManifest,
	ErrOrphanFileRecord,
}

// ErrorKind returns the name of the failure kind carried by err, or ""
// when err is not a codec or archive failure.
func ErrorKind(err error) string {
	for _, kind := range errorKinds {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return ""
}

// StorageError represents errors accessing the local session store
type StorageError struct {
	Path string
	Op   string // "open", "read", "write", "parse"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// DocumentError represents a BEJSON document that could not be encoded or decoded
type DocumentError struct {
	Kind  error  // ErrMalformedDocument or ErrSchemaViolation
	Field string // offending field or record position, if known
	Err   error
}

func (e *DocumentError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("document error [%s]: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("document error [%s] %s: %v", e.Kind, e.Field, e.Err)
}

func (e *DocumentError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ArchiveError represents a session archive that could not be reconstructed
type ArchiveError struct {
	Kind  error  // one of the Err* kinds above
	Entry string // archive entry or manifest record involved
	Err   error
}

func (e *ArchiveError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("archive error [%s] %s", e.Kind, e.Entry)
	}
	return fmt.Sprintf("archive error [%s] %s: %v", e.Kind, e.Entry, e.Err)
}

func (e *ArchiveError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
