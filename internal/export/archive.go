package export

import (
	"io"

	"github.com/iksnae/session-archive/internal"
	"github.com/iksnae/session-archive/internal/archive"
)

// ArchiveExporter writes the portable session archive. SessionID labels
// the archive tables; the session's own ID is used when it is empty.
type ArchiveExporter struct {
	SessionID string
}

// Export exports a session as a zip archive
func (e *ArchiveExporter) Export(session *internal.Session, w io.Writer) error {
	id := e.SessionID
	if id == "" {
		id = session.ID
	}
	return archive.Write(w, session, id)
}

// Extension returns the file extension for this format
func (e *ArchiveExporter) Extension() string {
	return "zip"
}
