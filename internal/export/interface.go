package export

import (
	"fmt"
	"io"

	"github.com/iksnae/session-archive/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(session *internal.Session, w io.Writer) error
	Extension() string
}

// Formats lists the names accepted by NewExporter
var Formats = []string{"jsonl", "md", "yaml", "json", "cbor", "zip"}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "cbor":
		return &CBORExporter{}, nil
	case "zip", "archive":
		return &ArchiveExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json, cbor, zip)", format)
	}
}

// FileName returns the conventional output file name for a session
func FileName(e Exporter, sessionID string) string {
	return fmt.Sprintf("session_%s.%s", sessionID, e.Extension())
}
