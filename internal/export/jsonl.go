package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/session-archive/internal"
)

// JSONLExporter exports sessions in JSONL format (one message per line)
type JSONLExporter struct{}

// Export exports a session to JSONL format
func (e *JSONLExporter) Export(session *internal.Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for i, msg := range session.Messages {
		obj := map[string]interface{}{
			"role":    msg.Role,
			"content": msg.Content,
		}
		if msg.Timestamp != "" {
			obj["timestamp"] = msg.Timestamp
		}
		if len(msg.Files) > 0 {
			paths := make([]string, len(msg.Files))
			for j, f := range msg.Files {
				paths[j] = f.Path
			}
			obj["files"] = paths
		}

		if err := enc.Encode(obj); err != nil {
			return &internal.ExportError{Format: "jsonl", Err: fmt.Errorf("message %d: %w", i, err)}
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
