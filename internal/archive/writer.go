package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zip"

	"github.com/iksnae/session-archive/internal"
	"github.com/iksnae/session-archive/internal/bejson"
)

const exportFormat = "bejson-zip"

// Write serializes s into an archive. sessionID labels both tables and
// is never used for addressing. Nothing is written to w unless the whole
// archive was assembled successfully.
func Write(w io.Writer, s *internal.Session, sessionID string) error {
	data, err := Build(s, sessionID)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return &internal.ExportError{Format: exportFormat, Path: FileName(sessionID), Err: err}
	}
	return nil
}

// WriteFile writes the archive of s to path
func WriteFile(path string, s *internal.Session, sessionID string) error {
	data, err := Build(s, sessionID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &internal.ExportError{Format: exportFormat, Path: path, Err: err}
	}
	return nil
}

// Build assembles the archive bytes for s. The output depends only on
// the session contents and sessionID.
func Build(s *internal.Session, sessionID string) ([]byte, error) {
	config, err := encodeConfig(s.Settings, sessionID)
	if err != nil {
		return nil, &internal.ExportError{Format: exportFormat, Path: ConfigEntry, Err: err}
	}

	payloads, manifest, err := planMessages(s.Messages, sessionID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := append([]payload{{ConfigEntry, config}, {ManifestEntry, manifest}}, payloads...)
	for _, p := range entries {
		if err := writeZipEntry(zw, exportFormat, p.name, p.data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, &internal.ExportError{Format: exportFormat, Path: FileName(sessionID), Err: err}
	}

	internal.LogDebug("Built archive for session %s: %d message(s), %d entries, %d bytes",
		sessionID, len(s.Messages), len(entries), buf.Len())
	return buf.Bytes(), nil
}

type payload struct {
	name string
	data []byte
}

// planMessages decodes every payload and builds the manifest before any
// entry is placed, so a bad attachment aborts the whole export
func planMessages(messages []internal.Message, sessionID string) ([]payload, []byte, error) {
	doc := bejson.New(ManifestCreator, sessionID, []string{RecordTypeMessage, RecordTypeFile}, manifestFields)
	var payloads []payload

	for i, msg := range messages {
		contentPath := ContentPath(i)
		doc.Append(messageRecord{
			Index:       i,
			Role:        msg.Role,
			Timestamp:   msg.Timestamp,
			ContentPath: contentPath,
		}.toRecord())
		payloads = append(payloads, payload{name: contentPath, data: []byte(msg.Content)})

		placed := make(map[string]bool, len(msg.Files))
		for _, f := range msg.Files {
			if err := validAttachmentPath(f.Path); err != nil {
				return nil, nil, &internal.ExportError{Format: exportFormat, Path: contentPath, Err: err}
			}
			filePath := FilePath(i, f.Path)
			if placed[filePath] {
				return nil, nil, &internal.ExportError{Format: exportFormat, Path: filePath, Err: fmt.Errorf("duplicate attachment path %q", f.Path)}
			}
			placed[filePath] = true

			data, err := f.Bytes()
			if err != nil {
				return nil, nil, &internal.ExportError{Format: exportFormat, Path: filePath, Err: err}
			}
			if f.Size != int64(len(data)) {
				internal.LogDebug("Attachment %s declares %d bytes, payload has %d", filePath, f.Size, len(data))
			}
			doc.Append(fileRecord{
				Index:     i,
				Role:      msg.Role,
				Timestamp: msg.Timestamp,
				FilePath:  filePath,
				Path:      f.Path,
				FileSize:  int64(len(data)),
			}.toRecord())
			payloads = append(payloads, payload{name: filePath, data: data})
		}
	}

	manifest, err := bejson.Encode(doc)
	if err != nil {
		return nil, nil, &internal.ExportError{Format: exportFormat, Path: ManifestEntry, Err: err}
	}
	return payloads, manifest, nil
}

func encodeConfig(settings internal.Settings, sessionID string) ([]byte, error) {
	doc := bejson.New(ConfigCreator, "session_config_for_"+sessionID, []string{"AppSetting"}, configFields)
	for _, key := range settings.Keys() {
		value, err := internal.EncodeSettingValue(settings[key])
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", key, err)
		}
		doc.Append(bejson.Record{"setting_key": key, "setting_value": value})
	}
	return bejson.Encode(doc)
}
