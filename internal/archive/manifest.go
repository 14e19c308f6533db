package archive

import (
	"fmt"

	"github.com/iksnae/session-archive/internal"
	"github.com/iksnae/session-archive/internal/bejson"
)

// Manifest record discriminator values
const (
	RecordTypeMessage = "Message"
	RecordTypeFile    = "File"
)

var manifestFields = []bejson.Field{
	{Name: "record_type", Type: bejson.TypeString},
	{Name: "message_index", Type: bejson.TypeInteger},
	{Name: "role", Type: bejson.TypeString},
	{Name: "timestamp", Type: bejson.TypeString},
	{Name: "content_path", Type: bejson.TypeString},
	{Name: "file_path", Type: bejson.TypeString},
	{Name: "file_size", Type: bejson.TypeInteger},
}

var configFields = []bejson.Field{
	{Name: "setting_key", Type: bejson.TypeString},
	{Name: "setting_value", Type: bejson.TypeString},
}

// manifestRecord is one decoded manifest row: a messageRecord or a fileRecord
type manifestRecord interface {
	messageIndex() int
	toRecord() bejson.Record
}

type messageRecord struct {
	Index       int
	Role        internal.Role
	Timestamp   string
	ContentPath string
}

func (r messageRecord) messageIndex() int { return r.Index }

func (r messageRecord) toRecord() bejson.Record {
	return bejson.Record{
		"record_type":   RecordTypeMessage,
		"message_index": r.Index,
		"role":          string(r.Role),
		"timestamp":     r.Timestamp,
		"content_path":  r.ContentPath,
		"file_path":     nil,
		"file_size":     nil,
	}
}

type fileRecord struct {
	Index     int
	Role      internal.Role
	Timestamp string
	FilePath  string
	Path      string // attachment path relative to files/
	FileSize  int64  // advisory; -1 when absent
}

func (r fileRecord) messageIndex() int { return r.Index }

func (r fileRecord) toRecord() bejson.Record {
	return bejson.Record{
		"record_type":   RecordTypeFile,
		"message_index": r.Index,
		"role":          string(r.Role),
		"timestamp":     r.Timestamp,
		"content_path":  nil,
		"file_path":     r.FilePath,
		"file_size":     r.FileSize,
	}
}

// parseManifestRecord reads the discriminator first and then the fields
// the chosen variant requires
func parseManifestRecord(rec bejson.Record, pos int) (manifestRecord, error) {
	kind, _ := rec.String("record_type")
	where := fmt.Sprintf("%s Values[%d]", ManifestEntry, pos)

	index, err := rec.Int("message_index")
	if err != nil && (kind == RecordTypeMessage || kind == RecordTypeFile) {
		return nil, schemaViolation(where, err)
	}
	role, _ := rec.String("role")
	timestamp, _ := rec.String("timestamp")

	switch kind {
	case RecordTypeMessage:
		contentPath, ok := rec.String("content_path")
		if !ok || contentPath == "" {
			return nil, schemaViolation(where, fmt.Errorf("Message record has no content_path"))
		}
		contentPath = normalizeEntryName(contentPath)
		if contentPath != ContentPath(int(index)) {
			return nil, schemaViolation(where, fmt.Errorf("content_path %q does not match %s", contentPath, ContentPath(int(index))))
		}
		return messageRecord{
			Index:       int(index),
			Role:        internal.Role(role),
			Timestamp:   timestamp,
			ContentPath: contentPath,
		}, nil
	case RecordTypeFile:
		filePath, ok := rec.String("file_path")
		if !ok || filePath == "" {
			return nil, schemaViolation(where, fmt.Errorf("File record has no file_path"))
		}
		filePath = normalizeEntryName(filePath)
		p, err := attachmentPathFromEntry(int(index), filePath)
		if err != nil {
			return nil, schemaViolation(where, err)
		}
		size, err := rec.Int("file_size")
		if err != nil {
			size = -1
		}
		return fileRecord{
			Index:     int(index),
			Role:      internal.Role(role),
			Timestamp: timestamp,
			FilePath:  filePath,
			Path:      p,
			FileSize:  size,
		}, nil
	default:
		return nil, schemaViolation(where, fmt.Errorf("unknown record_type %q", kind))
	}
}

func schemaViolation(entry string, err error) error {
	return &internal.ArchiveError{Kind: internal.ErrSchemaViolation, Entry: entry, Err: err}
}
