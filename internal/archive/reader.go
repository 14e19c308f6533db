package archive

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/klauspost/compress/zip"

	"github.com/iksnae/session-archive/internal"
	"github.com/iksnae/session-archive/internal/bejson"
)

// Read reconstructs a session from an archive. Any failure aborts the
// whole read and is reported as an *internal.ArchiveError carrying its
// kind; no partial session is returned.
func Read(r io.ReaderAt, size int64) (*internal.Session, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &internal.ArchiveError{Kind: internal.ErrMalformedDocument, Entry: "archive", Err: err}
	}
	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries[normalizeEntryName(f.Name)] = f
	}
	return readEntries(entries)
}

// ReadBytes reconstructs a session from archive bytes
func ReadBytes(data []byte) (*internal.Session, error) {
	return Read(bytes.NewReader(data), int64(len(data)))
}

// ReadFile reconstructs a session from an archive on disk
func ReadFile(path string) (*internal.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &internal.StorageError{Path: path, Op: "read", Err: err}
	}
	return ReadBytes(data)
}

func readEntries(entries map[string]*zip.File) (*internal.Session, error) {
	settings, err := readConfig(entries)
	if err != nil {
		return nil, err
	}

	manifest, err := readDocument(entries, ManifestEntry, internal.ErrMissingManifest)
	if err != nil {
		return nil, err
	}
	records := make([]manifestRecord, 0, len(manifest.Values))
	for i, rec := range manifest.Values {
		parsed, err := parseManifestRecord(rec, i)
		if err != nil {
			return nil, err
		}
		records = append(records, parsed)
	}

	messages, err := materialize(entries, records)
	if err != nil {
		return nil, err
	}

	return &internal.Session{
		ID:       manifest.ParentHierarchy,
		Settings: settings,
		Messages: messages,
	}, nil
}

func readConfig(entries map[string]*zip.File) (internal.Settings, error) {
	doc, err := readDocument(entries, ConfigEntry, internal.ErrMissingConfig)
	if err != nil {
		return nil, err
	}

	settings := make(internal.Settings, len(doc.Values))
	for i, rec := range doc.Values {
		where := fmt.Sprintf("%s Values[%d]", ConfigEntry, i)
		key, ok := rec.String("setting_key")
		if !ok {
			return nil, schemaViolation(where, errors.New("setting_key is not a string"))
		}
		raw, ok := rec.String("setting_value")
		if !ok {
			return nil, schemaViolation(where, fmt.Errorf("setting_value of %s is not a string", key))
		}
		value, err := internal.DecodeSettingValue(raw)
		if err != nil {
			return nil, &internal.ArchiveError{Kind: internal.ErrMalformedDocument, Entry: where, Err: err}
		}
		settings[key] = value
	}
	return settings, nil
}

// materialize turns manifest rows into the ordered message list: collect
// message slots by index, check the indices are exactly 0..n-1, then
// build messages and attach files in manifest order
func materialize(entries map[string]*zip.File, records []manifestRecord) ([]internal.Message, error) {
	slots := make(map[int]messageRecord)
	var files []fileRecord
	for _, rec := range records {
		switch r := rec.(type) {
		case messageRecord:
			if _, taken := slots[r.Index]; taken {
				return nil, &internal.ArchiveError{
					Kind:  internal.ErrIndexConflict,
					Entry: ManifestEntry,
					Err:   fmt.Errorf("message_index %d is claimed by more than one Message record", r.Index),
				}
			}
			slots[r.Index] = r
		case fileRecord:
			files = append(files, r)
		}
	}

	indices := make([]int, 0, len(slots))
	for idx := range slots {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for want, got := range indices {
		if got != want {
			return nil, &internal.ArchiveError{
				Kind:  internal.ErrSparseManifest,
				Entry: ManifestEntry,
				Err:   fmt.Errorf("message indices %v are not contiguous from 0 (expected %d, found %d)", indices, want, got),
			}
		}
	}

	messages := make([]internal.Message, len(indices))
	for i := range messages {
		r := slots[i]
		content, err := readPayload(entries, r.ContentPath)
		if err != nil {
			return nil, err
		}
		messages[i] = internal.Message{
			ID:        r.Timestamp + strconv.Itoa(i),
			Role:      r.Role,
			Content:   string(content),
			Timestamp: r.Timestamp,
		}
	}

	for _, r := range files {
		if r.Index < 0 || r.Index >= len(messages) {
			return nil, &internal.ArchiveError{
				Kind:  internal.ErrOrphanFileRecord,
				Entry: r.FilePath,
				Err:   fmt.Errorf("no Message record with message_index %d", r.Index),
			}
		}
		data, err := readPayload(entries, r.FilePath)
		if err != nil {
			return nil, err
		}
		if r.FileSize >= 0 && r.FileSize != int64(len(data)) {
			internal.LogDebug("Manifest file_size %d for %s disagrees with payload length %d; using payload length",
				r.FileSize, r.FilePath, len(data))
		}
		messages[r.Index].Files = append(messages[r.Index].Files, internal.Attachment{
			Path:     r.Path,
			Content:  base64.StdEncoding.EncodeToString(data),
			Size:     int64(len(data)),
			MimeType: internal.MimeTypeFromPath(r.Path),
		})
	}

	return messages, nil
}

func readDocument(entries map[string]*zip.File, name string, missing error) (*bejson.Document, error) {
	f, ok := entries[name]
	if !ok {
		return nil, &internal.ArchiveError{Kind: missing, Entry: name}
	}
	data, err := readZipFile(f)
	if err != nil {
		return nil, err
	}
	doc, err := bejson.Decode(data)
	if err != nil {
		var docErr *internal.DocumentError
		if errors.As(err, &docErr) {
			return nil, &internal.ArchiveError{Kind: docErr.Kind, Entry: name, Err: err}
		}
		return nil, &internal.ArchiveError{Kind: internal.ErrMalformedDocument, Entry: name, Err: err}
	}
	return doc, nil
}

func readPayload(entries map[string]*zip.File, name string) ([]byte, error) {
	f, ok := entries[name]
	if !ok {
		return nil, &internal.ArchiveError{Kind: internal.ErrMissingPayload, Entry: name}
	}
	return readZipFile(f)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, &internal.ArchiveError{Kind: internal.ErrMalformedDocument, Entry: f.Name, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &internal.ArchiveError{Kind: internal.ErrMalformedDocument, Entry: f.Name, Err: err}
	}
	return data, nil
}
