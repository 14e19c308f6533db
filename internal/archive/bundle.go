package archive

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"

	"github.com/iksnae/session-archive/internal"
)

// BundleFiles writes attachments into a flat zip at their own paths.
// When msg is not nil its text is added as message.md and, with code
// fences removed, as message.txt.
func BundleFiles(w io.Writer, files []internal.Attachment, msg *internal.Message) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if err := validAttachmentPath(f.Path); err != nil {
			return &internal.ExportError{Format: "zip", Path: f.Path, Err: err}
		}
		if seen[f.Path] {
			return &internal.ExportError{Format: "zip", Path: f.Path, Err: fmt.Errorf("duplicate path")}
		}
		seen[f.Path] = true

		data, err := f.Bytes()
		if err != nil {
			return &internal.ExportError{Format: "zip", Path: f.Path, Err: err}
		}
		if err := writeZipEntry(zw, "zip", f.Path, data); err != nil {
			return err
		}
	}
	if msg != nil {
		if err := writeZipEntry(zw, "zip", "message.md", []byte(msg.Content)); err != nil {
			return err
		}
		if err := writeZipEntry(zw, "zip", "message.txt", []byte(internal.StripFences(msg.Content))); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return &internal.ExportError{Format: "zip", Err: err}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// Decompress reads every file of a zip into attachments, keeping the
// archive order and full entry paths
func Decompress(r io.ReaderAt, size int64) ([]internal.Attachment, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &internal.ArchiveError{Kind: internal.ErrMalformedDocument, Entry: "archive", Err: err}
	}

	var files []internal.Attachment
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		files = append(files, internal.NewAttachment(normalizeEntryName(f.Name), data))
	}
	return files, nil
}

func writeZipEntry(zw *zip.Writer, format, name string, data []byte) error {
	fw, err := zw.Create(name)
	if err != nil {
		return &internal.ExportError{Format: format, Path: name, Err: err}
	}
	if _, err := fw.Write(data); err != nil {
		return &internal.ExportError{Format: format, Path: name, Err: err}
	}
	return nil
}
