package internal

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// Attachment is a named binary payload held as base64 text.
// Size is always the decoded byte length of Content.
type Attachment struct {
	Path     string `json:"path" yaml:"path"`
	Content  string `json:"content" yaml:"content"`
	Size     int64  `json:"size" yaml:"size"`
	MimeType string `json:"mimeType" yaml:"mime_type"`
}

// NewAttachment builds an attachment from raw bytes, deriving the
// content type from path
func NewAttachment(path string, data []byte) Attachment {
	return Attachment{
		Path:     path,
		Content:  base64.StdEncoding.EncodeToString(data),
		Size:     int64(len(data)),
		MimeType: MimeTypeFromPath(path),
	}
}

// Bytes decodes the attachment content
func (a Attachment) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(a.Content)
	if err != nil {
		return nil, fmt.Errorf("attachment %s: invalid base64 content: %w", a.Path, err)
	}
	return data, nil
}

// WithContent returns a copy carrying data as its new content. The
// content type label is kept as is.
func (a Attachment) WithContent(data []byte) Attachment {
	a.Content = base64.StdEncoding.EncodeToString(data)
	a.Size = int64(len(data))
	return a
}

// IsImage reports whether the attachment holds an image
func (a Attachment) IsImage() bool {
	return IsImageMimeType(a.MimeType)
}

// ProjectFile is an attachment with a stable identity that survives
// edits. Version starts at 1 and grows by one per content change.
type ProjectFile struct {
	Attachment `yaml:",inline"`
	ID      string `json:"id" yaml:"id"`
	Version int    `json:"version" yaml:"version"`
}

// NewProjectFile creates version 1 of a project file
func NewProjectFile(path string, data []byte) ProjectFile {
	return ProjectFile{
		Attachment: NewAttachment(path, data),
		ID:         uuid.NewString(),
		Version:    1,
	}
}

// Digest returns the hex BLAKE3 digest of the decoded content
func (pf *ProjectFile) Digest() (string, error) {
	data, err := pf.Bytes()
	if err != nil {
		return "", err
	}
	return contentDigest(data), nil
}

// Update replaces the content and bumps the version. Content identical
// to the current payload is not a mutation and leaves the version alone.
func (pf *ProjectFile) Update(data []byte) (bool, error) {
	current, err := pf.Digest()
	if err != nil {
		return false, err
	}
	if current == contentDigest(data) {
		return false, nil
	}
	pf.Attachment = pf.Attachment.WithContent(data)
	pf.Version++
	return true, nil
}

func contentDigest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
