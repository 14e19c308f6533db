// Package archive writes sessions into self-contained zip archives and
// reconstructs sessions from them.
//
// An archive has a fixed layout:
//
//	config.bejson
//	manifest.bejson
//	messages/message_<i>/content.md
//	messages/message_<i>/files/<attachment path>
//
// where <i> is the zero-based position of the message in the session.
package archive

import (
	"fmt"
	"path"
	"strings"
)

// Top-level entries of every archive
const (
	ConfigEntry   = "config.bejson"
	ManifestEntry = "manifest.bejson"
)

// Creator labels written into the two tables
const (
	ConfigCreator   = "Gemini Toolbox"
	ManifestCreator = "Gemini Toolbox Session Exporter"
)

// ContentPath is the canonical entry holding the text of message i
func ContentPath(i int) string {
	return fmt.Sprintf("messages/message_%d/content.md", i)
}

// FilePath is the canonical entry holding attachment p of message i
func FilePath(i int, p string) string {
	return fmt.Sprintf("messages/message_%d/files/%s", i, p)
}

// FileName is the conventional archive file name for a session
func FileName(sessionID string) string {
	return fmt.Sprintf("session_%s.zip", sessionID)
}

// attachmentPathFromEntry recovers the attachment path from the
// file_path of a File record for message i. The entry must sit under
// that message's files/ directory.
func attachmentPathFromEntry(i int, entry string) (string, error) {
	p, ok := strings.CutPrefix(entry, FilePath(i, ""))
	if !ok {
		return "", fmt.Errorf("file_path %q is not under %s", entry, FilePath(i, ""))
	}
	if err := validAttachmentPath(p); err != nil {
		return "", err
	}
	return p, nil
}

// validAttachmentPath reports whether p can be placed under files/
// without escaping it
func validAttachmentPath(p string) error {
	switch {
	case p == "":
		return fmt.Errorf("empty attachment path")
	case strings.HasPrefix(p, "/") || strings.Contains(p, "\\"):
		return fmt.Errorf("attachment path %q must be relative and use forward slashes", p)
	case path.Clean(p) != p || p == "." || p == ".." || strings.HasPrefix(p, "../"):
		return fmt.Errorf("attachment path %q is not a clean relative path", p)
	}
	return nil
}

func normalizeEntryName(name string) string {
	return strings.TrimPrefix(name, "./")
}
