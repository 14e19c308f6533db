package internal

import (
	"path"
	"strings"
)

// MimeTypeUnknown is the label for paths whose extension is not recognized
const MimeTypeUnknown = "application/octet-stream"

var mimeTypesByExtension = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
	"html": "text/html",
	"css":  "text/css",
	"js":   "application/javascript",
	"ts":   "application/typescript",
	"tsx":  "application/typescript",
	"json": "application/json",
	"txt":  "text/plain",
	"md":   "text/markdown",
}

// MimeTypeFromPath maps the extension of p to a content-type label.
// Unknown or missing extensions map to MimeTypeUnknown.
func MimeTypeFromPath(p string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	if label, ok := mimeTypesByExtension[ext]; ok {
		return label
	}
	return MimeTypeUnknown
}

// IsImageMimeType reports whether label names an image type
func IsImageMimeType(label string) bool {
	return strings.HasPrefix(label, "image/")
}
