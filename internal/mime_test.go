package internal

import "testing"

func TestMimeTypeFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"logo.png", "image/png"},
		{"photo.JPG", "image/jpeg"},
		{"photo.jpeg", "image/jpeg"},
		{"anim.gif", "image/gif"},
		{"icon.svg", "image/svg+xml"},
		{"pic.webp", "image/webp"},
		{"index.html", "text/html"},
		{"site.css", "text/css"},
		{"app.js", "application/javascript"},
		{"src/a.ts", "application/typescript"},
		{"View.tsx", "application/typescript"},
		{"data.json", "application/json"},
		{"notes.txt", "text/plain"},
		{"README.md", "text/markdown"},
		{"main.go", MimeTypeUnknown},
		{"Makefile", MimeTypeUnknown},
		{"archive.tar.gz", MimeTypeUnknown},
		{"dir.png/file", MimeTypeUnknown},
		{"", MimeTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := MimeTypeFromPath(tt.path); got != tt.want {
				t.Errorf("MimeTypeFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsImageMimeType(t *testing.T) {
	if !IsImageMimeType("image/png") {
		t.Error("image/png should be an image")
	}
	if IsImageMimeType("text/plain") || IsImageMimeType("") {
		t.Error("non-image labels should not be images")
	}
}
