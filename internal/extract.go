package internal

import (
	"iter"
	"regexp"
	"slices"
	"strings"
)

// codeFencePattern matches a fenced block whose opening line names a
// language and, optionally, a file path: ```ts:src/a.ts or ```go main.go
var codeFencePattern = regexp.MustCompile("```(\\w+)(?:[: \\t]([\\w./-]+))?[ \\t]*\\n((?s:.*?))```")

// CodeFile is a file carried inside a fenced code block
type CodeFile struct {
	Language string
	Path     string
	Content  string
}

// Attachment converts the extracted file into an attachment
func (f CodeFile) Attachment() Attachment {
	return NewAttachment(f.Path, []byte(f.Content))
}

// ExtractCodeFiles yields the fenced blocks of text that declare a file
// path, in order of appearance. Blocks without a path are skipped. The
// sequence can be ranged over any number of times.
func ExtractCodeFiles(text string) iter.Seq[CodeFile] {
	return func(yield func(CodeFile) bool) {
		offset := 0
		for offset < len(text) {
			loc := codeFencePattern.FindStringSubmatchIndex(text[offset:])
			if loc == nil {
				return
			}
			start := offset
			offset += loc[1]

			if loc[4] < 0 {
				continue
			}
			path := strings.TrimSpace(text[start+loc[4] : start+loc[5]])
			if path == "" {
				continue
			}
			content := strings.TrimSuffix(text[start+loc[6]:start+loc[7]], "\n")
			file := CodeFile{
				Language: text[start+loc[2] : start+loc[3]],
				Path:     path,
				Content:  strings.TrimSpace(content),
			}
			if !yield(file) {
				return
			}
		}
	}
}

// CollectCodeFiles returns every path-bearing code block in text
func CollectCodeFiles(text string) []CodeFile {
	return slices.Collect(ExtractCodeFiles(text))
}

// ExtractAttachments converts every path-bearing code block into an attachment
func ExtractAttachments(text string) []Attachment {
	var files []Attachment
	for f := range ExtractCodeFiles(text) {
		files = append(files, f.Attachment())
	}
	return files
}

// StripFences removes code fence markers from text
func StripFences(text string) string {
	return strings.ReplaceAll(text, "```", "")
}
