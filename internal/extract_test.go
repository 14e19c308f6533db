package internal

import (
	"reflect"
	"testing"
)

func TestExtractCodeFiles(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []CodeFile
	}{
		{
			name: "colon separator",
			text: "```ts:src/a.ts\nconsole.log(1)\n```",
			want: []CodeFile{{Language: "ts", Path: "src/a.ts", Content: "console.log(1)"}},
		},
		{
			name: "space separator",
			text: "```go main.go\npackage main\n```",
			want: []CodeFile{{Language: "go", Path: "main.go", Content: "package main"}},
		},
		{
			name: "no path is skipped",
			text: "```python\nprint(1)\n```",
			want: nil,
		},
		{
			name: "surrounding prose and several blocks",
			text: "First:\n```ts:a.ts\nA\n```\nthen\n```sh\nls\n```\nand\n```css:styles/main.css\nbody {}\n```\n",
			want: []CodeFile{
				{Language: "ts", Path: "a.ts", Content: "A"},
				{Language: "css", Path: "styles/main.css", Content: "body {}"},
			},
		},
		{
			name: "content is trimmed",
			text: "```txt:notes.txt\n\n  hi  \n\n```",
			want: []CodeFile{{Language: "txt", Path: "notes.txt", Content: "hi"}},
		},
		{
			name: "trailing spaces after path",
			text: "```js:x.js   \nlet x\n```",
			want: []CodeFile{{Language: "js", Path: "x.js", Content: "let x"}},
		},
		{
			name: "unclosed fence",
			text: "```ts:a.ts\nno end",
			want: nil,
		},
		{
			name: "no fences",
			text: "just text",
			want: nil,
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CollectCodeFiles(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CollectCodeFiles() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestExtractCodeFiles_Restartable(t *testing.T) {
	text := "```ts:a.ts\nA\n```\n```ts:b.ts\nB\n```"
	seq := ExtractCodeFiles(text)

	var first, second []string
	for f := range seq {
		first = append(first, f.Path)
	}
	for f := range seq {
		second = append(second, f.Path)
	}
	if !reflect.DeepEqual(first, []string{"a.ts", "b.ts"}) || !reflect.DeepEqual(first, second) {
		t.Errorf("iterations differ: %v vs %v", first, second)
	}
}

func TestExtractCodeFiles_EarlyStop(t *testing.T) {
	text := "```ts:a.ts\nA\n```\n```ts:b.ts\nB\n```"
	count := 0
	for range ExtractCodeFiles(text) {
		count++
		break
	}
	if count != 1 {
		t.Errorf("loop body ran %d times, want 1", count)
	}
}

func TestExtractAttachments(t *testing.T) {
	files := ExtractAttachments("```ts:src/a.ts\nconsole.log(1)\n```")
	if len(files) != 1 {
		t.Fatalf("got %d attachments, want 1", len(files))
	}
	f := files[0]
	if f.Path != "src/a.ts" || f.MimeType != "application/typescript" || f.Size != 14 {
		t.Errorf("unexpected attachment %+v", f)
	}
	data, err := f.Bytes()
	if err != nil || string(data) != "console.log(1)" {
		t.Errorf("Bytes() = %q, %v", data, err)
	}

	if got := ExtractAttachments("no code"); got != nil {
		t.Errorf("ExtractAttachments() without blocks = %v, want nil", got)
	}
}

func TestStripFences(t *testing.T) {
	if got := StripFences("a ```go\nx\n``` b"); got != "a go\nx\n b" {
		t.Errorf("StripFences() = %q", got)
	}
}
