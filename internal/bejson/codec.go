// Package bejson encodes and decodes BEJSON tabular documents: a
// self-describing envelope holding an ordered field list and a sequence
// of homogeneous records keyed by those fields.
package bejson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/iksnae/session-archive/internal"
)

const (
	// FormatName is the constant Format label of every document
	FormatName = "BEJson"
	// FormatVersion is the wire version this package writes
	FormatVersion = "1-0-4"
)

// Descriptive field types. The decoder does not enforce them.
const (
	TypeString  = "string"
	TypeInteger = "integer"
)

// Field is one column of the schema
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Record maps declared field names to values. Numbers decoded from the
// wire are json.Number.
type Record map[string]any

// Document is a decoded or to-be-encoded BEJSON document
type Document struct {
	Format          string
	FormatVersion   string
	FormatCreator   string
	ParentHierarchy string
	RecordsType     []string
	Fields          []Field
	Values          []Record
}

// New creates an empty document of the current format version
func New(creator, parent string, recordsType []string, fields []Field) *Document {
	return &Document{
		Format:          FormatName,
		FormatVersion:   FormatVersion,
		FormatCreator:   creator,
		ParentHierarchy: parent,
		RecordsType:     recordsType,
		Fields:          fields,
	}
}

// Append adds a record to the end of the document
func (d *Document) Append(rec Record) {
	d.Values = append(d.Values, rec)
}

// FieldNames returns the schema field names in order
func (d *Document) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// Encode serializes d as indented JSON. Schema order and record order
// are kept as given and every record's keys follow the schema order.
func Encode(d *Document) ([]byte, error) {
	if len(d.Fields) == 0 {
		return nil, schemaViolation("Fields", errors.New("no fields declared"))
	}
	declared := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f.Name == "" {
			return nil, schemaViolation("Fields", errors.New("field with empty name"))
		}
		if declared[f.Name] {
			return nil, schemaViolation("Fields", fmt.Errorf("duplicate field %q", f.Name))
		}
		declared[f.Name] = true
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	members := []struct {
		key   string
		value any
	}{
		{"Format", d.Format},
		{"Format_Version", d.FormatVersion},
		{"Format_Creator", d.FormatCreator},
		{"Parent_Hierarchy", d.ParentHierarchy},
		{"Records_Type", nonNil(d.RecordsType)},
		{"Fields", d.Fields},
	}
	for _, m := range members {
		if err := writeMember(&buf, m.key, m.value); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}

	buf.WriteString(`"Values":[`)
	for i, rec := range d.Values {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeRecord(&buf, d.Fields, declared, rec, i); err != nil {
			return nil, err
		}
	}
	buf.WriteString("]}")

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, &internal.DocumentError{Kind: internal.ErrMalformedDocument, Err: err}
	}
	return out.Bytes(), nil
}

func writeRecord(buf *bytes.Buffer, fields []Field, declared map[string]bool, rec Record, pos int) error {
	for name := range rec {
		if !declared[name] {
			return schemaViolation(fmt.Sprintf("Values[%d].%s", pos, name), errors.New("undeclared field"))
		}
	}
	buf.WriteByte('{')
	for i, f := range fields {
		v, ok := rec[f.Name]
		if !ok {
			return schemaViolation(fmt.Sprintf("Values[%d].%s", pos, f.Name), errors.New("missing declared field"))
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(buf, f.Name, v); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := marshal(key)
	if err != nil {
		return err
	}
	v, err := marshal(value)
	if err != nil {
		return &internal.DocumentError{Kind: internal.ErrMalformedDocument, Field: key, Err: err}
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// marshal encodes v without HTML escaping so message text stays readable
func marshal(v any) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(b.Bytes(), []byte("\n")), nil
}

// Decode parses a BEJSON document. It fails with ErrMalformedDocument
// when data is not a JSON object and with ErrSchemaViolation when the
// field list is absent or a record lacks a declared field.
func Decode(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &internal.DocumentError{Kind: internal.ErrMalformedDocument, Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &internal.DocumentError{Kind: internal.ErrMalformedDocument, Err: errors.New("trailing data after document")}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &internal.DocumentError{Kind: internal.ErrMalformedDocument, Err: errors.New("document is not a JSON object")}
	}
	if err := envelope.Validate(raw); err != nil {
		return nil, schemaViolation("", err)
	}

	doc := &Document{
		Format:          stringMember(obj, "Format"),
		FormatVersion:   stringMember(obj, "Format_Version"),
		FormatCreator:   stringMember(obj, "Format_Creator"),
		ParentHierarchy: stringMember(obj, "Parent_Hierarchy"),
	}
	if types, ok := obj["Records_Type"].([]any); ok {
		for _, t := range types {
			doc.RecordsType = append(doc.RecordsType, t.(string))
		}
	}

	seen := make(map[string]bool)
	for _, item := range obj["Fields"].([]any) {
		m := item.(map[string]any)
		f := Field{Name: m["name"].(string)}
		f.Type, _ = m["type"].(string)
		if seen[f.Name] {
			return nil, schemaViolation("Fields", fmt.Errorf("duplicate field %q", f.Name))
		}
		seen[f.Name] = true
		doc.Fields = append(doc.Fields, f)
	}
	if len(doc.Fields) == 0 {
		return nil, schemaViolation("Fields", errors.New("no fields declared"))
	}

	values, _ := obj["Values"].([]any)
	doc.Values = make([]Record, 0, len(values))
	for i, item := range values {
		rec := Record(item.(map[string]any))
		for _, f := range doc.Fields {
			if _, ok := rec[f.Name]; !ok {
				return nil, schemaViolation(fmt.Sprintf("Values[%d].%s", i, f.Name), errors.New("missing declared field"))
			}
		}
		doc.Values = append(doc.Values, rec)
	}

	return doc, nil
}

// String returns a string value, reporting false for null or non-strings
func (r Record) String(name string) (string, bool) {
	s, ok := r[name].(string)
	return s, ok
}

// Int returns an integer value
func (r Record) Int(name string) (int64, error) {
	switch v := r[name].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("field %s: %q is not an integer", name, v)
		}
		return n, nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("field %s: %v is not an integer", name, v)
		}
		return int64(v), nil
	case nil:
		return 0, fmt.Errorf("field %s is null", name)
	default:
		return 0, fmt.Errorf("field %s: unexpected %T", name, v)
	}
}

func stringMember(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func schemaViolation(field string, err error) error {
	return &internal.DocumentError{Kind: internal.ErrSchemaViolation, Field: field, Err: err}
}
