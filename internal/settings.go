package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Settings is a flat key/value configuration record. The persistence
// layer treats keys opaquely. Values are JSON-compatible: integers are
// held as int64 and other numbers as float64.
type Settings map[string]any

// DefaultSettings returns the settings a fresh session starts with
func DefaultSettings() Settings {
	return Settings{
		"model":              "gemini-2.5-flash",
		"systemInstruction":  "You are a helpful and expert software development assistant. When asked to generate code, you will provide the file contents in a markdown block, and specify the file path. For example: ```typescript:src/utils.ts\n// code here\n```",
		"temperature":        0.7,
		"topK":               int64(40),
		"topP":               0.95,
		"prependMessage":     "",
		"appendMessage":      "",
		"usePrepend":         false,
		"useAppend":          false,
		"parseCodeBlocks":    true,
		"conversationMode":   true,
		"persistAttachments": false,
	}
}

// Keys returns the setting names in sorted order
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns a string setting, or "" when absent or not a string
func (s Settings) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// Bool returns a boolean setting, or false when absent or not a bool
func (s Settings) Bool(key string) bool {
	v, _ := s[key].(bool)
	return v
}

// Clone returns an independent copy of s
func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge overlays other onto s and returns s
func (s Settings) Merge(other Settings) Settings {
	for k, v := range other {
		s[k] = v
	}
	return s
}

// WrapPrompt applies the prepend/append toggles to a user prompt
func (s Settings) WrapPrompt(prompt string) string {
	var b strings.Builder
	if s.Bool("usePrepend") {
		b.WriteString(s.String("prependMessage"))
		b.WriteString("\n")
	}
	b.WriteString(prompt)
	if s.Bool("useAppend") {
		b.WriteString("\n")
		b.WriteString(s.String("appendMessage"))
	}
	return b.String()
}

// EncodeSettingValue serializes a setting value as a JSON scalar.
// Whole floats keep a fraction so they decode as float64, not int64.
func EncodeSettingValue(v any) (string, error) {
	data, err := json.Marshal(keepFloats(v))
	if err != nil {
		return "", fmt.Errorf("encode setting value: %w", err)
	}
	return string(data), nil
}

// MarshalJSON writes the settings with whole floats kept as floats
func (s Settings) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return json.Marshal(keepFloats(map[string]any(s)))
}

// jsonFloat is a float64 that always serializes with a fraction or exponent
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return json.Marshal(v)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return []byte(s), nil
}

func keepFloats(v any) any {
	switch t := v.(type) {
	case float64:
		return jsonFloat(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = keepFloats(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = keepFloats(item)
		}
		return out
	case Settings:
		return keepFloats(map[string]any(t))
	default:
		return v
	}
}

// DecodeSettingValue parses a JSON-serialized setting value
func DecodeSettingValue(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode setting value %q: %w", raw, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode setting value %q: trailing data", raw)
	}
	return normalizeValue(v), nil
}

// LoadSettingsFile reads a settings file and merges it over the
// defaults. The format follows the extension (.toml, .json, .jsonc,
// .yaml, .yml); anything else is auto-detected.
func LoadSettingsFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		raw, err = decodeTOML(data)
	case ".json", ".jsonc":
		raw, err = decodeJSONC(data)
	case ".yaml", ".yml":
		raw, err = decodeYAML(data)
	default:
		raw, err = autoDetectSettings(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}

	loaded := make(Settings, len(raw))
	for k, v := range raw {
		loaded[k] = normalizeValue(v)
	}
	return DefaultSettings().Merge(loaded), nil
}

func decodeTOML(data []byte) (map[string]any, error) {
	var m map[string]any
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, fmt.Errorf("decode TOML: %w", err)
	}
	return m, nil
}

func decodeJSONC(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	return m, nil
}

func decodeYAML(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode YAML: %w", err)
	}
	return m, nil
}

func autoDetectSettings(data []byte) (map[string]any, error) {
	if m, err := decodeTOML(data); err == nil {
		return m, nil
	}
	if m, err := decodeJSONC(data); err == nil {
		return m, nil
	}
	if m, err := decodeYAML(data); err == nil {
		return m, nil
	}
	return nil, fmt.Errorf("unrecognized settings format")
}

// normalizeValue folds decoder-specific value types into the settings
// value domain: int64, float64, string, bool, nil, []any, map[string]any.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		s := t.String()
		if !strings.ContainsAny(s, ".eE") {
			if n, err := t.Int64(); err == nil {
				return n
			}
		}
		f, _ := t.Float64()
		return f
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint:
		return normalizeUint(uint64(t))
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return normalizeUint(t)
	case float32:
		return float64(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalizeValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

// normalizeUint keeps unsigned values that overflow int64 as float64
func normalizeUint(n uint64) any {
	if n > math.MaxInt64 {
		return float64(n)
	}
	return int64(n)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
