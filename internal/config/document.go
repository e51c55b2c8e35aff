package config

import (
	"fmt"
	"os"
	"strings"

	"querygguf/internal/common/fsutil"
)

// LineKind classifies one physical line of the configuration document.
type LineKind int

const (
	LineBlank LineKind = iota
	LineComment
	LineAssignment
	// LineOther is any non-blank, non-comment line without '='.
	LineOther
)

// Line is one physical line. Key and Value are set for assignments only;
// Value is already cleaned of one layer of quotes and surrounding space.
type Line struct {
	Raw   string
	Kind  LineKind
	Key   string
	Value string
}

// Document is the configuration file as an ordered list of lines.
// Rewrites preserve every line they do not explicitly remove.
type Document struct {
	lines []Line
}

// ParseLine tokenizes a single line.
func ParseLine(raw string) Line {
	l := Line{Raw: raw}
	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		l.Kind = LineBlank
		return l
	case strings.HasPrefix(trimmed, "#"):
		l.Kind = LineComment
		return l
	}
	key, value, ok := strings.Cut(raw, "=")
	if !ok {
		l.Kind = LineOther
		return l
	}
	l.Kind = LineAssignment
	l.Key = strings.TrimSpace(key)
	l.Value = cleanValue(value)
	return l
}

// cleanValue strips surrounding whitespace, one layer of double quotes, then
// whitespace again.
func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, `"`)
	v = strings.TrimSuffix(v, `"`)
	return strings.TrimSpace(v)
}

// ParseDocument splits text into lines. A trailing newline does not produce
// an extra blank line.
func ParseDocument(text string) *Document {
	d := &Document{}
	if text == "" {
		return d
	}
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}
	d.lines = make([]Line, 0, len(raw))
	for _, r := range raw {
		d.lines = append(d.lines, ParseLine(r))
	}
	return d
}

// ReadDocument loads the file at path.
func ReadDocument(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseDocument(string(b)), nil
}

// Lines returns a copy of the document lines.
func (d *Document) Lines() []Line { return append([]Line(nil), d.lines...) }

// Len returns the number of physical lines.
func (d *Document) Len() int { return len(d.lines) }

// CountRawPrefix counts lines whose raw text starts with prefix, without
// trimming and regardless of whether they parse.
func (d *Document) CountRawPrefix(prefix string) int {
	n := 0
	for _, l := range d.lines {
		if strings.HasPrefix(l.Raw, prefix) {
			n++
		}
	}
	return n
}

// RemoveKey drops every assignment whose key equals key and reports how many
// lines were removed.
func (d *Document) RemoveKey(key string) int {
	kept := d.lines[:0]
	removed := 0
	for _, l := range d.lines {
		if l.Kind == LineAssignment && l.Key == key {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	d.lines = kept
	return removed
}

// Append adds raw lines at the end of the document.
func (d *Document) Append(raw ...string) {
	for _, r := range raw {
		d.lines = append(d.lines, ParseLine(r))
	}
}

// AppendAssignment adds `key = "value"` for strings or `key = value` otherwise.
// Strings are written verbatim between quotes; the format has no escapes.
func (d *Document) AppendAssignment(key string, value any) {
	switch v := value.(type) {
	case string:
		d.Append(fmt.Sprintf(`%s = "%s"`, key, v))
	default:
		d.Append(fmt.Sprintf("%s = %v", key, v))
	}
}

// String renders the document with a trailing newline.
func (d *Document) String() string {
	if len(d.lines) == 0 {
		return ""
	}
	var b strings.Builder
	for _, l := range d.lines {
		b.WriteString(l.Raw)
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteFile rewrites the whole file at path.
func (d *Document) WriteFile(path string) error {
	if err := fsutil.WriteFileAtomic(path, []byte(d.String()), 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
