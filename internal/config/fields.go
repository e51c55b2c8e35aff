package config

import (
	"sort"
	"strconv"
	"strings"
)

// IndexedEntry is one `prefix_<N>` assignment.
type IndexedEntry struct {
	Index int
	Key   string
	Value string
}

// Field returns the value of the first assignment whose key equals name
// exactly. Missing keys, empty names and empty values all yield "".
func (d *Document) Field(name string) string {
	if d == nil || name == "" {
		return ""
	}
	for _, l := range d.lines {
		if l.Kind == LineAssignment && l.Key == name {
			return l.Value
		}
	}
	return ""
}

// IndexedEntries returns every non-empty `prefix_<N>` assignment ordered by N.
// Lines with the same N keep their file order.
func (d *Document) IndexedEntries(prefix string) []IndexedEntry {
	if d == nil || prefix == "" {
		return nil
	}
	want := prefix + "_"
	var out []IndexedEntry
	for _, l := range d.lines {
		if l.Kind != LineAssignment || !strings.HasPrefix(l.Key, want) {
			continue
		}
		n, err := strconv.ParseUint(strings.TrimPrefix(l.Key, want), 10, 31)
		if err != nil || l.Value == "" {
			continue
		}
		out = append(out, IndexedEntry{Index: int(n), Key: l.Key, Value: l.Value})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// IndexedFields returns the values of IndexedEntries.
func (d *Document) IndexedFields(prefix string) []string {
	entries := d.IndexedEntries(prefix)
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return out
}

// ReadField reads one scalar from the file at path. Every failure degrades
// to "".
func ReadField(path, name string) string {
	if name == "" {
		return ""
	}
	d, err := ReadDocument(path)
	if err != nil {
		return ""
	}
	return d.Field(name)
}

// ReadIndexedFields reads all `prefix_<N>` values from the file at path,
// ordered by N. Every failure degrades to an empty list.
func ReadIndexedFields(path, prefix string) []string {
	if prefix == "" {
		return nil
	}
	d, err := ReadDocument(path)
	if err != nil {
		return nil
	}
	return d.IndexedFields(prefix)
}
