package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Entry is one name/range pair of a dependency section.
type Entry struct {
	Name    string
	Version string
}

// Document is a parsed package.json that remembers key order.
// Values are kept as raw JSON so unknown fields survive a round-trip
// byte-for-byte (modulo indentation).
type Document struct {
	keys   []string
	values map[string]json.RawMessage
}

// New returns an empty document.
func New() *Document {
	return &Document{values: make(map[string]json.RawMessage)}
}

// Parse decodes a JSON object, preserving key order.
func Parse(data []byte) (*Document, error) {
	doc := New()
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		doc.Set(key, raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Keys returns the top-level keys in document order.
func (d *Document) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Get returns the raw value stored under key.
func (d *Document) Get(key string) (json.RawMessage, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Set stores raw under key. Existing keys keep their position; new keys
// are appended.
func (d *Document) Set(key string, raw json.RawMessage) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = append(json.RawMessage(nil), raw...)
}

// Name returns the "name" field, or "" when absent or not a string.
func (d *Document) Name() string {
	raw, ok := d.values["name"]
	if !ok {
		return ""
	}
	var name string
	if json.Unmarshal(raw, &name) != nil {
		return ""
	}
	return name
}

// Entries returns the string-valued members of the object under key in
// document order. Missing keys, non-object values and non-string members
// are skipped.
func (d *Document) Entries(key string) []Entry {
	raw, ok := d.values[key]
	if !ok {
		return nil
	}
	var entries []Entry
	_ = decodeObject(raw, func(name string, v json.RawMessage) error {
		var version string
		if json.Unmarshal(v, &version) == nil {
			entries = append(entries, Entry{Name: name, Version: version})
		}
		return nil
	})
	return entries
}

// SetEntries replaces the object under key with entries, in the given order.
func (d *Document) SetEntries(key string, entries []Entry) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, e.Name); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeString(&buf, e.Version); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	d.Set(key, buf.Bytes())
	return nil
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	c := New()
	for _, k := range d.keys {
		c.Set(k, d.values[k])
	}
	return c
}

// Marshal serializes the document with the given indent unit. HTML
// characters are not escaped.
func (d *Document) Marshal(indent string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		buf.Write(d.values[k])
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// decodeObject walks the members of a JSON object in order.
func decodeObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object, got %s", describe(tok))
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after JSON object")
	}
	return nil
}

func describe(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		if v == '[' {
			return "an array"
		}
		return string(v)
	case string:
		return "a string"
	case float64, json.Number:
		return "a number"
	case bool:
		return "a boolean"
	case nil:
		return "null"
	}
	return strings.TrimSpace(fmt.Sprint(tok))
}
