// Package jsondoc builds JSON objects whose keys keep insertion order.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Builder accumulates key/value pairs of one JSON object.
// Adding an existing key replaces its value in place.
type Builder struct {
	keys   []string
	values map[string]interface{}
}

// New creates an empty builder.
func New() *Builder {
	return &Builder{values: make(map[string]interface{})}
}

// Add sets key to value. Nested *Builder values are encoded as objects.
func (b *Builder) Add(key string, value interface{}) {
	if _, ok := b.values[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.values[key] = value
}

// AddNull sets key to JSON null.
func (b *Builder) AddNull(key string) {
	b.Add(key, nil)
}

// Get returns the value stored under key.
func (b *Builder) Get(key string) (interface{}, bool) {
	v, ok := b.values[key]
	return v, ok
}

// Has reports whether key was added.
func (b *Builder) Has(key string) bool {
	_, ok := b.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (b *Builder) Keys() []string {
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

// Len returns the number of keys.
func (b *Builder) Len() int {
	return len(b.keys)
}

// MarshalJSON encodes the object with keys in insertion order.
func (b *Builder) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range b.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := Marshal(b.values[k])
		if err != nil {
			return nil, fmt.Errorf("jsondoc: failed to encode %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Marshal encodes v like json.Marshal but leaves <, > and & unescaped.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// Build returns the encoded object.
func (b *Builder) Build() ([]byte, error) {
	return b.MarshalJSON()
}

// String returns the encoded object, or an empty object if encoding fails.
func (b *Builder) String() string {
	data, err := b.MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(data)
}
