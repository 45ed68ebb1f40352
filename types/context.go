package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ContextEntry is one key/value pair of a script's context corpus.
type ContextEntry struct {
	Key   string
	Value string
}

// ContextMap is an order-preserving string→string mapping. It marshals to a
// plain JSON object and, unlike a Go map, keeps the object's key order on
// decode so that scripts enumerate context keys in the order the caller sent
// them.
type ContextMap []ContextEntry

// Get returns the value for key and whether it is present.
func (m ContextMap) Get(key string) (string, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Keys returns the keys in insertion order.
func (m ContextMap) Keys() []string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

// MarshalJSON encodes the mapping as a JSON object in insertion order.
func (m ContextMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of string values, preserving the
// document order of its keys. null decodes to an empty mapping.
func (m *ContextMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("context must be a JSON object, got %v", tok)
	}

	var entries ContextMap
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("context key must be a string, got %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		val, ok := valTok.(string)
		if !ok {
			return fmt.Errorf("context value for %q must be a string, got %v", key, valTok)
		}
		entries = append(entries, ContextEntry{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = entries
	return nil
}
