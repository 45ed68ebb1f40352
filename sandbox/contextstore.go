package sandbox

import (
	"fmt"
	"strings"

	"github.com/BaSui01/rlmbox/types"
)

// ContextStore is an immutable, insertion-ordered key→text mapping scoped to
// one execution. Scripts read it through the accessors wired into their
// scope; no mutation capability is exposed.
type ContextStore struct {
	keys   []string
	values map[string]string
}

// NewContextStore builds a store from ordered entries. Duplicate keys keep
// their first position and last value.
func NewContextStore(entries types.ContextMap) *ContextStore {
	s := &ContextStore{values: make(map[string]string, len(entries))}
	for _, e := range entries {
		if _, seen := s.values[e.Key]; !seen {
			s.keys = append(s.keys, e.Key)
		}
		s.values[e.Key] = e.Value
	}
	return s
}

// Len returns the number of entries.
func (s *ContextStore) Len() int {
	return len(s.keys)
}

// Lookup returns the value for key and whether it is present.
func (s *ContextStore) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Get returns the value for key, or a literal not-found sentinel. It never
// fails: scripts branch on the sentinel text instead of handling faults.
func (s *ContextStore) Get(key string) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	return fmt.Sprintf("[Key '%s' not found in context]", key)
}

// Keys returns the keys in insertion order.
func (s *ContextStore) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// Search returns the sub-store of entries whose key or value contains
// pattern as a case-insensitive substring, in insertion order.
func (s *ContextStore) Search(pattern string) *ContextStore {
	pattern = strings.ToLower(pattern)
	sub := &ContextStore{values: make(map[string]string)}
	for _, k := range s.keys {
		v := s.values[k]
		if strings.Contains(strings.ToLower(k), pattern) || strings.Contains(strings.ToLower(v), pattern) {
			sub.keys = append(sub.keys, k)
			sub.values[k] = v
		}
	}
	return sub
}

// Subset returns a store restricted to the given keys, keeping this store's
// insertion order. Unknown keys are ignored.
func (s *ContextStore) Subset(keys []string) *ContextStore {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	sub := &ContextStore{values: make(map[string]string)}
	for _, k := range s.keys {
		if want[k] {
			sub.keys = append(sub.keys, k)
			sub.values[k] = s.values[k]
		}
	}
	return sub
}

// Entries exports the store as ordered wire entries.
func (s *ContextStore) Entries() types.ContextMap {
	entries := make(types.ContextMap, 0, len(s.keys))
	for _, k := range s.keys {
		entries = append(entries, types.ContextEntry{Key: k, Value: s.values[k]})
	}
	return entries
}
