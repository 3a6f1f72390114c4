package lexval

import (
	"strconv"
	"strings"
)

// Collection is an ordered mapping from string key to owned Value (spec
// §3.1). Insertion order is preserved and keys are unique; a Collection
// owns its children exclusively, so no cycles can form (spec §9).
type Collection struct {
	keys    []string
	entries map[string]Value
}

// NewCollection returns an empty Collection.
func NewCollection() *Collection {
	return &Collection{entries: make(map[string]Value)}
}

// Len returns the number of entries.
func (c *Collection) Len() int { return len(c.keys) }

// Keys returns the keys in insertion order. The returned slice must not be
// mutated by the caller.
func (c *Collection) Keys() []string { return c.keys }

// Get returns the value for key and whether it was present.
func (c *Collection) Get(key string) (Value, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Set inserts or updates key. New keys are appended to preserve insertion
// order; existing keys keep their position.
func (c *Collection) Set(key string, v Value) {
	if _, exists := c.entries[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.entries[key] = v
}

// Delete removes key if present.
func (c *Collection) Delete(key string) {
	if _, exists := c.entries[key]; !exists {
		return
	}
	delete(c.entries, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy; collections own their children transitively
// (spec §3.6), so copying a Collection value must copy its whole tree.
func (c *Collection) Clone() *Collection {
	clone := &Collection{
		keys:    append([]string(nil), c.keys...),
		entries: make(map[string]Value, len(c.entries)),
	}
	for k, v := range c.entries {
		if v.Kind == CollectionKind && v.Col != nil {
			v.Col = v.Col.Clone()
		}
		clone.entries[k] = v
	}
	return clone
}

// ExtendTo grows the collection so that numeric index max is present,
// inserting default-valued entries named "<name>.<i>" for every gap (spec
// §4.4.3 and the §8 property test: "extending with a numeric index beyond
// the current max creates exactly new_max - old_max default entries, keys
// ordered contiguously").
func (c *Collection) ExtendTo(name string, max int, zero Value) {
	for i := c.Len(); i <= max; i++ {
		key := name + "." + strconv.Itoa(i)
		if _, exists := c.entries[key]; !exists {
			c.Set(key, zero)
		}
	}
}

// EnsureKey inserts a default entry for key if absent (spec §4.4.3: "if the
// key is a string that is absent, a default entry is inserted").
func (c *Collection) EnsureKey(key string, zero Value) {
	if _, ok := c.entries[key]; !ok {
		c.Set(key, zero)
	}
}

func (c *Collection) String() string {
	var sb strings.Builder
	sb.WriteString("{ ")
	for i, k := range c.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(c.entries[k].String())
	}
	sb.WriteString(" }")
	return sb.String()
}
