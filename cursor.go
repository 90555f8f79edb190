package formwork

import "sort"

// Presence is the tri-state result of locating a value in the source.
type Presence int

const (
	Absent  Presence = iota // The key/index does not exist.
	Null                    // The key exists and holds an explicit null.
	Present                 // The key exists and holds a value.
)

func presenceOf(v any) Presence {
	if v == nil {
		return Null
	}
	return Present
}

// Cursor is a read-only, path-tracking view into the raw input structure.
// It wraps a caller-owned value (maps, slices, scalars) together with the
// Path at which that value sits. Cursors only descend; they never mutate
// the underlying input, so sharing one across sibling field resolutions is
// safe.
type Cursor struct {
	value    any
	path     Path
	presence Presence
}

// FromValue wraps an untyped, already-decoded structure as a root Cursor.
// Mappings must be map[string]any and sequences []any; the source package
// normalizes decoder output into that shape.
func FromValue(v any) *Cursor {
	return &Cursor{value: v, presence: presenceOf(v)}
}

// Value returns the raw value under the cursor; nil for Absent and Null.
func (c *Cursor) Value() any { return c.value }

// Path returns the cursor's location.
func (c *Cursor) Path() Path { return c.path }

// Presence reports whether the cursor's location was missing, explicitly
// null, or present in the source.
func (c *Cursor) Presence() Presence { return c.presence }

// Get descends into the named child of a mapping. A non-mapping value or a
// missing key yields an Absent child; a key holding nil yields a Null one.
// The child's path extends the parent's in either case, so error messages
// always pinpoint the attempted location.
func (c *Cursor) Get(key string) *Cursor {
	child := &Cursor{path: c.path.Key(key)}
	m, ok := c.value.(map[string]any)
	if !ok {
		return child
	}
	v, ok := m[key]
	if !ok {
		return child
	}
	child.value = v
	child.presence = presenceOf(v)
	return child
}

// At descends into the i-th element of a sequence. Out-of-range indices and
// non-sequence values yield an Absent child.
func (c *Cursor) At(i int) *Cursor {
	child := &Cursor{path: c.path.Index(i)}
	s, ok := c.value.([]any)
	if !ok || i < 0 || i >= len(s) {
		return child
	}
	child.value = s[i]
	child.presence = presenceOf(s[i])
	return child
}

// IsMapping reports whether the value is a mapping.
func (c *Cursor) IsMapping() bool {
	_, ok := c.value.(map[string]any)
	return ok
}

// IsSequence reports whether the value is a sequence.
func (c *Cursor) IsSequence() bool {
	_, ok := c.value.([]any)
	return ok
}

// Len returns the sequence length, or false when the value is not a
// sequence.
func (c *Cursor) Len() (int, bool) {
	s, ok := c.value.([]any)
	if !ok {
		return 0, false
	}
	return len(s), true
}

// Keys returns the mapping keys in ascending order for deterministic
// iteration, or false when the value is not a mapping.
func (c *Cursor) Keys() ([]string, bool) {
	m, ok := c.value.(map[string]any)
	if !ok {
		return nil, false
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, true
}

// Rebase returns a cursor over the same value with a root path. Nested
// schemas resolve against rebased cursors so their accumulators carry
// relative paths; the parent re-roots them on merge.
func (c *Cursor) Rebase() *Cursor {
	return &Cursor{value: c.value, presence: c.presence}
}
