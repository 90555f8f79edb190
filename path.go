package formwork

import (
	"strconv"
	"strings"
)

// Segment is a single step of a Path: either a key into a mapping or an
// index into a sequence.
type Segment struct {
	key   string
	index int
	isKey bool
}

// KeySegment returns a mapping-key segment.
func KeySegment(name string) Segment { return Segment{key: name, isKey: true} }

// IndexSegment returns a sequence-index segment.
func IndexSegment(i int) Segment { return Segment{index: i} }

// IsKey reports whether the segment is a mapping key.
func (s Segment) IsKey() bool { return s.isKey }

// Key returns the mapping key; empty for index segments.
func (s Segment) Key() string { return s.key }

// Index returns the sequence index; zero for key segments.
func (s Segment) Index() int { return s.index }

// Path is an ordered, immutable location descriptor into the input
// structure. The zero value is the root. Key and Index return extended
// copies; a Path is never mutated in place, so it is safe to share across
// sibling resolutions.
type Path struct {
	segs []Segment
}

// Key returns a child path extended with a mapping-key segment.
func (p Path) Key(name string) Path {
	return Path{segs: append(append([]Segment(nil), p.segs...), KeySegment(name))}
}

// Index returns a child path extended with a sequence-index segment.
func (p Path) Index(i int) Path {
	return Path{segs: append(append([]Segment(nil), p.segs...), IndexSegment(i))}
}

// Join returns child re-rooted under p. It is the prefixing primitive used
// when merging a nested resolution's errors into its parent.
func (p Path) Join(child Path) Path {
	if len(p.segs) == 0 {
		return child
	}
	if len(child.segs) == 0 {
		return p
	}
	return Path{segs: append(append([]Segment(nil), p.segs...), child.segs...)}
}

// IsRoot reports whether the path has no segments.
func (p Path) IsRoot() bool { return len(p.segs) == 0 }

// Len returns the number of segments.
func (p Path) Len() int { return len(p.segs) }

// Segments returns a copy of the path's segments.
func (p Path) Segments() []Segment {
	return append([]Segment(nil), p.segs...)
}

// String renders the path in dotted/bracketed form, for example
// "items[2].price". The root renders as an empty string.
func (p Path) String() string {
	if len(p.segs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, s := range p.segs {
		if s.isKey {
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s.key)
			continue
		}
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(s.index))
		b.WriteByte(']')
	}
	return b.String()
}
