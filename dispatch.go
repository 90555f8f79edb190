package formwork

import (
	"fmt"
	"strings"
)

// Dispatcher selects a concrete schema variant from the value of a
// discriminant key. The registry is built at schema-definition time (exactly
// one schema per discriminant value) and treated as immutable once handed to
// a resolution.
type Dispatcher struct {
	key      string
	variants map[string]*Schema
	order    []string
}

// Dispatch starts a dispatcher keyed on the named discriminant field.
func Dispatch(key string) *Dispatcher {
	return &Dispatcher{key: key, variants: map[string]*Schema{}}
}

// Variant registers the concrete schema for one discriminant value.
// Re-registering a value replaces the earlier schema.
func (d *Dispatcher) Variant(value string, s *Schema) *Dispatcher {
	if _, ok := d.variants[value]; !ok {
		d.order = append(d.order, value)
	}
	d.variants[value] = s
	return d
}

// Key returns the discriminant key.
func (d *Dispatcher) Key() string { return d.key }

// Values returns the registered discriminant values in registration order.
func (d *Dispatcher) Values() []string {
	return append([]string(nil), d.order...)
}

// Resolve is the top-level entry point mirroring Schema.Resolve.
func (d *Dispatcher) Resolve(cur *Cursor) (*Instance, error) {
	errs := &Errors{}
	inst, ok := d.ResolveInto(cur, errs)
	if err := errs.Err(); err != nil {
		return nil, err
	}
	if !ok {
		// registry misses always record, so this is unreachable in practice
		return nil, errs.Err()
	}
	return inst, nil
}

// ResolveValue resolves against an already-decoded structure.
func (d *Dispatcher) ResolveValue(v any) (*Instance, error) {
	return d.Resolve(FromValue(v))
}

// ResolveInto reads the discriminant before any other field, then delegates
// the full resolution to the selected concrete schema with the discriminant
// pre-seeded. A missing or unrecognized discriminant records exactly one
// entry at the discriminant's path and aborts the whole subtree: a
// polymorphic choice failure is all-or-nothing, never a partially built
// instance.
func (d *Dispatcher) ResolveInto(cur *Cursor, errs *Errors) (*Instance, bool) {
	if cur.Presence() == Present && !cur.IsMapping() {
		errs.InvalidType(cur.Path(), `"%v" is not a mapping`, cur.Value())
		return nil, false
	}
	dc := cur.Get(d.key)
	if dc.Presence() == Absent {
		errs.Missing(dc.Path())
		return nil, false
	}
	tag, ok := dc.Value().(string)
	if !ok {
		tag = fmt.Sprint(dc.Value())
	}
	s, ok := d.variants[tag]
	if !ok {
		errs.Add(Issue{
			Path:    dc.Path(),
			Code:    CodeUnknownVariant,
			Message: fmt.Sprintf(`"%s" is not one of %s`, tag, quoteJoin(d.order)),
		})
		return nil, false
	}
	return s.resolveWith(cur, errs, map[string]any{d.key: tag}), true
}

func quoteJoin(vals []string) string {
	quoted := make([]string, len(vals))
	for i, v := range vals {
		quoted[i] = `"` + v + `"`
	}
	return strings.Join(quoted, ", ")
}
