package fields

import (
	formwork "github.com/formwork-go/formwork"
)

// SubKind resolves a nested schema. The child resolution runs against a
// rebased cursor with its own accumulator; its entries merge into the
// parent prefixed with the field's path.
type SubKind struct {
	schema *formwork.Schema
}

// Sub returns a nested-schema kind.
func Sub(s *formwork.Schema) *SubKind { return &SubKind{schema: s} }

func (k *SubKind) Coerce(cur *formwork.Cursor, errs *formwork.Errors) (any, error) {
	if cur.Presence() == formwork.Null {
		return nil, nil
	}
	child := &formwork.Errors{}
	inst := k.schema.ResolveInto(cur.Rebase(), child)
	errs.Extend(child, cur.Path())
	return inst, nil
}

func (k *SubKind) Check(formwork.Path, any, *formwork.Errors) {}

// PolyKind resolves a polymorphic nested schema through a Dispatcher. A
// dispatch failure yields no value at all for the subtree; the single
// discriminant entry is already merged when Coerce returns.
type PolyKind struct {
	d *formwork.Dispatcher
}

// Poly returns a dispatcher-backed nested-schema kind.
func Poly(d *formwork.Dispatcher) *PolyKind { return &PolyKind{d: d} }

func (k *PolyKind) Coerce(cur *formwork.Cursor, errs *formwork.Errors) (any, error) {
	if cur.Presence() == formwork.Null {
		return nil, nil
	}
	child := &formwork.Errors{}
	inst, ok := k.d.ResolveInto(cur.Rebase(), child)
	errs.Extend(child, cur.Path())
	if !ok {
		return nil, formwork.ErrRecorded
	}
	return inst, nil
}

func (k *PolyKind) Check(formwork.Path, any, *formwork.Errors) {}
