package fields

import (
	"errors"
	"fmt"
	"strings"

	formwork "github.com/formwork-go/formwork"
)

// ListKind coerces a sequence whose elements all share one kind. Element
// problems are recorded at their indexed path and never suppress the
// processing of other elements.
type ListKind struct {
	elem               formwork.Kind
	minItems, maxItems int
}

// List returns a sequence kind over the given element kind.
func List(elem formwork.Kind) *ListKind {
	return &ListKind{elem: elem, minItems: -1, maxItems: -1}
}

// MinItems sets the inclusive minimum element count.
func (k *ListKind) MinItems(n int) *ListKind { k.minItems = n; return k }

// MaxItems sets the inclusive maximum element count.
func (k *ListKind) MaxItems(n int) *ListKind { k.maxItems = n; return k }

func (k *ListKind) Coerce(cur *formwork.Cursor, errs *formwork.Errors) (any, error) {
	if cur.Presence() == formwork.Null {
		return nil, nil
	}
	n, ok := cur.Len()
	if !ok {
		return nil, fmt.Errorf(`"%v" is not a sequence`, cur.Value())
	}
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		ec := cur.At(i)
		if ec.Presence() == formwork.Null {
			out = append(out, nil)
			continue
		}
		v, err := k.elem.Coerce(ec, errs)
		if err != nil {
			if !errors.Is(err, formwork.ErrRecorded) {
				errs.InvalidType(ec.Path(), "%s", err.Error())
			}
			continue
		}
		if v != nil {
			k.elem.Check(ec.Path(), v, errs)
		}
		out = append(out, v)
	}
	return out, nil
}

func (k *ListKind) Check(p formwork.Path, v any, errs *formwork.Errors) {
	s, ok := v.([]any)
	if !ok {
		errs.InvalidType(p, `"%v" is not a sequence`, v)
		return
	}
	if k.minItems >= 0 && len(s) < k.minItems {
		errs.Invalid(p, "Must have %d or more items", k.minItems)
	}
	if k.maxItems >= 0 && len(s) > k.maxItems {
		errs.Invalid(p, "Must have %d or fewer items", k.maxItems)
	}
}

// TupleKind coerces a fixed-length sequence with one kind per position.
type TupleKind struct {
	elems []formwork.Kind
}

// Tuple returns a fixed-shape sequence kind.
func Tuple(elems ...formwork.Kind) *TupleKind { return &TupleKind{elems: elems} }

func (k *TupleKind) Coerce(cur *formwork.Cursor, errs *formwork.Errors) (any, error) {
	if cur.Presence() == formwork.Null {
		return nil, nil
	}
	n, ok := cur.Len()
	if !ok {
		return nil, fmt.Errorf(`"%v" is not a sequence`, cur.Value())
	}
	if n != len(k.elems) {
		errs.Invalid(cur.Path(), "Must have exactly %d items", len(k.elems))
		return nil, formwork.ErrRecorded
	}
	out := make([]any, 0, n)
	for i, elem := range k.elems {
		ec := cur.At(i)
		if ec.Presence() == formwork.Null {
			out = append(out, nil)
			continue
		}
		v, err := elem.Coerce(ec, errs)
		if err != nil {
			if !errors.Is(err, formwork.ErrRecorded) {
				errs.InvalidType(ec.Path(), "%s", err.Error())
			}
			continue
		}
		if v != nil {
			elem.Check(ec.Path(), v, errs)
		}
		out = append(out, v)
	}
	return out, nil
}

func (k *TupleKind) Check(p formwork.Path, v any, errs *formwork.Errors) {
	if _, ok := v.([]any); !ok {
		errs.InvalidType(p, `"%v" is not a sequence`, v)
	}
}

// MapKind coerces a free-form mapping. Keys are validated (as strings)
// against the key kind with violations reported at the mapping's own path;
// values run the value kind at their keyed path.
type MapKind struct {
	key, val     formwork.Kind
	requiredKeys []string
	maxKeys      int
}

// Map returns a mapping kind over the given key and value kinds.
func Map(key, val formwork.Kind) *MapKind {
	return &MapKind{key: key, val: val, maxKeys: -1}
}

// RequiredKeys lists keys that must be present in the mapping.
func (k *MapKind) RequiredKeys(names ...string) *MapKind {
	k.requiredKeys = append(k.requiredKeys, names...)
	return k
}

// MaxKeys caps the number of keys.
func (k *MapKind) MaxKeys(n int) *MapKind { k.maxKeys = n; return k }

func (k *MapKind) Coerce(cur *formwork.Cursor, errs *formwork.Errors) (any, error) {
	if cur.Presence() == formwork.Null {
		return nil, nil
	}
	keys, ok := cur.Keys()
	if !ok {
		return nil, fmt.Errorf(`"%v" is not a mapping`, cur.Value())
	}
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		k.key.Check(cur.Path(), key, errs)
		vc := cur.Get(key)
		if vc.Presence() == formwork.Null {
			out[key] = nil
			continue
		}
		v, err := k.val.Coerce(vc, errs)
		if err != nil {
			if !errors.Is(err, formwork.ErrRecorded) {
				errs.InvalidType(vc.Path(), "%s", err.Error())
			}
			continue
		}
		if v != nil {
			k.val.Check(vc.Path(), v, errs)
		}
		out[key] = v
	}
	return out, nil
}

func (k *MapKind) Check(p formwork.Path, v any, errs *formwork.Errors) {
	m, ok := v.(map[string]any)
	if !ok {
		errs.InvalidType(p, `"%v" is not a mapping`, v)
		return
	}
	if len(k.requiredKeys) > 0 {
		var missing []string
		for _, rk := range k.requiredKeys {
			if _, ok := m[rk]; !ok {
				missing = append(missing, rk)
			}
		}
		if len(missing) > 0 {
			errs.Invalid(p, "Missing required keys %s", strings.Join(missing, ", "))
		}
	}
	if k.maxKeys >= 0 && len(m) > k.maxKeys {
		errs.Invalid(p, "Cannot have more than %d key(s)", k.maxKeys)
	}
}
