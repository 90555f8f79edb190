package formwork

import (
	"errors"
	"reflect"
	"regexp"
)

// Kind is the coercion primitive behind a Field. Scalar kinds convert the
// raw value under the cursor into their native type; container kinds
// (sequences, mappings, nested schemas) descend into children, recording
// element problems on the accumulator as they go.
type Kind interface {
	// Coerce parses the value at cur. Child-element problems are recorded
	// on errs; a non-nil error means the value itself could not be coerced
	// and is reported by the pipeline at the cursor's path. Returning
	// ErrRecorded suppresses that report.
	Coerce(cur *Cursor, errs *Errors) (any, error)
	// Check validates a coerced (and munged) value, recording every
	// violation on errs. Violations accumulate; Check never short-circuits.
	Check(p Path, v any, errs *Errors)
}

// Res is the per-invocation state a hook can observe: the field being
// resolved, its located cursor, the root cursor of the enclosing schema,
// the instance under construction, and the error accumulator. A partially
// populated instance is visible only to hooks of the same resolution.
type Res struct {
	Field    *Field
	Cursor   *Cursor
	Root     *Cursor
	Instance *Instance
	Errors   *Errors
}

// Hook signatures, one per overridable pipeline stage.
type (
	// ResolveHook locates the raw value, replacing the default descent into
	// the field's source key. Returning nil means absent.
	ResolveHook func(r *Res) *Cursor
	// ParseHook converts the located raw value, replacing the kind's Coerce.
	ParseHook func(r *Res, cur *Cursor) (any, error)
	// DefaultHook supplies a fallback when the field resolved absent.
	DefaultHook func(r *Res) (any, error)
	// MungeHook post-processes a parsed or defaulted value before validation.
	MungeHook func(r *Res, v any) (any, error)
	// FilterHook suppresses the field's presence when it returns false.
	FilterHook func(r *Res, v any) bool
	// ValidateHook adds constraint checks on the munged value.
	ValidateHook func(r *Res, v any) error
	// ComputeHook derives the field's value from the resolved instance after
	// every other field has finished. It may read sibling values, including
	// computed fields declared earlier.
	ComputeHook func(r *Res) (any, error)
)

// hookTable maps each stage to an optional override; the pipeline always
// consults the table and falls back to the built-in stage when unset.
type hookTable struct {
	resolve  ResolveHook
	parse    ParseHook
	def      DefaultHook
	munge    MungeHook
	filter   FilterHook
	validate ValidateHook
	compute  ComputeHook
}

// Field is the immutable declaration of one schema attribute: name, source
// key, coercion kind, presence policy, and hook overrides. A Field holds no
// per-instance state and is shared read-only across every resolution of its
// schema.
type Field struct {
	name       string
	key        string
	inline     bool
	kind       Kind
	hasDefault bool
	def        any
	defFn      func() any
	deferred   bool
	nullable   bool
	ignores    []any
	translate  map[any]any
	capture    *captureSpec
	hooks      hookTable
}

// captureSpec reduces a string to one regex capture group at munge time.
type captureSpec struct {
	re    *regexp.Regexp
	group string
}

func (cs *captureSpec) apply(s string) (string, bool) {
	m := cs.re.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	i := 1
	if cs.group != "" {
		i = cs.re.SubexpIndex(cs.group)
	}
	if i < 1 || i >= len(m) {
		return "", false
	}
	return m[i], true
}

// Name returns the declared attribute name.
func (f *Field) Name() string { return f.name }

// SourceKey returns the key resolved against the source; it defaults to the
// field name.
func (f *Field) SourceKey() string { return f.key }

// Computed reports whether the field's value is produced by a compute hook.
func (f *Field) Computed() bool { return f.hooks.compute != nil }

// Required reports whether an absent value is an error for this field.
func (f *Field) Required() bool {
	return !f.hasDefault && f.defFn == nil && f.hooks.def == nil &&
		!f.deferred && f.hooks.compute == nil
}

func (f *Field) locate(root *Cursor) *Cursor {
	if f.inline {
		return root
	}
	return root.Get(f.key)
}

// defaulted reports whether the field carries a fallback independent of its
// compute hook.
func (f *Field) defaulted() bool {
	return f.hasDefault || f.defFn != nil
}

// defaultValue runs the default stage. It returns (value, true) when a
// fallback exists; otherwise it records a missing-required entry unless the
// field is deferred or computed.
func (f *Field) defaultValue(r *Res) (any, bool) {
	switch {
	case f.hooks.def != nil:
		v, err := f.hooks.def(r)
		if err != nil {
			recordHookErr(r.Errors, r.Cursor.Path(), err, CodeHook)
			return nil, false
		}
		return v, true
	case f.defFn != nil:
		// Factory defaults run once per unresolved instance so per-instance
		// values (fresh identifiers, timestamps) are never cached on the
		// shared Field.
		return f.defFn(), true
	case f.hasDefault:
		return f.def, true
	case f.deferred || f.hooks.compute != nil:
		return nil, false
	default:
		r.Errors.Missing(r.Cursor.Path())
		return nil, false
	}
}

// runPipeline executes stages 1-6 for one field. ok=false leaves the field
// unset; any problem is on the accumulator and sibling fields continue.
func (f *Field) runPipeline(root *Cursor, inst *Instance, errs *Errors) (any, bool) {
	cur := f.locate(root)
	r := &Res{Field: f, Cursor: cur, Root: root, Instance: inst, Errors: errs}

	// stage 1: resolve
	if h := f.hooks.resolve; h != nil {
		if c := h(r); c != nil {
			cur = c
		} else {
			cur = &Cursor{path: cur.Path()}
		}
		r.Cursor = cur
	}

	var v any
	if cur.Presence() == Absent {
		// stage 3: default
		dv, ok := f.defaultValue(r)
		if !ok {
			return nil, false
		}
		v = dv
	} else {
		// stage 2: parse
		var err error
		if h := f.hooks.parse; h != nil {
			v, err = h(r, cur)
		} else {
			v, err = f.kind.Coerce(cur, errs)
		}
		if err != nil {
			if errors.Is(err, ErrRecorded) {
				return nil, false
			}
			recordHookErr(errs, cur.Path(), err, CodeInvalidType)
			return nil, false
		}
	}
	return f.finish(r, v)
}

// runCompute executes the stage-7 path: the compute hook followed by
// munge/filter/validate on its result.
func (f *Field) runCompute(root *Cursor, inst *Instance, errs *Errors) (any, bool) {
	cur := f.locate(root)
	r := &Res{Field: f, Cursor: cur, Root: root, Instance: inst, Errors: errs}
	v, err := f.hooks.compute(r)
	if err != nil {
		recordHookErr(errs, cur.Path(), err, CodeHook)
		return nil, false
	}
	return f.finish(r, v)
}

// finish runs stages 4-6 on a parsed, defaulted, or computed value.
func (f *Field) finish(r *Res, v any) (any, bool) {
	p := r.Cursor.Path()

	// stage 4: munge
	translated := false
	if len(f.translate) > 0 && isComparable(v) {
		if tv, ok := f.translate[v]; ok {
			v = tv
			translated = true
		}
	}
	captureMiss := false
	if f.capture != nil {
		if s, ok := v.(string); ok {
			if out, ok := f.capture.apply(s); ok {
				v = out
			} else {
				captureMiss = true
			}
		}
	}
	if h := f.hooks.munge; h != nil {
		mv, err := h(r, v)
		if err != nil {
			recordHookErr(r.Errors, p, err, CodeHook)
			return nil, false
		}
		v = mv
	}

	// stage 5: filter
	if captureMiss || f.ignored(v) || (f.hooks.filter != nil && !f.hooks.filter(r, v)) {
		dv, ok := f.defaultValue(r)
		if !ok {
			return nil, false
		}
		v = dv
	}

	// stage 6: validate
	before := r.Errors.Len()
	if v == nil {
		if !f.nullable {
			r.Errors.Invalid(p, "not nullable")
		}
	} else if f.kind != nil && !translated {
		// translation outputs are valid by declaration; a translated value
		// may hold a different type than the kind coerces to
		f.kind.Check(p, v, r.Errors)
	}
	if h := f.hooks.validate; h != nil {
		if err := h(r, v); err != nil {
			recordHookErr(r.Errors, p, err, CodeConstraint)
		}
	}
	if r.Errors.Len() > before {
		return nil, false
	}
	return v, true
}

func (f *Field) ignored(v any) bool {
	if len(f.ignores) == 0 || !isComparable(v) {
		return false
	}
	for _, ig := range f.ignores {
		if v == ig {
			return true
		}
	}
	return false
}

func isComparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

// recordHookErr folds a hook or coercer error into the accumulator. Issues
// errors keep their own entries (root paths are re-anchored at p); any other
// error becomes one entry at p with the given code.
func recordHookErr(errs *Errors, p Path, err error, code string) {
	if iss, ok := AsIssues(err); ok {
		for _, it := range iss {
			if it.Path.IsRoot() {
				it.Path = p
			}
			errs.Add(it)
		}
		return
	}
	errs.Add(Issue{Path: p, Code: code, Message: err.Error()})
}
