package formwork

import (
	"fmt"
	"regexp"
)

// Builder assembles a Schema declaration. Fields resolve in the order they
// are declared; Extend places a base schema's fields ahead of the builder's
// own, with same-named declarations overriding the base in place.
type Builder struct {
	base   *Schema
	fields []*Field
	err    error
}

// New returns an empty schema builder.
func New() *Builder { return &Builder{} }

// Extend records a base schema whose fields are merged ahead of this
// builder's own declarations.
func (b *Builder) Extend(base *Schema) *Builder {
	b.base = base
	return b
}

// Field declares an attribute backed by the given coercion kind and returns
// a step for configuring it.
func (b *Builder) Field(name string, kind Kind) *FieldStep {
	f := &Field{name: name, key: name, kind: kind}
	b.fields = append(b.fields, f)
	return &FieldStep{b: b, f: f}
}

// Build flattens the declaration list (base first, overrides in place) into
// an immutable Schema.
func (b *Builder) Build() (*Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	seen := map[string]struct{}{}
	for _, f := range b.fields {
		if f.name == "" {
			return nil, fmt.Errorf("formwork: field with empty name")
		}
		if f.kind == nil && f.hooks.compute == nil && f.hooks.parse == nil {
			return nil, fmt.Errorf("formwork: field %q has no kind", f.name)
		}
		if _, dup := seen[f.name]; dup {
			return nil, fmt.Errorf("formwork: duplicate field %q", f.name)
		}
		seen[f.name] = struct{}{}
	}

	var flat []*Field
	index := map[string]int{}
	if b.base != nil {
		for _, f := range b.base.fields {
			index[f.name] = len(flat)
			flat = append(flat, f)
		}
	}
	for _, f := range b.fields {
		if i, ok := index[f.name]; ok {
			flat[i] = f
			continue
		}
		index[f.name] = len(flat)
		flat = append(flat, f)
	}

	byName := make(map[string]*Field, len(flat))
	for _, f := range flat {
		byName[f.name] = f
	}
	return &Schema{fields: flat, byName: byName}, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// FieldStep configures the field most recently declared on the builder.
// Every method returns the step so configuration chains; Field starts the
// next declaration and Build/MustBuild finalize the schema.
type FieldStep struct {
	b *Builder
	f *Field
}

// From overrides the source key the field resolves against.
func (fs *FieldStep) From(key string) *FieldStep {
	fs.f.key = key
	return fs
}

// Inline resolves the field against the enclosing cursor itself instead of
// descending into a key (an envelope field).
func (fs *FieldStep) Inline() *FieldStep {
	fs.f.inline = true
	return fs
}

// Default supplies a static fallback for an absent value. A nil default
// implies the field is nullable.
func (fs *FieldStep) Default(v any) *FieldStep {
	fs.f.hasDefault = true
	fs.f.def = v
	if v == nil {
		fs.f.nullable = true
	}
	return fs
}

// DefaultFunc supplies a factory fallback, invoked once per unresolved
// instance at default-stage time.
func (fs *FieldStep) DefaultFunc(fn func() any) *FieldStep {
	fs.f.defFn = fn
	return fs
}

// Defer marks the field's value as not required at parse time; a compute
// hook or the caller may back-fill it later.
func (fs *FieldStep) Defer() *FieldStep {
	fs.f.deferred = true
	return fs
}

// Nullable allows an explicit null to survive validation.
func (fs *FieldStep) Nullable() *FieldStep {
	fs.f.nullable = true
	return fs
}

// Ignore lists literal values treated as absent at filter time.
func (fs *FieldStep) Ignore(vals ...any) *FieldStep {
	fs.f.ignores = append(fs.f.ignores, vals...)
	return fs
}

// Capture reduces a parsed string to one regex capture group at munge time:
// the named group when group is non-empty, the first group otherwise. A
// non-matching value is suppressed like a filter miss, falling back to the
// field's default. Panics on an invalid expression, mirroring
// regexp.MustCompile.
func (fs *FieldStep) Capture(expr, group string) *FieldStep {
	fs.f.capture = &captureSpec{re: regexp.MustCompile(expr), group: group}
	return fs
}

// Translate maps parsed literals to replacement values at munge time.
func (fs *FieldStep) Translate(m map[any]any) *FieldStep {
	if fs.f.translate == nil {
		fs.f.translate = map[any]any{}
	}
	for k, v := range m {
		fs.f.translate[k] = v
	}
	return fs
}

// Resolve overrides the locate stage.
func (fs *FieldStep) Resolve(h ResolveHook) *FieldStep {
	fs.f.hooks.resolve = h
	return fs
}

// Parse overrides the coercion stage.
func (fs *FieldStep) Parse(h ParseHook) *FieldStep {
	fs.f.hooks.parse = h
	return fs
}

// DefaultWith overrides the default stage with a hook that can read the
// in-progress resolution.
func (fs *FieldStep) DefaultWith(h DefaultHook) *FieldStep {
	fs.f.hooks.def = h
	return fs
}

// Munge registers a post-parse transform.
func (fs *FieldStep) Munge(h MungeHook) *FieldStep {
	fs.f.hooks.munge = h
	return fs
}

// Filter registers a presence predicate.
func (fs *FieldStep) Filter(h FilterHook) *FieldStep {
	fs.f.hooks.filter = h
	return fs
}

// Validate registers an extra constraint check.
func (fs *FieldStep) Validate(h ValidateHook) *FieldStep {
	fs.f.hooks.validate = h
	return fs
}

// Compute turns the field into a computed one: its value derives from the
// resolved instance after all other fields finish.
func (fs *FieldStep) Compute(h ComputeHook) *FieldStep {
	fs.f.hooks.compute = h
	return fs
}

// Field starts the next declaration on the underlying builder.
func (fs *FieldStep) Field(name string, kind Kind) *FieldStep {
	return fs.b.Field(name, kind)
}

// Build finalizes the schema.
func (fs *FieldStep) Build() (*Schema, error) { return fs.b.Build() }

// MustBuild finalizes the schema, panicking on error.
func (fs *FieldStep) MustBuild() *Schema { return fs.b.MustBuild() }

// Schema is an immutable, ordered field declaration list. It is shared
// read-only across resolutions; concurrent Resolve calls are safe because
// each owns its accumulator and instance exclusively.
type Schema struct {
	fields []*Field
	byName map[string]*Field
}

// Fields returns the declared fields in resolution order.
func (s *Schema) Fields() []*Field {
	return append([]*Field(nil), s.fields...)
}

// Field looks up a declaration by name.
func (s *Schema) Field(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Resolve is the top-level entry point: it resolves every declared field
// against cur and either returns a fully populated instance or a single
// aggregate failure carrying every accumulated (path, message) entry. There
// is no partial success.
func (s *Schema) Resolve(cur *Cursor) (*Instance, error) {
	errs := &Errors{}
	inst := s.ResolveInto(cur, errs)
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return inst, nil
}

// ResolveValue resolves against an already-decoded structure.
func (s *Schema) ResolveValue(v any) (*Instance, error) {
	return s.Resolve(FromValue(v))
}

// ResolveInto is the internal/recursive entry point: it never raises,
// always returning control with problems recorded on errs. Nested kinds
// call it on a rebased cursor and merge the child accumulator upward.
func (s *Schema) ResolveInto(cur *Cursor, errs *Errors) *Instance {
	return s.resolveWith(cur, errs, nil)
}

// resolveWith optionally pre-seeds attribute values (used by polymorphic
// dispatch to carry the already-read discriminant into the concrete schema).
func (s *Schema) resolveWith(cur *Cursor, errs *Errors, preset map[string]any) *Instance {
	inst := newInstance(s)
	for name, v := range preset {
		inst.Set(name, v)
	}
	if cur.Presence() == Present && !cur.IsMapping() {
		errs.InvalidType(cur.Path(), `"%v" is not a mapping`, cur.Value())
		return inst
	}

	// stages 1-6, declaration order, no short-circuiting between siblings
	for _, f := range s.fields {
		if f.Computed() {
			continue
		}
		if preset != nil {
			if _, ok := preset[f.name]; ok {
				continue
			}
		}
		if v, ok := f.runPipeline(cur, inst, errs); ok {
			inst.Set(f.name, v)
		}
	}

	// stage 7: compute hooks, declaration order. When earlier stages
	// recorded errors the hooks are skipped so they never observe invalid
	// state; independently defaulted computed fields still receive their
	// fallback.
	for _, f := range s.fields {
		if !f.Computed() {
			continue
		}
		if preset != nil {
			if _, ok := preset[f.name]; ok {
				continue
			}
		}
		if errs.Empty() {
			if v, ok := f.runCompute(cur, inst, errs); ok {
				inst.Set(f.name, v)
			}
			continue
		}
		if f.defaulted() {
			if f.defFn != nil {
				inst.Set(f.name, f.defFn())
			} else {
				inst.Set(f.name, f.def)
			}
		}
	}
	return inst
}

// Instance is the mutable value bag produced by resolution, keyed by field
// name. Before resolution completes it is visible only to hooks of the same
// resolution; afterwards the caller owns it exclusively.
type Instance struct {
	schema *Schema
	values map[string]any
	extras []string
}

func newInstance(s *Schema) *Instance {
	return &Instance{schema: s, values: map[string]any{}}
}

// Schema returns the declaration the instance was resolved against.
func (in *Instance) Schema() *Schema { return in.schema }

// Get returns the value for name and whether it is set.
func (in *Instance) Get(name string) (any, bool) {
	v, ok := in.values[name]
	return v, ok
}

// Attr returns the value for name, or nil when unset.
func (in *Instance) Attr(name string) any { return in.values[name] }

// Has reports whether name is set.
func (in *Instance) Has(name string) bool {
	_, ok := in.values[name]
	return ok
}

// Set assigns an attribute value. Names outside the declared field list are
// kept and appear after declared fields in Map output.
func (in *Instance) Set(name string, v any) {
	if _, declared := in.schema.byName[name]; !declared {
		if _, dup := in.values[name]; !dup {
			in.extras = append(in.extras, name)
		}
	}
	in.values[name] = v
}

// Names returns the set attribute names: declared fields in declaration
// order, then extras in assignment order.
func (in *Instance) Names() []string {
	names := make([]string, 0, len(in.values))
	for _, f := range in.schema.fields {
		if _, ok := in.values[f.name]; ok {
			names = append(names, f.name)
		}
	}
	return append(names, in.extras...)
}

// Map converts the instance to a plain mapping, recursively converting
// nested instances. Use Names for declaration order.
func (in *Instance) Map() map[string]any {
	out := make(map[string]any, len(in.values))
	for _, name := range in.Names() {
		out[name] = plainValue(in.values[name])
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case *Instance:
		return t.Map()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plainValue(e)
		}
		return out
	default:
		return v
	}
}
