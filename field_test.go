package formwork

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawKind passes the raw value through untouched.
type rawKind struct{}

func (rawKind) Coerce(cur *Cursor, _ *Errors) (any, error) { return cur.Value(), nil }
func (rawKind) Check(Path, any, *Errors)                   {}

// strictIntKind rejects anything but int.
type strictIntKind struct{}

func (strictIntKind) Coerce(cur *Cursor, _ *Errors) (any, error) {
	if cur.Presence() == Null {
		return nil, nil
	}
	n, ok := cur.Value().(int)
	if !ok {
		return nil, fmt.Errorf(`"%v" is not an integer`, cur.Value())
	}
	return n, nil
}
func (strictIntKind) Check(Path, any, *Errors) {}

// doubleCheckKind records two separate violations for any value.
type doubleCheckKind struct{}

func (doubleCheckKind) Coerce(cur *Cursor, _ *Errors) (any, error) { return cur.Value(), nil }
func (doubleCheckKind) Check(p Path, _ any, errs *Errors) {
	errs.Invalid(p, "first violation")
	errs.Invalid(p, "second violation")
}

func resolveIssues(t *testing.T, s *Schema, v any) Issues {
	t.Helper()
	_, err := s.ResolveValue(v)
	require.Error(t, err)
	iss, ok := AsIssues(err)
	require.True(t, ok)
	return iss
}

func TestFieldMissingRequired(t *testing.T) {
	s := New().Field("x", rawKind{}).MustBuild()
	iss := resolveIssues(t, s, map[string]any{})
	require.Len(t, iss, 1)
	assert.Equal(t, CodeRequired, iss[0].Code)
	assert.Equal(t, "x", iss[0].Path.String())
	assert.Equal(t, "x - is missing", iss[0].render())
}

func TestFieldStaticDefault(t *testing.T) {
	s := New().Field("x", rawKind{}).Default(12).MustBuild()
	inst, err := s.ResolveValue(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, 12, inst.Attr("x"))
}

func TestFieldDefaultFactoryRunsPerInstance(t *testing.T) {
	n := 0
	s := New().
		Field("id", rawKind{}).DefaultFunc(func() any { n++; return n }).
		MustBuild()

	a, err := s.ResolveValue(map[string]any{})
	require.NoError(t, err)
	b, err := s.ResolveValue(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, 1, a.Attr("id"))
	assert.Equal(t, 2, b.Attr("id"))
}

func TestFieldNullDistinctFromAbsent(t *testing.T) {
	nullable := New().Field("x", rawKind{}).Default(nil).MustBuild()
	inst, err := nullable.ResolveValue(map[string]any{"x": nil})
	require.NoError(t, err)
	v, ok := inst.Get("x")
	assert.True(t, ok)
	assert.Nil(t, v)

	strict := New().Field("x", strictIntKind{}).MustBuild()
	iss := resolveIssues(t, strict, map[string]any{"x": nil})
	require.Len(t, iss, 1)
	assert.Equal(t, "not nullable", iss[0].Message)
	assert.Equal(t, "x", iss[0].Path.String())
}

func TestFieldSourceKeyOverride(t *testing.T) {
	s := New().Field("field2", rawKind{}).From("ff2").MustBuild()
	inst, err := s.ResolveValue(map[string]any{"ff2": true})
	require.NoError(t, err)
	assert.Equal(t, true, inst.Attr("field2"))
}

func TestFieldInlineEnvelope(t *testing.T) {
	s := New().Field("container", rawKind{}).Inline().MustBuild()
	in := map[string]any{"field1": 55, "field2": true}
	inst, err := s.ResolveValue(in)
	require.NoError(t, err)
	assert.Equal(t, in, inst.Attr("container"))
}

func TestFieldParseFailureDoesNotAbortSiblings(t *testing.T) {
	s := New().
		Field("a", strictIntKind{}).
		Field("b", strictIntKind{}).
		MustBuild()
	iss := resolveIssues(t, s, map[string]any{"a": "nope", "b": "nah"})
	require.Len(t, iss, 2)
	assert.Equal(t, "a", iss[0].Path.String())
	assert.Equal(t, CodeInvalidType, iss[0].Code)
	assert.Equal(t, "b", iss[1].Path.String())
}

func TestFieldMultipleViolationsAccumulate(t *testing.T) {
	s := New().Field("x", doubleCheckKind{}).MustBuild()
	iss := resolveIssues(t, s, map[string]any{"x": "anything"})
	require.Len(t, iss, 2)
	assert.Equal(t, "first violation", iss[0].Message)
	assert.Equal(t, "second violation", iss[1].Message)
}

func TestFieldIgnoreFallsBackToDefault(t *testing.T) {
	s := New().Field("x", rawKind{}).Ignore("").Default("fallback").MustBuild()
	inst, err := s.ResolveValue(map[string]any{"x": ""})
	require.NoError(t, err)
	assert.Equal(t, "fallback", inst.Attr("x"))
}

func TestFieldTranslate(t *testing.T) {
	s := New().
		Field("x", rawKind{}).Translate(map[any]any{"one": 1, "two": 2}).
		MustBuild()
	inst, err := s.ResolveValue(map[string]any{"x": "two"})
	require.NoError(t, err)
	assert.Equal(t, 2, inst.Attr("x"))
}

func TestFieldMungeHookRunsOnDefaults(t *testing.T) {
	s := New().
		Field("x", strictIntKind{}).Default(10).
		Munge(func(_ *Res, v any) (any, error) { return v.(int) + 1, nil }).
		MustBuild()

	inst, err := s.ResolveValue(map[string]any{"x": 55})
	require.NoError(t, err)
	assert.Equal(t, 56, inst.Attr("x"))

	inst, err = s.ResolveValue(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, 11, inst.Attr("x"))
}

func TestFieldFilterSuppressesPresence(t *testing.T) {
	s := New().
		Field("x", strictIntKind{}).Default(0).
		Filter(func(_ *Res, v any) bool { return v.(int) < 10 }).
		MustBuild()

	inst, err := s.ResolveValue(map[string]any{"x": 99})
	require.NoError(t, err)
	assert.Equal(t, 0, inst.Attr("x"))

	inst, err = s.ResolveValue(map[string]any{"x": 5})
	require.NoError(t, err)
	assert.Equal(t, 5, inst.Attr("x"))
}

func TestFieldValidateHook(t *testing.T) {
	s := New().
		Field("x", strictIntKind{}).
		Validate(func(_ *Res, v any) error {
			if v.(int)%2 != 0 {
				return errors.New("must be even")
			}
			return nil
		}).
		MustBuild()

	_, err := s.ResolveValue(map[string]any{"x": 4})
	require.NoError(t, err)

	iss := resolveIssues(t, s, map[string]any{"x": 3})
	require.Len(t, iss, 1)
	assert.Equal(t, "x - must be even", iss[0].render())
	assert.Equal(t, CodeConstraint, iss[0].Code)
}

func TestFieldResolveHookRelocates(t *testing.T) {
	s := New().
		Field("x", rawKind{}).
		Resolve(func(r *Res) *Cursor { return r.Root.Get("nested").Get("deep") }).
		MustBuild()
	inst, err := s.ResolveValue(map[string]any{
		"nested": map[string]any{"deep": "found"},
	})
	require.NoError(t, err)
	assert.Equal(t, "found", inst.Attr("x"))
}

func TestFieldResolveHookNilMeansAbsent(t *testing.T) {
	s := New().
		Field("x", rawKind{}).Default("dv").
		Resolve(func(*Res) *Cursor { return nil }).
		MustBuild()
	inst, err := s.ResolveValue(map[string]any{"x": "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "dv", inst.Attr("x"))
}

func TestFieldParseHookOverridesKind(t *testing.T) {
	s := New().
		Field("x", strictIntKind{}).
		Parse(func(_ *Res, cur *Cursor) (any, error) {
			return fmt.Sprintf("<%v>", cur.Value()), nil
		}).
		MustBuild()
	inst, err := s.ResolveValue(map[string]any{"x": 7})
	require.NoError(t, err)
	assert.Equal(t, "<7>", inst.Attr("x"))
}

func TestFieldDeferredLeftUnsetWithoutError(t *testing.T) {
	s := New().Field("x", rawKind{}).Defer().MustBuild()
	inst, err := s.ResolveValue(map[string]any{})
	require.NoError(t, err)
	assert.False(t, inst.Has("x"))
}

func TestFieldComputeReadsSiblingsInDeclarationOrder(t *testing.T) {
	s := New().
		Field("base", strictIntKind{}).
		Field("double", rawKind{}).Compute(func(r *Res) (any, error) {
			return r.Instance.Attr("base").(int) * 2, nil
		}).
		Field("quad", rawKind{}).Compute(func(r *Res) (any, error) {
			return r.Instance.Attr("double").(int) * 2, nil
		}).
		MustBuild()

	inst, err := s.ResolveValue(map[string]any{"base": 3})
	require.NoError(t, err)
	assert.Equal(t, 6, inst.Attr("double"))
	assert.Equal(t, 12, inst.Attr("quad"))
}

func TestFieldComputeSkippedOnSiblingErrors(t *testing.T) {
	ran := false
	s := New().
		Field("base", strictIntKind{}).
		Field("derived", rawKind{}).Compute(func(r *Res) (any, error) {
			ran = true
			return r.Instance.Attr("base"), nil
		}).
		Field("fallback", rawKind{}).Default("safe").Compute(func(*Res) (any, error) {
			return "computed", nil
		}).
		MustBuild()

	errs := &Errors{}
	inst := s.ResolveInto(FromValue(map[string]any{"base": "bad"}), errs)
	assert.False(t, errs.Empty())
	assert.False(t, ran, "compute hook must not observe invalid state")
	assert.False(t, inst.Has("derived"))
	// independently defaulted computed fields still receive their fallback
	assert.Equal(t, "safe", inst.Attr("fallback"))

	inst, err := s.ResolveValue(map[string]any{"base": 1})
	require.NoError(t, err)
	assert.Equal(t, "computed", inst.Attr("fallback"))
	assert.Equal(t, 1, inst.Attr("derived"))
}

func TestFieldComputeHookError(t *testing.T) {
	s := New().
		Field("x", rawKind{}).Compute(func(*Res) (any, error) {
			return nil, errors.New("boom")
		}).
		MustBuild()
	iss := resolveIssues(t, s, map[string]any{})
	require.Len(t, iss, 1)
	assert.Equal(t, CodeHook, iss[0].Code)
	assert.Equal(t, "x - boom", iss[0].render())
}
