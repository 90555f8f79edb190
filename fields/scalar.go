package fields

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	formwork "github.com/formwork-go/formwork"
)

// Any is the identity kind: the raw value passes through untouched.
func Any() formwork.Kind { return anyKind{} }

type anyKind struct{}

func (anyKind) Coerce(cur *formwork.Cursor, _ *formwork.Errors) (any, error) {
	return cur.Value(), nil
}

func (anyKind) Check(formwork.Path, any, *formwork.Errors) {}

// StringKind coerces to string and carries length/pattern/choice
// constraints.
type StringKind struct {
	minLen, maxLen int
	pattern        *regexp.Regexp
	patternSrc     string
	choices        []string
}

// String returns a string kind with no constraints.
func String() *StringKind { return &StringKind{minLen: -1, maxLen: -1} }

// MinLen sets the inclusive minimum length.
func (k *StringKind) MinLen(n int) *StringKind { k.minLen = n; return k }

// MaxLen sets the inclusive maximum length.
func (k *StringKind) MaxLen(n int) *StringKind { k.maxLen = n; return k }

// Pattern requires the value to match expr (anchoring is the caller's
// business). Panics on an invalid expression, mirroring regexp.MustCompile.
func (k *StringKind) Pattern(expr string) *StringKind {
	k.pattern = regexp.MustCompile(expr)
	k.patternSrc = expr
	return k
}

// Choices restricts the value to the given literals.
func (k *StringKind) Choices(vals ...string) *StringKind {
	k.choices = append(k.choices, vals...)
	return k
}

func (k *StringKind) Coerce(cur *formwork.Cursor, _ *formwork.Errors) (any, error) {
	switch t := cur.Value().(type) {
	case nil:
		return nil, nil
	case string:
		return t, nil
	case bool, int, int8, int16, int32, int64, uint, uint64, float32, float64, json.Number:
		// sources are lenient about scalar spelling, like query parameters
		return fmt.Sprintf("%v", t), nil
	default:
		return nil, fmt.Errorf(`"%v" is not a string`, t)
	}
}

func (k *StringKind) Check(p formwork.Path, v any, errs *formwork.Errors) {
	s, ok := v.(string)
	if !ok {
		errs.InvalidType(p, `"%v" is not a string`, v)
		return
	}
	if k.minLen >= 0 && len(s) < k.minLen {
		errs.Invalid(p, `"%s" must have length >= %d`, s, k.minLen)
	}
	if k.maxLen >= 0 && len(s) > k.maxLen {
		errs.Invalid(p, `"%s" must have length <= %d`, s, k.maxLen)
	}
	if k.pattern != nil && !k.pattern.MatchString(s) {
		errs.Invalid(p, `"%s" must match pattern "%s"`, s, k.patternSrc)
	}
	if len(k.choices) > 0 {
		found := false
		for _, c := range k.choices {
			if s == c {
				found = true
				break
			}
		}
		if !found {
			if len(k.choices) == 1 {
				errs.Invalid(p, `"%s" is not "%s"`, s, k.choices[0])
			} else {
				errs.Invalid(p, `"%s" is not one of %s`, s, quoteJoin(k.choices))
			}
		}
	}
}

// IntKind coerces to int64 with optional range bounds.
type IntKind struct {
	min, max *int64
}

// Int returns an integer kind with no bounds.
func Int() *IntKind { return &IntKind{} }

// Min sets the inclusive lower bound.
func (k *IntKind) Min(n int64) *IntKind { k.min = &n; return k }

// Max sets the inclusive upper bound.
func (k *IntKind) Max(n int64) *IntKind { k.max = &n; return k }

// Range sets both bounds.
func (k *IntKind) Range(lo, hi int64) *IntKind { return k.Min(lo).Max(hi) }

func (k *IntKind) Coerce(cur *formwork.Cursor, _ *formwork.Errors) (any, error) {
	switch t := cur.Value().(type) {
	case nil:
		return nil, nil
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		if t != math.Trunc(t) {
			return nil, fmt.Errorf(`"%v" is not an integer`, t)
		}
		return int64(t), nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		if f, err := t.Float64(); err == nil && f == math.Trunc(f) {
			return int64(f), nil
		}
		return nil, fmt.Errorf(`"%v" is not an integer`, t)
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return nil, fmt.Errorf(`"%s" is not an integer`, t)
		}
		return n, nil
	default:
		return nil, fmt.Errorf(`"%v" is not an integer`, t)
	}
}

func (k *IntKind) Check(p formwork.Path, v any, errs *formwork.Errors) {
	n, ok := v.(int64)
	if !ok {
		errs.InvalidType(p, `"%v" is not an integer`, v)
		return
	}
	if k.min != nil && n < *k.min {
		errs.Invalid(p, `"%d" must be >= %d`, n, *k.min)
	}
	if k.max != nil && n > *k.max {
		errs.Invalid(p, `"%d" must be <= %d`, n, *k.max)
	}
}

// FloatKind coerces to float64 with optional range bounds.
type FloatKind struct {
	min, max *float64
}

// Float returns a float kind with no bounds.
func Float() *FloatKind { return &FloatKind{} }

// Min sets the inclusive lower bound.
func (k *FloatKind) Min(n float64) *FloatKind { k.min = &n; return k }

// Max sets the inclusive upper bound.
func (k *FloatKind) Max(n float64) *FloatKind { k.max = &n; return k }

// Range sets both bounds.
func (k *FloatKind) Range(lo, hi float64) *FloatKind { return k.Min(lo).Max(hi) }

func (k *FloatKind) Coerce(cur *formwork.Cursor, _ *formwork.Errors) (any, error) {
	switch t := cur.Value().(type) {
	case nil:
		return nil, nil
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf(`"%v" is not a float`, t)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, fmt.Errorf(`"%s" is not a float`, t)
		}
		return f, nil
	default:
		return nil, fmt.Errorf(`"%v" is not a float`, t)
	}
}

func (k *FloatKind) Check(p formwork.Path, v any, errs *formwork.Errors) {
	f, ok := v.(float64)
	if !ok {
		errs.InvalidType(p, `"%v" is not a float`, v)
		return
	}
	if k.min != nil && f < *k.min {
		errs.Invalid(p, `"%v" must be >= %v`, f, *k.min)
	}
	if k.max != nil && f > *k.max {
		errs.Invalid(p, `"%v" must be <= %v`, f, *k.max)
	}
}

// BoolKind coerces to bool, accepting the usual textual spellings.
type BoolKind struct{}

// Bool returns a boolean kind.
func Bool() *BoolKind { return &BoolKind{} }

func (k *BoolKind) Coerce(cur *formwork.Cursor, _ *formwork.Errors) (any, error) {
	switch t := cur.Value().(type) {
	case nil:
		return nil, nil
	case bool:
		return t, nil
	case int:
		return t != 0, nil
	case int64:
		return t != 0, nil
	case float64:
		return t != 0, nil
	case string:
		switch strings.ToLower(t) {
		case "0", "f", "false":
			return false, nil
		case "1", "t", "true":
			return true, nil
		}
		return nil, fmt.Errorf(`"%s" is not a boolean`, t)
	default:
		return nil, fmt.Errorf(`"%v" is not a boolean`, t)
	}
}

func (k *BoolKind) Check(p formwork.Path, v any, errs *formwork.Errors) {
	if _, ok := v.(bool); !ok {
		errs.InvalidType(p, `"%v" is not a boolean`, v)
	}
}

func quoteJoin(vals []string) string {
	quoted := make([]string, len(vals))
	for i, v := range vals {
		quoted[i] = `"` + v + `"`
	}
	return strings.Join(quoted, ", ")
}
