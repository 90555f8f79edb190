package fields

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	formwork "github.com/formwork-go/formwork"
)

// DecimalKind coerces to decimal.Decimal, preserving exact numeric text for
// money-like values that must not pass through float64.
type DecimalKind struct {
	min, max *decimal.Decimal
}

// Decimal returns a decimal kind with no bounds.
func Decimal() *DecimalKind { return &DecimalKind{} }

// Min sets the inclusive lower bound.
func (k *DecimalKind) Min(d decimal.Decimal) *DecimalKind { k.min = &d; return k }

// Max sets the inclusive upper bound.
func (k *DecimalKind) Max(d decimal.Decimal) *DecimalKind { k.max = &d; return k }

func (k *DecimalKind) Coerce(cur *formwork.Cursor, _ *formwork.Errors) (any, error) {
	switch t := cur.Value().(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		return t, nil
	case string:
		d, err := decimal.NewFromString(t)
		if err != nil {
			return nil, fmt.Errorf(`"%s" is not a decimal`, t)
		}
		return d, nil
	case json.Number:
		d, err := decimal.NewFromString(string(t))
		if err != nil {
			return nil, fmt.Errorf(`"%s" is not a decimal`, t)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	default:
		return nil, fmt.Errorf(`"%v" is not a decimal`, t)
	}
}

func (k *DecimalKind) Check(p formwork.Path, v any, errs *formwork.Errors) {
	d, ok := v.(decimal.Decimal)
	if !ok {
		errs.InvalidType(p, `"%v" is not a decimal`, v)
		return
	}
	if k.min != nil && d.Cmp(*k.min) < 0 {
		errs.Invalid(p, `"%s" must be >= %s`, d.String(), k.min.String())
	}
	if k.max != nil && d.Cmp(*k.max) > 0 {
		errs.Invalid(p, `"%s" must be <= %s`, d.String(), k.max.String())
	}
}
