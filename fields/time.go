package fields

import (
	"fmt"
	"time"

	formwork "github.com/formwork-go/formwork"
)

// TimeKind parses timestamps from a fixed layout with optional ordering
// bounds.
type TimeKind struct {
	layout        string
	after, before *time.Time
}

// Time returns a timestamp kind parsing the given layout.
func Time(layout string) *TimeKind { return &TimeKind{layout: layout} }

// RFC3339 returns a timestamp kind for the RFC3339 layout.
func RFC3339() *TimeKind { return Time(time.RFC3339) }

// After requires the value to be at or after t.
func (k *TimeKind) After(t time.Time) *TimeKind { k.after = &t; return k }

// Before requires the value to be at or before t.
func (k *TimeKind) Before(t time.Time) *TimeKind { k.before = &t; return k }

// Between sets both bounds.
func (k *TimeKind) Between(lo, hi time.Time) *TimeKind { return k.After(lo).Before(hi) }

func (k *TimeKind) Coerce(cur *formwork.Cursor, _ *formwork.Errors) (any, error) {
	switch t := cur.Value().(type) {
	case nil:
		return nil, nil
	case time.Time:
		return t, nil
	case string:
		ts, err := time.Parse(k.layout, t)
		if err != nil {
			return nil, fmt.Errorf(`"%s" does not match time format "%s"`, t, k.layout)
		}
		return ts, nil
	default:
		return nil, fmt.Errorf(`"%v" is not a timestamp`, t)
	}
}

func (k *TimeKind) Check(p formwork.Path, v any, errs *formwork.Errors) {
	ts, ok := v.(time.Time)
	if !ok {
		errs.InvalidType(p, `"%v" is not a timestamp`, v)
		return
	}
	if k.after != nil && ts.Before(*k.after) {
		errs.Invalid(p, "Must be after %s", k.after.Format(k.layout))
	}
	if k.before != nil && ts.After(*k.before) {
		errs.Invalid(p, "Must be before %s", k.before.Format(k.layout))
	}
}
