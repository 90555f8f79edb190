package formwork

import (
	json "github.com/goccy/go-json"
)

// Bind projects a resolved instance onto a typed struct through its plain
// mapping, honoring encoding/json field tags. It is a convenience for
// callers that want a concrete type rather than attribute access; schema
// validation has already happened by the time Bind runs.
func Bind[T any](inst *Instance) (T, error) {
	var out T
	b, err := json.Marshal(inst.Map())
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, err
	}
	return out, nil
}
