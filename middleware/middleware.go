// Package middleware wires schema resolution into net/http boundaries. A
// request body is shaped before the handler runs; the handler reads the
// resolved instance from the request context and never sees raw input.
package middleware

import (
	"context"
	"net/http"

	json "github.com/goccy/go-json"

	formwork "github.com/formwork-go/formwork"
	"github.com/formwork-go/formwork/source"
)

// Resolver is the schema-side contract; *formwork.Schema and
// *formwork.Dispatcher both satisfy it.
type Resolver interface {
	Resolve(cur *formwork.Cursor) (*formwork.Instance, error)
}

type ctxKeyInstance struct{}

// ContextWithInstance attaches a resolved instance to the context.
func ContextWithInstance(ctx context.Context, inst *formwork.Instance) context.Context {
	return context.WithValue(ctx, ctxKeyInstance{}, inst)
}

// InstanceFromContext retrieves the resolved instance from the context.
func InstanceFromContext(ctx context.Context) (*formwork.Instance, bool) {
	inst, ok := ctx.Value(ctxKeyInstance{}).(*formwork.Instance)
	return inst, ok
}

// ErrorPayload shapes issues for JSON responses.
func ErrorPayload(iss formwork.Issues) map[string]any {
	out := make([]map[string]any, len(iss))
	for i, it := range iss {
		out[i] = map[string]any{
			"path":    it.Path.String(),
			"code":    it.Code,
			"message": it.Message,
		}
	}
	return map[string]any{"issues": out}
}

// ResolveJSON shapes the incoming JSON body through r, stores the instance in
// the request context, and on failure answers 400 with the issues payload
// without invoking the wrapped handler.
func ResolveJSON(r Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			cur, err := source.JSONReader(req.Body)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			inst, err := r.Resolve(cur)
			if err != nil {
				if iss, ok := formwork.AsIssues(err); ok {
					writeJSON(w, http.StatusBadRequest, ErrorPayload(iss))
					return
				}
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			next.ServeHTTP(w, req.WithContext(ContextWithInstance(req.Context(), inst)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
