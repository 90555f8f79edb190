// Package formwork is a declarative data-shaping engine: it resolves the
// declared fields of a schema against an untyped, nested structure (JSON
// body, form post, config blob), coercing and validating each value, and
// produces either a fully populated instance or a single aggregate failure
// pinpointing every violation by path.
//
// A schema is built once and shared read-only:
//
//	message := formwork.New().
//		Field("headers", fields.Map(
//			fields.String().Choices("to", "from", "content-type"),
//			fields.String(),
//		)).
//		Field("body", fields.String().MaxLen(20)).
//		MustBuild()
//
//	inst, err := message.Resolve(source.MustJSON(body))
//
// Each field runs an ordered, per-stage overridable pipeline
// (resolve, parse, default, munge, filter, validate, compute); errors
// accumulate without short-circuiting sibling fields, and nested schema
// failures merge upward with re-pathed locations. Polymorphic schemas
// dispatch on a discriminant field through a Dispatcher registry.
package formwork
