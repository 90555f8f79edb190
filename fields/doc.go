// Package fields provides the built-in coercion kinds a schema field can be
// declared with: scalars (String, Int, Float, Bool, Decimal, Time),
// containers (List, Tuple, Map), and nested schemas (Sub, Poly). Every kind
// implements formwork.Kind; constraint violations accumulate on the
// resolution's error set rather than aborting it.
package fields
