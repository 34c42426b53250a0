// Package merge deep-merges JSON-like value trees. Mappings are
// map[string]any, sequences are []any, nil is null and Undefined stands in
// for a missing value. Merges never mutate their inputs.
package merge
