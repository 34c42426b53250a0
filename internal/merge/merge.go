package merge

import "math"

type undefined struct{}

// Undefined marks a value that is absent rather than null. A source key
// holding Undefined leaves the target value untouched.
var Undefined any = undefined{}

// Option configures FastMerge.
type Option func(*options)

type options struct {
	removeNulls bool
}

// KeepNullValues disables null pruning so explicit nulls survive the merge.
func KeepNullValues() Option {
	return func(o *options) {
		o.removeNulls = false
	}
}

// WithNullPruning sets null pruning explicitly.
func WithNullPruning(enabled bool) Option {
	return func(o *options) {
		o.removeNulls = enabled
	}
}

// FastMerge merges source into target and returns a new tree.
//
// A source that is a sequence, null or Undefined replaces target wholesale.
// Otherwise the result is a fresh mapping seeded with target's keys and
// overlaid with source's keys; nested mappings merge recursively when the
// target holds a truthy value for the key. With null pruning (the default)
// keys whose target or source value is null are dropped.
func FastMerge(target, source any, opts ...Option) any {
	cfg := options{removeNulls: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return fastMerge(target, source, cfg.removeNulls)
}

// Merger carries merge settings for configuration-driven callers.
type Merger struct {
	RemoveNullObjectValues bool
}

// Merge applies FastMerge with the merger's settings.
func (m Merger) Merge(target, source any) any {
	return fastMerge(target, source, m.RemoveNullObjectValues)
}

func fastMerge(target, source any, removeNulls bool) any {
	sourceMap, ok := source.(map[string]any)
	if !ok || sourceMap == nil {
		// sequences, nulls, undefined and scalars are never merged key-wise
		return source
	}
	return mergeObject(target, sourceMap, removeNulls)
}

func mergeObject(target any, source map[string]any, removeNulls bool) map[string]any {
	targetMap, _ := target.(map[string]any)
	result := make(map[string]any, len(targetMap)+len(source))

	for key, targetValue := range targetMap {
		sourceValue, inSource := source[key]
		if removeNulls && (targetValue == nil || (inSource && sourceValue == nil)) {
			continue
		}
		result[key] = targetValue
	}

	for key, sourceValue := range source {
		if sourceValue == Undefined {
			continue
		}
		if sourceValue == nil {
			if removeNulls {
				delete(result, key)
				continue
			}
			result[key] = nil
			continue
		}

		targetValue, inTarget := targetMap[key]
		if IsMergeable(sourceValue) && inTarget && truthy(targetValue) {
			result[key] = fastMerge(targetValue, sourceValue, removeNulls)
			continue
		}
		result[key] = sourceValue
	}

	return result
}

// IsMergeable reports whether v is a mapping that merges field by field.
// Sequences, times, regular expressions and every other value are opaque.
func IsMergeable(v any) bool {
	m, ok := v.(map[string]any)
	return ok && m != nil
}

// truthy follows JavaScript truthiness for the value kinds a decoded tree
// can hold.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil, undefined:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int8:
		return t != 0
	case int16:
		return t != 0
	case int32:
		return t != 0
	case int64:
		return t != 0
	case uint:
		return t != 0
	case uint8:
		return t != 0
	case uint16:
		return t != 0
	case uint32:
		return t != 0
	case uint64:
		return t != 0
	case float32:
		return t != 0 && !math.IsNaN(float64(t))
	case float64:
		return t != 0 && !math.IsNaN(t)
	}
	return true
}
