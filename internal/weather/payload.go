package weather

import (
	"encoding/json"
	"math"
)

// Object returns the nested object stored under key. A missing key or a value
// that is not an object yields an empty Payload, so lookups can be chained.
func (p Payload) Object(key string) Payload {
	switch v := p[key].(type) {
	case Payload:
		return v
	case map[string]any:
		return Payload(v)
	default:
		return Payload{}
	}
}

// First returns the first element of the list under key when it is an object.
func (p Payload) First(key string) Payload {
	items, ok := p[key].([]any)
	if !ok || len(items) == 0 {
		return Payload{}
	}
	switch v := items[0].(type) {
	case Payload:
		return v
	case map[string]any:
		return Payload(v)
	default:
		return Payload{}
	}
}

// Number returns the numeric value under key. Booleans and strings are not numbers.
func (p Payload) Number(key string) (float64, bool) {
	return toFloat(p[key])
}

// Float returns the numeric value under key, or nil.
func (p Payload) Float(key string) *float64 {
	f, ok := p.Number(key)
	if !ok {
		return nil
	}
	return &f
}

// Int returns the value under key when it is a whole number, or nil.
func (p Payload) Int(key string) *int {
	f, ok := p.Number(key)
	if !ok || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	n := int(f)
	return &n
}

// Text returns the string value under key, or nil.
func (p Payload) Text(key string) *string {
	s, ok := p[key].(string)
	if !ok {
		return nil
	}
	return &s
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
