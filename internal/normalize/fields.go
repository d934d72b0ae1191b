package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Raw record field access. The extractor returns a decoded JSON object with
// no guarantees: any field may be missing, null, the literal string "null",
// or the wrong type. Numeric accessors are deliberately lenient: a value
// that cannot be read as a number degrades to absent instead of failing.

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "null" {
		return ""
	}
	return s
}

func optionalString(m map[string]any, key string) *string {
	s := stringField(m, key)
	if s == "" {
		return nil
	}
	return &s
}

func optionalFloat(m map[string]any, key string) *float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		s := strings.TrimSpace(val)
		if s == "" || s == "null" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// optionalAmount reads a monetary field into COP minor units, rounding any
// fractional input to the nearest whole peso.
func optionalAmount(m map[string]any, key string) *int64 {
	f := optionalFloat(m, key)
	if f == nil {
		return nil
	}
	n := int64(math.Round(*f))
	return &n
}
