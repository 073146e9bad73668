package matching

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
)

// AsInteger returns v as an int64 when it holds a Go integer type.
// Booleans and floats are not integers.
func AsInteger(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	if n, ok := AsInteger(v); ok {
		return float64(n), true
	}
	switch f := v.(type) {
	case float32:
		return float64(f), true
	case float64:
		return f, true
	default:
		return 0, false
	}
}

// Equal compares two decoded JSON values. Numbers compare by value regardless
// of their Go type; everything else uses deep equality.
func Equal(a, b any) bool {
	fa, okA := asFloat(a)
	fb, okB := asFloat(b)
	if okA && okB {
		return fa == fb
	}
	if okA != okB {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// IsEmpty reports whether v carries no value: nil, "", zero, false or an
// empty collection. Empty actual values never take part in substitution.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	if f, ok := asFloat(v); ok {
		return f == 0
	}
	switch x := v.(type) {
	case string:
		return x == ""
	case bool:
		return !x
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	}
	return false
}

// Stringify renders a decoded JSON value the way it appears inside a JSON
// document: strings verbatim, numbers in shortest decimal form, composites as
// compact JSON.
func Stringify(v any) string {
	if n, ok := AsInteger(v); ok {
		return strconv.FormatInt(n, 10)
	}
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
