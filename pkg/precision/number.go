package precision

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Number converts v to a float64 the way JavaScript's Number() does.
//
// nil and the empty (or blank) string convert to 0, booleans to 0 or 1.
// Strings are trimmed and accept decimal notation, "Infinity" with an optional
// sign, and unsigned 0x, 0o and 0b prefixed integers. Values that cannot be
// converted yield NaN.
func Number(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return widen(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case uint:
		return float64(n)
	case uint64:
		return float64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		return parseNumber(n)
	case decimal.Decimal:
		return n.InexactFloat64()
	case *decimal.Decimal:
		if n == nil {
			return 0
		}
		return n.InexactFloat64()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32:
		return widen(float32(rv.Float()))
	case reflect.Float64:
		return rv.Float()
	case reflect.String:
		return parseNumber(rv.String())
	case reflect.Bool:
		if rv.Bool() {
			return 1
		}
		return 0
	case reflect.Pointer:
		if rv.IsNil() {
			return 0
		}
		return Number(rv.Elem().Interface())
	}

	if s, ok := v.(fmt.Stringer); ok {
		return parseNumber(s.String())
	}
	return math.NaN()
}

// IsNaN reports whether v does not convert to a number.
func IsNaN(v any) bool {
	return math.IsNaN(Number(v))
}

// NotEmpty reports whether v is anything other than the empty string.
// Blank strings convert to 0 in Number, so validity checks pair IsNaN with
// NotEmpty to reject unfilled inputs. Named string types and pointers to
// strings are checked like Number sees them.
func NotEmpty(v any) bool {
	if s, ok := v.(string); ok {
		return s != ""
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return true
		}
		rv = rv.Elem()
	}
	return rv.Kind() != reflect.String || rv.Len() > 0
}

// widen converts f through its shortest decimal form, so 0.1 stays 0.1
// instead of picking up the binary widening error.
func widen(f float32) float64 {
	w, err := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	if err != nil {
		return float64(f)
	}
	return w
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			if strings.Contains(s, "_") {
				return math.NaN()
			}
			u, err := strconv.ParseUint(s, 0, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(u)
		}
	}

	// ParseFloat also accepts "inf", "nan" and hex floats, none of which are numbers here.
	for _, r := range s {
		if !strings.ContainsRune("0123456789.eE+-", r) {
			return math.NaN()
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out of range values still carry a usable ±Inf.
		if errors.Is(err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	return f
}
