package precision

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// divisionPrecision is the number of significant fractional digits kept by
// Divide when the quotient does not terminate. Quotients below 1 keep this many
// digits after their leading zeros.
const divisionPrecision = 20

// Add returns a + b (+ rest...) computed on the decimal representation of each operand.
func Add(a, b float64, rest ...float64) float64 {
	return fold(func(x, y decimal.Decimal) decimal.Decimal { return x.Add(y) },
		func(x, y float64) float64 { return x + y }, a, b, rest)
}

// Subtract returns a - b (- rest...) computed on the decimal representation of each operand.
func Subtract(a, b float64, rest ...float64) float64 {
	return fold(func(x, y decimal.Decimal) decimal.Decimal { return x.Sub(y) },
		func(x, y float64) float64 { return x - y }, a, b, rest)
}

// Multiply returns a * b (* rest...) computed on the decimal representation of each operand.
func Multiply(a, b float64, rest ...float64) float64 {
	return fold(func(x, y decimal.Decimal) decimal.Decimal { return x.Mul(y) },
		func(x, y float64) float64 { return x * y }, a, b, rest)
}

// Divide returns a / b (/ rest...). Division by zero follows IEEE 754 and
// yields ±Inf or NaN rather than failing.
func Divide(a, b float64, rest ...float64) float64 {
	result := divide(a, b)
	for _, r := range rest {
		result = divide(result, r)
	}
	return result
}

func divide(a, b float64) float64 {
	if b == 0 || !finite(a) || !finite(b) {
		return a / b
	}
	return decimal.NewFromFloat(a).DivRound(decimal.NewFromFloat(b), divisionPlaces(a, b)).InexactFloat64()
}

// divisionPlaces returns the fractional digits needed to keep
// divisionPrecision significant digits of a / b.
func divisionPlaces(a, b float64) int32 {
	places := int32(divisionPrecision)
	if q := math.Abs(a / b); q > 0 && q < 1 {
		places += int32(-math.Floor(math.Log10(q)))
	}
	return places
}

// Round rounds v to places fractional digits, halves away from zero.
// Negative places round to tens, hundreds, and so on.
func Round(v float64, places int) float64 {
	if !finite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(int32(places)).InexactFloat64()
}

// String renders v the way JavaScript converts a number to a string: the
// shortest representation that round-trips, "NaN" and "Infinity" for the
// special values, and exponent notation only for very large or small magnitudes.
func String(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(v, 'g', -1, 64)
		return strings.NewReplacer("e+0", "e+", "e-0", "e-").Replace(s)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fold(exact func(x, y decimal.Decimal) decimal.Decimal, native func(x, y float64) float64, a, b float64, rest []float64) float64 {
	result := step(exact, native, a, b)
	for _, r := range rest {
		result = step(exact, native, result, r)
	}
	return result
}

func step(exact func(x, y decimal.Decimal) decimal.Decimal, native func(x, y float64) float64, a, b float64) float64 {
	if !finite(a) || !finite(b) {
		return native(a, b)
	}
	return exact(decimal.NewFromFloat(a), decimal.NewFromFloat(b)).InexactFloat64()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
