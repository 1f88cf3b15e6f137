package precision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdd(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		rest []float64
		want float64
	}{
		{name: "binary fraction drift", a: 0.1, b: 0.2, want: 0.3},
		{name: "integers", a: 1, b: 1, want: 2},
		{name: "negative", a: -1.1, b: 0.1, want: -1},
		{name: "variadic", a: 0.1, b: 0.2, rest: []float64{0.3}, want: 0.6},
		{name: "infinity falls back to float arithmetic", a: math.Inf(1), b: 1, want: math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Add(tt.a, tt.b, tt.rest...))
		})
	}
}

func TestSubtract(t *testing.T) {
	assert.Equal(t, 0.3, Subtract(1.5, 1.2))
	assert.Equal(t, 1.0, Subtract(Add(1, 1), math.Mod(3, 2)))
	assert.Equal(t, 0.7, Subtract(1, 0.2, 0.1))
}

func TestMultiply(t *testing.T) {
	assert.Equal(t, 110.0, Multiply(1.1, 100))
	assert.Equal(t, 0.0021, Multiply(0.07, 0.03))
	assert.Equal(t, 3.0, Multiply(0.5, 2, 3))
}

func TestDivide(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want float64
	}{
		{name: "exact", a: 0.3, b: 0.1, want: 3},
		{name: "cents to yuan", a: 13413.64, b: 100, want: 134.1364},
		{name: "repeating", a: 1, b: 3, want: 1.0 / 3},
		{name: "by zero", a: 1, b: 0, want: math.Inf(1)},
		{name: "negative by zero", a: -1, b: 0, want: math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Divide(tt.a, tt.b))
		})
	}

	assert.True(t, math.IsNaN(Divide(0, 0)), "0/0 should be NaN")
}

func TestDivide_SmallQuotients(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
	}{
		{name: "below rounding places", a: 1, b: 1e17},
		{name: "repeating fraction", a: 2, b: 3e9},
		{name: "micro units", a: 0.000001, b: 3},
		{name: "negative", a: -5, b: 7e12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Divide(tt.a, tt.b)
			assert.NotZero(t, got)
			assert.InEpsilon(t, tt.a/tt.b, got, 1e-15)
		})
	}

	assert.Equal(t, 1e-17, Divide(1, 1e17))
}

func TestRound(t *testing.T) {
	tests := []struct {
		name   string
		v      float64
		places int
		want   float64
	}{
		{name: "yuan", v: 134.1364, places: 2, want: 134.14},
		{name: "binary half", v: 1.005, places: 2, want: 1.01},
		{name: "half away from zero", v: -2.5, places: 0, want: -3},
		{name: "tens", v: 1234, places: -1, want: 1230},
		{name: "nothing to round", v: 1.5, places: 3, want: 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Round(tt.v, tt.places))
		})
	}

	assert.True(t, math.IsNaN(Round(math.NaN(), 2)))
}

func TestString(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{v: 134.14, want: "134.14"},
		{v: 1, want: "1"},
		{v: -0.5, want: "-0.5"},
		{v: 0, want: "0"},
		{v: 1e21, want: "1e+21"},
		{v: 1e-7, want: "1e-7"},
		{v: math.NaN(), want: "NaN"},
		{v: math.Inf(-1), want: "-Infinity"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, String(tt.v))
		})
	}
}

// The call site scenarios below are the expansions npmacro emits, written out by hand.
func TestExpandedScenarios(t *testing.T) {
	t.Run("mixed operators", func(t *testing.T) {
		got := Subtract(Number(Add(Number(1), Number(1))), Number(math.Mod(Number(3), Number(2))))
		assert.Equal(t, 1.0, got)
	})

	t.Run("yuan", func(t *testing.T) {
		assert.Equal(t, 134.14, Round(Divide(Number(13413.64), 100), 2))
	})

	t.Run("percent", func(t *testing.T) {
		assert.Equal(t, "134.14%", String(Round(Divide(Number(13413.64), 100), 2))+"%")
	})

	t.Run("empty operand", func(t *testing.T) {
		a := ""
		valid := !IsNaN(1) && NotEmpty(1) && !IsNaN(a) && NotEmpty(a)
		assert.False(t, valid)
	})

	t.Run("callable", func(t *testing.T) {
		assert.Equal(t, 1.341324, math.Abs(Number(-1.341324)))
	})
}
