package precision

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type cents int

type label string

func TestNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{name: "nil", in: nil, want: 0},
		{name: "float", in: 1.25, want: 1.25},
		{name: "int", in: 42, want: 42},
		{name: "int8 via reflection", in: int8(-3), want: -3},
		{name: "named int", in: cents(150), want: 150},
		{name: "true", in: true, want: 1},
		{name: "false", in: false, want: 0},
		{name: "empty string", in: "", want: 0},
		{name: "blank string", in: "   ", want: 0},
		{name: "padded decimal", in: " 12.5 ", want: 12.5},
		{name: "exponent", in: "1e3", want: 1000},
		{name: "leading dot", in: ".5", want: 0.5},
		{name: "hex", in: "0x10", want: 16},
		{name: "binary", in: "0b101", want: 5},
		{name: "infinity", in: "Infinity", want: math.Inf(1)},
		{name: "negative infinity", in: "-Infinity", want: math.Inf(-1)},
		{name: "named string", in: label("7"), want: 7},
		{name: "float32", in: float32(0.1), want: 0.1},
		{name: "float32 fraction", in: float32(134.14), want: 134.14},
		{name: "json number", in: json.Number("2.5"), want: 2.5},
		{name: "decimal", in: decimal.RequireFromString("19.99"), want: 19.99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(tt.in))
		})
	}
}

func TestNumber_NaN(t *testing.T) {
	inputs := []any{"abc", "1,000", "inf", "NaN", "0x", "-0x10", "1_000", "1e", ".", []int{1}, struct{}{}}

	for _, in := range inputs {
		assert.True(t, math.IsNaN(Number(in)), "Number(%#v) should be NaN", in)
	}
}

func TestIsNaN(t *testing.T) {
	assert.False(t, IsNaN(1))
	assert.False(t, IsNaN("3.14"))
	assert.False(t, IsNaN(""), "empty string coerces to 0")
	assert.True(t, IsNaN("three"))
	assert.True(t, IsNaN(math.NaN()))
}

func TestNotEmpty(t *testing.T) {
	assert.True(t, NotEmpty(0))
	assert.True(t, NotEmpty(" "))
	assert.True(t, NotEmpty(nil))
	assert.False(t, NotEmpty(""))

	empty, filled := "", "5"
	var missing *string
	assert.False(t, NotEmpty(label("")), "named empty string")
	assert.False(t, NotEmpty(&empty), "pointer to empty string")
	assert.True(t, NotEmpty(&filled))
	assert.True(t, NotEmpty(missing), "nil pointer coerces to 0")
	assert.True(t, NotEmpty(label("x")))
}

func TestNumber_Float32Arithmetic(t *testing.T) {
	tenth := float32(0.1)
	assert.Equal(t, 0.3, Add(Number(tenth), 0.2))
	assert.Equal(t, 0.3, Add(Number(&tenth), 0.2))
}
