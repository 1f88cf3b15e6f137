package macro

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	expr, err := parser.ParseExpr(src)
	require.NoError(t, err, "parse %q", src)
	return expr
}

// render prints a tree with every operation parenthesized.
func render(n Node) string {
	switch n := n.(type) {
	case *BinaryOp:
		return "(" + render(n.Left) + " " + n.Op.String() + " " + render(n.Right) + ")"
	case *Leaf:
		return types.ExprString(n.Expr)
	}
	return "?"
}

func TestFromAST(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"a", "a"},
		{"a + b", "(a + b)"},
		{"a + b * c", "(a + (b * c))"},
		{"(a + b) * c", "((a + b) * c)"},
		{"a / b % c", "((a / b) % c)"},
		{"a - b - c", "((a - b) - c)"},
		{"a ^ b * c", "(a ^ (b * c))"},
		{"a ** b", "(a ** b)"},
		{"a ** b ** c", "(a ** (b ** c))"},
		{"a * b ** c", "(a * (b ** c))"},
		{"a ** b * c", "((a ** b) * c)"},
		{"a % b ** c", "(a % (b ** c))"},
		{"a + b ** c", "(a + (b ** c))"},
		{"(a * b) ** c", "((a * b) ** c)"},
		{"a ** (b + c)", "(a ** (b + c))"},
		{"a ** -b", "(a ** -b)"},
		{"a * b ** c ** d", "(a * (b ** (c ** d)))"},
		{"a << b + c", "(a << b + c)"},
		{"a == b", "a == b"},
		{"-a + f(b)", "(-a + f(b))"},
		{`x.Price * "2"`, `(x.Price * "2")`},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := render(FromAST(parseExpr(t, tt.src)))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromAST_ShiftIsLeaf(t *testing.T) {
	n := FromAST(parseExpr(t, "a << b + c"))

	op, ok := n.(*BinaryOp)
	require.True(t, ok)
	assert.Equal(t, OpAdd, op.Op)

	leaf, ok := op.Left.(*Leaf)
	require.True(t, ok)
	assert.Equal(t, "a << b", types.ExprString(leaf.Expr))
}

func TestLeaves(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"a", []string{"a"}},
		{"a + b * a", []string{"a", "b", "a"}},
		{"(x - y) / z", []string{"x", "y", "z"}},
		{"a ** b ** c", []string{"a", "b", "c"}},
		{"f(a + b) + c", []string{"f(a + b)", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			var got []string
			for _, l := range Leaves(FromAST(parseExpr(t, tt.src))) {
				got = append(got, types.ExprString(l.Expr))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUsesMath(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"a + b", false},
		{"a * b / c", false},
		{"a % b", true},
		{"a ^ b", true},
		{"a ** 2 + 1", true},
		{"a", false},
		{"f(a % b)", false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, usesMath(FromAST(parseExpr(t, tt.src))))
		})
	}
}

func TestCountOperators(t *testing.T) {
	assert.Equal(t, 0, countOperators(FromAST(parseExpr(t, "a"))))
	assert.Equal(t, 3, countOperators(FromAST(parseExpr(t, "a + b*c - d"))))
	assert.Equal(t, 2, countOperators(FromAST(parseExpr(t, "a ** b ** c"))))
}

func TestOperator_String(t *testing.T) {
	assert.Equal(t, "**", OpPow.String())
	assert.Equal(t, "%", OpRem.String())
	assert.Equal(t, "?", Operator(42).String())

	op, ok := operatorFor(token.XOR)
	assert.True(t, ok)
	assert.Equal(t, OpXor, op)

	_, ok = operatorFor(token.SHL)
	assert.False(t, ok)
}
