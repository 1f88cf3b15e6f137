package macro

import (
	"go/ast"
	"go/token"
)

// Operator is one of the arithmetic operators the expander rewrites.
type Operator int8

const (
	OpInvalid Operator = iota
	OpAdd              // +
	OpSub              // -
	OpMul              // *
	OpQuo              // /
	OpRem              // %
	OpXor              // ^, power
	OpPow              // **, power
)

var operatorSymbols = [...]string{
	OpInvalid: "?",
	OpAdd:     "+",
	OpSub:     "-",
	OpMul:     "*",
	OpQuo:     "/",
	OpRem:     "%",
	OpXor:     "^",
	OpPow:     "**",
}

func (op Operator) String() string {
	if op < 0 || int(op) >= len(operatorSymbols) {
		return "?"
	}
	return operatorSymbols[op]
}

// multiplicative reports whether op binds like Go's * / and %.
func (op Operator) multiplicative() bool {
	return op == OpMul || op == OpQuo || op == OpRem
}

// power reports whether op maps to exponentiation.
func (op Operator) power() bool {
	return op == OpXor || op == OpPow
}

// operatorFor maps a Go binary token to an Operator. ** has no token of its
// own and is recognised structurally in FromAST.
func operatorFor(tok token.Token) (Operator, bool) {
	switch tok {
	case token.ADD:
		return OpAdd, true
	case token.SUB:
		return OpSub, true
	case token.MUL:
		return OpMul, true
	case token.QUO:
		return OpQuo, true
	case token.REM:
		return OpRem, true
	case token.XOR:
		return OpXor, true
	}
	return OpInvalid, false
}

// Node is an expression tree node: either a *BinaryOp or a *Leaf.
type Node interface {
	Pos() token.Pos
	node()
}

// BinaryOp is an arithmetic operation over two sub-trees.
type BinaryOp struct {
	Op    Operator
	OpPos token.Pos
	Left  Node
	Right Node

	// grouped is set when the source wrapped the operation in parentheses.
	grouped bool
}

// Leaf is any operand the expander does not look into: literals, names,
// selectors, calls, unary expressions and non-arithmetic binary expressions.
type Leaf struct {
	Expr ast.Expr
}

func (b *BinaryOp) Pos() token.Pos { return b.Left.Pos() }
func (l *Leaf) Pos() token.Pos     { return l.Expr.Pos() }

func (*BinaryOp) node() {}
func (*Leaf) node()     {}

// FromAST builds the expression tree for expr.
//
// Go has no ** operator: the parser reads a ** b as a * (*b). A multiplication
// whose right operand is a dereference is therefore taken as a power, and
// re-associated so that it binds tighter than * / % and groups to the right.
func FromAST(expr ast.Expr) Node {
	switch e := expr.(type) {
	case *ast.ParenExpr:
		n := FromAST(e.X)
		if b, ok := n.(*BinaryOp); ok {
			b.grouped = true
		}
		return n

	case *ast.BinaryExpr:
		if e.Op == token.MUL {
			if star, ok := e.Y.(*ast.StarExpr); ok {
				return raise(FromAST(e.X), FromAST(star.X), e.OpPos)
			}
		}
		op, ok := operatorFor(e.Op)
		if !ok {
			return &Leaf{Expr: e}
		}
		return &BinaryOp{Op: op, OpPos: e.OpPos, Left: FromAST(e.X), Right: FromAST(e.Y)}
	}
	return &Leaf{Expr: expr}
}

// raise builds base ** exp, pushing the power down the right spine of an
// ungrouped multiplicative or ** chain that the Go parser built around it.
func raise(base, exp Node, pos token.Pos) Node {
	if b, ok := base.(*BinaryOp); ok && !b.grouped && (b.Op.multiplicative() || b.Op == OpPow) {
		b.Right = raise(b.Right, exp, pos)
		return b
	}
	return &BinaryOp{Op: OpPow, OpPos: pos, Left: base, Right: exp}
}

// Leaves returns the leaves of n left to right, depth first. A sub-expression
// that occurs twice is returned twice.
func Leaves(n Node) []*Leaf {
	var out []*Leaf
	var walk func(Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *BinaryOp:
			walk(n.Left)
			walk(n.Right)
		case *Leaf:
			out = append(out, n)
		}
	}
	walk(n)
	return out
}

// usesMath reports whether the rewritten form of n calls into package math.
func usesMath(n Node) bool {
	b, ok := n.(*BinaryOp)
	if !ok {
		return false
	}
	return b.Op == OpRem || b.Op.power() || usesMath(b.Left) || usesMath(b.Right)
}

// countOperators returns the number of BinaryOp nodes in n.
func countOperators(n Node) int {
	b, ok := n.(*BinaryOp)
	if !ok {
		return 0
	}
	return 1 + countOperators(b.Left) + countOperators(b.Right)
}
