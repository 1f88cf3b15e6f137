package macro

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
)

// Names exported by package precision that generated code calls.
const (
	fnNumber   = "Number"
	fnIsNaN    = "IsNaN"
	fnNotEmpty = "NotEmpty"
	fnAdd      = "Add"
	fnSubtract = "Subtract"
	fnMultiply = "Multiply"
	fnDivide   = "Divide"
	fnRound    = "Round"
	fnString   = "String"

	fnMod = "Mod"
	fnPow = "Pow"
)

// DefaultFallback is the value a call site evaluates to when an operand is invalid.
const DefaultFallback = "--"

// Builder emits the syntax for one translation unit. Runtime and Math are the
// local names under which package precision and package math are imported.
//
// Builder methods are pure: the output depends only on the arguments and the
// two qualifiers.
type Builder struct {
	Runtime string
	Math    string
}

// Coerce wraps x in the runtime's numeric conversion.
func (b Builder) Coerce(x ast.Expr) ast.Expr {
	return b.call(b.Runtime, fnNumber, x)
}

// operatorFuncs maps each operator to the function MapOperator emits. Mod and
// Pow come from package math.
var operatorFuncs = map[Operator]struct {
	math bool
	name string
}{
	OpAdd: {name: fnAdd},
	OpSub: {name: fnSubtract},
	OpMul: {name: fnMultiply},
	OpQuo: {name: fnDivide},
	OpRem: {math: true, name: fnMod},
	OpXor: {math: true, name: fnPow},
	OpPow: {math: true, name: fnPow},
}

// Operators returns the operators a call site may use.
func Operators() []Operator {
	return []Operator{OpAdd, OpSub, OpMul, OpQuo, OpRem, OpXor, OpPow}
}

// OperatorFunc returns the package ("precision" or "math") and name of the
// function that implements op in generated code.
func OperatorFunc(op Operator) (pkg, name string, ok bool) {
	fn, ok := operatorFuncs[op]
	if !ok {
		return "", "", false
	}
	if fn.math {
		return mathPath, fn.name, true
	}
	return "precision", fn.name, true
}

// MapOperator combines two rewritten operands with the safe equivalent of op.
// Both operands are coerced first.
func (b Builder) MapOperator(op Operator, left, right ast.Expr) (ast.Expr, error) {
	fn, ok := operatorFuncs[op]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOperator, op)
	}
	qualifier := b.Runtime
	if fn.math {
		qualifier = b.Math
	}
	return b.call(qualifier, fn.name, b.Coerce(left), b.Coerce(right)), nil
}

// Rewrite converts the tree bottom-up. Leaves are returned unchanged; the
// operator mapping coerces them where they are used.
func (b Builder) Rewrite(n Node) (ast.Expr, error) {
	switch n := n.(type) {
	case *BinaryOp:
		left, err := b.Rewrite(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.Rewrite(n.Right)
		if err != nil {
			return nil, err
		}
		return b.MapOperator(n.Op, left, right)
	case *Leaf:
		return n.Expr, nil
	}
	return nil, fmt.Errorf("unknown node %T", n)
}

// Predicate builds the validity check for the original tree: every leaf,
// left to right and including repeats, must be numeric and not "".
func (b Builder) Predicate(n Node) ast.Expr {
	switch n := n.(type) {
	case *BinaryOp:
		return and(b.Predicate(n.Left), b.Predicate(n.Right))
	case *Leaf:
		return and(
			&ast.UnaryExpr{Op: token.NOT, X: b.call(b.Runtime, fnIsNaN, n.Expr)},
			b.call(b.Runtime, fnNotEmpty, n.Expr),
		)
	}
	return ast.NewIdent("false")
}

// Assemble builds the expression that replaces a call site:
//
//	func() any {
//		if pred {
//			return success
//		}
//		return fallback
//	}()
//
// A nil fallback means the string DefaultFallback.
func (b Builder) Assemble(pred, success, fallback ast.Expr) ast.Expr {
	if fallback == nil {
		fallback = stringLit(DefaultFallback)
	}
	body := &ast.BlockStmt{List: []ast.Stmt{
		&ast.IfStmt{
			Cond: pred,
			Body: &ast.BlockStmt{List: []ast.Stmt{
				&ast.ReturnStmt{Results: []ast.Expr{success}},
			}},
		},
		&ast.ReturnStmt{Results: []ast.Expr{fallback}},
	}}
	lit := &ast.FuncLit{
		Type: &ast.FuncType{
			Params:  &ast.FieldList{},
			Results: &ast.FieldList{List: []*ast.Field{{Type: ast.NewIdent("any")}}},
		},
		Body: body,
	}
	return &ast.CallExpr{Fun: lit}
}

func (b Builder) call(pkg, fn string, args ...ast.Expr) *ast.CallExpr {
	return &ast.CallExpr{
		Fun:  &ast.SelectorExpr{X: ast.NewIdent(pkg), Sel: ast.NewIdent(fn)},
		Args: args,
	}
}

func and(x, y ast.Expr) ast.Expr {
	return &ast.BinaryExpr{X: x, Op: token.LAND, Y: y}
}

func stringLit(s string) *ast.BasicLit {
	return &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(s)}
}

func intLit(n int) *ast.BasicLit {
	return &ast.BasicLit{Kind: token.INT, Value: strconv.Itoa(n)}
}
