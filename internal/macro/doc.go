// Package macro rewrites npm.Calc call sites in Go source into precision-safe
// arithmetic.
//
// A call such as
//
//	npm.Calc(a + b*c, "yuan", "n/a")
//
// is replaced by an immediately invoked function literal that checks every
// operand with np.IsNaN and np.NotEmpty, evaluates the expression with the
// np.Add, np.Subtract, np.Multiply and np.Divide helpers, applies the
// post-processor and otherwise returns the fallback.
//
// The package works on go/ast only. It never evaluates an expression and
// does no type checking: operands are passed through np.Number at run time.
package macro
