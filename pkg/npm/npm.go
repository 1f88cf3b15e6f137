// Package npm is the marker package recognised by the npmacro expander.
//
// Source files that use it carry the build constraint
//
//	//go:build npmacro
//
// and call Calc with an ordinary Go arithmetic expression:
//
//	total := npm.Calc((price + shipping) * qty)
//	amount := npm.Calc(cents, "yuan")
//	rate := npm.Calc(hits / total * 100, "%", "n/a")
//	abs := npm.Calc(delta, math.Abs)
//
// Running `npmacro expand` writes a sibling file in which every call is
// replaced by precision-safe arithmetic from package precision, guarded by a
// check that every operand is numeric and non-empty.
package npm

// Calc marks an expression for expansion. The optional arguments are a
// post-processor (nil, "", "yuan", "元", "%", "percent" or a func(float64) T)
// and a fallback returned when an operand is not a valid number ("--" when
// omitted).
//
// Calc has no runtime behaviour: reaching it means the file was compiled
// without being expanded first.
func Calc(expr any, args ...any) any {
	panic("npm.Calc called at runtime: run `npmacro expand` on this file and build the generated output instead")
}
