// Package precision is the runtime half of npmacro: the arithmetic helpers that
// expanded npm.Calc call sites invoke.
//
// Operands are float64 values, but additions, subtractions, multiplications,
// divisions and rounding are carried out on the shortest decimal representation
// of each operand, so results such as Add(0.1, 0.2) are exactly 0.3 instead of
// 0.30000000000000004.
//
// Number, IsNaN and NotEmpty implement the loose numeric coercion that the
// generated validity checks rely on: strings from form inputs, json.Number
// values and the usual Go numeric kinds are all accepted.
//
// Example:
//
//	price := precision.Divide(precision.Number("13413.64"), 100)
//	label := precision.String(precision.Round(price, 2)) // "134.14"
package precision
