package macro

import (
	"go/ast"
	"maps"
	"go/token"
	"strconv"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// PostKind classifies the second argument of a call site.
type PostKind int

const (
	PostNone     PostKind = iota // absent, nil or ""
	PostYuan                     // "yuan" or "元": divide by 100, round to 2 places
	PostPercent                  // "%" or "percent": as PostYuan, then append "%"
	PostCallable                 // anything else, applied to the result
)

func (k PostKind) String() string {
	switch k {
	case PostNone:
		return "none"
	case PostYuan:
		return "yuan"
	case PostPercent:
		return "percent"
	case PostCallable:
		return "callable"
	default:
		return "unknown"
	}
}

// unitTags maps normalized string tags to their post-processing kind.
var unitTags = map[string]PostKind{
	"":        PostNone,
	"yuan":    PostYuan,
	"元":       PostYuan,
	"%":       PostPercent,
	"percent": PostPercent,
}

// UnitTags returns the string post-processors a call site recognises and the
// kind each one selects. Tags are matched after NFC and width folding.
func UnitTags() map[string]PostKind {
	return maps.Clone(unitTags)
}

const (
	unitDivisor = 100
	unitPlaces  = 2
)

// PostProcessor is the classified second argument of a call site.
type PostProcessor struct {
	Kind PostKind
	// Func is the callable for PostCallable.
	Func ast.Expr
	// Tag is the literal text when the argument was a string literal.
	Tag string
}

// ClassifyPostProcessor decides from the literal shape of arg which
// post-processing applies. arg may be nil when the call has one argument.
//
// String tags are compared after NFC normalization and width folding, so a
// full-width "％" is the percent tag. A string literal that is not a known tag
// is treated as a callable, like any other expression.
func ClassifyPostProcessor(arg ast.Expr) PostProcessor {
	switch a := unparen(arg).(type) {
	case nil:
		return PostProcessor{Kind: PostNone}
	case *ast.Ident:
		if a.Name == "nil" {
			return PostProcessor{Kind: PostNone}
		}
	case *ast.BasicLit:
		if a.Kind == token.STRING {
			s, err := strconv.Unquote(a.Value)
			if err == nil {
				tag := width.Fold.String(norm.NFC.String(s))
				if kind, ok := unitTags[tag]; ok {
					return PostProcessor{Kind: kind, Tag: s}
				}
				return PostProcessor{Kind: PostCallable, Func: arg, Tag: s}
			}
		}
	}
	return PostProcessor{Kind: PostCallable, Func: arg}
}

// PostProcess applies p to the rewritten numeric expression.
func (b Builder) PostProcess(result ast.Expr, p PostProcessor) ast.Expr {
	switch p.Kind {
	case PostYuan:
		return b.toUnit(result)
	case PostPercent:
		return &ast.BinaryExpr{
			X:  b.call(b.Runtime, fnString, b.toUnit(result)),
			Op: token.ADD,
			Y:  stringLit("%"),
		}
	case PostCallable:
		return &ast.CallExpr{Fun: callee(p.Func), Args: []ast.Expr{b.Coerce(result)}}
	default:
		return result
	}
}

// toUnit builds Round(Divide(Number(x), 100), 2).
func (b Builder) toUnit(x ast.Expr) ast.Expr {
	return b.call(b.Runtime, fnRound,
		b.call(b.Runtime, fnDivide, b.Coerce(x), intLit(unitDivisor)),
		intLit(unitPlaces),
	)
}

// callee parenthesizes fn unless it can be called as written.
func callee(fn ast.Expr) ast.Expr {
	switch fn.(type) {
	case *ast.Ident, *ast.SelectorExpr, *ast.CallExpr, *ast.IndexExpr,
		*ast.IndexListExpr, *ast.ParenExpr, *ast.FuncLit, *ast.BasicLit:
		return fn
	}
	return &ast.ParenExpr{X: fn}
}

func unparen(e ast.Expr) ast.Expr {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}
