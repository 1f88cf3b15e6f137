package macro

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/build/constraint"
	"go/format"
	"go/parser"
	"go/token"
	"log/slog"
	"path"
	"path/filepath"
	"strconv"

	"golang.org/x/tools/go/ast/astutil"
)

// Import paths of the marker and runtime packages.
const (
	DefaultMarkerPath  = "github.com/leapstack-labs/npmacro/pkg/npm"
	DefaultRuntimePath = "github.com/leapstack-labs/npmacro/pkg/precision"
	DefaultRuntimeName = "np"
	DefaultBuildTag    = "npmacro"

	markerFunc = "Calc"
	mathPath   = "math"
)

// Options control how call sites are recognised and what the expansion imports.
type Options struct {
	MarkerPath  string
	RuntimePath string
	RuntimeName string
	// BuildTag is removed from //go:build lines that name only this tag.
	BuildTag string
	// Fallback is used when a call site has no third argument.
	Fallback string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MarkerPath:  DefaultMarkerPath,
		RuntimePath: DefaultRuntimePath,
		RuntimeName: DefaultRuntimeName,
		BuildTag:    DefaultBuildTag,
		Fallback:    DefaultFallback,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MarkerPath == "" {
		o.MarkerPath = d.MarkerPath
	}
	if o.RuntimePath == "" {
		o.RuntimePath = d.RuntimePath
	}
	if o.RuntimeName == "" {
		o.RuntimeName = d.RuntimeName
	}
	if o.Fallback == "" {
		o.Fallback = d.Fallback
	}
	return o
}

// Site describes one expanded call.
type Site struct {
	Line        int
	Column      int
	Source      string
	Post        PostKind
	Leaves      int
	Operators   int
	HasFallback bool
}

// FileResult is the expansion of one source file.
type FileResult struct {
	Path string
	// Output is the complete generated file, header included.
	Output []byte
	Sites  []Site
	// HasMarker reports whether the file imports the marker package.
	HasMarker bool
}

// ExprResult is the expansion of a single call, as produced by ExpandCall.
type ExprResult struct {
	Code    string
	Imports []string
	Site    Site
}

// Expander rewrites marker call sites. It holds no per-file state and is
// safe for concurrent use.
type Expander struct {
	opts   Options
	logger *slog.Logger
}

// New creates an Expander. A nil logger discards output.
func New(opts Options, logger *slog.Logger) *Expander {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Expander{opts: opts.withDefaults(), logger: logger}
}

// Options returns the effective options.
func (e *Expander) Options() Options { return e.opts }

// ExpandSource expands every call site in src and returns the generated file.
// Any malformed call site fails the whole file.
func (e *Expander) ExpandSource(filename string, src []byte) (*FileResult, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	markers, err := e.markerImports(fset, file)
	if err != nil {
		return nil, err
	}

	result := &FileResult{Path: filename, HasMarker: len(markers) > 0}
	if result.HasMarker {
		result.Sites, err = e.expandFile(fset, file, src, markers)
		if err != nil {
			return nil, err
		}
		e.deleteMarkerImports(fset, file)
	}
	e.stripBuildTag(file)

	var body bytes.Buffer
	if err := format.Node(&body, fset, file); err != nil {
		return nil, fmt.Errorf("print %s: %w", filename, err)
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "// Code generated by npmacro from %s. DO NOT EDIT.\n\n", filepath.Base(filename))
	out.Write(body.Bytes())

	formatted, err := format.Source(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", filename, err)
	}
	result.Output = formatted

	e.logger.Debug("expanded file",
		slog.String("file", filename),
		slog.Int("sites", len(result.Sites)),
		slog.Bool("marker", result.HasMarker))
	return result, nil
}

// ExpandCall expands the arguments of a single call, written as they would
// appear between the parentheses of npm.Calc(...). The generated code uses
// the configured runtime name and "math".
func (e *Expander) ExpandCall(args string) (*ExprResult, error) {
	fset := token.NewFileSet()
	src := []byte("package input\n\nvar _ = npm." + markerFunc + "(" + args + ")\n")
	file, err := parser.ParseFile(fset, "input.go", src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	call, ok := replCall(file)
	if !ok {
		return nil, fmt.Errorf("parse: %q is not a single call", args)
	}

	unit := NewUnit(fset, file)
	replacement, site, err := e.expandCall(fset, unit, call, src)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, replacement); err != nil {
		return nil, fmt.Errorf("print: %w", err)
	}

	res := &ExprResult{Code: buf.String(), Site: site}
	for _, spec := range file.Imports {
		res.Imports = append(res.Imports, importLine(spec))
	}
	return res, nil
}

// replCall finds the call in the single declaration built by ExpandCall.
func replCall(file *ast.File) (*ast.CallExpr, bool) {
	if len(file.Decls) != 1 {
		return nil, false
	}
	decl, ok := file.Decls[0].(*ast.GenDecl)
	if !ok || len(decl.Specs) != 1 {
		return nil, false
	}
	spec, ok := decl.Specs[0].(*ast.ValueSpec)
	if !ok || len(spec.Values) != 1 {
		return nil, false
	}
	call, ok := spec.Values[0].(*ast.CallExpr)
	return call, ok
}

// markerImports returns the local names under which the marker package is
// imported. Blank imports are ignored; a dot import is an error.
func (e *Expander) markerImports(fset *token.FileSet, file *ast.File) (map[string]bool, error) {
	names := make(map[string]bool)
	for _, spec := range file.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil || p != e.opts.MarkerPath {
			continue
		}
		switch {
		case spec.Name == nil:
			names[path.Base(p)] = true
		case spec.Name.Name == ".":
			return nil, newError(fset, spec.Pos(), ErrDotImport)
		case spec.Name.Name == "_":
		default:
			names[spec.Name.Name] = true
		}
	}
	return names, nil
}

// expandFile replaces each marker call in file, innermost first.
func (e *Expander) expandFile(fset *token.FileSet, file *ast.File, src []byte, markers map[string]bool) ([]Site, error) {
	unit := NewUnit(fset, file)

	var (
		sites []Site
		spans []ast.Node
		err   error
	)
	astutil.Apply(file, nil, func(c *astutil.Cursor) bool {
		switch n := c.Node().(type) {
		case *ast.SelectorExpr:
			if !isMarker(n, markers) {
				return true
			}
			if call, ok := c.Parent().(*ast.CallExpr); ok && c.Name() == "Fun" && call.Fun == n {
				return true
			}
			err = newError(fset, n.Pos(), ErrNotCalled)
			return false

		case *ast.CallExpr:
			sel, ok := n.Fun.(*ast.SelectorExpr)
			if !ok || !isMarker(sel, markers) {
				return true
			}
			var (
				replacement ast.Expr
				site        Site
			)
			replacement, site, err = e.expandCall(fset, unit, n, src)
			if err != nil {
				return false
			}
			c.Replace(replacement)
			sites = append(sites, site)
			spans = append(spans, n)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	dropComments(file, spans)
	return sites, nil
}

// dropComments removes comment groups that sit inside an expanded call. The
// printer anchors comments by position, and the replacement has none.
func dropComments(file *ast.File, spans []ast.Node) {
	if len(spans) == 0 {
		return
	}
	inside := func(g *ast.CommentGroup) bool {
		for _, n := range spans {
			if g.Pos() >= n.Pos() && g.End() <= n.End() {
				return true
			}
		}
		return false
	}
	groups := file.Comments[:0]
	for _, g := range file.Comments {
		if !inside(g) {
			groups = append(groups, g)
		}
	}
	file.Comments = groups
}

// deleteMarkerImports removes every import of the marker package.
func (e *Expander) deleteMarkerImports(fset *token.FileSet, file *ast.File) {
	specs := append([]*ast.ImportSpec(nil), file.Imports...)
	for _, spec := range specs {
		if p, _ := strconv.Unquote(spec.Path.Value); p == e.opts.MarkerPath {
			name := ""
			if spec.Name != nil {
				name = spec.Name.Name
			}
			astutil.DeleteNamedImport(fset, file, name, p)
		}
	}
}

func isMarker(sel *ast.SelectorExpr, markers map[string]bool) bool {
	x, ok := sel.X.(*ast.Ident)
	return ok && markers[x.Name] && sel.Sel.Name == markerFunc
}

// expandCall builds the replacement for one marker call.
func (e *Expander) expandCall(fset *token.FileSet, unit *Unit, call *ast.CallExpr, src []byte) (ast.Expr, Site, error) {
	switch {
	case len(call.Args) == 0:
		return nil, Site{}, newError(fset, call.Lparen, ErrNoArguments)
	case len(call.Args) > 3:
		return nil, Site{}, newError(fset, call.Args[3].Pos(), ErrTooManyArguments)
	case call.Ellipsis.IsValid():
		return nil, Site{}, newError(fset, call.Ellipsis, ErrVariadicCall)
	case isTypeExpr(call.Args[0]):
		return nil, Site{}, newError(fset, call.Args[0].Pos(), ErrNotExpression)
	}

	tree := FromAST(call.Args[0])

	var postArg, fallback ast.Expr
	if len(call.Args) > 1 {
		postArg = call.Args[1]
	}
	if len(call.Args) > 2 {
		fallback = call.Args[2]
	} else {
		fallback = stringLit(e.opts.Fallback)
	}
	post := ClassifyPostProcessor(postArg)
	if post.Kind == PostCallable && post.Tag != "" {
		pos := fset.Position(postArg.Pos())
		e.logger.Warn("unknown post-processor tag, treating as callable",
			slog.String("tag", post.Tag),
			slog.String("pos", pos.String()))
	}

	b := Builder{Runtime: unit.EnsureImport(e.opts.RuntimePath, e.opts.RuntimeName)}
	if usesMath(tree) {
		b.Math = unit.EnsureImport(mathPath, "")
	}

	rewritten, err := b.Rewrite(tree)
	if err != nil {
		return nil, Site{}, newError(fset, tree.Pos(), err)
	}
	if _, leaf := tree.(*Leaf); leaf && post.Kind == PostNone {
		rewritten = b.Coerce(rewritten)
	}
	success := b.PostProcess(rewritten, post)
	replacement := b.Assemble(b.Predicate(tree), success, fallback)

	pos := fset.Position(call.Pos())
	site := Site{
		Line:        pos.Line,
		Column:      pos.Column,
		Source:      sourceText(fset, src, call),
		Post:        post.Kind,
		Leaves:      len(Leaves(tree)),
		Operators:   countOperators(tree),
		HasFallback: len(call.Args) > 2,
	}
	return replacement, site, nil
}

// isTypeExpr reports whether e can only be a type.
func isTypeExpr(e ast.Expr) bool {
	switch unparen(e).(type) {
	case *ast.ArrayType, *ast.MapType, *ast.ChanType, *ast.FuncType,
		*ast.InterfaceType, *ast.StructType, *ast.Ellipsis:
		return true
	}
	return false
}

func sourceText(fset *token.FileSet, src []byte, n ast.Node) string {
	start, end := fset.Position(n.Pos()).Offset, fset.Position(n.End()).Offset
	if start < 0 || end > len(src) || start > end {
		return ""
	}
	return string(src[start:end])
}

// stripBuildTag removes build constraint lines that consist of the build tag
// alone. Constraints combining it with other tags are left alone.
func (e *Expander) stripBuildTag(file *ast.File) {
	if e.opts.BuildTag == "" {
		return
	}
	groups := file.Comments[:0]
	for _, g := range file.Comments {
		if g.Pos() < file.Package {
			list := g.List[:0]
			for _, c := range g.List {
				if !e.isOwnConstraint(c.Text) {
					list = append(list, c)
				}
			}
			g.List = list
			if len(list) == 0 {
				if file.Doc == g {
					file.Doc = nil
				}
				continue
			}
		}
		groups = append(groups, g)
	}
	file.Comments = groups
}

func (e *Expander) isOwnConstraint(line string) bool {
	if !constraint.IsGoBuild(line) && !constraint.IsPlusBuild(line) {
		return false
	}
	expr, err := constraint.Parse(line)
	if err != nil {
		return false
	}
	tag, ok := expr.(*constraint.TagExpr)
	return ok && tag.Tag == e.opts.BuildTag
}

func importLine(spec *ast.ImportSpec) string {
	if spec.Name != nil {
		return spec.Name.Name + " " + spec.Path.Value
	}
	return spec.Path.Value
}
