package macro

import (
	"go/ast"
	"go/token"
	"path"
	"strconv"

	"golang.org/x/tools/go/ast/astutil"
)

// Unit is the per-file context shared by every call site in one file. It
// ensures each helper import is added at most once.
type Unit struct {
	fset  *token.FileSet
	file  *ast.File
	names map[string]string
}

// NewUnit returns the context for file.
func NewUnit(fset *token.FileSet, file *ast.File) *Unit {
	return &Unit{fset: fset, file: file, names: make(map[string]string)}
}

// EnsureImport makes sure importPath is imported and returns the name to
// qualify its members with. An existing import is reused under its name.
// Otherwise the import is added as name, or unnamed when name is empty or
// matches the last path element.
//
// Blank and dot imports cannot be used to qualify, so a named import is
// added next to them.
func (u *Unit) EnsureImport(importPath, name string) string {
	if q, ok := u.names[importPath]; ok {
		return q
	}
	if q, ok := u.existing(importPath); ok {
		u.names[importPath] = q
		return q
	}

	base := path.Base(importPath)
	if name == "" {
		name = base
	}
	name = u.free(name)
	if name == base && !u.shadowed(importPath) {
		astutil.AddImport(u.fset, u.file, importPath)
	} else {
		astutil.AddNamedImport(u.fset, u.file, name, importPath)
	}
	u.names[importPath] = name
	return name
}

// existing returns the usable qualifier of an existing import of importPath.
func (u *Unit) existing(importPath string) (string, bool) {
	for _, spec := range u.file.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil || p != importPath {
			continue
		}
		if spec.Name == nil {
			return path.Base(importPath), true
		}
		switch spec.Name.Name {
		case "_", ".":
			continue
		}
		return spec.Name.Name, true
	}
	return "", false
}

// free returns name, or name with a numeric suffix when another import or any
// identifier in the file already uses it. Identifiers are matched by name
// regardless of scope, so a parameter called math also moves the import.
func (u *Unit) free(name string) string {
	taken := make(map[string]bool)
	ast.Inspect(u.file, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok {
			taken[id.Name] = true
		}
		return true
	})
	for _, spec := range u.file.Imports {
		if spec.Name != nil {
			taken[spec.Name.Name] = true
			continue
		}
		if p, err := strconv.Unquote(spec.Path.Value); err == nil {
			taken[path.Base(p)] = true
		}
	}
	candidate := name
	for i := 2; taken[candidate]; i++ {
		candidate = name + strconv.Itoa(i)
	}
	return candidate
}

// shadowed reports whether importPath already appears as a blank or dot
// import. astutil.AddImport treats any import of the path as present, so a
// named import is required to get a usable qualifier.
func (u *Unit) shadowed(importPath string) bool {
	for _, spec := range u.file.Imports {
		if p, err := strconv.Unquote(spec.Path.Value); err == nil && p == importPath {
			return true
		}
	}
	return false
}
