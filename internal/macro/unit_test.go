package macro

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseUnit(t *testing.T, src string) (*Unit, *ast.File) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "unit.go", src, parser.ParseComments)
	require.NoError(t, err)
	return NewUnit(fset, file), file
}

func importsOf(file *ast.File) map[string]string {
	out := make(map[string]string)
	for _, spec := range file.Imports {
		p, _ := strconv.Unquote(spec.Path.Value)
		name := ""
		if spec.Name != nil {
			name = spec.Name.Name
		}
		out[p] = name
	}
	return out
}

func TestUnit_EnsureImport(t *testing.T) {
	tests := []struct {
		name        string
		src         string
		path        string
		local       string
		want        string
		wantImports int
	}{
		{
			name:        "adds named import",
			src:         "package p\n",
			path:        DefaultRuntimePath,
			local:       "np",
			want:        "np",
			wantImports: 1,
		},
		{
			name:        "reuses named import",
			src:         "package p\n\nimport prec \"" + DefaultRuntimePath + "\"\n",
			path:        DefaultRuntimePath,
			local:       "np",
			want:        "prec",
			wantImports: 1,
		},
		{
			name:        "reuses unnamed import",
			src:         "package p\n\nimport \"" + DefaultRuntimePath + "\"\n",
			path:        DefaultRuntimePath,
			local:       "np",
			want:        "precision",
			wantImports: 1,
		},
		{
			name:        "blank import is not usable",
			src:         "package p\n\nimport _ \"" + DefaultRuntimePath + "\"\n",
			path:        DefaultRuntimePath,
			local:       "np",
			want:        "np",
			wantImports: 2,
		},
		{
			name:        "adds math unnamed",
			src:         "package p\n\nimport \"fmt\"\n",
			path:        "math",
			want:        "math",
			wantImports: 2,
		},
		{
			name:        "reuses math",
			src:         "package p\n\nimport (\n\t\"fmt\"\n\t\"math\"\n)\n",
			path:        "math",
			want:        "math",
			wantImports: 2,
		},
		{
			name:        "avoids a taken name",
			src:         "package p\n\nimport np \"example.com/numpy\"\n",
			path:        DefaultRuntimePath,
			local:       "np",
			want:        "np2",
			wantImports: 2,
		},
		{
			name:        "avoids a parameter named math",
			src:         "package p\n\nfunc f(math float64) float64 { return math }\n",
			path:        "math",
			want:        "math2",
			wantImports: 1,
		},
		{
			name:        "avoids a local variable named np",
			src:         "package p\n\nfunc f() int {\n\tnp := 1\n\treturn np\n}\n",
			path:        DefaultRuntimePath,
			local:       "np",
			want:        "np2",
			wantImports: 1,
		},
		{
			name:        "avoids a package level name",
			src:         "package p\n\nvar np, np2 = 1, 2\n",
			path:        DefaultRuntimePath,
			local:       "np",
			want:        "np3",
			wantImports: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, file := parseUnit(t, tt.src)

			got := u.EnsureImport(tt.path, tt.local)
			assert.Equal(t, tt.want, got)
			assert.Len(t, file.Imports, tt.wantImports)
		})
	}
}

func TestUnit_EnsureImportOnce(t *testing.T) {
	u, file := parseUnit(t, "package p\n")

	for i := 0; i < 3; i++ {
		assert.Equal(t, "np", u.EnsureImport(DefaultRuntimePath, "np"))
		assert.Equal(t, "math", u.EnsureImport("math", ""))
	}

	imports := importsOf(file)
	assert.Len(t, imports, 2)
	assert.Equal(t, "np", imports[DefaultRuntimePath])
	assert.Equal(t, "", imports["math"])
}
