package infra

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestExtractMarker(t *testing.T) {
	marker, body, err := extractMarker("--sql 0f0557a2-1731-4fc6-8cbe-8540b1d2b6df\nselect 1;\n")
	if err != nil {
		t.Fatalf("extractMarker() error: %v", err)
	}
	if marker != "0f0557a2-1731-4fc6-8cbe-8540b1d2b6df" {
		t.Fatalf("marker = %q", marker)
	}
	if strings.TrimSpace(body) != "select 1;" {
		t.Fatalf("body = %q", body)
	}
}

func TestExtractMarkerRejectsUntagged(t *testing.T) {
	for _, q := range []string{"select 1;", "--sql not-a-uuid\nselect 1;", ""} {
		if _, _, err := extractMarker(q); err == nil {
			t.Fatalf("extractMarker(%q) expected error", q)
		}
	}
}

// Every inline query must carry a unique marker so log lines identify it.
func TestInlineQueriesCarryUniqueMarkers(t *testing.T) {
	dir := filepath.Join("..", "sqlinline")
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read sqlinline: %v", err)
	}
	seen := map[string]string{}
	fset := token.NewFileSet()
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".go") || strings.HasSuffix(e.Name(), "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, e.Name()), nil, 0)
		if err != nil {
			t.Fatalf("parse %s: %v", e.Name(), err)
		}
		ast.Inspect(file, func(n ast.Node) bool {
			spec, ok := n.(*ast.ValueSpec)
			if !ok {
				return true
			}
			for i, name := range spec.Names {
				if !strings.HasPrefix(name.Name, "Q") || i >= len(spec.Values) {
					continue
				}
				lit := firstLiteral(spec.Values[i])
				if lit == "" {
					t.Errorf("%s: %s is not a string literal", e.Name(), name.Name)
					continue
				}
				marker, _, err := extractMarker(lit)
				if err != nil {
					t.Errorf("%s: %s: %v", e.Name(), name.Name, err)
					continue
				}
				if prev, dup := seen[marker]; dup {
					t.Errorf("%s reuses marker of %s", name.Name, prev)
				}
				seen[marker] = name.Name
			}
			return true
		})
	}
	if len(seen) == 0 {
		t.Fatal("no inline queries found")
	}
}

// firstLiteral returns the left-most string literal of a concatenation.
func firstLiteral(expr ast.Expr) string {
	switch v := expr.(type) {
	case *ast.BasicLit:
		s, err := strconv.Unquote(v.Value)
		if err != nil {
			return ""
		}
		return s
	case *ast.BinaryExpr:
		return firstLiteral(v.X)
	}
	return ""
}
