package css

import (
	"slices"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestInspect(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		rules   int
		imports []string
		urls    []string
		clean   bool
	}{
		{"empty", "", 0, nil, nil, true},
		{"plain", "body { margin: 0 }\np, h1 { text-indent: 1em; }", 2, nil, nil, true},
		{"media", "@media print { p { color: black } }", 1, nil, nil, true},
		{"import string", `@import "other.css"; p { color: red }`, 1, []string{"other.css"}, nil, false},
		{"import url", `@import url('x.css');`, 0, []string{"x.css"}, nil, false},
		{"font face", `@font-face { font-family: F; src: url("fonts/f.otf") }`, 0, nil, []string{"fonts/f.otf"}, false},
		{"background", `div { background: url(img.png) no-repeat }`, 1, nil, []string{"img.png"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := Inspect([]byte(tt.src), zaptest.NewLogger(t))
			if sum.Rules != tt.rules {
				t.Errorf("rules = %d, want %d", sum.Rules, tt.rules)
			}
			if !slices.Equal(sum.Imports, tt.imports) {
				t.Errorf("imports = %v, want %v", sum.Imports, tt.imports)
			}
			if !slices.Equal(sum.URLs, tt.urls) {
				t.Errorf("urls = %v, want %v", sum.URLs, tt.urls)
			}
			if sum.Clean() != tt.clean {
				t.Errorf("clean = %v, want %v (errors %v)", sum.Clean(), tt.clean, sum.Errors)
			}
		})
	}
}

func TestUnquote(t *testing.T) {
	for in, want := range map[string]string{`"a"`: "a", `'b'`: "b", `c`: "c", `"d'`: `"d'`, `"`: `"`} {
		if got := unquote(in); got != want {
			t.Errorf("unquote(%q) = %q, want %q", in, got, want)
		}
	}
}
