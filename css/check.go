// Package css looks into stylesheets which replace the built in EPUB one.
package css

import (
	"bytes"
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Summary describes parsed stylesheet. Imports and URLs name external
// resources which are not packaged into the book.
type Summary struct {
	Rules   int
	AtRules []string
	Imports []string
	URLs    []string
	Errors  []string
}

// Clean reports whether stylesheet is self contained and well formed.
func (s *Summary) Clean() bool {
	return len(s.Imports) == 0 && len(s.URLs) == 0 && len(s.Errors) == 0
}

// Inspect parses stylesheet data. It never fails, problems are collected in
// the summary.
func Inspect(data []byte, log *zap.Logger) *Summary {
	sum := &Summary{}
	p := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)

	for {
		gt, _, raw := p.Next()

		switch gt {
		case css.ErrorGrammar:
			err := p.Err()
			if errors.Is(err, io.EOF) {
				log.Debug("Stylesheet parsed", zap.Int("rules", sum.Rules), zap.Strings("at-rules", sum.AtRules))
				return sum
			}
			if err != nil {
				sum.Errors = append(sum.Errors, err.Error())
				return sum
			}
			sum.Errors = append(sum.Errors, "unexpected "+strings.TrimSpace(string(raw)))

		case css.AtRuleGrammar:
			if name := string(raw); name == "@import" {
				if url := importURL(p.Values()); url != "" {
					sum.Imports = append(sum.Imports, url)
				}
			} else {
				sum.AtRules = append(sum.AtRules, name)
			}

		case css.BeginAtRuleGrammar:
			sum.AtRules = append(sum.AtRules, string(raw))

		case css.BeginRulesetGrammar, css.QualifiedRuleGrammar:
			sum.Rules++

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			sum.URLs = append(sum.URLs, urls(p.Values())...)
		}
	}
}

// importURL extracts target of @import: "url", url("url") or url(url).
func importURL(tokens []css.Token) string {
	for _, t := range tokens {
		if t.TokenType == css.StringToken {
			return unquote(string(t.Data))
		}
	}
	if u := urls(tokens); len(u) > 0 {
		return u[0]
	}
	return ""
}

// urls collects url() references, quoted argument may come as function
// token followed by string.
func urls(tokens []css.Token) []string {
	var out []string
	for i, t := range tokens {
		switch {
		case t.TokenType == css.URLToken:
			out = append(out, urlValue(string(t.Data)))
		case t.TokenType == css.FunctionToken && strings.EqualFold(string(t.Data), "url(") &&
			i+1 < len(tokens) && tokens[i+1].TokenType == css.StringToken:
			out = append(out, unquote(string(tokens[i+1].Data)))
		}
	}
	return out
}

func urlValue(s string) string {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "url("), ")")
	return unquote(strings.TrimSpace(s))
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
