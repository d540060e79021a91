package selector

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// EngineHTMLQuery is the registry name of the antchfx/htmlquery engine.
const EngineHTMLQuery = "htmlquery"

// HTMLQuery is an Engine backed by antchfx/htmlquery. XPath expressions are
// evaluated as given; anything else is treated as a CSS selector and
// translated with CSSToXPath first.
//
// A single path yields matches in document order. A "," group becomes an
// XPath union and yields the matches of each branch in turn, so "p, h1"
// returns every p before any h1 regardless of their position in the tree.
func HTMLQuery(query string, root *html.Node) ([]*html.Node, error) {
	expr, err := CSSToXPath(query)
	if err != nil {
		return nil, &ErrBadQuery{Query: query, Engine: EngineHTMLQuery, Cause: err}
	}
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, &ErrBadQuery{Query: query, Engine: EngineHTMLQuery, Cause: err}
	}
	return htmlquery.QuerySelectorAll(root, compiled), nil
}

// isXPath reports whether query already looks like an XPath expression.
func isXPath(query string) bool {
	return strings.HasPrefix(query, "/") ||
		strings.HasPrefix(query, "./") ||
		strings.HasPrefix(query, "..") ||
		strings.HasPrefix(query, "(") ||
		strings.Contains(query, "::")
}

// CSSToXPath translates a CSS selector subset into an XPath expression
// relative to the context node. Supported:
//   - tag: "article", "verb", "*"
//   - .class: ".content", "span.outer.wide"
//   - #id: "#main", "div#main"
//   - [attr], [attr=val]: "div[data-x]", "div[role=main]", `[title="a, b"]`
//   - descendant combinator (whitespace)
//   - groups separated by ","
//
// XPath input is returned unchanged.
func CSSToXPath(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("empty query")
	}
	if isXPath(query) {
		return query, nil
	}

	var branches []string
	groups, err := splitOutside(query, func(r rune) bool { return r == ',' }, false)
	if err != nil {
		return "", err
	}
	for _, sel := range groups {
		parts, err := splitOutside(sel, unicode.IsSpace, true)
		if err != nil {
			return "", err
		}
		if len(parts) == 0 {
			return "", fmt.Errorf("empty selector in group %q", query)
		}
		var sb strings.Builder
		sb.WriteString(".")
		for _, part := range parts {
			step, err := compoundToXPath(part)
			if err != nil {
				return "", err
			}
			sb.WriteString("//")
			sb.WriteString(step)
		}
		branches = append(branches, sb.String())
	}
	return strings.Join(branches, " | "), nil
}

// compoundToXPath converts "tag.class#id[attr=val]" into one XPath step.
func compoundToXPath(sel string) (string, error) {
	tag := "*"
	rest := sel
	if i := strings.IndexAny(rest, ".#["); i != 0 {
		if i < 0 {
			i = len(rest)
		}
		tag = rest[:i]
		rest = rest[i:]
	}
	if !validName(tag) && tag != "*" {
		return "", fmt.Errorf("invalid tag %q in %q", tag, sel)
	}

	var preds []string
	for rest != "" {
		switch rest[0] {
		case '.', '#':
			end := strings.IndexAny(rest[1:], ".#[")
			if end < 0 {
				end = len(rest) - 1
			}
			name := rest[1 : end+1]
			if !validName(name) {
				return "", fmt.Errorf("invalid name %q in %q", name, sel)
			}
			if rest[0] == '.' {
				preds = append(preds, fmt.Sprintf("contains(concat(' ', normalize-space(@class), ' '), ' %s ')", name))
			} else {
				preds = append(preds, fmt.Sprintf("@id='%s'", name))
			}
			rest = rest[end+1:]
		case '[':
			end := closingBracket(rest)
			if end < 0 {
				return "", fmt.Errorf("unterminated attribute selector in %q", sel)
			}
			pred, err := attrToXPath(rest[1:end])
			if err != nil {
				return "", fmt.Errorf("%w in %q", err, sel)
			}
			preds = append(preds, pred)
			rest = rest[end+1:]
		default:
			return "", fmt.Errorf("unsupported selector syntax %q", sel)
		}
	}

	if len(preds) == 0 {
		return tag, nil
	}
	return tag + "[" + strings.Join(preds, " and ") + "]", nil
}

// splitOutside splits s at runes matching sep, ignoring those inside
// [...] or quotes. With skipEmpty, runs of separators yield no empty parts.
func splitOutside(s string, sep func(rune) bool, skipEmpty bool) ([]string, error) {
	var parts []string
	var quote rune
	depth, start := 0, 0
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			if depth == 0 {
				return nil, fmt.Errorf("quote outside attribute selector in %q", s)
			}
			quote = r
		case r == '[':
			depth++
		case r == ']':
			if depth > 0 {
				depth--
			}
		case depth == 0 && sep(r):
			if part := s[start:i]; part != "" || !skipEmpty {
				parts = append(parts, part)
			}
			start = i + utf8.RuneLen(r)
		}
	}
	if quote != 0 || depth != 0 {
		return nil, fmt.Errorf("unterminated attribute selector in %q", s)
	}
	if part := s[start:]; part != "" || !skipEmpty {
		parts = append(parts, part)
	}
	return parts, nil
}

// closingBracket returns the index of the "]" closing the "[" at s[0],
// or -1. Brackets inside quotes do not count.
func closingBracket(s string) int {
	var quote byte
	for i := 1; i < len(s); i++ {
		switch c := s[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ']':
			return i
		}
	}
	return -1
}

// attrToXPath converts "attr" or "attr=val" into an XPath predicate.
func attrToXPath(expr string) (string, error) {
	key, val, hasVal := strings.Cut(expr, "=")
	key = strings.TrimSpace(key)
	if !validName(key) {
		return "", fmt.Errorf("invalid attribute %q", key)
	}
	if !hasVal {
		return "@" + key, nil
	}
	val = strings.Trim(strings.TrimSpace(val), `"'`)
	switch {
	case !strings.Contains(val, "'"):
		return fmt.Sprintf("@%s='%s'", key, val), nil
	case !strings.Contains(val, `"`):
		return fmt.Sprintf(`@%s="%s"`, key, val), nil
	}
	return "", fmt.Errorf("attribute value %q mixes quote styles", val)
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == ':':
		default:
			return false
		}
	}
	return true
}
