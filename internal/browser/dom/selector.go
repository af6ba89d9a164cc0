// internal/browser/dom/selector.go
package dom

import (
	"fmt"
	"strings"
)

// selectorToXPath translates a CSS selector into an XPath evaluated relative
// to a context node. The supported subset is what arrow selectors use in
// practice: type and universal selectors, #id, .class, [attr] and [attr=value],
// joined by descendant or child combinators.
func selectorToXPath(sel string) (string, error) {
	sel = strings.TrimSpace(sel)
	if sel == "" {
		return "", fmt.Errorf("%w: empty selector", ErrUnsupportedSelector)
	}

	var b strings.Builder
	b.WriteString(".")
	axis := "//"
	i := 0
	for i < len(sel) {
		switch c := sel[i]; {
		case c == ' ' || c == '\t' || c == '\n':
			i++
			continue
		case c == '>':
			if axis == "/" {
				return "", fmt.Errorf("%w: %q has consecutive combinators", ErrUnsupportedSelector, sel)
			}
			axis = "/"
			i++
			continue
		}

		step, next, err := compoundToXPath(sel, i)
		if err != nil {
			return "", err
		}
		b.WriteString(axis)
		b.WriteString(step)
		axis = "//"
		i = next

		// A compound ends at whitespace or a combinator; anything else is
		// outside the subset.
		if i < len(sel) && !strings.ContainsRune(" \t\n>", rune(sel[i])) {
			return "", fmt.Errorf("%w: %q at offset %d", ErrUnsupportedSelector, sel, i)
		}
	}
	if axis == "/" {
		return "", fmt.Errorf("%w: %q ends with a combinator", ErrUnsupportedSelector, sel)
	}
	return b.String(), nil
}

func compoundToXPath(sel string, i int) (string, int, error) {
	tag := "*"
	if i < len(sel) && sel[i] == '*' {
		i++
	} else if name, next := readIdent(sel, i); name != "" {
		tag = strings.ToLower(name)
		i = next
	}

	var preds []string
	for i < len(sel) {
		switch sel[i] {
		case '#':
			name, next := readIdent(sel, i+1)
			if name == "" {
				return "", i, fmt.Errorf("%w: %q has an empty id", ErrUnsupportedSelector, sel)
			}
			preds = append(preds, fmt.Sprintf("@id='%s'", name))
			i = next
		case '.':
			name, next := readIdent(sel, i+1)
			if name == "" {
				return "", i, fmt.Errorf("%w: %q has an empty class", ErrUnsupportedSelector, sel)
			}
			preds = append(preds, fmt.Sprintf("contains(concat(' ', normalize-space(@class), ' '), ' %s ')", name))
			i = next
		case '[':
			pred, next, err := attributeToXPath(sel, i)
			if err != nil {
				return "", i, err
			}
			preds = append(preds, pred)
			i = next
		default:
			if tag == "*" && len(preds) == 0 && sel[i] != '*' {
				return "", i, fmt.Errorf("%w: %q at offset %d", ErrUnsupportedSelector, sel, i)
			}
			return tag + wrapPredicates(preds), i, nil
		}
	}
	return tag + wrapPredicates(preds), i, nil
}

func attributeToXPath(sel string, i int) (string, int, error) {
	end := strings.IndexByte(sel[i:], ']')
	if end < 0 {
		return "", i, fmt.Errorf("%w: %q has an unterminated attribute", ErrUnsupportedSelector, sel)
	}
	body := strings.TrimSpace(sel[i+1 : i+end])
	next := i + end + 1

	name, value, hasValue := strings.Cut(body, "=")
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, "~|^$*") {
		return "", i, fmt.Errorf("%w: %q uses an unsupported attribute match", ErrUnsupportedSelector, sel)
	}
	if !hasValue {
		return "@" + name, next, nil
	}

	value = strings.TrimSpace(value)
	if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
		value = value[1 : len(value)-1]
	}
	if strings.Contains(value, "'") {
		return "", i, fmt.Errorf("%w: %q has a quote in an attribute value", ErrUnsupportedSelector, sel)
	}
	return fmt.Sprintf("@%s='%s'", name, value), next, nil
}

func wrapPredicates(preds []string) string {
	var b strings.Builder
	for _, p := range preds {
		b.WriteString("[")
		b.WriteString(p)
		b.WriteString("]")
	}
	return b.String()
}

func readIdent(s string, i int) (string, int) {
	start := i
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	return s[start:i], i
}

func isIdentChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_'
}
