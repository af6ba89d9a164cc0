// internal/browser/dom/styles.go
package dom

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lsert/zarm-web/internal/popper"
)

// declaration is one "property: value" pair of an inline style attribute.
type declaration struct {
	property string
	value    string
}

// parseDeclarations splits a style attribute into declarations, keeping their
// order. Later duplicates win when the list is read through lookup.
func parseDeclarations(attr string) []declaration {
	var decls []declaration
	for _, part := range strings.Split(attr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		if prop == "" {
			continue
		}
		decls = append(decls, declaration{property: prop, value: val})
	}
	return decls
}

func formatDeclarations(decls []declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.property+": "+d.value)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "; ") + ";"
}

// styleMap resolves declarations into a property lookup and expands the
// shorthands the geometry model reads.
func styleMap(decls []declaration) map[string]string {
	m := make(map[string]string, len(decls))
	for _, d := range decls {
		m[d.property] = d.value
	}
	expandBoxShorthand(m, "margin")
	return m
}

// expandBoxShorthand fills the four longhands of a 1 to 4 value shorthand.
// Explicit longhands declared in the same attribute are kept.
func expandBoxShorthand(m map[string]string, shorthand string) {
	val, ok := m[shorthand]
	if !ok {
		return
	}
	parts := strings.Fields(val)
	var top, right, bottom, left string
	switch len(parts) {
	case 1:
		top, right, bottom, left = parts[0], parts[0], parts[0], parts[0]
	case 2:
		top, right, bottom, left = parts[0], parts[1], parts[0], parts[1]
	case 3:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[1]
	case 4:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[3]
	default:
		return
	}
	for prop, v := range map[string]string{"top": top, "right": right, "bottom": bottom, "left": left} {
		if _, set := m[shorthand+"-"+prop]; !set {
			m[shorthand+"-"+prop] = v
		}
	}
}

// lengthPx reads a pixel length. Bare numbers count as pixels; any other unit
// is unsupported.
func lengthPx(v string) (float64, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	v = strings.TrimSuffix(v, "px")
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// translation reads the x and y components of a translate3d or translate
// transform. Anything else yields zero.
func translation(v string) (x, y float64) {
	v = strings.TrimSpace(v)
	var args string
	switch {
	case strings.HasPrefix(v, "translate3d(") && strings.HasSuffix(v, ")"):
		args = v[len("translate3d(") : len(v)-1]
	case strings.HasPrefix(v, "translate(") && strings.HasSuffix(v, ")"):
		args = v[len("translate(") : len(v)-1]
	default:
		return 0, 0
	}
	parts := strings.Split(args, ",")
	if len(parts) > 0 {
		x, _ = lengthPx(parts[0])
	}
	if len(parts) > 1 {
		y, _ = lengthPx(parts[1])
	}
	return x, y
}

// mergeStyle applies style onto the declaration list. Existing properties are
// replaced in place, new ones are appended in name order, empty values remove
// the property.
func mergeStyle(decls []declaration, style popper.Style) []declaration {
	names := make([]string, 0, len(style))
	for name := range style {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := style[name]
		if value == "" {
			kept := decls[:0]
			for _, d := range decls {
				if d.property != name {
					kept = append(kept, d)
				}
			}
			decls = kept
			continue
		}
		idx := -1
		for i, d := range decls {
			if d.property == name {
				idx = i
			}
		}
		switch {
		case idx >= 0:
			decls[idx].value = value
		default:
			decls = append(decls, declaration{property: name, value: value})
		}
	}
	return decls
}
