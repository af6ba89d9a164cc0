// internal/browser/dom/xpath.go
package dom

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// UniqueXPath returns an XPath that selects exactly node. The nearest ancestor
// carrying an id anchors the path; otherwise it starts at the document root.
// Element keys are built from it, so it must stay stable while the document
// is only restyled.
func UniqueXPath(node *html.Node) string {
	if node == nil {
		return ""
	}

	var steps []string
	anchored := false
	for n := node; n != nil && n.Type != html.DocumentNode; n = n.Parent {
		if n.Type != html.ElementNode || n.Data == "" {
			continue
		}
		if id := htmlquery.SelectAttr(n, "id"); id != "" {
			steps = append(steps, fmt.Sprintf(`//*[@id='%s']`, id))
			anchored = true
			break
		}
		steps = append(steps, fmt.Sprintf("%s[%d]", strings.ToLower(n.Data), siblingIndex(n)))
	}
	if len(steps) == 0 {
		return "/"
	}

	var b strings.Builder
	if !anchored {
		b.WriteString("/")
	}
	for i := len(steps) - 1; i >= 0; i-- {
		b.WriteString(steps[i])
		if i > 0 {
			b.WriteString("/")
		}
	}
	return b.String()
}

// siblingIndex is the 1-based position of n among preceding siblings with the
// same tag.
func siblingIndex(n *html.Node) int {
	tag := strings.ToLower(n.Data)
	idx := 1
	for prev := n.PrevSibling; prev != nil; prev = prev.PrevSibling {
		if prev.Type == html.ElementNode && strings.ToLower(prev.Data) == tag {
			idx++
		}
	}
	return idx
}
