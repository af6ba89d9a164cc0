// internal/browser/dom/styler.go
package dom

import (
	"strconv"

	"github.com/antchfx/htmlquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/lsert/zarm-web/internal/popper"
)

func setAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (d *Document) mutate(el popper.Element, fn func(n *html.Node)) {
	n := d.nodeOf(el)
	if n == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(n)
}

// ApplyStyle merges style into the element's style attribute. Empty values
// remove the property.
func (d *Document) ApplyStyle(el popper.Element, style popper.Style) {
	d.mutate(el, func(n *html.Node) {
		decls := mergeStyle(parseDeclarations(htmlquery.SelectAttr(n, "style")), style)
		if len(decls) == 0 {
			removeAttr(n, "style")
			return
		}
		setAttr(n, "style", formatDeclarations(decls))
	})
}

// SetAttribute sets an attribute on the element.
func (d *Document) SetAttribute(el popper.Element, name, value string) {
	d.mutate(el, func(n *html.Node) { setAttr(n, name, value) })
}

// RemoveAttribute removes an attribute from the element.
func (d *Document) RemoveAttribute(el popper.Element, name string) {
	d.mutate(el, func(n *html.Node) { removeAttr(n, name) })
}

// SupportedTransformProperty is the configured transform property.
func (d *Document) SupportedTransformProperty() string {
	return d.transform
}

// QuerySelector returns the first descendant of el matching a CSS selector.
// Selectors outside the supported subset match nothing.
func (d *Document) QuerySelector(el popper.Element, selector string) (popper.Element, bool) {
	n := d.nodeOf(el)
	if n == nil {
		return nil, false
	}
	expr, err := selectorToXPath(selector)
	if err != nil {
		d.logger.Warn("Selector ignored.", zap.String("selector", selector), zap.Error(err))
		return nil, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	found, err := htmlquery.Query(n, expr)
	if err != nil || found == nil {
		return nil, false
	}
	return d.wrap(found), true
}

// Remove detaches the element from the tree.
func (d *Document) Remove(el popper.Element) {
	d.mutate(el, func(n *html.Node) {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	})
}

// Attribute reads an attribute of the element, or "" when it is unset.
func (d *Document) Attribute(el popper.Element, name string) (value string) {
	d.withNode(el, func(n *html.Node) {
		value = htmlquery.SelectAttr(n, name)
	})
	return value
}
