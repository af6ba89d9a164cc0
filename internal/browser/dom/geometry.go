// internal/browser/dom/geometry.go
package dom

import (
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/lsert/zarm-web/internal/popper"
)

// The geometry model has no normal flow. Every box is placed from its inline
// style alone:
//   - static boxes sit at their parent's content origin, shifted by margins
//   - relative boxes add left/top to that
//   - absolute boxes are placed at left/top inside their positioned ancestor
//   - fixed boxes are placed at left/top inside the viewport
//
// Width and height come from the style; html and body default to the
// viewport. Scroll offsets are read from data attributes so a snapshot can
// carry the scroll state it was taken in.

const (
	scrollLeftAttr = "data-scroll-left"
	scrollTopAttr  = "data-scroll-top"
)

// box is the resolved inline geometry of one element.
type box struct {
	position   string
	left, top  float64
	width      float64
	height     float64
	margin     popper.Boundaries
	overflow   string
	translateX float64
	translateY float64
}

func (d *Document) boxOf(n *html.Node) box {
	m := styleMap(parseDeclarations(htmlquery.SelectAttr(n, "style")))
	b := box{position: strings.ToLower(m["position"])}
	if b.position == "" {
		b.position = "static"
	}
	b.left, _ = lengthPx(m["left"])
	b.top, _ = lengthPx(m["top"])

	var hasWidth, hasHeight bool
	b.width, hasWidth = lengthPx(m["width"])
	b.height, hasHeight = lengthPx(m["height"])
	if n == d.root || n == d.body {
		if !hasWidth {
			b.width = d.viewport.Width
		}
		if !hasHeight {
			b.height = d.viewport.Height
		}
	}

	b.margin.Top, _ = lengthPx(m["margin-top"])
	b.margin.Right, _ = lengthPx(m["margin-right"])
	b.margin.Bottom, _ = lengthPx(m["margin-bottom"])
	b.margin.Left, _ = lengthPx(m["margin-left"])

	b.overflow = strings.ToLower(m["overflow"] + " " + m["overflow-x"] + " " + m["overflow-y"])
	if d.transform != "" {
		b.translateX, b.translateY = translation(m[d.transform])
	}
	return b
}

func parentElement(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

// offsetParent is the nearest positioned ancestor, or the root for fixed boxes
// and boxes with none.
func (d *Document) offsetParent(n *html.Node) *html.Node {
	if n == d.root {
		return d.root
	}
	// Fixed boxes are laid out against the viewport.
	if d.boxOf(n).position == "fixed" {
		return d.root
	}
	for p := parentElement(n); p != nil; p = parentElement(p) {
		if p == d.root || p == d.body {
			return d.root
		}
		if d.boxOf(p).position != "static" {
			return p
		}
	}
	return d.root
}

func (d *Document) scrollOf(n *html.Node) (left, top float64) {
	left, _ = strconv.ParseFloat(htmlquery.SelectAttr(n, scrollLeftAttr), 64)
	top, _ = strconv.ParseFloat(htmlquery.SelectAttr(n, scrollTopAttr), 64)
	return left, top
}

// origin is the border box's top-left corner in viewport coordinates, before
// transforms.
func (d *Document) origin(n *html.Node) (x, y float64) {
	if n == d.root {
		sl, st := d.scrollOf(d.root)
		return -sl, -st
	}

	b := d.boxOf(n)
	switch b.position {
	case "fixed":
		return b.left + b.margin.Left, b.top + b.margin.Top
	case "absolute":
		px, py := d.contentOrigin(d.offsetParent(n))
		return px + b.left + b.margin.Left, py + b.top + b.margin.Top
	}

	parent := parentElement(n)
	if parent == nil {
		return 0, 0
	}
	x, y = d.contentOrigin(parent)
	x += b.margin.Left
	y += b.margin.Top
	if b.position == "relative" {
		x += b.left
		y += b.top
	}
	return x, y
}

// contentOrigin is where n's children start: its origin minus its own scroll.
// The root's scroll is already part of its origin.
func (d *Document) contentOrigin(n *html.Node) (x, y float64) {
	x, y = d.origin(n)
	if n != d.root {
		sl, st := d.scrollOf(n)
		x -= sl
		y -= st
	}
	return x, y
}

func (d *Document) withNode(el popper.Element, fn func(n *html.Node)) {
	n := d.nodeOf(el)
	if n == nil {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(n)
}

// BoundingRect is the element's border box in viewport coordinates, including
// its translation.
func (d *Document) BoundingRect(el popper.Element) (r popper.Rect) {
	d.withNode(el, func(n *html.Node) {
		b := d.boxOf(n)
		x, y := d.origin(n)
		r = popper.NewRect(x+b.translateX, y+b.translateY, b.width, b.height)
	})
	return r
}

// OffsetRect is the element's box relative to its offset parent.
func (d *Document) OffsetRect(el popper.Element) (r popper.Rect) {
	d.withNode(el, func(n *html.Node) {
		b := d.boxOf(n)
		if n == d.root {
			r = popper.NewRect(0, 0, b.width, b.height)
			return
		}
		x, y := d.origin(n)
		if b.position != "fixed" {
			px, py := d.contentOrigin(d.offsetParent(n))
			x -= px
			y -= py
		}
		r = popper.NewRect(x, y, b.width, b.height)
	})
	return r
}

// OuterSize is the border box plus margins.
func (d *Document) OuterSize(el popper.Element) (s popper.Size) {
	d.withNode(el, func(n *html.Node) {
		b := d.boxOf(n)
		s = popper.Size{
			Width:  b.width + b.margin.Left + b.margin.Right,
			Height: b.height + b.margin.Top + b.margin.Bottom,
		}
	})
	return s
}

// PositionedAncestor returns the nearest positioned ancestor, or the html
// element when el is fixed or has none.
func (d *Document) PositionedAncestor(el popper.Element) popper.Element {
	n := d.nodeOf(el)
	if n == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wrap(d.offsetParent(n))
}

// ScrollAncestor returns the nearest ancestor with overflow auto or scroll,
// or the html element.
func (d *Document) ScrollAncestor(el popper.Element) popper.Element {
	n := d.nodeOf(el)
	if n == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for p := parentElement(n); p != nil; p = parentElement(p) {
		if p == d.root || p == d.body {
			break
		}
		if ov := d.boxOf(p).overflow; strings.Contains(ov, "auto") || strings.Contains(ov, "scroll") {
			return d.wrap(p)
		}
	}
	return d.wrap(d.root)
}

// IsFixed reports whether the element or an ancestor below body is fixed.
func (d *Document) IsFixed(el popper.Element) (fixed bool) {
	d.withNode(el, func(n *html.Node) {
		for p := n; p != nil && p != d.body && p != d.root; p = parentElement(p) {
			if d.boxOf(p).position == "fixed" {
				fixed = true
				return
			}
		}
	})
	return fixed
}

// ScrollTop reads the element's vertical scroll offset. Body reports the
// window's.
func (d *Document) ScrollTop(el popper.Element) (top float64) {
	d.withNode(el, func(n *html.Node) {
		if n == d.body {
			n = d.root
		}
		_, top = d.scrollOf(n)
	})
	return top
}

// ScrollLeft reads the element's horizontal scroll offset. Body reports the
// window's.
func (d *Document) ScrollLeft(el popper.Element) (left float64) {
	d.withNode(el, func(n *html.Node) {
		if n == d.body {
			n = d.root
		}
		left, _ = d.scrollOf(n)
	})
	return left
}

// Viewport is the window's inner size.
func (d *Document) Viewport() popper.Size {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.viewport
}

// IsDocumentRoot reports whether el is the html or body element.
func (d *Document) IsDocumentRoot(el popper.Element) bool {
	n := d.nodeOf(el)
	return n != nil && (n == d.root || n == d.body)
}
