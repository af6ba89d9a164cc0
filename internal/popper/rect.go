// internal/popper/rect.go
package popper

import "math"

// -- Core Structures: Rectangles --

// Rect is a rectangle in some ancestor's coordinate space. Right and Bottom are
// always derived from Left/Top/Width/Height; construct it with NewRect or
// AsClientRect rather than by hand.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// NewRect builds a consistent rectangle from its origin and size.
func NewRect(left, top, width, height float64) Rect {
	return Rect{
		Left:   left,
		Top:    top,
		Width:  width,
		Height: height,
		Right:  left + width,
		Bottom: top + height,
	}
}

// Edge returns the coordinate of the given side.
func (r Rect) Edge(s Side) float64 {
	switch s {
	case SideTop:
		return r.Top
	case SideBottom:
		return r.Bottom
	case SideLeft:
		return r.Left
	case SideRight:
		return r.Right
	}
	return 0
}

// Translate returns the rectangle moved by dx, dy.
func (r Rect) Translate(dx, dy float64) Rect {
	return NewRect(r.Left+dx, r.Top+dy, r.Width, r.Height)
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Length returns the extent along the axis the side aligns on: height for
// left/right placements, width for top/bottom.
func (s Size) Length(side Side) float64 {
	if side.IsVertical() {
		return s.Height
	}
	return s.Width
}

// PositionMode is the CSS positioning strategy of a popper.
type PositionMode string

const (
	PositionAbsolute PositionMode = "absolute"
	PositionFixed    PositionMode = "fixed"
)

// OffsetRect is the popper's target box before right/bottom are derived. It
// carries the position mode it was computed for.
type OffsetRect struct {
	Position PositionMode `json:"position"`
	Left     float64      `json:"left"`
	Top      float64      `json:"top"`
	Width    float64      `json:"width"`
	Height   float64      `json:"height"`
}

// AsClientRect derives right and bottom. It is total.
func AsClientRect(o OffsetRect) Rect {
	return NewRect(o.Left, o.Top, o.Width, o.Height)
}

// withAxis returns a copy with the coordinate named by the side replaced:
// left/right write Left, top/bottom write Top.
func (o OffsetRect) withAxis(s Side, v float64) OffsetRect {
	if s == SideLeft || s == SideRight {
		o.Left = v
	} else {
		o.Top = v
	}
	return o
}

// Boundaries is the padded clamp rectangle a popper should stay inside.
type Boundaries struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Unbounded is a boundary that never clamps.
var Unbounded = Boundaries{
	Top:    math.Inf(-1),
	Right:  math.Inf(1),
	Bottom: math.Inf(1),
	Left:   math.Inf(-1),
}

// -- Rect Math --

// RectRelativeTo returns element's bounding rectangle in ancestor's coordinate
// space. With fixed set, the ancestor's rectangle is shifted by the current
// scroll offsets of its nearest scroll container, compensating for fixed
// elements escaping the scroll flow.
func RectRelativeTo(m Measurer, element, ancestor Element, fixed bool) Rect {
	elementRect := m.BoundingRect(element)
	parentRect := m.BoundingRect(ancestor)

	if fixed {
		scrollParent := m.ScrollAncestor(ancestor)
		parentRect = parentRect.Translate(m.ScrollLeft(scrollParent), m.ScrollTop(scrollParent))
	}

	return NewRect(
		elementRect.Left-parentRect.Left,
		elementRect.Top-parentRect.Top,
		elementRect.Width,
		elementRect.Height,
	)
}
