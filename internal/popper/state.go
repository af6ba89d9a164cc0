package popper

// ArrowOffsets is the arrow's position along the edge it shares with the
// reference. Element is nil when no arrow was found.
type ArrowOffsets struct {
	Element Element
	// Side is the style property carrying the offset: "left" for top/bottom
	// placements, "top" for left/right placements.
	Side  Side
	Value float64
}

// Present reports whether an arrow was positioned.
func (a ArrowOffsets) Present() bool { return a.Element != nil }

// Offsets groups the rectangles a pipeline pass works on.
type Offsets struct {
	// Popper is the only field modifiers are expected to change.
	Popper    OffsetRect
	Reference Rect
	Arrow     ArrowOffsets
}

// State is threaded through the modifier pipeline. It is a plain value: every
// modifier receives a copy and returns the state for the next step.
type State struct {
	Placement         Placement
	OriginalPlacement Placement
	Offsets           Offsets
	Boundaries        Boundaries
	HasBoundaries     bool
	Flipped           bool
}

// PopperRect is the popper's current rectangle with right/bottom derived.
func (s State) PopperRect() Rect { return AsClientRect(s.Offsets.Popper) }
