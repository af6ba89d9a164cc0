// internal/popper/offsets.go
package popper

// -- Offset Calculator --

// ComputeOffsets maps a placement to the popper's initial box. The reference
// rectangle is measured relative to the popper's positioned ancestor, then the
// popper is centred on the reference along the edge and laid flush against it
// on the placement side.
func ComputeOffsets(m Measurer, popper, reference Element, placement Placement, mode PositionMode) (OffsetRect, Rect) {
	side := placement.Side

	ref := RectRelativeTo(m, reference, m.PositionedAncestor(popper), mode == PositionFixed)
	size := m.OuterSize(popper)

	out := OffsetRect{
		Position: mode,
		Width:    size.Width,
		Height:   size.Height,
	}

	if side.IsVertical() {
		out.Top = ref.Top + ref.Height/2 - size.Height/2
		if side == SideLeft {
			out.Left = ref.Left - size.Width
		} else {
			out.Left = ref.Right
		}
	} else {
		out.Left = ref.Left + ref.Width/2 - size.Width/2
		if side == SideTop {
			out.Top = ref.Top - size.Height
		} else {
			out.Top = ref.Bottom
		}
	}

	return out, ref
}

// -- Boundary Calculator --

// ComputeBoundaries returns the viewport extent expressed in the coordinate
// space of the popper's positioned ancestor, shrunk by padding on every side.
// Scroll offsets are ignored in fixed mode because fixed boxes do not scroll.
func ComputeBoundaries(m Measurer, popper Element, mode PositionMode, padding float64) Boundaries {
	offsetParent := m.OffsetRect(m.PositionedAncestor(popper))
	scrollParent := m.ScrollAncestor(popper)

	var scrollTop, scrollLeft float64
	if mode != PositionFixed {
		scrollTop = m.ScrollTop(scrollParent)
		scrollLeft = m.ScrollLeft(scrollParent)
	}

	viewport := m.Viewport()
	b := Boundaries{
		Top:    0 - (offsetParent.Top - scrollTop),
		Right:  viewport.Width - (offsetParent.Left - scrollLeft),
		Bottom: viewport.Height - (offsetParent.Top - scrollTop),
		Left:   0 - (offsetParent.Left - scrollLeft),
	}

	b.Left += padding
	b.Right -= padding
	b.Top += padding
	b.Bottom -= padding
	return b
}
