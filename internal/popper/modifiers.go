// internal/popper/modifiers.go
package popper

import (
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"
)

// arrowMargin keeps the arrow this many pixels away from the popper's corners.
const arrowMargin = 6

// placementAttribute records the resolved placement on the popper element.
const placementAttribute = "x-placement"

// builtinModifiers binds each built-in name to its implementation. Names are
// resolved against this table once, when a Popper is constructed.
var builtinModifiers = map[string]func(p *Popper) ModifierFunc{
	ModifierShift:           func(*Popper) ModifierFunc { return Shift },
	ModifierOffset:          func(p *Popper) ModifierFunc { return OffsetBy(p.opts.Offset) },
	ModifierPreventOverflow: func(p *Popper) ModifierFunc { return PreventOverflow(p.opts.PreventOverflowOrder...) },
	ModifierKeepTogether:    func(*Popper) ModifierFunc { return KeepTogether },
	ModifierArrow:           func(p *Popper) ModifierFunc { return p.arrow },
	ModifierFlip:            func(p *Popper) ModifierFunc { return p.flip },
	ModifierApplyStyle:      func(p *Popper) ModifierFunc { return p.applyStyle },
}

// IsBuiltinModifier reports whether name refers to a built-in modifier.
func IsBuiltinModifier(name string) bool {
	_, ok := builtinModifiers[name]
	return ok
}

// -- Pure modifiers --

// Shift aligns the popper with the start or end of the reference edge when the
// placement carries a variation.
func Shift(s State) State {
	if s.Placement.Variation == VariationNone {
		return s
	}
	ref := s.Offsets.Reference
	popper := s.Offsets.Popper
	end := s.Placement.Variation == VariationEnd

	if s.Placement.Side.IsVertical() {
		popper.Top = ref.Top
		if end {
			popper.Top = ref.Top + ref.Height - popper.Height
		}
	} else {
		popper.Left = ref.Left
		if end {
			popper.Left = ref.Left + ref.Width - popper.Width
		}
	}
	s.Offsets.Popper = popper
	return s
}

// OffsetBy nudges the popper along its placement edge by distance pixels.
func OffsetBy(distance float64) ModifierFunc {
	return func(s State) State {
		if distance == 0 {
			return s
		}
		switch s.Placement.Side {
		case SideLeft:
			s.Offsets.Popper.Top -= distance
		case SideRight:
			s.Offsets.Popper.Top += distance
		case SideTop:
			s.Offsets.Popper.Left -= distance
		case SideBottom:
			s.Offsets.Popper.Left += distance
		}
		return s
	}
}

// PreventOverflow clamps the popper inside the state's boundaries, one side at
// a time in the given order. A later side may undo part of an earlier
// correction; only the position changes, never the size.
func PreventOverflow(order ...Side) ModifierFunc {
	order = append([]Side(nil), order...)
	return func(s State) State {
		if !s.HasBoundaries {
			return s
		}
		b := s.Boundaries
		for _, side := range order {
			popper := s.PopperRect()
			switch side {
			case SideLeft:
				if popper.Left < b.Left {
					s.Offsets.Popper.Left = math.Max(popper.Left, b.Left)
				}
			case SideRight:
				if popper.Right > b.Right {
					s.Offsets.Popper.Left = math.Min(popper.Left, b.Right-popper.Width)
				}
			case SideTop:
				if popper.Top < b.Top {
					s.Offsets.Popper.Top = math.Max(popper.Top, b.Top)
				}
			case SideBottom:
				if popper.Bottom > b.Bottom {
					s.Offsets.Popper.Top = math.Min(popper.Top, b.Bottom-popper.Height)
				}
			}
		}
		return s
	}
}

// KeepTogether snaps the popper back against the nearest reference edge once it
// no longer overlaps the reference on an axis. Reference edges are floored.
func KeepTogether(s State) State {
	popper := s.PopperRect()
	ref := s.Offsets.Reference
	f := math.Floor

	if popper.Right < f(ref.Left) {
		s.Offsets.Popper.Left = f(ref.Left) - popper.Width
	}
	if popper.Left > f(ref.Right) {
		s.Offsets.Popper.Left = f(ref.Right)
	}
	if popper.Bottom < f(ref.Top) {
		s.Offsets.Popper.Top = f(ref.Top) - popper.Height
	}
	if popper.Top > f(ref.Bottom) {
		s.Offsets.Popper.Top = f(ref.Bottom)
	}
	return s
}

// -- Modifiers bound to a Popper --

// arrow positions the arrow element so it points at the reference's centre.
func (p *Popper) arrow(s State) State {
	arrowEl, ok := p.provider.QuerySelector(p.popper, p.opts.ArrowSelector)
	if !ok {
		return s
	}

	side, opSide := SideLeft, SideRight
	if s.Placement.Side.IsVertical() {
		side, opSide = SideTop, SideBottom
	}
	length := func(r Rect) float64 {
		if side == SideTop {
			return r.Height
		}
		return r.Width
	}

	ref := s.Offsets.Reference
	arrowSize := p.provider.OuterSize(arrowEl).Length(s.Placement.Side)

	// Keep at least one arrow length of the reference edge inside the popper.
	popper := s.PopperRect()
	if limit := ref.Edge(opSide) - arrowSize; limit < popper.Edge(side) {
		s.Offsets.Popper = s.Offsets.Popper.withAxis(side, limit)
	}
	popper = s.PopperRect()
	if overlap := ref.Edge(side) + arrowSize - popper.Edge(opSide); overlap > 0 {
		s.Offsets.Popper = s.Offsets.Popper.withAxis(side, popper.Edge(side)+overlap)
	}
	popper = s.PopperRect()

	center := ref.Edge(side) + length(ref)/2 - arrowSize/2
	value := center - popper.Edge(side)
	value = math.Max(math.Min(length(popper)-arrowSize-arrowMargin, value), arrowMargin)

	s.Offsets.Arrow = ArrowOffsets{Element: arrowEl, Side: side, Value: value}
	return s
}

// flip moves the popper to the opposite side when the reference edge on the
// placement side has crossed the popper, then re-runs the modifiers that
// precede flip. Once a pass has flipped back to the original placement it
// stops and accepts the overlap.
func (p *Popper) flip(s State) State {
	if s.Flipped && s.Placement == s.OriginalPlacement {
		return s
	}

	side := s.Placement.Side
	opposite := side.Opposite()
	popper := s.PopperRect()
	refEdge := math.Floor(s.Offsets.Reference.Edge(side))
	popperEdge := math.Floor(popper.Edge(opposite))

	farSide := side == SideRight || side == SideBottom
	overflow := (farSide && refEdge > popperEdge) || (!farSide && refEdge < popperEdge)
	if !overflow {
		return s
	}

	from := s.Placement
	s.Flipped = true
	s.Placement = s.Placement.Opposite()
	s.Offsets.Popper, _ = ComputeOffsets(p.provider, p.popper, p.reference, s.Placement, p.position)

	p.logger.Debug("Flipped placement.",
		zap.Stringer("from", from),
		zap.Stringer("to", s.Placement))

	return p.runModifiers(s, p.flipIndex)
}

// applyStyle writes the final position to the popper element.
func (p *Popper) applyStyle(s State) State {
	position := s.Offsets.Popper.Position
	if position == "" {
		position = PositionAbsolute
	}
	left := roundHalfUp(s.Offsets.Popper.Left)
	top := roundHalfUp(s.Offsets.Popper.Top)

	style := Style{"position": string(position)}
	if prop := p.provider.SupportedTransformProperty(); prop != "" {
		style[prop] = fmt.Sprintf("translate3d(%s, %s, 0)", px(left), px(top))
		style["top"] = px(0)
		style["left"] = px(0)
	} else {
		style["left"] = px(left)
		style["top"] = px(top)
	}
	p.provider.ApplyStyle(p.popper, style)
	p.provider.SetAttribute(p.popper, placementAttribute, s.Placement.String())

	if arrow := s.Offsets.Arrow; arrow.Present() {
		cross := SideTop
		if arrow.Side == SideTop {
			cross = SideLeft
		}
		p.provider.ApplyStyle(arrow.Element, Style{
			string(arrow.Side): px(arrow.Value),
			string(cross):      "",
		})
	}
	return s
}

// roundHalfUp rounds like the browser's Math.round: halves go toward +Inf.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// px formats a pixel length.
func px(v float64) string {
	if v == 0 {
		v = 0 // normalise -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
