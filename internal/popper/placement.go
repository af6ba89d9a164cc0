// internal/popper/placement.go
package popper

import (
	"fmt"
	"strings"
)

// Side is one of the four cardinal directions a popper can sit on.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// Sides lists the cardinal directions in the default prevent-overflow order.
var Sides = []Side{SideLeft, SideRight, SideTop, SideBottom}

// Valid reports whether s is one of the four cardinal sides.
func (s Side) Valid() bool {
	switch s {
	case SideTop, SideBottom, SideLeft, SideRight:
		return true
	}
	return false
}

// Opposite returns the geometrically opposite side. Unknown values are returned unchanged.
func (s Side) Opposite() Side {
	switch s {
	case SideTop:
		return SideBottom
	case SideBottom:
		return SideTop
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	}
	return s
}

// IsVertical reports whether the side places the popper beside the reference
// (left or right), so that alignment happens along the vertical axis.
func (s Side) IsVertical() bool {
	return s == SideLeft || s == SideRight
}

// ParseSide validates a side name.
func ParseSide(raw string) (Side, error) {
	s := Side(strings.TrimSpace(strings.ToLower(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSide, raw)
	}
	return s, nil
}

// Variation aligns the popper to the start or end of the reference edge.
type Variation string

const (
	VariationNone  Variation = ""
	VariationStart Variation = "start"
	VariationEnd   Variation = "end"
)

// Placement combines a base side with an optional variation. It serializes as
// "side" or "side-variation".
type Placement struct {
	Side      Side
	Variation Variation
}

// Common placements.
var (
	Top         = Placement{Side: SideTop}
	TopStart    = Placement{Side: SideTop, Variation: VariationStart}
	TopEnd      = Placement{Side: SideTop, Variation: VariationEnd}
	Bottom      = Placement{Side: SideBottom}
	BottomStart = Placement{Side: SideBottom, Variation: VariationStart}
	BottomEnd   = Placement{Side: SideBottom, Variation: VariationEnd}
	Left        = Placement{Side: SideLeft}
	LeftStart   = Placement{Side: SideLeft, Variation: VariationStart}
	LeftEnd     = Placement{Side: SideLeft, Variation: VariationEnd}
	Right       = Placement{Side: SideRight}
	RightStart  = Placement{Side: SideRight, Variation: VariationStart}
	RightEnd    = Placement{Side: SideRight, Variation: VariationEnd}
)

// ParsePlacement parses "side" or "side-variation".
func ParsePlacement(raw string) (Placement, error) {
	base, variation, hasVariation := strings.Cut(strings.TrimSpace(strings.ToLower(raw)), "-")
	side := Side(base)
	if !side.Valid() {
		return Placement{}, fmt.Errorf("%w: %q", ErrInvalidPlacement, raw)
	}
	p := Placement{Side: side}
	if hasVariation {
		switch Variation(variation) {
		case VariationStart, VariationEnd:
			p.Variation = Variation(variation)
		default:
			return Placement{}, fmt.Errorf("%w: unknown variation in %q", ErrInvalidPlacement, raw)
		}
	}
	return p, nil
}

// MustParsePlacement is ParsePlacement for literals; it panics on bad input.
func MustParsePlacement(raw string) Placement {
	p, err := ParsePlacement(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// IsZero reports whether the placement was never set.
func (p Placement) IsZero() bool { return p.Side == "" }

// String renders the placement as written in the x-placement attribute.
func (p Placement) String() string {
	if p.Variation == VariationNone {
		return string(p.Side)
	}
	return string(p.Side) + "-" + string(p.Variation)
}

// Opposite flips the base side and keeps the variation.
func (p Placement) Opposite() Placement {
	return Placement{Side: p.Side.Opposite(), Variation: p.Variation}
}

// MarshalText implements encoding.TextMarshaler.
func (p Placement) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Placement) UnmarshalText(text []byte) error {
	parsed, err := ParsePlacement(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// OppositeSide swaps every side name in s (left<->right, top<->bottom) and
// leaves anything else, including variation suffixes, untouched.
func OppositeSide(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		matched := false
		for _, side := range Sides {
			if strings.HasPrefix(s[i:], string(side)) {
				b.WriteString(string(side.Opposite()))
				i += len(side)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}
