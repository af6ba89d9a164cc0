// internal/popper/options.go
package popper

import (
	"time"

	"go.uber.org/zap"
)

// Built-in modifier names.
const (
	ModifierShift           = "shift"
	ModifierOffset          = "offset"
	ModifierPreventOverflow = "preventOverflow"
	ModifierKeepTogether    = "keepTogether"
	ModifierArrow           = "arrow"
	ModifierFlip            = "flip"
	ModifierApplyStyle      = "applyStyle"
)

// DefaultModifierNames is the default pipeline order.
var DefaultModifierNames = []string{
	ModifierShift,
	ModifierOffset,
	ModifierPreventOverflow,
	ModifierKeepTogether,
	ModifierArrow,
	ModifierFlip,
	ModifierApplyStyle,
}

// ModifierFunc is one correction step. It receives the state produced by the
// previous step and returns the state handed to the next.
type ModifierFunc func(State) State

// ModifierRef names a pipeline step. With Fn nil the name is looked up among
// the built-ins when the Popper is constructed.
type ModifierRef struct {
	Name string
	Fn   ModifierFunc
}

// Named refers to a built-in modifier.
func Named(name string) ModifierRef { return ModifierRef{Name: name} }

// Custom wraps a caller-supplied modifier.
func Custom(name string, fn ModifierFunc) ModifierRef { return ModifierRef{Name: name, Fn: fn} }

// NamedModifiers converts a list of names, as found in configuration.
func NamedModifiers(names ...string) []ModifierRef {
	refs := make([]ModifierRef, 0, len(names))
	for _, n := range names {
		refs = append(refs, Named(n))
	}
	return refs
}

// Options configures a Popper.
type Options struct {
	Placement            Placement
	Offset               float64
	BoundariesPadding    float64
	PreventOverflowOrder []Side
	ArrowSelector        string
	Modifiers            []ModifierRef
	RemoveOnDestroy      bool
	// MinUpdateInterval throttles event-driven updates. Zero disables throttling.
	MinUpdateInterval time.Duration
}

// DefaultOptions returns the defaults every Popper starts from.
func DefaultOptions() Options {
	return Options{
		Placement:            Bottom,
		Offset:               0,
		BoundariesPadding:    5,
		PreventOverflowOrder: append([]Side(nil), Sides...),
		ArrowSelector:        "[x-arrow]",
		Modifiers:            NamedModifiers(DefaultModifierNames...),
		RemoveOnDestroy:      false,
	}
}

// normalize fills unset fields from the defaults and detaches the slices from
// the caller's.
func (o Options) normalize() Options {
	def := DefaultOptions()
	if o.Placement.IsZero() {
		o.Placement = def.Placement
	}
	if o.PreventOverflowOrder == nil {
		o.PreventOverflowOrder = def.PreventOverflowOrder
	} else {
		o.PreventOverflowOrder = append([]Side{}, o.PreventOverflowOrder...)
	}
	if o.ArrowSelector == "" {
		o.ArrowSelector = def.ArrowSelector
	}
	if o.Modifiers == nil {
		o.Modifiers = def.Modifiers
	} else {
		o.Modifiers = append([]ModifierRef{}, o.Modifiers...)
	}
	if o.MinUpdateInterval < 0 {
		o.MinUpdateInterval = 0
	}
	return o
}

// clone copies o with slices of its own. An empty slice stays empty.
func (o Options) clone() Options {
	if o.PreventOverflowOrder != nil {
		o.PreventOverflowOrder = append([]Side{}, o.PreventOverflowOrder...)
	}
	if o.Modifiers != nil {
		o.Modifiers = append([]ModifierRef{}, o.Modifiers...)
	}
	return o
}

type settings struct {
	opts   Options
	logger *zap.Logger
}

// Option mutates the settings a Popper is built from.
type Option func(*settings)

// WithOptions replaces the whole option set. Unset fields still fall back to
// the defaults.
func WithOptions(o Options) Option {
	return func(s *settings) { s.opts = o }
}

// WithPlacement sets the requested placement.
func WithPlacement(p Placement) Option {
	return func(s *settings) { s.opts.Placement = p }
}

// WithOffset sets the pixel nudge along the placement edge.
func WithOffset(px float64) Option {
	return func(s *settings) { s.opts.Offset = px }
}

// WithBoundariesPadding sets the padding subtracted from every viewport edge.
func WithBoundariesPadding(px float64) Option {
	return func(s *settings) { s.opts.BoundariesPadding = px }
}

// WithPreventOverflowOrder sets the order preventOverflow checks the sides in.
func WithPreventOverflowOrder(order ...Side) Option {
	return func(s *settings) { s.opts.PreventOverflowOrder = order }
}

// WithArrowSelector sets the selector used to find the arrow inside the popper.
func WithArrowSelector(selector string) Option {
	return func(s *settings) { s.opts.ArrowSelector = selector }
}

// WithModifiers sets the pipeline.
func WithModifiers(refs ...ModifierRef) Option {
	return func(s *settings) { s.opts.Modifiers = refs }
}

// WithRemoveOnDestroy removes the popper element on Destroy.
func WithRemoveOnDestroy(remove bool) Option {
	return func(s *settings) { s.opts.RemoveOnDestroy = remove }
}

// WithMinUpdateInterval throttles scroll and resize driven updates.
func WithMinUpdateInterval(d time.Duration) Option {
	return func(s *settings) { s.opts.MinUpdateInterval = d }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}
