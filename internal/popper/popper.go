// internal/popper/popper.go
package popper

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// resolvedModifier is a pipeline step after name resolution. fn is nil for a
// name that matched no built-in; such steps are skipped.
type resolvedModifier struct {
	name string
	fn   ModifierFunc
}

// Popper keeps a floating element attached to a reference element. Every pass
// runs synchronously; passes triggered from different goroutines (listeners,
// the deferred frame, throttled trailing updates) are serialised.
type Popper struct {
	id        string
	provider  Provider
	reference Element
	popper    Element
	opts      Options
	position  PositionMode
	logger    *zap.Logger

	modifiers []resolvedModifier
	// flipIndex bounds the prefix flip re-runs.
	flipIndex int

	mu          sync.Mutex
	destroyed   bool
	subs        []Subscription
	cancelFrame func()
	throttle    *throttle
}

// New binds a Popper to a reference/popper pair, positions the popper once,
// schedules one more pass for the next frame and subscribes to resize and
// scroll events.
func New(provider Provider, reference, popperEl Element, opts ...Option) (*Popper, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if reference == nil || popperEl == nil {
		return nil, ErrNilElement
	}

	st := settings{opts: DefaultOptions()}
	for _, opt := range opts {
		opt(&st)
	}
	if st.logger == nil {
		st.logger = zap.NewNop()
	}

	p := &Popper{
		id:        uuid.NewString(),
		provider:  provider,
		reference: reference,
		popper:    popperEl,
		opts:      st.opts.normalize(),
	}
	p.logger = st.logger.Named("popper").With(zap.String("popper_id", p.id))
	p.throttle = newThrottle(p.opts.MinUpdateInterval)

	p.resolveModifiers()

	p.position = PositionAbsolute
	if provider.IsFixed(reference) {
		p.position = PositionFixed
	}
	provider.ApplyStyle(popperEl, Style{"position": string(p.position), "top": px(0)})

	if _, err := p.Update(); err != nil {
		return nil, err
	}
	p.scheduleDeferredUpdate()

	if err := p.setupEventListeners(); err != nil {
		p.logger.Error("Failed to subscribe to layout events.", zap.Error(err))
		p.Destroy()
		return nil, fmt.Errorf("failed to subscribe to layout events: %w", err)
	}

	p.logger.Debug("Popper attached.",
		zap.String("reference", reference.Key()),
		zap.String("popper", popperEl.Key()),
		zap.Stringer("placement", p.opts.Placement),
		zap.String("position", string(p.position)))
	return p, nil
}

// resolveModifiers turns the configured names into functions. Later edits to
// the option slice have no effect on a constructed Popper.
func (p *Popper) resolveModifiers() {
	p.modifiers = make([]resolvedModifier, 0, len(p.opts.Modifiers))
	p.flipIndex = -1
	for i, ref := range p.opts.Modifiers {
		fn := ref.Fn
		if fn == nil {
			if bind, ok := builtinModifiers[ref.Name]; ok {
				fn = bind(p)
			} else {
				p.logger.Warn("Unknown modifier will be skipped.", zap.String("modifier", ref.Name))
			}
		}
		if ref.Name == ModifierApplyStyle {
			p.provider.SetAttribute(p.popper, placementAttribute, p.opts.Placement.String())
		}
		if ref.Name == ModifierFlip && p.flipIndex < 0 {
			p.flipIndex = i
		}
		p.modifiers = append(p.modifiers, resolvedModifier{name: ref.Name, fn: fn})
	}
	if p.flipIndex < 0 {
		p.flipIndex = len(p.modifiers)
	}
}

// ID is the instance identifier used in logs.
func (p *Popper) ID() string { return p.id }

// Position is the positioning mode chosen at construction.
func (p *Popper) Position() PositionMode { return p.position }

// Options returns a copy of the options the instance runs with.
func (p *Popper) Options() Options { return p.opts.clone() }

// Update recomputes offsets and boundaries and runs the whole pipeline. It is
// safe to call repeatedly and returns the state the pipeline produced.
func (p *Popper) Update() (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return State{}, ErrDestroyed
	}
	return p.update(), nil
}

func (p *Popper) update() State {
	placement := p.opts.Placement
	popperOffsets, referenceRect := ComputeOffsets(p.provider, p.popper, p.reference, placement, p.position)

	s := State{
		Placement:         placement,
		OriginalPlacement: placement,
		Offsets: Offsets{
			Popper:    popperOffsets,
			Reference: referenceRect,
		},
		Boundaries:    ComputeBoundaries(p.provider, p.popper, p.position, p.opts.BoundariesPadding),
		HasBoundaries: true,
	}
	return p.runModifiers(s, len(p.modifiers))
}

// RunModifiers runs the configured pipeline on s. With stopBefore set, only
// the steps preceding the first modifier of that name run. It takes no lock:
// call it from inside a modifier or while no Update can run.
func (p *Popper) RunModifiers(s State, stopBefore string) State {
	end := len(p.modifiers)
	if stopBefore != "" {
		for i, m := range p.modifiers {
			if m.name == stopBefore {
				end = i
				break
			}
		}
	}
	return p.runModifiers(s, end)
}

func (p *Popper) runModifiers(s State, end int) State {
	for _, m := range p.modifiers[:end] {
		if m.fn == nil {
			continue
		}
		s = m.fn(s)
	}
	return s
}

// Destroy removes the placement attribute and positioning styles, drops the
// event subscriptions and, when configured, removes the popper element. It is
// idempotent.
func (p *Popper) Destroy() *Popper {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return p
	}
	p.destroyed = true

	if p.cancelFrame != nil {
		p.cancelFrame()
		p.cancelFrame = nil
	}
	p.throttle.stop()

	p.provider.RemoveAttribute(p.popper, placementAttribute)
	style := Style{"left": "", "position": "", "top": ""}
	if prop := p.provider.SupportedTransformProperty(); prop != "" {
		style[prop] = ""
	}
	p.provider.ApplyStyle(p.popper, style)
	p.removeEventListeners()

	if p.opts.RemoveOnDestroy {
		p.provider.Remove(p.popper)
	}
	p.logger.Debug("Popper destroyed.", zap.Bool("removed", p.opts.RemoveOnDestroy))
	return p
}

// -- Scheduling and events --

// scheduleDeferredUpdate runs one more pass once layout has settled: on the
// next animation frame when the provider can schedule one, otherwise on a
// zero-delay timer.
func (p *Popper) scheduleDeferredUpdate() {
	run := func() { p.updateFromTrigger("frame") }

	var cancel func()
	if fs, ok := p.provider.(FrameScheduler); ok {
		cancel = fs.RequestAnimationFrame(run)
	} else {
		t := time.AfterFunc(0, run)
		cancel = func() { t.Stop() }
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		cancel()
		return
	}
	p.cancelFrame = cancel
}

// updateFromTrigger is the entry point for updates nobody waits on.
func (p *Popper) updateFromTrigger(trigger string) {
	if _, err := p.Update(); err != nil && !errors.Is(err, ErrDestroyed) {
		p.logger.Error("Update failed.", zap.String("trigger", trigger), zap.Error(err))
	}
}

func (p *Popper) onLayoutEvent(event Event) func() {
	return func() {
		p.throttle.do(func() { p.updateFromTrigger(string(event)) })
	}
}

// setupEventListeners subscribes to window resize and to scroll on the
// reference's scroll container, or on the window when that container is the
// document itself.
func (p *Popper) setupEventListeners() error {
	resize, err := p.provider.Listen(nil, EventResize, p.onLayoutEvent(EventResize))
	if err != nil {
		return fmt.Errorf("resize listener: %w", err)
	}

	target := p.provider.ScrollAncestor(p.reference)
	if target != nil && p.provider.IsDocumentRoot(target) {
		target = nil
	}
	scroll, err := p.provider.Listen(target, EventScroll, p.onLayoutEvent(EventScroll))
	if err != nil {
		resize.Cancel()
		return fmt.Errorf("scroll listener: %w", err)
	}

	p.mu.Lock()
	p.subs = []Subscription{resize, scroll}
	p.mu.Unlock()
	return nil
}

// removeEventListeners must be called with p.mu held.
func (p *Popper) removeEventListeners() {
	if len(p.subs) == 0 {
		return
	}
	for _, sub := range p.subs {
		sub.Cancel()
	}
	p.subs = nil
}
