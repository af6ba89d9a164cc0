// internal/browser/cdp/provider.go
package cdp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lsert/zarm-web/internal/popper"
)

var (
	// ErrNoSuchElement is returned when a selector or id matches nothing in the page.
	ErrNoSuchElement = errors.New("cdp: no such element")
	// ErrForeignElement is returned for element handles from another provider.
	ErrForeignElement = errors.New("cdp: element does not belong to this provider")
)

// DefaultCallTimeout bounds each script evaluation.
const DefaultCallTimeout = 5 * time.Second

// Element is a handle to a tagged node in the page.
type Element struct {
	id string
}

// Key is the node's data-zarm-id, or "html"/"body" for the document roots.
func (e *Element) Key() string { return e.id }

type handler struct {
	fn      func()
	oneShot bool
}

// Provider implements popper.Provider and popper.FrameScheduler for the tab
// bound to its context.
type Provider struct {
	ctx     context.Context
	logger  *zap.Logger
	timeout time.Duration
	binding string

	mu       sync.Mutex
	handlers map[string]handler
	nextID   uint64

	transformOnce sync.Once
	transform     string
}

var (
	_ popper.Provider       = (*Provider)(nil)
	_ popper.FrameScheduler = (*Provider)(nil)
)

// Option configures a Provider.
type Option func(*Provider)

// WithCallTimeout overrides DefaultCallTimeout.
func WithCallTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func newProvider(ctx context.Context, logger *zap.Logger, opts ...Option) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{
		ctx:      ctx,
		logger:   logger.Named("cdp"),
		timeout:  DefaultCallTimeout,
		binding:  "zarmEvent_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		handlers: make(map[string]handler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// New instruments the tab in ctx, which must be a chromedp context. The
// helper script is injected into the current document and every document
// loaded after it.
func New(ctx context.Context, logger *zap.Logger, opts ...Option) (*Provider, error) {
	p := newProvider(ctx, logger, opts...)

	err := chromedp.Run(ctx,
		runtime.AddBinding(p.binding),
		chromedp.ActionFunc(func(c context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(prelude).Do(c)
			return err
		}),
		chromedp.Evaluate(prelude, nil),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to instrument page: %w", err)
	}

	chromedp.ListenTarget(ctx, p.onTargetEvent)
	p.logger.Debug("Page instrumented.", zap.String("binding", p.binding))
	return p, nil
}

// onTargetEvent runs on the chromedp event loop and must not block on CDP
// calls, so handlers get their own goroutine.
func (p *Provider) onTargetEvent(ev interface{}) {
	called, ok := ev.(*runtime.EventBindingCalled)
	if !ok || called.Name != p.binding {
		return
	}
	go p.fire(called.Payload)
}

func (p *Provider) fire(sub string) {
	p.mu.Lock()
	h, ok := p.handlers[sub]
	if ok && h.oneShot {
		delete(p.handlers, sub)
	}
	p.mu.Unlock()

	if ok {
		h.fn()
	}
}

func (p *Provider) register(fn func(), oneShot bool) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	sub := "s" + strconv.FormatUint(p.nextID, 10)
	p.handlers[sub] = handler{fn: fn, oneShot: oneShot}
	return sub
}

func (p *Provider) unregister(sub string) {
	p.mu.Lock()
	delete(p.handlers, sub)
	p.mu.Unlock()
}

// eval runs window.__zarm.fn(args...) and decodes its result into out when
// out is non-nil.
func (p *Provider) eval(out interface{}, fn string, args ...interface{}) error {
	script, err := call(fn, args...)
	if err != nil {
		return fmt.Errorf("failed to encode %s arguments: %w", fn, err)
	}
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	if out == nil {
		return chromedp.Run(ctx, chromedp.Evaluate(script, nil))
	}
	var raw []byte
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &raw)); err != nil {
		return err
	}
	return codec.Unmarshal(raw, out)
}

// query is eval for the never-failing provider methods: errors are logged
// and out keeps its zero value.
func (p *Provider) query(out interface{}, fn string, args ...interface{}) bool {
	if err := p.eval(out, fn, args...); err != nil {
		p.logger.Debug("Page call failed.", zap.String("call", fn), zap.Error(err))
		return false
	}
	return true
}

func keyOf(el popper.Element) (string, bool) {
	e, ok := el.(*Element)
	if !ok || e == nil {
		return "", false
	}
	return e.id, true
}

func wrap(id string) popper.Element {
	if id == "" {
		return nil
	}
	return &Element{id: id}
}

// Root is the document element.
func (p *Provider) Root() *Element { return &Element{id: rootID} }

// Find returns the first element in the page matching a CSS selector.
func (p *Provider) Find(selector string) (*Element, error) {
	var id string
	if err := p.eval(&id, "find", selector); err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchElement, selector)
	}
	return &Element{id: id}, nil
}

// -- Measurer --

type jsRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r jsRect) rect() popper.Rect { return popper.NewRect(r.Left, r.Top, r.Width, r.Height) }

func (p *Provider) rect(fn string, el popper.Element) popper.Rect {
	var r jsRect
	if id, ok := keyOf(el); ok {
		p.query(&r, fn, id)
	}
	return r.rect()
}

func (p *Provider) element(fn string, el popper.Element) popper.Element {
	id, ok := keyOf(el)
	if !ok {
		return p.Root()
	}
	var found string
	if !p.query(&found, fn, id) || found == "" {
		return p.Root()
	}
	return wrap(found)
}

// BoundingRect is getBoundingClientRect.
func (p *Provider) BoundingRect(el popper.Element) popper.Rect { return p.rect("bounding", el) }

// OffsetRect is the element's offset box.
func (p *Provider) OffsetRect(el popper.Element) popper.Rect { return p.rect("offset", el) }

// OuterSize is the offset size plus computed margins.
func (p *Provider) OuterSize(el popper.Element) popper.Size {
	var s popper.Size
	if id, ok := keyOf(el); ok {
		p.query(&s, "outer", id)
	}
	return s
}

// PositionedAncestor is the element's offsetParent, with body mapped to html.
func (p *Provider) PositionedAncestor(el popper.Element) popper.Element {
	return p.element("offsetParent", el)
}

// ScrollAncestor is the nearest ancestor with overflow auto or scroll.
func (p *Provider) ScrollAncestor(el popper.Element) popper.Element {
	return p.element("scrollParent", el)
}

// IsFixed checks computed position up to body.
func (p *Provider) IsFixed(el popper.Element) bool {
	var fixed bool
	if id, ok := keyOf(el); ok {
		p.query(&fixed, "fixed", id)
	}
	return fixed
}

type jsScroll struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

func (p *Provider) scroll(el popper.Element) jsScroll {
	var s jsScroll
	if id, ok := keyOf(el); ok {
		p.query(&s, "scroll", id)
	}
	return s
}

// ScrollTop reads scrollTop; html and body report the scrolling element's.
func (p *Provider) ScrollTop(el popper.Element) float64 { return p.scroll(el).Top }

// ScrollLeft reads scrollLeft; html and body report the scrolling element's.
func (p *Provider) ScrollLeft(el popper.Element) float64 { return p.scroll(el).Left }

// Viewport is the document element's client size.
func (p *Provider) Viewport() popper.Size {
	var s popper.Size
	p.query(&s, "viewport")
	return s
}

// IsDocumentRoot needs no round trip: the roots have reserved ids.
func (p *Provider) IsDocumentRoot(el popper.Element) bool {
	id, ok := keyOf(el)
	return ok && (id == rootID || id == bodyID)
}

// -- Styler --

// ApplyStyle sets inline properties; empty values remove them.
func (p *Provider) ApplyStyle(el popper.Element, style popper.Style) {
	if id, ok := keyOf(el); ok && len(style) > 0 {
		p.query(nil, "style", id, style)
	}
}

// SetAttribute sets an attribute on the element.
func (p *Provider) SetAttribute(el popper.Element, name, value string) {
	if id, ok := keyOf(el); ok {
		p.query(nil, "attr", id, name, value, false)
	}
}

// RemoveAttribute removes an attribute from the element.
func (p *Provider) RemoveAttribute(el popper.Element, name string) {
	if id, ok := keyOf(el); ok {
		p.query(nil, "attr", id, name, "", true)
	}
}

// SupportedTransformProperty probes the page once. A failed probe reports
// no transform support, which makes the engine fall back to left/top.
func (p *Provider) SupportedTransformProperty() string {
	p.transformOnce.Do(func() {
		p.query(&p.transform, "transform")
	})
	return p.transform
}

// QuerySelector runs el.querySelector in the page.
func (p *Provider) QuerySelector(el popper.Element, selector string) (popper.Element, bool) {
	id, ok := keyOf(el)
	if !ok {
		return nil, false
	}
	var found string
	if !p.query(&found, "query", id, selector) || found == "" {
		return nil, false
	}
	return wrap(found), true
}

// Remove detaches the element from the document.
func (p *Provider) Remove(el popper.Element) {
	if id, ok := keyOf(el); ok {
		p.query(nil, "remove", id)
	}
}

// -- EventSource --

// Listen adds a passive DOM listener. A nil target listens on window.
func (p *Provider) Listen(target popper.Element, event popper.Event, fn func()) (popper.Subscription, error) {
	id := windowID
	if target != nil {
		var ok bool
		if id, ok = keyOf(target); !ok {
			return nil, ErrForeignElement
		}
	}

	sub := p.register(fn, false)
	var added bool
	if err := p.eval(&added, "listen", sub, id, string(event), p.binding); err != nil {
		p.unregister(sub)
		return nil, fmt.Errorf("failed to add %s listener: %w", event, err)
	}
	if !added {
		p.unregister(sub)
		return nil, fmt.Errorf("%w: %s", ErrNoSuchElement, id)
	}

	return popper.SubscriptionFunc(func() {
		p.unregister(sub)
		p.query(nil, "cancel", sub)
	}), nil
}

// RequestAnimationFrame runs fn after the page's next animation frame. When
// the page cannot be reached fn runs asynchronously right away.
func (p *Provider) RequestAnimationFrame(fn func()) func() {
	sub := p.register(fn, true)
	if !p.query(nil, "frame", sub, p.binding) {
		go p.fire(sub)
	}
	return func() {
		p.unregister(sub)
		p.query(nil, "cancel", sub)
	}
}
