// internal/browser/dom/document.go
package dom

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/lsert/zarm-web/internal/popper"
)

var (
	// ErrNoSuchElement is returned when an expression selects nothing.
	ErrNoSuchElement = errors.New("dom: no such element")
	// ErrUnsupportedSelector is returned for CSS selectors outside the
	// supported subset.
	ErrUnsupportedSelector = errors.New("dom: unsupported selector")
	// ErrForeignElement is returned when an element from another document, or
	// of another provider, is passed in.
	ErrForeignElement = errors.New("dom: element does not belong to this document")
)

// Default viewport used when none is configured.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// Element is a handle on one element of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// Key is the element's unique XPath.
func (e *Element) Key() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return UniqueXPath(e.node)
}

// Node exposes the underlying parse tree node.
func (e *Element) Node() *html.Node { return e.node }

type listener struct {
	target *html.Node // nil is the window
	event  popper.Event
	fn     func()
}

// Document is an offline page: an HTML parse tree whose geometry comes from
// inline styles. It implements popper.Provider and popper.FrameScheduler.
// Events and animation frames never fire on their own; ScrollTo, Resize,
// Dispatch and Flush drive them synchronously.
type Document struct {
	logger    *zap.Logger
	transform string

	mu       sync.RWMutex
	doc      *html.Node
	root     *html.Node
	body     *html.Node
	viewport popper.Size
	elements map[*html.Node]*Element

	listenerMu sync.Mutex
	listeners  map[uint64]listener
	nextID     uint64
	frames     []*func()
}

var (
	_ popper.Provider       = (*Document)(nil)
	_ popper.FrameScheduler = (*Document)(nil)
)

// Option configures a Document.
type Option func(*Document)

// WithViewport sets the viewport size in CSS pixels.
func WithViewport(width, height float64) Option {
	return func(d *Document) { d.viewport = popper.Size{Width: width, Height: height} }
}

// WithTransformProperty sets the property reported as the supported
// transform. An empty name makes poppers fall back to left/top.
func WithTransformProperty(name string) Option {
	return func(d *Document) { d.transform = name }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Document) { d.logger = l }
}

// Parse reads an HTML document.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	doc, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	d := &Document{
		logger:    zap.NewNop(),
		transform: "transform",
		doc:       doc,
		viewport:  popper.Size{Width: DefaultViewportWidth, Height: DefaultViewportHeight},
		elements:  make(map[*html.Node]*Element),
		listeners: make(map[uint64]listener),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named("dom")

	d.root = htmlquery.FindOne(doc, "/html")
	if d.root == nil {
		return nil, fmt.Errorf("%w: document has no html element", ErrNoSuchElement)
	}
	d.body = htmlquery.FindOne(d.root, "./body")
	return d, nil
}

// Root is the html element.
func (d *Document) Root() *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wrap(d.root)
}

// Find returns the first element matching an XPath expression.
func (d *Document) Find(expr string) (*Element, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid XPath %q: %w", expr, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	n := htmlquery.QuerySelector(d.doc, compiled)
	if n == nil || n.Type != html.ElementNode {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchElement, expr)
	}
	return d.wrap(n), nil
}

// Render writes the current tree, including every style and attribute change.
func (d *Document) Render(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return html.Render(w, d.doc)
}

// wrap must be called with d.mu held for writing.
func (d *Document) wrap(n *html.Node) *Element {
	if el, ok := d.elements[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.elements[n] = el
	return el
}

// nodeOf unwraps an element of this document. Elements of other documents or
// providers yield nil.
func (d *Document) nodeOf(el popper.Element) *html.Node {
	e, ok := el.(*Element)
	if !ok || e == nil || e.doc != d {
		return nil
	}
	return e.node
}

// -- Events and frames --

// Listen implements popper.EventSource. A nil target is the window.
func (d *Document) Listen(target popper.Element, event popper.Event, fn func()) (popper.Subscription, error) {
	var node *html.Node
	if target != nil {
		if node = d.nodeOf(target); node == nil {
			return nil, fmt.Errorf("listen for %s: %w", event, ErrForeignElement)
		}
	}

	d.listenerMu.Lock()
	defer d.listenerMu.Unlock()
	d.nextID++
	id := d.nextID
	d.listeners[id] = listener{target: node, event: event, fn: fn}
	d.logger.Debug("Listener added.", zap.String("event", string(event)), zap.Uint64("listener_id", id))

	return popper.SubscriptionFunc(func() {
		d.listenerMu.Lock()
		defer d.listenerMu.Unlock()
		delete(d.listeners, id)
	}), nil
}

// Dispatch runs the handlers registered for event on target, nil being the
// window, and returns how many ran.
func (d *Document) Dispatch(target popper.Element, event popper.Event) int {
	var node *html.Node
	if target != nil {
		if node = d.nodeOf(target); node == nil {
			return 0
		}
	}
	return d.dispatch(node, event)
}

func (d *Document) dispatch(node *html.Node, event popper.Event) int {
	d.listenerMu.Lock()
	var fns []func()
	for id := uint64(1); id <= d.nextID; id++ {
		if l, ok := d.listeners[id]; ok && l.target == node && l.event == event {
			fns = append(fns, l.fn)
		}
	}
	d.listenerMu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// ScrollTo sets an element's scroll offsets and fires scroll on it. Scrolling
// the html or body element scrolls the window.
func (d *Document) ScrollTo(el popper.Element, left, top float64) error {
	node := d.nodeOf(el)
	if node == nil {
		return ErrForeignElement
	}

	d.mu.Lock()
	if node == d.body {
		node = d.root
	}
	setAttr(node, scrollLeftAttr, formatFloat(left))
	setAttr(node, scrollTopAttr, formatFloat(top))
	d.mu.Unlock()

	target := node
	if node == d.root {
		target = nil
	}
	d.dispatch(target, popper.EventScroll)
	return nil
}

// Resize changes the viewport and fires resize on the window.
func (d *Document) Resize(width, height float64) {
	d.mu.Lock()
	d.viewport = popper.Size{Width: width, Height: height}
	d.mu.Unlock()
	d.dispatch(nil, popper.EventResize)
}

// RequestAnimationFrame queues fn until the next Flush.
func (d *Document) RequestAnimationFrame(fn func()) func() {
	d.listenerMu.Lock()
	defer d.listenerMu.Unlock()
	slot := &fn
	d.frames = append(d.frames, slot)
	return func() {
		d.listenerMu.Lock()
		defer d.listenerMu.Unlock()
		*slot = nil
	}
}

// Flush runs the queued animation frame callbacks and returns how many ran.
// Callbacks queued while flushing wait for the next Flush.
func (d *Document) Flush() int {
	d.listenerMu.Lock()
	frames := d.frames
	d.frames = nil
	var fns []func()
	for _, slot := range frames {
		if *slot != nil {
			fns = append(fns, *slot)
		}
	}
	d.listenerMu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}
