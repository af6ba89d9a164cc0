// internal/popper/provider.go
package popper

// Element is an opaque handle to a node owned by a Provider. Key identifies
// the node; two handles with the same key refer to the same node.
type Element interface {
	Key() string
}

// Measurer answers geometry queries. Implementations never fail: a missing or
// detached element measures as a zero rectangle, and ancestor lookups fall
// back to the document element.
type Measurer interface {
	// BoundingRect is the element's border box relative to the viewport.
	BoundingRect(el Element) Rect
	// OffsetRect is the element's offsetLeft/offsetTop/offsetWidth/offsetHeight.
	OffsetRect(el Element) Rect
	// OuterSize is the element's size including margins.
	OuterSize(el Element) Size
	// PositionedAncestor is the element's offset parent.
	PositionedAncestor(el Element) Element
	// ScrollAncestor is the nearest ancestor that scrolls.
	ScrollAncestor(el Element) Element
	// IsFixed reports whether the element or one of its ancestors is fixed-positioned.
	IsFixed(el Element) bool
	ScrollTop(el Element) float64
	ScrollLeft(el Element) float64
	// Viewport is the client size of the document element.
	Viewport() Size
	// IsDocumentRoot reports whether el is the document element or body.
	IsDocumentRoot(el Element) bool
}

// Style is a set of inline style properties. An empty value removes the property.
type Style map[string]string

// Styler performs the document writes the engine owns.
type Styler interface {
	ApplyStyle(el Element, style Style)
	SetAttribute(el Element, name, value string)
	RemoveAttribute(el Element, name string)
	// SupportedTransformProperty is the (possibly prefixed) transform property
	// name, or "" when transforms are unavailable.
	SupportedTransformProperty() string
	// QuerySelector finds the first descendant of el matching selector.
	QuerySelector(el Element, selector string) (Element, bool)
	// Remove detaches el from the document.
	Remove(el Element)
}

// Event names a document event the engine subscribes to.
type Event string

const (
	EventResize Event = "resize"
	EventScroll Event = "scroll"
)

// Subscription is a registered listener.
type Subscription interface {
	Cancel()
}

// EventSource registers listeners. A nil target denotes the global window.
type EventSource interface {
	Listen(target Element, event Event, fn func()) (Subscription, error)
}

// FrameScheduler is implemented by providers that can run a callback on the
// next animation frame. The returned func cancels a frame that has not run.
type FrameScheduler interface {
	RequestAnimationFrame(fn func()) (cancel func())
}

// Provider is the full geometry collaborator.
type Provider interface {
	Measurer
	Styler
	EventSource
}

// SubscriptionFunc adapts a plain func to Subscription.
type SubscriptionFunc func()

// Cancel calls f.
func (f SubscriptionFunc) Cancel() { f() }
