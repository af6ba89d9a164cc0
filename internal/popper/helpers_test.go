package popper

import (
	"sync"
)

// -- Fake geometry provider --

type fakeElement string

func (e fakeElement) Key() string { return string(e) }

const (
	rootKey   = "html"
	refKey    = "reference"
	popperKey = "popper"
	arrowKey  = "arrow"
)

type listenerEntry struct {
	target string
	event  Event
	fn     func()
	active bool
}

// fakeProvider is an in-memory document. Elements are keys; geometry is set
// directly by the test. It does not schedule animation frames, so a Popper
// built on it falls back to a timer.
type fakeProvider struct {
	mu sync.Mutex

	rects         map[string]Rect
	offsetRects   map[string]Rect
	sizes         map[string]Size
	offsetParents map[string]string
	scrollParents map[string]string
	fixed         map[string]bool
	scrollTops    map[string]float64
	scrollLefts   map[string]float64
	children      map[string]map[string]string
	viewport      Size
	transform     string

	styles    map[string]Style
	attrs     map[string]map[string]string
	removed   map[string]bool
	listeners []*listenerEntry
	applied   []Style
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		rects:         map[string]Rect{rootKey: NewRect(0, 0, 800, 600)},
		offsetRects:   map[string]Rect{rootKey: NewRect(0, 0, 800, 600)},
		sizes:         map[string]Size{},
		offsetParents: map[string]string{},
		scrollParents: map[string]string{},
		fixed:         map[string]bool{},
		scrollTops:    map[string]float64{},
		scrollLefts:   map[string]float64{},
		children:      map[string]map[string]string{},
		viewport:      Size{Width: 800, Height: 600},
		transform:     "transform",
		styles:        map[string]Style{},
		attrs:         map[string]map[string]string{},
		removed:       map[string]bool{},
	}
}

// standardScene is the layout used across tests: a 80x20 reference at
// (100, 50) and an 80x40 popper, both in the document's coordinate space.
func standardScene() *fakeProvider {
	f := newFakeProvider()
	f.setRect(refKey, NewRect(100, 50, 80, 20))
	f.setSize(popperKey, Size{Width: 80, Height: 40})
	return f
}

func (f *fakeProvider) setRect(key string, r Rect) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rects[key] = r
	f.offsetRects[key] = r
}

func (f *fakeProvider) setSize(key string, s Size) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sizes[key] = s
}

func (f *fakeProvider) setViewport(s Size) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewport = s
}

func (f *fakeProvider) addChild(parent, selector, child string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.children[parent] == nil {
		f.children[parent] = map[string]string{}
	}
	f.children[parent][selector] = child
}

func (f *fakeProvider) style(key string) Style {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := Style{}
	for k, v := range f.styles[key] {
		out[k] = v
	}
	return out
}

func (f *fakeProvider) attr(key, name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.attrs[key][name]
	return v, ok
}

func (f *fakeProvider) activeListeners() []listenerEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []listenerEntry
	for _, l := range f.listeners {
		if l.active {
			out = append(out, *l)
		}
	}
	return out
}

// fire dispatches event on target ("" is the window) synchronously.
func (f *fakeProvider) fire(target string, event Event) {
	f.mu.Lock()
	var fns []func()
	for _, l := range f.listeners {
		if l.active && l.target == target && l.event == event {
			fns = append(fns, l.fn)
		}
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func keyOf(el Element) string {
	if el == nil {
		return ""
	}
	return el.Key()
}

func (f *fakeProvider) BoundingRect(el Element) Rect {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rects[keyOf(el)]
}

func (f *fakeProvider) OffsetRect(el Element) Rect {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.offsetRects[keyOf(el)]
}

func (f *fakeProvider) OuterSize(el Element) Size {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sizes[keyOf(el)]; ok {
		return s
	}
	r := f.rects[keyOf(el)]
	return Size{Width: r.Width, Height: r.Height}
}

func (f *fakeProvider) PositionedAncestor(el Element) Element {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.offsetParents[keyOf(el)]; ok {
		return fakeElement(p)
	}
	return fakeElement(rootKey)
}

func (f *fakeProvider) ScrollAncestor(el Element) Element {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.scrollParents[keyOf(el)]; ok {
		return fakeElement(p)
	}
	return fakeElement(rootKey)
}

func (f *fakeProvider) IsFixed(el Element) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fixed[keyOf(el)]
}

func (f *fakeProvider) ScrollTop(el Element) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scrollTops[keyOf(el)]
}

func (f *fakeProvider) ScrollLeft(el Element) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scrollLefts[keyOf(el)]
}

func (f *fakeProvider) Viewport() Size {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewport
}

func (f *fakeProvider) IsDocumentRoot(el Element) bool {
	k := keyOf(el)
	return k == rootKey || k == "body"
}

func (f *fakeProvider) ApplyStyle(el Element, style Style) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := keyOf(el)
	if f.styles[k] == nil {
		f.styles[k] = Style{}
	}
	copied := Style{}
	for name, v := range style {
		copied[name] = v
		if v == "" {
			delete(f.styles[k], name)
			continue
		}
		f.styles[k][name] = v
	}
	if k == popperKey {
		f.applied = append(f.applied, copied)
	}
}

func (f *fakeProvider) SetAttribute(el Element, name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := keyOf(el)
	if f.attrs[k] == nil {
		f.attrs[k] = map[string]string{}
	}
	f.attrs[k][name] = value
}

func (f *fakeProvider) RemoveAttribute(el Element, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.attrs[keyOf(el)], name)
}

func (f *fakeProvider) SupportedTransformProperty() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transform
}

func (f *fakeProvider) QuerySelector(el Element, selector string) (Element, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	child, ok := f.children[keyOf(el)][selector]
	if !ok {
		return nil, false
	}
	return fakeElement(child), true
}

func (f *fakeProvider) Remove(el Element) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed[keyOf(el)] = true
}

func (f *fakeProvider) Listen(target Element, event Event, fn func()) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry := &listenerEntry{target: keyOf(target), event: event, fn: fn, active: true}
	f.listeners = append(f.listeners, entry)
	return SubscriptionFunc(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		entry.active = false
	}), nil
}

// framedProvider adds a manually flushed animation frame queue.
type framedProvider struct {
	*fakeProvider

	frameMu sync.Mutex
	frames  []*func()
}

func newFramedProvider(f *fakeProvider) *framedProvider {
	return &framedProvider{fakeProvider: f}
}

func (f *framedProvider) RequestAnimationFrame(fn func()) func() {
	f.frameMu.Lock()
	defer f.frameMu.Unlock()
	slot := &fn
	f.frames = append(f.frames, slot)
	return func() {
		f.frameMu.Lock()
		defer f.frameMu.Unlock()
		*slot = nil
	}
}

// flushFrames runs every pending, uncancelled frame callback.
func (f *framedProvider) flushFrames() int {
	f.frameMu.Lock()
	frames := f.frames
	f.frames = nil
	var fns []func()
	for _, slot := range frames {
		if *slot != nil {
			fns = append(fns, *slot)
		}
	}
	f.frameMu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return len(fns)
}
