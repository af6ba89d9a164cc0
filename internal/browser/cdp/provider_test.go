// internal/browser/cdp/provider_test.go
package cdp

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lsert/zarm-web/internal/popper"
)

// offlineProvider is a Provider whose context carries no browser, so every
// page call fails the way a crashed tab would.
func offlineProvider(t *testing.T) (*Provider, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return newProvider(context.Background(), zap.New(core), WithCallTimeout(time.Second)), logs
}

type otherElement struct{}

func (otherElement) Key() string { return "z1" }

func TestNewProvider(t *testing.T) {
	a := newProvider(context.Background(), nil)
	b := newProvider(context.Background(), nil, WithCallTimeout(0))

	assert.Regexp(t, `^zarmEvent_[0-9a-f]{32}$`, a.binding)
	assert.NotEqual(t, a.binding, b.binding)
	assert.Equal(t, DefaultCallTimeout, b.timeout, "non-positive timeouts are ignored")
}

func TestBindingDispatch(t *testing.T) {
	defer goleak.VerifyNone(t)
	p, _ := offlineProvider(t)

	var listener, frame atomic.Int32
	lsub := p.register(func() { listener.Add(1) }, false)
	fsub := p.register(func() { frame.Add(1) }, true)

	for i := 0; i < 2; i++ {
		p.onTargetEvent(&runtime.EventBindingCalled{Name: p.binding, Payload: lsub})
		p.onTargetEvent(&runtime.EventBindingCalled{Name: p.binding, Payload: fsub})
	}
	p.onTargetEvent(&runtime.EventBindingCalled{Name: "somebodyElse", Payload: lsub})
	p.onTargetEvent(&runtime.EventConsoleAPICalled{})

	assert.Eventually(t, func() bool { return listener.Load() == 2 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return frame.Load() == 1 }, time.Second, 5*time.Millisecond)

	p.mu.Lock()
	_, frameKept := p.handlers[fsub]
	p.mu.Unlock()
	assert.False(t, frameKept, "frames fire once")
}

func TestUnregister(t *testing.T) {
	p, _ := offlineProvider(t)
	var calls atomic.Int32
	sub := p.register(func() { calls.Add(1) }, false)

	p.unregister(sub)
	p.fire(sub)
	assert.Zero(t, calls.Load())
}

func TestMeasurementsDegradeWithoutPage(t *testing.T) {
	p, logs := offlineProvider(t)
	el := &Element{id: "z7"}

	assert.Equal(t, popper.Rect{}, p.BoundingRect(el))
	assert.Equal(t, popper.Rect{}, p.OffsetRect(el))
	assert.Equal(t, popper.Size{}, p.OuterSize(el))
	assert.Equal(t, popper.Size{}, p.Viewport())
	assert.False(t, p.IsFixed(el))
	assert.Zero(t, p.ScrollTop(el))
	assert.Zero(t, p.ScrollLeft(el))
	assert.Equal(t, rootID, p.PositionedAncestor(el).Key())
	assert.Equal(t, rootID, p.ScrollAncestor(el).Key())
	assert.Empty(t, p.SupportedTransformProperty())

	found, ok := p.QuerySelector(el, "[x-arrow]")
	assert.False(t, ok)
	assert.Nil(t, found)

	assert.NotZero(t, logs.FilterMessage("Page call failed.").Len())
}

func TestForeignElements(t *testing.T) {
	p, logs := offlineProvider(t)

	assert.Equal(t, popper.Rect{}, p.BoundingRect(otherElement{}))
	assert.Equal(t, rootID, p.PositionedAncestor(otherElement{}).Key())
	p.ApplyStyle(otherElement{}, popper.Style{"top": "0px"})
	assert.Zero(t, logs.Len(), "foreign handles never reach the page")

	_, err := p.Listen(otherElement{}, popper.EventScroll, func() {})
	assert.ErrorIs(t, err, ErrForeignElement)
}

func TestIsDocumentRoot(t *testing.T) {
	p, _ := offlineProvider(t)

	assert.True(t, p.IsDocumentRoot(p.Root()))
	assert.True(t, p.IsDocumentRoot(&Element{id: bodyID}))
	assert.False(t, p.IsDocumentRoot(&Element{id: "z1"}))
	assert.False(t, p.IsDocumentRoot(otherElement{}))
	assert.False(t, p.IsDocumentRoot(nil))
}

func TestListen_PageUnavailable(t *testing.T) {
	p, _ := offlineProvider(t)

	sub, err := p.Listen(nil, popper.EventResize, func() {})
	require.Error(t, err)
	assert.Nil(t, sub)
	assert.Contains(t, err.Error(), "failed to add resize listener")
	assert.Empty(t, p.handlers, "failed listeners are unregistered")
}

func TestFind_PageUnavailable(t *testing.T) {
	p, _ := offlineProvider(t)
	_, err := p.Find("#reference")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to query "#reference"`)
}

func TestRequestAnimationFrame_Fallback(t *testing.T) {
	defer goleak.VerifyNone(t)
	p, _ := offlineProvider(t)

	done := make(chan struct{})
	cancel := p.RequestAnimationFrame(func() { close(done) })
	require.NotNil(t, cancel)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("frame callback never ran")
	}
	cancel()
}

func TestKeyOf(t *testing.T) {
	id, ok := keyOf(&Element{id: "z9"})
	assert.True(t, ok)
	assert.Equal(t, "z9", id)

	var nilElement *Element
	_, ok = keyOf(nilElement)
	assert.False(t, ok)

	assert.Nil(t, wrap(""))
	assert.Equal(t, "z2", wrap("z2").Key())
}
