package dom_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsert/zarm-web/internal/browser/dom"
	"github.com/lsert/zarm-web/internal/popper"
)

func TestParse_FragmentGetsRoot(t *testing.T) {
	doc, err := dom.Parse(strings.NewReader(`<div id="only"></div>`))
	require.NoError(t, err)
	assert.Equal(t, "/html[1]", doc.Root().Key())
	assert.Equal(t, `//*[@id='only']`, byID(t, doc, "only").Key())
}

func TestDocument_Find(t *testing.T) {
	doc := parseLayout(t)

	first := byID(t, doc, "ref")
	assert.Same(t, first, byID(t, doc, "ref"))

	_, err := doc.Find("//*[@id='missing']")
	assert.ErrorIs(t, err, dom.ErrNoSuchElement)

	_, err = doc.Find("//*[@id=")
	require.Error(t, err)
	assert.NotErrorIs(t, err, dom.ErrNoSuchElement)

	_, err = doc.Find("//text()")
	assert.ErrorIs(t, err, dom.ErrNoSuchElement)
}

func TestDocument_Attributes(t *testing.T) {
	doc := parseLayout(t)
	pop := byID(t, doc, "pop")

	doc.SetAttribute(pop, "x-placement", "top")
	doc.SetAttribute(pop, "x-placement", "bottom")
	assert.Contains(t, render(t, doc), `x-placement="bottom"`)
	assert.Equal(t, 1, strings.Count(render(t, doc), "x-placement"))
	assert.Equal(t, "bottom", doc.Attribute(pop, "x-placement"))

	doc.RemoveAttribute(pop, "x-placement")
	assert.NotContains(t, render(t, doc), "x-placement")
	assert.Empty(t, doc.Attribute(pop, "x-placement"))
	assert.Empty(t, doc.Attribute(otherElement("pop"), "id"))
}

func TestDocument_ApplyStyle(t *testing.T) {
	doc := parseLayout(t)
	ref := byID(t, doc, "ref")

	doc.ApplyStyle(ref, popper.Style{"left": "", "top": "", "width": "", "height": "", "position": ""})
	assert.Contains(t, render(t, doc), `<div id="ref"></div>`)

	doc.ApplyStyle(ref, popper.Style{"position": "fixed"})
	assert.Contains(t, render(t, doc), `<div id="ref" style="position: fixed;"></div>`)
	assert.True(t, doc.IsFixed(ref))

	// foreign elements are ignored
	doc.ApplyStyle(otherElement("ref"), popper.Style{"position": "absolute"})
	assert.True(t, doc.IsFixed(ref))
}

func TestDocument_QuerySelector(t *testing.T) {
	doc := parseLayout(t)
	pop := byID(t, doc, "pop")

	arrow, ok := doc.QuerySelector(pop, "[x-arrow]")
	require.True(t, ok)
	assert.Equal(t, `//*[@id='pop']/div[1]`, arrow.Key())
	assert.Equal(t, popper.Size{Width: 10, Height: 10}, doc.OuterSize(arrow))

	_, ok = doc.QuerySelector(pop, "#missing")
	assert.False(t, ok)
	_, ok = doc.QuerySelector(pop, "div:first-child")
	assert.False(t, ok)
	_, ok = doc.QuerySelector(otherElement("pop"), "[x-arrow]")
	assert.False(t, ok)

	// only descendants match
	_, ok = doc.QuerySelector(byID(t, doc, "ref"), "[x-arrow]")
	assert.False(t, ok)
}

func TestDocument_Remove(t *testing.T) {
	doc := parseLayout(t)
	doc.Remove(byID(t, doc, "pop"))

	_, err := doc.Find("//*[@id='pop']")
	assert.ErrorIs(t, err, dom.ErrNoSuchElement)
	assert.NotContains(t, render(t, doc), "x-arrow")
}

func TestDocument_Events(t *testing.T) {
	doc := parseLayout(t)
	panel := byID(t, doc, "panel")

	var windowScrolls, panelScrolls, resizes int
	_, err := doc.Listen(nil, popper.EventScroll, func() { windowScrolls++ })
	require.NoError(t, err)
	panelSub, err := doc.Listen(panel, popper.EventScroll, func() { panelScrolls++ })
	require.NoError(t, err)
	_, err = doc.Listen(nil, popper.EventResize, func() { resizes++ })
	require.NoError(t, err)

	_, err = doc.Listen(otherElement("panel"), popper.EventScroll, func() {})
	assert.ErrorIs(t, err, dom.ErrForeignElement)

	require.NoError(t, doc.ScrollTo(mustFind(t, doc, "//body"), 0, 10))
	require.NoError(t, doc.ScrollTo(panel, 0, 40))
	assert.Equal(t, 1, windowScrolls)
	assert.Equal(t, 1, panelScrolls)
	assert.Equal(t, 40.0, doc.ScrollTop(panel))
	assert.Equal(t, 10.0, doc.ScrollTop(doc.Root()))

	doc.Resize(640, 480)
	assert.Equal(t, 1, resizes)
	assert.Equal(t, popper.Size{Width: 640, Height: 480}, doc.Viewport())

	panelSub.Cancel()
	assert.Equal(t, 0, doc.Dispatch(panel, popper.EventScroll))
	assert.Equal(t, 1, doc.Dispatch(nil, popper.EventScroll))
	assert.Equal(t, 0, doc.Dispatch(otherElement("x"), popper.EventScroll))

	assert.ErrorIs(t, doc.ScrollTo(otherElement("x"), 0, 0), dom.ErrForeignElement)
}

func TestDocument_Frames(t *testing.T) {
	doc := parseLayout(t)

	var ran []string
	doc.RequestAnimationFrame(func() { ran = append(ran, "a") })
	cancel := doc.RequestAnimationFrame(func() { ran = append(ran, "b") })
	doc.RequestAnimationFrame(func() {
		ran = append(ran, "c")
		doc.RequestAnimationFrame(func() { ran = append(ran, "d") })
	})
	cancel()

	assert.Equal(t, 2, doc.Flush())
	assert.Equal(t, []string{"a", "c"}, ran)
	assert.Equal(t, 1, doc.Flush())
	assert.Equal(t, []string{"a", "c", "d"}, ran)
	assert.Equal(t, 0, doc.Flush())
}
