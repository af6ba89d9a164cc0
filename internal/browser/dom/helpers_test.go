package dom_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lsert/zarm-web/internal/browser/dom"
)

const layoutHTML = `<!DOCTYPE html>
<html>
<body>
	<div id="ref" style="position: absolute; left: 100px; top: 50px; width: 80px; height: 20px"></div>
	<div id="pop" style="position: absolute; width: 80px; height: 40px">
		<div x-arrow style="width: 10px; height: 10px"></div>
	</div>
	<div id="panel" style="position: relative; left: 40px; top: 30px; width: 300px; height: 200px; overflow: auto" data-scroll-left="5" data-scroll-top="15">
		<span id="inner" style="margin-left: 4px; margin-top: 6px; width: 10px; height: 10px"></span>
		<div id="abs" style="position: absolute; left: 20px; top: 10px; width: 50px; height: 10px; margin: 2px 3px"></div>
	</div>
	<div id="bar" style="position: fixed; left: 0; top: 0; width: 1280px; height: 40px">
		<span id="badge" style="width: 5px; height: 5px"></span>
	</div>
</body>
</html>`

// otherElement belongs to no Document.
type otherElement string

func (e otherElement) Key() string { return string(e) }

func parseLayout(t *testing.T, opts ...dom.Option) *dom.Document {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader(layoutHTML), opts...)
	require.NoError(t, err)
	return doc
}

func mustFind(t *testing.T, doc *dom.Document, expr string) *dom.Element {
	t.Helper()
	el, err := doc.Find(expr)
	require.NoError(t, err)
	return el
}

func byID(t *testing.T, doc *dom.Document, id string) *dom.Element {
	t.Helper()
	return mustFind(t, doc, "//*[@id='"+id+"']")
}

func render(t *testing.T, doc *dom.Document) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, doc.Render(&b))
	return b.String()
}
