package dom_test

import (
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsert/zarm-web/internal/browser/dom"
)

const menuHTML = `
<html>
<body>
	<nav id="menu">
		<button>Open</button>
		<div class="popover"><span>one</span><span>two</span></div>
	</nav>
	<section>
		<p>first</p>
		<!-- comments are not elements -->
		<p>second</p>
		<div x-arrow></div>
	</section>
</body>
</html>`

func TestUniqueXPath(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(menuHTML))
	require.NoError(t, err)

	tests := []struct {
		name, target, expected string
	}{
		{"root", "/html", "/html[1]"},
		{"body", "//body", "/html[1]/body[1]"},
		{"id anchor", "//nav", `//*[@id='menu']`},
		{"below an id", "//nav/div/span[2]", `//*[@id='menu']/div[1]/span[2]`},
		{"same tag siblings", "//section/p[2]", "/html[1]/body[1]/section[1]/p[2]"},
		{"attribute only", "//*[@x-arrow]", "/html[1]/body[1]/section[1]/div[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := htmlquery.FindOne(doc, tt.target)
			require.NotNil(t, node)

			got := dom.UniqueXPath(node)
			assert.Equal(t, tt.expected, got)
			assert.Same(t, node, htmlquery.FindOne(doc, got))
		})
	}

	assert.Equal(t, "", dom.UniqueXPath(nil))
	assert.Equal(t, "/", dom.UniqueXPath(doc))
}
