// Package dom is an offline geometry provider for the popper engine. It parses
// HTML with x/net/html, addresses elements through XPath (antchfx/htmlquery),
// derives every box from inline styles and writes positioning results back
// into the tree, which can then be rendered.
package dom
