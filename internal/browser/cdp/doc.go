// Package cdp drives the popper engine against a live Chrome tab over the
// DevTools protocol.
//
// Every element the engine touches is tagged with a data-zarm-id attribute by
// a small script injected into each document; the Go side only ever holds
// those ids. Events come back through a runtime binding, so listeners and
// animation frames run on their own goroutines, never on the chromedp event
// loop.
package cdp
