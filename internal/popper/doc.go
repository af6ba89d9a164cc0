// Package popper positions a floating element (tooltip, dropdown, popover)
// next to a reference element and keeps it there while the document scrolls
// and resizes.
//
// A pass computes the popper's box for the requested placement, computes the
// padded viewport boundaries, and threads the resulting State through an
// ordered list of modifiers: shift, offset, preventOverflow, keepTogether,
// arrow, flip and applyStyle by default. All document access goes through a
// Provider, so the engine runs the same against a live browser tab, a parsed
// HTML document or an in-memory fake.
package popper
