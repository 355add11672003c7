// Package render defines the immutable render-box tree that is the hand-off
// artifact between layout and a painter: plain rectangles and positioned
// line fragments, with no further dependency on the styled/layout trees
// that produced them. Once built, a RenderBox owns all the data a painter
// needs and is safe to hand to a goroutine that outlives the layout pass.
// Images are always replaced inline content in this tree (there is no
// block-level replaced-element sizing pass), so they surface only as an
// ImageFragment inside a LineKind Box's Fragments, never as a Box of their
// own.
package render

import (
	"github.com/go-webcore/minibrowser/core/cssval"
	"github.com/go-webcore/minibrowser/engine/dom"
	"github.com/go-webcore/minibrowser/engine/layout"
)

// Kind discriminates the variant a Box holds.
type Kind int

const (
	BlockKind Kind = iota
	LineKind
)

// Rect is an absolute (x, y, width, height) rectangle in the page's
// top-level coordinate system.
type Rect = layout.Rect

// Border is one uniform-width, uniform-color edge. A zero-width Border
// paints nothing; the painter is expected to skip it.
type Border struct {
	WidthPx float64
	Color   cssval.Color
}

// Box is one node of the render tree: either a filled/bordered rectangle
// with block children, or a line of positioned glyph-run/image fragments.
type Box struct {
	Kind Kind
	Rect Rect

	// BlockKind
	Background *cssval.Color
	Border     [4]Border // top, right, bottom, left (CSS shorthand winding order)
	Children   []*Box

	// LineKind
	Fragments []Fragment
}

// FragmentKind discriminates the variant a Fragment holds.
type FragmentKind int

const (
	TextFragment FragmentKind = iota
	ImageFragment
	BoxFragment
)

// Fragment is one positioned atom inside a LineKind box: a glyph run, a
// replaced element, or a nested inline-block box rendered as its own
// sub-tree.
type Fragment struct {
	Kind  FragmentKind
	Rect  Rect
	Text  string
	Color cssval.Color
	Node  *dom.Node // ImageFragment
	Box   *Box      // BoxFragment
}
