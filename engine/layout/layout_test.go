package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-webcore/minibrowser/core/cssval"
	"github.com/go-webcore/minibrowser/core/fontcache"
	"github.com/go-webcore/minibrowser/engine/dom"
	"github.com/go-webcore/minibrowser/engine/style"
)

// styledBlock builds a styled element with display: block unless props
// names another display value.
func styledBlock(tag string, props style.PropertyMap, children ...*style.StyledNode) *style.StyledNode {
	if _, ok := props["display"]; !ok {
		props["display"] = cssval.Keyword("block")
	}
	return &style.StyledNode{
		Node:     dom.NewElement(tag, nil),
		Props:    props,
		Children: children,
	}
}

func viewport(width float64) Dimensions {
	return Dimensions{Content: Rect{Width: width}}
}

func TestCenteringViaAutoMargins(t *testing.T) {
	styled := styledBlock("div", style.PropertyMap{
		"width":  cssval.Length(100, cssval.Px),
		"margin": cssval.Keyword("auto"),
	})
	box := BuildDocumentLayout(styled)
	fonts := fontcache.New()
	Layout(box, viewport(300), fonts)

	assert.Equal(t, 100.0, box.Dimensions.Margin.Left)
	assert.Equal(t, 100.0, box.Dimensions.Margin.Right)
	assert.Equal(t, 100.0, box.Dimensions.Content.Width)
}

func TestOverflowCoercion(t *testing.T) {
	styled := styledBlock("div", style.PropertyMap{
		"width":        cssval.Length(400, cssval.Px),
		"margin-left":  cssval.Keyword("auto"),
		"margin-right": cssval.Length(50, cssval.Px),
	})
	box := BuildDocumentLayout(styled)
	fonts := fontcache.New()
	Layout(box, viewport(300), fonts)

	assert.Equal(t, 0.0, box.Dimensions.Margin.Left)
	assert.Equal(t, 50.0, box.Dimensions.Margin.Right)
	assert.Equal(t, 400.0, box.Dimensions.Content.Width)
}

func TestFourValueMarginShorthandAfterLayout(t *testing.T) {
	styled := styledBlock("div", style.PropertyMap{
		"width": cssval.Length(100, cssval.Px),
		"margin": cssval.Array(
			cssval.Length(1, cssval.Px),
			cssval.Length(2, cssval.Px),
			cssval.Length(3, cssval.Px),
			cssval.Length(4, cssval.Px),
		),
	})
	box := BuildDocumentLayout(styled)
	fonts := fontcache.New()
	// 4 + 100 + 2 fills the containing block exactly, so no underflow is
	// added to margin-right.
	Layout(box, viewport(106), fonts)

	assert.Equal(t, 1.0, box.Dimensions.Margin.Top)
	assert.Equal(t, 2.0, box.Dimensions.Margin.Right)
	assert.Equal(t, 3.0, box.Dimensions.Margin.Bottom)
	assert.Equal(t, 4.0, box.Dimensions.Margin.Left)
}

func TestInlineWordWrapping(t *testing.T) {
	fonts := fontcache.New()
	const sizePx = 20
	wordAdv := fonts.Advance("aaaa ", "sans-serif", fontcache.Normal, fontcache.StyleNormal, sizePx)
	width := wordAdv * 2 // exactly two words fit per line

	text := &style.StyledNode{Node: dom.NewText("aaaa bbbb cccc"), Props: style.PropertyMap{}}
	textBox := &LayoutBox{
		BoxType:    InlineBox,
		Styled:     text,
		FontSizePx: sizePx,
		FontFamily: "sans-serif",
		FontWeight: fontcache.Normal,
		FontStyle:  fontcache.StyleNormal,
	}
	box := &LayoutBox{BoxType: AnonymousBlockBox, Children: []*LayoutBox{textBox}}

	Layout(box, viewport(width), fonts)

	require.Len(t, box.Lines, 2)
	assert.Equal(t, "aaaa ", box.Lines[0].Fragments[0].Text)
	assert.Equal(t, "bbbb ", box.Lines[0].Fragments[1].Text)
	assert.Equal(t, "cccc ", box.Lines[1].Fragments[0].Text)
}

func TestSiblingStacking(t *testing.T) {
	styled := styledBlock("body", style.PropertyMap{},
		styledBlock("div", style.PropertyMap{"height": cssval.Length(50, cssval.Px)}),
		styledBlock("div", style.PropertyMap{"height": cssval.Length(30, cssval.Px)}),
	)
	box := BuildDocumentLayout(styled)
	fonts := fontcache.New()
	Layout(box, viewport(300), fonts)

	require.Len(t, box.Children, 2)
	first, second := box.Children[0], box.Children[1]
	assert.GreaterOrEqual(t, second.Dimensions.Content.Y, first.Dimensions.Content.Y+first.Dimensions.MarginBox().Height)
	assert.Equal(t, 80.0, box.Dimensions.Content.Height)
}

func TestAnonymousBlockWrappingInvariant(t *testing.T) {
	styled := styledBlock("p", style.PropertyMap{},
		&style.StyledNode{Node: dom.NewText("hello "), Props: style.PropertyMap{}},
		styledBlock("em", style.PropertyMap{"display": cssval.Keyword("inline")}, &style.StyledNode{Node: dom.NewText("world"), Props: style.PropertyMap{}}),
	)
	box := BuildDocumentLayout(styled)
	require.Len(t, box.Children, 1)
	assert.Equal(t, AnonymousBlockBox, box.Children[0].BoxType)
}
