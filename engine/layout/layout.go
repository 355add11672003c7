package layout

import (
	"strconv"
	"strings"

	"github.com/go-webcore/minibrowser/core/cssval"
	"github.com/go-webcore/minibrowser/core/fontcache"
	"github.com/go-webcore/minibrowser/engine/dom"
	"github.com/go-webcore/minibrowser/engine/style"
)

// BoxType discriminates the variant a LayoutBox holds. InlineBlockBox is not
// part of the documented data model (which only names Block/Inline/
// AnonymousBlock); it exists so layout_block's width/height algorithm can
// run on an inline-block element's own box while it is still routed into a
// parent's inline container like ordinary inline content, per the
// inline-block open question's resolution (see package style's Display).
type BoxType int

const (
	BlockBox BoxType = iota
	InlineBox
	InlineBlockBox
	AnonymousBlockBox
)

// Rect is an absolute (x, y, width, height) rectangle.
type Rect struct {
	X, Y, Width, Height float64
}

// EdgeSizes is a four-sided edge width, used for margin, border, and padding.
type EdgeSizes struct {
	Left, Right, Top, Bottom float64
}

func expand(r Rect, e EdgeSizes) Rect {
	return Rect{
		X:      r.X - e.Left,
		Y:      r.Y - e.Top,
		Width:  r.Width + e.Left + e.Right,
		Height: r.Height + e.Top + e.Bottom,
	}
}

// Dimensions is a box's nested content/padding/border/margin rectangles.
type Dimensions struct {
	Content Rect
	Padding EdgeSizes
	Border  EdgeSizes
	Margin  EdgeSizes
}

// PaddingBox extends Content outward by Padding.
func (d Dimensions) PaddingBox() Rect { return expand(d.Content, d.Padding) }

// BorderBox extends PaddingBox outward by Border.
func (d Dimensions) BorderBox() Rect { return expand(d.PaddingBox(), d.Border) }

// MarginBox extends BorderBox outward by Margin.
func (d Dimensions) MarginBox() Rect { return expand(d.BorderBox(), d.Margin) }

// FragmentKind discriminates the variant a Fragment holds.
type FragmentKind int

const (
	TextFragmentKind FragmentKind = iota
	ImageFragmentKind
	BoxFragmentKind
)

// Fragment is one positioned atom of an inline formatting context: a run of
// text, a replaced element such as an image, or a laid-out inline-block box.
type Fragment struct {
	Kind  FragmentKind
	Rect  Rect
	Text  string       // TextFragmentKind
	Color cssval.Color // TextFragmentKind, inherited "color"
	Node  *dom.Node    // ImageFragmentKind
	Box   *LayoutBox   // BoxFragmentKind
}

// LineBox is one closed line of an inline formatting context.
type LineBox struct {
	Rect      Rect
	Fragments []Fragment
}

// LayoutBox is one node of the layout tree: a Block or Inline box wrapping a
// StyledNode, or a synthetic AnonymousBlock with no styled node, wrapping a
// run of inline children under a block parent.
type LayoutBox struct {
	BoxType    BoxType
	Styled     *style.StyledNode // nil for AnonymousBlockBox
	Dimensions Dimensions
	Children   []*LayoutBox
	Lines      []LineBox // populated for AnonymousBlockBox / InlineBox laid out as an inline formatting context

	FontSizePx     float64
	FontFamily     string
	FontWeight     fontcache.Weight
	FontStyle      fontcache.Style
	TextColor      cssval.Color
	rootFontSizePx float64
}

// fontContext is the inherited font state threaded down the styled tree
// while building the layout tree, since Em/Rem length resolution needs the
// element's own computed font size and Rem resolution needs the document
// root's.
type fontContext struct {
	SizePx float64
	Family string
	Weight fontcache.Weight
	Style  fontcache.Style
	Color  cssval.Color
}

var defaultFontContext = fontContext{
	SizePx: 16,
	Family: "sans-serif",
	Weight: fontcache.Normal,
	Style:  fontcache.StyleNormal,
	Color:  cssval.Color{A: 1}, // black
}

func (fc fontContext) resolve(s *style.StyledNode, rootSizePx float64) fontContext {
	size := fc.SizePx
	if v, ok := s.Value("font-size"); ok {
		if px, ok := v.ToPx(fc.SizePx, rootSizePx, fc.SizePx); ok {
			size = px
		}
	}
	family := fc.Family
	if v, ok := s.Value("font-family"); ok {
		family = firstFamily(v, family)
	}
	weight := fc.Weight
	if v, ok := s.Value("font-weight"); ok {
		weight = parseWeight(v, weight)
	}
	fstyle := fc.Style
	if v, ok := s.Value("font-style"); ok {
		fstyle = parseFontStyle(v, fstyle)
	}
	color := fc.Color
	if _, ok := s.Value("color"); ok {
		color = s.Color("color")
	}
	return fontContext{SizePx: size, Family: family, Weight: weight, Style: fstyle, Color: color}
}

func firstFamily(v cssval.Value, fallback string) string {
	if items, ok := v.AsArray(); ok {
		if len(items) == 0 {
			return fallback
		}
		return firstFamily(items[0], fallback)
	}
	if kw, ok := v.AsKeyword(); ok {
		return kw
	}
	if s, ok := v.AsString(); ok {
		return s
	}
	return fallback
}

func parseWeight(v cssval.Value, fallback fontcache.Weight) fontcache.Weight {
	if kw, ok := v.AsKeyword(); ok {
		switch kw {
		case "bold":
			return fontcache.Bold
		case "normal":
			return fontcache.Normal
		}
		return fallback
	}
	if n, ok := v.AsNumber(); ok {
		return fontcache.Weight(n)
	}
	return fallback
}

func parseFontStyle(v cssval.Value, fallback fontcache.Style) fontcache.Style {
	kw, ok := v.AsKeyword()
	if !ok {
		return fallback
	}
	switch kw {
	case "italic":
		return fontcache.StyleItalic
	case "oblique":
		return fontcache.StyleOblique
	case "normal":
		return fontcache.StyleNormal
	}
	return fallback
}

func isAuto(v cssval.Value) bool {
	kw, ok := v.AsKeyword()
	return ok && kw == "auto"
}

func zeroPx() cssval.Value { return cssval.Length(0, cssval.Px) }

// sideFromShorthand picks the component of a 2/3/4-value shorthand array
// (margin: 1px 2px 3px 4px, CSS's top/right/bottom/left winding order) that
// applies to side. A non-array value applies to every side unchanged.
func sideFromShorthand(v cssval.Value, side string) (cssval.Value, bool) {
	items, ok := v.AsArray()
	if !ok {
		return v, true
	}
	switch len(items) {
	case 2: // top/bottom, left/right
		switch side {
		case "top", "bottom":
			return items[0], true
		case "left", "right":
			return items[1], true
		}
	case 3: // top, left/right, bottom
		switch side {
		case "top":
			return items[0], true
		case "left", "right":
			return items[1], true
		case "bottom":
			return items[2], true
		}
	case 4: // top, right, bottom, left
		switch side {
		case "top":
			return items[0], true
		case "right":
			return items[1], true
		case "bottom":
			return items[2], true
		case "left":
			return items[3], true
		}
	}
	return cssval.Value{}, false
}

// sideLookup resolves one edge's value: the longhand property if set,
// otherwise the side's component of the shorthand if set, otherwise def.
func sideLookup(s *style.StyledNode, longhand, shorthand, side string, def cssval.Value) cssval.Value {
	if v, ok := s.Value(longhand); ok {
		return v
	}
	if v, ok := s.Value(shorthand); ok {
		if sv, ok := sideFromShorthand(v, side); ok {
			return sv
		}
	}
	return def
}

// BuildDocumentLayout builds the layout tree for styled's whole subtree,
// rooted with the default 16px/sans-serif font context. The root element's
// own computed font size becomes the fixed reference every Rem length in
// the document resolves against.
func BuildDocumentLayout(styled *style.StyledNode) *LayoutBox {
	return BuildDocumentLayoutWithRootFontSize(styled, defaultFontContext.SizePx)
}

// BuildDocumentLayoutWithRootFontSize is BuildDocumentLayout with the root
// font size overridable, for callers (package browser) that source it from
// configuration instead of accepting CSS's 16px default outright.
func BuildDocumentLayoutWithRootFontSize(styled *style.StyledNode, rootFontSizePx float64) *LayoutBox {
	base := defaultFontContext
	base.SizePx = rootFontSizePx
	rootFC := base.resolve(styled, rootFontSizePx)
	return buildLayoutTree(styled, base, rootFC.SizePx)
}

func boxTypeForDisplay(d style.Display) (BoxType, bool) {
	switch d {
	case style.Block:
		return BlockBox, true
	case style.InlineBlock:
		return InlineBlockBox, true
	case style.None:
		return 0, false
	default:
		return InlineBox, true
	}
}

func buildLayoutTree(styled *style.StyledNode, parentFC fontContext, rootSizePx float64) *LayoutBox {
	bt, ok := boxTypeForDisplay(styled.Display())
	if !ok {
		return nil
	}
	fc := parentFC.resolve(styled, rootSizePx)
	box := &LayoutBox{
		BoxType:        bt,
		Styled:         styled,
		FontSizePx:     fc.SizePx,
		FontFamily:     fc.Family,
		FontWeight:     fc.Weight,
		FontStyle:      fc.Style,
		TextColor:      fc.Color,
		rootFontSizePx: rootSizePx,
	}

	blockish := bt == BlockBox || bt == InlineBlockBox
	for _, styledChild := range styled.Children {
		childBox := buildLayoutTree(styledChild, fc, rootSizePx)
		if childBox == nil {
			continue
		}
		switch {
		case childBox.BoxType == BlockBox:
			box.Children = append(box.Children, childBox)
		case blockish:
			container := getInlineContainer(box)
			container.Children = append(container.Children, childBox)
		default:
			box.Children = append(box.Children, childBox)
		}
	}
	return box
}

// getInlineContainer returns box's trailing AnonymousBlockBox child, creating
// one if the last child isn't already one.
func getInlineContainer(box *LayoutBox) *LayoutBox {
	if n := len(box.Children); n > 0 && box.Children[n-1].BoxType == AnonymousBlockBox {
		return box.Children[n-1]
	}
	anon := &LayoutBox{BoxType: AnonymousBlockBox, rootFontSizePx: box.rootFontSizePx}
	box.Children = append(box.Children, anon)
	return anon
}

// Layout computes box's geometry against containingBlock, recursing into
// children. It is the single entry point both the driver and inline-block
// measurement call.
func Layout(box *LayoutBox, containingBlock Dimensions, fonts *fontcache.Cache) {
	switch box.BoxType {
	case BlockBox, InlineBlockBox:
		layoutBlock(box, containingBlock, fonts)
	case InlineBox, AnonymousBlockBox:
		layoutInlineContext(box, containingBlock, fonts)
	}
}

func layoutBlock(box *LayoutBox, cb Dimensions, fonts *fontcache.Cache) {
	calculateBlockWidth(box, cb)
	calculateBlockPosition(box, cb)
	layoutBlockChildren(box, fonts)
	calculateBlockHeight(box)
}

func calculateBlockWidth(box *LayoutBox, cb Dimensions) {
	s := box.Styled
	fs, root := box.FontSizePx, box.rootFontSizePx

	width := s.Lookup("width", "width", cssval.Keyword("auto"))
	marginLeft := sideLookup(s, "margin-left", "margin", "left", zeroPx())
	marginRight := sideLookup(s, "margin-right", "margin", "right", zeroPx())
	borderLeft := sideLookup(s, "border-left-width", "border-width", "left", zeroPx())
	borderRight := sideLookup(s, "border-right-width", "border-width", "right", zeroPx())
	paddingLeft := sideLookup(s, "padding-left", "padding", "left", zeroPx())
	paddingRight := sideLookup(s, "padding-right", "padding", "right", zeroPx())

	toPx := func(v cssval.Value) float64 {
		px, ok := v.ToPx(fs, root, cb.Content.Width)
		if !ok {
			return 0
		}
		return px
	}

	widthAuto := isAuto(width)
	mlAuto := isAuto(marginLeft)
	mrAuto := isAuto(marginRight)

	total := toPx(marginLeft) + toPx(marginRight) + toPx(borderLeft) + toPx(borderRight) + toPx(paddingLeft) + toPx(paddingRight)
	if !widthAuto {
		total += toPx(width)
	}

	coerced := false
	if !widthAuto && total > cb.Content.Width {
		if mlAuto {
			marginLeft, mlAuto = zeroPx(), false
			coerced = true
		}
		if mrAuto {
			marginRight, mrAuto = zeroPx(), false
			coerced = true
		}
	}

	underflow := cb.Content.Width - total

	var widthPx, mlPx, mrPx float64
	switch {
	case !widthAuto && !mlAuto && !mrAuto:
		// An auto margin coerced to 0 above already absorbed the overflow;
		// redistributing underflow into the other, explicitly-specified
		// margin here would silently override an author-set value.
		widthPx, mlPx, mrPx = toPx(width), toPx(marginLeft), toPx(marginRight)
		if !coerced {
			mrPx += underflow
		}
	case !widthAuto && !mlAuto && mrAuto:
		widthPx, mlPx, mrPx = toPx(width), toPx(marginLeft), underflow
	case !widthAuto && mlAuto && !mrAuto:
		widthPx, mlPx, mrPx = toPx(width), underflow, toPx(marginRight)
	case !widthAuto && mlAuto && mrAuto:
		widthPx, mlPx, mrPx = toPx(width), underflow/2, underflow/2
	default:
		if mlAuto {
			mlPx = 0
		} else {
			mlPx = toPx(marginLeft)
		}
		if mrAuto {
			mrPx = 0
		} else {
			mrPx = toPx(marginRight)
		}
		if underflow >= 0 {
			widthPx = underflow
		} else {
			widthPx = 0
			mrPx += underflow
		}
	}

	box.Dimensions.Content.Width = widthPx
	box.Dimensions.Margin.Left = mlPx
	box.Dimensions.Margin.Right = mrPx
	box.Dimensions.Border.Left = toPx(borderLeft)
	box.Dimensions.Border.Right = toPx(borderRight)
	box.Dimensions.Padding.Left = toPx(paddingLeft)
	box.Dimensions.Padding.Right = toPx(paddingRight)
}

func calculateBlockPosition(box *LayoutBox, cb Dimensions) {
	s := box.Styled
	fs, root := box.FontSizePx, box.rootFontSizePx

	toPx := func(v cssval.Value) float64 {
		px, ok := v.ToPx(fs, root, cb.Content.Height)
		if !ok {
			return 0
		}
		return px
	}

	box.Dimensions.Margin.Top = toPx(sideLookup(s, "margin-top", "margin", "top", zeroPx()))
	box.Dimensions.Margin.Bottom = toPx(sideLookup(s, "margin-bottom", "margin", "bottom", zeroPx()))
	box.Dimensions.Border.Top = toPx(sideLookup(s, "border-top-width", "border-width", "top", zeroPx()))
	box.Dimensions.Border.Bottom = toPx(sideLookup(s, "border-bottom-width", "border-width", "bottom", zeroPx()))
	box.Dimensions.Padding.Top = toPx(sideLookup(s, "padding-top", "padding", "top", zeroPx()))
	box.Dimensions.Padding.Bottom = toPx(sideLookup(s, "padding-bottom", "padding", "bottom", zeroPx()))

	d := &box.Dimensions
	d.Content.X = cb.Content.X + d.Margin.Left + d.Border.Left + d.Padding.Left
	d.Content.Y = cb.Content.Y + cb.Content.Height + d.Margin.Top + d.Border.Top + d.Padding.Top
}

func layoutBlockChildren(box *LayoutBox, fonts *fontcache.Cache) {
	for _, child := range box.Children {
		Layout(child, box.Dimensions, fonts)
		box.Dimensions.Content.Height += child.Dimensions.MarginBox().Height
	}
}

func calculateBlockHeight(box *LayoutBox) {
	v, ok := box.Styled.Value("height")
	if !ok {
		return
	}
	if px, ok := v.ToPx(box.FontSizePx, box.rootFontSizePx, 0); ok {
		box.Dimensions.Content.Height = px
	}
}

// layoutInlineContext lays out an AnonymousBlockBox (or a bare Inline box
// used as a layout root) as an inline formatting context: it occupies the
// full containing-block width and accumulates height from its closed lines.
func layoutInlineContext(box *LayoutBox, cb Dimensions, fonts *fontcache.Cache) {
	box.Dimensions.Content.X = cb.Content.X
	box.Dimensions.Content.Y = cb.Content.Y + cb.Content.Height
	box.Dimensions.Content.Width = cb.Content.Width
	layoutInlineLines(box, fonts, cb.Content.Width)
}

// layoutInlineLines walks box's inline descendants in document order,
// flattening nested Inline boxes, and greedily packs text words and atomic
// replaced/inline-block fragments into lines no wider than width.
func layoutInlineLines(box *LayoutBox, fonts *fontcache.Cache, width float64) {
	originX := box.Dimensions.Content.X
	lineY := box.Dimensions.Content.Y

	var lines []LineBox
	var cur []Fragment
	curX := 0.0
	curHeight := 0.0

	closeLine := func() {
		if len(cur) == 0 {
			return
		}
		lines = append(lines, LineBox{
			Rect:      Rect{X: originX, Y: lineY, Width: width, Height: curHeight},
			Fragments: cur,
		})
		lineY += curHeight
		cur, curX, curHeight = nil, 0, 0
	}

	var walk func(n *LayoutBox)
	walk = func(n *LayoutBox) {
		if n.Styled != nil && n.Styled.Node.Type == dom.TextNode {
			walkTextRun(n, fonts, width, originX, &lineY, &cur, &curX, &curHeight, closeLine)
			return
		}
		if n.Styled != nil && n.Styled.Node.Type == dom.ElementNode && n.Styled.Node.Tag == "img" {
			w, h := imageIntrinsicSize(n)
			if curX > 0 && curX+w > width {
				closeLine()
			}
			cur = append(cur, Fragment{
				Kind: ImageFragmentKind,
				Node: n.Styled.Node,
				Rect: Rect{X: originX + curX, Y: lineY, Width: w, Height: h},
			})
			curX += w
			if h > curHeight {
				curHeight = h
			}
			return
		}
		if n.BoxType == InlineBlockBox {
			childCB := Dimensions{Content: Rect{X: originX + curX, Y: lineY, Width: width}}
			Layout(n, childCB, fonts)
			mb := n.Dimensions.MarginBox()
			if curX > 0 && curX+mb.Width > width {
				closeLine()
				childCB.Content.X = originX
				Layout(n, childCB, fonts)
				mb = n.Dimensions.MarginBox()
			}
			cur = append(cur, Fragment{Kind: BoxFragmentKind, Box: n, Rect: mb})
			curX += mb.Width
			if mb.Height > curHeight {
				curHeight = mb.Height
			}
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}

	for _, c := range box.Children {
		walk(c)
	}
	closeLine()

	box.Lines = lines
	box.Dimensions.Content.Height = lineY - box.Dimensions.Content.Y
}

// walkTextRun appends one text node's whitespace-delimited words (each with
// its trailing space folded in, matching the word-plus-space measurement
// the line-breaking scenario in the spec describes) to the line being built.
func walkTextRun(n *LayoutBox, fonts *fontcache.Cache, width, originX float64, lineY *float64, cur *[]Fragment, curX, curHeight *float64, closeLine func()) {
	lh := fonts.LineHeight(n.FontFamily, n.FontWeight, n.FontStyle, int(n.FontSizePx))
	for _, word := range strings.Fields(n.Styled.Node.Text) {
		piece := word + " "
		adv := fonts.Advance(piece, n.FontFamily, n.FontWeight, n.FontStyle, int(n.FontSizePx))
		if *curX > 0 && *curX+adv > width {
			closeLine()
		}
		*cur = append(*cur, Fragment{
			Kind:  TextFragmentKind,
			Text:  piece,
			Color: n.TextColor,
			Rect:  Rect{X: originX + *curX, Y: *lineY, Width: adv, Height: lh},
		})
		*curX += adv
		if lh > *curHeight {
			*curHeight = lh
		}
	}
}

// imageIntrinsicSize resolves an <img>'s box size from its width/height
// attributes (the common HTML sizing hint), falling back to 0x0 when
// neither is present: decoding the referenced image to find its natural
// size is the painter's concern, not layout's (see §6 external interfaces).
func imageIntrinsicSize(n *LayoutBox) (float64, float64) {
	w := parsePxAttr(n.Styled.Node.Attributes["width"])
	h := parsePxAttr(n.Styled.Node.Attributes["height"])
	return w, h
}

func parsePxAttr(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return float64(n)
}
