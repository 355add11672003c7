package render

import (
	"github.com/go-webcore/minibrowser/engine/layout"
)

// Fold walks box's laid-out LayoutBox tree and produces the immutable
// RenderBox tree a painter consumes: Block boxes keep their background and
// border, AnonymousBlock boxes vanish (their closed LineBoxes are spliced
// directly into the parent Block's children, matching the original
// render.rs's BlockBox.boxes holding Block and Line variants side by side),
// and InlineBlock boxes fold like ordinary Block boxes wherever they were
// placed.
func Fold(box *layout.LayoutBox) *Box {
	switch box.BoxType {
	case layout.BlockBox, layout.InlineBlockBox:
		return foldBlock(box)
	default:
		// A bare Inline/AnonymousBlock box passed as the fold root (e.g. a
		// document whose root element is itself inline) has no border box
		// of its own; splice its lines into a synthetic, borderless Block
		// so the caller still gets a single root.
		b := &Box{Kind: BlockKind, Rect: box.Dimensions.Content}
		appendInlineFold(b, box)
		return b
	}
}

func foldBlock(box *layout.LayoutBox) *Box {
	b := &Box{
		Kind: BlockKind,
		Rect: box.Dimensions.BorderBox(),
	}
	if box.Styled != nil {
		if _, ok := box.Styled.Value("background-color"); ok {
			c := box.Styled.Color("background-color")
			b.Background = &c
		}
		b.Border = borderSides(box)
	}
	for _, child := range box.Children {
		switch child.BoxType {
		case layout.BlockBox, layout.InlineBlockBox:
			b.Children = append(b.Children, foldBlock(child))
		default:
			appendInlineFold(b, child)
		}
	}
	return b
}

// appendInlineFold splices an AnonymousBlock/Inline box's closed LineBoxes
// into parent's children as sibling Line boxes, since an anonymous block
// carries no styled node and therefore nothing to paint of its own.
func appendInlineFold(parent *Box, inlineBox *layout.LayoutBox) {
	for _, line := range inlineBox.Lines {
		parent.Children = append(parent.Children, foldLine(line))
	}
}

func foldLine(line layout.LineBox) *Box {
	b := &Box{Kind: LineKind, Rect: line.Rect}
	for _, frag := range line.Fragments {
		b.Fragments = append(b.Fragments, foldFragment(frag))
	}
	return b
}

func foldFragment(frag layout.Fragment) Fragment {
	switch frag.Kind {
	case layout.TextFragmentKind:
		return Fragment{Kind: TextFragment, Rect: frag.Rect, Text: frag.Text, Color: frag.Color}
	case layout.ImageFragmentKind:
		return Fragment{Kind: ImageFragment, Rect: frag.Rect, Node: frag.Node}
	case layout.BoxFragmentKind:
		return Fragment{Kind: BoxFragment, Rect: frag.Rect, Box: foldBlock(frag.Box)}
	}
	return Fragment{}
}

// borderSides collects the four border edges in render winding order (top,
// right, bottom, left). Widths come from the box's laid-out Dimensions,
// which already apply the border-width shorthand; colors come from the
// border-*-color longhands only, and the border-color shorthand is not
// consulted.
func borderSides(box *layout.LayoutBox) [4]Border {
	d := box.Dimensions
	return [4]Border{
		{WidthPx: d.Border.Top, Color: box.Styled.Color("border-top-color")},
		{WidthPx: d.Border.Right, Color: box.Styled.Color("border-right-color")},
		{WidthPx: d.Border.Bottom, Color: box.Styled.Color("border-bottom-color")},
		{WidthPx: d.Border.Left, Color: box.Styled.Color("border-left-color")},
	}
}
