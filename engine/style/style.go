// Package style implements the cascade: matching CSS selectors against DOM
// elements, accumulating declarations into a specificity-ordered property
// map, and exposing the lookup API layout consumes (value/lookup/color/
// display). The output is a StyledNode tree isomorphic to the DOM tree it
// was built from.
package style

import (
	"sort"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/go-webcore/minibrowser/core/colornames"
	"github.com/go-webcore/minibrowser/core/cssval"
	"github.com/go-webcore/minibrowser/engine/css"
	"github.com/go-webcore/minibrowser/engine/dom"
)

func tracer() tracing.Trace {
	return tracing.Select("minibrowser.style")
}

// Display is the resolved value of the "display" property, narrowed to the
// four variants layout understands.
type Display int

const (
	Inline Display = iota
	Block
	InlineBlock
	None
)

// PropertyMap is a cascaded node's resolved string→Value declarations.
type PropertyMap map[string]cssval.Value

// StyledNode pairs a DOM node with its cascaded properties, mirroring the
// DOM tree one-to-one.
type StyledNode struct {
	Node     *dom.Node
	Props    PropertyMap
	Children []*StyledNode
}

// Value returns the declared value for name, if any was set by the cascade.
func (s *StyledNode) Value(name string) (cssval.Value, bool) {
	v, ok := s.Props[name]
	return v, ok
}

// Lookup returns the first of value(name), value(fallback), or def — used
// to implement shorthand fallback (e.g. margin-left falling back to margin).
func (s *StyledNode) Lookup(name, fallback string, def cssval.Value) cssval.Value {
	if v, ok := s.Props[name]; ok {
		return v
	}
	if v, ok := s.Props[fallback]; ok {
		return v
	}
	return def
}

// Color interprets the named property as a color: a resolved ColorValue
// passes through, a HexColor is parsed, and a Keyword is looked up in the
// named-color table. An unknown keyword or absent property yields
// transparent, matching the documented default-on-failure behavior.
func (s *StyledNode) Color(name string) cssval.Color {
	v, ok := s.Props[name]
	if !ok {
		return transparent
	}
	switch v.Kind() {
	case cssval.ColorKind:
		c, _ := v.AsColor()
		return c
	case cssval.HexColorKind:
		hex, _ := v.AsHexColor()
		c, err := cssval.FromHex(hex)
		if err != nil {
			tracer().Debugf("style: invalid hex color %q for %q", hex, name)
			return transparent
		}
		return c
	case cssval.KeywordKind:
		kw, _ := v.AsKeyword()
		if c, ok := colornames.Lookup(strings.ToLower(kw)); ok {
			return c
		}
		tracer().Debugf("style: unknown color keyword %q for %q", kw, name)
		return transparent
	}
	return transparent
}

var transparent = cssval.Color{R: 0, G: 0, B: 0, A: 0}

// Display resolves the display property: text nodes are always Inline,
// absent display defaults to Inline, and an unrecognized keyword also
// falls back to Inline.
func (s *StyledNode) Display() Display {
	if s.Node.Type == dom.TextNode {
		return Inline
	}
	v, ok := s.Props["display"]
	if !ok {
		return Inline
	}
	kw, ok := v.AsKeyword()
	if !ok {
		return Inline
	}
	switch kw {
	case "block":
		return Block
	case "inline":
		return Inline
	case "inline-block":
		return InlineBlock
	case "none":
		return None
	}
	tracer().Debugf("style: unrecognized display keyword %q, defaulting to inline", kw)
	return Inline
}

// LengthPx resolves a length-valued property to pixels given the context
// (current font size, root font size, and the containing dimension a
// percentage resolves against). ok is false if the property is absent or
// not a Length.
func (s *StyledNode) LengthPx(name string, fontSize, rootFontSize, containingDimension float64) (float64, bool) {
	v, ok := s.Props[name]
	if !ok {
		return 0, false
	}
	return v.ToPx(fontSize, rootFontSize, containingDimension)
}

// matchSimple implements Simple selector matching: an empty Tag/ID always
// matches, "*" matches any element, and every class named in the selector
// must be present on the element.
func matchSimple(n *dom.Node, sel css.Selector) bool {
	if n.Type != dom.ElementNode {
		return false
	}
	if sel.Tag != "" && sel.Tag != "*" && sel.Tag != n.Tag {
		return false
	}
	if sel.ID != "" && sel.ID != n.ID() {
		return false
	}
	if len(sel.Classes) > 0 {
		have := make(map[string]bool, len(n.Children))
		for _, c := range n.Classes() {
			have[c] = true
		}
		for _, want := range sel.Classes {
			if !have[want] {
				return false
			}
		}
	}
	return true
}

// matches implements selector matching against an element, given the chain
// of its ancestors (root first, immediate parent last). For an Ancestor
// selector this walks every recorded ancestor looking for one that matches
// the ancestor half, rather than checking only the child half: see
// Selector.Specificity in package css for the matching correction this
// mirrors.
func matches(ancestors []*dom.Node, n *dom.Node, sel css.Selector) bool {
	switch sel.Kind {
	case css.SimpleSelectorKind:
		return matchSimple(n, sel)
	case css.AncestorSelectorKind:
		if !matchSimple(n, *sel.Child) {
			return false
		}
		for _, a := range ancestors {
			if matchSimple(a, *sel.Ancestor) {
				return true
			}
		}
		return false
	}
	return false
}

// matchedRule pairs a matched rule's specificity with its declarations, for
// specificity-ordered application.
type matchedRule struct {
	specificity css.Specificity
	order       int
	decls       []css.Declaration
}

// matchingRules walks sheet's full parent chain (parents emitted first, so
// ancestor sheets sort before the sheet that imported them when
// specificities tie) collecting every rule with a selector that matches n.
func matchingRules(ancestors []*dom.Node, n *dom.Node, sheet *css.Stylesheet) []matchedRule {
	var chain []*css.Stylesheet
	for s := sheet; s != nil; s = s.Parent {
		chain = append(chain, s)
	}
	var out []matchedRule
	order := 0
	for i := len(chain) - 1; i >= 0; i-- {
		for _, rule := range chain[i].Rules {
			if rule.Kind != css.StyleRuleKind {
				continue
			}
			for _, sel := range rule.Style.Selectors {
				if matches(ancestors, n, sel) {
					out = append(out, matchedRule{
						specificity: sel.Specificity(),
						order:       order,
						decls:       rule.Style.Declarations,
					})
					order++
					break
				}
			}
		}
	}
	return out
}

// specifiedValues computes n's cascaded PropertyMap: matching rules stably
// sorted by ascending specificity (source order breaking ties), then every
// rule's declarations applied in that order so the last writer per property
// name wins.
func specifiedValues(ancestors []*dom.Node, n *dom.Node, sheet *css.Stylesheet) PropertyMap {
	rules := matchingRules(ancestors, n, sheet)
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].specificity.Less(rules[j].specificity)
	})
	props := make(PropertyMap)
	for _, r := range rules {
		for _, d := range r.decls {
			props[d.Name] = d.Value
		}
	}
	return props
}

// StyleTree builds the StyledNode tree for the subtree rooted at n against
// sheet's cascade chain. ancestors is the chain of n's own ancestors
// (root-first); callers building a whole document pass nil at the root.
func StyleTree(n *dom.Node, sheet *css.Stylesheet, ancestors []*dom.Node) *StyledNode {
	var props PropertyMap
	if n.Type == dom.TextNode {
		props = make(PropertyMap)
	} else {
		props = specifiedValues(ancestors, n, sheet)
	}
	styled := &StyledNode{Node: n, Props: props}
	if n.Type != dom.ElementNode {
		return styled
	}
	childAncestors := append(append([]*dom.Node{}, ancestors...), n)
	styled.Children = make([]*StyledNode, 0, len(n.Children))
	for _, child := range n.Children {
		styled.Children = append(styled.Children, StyleTree(child, sheet, childAncestors))
	}
	return styled
}

