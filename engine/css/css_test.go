package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-webcore/minibrowser/core/cssval"
)

func TestParseSimpleRule(t *testing.T) {
	sheet, err := Parse([]byte(`div { color: #ff0000; }`), "")
	require.NoError(t, err)
	require.Len(t, sheet.Rules, 1)
	rule := sheet.Rules[0].Style
	require.Len(t, rule.Selectors, 1)
	assert.Equal(t, "div", rule.Selectors[0].Tag)
	require.Len(t, rule.Declarations, 1)
	assert.Equal(t, "color", rule.Declarations[0].Name)
	hex, ok := rule.Declarations[0].Value.AsHexColor()
	require.True(t, ok)
	assert.Equal(t, "#ff0000", hex)
}

func TestHexColorSixVsThreeDigits(t *testing.T) {
	sheet, err := Parse([]byte(`p { color: #ABC; background-color: #AABBCC; }`), "")
	require.NoError(t, err)
	decls := sheet.Rules[0].Style.Declarations
	hex3, _ := decls[0].Value.AsHexColor()
	assert.Equal(t, "#abc", hex3)
	hex6, _ := decls[1].Value.AsHexColor()
	assert.Equal(t, "#aabbcc", hex6)
}

func TestFourValueMarginShorthand(t *testing.T) {
	sheet, err := Parse([]byte(`div { margin: 1px 2px 3px 4px; }`), "")
	require.NoError(t, err)
	val := sheet.Rules[0].Style.Declarations[0].Value
	items, ok := val.AsArray()
	require.True(t, ok)
	require.Len(t, items, 4)
	for i, want := range []float64{1, 2, 3, 4} {
		n, unit, ok := items[i].AsLength()
		require.True(t, ok)
		assert.Equal(t, cssval.Px, unit)
		assert.Equal(t, want, n)
	}
}

func TestTwoAndThreeValueShorthand(t *testing.T) {
	sheet, err := Parse([]byte(`a { margin: 1px 2px; } b { margin: 1px 2px 3px; }`), "")
	require.NoError(t, err)
	items2, ok := sheet.Rules[0].Style.Declarations[0].Value.AsArray()
	require.True(t, ok)
	assert.Len(t, items2, 2)
	items3, ok := sheet.Rules[1].Style.Declarations[0].Value.AsArray()
	require.True(t, ok)
	assert.Len(t, items3, 3)
}

func TestCommaSeparatedList(t *testing.T) {
	sheet, err := Parse([]byte(`p { font-family: arial, sans-serif; }`), "")
	require.NoError(t, err)
	items, ok := sheet.Rules[0].Style.Declarations[0].Value.AsArray()
	require.True(t, ok)
	require.Len(t, items, 2)
	kw0, _ := items[0].AsKeyword()
	assert.Equal(t, "arial", kw0)
	kw1, _ := items[1].AsKeyword()
	assert.Equal(t, "sans-serif", kw1)
}

func TestSingleValueIsNotWrappedInArray(t *testing.T) {
	sheet, err := Parse([]byte(`p { display: block; }`), "")
	require.NoError(t, err)
	val := sheet.Rules[0].Style.Declarations[0].Value
	_, ok := val.AsArray()
	assert.False(t, ok)
	kw, ok := val.AsKeyword()
	require.True(t, ok)
	assert.Equal(t, "block", kw)
}

func TestURLFunCall(t *testing.T) {
	sheet, err := Parse([]byte(`@font-face { src: url("fonts/a.woff2") format("woff2"); }`), "")
	require.NoError(t, err)
	require.Len(t, sheet.Rules, 1)
	require.Equal(t, AtRuleKind, sheet.Rules[0].Kind)
}

func TestURLFunCallInRule(t *testing.T) {
	sheet, err := Parse([]byte(`div { background: url(images/bg.png); }`), "")
	require.NoError(t, err)
	val := sheet.Rules[0].Style.Declarations[0].Value
	name, args, ok := val.AsFunCall()
	require.True(t, ok)
	assert.Equal(t, "url", name)
	require.Len(t, args, 1)
	s, ok := args[0].AsString()
	require.True(t, ok)
	assert.Equal(t, "images/bg.png", s)
}

func TestUnicodeRangeAndCodepoint(t *testing.T) {
	sheet, err := Parse([]byte(`@font-face { unicode-range: U+0025-00FF; }`), "")
	require.NoError(t, err)
	at := sheet.Rules[0].At
	lo, hi, ok := at.Rules[0].Style.Declarations[0].Value.AsUnicodeRange()
	require.True(t, ok)
	assert.Equal(t, rune(0x25), lo)
	assert.Equal(t, rune(0xFF), hi)
}

func TestAncestorSelector(t *testing.T) {
	sheet, err := Parse([]byte(`div p { color: #000000; }`), "")
	require.NoError(t, err)
	sel := sheet.Rules[0].Style.Selectors[0]
	require.Equal(t, AncestorSelectorKind, sel.Kind)
	assert.Equal(t, "div", sel.Ancestor.Tag)
	assert.Equal(t, "p", sel.Child.Tag)
}

func TestAncestorSelectorSpecificitySumsBothHalves(t *testing.T) {
	// The grammar has no compound tag+class selector syntax, so build the
	// two Simple halves directly to exercise Specificity()'s summation.
	ancestor := Selector{Kind: SimpleSelectorKind, Tag: "div", Classes: []string{"container"}}
	child := Selector{Kind: SimpleSelectorKind, Tag: "p", Classes: []string{"lead"}}
	sel := Selector{Kind: AncestorSelectorKind, Ancestor: &ancestor, Child: &child}
	sp := sel.Specificity()
	// div.container (1 class, 1 tag) + p.lead (1 class, 1 tag) = 2 classes, 2 tags.
	assert.Equal(t, Specificity{IDs: 0, Classes: 2, Tags: 2}, sp)
}

func TestSpecificityOrdering(t *testing.T) {
	idSel := Selector{Kind: SimpleSelectorKind, ID: "main"}
	classSel := Selector{Kind: SimpleSelectorKind, Classes: []string{"a", "b"}}
	tagSel := Selector{Kind: SimpleSelectorKind, Tag: "div"}
	assert.True(t, tagSel.Specificity().Less(classSel.Specificity()))
	assert.True(t, classSel.Specificity().Less(idSel.Specificity()))
}

func TestClassAndStarSelectors(t *testing.T) {
	sheet, err := Parse([]byte(`.highlight { color: #fff; } * { margin: 0px; }`), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"highlight"}, sheet.Rules[0].Style.Selectors[0].Classes)
	assert.Equal(t, "*", sheet.Rules[1].Style.Selectors[0].Tag)
}

func TestSelectorList(t *testing.T) {
	sheet, err := Parse([]byte(`h1, h2, h3 { color: #333333; }`), "")
	require.NoError(t, err)
	require.Len(t, sheet.Rules[0].Style.Selectors, 3)
	assert.Equal(t, "h1", sheet.Rules[0].Style.Selectors[0].Tag)
	assert.Equal(t, "h2", sheet.Rules[0].Style.Selectors[1].Tag)
	assert.Equal(t, "h3", sheet.Rules[0].Style.Selectors[2].Tag)
}

func TestCommentsAreSkipped(t *testing.T) {
	sheet, err := Parse([]byte(`
		/* leading comment */
		div {
			/* inner comment */
			color: #010101;
		}
		/* trailing comment */
	`), "")
	require.NoError(t, err)
	var styleRules int
	for _, r := range sheet.Rules {
		if r.Kind == StyleRuleKind {
			styleRules++
		}
	}
	assert.Equal(t, 1, styleRules)
}

func TestImportRule(t *testing.T) {
	sheet, err := Parse([]byte(`@import url("base.css");`), "/sheets/")
	require.NoError(t, err)
	require.Len(t, sheet.Rules, 1)
	require.Equal(t, AtRuleKind, sheet.Rules[0].Kind)
	name, args, ok := sheet.Rules[0].At.Value.AsFunCall()
	require.True(t, ok)
	assert.Equal(t, "url", name)
	s, _ := args[0].AsString()
	assert.Equal(t, "base.css", s)
}

func TestMediaAtRuleIsRecognizedNotApplied(t *testing.T) {
	sheet, err := Parse([]byte(`@media screen { div { color: #fff; } }`), "")
	require.NoError(t, err)
	require.Len(t, sheet.Rules, 1)
	at := sheet.Rules[0].At
	assert.Equal(t, "media", at.Name)
	kw, ok := at.Value.AsKeyword()
	require.True(t, ok)
	assert.Equal(t, "screen", kw)
	require.Len(t, at.Rules, 1)
}

func TestNegativeAndFractionalLengths(t *testing.T) {
	sheet, err := Parse([]byte(`div { margin: -3px .5em; }`), "")
	require.NoError(t, err)
	items, ok := sheet.Rules[0].Style.Declarations[0].Value.AsArray()
	require.True(t, ok)
	n0, u0, _ := items[0].AsLength()
	assert.Equal(t, -3.0, n0)
	assert.Equal(t, cssval.Px, u0)
	n1, u1, _ := items[1].AsLength()
	assert.Equal(t, 0.5, n1)
	assert.Equal(t, cssval.Em, u1)
}

func TestBareNumberDeclaration(t *testing.T) {
	sheet, err := Parse([]byte(`p { line-height: 1.5; font-weight: 400; }`), "")
	require.NoError(t, err)
	n0, ok := sheet.Rules[0].Style.Declarations[0].Value.AsNumber()
	require.True(t, ok)
	assert.Equal(t, 1.5, n0)
	n1, ok := sheet.Rules[0].Style.Declarations[1].Value.AsNumber()
	require.True(t, ok)
	assert.Equal(t, 400.0, n1)
}

func TestMalformedRuleReturnsParseError(t *testing.T) {
	_, err := Parse([]byte(`div { color: ; }`), "")
	require.Error(t, err)
}
