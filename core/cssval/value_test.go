package cssval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromHexShortForm(t *testing.T) {
	c, err := FromHex("#abc")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 0xaa, G: 0xbb, B: 0xcc, A: 1}, c)
}

func TestFromHexLongFormWithAlpha(t *testing.T) {
	c, err := FromHex("ff00ff80")
	require.NoError(t, err)
	assert.Equal(t, uint8(0xff), c.R)
	assert.Equal(t, uint8(0x00), c.G)
	assert.Equal(t, uint8(0xff), c.B)
	assert.InDelta(t, 0.502, c.A, 0.01)
}

func TestFromHexInvalidLength(t *testing.T) {
	_, err := FromHex("#12")
	assert.Error(t, err)
}

func TestLengthRoundTrip(t *testing.T) {
	v := Length(1.5, Em)
	assert.Equal(t, "1.5em", v.String())
	n, u, ok := v.AsLength()
	require.True(t, ok)
	assert.Equal(t, 1.5, n)
	assert.Equal(t, Em, u)
}

func TestKeywordRoundTrip(t *testing.T) {
	v := Keyword("auto")
	assert.Equal(t, "auto", v.String())
	k, ok := v.AsKeyword()
	require.True(t, ok)
	assert.Equal(t, "auto", k)
}

func TestFunCallRoundTrip(t *testing.T) {
	v := FunCall("url", StringLiteral("foo.png"))
	assert.Equal(t, `url("foo.png")`, v.String())
	name, args, ok := v.AsFunCall()
	require.True(t, ok)
	assert.Equal(t, "url", name)
	require.Len(t, args, 1)
	s, ok := args[0].AsString()
	require.True(t, ok)
	assert.Equal(t, "foo.png", s)
}

func TestArrayRoundTrip(t *testing.T) {
	v := Array(Length(1, Px), Length(2, Px), Length(3, Px), Length(4, Px))
	assert.Equal(t, "1px 2px 3px 4px", v.String())
	items, ok := v.AsArray()
	require.True(t, ok)
	assert.Len(t, items, 4)
}

func TestUnicodeRangeRoundTrip(t *testing.T) {
	v := UnicodeRangeValue(0x0025, 0x00FF)
	assert.Equal(t, "U+0025-00FF", v.String())
	lo, hi, ok := v.AsUnicodeRange()
	require.True(t, ok)
	assert.Equal(t, rune(0x0025), lo)
	assert.Equal(t, rune(0x00FF), hi)
}

func TestToPxUnits(t *testing.T) {
	px, ok := Length(10, Px).ToPx(16, 16, 100)
	require.True(t, ok)
	assert.Equal(t, 10.0, px)

	em, ok := Length(2, Em).ToPx(16, 16, 100)
	require.True(t, ok)
	assert.Equal(t, 32.0, em)

	rem, ok := Length(2, Rem).ToPx(20, 16, 100)
	require.True(t, ok)
	assert.Equal(t, 32.0, rem)

	pct, ok := Length(50, Per).ToPx(16, 16, 200)
	require.True(t, ok)
	assert.Equal(t, 100.0, pct)
}

func TestToPxNonLength(t *testing.T) {
	_, ok := Keyword("auto").ToPx(16, 16, 100)
	assert.False(t, ok)
}
