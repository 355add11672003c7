package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-webcore/minibrowser/engine/dom"
	"github.com/go-webcore/minibrowser/engine/layout"
	"github.com/go-webcore/minibrowser/render"
)

type fakeFetcher map[string]string

func (f fakeFetcher) Fetch(href, baseURL string) ([]byte, error) {
	if src, ok := f[href]; ok {
		return []byte(src), nil
	}
	return nil, notFoundError(href)
}

type notFoundError string

func (e notFoundError) Error() string { return "not found: " + string(e) }

// findByTag returns the first box in box's subtree whose styled node is an
// element with the given tag, or nil.
func findByTag(box *layout.LayoutBox, tag string) *layout.LayoutBox {
	if box == nil {
		return nil
	}
	if box.Styled != nil && box.Styled.Node.Type == dom.ElementNode && box.Styled.Node.Tag == tag {
		return box
	}
	for _, c := range box.Children {
		if found := findByTag(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func keywordOf(t *testing.T, box *layout.LayoutBox, prop string) string {
	t.Helper()
	v, ok := box.Styled.Value(prop)
	require.True(t, ok, "property %q not set", prop)
	kw, ok := v.AsKeyword()
	require.True(t, ok, "property %q is not a keyword", prop)
	return kw
}

func TestLoadEndToEndCentersBlockWithAutoMargins(t *testing.T) {
	html := `<html><head><style>.box { width: 100px; margin: auto; }</style></head>` +
		`<body><div class="box"></div></body></html>`
	cfg := Config{ViewportWidthPx: 300, ViewportHeightPx: 600, RootFontSizePx: 16}
	res, err := Load(strings.NewReader(html), "file:///page.html", cfg, nil, nil)
	require.NoError(t, err)

	box := findByTag(res.Layout, "div")
	require.NotNil(t, box)
	assert.Equal(t, 100.0, box.Dimensions.Margin.Left)
	assert.Equal(t, 100.0, box.Dimensions.Margin.Right)
	assert.Equal(t, 100.0, box.Dimensions.Content.Width)
}

func TestLoadAppliesLinkedStylesheetAndCascadesOverDefault(t *testing.T) {
	html := `<html><head><link rel="stylesheet" href="theme.css"></head>` +
		`<body><div class="box"></div></body></html>`
	fetcher := fakeFetcher{"theme.css": ".box { background-color: blue; }"}
	res, err := Load(strings.NewReader(html), "file:///page.html", DefaultConfig(), fetcher, nil)
	require.NoError(t, err)

	box := findByTag(res.Layout, "div")
	require.NotNil(t, box)
	assert.Equal(t, "blue", keywordOf(t, box, "background-color"))
}

func TestLoadSplicesImportAheadOfImportingSheet(t *testing.T) {
	html := `<html><head><style>@import url(base.css); .box { background-color: green; }</style></head>` +
		`<body><div class="box"></div></body></html>`
	fetcher := fakeFetcher{"base.css": ".box { background-color: red; }"}
	res, err := Load(strings.NewReader(html), "file:///page.html", DefaultConfig(), fetcher, nil)
	require.NoError(t, err)

	// The importing sheet's own rule was written after the @import, so it
	// must win the cascade even though both selectors tie on specificity.
	box := findByTag(res.Layout, "div")
	require.NotNil(t, box)
	assert.Equal(t, "green", keywordOf(t, box, "background-color"))
}

func TestLoadUnreachableLinkedStylesheetIsSkippedNotFatal(t *testing.T) {
	html := `<html><head><link rel="stylesheet" href="missing.css"></head>` +
		`<body><div class="box"></div></body></html>`
	res, err := Load(strings.NewReader(html), "file:///page.html", DefaultConfig(), fakeFetcher{}, nil)
	require.NoError(t, err)
	require.NotNil(t, findByTag(res.Layout, "div"))
}

func TestLoadBuildsRenderTreeWithBackground(t *testing.T) {
	html := `<html><head><style>div { background-color: red; width: 50px; height: 20px; }</style></head>` +
		`<body><div></div></body></html>`
	res, err := Load(strings.NewReader(html), "file:///page.html", DefaultConfig(), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Render)

	var found *render.Box
	var walk func(b *render.Box)
	walk = func(b *render.Box) {
		if b.Background != nil {
			found = b
		}
		for _, c := range b.Children {
			walk(c)
		}
	}
	walk(res.Render)
	require.NotNil(t, found)
	assert.Equal(t, uint8(255), found.Background.R)
}

func TestResolveHrefJoinsRelativeHrefToBaseDir(t *testing.T) {
	assert.Equal(t, "file:///a/b/theme.css", resolveHref("theme.css", "file:///a/b/page.html"))
	assert.Equal(t, "https://example.com/theme.css", resolveHref("https://example.com/theme.css", "file:///a/page.html"))
}
