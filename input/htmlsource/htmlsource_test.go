package htmlsource

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-webcore/minibrowser/engine/dom"
)

const fixture = `<html><head>
<style>p { color: red; }</style>
<link rel="stylesheet" href="theme.css">
</head><body>
  <p class="a">hello <em>world</em></p>
</body></html>`

func TestLoadBuildsDOMTree(t *testing.T) {
	doc, err := Load(strings.NewReader(fixture), "file:///page.html")
	require.NoError(t, err)
	require.Equal(t, "html", doc.Root.Tag)

	paras := dom.GetElementsByTagName(doc.Root, "p")
	require.Len(t, paras, 1)
	assert.Equal(t, "a", paras[0].Attributes["class"])
}

func TestLoadCollectsInlineAndLinkedStylesheets(t *testing.T) {
	doc, err := Load(strings.NewReader(fixture), "file:///page.html")
	require.NoError(t, err)
	require.Len(t, doc.Stylesheets, 2)
	assert.Contains(t, doc.Stylesheets[0].Inline, "color: red")
	assert.Equal(t, "theme.css", doc.Stylesheets[1].Href)
}

func TestLoadRejectsUnreadable(t *testing.T) {
	_, err := LoadFile("/nonexistent/path/page.html")
	assert.Error(t, err)
}
