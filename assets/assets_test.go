package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-webcore/minibrowser/engine/css"
)

func TestDefaultStylesheetParses(t *testing.T) {
	sheet, err := css.Parse(DefaultStylesheet, "embedded://default.css")
	require.NoError(t, err)
	assert.NotEmpty(t, sheet.Rules)
}

func TestDefaultStylesheetSetsBlockDisplayForDiv(t *testing.T) {
	sheet, err := css.Parse(DefaultStylesheet, "embedded://default.css")
	require.NoError(t, err)

	var found bool
	for _, r := range sheet.Rules {
		if r.Kind != css.StyleRuleKind {
			continue
		}
		for _, sel := range r.Style.Selectors {
			if sel.Kind == css.SimpleSelectorKind && sel.Tag == "div" {
				for _, d := range r.Style.Declarations {
					if d.Name == "display" {
						kw, ok := d.Value.AsKeyword()
						require.True(t, ok)
						assert.Equal(t, "block", kw)
						found = true
					}
				}
			}
		}
	}
	assert.True(t, found, "expected a div { display: block } rule")
}
