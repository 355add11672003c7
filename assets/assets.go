// Package assets embeds the binary's built-in resources: the user-agent
// stylesheet every cascade chain is rooted at (spec §6, "Embedded default
// stylesheet"). Kept separate from package browser so the asset can be
// embedded relative to its own directory — go:embed paths cannot cross
// package boundaries with "..".
package assets

import _ "embed"

//go:embed default.css
var DefaultStylesheet []byte
