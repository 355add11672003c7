package browser

import (
	"strconv"

	"github.com/npillmayer/schuko/gconf"
)

// Config is the small set of knobs the driver needs beyond the document
// itself: viewport size and the root font size every Rem length in the
// document resolves against. Defaults mirror a typical desktop viewport
// and CSS's own 16px root default (spec §4.3, "Unit conversion").
type Config struct {
	ViewportWidthPx  float64
	ViewportHeightPx float64
	RootFontSizePx   float64
}

// DefaultConfig returns hard-coded defaults, used when no gconf keys are
// set — e.g. library callers that never touch global configuration.
func DefaultConfig() Config {
	return Config{ViewportWidthPx: 800, ViewportHeightPx: 600, RootFontSizePx: 16}
}

// ConfigFromGConf reads viewport-width-px/viewport-height-px/root-font-size-px
// out of the global configuration, the way core/locate/resources reads
// "app-key" directly via gconf.GetString, falling back to DefaultConfig's
// values for any key that is unset or unparsable.
func ConfigFromGConf() Config {
	cfg := DefaultConfig()
	if v := parsePx(gconf.GetString("viewport-width-px")); v > 0 {
		cfg.ViewportWidthPx = v
	}
	if v := parsePx(gconf.GetString("viewport-height-px")); v > 0 {
		cfg.ViewportHeightPx = v
	}
	if v := parsePx(gconf.GetString("root-font-size-px")); v > 0 {
		cfg.RootFontSizePx = v
	}
	return cfg
}

func parsePx(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
