// Package fontcache installs font faces and answers glyph-advance and
// line-height queries for the inline layout algorithm. It keeps at most one
// opentype.Font per (family, weight, style) tuple and degrades to a fixed
// advance-per-rune approximation when no matching face has been installed,
// rather than failing the whole layout.
package fontcache

import (
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"

	"github.com/go-webcore/minibrowser/core/browserr"
)

func tracer() tracing.Trace {
	return tracing.Select("minibrowser.fontcache")
}

// Weight mirrors the CSS font-weight scale (100-900); Normal and Bold name
// its two keyword values.
type Weight int

const (
	Normal Weight = 400
	Bold   Weight = 700
)

// Style mirrors CSS font-style.
type Style int

const (
	StyleNormal Style = iota
	StyleItalic
	StyleOblique
)

// key identifies one installed face.
type key struct {
	family string
	weight Weight
	style  Style
}

// face bundles a parsed font together with the font.Face views opened for
// each size requested of it, since opentype.Font is size-independent but
// font.Face is not.
type face struct {
	otFont *opentype.Font
	views  map[int]font.Face // keyed by integer px size
}

// Cache is a process-safe store of installed font faces. The zero value is
// ready to use. Unlike the teacher's registry, which is reached through a
// single process-wide singleton, Cache is constructed per-browser-instance
// so tests can install their own faces without clobbering global state.
type Cache struct {
	mu       sync.RWMutex
	faces    map[key]*face
	language language.Tag
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{faces: make(map[key]*face), language: language.English}
}

// SetLanguage records the language used to bias shaping-sensitive metrics.
// Plain glyph-advance lookups are not language sensitive today, but the
// parameter is threaded through so a future complex-script shaper can use
// it without changing this package's public API.
func (c *Cache) SetLanguage(tag language.Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = tag
}

// Install parses TTF/OTF bytes and registers them under family/weight/style.
// A later Install with the same key replaces the earlier face.
func (c *Cache) Install(family string, weight Weight, style Style, data []byte) error {
	otFont, err := opentype.Parse(data)
	if err != nil {
		return browserr.Wrap(err, browserr.Font, "installing font %q: not a valid TTF/OTF", family)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.faces == nil {
		c.faces = make(map[key]*face)
	}
	c.faces[key{family, weight, style}] = &face{otFont: otFont, views: make(map[int]font.Face)}
	tracer().Infof("fontcache: installed %q weight=%d style=%d", family, weight, style)
	return nil
}

// nearestKey finds the installed key closest to the request: exact family
// match is required, then same style is preferred (a style mismatch costs
// more than any weight distance), then nearest weight, matching the
// "closest available" font-matching behavior browsers use instead of
// failing outright.
func (c *Cache) nearestKey(family string, weight Weight, style Style) (key, bool) {
	var best key
	found := false
	bestScore := -1
	for k := range c.faces {
		if k.family != family {
			continue
		}
		score := 0
		if k.weight != weight {
			score += abs(int(k.weight) - int(weight))
		}
		if k.style != style {
			score += 1000
		}
		if !found || score < bestScore {
			best, bestScore, found = k, score, true
		}
	}
	return best, found
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// openFace returns (and caches) a font.Face view at the given pixel size for
// the installed font closest to family/weight/style. ok is false when no
// face has been installed under that family at all, or when opening it at
// that size fails, signaling the caller to fall back to the
// fallbackAdvanceRatio approximation.
func (c *Cache) openFace(family string, weight Weight, style Style, sizePx int) (font.Face, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k, found := c.nearestKey(family, weight, style)
	if !found {
		return nil, false
	}
	fc := c.faces[k]
	if v, ok := fc.views[sizePx]; ok {
		return v, true
	}
	f, err := opentype.NewFace(fc.otFont, &opentype.FaceOptions{
		Size:    float64(sizePx),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		tracer().Errorf("fontcache: opening face for %q at %dpx: %v", family, sizePx, err)
		return nil, false
	}
	fc.views[sizePx] = f
	return f, true
}

// fallbackAdvanceRatio gives the advance-per-rune used when no installed
// face matches, as a fixed fraction of the requested size. This mirrors
// a monospace degrade: every rune advances the same amount, matching the
// approach the teacher takes in its monospace shaper when no richer shaping
// is available.
const fallbackAdvanceRatio = 0.6

// Advance returns the horizontal advance, in pixels, of measuring s set in
// family/weight/style at sizePx. If no matching face is installed it
// returns a monospace approximation rather than an error.
func (c *Cache) Advance(s string, family string, weight Weight, style Style, sizePx int) float64 {
	f, ok := c.openFace(family, weight, style, sizePx)
	if !ok {
		return float64(len([]rune(s))) * float64(sizePx) * fallbackAdvanceRatio
	}
	total := fixed.I(0)
	for _, r := range s {
		adv, ok := f.GlyphAdvance(r)
		if !ok {
			total += fixed.I(sizePx) * 6 / 10
			continue
		}
		total += adv
	}
	return float64(total) / 64.0
}

// LineHeight returns the recommended line height, in pixels, for a face set
// at sizePx: ascent + descent when a face is installed (the face's line gap
// is not added), or a 1.2x multiple of sizePx otherwise.
func (c *Cache) LineHeight(family string, weight Weight, style Style, sizePx int) float64 {
	f, ok := c.openFace(family, weight, style, sizePx)
	if !ok {
		return float64(sizePx) * 1.2
	}
	m := f.Metrics()
	return float64(m.Ascent+m.Descent) / 64.0
}
