// Command minibrowser renders a single HTML document to a PNG file: CLI
// shape is "minibrowser [-out FILE] [-width PX] [URL|PATH]" (spec §6, "CLI");
// flags must come before the positional argument. With no argument it
// renders a small bundled test page.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"

	"github.com/go-webcore/minibrowser/browser"
	"github.com/go-webcore/minibrowser/core/browserr"
	"github.com/go-webcore/minibrowser/render/raster"
)

func tracer() tracing.Trace {
	return tracing.Select("minibrowser.cmd")
}

const testPage = `<html><head><style>
body { background-color: #ffffff; }
h1 { background-color: #eeeeee; }
.box { width: 200px; margin: auto; background-color: #cccccc; }
</style></head><body>
<h1>minibrowser</h1>
<div class="box">Hello, rendered world.</div>
</body></html>`

func main() {
	setupLogging()

	out := flag.String("out", "out.png", "PNG file to write the rendered page to")
	width := flag.Int("width", 0, "viewport width in px (overrides gconf/default)")
	flag.Parse()

	cfg := browser.ConfigFromGConf()
	if *width > 0 {
		cfg.ViewportWidthPx = float64(*width)
	}

	target := flag.Arg(0)
	res, err := load(target, cfg)
	if err != nil {
		tracer().Errorf("minibrowser: %v", err)
		fmt.Fprintln(os.Stderr, browserr.UserMessage(err))
		os.Exit(1)
	}

	canvas := raster.Paint(res.Render, int(cfg.ViewportWidthPx), int(cfg.ViewportHeightPx), nil)
	f, err := os.Create(*out)
	if err != nil {
		tracer().Errorf("minibrowser: creating %s: %v", *out, err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer f.Close()
	if err := raster.EncodePNG(f, canvas, 0); err != nil {
		tracer().Errorf("minibrowser: encoding %s: %v", *out, err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	tracer().Infof("minibrowser: wrote %s", *out)
}

// load dispatches target to the right loader: the bundled test page when
// empty, an http(s) fetch, or a local file path.
func load(target string, cfg browser.Config) (*browser.Result, error) {
	switch {
	case target == "":
		return browser.Load(strings.NewReader(testPage), "embedded://testpage.html", cfg, nil, nil)
	case strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://"):
		client := &http.Client{Timeout: 15 * time.Second}
		resp, err := client.Get(target)
		if err != nil {
			return nil, browserr.Wrap(err, browserr.Network, "fetching %s", target)
		}
		defer resp.Body.Close()
		return browser.Load(resp.Body, target, cfg, nil, nil)
	default:
		return browser.LoadFile(target, cfg, nil, nil)
	}
}

// setupLogging wires schuko's logging facade, the same startup sequence
// core/font/opentype/otcli/main.go uses, reading the trace level from
// gconf instead of a CLI flag.
func setupLogging() {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	level := gconf.GetString("trace-level")
	if level == "" {
		level = "Info"
	}
	conf := testconfig.Conf{
		"tracing.adapter":           "go",
		"trace.minibrowser.browser": level,
		"trace.minibrowser.css":     level,
		"trace.minibrowser.style":   level,
		"trace.minibrowser.layout":  level,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Fprintln(os.Stderr, "minibrowser: error configuring tracing:", err)
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
}
