// Package raster is the reference painter: it walks a render.Box tree and
// draws it into an image.RGBA using the standard library's image/draw,
// then hands the result to github.com/disintegration/imaging for the final
// resize/PNG encode. It exists so cmd/minibrowser has a runnable,
// visually-checkable end-to-end path; a production embedder is expected to
// swap in a real painter (spec §6, "Painter (consumed)").
package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/disintegration/imaging"
	"github.com/npillmayer/schuko/tracing"

	"github.com/go-webcore/minibrowser/core/cssval"
	"github.com/go-webcore/minibrowser/render"
)

func tracer() tracing.Trace {
	return tracing.Select("minibrowser.raster")
}

// Decoder resolves a <img> node into decoded pixel data. This package ships
// no implementation and cmd/minibrowser passes none, so its output skips
// images; callers embedding this package supply their own to route through
// whatever fetch/cache strategy they use.
type Decoder interface {
	Decode(node *render.Fragment) (image.Image, error)
}

// Paint rasterizes box into a widthPx x heightPx RGBA canvas filled with
// white, the same base the original render.rs assumed a DrawTarget starts
// from. decoder may be nil, in which case images are skipped.
func Paint(box *render.Box, widthPx, heightPx int, decoder Decoder) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, widthPx, heightPx))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	paintBox(canvas, box, decoder)
	return canvas
}

func paintBox(canvas *image.RGBA, box *render.Box, decoder Decoder) {
	switch box.Kind {
	case render.BlockKind:
		paintBackground(canvas, box)
		paintBorders(canvas, box)
		for _, child := range box.Children {
			paintBox(canvas, child, decoder)
		}
	case render.LineKind:
		for _, frag := range box.Fragments {
			paintFragment(canvas, frag, decoder)
		}
	}
}

func paintFragment(canvas *image.RGBA, frag render.Fragment, decoder Decoder) {
	switch frag.Kind {
	case render.BoxFragment:
		paintBox(canvas, frag.Box, decoder)
	case render.ImageFragment:
		paintImage(canvas, frag, decoder)
	case render.TextFragment:
		fillRect(canvas, frag.Rect, frag.Color, 0.12) // faint glyph-run placeholder; real glyph rasterization is the painter's concern per spec §6
	}
}

func paintImage(canvas *image.RGBA, frag render.Fragment, decoder Decoder) {
	if decoder == nil {
		return
	}
	img, err := decoder.Decode(&frag)
	if err != nil {
		tracer().Debugf("raster: decoding image %v: %v", frag.Node, err)
		return
	}
	dst := rectToImageRect(frag.Rect)
	resized := imaging.Resize(img, dst.Dx(), dst.Dy(), imaging.Lanczos)
	draw.Draw(canvas, dst, resized, image.Point{}, draw.Over)
}

func paintBackground(canvas *image.RGBA, box *render.Box) {
	if box.Background == nil {
		return
	}
	fillRect(canvas, box.Rect, *box.Background, 1.0)
}

func paintBorders(canvas *image.RGBA, box *render.Box) {
	r := rectToImageRect(box.Rect)
	top, right, bottom, left := box.Border[0], box.Border[1], box.Border[2], box.Border[3]
	if top.WidthPx > 0 {
		fillImageRect(canvas, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+int(top.WidthPx)), top.Color)
	}
	if bottom.WidthPx > 0 {
		fillImageRect(canvas, image.Rect(r.Min.X, r.Max.Y-int(bottom.WidthPx), r.Max.X, r.Max.Y), bottom.Color)
	}
	if left.WidthPx > 0 {
		fillImageRect(canvas, image.Rect(r.Min.X, r.Min.Y, r.Min.X+int(left.WidthPx), r.Max.Y), left.Color)
	}
	if right.WidthPx > 0 {
		fillImageRect(canvas, image.Rect(r.Max.X-int(right.WidthPx), r.Min.Y, r.Max.X, r.Max.Y), right.Color)
	}
}

func fillRect(canvas *image.RGBA, rect render.Rect, c cssval.Color, alpha float64) {
	fillImageRect(canvas, rectToImageRect(rect), scaledAlpha(c, alpha))
}

func fillImageRect(canvas *image.RGBA, r image.Rectangle, c cssval.Color) {
	src := image.NewUniform(toNRGBA(c))
	draw.Draw(canvas, r.Intersect(canvas.Bounds()), src, image.Point{}, draw.Over)
}

func rectToImageRect(r render.Rect) image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.X+r.Width), int(r.Y+r.Height))
}

func toNRGBA(c cssval.Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(c.A * 255)}
}

func scaledAlpha(c cssval.Color, alpha float64) cssval.Color {
	c.A *= alpha
	return c
}

// EncodePNG resizes canvas to outWidth pixels wide (preserving aspect ratio;
// 0 leaves the width unchanged) and writes it to w as a PNG, matching
// rupor-github-fb2cng's imaging.Encode(..., imaging.PNG, ...) usage.
func EncodePNG(w io.Writer, canvas *image.RGBA, outWidth int) error {
	img := image.Image(canvas)
	if outWidth > 0 && outWidth != canvas.Bounds().Dx() {
		img = imaging.Resize(canvas, outWidth, 0, imaging.Lanczos)
	}
	return imaging.Encode(w, img, imaging.PNG)
}

// EncodePNGBytes is a convenience wrapper returning the encoded bytes
// directly, used by callers that want to keep the raster entirely in memory
// (e.g. tests, or an HTTP handler streaming a rendered page).
func EncodePNGBytes(canvas *image.RGBA, outWidth int) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, canvas, outWidth); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
