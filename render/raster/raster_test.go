package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-webcore/minibrowser/core/cssval"
	"github.com/go-webcore/minibrowser/render"
)

func TestPaintFillsBackground(t *testing.T) {
	red := cssval.Color{R: 255, A: 1}
	box := &render.Box{
		Kind:       render.BlockKind,
		Rect:       render.Rect{X: 0, Y: 0, Width: 10, Height: 10},
		Background: &red,
	}
	canvas := Paint(box, 20, 20, nil)
	c := canvas.RGBAAt(5, 5)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(0), c.G)

	outside := canvas.RGBAAt(15, 15)
	assert.Equal(t, uint8(255), outside.R)
	assert.Equal(t, uint8(255), outside.G)
}

func TestEncodePNGBytesProducesValidPNG(t *testing.T) {
	box := &render.Box{Kind: render.BlockKind, Rect: render.Rect{Width: 4, Height: 4}}
	canvas := Paint(box, 4, 4, nil)
	data, err := EncodePNGBytes(canvas, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
}
