package matting

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/photoframe/config"
)

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestFitRectScalesAndCenters(t *testing.T) {
	// square photo into a wider interior: height-limited scale.
	scaledW, scaledH, offX, offY := fitRect(100, 100, 200, 100, 10.0)
	assert.Equal(t, 100, scaledW)
	assert.Equal(t, 100, scaledH)
	assert.Equal(t, 50, offX)
	assert.Equal(t, 0, offY)
}

func TestFitRectClampsMaxUpscale(t *testing.T) {
	scaledW, scaledH, _, _ := fitRect(10, 10, 1000, 1000, 2.0)
	assert.Equal(t, 20, scaledW)
	assert.Equal(t, 20, scaledH)
}

func TestCanvasSizeScalesAndClampsToMaxTexture(t *testing.T) {
	p := Params{ScreenWidth: 1920, ScreenHeight: 1080, Oversample: 1.0, MaxTexture: 4096}
	w, h := p.CanvasSize()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)

	p2 := Params{ScreenWidth: 4000, ScreenHeight: 4000, Oversample: 2.0, MaxTexture: 4096}
	w2, h2 := p2.CanvasSize()
	assert.Equal(t, 4096, w2)
	assert.Equal(t, 4096, h2)
}

func TestMarginFractionClamps(t *testing.T) {
	assert.Equal(t, 0.0, marginFraction(-5))
	assert.Equal(t, 0.1, marginFraction(10))
	assert.Equal(t, 0.45, marginFraction(90))
}

func TestRenderFixedColorProducesCanvasSized(t *testing.T) {
	photo := solidImage(40, 40, color.NRGBA{R: 100, G: 150, B: 200, A: 255})
	variant := Variant{Kind: FixedColor, Color: config.Color{R: 10, G: 20, B: 30}}
	params := Params{ScreenWidth: 100, ScreenHeight: 100, Oversample: 1, MaxUpscale: 1, MaxTexture: 4096}

	canvas := Render(photo, "p.jpg", variant, params, NewAverageCache())
	assert.Equal(t, 100, canvas.Width)
	assert.Equal(t, 100, canvas.Height)
	assert.Len(t, canvas.Pixels, 100*100*4)

	// A corner pixel, far from the centered photo, should be the fill color.
	assert.Equal(t, byte(10), canvas.Pixels[0])
	assert.Equal(t, byte(20), canvas.Pixels[1])
	assert.Equal(t, byte(30), canvas.Pixels[2])
}

func TestRenderStudioUsesPhotoAverageWhenMatColorNil(t *testing.T) {
	photo := solidImage(20, 20, color.NRGBA{R: 80, G: 160, B: 40, A: 255})
	variant := Variant{Kind: Studio, BevelWidthPx: 2, BevelColor: config.Color{R: 0, G: 0, B: 0}}
	params := Params{ScreenWidth: 100, ScreenHeight: 100, Oversample: 1, MaxUpscale: 1, MaxTexture: 4096}

	cache := NewAverageCache()
	canvas := Render(photo, "avg.jpg", variant, params, cache)
	assert.Equal(t, 100, canvas.Width)

	got, ok := cache.cache["avg.jpg"]
	require.True(t, ok)
	assert.Equal(t, config.Color{R: 80, G: 160, B: 40}, got)
}

func TestAverageCacheComputesOncePerPath(t *testing.T) {
	cache := NewAverageCache()
	img1 := solidImage(4, 4, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	img2 := solidImage(4, 4, color.NRGBA{R: 0, G: 255, B: 0, A: 255})

	first := cache.Get("x.jpg", img1)
	second := cache.Get("x.jpg", img2) // should hit cache, not recompute from img2
	assert.Equal(t, first, second)
}
