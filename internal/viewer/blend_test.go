package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dixieflatline76/photoframe/internal/events"
)

func solidCanvas(w, h int, r, g, b byte) events.Canvas {
	pix := make([]byte, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = r, g, b, 255
	}
	return events.Canvas{Width: w, Height: h, Pixels: pix}
}

func TestFadeBlendInterpolatesLinearly(t *testing.T) {
	from := solidCanvas(2, 2, 0, 0, 0)
	to := solidCanvas(2, 2, 200, 100, 50)

	out := blendFrame(from, to, 0.5, TransitionParams{Kind: Fade})
	assert.Equal(t, byte(100), out.Pixels[0])
	assert.Equal(t, byte(50), out.Pixels[1])
}

func TestFadeBlendThroughBlackDipsAtMidpoint(t *testing.T) {
	from := solidCanvas(2, 2, 200, 200, 200)
	to := solidCanvas(2, 2, 100, 100, 100)

	out := blendFrame(from, to, 0.5, TransitionParams{Kind: Fade, ThroughBlack: true})
	assert.Equal(t, byte(0), out.Pixels[0], "midpoint of a through-black fade must be black")
}

func TestWipeBlendRevealsProgressively(t *testing.T) {
	from := solidCanvas(10, 1, 0, 0, 0)
	to := solidCanvas(10, 1, 255, 255, 255)
	params := TransitionParams{Kind: Wipe, AngleDeg: 0, Softness: 0.05}

	early := blendFrame(from, to, 0.1, params)
	late := blendFrame(from, to, 0.9, params)

	// Pixel 5 (mid-canvas) is still `from` at p=0.1 and already `to` at p=0.9.
	assert.Less(t, int(early.Pixels[5*4]), int(late.Pixels[5*4]), "later progress should reveal more of `to` mid-canvas")
}

func TestBlendFrameSnapsToToOnDimensionMismatch(t *testing.T) {
	from := solidCanvas(2, 2, 0, 0, 0)
	to := solidCanvas(4, 4, 255, 255, 255)
	out := blendFrame(from, to, 0.5, TransitionParams{Kind: Fade})
	assert.Equal(t, to, out)
}
