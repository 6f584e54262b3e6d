package effect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/photoframe/config"
	"github.com/dixieflatline76/photoframe/internal/events"
)

func solidPrepared(path string, w, h int, r, g, b, a byte) events.PreparedImageCPU {
	pix := make([]byte, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = r, g, b, a
	}
	return events.PreparedImageCPU{Path: path, Width: w, Height: h, Pixels: pix}
}

func TestPassThroughWhenUnconfigured(t *testing.T) {
	in := make(chan events.PhotoLoaded, 1)
	out := make(chan events.PhotoLoaded, 1)
	s, err := New(config.PhotoEffectConfig{}, nil, in, out)
	require.NoError(t, err)
	assert.Nil(t, s.selector)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	prepared := solidPrepared("p.jpg", 2, 2, 10, 20, 30, 255)
	in <- events.PhotoLoaded{Prepared: prepared, Priority: true}

	select {
	case got := <-out:
		assert.Equal(t, prepared.Pixels, got.Prepared.Pixels)
		assert.True(t, got.Priority)
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

func TestGrayscaleFullAmountFlattensChannels(t *testing.T) {
	in := make(chan events.PhotoLoaded, 1)
	out := make(chan events.PhotoLoaded, 1)
	cfg := config.PhotoEffectConfig{
		Policy:   "fixed",
		Variants: []config.EffectVariantConfig{{Type: "grayscale", Amount: 1.0}},
	}
	s, err := New(cfg, nil, in, out)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	prepared := solidPrepared("p.jpg", 2, 2, 200, 10, 10, 255)
	in <- events.PhotoLoaded{Prepared: prepared}

	select {
	case got := <-out:
		pix := got.Prepared.Pixels
		assert.Equal(t, pix[0], pix[1])
		assert.Equal(t, pix[1], pix[2])
		assert.Equal(t, byte(255), pix[3])
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

func TestMismatchedBufferSkipsEffect(t *testing.T) {
	in := make(chan events.PhotoLoaded, 1)
	out := make(chan events.PhotoLoaded, 1)
	cfg := config.PhotoEffectConfig{
		Policy:   "fixed",
		Variants: []config.EffectVariantConfig{{Type: "sepia", Amount: 1.0}},
	}
	s, err := New(cfg, nil, in, out)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	prepared := events.PreparedImageCPU{Path: "broken.jpg", Width: 4, Height: 4, Pixels: []byte{1, 2, 3}}
	in <- events.PhotoLoaded{Prepared: prepared}

	select {
	case got := <-out:
		assert.Equal(t, prepared.Pixels, got.Prepared.Pixels)
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

func TestFixedPolicyRequiresSingleVariant(t *testing.T) {
	in := make(chan events.PhotoLoaded, 1)
	out := make(chan events.PhotoLoaded, 1)
	cfg := config.PhotoEffectConfig{
		Policy: "fixed",
		Variants: []config.EffectVariantConfig{
			{Type: "grayscale"},
			{Type: "sepia"},
		},
	}
	_, err := New(cfg, nil, in, out)
	require.Error(t, err)
}
