// Package matting renders a decoded photo into a screen-sized canvas per
// the four matting variants (spec §4.5.3): FixedColor, Blur, Studio, and
// FixedImage. The photo-fit math and the smartcrop-based cover crop are
// adapted from the teacher's pkg/wallpaper/smart_image_processor.go
// (FitImage/cropImage's aspect comparison and smart-pan centering), applied
// here to mat backgrounds rather than desktop wallpaper fitting.
package matting

import (
	"image"

	"github.com/dixieflatline76/photoframe/config"
)

// Kind enumerates the matting variants.
type Kind int

const (
	FixedColor Kind = iota
	Blur
	Studio
	FixedImage
)

func ParseKind(s string) Kind {
	switch s {
	case "blur":
		return Blur
	case "studio":
		return Studio
	case "fixed-image":
		return FixedImage
	default:
		return FixedColor
	}
}

// Variant is one canonical, selectable matting style plus its parameters.
type Variant struct {
	Kind Kind

	// fixed-color
	Color config.Color

	// blur
	Sigma       float64
	SampleScale float64

	// studio
	BevelWidthPx float64
	BevelColor   config.Color
	MatColor     *config.Color // nil => photo-average

	// fixed-image — decoded once at configuration time (spec §4.5.3
	// FixedImage: "a preloaded image"), never re-read per mat task.
	BackgroundImage image.Image
	Fit             string // cover | contain | stretch
}

// Params carries the cross-cutting sizing knobs every variant needs (spec
// §4.5.3 steps 1-2 and §6.1 global-photo-settings).
type Params struct {
	ScreenWidth          int
	ScreenHeight         int
	Oversample           float64
	MaxUpscale           float64 // clamped to >= 1.0
	MinimumMatPercentage float64 // e.g. 10 means 10%; clamped to [0, 45]
	MaxTexture           int     // GPU max 2D texture dimension
}

// CanvasSize computes the target canvas size (spec §4.5.3 step 1): scale the
// screen size by oversample, round, then clamp to the max texture
// dimension.
func (p Params) CanvasSize() (width, height int) {
	width = roundClamp(float64(p.ScreenWidth)*p.Oversample, p.MaxTexture)
	height = roundClamp(float64(p.ScreenHeight)*p.Oversample, p.MaxTexture)
	return width, height
}

func roundClamp(v float64, max int) int {
	r := int(v + 0.5)
	if max > 0 && r > max {
		return max
	}
	if r < 1 {
		return 1
	}
	return r
}

// marginFraction clamps the configured minimum-mat-percentage to [0, 0.45]
// (spec §4.5.3 FixedColor).
func marginFraction(minimumPercent float64) float64 {
	frac := minimumPercent / 100
	if frac < 0 {
		return 0
	}
	if frac > 0.45 {
		return 0.45
	}
	return frac
}

func clampMaxUpscale(v float64) float64 {
	if v < 1.0 {
		return 1.0
	}
	return v
}
