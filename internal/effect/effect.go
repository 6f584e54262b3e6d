// Package effect implements the photo-effect stage (spec §4.4): an optional,
// opaque pixel-domain transform applied between the loader and the viewer.
// The pass-through-when-unconfigured shape and the single-stage channel
// relay are adapted from the teacher's pkg/wallpaper/pipeline.go
// stateManagerLoop, simplified to a 1:1 forward since this stage has no
// store to update.
package effect

import (
	"context"
	"image"
	"math"
	"math/rand"

	"github.com/disintegration/imaging"

	"github.com/dixieflatline76/photoframe/config"
	"github.com/dixieflatline76/photoframe/internal/events"
	"github.com/dixieflatline76/photoframe/internal/selection"
)

// Kind enumerates the supported effect variants.
type Kind int

const (
	None Kind = iota
	Grayscale
	Sepia
	Vignette
	PrintSimulation
)

func parseKind(s string) Kind {
	switch s {
	case "grayscale":
		return Grayscale
	case "sepia":
		return Sepia
	case "vignette":
		return Vignette
	case "print-simulation":
		return PrintSimulation
	default:
		return None
	}
}

// Variant is one canonical, selectable photo-effect.
type Variant struct {
	Kind   Kind
	Amount float64 // clamped to [0, 1] at apply time
}

// Stage relays PhotoLoaded from the loader to the viewer, applying a
// selected effect variant to each image when configured.
type Stage struct {
	in       <-chan events.PhotoLoaded
	out      chan<- events.PhotoLoaded
	selector *selection.Selector
}

// New builds a Stage. If cfg has no variants, the stage is a pure
// pass-through and selector is left nil.
func New(cfg config.PhotoEffectConfig, seed *uint64, in <-chan events.PhotoLoaded, out chan<- events.PhotoLoaded) (*Stage, error) {
	s := &Stage{in: in, out: out}
	if len(cfg.Variants) == 0 {
		return s, nil
	}

	entries := make([]selection.Entry, len(cfg.Variants))
	for i, v := range cfg.Variants {
		entries[i] = selection.Entry{Index: i, Kind: Variant{Kind: parseKind(v.Type), Amount: v.Amount}}
	}

	policy, err := selection.ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}

	var rng *rand.Rand
	if seed != nil {
		rng = rand.New(rand.NewSource(int64(*seed)))
	} else {
		rng = rand.New(rand.NewSource(1))
	}

	sel, err := selection.NewSelector(policy, cfg.Policy != "", entries, rng)
	if err != nil {
		return nil, err
	}
	s.selector = sel
	return s, nil
}

// Run forwards every PhotoLoaded from in to out, applying the selected
// effect variant in between when one is configured (spec §4.4).
func (s *Stage) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case pl, ok := <-s.in:
			if !ok {
				return nil
			}
			if s.selector != nil {
				pl.Prepared = s.apply(pl.Prepared)
			}
			select {
			case s.out <- pl:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// apply rehydrates prepared's pixels into an RGBA image, applies the
// selected effect, and writes the result back. A dimension/length mismatch
// is not a fatal error: the photo is forwarded unmodified (spec §4.4).
func (s *Stage) apply(prepared events.PreparedImageCPU) events.PreparedImageCPU {
	if len(prepared.Pixels) != prepared.Width*prepared.Height*4 {
		return prepared
	}

	img := &image.NRGBA{
		Pix:    prepared.Pixels,
		Stride: prepared.Width * 4,
		Rect:   image.Rect(0, 0, prepared.Width, prepared.Height),
	}

	v := s.selector.Next().Kind.(Variant)
	out := applyVariant(img, v)

	prepared.Pixels = out.Pix
	prepared.Width = out.Rect.Dx()
	prepared.Height = out.Rect.Dy()
	return prepared
}

func applyVariant(img *image.NRGBA, v Variant) *image.NRGBA {
	amount := clamp01(v.Amount)
	switch v.Kind {
	case Grayscale:
		return blend(img, imaging.Grayscale(img), amount)
	case Sepia:
		return blend(img, sepia(img), amount)
	case Vignette:
		return vignette(img, amount)
	case PrintSimulation:
		return printSimulation(img, amount)
	default:
		return imaging.Clone(img)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// blend linearly interpolates between the original and transformed images
// by amount, preserving alpha from the original.
func blend(orig, transformed *image.NRGBA, amount float64) *image.NRGBA {
	out := image.NewNRGBA(orig.Rect)
	for i := 0; i < len(orig.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			a := float64(orig.Pix[i+c])
			b := float64(transformed.Pix[i+c])
			out.Pix[i+c] = uint8(math.Round(a + (b-a)*amount))
		}
		out.Pix[i+3] = orig.Pix[i+3]
	}
	return out
}

func sepia(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Rect)
	for i := 0; i < len(img.Pix); i += 4 {
		r := float64(img.Pix[i])
		g := float64(img.Pix[i+1])
		b := float64(img.Pix[i+2])
		out.Pix[i] = clampByte(0.393*r + 0.769*g + 0.189*b)
		out.Pix[i+1] = clampByte(0.349*r + 0.686*g + 0.168*b)
		out.Pix[i+2] = clampByte(0.272*r + 0.534*g + 0.131*b)
		out.Pix[i+3] = img.Pix[i+3]
	}
	return out
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// vignette darkens pixels radially by their normalized distance from center,
// scaled by amount.
func vignette(img *image.NRGBA, amount float64) *image.NRGBA {
	out := image.NewNRGBA(img.Rect)
	w, h := img.Rect.Dx(), img.Rect.Dy()
	cx, cy := float64(w)/2, float64(h)/2
	maxDist := math.Hypot(cx, cy)
	copy(out.Pix, img.Pix)
	if maxDist == 0 {
		return out
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dist := math.Hypot(float64(x)-cx, float64(y)-cy) / maxDist
			factor := 1 - amount*dist*dist
			i := out.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				out.Pix[i+c] = clampByte(float64(out.Pix[i+c]) * factor)
			}
		}
	}
	return out
}

// printSimulation mutes contrast and saturation to approximate the look of
// a printed photograph.
func printSimulation(img *image.NRGBA, amount float64) *image.NRGBA {
	muted := imaging.AdjustContrast(img, -amount*15)
	muted = imaging.AdjustSaturation(muted, -amount*25)
	return muted
}

