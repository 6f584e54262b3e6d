package matting

import (
	"fmt"
	"image"
	"os"

	"github.com/dixieflatline76/photoframe/config"
	"github.com/dixieflatline76/photoframe/internal/loader"
	"github.com/dixieflatline76/photoframe/internal/selection"
)

// BuildVariants expands a matting configuration block into the canonical
// selection entries it describes (spec §4.8 "Configuration expansion"): a
// fixed-color variant with N colors yields N canonical FixedColor entries,
// one per color, and a fixed-image variant with N paths yields N canonical
// FixedImage entries, one per path; blur and studio yield exactly one entry
// per configured block.
func BuildVariants(variants []config.MattingVariantConfig) ([]selection.Entry, error) {
	var entries []selection.Entry
	for _, vc := range variants {
		kind := ParseKind(vc.Type)
		switch kind {
		case FixedColor:
			if len(vc.Colors) == 0 {
				return nil, fmt.Errorf("matting: fixed-color variant requires at least one color")
			}
			for _, c := range vc.Colors {
				entries = append(entries, selection.Entry{Index: len(entries), Kind: Variant{Kind: FixedColor, Color: c}})
			}

		case Blur:
			entries = append(entries, selection.Entry{Index: len(entries), Kind: Variant{
				Kind:        Blur,
				Sigma:       vc.Sigma,
				SampleScale: clampSampleScale(vc.SampleScale),
			}})

		case Studio:
			entries = append(entries, selection.Entry{Index: len(entries), Kind: Variant{
				Kind:         Studio,
				BevelWidthPx: vc.BevelWidthPx,
				BevelColor:   vc.BevelColor,
				MatColor:     vc.MatColor,
			}})

		case FixedImage:
			if len(vc.Paths) == 0 {
				return nil, fmt.Errorf("matting: fixed-image variant requires at least one path")
			}
			for _, path := range vc.Paths {
				img, err := loadBackground(path)
				if err != nil {
					return nil, err
				}
				entries = append(entries, selection.Entry{Index: len(entries), Kind: Variant{
					Kind:            FixedImage,
					BackgroundImage: img,
					Fit:             vc.Fit,
				}})
			}
		}
	}
	return entries, nil
}

// loadBackground decodes a FixedImage background once at configuration
// time (spec §4.5.3 FixedImage: "a preloaded image"), reusing the loader
// package's decode path so WEBP/JPEG/PNG backgrounds are handled
// identically to library photos.
func loadBackground(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("matting: reading fixed-image background %s: %w", path, err)
	}
	img, err := loader.Decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("matting: decoding fixed-image background %s: %w", path, err)
	}
	return img, nil
}

func clampSampleScale(v float64) float64 {
	if v <= 0 || v > 1 {
		return 1
	}
	return v
}
