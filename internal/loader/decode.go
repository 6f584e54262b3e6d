package loader

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/webp"
)

// Decode dispatches on file extension first, the way the teacher's
// DecodeImage dispatches on content-type, and falls back to image.Decode's
// format sniffing for anything else. Exported so the matting package can
// preload FixedImage backgrounds with the same decode path as the loader.
func Decode(path string, data []byte) (image.Image, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding webp: %w", err)
		}
		return img, nil
	default:
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding image: %w", err)
		}
		return img, nil
	}
}

// orient applies the EXIF orientation transform needed to bring img to
// natural viewing rotation. orientation 1 (or unknown) is a no-op.
func orient(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Rotate90(imaging.FlipH(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Rotate270(imaging.FlipH(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// toRGBA8 converts img to tightly-packed RGBA8 bytes. imaging's transforms
// (and imaging.Clone for the pass-through case) always return *image.NRGBA
// with Stride == Width*4, so Pix can be used directly.
func toRGBA8(img image.Image) (width, height int, pixels []byte) {
	nrgba := imaging.Clone(img)
	return nrgba.Rect.Dx(), nrgba.Rect.Dy(), nrgba.Pix
}
