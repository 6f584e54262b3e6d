package matting

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// fitRect computes where a srcW x srcH photo lands inside an innerW x
// innerH interior: scale = min(inner_w/src_w, inner_h/src_h, max_upscale),
// rounded to integer pixels, then centered (spec §4.5.3 step 4).
func fitRect(srcW, srcH, innerW, innerH int, maxUpscale float64) (scaledW, scaledH, offsetX, offsetY int) {
	scale := math.Min(float64(innerW)/float64(srcW), float64(innerH)/float64(srcH))
	if scale > maxUpscale {
		scale = maxUpscale
	}
	scaledW = int(math.Round(float64(srcW) * scale))
	scaledH = int(math.Round(float64(srcH) * scale))
	if scaledW < 1 {
		scaledW = 1
	}
	if scaledH < 1 {
		scaledH = 1
	}
	offsetX = (innerW - scaledW) / 2
	offsetY = (innerH - scaledH) / 2
	return
}

// fitPhoto resizes src to fit within innerW x innerH per fitRect and returns
// the resized image plus its placement offset within the interior.
func fitPhoto(src image.Image, innerW, innerH int, maxUpscale float64) (resized image.Image, offsetX, offsetY int) {
	scaledW, scaledH, offX, offY := fitRect(src.Bounds().Dx(), src.Bounds().Dy(), innerW, innerH, maxUpscale)
	resized = imaging.Resize(src, scaledW, scaledH, imaging.Lanczos)
	return resized, offX, offY
}

// coverCrop center-crops src to the target aspect ratio, then resizes it to
// exactly targetW x targetH (spec §4.5.3 Blur "center-crop to aspect").
func coverCrop(src image.Image, targetW, targetH int) image.Image {
	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	targetAspect := float64(targetW) / float64(targetH)
	srcAspect := float64(srcW) / float64(srcH)

	var cropW, cropH int
	if srcAspect > targetAspect {
		cropH = srcH
		cropW = int(float64(cropH) * targetAspect)
	} else {
		cropW = srcW
		cropH = int(float64(cropW) / targetAspect)
	}
	cropped := imaging.CropCenter(src, cropW, cropH)
	return imaging.Resize(cropped, targetW, targetH, imaging.Lanczos)
}
