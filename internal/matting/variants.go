package matting

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"
	xdraw "golang.org/x/image/draw"

	"github.com/dixieflatline76/photoframe/config"
	"github.com/dixieflatline76/photoframe/internal/events"
)

// smartCropResizer adapts imaging.Resize to the smartcrop.Resizer
// interface, the same shape as the teacher's pkg/wallpaper/smart_image_processor.go
// resizer type.
type smartCropResizer struct{}

func (smartCropResizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), imaging.Lanczos)
}

// smartCoverCrop picks a crop-to-aspect rectangle using smartcrop's
// energy-based analyzer rather than a naive center crop, then resizes it to
// exactly targetW x targetH. It falls back to a naive center crop if the
// analyzer fails.
func smartCoverCrop(src image.Image, targetW, targetH int) image.Image {
	analyzer := smartcrop.NewAnalyzer(smartCropResizer{})
	rect, err := analyzer.FindBestCrop(src, targetW, targetH)
	if err != nil {
		return coverCrop(src, targetW, targetH)
	}
	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	si, ok := src.(subImager)
	if !ok {
		return coverCrop(src, targetW, targetH)
	}
	cropped := si.SubImage(rect)
	return imaging.Resize(cropped, targetW, targetH, imaging.Lanczos)
}

// Render dispatches to the selected variant and produces a screen-sized
// canvas (spec §4.5.3). avgCache is consulted only by Studio's
// photo-average mat color.
func Render(photo image.Image, path string, variant Variant, params Params, avgCache *AverageCache) events.Canvas {
	canvasW, canvasH := params.CanvasSize()
	maxUpscale := clampMaxUpscale(params.MaxUpscale)
	margin := marginFraction(params.MinimumMatPercentage)

	var canvas *image.NRGBA
	switch variant.Kind {
	case Blur:
		canvas = renderBlur(photo, canvasW, canvasH, margin, maxUpscale, variant)
	case Studio:
		canvas = renderStudio(photo, path, canvasW, canvasH, maxUpscale, variant, avgCache)
	case FixedImage:
		canvas = renderFixedImage(photo, canvasW, canvasH, margin, maxUpscale, variant)
	default:
		canvas = renderFixedColor(photo, canvasW, canvasH, margin, maxUpscale, variant)
	}

	return events.Canvas{Width: canvas.Rect.Dx(), Height: canvas.Rect.Dy(), Pixels: canvas.Pix}
}

func overlayFitted(canvas *image.NRGBA, photo image.Image, innerW, innerH, originX, originY int, maxUpscale float64) {
	resized, offX, offY := fitPhoto(photo, innerW, innerH, maxUpscale)
	dstRect := image.Rect(originX+offX, originY+offY, originX+offX+resized.Bounds().Dx(), originY+offY+resized.Bounds().Dy())
	draw.Draw(canvas, dstRect, resized, resized.Bounds().Min, draw.Src)
}

func renderFixedColor(photo image.Image, canvasW, canvasH int, margin, maxUpscale float64, v Variant) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, canvasW, canvasH))
	fill(canvas, v.Color)

	innerW := int(float64(canvasW) * (1 - 2*margin))
	innerH := int(float64(canvasH) * (1 - 2*margin))
	originX := (canvasW - innerW) / 2
	originY := (canvasH - innerH) / 2
	overlayFitted(canvas, photo, innerW, innerH, originX, originY, maxUpscale)
	return canvas
}

func renderBlur(photo image.Image, canvasW, canvasH int, margin, maxUpscale float64, v Variant) *image.NRGBA {
	sampleScale := v.SampleScale
	if sampleScale <= 0 || sampleScale > 1 {
		sampleScale = 1
	}

	bgW := canvasW
	bgH := canvasH
	if sampleScale < 1 {
		bgW = int(float64(canvasW) * sampleScale)
		bgH = int(float64(canvasH) * sampleScale)
		if bgW < 1 {
			bgW = 1
		}
		if bgH < 1 {
			bgH = 1
		}
	}

	background := smartCoverCrop(photo, bgW, bgH)
	blurred := imaging.Blur(background, v.Sigma*sampleScale)
	if sampleScale < 1 {
		blurred = imaging.Resize(blurred, canvasW, canvasH, imaging.Lanczos)
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, canvasW, canvasH))
	draw.Draw(canvas, canvas.Bounds(), blurred, blurred.Bounds().Min, draw.Src)

	innerW := int(float64(canvasW) * (1 - 2*margin))
	innerH := int(float64(canvasH) * (1 - 2*margin))
	originX := (canvasW - innerW) / 2
	originY := (canvasH - innerH) / 2
	overlayFitted(canvas, photo, innerW, innerH, originX, originY, maxUpscale)
	return canvas
}

// renderStudio fills the canvas with a uniform mat color (no weave or other
// texture is drawn), cuts a beveled
// window sized to the fitted photo, and fills that window exactly via
// bilinear resampling (spec §4.5.3 Studio).
func renderStudio(photo image.Image, path string, canvasW, canvasH int, maxUpscale float64, v Variant, avgCache *AverageCache) *image.NRGBA {
	matColor := v.MatColor
	var resolved config.Color
	if matColor != nil {
		resolved = *matColor
	} else {
		resolved = avgCache.Get(path, photo)
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, canvasW, canvasH))
	fill(canvas, resolved)

	scaledW, scaledH, offX, offY := fitRect(photo.Bounds().Dx(), photo.Bounds().Dy(), canvasW, canvasH, maxUpscale)

	bevel := int(v.BevelWidthPx)
	windowRect := image.Rect(offX-bevel, offY-bevel, offX+scaledW+bevel, offY+scaledH+bevel)
	fillRect(canvas, windowRect, v.BevelColor)

	dst := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), photo, photo.Bounds(), xdraw.Over, nil)

	dstRect := image.Rect(offX, offY, offX+scaledW, offY+scaledH)
	draw.Draw(canvas, dstRect, dst, dst.Bounds().Min, draw.Src)
	return canvas
}

func renderFixedImage(photo image.Image, canvasW, canvasH int, margin, maxUpscale float64, v Variant) *image.NRGBA {
	var background image.Image
	switch v.Fit {
	case "contain":
		background = imaging.Fit(v.BackgroundImage, canvasW, canvasH, imaging.Lanczos)
	case "stretch":
		background = imaging.Resize(v.BackgroundImage, canvasW, canvasH, imaging.Lanczos)
	default: // cover
		background = imaging.Fill(v.BackgroundImage, canvasW, canvasH, imaging.Center, imaging.Lanczos)
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, canvasW, canvasH))
	draw.Draw(canvas, canvas.Bounds(), background, background.Bounds().Min, draw.Src)

	innerW := int(float64(canvasW) * (1 - 2*margin))
	innerH := int(float64(canvasH) * (1 - 2*margin))
	originX := (canvasW - innerW) / 2
	originY := (canvasH - innerH) / 2
	overlayFitted(canvas, photo, innerW, innerH, originX, originY, maxUpscale)
	return canvas
}

func fill(canvas *image.NRGBA, c config.Color) {
	fillRect(canvas, canvas.Bounds(), c)
}

func fillRect(canvas *image.NRGBA, rect image.Rectangle, c config.Color) {
	rect = rect.Intersect(canvas.Bounds())
	if rect.Empty() {
		return
	}
	col := image.NewUniform(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
	draw.Draw(canvas, rect, col, image.Point{}, draw.Src)
}
