package matting

import (
	"image"
	"sync"

	"github.com/dixieflatline76/photoframe/config"
)

// AverageCache memoizes a photo's average RGB color, computed once per
// image path (spec §4.5.3 Studio "mat color may be ... photo-average
// (computed once per image)"). It is safe for concurrent use by the
// matting worker pool.
type AverageCache struct {
	mu    sync.Mutex
	cache map[string]config.Color
}

// NewAverageCache builds an empty cache.
func NewAverageCache() *AverageCache {
	return &AverageCache{cache: make(map[string]config.Color)}
}

// Get returns the cached average color for path, computing and storing it
// from img on a cache miss.
func (c *AverageCache) Get(path string, img image.Image) config.Color {
	c.mu.Lock()
	defer c.mu.Unlock()
	if color, ok := c.cache[path]; ok {
		return color
	}
	color := averageColor(img)
	c.cache[path] = color
	return color
}

// averageColor computes the mean RGB value across every pixel of img.
func averageColor(img image.Image) config.Color {
	bounds := img.Bounds()
	var sumR, sumG, sumB uint64
	count := uint64(bounds.Dx() * bounds.Dy())
	if count == 0 {
		return config.Color{}
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			sumR += uint64(r >> 8)
			sumG += uint64(g >> 8)
			sumB += uint64(b >> 8)
		}
	}
	return config.Color{
		R: uint8(sumR / count),
		G: uint8(sumG / count),
		B: uint8(sumB / count),
	}
}
