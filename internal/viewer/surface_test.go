package viewer

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"github.com/dixieflatline76/photoframe/config"
	"github.com/dixieflatline76/photoframe/internal/events"
)

func TestSurfaceShowPhotoUpdatesCanvasImage(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	greeting := config.OverlayConfig{Title: "Hello", BackgroundColor: config.Color{}, TextColor: config.Color{R: 255, G: 255, B: 255}}
	sleep := config.OverlayConfig{Title: "Asleep"}
	s := newSurface(a, "photoframe", 40, 30, greeting, sleep)

	canvasData := events.Canvas{Width: 40, Height: 30, Pixels: make([]byte, 40*30*4)}
	canvasData.Pixels[0] = 200
	s.ShowPhoto(canvasData)

	assert.Equal(t, 40, s.img.Image.Bounds().Dx())
}

func TestSurfaceSetStateTogglesOverlayVisibility(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	greeting := config.OverlayConfig{Title: "Hello"}
	sleep := config.OverlayConfig{Title: "Asleep"}
	s := newSurface(a, "photoframe", 40, 30, greeting, sleep)

	s.SetState(events.Greeting)
	assert.True(t, s.greeting.group.Visible())
	assert.False(t, s.sleep.group.Visible())

	s.SetState(events.Asleep)
	assert.False(t, s.greeting.group.Visible())
	assert.True(t, s.sleep.group.Visible())

	s.SetState(events.Awake)
	assert.False(t, s.greeting.group.Visible())
	assert.False(t, s.sleep.group.Visible())
}
