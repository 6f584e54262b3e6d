package viewer

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"

	"github.com/dixieflatline76/photoframe/config"
	"github.com/dixieflatline76/photoframe/internal/events"
)

// Surface owns the always-on window and its photo canvas. It is the
// GPU-surface stand-in: canvas.NewImageFromImage plus fyne.Do-guarded
// mutation is the same pattern the teacher's ui.go uses for its splash and
// about windows, generalized here from a transient dialog to a persistent
// full-screen frame.
type Surface struct {
	app    fyne.App
	window fyne.Window
	img    *canvas.Image
	stack  *fyne.Container

	greeting *overlayView
	sleep    *overlayView
}

// overlayView renders a full-bleed solid background with centered title and
// subtitle text (spec §1's greeting/sleep overlay collaborator contract).
type overlayView struct {
	bg       *canvas.Rectangle
	title    *canvas.Text
	subtitle *canvas.Text
	group    *fyne.Container
}

func newOverlayView(cfg config.OverlayConfig) *overlayView {
	bg := canvas.NewRectangle(toNRGBAColor(cfg.BackgroundColor))
	title := canvas.NewText(cfg.Title, toNRGBAColor(cfg.TextColor))
	title.TextSize = 36
	title.Alignment = fyne.TextAlignCenter
	subtitle := canvas.NewText(cfg.Subtitle, toNRGBAColor(cfg.TextColor))
	subtitle.TextSize = 18
	subtitle.Alignment = fyne.TextAlignCenter

	centered := container.NewVBox(title, subtitle)
	group := container.NewStack(bg, container.NewCenter(centered))
	return &overlayView{bg: bg, title: title, subtitle: subtitle, group: group}
}

func toNRGBAColor(c config.Color) color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// NewSurface builds the window and its layered content: the photo canvas at
// the bottom, greeting and sleep overlays stacked above it, visibility
// driven by state via SetState.
func NewSurface(title string, width, height int, greeting, sleep config.OverlayConfig) *Surface {
	return newSurface(app.New(), title, width, height, greeting, sleep)
}

// newSurface is the testable constructor: tests pass in a headless
// fyne.io/fyne/v2/test app instead of a real display-backed one.
func newSurface(a fyne.App, title string, width, height int, greeting, sleep config.OverlayConfig) *Surface {
	w := a.NewWindow(title)

	img := canvas.NewImageFromImage(image.NewNRGBA(image.Rect(0, 0, width, height)))
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScaleFastest

	greetingView := newOverlayView(greeting)
	sleepView := newOverlayView(sleep)
	greetingView.group.Hide()
	sleepView.group.Hide()

	stack := container.NewStack(img, greetingView.group, sleepView.group)
	w.SetContent(stack)
	w.Resize(fyne.NewSize(float32(width), float32(height)))

	return &Surface{app: a, window: w, img: img, stack: stack, greeting: greetingView, sleep: sleepView}
}

// ShowPhoto replaces the photo canvas contents with c as given; it does no
// blending itself (transition frames are composited by the engine before
// they reach it).
func (s *Surface) ShowPhoto(c events.Canvas) {
	fyne.Do(func() {
		s.img.Image = &image.NRGBA{
			Pix:    c.Pixels,
			Stride: c.Width * 4,
			Rect:   image.Rect(0, 0, c.Width, c.Height),
		}
		s.img.Refresh()
	})
}

// SetState shows the overlay (or plain photo surface) matching state (spec
// §4.5.1).
func (s *Surface) SetState(state events.ViewerState) {
	fyne.Do(func() {
		s.greeting.group.Hide()
		s.sleep.group.Hide()
		switch state {
		case events.Greeting:
			s.greeting.group.Show()
		case events.Asleep:
			s.sleep.group.Show()
		}
		s.stack.Refresh()
	})
}

// Run blocks until the window is closed.
func (s *Surface) Run() {
	s.window.ShowAndRun()
}

// Close closes the window, unblocking Run.
func (s *Surface) Close() {
	fyne.Do(func() {
		s.window.Close()
	})
}
