package display

import (
	"image"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"ppe-monitor-go/internal/models"
)

const (
	WindowTitle = "PPE Detection System"
	StatusText  = "System Status: Active"

	statusBarHeight = 40
	quitKey         = 'q'
)

// Window shows annotated frames in a native OpenCV window with a status bar
// underneath. The native window is created by the first Render, so nothing
// appears before monitoring starts. Render and Close must be called from the
// same goroutine.
type Window struct {
	win      *gocv.Window
	composed gocv.Mat
	shown    bool
}

func NewWindow() *Window {
	return &Window{
		composed: gocv.NewMat(),
	}
}

// Render displays frame and pumps window events. It returns false once the
// user pressed q or closed the window.
func (w *Window) Render(frame gocv.Mat) bool {
	if frame.Empty() {
		return true
	}

	gocv.CopyMakeBorder(frame, &w.composed, 0, statusBarHeight, 0, 0, gocv.BorderConstant, models.PlateColor)
	gocv.PutText(&w.composed, StatusText, image.Pt(10, frame.Rows()+statusBarHeight-14),
		gocv.FontHersheySimplex, 0.6, models.BannerColor, 1)

	if w.win == nil {
		w.win = gocv.NewWindow(WindowTitle)
	}
	w.win.IMShow(w.composed)
	key := w.win.WaitKey(1)
	if key == quitKey {
		log.Info().Msg("Quit key pressed")
		return false
	}

	// The visible property drops below 1 once the window is closed by the user.
	if w.shown && w.win.GetWindowProperty(gocv.WindowPropertyVisible) < 1 {
		log.Info().Msg("Display window closed")
		return false
	}
	w.shown = true
	return true
}

func (w *Window) Close() error {
	w.composed.Close()
	if w.win == nil {
		return nil
	}
	return w.win.Close()
}
