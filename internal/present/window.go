// Package present shows composed frames in a local OpenCV window and turns
// key presses into environment events.
package present

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ayusman/kathputli/internal/app"
	"github.com/ayusman/kathputli/internal/environment"
)

const keyEsc = 27

// Keys maps window key codes to environment events.
var Keys = map[int]environment.Event{
	'a': environment.AirUp,
	'z': environment.AirDown,
	't': environment.Warmer,
	'g': environment.Colder,
	'r': environment.Reset,
}

// Poster accepts environment events.
type Poster interface {
	Post(ev environment.Event) bool
}

// Window is an app.Presenter backed by a gocv window.
type Window struct {
	win    *gocv.Window
	poster Poster
}

// NewWindow opens a window titled title. Key presses are posted to p.
func NewWindow(title string, p Poster) *Window {
	return &Window{
		win:    gocv.NewWindow(title),
		poster: p,
	}
}

// Present shows f's canvas and polls the keyboard once. Pressing q or Esc
// returns app.ErrStop.
func (w *Window) Present(f *app.Frame) error {
	if f.Canvas == nil {
		return nil
	}

	mat, err := gocv.ImageToMatRGB(f.Canvas)
	if err != nil {
		return fmt.Errorf("convert canvas: %w", err)
	}
	defer mat.Close()

	w.win.IMShow(mat)
	return w.handleKey(w.win.WaitKey(1))
}

func (w *Window) handleKey(key int) error {
	if key < 0 {
		return nil
	}
	key &= 0xff

	switch key {
	case 'q', keyEsc:
		return app.ErrStop
	}
	if ev, ok := Keys[key]; ok && w.poster != nil {
		w.poster.Post(ev)
	}
	return nil
}

// Close closes the window.
func (w *Window) Close() error {
	return w.win.Close()
}
