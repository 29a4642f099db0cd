// Package shinyhost runs the emulated display on a real window system
// through the golang.org/x/exp/shiny driver.
package shinyhost

import (
	"image"
	"log"
	"sync"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/size"

	"9fans.net/xemu/host"
)

// Main runs f with a host screen. Like driver.Main, it must be called
// from the main goroutine and returns when f returns.
func Main(f func(host.Screen)) {
	driver.Main(func(s screen.Screen) {
		f(&Screen{s: s, q: host.NewQueue(256)})
	})
}

// A Screen is a host.Screen backed by a shiny screen.
type Screen struct {
	s screen.Screen
	q *host.Queue

	mu     sync.Mutex
	nextID uint32
}

// Size returns the zero point: shiny does not report the display size.
func (s *Screen) Size() image.Point { return image.Point{} }

func (s *Screen) Events() *host.Queue { return s.q }

func (s *Screen) Close() error { return nil }

func (s *Screen) NewBuffer(size image.Point) (screen.Buffer, error) {
	return s.s.NewBuffer(size)
}

func (s *Screen) NewWindow(opts *host.WindowOptions) (host.Window, error) {
	sw, err := s.s.NewWindow(&screen.NewWindowOptions{
		Width:  opts.Bounds.Dx(),
		Height: opts.Bounds.Dy(),
		Title:  opts.Title,
	})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	w := &window{sw: sw, id: id, bounds: opts.Bounds, title: opts.Title}
	go w.pump(s.q)
	return w, nil
}

// A window wraps a shiny window. Shiny windows cannot be moved, hidden
// or retitled after creation, so those requests only update the
// recorded state.
type window struct {
	sw screen.Window
	id uint32

	mu       sync.Mutex
	bounds   image.Rectangle
	title    string
	visible  bool
	released bool
}

// pump forwards the window's events to q until the window dies.
func (w *window) pump(q *host.Queue) {
	for {
		e := w.sw.NextEvent()
		switch e := e.(type) {
		case func():
			e()
			continue
		case error:
			log.Print(e)
			continue
		case size.Event:
			w.mu.Lock()
			w.bounds.Max = w.bounds.Min.Add(e.Size())
			w.mu.Unlock()
		}
		q.Post(host.Event{Window: w.id, Body: e})
		if e, ok := e.(lifecycle.Event); ok && e.To == lifecycle.StageDead {
			return
		}
	}
}

func (w *window) ID() uint32 { return w.id }

func (w *window) Bounds() image.Rectangle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bounds
}

func (w *window) Move(p image.Point) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.bounds = w.bounds.Add(p.Sub(w.bounds.Min))
}

// Resize records the new size. The shiny window keeps its size until
// the user changes it; the next size event reports the real one.
func (w *window) Resize(size image.Point) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.bounds.Max = w.bounds.Min.Add(size)
}

func (w *window) Show() {
	w.mu.Lock()
	w.visible = true
	w.mu.Unlock()
}

func (w *window) Hide() {
	w.mu.Lock()
	w.visible = false
	w.mu.Unlock()
}

func (w *window) SetTitle(title string) {
	w.mu.Lock()
	w.title = title
	w.mu.Unlock()
}

func (w *window) Upload(dp image.Point, buf screen.Buffer, sr image.Rectangle) {
	if w.isReleased() {
		return
	}
	w.sw.Upload(dp, buf, sr)
}

func (w *window) Publish() {
	if w.isReleased() {
		return
	}
	w.sw.Publish()
}

func (w *window) Release() {
	w.mu.Lock()
	if w.released {
		w.mu.Unlock()
		return
	}
	w.released = true
	w.mu.Unlock()
	w.sw.Release()
}

func (w *window) isReleased() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.released
}
