// Package memhost is an in-memory host window system.
//
// It keeps every host window's published pixels in an image.RGBA and
// lets the caller inject host events, which makes it suitable for tests
// and headless use.
package memhost

import (
	"errors"
	"image"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/draw"

	"9fans.net/xemu/host"
)

// ErrNoBuffer is returned by NewBuffer while buffer allocation is failing.
var ErrNoBuffer = errors.New("memhost: buffer allocation failed")

// A Screen is an in-memory host.Screen.
type Screen struct {
	size    image.Point
	q       *host.Queue
	nextID  uint32
	windows map[uint32]*Window

	// FailBuffers makes NewBuffer fail while set.
	FailBuffers bool

	// Buffers counts live buffers.
	Buffers int
}

// New returns a host display of the given size.
func New(size image.Point) *Screen {
	return &Screen{
		size:    size,
		q:       host.NewQueue(256),
		windows: make(map[uint32]*Window),
	}
}

func (s *Screen) Size() image.Point { return s.size }

func (s *Screen) Events() *host.Queue { return s.q }

func (s *Screen) Close() error {
	for _, w := range s.windows {
		w.Release()
	}
	return nil
}

// Post queues a host event for window id.
func (s *Screen) Post(id uint32, body any) {
	s.q.Post(host.Event{Window: id, Body: body})
}

// Window returns the live host window with the given id, or nil.
func (s *Screen) Window(id uint32) *Window {
	return s.windows[id]
}

// Windows returns the number of live host windows.
func (s *Screen) Windows() int { return len(s.windows) }

func (s *Screen) NewWindow(opts *host.WindowOptions) (host.Window, error) {
	s.nextID++
	w := &Window{
		s:      s,
		id:     s.nextID,
		bounds: opts.Bounds,
		title:  opts.Title,
		pix:    image.NewRGBA(image.Rectangle{Max: opts.Bounds.Size()}),
	}
	s.windows[w.id] = w
	return w, nil
}

func (s *Screen) NewBuffer(size image.Point) (screen.Buffer, error) {
	if s.FailBuffers {
		return nil, ErrNoBuffer
	}
	s.Buffers++
	return &buffer{s: s, rgba: image.NewRGBA(image.Rectangle{Max: size})}, nil
}

type buffer struct {
	s        *Screen
	rgba     *image.RGBA
	released bool
}

func (b *buffer) Release() {
	if !b.released {
		b.released = true
		b.s.Buffers--
	}
}

func (b *buffer) Size() image.Point       { return b.rgba.Rect.Size() }
func (b *buffer) Bounds() image.Rectangle { return b.rgba.Rect }
func (b *buffer) RGBA() *image.RGBA       { return b.rgba }

// A Window is an in-memory host window.
type Window struct {
	s         *Screen
	id        uint32
	bounds    image.Rectangle
	title     string
	visible   bool
	released  bool
	published int
	back      *image.RGBA
	pix       *image.RGBA
}

func (w *Window) ID() uint32              { return w.id }
func (w *Window) Bounds() image.Rectangle { return w.bounds }
func (w *Window) Move(p image.Point)      { w.bounds = w.bounds.Add(p.Sub(w.bounds.Min)) }

func (w *Window) Resize(size image.Point) {
	w.bounds.Max = w.bounds.Min.Add(size)
}

// SetBounds changes the window geometry the way a user dragging the
// window would: without telling the client.
func (w *Window) SetBounds(r image.Rectangle) { w.bounds = r }

func (w *Window) Show()                 { w.visible = true }
func (w *Window) Hide()                 { w.visible = false }
func (w *Window) SetTitle(title string) { w.title = title }

func (w *Window) Upload(dp image.Point, buf screen.Buffer, sr image.Rectangle) {
	if w.back == nil || w.back.Rect.Size() != w.bounds.Size() {
		w.back = image.NewRGBA(image.Rectangle{Max: w.bounds.Size()})
	}
	dr := image.Rectangle{Min: dp, Max: dp.Add(sr.Size())}
	draw.Draw(w.back, dr, buf.RGBA(), sr.Min, draw.Src)
}

func (w *Window) Publish() {
	w.published++
	if w.back != nil {
		w.pix = image.NewRGBA(w.back.Rect)
		draw.Draw(w.pix, w.pix.Rect, w.back, image.Point{}, draw.Src)
	}
}

func (w *Window) Release() {
	w.released = true
	delete(w.s.windows, w.id)
}

// Title returns the window title.
func (w *Window) Title() string { return w.title }

// Visible reports whether the window is shown.
func (w *Window) Visible() bool { return w.visible }

// Released reports whether the window was released.
func (w *Window) Released() bool { return w.released }

// Published returns the number of Publish calls.
func (w *Window) Published() int { return w.published }

// Pixels returns the last published contents.
func (w *Window) Pixels() *image.RGBA { return w.pix }
