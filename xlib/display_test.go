package xlib

import (
	"errors"
	"image"
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"9fans.net/xemu/host/memhost"
)

func newTestDisplay(t *testing.T) (*Display, *memhost.Screen) {
	t.Helper()
	h := memhost.New(image.Pt(1024, 768))
	d, err := Open(h, &Options{Size: "800x600"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d, h
}

// mustWindow creates an InputOutput window selecting mask.
func mustWindow(t *testing.T, d *Display, parent xproto.Window, x, y, width, height int, mask uint32) xproto.Window {
	t.Helper()
	w, err := d.CreateWindow(parent, x, y, width, height, 0, InputOutput,
		xproto.CwBackPixel|xproto.CwEventMask, &WindowAttributes{BackgroundPixel: 0xffffff, EventMask: mask})
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	return w
}

// drain returns every event available without blocking.
func drain(d *Display) []*Event {
	var evs []*Event
	for d.EventsQueued(QueuedAfterReading) > 0 {
		evs = append(evs, d.NextEvent())
	}
	return evs
}

// hostWindow returns the host window realizing the top-level w.
func hostWindow(t *testing.T, d *Display, h *memhost.Screen, w xproto.Window) *memhost.Window {
	t.Helper()
	win := d.window(w)
	if win == nil || win.host == nil {
		t.Fatalf("window %#x is not realized", w)
	}
	return h.Window(win.host.ID())
}

func eventTypes(evs []*Event) []int {
	var types []int
	for _, ev := range evs {
		types = append(types, ev.Type())
	}
	return types
}

func TestOpen(t *testing.T) {
	d, _ := newTestDisplay(t)
	if d.DisplayWidth() != 800 || d.DisplayHeight() != 600 {
		t.Errorf("root size = %dx%d; want 800x600", d.DisplayWidth(), d.DisplayHeight())
	}
	a, err := d.GetWindowAttributes(d.DefaultRootWindow())
	if err != nil {
		t.Fatal(err)
	}
	if a.MapState != Mapped || !a.Viewable {
		t.Errorf("root map state = %v, viewable %v; want Mapped, true", a.MapState, a.Viewable)
	}
	if d.DisplayString() != ":0" {
		t.Errorf("DisplayString = %q; want :0", d.DisplayString())
	}
}

func TestOpenSizeFromHost(t *testing.T) {
	t.Setenv("winsize", "")
	d, err := Open(memhost.New(image.Pt(320, 200)), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if d.DisplayWidth() != 320 || d.DisplayHeight() != 200 {
		t.Errorf("root size = %dx%d; want 320x200", d.DisplayWidth(), d.DisplayHeight())
	}
}

func TestOpenBadSize(t *testing.T) {
	if _, err := Open(memhost.New(image.Pt(320, 200)), &Options{Size: "big"}); err == nil {
		t.Errorf("Open with bad size succeeded")
	}
}

func TestErrorHandler(t *testing.T) {
	d, _ := newTestDisplay(t)
	var got []*Error
	d.SetErrorHandler(func(_ *Display, err *Error) {
		got = append(got, err)
	})
	err := d.DestroyWindow(0x12345)
	if !errors.Is(err, ErrBadMatch) {
		t.Errorf("DestroyWindow(bad) = %v; want BadMatch", err)
	}
	if !errors.Is(err, &Error{Code: xproto.BadMatch, Opcode: opDestroyWindow}) {
		t.Errorf("error %v does not match the DestroyWindow opcode", err)
	}
	if errors.Is(err, ErrBadValue) {
		t.Errorf("error %v matches BadValue", err)
	}
	if len(got) != 1 || got[0].Resource != 0x12345 {
		t.Errorf("handler saw %v; want one error for 0x12345", got)
	}
}
