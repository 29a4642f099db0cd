package xlib

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

var (
	red   = color.RGBA{0xff, 0, 0, 0xff}
	green = color.RGBA{0, 0xff, 0, 0xff}
	blue  = color.RGBA{0, 0, 0xff, 0xff}
	white = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

func mustGC(t *testing.T, d *Display, drawable xproto.Drawable, fg uint32) xproto.Gcontext {
	t.Helper()
	gc, err := d.CreateGC(drawable, xproto.GcForeground, &GCValues{Foreground: fg})
	if err != nil {
		t.Fatalf("CreateGC: %v", err)
	}
	return gc
}

func TestDrawTopLevel(t *testing.T) {
	d, h := newTestDisplay(t)
	a := mustWindow(t, d, d.DefaultRootWindow(), 0, 0, 100, 100, 0)
	d.MapWindow(a)
	hw := hostWindow(t, d, h, a)
	if c := hw.Pixels().RGBAAt(50, 50); c != white {
		t.Errorf("background = %v; want white", c)
	}
	published := hw.Published()
	gc := mustGC(t, d, xproto.Drawable(a), 0xff0000)
	if err := d.FillRectangle(xproto.Drawable(a), gc, 10, 10, 5, 5); err != nil {
		t.Fatal(err)
	}
	if hw.Published() != published+1 {
		t.Errorf("FillRectangle published %d times; want once", hw.Published()-published)
	}
	tests := []struct {
		p    image.Point
		want color.RGBA
	}{
		{image.Pt(10, 10), red},
		{image.Pt(14, 14), red},
		{image.Pt(15, 15), white},
		{image.Pt(9, 10), white},
	}
	for _, tt := range tests {
		if c := hw.Pixels().RGBAAt(tt.p.X, tt.p.Y); c != tt.want {
			t.Errorf("pixel %v = %v; want %v", tt.p, c, tt.want)
		}
	}
}

func TestDrawChildIsClipped(t *testing.T) {
	d, h := newTestDisplay(t)
	a := mustWindow(t, d, d.DefaultRootWindow(), 0, 0, 100, 100, 0)
	b := mustWindow(t, d, a, 10, 20, 10, 10, 0)
	d.MapWindow(b)
	d.MapWindow(a)
	gc := mustGC(t, d, xproto.Drawable(b), 0x0000ff)
	if err := d.FillRectangle(xproto.Drawable(b), gc, -5, -5, 100, 100); err != nil {
		t.Fatal(err)
	}
	pix := hostWindow(t, d, h, a).Pixels()
	if c := pix.RGBAAt(10, 20); c != blue {
		t.Errorf("child origin = %v; want blue", c)
	}
	if c := pix.RGBAAt(19, 29); c != blue {
		t.Errorf("child corner = %v; want blue", c)
	}
	if c := pix.RGBAAt(20, 30); c != white {
		t.Errorf("outside child = %v; want white", c)
	}
	if c := pix.RGBAAt(9, 19); c != white {
		t.Errorf("outside child = %v; want white", c)
	}
}

func TestUnmappedChildMergedOnMap(t *testing.T) {
	d, h := newTestDisplay(t)
	a := mustWindow(t, d, d.DefaultRootWindow(), 0, 0, 100, 100, 0)
	b := mustWindow(t, d, a, 10, 10, 20, 20, 0)
	d.MapWindow(a)
	hw := hostWindow(t, d, h, a)
	buffers := h.Buffers

	gc := mustGC(t, d, xproto.Drawable(b), 0x00ff00)
	if err := d.FillRectangle(xproto.Drawable(b), gc, 0, 0, 20, 20); err != nil {
		t.Fatal(err)
	}
	if h.Buffers != buffers+1 {
		t.Errorf("drawing into an unmapped window allocated %d buffers; want 1", h.Buffers-buffers)
	}
	if c := hw.Pixels().RGBAAt(15, 15); c != white {
		t.Errorf("unmapped drawing visible: %v", c)
	}

	d.MapWindow(b)
	if c := hw.Pixels().RGBAAt(15, 15); c != green {
		t.Errorf("merged pixel = %v; want green", c)
	}
	if d.window(b).buf != nil || h.Buffers != buffers {
		t.Errorf("offscreen buffer not released after merge")
	}

	d.SetForeground(gc, 0x0000ff)
	d.FillRectangle(xproto.Drawable(b), gc, 0, 0, 5, 5)
	if c := hw.Pixels().RGBAAt(12, 12); c != blue {
		t.Errorf("drawing after map = %v; want blue", c)
	}
	if c := hw.Pixels().RGBAAt(16, 16); c != green {
		t.Errorf("earlier drawing lost: %v", c)
	}
}

func TestOffscreenTopLevelShownOnMap(t *testing.T) {
	d, h := newTestDisplay(t)
	a := mustWindow(t, d, d.DefaultRootWindow(), 0, 0, 50, 50, 0)
	gc := mustGC(t, d, xproto.Drawable(a), 0xff0000)
	d.FillRectangle(xproto.Drawable(a), gc, 0, 0, 10, 10)
	if h.Windows() != 0 {
		t.Fatalf("drawing created a host window")
	}
	d.MapWindow(a)
	pix := hostWindow(t, d, h, a).Pixels()
	if c := pix.RGBAAt(5, 5); c != red {
		t.Errorf("pixel drawn before map = %v; want red", c)
	}
	if c := pix.RGBAAt(20, 20); c != white {
		t.Errorf("background = %v; want white", c)
	}
}

func TestCopyArea(t *testing.T) {
	d, h := newTestDisplay(t)
	root := d.DefaultRootWindow()
	a := mustWindow(t, d, root, 0, 0, 100, 100, 0)
	d.MapWindow(a)
	p, err := d.CreatePixmap(xproto.Drawable(a), 10, 10, Depth)
	if err != nil {
		t.Fatal(err)
	}
	gc := mustGC(t, d, xproto.Drawable(p), 0xff0000)
	d.FillRectangle(xproto.Drawable(p), gc, 0, 0, 5, 10)
	if err := d.CopyArea(xproto.Drawable(p), xproto.Drawable(a), gc, 0, 0, 10, 10, 20, 30); err != nil {
		t.Fatal(err)
	}
	pix := hostWindow(t, d, h, a).Pixels()
	if c := pix.RGBAAt(22, 35); c != red {
		t.Errorf("copied pixel = %v; want red", c)
	}
	// The right half of the pixmap was never drawn: transparent.
	if c := pix.RGBAAt(27, 35); c != white {
		t.Errorf("transparent source pixel over white = %v; want white", c)
	}

	// Copy within one window, overlapping.
	if err := d.CopyArea(xproto.Drawable(a), xproto.Drawable(a), gc, 20, 30, 10, 10, 23, 30); err != nil {
		t.Fatal(err)
	}
	pix = hostWindow(t, d, h, a).Pixels()
	if c := pix.RGBAAt(27, 35); c != red {
		t.Errorf("overlapping copy = %v; want red", c)
	}
}

func TestCopyAreaSpecialSources(t *testing.T) {
	d, h := newTestDisplay(t)
	root := d.DefaultRootWindow()
	a := mustWindow(t, d, root, 0, 0, 100, 100, 0)
	unmapped := mustWindow(t, d, root, 0, 0, 10, 10, 0)
	in, _ := d.CreateWindow(root, 0, 0, 10, 10, 0, InputOnly, 0, nil)
	d.MapWindow(a)
	gc := mustGC(t, d, xproto.Drawable(a), 0)
	buffers := h.Buffers

	if err := d.CopyArea(xproto.Drawable(unmapped), xproto.Drawable(a), gc, 0, 0, 10, 10, 0, 0); err != nil {
		t.Errorf("CopyArea from an unmapped window = %v", err)
	}
	if h.Buffers != buffers {
		t.Errorf("CopyArea from an unmapped window allocated a buffer")
	}
	if err := d.CopyArea(xproto.Drawable(in), xproto.Drawable(a), gc, 0, 0, 10, 10, 0, 0); !errors.Is(err, ErrBadMatch) {
		t.Errorf("CopyArea from an input-only window = %v; want BadMatch", err)
	}
	if err := d.CopyArea(xproto.Drawable(a), xproto.Drawable(in), gc, 0, 0, 10, 10, 0, 0); !errors.Is(err, ErrBadMatch) {
		t.Errorf("CopyArea to an input-only window = %v; want BadMatch", err)
	}
}

func TestBufferAllocationFailure(t *testing.T) {
	d, h := newTestDisplay(t)
	a := mustWindow(t, d, d.DefaultRootWindow(), 0, 0, 100, 100, 0)
	gc := mustGC(t, d, xproto.Drawable(a), 0)
	var codes []byte
	d.SetErrorHandler(func(_ *Display, err *Error) {
		codes = append(codes, err.Code)
	})
	h.FailBuffers = true
	err := d.FillRectangle(xproto.Drawable(a), gc, 0, 0, 10, 10)
	if !errors.Is(err, ErrBadAlloc) {
		t.Errorf("FillRectangle = %v; want BadAlloc", err)
	}
	if len(codes) != 1 || codes[0] != xproto.BadAlloc {
		t.Errorf("handler saw %v; want one BadAlloc", codes)
	}
	if _, err := d.CreatePixmap(xproto.Drawable(a), 10, 10, Depth); !errors.Is(err, ErrBadAlloc) {
		t.Errorf("CreatePixmap = %v; want BadAlloc", err)
	}

	h.FailBuffers = false
	if err := d.FillRectangle(xproto.Drawable(a), gc, 0, 0, 10, 10); err != nil {
		t.Errorf("FillRectangle after recovery = %v", err)
	}
}

func TestClearArea(t *testing.T) {
	d, h := newTestDisplay(t)
	a := mustWindow(t, d, d.DefaultRootWindow(), 0, 0, 100, 100, xproto.EventMaskExposure)
	d.MapWindow(a)
	drain(d)
	gc := mustGC(t, d, xproto.Drawable(a), 0xff0000)
	d.FillRectangle(xproto.Drawable(a), gc, 0, 0, 100, 100)

	if err := d.ClearArea(a, 50, 60, 0, 0, true); err != nil {
		t.Fatal(err)
	}
	pix := hostWindow(t, d, h, a).Pixels()
	if c := pix.RGBAAt(99, 99); c != white {
		t.Errorf("cleared pixel = %v; want white", c)
	}
	if c := pix.RGBAAt(49, 99); c != red {
		t.Errorf("pixel outside the cleared area = %v; want red", c)
	}
	evs := drain(d)
	want := xproto.ExposeEvent{Window: a, X: 50, Y: 60, Width: 50, Height: 40}
	if len(evs) != 1 || withSequence(evs[0].Body, 0) != want {
		t.Errorf("events = %v; want %v", evs, want)
	}

	d.ClearArea(a, 0, 0, 10, 10, false)
	if n := d.EventsQueued(QueuedAlready); n != 0 {
		t.Errorf("ClearArea without exposures posted %d events", n)
	}
}

func TestBackgroundPixmap(t *testing.T) {
	d, h := newTestDisplay(t)
	root := d.DefaultRootWindow()
	p, _ := d.CreatePixmap(xproto.Drawable(root), 2, 2, Depth)
	gc := mustGC(t, d, xproto.Drawable(p), 0xff0000)
	d.FillRectangle(xproto.Drawable(p), gc, 0, 0, 2, 2)
	d.SetForeground(gc, 0x0000ff)
	d.DrawPoint(xproto.Drawable(p), gc, 1, 1)

	a, err := d.CreateWindow(root, 0, 0, 10, 10, 0, InputOutput, xproto.CwBackPixmap, &WindowAttributes{BackgroundPixmap: p})
	if err != nil {
		t.Fatal(err)
	}
	// The window keeps the pixels after the pixmap is freed.
	d.FreePixmap(p)
	d.MapWindow(a)
	pix := hostWindow(t, d, h, a).Pixels()
	if c := pix.RGBAAt(2, 2); c != red {
		t.Errorf("tile origin = %v; want red", c)
	}
	if c := pix.RGBAAt(5, 5); c != blue {
		t.Errorf("tiled point = %v; want blue", c)
	}

	g := mustGC(t, d, xproto.Drawable(a), 0x00ff00)
	d.FillRectangle(xproto.Drawable(a), g, 0, 0, 10, 10)
	d.ClearWindow(a)
	if c := hostWindow(t, d, h, a).Pixels().RGBAAt(3, 3); c != blue {
		t.Errorf("cleared tile pixel = %v; want blue", c)
	}
}

func TestDrawLines(t *testing.T) {
	d, _ := newTestDisplay(t)
	p, _ := d.CreatePixmap(xproto.Drawable(d.DefaultRootWindow()), 10, 10, Depth)
	gc := mustGC(t, d, xproto.Drawable(p), 0x00ff00)
	if err := d.DrawLine(xproto.Drawable(p), gc, 0, 5, 9, 5); err != nil {
		t.Fatal(err)
	}
	img := d.pixmap(p).buf.RGBA()
	for x := 0; x < 10; x++ {
		if c := img.RGBAAt(x, 5); c.G < 0xf0 || c.A < 0xf0 {
			t.Errorf("pixel %d,5 = %v; want green", x, c)
		}
	}
	if c := img.RGBAAt(5, 7); c.A != 0 {
		t.Errorf("pixel 5,7 = %v; want untouched", c)
	}

	tests := []struct {
		name string
		pts  []xproto.Point
		mode byte
	}{
		{"one point", []xproto.Point{{X: 1, Y: 1}}, xproto.CoordModeOrigin},
		{"no points", nil, xproto.CoordModeOrigin},
		{"bad mode", []xproto.Point{{}, {X: 1, Y: 1}}, 7},
	}
	for _, tt := range tests {
		if err := d.DrawLines(xproto.Drawable(p), gc, tt.pts, tt.mode); !errors.Is(err, ErrBadValue) {
			t.Errorf("%s: DrawLines = %v; want BadValue", tt.name, err)
		}
	}
}

func TestDrawRectangle(t *testing.T) {
	d, _ := newTestDisplay(t)
	p, _ := d.CreatePixmap(xproto.Drawable(d.DefaultRootWindow()), 10, 10, Depth)
	gc := mustGC(t, d, xproto.Drawable(p), 0xff0000)
	if err := d.DrawRectangle(xproto.Drawable(p), gc, 1, 1, 4, 4); err != nil {
		t.Fatal(err)
	}
	img := d.pixmap(p).buf.RGBA()
	for _, pt := range []image.Point{{1, 1}, {5, 1}, {1, 5}, {5, 5}, {3, 1}} {
		if c := img.RGBAAt(pt.X, pt.Y); c != red {
			t.Errorf("outline pixel %v = %v; want red", pt, c)
		}
	}
	if c := img.RGBAAt(3, 3); c.A != 0 {
		t.Errorf("interior pixel = %v; want untouched", c)
	}
	if err := d.FillRectangles(xproto.Drawable(p), gc, nil); !errors.Is(err, ErrBadValue) {
		t.Errorf("FillRectangles(nil) = %v; want BadValue", err)
	}
}

func TestPixmapErrors(t *testing.T) {
	d, _ := newTestDisplay(t)
	root := xproto.Drawable(d.DefaultRootWindow())
	tests := []struct {
		name        string
		drawable    xproto.Drawable
		w, h, depth int
		want        error
	}{
		{"zero width", root, 0, 10, Depth, ErrBadValue},
		{"zero height", root, 10, 0, Depth, ErrBadValue},
		{"zero depth", root, 10, 10, 0, ErrBadValue},
		{"deep", root, 10, 10, 32, ErrBadValue},
		{"bad drawable", 0x55, 10, 10, Depth, ErrBadDrawable},
	}
	for _, tt := range tests {
		if _, err := d.CreatePixmap(tt.drawable, tt.w, tt.h, tt.depth); !errors.Is(err, tt.want) {
			t.Errorf("%s: CreatePixmap = %v; want %v", tt.name, err, tt.want)
		}
	}
	if err := d.FreePixmap(0x55); !errors.Is(err, ErrBadMatch) {
		t.Errorf("FreePixmap(bad) = %v; want BadMatch", err)
	}
}

func TestBitmapFromData(t *testing.T) {
	d, _ := newTestDisplay(t)
	// 3x2: row 0 = x.x, row 1 = .x.
	p, err := d.CreateBitmapFromData(xproto.Drawable(d.DefaultRootWindow()), []byte{0x05, 0x02}, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	img := d.pixmap(p).buf.RGBA()
	want := []string{"x.x", ".x."}
	for y, row := range want {
		for x, c := range row {
			set := img.RGBAAt(x, y) == white
			if set != (c == 'x') {
				t.Errorf("bit %d,%d = %v; want %c", x, y, set, c)
			}
		}
	}
	if g, _ := d.GetGeometry(xproto.Drawable(p)); g.Depth != 1 {
		t.Errorf("bitmap depth = %d; want 1", g.Depth)
	}
}

func TestGCErrors(t *testing.T) {
	d, _ := newTestDisplay(t)
	root := xproto.Drawable(d.DefaultRootWindow())
	if _, err := d.CreateGC(0x99, 0, nil); !errors.Is(err, ErrBadDrawable) {
		t.Errorf("CreateGC(bad drawable) = %v; want BadDrawable", err)
	}
	if _, err := d.CreateGC(root, xproto.GcLineWidth, &GCValues{LineWidth: -1}); !errors.Is(err, ErrBadValue) {
		t.Errorf("CreateGC(negative line width) = %v; want BadValue", err)
	}
	gc := mustGC(t, d, root, 0)
	d.FreeGC(gc)
	if err := d.FillRectangle(root, gc, 0, 0, 1, 1); !errors.Is(err, ErrBadMatch) {
		t.Errorf("FillRectangle with a freed gc = %v; want BadMatch", err)
	}
	if err := d.FreeGC(gc); !errors.Is(err, ErrBadMatch) {
		t.Errorf("second FreeGC = %v; want BadMatch", err)
	}
}

func TestUnimplementedDrawing(t *testing.T) {
	d, _ := newTestDisplay(t)
	root := xproto.Drawable(d.DefaultRootWindow())
	gc := mustGC(t, d, root, 0)
	if err := d.FillPolygon(root, gc, nil, xproto.PolyShapeComplex, xproto.CoordModeOrigin); err != nil {
		t.Errorf("FillPolygon = %v", err)
	}
	if err := d.DrawArc(root, gc, 0, 0, 10, 10, 0, 360*64); err != nil {
		t.Errorf("DrawArc = %v", err)
	}
}
