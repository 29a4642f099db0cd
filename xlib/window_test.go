package xlib

import (
	"errors"
	"image"
	"slices"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

func TestHitTest(t *testing.T) {
	d, _ := newTestDisplay(t)
	root := d.DefaultRootWindow()
	a := mustWindow(t, d, root, 0, 0, 100, 100, 0)
	c := mustWindow(t, d, root, 0, 0, 50, 50, 0)
	inner := mustWindow(t, d, c, 5, 5, 10, 10, 0)

	tests := []struct {
		x, y int
		want xproto.Window
	}{
		{10, 10, inner},
		{20, 20, c},
		{60, 60, a},
		{50, 10, a}, // right edge of c is exclusive
		{99, 99, a},
		{100, 100, root},
		{500, 10, root},
	}
	for _, tt := range tests {
		got, err := d.HitTest(root, tt.x, tt.y)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("HitTest(root, %d, %d) = %#x; want %#x", tt.x, tt.y, got, tt.want)
		}
	}

	if err := d.RaiseWindow(a); err != nil {
		t.Fatal(err)
	}
	if got, _ := d.HitTest(root, 10, 10); got != a {
		t.Errorf("after raising a, HitTest(root, 10, 10) = %#x; want %#x", got, a)
	}
}

func TestCreateWindowErrors(t *testing.T) {
	d, _ := newTestDisplay(t)
	root := d.DefaultRootWindow()
	io := mustWindow(t, d, root, 0, 0, 10, 10, 0)
	in, err := d.CreateWindow(root, 0, 0, 10, 10, 0, InputOnly, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name   string
		parent xproto.Window
		w, h   int
		class  int
		want   error
	}{
		{"bad parent", 0x777, 10, 10, InputOutput, ErrBadMatch},
		{"zero width", io, 0, 10, InputOutput, ErrBadValue},
		{"negative height", io, 10, -1, InputOutput, ErrBadValue},
		{"bad class", io, 10, 10, 9, ErrBadValue},
		{"output in input-only", in, 10, 10, InputOutput, ErrBadMatch},
	}
	for _, tt := range tests {
		_, err := d.CreateWindow(tt.parent, 0, 0, tt.w, tt.h, 0, tt.class, 0, nil)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: CreateWindow = %v; want %v", tt.name, err, tt.want)
		}
	}
	if _, err := d.CreateWindow(in, 0, 0, 5, 5, 0, CopyFromParent, 0, nil); err != nil {
		t.Errorf("CopyFromParent child of input-only window: %v", err)
	}
}

func TestCreateNotify(t *testing.T) {
	d, _ := newTestDisplay(t)
	root := d.DefaultRootWindow()
	p := mustWindow(t, d, root, 0, 0, 100, 100, xproto.EventMaskSubstructureNotify)
	c := mustWindow(t, d, p, 1, 2, 3, 4, 0)
	evs := drain(d)
	if len(evs) != 1 {
		t.Fatalf("got %d events; want 1", len(evs))
	}
	b, ok := evs[0].Body.(xproto.CreateNotifyEvent)
	if !ok || evs[0].Window != p || b.Window != c || b.Parent != p || b.X != 1 || b.Height != 4 {
		t.Errorf("event = %v to %#x; want CreateNotify for %#x to %#x", evs[0].Body, evs[0].Window, c, p)
	}
}

func TestCreateNotifyNotSentToNewWindow(t *testing.T) {
	d, _ := newTestDisplay(t)
	mustWindow(t, d, d.DefaultRootWindow(), 0, 0, 10, 10, xproto.EventMaskStructureNotify)
	if evs := drain(d); len(evs) != 0 {
		t.Errorf("events = %v; want none", evs)
	}
}

func TestDestroyPostOrder(t *testing.T) {
	d, _ := newTestDisplay(t)
	root := d.DefaultRootWindow()
	const mask = xproto.EventMaskStructureNotify
	a := mustWindow(t, d, root, 0, 0, 100, 100, mask)
	b := mustWindow(t, d, a, 0, 0, 50, 50, mask)
	c := mustWindow(t, d, b, 0, 0, 10, 10, mask)
	e := mustWindow(t, d, a, 50, 50, 50, 50, mask)
	drain(d)

	if err := d.DestroyWindow(a); err != nil {
		t.Fatal(err)
	}
	var got []xproto.Window
	for _, ev := range drain(d) {
		b, ok := ev.Body.(xproto.DestroyNotifyEvent)
		if !ok {
			t.Fatalf("unexpected event %v", ev.Body)
		}
		got = append(got, b.Window)
	}
	want := []xproto.Window{c, b, e, a}
	if !slices.Equal(got, want) {
		t.Errorf("DestroyNotify order = %#x; want %#x", got, want)
	}
	for _, w := range want {
		if _, _, _, err := d.QueryTree(w); !errors.Is(err, ErrBadMatch) {
			t.Errorf("QueryTree(%#x) after destroy = %v; want BadMatch", w, err)
		}
	}
	if _, _, kids, _ := d.QueryTree(root); len(kids) != 0 {
		t.Errorf("root children after destroy = %#x; want none", kids)
	}
	if err := d.DestroyWindow(a); !errors.Is(err, ErrBadMatch) {
		t.Errorf("second DestroyWindow = %v; want BadMatch", err)
	}
}

func TestDestroyReleasesHostWindow(t *testing.T) {
	d, h := newTestDisplay(t)
	a := mustWindow(t, d, d.DefaultRootWindow(), 0, 0, 100, 100, 0)
	if err := d.MapWindow(a); err != nil {
		t.Fatal(err)
	}
	hw := hostWindow(t, d, h, a)
	if err := d.DestroyWindow(a); err != nil {
		t.Fatal(err)
	}
	if !hw.Released() || h.Windows() != 0 {
		t.Errorf("host window not released")
	}
	if h.Buffers != 0 {
		t.Errorf("%d buffers live after destroy; want 0", h.Buffers)
	}
}

func TestDestroySubwindows(t *testing.T) {
	d, _ := newTestDisplay(t)
	root := d.DefaultRootWindow()
	a := mustWindow(t, d, root, 0, 0, 100, 100, xproto.EventMaskSubstructureNotify)
	b := mustWindow(t, d, a, 0, 0, 10, 10, 0)
	c := mustWindow(t, d, a, 0, 0, 10, 10, 0)
	drain(d)
	if err := d.DestroySubwindows(a); err != nil {
		t.Fatal(err)
	}
	var got []xproto.Window
	for _, ev := range drain(d) {
		got = append(got, ev.Body.(xproto.DestroyNotifyEvent).Window)
	}
	if want := []xproto.Window{c, b}; !slices.Equal(got, want) {
		t.Errorf("destroyed %#x; want %#x", got, want)
	}
	if _, _, kids, _ := d.QueryTree(a); len(kids) != 0 {
		t.Errorf("children left: %#x", kids)
	}
}

func TestReparent(t *testing.T) {
	d, _ := newTestDisplay(t)
	root := d.DefaultRootWindow()
	p1 := mustWindow(t, d, root, 0, 0, 100, 100, xproto.EventMaskSubstructureNotify)
	p2 := mustWindow(t, d, root, 0, 0, 100, 100, xproto.EventMaskSubstructureNotify)
	w := mustWindow(t, d, p1, 0, 0, 10, 10, xproto.EventMaskStructureNotify)
	drain(d)

	if err := d.ReparentWindow(w, p2, 5, 6); err != nil {
		t.Fatal(err)
	}
	evs := drain(d)
	var to []xproto.Window
	for _, ev := range evs {
		b, ok := ev.Body.(xproto.ReparentNotifyEvent)
		if !ok {
			t.Fatalf("unexpected event %v", ev.Body)
		}
		if b.Parent != p2 || b.Window != w || b.X != 5 || b.Y != 6 {
			t.Errorf("ReparentNotify = %+v", b)
		}
		to = append(to, ev.Window)
	}
	if want := []xproto.Window{p1, p2, w}; !slices.Equal(to, want) {
		t.Errorf("ReparentNotify recipients = %#x; want %#x", to, want)
	}
	if _, parent, _, _ := d.QueryTree(w); parent != p2 {
		t.Errorf("parent = %#x; want %#x", parent, p2)
	}

	if err := d.ReparentWindow(p2, w, 0, 0); !errors.Is(err, ErrBadMatch) {
		t.Errorf("reparent into own descendant = %v; want BadMatch", err)
	}
	if err := d.ReparentWindow(root, p1, 0, 0); !errors.Is(err, ErrBadMatch) {
		t.Errorf("reparent root = %v; want BadMatch", err)
	}
}

func TestReparentMappedTopLevel(t *testing.T) {
	d, h := newTestDisplay(t)
	root := d.DefaultRootWindow()
	a := mustWindow(t, d, root, 0, 0, 100, 100, 0)
	b := mustWindow(t, d, root, 200, 0, 20, 20, 0)
	for _, w := range []xproto.Window{a, b} {
		if err := d.MapWindow(w); err != nil {
			t.Fatal(err)
		}
	}
	if h.Windows() != 2 {
		t.Fatalf("%d host windows; want 2", h.Windows())
	}
	if err := d.ReparentWindow(b, a, 10, 10); err != nil {
		t.Fatal(err)
	}
	if h.Windows() != 1 {
		t.Errorf("%d host windows after reparent; want 1", h.Windows())
	}
	attr, _ := d.GetWindowAttributes(b)
	if attr.MapState != Mapped || !attr.Viewable {
		t.Errorf("reparented window state = %v; want viewable", attr.MapState)
	}
}

func TestStoreName(t *testing.T) {
	d, h := newTestDisplay(t)
	a := mustWindow(t, d, d.DefaultRootWindow(), 0, 0, 100, 100, 0)
	if err := d.StoreName(a, "before"); err != nil {
		t.Fatal(err)
	}
	if err := d.MapWindow(a); err != nil {
		t.Fatal(err)
	}
	hw := hostWindow(t, d, h, a)
	if hw.Title() != "before" {
		t.Errorf("host title = %q; want %q", hw.Title(), "before")
	}
	d.StoreName(a, "after")
	if hw.Title() != "after" {
		t.Errorf("host title = %q; want %q", hw.Title(), "after")
	}
	if name, _ := d.FetchName(a); name != "after" {
		t.Errorf("FetchName = %q; want %q", name, "after")
	}
}

func TestGetGeometry(t *testing.T) {
	d, h := newTestDisplay(t)
	a := mustWindow(t, d, d.DefaultRootWindow(), 10, 20, 100, 50, 0)
	d.MapWindow(a)
	// The user moves the window; the host is authoritative.
	hostWindow(t, d, h, a).SetBounds(image.Rect(30, 40, 130, 140))
	g, err := d.GetGeometry(xproto.Drawable(a))
	if err != nil {
		t.Fatal(err)
	}
	if g.X != 30 || g.Y != 40 || g.Width != 100 || g.Height != 100 {
		t.Errorf("GetGeometry = %+v; want 100x100 at 30,40", g)
	}
	if _, err := d.GetGeometry(0x999); !errors.Is(err, ErrBadDrawable) {
		t.Errorf("GetGeometry(bad) = %v; want BadDrawable", err)
	}
}

func TestIsAncestor(t *testing.T) {
	d, _ := newTestDisplay(t)
	root := d.DefaultRootWindow()
	a := mustWindow(t, d, root, 0, 0, 10, 10, 0)
	b := mustWindow(t, d, a, 0, 0, 10, 10, 0)
	tests := []struct {
		a, b xproto.Window
		want bool
	}{
		{root, b, true},
		{a, b, true},
		{b, a, false},
		{a, a, false},
	}
	for _, tt := range tests {
		if got, _ := d.IsAncestor(tt.a, tt.b); got != tt.want {
			t.Errorf("IsAncestor(%#x, %#x) = %v; want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
