package xlib

import (
	"image"
	"slices"

	"github.com/BurntSushi/xgb/xproto"
)

// WindowChanges are the values for ConfigureWindow. Which fields apply
// is selected by a mask of xproto.ConfigWindow* bits.
type WindowChanges struct {
	X, Y          int
	Width, Height int
	BorderWidth   int
	Sibling       xproto.Window
	StackMode     byte // xproto.StackModeAbove, ...
}

// ConfigureWindow changes the geometry or stacking position of w.
// If the parent selects SubstructureRedirect and w is not
// override-redirect, nothing changes and the parent gets a
// ConfigureRequest.
func (d *Display) ConfigureWindow(id xproto.Window, mask uint16, c WindowChanges) error {
	d.request(opConfigureWindow)
	w, err := d.lookupWindow(id)
	if err != nil {
		return err
	}
	if w == d.root {
		return nil
	}
	if mask&xproto.ConfigWindowWidth != 0 && c.Width <= 0 {
		return d.fail(xproto.BadValue, badDimension(c.Width, 1))
	}
	if mask&xproto.ConfigWindowHeight != 0 && c.Height <= 0 {
		return d.fail(xproto.BadValue, badDimension(c.Height, 1))
	}
	var sibling *window
	if mask&xproto.ConfigWindowSibling != 0 {
		if mask&xproto.ConfigWindowStackMode == 0 {
			return d.fail(xproto.BadMatch, uint32(c.Sibling))
		}
		sibling = d.window(c.Sibling)
		if sibling == nil || sibling == w || sibling.parent != w.parent {
			return d.fail(xproto.BadMatch, uint32(c.Sibling))
		}
	}
	if mask&xproto.ConfigWindowStackMode != 0 && c.StackMode > xproto.StackModeOpposite {
		return d.fail(xproto.BadValue, uint32(c.StackMode))
	}

	p := d.parentOf(w)
	if d.redirected(w, p) {
		d.postConfigureRequest(w, p, mask, c)
		return nil
	}

	d.syncGeometry(w)
	old := w.bounds()
	r := old
	if mask&xproto.ConfigWindowX != 0 {
		r = r.Add(image.Pt(c.X-r.Min.X, 0))
	}
	if mask&xproto.ConfigWindowY != 0 {
		r = r.Add(image.Pt(0, c.Y-r.Min.Y))
	}
	if mask&xproto.ConfigWindowWidth != 0 {
		r.Max.X = r.Min.X + c.Width
	}
	if mask&xproto.ConfigWindowHeight != 0 {
		r.Max.Y = r.Min.Y + c.Height
	}
	if w.host != nil {
		if r.Min != old.Min {
			w.host.Move(r.Min)
		}
		if r.Size() != old.Size() {
			w.host.Resize(r.Size())
		}
		d.syncGeometry(w)
	} else {
		w.x, w.y = r.Min.X, r.Min.Y
		w.width, w.height = r.Dx(), r.Dy()
	}

	changed := w.bounds() != old
	if mask&xproto.ConfigWindowBorderWidth != 0 && c.BorderWidth != w.border {
		w.border = c.BorderWidth
		changed = true
	}
	restacked := false
	if mask&xproto.ConfigWindowStackMode != 0 {
		restacked = d.restack(w, p, sibling, c.StackMode)
		changed = changed || restacked
	}
	if w.bounds().Size() != old.Size() {
		d.resizeBuffer(w)
	}
	if !changed {
		return nil
	}
	d.postConfigureNotify(w)
	if w.state == Mapped && (w.bounds() != old || restacked) {
		if p != d.root && w.bounds() != old {
			d.paintBackground(p, old)
			d.postExposeEvent(p, []image.Rectangle{old})
		}
		d.postExposeEvent(w, []image.Rectangle{image.Rect(0, 0, w.width, w.height)})
	}
	return nil
}

// restack moves w within p's children. A nil sibling means the top or
// bottom of the stack. TopIf and BottomIf behave like Above and Below,
// and Opposite lowers a topmost window and raises any other.
// It reports whether the order changed.
func (d *Display) restack(w, p, sibling *window, mode byte) bool {
	i := slices.Index(p.children, w.id)
	if i < 0 {
		return false
	}
	if mode == xproto.StackModeOpposite {
		mode = xproto.StackModeAbove
		if i == len(p.children)-1 {
			mode = xproto.StackModeBelow
		}
	}
	kids := slices.Delete(slices.Clone(p.children), i, i+1)
	var j int
	switch mode {
	case xproto.StackModeAbove, xproto.StackModeTopIf:
		j = len(kids)
		if sibling != nil {
			j = slices.Index(kids, sibling.id) + 1
		}
	case xproto.StackModeBelow, xproto.StackModeBottomIf:
		j = 0
		if sibling != nil {
			j = slices.Index(kids, sibling.id)
		}
	}
	if j == i {
		return false
	}
	p.children = slices.Insert(kids, j, w.id)
	return true
}

// siblingBelow returns the sibling directly below w, or 0.
func (d *Display) siblingBelow(w *window) xproto.Window {
	p := d.parentOf(w)
	if p == nil {
		return 0
	}
	if i := slices.Index(p.children, w.id); i > 0 {
		return p.children[i-1]
	}
	return 0
}

// MoveWindow moves w to (x, y) in its parent.
func (d *Display) MoveWindow(id xproto.Window, x, y int) error {
	return d.ConfigureWindow(id, xproto.ConfigWindowX|xproto.ConfigWindowY, WindowChanges{X: x, Y: y})
}

// ResizeWindow sets the size of w.
func (d *Display) ResizeWindow(id xproto.Window, width, height int) error {
	return d.ConfigureWindow(id, xproto.ConfigWindowWidth|xproto.ConfigWindowHeight, WindowChanges{Width: width, Height: height})
}

// MoveResizeWindow sets the position and size of w.
func (d *Display) MoveResizeWindow(id xproto.Window, x, y, width, height int) error {
	return d.ConfigureWindow(id,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		WindowChanges{X: x, Y: y, Width: width, Height: height})
}

// RaiseWindow puts w on top of its siblings.
func (d *Display) RaiseWindow(id xproto.Window) error {
	return d.ConfigureWindow(id, xproto.ConfigWindowStackMode, WindowChanges{StackMode: xproto.StackModeAbove})
}

// LowerWindow puts w below its siblings.
func (d *Display) LowerWindow(id xproto.Window) error {
	return d.ConfigureWindow(id, xproto.ConfigWindowStackMode, WindowChanges{StackMode: xproto.StackModeBelow})
}
