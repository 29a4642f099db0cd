package xlib

import (
	"image"

	"github.com/BurntSushi/xgb/xproto"
)

// MapWindow maps w. If an ancestor is unmapped, w waits in the
// MapRequested state and is mapped when the ancestor is. If the parent
// selects SubstructureRedirect and w is not override-redirect, the
// parent gets a MapRequest instead.
func (d *Display) MapWindow(id xproto.Window) error {
	d.request(opMapWindow)
	w, err := d.lookupWindow(id)
	if err != nil {
		return err
	}
	return d.requestMap(w)
}

// MapRaised raises w to the top of its siblings and maps it.
func (d *Display) MapRaised(id xproto.Window) error {
	if err := d.RaiseWindow(id); err != nil {
		return err
	}
	return d.MapWindow(id)
}

// MapSubwindows maps the children of w, bottommost first.
func (d *Display) MapSubwindows(id xproto.Window) error {
	d.request(opMapSubwindows)
	w, err := d.lookupWindow(id)
	if err != nil {
		return err
	}
	for _, c := range w.children {
		if cw := d.window(c); cw != nil {
			if err := d.requestMap(cw); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Display) requestMap(w *window) error {
	if w == d.root || w.state != Unmapped {
		return nil
	}
	p := d.parentOf(w)
	if d.redirected(w, p) {
		d.postMapRequest(w, p)
		return nil
	}
	return d.mapWindow(w)
}

// redirected reports whether requests on w go to its parent's window
// manager instead of being applied.
func (d *Display) redirected(w, p *window) bool {
	return p != nil && !w.overrideRedirect && p.eventMask&xproto.EventMaskSubstructureRedirect != 0
}

func (d *Display) mapWindow(w *window) error {
	p := d.parentOf(w)
	if p.state != Mapped {
		w.state = MapRequested
		return nil
	}
	if p == d.root {
		if err := d.realize(w); err != nil {
			return err
		}
	} else if err := d.mergeIntoAncestor(p, w); err != nil {
		return err
	}
	w.state = Mapped
	d.postMapNotify(w)
	d.mapRequestedChildren(w)
	d.postExposeEvent(w, []image.Rectangle{image.Rect(0, 0, w.width, w.height)})
	return nil
}

// mapRequestedChildren maps the MapRequested descendants of the newly
// mapped w, depth first.
func (d *Display) mapRequestedChildren(w *window) {
	for _, c := range w.children {
		cw := d.window(c)
		if cw == nil || cw.state != MapRequested {
			continue
		}
		if err := d.mergeIntoAncestor(w, cw); err != nil {
			Logger().Error("map requested child", "window", cw.id, "err", err)
			continue
		}
		cw.state = Mapped
		d.postMapNotify(cw)
		d.mapRequestedChildren(cw)
	}
}

// UnmapWindow unmaps w. Its mapped descendants become unmapped
// without notification.
func (d *Display) UnmapWindow(id xproto.Window) error {
	d.request(opUnmapWindow)
	w, err := d.lookupWindow(id)
	if err != nil {
		return err
	}
	if w == d.root {
		return nil
	}
	switch w.state {
	case Mapped:
		d.unmapWindow(w)
	case MapRequested:
		w.state = Unmapped
	}
	return nil
}

// UnmapSubwindows unmaps the children of w, topmost first.
func (d *Display) UnmapSubwindows(id xproto.Window) error {
	d.request(opUnmapSubwindows)
	w, err := d.lookupWindow(id)
	if err != nil {
		return err
	}
	for i := len(w.children) - 1; i >= 0; i-- {
		cw := d.window(w.children[i])
		if cw == nil {
			continue
		}
		switch cw.state {
		case Mapped:
			d.unmapWindow(cw)
		case MapRequested:
			cw.state = Unmapped
		}
	}
	return nil
}

func (d *Display) unmapWindow(w *window) {
	if w.host != nil {
		w.host.Hide()
	}
	w.state = Unmapped
	d.unmapDescendants(w)
	d.postUnmapNotify(w, false)
	if f := d.window(d.focus); f != nil && (f == w || d.isAncestor(w, f)) {
		d.revertFocus(f)
	}

	p := d.parentOf(w)
	if p == nil || p == d.root || p.state != Mapped {
		return
	}
	r := w.bounds()
	d.paintBackground(p, r)
	d.postExposeEvent(p, []image.Rectangle{r})
}

func (d *Display) unmapDescendants(w *window) {
	for _, c := range w.children {
		cw := d.window(c)
		if cw == nil {
			continue
		}
		if cw.state == Mapped {
			cw.state = Unmapped
		}
		d.unmapDescendants(cw)
	}
}
