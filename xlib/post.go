package xlib

import (
	"image"

	"github.com/BurntSushi/xgb/xproto"
)

// enqueue appends ev to the event queue.
func (d *Display) enqueue(ev *Event) {
	d.queue = append(d.queue, ev)
	d.ready.inc()
	Logger().Debug("event queued", "window", ev.Window, "event", ev.Body)
}

// notifyStructure posts a structure event about w to each of parents
// selecting SubstructureNotify, in order, and then to w if it selects
// StructureNotify. Mk builds the event for one recipient.
// It reports whether any event was posted.
func (d *Display) notifyStructure(w *window, mk func(to xproto.Window) *Event, parents ...*window) bool {
	posted := false
	for _, p := range parents {
		if p != nil && p.eventMask&xproto.EventMaskSubstructureNotify != 0 {
			d.enqueue(mk(p.id))
			posted = true
		}
	}
	if w.eventMask&xproto.EventMaskStructureNotify != 0 {
		d.enqueue(mk(w.id))
		posted = true
	}
	return posted
}

// postCreateNotify reports w to a parent selecting SubstructureNotify.
// The new window itself is never told.
func (d *Display) postCreateNotify(w *window) bool {
	p := d.parentOf(w)
	if p == nil || p.eventMask&xproto.EventMaskSubstructureNotify == 0 {
		return false
	}
	d.enqueue(createNotify(p.id, w))
	return true
}

func (d *Display) postDestroyNotify(w *window) bool {
	return d.notifyStructure(w, func(to xproto.Window) *Event {
		return destroyNotify(to, w)
	}, d.parentOf(w))
}

func (d *Display) postMapNotify(w *window) bool {
	return d.notifyStructure(w, func(to xproto.Window) *Event {
		return mapNotify(to, w)
	}, d.parentOf(w))
}

func (d *Display) postUnmapNotify(w *window, fromConfigure bool) bool {
	return d.notifyStructure(w, func(to xproto.Window) *Event {
		return unmapNotify(to, w, fromConfigure)
	}, d.parentOf(w))
}

func (d *Display) postConfigureNotify(w *window) bool {
	above := d.siblingBelow(w)
	return d.notifyStructure(w, func(to xproto.Window) *Event {
		return configureNotify(to, w, above)
	}, d.parentOf(w))
}

// postReparentNotify reports w's move from old to its current parent.
func (d *Display) postReparentNotify(w, old *window) bool {
	return d.notifyStructure(w, func(to xproto.Window) *Event {
		return reparentNotify(to, w)
	}, old, d.parentOf(w))
}

// postMapRequest sends a MapRequest for the unmapped w to its
// redirecting parent p.
func (d *Display) postMapRequest(w, p *window) bool {
	if w.state != Unmapped || !d.redirected(w, p) {
		return false
	}
	d.enqueue(mapRequest(p.id, w))
	return true
}

// postConfigureRequest sends the changes requested for w to its
// redirecting parent p.
func (d *Display) postConfigureRequest(w, p *window, mask uint16, c WindowChanges) bool {
	if !d.redirected(w, p) {
		return false
	}
	d.enqueue(configureRequest(p.id, w, mask, c))
	return true
}

func (d *Display) postPropertyNotify(w *window, atom xproto.Atom, deleted bool) bool {
	if w.eventMask&xproto.EventMaskPropertyChange == 0 {
		return false
	}
	d.enqueue(propertyNotify(w.id, atom, d.now(), deleted))
	return true
}

func (d *Display) postColormapNotify(w *window, isNew bool) bool {
	if w.eventMask&xproto.EventMaskColorMapChange == 0 {
		return false
	}
	d.enqueue(colormapNotify(w.id, w.colormap, isNew))
	return true
}

// exposable reports whether w may receive Expose events.
func exposable(w *window) bool {
	return w.state == Mapped && !w.inputOnly && w.eventMask&xproto.EventMaskExposure != 0
}

// postExposeEvent reports damage rects, in w's coordinates, to w and
// then to each mapped InputOutput descendant they overlap, translated
// and clipped to the descendant. It reports whether any event was posted.
func (d *Display) postExposeEvent(w *window, rects []image.Rectangle) bool {
	posted := false
	if exposable(w) && len(rects) > 0 {
		for i, r := range rects {
			d.enqueue(expose(w.id, r, len(rects)-1-i))
		}
		posted = true
	}
	for _, c := range w.children {
		cw := d.window(c)
		if cw == nil || cw.state != Mapped || cw.inputOnly {
			continue
		}
		d.syncGeometry(cw)
		cb := image.Rect(0, 0, cw.width, cw.height)
		origin := image.Pt(cw.x, cw.y)
		var sub []image.Rectangle
		for _, r := range rects {
			if ir := r.Sub(origin).Intersect(cb); !ir.Empty() {
				sub = append(sub, ir)
			}
		}
		if len(sub) > 0 && d.postExposeEvent(cw, sub) {
			posted = true
		}
	}
	return posted
}
