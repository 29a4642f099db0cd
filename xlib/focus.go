package xlib

import (
	"github.com/BurntSushi/xgb/xproto"
)

// PointerRoot as the focus sends keyboard input to the top-level
// window under the pointer.
const PointerRoot xproto.Window = 1

// SetInputFocus sets the keyboard focus to w, which may also be 0 (no
// focus) or PointerRoot. RevertTo (xproto.InputFocusNone,
// InputFocusPointerRoot or InputFocusParent) says where focus goes if
// w becomes unviewable.
func (d *Display) SetInputFocus(w xproto.Window, revertTo byte) error {
	d.request(opSetInputFocus)
	if revertTo > xproto.InputFocusParent {
		return d.fail(xproto.BadValue, uint32(revertTo))
	}
	if w != 0 && w != PointerRoot {
		fw, err := d.lookupWindow(w)
		if err != nil {
			return err
		}
		if !d.viewable(fw) {
			return d.fail(xproto.BadMatch, uint32(w))
		}
	}
	d.revertTo = revertTo
	d.setFocus(w)
	return nil
}

// GetInputFocus returns the focus window and its revert mode.
func (d *Display) GetInputFocus() (xproto.Window, byte) {
	return d.focus, d.revertTo
}

func (d *Display) setFocus(f xproto.Window) {
	if f == d.focus {
		return
	}
	if old := d.window(d.focus); old != nil && old.eventMask&xproto.EventMaskFocusChange != 0 {
		d.enqueue(focusEvent(false, old.id, xproto.NotifyModeNormal))
	}
	d.focus = f
	if nw := d.window(f); nw != nil && nw.eventMask&xproto.EventMaskFocusChange != 0 {
		d.enqueue(focusEvent(true, nw.id, xproto.NotifyModeNormal))
	}
}

// revertFocus moves the focus away from w, which is going away.
func (d *Display) revertFocus(w *window) {
	switch d.revertTo {
	case xproto.InputFocusParent:
		p := d.parentOf(w)
		for p != nil && !d.viewable(p) {
			p = d.parentOf(p)
		}
		if p == nil {
			p = d.root
		}
		d.setFocus(p.id)
	case xproto.InputFocusPointerRoot:
		d.setFocus(PointerRoot)
	default:
		d.setFocus(0)
	}
}
