package xlib

import (
	"fmt"
	"image"
	"unicode/utf8"

	"github.com/BurntSushi/xgb/xproto"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"9fans.net/xemu/host"
)

// convertHostEvent translates a host event into the X event to deliver
// now. Additional events are stashed or queued. It returns nil if the
// host event has no X equivalent.
func (d *Display) convertHostEvent(he host.Event) *Event {
	top := d.firstTopLevel()
	if he.Window != 0 {
		// The window may have been destroyed since the event was accepted.
		w := d.window(d.hostIDs[he.Window])
		if w == nil {
			Logger().Debug("host event for destroyed window dropped", "host", he.Window, "event", fmt.Sprintf("%T", he.Body))
			return nil
		}
		top = w
	}
	if top == d.root {
		if _, ok := he.Body.(host.ResetEvent); !ok {
			Logger().Debug("host event without a top-level window", "event", fmt.Sprintf("%T", he.Body))
			return nil
		}
	}

	switch e := he.Body.(type) {
	case key.Event:
		return d.convertKey(top, e)
	case mouse.Event:
		return d.convertMouse(top, e)
	case size.Event:
		return d.convertSize(top, e)
	case lifecycle.Event:
		return d.convertLifecycle(top, e)
	case paint.Event:
		d.present(top)
		return nil
	case host.MoveEvent:
		d.syncGeometry(top)
		top.x, top.y = e.X, e.Y
		return configureNotify(top.id, top, d.siblingBelow(top))
	case host.CrossingEvent:
		return d.convertCrossing(top, e)
	case host.FocusEvent:
		return focusEvent(e.Gained, top.id, xproto.NotifyModeNormal)
	case host.TextEvent:
		return d.convertText(top, e.Text)
	case host.CloseEvent:
		return d.convertClose(top)
	case host.ResetEvent:
		d.onRenderTargetsInvalidated()
		f := d.firstTopLevel()
		return expose(f.id, image.Rect(0, 0, f.width, f.height), 0)
	case host.RestoreEvent:
		d.postExposeEvent(top, []image.Rectangle{image.Rect(0, 0, top.width, top.height)})
		return nil
	}
	Logger().Debug("host event ignored", "event", fmt.Sprintf("%T", he.Body))
	return nil
}

// pointerInfo returns the pointer state as seen from w.
func (d *Display) pointerInfo(w *window, mods uint16) pointerInfo {
	return pointerInfo{
		time:   d.now(),
		root:   d.root.id,
		event:  w.id,
		rootXY: d.pointerPos,
		xy:     d.pointerPos.Sub(d.absOrigin(w)),
		state:  mods | d.buttons,
	}
}

// keyTarget returns the window keyboard events in top go to: the focus
// window if it is viewable inside top, else top.
func (d *Display) keyTarget(top *window) *window {
	f := d.window(d.focus)
	if f != nil && (f == top || d.isAncestor(top, f)) && d.viewable(f) {
		return f
	}
	return top
}

func (d *Display) convertKey(top *window, e key.Event) *Event {
	code := keycode(e.Code)
	if code == 0 && e.Rune > 0 {
		d.lastText = string(e.Rune)
	}
	p := d.pointerInfo(d.keyTarget(top), modState(e.Modifiers))
	switch e.Direction {
	case key.DirPress:
		return keyEvent(true, code, p)
	case key.DirRelease:
		return keyEvent(false, code, p)
	}
	// A key typed without separate press and release.
	d.stashEvent(keyEvent(false, code, p))
	return keyEvent(true, code, p)
}

func (d *Display) convertText(top *window, text string) *Event {
	if text == "" {
		return nil
	}
	d.lastText = text
	p := d.pointerInfo(d.keyTarget(top), 0)
	var code xproto.Keycode
	if r, _ := utf8.DecodeLastRuneInString(text); r < 0x100 {
		code = xproto.Keycode(r)
	}
	d.stashEvent(keyEvent(false, code, p))
	return keyEvent(true, 0, p)
}

// convertMouse reports pointer activity over top. The first primary
// press in a window the pointer has not been reported entering is
// preceded by an EnterNotify for that window.
func (d *Display) convertMouse(top *window, e mouse.Event) *Event {
	xy := image.Pt(int(e.X), int(e.Y))
	d.pointerPos = d.absOrigin(top).Add(xy)
	hit := d.hitTest(top, xy, true)
	mods := modState(e.Modifiers)

	if e.Button < 0 {
		if e.Direction == mouse.DirRelease {
			return nil
		}
		b := wheelButton(e.Button)
		p := d.pointerInfo(hit, mods)
		d.stashEvent(buttonEvent(false, b, p))
		return buttonEvent(true, b, p)
	}
	if e.Button == mouse.ButtonNone || e.Direction == mouse.DirNone {
		return motionNotify(d.pointerInfo(hit, mods))
	}

	b := xproto.Button(e.Button)
	p := d.pointerInfo(hit, mods)
	switch e.Direction {
	case mouse.DirPress:
		d.buttons |= buttonMask(b)
		ev := buttonEvent(true, b, p)
		if b == xproto.ButtonIndex1 && hit.id != d.pointer {
			d.pointer = hit.id
			d.stashEvent(ev)
			return crossingEvent(true, p, d.focus == hit.id)
		}
		return ev
	case mouse.DirRelease:
		d.buttons &^= buttonMask(b)
		return buttonEvent(false, b, p)
	case mouse.DirStep:
		d.stashEvent(buttonEvent(false, b, p))
		return buttonEvent(true, b, p)
	}
	return nil
}

func (d *Display) convertCrossing(top *window, e host.CrossingEvent) *Event {
	d.pointerPos = d.absOrigin(top).Add(image.Pt(e.X, e.Y))
	if e.Entered {
		d.pointer = top.id
	} else if pw := d.window(d.pointer); pw != nil && (pw == top || d.isAncestor(top, pw)) {
		d.pointer = 0
	}
	return crossingEvent(e.Entered, d.pointerInfo(top, 0), d.focus == top.id)
}

func (d *Display) convertSize(top *window, e size.Event) *Event {
	d.syncGeometry(top)
	if e.WidthPx > 0 && e.HeightPx > 0 {
		top.width, top.height = e.WidthPx, e.HeightPx
	}
	d.resizeBuffer(top)
	d.postExposeEvent(top, []image.Rectangle{image.Rect(0, 0, top.width, top.height)})
	return configureNotify(top.id, top, d.siblingBelow(top))
}

// convertLifecycle reports visibility and focus changes of top.
// The dead stage is a close request.
func (d *Display) convertLifecycle(top *window, e lifecycle.Event) *Event {
	if e.To == lifecycle.StageDead {
		return d.convertClose(top)
	}
	var evs []*Event
	switch e.Crosses(lifecycle.StageVisible) {
	case lifecycle.CrossOn:
		evs = append(evs, mapNotify(top.id, top))
	case lifecycle.CrossOff:
		evs = append(evs, unmapNotify(top.id, top, false))
	}
	switch e.Crosses(lifecycle.StageFocused) {
	case lifecycle.CrossOn:
		evs = append(evs, focusEvent(true, top.id, xproto.NotifyModeNormal))
	case lifecycle.CrossOff:
		evs = append(evs, focusEvent(false, top.id, xproto.NotifyModeNormal))
	}
	if len(evs) == 0 {
		return nil
	}
	for _, ev := range evs[1:] {
		d.stashEvent(ev)
	}
	return evs[0]
}

// convertClose turns a close request into a WM_DELETE_WINDOW client
// message if w lists that protocol in WM_PROTOCOLS.
// Otherwise the request is ignored.
func (d *Display) convertClose(w *window) *Event {
	protocols, ok1 := d.atoms.lookup("WM_PROTOCOLS")
	del, ok2 := d.atoms.lookup("WM_DELETE_WINDOW")
	if ok1 && ok2 {
		if p := d.findProperty(w, protocols); p != nil && p.Type == AtomAtom && p.Format == 32 {
			for _, a := range p.Atoms() {
				if a == del {
					return clientMessage(w.id, protocols, uint32(del), uint32(d.now()))
				}
			}
		}
	}
	Logger().Debug("close request ignored: WM_DELETE_WINDOW not in WM_PROTOCOLS", "window", w.id)
	return nil
}

// modState converts host modifiers to an X state mask.
func modState(m key.Modifiers) uint16 {
	var s uint16
	if m&key.ModShift != 0 {
		s |= xproto.ModMaskShift
	}
	if m&key.ModControl != 0 {
		s |= xproto.ModMaskControl
	}
	if m&key.ModAlt != 0 {
		s |= xproto.ModMask1
	}
	if m&key.ModMeta != 0 {
		s |= xproto.ModMask4
	}
	return s
}

func buttonMask(b xproto.Button) uint16 {
	if b < 1 || b > 5 {
		return 0
	}
	return xproto.ButtonMask1 << (b - 1)
}

// wheelButton maps wheel directions to buttons 4 to 7.
func wheelButton(b mouse.Button) xproto.Button {
	switch b {
	case mouse.ButtonWheelUp:
		return 4
	case mouse.ButtonWheelDown:
		return 5
	case mouse.ButtonWheelLeft:
		return 6
	case mouse.ButtonWheelRight:
		return 7
	}
	return 0
}
