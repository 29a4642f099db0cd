package xlib

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// An Event is a delivered X event.
//
// Body is one of the xproto event structures, for example
// xproto.ExposeEvent or xproto.KeyReleaseEvent. Its Sequence field is
// the low 16 bits of Serial.
type Event struct {
	Serial    uint64
	SendEvent bool          // sent with SendEvent
	Window    xproto.Window // window the event was reported to
	Body      xgb.Event
}

func (e *Event) String() string {
	s := fmt.Sprintf("#%d %v", e.Serial, e.Body)
	if e.SendEvent {
		s += " (sent)"
	}
	return s
}

// Type returns the X event code of e, such as xproto.Expose.
func (e *Event) Type() int {
	switch e.Body.(type) {
	case xproto.KeyPressEvent:
		return xproto.KeyPress
	case xproto.KeyReleaseEvent:
		return xproto.KeyRelease
	case xproto.ButtonPressEvent:
		return xproto.ButtonPress
	case xproto.ButtonReleaseEvent:
		return xproto.ButtonRelease
	case xproto.MotionNotifyEvent:
		return xproto.MotionNotify
	case xproto.EnterNotifyEvent:
		return xproto.EnterNotify
	case xproto.LeaveNotifyEvent:
		return xproto.LeaveNotify
	case xproto.FocusInEvent:
		return xproto.FocusIn
	case xproto.FocusOutEvent:
		return xproto.FocusOut
	case xproto.ExposeEvent:
		return xproto.Expose
	case xproto.CreateNotifyEvent:
		return xproto.CreateNotify
	case xproto.DestroyNotifyEvent:
		return xproto.DestroyNotify
	case xproto.UnmapNotifyEvent:
		return xproto.UnmapNotify
	case xproto.MapNotifyEvent:
		return xproto.MapNotify
	case xproto.MapRequestEvent:
		return xproto.MapRequest
	case xproto.ReparentNotifyEvent:
		return xproto.ReparentNotify
	case xproto.ConfigureNotifyEvent:
		return xproto.ConfigureNotify
	case xproto.ConfigureRequestEvent:
		return xproto.ConfigureRequest
	case xproto.GravityNotifyEvent:
		return xproto.GravityNotify
	case xproto.PropertyNotifyEvent:
		return xproto.PropertyNotify
	case xproto.SelectionClearEvent:
		return xproto.SelectionClear
	case xproto.SelectionRequestEvent:
		return xproto.SelectionRequest
	case xproto.SelectionNotifyEvent:
		return xproto.SelectionNotify
	case xproto.ColormapNotifyEvent:
		return xproto.ColormapNotify
	case xproto.ClientMessageEvent:
		return xproto.ClientMessage
	case xproto.MappingNotifyEvent:
		return xproto.MappingNotify
	}
	return 0
}

// withSequence returns body with its Sequence field set to seq.
func withSequence(body xgb.Event, seq uint16) xgb.Event {
	switch b := body.(type) {
	case xproto.KeyPressEvent:
		b.Sequence = seq
		return b
	case xproto.KeyReleaseEvent:
		b.Sequence = seq
		return b
	case xproto.ButtonPressEvent:
		b.Sequence = seq
		return b
	case xproto.ButtonReleaseEvent:
		b.Sequence = seq
		return b
	case xproto.MotionNotifyEvent:
		b.Sequence = seq
		return b
	case xproto.EnterNotifyEvent:
		b.Sequence = seq
		return b
	case xproto.LeaveNotifyEvent:
		b.Sequence = seq
		return b
	case xproto.FocusInEvent:
		b.Sequence = seq
		return b
	case xproto.FocusOutEvent:
		b.Sequence = seq
		return b
	case xproto.ExposeEvent:
		b.Sequence = seq
		return b
	case xproto.CreateNotifyEvent:
		b.Sequence = seq
		return b
	case xproto.DestroyNotifyEvent:
		b.Sequence = seq
		return b
	case xproto.UnmapNotifyEvent:
		b.Sequence = seq
		return b
	case xproto.MapNotifyEvent:
		b.Sequence = seq
		return b
	case xproto.MapRequestEvent:
		b.Sequence = seq
		return b
	case xproto.ReparentNotifyEvent:
		b.Sequence = seq
		return b
	case xproto.ConfigureNotifyEvent:
		b.Sequence = seq
		return b
	case xproto.ConfigureRequestEvent:
		b.Sequence = seq
		return b
	case xproto.GravityNotifyEvent:
		b.Sequence = seq
		return b
	case xproto.PropertyNotifyEvent:
		b.Sequence = seq
		return b
	case xproto.SelectionClearEvent:
		b.Sequence = seq
		return b
	case xproto.SelectionRequestEvent:
		b.Sequence = seq
		return b
	case xproto.SelectionNotifyEvent:
		b.Sequence = seq
		return b
	case xproto.ColormapNotifyEvent:
		b.Sequence = seq
		return b
	case xproto.ClientMessageEvent:
		b.Sequence = seq
		return b
	case xproto.MappingNotifyEvent:
		b.Sequence = seq
		return b
	}
	return body
}

func newEvent(to xproto.Window, body xgb.Event) *Event {
	return &Event{Window: to, Body: body}
}

// Structure events. The to argument is the window the event is
// reported to: the window itself or its parent.

func createNotify(to xproto.Window, w *window) *Event {
	return newEvent(to, xproto.CreateNotifyEvent{
		Parent:           w.parent,
		Window:           w.id,
		X:                int16(w.x),
		Y:                int16(w.y),
		Width:            uint16(w.width),
		Height:           uint16(w.height),
		BorderWidth:      uint16(w.border),
		OverrideRedirect: w.overrideRedirect,
	})
}

func destroyNotify(to xproto.Window, w *window) *Event {
	return newEvent(to, xproto.DestroyNotifyEvent{Event: to, Window: w.id})
}

func mapNotify(to xproto.Window, w *window) *Event {
	return newEvent(to, xproto.MapNotifyEvent{Event: to, Window: w.id, OverrideRedirect: w.overrideRedirect})
}

func unmapNotify(to xproto.Window, w *window, fromConfigure bool) *Event {
	return newEvent(to, xproto.UnmapNotifyEvent{Event: to, Window: w.id, FromConfigure: fromConfigure})
}

func mapRequest(to xproto.Window, w *window) *Event {
	return newEvent(to, xproto.MapRequestEvent{Parent: to, Window: w.id})
}

func reparentNotify(to xproto.Window, w *window) *Event {
	return newEvent(to, xproto.ReparentNotifyEvent{
		Event:            to,
		Window:           w.id,
		Parent:           w.parent,
		X:                int16(w.x),
		Y:                int16(w.y),
		OverrideRedirect: w.overrideRedirect,
	})
}

func configureNotify(to xproto.Window, w *window, above xproto.Window) *Event {
	return newEvent(to, xproto.ConfigureNotifyEvent{
		Event:            to,
		Window:           w.id,
		AboveSibling:     above,
		X:                int16(w.x),
		Y:                int16(w.y),
		Width:            uint16(w.width),
		Height:           uint16(w.height),
		BorderWidth:      uint16(w.border),
		OverrideRedirect: w.overrideRedirect,
	})
}

func configureRequest(to xproto.Window, w *window, mask uint16, c WindowChanges) *Event {
	ev := xproto.ConfigureRequestEvent{
		StackMode:   xproto.StackModeAbove,
		Parent:      to,
		Window:      w.id,
		X:           int16(w.x),
		Y:           int16(w.y),
		Width:       uint16(w.width),
		Height:      uint16(w.height),
		BorderWidth: uint16(w.border),
		ValueMask:   mask,
	}
	if mask&xproto.ConfigWindowX != 0 {
		ev.X = int16(c.X)
	}
	if mask&xproto.ConfigWindowY != 0 {
		ev.Y = int16(c.Y)
	}
	if mask&xproto.ConfigWindowWidth != 0 {
		ev.Width = uint16(c.Width)
	}
	if mask&xproto.ConfigWindowHeight != 0 {
		ev.Height = uint16(c.Height)
	}
	if mask&xproto.ConfigWindowBorderWidth != 0 {
		ev.BorderWidth = uint16(c.BorderWidth)
	}
	if mask&xproto.ConfigWindowSibling != 0 {
		ev.Sibling = c.Sibling
	}
	if mask&xproto.ConfigWindowStackMode != 0 {
		ev.StackMode = c.StackMode
	}
	return newEvent(to, ev)
}

func expose(w xproto.Window, r image.Rectangle, count int) *Event {
	return newEvent(w, xproto.ExposeEvent{
		Window: w,
		X:      uint16(r.Min.X),
		Y:      uint16(r.Min.Y),
		Width:  uint16(r.Dx()),
		Height: uint16(r.Dy()),
		Count:  uint16(count),
	})
}

// Messaging events.

func clientMessage(w xproto.Window, typ xproto.Atom, data ...uint32) *Event {
	d := make([]uint32, 5)
	copy(d, data)
	return newEvent(w, xproto.ClientMessageEvent{
		Format: 32,
		Window: w,
		Type:   typ,
		Data:   xproto.ClientMessageDataUnionData32New(d),
	})
}

func propertyNotify(w xproto.Window, atom xproto.Atom, t xproto.Timestamp, deleted bool) *Event {
	state := byte(xproto.PropertyNewValue)
	if deleted {
		state = xproto.PropertyDelete
	}
	return newEvent(w, xproto.PropertyNotifyEvent{Window: w, Atom: atom, Time: t, State: state})
}

func colormapNotify(w xproto.Window, cmap xproto.Colormap, isNew bool) *Event {
	return newEvent(w, xproto.ColormapNotifyEvent{Window: w, Colormap: cmap, New: isNew, State: xproto.ColormapStateInstalled})
}

// Input events. Paired kinds share one constructor; the release,
// leave and focus-out forms are the xproto conversions of the press,
// enter and focus-in structures.

// pointerInfo is the pointer state reported by input events.
type pointerInfo struct {
	time   xproto.Timestamp
	root   xproto.Window
	event  xproto.Window
	child  xproto.Window
	rootXY image.Point
	xy     image.Point // relative to event
	state  uint16
}

func keyEvent(press bool, code xproto.Keycode, p pointerInfo) *Event {
	ev := xproto.KeyPressEvent{
		Detail:     code,
		Time:       p.time,
		Root:       p.root,
		Event:      p.event,
		Child:      p.child,
		RootX:      int16(p.rootXY.X),
		RootY:      int16(p.rootXY.Y),
		EventX:     int16(p.xy.X),
		EventY:     int16(p.xy.Y),
		State:      p.state,
		SameScreen: true,
	}
	if press {
		return newEvent(p.event, ev)
	}
	return newEvent(p.event, xproto.KeyReleaseEvent(ev))
}

func buttonEvent(press bool, button xproto.Button, p pointerInfo) *Event {
	ev := xproto.ButtonPressEvent{
		Detail:     button,
		Time:       p.time,
		Root:       p.root,
		Event:      p.event,
		Child:      p.child,
		RootX:      int16(p.rootXY.X),
		RootY:      int16(p.rootXY.Y),
		EventX:     int16(p.xy.X),
		EventY:     int16(p.xy.Y),
		State:      p.state,
		SameScreen: true,
	}
	if press {
		return newEvent(p.event, ev)
	}
	return newEvent(p.event, xproto.ButtonReleaseEvent(ev))
}

func motionNotify(p pointerInfo) *Event {
	return newEvent(p.event, xproto.MotionNotifyEvent{
		Detail:     xproto.MotionNormal,
		Time:       p.time,
		Root:       p.root,
		Event:      p.event,
		Child:      p.child,
		RootX:      int16(p.rootXY.X),
		RootY:      int16(p.rootXY.Y),
		EventX:     int16(p.xy.X),
		EventY:     int16(p.xy.Y),
		State:      p.state,
		SameScreen: true,
	})
}

func crossingEvent(enter bool, p pointerInfo, focus bool) *Event {
	flags := byte(2) // same screen
	if focus {
		flags |= 1
	}
	ev := xproto.EnterNotifyEvent{
		Detail:          xproto.NotifyDetailAncestor,
		Time:            p.time,
		Root:            p.root,
		Event:           p.event,
		Child:           p.child,
		RootX:           int16(p.rootXY.X),
		RootY:           int16(p.rootXY.Y),
		EventX:          int16(p.xy.X),
		EventY:          int16(p.xy.Y),
		State:           p.state,
		Mode:            xproto.NotifyModeNormal,
		SameScreenFocus: flags,
	}
	if enter {
		return newEvent(p.event, ev)
	}
	return newEvent(p.event, xproto.LeaveNotifyEvent(ev))
}

func focusEvent(in bool, w xproto.Window, mode byte) *Event {
	ev := xproto.FocusInEvent{Detail: xproto.NotifyDetailNonlinear, Event: w, Mode: mode}
	if in {
		return newEvent(w, ev)
	}
	return newEvent(w, xproto.FocusOutEvent(ev))
}

func selectionClear(owner xproto.Window, sel xproto.Atom, t xproto.Timestamp) *Event {
	return newEvent(owner, xproto.SelectionClearEvent{Time: t, Owner: owner, Selection: sel})
}

func selectionRequest(owner, requestor xproto.Window, sel, target, prop xproto.Atom, t xproto.Timestamp) *Event {
	return newEvent(owner, xproto.SelectionRequestEvent{
		Time:      t,
		Owner:     owner,
		Requestor: requestor,
		Selection: sel,
		Target:    target,
		Property:  prop,
	})
}

func selectionNotify(requestor xproto.Window, sel, target, prop xproto.Atom, t xproto.Timestamp) *Event {
	return newEvent(requestor, xproto.SelectionNotifyEvent{
		Time:      t,
		Requestor: requestor,
		Selection: sel,
		Target:    target,
		Property:  prop,
	})
}
