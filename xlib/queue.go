package xlib

import (
	"image"

	"github.com/BurntSushi/xgb/xproto"

	"9fans.net/xemu/host"
)

// Modes for EventsQueued.
const (
	QueuedAlready      = 0 // count events already known
	QueuedAfterReading = 1 // read pending host events first
	QueuedAfterFlush   = 2 // same as QueuedAfterReading
)

// Special destinations for SendEvent.
const (
	PointerWindow xproto.Window = 0 // window containing the pointer
	InputFocus    xproto.Window = 1 // focus window
)

// acceptHostEvent is the host queue filter. It runs on the display
// goroutine as host events are read, and counts every accepted event
// as ready.
func (d *Display) acceptHostEvent(e host.Event) bool {
	if e.Window != 0 {
		if _, ok := d.hostIDs[e.Window]; !ok {
			Logger().Debug("host event for unknown window dropped", "host", e.Window)
			return false
		}
	}
	d.ready.inc()
	return true
}

// stashEvent holds ev for delivery before anything else on a later
// NextEvent call.
func (d *Display) stashEvent(ev *Event) {
	if len(d.stash) >= d.stashSize {
		Logger().Warn("follow-up event dropped: stash full", "event", ev.Body)
		return
	}
	d.stash = append(d.stash, ev)
	d.ready.inc()
}

func (d *Display) deliver(ev *Event) *Event {
	d.serial++
	ev.Serial = d.serial
	ev.Body = withSequence(ev.Body, uint16(d.serial))
	d.ready.dec()
	Logger().Debug("event delivered", "serial", ev.Serial, "window", ev.Window, "event", ev.Body)
	return ev
}

// fallbackExpose is delivered when no real event is available but one
// must be returned: an Expose with an empty rectangle for the first
// top-level window.
func (d *Display) fallbackExpose() *Event {
	return expose(d.firstTopLevel().id, image.Rectangle{}, 0)
}

// NextEvent returns the next event, blocking until one is available.
//
// Follow-up events produced by earlier conversions come first, then
// events queued by requests, then events read from the host. A host
// event with no X equivalent, or a host notification that produced its
// events in the queue rather than directly, is reported as an empty
// Expose for the first top-level window, so that NextEvent always
// returns after reading one host event.
func (d *Display) NextEvent() *Event {
	if len(d.stash) > 0 {
		ev := d.stash[0]
		d.stash = d.stash[1:]
		return d.deliver(ev)
	}
	if len(d.queue) > 0 {
		ev := d.queue[0]
		d.queue[0] = nil
		d.queue = d.queue[1:]
		return d.deliver(ev)
	}
	if d.ready.count() > 0 && d.hostq.Pending(false) == 0 {
		Logger().Warn("ready count out of step with host queue", "ready", d.ready.count())
		return d.deliver(d.fallbackExpose())
	}
	ev := d.convertHostEvent(d.hostq.Wait())
	if ev == nil {
		ev = d.fallbackExpose()
	}
	return d.deliver(ev)
}

// EventsQueued returns the number of events that NextEvent can return
// without blocking. Unless mode is QueuedAlready and events are
// already known, pending host events are read first.
func (d *Display) EventsQueued(mode int) int {
	if mode != QueuedAlready || d.ready.count() == 0 {
		d.hostq.Pending(true)
	}
	return d.ready.count()
}

// Pending is EventsQueued(QueuedAfterFlush).
func (d *Display) Pending() int {
	return d.EventsQueued(QueuedAfterFlush)
}

// Flush does nothing: requests take effect immediately.
func (d *Display) Flush() {}

// Sync reads pending host events. If discard is set, every event not
// yet delivered is dropped.
func (d *Display) Sync(discard bool) {
	d.hostq.Pending(true)
	if !discard {
		return
	}
	for range len(d.stash) + len(d.queue) {
		d.ready.dec()
	}
	d.stash = nil
	d.queue = nil
	for d.hostq.Pending(false) > 0 {
		d.hostq.Wait()
		d.ready.dec()
	}
}

// PutBackEvent pushes ev back so the next NextEvent returns it again.
func (d *Display) PutBackEvent(ev *Event) {
	cp := *ev
	d.queue = append([]*Event{&cp}, d.queue...)
	d.ready.inc()
}

// SendEvent queues a copy of ev, marked as sent, for dest. Dest may be
// PointerWindow or InputFocus. Every window belongs to the one client,
// so propagate and mask do not change where the event goes.
func (d *Display) SendEvent(dest xproto.Window, propagate bool, mask uint32, ev *Event) error {
	d.request(opSendEvent)
	switch dest {
	case PointerWindow:
		dest = d.pointer
		if d.window(dest) == nil {
			dest = d.root.id
		}
	case InputFocus:
		dest = d.focus
		if d.window(dest) == nil {
			dest = d.root.id
		}
	}
	if _, err := d.lookupWindow(dest); err != nil {
		return err
	}
	if ev == nil || ev.Body == nil {
		return d.fail(xproto.BadValue, 0)
	}
	cp := *ev
	cp.SendEvent = true
	cp.Serial = 0
	if cp.Window == 0 {
		cp.Window = dest
	}
	d.enqueue(&cp)
	return nil
}

// FilterEvent gives an input method the chance to consume ev.
// There is no input method, so it always returns false.
func (d *Display) FilterEvent(ev *Event, w xproto.Window) bool {
	return false
}

// ConnectionNumber returns a file descriptor that is readable while
// events are ready, or -1 where that is not supported.
func (d *Display) ConnectionNumber() int {
	return d.ready.fd()
}
