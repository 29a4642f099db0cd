package xlib

import (
	"errors"
	"reflect"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"golang.org/x/mobile/event/key"

	"9fans.net/xemu/host"
)

func TestSerialsIncrease(t *testing.T) {
	d, h := newTestDisplay(t)
	a := mustWindow(t, d, d.DefaultRootWindow(), 0, 0, 100, 100,
		xproto.EventMaskStructureNotify|xproto.EventMaskExposure)
	d.MapWindow(a)
	h.Post(d.window(a).host.ID(), key.Event{Code: key.CodeA, Direction: key.DirPress})
	d.SendEvent(a, false, 0, clientMessage(a, AtomString, 1))

	var types []int
	var last uint64
	for d.EventsQueued(QueuedAfterReading) > 0 {
		ev := d.NextEvent()
		if ev.Serial != last+1 {
			t.Errorf("serial %d after %d", ev.Serial, last)
		}
		if seq := reflect.ValueOf(ev.Body).FieldByName("Sequence").Uint(); seq != ev.Serial&0xffff {
			t.Errorf("sequence %d; want %d", seq, ev.Serial&0xffff)
		}
		last = ev.Serial
		types = append(types, ev.Type())
	}
	want := []int{xproto.MapNotify, xproto.Expose, xproto.ClientMessage, xproto.KeyPress}
	if !reflect.DeepEqual(types, want) {
		t.Errorf("event types = %v; want %v", types, want)
	}
}

func TestSendEventRoundTrip(t *testing.T) {
	d, _ := newTestDisplay(t)
	a := mustWindow(t, d, d.DefaultRootWindow(), 0, 0, 100, 100, 0)
	typ, _ := d.InternAtom("_XEMU_TEST", false)
	sent := clientMessage(a, typ, 1, 2, 3, 4, 5)

	if err := d.SendEvent(a, true, xproto.EventMaskNoEvent, sent); err != nil {
		t.Fatal(err)
	}
	if n := d.EventsQueued(QueuedAlready); n != 1 {
		t.Fatalf("EventsQueued = %d; want 1", n)
	}
	got := d.NextEvent()
	if !got.SendEvent {
		t.Errorf("SendEvent flag not set")
	}
	if got.Window != a {
		t.Errorf("window = %#x; want %#x", got.Window, a)
	}
	if sent.SendEvent || sent.Serial != 0 {
		t.Errorf("SendEvent modified its argument: %+v", sent)
	}
	if !reflect.DeepEqual(withSequence(got.Body, 0), sent.Body) {
		t.Errorf("body = %v; want %v", got.Body, sent.Body)
	}
}

func TestSendEventDestinations(t *testing.T) {
	d, _ := newTestDisplay(t)
	root := d.DefaultRootWindow()
	a := mustWindow(t, d, root, 0, 0, 100, 100, 0)
	d.MapWindow(a)
	d.SetInputFocus(a, xproto.InputFocusParent)
	drain(d)

	tests := []struct {
		dest xproto.Window
		want xproto.Window
	}{
		{InputFocus, a},
		{PointerWindow, root},
		{a, a},
	}
	for _, tt := range tests {
		ev := &Event{Body: xproto.ClientMessageEvent{Format: 32}}
		if err := d.SendEvent(tt.dest, false, 0, ev); err != nil {
			t.Fatal(err)
		}
		if got := d.NextEvent(); got.Window != tt.want {
			t.Errorf("SendEvent(%#x) went to %#x; want %#x", tt.dest, got.Window, tt.want)
		}
	}
	if err := d.SendEvent(0x4242, false, 0, &Event{Body: xproto.ClientMessageEvent{}}); !errors.Is(err, ErrBadMatch) {
		t.Errorf("SendEvent to a bad window = %v; want BadMatch", err)
	}
	if err := d.SendEvent(a, false, 0, &Event{}); !errors.Is(err, ErrBadValue) {
		t.Errorf("SendEvent without a body = %v; want BadValue", err)
	}
}

func TestPutBackEvent(t *testing.T) {
	d, _ := newTestDisplay(t)
	a := mustWindow(t, d, d.DefaultRootWindow(), 0, 0, 100, 100, xproto.EventMaskExposure)
	d.MapWindow(a)
	first := d.NextEvent()
	d.PutBackEvent(first)
	again := d.NextEvent()
	if again.Type() != first.Type() || again.Window != first.Window {
		t.Errorf("NextEvent after PutBackEvent = %v; want %v", again, first)
	}
	if again.Serial != first.Serial+1 {
		t.Errorf("serial = %d; want %d", again.Serial, first.Serial+1)
	}
	if n := d.EventsQueued(QueuedAfterReading); n != 0 {
		t.Errorf("EventsQueued = %d; want 0", n)
	}
}

func TestSyncDiscard(t *testing.T) {
	d, h := newTestDisplay(t)
	a := mustWindow(t, d, d.DefaultRootWindow(), 0, 0, 100, 100, xproto.EventMaskExposure)
	d.MapWindow(a)
	h.Post(d.window(a).host.ID(), key.Event{Code: key.CodeA, Direction: key.DirPress})
	h.Post(d.window(a).host.ID(), host.TextEvent{Text: "x"})
	d.Sync(false)
	if n := d.EventsQueued(QueuedAlready); n != 3 {
		t.Fatalf("EventsQueued = %d; want 3", n)
	}
	d.Sync(true)
	if n := d.EventsQueued(QueuedAfterReading); n != 0 {
		t.Errorf("EventsQueued after discard = %d; want 0", n)
	}
}

func TestHostEventsForUnknownWindowsDropped(t *testing.T) {
	d, h := newTestDisplay(t)
	h.Post(99, key.Event{Code: key.CodeA, Direction: key.DirPress})
	if n := d.EventsQueued(QueuedAfterReading); n != 0 {
		t.Errorf("EventsQueued = %d; want 0", n)
	}
}

func TestStashOverflowDropsEvent(t *testing.T) {
	d, _ := newTestDisplay(t)
	a := mustWindow(t, d, d.DefaultRootWindow(), 0, 0, 10, 10, 0)
	for i := range d.stashSize + 2 {
		d.stashEvent(clientMessage(a, AtomString, uint32(i)))
	}
	if len(d.stash) != d.stashSize {
		t.Errorf("stash holds %d events; want %d", len(d.stash), d.stashSize)
	}
	if n := d.EventsQueued(QueuedAlready); n != d.stashSize {
		t.Errorf("EventsQueued = %d; want %d", n, d.stashSize)
	}
	for i := range d.stashSize {
		b := d.NextEvent().Body.(xproto.ClientMessageEvent)
		if got := b.Data.Data32[0]; got != uint32(i) {
			t.Errorf("stashed event %d carries %d", i, got)
		}
	}
}

func TestStashBeforeQueue(t *testing.T) {
	d, _ := newTestDisplay(t)
	a := mustWindow(t, d, d.DefaultRootWindow(), 0, 0, 10, 10, 0)
	d.enqueue(clientMessage(a, AtomString, 1))
	d.stashEvent(clientMessage(a, AtomString, 2))
	if got := d.NextEvent().Body.(xproto.ClientMessageEvent).Data.Data32[0]; got != 2 {
		t.Errorf("first event carries %d; want the stashed 2", got)
	}
}

func TestNextEventFallbackExpose(t *testing.T) {
	d, h := newTestDisplay(t)
	a := mustWindow(t, d, d.DefaultRootWindow(), 0, 0, 100, 100, 0)
	b := mustWindow(t, d, d.DefaultRootWindow(), 0, 0, 100, 100, 0)
	d.MapWindow(b)
	// b does not select Exposure, so restoring it produces no X event.
	h.Post(d.window(b).host.ID(), host.RestoreEvent{})
	if n := d.EventsQueued(QueuedAfterReading); n != 1 {
		t.Fatalf("EventsQueued = %d; want 1", n)
	}
	ev := d.NextEvent()
	want := xproto.ExposeEvent{Window: a}
	if got := withSequence(ev.Body, 0); got != want {
		t.Errorf("NextEvent = %v; want %v", got, want)
	}
	if n := d.EventsQueued(QueuedAfterReading); n != 0 {
		t.Errorf("EventsQueued = %d; want 0", n)
	}
}

func TestFilterEvent(t *testing.T) {
	d, _ := newTestDisplay(t)
	if d.FilterEvent(&Event{}, d.DefaultRootWindow()) {
		t.Errorf("FilterEvent = true")
	}
}
