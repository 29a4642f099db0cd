// Package xlib emulates an X11 display in process.
//
// A Display keeps the X window tree, the resources clients create and an
// event queue, and renders through a host window system (see package
// host). Only top-level X windows become host windows; their subwindows
// are composited into the top-level's host buffer. Events are the
// structures of github.com/BurntSushi/xgb/xproto, so code written
// against the X protocol can be ported with few changes.
//
// A Display is not safe for concurrent use. The goroutine that calls
// Open must make all calls, and NextEvent is the only call that blocks.
package xlib

import (
	"fmt"
	"image"
	"time"

	"github.com/BurntSushi/xgb/xproto"

	"9fans.net/xemu/host"
	"9fans.net/xemu/internal/xid"
)

// Depth is the depth of every window and of the root visual.
const Depth = 24

// A Display is an emulated X display.
type Display struct {
	name    string
	host    host.Screen
	hostq   *host.Queue
	res     *xid.Table
	root    *window
	hostIDs map[uint32]xproto.Window // host window ID -> top-level window
	atoms   *atomTable
	cmap    xproto.Colormap // default colormap
	start   time.Time

	focus      xproto.Window
	revertTo   byte
	pointer    xproto.Window // window last sent EnterNotify
	pointerPos image.Point   // root coordinates
	buttons    uint16        // held buttons as a state mask
	lastText   string        // last committed input text
	selections map[xproto.Atom]*selection

	opcode       Opcode
	serial       uint64
	ready        *readiness
	stash        []*Event
	stashSize    int
	queue        []*Event
	errorHandler ErrorHandler
	closed       bool
}

// Open returns a new display rendering on h.
// Opts may be nil.
func Open(h host.Screen, opts *Options) (*Display, error) {
	if opts == nil {
		opts = new(Options)
	}
	size, err := opts.rootSize(h.Size())
	if err != nil {
		return nil, fmt.Errorf("xlib: %v", err)
	}
	d := &Display{
		name:         opts.Name,
		host:         h,
		hostq:        h.Events(),
		res:          xid.New(opts.MaxResources),
		hostIDs:      make(map[uint32]xproto.Window),
		atoms:        newAtomTable(),
		selections:   make(map[xproto.Atom]*selection),
		stashSize:    opts.StashSize,
		errorHandler: logError,
		start:        time.Now(),
	}
	if d.name == "" {
		d.name = ":0"
	}
	if d.stashSize <= 0 {
		d.stashSize = defaultStashSize
	}
	d.ready, err = newReadiness()
	if err != nil {
		return nil, fmt.Errorf("xlib: %v", err)
	}

	cm := &colormap{visual: TrueColor}
	id, err := d.res.Alloc(xid.Colormap, cm)
	if err != nil {
		d.ready.close()
		return nil, fmt.Errorf("xlib: default colormap: %v", err)
	}
	cm.id = xproto.Colormap(id)
	d.cmap = cm.id

	root := &window{
		width:    size.X,
		height:   size.Y,
		depth:    Depth,
		state:    Mapped,
		colormap: d.cmap,
	}
	id, err = d.res.Alloc(xid.Window, root)
	if err != nil {
		d.ready.close()
		return nil, fmt.Errorf("xlib: root window: %v", err)
	}
	root.id = xproto.Window(id)
	d.root = root
	d.focus = root.id

	d.hostq.SetFilter(d.acceptHostEvent)
	Logger().Debug("display opened", "display", d.name, "width", size.X, "height", size.Y)
	return d, nil
}

// Close releases every host window and buffer held by the display.
// The host itself stays open.
func (d *Display) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.release(d.root)
	d.hostq.SetFilter(nil)
	d.ready.close()
	d.stash = nil
	d.queue = nil
	return nil
}

func (d *Display) release(w *window) {
	for _, c := range w.children {
		if cw := d.window(c); cw != nil {
			d.release(cw)
		}
	}
	d.releaseSurfaces(w)
}

// DisplayString returns the display name.
func (d *Display) DisplayString() string { return d.name }

// DefaultRootWindow returns the root window.
func (d *Display) DefaultRootWindow() xproto.Window { return d.root.id }

// DisplayWidth returns the root window width.
func (d *Display) DisplayWidth() int { return d.root.width }

// DisplayHeight returns the root window height.
func (d *Display) DisplayHeight() int { return d.root.height }

// DefaultColormap returns the colormap created with the display.
func (d *Display) DefaultColormap() xproto.Colormap { return d.cmap }

// DefaultDepth returns the depth of the root window.
func (d *Display) DefaultDepth() int { return Depth }

// BlackPixel and WhitePixel return the pixel values of black and white.
func (d *Display) BlackPixel() uint32 { return 0x000000 }
func (d *Display) WhitePixel() uint32 { return 0xffffff }

// request records the opcode reported with protocol errors.
func (d *Display) request(op Opcode) {
	d.opcode = op
}

// now returns the server time in milliseconds.
func (d *Display) now() xproto.Timestamp {
	return xproto.Timestamp(time.Since(d.start) / time.Millisecond)
}
