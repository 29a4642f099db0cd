// Xdemo is a small client of the emulated X display.
//
// Usage:
//
//	xdemo [-t] [-v] [-g size]
//
// It opens a window with a colored box. Clicking the box changes its
// color; dragging elsewhere draws. Typing q or closing the window exits.
// The -t flag runs the display in the terminal instead of a window
// system. The -v flag logs the display's activity to standard error.
// The -g flag sets the root window size, as in 1024x768.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/gdamore/tcell/v2"

	"9fans.net/xemu/host"
	"9fans.net/xemu/host/shinyhost"
	"9fans.net/xemu/host/termhost"
	"9fans.net/xemu/xlib"
)

var (
	term    = flag.Bool("t", false, "run in the terminal")
	verbose = flag.Bool("v", false, "log display activity")
	size    = flag.String("g", "", "root window `size`")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: xdemo [-t] [-v] [-g size]\n")
	os.Exit(2)
}

func main() {
	log.SetPrefix("xdemo: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 0 {
		usage()
	}
	if *verbose {
		xlib.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if *term {
		ts, err := tcell.NewScreen()
		if err != nil {
			log.Fatal(err)
		}
		h, err := termhost.New(ts)
		if err != nil {
			log.Fatal(err)
		}
		err = run(h)
		h.Close()
		if err != nil {
			log.Fatal(err)
		}
		return
	}
	shinyhost.Main(func(h host.Screen) {
		if err := run(h); err != nil {
			log.Fatal(err)
		}
	})
}

var boxColors = []uint32{0x4060c0, 0x40a060, 0xc08030, 0x9040a0}

func run(h host.Screen) error {
	d, err := xlib.Open(h, &xlib.Options{Size: *size})
	if err != nil {
		return err
	}
	defer d.Close()
	d.SetErrorHandler(func(d *xlib.Display, e *xlib.Error) {
		log.Print(e)
	})

	root := d.DefaultRootWindow()
	w, err := d.CreateSimpleWindow(root, 0, 0, 320, 240, 0, d.WhitePixel())
	if err != nil {
		return err
	}
	d.SelectInput(w, xproto.EventMaskExposure|xproto.EventMaskKeyPress|
		xproto.EventMaskButtonPress|xproto.EventMaskButtonMotion|xproto.EventMaskStructureNotify)
	d.StoreName(w, "xdemo")
	protocols, err := d.InternAtom("WM_PROTOCOLS", false)
	if err != nil {
		return err
	}
	del, err := d.InternAtom("WM_DELETE_WINDOW", false)
	if err != nil {
		return err
	}
	d.SetWMProtocols(w, del)

	color := 0
	box, err := d.CreateSimpleWindow(w, 20, 20, 100, 60, 0, boxColors[color])
	if err != nil {
		return err
	}
	d.SelectInput(box, xproto.EventMaskButtonPress|xproto.EventMaskEnterWindow|xproto.EventMaskLeaveWindow)
	d.MapWindow(box)
	d.MapWindow(w)

	gc, err := d.CreateGC(xproto.Drawable(w), xproto.GcForeground|xproto.GcLineWidth,
		&xlib.GCValues{Foreground: 0xc04040, LineWidth: 2})
	if err != nil {
		return err
	}
	defer d.FreeGC(gc)

	var strokes [][]xproto.Point
	redraw := func() {
		for _, s := range strokes {
			if len(s) > 1 {
				d.DrawLines(xproto.Drawable(w), gc, s, xproto.CoordModeOrigin)
			}
		}
	}

	for {
		ev := d.NextEvent()
		switch e := ev.Body.(type) {
		case xproto.ExposeEvent:
			if e.Window == w && e.Count == 0 {
				redraw()
			}
		case xproto.KeyPressEvent:
			s, sym := d.LookupString(ev)
			if s == "q" {
				return nil
			}
			log.Printf("key %q keysym %#x", s, sym)
		case xproto.ButtonPressEvent:
			if e.Event == box {
				color = (color + 1) % len(boxColors)
				d.SetWindowBackground(box, boxColors[color])
				d.ClearWindow(box)
				break
			}
			strokes = append(strokes, []xproto.Point{{X: e.EventX, Y: e.EventY}})
		case xproto.MotionNotifyEvent:
			if len(strokes) == 0 || e.Event != w {
				break
			}
			s := &strokes[len(strokes)-1]
			*s = append(*s, xproto.Point{X: e.EventX, Y: e.EventY})
			d.DrawLines(xproto.Drawable(w), gc, (*s)[len(*s)-2:], xproto.CoordModeOrigin)
		case xproto.EnterNotifyEvent:
			if e.Event == box {
				d.StoreName(w, "xdemo: box")
			}
		case xproto.LeaveNotifyEvent:
			if e.Event == box {
				d.StoreName(w, "xdemo")
			}
		case xproto.ConfigureNotifyEvent:
			if e.Window == w {
				log.Printf("window is now %dx%d", e.Width, e.Height)
			}
		case xproto.ClientMessageEvent:
			if e.Type == protocols && xproto.Atom(e.Data.Data32[0]) == del {
				return nil
			}
		}
	}
}
