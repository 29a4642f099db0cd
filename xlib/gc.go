package xlib

import (
	"github.com/BurntSushi/xgb/xproto"

	"9fans.net/xemu/internal/xid"
)

// GCValues are graphics context settings. Which fields apply is
// selected by a mask of xproto.Gc* bits.
type GCValues struct {
	Foreground uint32
	Background uint32
	LineWidth  int
	FillStyle  byte // xproto.FillStyleSolid, ...
}

type gcontext struct {
	id xproto.Gcontext
	GCValues
}

func (d *Display) gc(id xproto.Gcontext) (*gcontext, error) {
	k, v, ok := d.res.Lookup(uint32(id))
	if !ok || k != xid.GC {
		return nil, d.fail(xproto.BadMatch, uint32(id))
	}
	return v.(*gcontext), nil
}

// CreateGC creates a graphics context for drawables like drawable.
// V may be nil.
func (d *Display) CreateGC(drawable xproto.Drawable, mask uint32, v *GCValues) (xproto.Gcontext, error) {
	d.request(opCreateGC)
	if !d.isDrawable(drawable) {
		return 0, d.fail(xproto.BadDrawable, uint32(drawable))
	}
	g := &gcontext{GCValues: GCValues{Foreground: 0, Background: 1}}
	if v != nil {
		if err := d.setGC(g, mask, v); err != nil {
			return 0, err
		}
	}
	id, err := d.res.Alloc(xid.GC, g)
	if err != nil {
		return 0, d.fail(xproto.BadAlloc, 0)
	}
	g.id = xproto.Gcontext(id)
	return g.id, nil
}

// ChangeGC sets the fields of gc selected by mask.
func (d *Display) ChangeGC(id xproto.Gcontext, mask uint32, v *GCValues) error {
	d.request(opChangeGC)
	g, err := d.gc(id)
	if err != nil {
		return err
	}
	return d.setGC(g, mask, v)
}

func (d *Display) setGC(g *gcontext, mask uint32, v *GCValues) error {
	if mask&xproto.GcLineWidth != 0 && v.LineWidth < 0 {
		return d.fail(xproto.BadValue, uint32(int32(v.LineWidth)))
	}
	if mask&xproto.GcFillStyle != 0 && v.FillStyle > xproto.FillStyleOpaqueStippled {
		return d.fail(xproto.BadValue, uint32(v.FillStyle))
	}
	if mask&xproto.GcForeground != 0 {
		g.Foreground = v.Foreground
	}
	if mask&xproto.GcBackground != 0 {
		g.Background = v.Background
	}
	if mask&xproto.GcLineWidth != 0 {
		g.LineWidth = v.LineWidth
	}
	if mask&xproto.GcFillStyle != 0 {
		g.FillStyle = v.FillStyle
	}
	return nil
}

// SetForeground sets the foreground pixel of gc.
func (d *Display) SetForeground(id xproto.Gcontext, pixel uint32) error {
	return d.ChangeGC(id, xproto.GcForeground, &GCValues{Foreground: pixel})
}

// SetBackground sets the background pixel of gc.
func (d *Display) SetBackground(id xproto.Gcontext, pixel uint32) error {
	return d.ChangeGC(id, xproto.GcBackground, &GCValues{Background: pixel})
}

// FreeGC frees gc.
func (d *Display) FreeGC(id xproto.Gcontext) error {
	d.request(opFreeGC)
	if _, err := d.gc(id); err != nil {
		return err
	}
	d.res.Free(uint32(id))
	return nil
}
