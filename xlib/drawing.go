package xlib

import (
	"image"
	"math"

	"github.com/BurntSushi/xgb/xproto"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"9fans.net/xemu/internal/xid"
)

// drawTarget resolves a drawable for drawing.
func (d *Display) drawTarget(id xproto.Drawable) (target, error) {
	switch k, v, _ := d.res.Lookup(uint32(id)); k {
	case xid.Window:
		w := v.(*window)
		if w.inputOnly {
			return target{}, d.fail(xproto.BadMatch, uint32(id))
		}
		return d.resolveRenderTarget(w)
	case xid.Pixmap:
		p := v.(*pixmap)
		return target{buf: p.buf, vp: p.buf.Bounds()}, nil
	}
	return target{}, d.fail(xproto.BadDrawable, uint32(id))
}

// prepare resolves the drawable and gc arguments of a drawing request.
func (d *Display) prepare(op Opcode, id xproto.Drawable, gcid xproto.Gcontext) (target, *gcontext, error) {
	d.request(op)
	t, err := d.drawTarget(id)
	if err != nil {
		return target{}, nil, err
	}
	g, err := d.gc(gcid)
	if err != nil {
		return target{}, nil, err
	}
	return t, g, nil
}

// fill returns the source for filling with g, or nil if g's fill style
// is not supported.
func fill(g *gcontext) image.Image {
	switch g.FillStyle {
	case xproto.FillStyleSolid:
		return image.NewUniform(pixel(g.Foreground))
	case xproto.FillStyleOpaqueStippled:
		return image.NewUniform(pixel(g.Background))
	}
	Logger().Warn("unsupported fill style", "style", g.FillStyle)
	return nil
}

// FillRectangle fills a rectangle with the gc's foreground.
func (d *Display) FillRectangle(drawable xproto.Drawable, gc xproto.Gcontext, x, y, width, height int) error {
	return d.FillRectangles(drawable, gc, []xproto.Rectangle{{X: int16(x), Y: int16(y), Width: uint16(width), Height: uint16(height)}})
}

// FillRectangles fills rects.
func (d *Display) FillRectangles(drawable xproto.Drawable, gc xproto.Gcontext, rects []xproto.Rectangle) error {
	t, g, err := d.prepare(opPolyFillRectangle, drawable, gc)
	if err != nil {
		return err
	}
	if len(rects) == 0 {
		return d.fail(xproto.BadValue, 0)
	}
	src := fill(g)
	if src == nil {
		return nil
	}
	dst := t.image()
	for _, r := range rects {
		draw.Draw(dst, xrect(r).Add(t.vp.Min), src, image.Point{}, draw.Src)
	}
	d.present(t.owner)
	return nil
}

func xrect(r xproto.Rectangle) image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.X)+int(r.Width), int(r.Y)+int(r.Height))
}

// DrawRectangle outlines a rectangle. The outline covers
// width+1 by height+1 pixels.
func (d *Display) DrawRectangle(drawable xproto.Drawable, gc xproto.Gcontext, x, y, width, height int) error {
	return d.DrawRectangles(drawable, gc, []xproto.Rectangle{{X: int16(x), Y: int16(y), Width: uint16(width), Height: uint16(height)}})
}

// DrawRectangles outlines rects.
func (d *Display) DrawRectangles(drawable xproto.Drawable, gc xproto.Gcontext, rects []xproto.Rectangle) error {
	t, g, err := d.prepare(opPolyRectangle, drawable, gc)
	if err != nil {
		return err
	}
	if len(rects) == 0 {
		return d.fail(xproto.BadValue, 0)
	}
	src := image.NewUniform(pixel(g.Foreground))
	lw := max(g.LineWidth, 1)
	dst := t.image()
	for _, xr := range rects {
		r := xrect(xr).Add(t.vp.Min)
		r.Max = r.Max.Add(image.Pt(1, 1))
		for _, e := range []image.Rectangle{
			{r.Min, image.Pt(r.Max.X, r.Min.Y+lw)},
			{image.Pt(r.Min.X, r.Max.Y-lw), r.Max},
			{r.Min, image.Pt(r.Min.X+lw, r.Max.Y)},
			{image.Pt(r.Max.X-lw, r.Min.Y), r.Max},
		} {
			draw.Draw(dst, e.Intersect(r), src, image.Point{}, draw.Src)
		}
	}
	d.present(t.owner)
	return nil
}

// DrawPoint sets one pixel to the gc's foreground.
func (d *Display) DrawPoint(drawable xproto.Drawable, gc xproto.Gcontext, x, y int) error {
	t, g, err := d.prepare(opPolyPoint, drawable, gc)
	if err != nil {
		return err
	}
	p := t.pt(image.Pt(x, y))
	dst := t.image()
	if p.In(dst.Bounds()) {
		dst.SetRGBA(p.X, p.Y, pixel(g.Foreground))
	}
	d.present(t.owner)
	return nil
}

// DrawLine draws a line between two points.
func (d *Display) DrawLine(drawable xproto.Drawable, gc xproto.Gcontext, x1, y1, x2, y2 int) error {
	return d.DrawLines(drawable, gc, []xproto.Point{{X: int16(x1), Y: int16(y1)}, {X: int16(x2), Y: int16(y2)}}, xproto.CoordModeOrigin)
}

// DrawLines draws a polyline through pts. With xproto.CoordModePrevious
// every point after the first is relative to the one before it.
func (d *Display) DrawLines(drawable xproto.Drawable, gc xproto.Gcontext, pts []xproto.Point, mode byte) error {
	t, g, err := d.prepare(opPolyLine, drawable, gc)
	if err != nil {
		return err
	}
	if len(pts) < 2 {
		return d.fail(xproto.BadValue, uint32(len(pts)))
	}
	if mode != xproto.CoordModeOrigin && mode != xproto.CoordModePrevious {
		return d.fail(xproto.BadValue, uint32(mode))
	}
	dst := t.image()
	b := dst.Bounds()
	if b.Empty() {
		return nil
	}
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	off := t.vp.Min.Sub(b.Min)
	hw := float32(max(g.LineWidth, 1)) / 2
	prev := image.Pt(int(pts[0].X), int(pts[0].Y))
	for _, xp := range pts[1:] {
		p := image.Pt(int(xp.X), int(xp.Y))
		if mode == xproto.CoordModePrevious {
			p = p.Add(prev)
		}
		segment(z, prev.Add(off), p.Add(off), hw)
		prev = p
	}
	z.Draw(dst, b, image.NewUniform(pixel(g.Foreground)), image.Point{})
	d.present(t.owner)
	return nil
}

// segment adds a line from p to q of half-width hw to z, through
// pixel centers.
func segment(z *vector.Rasterizer, p, q image.Point, hw float32) {
	x0, y0 := float32(p.X)+0.5, float32(p.Y)+0.5
	x1, y1 := float32(q.X)+0.5, float32(q.Y)+0.5
	dx, dy := x1-x0, y1-y0
	n := float32(math.Hypot(float64(dx), float64(dy)))
	if n == 0 {
		z.MoveTo(x0-hw, y0-hw)
		z.LineTo(x0+hw, y0-hw)
		z.LineTo(x0+hw, y0+hw)
		z.LineTo(x0-hw, y0+hw)
		z.ClosePath()
		return
	}
	// Extend by hw along the line so that end pixels are covered.
	ux, uy := dx/n*hw, dy/n*hw
	x0, y0, x1, y1 = x0-ux, y0-uy, x1+ux, y1+uy
	nx, ny := -uy, ux
	z.MoveTo(x0+nx, y0+ny)
	z.LineTo(x1+nx, y1+ny)
	z.LineTo(x1-nx, y1-ny)
	z.LineTo(x0-nx, y0-ny)
	z.ClosePath()
}

// ClearArea fills a rectangle of w with its background. A zero width
// or height extends the rectangle to the window edge. If exposures is
// set, the area is reported with Expose events.
func (d *Display) ClearArea(id xproto.Window, x, y, width, height int, exposures bool) error {
	d.request(opClearArea)
	w, err := d.lookupWindow(id)
	if err != nil {
		return err
	}
	if w.inputOnly {
		return d.fail(xproto.BadMatch, uint32(id))
	}
	if width < 0 || height < 0 {
		return d.fail(xproto.BadValue, badDimension(width+1, height+1))
	}
	d.syncGeometry(w)
	if width == 0 {
		width = w.width - x
	}
	if height == 0 {
		height = w.height - y
	}
	r := image.Rect(x, y, x+width, y+height).Intersect(image.Rect(0, 0, w.width, w.height))
	if r.Empty() {
		return nil
	}
	d.paintBackground(w, r)
	if exposures {
		d.postExposeEvent(w, []image.Rectangle{r})
	}
	return nil
}

// ClearWindow fills w with its background.
func (d *Display) ClearWindow(id xproto.Window) error {
	return d.ClearArea(id, 0, 0, 0, 0, false)
}

// PutImage draws img at (x, y) in drawable.
func (d *Display) PutImage(drawable xproto.Drawable, gc xproto.Gcontext, img image.Image, x, y int) error {
	t, _, err := d.prepare(opPutImage, drawable, gc)
	if err != nil {
		return err
	}
	draw.Copy(t.image(), t.pt(image.Pt(x, y)), img, img.Bounds(), draw.Src, nil)
	d.present(t.owner)
	return nil
}

// CopyArea copies a rectangle of src to (dx, dy) in dst, blending by
// alpha. Copying from an unmapped window with no pixels does nothing.
func (d *Display) CopyArea(src, dst xproto.Drawable, gc xproto.Gcontext, sx, sy, width, height, dx, dy int) error {
	d.request(opCopyArea)
	if sw := d.window(xproto.Window(src)); sw != nil {
		if sw.inputOnly {
			return d.fail(xproto.BadMatch, uint32(src))
		}
		if sw.state == Unmapped && sw.buf == nil {
			if _, err := d.gc(gc); err != nil {
				return err
			}
			return nil
		}
	}
	st, err := d.drawTarget(src)
	if err != nil {
		return err
	}
	dt, err := d.drawTarget(dst)
	if err != nil {
		return err
	}
	if _, err := d.gc(gc); err != nil {
		return err
	}

	req := image.Rect(sx, sy, sx+width, sy+height).Add(st.vp.Min)
	sr := req.Intersect(st.image().Bounds())
	if sr.Empty() {
		return nil
	}
	// Snapshot first: src and dst may share a buffer.
	snap := image.NewRGBA(image.Rectangle{Max: sr.Size()})
	draw.Copy(snap, image.Point{}, st.buf.RGBA(), sr, draw.Src, nil)
	dp := dt.pt(image.Pt(dx, dy)).Add(sr.Min.Sub(req.Min))
	draw.Copy(dt.image(), dp, snap, snap.Bounds(), draw.Over, nil)
	d.present(dt.owner)
	return nil
}

// unimplemented logs a drawing request that draws nothing.
func (d *Display) unimplemented(op Opcode, drawable xproto.Drawable) error {
	d.request(op)
	Logger().Warn("drawing request not implemented", "request", op.String(), "drawable", drawable)
	return nil
}

// FillPolygon is accepted but draws nothing.
func (d *Display) FillPolygon(drawable xproto.Drawable, gc xproto.Gcontext, pts []xproto.Point, shape, mode byte) error {
	return d.unimplemented(opFillPoly, drawable)
}

// FillArc is accepted but draws nothing.
func (d *Display) FillArc(drawable xproto.Drawable, gc xproto.Gcontext, x, y, width, height, angle1, angle2 int) error {
	return d.unimplemented(opPolyFillArc, drawable)
}

// DrawArc is accepted but draws nothing.
func (d *Display) DrawArc(drawable xproto.Drawable, gc xproto.Gcontext, x, y, width, height, angle1, angle2 int) error {
	return d.unimplemented(opPolyArc, drawable)
}

// CopyPlane is accepted but copies nothing.
func (d *Display) CopyPlane(src, dst xproto.Drawable, gc xproto.Gcontext, sx, sy, width, height, dx, dy int, plane uint32) error {
	return d.unimplemented(opCopyPlane, dst)
}
