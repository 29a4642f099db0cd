package xlib

import (
	"image"
	"image/color"

	"github.com/BurntSushi/xgb/xproto"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/draw"

	"9fans.net/xemu/host"
)

// A target is a resolved drawing surface: buf clipped and translated
// to the viewport of one drawable.
type target struct {
	buf   screen.Buffer
	vp    image.Rectangle // drawable bounds in buf coordinates
	owner *window         // window owning buf; nil for pixmaps
}

// image returns the drawable's part of the buffer. Its bounds are vp
// clipped to the buffer.
func (t target) image() *image.RGBA {
	return t.buf.RGBA().SubImage(t.vp).(*image.RGBA)
}

// pt translates p from drawable to buffer coordinates.
func (t target) pt(p image.Point) image.Point {
	return p.Add(t.vp.Min)
}

// pixel converts a 24-bit TrueColor pixel value to an opaque color.
func pixel(p uint32) color.RGBA {
	return color.RGBA{R: uint8(p >> 16), G: uint8(p >> 8), B: uint8(p), A: 0xff}
}

// resolveRenderTarget walks up from w to the first window that owns a
// buffer, is a realized top-level, is unmapped, or is the root,
// creating that window's buffer if needed.
func (d *Display) resolveRenderTarget(w *window) (target, error) {
	vp := image.Rect(0, 0, w.width, w.height)
	t := w
	for t.parent != 0 && t.buf == nil && t.host == nil && t.state != Unmapped {
		vp = vp.Add(image.Pt(t.x, t.y))
		t = d.parentOf(t)
	}
	if t.buf == nil {
		size := image.Pt(t.width, t.height)
		if t.host != nil {
			size = t.host.Bounds().Size()
		}
		buf, err := d.newBuffer(size, t.background)
		if err != nil {
			return target{}, err
		}
		t.buf = buf
	}
	return target{buf: t.buf, vp: vp, owner: t}, nil
}

// newBuffer allocates a host buffer filled with bg.
func (d *Display) newBuffer(size image.Point, bg uint32) (screen.Buffer, error) {
	if size.X <= 0 || size.Y <= 0 {
		size = image.Pt(1, 1)
	}
	buf, err := d.host.NewBuffer(size)
	if err != nil {
		Logger().Error("buffer allocation failed", "size", size, "err", err)
		return nil, d.fail(xproto.BadAlloc, 0)
	}
	draw.Draw(buf.RGBA(), buf.Bounds(), image.NewUniform(pixel(bg)), image.Point{}, draw.Src)
	return buf, nil
}

// realize binds the top-level window w to a host window, creating it on
// first use. An offscreen buffer w drew into while unmapped becomes the
// host window's backing buffer.
func (d *Display) realize(w *window) error {
	if w.host == nil {
		title := ""
		if p := d.findProperty(w, AtomWMName); p != nil {
			title = string(p.Data)
		}
		hw, err := d.host.NewWindow(&host.WindowOptions{Bounds: w.bounds(), Title: title})
		if err != nil {
			Logger().Error("host window creation failed", "window", w.id, "err", err)
			return d.fail(xproto.BadAlloc, uint32(w.id))
		}
		w.host = hw
		d.hostIDs[hw.ID()] = w.id
		d.syncGeometry(w)
		if w.buf != nil && w.buf.Size() != hw.Bounds().Size() {
			d.resizeBuffer(w)
		}
	}
	if w.buf == nil && !w.inputOnly {
		if buf, err := d.newBuffer(image.Pt(w.width, w.height), w.background); err == nil {
			w.buf = buf
			if p := w.backgroundPixmap; p != nil {
				tile(buf.RGBA(), buf.Bounds(), p.buf.RGBA(), image.Point{})
			}
		}
	}
	w.host.Show()
	d.present(w)
	return nil
}

// mergeIntoAncestor copies child's offscreen buffer into parent's
// surface at the child's position and releases it.
func (d *Display) mergeIntoAncestor(parent, child *window) error {
	if child.buf == nil {
		return nil
	}
	pt, err := d.resolveRenderTarget(parent)
	if err != nil {
		return err
	}
	dp := pt.pt(image.Pt(child.x, child.y))
	draw.Copy(pt.image(), dp, child.buf.RGBA(), child.buf.Bounds(), draw.Src, nil)
	child.buf.Release()
	child.buf = nil
	d.present(pt.owner)
	return nil
}

// resizeBuffer resizes w's buffer to w's size, keeping the old
// contents at the top left. If allocation fails the contents are lost
// and the buffer is recreated on the next draw.
func (d *Display) resizeBuffer(w *window) {
	if w.buf == nil {
		return
	}
	size := image.Pt(w.width, w.height)
	if w.buf.Size() == size {
		return
	}
	old := w.buf
	w.buf = nil
	defer old.Release()
	buf, err := d.newBuffer(size, w.background)
	if err != nil {
		return
	}
	draw.Copy(buf.RGBA(), image.Point{}, old.RGBA(), old.Bounds(), draw.Src, nil)
	w.buf = buf
}

// onRenderTargetsInvalidated recreates the backing buffer of every
// realized top-level window and posts damage over all of it.
func (d *Display) onRenderTargetsInvalidated() {
	for _, c := range d.root.children {
		w := d.window(c)
		if w == nil || w.host == nil {
			continue
		}
		if w.buf != nil {
			w.buf.Release()
			w.buf = nil
		}
		d.syncGeometry(w)
		buf, err := d.newBuffer(image.Pt(w.width, w.height), w.background)
		if err == nil {
			w.buf = buf
			d.present(w)
		}
		d.postExposeEvent(w, []image.Rectangle{image.Rect(0, 0, w.width, w.height)})
	}
}

// present shows w's backing buffer in its host window.
func (d *Display) present(w *window) {
	if w == nil || w.host == nil || w.buf == nil {
		return
	}
	w.host.Upload(image.Point{}, w.buf, w.buf.Bounds())
	w.host.Publish()
}

// paintBackground fills r, in w's coordinates, with w's background.
func (d *Display) paintBackground(w *window, r image.Rectangle) {
	if w.inputOnly {
		return
	}
	t, err := d.resolveRenderTarget(w)
	if err != nil {
		return
	}
	dst := t.image()
	dr := r.Add(t.vp.Min)
	if p := w.backgroundPixmap; p != nil {
		tile(dst, dr, p.buf.RGBA(), t.vp.Min)
	} else {
		draw.Draw(dst, dr, image.NewUniform(pixel(w.background)), image.Point{}, draw.Src)
	}
	d.present(t.owner)
}

// tile fills r in dst with src repeated from origin.
func tile(dst *image.RGBA, r image.Rectangle, src *image.RGBA, origin image.Point) {
	r = r.Intersect(dst.Bounds())
	sz := src.Bounds().Size()
	if r.Empty() || sz.X == 0 || sz.Y == 0 {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		sy := mod(y-origin.Y, sz.Y)
		for x := r.Min.X; x < r.Max.X; x++ {
			sx := mod(x-origin.X, sz.X)
			dst.SetRGBA(x, y, src.RGBAAt(sx, sy))
		}
	}
}

func mod(a, b int) int {
	if a %= b; a < 0 {
		a += b
	}
	return a
}
