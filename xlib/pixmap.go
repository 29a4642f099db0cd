package xlib

import (
	"image"
	"image/color"

	"github.com/BurntSushi/xgb/xproto"
	"golang.org/x/exp/shiny/screen"

	"9fans.net/xemu/internal/xid"
)

type pixmap struct {
	id            xproto.Pixmap
	width, height int
	depth         int
	buf           screen.Buffer
	refs          int // windows using it as background
	freed         bool
}

func (d *Display) pixmap(id xproto.Pixmap) *pixmap {
	k, v, ok := d.res.Lookup(uint32(id))
	if !ok || k != xid.Pixmap {
		return nil
	}
	return v.(*pixmap)
}

// isDrawable reports whether id names a window or pixmap.
func (d *Display) isDrawable(id xproto.Drawable) bool {
	k, _, ok := d.res.Lookup(uint32(id))
	return ok && (k == xid.Window || k == xid.Pixmap)
}

// CreatePixmap creates a pixmap on the screen of drawable.
// Its contents are undefined until drawn.
func (d *Display) CreatePixmap(drawable xproto.Drawable, width, height, depth int) (xproto.Pixmap, error) {
	d.request(opCreatePixmap)
	if !d.isDrawable(drawable) {
		return 0, d.fail(xproto.BadDrawable, uint32(drawable))
	}
	if width <= 0 || height <= 0 {
		return 0, d.fail(xproto.BadValue, badDimension(width, height))
	}
	if depth < 1 || depth > Depth {
		return 0, d.fail(xproto.BadValue, uint32(int32(depth)))
	}
	p, err := d.newPixmap(width, height, depth)
	if err != nil {
		return 0, err
	}
	return p.id, nil
}

func (d *Display) newPixmap(width, height, depth int) (*pixmap, error) {
	buf, err := d.host.NewBuffer(image.Pt(width, height))
	if err != nil {
		Logger().Error("pixmap buffer allocation failed", "width", width, "height", height, "err", err)
		return nil, d.fail(xproto.BadAlloc, 0)
	}
	p := &pixmap{width: width, height: height, depth: depth, buf: buf}
	id, err := d.res.Alloc(xid.Pixmap, p)
	if err != nil {
		buf.Release()
		return nil, d.fail(xproto.BadAlloc, 0)
	}
	p.id = xproto.Pixmap(id)
	return p, nil
}

// FreePixmap frees the pixmap id. Windows using it as their background
// keep the pixels until they stop using it.
func (d *Display) FreePixmap(id xproto.Pixmap) error {
	d.request(opFreePixmap)
	p := d.pixmap(id)
	if p == nil {
		return d.fail(xproto.BadMatch, uint32(id))
	}
	d.res.Free(uint32(id))
	p.freed = true
	if p.refs == 0 {
		p.buf.Release()
	}
	return nil
}

func (d *Display) unrefPixmap(p *pixmap) {
	p.refs--
	if p.freed && p.refs == 0 {
		p.buf.Release()
	}
}

// CreateBitmapFromData creates a depth-1 pixmap from X bitmap data:
// rows padded to whole bytes, least significant bit leftmost. Set bits
// are opaque white and clear bits transparent.
func (d *Display) CreateBitmapFromData(drawable xproto.Drawable, data []byte, width, height int) (xproto.Pixmap, error) {
	d.request(opCreatePixmap)
	if !d.isDrawable(drawable) {
		return 0, d.fail(xproto.BadDrawable, uint32(drawable))
	}
	if width <= 0 || height <= 0 {
		return 0, d.fail(xproto.BadValue, badDimension(width, height))
	}
	stride := (width + 7) / 8
	if len(data) < stride*height {
		return 0, d.fail(xproto.BadValue, uint32(len(data)))
	}
	p, err := d.newPixmap(width, height, 1)
	if err != nil {
		return 0, err
	}
	img := p.buf.RGBA()
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}
	for y := 0; y < height; y++ {
		row := data[y*stride:]
		for x := 0; x < width; x++ {
			c := color.RGBA{}
			if row[x/8]&(1<<(x%8)) != 0 {
				c = white
			}
			img.SetRGBA(x, y, c)
		}
	}
	return p.id, nil
}
