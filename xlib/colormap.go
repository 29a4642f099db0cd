package xlib

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"golang.org/x/image/colornames"

	"9fans.net/xemu/internal/xid"
)

// Visual classes.
const (
	StaticGray  = xproto.VisualClassStaticGray
	GrayScale   = xproto.VisualClassGrayScale
	StaticColor = xproto.VisualClassStaticColor
	PseudoColor = xproto.VisualClassPseudoColor
	TrueColor   = xproto.VisualClassTrueColor
	DirectColor = xproto.VisualClassDirectColor
)

// A Color is an RGB color with 16-bit channels and its pixel value.
type Color struct {
	Pixel            uint32
	Red, Green, Blue uint16
}

type colormap struct {
	id     xproto.Colormap
	visual int
}

func (c *colormap) gray() bool {
	return c.visual == StaticGray || c.visual == GrayScale
}

// pixel returns the pixel for an 8-bit color.
func (c *colormap) pixel(r, g, b uint8) uint32 {
	if c.gray() {
		y := uint32(color.GrayModel.Convert(color.RGBA{r, g, b, 0xff}).(color.Gray).Y)
		return y<<16 | y<<8 | y
	}
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func (d *Display) colormap(id xproto.Colormap) *colormap {
	k, v, ok := d.res.Lookup(uint32(id))
	if !ok || k != xid.Colormap {
		return nil
	}
	return v.(*colormap)
}

func (d *Display) lookupColormap(id xproto.Colormap) (*colormap, error) {
	c := d.colormap(id)
	if c == nil {
		return nil, d.fail(xproto.BadColormap, uint32(id))
	}
	return c, nil
}

// CreateColormap creates a colormap of the given visual class for the
// screen of w. Alloc is xproto.ColormapAllocNone or ColormapAllocAll;
// the static classes cannot be allocated writable.
func (d *Display) CreateColormap(w xproto.Window, visual int, alloc byte) (xproto.Colormap, error) {
	d.request(opCreateColormap)
	if _, err := d.lookupWindow(w); err != nil {
		return 0, err
	}
	if visual < StaticGray || visual > DirectColor {
		return 0, d.fail(xproto.BadValue, uint32(int32(visual)))
	}
	switch alloc {
	case xproto.ColormapAllocNone:
	case xproto.ColormapAllocAll:
		if visual == StaticGray || visual == StaticColor || visual == TrueColor {
			return 0, d.fail(xproto.BadMatch, uint32(alloc))
		}
	default:
		return 0, d.fail(xproto.BadValue, uint32(alloc))
	}
	c := &colormap{visual: visual}
	id, err := d.res.Alloc(xid.Colormap, c)
	if err != nil {
		return 0, d.fail(xproto.BadAlloc, 0)
	}
	c.id = xproto.Colormap(id)
	return c.id, nil
}

// FreeColormap frees cmap. Windows using it are told their colormap
// is gone. The default colormap is never freed.
func (d *Display) FreeColormap(id xproto.Colormap) error {
	d.request(opFreeColormap)
	if _, err := d.lookupColormap(id); err != nil {
		return err
	}
	if id == d.cmap {
		return nil
	}
	d.forEachWindow(d.root, func(w *window) {
		if w.colormap == id {
			w.colormap = 0
			d.postColormapNotify(w, true)
		}
	})
	d.res.Free(uint32(id))
	return nil
}

func (d *Display) forEachWindow(w *window, f func(*window)) {
	f(w)
	for _, c := range w.children {
		if cw := d.window(c); cw != nil {
			d.forEachWindow(cw, f)
		}
	}
}

// AllocColor sets c.Pixel to the closest color cmap can show and
// updates c's channels to that color. It always succeeds for a valid
// colormap.
func (d *Display) AllocColor(cmap xproto.Colormap, c *Color) error {
	d.request(opAllocColor)
	cm, err := d.lookupColormap(cmap)
	if err != nil {
		return err
	}
	*c = cm.color(uint8(c.Red>>8), uint8(c.Green>>8), uint8(c.Blue>>8))
	return nil
}

func (cm *colormap) color(r, g, b uint8) Color {
	p := cm.pixel(r, g, b)
	return Color{
		Pixel: p,
		Red:   uint16(p>>16&0xff) * 0x101,
		Green: uint16(p>>8&0xff) * 0x101,
		Blue:  uint16(p&0xff) * 0x101,
	}
}

// LookupColor returns the exact values of the named color and the
// closest values cmap can show. Names are matched ignoring case and
// spaces.
func (d *Display) LookupColor(cmap xproto.Colormap, name string) (exact, screen Color, err error) {
	d.request(opLookupColor)
	return d.lookupColor(cmap, name)
}

// AllocNamedColor is LookupColor followed by AllocColor.
func (d *Display) AllocNamedColor(cmap xproto.Colormap, name string) (screen, exact Color, err error) {
	d.request(opAllocNamedColor)
	exact, screen, err = d.lookupColor(cmap, name)
	return screen, exact, err
}

func (d *Display) lookupColor(cmap xproto.Colormap, name string) (exact, screen Color, err error) {
	cm, err := d.lookupColormap(cmap)
	if err != nil {
		return Color{}, Color{}, err
	}
	rgba, ok := namedColor(name)
	if !ok {
		return Color{}, Color{}, d.fail(xproto.BadName, 0)
	}
	screen = cm.color(rgba.R, rgba.G, rgba.B)
	exact = Color{
		Pixel: screen.Pixel,
		Red:   uint16(rgba.R) * 0x101,
		Green: uint16(rgba.G) * 0x101,
		Blue:  uint16(rgba.B) * 0x101,
	}
	return exact, screen, nil
}

func namedColor(name string) (color.RGBA, bool) {
	key := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	c, ok := colornames.Map[key]
	return c, ok
}

// ParseColor parses a color given as #rgb, #rrggbb, #rrrgggbbb,
// #rrrrggggbbbb, rgb:r/g/b with 1 to 4 hex digits per channel, or a
// color name. The returned pixel is the one cmap would allocate.
func (d *Display) ParseColor(cmap xproto.Colormap, spec string) (Color, error) {
	cm, err := d.lookupColormap(cmap)
	if err != nil {
		return Color{}, err
	}
	var ch [3]uint16
	switch {
	case strings.HasPrefix(spec, "#"):
		s := spec[1:]
		n := len(s) / 3
		if len(s)%3 != 0 || n < 1 || n > 4 {
			return Color{}, d.fail(xproto.BadValue, 0)
		}
		for i := range ch {
			v, ok := scaleHex(s[i*n : (i+1)*n])
			if !ok {
				return Color{}, d.fail(xproto.BadValue, 0)
			}
			ch[i] = v
		}
	case strings.HasPrefix(spec, "rgb:"):
		f := strings.Split(spec[4:], "/")
		if len(f) != 3 {
			return Color{}, d.fail(xproto.BadValue, 0)
		}
		for i := range ch {
			v, ok := scaleHex(f[i])
			if !ok {
				return Color{}, d.fail(xproto.BadValue, 0)
			}
			ch[i] = v
		}
	default:
		exact, _, err := d.lookupColor(cmap, spec)
		return exact, err
	}
	c := cm.color(uint8(ch[0]>>8), uint8(ch[1]>>8), uint8(ch[2]>>8))
	return Color{Pixel: c.Pixel, Red: ch[0], Green: ch[1], Blue: ch[2]}, nil
}

// scaleHex parses 1 to 4 hex digits as a fraction of full intensity.
func scaleHex(s string) (uint16, bool) {
	if len(s) < 1 || len(s) > 4 {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, false
	}
	full := uint64(1)<<(4*len(s)) - 1
	return uint16(v * 0xffff / full), true
}

// QueryColors returns the colors of pixels in cmap.
func (d *Display) QueryColors(cmap xproto.Colormap, pixels []uint32) ([]Color, error) {
	d.request(opQueryColors)
	if _, err := d.lookupColormap(cmap); err != nil {
		return nil, err
	}
	colors := make([]Color, len(pixels))
	for i, p := range pixels {
		if p > 0xffffff {
			return nil, d.fail(xproto.BadValue, p)
		}
		colors[i] = Color{
			Pixel: p,
			Red:   uint16(p>>16&0xff) * 0x101,
			Green: uint16(p>>8&0xff) * 0x101,
			Blue:  uint16(p&0xff) * 0x101,
		}
	}
	return colors, nil
}

// FreeColors releases allocated pixels. Colors are never reserved, so
// it only checks its arguments.
func (d *Display) FreeColors(cmap xproto.Colormap, pixels []uint32, planes uint32) error {
	d.request(opFreeColors)
	_, err := d.lookupColormap(cmap)
	return err
}
