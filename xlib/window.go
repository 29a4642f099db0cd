package xlib

import (
	"image"
	"slices"

	"github.com/BurntSushi/xgb/xproto"
	"golang.org/x/exp/shiny/screen"

	"9fans.net/xemu/host"
	"9fans.net/xemu/internal/xid"
)

// A MapState is the mapping state of a window.
type MapState int

const (
	Unmapped     MapState = iota
	MapRequested          // waiting for an ancestor to be mapped
	Mapped
)

func (s MapState) String() string {
	switch s {
	case Unmapped:
		return "Unmapped"
	case MapRequested:
		return "MapRequested"
	case Mapped:
		return "Mapped"
	}
	return "MapState(?)"
}

// Window classes for CreateWindow.
const (
	CopyFromParent = xproto.WindowClassCopyFromParent
	InputOutput    = xproto.WindowClassInputOutput
	InputOnly      = xproto.WindowClassInputOnly
)

type window struct {
	id       xproto.Window
	parent   xproto.Window
	children []xproto.Window // bottom to top

	x, y          int // relative to parent
	width, height int
	border        int
	depth         int

	inputOnly        bool
	overrideRedirect bool
	state            MapState
	eventMask        uint32
	colormap         xproto.Colormap
	background       uint32
	backgroundPixmap *pixmap
	props            []*Property

	// At most one of host and an offscreen buf is set.
	// When host is set, buf is its backing buffer.
	host host.Window
	buf  screen.Buffer
}

// bounds returns w's rectangle in its parent's coordinates.
func (w *window) bounds() image.Rectangle {
	return image.Rect(w.x, w.y, w.x+w.width, w.y+w.height)
}

// WindowAttributes are the attributes settable at creation and by
// ChangeWindowAttributes. Which fields apply is selected by a mask of
// xproto.Cw* bits.
type WindowAttributes struct {
	BackgroundPixmap xproto.Pixmap
	BackgroundPixel  uint32
	OverrideRedirect bool
	EventMask        uint32
	Colormap         xproto.Colormap
}

// window returns the live window with the given handle, or nil.
func (d *Display) window(id xproto.Window) *window {
	k, v, ok := d.res.Lookup(uint32(id))
	if !ok || k != xid.Window {
		return nil
	}
	return v.(*window)
}

// lookupWindow is window for request arguments: a bad handle is a
// protocol error.
func (d *Display) lookupWindow(id xproto.Window) (*window, error) {
	w := d.window(id)
	if w == nil {
		return nil, d.fail(xproto.BadMatch, uint32(id))
	}
	return w, nil
}

func (d *Display) parentOf(w *window) *window {
	if w.parent == 0 {
		return nil
	}
	return d.window(w.parent)
}

// syncGeometry refreshes a realized top-level window's geometry from
// the host, which may have moved or resized it.
func (d *Display) syncGeometry(w *window) {
	if w.host == nil {
		return
	}
	r := w.host.Bounds()
	w.x, w.y = r.Min.X, r.Min.Y
	w.width, w.height = r.Dx(), r.Dy()
}

// CreateWindow creates an unmapped child of parent. The new window is
// the topmost of its siblings. Attrs may be nil; otherwise mask selects
// the fields of attrs to apply.
func (d *Display) CreateWindow(parent xproto.Window, x, y, width, height, borderWidth int, class int, mask uint32, attrs *WindowAttributes) (xproto.Window, error) {
	d.request(opCreateWindow)
	p, err := d.lookupWindow(parent)
	if err != nil {
		return 0, err
	}
	if width <= 0 || height <= 0 {
		return 0, d.fail(xproto.BadValue, badDimension(width, height))
	}
	w := &window{
		parent:   p.id,
		x:        x,
		y:        y,
		width:    width,
		height:   height,
		border:   borderWidth,
		depth:    p.depth,
		colormap: p.colormap,
	}
	switch class {
	case CopyFromParent:
		w.inputOnly = p.inputOnly
	case InputOutput:
		if p.inputOnly {
			return 0, d.fail(xproto.BadMatch, uint32(parent))
		}
	case InputOnly:
		w.inputOnly = true
	default:
		return 0, d.fail(xproto.BadValue, uint32(class))
	}
	if attrs != nil {
		if err := d.checkAttributes(mask, attrs); err != nil {
			return 0, err
		}
	}
	id, err := d.res.Alloc(xid.Window, w)
	if err != nil {
		return 0, d.fail(xproto.BadAlloc, 0)
	}
	w.id = xproto.Window(id)
	if attrs != nil {
		d.applyAttributes(w, mask, attrs)
	}
	p.children = append(p.children, w.id)
	d.postCreateNotify(w)
	return w.id, nil
}

// badDimension returns the offending value of a width and height pair.
func badDimension(width, height int) uint32 {
	if width <= 0 {
		return uint32(int32(width))
	}
	return uint32(int32(height))
}

// CreateSimpleWindow creates an InputOutput window with the given
// background pixel.
func (d *Display) CreateSimpleWindow(parent xproto.Window, x, y, width, height, borderWidth int, background uint32) (xproto.Window, error) {
	return d.CreateWindow(parent, x, y, width, height, borderWidth, CopyFromParent,
		xproto.CwBackPixel, &WindowAttributes{BackgroundPixel: background})
}

// checkAttributes validates the resources named by attrs.
func (d *Display) checkAttributes(mask uint32, a *WindowAttributes) error {
	if mask&xproto.CwBackPixmap != 0 && a.BackgroundPixmap != 0 && d.pixmap(a.BackgroundPixmap) == nil {
		return d.fail(xproto.BadMatch, uint32(a.BackgroundPixmap))
	}
	if mask&xproto.CwColormap != 0 && d.colormap(a.Colormap) == nil {
		return d.fail(xproto.BadColormap, uint32(a.Colormap))
	}
	return nil
}

// applyAttributes sets the attributes selected by mask.
// It reports whether the colormap changed.
func (d *Display) applyAttributes(w *window, mask uint32, a *WindowAttributes) bool {
	if mask&xproto.CwBackPixmap != 0 {
		d.setBackgroundPixmap(w, d.pixmap(a.BackgroundPixmap))
	}
	if mask&xproto.CwBackPixel != 0 {
		d.setBackgroundPixmap(w, nil)
		w.background = a.BackgroundPixel
	}
	if mask&xproto.CwOverrideRedirect != 0 {
		w.overrideRedirect = a.OverrideRedirect
	}
	if mask&xproto.CwEventMask != 0 {
		w.eventMask = a.EventMask
	}
	if mask&xproto.CwColormap != 0 && w.colormap != a.Colormap {
		w.colormap = a.Colormap
		return true
	}
	return false
}

func (d *Display) setBackgroundPixmap(w *window, p *pixmap) {
	if w.backgroundPixmap != nil {
		d.unrefPixmap(w.backgroundPixmap)
	}
	w.backgroundPixmap = p
	if p != nil {
		p.refs++
	}
}

// ChangeWindowAttributes sets the attributes of w selected by mask.
func (d *Display) ChangeWindowAttributes(id xproto.Window, mask uint32, attrs *WindowAttributes) error {
	d.request(opChangeWindowAttributes)
	w, err := d.lookupWindow(id)
	if err != nil {
		return err
	}
	if err := d.checkAttributes(mask, attrs); err != nil {
		return err
	}
	if d.applyAttributes(w, mask, attrs) {
		d.postColormapNotify(w, true)
	}
	return nil
}

// SelectInput sets the event mask of w.
func (d *Display) SelectInput(id xproto.Window, mask uint32) error {
	return d.ChangeWindowAttributes(id, xproto.CwEventMask, &WindowAttributes{EventMask: mask})
}

// SetWindowBackground sets the background pixel of w.
func (d *Display) SetWindowBackground(id xproto.Window, pixel uint32) error {
	return d.ChangeWindowAttributes(id, xproto.CwBackPixel, &WindowAttributes{BackgroundPixel: pixel})
}

// Attributes describes a window, as returned by GetWindowAttributes.
type Attributes struct {
	X, Y, Width, Height int
	BorderWidth         int
	Depth               int
	Class               int
	MapState            MapState
	Viewable            bool // mapped with all ancestors mapped
	OverrideRedirect    bool
	EventMask           uint32
	Colormap            xproto.Colormap
	Root                xproto.Window
}

// GetWindowAttributes returns the attributes of w.
func (d *Display) GetWindowAttributes(id xproto.Window) (*Attributes, error) {
	d.request(opGetWindowAttributes)
	w, err := d.lookupWindow(id)
	if err != nil {
		return nil, err
	}
	d.syncGeometry(w)
	a := &Attributes{
		X:                w.x,
		Y:                w.y,
		Width:            w.width,
		Height:           w.height,
		BorderWidth:      w.border,
		Depth:            w.depth,
		Class:            InputOutput,
		MapState:         w.state,
		Viewable:         d.viewable(w),
		OverrideRedirect: w.overrideRedirect,
		EventMask:        w.eventMask,
		Colormap:         w.colormap,
		Root:             d.root.id,
	}
	if w.inputOnly {
		a.Class = InputOnly
		a.Depth = 0
	}
	return a, nil
}

func (d *Display) viewable(w *window) bool {
	for ; w != nil; w = d.parentOf(w) {
		if w.state != Mapped {
			return false
		}
	}
	return true
}

// Geometry is the result of GetGeometry.
type Geometry struct {
	Root                xproto.Window
	X, Y, Width, Height int
	BorderWidth         int
	Depth               int
}

// GetGeometry returns the geometry of a window or pixmap.
func (d *Display) GetGeometry(id xproto.Drawable) (*Geometry, error) {
	d.request(opGetGeometry)
	switch k, v, _ := d.res.Lookup(uint32(id)); k {
	case xid.Window:
		w := v.(*window)
		d.syncGeometry(w)
		return &Geometry{Root: d.root.id, X: w.x, Y: w.y, Width: w.width, Height: w.height, BorderWidth: w.border, Depth: w.depth}, nil
	case xid.Pixmap:
		p := v.(*pixmap)
		return &Geometry{Root: d.root.id, Width: p.width, Height: p.height, Depth: p.depth}, nil
	}
	return nil, d.fail(xproto.BadDrawable, uint32(id))
}

// QueryTree returns the root, the parent and the children of w,
// bottommost child first.
func (d *Display) QueryTree(id xproto.Window) (root, parent xproto.Window, children []xproto.Window, err error) {
	d.request(opQueryTree)
	w, err := d.lookupWindow(id)
	if err != nil {
		return 0, 0, nil, err
	}
	return d.root.id, w.parent, slices.Clone(w.children), nil
}

// DestroyWindow destroys w and all its descendants. Destroying the root
// does nothing.
func (d *Display) DestroyWindow(id xproto.Window) error {
	d.request(opDestroyWindow)
	w, err := d.lookupWindow(id)
	if err != nil {
		return err
	}
	if w == d.root {
		return nil
	}
	d.destroyWindow(w, true)
	return nil
}

// DestroySubwindows destroys the children of w, topmost first.
func (d *Display) DestroySubwindows(id xproto.Window) error {
	d.request(opDestroySubwindows)
	w, err := d.lookupWindow(id)
	if err != nil {
		return err
	}
	for i := len(w.children) - 1; i >= 0; i-- {
		if c := d.window(w.children[i]); c != nil {
			d.destroyWindow(c, true)
		}
	}
	return nil
}

// destroyWindow unmaps w, destroys its children, releases its
// resources and posts DestroyNotify, child before parent.
// Unlink removes w from its parent's child list.
func (d *Display) destroyWindow(w *window, unlink bool) {
	if w.state == Mapped {
		d.unmapWindow(w)
	}
	for _, c := range slices.Clone(w.children) {
		if cw := d.window(c); cw != nil {
			d.destroyWindow(cw, false)
		}
	}
	w.children = nil
	d.releaseSurfaces(w)
	d.setBackgroundPixmap(w, nil)
	w.props = nil
	w.colormap = 0
	for sel, s := range d.selections {
		if s.owner == w.id {
			delete(d.selections, sel)
		}
	}
	if d.focus == w.id {
		d.revertFocus(w)
	}
	if d.pointer == w.id {
		d.pointer = 0
	}

	d.postDestroyNotify(w)
	if unlink {
		if p := d.parentOf(w); p != nil {
			p.children = slices.DeleteFunc(p.children, func(c xproto.Window) bool { return c == w.id })
		}
	}
	d.res.Free(uint32(w.id))
}

// releaseSurfaces releases w's buffer and host window.
func (d *Display) releaseSurfaces(w *window) {
	if w.buf != nil {
		w.buf.Release()
		w.buf = nil
	}
	if w.host != nil {
		delete(d.hostIDs, w.host.ID())
		w.host.Release()
		w.host = nil
	}
}

// ReparentWindow moves w to be a child of parent at (x, y).
// A mapped window is unmapped first and mapped again afterward.
func (d *Display) ReparentWindow(id, parent xproto.Window, x, y int) error {
	d.request(opReparentWindow)
	w, err := d.lookupWindow(id)
	if err != nil {
		return err
	}
	np, err := d.lookupWindow(parent)
	if err != nil {
		return err
	}
	if w == d.root || np == w || d.isAncestor(w, np) {
		return d.fail(xproto.BadMatch, uint32(parent))
	}
	if np.inputOnly && !w.inputOnly {
		return d.fail(xproto.BadMatch, uint32(parent))
	}
	remap := w.state != Unmapped
	if w.state == Mapped {
		d.unmapWindow(w)
	}
	w.state = Unmapped

	// A top-level leaving the root keeps its pixels as an offscreen buffer.
	if w.host != nil && np != d.root {
		delete(d.hostIDs, w.host.ID())
		w.host.Release()
		w.host = nil
	}
	old := d.parentOf(w)
	old.children = slices.DeleteFunc(old.children, func(c xproto.Window) bool { return c == w.id })
	np.children = append(np.children, w.id)
	w.parent = np.id
	w.x, w.y = x, y
	d.postReparentNotify(w, old)

	if remap {
		return d.requestMap(w)
	}
	return nil
}

// StoreName sets WM_NAME of w. A realized top-level window's host
// title follows it.
func (d *Display) StoreName(id xproto.Window, name string) error {
	return d.ChangeProperty(id, AtomWMName, AtomString, 8, xproto.PropModeReplace, []byte(name))
}

// FetchName returns WM_NAME of w.
func (d *Display) FetchName(id xproto.Window) (string, error) {
	p, err := d.GetProperty(id, AtomWMName, false)
	if err != nil || p == nil {
		return "", err
	}
	return string(p.Data), nil
}

// HitTest returns the deepest descendant of w, or w itself, that
// contains the point (x, y) in w's coordinates. Children are searched
// topmost first.
func (d *Display) HitTest(id xproto.Window, x, y int) (xproto.Window, error) {
	w, err := d.lookupWindow(id)
	if err != nil {
		return 0, err
	}
	return d.hitTest(w, image.Pt(x, y), false).id, nil
}

// hitTest returns the deepest window under p, in w's coordinates.
// If mapped is set, children that are not Mapped are passed over,
// as they are for pointer input.
func (d *Display) hitTest(w *window, p image.Point, mapped bool) *window {
	for i := len(w.children) - 1; i >= 0; i-- {
		c := d.window(w.children[i])
		if c == nil || mapped && c.state != Mapped {
			continue
		}
		d.syncGeometry(c)
		if r := c.bounds(); p.In(r) {
			return d.hitTest(c, p.Sub(r.Min), mapped)
		}
	}
	return w
}

// IsAncestor reports whether a is a proper ancestor of b.
func (d *Display) IsAncestor(a, b xproto.Window) (bool, error) {
	wa, err := d.lookupWindow(a)
	if err != nil {
		return false, err
	}
	wb, err := d.lookupWindow(b)
	if err != nil {
		return false, err
	}
	return d.isAncestor(wa, wb), nil
}

func (d *Display) isAncestor(a, b *window) bool {
	for p := d.parentOf(b); p != nil; p = d.parentOf(p) {
		if p == a {
			return true
		}
	}
	return false
}

// firstTopLevel returns the bottommost top-level window, or the root
// if there is none.
func (d *Display) firstTopLevel() *window {
	for _, c := range d.root.children {
		if w := d.window(c); w != nil {
			return w
		}
	}
	return d.root
}

// absOrigin returns w's origin in root coordinates.
func (d *Display) absOrigin(w *window) image.Point {
	var p image.Point
	for ; w != nil && w != d.root; w = d.parentOf(w) {
		d.syncGeometry(w)
		p = p.Add(image.Pt(w.x, w.y))
	}
	return p
}
