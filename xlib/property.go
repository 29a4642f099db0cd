package xlib

import (
	"slices"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// A Property is a named, typed value attached to a window.
// Format is the size in bits of the data items: 8, 16 or 32.
// Items of 16 and 32 bits are stored little-endian.
type Property struct {
	Atom   xproto.Atom
	Type   xproto.Atom
	Format int
	Data   []byte
}

// Uint32s returns the items of a format-32 property.
func (p *Property) Uint32s() []uint32 {
	if p.Format != 32 {
		return nil
	}
	v := make([]uint32, len(p.Data)/4)
	for i := range v {
		v[i] = xgb.Get32(p.Data[4*i:])
	}
	return v
}

// Atoms returns the items of a format-32 property as atoms.
func (p *Property) Atoms() []xproto.Atom {
	var v []xproto.Atom
	for _, x := range p.Uint32s() {
		v = append(v, xproto.Atom(x))
	}
	return v
}

// Data32 encodes v as format-32 property data.
func Data32(v ...uint32) []byte {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		xgb.Put32(b[4*i:], x)
	}
	return b
}

func (d *Display) findProperty(w *window, atom xproto.Atom) *Property {
	for _, p := range w.props {
		if p.Atom == atom {
			return p
		}
	}
	return nil
}

// ChangeProperty replaces, prepends to or appends to (mode
// xproto.PropModeReplace, PropModePrepend, PropModeAppend) the
// property prop of w.
func (d *Display) ChangeProperty(id xproto.Window, prop, typ xproto.Atom, format int, mode byte, data []byte) error {
	d.request(opChangeProperty)
	w, err := d.lookupWindow(id)
	if err != nil {
		return err
	}
	if !d.atoms.valid(prop) {
		return d.fail(xproto.BadAtom, uint32(prop))
	}
	if !d.atoms.valid(typ) {
		return d.fail(xproto.BadAtom, uint32(typ))
	}
	if format != 8 && format != 16 && format != 32 {
		return d.fail(xproto.BadValue, uint32(format))
	}
	if len(data)%(format/8) != 0 {
		return d.fail(xproto.BadLength, uint32(len(data)))
	}
	if mode > xproto.PropModeAppend {
		return d.fail(xproto.BadValue, uint32(mode))
	}

	p := d.findProperty(w, prop)
	switch {
	case p == nil:
		w.props = append(w.props, &Property{Atom: prop, Type: typ, Format: format, Data: slices.Clone(data)})
	case mode == xproto.PropModeReplace:
		p.Type, p.Format, p.Data = typ, format, slices.Clone(data)
	case p.Type != typ || p.Format != format:
		return d.fail(xproto.BadMatch, uint32(prop))
	case mode == xproto.PropModePrepend:
		p.Data = slices.Concat(data, p.Data)
	default:
		p.Data = slices.Concat(p.Data, data)
	}
	if prop == AtomWMName && w.host != nil {
		w.host.SetTitle(string(d.findProperty(w, prop).Data))
	}
	d.postPropertyNotify(w, prop, false)
	return nil
}

// GetProperty returns a copy of the property prop of w, or nil if w
// has no such property. If del is set the property is then deleted.
func (d *Display) GetProperty(id xproto.Window, prop xproto.Atom, del bool) (*Property, error) {
	d.request(opGetProperty)
	w, err := d.lookupWindow(id)
	if err != nil {
		return nil, err
	}
	if !d.atoms.valid(prop) {
		return nil, d.fail(xproto.BadAtom, uint32(prop))
	}
	p := d.findProperty(w, prop)
	if p == nil {
		return nil, nil
	}
	cp := *p
	cp.Data = slices.Clone(p.Data)
	if del {
		d.deleteProperty(w, prop)
	}
	return &cp, nil
}

// DeleteProperty removes the property prop of w.
func (d *Display) DeleteProperty(id xproto.Window, prop xproto.Atom) error {
	d.request(opDeleteProperty)
	w, err := d.lookupWindow(id)
	if err != nil {
		return err
	}
	if !d.atoms.valid(prop) {
		return d.fail(xproto.BadAtom, uint32(prop))
	}
	d.deleteProperty(w, prop)
	return nil
}

func (d *Display) deleteProperty(w *window, prop xproto.Atom) {
	n := len(w.props)
	w.props = slices.DeleteFunc(w.props, func(p *Property) bool { return p.Atom == prop })
	if len(w.props) != n {
		d.postPropertyNotify(w, prop, true)
	}
}

// ListProperties returns the atoms of w's properties in the order
// they were created.
func (d *Display) ListProperties(id xproto.Window) ([]xproto.Atom, error) {
	d.request(opListProperties)
	w, err := d.lookupWindow(id)
	if err != nil {
		return nil, err
	}
	var atoms []xproto.Atom
	for _, p := range w.props {
		atoms = append(atoms, p.Atom)
	}
	return atoms, nil
}

// SetWMProtocols sets WM_PROTOCOLS of w to the given atoms.
func (d *Display) SetWMProtocols(id xproto.Window, protocols ...xproto.Atom) error {
	wmProtocols, err := d.InternAtom("WM_PROTOCOLS", false)
	if err != nil {
		return err
	}
	v := make([]uint32, len(protocols))
	for i, a := range protocols {
		v[i] = uint32(a)
	}
	return d.ChangeProperty(id, wmProtocols, AtomAtom, 32, xproto.PropModeReplace, Data32(v...))
}
