package xlib

import (
	"github.com/BurntSushi/xgb/xproto"
)

// CurrentTime stands for the server's current time in requests.
const CurrentTime xproto.Timestamp = 0

type selection struct {
	owner xproto.Window
	time  xproto.Timestamp
}

// SetSelectionOwner makes owner, or nobody if owner is 0, the owner of
// sel. A previous owner gets a SelectionClear.
func (d *Display) SetSelectionOwner(owner xproto.Window, sel xproto.Atom, t xproto.Timestamp) error {
	d.request(opSetSelectionOwner)
	if !d.atoms.valid(sel) {
		return d.fail(xproto.BadAtom, uint32(sel))
	}
	if owner != 0 {
		if _, err := d.lookupWindow(owner); err != nil {
			return err
		}
	}
	if t == CurrentTime {
		t = d.now()
	}
	old := d.selections[sel]
	if old != nil && t < old.time {
		return nil
	}
	if old != nil && old.owner != owner {
		d.enqueue(selectionClear(old.owner, sel, t))
	}
	if owner == 0 {
		delete(d.selections, sel)
		return nil
	}
	d.selections[sel] = &selection{owner: owner, time: t}
	return nil
}

// GetSelectionOwner returns the owner of sel, or 0.
func (d *Display) GetSelectionOwner(sel xproto.Atom) (xproto.Window, error) {
	d.request(opGetSelectionOwner)
	if !d.atoms.valid(sel) {
		return 0, d.fail(xproto.BadAtom, uint32(sel))
	}
	if s := d.selections[sel]; s != nil {
		return s.owner, nil
	}
	return 0, nil
}

// ConvertSelection asks the owner of sel to store it as target in
// property of requestor. Without an owner, requestor gets a
// SelectionNotify with no property.
func (d *Display) ConvertSelection(sel, target, property xproto.Atom, requestor xproto.Window, t xproto.Timestamp) error {
	d.request(opConvertSelection)
	if _, err := d.lookupWindow(requestor); err != nil {
		return err
	}
	for _, a := range []xproto.Atom{sel, target} {
		if !d.atoms.valid(a) {
			return d.fail(xproto.BadAtom, uint32(a))
		}
	}
	if property != AtomNone && !d.atoms.valid(property) {
		return d.fail(xproto.BadAtom, uint32(property))
	}
	if t == CurrentTime {
		t = d.now()
	}
	if s := d.selections[sel]; s != nil {
		d.enqueue(selectionRequest(s.owner, requestor, sel, target, property, t))
		return nil
	}
	d.enqueue(selectionNotify(requestor, sel, target, AtomNone, t))
	return nil
}
