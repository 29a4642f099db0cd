package xlib

import (
	"github.com/BurntSushi/xgb/xproto"
)

// Predefined atoms.
const (
	AtomNone           xproto.Atom = 0
	AtomPrimary        xproto.Atom = 1
	AtomSecondary      xproto.Atom = 2
	AtomAtom           xproto.Atom = 4
	AtomCardinal       xproto.Atom = 6
	AtomInteger        xproto.Atom = 19
	AtomPixmap         xproto.Atom = 20
	AtomString         xproto.Atom = 31
	AtomWindow         xproto.Atom = 33
	AtomWMCommand      xproto.Atom = 34
	AtomWMHints        xproto.Atom = 35
	AtomWMIconName     xproto.Atom = 37
	AtomWMName         xproto.Atom = 39
	AtomWMNormalHints  xproto.Atom = 40
	AtomWMClass        xproto.Atom = 67
	AtomWMTransientFor xproto.Atom = 68
)

var predefinedAtoms = [...]string{
	"", // None
	"PRIMARY", "SECONDARY", "ARC", "ATOM", "BITMAP", "CARDINAL",
	"COLORMAP", "CURSOR", "CUT_BUFFER0", "CUT_BUFFER1", "CUT_BUFFER2",
	"CUT_BUFFER3", "CUT_BUFFER4", "CUT_BUFFER5", "CUT_BUFFER6",
	"CUT_BUFFER7", "DRAWABLE", "FONT", "INTEGER", "PIXMAP", "POINT",
	"RECTANGLE", "RESOURCE_MANAGER", "RGB_COLOR_MAP", "RGB_BEST_MAP",
	"RGB_BLUE_MAP", "RGB_DEFAULT_MAP", "RGB_GRAY_MAP", "RGB_GREEN_MAP",
	"RGB_RED_MAP", "STRING", "VISUALID", "WINDOW", "WM_COMMAND",
	"WM_HINTS", "WM_CLIENT_MACHINE", "WM_ICON_NAME", "WM_ICON_SIZE",
	"WM_NAME", "WM_NORMAL_HINTS", "WM_SIZE_HINTS", "WM_ZOOM_HINTS",
	"MIN_SPACE", "NORM_SPACE", "MAX_SPACE", "END_SPACE", "SUPERSCRIPT_X",
	"SUPERSCRIPT_Y", "SUBSCRIPT_X", "SUBSCRIPT_Y", "UNDERLINE_POSITION",
	"UNDERLINE_THICKNESS", "STRIKEOUT_ASCENT", "STRIKEOUT_DESCENT",
	"ITALIC_ANGLE", "X_HEIGHT", "QUAD_WIDTH", "WEIGHT", "POINT_SIZE",
	"RESOLUTION", "COPYRIGHT", "NOTICE", "FONT_NAME", "FAMILY_NAME",
	"FULL_NAME", "CAP_HEIGHT", "WM_CLASS", "WM_TRANSIENT_FOR",
}

type atomTable struct {
	names  []string
	byName map[string]xproto.Atom
}

func newAtomTable() *atomTable {
	t := &atomTable{byName: make(map[string]xproto.Atom)}
	t.names = append(t.names, predefinedAtoms[:]...)
	for i, name := range predefinedAtoms {
		if i > 0 {
			t.byName[name] = xproto.Atom(i)
		}
	}
	return t
}

func (t *atomTable) lookup(name string) (xproto.Atom, bool) {
	a, ok := t.byName[name]
	return a, ok
}

func (t *atomTable) intern(name string) xproto.Atom {
	if a, ok := t.byName[name]; ok {
		return a
	}
	a := xproto.Atom(len(t.names))
	t.names = append(t.names, name)
	t.byName[name] = a
	return a
}

func (t *atomTable) valid(a xproto.Atom) bool {
	return a != AtomNone && int(a) < len(t.names)
}

// InternAtom returns the atom named name, creating it unless
// onlyIfExists is set, in which case a missing atom is AtomNone.
func (d *Display) InternAtom(name string, onlyIfExists bool) (xproto.Atom, error) {
	d.request(opInternAtom)
	if name == "" {
		return AtomNone, d.fail(xproto.BadValue, 0)
	}
	if onlyIfExists {
		a, _ := d.atoms.lookup(name)
		return a, nil
	}
	return d.atoms.intern(name), nil
}

// GetAtomName returns the name of a.
func (d *Display) GetAtomName(a xproto.Atom) (string, error) {
	d.request(opGetAtomName)
	if !d.atoms.valid(a) {
		return "", d.fail(xproto.BadAtom, uint32(a))
	}
	return d.atoms.names[a], nil
}
