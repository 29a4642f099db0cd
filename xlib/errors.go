package xlib

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// An Error is a protocol error raised by a request.
type Error struct {
	Code     byte   // xproto.BadMatch, xproto.BadValue, ...
	Resource uint32 // offending resource or value, if any
	Opcode   Opcode // request that failed
	Serial   uint64 // serial of the last delivered event at the time
}

// Sentinels for use with errors.Is.
var (
	ErrBadValue    = &Error{Code: xproto.BadValue}
	ErrBadAtom     = &Error{Code: xproto.BadAtom}
	ErrBadMatch    = &Error{Code: xproto.BadMatch}
	ErrBadDrawable = &Error{Code: xproto.BadDrawable}
	ErrBadAlloc    = &Error{Code: xproto.BadAlloc}
	ErrBadColor    = &Error{Code: xproto.BadColormap}
	ErrBadName     = &Error{Code: xproto.BadName}
	ErrBadLength   = &Error{Code: xproto.BadLength}
)

var errorNames = map[byte]string{
	xproto.BadRequest:        "BadRequest",
	xproto.BadValue:          "BadValue",
	xproto.BadWindow:         "BadWindow",
	xproto.BadPixmap:         "BadPixmap",
	xproto.BadAtom:           "BadAtom",
	xproto.BadMatch:          "BadMatch",
	xproto.BadDrawable:       "BadDrawable",
	xproto.BadAccess:         "BadAccess",
	xproto.BadAlloc:          "BadAlloc",
	xproto.BadLength:         "BadLength",
	xproto.BadColormap:       "BadColor",
	xproto.BadGContext:       "BadGC",
	xproto.BadName:           "BadName",
	xproto.BadImplementation: "BadImplementation",
}

func (e *Error) Error() string {
	name, ok := errorNames[e.Code]
	if !ok {
		name = fmt.Sprintf("error %d", e.Code)
	}
	if e.Opcode == 0 {
		return "xlib: " + name
	}
	return fmt.Sprintf("xlib: %s in %v (resource %#x)", name, e.Opcode, e.Resource)
}

// Is reports whether target is an *Error with the same code.
// A target carrying a resource or opcode must match those too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return (t.Resource == 0 || t.Resource == e.Resource) && (t.Opcode == 0 || t.Opcode == e.Opcode)
}

// An ErrorHandler is called for every protocol error before the failing
// request returns it.
type ErrorHandler func(d *Display, err *Error)

// SetErrorHandler installs h and returns the previous handler.
// A nil h restores the default, which logs the error.
func (d *Display) SetErrorHandler(h ErrorHandler) ErrorHandler {
	old := d.errorHandler
	if h == nil {
		h = logError
	}
	d.errorHandler = h
	return old
}

func logError(d *Display, err *Error) {
	Logger().Warn("protocol error", "display", d.name, "code", errorNames[err.Code], "request", err.Opcode.String(), "resource", err.Resource)
}

// fail reports a protocol error with the given code against the
// current request.
func (d *Display) fail(code byte, resource uint32) error {
	err := &Error{Code: code, Resource: resource, Opcode: d.opcode, Serial: d.serial}
	d.errorHandler(d, err)
	return err
}

// An Opcode identifies a request.
type Opcode byte

// Core protocol request opcodes.
const (
	opCreateWindow           Opcode = 1
	opChangeWindowAttributes Opcode = 2
	opGetWindowAttributes    Opcode = 3
	opDestroyWindow          Opcode = 4
	opDestroySubwindows      Opcode = 5
	opReparentWindow         Opcode = 7
	opMapWindow              Opcode = 8
	opMapSubwindows          Opcode = 9
	opUnmapWindow            Opcode = 10
	opUnmapSubwindows        Opcode = 11
	opConfigureWindow        Opcode = 12
	opGetGeometry            Opcode = 14
	opQueryTree              Opcode = 15
	opInternAtom             Opcode = 16
	opGetAtomName            Opcode = 17
	opChangeProperty         Opcode = 18
	opDeleteProperty         Opcode = 19
	opGetProperty            Opcode = 20
	opListProperties         Opcode = 21
	opSetSelectionOwner      Opcode = 22
	opGetSelectionOwner      Opcode = 23
	opConvertSelection       Opcode = 24
	opSendEvent              Opcode = 25
	opSetInputFocus          Opcode = 42
	opGetInputFocus          Opcode = 43
	opCreatePixmap           Opcode = 53
	opFreePixmap             Opcode = 54
	opCreateGC               Opcode = 55
	opChangeGC               Opcode = 56
	opFreeGC                 Opcode = 60
	opClearArea              Opcode = 61
	opCopyArea               Opcode = 62
	opCopyPlane              Opcode = 63
	opPolyPoint              Opcode = 64
	opPolyLine               Opcode = 65
	opPolySegment            Opcode = 66
	opPolyRectangle          Opcode = 67
	opPolyArc                Opcode = 68
	opFillPoly               Opcode = 69
	opPolyFillRectangle      Opcode = 70
	opPolyFillArc            Opcode = 71
	opPutImage               Opcode = 72
	opCreateColormap         Opcode = 78
	opFreeColormap           Opcode = 79
	opAllocColor             Opcode = 84
	opAllocNamedColor        Opcode = 85
	opFreeColors             Opcode = 88
	opQueryColors            Opcode = 91
	opLookupColor            Opcode = 92
)

var opcodeNames = map[Opcode]string{
	opCreateWindow:           "CreateWindow",
	opChangeWindowAttributes: "ChangeWindowAttributes",
	opGetWindowAttributes:    "GetWindowAttributes",
	opDestroyWindow:          "DestroyWindow",
	opDestroySubwindows:      "DestroySubwindows",
	opReparentWindow:         "ReparentWindow",
	opMapWindow:              "MapWindow",
	opMapSubwindows:          "MapSubwindows",
	opUnmapWindow:            "UnmapWindow",
	opUnmapSubwindows:        "UnmapSubwindows",
	opConfigureWindow:        "ConfigureWindow",
	opGetGeometry:            "GetGeometry",
	opQueryTree:              "QueryTree",
	opInternAtom:             "InternAtom",
	opGetAtomName:            "GetAtomName",
	opChangeProperty:         "ChangeProperty",
	opDeleteProperty:         "DeleteProperty",
	opGetProperty:            "GetProperty",
	opListProperties:         "ListProperties",
	opSetSelectionOwner:      "SetSelectionOwner",
	opGetSelectionOwner:      "GetSelectionOwner",
	opConvertSelection:       "ConvertSelection",
	opSendEvent:              "SendEvent",
	opSetInputFocus:          "SetInputFocus",
	opGetInputFocus:          "GetInputFocus",
	opCreatePixmap:           "CreatePixmap",
	opFreePixmap:             "FreePixmap",
	opCreateGC:               "CreateGC",
	opChangeGC:               "ChangeGC",
	opFreeGC:                 "FreeGC",
	opClearArea:              "ClearArea",
	opCopyArea:               "CopyArea",
	opCopyPlane:              "CopyPlane",
	opPolyPoint:              "PolyPoint",
	opPolyLine:               "PolyLine",
	opPolySegment:            "PolySegment",
	opPolyRectangle:          "PolyRectangle",
	opPolyArc:                "PolyArc",
	opFillPoly:               "FillPoly",
	opPolyFillRectangle:      "PolyFillRectangle",
	opPolyFillArc:            "PolyFillArc",
	opPutImage:               "PutImage",
	opCreateColormap:         "CreateColormap",
	opFreeColormap:           "FreeColormap",
	opAllocColor:             "AllocColor",
	opAllocNamedColor:        "AllocNamedColor",
	opFreeColors:             "FreeColors",
	opQueryColors:            "QueryColors",
	opLookupColor:            "LookupColor",
}

func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return fmt.Sprintf("request %d", byte(op))
}
