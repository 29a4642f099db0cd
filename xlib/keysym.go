package xlib

import (
	"github.com/BurntSushi/xgb/xproto"
	"golang.org/x/mobile/event/key"
)

// Keycodes are host key codes offset by 8, the lowest X keycode.
const (
	minKeycode = 8
	maxKeycode = 255
)

func keycode(c key.Code) xproto.Keycode {
	if c <= key.CodeUnknown || int(c)+minKeycode > maxKeycode {
		return 0
	}
	return xproto.Keycode(int(c) + minKeycode)
}

// Keysyms of the non-printing keys. Printing keys use their Latin-1
// code as keysym.
const (
	KeysymBackSpace xproto.Keysym = 0xff08
	KeysymTab       xproto.Keysym = 0xff09
	KeysymReturn    xproto.Keysym = 0xff0d
	KeysymPause     xproto.Keysym = 0xff13
	KeysymEscape    xproto.Keysym = 0xff1b
	KeysymHome      xproto.Keysym = 0xff50
	KeysymLeft      xproto.Keysym = 0xff51
	KeysymUp        xproto.Keysym = 0xff52
	KeysymRight     xproto.Keysym = 0xff53
	KeysymDown      xproto.Keysym = 0xff54
	KeysymPageUp    xproto.Keysym = 0xff55
	KeysymPageDown  xproto.Keysym = 0xff56
	KeysymEnd       xproto.Keysym = 0xff57
	KeysymInsert    xproto.Keysym = 0xff63
	KeysymNumLock   xproto.Keysym = 0xff7f
	KeysymF1        xproto.Keysym = 0xffbe
	KeysymShiftL    xproto.Keysym = 0xffe1
	KeysymShiftR    xproto.Keysym = 0xffe2
	KeysymControlL  xproto.Keysym = 0xffe3
	KeysymControlR  xproto.Keysym = 0xffe4
	KeysymCapsLock  xproto.Keysym = 0xffe5
	KeysymAltL      xproto.Keysym = 0xffe9
	KeysymAltR      xproto.Keysym = 0xffea
	KeysymSuperL    xproto.Keysym = 0xffeb
	KeysymSuperR    xproto.Keysym = 0xffec
	KeysymDelete    xproto.Keysym = 0xffff
	NoSymbol        xproto.Keysym = 0
)

// codeKeysyms maps host key codes to their unshifted and shifted keysyms.
var codeKeysyms = map[key.Code][2]xproto.Keysym{
	key.CodeReturnEnter:        {KeysymReturn, KeysymReturn},
	key.CodeEscape:             {KeysymEscape, KeysymEscape},
	key.CodeDeleteBackspace:    {KeysymBackSpace, KeysymBackSpace},
	key.CodeTab:                {KeysymTab, KeysymTab},
	key.CodeSpacebar:           {' ', ' '},
	key.CodeHyphenMinus:        {'-', '_'},
	key.CodeEqualSign:          {'=', '+'},
	key.CodeLeftSquareBracket:  {'[', '{'},
	key.CodeRightSquareBracket: {']', '}'},
	key.CodeBackslash:          {'\\', '|'},
	key.CodeSemicolon:          {';', ':'},
	key.CodeApostrophe:         {'\'', '"'},
	key.CodeGraveAccent:        {'`', '~'},
	key.CodeComma:              {',', '<'},
	key.CodeFullStop:           {'.', '>'},
	key.CodeSlash:              {'/', '?'},
	key.CodeCapsLock:           {KeysymCapsLock, KeysymCapsLock},

	key.CodePause:         {KeysymPause, KeysymPause},
	key.CodeInsert:        {KeysymInsert, KeysymInsert},
	key.CodeHome:          {KeysymHome, KeysymHome},
	key.CodePageUp:        {KeysymPageUp, KeysymPageUp},
	key.CodeDeleteForward: {KeysymDelete, KeysymDelete},
	key.CodeEnd:           {KeysymEnd, KeysymEnd},
	key.CodePageDown:      {KeysymPageDown, KeysymPageDown},
	key.CodeRightArrow:    {KeysymRight, KeysymRight},
	key.CodeLeftArrow:     {KeysymLeft, KeysymLeft},
	key.CodeDownArrow:     {KeysymDown, KeysymDown},
	key.CodeUpArrow:       {KeysymUp, KeysymUp},
	key.CodeKeypadNumLock: {KeysymNumLock, KeysymNumLock},
	key.CodeLeftControl:   {KeysymControlL, KeysymControlL},
	key.CodeLeftShift:     {KeysymShiftL, KeysymShiftL},
	key.CodeLeftAlt:       {KeysymAltL, KeysymAltL},
	key.CodeLeftGUI:       {KeysymSuperL, KeysymSuperL},
	key.CodeRightControl:  {KeysymControlR, KeysymControlR},
	key.CodeRightShift:    {KeysymShiftR, KeysymShiftR},
	key.CodeRightAlt:      {KeysymAltR, KeysymAltR},
	key.CodeRightGUI:      {KeysymSuperR, KeysymSuperR},
}

func init() {
	for c := key.CodeA; c <= key.CodeZ; c++ {
		r := xproto.Keysym('a' + (c - key.CodeA))
		codeKeysyms[c] = [2]xproto.Keysym{r, r - 'a' + 'A'}
	}
	shifted := ")!@#$%^&*("
	for c := key.Code1; c <= key.Code0; c++ {
		n := int(c-key.Code1+1) % 10
		codeKeysyms[c] = [2]xproto.Keysym{xproto.Keysym('0' + n), xproto.Keysym(shifted[n])}
	}
	for c := key.CodeF1; c <= key.CodeF12; c++ {
		k := KeysymF1 + xproto.Keysym(c-key.CodeF1)
		codeKeysyms[c] = [2]xproto.Keysym{k, k}
	}
}

// LookupKeysym returns keysym index (0 unshifted, 1 shifted) of the
// key in a KeyPress or KeyRelease event.
func LookupKeysym(ev *Event, index int) xproto.Keysym {
	var code xproto.Keycode
	switch b := ev.Body.(type) {
	case xproto.KeyPressEvent:
		code = b.Detail
	case xproto.KeyReleaseEvent:
		code = b.Detail
	default:
		return NoSymbol
	}
	if code < minKeycode || index < 0 || index > 1 {
		return NoSymbol
	}
	return codeKeysyms[key.Code(code-minKeycode)][index]
}

// LookupString returns the text and keysym of a KeyPress or KeyRelease
// event. A KeyPress with keycode 0 carries the text last committed by
// the host input method.
func (d *Display) LookupString(ev *Event) (string, xproto.Keysym) {
	var code xproto.Keycode
	var state uint16
	switch b := ev.Body.(type) {
	case xproto.KeyPressEvent:
		code, state = b.Detail, b.State
		if code == 0 {
			return d.lastText, NoSymbol
		}
	case xproto.KeyReleaseEvent:
		code, state = b.Detail, b.State
	default:
		return "", NoSymbol
	}
	index := 0
	if state&xproto.ModMaskShift != 0 {
		index = 1
	}
	ks := LookupKeysym(ev, index)
	if ks >= 'a' && ks <= 'z' && state&xproto.ModMaskLock != 0 {
		ks -= 'a' - 'A'
	}
	switch {
	case ks == NoSymbol:
		return "", ks
	case ks < 0x100:
		if state&xproto.ModMaskControl != 0 && (ks >= '@' && ks <= '~') {
			return string(rune(ks & 0x1f)), ks
		}
		return string(rune(ks)), ks
	case ks == KeysymReturn:
		return "\r", ks
	case ks == KeysymBackSpace:
		return "\b", ks
	case ks == KeysymTab:
		return "\t", ks
	case ks == KeysymEscape:
		return "\x1b", ks
	case ks == KeysymDelete:
		return "\x7f", ks
	}
	return "", ks
}
