// Package termhost runs the emulated display inside a terminal.
//
// Host windows are composited onto the tcell cell grid. Each cell shows
// two pixels stacked vertically with an upper half block, so a cell
// covers CellSize pixels of the emulated screen and is sampled at the
// centers of its halves.
package termhost

import (
	"image"
	"image/color"
	"sync"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/draw"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"9fans.net/xemu/host"
)

// CellSize is the number of emulated pixels a terminal cell covers.
var CellSize = image.Pt(8, 16)

// A Screen is a host.Screen drawn on a tcell screen.
type Screen struct {
	ts tcell.Screen
	q  *host.Queue

	mu      sync.Mutex
	nextID  uint32
	windows []*window // bottom to top
	focus   *window
	under   *window
	grab    *window
	buttons tcell.ButtonMask
	closed  bool
}

// New initializes ts and returns a host screen drawing on it.
// Events are read from ts until Close.
func New(ts tcell.Screen) (*Screen, error) {
	if err := ts.Init(); err != nil {
		return nil, err
	}
	ts.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack))
	ts.HideCursor()
	ts.EnableMouse()
	ts.Clear()
	s := &Screen{ts: ts, q: host.NewQueue(256)}
	go s.pump()
	return s, nil
}

func (s *Screen) Size() image.Point {
	w, h := s.ts.Size()
	return image.Pt(w*CellSize.X, h*CellSize.Y)
}

func (s *Screen) Events() *host.Queue { return s.q }

func (s *Screen) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	s.ts.Fini()
	return nil
}

func (s *Screen) NewBuffer(size image.Point) (screen.Buffer, error) {
	return &buffer{rgba: image.NewRGBA(image.Rectangle{Max: size})}, nil
}

func (s *Screen) NewWindow(opts *host.WindowOptions) (host.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	w := &window{
		s:      s,
		id:     s.nextID,
		bounds: opts.Bounds,
		title:  opts.Title,
	}
	s.windows = append(s.windows, w)
	return w, nil
}

type buffer struct {
	rgba *image.RGBA
}

func (b *buffer) Release()                {}
func (b *buffer) Size() image.Point       { return b.rgba.Rect.Size() }
func (b *buffer) Bounds() image.Rectangle { return b.rgba.Rect }
func (b *buffer) RGBA() *image.RGBA       { return b.rgba }

type window struct {
	s       *Screen
	id      uint32
	bounds  image.Rectangle
	title   string
	visible bool
	back    *image.RGBA
	pix     *image.RGBA
}

func (w *window) ID() uint32 { return w.id }

func (w *window) Bounds() image.Rectangle {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	return w.bounds
}

func (w *window) Move(p image.Point) {
	w.s.mu.Lock()
	w.bounds = w.bounds.Add(p.Sub(w.bounds.Min))
	w.s.mu.Unlock()
	w.s.render()
}

func (w *window) Resize(size image.Point) {
	w.s.mu.Lock()
	w.bounds.Max = w.bounds.Min.Add(size)
	w.s.mu.Unlock()
	w.s.render()
}

// Show makes w visible and raises it.
func (w *window) Show() {
	w.s.mu.Lock()
	w.visible = true
	w.s.raise(w)
	w.s.mu.Unlock()
	w.s.render()
}

func (w *window) Hide() {
	w.s.mu.Lock()
	w.visible = false
	w.s.mu.Unlock()
	w.s.render()
}

func (w *window) SetTitle(title string) {
	w.s.mu.Lock()
	w.title = title
	w.s.mu.Unlock()
}

func (w *window) Upload(dp image.Point, buf screen.Buffer, sr image.Rectangle) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	if w.back == nil || w.back.Rect.Size() != w.bounds.Size() {
		w.back = image.NewRGBA(image.Rectangle{Max: w.bounds.Size()})
	}
	dr := image.Rectangle{Min: dp, Max: dp.Add(sr.Size())}
	draw.Draw(w.back, dr, buf.RGBA(), sr.Min, draw.Src)
}

func (w *window) Publish() {
	w.s.mu.Lock()
	if w.back != nil {
		w.pix = image.NewRGBA(w.back.Rect)
		draw.Draw(w.pix, w.pix.Rect, w.back, image.Point{}, draw.Src)
	}
	w.s.mu.Unlock()
	w.s.render()
}

func (w *window) Release() {
	s := w.s
	s.mu.Lock()
	for i, x := range s.windows {
		if x == w {
			s.windows = append(s.windows[:i], s.windows[i+1:]...)
			break
		}
	}
	if s.focus == w {
		s.focus = nil
	}
	if s.under == w {
		s.under = nil
	}
	if s.grab == w {
		s.grab = nil
	}
	s.mu.Unlock()
	s.render()
}

// raise moves w to the top of the stack. s.mu must be held.
func (s *Screen) raise(w *window) {
	for i, x := range s.windows {
		if x == w {
			copy(s.windows[i:], s.windows[i+1:])
			s.windows[len(s.windows)-1] = w
			return
		}
	}
}

// windowAt returns the topmost visible window containing p.
// s.mu must be held.
func (s *Screen) windowAt(p image.Point) *window {
	for i := len(s.windows) - 1; i >= 0; i-- {
		w := s.windows[i]
		if w.visible && p.In(w.bounds) {
			return w
		}
	}
	return nil
}

// colorAt returns the published color of the screen pixel p.
// s.mu must be held.
func (s *Screen) colorAt(p image.Point) color.RGBA {
	w := s.windowAt(p)
	if w == nil || w.pix == nil {
		return color.RGBA{A: 0xff}
	}
	return w.pix.RGBAAt(p.X-w.bounds.Min.X, p.Y-w.bounds.Min.Y)
}

// render redraws every terminal cell.
func (s *Screen) render() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	cols, rows := s.ts.Size()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			p := image.Pt(x*CellSize.X+CellSize.X/2, y*CellSize.Y+CellSize.Y/4)
			top := s.colorAt(p)
			bot := s.colorAt(p.Add(image.Pt(0, CellSize.Y/2)))
			st := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bot.R), int32(bot.G), int32(bot.B)))
			s.ts.SetContent(x, y, '▀', nil, st)
		}
	}
	s.ts.Show()
}

// pump reads terminal events until the screen is finalized.
func (s *Screen) pump() {
	for {
		ev := s.ts.PollEvent()
		if ev == nil {
			return
		}
		for _, e := range s.convert(ev) {
			s.q.Post(e)
		}
	}
}

// convert translates a terminal event into host events.
func (s *Screen) convert(ev tcell.Event) []host.Event {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		s.ts.Sync()
		s.render()
	case *tcell.EventKey:
		return s.convertKey(ev)
	case *tcell.EventMouse:
		return s.convertMouse(ev)
	}
	return nil
}

// keyWindow returns the window keyboard input goes to.
// s.mu must be held.
func (s *Screen) keyWindow() *window {
	if s.focus != nil && s.focus.visible {
		return s.focus
	}
	for i := len(s.windows) - 1; i >= 0; i-- {
		if s.windows[i].visible {
			return s.windows[i]
		}
	}
	return nil
}

func (s *Screen) convertKey(ev *tcell.EventKey) []host.Event {
	s.mu.Lock()
	w := s.keyWindow()
	s.mu.Unlock()
	if w == nil {
		return nil
	}
	if isQuit(ev) {
		return []host.Event{{Window: w.id, Body: host.CloseEvent{}}}
	}
	e, ok := keyEvent(ev)
	if !ok {
		if ev.Key() != tcell.KeyRune {
			return nil
		}
		return []host.Event{{Window: w.id, Body: host.TextEvent{Text: string(ev.Rune())}}}
	}
	return []host.Event{{Window: w.id, Body: e}}
}

// isQuit reports whether ev is control-Q, which asks to close the
// focused window.
func isQuit(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlQ {
		return true
	}
	return ev.Key() == tcell.KeyRune && ev.Modifiers()&tcell.ModCtrl != 0 && (ev.Rune() == 'q' || ev.Rune() == 'Q')
}

var specialCodes = map[tcell.Key]key.Code{
	tcell.KeyEnter:      key.CodeReturnEnter,
	tcell.KeyTab:        key.CodeTab,
	tcell.KeyBackspace:  key.CodeDeleteBackspace,
	tcell.KeyBackspace2: key.CodeDeleteBackspace,
	tcell.KeyEsc:        key.CodeEscape,
	tcell.KeyUp:         key.CodeUpArrow,
	tcell.KeyDown:       key.CodeDownArrow,
	tcell.KeyLeft:       key.CodeLeftArrow,
	tcell.KeyRight:      key.CodeRightArrow,
	tcell.KeyHome:       key.CodeHome,
	tcell.KeyEnd:        key.CodeEnd,
	tcell.KeyPgUp:       key.CodePageUp,
	tcell.KeyPgDn:       key.CodePageDown,
	tcell.KeyDelete:     key.CodeDeleteForward,
	tcell.KeyInsert:     key.CodeInsert,
}

// punctCodes maps unshifted and shifted punctuation to key codes.
var punctCodes = map[key.Code]string{
	key.CodeHyphenMinus:        "-_",
	key.CodeEqualSign:          "=+",
	key.CodeLeftSquareBracket:  "[{",
	key.CodeRightSquareBracket: "]}",
	key.CodeBackslash:          "\\|",
	key.CodeSemicolon:          ";:",
	key.CodeApostrophe:         "'\"",
	key.CodeGraveAccent:        "`~",
	key.CodeComma:              ",<",
	key.CodeFullStop:           ".>",
	key.CodeSlash:              "/?",
}

// runeCode returns the key code typing r and whether it needs shift.
func runeCode(r rune) (key.Code, bool, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return key.CodeA + key.Code(r-'a'), false, true
	case r >= 'A' && r <= 'Z':
		return key.CodeA + key.Code(r-'A'), true, true
	case r >= '1' && r <= '9':
		return key.Code1 + key.Code(r-'1'), false, true
	case r == '0':
		return key.Code0, false, true
	case r == ' ':
		return key.CodeSpacebar, false, true
	}
	for c, s := range punctCodes {
		if rune(s[0]) == r {
			return c, false, true
		}
		if rune(s[1]) == r {
			return c, true, true
		}
	}
	return key.CodeUnknown, false, false
}

func modifiers(m tcell.ModMask) key.Modifiers {
	var k key.Modifiers
	if m&tcell.ModShift != 0 {
		k |= key.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		k |= key.ModControl
	}
	if m&tcell.ModAlt != 0 {
		k |= key.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		k |= key.ModMeta
	}
	return k
}

// keyEvent converts a terminal key to a host key event. Terminals
// report no releases, so the event has no direction.
func keyEvent(ev *tcell.EventKey) (key.Event, bool) {
	e := key.Event{Modifiers: modifiers(ev.Modifiers()), Direction: key.DirNone}
	k := ev.Key()
	if c, ok := specialCodes[k]; ok {
		e.Code = c
		switch c {
		case key.CodeReturnEnter:
			e.Rune = '\r'
		case key.CodeTab:
			e.Rune = '\t'
		case key.CodeDeleteBackspace:
			e.Rune = '\b'
		case key.CodeEscape:
			e.Rune = 0x1b
		default:
			e.Rune = -1
		}
		return e, true
	}
	if k >= tcell.KeyF1 && k <= tcell.KeyF12 {
		e.Code = key.CodeF1 + key.Code(k-tcell.KeyF1)
		e.Rune = -1
		return e, true
	}
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		e.Code = key.CodeA + key.Code(k-tcell.KeyCtrlA)
		e.Rune = rune(k)
		e.Modifiers |= key.ModControl
		return e, true
	}
	if k != tcell.KeyRune {
		return e, false
	}
	r := ev.Rune()
	c, shift, ok := runeCode(r)
	if !ok {
		return e, false
	}
	e.Code, e.Rune = c, r
	if shift {
		e.Modifiers |= key.ModShift
	}
	return e, true
}

// tcell's second button is the right one.
var buttonNames = []struct {
	mask tcell.ButtonMask
	b    mouse.Button
}{
	{tcell.Button1, mouse.ButtonLeft},
	{tcell.Button3, mouse.ButtonMiddle},
	{tcell.Button2, mouse.ButtonRight},
}

var wheelNames = []struct {
	mask tcell.ButtonMask
	b    mouse.Button
}{
	{tcell.WheelUp, mouse.ButtonWheelUp},
	{tcell.WheelDown, mouse.ButtonWheelDown},
	{tcell.WheelLeft, mouse.ButtonWheelLeft},
	{tcell.WheelRight, mouse.ButtonWheelRight},
}

// convertMouse reports crossings, button transitions, wheel steps and
// motion. While a button is down the window it was pressed in keeps
// receiving the pointer.
func (s *Screen) convertMouse(ev *tcell.EventMouse) []host.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	cx, cy := ev.Position()
	p := image.Pt(cx*CellSize.X+CellSize.X/2, cy*CellSize.Y+CellSize.Y/2)
	mods := modifiers(ev.Modifiers())
	buttons := ev.Buttons()

	var out []host.Event
	w := s.windowAt(p)
	if w != s.under && s.grab == nil {
		if u := s.under; u != nil {
			q := p.Sub(u.bounds.Min)
			out = append(out, host.Event{Window: u.id, Body: host.CrossingEvent{Entered: false, X: q.X, Y: q.Y}})
		}
		if w != nil {
			q := p.Sub(w.bounds.Min)
			out = append(out, host.Event{Window: w.id, Body: host.CrossingEvent{Entered: true, X: q.X, Y: q.Y}})
		}
		s.under = w
	}
	target := w
	if s.grab != nil {
		target = s.grab
	}
	if target == nil {
		s.buttons = buttons & (tcell.Button1 | tcell.Button2 | tcell.Button3)
		return out
	}
	q := p.Sub(target.bounds.Min)
	me := func(b mouse.Button, dir mouse.Direction) host.Event {
		return host.Event{Window: target.id, Body: mouse.Event{
			X: float32(q.X), Y: float32(q.Y), Button: b, Modifiers: mods, Direction: dir,
		}}
	}

	moved := true
	for _, n := range buttonNames {
		was, is := s.buttons&n.mask != 0, buttons&n.mask != 0
		switch {
		case is && !was:
			if s.focus != target {
				if s.focus != nil {
					out = append(out, host.Event{Window: s.focus.id, Body: host.FocusEvent{Gained: false}})
				}
				out = append(out, host.Event{Window: target.id, Body: host.FocusEvent{Gained: true}})
				s.focus = target
			}
			s.grab = target
			out = append(out, me(n.b, mouse.DirPress))
			moved = false
		case was && !is:
			out = append(out, me(n.b, mouse.DirRelease))
			moved = false
		}
	}
	for _, n := range wheelNames {
		if buttons&n.mask != 0 {
			out = append(out, me(n.b, mouse.DirStep))
			moved = false
		}
	}
	if moved {
		out = append(out, me(mouse.ButtonNone, mouse.DirNone))
	}
	s.buttons = buttons & (tcell.Button1 | tcell.Button2 | tcell.Button3)
	if s.buttons == 0 {
		s.grab = nil
	}
	return out
}
