package xlib

import (
	"fmt"
	"image"
	"os"
	"strconv"
)

// Options configures a Display.
type Options struct {
	// Name is the display name reported by DisplayString.
	// The default is ":0".
	Name string

	// Size is the root window geometry in window-size syntax:
	// WxH, WxH@x,y, or x0,y0,x1,y1. The default is $winsize,
	// then the host display size, then 800x600.
	Size string

	// MaxResources bounds the number of live resources.
	// Zero means the resource table limit.
	MaxResources int

	// StashSize bounds the follow-up events held for the next
	// NextEvent call. The default is 4.
	StashSize int
}

const (
	defaultWidth     = 800
	defaultHeight    = 600
	defaultStashSize = 4
)

// rootSize picks the root window size from opts, $winsize and the host.
func (o *Options) rootSize(hostSize image.Point) (image.Point, error) {
	s := o.Size
	if s == "" {
		s = os.Getenv("winsize")
	}
	if s != "" {
		r, _, err := ParseSize(s)
		if err != nil {
			return image.Point{}, err
		}
		if r.Dx() <= 0 || r.Dy() <= 0 {
			return image.Point{}, fmt.Errorf("empty window size '%s'", s)
		}
		return r.Size(), nil
	}
	if hostSize.X > 0 && hostSize.Y > 0 {
		return hostSize, nil
	}
	return image.Pt(defaultWidth, defaultHeight), nil
}

// ParseSize parses a window size in one of the forms WxH, WxH@x,y
// or x0,y0,x1,y1 (spaces may replace the commas).
// havemin reports whether the string gave a position.
func ParseSize(s string) (r image.Rectangle, havemin bool, err error) {
	orig := s
	isdigit := func(c byte) bool { return '0' <= c && c <= '9' }
	// num parses a leading decimal number and returns the rest of s.
	num := func(s string) (int, string, bool) {
		i := 0
		for i < len(s) && isdigit(s[i]) {
			i++
		}
		if i == 0 {
			return 0, s, false
		}
		n, err := strconv.Atoi(s[:i])
		return n, s[i:], err == nil
	}
	oops := fmt.Errorf("bad syntax in window size '%s'", orig)

	i, s, ok := num(s)
	if !ok || s == "" {
		return r, false, oops
	}
	if s[0] == 'x' {
		j, rest, ok := num(s[1:])
		if !ok {
			return r, false, oops
		}
		r = image.Rect(0, 0, i, j)
		if rest == "" {
			return r, false, nil
		}
		if rest[0] != '@' {
			return image.Rectangle{}, false, oops
		}
		x, rest, ok := num(rest[1:])
		if !ok || rest == "" || (rest[0] != ',' && rest[0] != ' ') {
			return image.Rectangle{}, false, oops
		}
		y, rest, ok := num(rest[1:])
		if !ok || rest != "" {
			return image.Rectangle{}, false, oops
		}
		return r.Add(image.Pt(x, y)), true, nil
	}

	c := s[0]
	if c != ' ' && c != ',' {
		return r, false, oops
	}
	var v [3]int
	s = s[1:]
	for k := range v {
		v[k], s, ok = num(s)
		if !ok {
			return r, false, oops
		}
		if k < 2 {
			if s == "" || s[0] != c {
				return r, false, oops
			}
			s = s[1:]
		}
	}
	if s != "" {
		return r, false, oops
	}
	return image.Rect(i, v[0], v[1], v[2]), true, nil
}
