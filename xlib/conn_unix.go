//go:build unix

package xlib

import (
	"golang.org/x/sys/unix"
)

// readiness counts events produced but not yet delivered. The count is
// mirrored as bytes in a non-blocking pipe, so the read end can be
// handed to select(2)-style loops as the connection descriptor.
type readiness struct {
	n    int
	r, w int
}

func newReadiness() (*readiness, error) {
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		return nil, err
	}
	for _, fd := range p {
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(p[0])
			unix.Close(p[1])
			return nil, err
		}
	}
	return &readiness{r: p[0], w: p[1]}, nil
}

func (r *readiness) inc() {
	r.n++
	if r.w < 0 {
		return
	}
	if _, err := unix.Write(r.w, []byte{0}); err != nil {
		Logger().Debug("readiness pipe write", "err", err)
	}
}

func (r *readiness) dec() {
	if r.n == 0 {
		return
	}
	r.n--
	if r.r < 0 {
		return
	}
	var b [1]byte
	if _, err := unix.Read(r.r, b[:]); err != nil {
		Logger().Debug("readiness pipe read", "err", err)
	}
}

func (r *readiness) count() int { return r.n }

func (r *readiness) fd() int { return r.r }

func (r *readiness) close() {
	if r.r >= 0 {
		unix.Close(r.r)
		unix.Close(r.w)
		r.r, r.w = -1, -1
	}
}
