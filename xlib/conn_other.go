//go:build !unix

package xlib

// readiness counts events produced but not yet delivered.
type readiness struct {
	n int
}

func newReadiness() (*readiness, error) { return new(readiness), nil }

func (r *readiness) inc() { r.n++ }

func (r *readiness) dec() {
	if r.n > 0 {
		r.n--
	}
}

func (r *readiness) count() int { return r.n }
func (r *readiness) fd() int    { return -1 }
func (r *readiness) close()     {}
