// Package xid allocates the resource identifiers handed to clients.
//
// Identifiers are generation-checked indices into a slot table:
// the low 21 bits select a slot and the next 8 bits hold the slot's
// generation, which changes every time the slot is freed. An identifier
// therefore stops resolving the moment its resource is freed, even if
// the slot is later reused. Identifiers are never zero.
package xid

import (
	"errors"
	"fmt"
)

// A Kind tags the resource stored under an identifier.
type Kind uint8

const (
	None Kind = iota
	Window
	Pixmap
	GC
	Colormap
)

var kindNames = [...]string{
	None:     "none",
	Window:   "window",
	Pixmap:   "pixmap",
	GC:       "gc",
	Colormap: "colormap",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

const (
	indexBits = 21
	genBits   = 8
	indexMask = 1<<indexBits - 1
	genMask   = 1<<genBits - 1

	// MaxSlots is the largest table that can be addressed.
	MaxSlots = indexMask
)

var (
	ErrExhausted = errors.New("xid: resource table exhausted")
	ErrStale     = errors.New("xid: unknown or freed identifier")
)

type slot struct {
	gen  uint32
	kind Kind
	val  any
}

// A Table maps identifiers to typed resources.
// It is not safe for concurrent use.
type Table struct {
	slots []slot
	free  []uint32
	max   int
	n     int
}

// New returns a table holding at most max live resources.
// A max of zero or less, or larger than MaxSlots, means MaxSlots.
func New(max int) *Table {
	if max <= 0 || max > MaxSlots {
		max = MaxSlots
	}
	return &Table{max: max}
}

func pack(index, gen uint32) uint32 { return gen<<indexBits | index }

func unpack(id uint32) (index, gen uint32) {
	return id & indexMask, id >> indexBits & genMask
}

// Alloc stores v under a fresh identifier of kind k.
// It returns ErrExhausted, leaving the table unchanged, when the table is full.
func (t *Table) Alloc(k Kind, v any) (uint32, error) {
	if k == None {
		return 0, fmt.Errorf("xid: cannot allocate kind %v", k)
	}
	if t.n >= t.max {
		return 0, ErrExhausted
	}
	var index uint32
	if n := len(t.free); n > 0 {
		index = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		index = uint32(len(t.slots))
		t.slots = append(t.slots, slot{gen: 1})
	}
	s := &t.slots[index]
	s.kind = k
	s.val = v
	t.n++
	return pack(index, s.gen), nil
}

// Lookup returns the kind and value stored under id.
func (t *Table) Lookup(id uint32) (Kind, any, bool) {
	s := t.slot(id)
	if s == nil {
		return None, nil, false
	}
	return s.kind, s.val, true
}

// Free releases id. Freeing an identifier twice returns ErrStale.
func (t *Table) Free(id uint32) error {
	s := t.slot(id)
	if s == nil {
		return ErrStale
	}
	s.kind = None
	s.val = nil
	s.gen = (s.gen + 1) & genMask
	if s.gen == 0 {
		s.gen = 1
	}
	index, _ := unpack(id)
	t.free = append(t.free, index)
	t.n--
	return nil
}

// Len reports the number of live resources.
func (t *Table) Len() int { return t.n }

func (t *Table) slot(id uint32) *slot {
	index, gen := unpack(id)
	if id == 0 || int(index) >= len(t.slots) {
		return nil
	}
	s := &t.slots[index]
	if s.kind == None || s.gen != gen {
		return nil
	}
	return s
}
