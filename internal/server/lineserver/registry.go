package lineserver

import (
	"fmt"
	"math"
)

// Handle identifies a registered connection. The low 32 bits are the slot
// index and the high 32 bits its generation. Generations start at 1, so
// no Handle is ever 0.
type Handle uint64

func makeHandle(index, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(index))
}

func (h Handle) index() uint32 { return uint32(h) }

func (h Handle) generation() uint32 { return uint32(h >> 32) }

func (h Handle) String() string {
	return fmt.Sprintf("%d#%d", h.index(), h.generation())
}

type slot struct {
	gen  uint32
	conn *Conn
}

// Registry maps handles to connections. Removing a connection bumps its
// slot's generation, so a handle that outlives its connection resolves to
// nil instead of to whoever reuses the slot.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	slots []slot
	free  []uint32
	live  int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Insert stores c and returns its handle.
func (r *Registry) Insert(c *Conn) Handle {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot{gen: 1})
	}
	r.slots[idx].conn = c
	r.live++
	return makeHandle(idx, r.slots[idx].gen)
}

// Get returns the connection for h, or nil if h is unknown or stale.
func (r *Registry) Get(h Handle) *Conn {
	s := r.lookup(h)
	if s == nil {
		return nil
	}
	return s.conn
}

// Remove deletes and returns the connection for h, or nil if h is unknown
// or stale.
func (r *Registry) Remove(h Handle) *Conn {
	s := r.lookup(h)
	if s == nil {
		return nil
	}
	c := s.conn
	s.conn = nil
	r.live--

	// A slot whose generation would wrap is never reused.
	if s.gen == math.MaxUint32 {
		return c
	}
	s.gen++
	r.free = append(r.free, h.index())
	return c
}

// Len returns the number of registered connections.
func (r *Registry) Len() int { return r.live }

// Range calls fn for every registered connection until fn returns false.
// fn must not insert or remove.
func (r *Registry) Range(fn func(Handle, *Conn) bool) {
	for i := range r.slots {
		s := &r.slots[i]
		if s.conn == nil {
			continue
		}
		if !fn(makeHandle(uint32(i), s.gen), s.conn) {
			return
		}
	}
}

func (r *Registry) lookup(h Handle) *slot {
	idx := h.index()
	if int(idx) >= len(r.slots) {
		return nil
	}
	s := &r.slots[idx]
	if s.conn == nil || s.gen != h.generation() {
		return nil
	}
	return s
}
