package lineserver

import (
	"math"
	"testing"
)

func TestRegistry_InsertGetRemove(t *testing.T) {
	r := NewRegistry()
	a, b := &Conn{}, &Conn{}

	ha := r.Insert(a)
	hb := r.Insert(b)
	if ha == 0 || hb == 0 {
		t.Fatal("Insert() returned the zero handle")
	}
	if ha == hb {
		t.Fatal("Insert() returned duplicate handles")
	}
	if r.Get(ha) != a || r.Get(hb) != b {
		t.Fatal("Get() returned the wrong connection")
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}

	if got := r.Remove(ha); got != a {
		t.Errorf("Remove() = %p, want %p", got, a)
	}
	if r.Get(ha) != nil {
		t.Error("Get() of removed handle not nil")
	}
	if r.Remove(ha) != nil {
		t.Error("second Remove() not nil")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRegistry_StaleHandleAfterReuse(t *testing.T) {
	r := NewRegistry()
	old := r.Insert(&Conn{})
	r.Remove(old)

	c := &Conn{}
	fresh := r.Insert(c)
	if fresh.index() != old.index() {
		t.Fatalf("slot not reused: %s vs %s", fresh, old)
	}
	if fresh == old {
		t.Fatal("reused slot kept its generation")
	}
	if r.Get(old) != nil {
		t.Error("stale handle resolved to the new connection")
	}
	if r.Get(fresh) != c {
		t.Error("fresh handle did not resolve")
	}
}

func TestRegistry_UnknownHandle(t *testing.T) {
	r := NewRegistry()
	r.Insert(&Conn{})

	for _, h := range []Handle{0, makeHandle(7, 1), makeHandle(0, 9)} {
		if r.Get(h) != nil {
			t.Errorf("Get(%s) not nil", h)
		}
		if r.Remove(h) != nil {
			t.Errorf("Remove(%s) not nil", h)
		}
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRegistry_RetiresWrappingSlot(t *testing.T) {
	r := NewRegistry()
	h := r.Insert(&Conn{})
	r.slots[h.index()].gen = math.MaxUint32
	h = makeHandle(h.index(), math.MaxUint32)

	if r.Remove(h) == nil {
		t.Fatal("Remove() failed")
	}
	next := r.Insert(&Conn{})
	if next.index() == h.index() {
		t.Error("slot with exhausted generation was reused")
	}
}

func TestRegistry_Range(t *testing.T) {
	r := NewRegistry()
	want := map[Handle]*Conn{}
	for i := 0; i < 4; i++ {
		c := &Conn{}
		want[r.Insert(c)] = c
	}
	for h := range want {
		r.Remove(h)
		delete(want, h)
		break
	}

	seen := 0
	r.Range(func(h Handle, c *Conn) bool {
		if want[h] != c {
			t.Errorf("Range() yielded %s -> %p, want %p", h, c, want[h])
		}
		seen++
		return true
	})
	if seen != 3 {
		t.Errorf("Range() visited %d, want 3", seen)
	}

	seen = 0
	r.Range(func(Handle, *Conn) bool {
		seen++
		return false
	})
	if seen != 1 {
		t.Errorf("Range() did not stop early, visited %d", seen)
	}
}

func TestHandle_String(t *testing.T) {
	if got := makeHandle(3, 2).String(); got != "3#2" {
		t.Errorf("String() = %q, want %q", got, "3#2")
	}
}
