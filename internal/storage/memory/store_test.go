package memory

import "testing"

func TestStore_GetMissing(t *testing.T) {
	s := New()

	v, ok := s.Get("missing")
	if ok {
		t.Fatalf("Get(missing) ok = true, value %q", v)
	}
	if v != "" {
		t.Errorf("Get(missing) value = %q, want empty", v)
	}
}

func TestStore_PutGet(t *testing.T) {
	s := New()
	s.Put("a", "1")

	v, ok := s.Get("a")
	if !ok {
		t.Fatal("Get(a) ok = false")
	}
	if v != "1" {
		t.Errorf("Get(a) = %q, want %q", v, "1")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStore_Overwrite(t *testing.T) {
	s := New()
	s.Put("a", "1")
	s.Put("a", "2")

	v, _ := s.Get("a")
	if v != "2" {
		t.Errorf("Get(a) = %q, want %q", v, "2")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after overwrite", s.Len())
	}
}

func TestStore_WithCapacity(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"positive", 128},
		{"zero", 0},
		{"negative", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(WithCapacity(tt.n))
			s.Put("k", "v")
			if s.Len() != 1 {
				t.Errorf("Len() = %d, want 1", s.Len())
			}
		})
	}
}
