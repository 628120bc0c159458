package memory

// Store maps keys to values. Keys are unique; iteration order is undefined.
type Store struct {
	data map[string]string
}

// Option configures the Store.
type Option func(*Store)

// WithCapacity pre-sizes the underlying map.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.data = make(map[string]string, n)
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	if s.data == nil {
		s.data = make(map[string]string)
	}
	return s
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(key, value string) {
	s.data[key] = value
}

// Len returns the number of keys.
func (s *Store) Len() int {
	return len(s.data)
}
