package cart

import "sync"

// Store owns the per-table carts. Each cart belongs to exactly one active
// table session; the lock only serializes HTTP handlers touching the map.
type Store struct {
	mu    sync.Mutex
	carts map[int64]*Cart
}

// NewStore returns an empty cart store.
func NewStore() *Store {
	return &Store{carts: map[int64]*Cart{}}
}

// With runs fn against the table's cart, creating it on first use.
func (s *Store) With(tableID int64, fn func(*Cart)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[tableID]
	if !ok {
		c = New()
		s.carts[tableID] = c
	}
	fn(c)
}

// Reset discards the table's cart, e.g. after a successful checkout.
func (s *Store) Reset(tableID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, tableID)
}
