package cart

import (
	"sync"

	"github.com/google/uuid"
)

// Store keeps one cart per browser session, keyed by the session ID from the
// cart cookie. Carts are never persisted; a server restart starts everyone
// with an empty cart, which matches the throwaway nature of a cart.
type Store struct {
	mu    sync.RWMutex
	carts map[uuid.UUID]*Cart
}

// NewStore creates an empty cart store.
func NewStore() *Store {
	return &Store{carts: make(map[uuid.UUID]*Cart)}
}

// Get returns a copy of the session's cart. A session with no cart yet gets
// an empty one. Copies keep callers from mutating shared state outside Update.
func (s *Store) Get(sessionID uuid.UUID) Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[sessionID]
	if !ok {
		return Cart{}
	}
	return copyCart(c)
}

// Update applies fn to the session's cart under the write lock and returns
// a copy of the result. fn's error aborts nothing: the cart methods already
// leave the cart untouched on rejection, so the error just propagates.
func (s *Store) Update(sessionID uuid.UUID, fn func(*Cart) error) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[sessionID]
	if !ok {
		c = &Cart{}
		s.carts[sessionID] = c
	}
	err := fn(c)
	return copyCart(c), err
}

// Delete discards the session's cart entirely.
func (s *Store) Delete(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}

func copyCart(c *Cart) Cart {
	out := Cart{Lines: make([]Line, len(c.Lines))}
	copy(out.Lines, c.Lines)
	return out
}
