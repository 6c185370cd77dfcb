package cart

import (
	"sync"

	"agribazaar/api/internal/catalog"
)

// Slots holds the current cart of every live session. The reducer stays
// pure; Slots only swaps snapshots, so the last applied Add wins.
type Slots struct {
	m sync.Map // sessionID -> *slot
}

type slot struct {
	mu   sync.Mutex
	cart Cart
}

func (s *Slots) slot(id int64) *slot {
	v, _ := s.m.LoadOrStore(id, &slot{})
	return v.(*slot)
}

// Get возвращает текущий снимок корзины (пустой, если сессии нет).
func (s *Slots) Get(id int64) Cart {
	v, ok := s.m.Load(id)
	if !ok {
		return Cart{}
	}
	sl := v.(*slot)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.cart
}

// Add reads the latest snapshot, applies Add and stores the result.
func (s *Slots) Add(id int64, p catalog.Product) (Cart, Added, error) {
	sl := s.slot(id)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	next, added, err := Add(sl.cart, p)
	if err != nil {
		return sl.cart, Added{}, err
	}
	sl.cart = next
	return next, added, nil
}

// Drop ends the session; its cart is gone for good.
func (s *Slots) Drop(id int64) {
	s.m.Delete(id)
}
