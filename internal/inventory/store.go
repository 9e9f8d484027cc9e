// Package inventory tracks stock levels and the short-lived reservations a
// checkout holds while payment is in flight.
package inventory

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound     = errors.New("product not stocked")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReservationExpired  = errors.New("reservation has expired")
	ErrInvalidStatus       = errors.New("reservation is not in a reservable state")
)

const (
	// ReservationTTL bounds how long a checkout may hold stock unpaid.
	ReservationTTL = 5 * time.Minute

	cleanupInterval = 30 * time.Second
)

type ReservationStatus string

const (
	StatusReserved  ReservationStatus = "reserved"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusReleased  ReservationStatus = "released"
	StatusExpired   ReservationStatus = "expired"
)

type Line struct {
	ProductID int64
	Quantity  int
}

type Reservation struct {
	ID         string
	CheckoutID string
	Lines      []Line
	Status     ReservationStatus
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

type stock struct {
	total    int
	reserved int
}

// Store is an in-memory stock ledger. Reservations that outlive their TTL are
// swept back into the available pool by a background loop.
type Store struct {
	mu           sync.RWMutex
	stocks       map[int64]*stock
	reservations map[string]*Reservation

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewStore() *Store {
	s := &Store{
		stocks:       make(map[int64]*stock),
		reservations: make(map[string]*Reservation),
		stop:         make(chan struct{}),
	}

	s.wg.Add(1)
	go s.sweepLoop()

	return s
}

func (s *Store) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireStale(time.Now())
		case <-s.stop:
			return
		}
	}
}

func (s *Store) expireStale(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reservations {
		if r.Status == StatusReserved && now.After(r.ExpiresAt) {
			r.Status = StatusExpired
			for _, line := range r.Lines {
				s.stocks[line.ProductID].reserved -= line.Quantity
			}
		}
	}
}

// SetStock sets the absolute stock level for a product.
func (s *Store) SetStock(productID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stocks[productID] = &stock{total: quantity}
}

// Available returns total minus currently reserved stock.
func (s *Store) Available(productID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stocks[productID]
	if !ok {
		return 0
	}
	return st.total - st.reserved
}

// Reserve holds stock for every line or none at all.
func (s *Store) Reserve(checkoutID string, lines []Line) (*Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range lines {
		st, ok := s.stocks[line.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		if st.total-st.reserved < line.Quantity {
			return nil, ErrInsufficientStock
		}
	}

	for _, line := range lines {
		s.stocks[line.ProductID].reserved += line.Quantity
	}

	now := time.Now()
	r := &Reservation{
		ID:         uuid.New().String(),
		CheckoutID: checkoutID,
		Lines:      lines,
		Status:     StatusReserved,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ReservationTTL),
	}
	s.reservations[r.ID] = r
	return r, nil
}

// Confirm permanently deducts a reservation's stock after payment.
func (s *Store) Confirm(reservationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[reservationID]
	if !ok {
		return ErrReservationNotFound
	}
	if r.Status != StatusReserved {
		return ErrInvalidStatus
	}
	if time.Now().After(r.ExpiresAt) {
		return ErrReservationExpired
	}

	for _, line := range r.Lines {
		st := s.stocks[line.ProductID]
		st.total -= line.Quantity
		st.reserved -= line.Quantity
	}

	r.Status = StatusConfirmed
	return nil
}

// Release returns a reservation's stock to the available pool, used when
// payment fails.
func (s *Store) Release(reservationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[reservationID]
	if !ok {
		return ErrReservationNotFound
	}
	if r.Status != StatusReserved {
		return ErrInvalidStatus
	}

	for _, line := range r.Lines {
		s.stocks[line.ProductID].reserved -= line.Quantity
	}

	r.Status = StatusReleased
	return nil
}

// Close stops the sweep loop and waits for it to finish.
func (s *Store) Close() error {
	close(s.stop)
	s.wg.Wait()
	return nil
}
