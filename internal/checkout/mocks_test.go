package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velstore/storefront/internal/catalog"
	"github.com/velstore/storefront/internal/domain"
	"github.com/velstore/storefront/internal/inventory"
	"github.com/velstore/storefront/internal/orders"
	"github.com/velstore/storefront/internal/payment"
)

type mockCartStore struct {
	cart     *domain.Cart
	getErr   error
	cleared  []string
	clearErr error
}

func (m *mockCartStore) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.cart != nil {
		return m.cart, nil
	}
	return &domain.Cart{UserID: userID}, nil
}

func (m *mockCartStore) Clear(_ context.Context, userID string) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared = append(m.cleared, userID)
	return nil
}

type mockCatalog struct {
	products   map[int64]*domain.Product
	offers     []domain.ProductOffer
	promotions []domain.Promotion
	usageCodes []string
	usageErr   error
}

func (m *mockCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func (m *mockCatalog) ListActiveOffers(_ context.Context, _ time.Time) ([]domain.ProductOffer, error) {
	return m.offers, nil
}

func (m *mockCatalog) ListPromotions(_ context.Context) ([]domain.Promotion, error) {
	return m.promotions, nil
}

func (m *mockCatalog) IncrementUsage(_ context.Context, code string) error {
	if m.usageErr != nil {
		return m.usageErr
	}
	m.usageCodes = append(m.usageCodes, code)
	return nil
}

type mockInventory struct {
	reserveErr error
	confirmErr error
	releaseErr error
	reserved   []*inventory.Reservation
	confirmed  []string
	released   []string
}

func (m *mockInventory) Reserve(checkoutID string, lines []inventory.Line) (*inventory.Reservation, error) {
	if m.reserveErr != nil {
		return nil, m.reserveErr
	}
	r := &inventory.Reservation{
		ID:         uuid.New().String(),
		CheckoutID: checkoutID,
		Lines:      lines,
		Status:     inventory.StatusReserved,
	}
	m.reserved = append(m.reserved, r)
	return r, nil
}

func (m *mockInventory) Confirm(reservationID string) error {
	if m.confirmErr != nil {
		return m.confirmErr
	}
	m.confirmed = append(m.confirmed, reservationID)
	return nil
}

func (m *mockInventory) Release(reservationID string) error {
	if m.releaseErr != nil {
		return m.releaseErr
	}
	m.released = append(m.released, reservationID)
	return nil
}

type mockProcessor struct {
	chargeErr   error
	chargeCalls int
	amounts     []decimal.Decimal
}

func (m *mockProcessor) Charge(_ context.Context, checkoutID string, amount decimal.Decimal) (*payment.Receipt, error) {
	m.chargeCalls++
	if m.chargeErr != nil {
		return nil, m.chargeErr
	}
	m.amounts = append(m.amounts, amount)
	return &payment.Receipt{
		TransactionID: "TXN-test",
		CheckoutID:    checkoutID,
		Amount:        amount,
		ChargedAt:     time.Now(),
	}, nil
}

type mockOrderStore struct {
	existing  *domain.Order
	created   *domain.Order
	createErr error
}

func (m *mockOrderStore) CreateOrder(_ context.Context, order *domain.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = order
	return nil
}

func (m *mockOrderStore) GetOrderByIdempotencyKey(_ context.Context, key string) (*domain.Order, error) {
	if m.existing != nil && m.existing.IdempotencyKey == key {
		return m.existing, nil
	}
	return nil, orders.ErrOrderNotFound
}
