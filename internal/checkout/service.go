// Package checkout orchestrates the purchase flow: cart snapshot, pricing,
// promo validation, inventory reservation, payment and order creation.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velstore/storefront/internal/domain"
	"github.com/velstore/storefront/internal/inventory"
	"github.com/velstore/storefront/internal/orders"
	"github.com/velstore/storefront/internal/payment"
	"github.com/velstore/storefront/internal/pricing"
	"github.com/velstore/storefront/internal/promo"
	"github.com/velstore/storefront/internal/shipping"
)

var (
	ErrEmptyCart             = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition     = errors.New("illegal transition of checkout status")
	ErrMissingIdempotencyKey = errors.New("idempotency key is required")
)

type CartStore interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

type Catalog interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListActiveOffers(ctx context.Context, now time.Time) ([]domain.ProductOffer, error)
	ListPromotions(ctx context.Context) ([]domain.Promotion, error)
	IncrementUsage(ctx context.Context, code string) error
}

type InventoryHolder interface {
	Reserve(checkoutID string, lines []inventory.Line) (*inventory.Reservation, error)
	Confirm(reservationID string) error
	Release(reservationID string) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
}

type Request struct {
	UserID         string
	ZoneID         string
	PromoCode      string
	IdempotencyKey string
}

// Quote is a priced view of a cart with no side effects.
type Quote struct {
	Items            []domain.LineItem
	Breakdown        domain.PricingBreakdown
	PromoCode        string
	DeliveryEstimate string
}

type Service struct {
	cart      CartStore
	catalog   Catalog
	inv       InventoryHolder
	processor payment.Processor
	orders    OrderStore
	zones     *shipping.Table

	freeShippingThreshold decimal.Decimal
	currency              string
}

func NewService(
	cart CartStore,
	catalog Catalog,
	inv InventoryHolder,
	processor payment.Processor,
	orderStore OrderStore,
	zones *shipping.Table,
	freeShippingThreshold decimal.Decimal,
	currency string,
) *Service {
	return &Service{
		cart:                  cart,
		catalog:               catalog,
		inv:                   inv,
		processor:             processor,
		orders:                orderStore,
		zones:                 zones,
		freeShippingThreshold: freeShippingThreshold,
		currency:              currency,
	}
}

// BuildQuote prices the user's current cart without reserving stock, charging
// or consuming promo usage.
func (s *Service) BuildQuote(ctx context.Context, userID, zoneID, promoCode string) (*Quote, error) {
	now := time.Now()

	cart, err := s.cart.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines, err := s.snapshotLines(ctx, cart.Items, now)
	if err != nil {
		return nil, err
	}

	promotion, err := s.validatePromo(ctx, promoCode, lines, now)
	if err != nil {
		return nil, err
	}

	breakdown, err := pricing.BuildBreakdown(pricing.QuoteInput{
		Items:                 lines,
		ZoneID:                zoneID,
		Promotion:             promotion,
		Zones:                 s.zones.Zones(),
		FreeShippingThreshold: s.freeShippingThreshold,
		Currency:              s.currency,
	})
	if err != nil {
		return nil, err
	}

	quote := &Quote{
		Items:     lines,
		Breakdown: breakdown,
		PromoCode: appliedCode(promotion),
	}
	if zone, err := s.zones.Lookup(zoneID); err == nil {
		quote.DeliveryEstimate = zone.DeliveryEstimate
	}
	return quote, nil
}

// Checkout runs the full purchase flow and returns the created order.
// Retrying with the same idempotency key returns the already created order
// without charging again.
func (s *Service) Checkout(ctx context.Context, req *Request) (*domain.Order, error) {
	if req.IdempotencyKey == "" {
		return nil, ErrMissingIdempotencyKey
	}

	existing, err := s.orders.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey)
	if err == nil {
		log.Printf("duplicate checkout detected idempotency_key = %v order_id = %v", req.IdempotencyKey, existing.ID)
		return existing, nil
	}
	if !errors.Is(err, orders.ErrOrderNotFound) {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}

	quote, err := s.BuildQuote(ctx, req.UserID, req.ZoneID, req.PromoCode)
	if err != nil {
		return nil, err
	}

	checkoutID := uuid.New()
	status := StatusInitiated

	reservation, err := s.reserve(checkoutID.String(), quote.Items, &status)
	if err != nil {
		return nil, err
	}

	receipt, err := s.charge(ctx, checkoutID.String(), quote.Breakdown.GrandTotal, reservation, &status)
	if err != nil {
		return nil, err
	}

	order, err := s.placeOrder(ctx, checkoutID, req, quote, receipt, &status)
	if err != nil {
		if releaseErr := s.inv.Release(reservation.ID); releaseErr != nil {
			log.Printf("failed to release reservation %v after order failure: %v", reservation.ID, releaseErr)
		}
		return nil, err
	}

	// Post-order steps must not fail the checkout; the order exists and the
	// customer has been charged.
	if err := s.inv.Confirm(reservation.ID); err != nil {
		log.Printf("failed to confirm reservation %v for order %v: %v", reservation.ID, order.ID, err)
	}
	if quote.PromoCode != "" {
		if err := s.catalog.IncrementUsage(ctx, quote.PromoCode); err != nil {
			log.Printf("failed to increment usage for promo %v on order %v: %v", quote.PromoCode, order.ID, err)
		}
	}
	if err := s.cart.Clear(ctx, req.UserID); err != nil {
		log.Printf("failed to clear cart for user %v after order %v: %v", req.UserID, order.ID, err)
	}

	return order, nil
}

func (s *Service) validatePromo(ctx context.Context, code string, lines []domain.LineItem, now time.Time) (*domain.Promotion, error) {
	if code == "" {
		return nil, nil
	}

	catalog, err := s.catalog.ListPromotions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}

	goods := pricing.ComputeSubtotal(lines).Sub(pricing.ComputeItemDiscountTotal(lines))
	return promo.Validate(code, goods, catalog, now)
}

func (s *Service) reserve(checkoutID string, lines []domain.LineItem, status *Status) (*inventory.Reservation, error) {
	if !CanTransitionTo(*status, StatusInventoryReserved) {
		return nil, ErrIllegalTransition
	}

	invLines := make([]inventory.Line, 0, len(lines))
	for _, line := range lines {
		invLines = append(invLines, inventory.Line{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	reservation, err := s.inv.Reserve(checkoutID, invLines)
	if err != nil {
		*status = StatusFailed
		return nil, fmt.Errorf("failed to reserve inventory: %w", err)
	}

	*status = StatusInventoryReserved
	return reservation, nil
}

func (s *Service) charge(ctx context.Context, checkoutID string, amount decimal.Decimal, reservation *inventory.Reservation, status *Status) (*payment.Receipt, error) {
	if !CanTransitionTo(*status, StatusPaymentCompleted) {
		return nil, ErrIllegalTransition
	}

	receipt, err := s.processor.Charge(ctx, checkoutID, amount)
	if err != nil {
		*status = StatusFailed
		if releaseErr := s.inv.Release(reservation.ID); releaseErr != nil {
			log.Printf("failed to release reservation %v after payment failure: %v", reservation.ID, releaseErr)
		}
		return nil, fmt.Errorf("payment failed: %w", err)
	}

	*status = StatusPaymentCompleted
	return receipt, nil
}

func (s *Service) placeOrder(ctx context.Context, checkoutID uuid.UUID, req *Request, quote *Quote, receipt *payment.Receipt, status *Status) (*domain.Order, error) {
	if !CanTransitionTo(*status, StatusCompleted) {
		return nil, ErrIllegalTransition
	}

	items := make([]domain.OrderItem, 0, len(quote.Items))
	for _, line := range quote.Items {
		items = append(items, domain.OrderItem{
			ProductID:           line.ProductID,
			ProductName:         line.ProductName,
			Quantity:            line.Quantity,
			UnitPrice:           line.UnitPrice,
			ItemDiscountPercent: line.ItemDiscountPercent,
		})
	}

	now := time.Now()
	order := &domain.Order{
		ID:               uuid.New(),
		CheckoutID:       checkoutID,
		IdempotencyKey:   req.IdempotencyKey,
		UserID:           req.UserID,
		Items:            items,
		Breakdown:        quote.Breakdown,
		PromoCode:        quote.PromoCode,
		ShippingZoneID:   req.ZoneID,
		DeliveryEstimate: quote.DeliveryEstimate,
		PaymentTxnID:     receipt.TransactionID,
		Status:           domain.OrderStatusConfirmed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		*status = StatusFailed
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	*status = StatusCompleted
	return order, nil
}

func appliedCode(p *domain.Promotion) string {
	if p == nil {
		return ""
	}
	return p.Code
}
