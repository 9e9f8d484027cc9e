package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velstore/storefront/internal/cart"
	"github.com/velstore/storefront/internal/checkout"
	"github.com/velstore/storefront/internal/domain"
	"github.com/velstore/storefront/internal/orders"
	"github.com/velstore/storefront/internal/promo"
)

type mockCartService struct {
	cart   *domain.Cart
	err    error
	added  []int64
	setQty map[int64]int
}

func (m *mockCartService) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.cart != nil {
		return m.cart, nil
	}
	return &domain.Cart{UserID: userID}, nil
}

func (m *mockCartService) AddItem(_ context.Context, _ string, productID int64, _ int) error {
	if m.err != nil {
		return m.err
	}
	m.added = append(m.added, productID)
	return nil
}

func (m *mockCartService) SetQuantity(_ context.Context, _ string, productID int64, quantity int) error {
	if m.setQty == nil {
		m.setQty = map[int64]int{}
	}
	m.setQty[productID] = quantity
	return m.err
}

func (m *mockCartService) RemoveItem(context.Context, string, int64) error { return m.err }
func (m *mockCartService) Clear(context.Context, string) error             { return m.err }

func (m *mockCartService) Summarize(context.Context, string) (*cart.Summary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &cart.Summary{ItemCount: 3, Subtotal: decimal.NewFromInt(250)}, nil
}

type mockCheckoutService struct {
	quote    *checkout.Quote
	order    *domain.Order
	quoteErr error
	coErr    error
}

func (m *mockCheckoutService) BuildQuote(context.Context, string, string, string) (*checkout.Quote, error) {
	if m.quoteErr != nil {
		return nil, m.quoteErr
	}
	return m.quote, nil
}

func (m *mockCheckoutService) Checkout(context.Context, *checkout.Request) (*domain.Order, error) {
	if m.coErr != nil {
		return nil, m.coErr
	}
	return m.order, nil
}

type mockOrderReader struct {
	order *domain.Order
	list  []*domain.Order
	err   error
}

func (m *mockOrderReader) GetOrderByID(context.Context, uuid.UUID) (*domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

func (m *mockOrderReader) ListOrdersByUserID(context.Context, string) ([]*domain.Order, error) {
	return m.list, m.err
}

func authed(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), "user_id", userID))
}

func TestGetCart_Success(t *testing.T) {
	svc := &mockCartService{cart: &domain.Cart{
		UserID: "user-1",
		Items:  []domain.CartItem{{ProductID: 1, Quantity: 2}},
	}}
	handler := NewCartHandler(svc, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("GET", "/", nil), "user-1")

	handler.GetCart(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	var response domain.Cart
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, "user-1", response.UserID)
	require.Len(t, response.Items, 1)
}

func TestGetCart_Unauthorized(t *testing.T) {
	handler := NewCartHandler(&mockCartService{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.GetCart(recorder, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAddItem_Validation(t *testing.T) {
	svc := &mockCartService{}
	handler := NewCartHandler(svc, 5*time.Second)

	cases := []struct {
		name string
		body string
	}{
		{"zero quantity", `{"product_id":1,"quantity":0}`},
		{"excessive quantity", `{"product_id":1,"quantity":100}`},
		{"bad product id", `{"product_id":0,"quantity":1}`},
		{"malformed json", `{`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := authed(httptest.NewRequest("POST", "/", bytes.NewBufferString(tc.body)), "user-1")

			handler.AddItem(recorder, request)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Empty(t, svc.added)
		})
	}
}

func TestAddItem_Success(t *testing.T) {
	svc := &mockCartService{}
	handler := NewCartHandler(svc, 5*time.Second)

	recorder := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"product_id":7,"quantity":2}`)
	request := authed(httptest.NewRequest("POST", "/", body), "user-1")

	handler.AddItem(recorder, request)

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, []int64{7}, svc.added)
}

func TestQuote_PromoRejected(t *testing.T) {
	svc := &mockCheckoutService{
		quoteErr: &promo.ValidationError{Code: "NOPE", Reason: promo.ReasonCodeNotFound},
	}
	handler := NewCheckoutHandler(svc, 5*time.Second)

	recorder := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"zone_id":"cairo","promo_code":"NOPE"}`)
	request := authed(httptest.NewRequest("POST", "/", body), "user-1")

	handler.Quote(recorder, request)

	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	var response ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, "code_not_found", response.Code)
}

func TestValidatePromo_RejectionIsOK(t *testing.T) {
	svc := &mockCheckoutService{
		quoteErr: &promo.ValidationError{
			Code:      "WELCOME10",
			Reason:    promo.ReasonBelowMinimum,
			Shortfall: decimal.NewFromInt(40),
		},
	}
	handler := NewCheckoutHandler(svc, 5*time.Second)

	recorder := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"promo_code":"WELCOME10"}`)
	request := authed(httptest.NewRequest("POST", "/", body), "user-1")

	handler.ValidatePromo(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	var response PromoValidationDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.False(t, response.Valid)
	assert.Equal(t, "below_minimum", response.Reason)
	assert.Equal(t, "40.00", response.Shortfall)
}

func TestValidatePromo_Valid(t *testing.T) {
	svc := &mockCheckoutService{
		quote: &checkout.Quote{PromoCode: "SAVE25"},
	}
	handler := NewCheckoutHandler(svc, 5*time.Second)

	recorder := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"promo_code":"save25"}`)
	request := authed(httptest.NewRequest("POST", "/", body), "user-1")

	handler.ValidatePromo(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	var response PromoValidationDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.True(t, response.Valid)
	assert.Equal(t, "SAVE25", response.Code)
}

func TestCheckout_MissingIdempotencyKey(t *testing.T) {
	handler := NewCheckoutHandler(&mockCheckoutService{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"zone_id":"cairo"}`)
	request := authed(httptest.NewRequest("POST", "/", body), "user-1")

	handler.Checkout(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCheckout_EmptyCart(t *testing.T) {
	handler := NewCheckoutHandler(&mockCheckoutService{coErr: checkout.ErrEmptyCart}, 5*time.Second)

	recorder := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"zone_id":"cairo","idempotency_key":"key-1"}`)
	request := authed(httptest.NewRequest("POST", "/", body), "user-1")

	handler.Checkout(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCheckout_Success(t *testing.T) {
	order := &domain.Order{ID: uuid.New(), UserID: "user-1", Status: domain.OrderStatusConfirmed}
	handler := NewCheckoutHandler(&mockCheckoutService{order: order}, 5*time.Second)

	recorder := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"zone_id":"cairo","idempotency_key":"key-1"}`)
	request := authed(httptest.NewRequest("POST", "/", body), "user-1")

	handler.Checkout(recorder, request)

	require.Equal(t, http.StatusCreated, recorder.Code)
	var response domain.Order
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, order.ID, response.ID)
}

func TestGetOrder_OtherUsersOrderHidden(t *testing.T) {
	order := &domain.Order{ID: uuid.New(), UserID: "someone-else"}
	handler := NewOrdersHandler(&mockOrderReader{order: order}, 5*time.Second)

	router := chi.NewRouter()
	router.Get("/orders/{order_id}", handler.GetOrder)

	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("GET", "/orders/"+order.ID.String(), nil), "user-1")

	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestListOrders_EmptyIsNotNull(t *testing.T) {
	handler := NewOrdersHandler(&mockOrderReader{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("GET", "/", nil), "user-1")

	handler.ListOrders(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, "[]", recorder.Body.String())
}

func TestGetOrder_NotFound(t *testing.T) {
	handler := NewOrdersHandler(&mockOrderReader{err: orders.ErrOrderNotFound}, 5*time.Second)

	router := chi.NewRouter()
	router.Get("/orders/{order_id}", handler.GetOrder)

	recorder := httptest.NewRecorder()
	request := authed(httptest.NewRequest("GET", "/orders/"+uuid.NewString(), nil), "user-1")

	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
