// Package httpapi is the HTTP surface of the storefront: public catalog and
// cart routes, the checkout flow, and the admin promotion endpoints.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Products *ProductHandler
	Cart     *CartHandler
	Wishlist *WishlistHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
	Admin    *AdminHandler
}

func NewRouter(h Handlers, requestTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(MockAuthMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.ListProducts)
			r.Get("/{product_id}", h.Products.GetProduct)
		})
		r.Get("/offers", h.Products.ListOffers)
		r.Get("/shipping-zones", h.Products.ListShippingZones)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Get("/summary", h.Cart.GetSummary)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{product_id}", h.Cart.UpdateQuantity)
			r.Delete("/items/{product_id}", h.Cart.RemoveItem)
			r.Delete("/", h.Cart.ClearCart)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", h.Wishlist.Get)
			r.Post("/items/{product_id}", h.Wishlist.Add)
			r.Delete("/items/{product_id}", h.Wishlist.Remove)
			r.Post("/items/{product_id}/move-to-cart", h.Wishlist.MoveToCart)
		})

		r.Post("/pricing/quote", h.Checkout.Quote)
		r.Post("/promo/validate", h.Checkout.ValidatePromo)
		r.Post("/checkout", h.Checkout.Checkout)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.ListOrders)
			r.Get("/{order_id}", h.Orders.GetOrder)
		})

		r.Route("/admin/promotions", func(r chi.Router) {
			r.Get("/", h.Admin.ListPromotions)
			r.Post("/", h.Admin.CreatePromotion)
			r.Get("/{promotion_id}", h.Admin.GetPromotion)
			r.Put("/{promotion_id}", h.Admin.UpdatePromotion)
			r.Delete("/{promotion_id}", h.Admin.DeactivatePromotion)
		})
	})

	return r
}
