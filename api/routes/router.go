package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/storefront/api/controllers/orders"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/internal/cart"
	checkoutsvc "github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/mockpay"
	"github.com/angelmondragon/storefront/internal/orderstatus"
	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
	pkgredis "github.com/angelmondragon/storefront/pkg/redis"
)

// BackendAPI is everything the pass-through routes read from the commerce backend.
type BackendAPI interface {
	controllers.AddressBook
	controllers.Wishlist
	controllers.Profiles
	controllers.Catalog
	ordercontrollers.API
}

// SessionVault binds bearer tokens to session cookies.
type SessionVault interface {
	middleware.TokenLookup
	controllers.SessionVault
}

// NewRouter wires the storefront HTTP surface. redisPinger and idempotencyStore are nil
// when redis is not configured; gateway is nil unless the mock gateway is enabled.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisPinger controllers.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	gatherer prometheus.Gatherer,
	resolver *session.Resolver,
	vault SessionVault,
	carts *cart.Registry,
	api BackendAPI,
	checkoutService checkoutsvc.Service,
	gateway controllers.PaymentGateway,
	callbacks *orderstatus.Callbacks,
	statusPages *orderstatus.Catalog,
) http.Handler {
	r := chi.NewRouter()
	secureCookies := cfg.App.IsProd()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, redisPinger))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	idempotent := middleware.Idempotency(idempotencyStore, logg)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(resolver, vault, secureCookies, logg))

		r.Route("/api", func(r chi.Router) {
			r.Get("/ping", controllers.PublicPing())

			r.Route("/session", func(r chi.Router) {
				r.Post("/login", controllers.SessionLogin(resolver, vault, carts, secureCookies, logg))
				r.Post("/logout", controllers.SessionLogout(vault, carts, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartcontrollers.CartFetch(carts, logg))
				r.Post("/items", cartcontrollers.CartAddItem(carts, logg))
				r.Put("/items/{itemId}", cartcontrollers.CartUpdateItem(carts, logg))
				r.Delete("/items/{itemId}", cartcontrollers.CartRemoveItem(carts, logg))
				r.Post("/items/{itemId}/wishlist", cartcontrollers.CartMoveToWishlist(carts, logg))
			})

			r.Get("/checkout", controllers.CheckoutView(checkoutService, carts, logg))
			r.With(idempotent).Post("/checkout", controllers.CheckoutPlace(checkoutService, carts, logg))

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.AddressList(api, logg))
				r.Post("/", controllers.AddressCreate(api, logg))
				r.Put("/{addressId}", controllers.AddressUpdate(api, logg))
				r.Delete("/{addressId}", controllers.AddressDelete(api, logg))
			})

			r.Get("/wishlist", controllers.WishlistList(api, logg))
			r.Delete("/wishlist/{productId}", controllers.WishlistRemove(api, logg))

			r.Get("/products", controllers.ProductList(api, logg))
			r.Get("/products/{productId}", controllers.ProductDetail(api, logg))
			r.Get("/categories", controllers.CategoryList(api, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.List(api, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(api, logg))
			})

			r.Get("/profile", controllers.ProfileGet(api, logg))
			r.Put("/profile", controllers.ProfileUpdate(api, logg))
		})

		if cfg.Checkout.MockGatewayEnabled && gateway != nil {
			r.Route("/mock-payment/{orderId}", func(r chi.Router) {
				r.Post("/", controllers.MockPaymentOpen(gateway, logg))
				r.Post("/method", controllers.MockPaymentMethod(gateway, logg))
				r.With(idempotent).Post("/submit", controllers.MockPaymentSubmit(gateway, logg))
				r.Post("/abandon", controllers.MockPaymentAbandon(gateway, logg))
			})
		}

		r.Get(mockpay.CallbackPath, controllers.PaymentCallback(callbacks, logg))
		r.Get("/order-status/{outcome}", controllers.OrderStatusPage(statusPages, logg))
	})

	return r
}
