package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ityouth/xtn-storefront/api/controllers"
	"github.com/ityouth/xtn-storefront/api/middleware"
	cartsvc "github.com/ityouth/xtn-storefront/internal/cart"
	"github.com/ityouth/xtn-storefront/internal/catalog"
	checkoutsvc "github.com/ityouth/xtn-storefront/internal/checkout"
	"github.com/ityouth/xtn-storefront/internal/lookup"
	ordersvc "github.com/ityouth/xtn-storefront/internal/orders"
	"github.com/ityouth/xtn-storefront/pkg/config"
	"github.com/ityouth/xtn-storefront/pkg/logger"
	"github.com/ityouth/xtn-storefront/pkg/orderapi"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry *prometheus.Registry
	Pingers  map[string]controllers.Pinger
	Catalog  *catalog.Service
	Cart     *cartsvc.Service
	Checkout *checkoutsvc.Manager
	Orders   *ordersvc.Service
	Lookup   *lookup.Service
	OrderAPI *orderapi.Client
}

// NewRouter assembles the storefront HTTP surface.
func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(logg, cfg.Checkout.SessionTTL))

		r.Get("/products", controllers.Products(deps.Catalog, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Patch("/items/{itemId}", controllers.CartUpdateItem(deps.Cart, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.Cart, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutState(deps.Checkout, logg))
			r.Post("/info", controllers.CheckoutInfo(deps.Checkout, logg))
			r.Post("/payment", controllers.CheckoutPayment(deps.Checkout, logg))
			r.Post("/qr", controllers.CheckoutQR(deps.Checkout, logg))
			r.Post("/confirm-transfer", controllers.CheckoutConfirmTransfer(deps.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.Lookup, logg))
			r.Post("/search", controllers.OrdersSearch(deps.Lookup, logg))
			r.Get("/{code}", controllers.OrderDetail(deps.OrderAPI, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(deps.Orders, logg))
		})
	})

	return r
}
