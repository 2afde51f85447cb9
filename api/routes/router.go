package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ateliernord/commandes/api/controllers"
	"github.com/ateliernord/commandes/api/middleware"
	"github.com/ateliernord/commandes/internal/cart"
	"github.com/ateliernord/commandes/internal/catalog"
	"github.com/ateliernord/commandes/internal/hub"
	"github.com/ateliernord/commandes/pkg/config"
	"github.com/ateliernord/commandes/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	catalogService catalog.Service,
	cartService cart.Service,
	pushHub *hub.Hub,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/", controllers.Index())
	r.Get("/ws", controllers.Websocket(pushHub))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/produits", func(r chi.Router) {
			r.Get("/", controllers.SearchProducts(catalogService, logg))
			r.Get("/recherche", controllers.SearchProductsShopping(catalogService, logg))
			r.Post("/", controllers.CreateProduct(catalogService, logg))
			r.Put("/{id}", controllers.UpdateProduct(catalogService, logg))
			r.Delete("/{id}", controllers.DeleteProduct(catalogService, logg))
			r.Get("/export", controllers.ExportProducts(catalogService, logg))
			r.Post("/import", controllers.ImportProducts(catalogService, logg))
		})

		r.Route("/panier", func(r chi.Router) {
			r.Get("/", controllers.GetCart(cartService))
			r.Delete("/", controllers.ClearCart(cartService, logg))
			r.Post("/articles", controllers.AddCartItem(catalogService, cartService, logg))
			r.Put("/articles/{id}", controllers.SetCartItemQuantity(cartService, logg))
			r.Delete("/articles/{id}", controllers.RemoveCartItem(cartService, logg))
			r.Get("/resume", controllers.CartSummary(cartService, logg))
			r.Get("/qr", controllers.CartQR(cfg, logg))
		})
	})

	return r
}
