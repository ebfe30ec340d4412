package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meditrack-ph/meditrack-backend/api/controllers"
	"github.com/meditrack-ph/meditrack-backend/api/middleware"
	"github.com/meditrack-ph/meditrack-backend/internal/auth"
	"github.com/meditrack-ph/meditrack-backend/internal/cart"
	"github.com/meditrack-ph/meditrack-backend/internal/catalog"
	checkoutsvc "github.com/meditrack-ph/meditrack-backend/internal/checkout"
	"github.com/meditrack-ph/meditrack-backend/internal/reservations"
	"github.com/meditrack-ph/meditrack-backend/internal/transactions"
	"github.com/meditrack-ph/meditrack-backend/pkg/config"
	"github.com/meditrack-ph/meditrack-backend/pkg/db"
	"github.com/meditrack-ph/meditrack-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	pingers map[string]db.Pinger,
	registry *cart.Registry,
	authService auth.Service,
	catalogService catalog.Service,
	checkoutService checkoutsvc.Service,
	reservationsService reservations.Service,
	transactionsRepo *transactions.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/login", controllers.AuthLogin(authService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(catalogService, logg))
		r.Get("/{productID}", controllers.ProductGet(catalogService, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.CartSession(cfg.JWT, logg))
		r.Get("/", controllers.CartGet(registry, logg))
		r.Post("/items", controllers.CartAddItem(registry, catalogService, logg))
		r.Post("/items/{productID}/increment", controllers.CartIncrementItem(registry, logg))
		r.Post("/items/{productID}/decrement", controllers.CartDecrementItem(registry, logg))
		r.Delete("/items/{productID}", controllers.CartRemoveItem(registry, logg))
	})

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Post("/", controllers.Checkout(registry, checkoutService, logg))
		r.Post("/items/{productID}", controllers.CheckoutItem(registry, checkoutService, logg))
	})

	r.Route("/api/v1/reservations", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Post("/", controllers.ReservationCreate(reservationsService, logg))
		r.Get("/", controllers.ReservationList(reservationsService, logg))
		r.Delete("/{reservationID}", controllers.ReservationCancel(reservationsService, logg))
		r.Post("/{reservationID}/convert", controllers.ReservationConvert(registry, reservationsService, logg))
	})

	r.Route("/api/v1/transactions", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Get("/", controllers.TransactionsList(transactionsRepo, logg))
		r.Get("/{transactionID}", controllers.TransactionGet(transactionsRepo, logg))
	})

	return r
}
