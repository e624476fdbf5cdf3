package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mtkebuch/skincareWeb/internal/catalog"
	"github.com/mtkebuch/skincareWeb/internal/domain"
	"github.com/mtkebuch/skincareWeb/internal/guard"
	"github.com/mtkebuch/skincareWeb/internal/order"
	"github.com/mtkebuch/skincareWeb/internal/repository"
	"github.com/mtkebuch/skincareWeb/internal/token"
	"github.com/mtkebuch/skincareWeb/pkg/health"
	"github.com/mtkebuch/skincareWeb/pkg/middleware"
)

// RouterDeps collects everything the router wires together.
type RouterDeps struct {
	Sessions   SessionFactory
	Users      repository.UserRepository
	Carts      repository.CartStore
	CartEvents CartEvents
	Catalog    *catalog.Client
	Orders     *order.Service
	Codec      *token.Codec
	Health     *health.Handler
	Logger     *slog.Logger
	CORS       middleware.CORSConfig
	Now        func() time.Time
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Health == nil {
		deps.Health = health.NewHandler()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))

	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	validate := NewTokenValidator(deps.Codec, deps.Users, deps.Now)

	// Auth endpoints (public, cookie-scoped session)
	authHandler := NewAuthHandler(deps.Sessions, deps.Logger)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password", authHandler.ResetPassword)
	})

	// Navigation guard evaluation for the client router. Claims are optional:
	// anonymous requests get the anonymous decision.
	guardHandler := NewGuardHandler(deps.Logger)
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(validate))
		r.Get("/api/v1/navigation", guardHandler.Decide)
	})

	// Cart endpoints (auth required)
	cartHandler := NewCartHandler(deps.Carts, deps.CartEvents, deps.Logger)
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(validate))

		r.Get("/", cartHandler.Get)
		r.Delete("/", cartHandler.Clear)
		r.Post("/items", cartHandler.AddItem)
		r.Put("/items/{productID}", cartHandler.SetQuantity)
		r.Delete("/items/{productID}", cartHandler.RemoveItem)
	})

	// Checkout and order history (auth required)
	orderHandler := NewOrderHandler(deps.Orders, deps.Carts, deps.Logger)
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(validate))

		r.Post("/", orderHandler.Place)
		r.Get("/", orderHandler.List)
		r.Get("/{orderID}", orderHandler.Get)
	})

	// Product endpoints: public reads, guard-enforced admin writes
	productHandler := NewProductHandler(deps.Catalog, deps.Logger)
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", productHandler.List)
		r.Get("/{id}", productHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.OptionalAuth(validate))
			r.Use(RequireGuard(guard.Role(domain.RoleAdmin)))

			r.Post("/", productHandler.Create)
			r.Put("/{id}", productHandler.Update)
			r.Delete("/{id}", productHandler.Delete)
		})
	})

	// Admin panel endpoints
	adminHandler := NewAdminUserHandler(deps.Users, deps.Logger)
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.OptionalAuth(validate))
		r.Use(RequireGuard(guard.Admin))

		r.Get("/users", adminHandler.List)
		r.Put("/users/{id}/role", adminHandler.SetRole)
		r.Delete("/users/{id}", adminHandler.Delete)
		r.Get("/stats", adminHandler.Stats)
	})

	return r
}
