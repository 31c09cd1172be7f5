package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	accountctrl "bloom/internal/account/controller"
	"bloom/internal/auth"
	cartctrl "bloom/internal/cart/controller"
	"bloom/internal/commons"
	couponctrl "bloom/internal/coupon/controller"
	dashboardctrl "bloom/internal/dashboard/controller"
	favoritectrl "bloom/internal/favorite/controller"
	orderctrl "bloom/internal/order/controller"
	productctrl "bloom/internal/product/controller"
	reviewctrl "bloom/internal/review/controller"
	settingsctrl "bloom/internal/settings/controller"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Handlers struct {
	Catalog   *productctrl.CatalogController
	Products  *productctrl.AdminController
	Auth      *accountctrl.AuthController
	Addresses *accountctrl.AddressController
	Favorites *favoritectrl.Controller
	Reviews   *reviewctrl.Controller
	Coupons   *couponctrl.Controller
	Cart      *cartctrl.Controller
	Orders    *orderctrl.Controller
	Settings  *settingsctrl.Controller
	Dashboard *dashboardctrl.Controller
}

func NewRouter(h Handlers, sessions auth.SessionReader, health map[string]Pinger, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(commons.TraceMiddleware)
	r.Use(accessLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(auth.Authenticate(sessions, logger))

	r.Get("/health", healthHandler(health, logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.Catalog.ListProducts)
		r.Get("/products/{product}", h.Catalog.GetProduct)
		r.Get("/products/{product}/reviews", h.Reviews.ListForProduct)
		r.Get("/categories", h.Catalog.ListCategories)
		r.Get("/categories/{slug}", h.Catalog.GetCategory)
		r.Get("/settings", h.Settings.GetPublic)
		r.Post("/coupons/validate", h.Coupons.Validate)

		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/logout", h.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(logger))

			r.Get("/me", h.Auth.Me)
			r.Put("/me", h.Auth.UpdateMe)

			r.Get("/addresses", h.Addresses.List)
			r.Post("/addresses", h.Addresses.Create)
			r.Put("/addresses/{id}", h.Addresses.Update)
			r.Delete("/addresses/{id}", h.Addresses.Delete)

			r.Get("/favorites", h.Favorites.List)
			r.Post("/favorites/{productId}/toggle", h.Favorites.Toggle)

			r.Post("/products/{product}/reviews", h.Reviews.Create)

			r.Get("/cart", h.Cart.Get)
			r.Put("/cart/items", h.Cart.SetItem)
			r.Delete("/cart/items/{productId}", h.Cart.RemoveItem)
			r.Delete("/cart", h.Cart.Clear)
			r.Post("/cart/quote", h.Cart.Quote)

			r.Post("/orders", h.Orders.Checkout)
			r.Get("/orders", h.Orders.List)
			r.Get("/orders/{id}", h.Orders.Get)
			r.Post("/orders/{id}/cancel", h.Orders.Cancel)
			r.Get("/orders/{id}/ws", h.Orders.Watch)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin(logger))

			r.Get("/dashboard", h.Dashboard.Get)

			r.Get("/products", h.Products.ListProducts)
			r.Post("/products", h.Products.CreateProduct)
			r.Put("/products/{id}", h.Products.UpdateProduct)
			r.Delete("/products/{id}", h.Products.DeleteProduct)
			r.Patch("/products/{id}/stock", h.Products.SetStock)

			r.Post("/categories", h.Products.CreateCategory)
			r.Put("/categories/{id}", h.Products.UpdateCategory)
			r.Delete("/categories/{id}", h.Products.DeleteCategory)

			r.Get("/orders", h.Orders.AdminList)
			r.Patch("/orders/{id}/status", h.Orders.AdminSetStatus)

			r.Get("/coupons", h.Coupons.AdminList)
			r.Post("/coupons", h.Coupons.AdminCreate)
			r.Put("/coupons/{id}", h.Coupons.AdminUpdate)
			r.Delete("/coupons/{id}", h.Coupons.AdminDelete)

			r.Get("/reviews", h.Reviews.AdminList)
			r.Delete("/reviews/{id}", h.Reviews.AdminDelete)

			r.Get("/users", h.Auth.AdminListUsers)
			r.Patch("/users/{id}/role", h.Auth.AdminSetRole)

			r.Get("/settings", h.Settings.AdminGet)
			r.Put("/settings", h.Settings.AdminUpdate)
		})
	})

	return r
}

func accessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("traceId", commons.TraceID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func healthHandler(checks map[string]Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
				resp.Checks[name] = "down"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "up"
		}
		commons.WriteJSON(w, status, resp, logger)
	}
}
