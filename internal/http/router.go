package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/rogerio-castellano/order-tracker/docs"
	"github.com/rogerio-castellano/order-tracker/internal/auth"
	"github.com/rogerio-castellano/order-tracker/internal/http/ban"
	"github.com/rogerio-castellano/order-tracker/internal/http/handlers"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

var logger = zap.NewNop()

// SetLogger installs l for the middleware and every handler.
func SetLogger(l *zap.Logger) {
	logger = l
	handlers.SetLogger(l)
	ban.SetLogger(l)
}

func NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)
	r.Use(RateLimitMiddleware)

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", handlers.SignupHandler)
		r.Post("/login", handlers.LoginHandler)
		r.Post("/refresh", handlers.RefreshHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware)
		r.Use(RequireRoles(auth.RoleAdmin, auth.RoleStaff))

		r.Get("/store/settings", handlers.GetSettingsHandler)

		r.Post("/products", handlers.CreateProductHandler)
		r.Get("/products", handlers.GetProductsHandler)
		r.Post("/products/import", handlers.ImportProductsHandler)
		r.Get("/products/{id}", handlers.GetProductByIDHandler)
		r.Put("/products/{id}", handlers.UpdateProductHandler)
		r.Put("/products/{id}/inventory", handlers.RestockProductHandler)
		r.Get("/products/{id}/movements", handlers.GetMovementsHandler)
		r.Get("/products/{id}/movements/export", handlers.ExportMovementsHandler)

		r.Post("/orders", handlers.CreateOrderHandler)
		r.Get("/orders", handlers.GetOrdersHandler)
		r.Get("/orders/inventory", handlers.GetOrderInventoryHandler)
		r.Get("/orders/{id}", handlers.GetOrderHandler)
		r.Put("/orders/{id}", handlers.EditOrderHandler)
		r.Put("/orders/{id}/status", handlers.UpdateOrderStatusHandler)
		r.Get("/orders/{id}/receipt", handlers.GetOrderReceiptHandler)

		r.Get("/customers", handlers.GetCustomersHandler)
		r.Post("/customers", handlers.CreateCustomerHandler)
		r.Get("/customers/check", handlers.CheckCustomerHandler)
		r.Put("/customers/{contact}", handlers.UpdateCustomerHandler)

		r.Group(func(r chi.Router) {
			r.Use(RequireRoles(auth.RoleAdmin))

			r.Post("/admin/staff", handlers.CreateStaffHandler)
			r.Put("/store/settings", handlers.UpdateSettingsHandler)
			r.Delete("/products/{id}", handlers.DeleteProductHandler)
			r.Post("/products/backfill-inventory", handlers.BackfillInventoryHandler)
			r.Get("/metrics/dashboard", handlers.GetDashboardMetricsHandler)
		})
	})

	return r
}
