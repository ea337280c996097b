package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/storefront-api/internal/api"
	apiMiddleware "github.com/phrazzld/storefront-api/internal/api/middleware"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, &app.config.Auth, app.logger)
	productHandler := api.NewProductHandler(app.productService, app.logger)
	basketHandler := api.NewBasketHandler(app.basketService, app.logger)
	orderHandler := api.NewOrderHandler(app.orderService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)
		r.Get("/products", productHandler.ListProducts)
		r.Get("/products/{id}", productHandler.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.With(apiMiddleware.RequireAdmin).Post("/products", productHandler.CreateProduct)

			r.Post("/users/{userID}/basket/lines", basketHandler.UpsertBasketLine)
			r.Get("/users/{userID}/basket", basketHandler.GetBasketForUser)
			r.Get("/baskets/{id}", basketHandler.GetBasket)
			r.Put("/basket-lines/{id}", basketHandler.SetBasketLineQuantity)
			r.Delete("/basket-lines/{id}", basketHandler.DeleteBasketLine)

			r.Post("/orders", orderHandler.CreateOrder)
			r.Get("/orders/{id}", orderHandler.GetOrder)
			r.Get("/users/{userID}/orders", orderHandler.ListOrders)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
