package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/config"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/enum"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/handler"
	mw "github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/middleware"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/model"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/service"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/store"
	"github.com/biharichatkaraa-byte/bihari-chatkara-sub000/internal/ws"
)

// Deps bundles everything the route tree needs.
type Deps struct {
	Store        store.Store
	Orders       *service.OrderService
	Requisitions *service.RequisitionService
	Hub          *ws.Hub
}

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, deps Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	users := store.NewCollection[model.User](deps.Store, store.Users)

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(users, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Kitchen display feed (handles auth internally via query param)
	r.Get("/ws/kitchen", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(deps.Hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		orderHandler := handler.NewOrderHandler(deps.Orders)
		r.Route("/orders", orderHandler.RegisterRoutes)

		menuHandler := handler.NewMenuItemHandler(
			store.NewCollection[model.MenuItem](deps.Store, store.MenuItems),
			store.NewCollection[model.Ingredient](deps.Store, store.Ingredients),
		)
		r.Route("/menu-items", menuHandler.RegisterRoutes)

		ingredientHandler := handler.NewIngredientHandler(
			store.NewCollection[model.Ingredient](deps.Store, store.Ingredients),
		)
		r.Route("/ingredients", ingredientHandler.RegisterRoutes)

		customerHandler := handler.NewCustomerHandler(
			store.NewCollection[model.Customer](deps.Store, store.Customers),
		)
		r.Route("/customers", customerHandler.RegisterRoutes)

		requisitionHandler := handler.NewRequisitionHandler(deps.Requisitions)
		r.Route("/requisitions", requisitionHandler.RegisterRoutes)

		// Admin and manager only
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin, enum.UserRoleManager))

			userHandler := handler.NewUserHandler(users)
			r.Route("/users", userHandler.RegisterRoutes)

			expenseHandler := handler.NewExpenseHandler(
				store.NewCollection[model.Expense](deps.Store, store.Expenses),
			)
			r.Route("/expenses", expenseHandler.RegisterRoutes)
		})
	})

	return r
}
