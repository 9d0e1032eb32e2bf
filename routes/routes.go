package routes

import (
	"net/http"

	"helmet-store/controllers"
	"helmet-store/middleware"
	"helmet-store/utils"

	"github.com/gorilla/mux"
)

// Controllers groups the handlers mounted by RegisterRoutes
type Controllers struct {
	User    *controllers.UserController
	Product *controllers.ProductController
	Cart    *controllers.CartController
	Order   *controllers.OrderController
	Debug   *controllers.DebugController
}

type Options struct {
	Prefix      string
	Tokens      *utils.TokenIssuer
	AuthLimiter *middleware.RateLimiter
	// DebugKey mounts /debug/promote when non-empty
	DebugKey string
	Metrics  http.Handler
	Ready    http.Handler
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers, opts Options) {
	protected := middleware.AuthMiddleware(opts.Tokens)
	admin := middleware.RequireAdmin(opts.Tokens)
	limited := func(h http.HandlerFunc) http.Handler {
		if opts.AuthLimiter == nil {
			return h
		}
		return opts.AuthLimiter.Handler(h)
	}

	router.HandleFunc("/", controllers.Root).Methods(http.MethodGet)
	router.HandleFunc("/health", controllers.Health).Methods(http.MethodGet)
	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics).Methods(http.MethodGet)
	}

	api := router.PathPrefix(opts.Prefix).Subrouter()
	api.HandleFunc("/health", controllers.Health).Methods(http.MethodGet)
	if opts.Ready != nil {
		router.Handle("/ready", opts.Ready).Methods(http.MethodGet)
	}

	// Auth routes
	api.Handle("/auth/register", limited(c.User.Register)).Methods(http.MethodPost)
	api.Handle("/auth/login", limited(c.User.Login)).Methods(http.MethodPost)
	api.Handle("/auth/me", protected(http.HandlerFunc(c.User.GetProfile))).Methods(http.MethodGet)
	api.Handle("/auth/profile", protected(http.HandlerFunc(c.User.UpdateProfile))).Methods(http.MethodPut)

	// Product routes
	api.HandleFunc("/products", c.Product.GetProducts).Methods(http.MethodGet)
	api.Handle("/products", admin(http.HandlerFunc(c.Product.CreateProduct))).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", c.Product.GetProductByID).Methods(http.MethodGet)
	api.Handle("/products/{id}", admin(http.HandlerFunc(c.Product.UpdateProduct))).Methods(http.MethodPut)
	api.Handle("/products/{id}", admin(http.HandlerFunc(c.Product.DeleteProduct))).Methods(http.MethodDelete)

	// Cart routes
	api.HandleFunc("/carts", c.Cart.ReplaceCart).Methods(http.MethodPost)
	api.HandleFunc("/carts/{userId}", c.Cart.GetCart).Methods(http.MethodGet)
	api.HandleFunc("/carts/{userId}", c.Cart.ClearCart).Methods(http.MethodDelete)
	api.HandleFunc("/carts/{userId}/items", c.Cart.AddToCart).Methods(http.MethodPatch)
	api.HandleFunc("/carts/{userId}/items/{productId}", c.Cart.UpdateCartItem).Methods(http.MethodPatch)
	api.HandleFunc("/carts/{userId}/items/{productId}", c.Cart.RemoveFromCart).Methods(http.MethodDelete)

	// Order routes
	api.Handle("/orders", protected(http.HandlerFunc(c.Order.GetOrders))).Methods(http.MethodGet)
	api.HandleFunc("/orders", c.Order.CreateOrder).Methods(http.MethodPost)
	api.Handle("/orders/{id}", protected(http.HandlerFunc(c.Order.GetOrder))).Methods(http.MethodGet)
	api.Handle("/orders/{id}/status", admin(http.HandlerFunc(c.Order.UpdateOrderStatus))).Methods(http.MethodPatch)
	api.HandleFunc("/payments", c.Order.CreatePayment).Methods(http.MethodPost)

	if opts.DebugKey != "" && c.Debug != nil {
		gate := middleware.DebugKeyMiddleware(opts.DebugKey)
		api.Handle("/debug/promote", gate(http.HandlerFunc(c.Debug.Promote))).Methods(http.MethodPost)
	}
}
