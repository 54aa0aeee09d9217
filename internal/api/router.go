package api

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/example/plantshop/internal/account"
	"github.com/example/plantshop/internal/api/middleware"
	"github.com/example/plantshop/internal/auth"
)

// RouterConfig bundles the router dependencies.
type RouterConfig struct {
	Handlers     *Handlers
	AuthHandlers *AuthHandlers
	Tokens       *auth.TokenService
	Logger       zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.Auth(cfg.Tokens)
	requireAdmin := func(h http.HandlerFunc) http.Handler {
		return requireAuth(middleware.RequireRole(account.RoleAdmin)(h))
	}

	// Auth
	mux.HandleFunc("/auth/register", methodHandler(http.MethodPost, cfg.AuthHandlers.Register))
	mux.HandleFunc("/auth/login", methodHandler(http.MethodPost, cfg.AuthHandlers.Login))
	mux.HandleFunc("/auth/refresh", methodHandler(http.MethodPost, cfg.AuthHandlers.Refresh))

	// Products: reads are public, mutations are admin-only
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cfg.Handlers.ListProducts(w, r)
		case http.MethodPost:
			requireAdmin(cfg.Handlers.CreateProduct).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/comments") {
			switch r.Method {
			case http.MethodGet:
				cfg.Handlers.ListComments(w, r)
			case http.MethodPost:
				requireAuth(http.HandlerFunc(cfg.Handlers.AddComment)).ServeHTTP(w, r)
			default:
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		switch r.Method {
		case http.MethodGet:
			cfg.Handlers.GetProduct(w, r)
		case http.MethodPut:
			requireAdmin(cfg.Handlers.UpdateProduct).ServeHTTP(w, r)
		case http.MethodDelete:
			requireAdmin(cfg.Handlers.DeleteProduct).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Comments: edits and deletions go by comment id
	mux.Handle("/comments/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			cfg.Handlers.UpdateComment(w, r)
		case http.MethodDelete:
			cfg.Handlers.DeleteComment(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Profile
	mux.Handle("/me", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cfg.AuthHandlers.Me(w, r)
		case http.MethodPut:
			cfg.AuthHandlers.UpdateMe(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Cart
	mux.Handle("/cart", requireAuth(methodHandler(http.MethodGet, cfg.Handlers.GetCart)))

	mux.Handle("/cart/items", requireAuth(methodHandler(http.MethodPost, cfg.Handlers.AddToCart)))

	mux.Handle("/cart/items/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/increase") && r.Method == http.MethodPost:
			cfg.Handlers.IncreaseQuantity(w, r)
		case strings.HasSuffix(path, "/decrease") && r.Method == http.MethodPost:
			cfg.Handlers.DecreaseQuantity(w, r)
		case r.Method == http.MethodDelete:
			cfg.Handlers.RemoveFromCart(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Checkout
	mux.Handle("/checkout", requireAuth(methodHandler(http.MethodPost, cfg.Handlers.Checkout)))

	// Orders
	mux.Handle("/orders", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cfg.Handlers.ListOrders(w, r)
		case http.MethodDelete:
			cfg.Handlers.ClearOrders(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/orders/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cfg.Handlers.GetOrder(w, r)
		case http.MethodDelete:
			cfg.Handlers.DeleteOrder(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Favorites
	mux.Handle("/favorites", requireAuth(methodHandler(http.MethodGet, cfg.Handlers.ListFavorites)))
	mux.Handle("/favorites/toggle", requireAuth(methodHandler(http.MethodPost, cfg.Handlers.ToggleFavorite)))
	mux.Handle("/favorites/", requireAuth(methodHandler(http.MethodDelete, cfg.Handlers.RemoveFavorite)))

	// Notifications
	mux.Handle("/notifications", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cfg.Handlers.ListNotifications(w, r)
		case http.MethodDelete:
			cfg.Handlers.ClearNotifications(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/notifications/read-all", requireAuth(methodHandler(http.MethodPost, cfg.Handlers.MarkAllNotificationsRead)))

	mux.Handle("/notifications/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/read") && r.Method == http.MethodPost {
			cfg.Handlers.MarkNotificationRead(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})))

	return withLogging(mux, cfg.Logger)
}

func methodHandler(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func withLogging(next http.Handler, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		next.ServeHTTP(w, r)
	})
}
