package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers collects everything the router mounts. Contact is optional:
// without a configured mailer the route is not registered.
type Handlers struct {
	Cart    *CartHandler
	Auth    *AuthHandler
	Account *AccountHandler
	Catalog *CatalogHandler
	Webhook *WebhookHandler
	Contact *ContactHandler
}

func NewRouter(h Handlers, requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Post("/", h.Cart.Create)
			r.Get("/", h.Cart.Get)
			r.Post("/add", h.Cart.AddLines)
			r.Put("/update", h.Cart.UpdateLines)
			r.Delete("/remove", h.Cart.RemoveLines)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/signup", h.Auth.Signup)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/me", h.Auth.Me)
			r.Post("/refresh", h.Auth.Refresh)
			r.Post("/recover", h.Auth.Recover)
			r.Post("/reset", h.Auth.Reset)
		})

		r.Route("/account", func(r chi.Router) {
			r.Get("/profile", h.Account.Profile)
			r.Put("/profile", h.Account.UpdateProfile)
			r.Get("/orders", h.Account.Orders)
			r.Post("/password", h.Account.ChangePassword)
		})

		r.Get("/products", h.Catalog.Products)
		r.Get("/products/{handle}", h.Catalog.ProductByHandle)
		r.Get("/collections", h.Catalog.Collections)
		r.Get("/search", h.Catalog.Search)

		if h.Contact != nil {
			r.Post("/contact", h.Contact.Submit)
		}

		r.Route("/webhooks/shopify", func(r chi.Router) {
			r.Post("/", h.Webhook.Receive)
			r.Get("/", h.Webhook.Describe)
		})
	})

	return r
}
