package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/raushankrgupta/product-page-generator/utils"
)

// RouterOptions configures NewRouter
type RouterOptions struct {
	JWTSecret string
	// RequestTimeout bounds every request; generation runs can take minutes
	RequestTimeout time.Duration
}

// NewRouter mounts every route of the service
func NewRouter(h *Handlers, proxy *ScrapeProxy, opts RouterOptions, logger *slog.Logger) http.Handler {
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 5 * time.Minute
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(utils.LatencyMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(opts.JWTSecret))

		r.HandleFunc("/scrape", proxy.ScrapeHandler)
		r.Get("/languages", h.Languages)

		r.Route("/products", func(r chi.Router) {
			r.Post("/", h.GenerateProduct)
			r.Get("/recent", h.RecentProducts)
			r.Get("/{id}", h.GetProduct)
			r.Patch("/{id}", h.EditProduct)
			r.Post("/{id}/translate", h.TranslateProduct)
			r.Post("/{id}/publish", h.PublishProduct)
		})

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.SaveSettings)
	})

	return r
}
