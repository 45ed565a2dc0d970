package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/cuivault/internal/common"
	"github.com/dmitrijs2005/cuivault/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// RouterOptions wires the HTTP boundary.
type RouterOptions struct {
	Handler        *VaultHandler
	Log            logging.Logger
	AllowedOrigins []string
	RequestTimeout time.Duration
	// RateLimitRPS of zero disables per-client rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxyHeaders rewrites RemoteAddr from X-Forwarded-For and
	// friends. Off, clients are keyed by the connection address.
	TrustProxyHeaders bool
}

// NewRouter builds the chi router with the vault routes and middleware.
func NewRouter(o RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if o.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(accessLog(o.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", common.AdminSecretHeaderName},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", Health)

	r.Group(func(r chi.Router) {
		if o.RateLimitRPS > 0 {
			r.Use(rateLimit(newMultiLimiter(rate.Limit(o.RateLimitRPS), o.RateLimitBurst, 10*time.Minute)))
		}
		if o.RequestTimeout > 0 {
			r.Use(middleware.Timeout(o.RequestTimeout))
		}

		r.Route("/v1/files", func(r chi.Router) {
			r.Post("/upload", o.Handler.Upload)
			r.Get("/{vaultId}", o.Handler.View)
			r.Delete("/{vaultId}", o.Handler.Delete)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, common.ErrorNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	return r
}
