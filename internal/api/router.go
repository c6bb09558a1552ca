package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"golang.org/x/time/rate"

	"github.com/projecthelena/healthlog/internal/config"
	_ "github.com/projecthelena/healthlog/internal/docs"
	"github.com/projecthelena/healthlog/internal/logging"
)

type Router struct {
	*chi.Mux
	limiter *IPRateLimiter
}

// SecurityHeaders middleware adds essential security headers to all responses.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// NewRouter wires the record endpoints, probes and API docs onto a chi mux.
// Call Close when the router is no longer served.
func NewRouter(store RecordStore, cfg *config.Config) *Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	// Only trust X-Forwarded-For when deployed behind a proxy we control.
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	limiter := NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	records := NewRecordHandler(store)

	// Liveness probe (no rate limiting)
	r.Get("/healthz", Healthz)

	r.Group(func(api chi.Router) {
		api.Use(RateLimitMiddleware(limiter))

		api.Get("/health", records.ListRecords)
		api.Post("/health", records.CreateRecord)
		api.Put("/health/{id}", records.UpdateRecord)
		api.Delete("/health/{id}", records.DeleteRecord)

		api.Get("/db-check", DBCheck(store))
	})

	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	return &Router{Mux: r, limiter: limiter}
}

// Close releases background resources owned by the router.
func (r *Router) Close() {
	r.limiter.Stop()
}

func newAPILogger() *log.Logger {
	return logging.New("api")
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		newAPILogger().Printf("encode response: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
