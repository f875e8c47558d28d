package router

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/content"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-blog-go/pkg/utilities"
)

// Deps are the handlers and settings the route table is built from.
type Deps struct {
	Logger         *zap.SugaredLogger
	Content        *content.Handler
	Auth           *auth.Handler
	Metrics        *metrics.Metrics
	Health         func(ctx context.Context) error
	RateLimitRPS   int
	RateLimitBurst int
	TrustProxy     int
	RequestTimeout time.Duration
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
func RegisterRoutes(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	m := d.Metrics
	if m == nil {
		m = metrics.New()
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		if d.Health != nil {
			if err := d.Health(r.Context()); err != nil {
				logger.Errorw("health check", "error", err)
				utilities.WriteError(w, http.StatusServiceUnavailable, "Database unavailable")
				return
			}
		}
		utilities.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", m.Handler())

	c := d.Content
	mux.HandleFunc("GET /api/categories", c.ListCategories)
	mux.HandleFunc("GET /api/categories/{id}", c.GetCategory)
	mux.HandleFunc("POST /api/categories", c.CreateCategory)

	mux.HandleFunc("GET /api/articles", c.ListArticles)
	mux.HandleFunc("GET /api/articles/{slug}", c.GetArticle)

	a := d.Auth
	mux.Handle("POST /api/articles", a.RequireAuth(http.HandlerFunc(c.CreateArticle)))
	mux.Handle("PUT /api/articles/{id}", a.RequireAuth(http.HandlerFunc(c.UpdateArticle)))
	mux.Handle("DELETE /api/articles/{id}", a.RequireAuth(http.HandlerFunc(c.DeleteArticle)))

	limiter := NewRateLimiter(d.RateLimitRPS, d.RateLimitBurst, d.TrustProxy, m, logger)
	mux.Handle("POST /api/register", limiter.Handler(http.HandlerFunc(a.Register)))
	mux.Handle("POST /api/login", limiter.Handler(http.HandlerFunc(a.Login)))
	mux.HandleFunc("POST /api/logout", a.Logout)
	mux.HandleFunc("GET /api/user", a.CurrentUser)

	// unknown API paths answer in the same JSON shape as everything else
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		utilities.WriteError(w, http.StatusNotFound, "Not found")
	})

	// outermost first: request id, logging, security headers, timeout, metrics
	var h http.Handler = m.InstrumentHandler(mux)
	h = TimeoutMiddleware(d.RequestTimeout)(h)
	h = SecurityHeadersMiddleware()(h)
	h = LoggingMiddleware(logger)(h)
	h = RequestIDMiddleware()(h)
	return h
}
