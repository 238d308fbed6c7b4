package web

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterOption func(*routerOptions)

type routerOptions struct {
	middlewares    []func(http.Handler) http.Handler
	metrics        http.Handler
	corsOrigins    []string
	requestTimeout time.Duration
}

// WithMiddleware appends middleware that runs after the built-in chain.
func WithMiddleware(mw ...func(http.Handler) http.Handler) RouterOption {
	return func(o *routerOptions) {
		o.middlewares = append(o.middlewares, mw...)
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) RouterOption {
	return func(o *routerOptions) {
		o.metrics = h
	}
}

func WithCORSOrigins(origins ...string) RouterOption {
	return func(o *routerOptions) {
		o.corsOrigins = origins
	}
}

func WithRequestTimeout(d time.Duration) RouterOption {
	return func(o *routerOptions) {
		o.requestTimeout = d
	}
}

// NewRouter exposes the report pages, the chart endpoints, static assets and health.
func NewRouter(h *Handlers, opts ...RouterOption) chi.Router {
	o := &routerOptions{
		corsOrigins:    []string{"*"},
		requestTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(o.requestTimeout))
	for _, mw := range o.middlewares {
		r.Use(mw)
	}

	r.Get("/", h.Listing)
	r.Get("/desempenho", h.InCurriculum)
	r.Get("/fora-do-tsi", h.OutOfCurriculumJanuary)
	r.Get("/comparativo-tecnologias", h.TechnologyComparison)
	r.Get("/ranking", h.Rankings)
	r.Get("/frontend-backend", h.FrontendBackendTotals)
	r.Get("/bancos-de-dados", h.DatabaseEngines)
	r.Get("/bancos-de-dados/grafico", h.DatabaseChart)
	r.Get("/categorias", h.CategoryAnalysis)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: o.corsOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/bancos-de-dados/series", h.DatabaseSeries)
	})

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("OK"))
	})

	if o.metrics != nil {
		r.Handle("/metrics", o.metrics)
	}

	return r
}
