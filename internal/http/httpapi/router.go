package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"songforge/internal/http/handlers"
	"songforge/internal/middleware"
)

// Options configures the router.
type Options struct {
	Logger zerolog.Logger
	// StaticDir, when set, is served under /static for the local storage
	// fallback. Empty when object storage is configured.
	StaticDir      string
	AllowedOrigins []string
	RateLimit      int
}

// NewRouter wires the Status API.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.Identity,
	)
	if opts.RateLimit > 0 {
		r.Use(middleware.RateLimit(opts.RateLimit, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/music", func(r chi.Router) {
		r.Post("/", app.MusicCreate)
		r.Get("/", app.MusicList)
		r.Get("/{job_id}", app.MusicGet)
	})

	r.Route("/v1/covers", func(r chi.Router) {
		r.Post("/", app.CoverCreate)
		r.Get("/", app.CoverList)
		r.Get("/{job_id}", app.CoverGet)
	})

	r.Get("/v1/download", app.Download)

	if opts.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}
