package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"photostudio/internal/http/handlers"
	"photostudio/internal/infra"
	mw "photostudio/internal/middleware"
)

// Options configures the cross-cutting middleware around the routes.
type Options struct {
	Logger         *infra.Logger
	AllowedOrigins []string
	EditsPerMinute int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}

	r := chi.NewRouter()
	r.Use(
		mw.RequestID,
		chimw.RealIP,
		mw.Logger(*logger),
		chimw.Recoverer,
		mw.CORS(opts.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/presets", app.Presets)

	r.Route("/v1/session", func(r chi.Router) {
		r.Get("/", app.GetSession)
		r.Delete("/", app.ResetSession)

		r.Post("/image", app.UploadImage)
		r.Get("/image", app.CurrentImage)
		r.Get("/original", app.OriginalImage)

		r.Put("/prompt", app.SetPrompt)
		r.With(mw.RateLimit(opts.EditsPerMinute, time.Minute)).Post("/edits", app.CreateEdit)
		r.Post("/undo", app.Undo)
		r.Post("/redo", app.Redo)
		r.Delete("/error", app.DismissError)

		r.Post("/export", app.Export)
	})

	return r
}
