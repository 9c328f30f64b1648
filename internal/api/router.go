package api

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterOptions struct {
	Production  bool
	CORSOrigins []string
	Limiter     *RateLimiter
	Frontend    fs.FS
	Metrics     http.Handler
}

func NewRouter(apiHandler *APIHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Basic request logging
	r.Use(middleware.Recoverer) // A panicking handler answers 500 instead of killing the process
	r.Use(instrument)
	r.Use(securityHeaders)
	if c := corsMiddleware(opts.Production, opts.CORSOrigins); c != nil {
		r.Use(c)
	}
	if opts.Production {
		r.Use(middleware.Compress(5))
	}
	r.Use(middleware.StripSlashes)

	r.Get("/health", apiHandler.HealthHandler)
	r.Get("/ready", apiHandler.ReadyHandler)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(opts.Limiter.Middleware)
		}

		r.Get("/categories", apiHandler.ListCategoriesHandler)
		r.Post("/categories", apiHandler.CreateCategoryHandler)

		r.Get("/search", apiHandler.SearchHandler)

		r.Get("/questions", apiHandler.ListQuestionsHandler)
		r.Post("/questions", apiHandler.CreateQuestionHandler)
		r.Get("/questions/{id}", apiHandler.GetQuestionHandler)
		r.Put("/questions/{id}", apiHandler.UpdateQuestionHandler)
		r.Delete("/questions/{id}", apiHandler.DeleteQuestionHandler)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "Not found")
		})
	})

	if opts.Frontend != nil {
		r.Get("/*", frontendHandler(opts.Frontend).ServeHTTP)
	}

	return r
}
