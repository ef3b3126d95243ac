// Package ui exposes the analysis service over HTTP: a JSON API plus an
// HTML report view for generated pipelines.
package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"autopipe/app"
	"autopipe/internal"
)

// App represents the HTTP application
type App struct {
	router  *chi.Mux
	service *app.AnalysisService
	logger  *internal.Logger

	apiKey         string
	maxUploadBytes int64
}

// Config holds HTTP application configuration
type Config struct {
	// APIKey protects mutating endpoints when non-empty.
	APIKey string

	// MaxUploadMB bounds dataset upload size.
	MaxUploadMB int64
}

// NewApp creates the HTTP application around the analysis service.
func NewApp(service *app.AnalysisService, config Config) *App {
	if config.MaxUploadMB < 1 {
		config.MaxUploadMB = 64
	}
	a := &App{
		router:         chi.NewRouter(),
		service:        service,
		logger:         internal.DefaultLogger.WithComponent("http"),
		apiKey:         config.APIKey,
		maxUploadBytes: config.MaxUploadMB << 20,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/health", a.handleHealth)

	a.router.Route("/api", func(r chi.Router) {
		r.Use(a.requireAPIKey)

		r.Post("/datasets", a.handleDatasetUpload)
		r.Get("/datasets", a.handleListDatasets)
		r.Get("/datasets/{id}", a.handleGetDataset)
		r.Delete("/datasets/{id}", a.handleDeleteDataset)
		r.Post("/datasets/{id}/analyze", a.handleAnalyze)
		r.Get("/datasets/{id}/pipeline", a.handleLatestPipeline)
		r.Get("/datasets/{id}/preprocess", a.handlePreprocessPreview)

		r.Get("/pipelines/{id}", a.handleGetPipeline)
		r.Get("/pipelines/{id}/explanation", a.handleExplanation)
		r.Post("/pipelines/{id}/runs", a.handleRecordRun)
		r.Get("/pipelines/{id}/runs", a.handleListRuns)
	})

	// HTML report, readable in a browser without a client.
	a.router.Get("/pipelines/{id}/report", a.handleReport)
}

// Router returns the HTTP handler for serving.
func (a *App) Router() http.Handler {
	return a.router
}

// requireAPIKey rejects requests without the configured key. With no key
// configured the API is open, which suits local single-user runs.
func (a *App) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.apiKey != "" && r.Header.Get("X-API-Key") != a.apiKey {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}
