package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Saurabhkg03/saraavdata-backend/internal/api"
	apiMiddleware "github.com/Saurabhkg03/saraavdata-backend/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	// The browser frontend is served from arbitrary origins during
	// development, so the API answers any of them.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create API handlers using the application's services
	bankHandler := api.NewBankHandler(app.snapshots, app.logger)
	processHandler := api.NewProcessHandler(
		app.controller,
		app.queue,
		app.requestHalt,
		app.logger,
	)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", bankHandler.Upload)
		r.Get("/download", bankHandler.Download)
		r.Get("/process", processHandler.Stream)
		r.Post("/stop", processHandler.Stop)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
