package handler

import (
	"log"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/udistrital/auditoria_mid/internal/config"
)

// SetupRouter creates the Chi router for the application, injecting the
// audit service and a logger into the handlers.
func SetupRouter(s AuditSearcher, cfg *config.Config, logger *log.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Logger logs request details, Recoverer turns panics into 500s.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	auditHandler := NewAuditHandler(s, cfg.IsDev(), logger)
	healthHandler := NewHealthHandler()

	r.Route("/v1", func(r chi.Router) {
		r.Get("/", healthHandler.Check)

		r.Group(func(r chi.Router) {
			// Bearer verification only when a secret is deployed; local
			// environments run open.
			if cfg.JWTSecret != "" {
				authMiddleware := NewAuthMiddleware(cfg.JWTSecret, logger)
				r.Use(authMiddleware.Authenticate)
			}

			r.Get("/auditoria", auditHandler.GetFiltered)
			r.Post("/auditoria/buscarLog", auditHandler.PostBuscarLog)
		})
	})

	return r
}
