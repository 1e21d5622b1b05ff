package api

import (
	"net/http"
	"time"

	"system_sentinel/internal/api/handler"
	"system_sentinel/internal/api/middleware"
	"system_sentinel/internal/app/service"
	"system_sentinel/internal/common"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(
	appName string,
	authService *service.AuthService,
	userService *service.UserService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Public root and health check
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithJSON(w, http.StatusOK, map[string]string{
			"message": appName + " Backend is running.",
			"version": handler.Version,
		})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": appName + " Backend",
		})
	})

	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	systemHandler := handler.NewSystemHandler()

	r.Route("/api", func(api chi.Router) {
		// Status/metrics placeholders (public)
		systemHandler.RegisterRoutes(api)

		// Auth routes (public)
		api.Group(func(public chi.Router) {
			authHandler.RegisterPublicRoutes(public)
		})

		// Routes for the authenticated, active user
		api.Group(func(protected chi.Router) {
			protected.Use(middleware.Authenticator(authService))
			protected.Use(middleware.RequireActive)
			authHandler.RegisterProtectedRoutes(protected)
		})

		// User administration (superusers only)
		api.Route("/users", func(admin chi.Router) {
			admin.Use(middleware.Authenticator(authService))
			admin.Use(middleware.RequireElevated)
			userHandler.RegisterRoutes(admin)
		})
	})

	return r
}
