package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskroster-api/internal/api"
	apiMiddleware "github.com/phrazzld/taskroster-api/internal/api/middleware"
	"github.com/phrazzld/taskroster-api/internal/service"
	"github.com/phrazzld/taskroster-api/internal/service/auth"
)

// routerDeps are the services the HTTP layer needs.
type routerDeps struct {
	accounts       service.AccountService
	tasks          service.TaskService
	tokens         auth.JWTService
	maxUploadBytes int64
	logger         *slog.Logger
}

// newRouter creates the application router with all routes and middleware.
func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(deps.logger))
	r.Use(middleware.Recoverer)

	authMiddleware := apiMiddleware.NewAuthMiddleware(deps.tokens, deps.accounts)
	authHandler := api.NewAuthHandler(deps.accounts, deps.logger)
	adminHandler := api.NewAdminHandler(deps.accounts, deps.tasks, deps.logger)
	userHandler := api.NewUserHandler(deps.tasks, deps.maxUploadBytes, deps.logger)

	r.Post("/auth/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/auth/me", authHandler.Me)

		r.Route("/user", func(r chi.Router) {
			r.Get("/tasks", userHandler.ListMyTasks)
			r.Put("/tasks/{id}/complete", userHandler.CompleteTask)
			r.Put("/tasks/{id}/complete-with-image", userHandler.CompleteTaskWithImage)
		})

		r.Group(func(r chi.Router) {
			r.Use(apiMiddleware.RequireAdmin)

			r.Post("/auth/admin/create-user", authHandler.CreateUser)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/users", adminHandler.ListUsers)
				r.Patch("/users/{userId}/status", adminHandler.SetUserStatus)
				r.Post("/tasks", adminHandler.CreateTask)
				r.Get("/tasks", adminHandler.ListTasks)
				r.Get("/tasks/{id}", adminHandler.ListUserTasks)
				r.Get("/tasks/{id}/notifications", adminHandler.ListTaskNotifications)
				r.Get("/completed-tasks", adminHandler.ListCompletedTasks)
				r.Get("/tasks-stats", adminHandler.TaskStats)
				r.Get("/user-stats/{userId}", adminHandler.UserStats)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			deps.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
