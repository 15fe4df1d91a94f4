package http

import (
	"taskmanager/internal/http/handlers"
	"taskmanager/internal/http/middleware"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, h *handlers.Handler, tokens *service.TokenService, version string) {
	healthHandler := handlers.NewHealthHandler(db, version)

	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.GET("/me", middleware.Auth(tokens), h.Me)
	auth.PUT("/me", middleware.Auth(tokens), h.UpdateMe)

	tasks := api.Group("/tasks")
	tasks.Use(middleware.Auth(tokens))
	{
		tasks.GET("", h.ListTasks)
		tasks.POST("", h.CreateTask)
		tasks.GET("/:id", h.GetTask)
		tasks.PUT("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)
	}
}
