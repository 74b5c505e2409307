package routes

import (
	"net/http"
	"strings"

	"taskbuddy-api/internal/config"
	"taskbuddy-api/internal/handlers"
	"taskbuddy-api/internal/middleware"
	"taskbuddy-api/internal/realtime"
	"taskbuddy-api/internal/storage"
	"taskbuddy-api/internal/tasks"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(cfg *config.Config, store *tasks.Store, blobs *storage.LocalStore, hub *realtime.Hub) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.Default()
	// multipart parts beyond this are spooled to disk
	ginRouter.MaxMultipartMemory = blobs.MaxBytes()

	// CORS middleware (for frontend integration)
	ginRouter.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "TaskBuddy API is running",
		})
	})

	// Uploaded attachments, addressed by the URLs the blob store hands out.
	// An absolute base URL means something else serves them.
	if strings.HasPrefix(cfg.Storage.PublicBaseURL, "/") {
		ginRouter.Static(cfg.Storage.PublicBaseURL, blobs.Root())
	}

	taskHandler := handlers.NewTaskHandler(store, blobs, hub, blobs.MaxBytes())

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		protectedRoutes.GET("/me", handlers.Me)
		protectedRoutes.GET("/users", handlers.GetAllUsers)

		// Task endpoints
		protectedRoutes.GET("/tasks", taskHandler.GetTasks)
		protectedRoutes.POST("/tasks", taskHandler.CreateTask)
		protectedRoutes.POST("/tasks/bulk", taskHandler.BulkTasks)
		protectedRoutes.GET("/tasks/:id", taskHandler.GetTaskByID)
		protectedRoutes.PUT("/tasks/:id", taskHandler.UpdateTask)
		protectedRoutes.PATCH("/tasks/:id/status", taskHandler.UpdateTaskStatus)
		protectedRoutes.POST("/tasks/:id/move", taskHandler.MoveTask)
		protectedRoutes.DELETE("/tasks/:id", taskHandler.DeleteTask)
		protectedRoutes.GET("/stats", taskHandler.GetStats)
		protectedRoutes.POST("/uploads", taskHandler.UploadFile)

		// Live task events
		protectedRoutes.GET("/ws", handlers.WebSocketHandler(hub))
	}

	return ginRouter
}
