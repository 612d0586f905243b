package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/deptportal/internal/app/controllers"
	"github.com/yigit/deptportal/internal/middleware"
	"github.com/yigit/deptportal/internal/pkg/metrics"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth          *controllers.AuthController
	Resources     *controllers.ResourceController
	Notifications *controllers.NotificationController
	QuizResults   *controllers.QuizResultController
	Files         *controllers.FileController
	Users         *controllers.UserController
	Generation    *controllers.GenerationController
	Health        *controllers.HealthController
}

// Options toggles optional routes
type Options struct {
	MetricsPath string
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	loginLimiter *middleware.RateLimiter,
	opts Options,
) {
	if opts.MetricsPath != "" {
		router.GET(opts.MetricsPath, gin.WrapH(metrics.Handler()))
	}

	api := router.Group("/api")
	api.Use(authMiddleware.Resolve())

	api.GET("/health", ctrl.Health.Health)

	// --- Auth ---
	auth := api.Group("/auth")
	{
		auth.POST("", loginLimiter.Handler(), ctrl.Auth.Login)
		auth.POST("/signup", loginLimiter.Handler(), ctrl.Auth.Signup)
		auth.DELETE("", ctrl.Auth.Logout)
		auth.GET("/me", authMiddleware.RequireAuth(), ctrl.Auth.Me)
	}

	// --- Resources: the gate decides per type and verb ---
	resources := api.Group("/resources")
	{
		resources.GET("", ctrl.Resources.List)
		resources.POST("", ctrl.Resources.Create)
		resources.PUT("", ctrl.Resources.Update)
		resources.DELETE("", ctrl.Resources.Delete)
		resources.GET("/registrations", authMiddleware.RequireAdmin(), ctrl.Resources.Registrations)
		resources.POST("/bookmark", authMiddleware.RequireAuth(), ctrl.Resources.Bookmark)
	}

	// Public downloads
	api.GET("/files/:id", ctrl.Files.Download)

	// --- Authenticated routes ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.RequireAuth())
	{
		notifications := authenticated.Group("/notifications")
		notifications.GET("", ctrl.Notifications.List)
		notifications.POST("", ctrl.Notifications.Create)
		notifications.PUT("", ctrl.Notifications.Update)
		notifications.DELETE("", ctrl.Notifications.Delete)
		notifications.GET("/ws", ctrl.Notifications.Subscribe)

		authenticated.POST("/quiz-results", ctrl.QuizResults.Submit)
		authenticated.GET("/quiz-results", ctrl.QuizResults.ListMine)

		authenticated.POST("/upload", ctrl.Files.Upload)

		authenticated.PUT("/users/me", ctrl.Users.UpdateMe)

		authenticated.POST("/quiz-generation", ctrl.Generation.Quiz)
		authenticated.POST("/flashcard-generation", ctrl.Generation.Flashcards)
		authenticated.POST("/chatbot", ctrl.Generation.Chat)
		authenticated.POST("/chatbot-analyze-pdf", ctrl.Generation.AnalyzePDF)
	}

	// --- Admin routes ---
	users := api.Group("/users")
	users.Use(authMiddleware.RequireAdmin())
	{
		users.GET("", ctrl.Users.List)
		users.POST("", ctrl.Users.Create)
		users.PUT("", ctrl.Users.Update)
		users.DELETE("", ctrl.Users.Delete)
	}
}
