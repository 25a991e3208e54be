package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"task-tracker/internal/config"
	"task-tracker/internal/middleware"
	"task-tracker/internal/services"
)

// NewRouter wires the HTTP surface: auth and health endpoints are open,
// task endpoints sit behind the bearer token middleware.
func NewRouter(
	db *gorm.DB,
	cfg *config.Config,
	log *logrus.Entry,
	tokens *services.TokenService,
	userService services.UserService,
	taskService services.TaskService,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)
	router.Use(rateLimiter.Middleware())

	authHandler := NewAuthHandler(db, userService, log)
	taskHandler := NewTaskHandler(db, taskService, log)
	healthHandler := NewHealthHandler(db, log)

	auth := router.Group("/auth")
	{
		auth.POST("/signup", authHandler.SignUp)
		auth.POST("/login", authHandler.Login)
	}

	tasks := router.Group("/tasks")
	tasks.Use(middleware.AuthMiddleware(db, tokens, userService))
	{
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("", taskHandler.ListTasks)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PUT("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
	}

	health := router.Group("/healthcheck")
	{
		health.GET("/app", healthHandler.AppHealthCheck)
		health.GET("/db", healthHandler.DBHealthCheck)
	}

	return router
}
