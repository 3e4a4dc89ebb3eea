package router

import (
	"log"
	"net/http"

	"github.com/fledge-social/fledge/backend/internal/apperrors"
	"github.com/fledge-social/fledge/backend/internal/handlers"
	"github.com/fledge-social/fledge/backend/internal/middleware"
	"github.com/fledge-social/fledge/backend/internal/models"
	"github.com/fledge-social/fledge/backend/internal/repositories"
	"github.com/fledge-social/fledge/backend/internal/services"
	"github.com/fledge-social/fledge/backend/pkg/assets"
	"github.com/fledge-social/fledge/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.HTTPErrorHandler = errorHandler
}

// errorHandler renders every failure as {"error": message} with the HTTP
// status reflecting the error kind.
func errorHandler(err error, c echo.Context) {
	code := apperrors.Status(err)
	message := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}
	if code == http.StatusInternalServerError {
		message = "Internal server error"
	}

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"error": message})
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client, assetStore assets.Store) {
	if err := pgdb.AutoMigrate(&models.Notification{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	mongoDB := mgClient.Database("fledge")
	userRepo := repositories.NewMongoUserRepository(mongoDB)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)

	engagement := services.NewEngagementService(userRepo, postRepo, notificationRepo)

	// Unprotected auth routes
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)

	// Protected routes
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	authHandler.RegisterProtectedAuthRoutes(api)

	userHandler := handlers.NewUserHandler(userRepo, engagement, assetStore)
	userHandler.RegisterUserRoutes(api)

	postHandler := handlers.NewPostHandler(postRepo, userRepo, engagement, assetStore)
	postHandler.RegisterPostRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	log.Println("All routes configured.")
}
