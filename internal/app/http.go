package app

import (
	"context"
	"net/http"

	"steam-auth-service/internal/auth/handler"
	"steam-auth-service/internal/auth/resolver"
	"steam-auth-service/internal/config"
	"steam-auth-service/internal/middleware"
	"steam-auth-service/internal/session"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	registry, err := setupStrategies(ctx, cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	sessionStore := session.NewRedisStore(infra.Redis.Client)
	identityResolver := resolver.NewDBResolver(infra.DB)

	authHandler := handler.NewHandler(
		registry,
		sessionStore,
		identityResolver,
		cfg.SessionTTL,
	)

	authMiddleware := middleware.NewAuthMiddleware(sessionStore)

	return newRouter(authHandler, authMiddleware), infra.Close, nil
}

func newRouter(authHandler *handler.Handler, authMiddleware *middleware.AuthMiddleware) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Public routes
	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Protected API routes
	api := router.Group("/api")
	api.Use(middleware.GinRequireAuth(authMiddleware))

	api.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(middleware.GinUserIDKey),
		})
	})

	return router
}
