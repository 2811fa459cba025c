// Package api wires the HTTP routes of the service onto the shared gin
// server.
package api

import (
	"github.com/gin-gonic/gin"

	infragin "github.com/Mod5ied/eagle-server/infrastructure/gin"
	infrahealth "github.com/Mod5ied/eagle-server/infrastructure/health"
	"github.com/Mod5ied/eagle-server/infrastructure/logger"
	"github.com/Mod5ied/eagle-server/infrastructure/metrics"
	"github.com/Mod5ied/eagle-server/internal/auth"
	"github.com/Mod5ied/eagle-server/internal/config"
)

const serviceName = "eagle-server"

// Dependencies are the collaborators the routes need. Metrics is optional.
type Dependencies struct {
	Config      *config.Config
	Logger      logger.Logger
	Products    ProductService
	Tokens      *auth.TokenService
	Credentials *auth.CredentialValidator
	Health      *infrahealth.Checker
	Metrics     *metrics.Metrics
	Version     string
}

// NewServer builds the HTTP server with every route registered.
func NewServer(deps Dependencies) *infragin.Server {
	cfg := deps.Config

	builder := infragin.NewServerBuilder(serviceName, cfg.Server.Port).
		WithLogger(deps.Logger).
		WithHost(cfg.Server.Host).
		WithDebug(cfg.Environment == config.EnvDevelopment).
		WithVersion(deps.Version).
		WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout).
		WithCORS(infragin.CORSConfig{
			AllowedOrigins:   cfg.CORS.FrontendOrigins,
			AllowCredentials: true,
		}).
		WithRoutes(func(router *gin.Engine) {
			SetupRoutes(router, deps)
		})

	if deps.Metrics != nil {
		builder = builder.WithMiddleware(deps.Metrics.GinMiddleware())
	}

	return builder.Build()
}

// SetupRoutes registers the API on router.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	useJSONFieldNames()

	var recorder LoginRecorder
	if deps.Metrics != nil {
		recorder = deps.Metrics
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	router.GET("/health/live", infrahealth.GinLivenessHandler())

	authHandler := NewAuthHandler(deps.Tokens, deps.Credentials, deps.Config.IsProduction(), recorder)
	productHandler := NewProductHandler(deps.Products)
	requireSession := auth.Middleware(deps.Tokens)

	api := router.Group("/api")
	api.GET("/health", deps.Health.GinHandler())

	authGroup := api.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", requireSession, authHandler.Me)
	authGroup.POST("/logout", authHandler.Logout)

	products := infragin.ProtectedGroup(api, "/products", requireSession)
	products.GET("", productHandler.List)
	products.POST("", productHandler.Create)
	products.PATCH("/:id", productHandler.Update)
	products.PATCH("/:id/status", productHandler.UpdateStatus)
	products.DELETE("/:id", productHandler.Delete)
}
