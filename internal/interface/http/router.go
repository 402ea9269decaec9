package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/rencard-user/internal/infra/config"
	"github.com/yanqian/rencard-user/pkg/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, authMetrics *metrics.AuthMetrics) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", handler.Health)
	router.GET("/metrics", gin.WrapH(authMetrics.Handler()))

	required := authMiddleware(handler.authSvc, handler.cookies, true)
	optional := authMiddleware(handler.authSvc, handler.cookies, false)
	limit := func() gin.HandlerFunc { return rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger) }

	api := router.Group("/api/auth")
	{
		api.POST("/register", limit(), handler.Register)
		api.POST("/login", limit(), handler.Login)
		api.POST("/refresh-token", limit(), optional, handler.RefreshToken)
		api.POST("/logout", required, handler.Logout)
		api.POST("/change-password", required, handler.ChangePassword)
	}

	account := router.Group("/", required)
	{
		account.PUT("/user-phone-sex-age", handler.UpdateDemographics)
		account.POST("/initialize-profile", handler.InitializeProfile)
		account.GET("/me", handler.GetProfile)
		account.PUT("/me", handler.UpdateProfile)
		account.PUT("/me/photo", handler.SetPhoto)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
