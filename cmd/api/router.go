package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agromarket-backend/internal/infrastructure/metrics"
	"agromarket-backend/internal/shared/middleware"
	"agromarket-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Metrics(),
		middleware.Logger(),
		middleware.CORS(c.Config.App.AllowedOrigins),
	)

	checks := map[string]healthCheck{
		"database": {check: c.DB.HealthCheck, critical: true},
		"redis":    {check: c.Cache.HealthCheck},
	}
	if c.Storage != nil {
		checks["storage"] = healthCheck{check: c.Storage.HealthCheck}
	}

	router.GET("/health", healthCheckHandler(c.Config.App.Version, checks))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")
	{
		setupSupplierRoutes(v1, c)
	}

	return router
}

// ========================================
// SUPPLIER ROUTES
// ========================================
func setupSupplierRoutes(v1 *gin.RouterGroup, c *container.Container) {
	supplier := v1.Group("/supplier")
	supplier.Use(
		middleware.AuthMiddleware(c.JWTManager),
		middleware.RequireRole("supplier", "admin"),
	)
	{
		supplier.POST("/products/import", c.ImportHandler.ImportProducts)
		supplier.GET("/products/import/template", c.ImportHandler.DownloadTemplate)
		supplier.GET("/products/export", c.ImportHandler.ExportProducts)

		supplier.GET("/imports", c.ImportHandler.ListImports)
		supplier.GET("/imports/:id", c.ImportHandler.GetImport)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================

type healthCheck struct {
	check    func(ctx context.Context) error
	critical bool // a failing critical check turns the response into 503
}

func healthCheckHandler(version string, checks map[string]healthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		statusCode := http.StatusOK
		services := gin.H{}

		for name, hc := range checks {
			if err := hc.check(ctx); err != nil {
				services[name] = "error: " + err.Error()
				status = "degraded"
				if hc.critical {
					statusCode = http.StatusServiceUnavailable
				}
				continue
			}
			services[name] = "ok"
		}

		c.JSON(statusCode, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   version,
			"services":  services,
		})
	}
}
