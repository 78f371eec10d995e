// Package api exposes the register operations as a JSON HTTP API for the
// browser front end.
package api

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the middleware chain and every /api/v1 route.
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(Logger(logger))
	router.Use(CORS())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health)

		materials := v1.Group("/materials")
		{
			materials.GET("", h.ListMaterials)
			materials.POST("", h.CreateMaterial)
			materials.PUT("/:id", h.UpdateMaterial)
			materials.PATCH("/:id/stock", h.SetStock)
		}

		v1.GET("/pricing", h.GetPricing)
		v1.PUT("/pricing", h.SetPricing)
		v1.POST("/quote", h.Quote)

		jobs := v1.Group("/jobs")
		{
			jobs.GET("", h.ListJobs)
			jobs.POST("", h.CreateJob)
			jobs.GET("/:id", h.GetJob)
			jobs.PATCH("/:id/status", h.UpdateJobStatus)
			jobs.GET("/:id/ticket", h.JobTicket)
		}

		v1.GET("/alerts", h.Alerts)
		v1.GET("/dashboard", h.Dashboard)

		orders := v1.Group("/purchase-orders")
		{
			orders.POST("/plan", h.PlanPurchaseOrders)
			orders.POST("/bulk", h.BulkReorder)
			orders.POST("/quantity", h.SetOrderQuantity)
			orders.POST("/export", h.ExportPurchaseOrders)
		}
	}

	return router
}
