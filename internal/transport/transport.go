package transport

import (
	"github.com/gin-gonic/gin"
)

func InitRoutes(linkHandler *LinkHandler, analyticsHandler *AnalyticsHandler) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	api := router.Group("/api")
	{
		api.POST("/shorten", linkHandler.Shorten)
		api.POST("/shorten/batch", linkHandler.ShortenBatch)
		api.GET("/links/:id", linkHandler.GetLink)
		api.PATCH("/links/:id", linkHandler.UpdateLink)
		api.DELETE("/links/:id", linkHandler.DeleteLink)
		api.GET("/links/:id/stats", analyticsHandler.StatsByID)
		api.GET("/analytics/:code", analyticsHandler.StatsByCode)
		api.GET("/popular", linkHandler.Popular)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "shortly",
		})
	})

	// The catch-all redirect route registers last so /api and /health
	// keep precedence.
	router.GET("/:code", linkHandler.Redirect)

	return router
}
