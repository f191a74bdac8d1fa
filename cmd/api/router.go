package api

import (
	"net/http"

	chatDelivery "motelaudit-backend/internal/chat/delivery"
	reportDelivery "motelaudit-backend/internal/report/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, reportHandler *reportDelivery.ReportHandler, chatHandler *chatDelivery.ChatHandler) {
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		reports := api.Group("/reports")
		{
			reports.GET("/fetch", reportHandler.Fetch)
			reports.GET("", reportHandler.ListReports)
			reports.GET("/:id", reportHandler.GetReport)
			reports.GET("/:id/vacant-dirty-rooms", reportHandler.GetVacantDirtyRooms)
			reports.GET("/:id/out-of-order-rooms", reportHandler.GetOutOfOrderRooms)
			reports.GET("/:id/comp-rooms", reportHandler.GetCompRooms)
			reports.GET("/:id/incidents", reportHandler.GetIncidents)
			reports.POST("/reindex", reportHandler.Reindex)
			reports.GET("/runs", reportHandler.ListRuns)
		}

		motels := api.Group("/motels")
		{
			motels.GET("/list", reportHandler.ListMotels)
		}

		usage := api.Group("/usage")
		{
			usage.GET("/summary", reportHandler.UsageSummary)
		}

		chat := api.Group("/chat")
		{
			chat.POST("/query", chatHandler.Query)
		}
	}
}
