package api

import (
	chatDelivery "motelaudit-backend/internal/chat/delivery"
	reportDelivery "motelaudit-backend/internal/report/delivery"
	"motelaudit-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	config        *config.Config
	reportHandler *reportDelivery.ReportHandler
	chatHandler   *chatDelivery.ChatHandler
}

func NewHandler(cfg *config.Config, reportHandler *reportDelivery.ReportHandler, chatHandler *chatDelivery.ChatHandler) *Handler {
	return &Handler{
		config:        cfg,
		reportHandler: reportHandler,
		chatHandler:   chatHandler,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.reportHandler, h.chatHandler)

	return r.Run(addr)
}
