package delivery

import (
	"net/http"

	"motelaudit-backend/internal/chat/usecase"
	"motelaudit-backend/internal/report/dto"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatUsecase *usecase.ChatUsecase // nil when the vector index is not configured
}

func NewChatHandler(chatUsecase *usecase.ChatUsecase) *ChatHandler {
	return &ChatHandler{chatUsecase: chatUsecase}
}

func (h *ChatHandler) Query(c *gin.Context) {
	if h.chatUsecase == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "vector index not configured"})
		return
	}

	var req dto.ChatQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.chatUsecase.Query(c.Request.Context(), req.Question, req.TopK)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, answer)
}
