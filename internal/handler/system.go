package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SystemHandler serves liveness and capability-advertisement routes
type SystemHandler struct{}

// NewSystemHandler constructs the system handler
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SystemHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "kasioon-search-gateway",
		"channels": []string{"http", "telegram", "whatsapp"},
		"endpoints": []string{
			"/api/search", "/api/analyze", "/api/search/voice",
			"/api/search/category/:categoryId",
			"/api/webhooks/telegram", "/api/webhooks/whatsapp",
		},
	})
}
