package router

import (
	"github.com/gin-gonic/gin"

	"github.com/stewardhq/steward/internal/http/handler/webhook"
)

func SetupRoutes(router *gin.Engine, webhookHandler *webhook.GitHubWebhookHandler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.POST("/webhook", webhookHandler.HandleEvent)
}
