package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"github.com/kasioon/search-gateway/internal/config"
	"github.com/kasioon/search-gateway/internal/handler"
	"github.com/kasioon/search-gateway/internal/middleware"
)

// RouterParams is the dig-injected set of handlers the router wires up
type RouterParams struct {
	dig.In

	Config          *config.Config
	SearchHandler   *handler.SearchHandler
	VoiceHandler    *handler.VoiceHandler
	CategoryHandler *handler.CategoryHandler
	SystemHandler   *handler.SystemHandler
	TelegramWebhook *handler.TelegramWebhookHandler
	WhatsAppWebhook *handler.WhatsAppWebhookHandler
}

// NewRouter builds the gin engine and registers every route the gateway serves
func NewRouter(params RouterParams) *gin.Engine {
	r := gin.New()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.TracingMiddleware())

	defaultLimiter := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: params.Config.RateLimit.RequestsPerSecond,
		Burst:             params.Config.RateLimit.Burst,
	})
	voiceLimiter := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: params.Config.RateLimit.VoiceRequestsPerSecond,
		Burst:             params.Config.RateLimit.VoiceBurst,
	})

	r.GET("/health", params.SystemHandler.Health)
	r.GET("/", params.SystemHandler.Info)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", defaultLimiter)
	{
		api.POST("/search", params.SearchHandler.Search)
		api.POST("/analyze", params.SearchHandler.Analyze)
		api.GET("/search/category/:categoryId", params.CategoryHandler.Browse)
		api.POST("/search/voice", voiceLimiter, params.VoiceHandler.Search)

		webhooks := api.Group("/webhooks")
		{
			webhooks.POST("/telegram", params.TelegramWebhook.Inbound)
			webhooks.GET("/whatsapp", params.WhatsAppWebhook.Verify)
			webhooks.POST("/whatsapp", params.WhatsAppWebhook.Inbound)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": gin.H{"code": "not_found", "message": "route not found"}})
	})

	return r
}
