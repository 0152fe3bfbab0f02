package server

import (
	"net/http"
	"time"

	handler "socialcast/interfaces/http"
	"socialcast/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	User        handler.IUserHandler
	VideoIdea   handler.IVideoIdeaHandler
	Webhook     handler.IWebhookHandler
	Connection  handler.IConnectionHandler
	YouTubeAuth handler.IOAuthHandler
	TikTokAuth  handler.IOAuthHandler
	IGAuth      handler.IOAuthHandler
	Stream      gin.HandlerFunc
}

func NewRouter(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.User.Login)
		auth.POST("/register", h.User.Register)
	}

	webhooks := v1.Group("/webhooks")
	{
		webhooks.POST("/video-ready", h.Webhook.VideoReady)
		webhooks.POST("/payment", h.Webhook.Payment)
	}

	// OAuth callbacks arrive from the provider redirect, outside our session.
	oauthPublic := v1.Group("/oauth")
	{
		oauthPublic.GET("/youtube/callback", h.YouTubeAuth.Callback)
		oauthPublic.GET("/tiktok/callback", h.TikTokAuth.Callback)
		oauthPublic.GET("/instagram/callback", h.IGAuth.Callback)
	}

	secured := v1.Group("")
	secured.Use(middleware.Auth())
	{
		secured.GET("/users/me", h.User.Profile)

		secured.POST("/video-ideas", h.VideoIdea.Submit)
		secured.GET("/video-ideas", h.VideoIdea.List)
		secured.GET("/video-ideas/:id", h.VideoIdea.Get)
		secured.POST("/video-ideas/:id/approve", h.VideoIdea.Approve)
		secured.POST("/video-ideas/:id/reject", h.VideoIdea.Reject)
		secured.POST("/video-ideas/:id/publish", h.VideoIdea.Publish)
		secured.POST("/video-ideas/:id/retry", h.VideoIdea.Retry)

		secured.GET("/connections", h.Connection.Status)
		secured.DELETE("/connections/:platform", h.Connection.Disconnect)

		secured.GET("/oauth/youtube/connect", h.YouTubeAuth.Connect)
		secured.GET("/oauth/tiktok/connect", h.TikTokAuth.Connect)
		secured.GET("/oauth/instagram/connect", h.IGAuth.Connect)

		if h.Stream != nil {
			secured.GET("/events/stream", h.Stream)
		}
	}

	return router
}
