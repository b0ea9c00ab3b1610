package handlers

import (
	"net/http"
	"time"

	"food_ordering/internal/middleware"
	"food_ordering/internal/redis"

	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Sessions      *redis.Client
	SessionTTL    time.Duration
	SecureCookies bool
	UploadDir     string
}

// NewRouter wires the middleware chain and every route.
func NewRouter(cfg RouterConfig, api *APIHandler, admin *AdminHandler, whatsapp *WhatsAppHandler) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.UploadDir != "" {
		router.Static("/static/uploads", cfg.UploadDir)
	}

	group := router.Group("/api", middleware.Session(cfg.Sessions, cfg.SessionTTL, cfg.SecureCookies))
	api.Register(group)
	adminGroup := admin.Register(group)
	whatsapp.Register(adminGroup)
	return router
}
