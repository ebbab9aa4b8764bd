package httpapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"rice-bot/internal/container"
)

// NewRouter собирает gin-роутер с загрузкой изображений и JSON API
func NewRouter(c *container.Container, maxUploadBytes int64) (*gin.Engine, error) {
	h, err := NewHandler(c)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(c.Log))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", headerRequestID},
		ExposeHeaders:   []string{headerRequestID},
	}))

	r.GET("/", h.Index)
	r.GET("/health", h.Health)

	upload := r.Group("/", limitBody(maxUploadBytes))
	upload.POST("/detect", h.DetectPage)
	upload.POST("/api/v1/detect", h.DetectJSON)

	return r, nil
}
