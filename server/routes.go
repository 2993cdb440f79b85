package server

import (
	"net/http"

	"github.com/campushub/campusnews/server/middlewares"
	"github.com/campushub/campusnews/utils/flag"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

// SetupRouter wires all API routes. Everything under /api is guarded by the
// collector API key.
func SetupRouter(h *Handler) *gin.Engine {
	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()

	router.Use(cors.Default())
	router.Use(gintrace.Middleware(flag.ServiceName))

	api := router.Group("/api", middlewares.APIKey())
	api.POST("/news", h.Ingest)
	api.GET("/news", h.FilteredNews)
	api.GET("/news/feed/:userID", h.PersonalizedFeed)
	api.GET("/news/rundmail/date", h.LatestRundmailDate)
	api.GET("/news/tokens", h.TokenUsage)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	return router
}
