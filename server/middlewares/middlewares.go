package middlewares

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// APIKey guards the ingest and probe endpoints with the shared collector
// secret. The key is compared in constant time against the API_KEY
// environment variable.
func APIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("API-Key")
		expected := os.Getenv("API_KEY")

		if expected == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
