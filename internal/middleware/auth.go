// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trendlens/trendlens-backend/internal/services"
	"github.com/trendlens/trendlens-backend/internal/utils"
)

// AdminRequired guards admin endpoints with a bearer JWT issued by the login
// endpoint.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.UnauthorizedResponse(c, "Invalid authorization header")
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("admin_id", claims.AdminID)
		c.Set("admin_email", claims.Email)
		c.Next()
	}
}

// ScraperAuthRequired guards signal ingestion with per-scraper API keys.
func ScraperAuthRequired(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")

		source, err := authService.AuthenticateScraper(apiKey)
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid or inactive API key")
			c.Abort()
			return
		}

		c.Set("scraper_source", source.Name)
		c.Next()
	}
}
