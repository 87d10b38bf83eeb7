package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/confreg/registration-api/internal/config"
)

// CORSMiddleware builds the cross-origin policy for the registration
// frontend. Checkout and payment requests carry an Idempotency-Key
// header, so that header must survive whatever origin list is
// configured or the browser preflight will strip it.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     allowedHeaders(cfg.AllowedHeaders),
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// Local frontend dev servers when nothing is configured
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:3001",
			"http://127.0.0.1:3000",
		}
	}

	if len(corsConfig.AllowMethods) == 0 {
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}

	return cors.New(corsConfig)
}

func allowedHeaders(configured []string) []string {
	if len(configured) == 0 {
		return []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
			"Origin",
			"Idempotency-Key",
		}
	}
	for _, h := range configured {
		if h == "Idempotency-Key" {
			return configured
		}
	}
	return append(configured, "Idempotency-Key")
}
