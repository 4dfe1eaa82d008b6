package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS for the static frontend, which is served elsewhere
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Client-Token, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/locations", handler.GetLocations)
	r.GET("/meals", handler.GetMeals)
	r.POST("/meals/:id/vote", handler.PostVote)
	r.POST("/meals/:id/size", handler.PostSizeReport)
	r.GET("/meals/:id/comments", handler.GetComments)
	r.POST("/meals/:id/comments", handler.PostComment)
	r.GET("/meals/:id/photos", handler.GetPhotos)
	r.POST("/meals/:id/photos", handler.PostPhoto)

	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	// Moderation endpoints (conditionally enabled with authentication)
	if apiAccessKey != "" {
		api := r.Group("/api")
		api.Use(authMiddleware(apiAccessKey))
		{
			api.POST("/refresh", handler.APIRefreshAll)
			api.POST("/refresh/:location", handler.APIRefreshLocation)
			api.DELETE("/comments/:id", handler.APIDeleteComment)
			api.DELETE("/photos/:id", handler.APIDeletePhoto)
			api.POST("/photos/:id/approve", handler.APIApprovePhoto)
		}
		slog.Info("Moderation endpoints enabled with authentication")
	} else {
		slog.Info("Moderation endpoints disabled (API_ACCESS_KEY not set)")
	}

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"locations": "/locations",
			"meals":     "/meals?location=<id>&date=<YYYY-MM-DD>",
			"vote":      "/meals/<id>/vote (POST, X-Client-Token)",
			"size":      "/meals/<id>/size (POST, X-Client-Token)",
			"comments":  "/meals/<id>/comments",
			"photos":    "/meals/<id>/photos",
			"health":    "/health",
			"stats":     "/stats",
		}

		if apiAccessKey != "" {
			endpoints["refresh"] = "/api/refresh (POST, requires X-API-Key header)"
			endpoints["moderation"] = "/api/comments/<id>, /api/photos/<id> (DELETE, requires X-API-Key header)"
		}

		c.JSON(200, gin.H{
			"service":     "MensaHub",
			"description": "Community cafeteria menus with votes, comments and photos",
			"endpoints":   endpoints,
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for moderation endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" || providedKey != apiAccessKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key"})
			return
		}

		c.Next()
	}
}
