package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/sohwatch/internal/api/handlers"
	"github.com/andresuchdata/sohwatch/internal/api/middleware"
)

// NewRouter wires the session endpoints behind the shared middleware
// stack.
func NewRouter(sessions *handlers.SessionHandler, allowedOrigins []string, maxUploadMB int64) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger(), middleware.Recovery())
	if maxUploadMB > 0 {
		router.MaxMultipartMemory = maxUploadMB << 20
	}

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")
	sessionGroup := apiGroup.Group("/sessions")
	{
		sessionGroup.POST("", sessions.CreateSession)
		sessionGroup.GET("/:id/rows", sessions.GetRows)
		sessionGroup.GET("/:id/summary", sessions.GetSummary)
		sessionGroup.GET("/:id/coverage", sessions.GetCoverage)
		sessionGroup.GET("/:id/export/csv", sessions.ExportCSV)
		sessionGroup.GET("/:id/export/xlsx", sessions.ExportExcel)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
