// Package main provides the EduBot chat server entry point.
package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edubot/edubot-go/internal/buildinfo"
	"github.com/edubot/edubot-go/internal/chat"
	"github.com/edubot/edubot-go/internal/config"
	"github.com/edubot/edubot-go/internal/knowledge"
	"github.com/edubot/edubot-go/internal/storage"
)

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, chatHandler *chat.Handler, db *storage.DB, matcher *knowledge.Matcher, registry *prometheus.Registry, cfg *config.Config) {
	// Root endpoint - service banner
	rootHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "edubot",
			"version": buildinfo.Version,
		})
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Liveness probe - only confirms the process is serving.
	// Must never touch dependencies.
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness probe - checks the database and reports data counts
	readyHandler := func(c *gin.Context) {
		if err := db.Ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}

		conversationCount, _ := db.CountConversations(c.Request.Context())

		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"database": "connected",
			"data": gin.H{
				"knowledge_entries": matcher.Count(),
				"conversations":     conversationCount,
			},
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Chat API
	api := router.Group("/api")
	api.POST("/messages", chatHandler.SendMessage)
	api.GET("/conversations", chatHandler.ListConversations)
	api.GET("/conversations/:id", chatHandler.GetConversation)

	// Prometheus metrics endpoint, Basic Auth when a password is configured
	metricsHandler := gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if cfg.MetricsPassword != "" {
		authorized := router.Group("/", gin.BasicAuth(gin.Accounts{
			cfg.MetricsUsername: cfg.MetricsPassword,
		}))
		authorized.GET("/metrics", metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}
}
