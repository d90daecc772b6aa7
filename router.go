package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chrispoponi/contractflowai-web-sub001/config"
	"github.com/chrispoponi/contractflowai-web-sub001/handler"
	"github.com/chrispoponi/contractflowai-web-sub001/middleware"
)

func newRouter(cfg *config.Config, parseHandler *handler.ParseHandler, contractHandler *handler.ContractHandler) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// CORS runs ahead of auth so preflights never need a token
	auth := middleware.AuthMiddleware(&cfg.Auth)
	limit := middleware.RateLimit(&cfg.RateLimit)

	parse := router.Group("/api/parse-contract", middleware.CORS(cfg.CORS.AllowedOrigin, http.MethodPost))
	{
		parse.OPTIONS("", func(c *gin.Context) {})
		parse.POST("", auth, limit, parseHandler.ParseContract)
	}

	contracts := router.Group("/api/contracts", middleware.CORS(cfg.CORS.AllowedOrigin, http.MethodGet))
	{
		contracts.OPTIONS("/:id", func(c *gin.Context) {})
		contracts.OPTIONS("/:id/summary", func(c *gin.Context) {})
		contracts.GET("/:id", auth, contractHandler.Get)
		contracts.GET("/:id/summary", auth, contractHandler.GetSummary)
	}

	return router
}
