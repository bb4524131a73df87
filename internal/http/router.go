package http

import (
	"github.com/gin-gonic/gin"
)

// RouterConfig contains the dependencies needed to create the HTTP router.
type RouterConfig struct {
	Registry SourceRegistry
	// Covers may be nil, in which case cover URLs are returned untouched.
	Covers       CoverProcessor
	CoversActive bool
	Version      string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Registry, cfg.CoversActive, cfg.Version)
	router.GET("/health", health.Status)

	books := NewBooksController(cfg.Registry, cfg.Covers)
	api := router.Group("/api")
	{
		api.GET("/sources", books.ListSources)
		api.GET("/sources/:source/search", books.Search)
		api.GET("/sources/:source/details", books.Details)
	}

	return router
}
