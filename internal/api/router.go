package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/stockimport/internal/api/handlers"
	"github.com/jafarshop/stockimport/internal/api/middleware"
	"github.com/jafarshop/stockimport/internal/config"
	"github.com/jafarshop/stockimport/internal/repository"
	"github.com/jafarshop/stockimport/internal/service"
	"github.com/jafarshop/stockimport/internal/shopify"
	"github.com/jafarshop/stockimport/web"
)

// Services bundles what the handlers call into
type Services struct {
	Search   *service.SearchService
	Importer *service.Importer
	Index    service.IndexSource
	OAuth    *shopify.OAuth
}

// NewRouter creates and configures the Gin router. repos may be nil when no
// database is configured.
func NewRouter(cfg *config.Config, svcs *Services, repos *repository.Repositories, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging(logger))
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	var idempotency repository.IdempotencyKeyRepository
	if repos != nil {
		idempotency = repos.IdempotencyKey
	}

	apiRoutes := router.Group("/api")
	{
		apiRoutes.GET("/search", handlers.HandleSearch(svcs.Search, logger))
		apiRoutes.GET("/shopify-hashes", handlers.HandleShopifyHashes(svcs.Index, logger))
		apiRoutes.POST("/add-to-shopify",
			middleware.IdempotencyMiddleware(idempotency, logger),
			handlers.HandleAddToShopify(svcs.Importer, logger),
		)
		apiRoutes.GET("/auth", handlers.HandleAuth(svcs.OAuth, logger))
		apiRoutes.GET("/auth/callback", handlers.HandleAuthCallback(svcs.OAuth, logger))
	}

	return router
}
