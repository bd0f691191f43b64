package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/stockimport/internal/service"
	apperrors "github.com/jafarshop/stockimport/pkg/errors"
)

const defaultSearchTerm = "jersey"

// HandleSearch handles GET /api/search
func HandleSearch(svc *service.SearchService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		term := strings.TrimSpace(c.Query("term"))
		if term == "" {
			term = defaultSearchTerm
		}
		page := 1
		if p := c.Query("page"); p != "" {
			n, err := strconv.Atoi(p)
			if err != nil || n < 1 {
				respondError(c, "invalid page", &apperrors.ErrValidation{
					Message: "page must be a positive integer",
					Fields:  map[string]string{"page": p},
				})
				return
			}
			page = n
		}

		ctx := context.WithoutCancel(c.Request.Context())

		if raw, _ := strconv.ParseBool(c.Query("raw")); raw {
			body, err := svc.Raw(ctx, term, page)
			if err != nil {
				logger.Error("Freepik search failed", zap.String("term", term), zap.Int("page", page), zap.Error(err))
				respondError(c, "Failed to fetch images", err)
				return
			}
			c.Data(http.StatusOK, "application/json", body)
			return
		}

		res, err := svc.Search(ctx, term, page)
		if err != nil {
			logger.Error("Search failed", zap.String("term", term), zap.Int("page", page), zap.Error(err))
			respondError(c, "Failed to fetch images", err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// HandleShopifyHashes handles GET /api/shopify-hashes
func HandleShopifyHashes(index service.IndexSource, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		idx, err := index.Build(context.WithoutCancel(c.Request.Context()))
		if err != nil {
			logger.Error("Failed to build inventory index", zap.Error(err))
			respondError(c, "Failed to fetch Shopify hashes", err)
			return
		}
		c.JSON(http.StatusOK, idx.Sorted())
	}
}
