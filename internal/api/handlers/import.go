package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/stockimport/internal/domain"
	"github.com/jafarshop/stockimport/internal/service"
	apperrors "github.com/jafarshop/stockimport/pkg/errors"
)

// AddToShopifyRequest accepts a single image or the bulk images form.
// imageUrl is accepted as an alias of sourceUrl.
type AddToShopifyRequest struct {
	Title       string          `json:"title"`
	SourceURL   string          `json:"sourceUrl"`
	ImageURL    string          `json:"imageUrl"`
	PricingTier *string         `json:"pricingTier"`
	Images      []BulkImageItem `json:"images"`
}

type BulkImageItem struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	PricingTier *string `json:"pricingTier"`
}

// BulkImportResponse reports per-item outcomes with totals
type BulkImportResponse struct {
	Results    []domain.ImportResult `json:"results"`
	Added      int                   `json:"added"`
	Duplicates int                   `json:"duplicates"`
	Errors     int                   `json:"errors"`
}

// HandleAddToShopify handles POST /api/add-to-shopify
func HandleAddToShopify(importer *service.Importer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddToShopifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, "invalid request body", &apperrors.ErrValidation{Message: "invalid request body: " + err.Error()})
			return
		}

		ctx := context.WithoutCancel(c.Request.Context())

		if len(req.Images) > 0 {
			reqs := make([]domain.ImportRequest, 0, len(req.Images))
			for _, img := range req.Images {
				reqs = append(reqs, domain.ImportRequest{Title: img.Title, SourceURL: img.URL, PricingTier: img.PricingTier})
			}
			results, err := importer.ImportBatch(ctx, reqs)
			if err != nil {
				respondError(c, "Duplicate check failed; products not added", err)
				return
			}
			resp := BulkImportResponse{Results: results}
			for _, r := range resp.Results {
				switch r.Status {
				case domain.ImportStatusAdded:
					resp.Added++
				case domain.ImportStatusDuplicate:
					resp.Duplicates++
				default:
					resp.Errors++
				}
			}
			logger.Info("Bulk import finished",
				zap.Int("items", len(reqs)),
				zap.Int("added", resp.Added),
				zap.Int("duplicates", resp.Duplicates),
				zap.Int("errors", resp.Errors),
			)
			// A batch where nothing succeeded fails like a single failed import
			if resp.Errors > 0 && resp.Errors == len(resp.Results) {
				c.JSON(http.StatusInternalServerError, resp)
				return
			}
			c.JSON(http.StatusOK, resp)
			return
		}

		sourceURL := strings.TrimSpace(req.SourceURL)
		if sourceURL == "" {
			sourceURL = strings.TrimSpace(req.ImageURL)
		}
		if sourceURL == "" {
			respondError(c, "missing image URL", &apperrors.ErrValidation{
				Message: "sourceUrl is required",
				Fields:  map[string]string{"sourceUrl": "required"},
			})
			return
		}

		res := importer.Import(ctx, domain.ImportRequest{Title: req.Title, SourceURL: sourceURL, PricingTier: req.PricingTier})
		if res.Status == domain.ImportStatusError {
			c.JSON(http.StatusInternalServerError, res)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
