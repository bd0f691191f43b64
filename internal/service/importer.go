package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/stockimport/internal/config"
	"github.com/jafarshop/stockimport/internal/domain"
	"github.com/jafarshop/stockimport/internal/fingerprint"
	"github.com/jafarshop/stockimport/internal/shopify"
	apperrors "github.com/jafarshop/stockimport/pkg/errors"
)

// ProductCreator submits a product creation request
type ProductCreator interface {
	CreateProduct(ctx context.Context, input shopify.ProductInput) (*shopify.Product, error)
}

// IndexSource builds a fresh inventory index
type IndexSource interface {
	Build(ctx context.Context) (domain.InventoryIndex, error)
}

// Importer creates Shopify products from Freepik images.
//
// With precheck enabled it rebuilds the inventory index before every create and
// refuses images already present. That keeps the store duplicate-free while imports
// are serialized; two concurrent imports of the same image can still both pass the
// check because the Admin API offers no idempotent create. Without precheck the
// importer relies on the search-time classification only.
type Importer struct {
	creator     ProductCreator
	index       IndexSource
	precheck    bool
	defaultTier string
	hasher      fingerprint.Hasher
	logger      *zap.Logger
}

func NewImporter(creator ProductCreator, index IndexSource, cfg config.ImportConfig, h fingerprint.Hasher, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{
		creator:     creator,
		index:       index,
		precheck:    cfg.Precheck && index != nil,
		defaultTier: cfg.DefaultPricingTier,
		hasher:      h,
		logger:      logger,
	}
}

// BuildProduct assembles the creation payload and returns it with the image fingerprint
func (i *Importer) BuildProduct(req domain.ImportRequest) (shopify.ProductInput, string) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = domain.DefaultProductTitle
	}
	sourceURL := strings.TrimSpace(req.SourceURL)
	fp := i.hasher.Of(sourceURL)

	tags := []string{domain.ImportedTag, fp}
	input := shopify.ProductInput{
		Title:  title,
		Status: "active",
		Images: []shopify.ImageInput{{Src: sourceURL}},
		Metafields: []shopify.MetafieldInput{
			{Namespace: CanonicalMetafieldNamespace, Key: CanonicalMetafieldKey, Type: "single_line_text_field", Value: fp},
			{Namespace: LegacyMetafieldNamespace, Key: LegacyMetafieldKey, Type: "single_line_text_field", Value: sourceURL},
		},
	}

	if req.PricingTier != nil {
		tier := domain.ResolvePricingTier(*req.PricingTier, i.defaultTier)
		tags = append(tags, "tier-"+tier.Key)
		input.Options = []shopify.OptionInput{{Name: "Size", Values: domain.Sizes}}
		for _, v := range domain.BuildVariants(tier) {
			input.Variants = append(input.Variants, shopify.VariantInput{
				Option1:             v.Size,
				Price:               v.Price.StringFixed(2),
				InventoryManagement: "shopify",
				InventoryQuantity:   v.Quantity,
			})
		}
	}

	input.Tags = shopify.JoinTags(tags)
	return input, fp
}

// Import creates one product. It makes a single attempt and never retries.
func (i *Importer) Import(ctx context.Context, req domain.ImportRequest) domain.ImportResult {
	if strings.TrimSpace(req.SourceURL) == "" {
		return i.missingURL(req)
	}
	var idx domain.InventoryIndex
	if i.precheck {
		var err error
		idx, err = i.index.Build(ctx)
		if err != nil {
			return i.failure(req, "", "Duplicate check failed; product not added", err)
		}
	}
	return i.importOne(ctx, req, idx)
}

// ImportBatch imports several images sequentially under the same duplicate policy
// as Import: one index build covers the batch and repeats within the batch are
// reported as duplicates. A failed index build fails the whole batch before any
// product is created.
func (i *Importer) ImportBatch(ctx context.Context, reqs []domain.ImportRequest) ([]domain.ImportResult, error) {
	idx := domain.NewInventoryIndex()
	if i.precheck {
		built, err := i.index.Build(ctx)
		if err != nil {
			i.logger.Error("Duplicate check failed; batch not imported", zap.Int("items", len(reqs)), zap.Error(err))
			return nil, fmt.Errorf("duplicate status unknown: %w", err)
		}
		idx = built
	}

	results := make([]domain.ImportResult, 0, len(reqs))
	for _, req := range reqs {
		res := i.importOne(ctx, req, idx)
		if res.Status == domain.ImportStatusAdded {
			idx.Add(res.Fingerprint)
		}
		results = append(results, res)
	}
	return results, nil
}

func (i *Importer) importOne(ctx context.Context, req domain.ImportRequest, idx domain.InventoryIndex) domain.ImportResult {
	if strings.TrimSpace(req.SourceURL) == "" {
		return i.missingURL(req)
	}

	input, fp := i.BuildProduct(req)
	if idx.Contains(fp) {
		i.logger.Info("Import skipped, image already in store", zap.String("fingerprint", fp), zap.String("source_url", req.SourceURL))
		return domain.ImportResult{
			Status:      domain.ImportStatusDuplicate,
			Message:     "Product already exists in Shopify",
			Title:       input.Title,
			SourceURL:   req.SourceURL,
			Fingerprint: fp,
		}
	}

	product, err := i.creator.CreateProduct(ctx, input)
	if err != nil {
		return i.failure(req, fp, "Failed to add product", err)
	}

	i.logger.Info("Product added to Shopify", zap.Int64("product_id", product.ID), zap.String("fingerprint", fp), zap.String("title", input.Title))
	return domain.ImportResult{
		Status:      domain.ImportStatusAdded,
		Message:     "Product added to Shopify",
		Title:       input.Title,
		SourceURL:   req.SourceURL,
		Fingerprint: fp,
		ProductID:   product.ID,
	}
}

func (i *Importer) missingURL(req domain.ImportRequest) domain.ImportResult {
	return i.failure(req, "", "Missing image URL", &apperrors.ErrValidation{Message: "sourceUrl is required"})
}

func (i *Importer) failure(req domain.ImportRequest, fp, message string, err error) domain.ImportResult {
	i.logger.Error(message, zap.String("source_url", req.SourceURL), zap.Error(err))

	var detail interface{} = err.Error()
	var up *apperrors.ErrUpstream
	if errors.As(err, &up) {
		detail = up.Detail()
	}
	return domain.ImportResult{
		Status:      domain.ImportStatusError,
		Message:     message,
		Title:       req.Title,
		SourceURL:   req.SourceURL,
		Fingerprint: fp,
		Detail:      detail,
	}
}
