package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/stockimport/internal/domain"
	"github.com/jafarshop/stockimport/internal/fingerprint"
	"github.com/jafarshop/stockimport/internal/shopify"
)

// Metafields carrying fingerprints. The canonical one stores the fingerprint itself;
// the legacy one stores the raw Freepik URL and is hashed on read.
const (
	CanonicalMetafieldNamespace = "fpimg"
	CanonicalMetafieldKey       = "fingerprint"
	LegacyMetafieldNamespace    = "custom"
	LegacyMetafieldKey          = "freepik.image_url"

	listingPageSize = 250
)

// PageLister fetches one page of an Admin API listing
type PageLister interface {
	GetPage(ctx context.Context, pageURL string) (body []byte, next string, err error)
}

// Extractor reads fingerprints out of one paginated listing
type Extractor interface {
	Name() string
	// FirstPage is the listing path relative to the Admin API base
	FirstPage() string
	// Extract adds every fingerprint found in a page body to idx and returns how many it saw
	Extract(body []byte, idx domain.InventoryIndex) (int, error)
}

// TagExtractor scans product tags for the fingerprint marker
type TagExtractor struct{}

func (TagExtractor) Name() string { return "product-tags" }

func (TagExtractor) FirstPage() string {
	q := url.Values{}
	q.Set("fields", "id,tags")
	q.Set("limit", strconv.Itoa(listingPageSize))
	return "products.json?" + q.Encode()
}

func (TagExtractor) Extract(body []byte, idx domain.InventoryIndex) (int, error) {
	var page shopify.ProductsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return 0, fmt.Errorf("failed to parse products page: %w", err)
	}
	found := 0
	for _, p := range page.Products {
		for _, tag := range p.TagList() {
			if fingerprint.IsFingerprint(tag) {
				idx.Add(tag)
				found++
			}
		}
	}
	return found, nil
}

// MetafieldExtractor matches metafields by exact namespace and key. Values that
// already carry the marker are taken verbatim; URL values are fingerprinted.
type MetafieldExtractor struct {
	Namespace string
	Key       string
	Hasher    fingerprint.Hasher
}

func (m MetafieldExtractor) Name() string {
	return "metafield:" + m.Namespace + "." + m.Key
}

func (m MetafieldExtractor) FirstPage() string {
	q := url.Values{}
	q.Set("namespace", m.Namespace)
	q.Set("key", m.Key)
	q.Set("limit", strconv.Itoa(listingPageSize))
	return "metafields.json?" + q.Encode()
}

func (m MetafieldExtractor) Extract(body []byte, idx domain.InventoryIndex) (int, error) {
	var page shopify.MetafieldsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return 0, fmt.Errorf("failed to parse metafields page: %w", err)
	}
	found := 0
	for _, mf := range page.Metafields {
		if mf.Namespace != m.Namespace || mf.Key != m.Key {
			continue
		}
		value := strings.TrimSpace(mf.StringValue())
		switch {
		case fingerprint.IsFingerprint(value):
			idx.Add(value)
			found++
		case strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://"):
			idx.Add(m.Hasher.Of(value))
			found++
		}
	}
	return found, nil
}

// DefaultExtractors returns the extractors in priority order: product tags,
// canonical metafield, legacy URL metafield. The metafield listings use the
// shop-level endpoint and do not see product-owned metafields.
func DefaultExtractors(h fingerprint.Hasher) []Extractor {
	return []Extractor{
		TagExtractor{},
		MetafieldExtractor{Namespace: CanonicalMetafieldNamespace, Key: CanonicalMetafieldKey, Hasher: h},
		MetafieldExtractor{Namespace: LegacyMetafieldNamespace, Key: LegacyMetafieldKey, Hasher: h},
	}
}

// IndexBuilder collects the fingerprints already imported into the store.
// maxPages is the page budget of one whole build, shared by the listings in
// order, so a catalog larger than the budget is only partially indexed.
type IndexBuilder struct {
	lister     PageLister
	extractors []Extractor
	maxPages   int
	logger     *zap.Logger
}

func NewIndexBuilder(lister PageLister, extractors []Extractor, maxPages int, logger *zap.Logger) *IndexBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxPages < 1 {
		maxPages = 1
	}
	return &IndexBuilder{
		lister:     lister,
		extractors: extractors,
		maxPages:   maxPages,
		logger:     logger,
	}
}

// Build walks every listing page by page until the page budget is spent. A
// failed page aborts the whole build: the caller gets an error and no partial
// index.
func (b *IndexBuilder) Build(ctx context.Context) (domain.InventoryIndex, error) {
	idx := domain.NewInventoryIndex()
	fetched := 0
	for _, ex := range b.extractors {
		if fetched >= b.maxPages {
			b.logger.Warn("Index page budget spent, listing skipped", zap.String("listing", ex.Name()), zap.Int("max_pages", b.maxPages))
			continue
		}
		pageURL := ex.FirstPage()
		pages := 0
		for pageURL != "" && fetched < b.maxPages {
			body, next, err := b.lister.GetPage(ctx, pageURL)
			if err != nil {
				b.logger.Error("Index build aborted", zap.String("listing", ex.Name()), zap.Int("page", pages+1), zap.Error(err))
				return nil, fmt.Errorf("index build: %s page %d: %w", ex.Name(), pages+1, err)
			}
			fetched++
			pages++
			found, err := ex.Extract(body, idx)
			if err != nil {
				return nil, fmt.Errorf("index build: %s page %d: %w", ex.Name(), pages, err)
			}
			b.logger.Debug("Index page scanned", zap.String("listing", ex.Name()), zap.Int("page", pages), zap.Int("found", found))
			pageURL = next
		}
		if pageURL != "" {
			b.logger.Warn("Index page budget spent, listing truncated", zap.String("listing", ex.Name()), zap.Int("max_pages", b.maxPages))
		}
	}
	b.logger.Info("Inventory index built", zap.Int("fingerprints", len(idx)), zap.Int("pages", fetched))
	return idx, nil
}
