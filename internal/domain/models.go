package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultProductTitle replaces a blank title on import
const DefaultProductTitle = "Freepik Image"

// ImportedTag marks every product created by this service
const ImportedTag = "freepik-imported"

// ImageResult is one image returned by a Freepik search
type ImageResult struct {
	Title     string `json:"title"`
	SourceURL string `json:"sourceUrl"`
}

// ClassifiedImage is an ImageResult annotated with its duplicate status
type ClassifiedImage struct {
	ImageResult
	Fingerprint string `json:"fingerprint,omitempty"`
	Duplicate   bool   `json:"duplicate"`
}

// InventoryIndex is the set of fingerprints already present in the store.
// It is built per request and never shared.
type InventoryIndex map[string]struct{}

// NewInventoryIndex returns an empty index
func NewInventoryIndex() InventoryIndex {
	return make(InventoryIndex)
}

// Add inserts a fingerprint; empty values are ignored
func (idx InventoryIndex) Add(fp string) {
	if fp == "" {
		return
	}
	idx[fp] = struct{}{}
}

// Contains reports whether fp is present
func (idx InventoryIndex) Contains(fp string) bool {
	if fp == "" {
		return false
	}
	_, ok := idx[fp]
	return ok
}

// Sorted returns the fingerprints in lexical order
func (idx InventoryIndex) Sorted() []string {
	out := make([]string, 0, len(idx))
	for fp := range idx {
		out = append(out, fp)
	}
	sort.Strings(out)
	return out
}

// ImportRequest is a request to create one product from an image.
// PricingTier is nil when the caller did not ask for size variants.
type ImportRequest struct {
	Title       string
	SourceURL   string
	PricingTier *string
}

// ImportResult reports the outcome of a single import
type ImportResult struct {
	Status      ImportStatus `json:"status"`
	Message     string       `json:"message"`
	Title       string       `json:"title,omitempty"`
	SourceURL   string       `json:"sourceUrl,omitempty"`
	Fingerprint string       `json:"fingerprint,omitempty"`
	ProductID   int64        `json:"productId,omitempty"`
	Detail      interface{}  `json:"detail,omitempty"`
}

// PricingTier selects the base and largest-size price for generated variants
type PricingTier struct {
	Key        string
	BasePrice  decimal.Decimal
	LargePrice decimal.Decimal
}

// Variant is one generated size variant
type Variant struct {
	Size     string
	Price    decimal.Decimal
	Quantity int
}

// IdempotencyKey stores the replayable result of an import request
type IdempotencyKey struct {
	Key          string
	RequestHash  string
	StatusCode   int
	ResponseBody []byte
	CreatedAt    time.Time
}
