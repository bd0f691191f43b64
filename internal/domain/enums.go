package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ImportStatus is the outcome of an import attempt
type ImportStatus string

const (
	ImportStatusAdded     ImportStatus = "added"
	ImportStatusDuplicate ImportStatus = "duplicate"
	ImportStatusError     ImportStatus = "error"
)

// IsValid checks if the import status is valid
func (s ImportStatus) IsValid() bool {
	switch s {
	case ImportStatusAdded, ImportStatusDuplicate, ImportStatusError:
		return true
	default:
		return false
	}
}

// Sizes lists generated variants from smallest to largest.
// The last entry is priced at the tier's large price.
var Sizes = []string{"XS", "S", "M", "L", "XL", "2XL", "3XL"}

// PlaceholderStock is the inventory quantity set on every generated variant
const PlaceholderStock = 100

// DefaultPricingTierKey is used when a request names no tier or an unknown one
const DefaultPricingTierKey = "499-599"

var pricingTiers = map[string]PricingTier{
	"399-499": {Key: "399-499", BasePrice: decimal.NewFromInt(399), LargePrice: decimal.NewFromInt(499)},
	"499-599": {Key: "499-599", BasePrice: decimal.NewFromInt(499), LargePrice: decimal.NewFromInt(599)},
	"599-699": {Key: "599-699", BasePrice: decimal.NewFromInt(599), LargePrice: decimal.NewFromInt(699)},
}

// LookupPricingTier returns the tier registered under key
func LookupPricingTier(key string) (PricingTier, bool) {
	t, ok := pricingTiers[strings.TrimSpace(key)]
	return t, ok
}

// ResolvePricingTier returns the tier for key, falling back to fallbackKey and then
// to DefaultPricingTierKey when neither is known.
func ResolvePricingTier(key, fallbackKey string) PricingTier {
	if t, ok := LookupPricingTier(key); ok {
		return t
	}
	if t, ok := LookupPricingTier(fallbackKey); ok {
		return t
	}
	return pricingTiers[DefaultPricingTierKey]
}

// BuildVariants creates one variant per size for tier
func BuildVariants(tier PricingTier) []Variant {
	variants := make([]Variant, 0, len(Sizes))
	for i, size := range Sizes {
		price := tier.BasePrice
		if i == len(Sizes)-1 {
			price = tier.LargePrice
		}
		variants = append(variants, Variant{Size: size, Price: price, Quantity: PlaceholderStock})
	}
	return variants
}
