package service

import (
	"github.com/jafarshop/stockimport/internal/domain"
	"github.com/jafarshop/stockimport/internal/fingerprint"
)

// Classify marks each result whose fingerprint is already in idx. Results with
// no source URL are never duplicates.
func Classify(results []domain.ImageResult, idx domain.InventoryIndex, h fingerprint.Hasher) []domain.ClassifiedImage {
	out := make([]domain.ClassifiedImage, 0, len(results))
	for _, r := range results {
		fp := h.Of(r.SourceURL)
		out = append(out, domain.ClassifiedImage{
			ImageResult: r,
			Fingerprint: fp,
			Duplicate:   idx.Contains(fp),
		})
	}
	return out
}
