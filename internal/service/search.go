package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/stockimport/internal/domain"
	"github.com/jafarshop/stockimport/internal/fingerprint"
	"github.com/jafarshop/stockimport/internal/freepik"
)

// ImageSearcher runs a Freepik keyword search
type ImageSearcher interface {
	Search(ctx context.Context, term string, page int) (*freepik.SearchResult, error)
}

// SearchResponse is the classified search payload
type SearchResponse struct {
	Data []domain.ClassifiedImage `json:"data"`
	Meta json.RawMessage          `json:"meta,omitempty"`
}

type SearchService struct {
	searcher ImageSearcher
	index    IndexSource
	hasher   fingerprint.Hasher
	logger   *zap.Logger
}

func NewSearchService(searcher ImageSearcher, index IndexSource, h fingerprint.Hasher, logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{searcher: searcher, index: index, hasher: h, logger: logger}
}

// Raw proxies the provider response body unchanged
func (s *SearchService) Raw(ctx context.Context, term string, page int) ([]byte, error) {
	res, err := s.searcher.Search(ctx, term, page)
	if err != nil {
		return nil, err
	}
	return res.Raw, nil
}

// Search queries Freepik and flags results already imported. The index is
// rebuilt on every call; a failed build fails the search rather than
// reporting everything as new.
func (s *SearchService) Search(ctx context.Context, term string, page int) (*SearchResponse, error) {
	res, err := s.searcher.Search(ctx, term, page)
	if err != nil {
		return nil, err
	}
	idx, err := s.index.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("duplicate status unknown: %w", err)
	}

	data := Classify(res.Images, idx, s.hasher)
	dups := 0
	for _, d := range data {
		if d.Duplicate {
			dups++
		}
	}
	s.logger.Info("Search classified", zap.String("term", term), zap.Int("page", page), zap.Int("results", len(data)), zap.Int("duplicates", dups))
	return &SearchResponse{Data: data, Meta: res.Meta}, nil
}
