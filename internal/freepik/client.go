package freepik

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/stockimport/internal/config"
	"github.com/jafarshop/stockimport/internal/domain"
	apperrors "github.com/jafarshop/stockimport/pkg/errors"
)

const (
	// PageSize is the number of resources requested per search page
	PageSize = 60

	apiKeyHeader = "x-freepik-api-key"
	serviceName  = "freepik"
)

// Client calls the Freepik resources API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Freepik client sharing httpClient with the rest of the process
func NewClient(cfg config.FreepikConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.freepik.com"
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// resource is the subset of a Freepik resource this service reads
type resource struct {
	Title string `json:"title"`
	Image struct {
		Source struct {
			URL string `json:"url"`
		} `json:"source"`
	} `json:"image"`
}

// SearchResult holds both the provider body and the parsed images
type SearchResult struct {
	Raw    []byte
	Images []domain.ImageResult
	Meta   json.RawMessage
}

// Search runs a keyword search ordered by relevance. Resources without an image
// source are kept with an empty SourceURL.
func (c *Client) Search(ctx context.Context, term string, page int) (*SearchResult, error) {
	u, err := url.Parse(c.baseURL + "/v1/resources")
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	q := u.Query()
	q.Set("order", "relevance")
	q.Set("limit", strconv.Itoa(PageSize))
	q.Set("page", strconv.Itoa(page))
	q.Set("term", term)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Freepik search request failed", zap.Error(err), zap.String("term", term), zap.Int("page", page))
		return nil, &apperrors.ErrUpstream{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.ErrUpstream{Service: serviceName, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperrors.ErrUpstream{Service: serviceName, StatusCode: resp.StatusCode, Body: body}
	}

	var parsed struct {
		Data []resource      `json:"data"`
		Meta json.RawMessage `json:"meta"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &apperrors.ErrUpstream{Service: serviceName, StatusCode: resp.StatusCode, Body: body, Err: fmt.Errorf("failed to unmarshal response: %w", err)}
	}

	images := make([]domain.ImageResult, 0, len(parsed.Data))
	for _, r := range parsed.Data {
		images = append(images, domain.ImageResult{
			Title:     r.Title,
			SourceURL: r.Image.Source.URL,
		})
	}

	c.logger.Debug("Freepik search completed", zap.String("term", term), zap.Int("page", page), zap.Int("results", len(images)))
	return &SearchResult{Raw: body, Images: images, Meta: parsed.Meta}, nil
}
