package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tomnomnom/linkheader"
	"go.uber.org/zap"

	"github.com/jafarshop/stockimport/internal/config"
	apperrors "github.com/jafarshop/stockimport/pkg/errors"
)

const serviceName = "shopify"

type Client struct {
	apiBase     string // e.g. https://mystore.myshopify.com/admin/api/2023-10
	accessToken string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a Shopify Admin REST client. httpClient is shared across
// calls so its timeout bounds every request.
func NewClient(cfg config.ShopifyConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = "https://" + config.NormalizeShopDomain(cfg.ShopDomain)
	}
	version := cfg.APIVersion
	if version == "" {
		version = "2023-10"
	}

	return &Client{
		apiBase:     fmt.Sprintf("%s/admin/api/%s", base, version),
		accessToken: cfg.AccessToken,
		httpClient:  httpClient,
		logger:      logger,
	}
}

// ResourceURL builds an absolute Admin API URL for a resource path such as
// "products.json".
func (c *Client) ResourceURL(path string, query url.Values) string {
	u := c.apiBase + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do executes a request and returns the body and headers of a 2xx response.
// Non-2xx answers come back as *errors.ErrUpstream carrying the raw body.
func (c *Client) do(ctx context.Context, method, rawURL string, payload interface{}) ([]byte, http.Header, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Shopify request failed", zap.String("method", method), zap.String("url", rawURL), zap.Error(err))
		return nil, nil, &apperrors.ErrUpstream{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &apperrors.ErrUpstream{Service: serviceName, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Shopify API error",
			zap.String("method", method),
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, nil, &apperrors.ErrUpstream{Service: serviceName, StatusCode: resp.StatusCode, Body: body}
	}

	return body, resp.Header, nil
}

// GetPage fetches one page of a listing. pageURL is either an absolute URL
// (as returned in a Link header) or a path relative to the Admin API base.
// next is empty when the listing has no further page.
func (c *Client) GetPage(ctx context.Context, pageURL string) (body []byte, next string, err error) {
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		pageURL = c.ResourceURL(pageURL, nil)
	}
	body, header, err := c.do(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", err
	}
	return body, NextPageURL(header), nil
}

// NextPageURL extracts the rel="next" target of a Link header
func NextPageURL(header http.Header) string {
	links := linkheader.ParseMultiple(header.Values("Link")).FilterByRel("next")
	if len(links) == 0 {
		return ""
	}
	return links[0].URL
}
