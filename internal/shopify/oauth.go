package shopify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/stockimport/internal/config"
	apperrors "github.com/jafarshop/stockimport/pkg/errors"
)

// OAuth performs the app install handshake
type OAuth struct {
	cfg        config.OAuthConfig
	httpClient *http.Client
	logger     *zap.Logger

	// ShopBaseURL maps a shop domain to the base URL used for the token exchange.
	// Defaults to https://<shop>.
	ShopBaseURL func(shop string) string
}

func NewOAuth(cfg config.OAuthConfig, httpClient *http.Client, logger *zap.Logger) *OAuth {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OAuth{
		cfg:         cfg,
		httpClient:  httpClient,
		logger:      logger,
		ShopBaseURL: httpsShopURL,
	}
}

func httpsShopURL(shop string) string {
	return "https://" + shop
}

// Configured reports whether client id, secret and redirect URI are all set
func (o *OAuth) Configured() bool {
	return o.cfg.ClientID != "" && o.cfg.ClientSecret != "" && o.cfg.RedirectURI != ""
}

// ValidShopDomain accepts only <name>.myshopify.com hosts
func ValidShopDomain(shop string) bool {
	name, ok := strings.CutSuffix(shop, ".myshopify.com")
	if !ok || name == "" {
		return false
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-') {
			return false
		}
	}
	return true
}

// AuthorizeURL returns the install consent URL for shop
func (o *OAuth) AuthorizeURL(shop string) string {
	q := url.Values{}
	q.Set("client_id", o.cfg.ClientID)
	q.Set("scope", o.cfg.Scopes)
	q.Set("redirect_uri", o.cfg.RedirectURI)
	return fmt.Sprintf("https://%s/admin/oauth/authorize?%s", shop, q.Encode())
}

// SignQuery computes the hex HMAC-SHA256 of the sorted key=value pairs of q,
// excluding the hmac and signature parameters.
func SignQuery(q url.Values, secret string) string {
	keys := make([]string, 0, len(q))
	for k := range q {
		if k == "hmac" || k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		for _, v := range q[k] {
			parts = append(parts, k+"="+v)
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyQuery checks the hmac parameter of an OAuth callback in constant time
func VerifyQuery(q url.Values, secret string) bool {
	if secret == "" {
		return false
	}
	got, err := hex.DecodeString(q.Get("hmac"))
	if err != nil || len(got) == 0 {
		return false
	}
	expected, _ := hex.DecodeString(SignQuery(q, secret))
	return hmac.Equal(expected, got)
}

// ExchangeCode trades an authorization code for an offline access token
func (o *OAuth) ExchangeCode(ctx context.Context, shop, code string) (string, error) {
	b, err := json.Marshal(map[string]string{
		"client_id":     o.cfg.ClientID,
		"client_secret": o.cfg.ClientSecret,
		"code":          code,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.ShopBaseURL(shop)+"/admin/oauth/access_token", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", &apperrors.ErrUpstream{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", &apperrors.ErrUpstream{Service: serviceName, StatusCode: resp.StatusCode, Body: raw}
	}

	var out struct {
		AccessToken string `json:"access_token"`
		Scope       string `json:"scope"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned no access_token")
	}
	o.logger.Info("OAuth token exchanged", zap.String("shop", shop), zap.String("scope", out.Scope))
	return out.AccessToken, nil
}

// Verify checks a callback query against the app secret
func (o *OAuth) Verify(q url.Values) bool {
	return VerifyQuery(q, o.cfg.ClientSecret)
}
