package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jafarshop/stockimport/internal/domain"
	"github.com/jafarshop/stockimport/internal/fingerprint"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Freepik     FreepikConfig
	Shopify     ShopifyConfig
	OAuth       OAuthConfig
	Database    DatabaseConfig
	Index       IndexConfig
	Import      ImportConfig
	HTTPClient  HTTPClientConfig
	CORS        CORSConfig
}

type FreepikConfig struct {
	APIKey  string
	BaseURL string // FREEPIK_BASE_URL; defaults to https://api.freepik.com
}

type ShopifyConfig struct {
	ShopDomain  string // normalized, e.g. mystore.myshopify.com
	AccessToken string
	APIVersion  string
	BaseURL     string // SHOPIFY_BASE_URL overrides https://<ShopDomain>
}

// OAuthConfig holds the app credentials used by the install handshake
type OAuthConfig struct {
	ClientID     string // SHOPIFY_API_KEY
	ClientSecret string // SHOPIFY_API_SECRET
	RedirectURI  string
	Scopes       string
}

// DatabaseConfig is optional; an empty Host and URL disable the idempotency store
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Enabled reports whether a database was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != "" || d.Host != ""
}

// IndexConfig bounds the inventory index build
type IndexConfig struct {
	MaxPages          int // pages fetched per listing before giving up on completeness
	FingerprintLength int
}

// ImportConfig selects the duplicate-safety strategy for imports
type ImportConfig struct {
	Precheck           bool
	DefaultPricingTier string
}

type HTTPClientConfig struct {
	Timeout time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() (*Config, error) {
	// .env files are optional; real environment variables win
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	viper.SetDefault("PORT", "5000")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SHOPIFY_API_VERSION", "2023-10")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	maxPages, err := getIntOrViper("INDEX_MAX_PAGES", 5)
	if err != nil {
		return nil, err
	}
	fpLength, err := getIntOrViper("FINGERPRINT_HEX_LENGTH", fingerprint.DefaultHexLength)
	if err != nil {
		return nil, err
	}
	timeout, err := time.ParseDuration(getEnvOrViper("HTTP_CLIENT_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_CLIENT_TIMEOUT: %w", err)
	}
	precheck, err := strconv.ParseBool(getEnvOrViper("IMPORT_PRECHECK", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMPORT_PRECHECK: %w", err)
	}

	shopDomain := getEnvOrViper("SHOPIFY_SHOP_DOMAIN", "")
	if shopDomain == "" {
		shopDomain = getEnvOrViper("SHOPIFY_STORE", "")
	}
	accessToken := getEnvOrViper("SHOPIFY_ACCESS_TOKEN", "")
	if accessToken == "" {
		accessToken = getEnvOrViper("SHOPIFY_API_PASSWORD", "")
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "5000"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Freepik: FreepikConfig{
			APIKey:  strings.TrimSpace(getEnvOrViper("FREEPIK_API_KEY", "")),
			BaseURL: strings.TrimSpace(getEnvOrViper("FREEPIK_BASE_URL", "https://api.freepik.com")),
		},
		Shopify: ShopifyConfig{
			ShopDomain:  NormalizeShopDomain(shopDomain),
			AccessToken: strings.TrimSpace(accessToken),
			APIVersion:  getEnvOrViper("SHOPIFY_API_VERSION", "2023-10"),
			BaseURL:     strings.TrimSpace(getEnvOrViper("SHOPIFY_BASE_URL", "")),
		},
		OAuth: OAuthConfig{
			ClientID:     strings.TrimSpace(getEnvOrViper("SHOPIFY_API_KEY", "")),
			ClientSecret: strings.TrimSpace(getEnvOrViper("SHOPIFY_API_SECRET", "")),
			RedirectURI:  strings.TrimSpace(getEnvOrViper("REDIRECT_URI", "")),
			Scopes:       getEnvOrViper("SHOPIFY_SCOPES", "read_products,write_products"),
		},
		Database: DatabaseConfig{
			URL:      strings.TrimSpace(getEnvOrViper("DATABASE_URL", "")),
			Host:     strings.TrimSpace(getEnvOrViper("DB_HOST", "")),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", ""),
			DBName:   getEnvOrViper("DB_NAME", "stockimport"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Index: IndexConfig{
			MaxPages:          maxPages,
			FingerprintLength: fpLength,
		},
		Import: ImportConfig{
			Precheck:           precheck,
			DefaultPricingTier: getEnvOrViper("DEFAULT_PRICING_TIER", domain.DefaultPricingTierKey),
		},
		HTTPClient: HTTPClientConfig{
			Timeout: timeout,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnvOrViper("CORS_ALLOWED_ORIGINS", "*")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and ranges
func (c *Config) Validate() error {
	if c.Freepik.APIKey == "" {
		return fmt.Errorf("FREEPIK_API_KEY is required")
	}
	if c.Shopify.ShopDomain == "" && c.Shopify.BaseURL == "" {
		return fmt.Errorf("SHOPIFY_STORE or SHOPIFY_SHOP_DOMAIN is required")
	}
	if c.Shopify.AccessToken == "" {
		return fmt.Errorf("SHOPIFY_ACCESS_TOKEN is required")
	}
	if c.Index.MaxPages < 1 {
		return fmt.Errorf("INDEX_MAX_PAGES must be at least 1, got %d", c.Index.MaxPages)
	}
	if _, err := fingerprint.NewHasher(c.Index.FingerprintLength); err != nil {
		return fmt.Errorf("invalid FINGERPRINT_HEX_LENGTH: %w", err)
	}
	if c.HTTPClient.Timeout <= 0 {
		return fmt.Errorf("HTTP_CLIENT_TIMEOUT must be positive")
	}
	if _, ok := domain.LookupPricingTier(c.Import.DefaultPricingTier); !ok {
		return fmt.Errorf("unknown DEFAULT_PRICING_TIER %q", c.Import.DefaultPricingTier)
	}
	return nil
}

// NormalizeShopDomain strips scheme and slashes and expands a bare store name
// to <name>.myshopify.com.
func NormalizeShopDomain(shop string) string {
	shop = strings.TrimSpace(shop)
	shop = strings.TrimPrefix(shop, "https://")
	shop = strings.TrimPrefix(shop, "http://")
	shop = strings.TrimSuffix(shop, "/")
	if shop != "" && !strings.Contains(shop, ".") {
		shop += ".myshopify.com"
	}
	return shop
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getIntOrViper(key string, defaultValue int) (int, error) {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
