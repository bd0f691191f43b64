package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/jafarshop/stockimport/internal/config"
	"github.com/jafarshop/stockimport/internal/freepik"
	"github.com/jafarshop/stockimport/internal/shopify"
	"go.uber.org/zap"
)

// Checks that both the Shopify and the Freepik credentials work.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	token := cfg.Shopify.AccessToken
	fmt.Printf("Testing connections...\n\n")
	fmt.Printf("Shop Domain: %s\n", cfg.Shopify.ShopDomain)
	fmt.Printf("Access Token: %s...%s\n", token[:min(10, len(token))], token[max(0, len(token)-4):])
	fmt.Println()

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	httpClient := &http.Client{Timeout: cfg.HTTPClient.Timeout}
	ctx := context.Background()
	failed := false

	client := shopify.NewClient(cfg.Shopify, httpClient, logger)
	body, next, err := client.GetPage(ctx, client.ResourceURL("products.json", url.Values{"fields": {"id,title"}, "limit": {"5"}}))
	if err != nil {
		failed = true
		fmt.Fprintf(os.Stderr, "❌ Shopify connection failed: %v\n\n", err)
		fmt.Println("Please check:")
		fmt.Println("  1. SHOPIFY_STORE format: 'store-name' or 'store-name.myshopify.com'")
		fmt.Println("  2. SHOPIFY_ACCESS_TOKEN: should start with 'shpat_' and be the full token")
		fmt.Println("  3. Token permissions: needs 'read_products' and 'write_products' scopes")
	} else {
		var page shopify.ProductsPage
		if err := json.Unmarshal(body, &page); err != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "❌ Unexpected Shopify response: %v\n", err)
		} else {
			fmt.Printf("✅ Shopify connection successful (%d products on first page, more: %t)\n", len(page.Products), next != "")
		}
	}

	fp := freepik.NewClient(cfg.Freepik, httpClient, logger)
	res, err := fp.Search(ctx, "jersey", 1)
	if err != nil {
		failed = true
		fmt.Fprintf(os.Stderr, "❌ Freepik search failed: %v\n", err)
	} else {
		fmt.Printf("✅ Freepik search successful (%d results)\n", len(res.Images))
	}

	if failed {
		os.Exit(1)
	}
}
