package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/jafarshop/stockimport/internal/config"
	"github.com/jafarshop/stockimport/internal/fingerprint"
	"github.com/jafarshop/stockimport/internal/service"
	"github.com/jafarshop/stockimport/internal/shopify"
	"go.uber.org/zap"
)

// Prints every image fingerprint discoverable in the store, one per line.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	hasher, err := fingerprint.NewHasher(cfg.Index.FingerprintLength)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid fingerprint length: %v\n", err)
		os.Exit(1)
	}

	client := shopify.NewClient(cfg.Shopify, &http.Client{Timeout: cfg.HTTPClient.Timeout}, logger)
	builder := service.NewIndexBuilder(client, service.DefaultExtractors(hasher), cfg.Index.MaxPages, logger)

	fmt.Fprintf(os.Stderr, "🔍 Scanning %s (up to %d pages per listing)...\n", cfg.Shopify.ShopDomain, cfg.Index.MaxPages)

	idx, err := builder.Build(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build index: %v\n", err)
		os.Exit(1)
	}

	for _, fp := range idx.Sorted() {
		fmt.Println(fp)
	}
	fmt.Fprintf(os.Stderr, "✅ %d fingerprints\n", len(idx))
}
