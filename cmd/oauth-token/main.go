package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jafarshop/stockimport/internal/config"
	"github.com/jafarshop/stockimport/internal/shopify"
	"go.uber.org/zap"
)

const scopes = "read_products,write_products"

func main() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: go run ./cmd/oauth-token <shop-domain> <client-id> <client-secret> [code]")
		fmt.Println("Example: go run ./cmd/oauth-token mystore.myshopify.com shpca_xxxxx shpss_xxxxx")
		fmt.Println("\nNote: This requires manual authorization. Follow the steps:")
		fmt.Println("1. Run this command - it will give you an authorization URL")
		fmt.Println("2. Visit the URL in your browser and authorize")
		fmt.Println("3. Copy the 'code' from the redirect URL")
		fmt.Println("4. Run the command again with the code")
		os.Exit(1)
	}

	shop := config.NormalizeShopDomain(os.Args[1])
	if !shopify.ValidShopDomain(shop) {
		fmt.Fprintf(os.Stderr, "Invalid shop domain %q: expected <name>.myshopify.com\n", shop)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	oauth := shopify.NewOAuth(config.OAuthConfig{
		ClientID:     os.Args[2],
		ClientSecret: os.Args[3],
		RedirectURI:  "urn:ietf:wg:oauth:2.0:oob",
		Scopes:       scopes,
	}, &http.Client{Timeout: 30 * time.Second}, logger)

	// Step 2: exchange the code
	if len(os.Args) >= 5 {
		accessToken, err := oauth.ExchangeCode(context.Background(), shop, os.Args[4])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get access token: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Access Token obtained!\n\n")
		fmt.Printf("Add this to your .env file:\n")
		fmt.Printf("SHOPIFY_ACCESS_TOKEN=%s\n", accessToken)
		return
	}

	// Step 1: Generate authorization URL
	fmt.Printf("Step 1: Authorize the app\n\n")
	fmt.Printf("Visit this URL in your browser:\n")
	fmt.Printf("%s\n\n", oauth.AuthorizeURL(shop))
	fmt.Printf("After authorizing, you'll get a code.\n")
	fmt.Printf("Then run:\n")
	fmt.Printf("go run ./cmd/oauth-token %s %s %s <code>\n", shop, os.Args[2], os.Args[3])
}
