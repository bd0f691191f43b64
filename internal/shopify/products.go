package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ProductInput is the body of POST products.json
type ProductInput struct {
	Title      string           `json:"title"`
	Status     string           `json:"status,omitempty"`
	Tags       string           `json:"tags,omitempty"`
	Images     []ImageInput     `json:"images,omitempty"`
	Options    []OptionInput    `json:"options,omitempty"`
	Variants   []VariantInput   `json:"variants,omitempty"`
	Metafields []MetafieldInput `json:"metafields,omitempty"`
}

type ImageInput struct {
	Src string `json:"src"`
}

type OptionInput struct {
	Name   string   `json:"name"`
	Values []string `json:"values,omitempty"`
}

type VariantInput struct {
	Option1             string `json:"option1"`
	Price               string `json:"price"`
	InventoryManagement string `json:"inventory_management,omitempty"`
	InventoryQuantity   int    `json:"inventory_quantity"`
}

// MetafieldInput sets a metafield on the created product
type MetafieldInput struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

// Product is the subset of a product resource read back from Shopify
type Product struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Tags  string `json:"tags"`
}

// TagList splits the comma-separated tags field
func (p Product) TagList() []string {
	return SplitTags(p.Tags)
}

// Metafield is one entry of a metafields.json listing
type Metafield struct {
	ID        int64           `json:"id"`
	OwnerID   int64           `json:"owner_id"`
	Namespace string          `json:"namespace"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
}

// StringValue returns the value when it is a JSON string, or "" otherwise
func (m Metafield) StringValue() string {
	var s string
	if err := json.Unmarshal(m.Value, &s); err != nil {
		return ""
	}
	return s
}

// ProductsPage is the body of a products.json listing
type ProductsPage struct {
	Products []Product `json:"products"`
}

// MetafieldsPage is the body of a metafields.json listing
type MetafieldsPage struct {
	Metafields []Metafield `json:"metafields"`
}

// CreateProduct submits a single product creation request. It is never retried.
func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	body, _, err := c.do(ctx, http.MethodPost, c.ResourceURL("products.json", nil), map[string]interface{}{
		"product": input,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Product Product `json:"product"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse product create response: %w", err)
	}
	return &result.Product, nil
}

// SplitTags splits a Shopify tags string into trimmed, non-empty tags
func SplitTags(tags string) []string {
	var out []string
	for _, t := range strings.Split(tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// JoinTags joins tags into the comma-separated form Shopify expects
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
