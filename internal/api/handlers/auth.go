package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/stockimport/internal/shopify"
	apperrors "github.com/jafarshop/stockimport/pkg/errors"
)

var errOAuthNotConfigured = errors.New("OAuth is not configured: SHOPIFY_API_KEY, SHOPIFY_API_SECRET and REDIRECT_URI are required")

// HandleAuth handles GET /api/auth and redirects the merchant to the install screen
func HandleAuth(oauth *shopify.OAuth, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := c.Query("shop")
		if shop == "" {
			respondError(c, "missing shop", &apperrors.ErrValidation{Message: "Missing shop parameter"})
			return
		}
		if !shopify.ValidShopDomain(shop) {
			respondError(c, "invalid shop", &apperrors.ErrValidation{
				Message: "Invalid shop domain",
				Fields:  map[string]string{"shop": "must be a *.myshopify.com domain"},
			})
			return
		}
		if !oauth.Configured() {
			respondError(c, "OAuth not configured", errOAuthNotConfigured)
			return
		}

		logger.Info("Starting OAuth install", zap.String("shop", shop))
		c.Redirect(http.StatusFound, oauth.AuthorizeURL(shop))
	}
}

// HandleAuthCallback handles GET /api/auth/callback
func HandleAuthCallback(oauth *shopify.OAuth, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Request.URL.Query()
		shop, hmacParam, code := q.Get("shop"), q.Get("hmac"), q.Get("code")

		missing := map[string]string{}
		for name, v := range map[string]string{"shop": shop, "hmac": hmacParam, "code": code} {
			if v == "" {
				missing[name] = "required"
			}
		}
		if len(missing) > 0 {
			respondError(c, "missing parameters", &apperrors.ErrValidation{Message: "Required parameters missing", Fields: missing})
			return
		}
		if !shopify.ValidShopDomain(shop) {
			respondError(c, "invalid shop", &apperrors.ErrValidation{Message: "Invalid shop domain"})
			return
		}
		if !oauth.Configured() {
			respondError(c, "OAuth not configured", errOAuthNotConfigured)
			return
		}
		if !oauth.Verify(q) {
			logger.Warn("OAuth callback HMAC mismatch", zap.String("shop", shop))
			respondError(c, "HMAC validation failed", &apperrors.ErrSignature{})
			return
		}

		token, err := oauth.ExchangeCode(context.WithoutCancel(c.Request.Context()), shop, code)
		if err != nil {
			logger.Error("Failed to exchange OAuth code", zap.String("shop", shop), zap.Error(err))
			respondError(c, "Failed to get access token", err)
			return
		}

		logger.Info("App installed", zap.String("shop", shop), zap.String("access_token", redact(token)))
		c.String(http.StatusOK, "App installed successfully on %s", shop)
	}
}

func redact(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
