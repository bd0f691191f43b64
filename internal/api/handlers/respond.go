package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jafarshop/stockimport/pkg/errors"
)

// respondError maps an error to a status code and a JSON body
func respondError(c *gin.Context, message string, err error) {
	var (
		validation *apperrors.ErrValidation
		signature  *apperrors.ErrSignature
		conflict   *apperrors.ErrConflict
		upstream   *apperrors.ErrUpstream
	)
	switch {
	case errors.As(err, &validation):
		body := gin.H{"error": validation.Error()}
		if len(validation.Fields) > 0 {
			body["fields"] = validation.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &signature):
		c.JSON(http.StatusBadRequest, gin.H{"error": signature.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case errors.As(err, &upstream):
		c.JSON(http.StatusInternalServerError, gin.H{"error": message, "detail": upstream.Detail()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": message, "detail": err.Error()})
	}
}
