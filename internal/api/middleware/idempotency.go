package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/stockimport/internal/domain"
	"github.com/jafarshop/stockimport/internal/repository"
)

const IdempotencyKeyHeader = "Idempotency-Key"

// IdempotencyReplayedHeader is set on responses served from a stored result
const IdempotencyReplayedHeader = "Idempotent-Replayed"

// captureWriter keeps a copy of the response body for storage
type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyMiddleware replays the stored response of a POST carrying a known
// Idempotency-Key. Reusing a key with a different body is a conflict. A nil
// repository disables the middleware.
func IdempotencyMiddleware(repo repository.IdempotencyKeyRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if repo == nil || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Error("Failed to read request body for idempotency", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to process request"})
			c.Abort()
			return
		}

		// Restore body for handler
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		hash := sha256.Sum256(body)
		requestHash := hex.EncodeToString(hash[:])

		existing, err := repo.GetByKey(c.Request.Context(), idempotencyKey)
		if err != nil {
			logger.Error("Failed to check idempotency key", zap.Error(err))
			c.Next()
			return
		}

		if existing != nil {
			if existing.RequestHash != requestHash {
				c.JSON(http.StatusConflict, gin.H{
					"status":  "error",
					"message": "idempotency key conflict: same key used with different payload",
				})
				c.Abort()
				return
			}
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(existing.StatusCode, "application/json; charset=utf-8", existing.ResponseBody)
			c.Abort()
			return
		}

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Next()

		// Server errors are not stored so the caller can try again with the same key
		status := cw.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		err = repo.Create(c.Request.Context(), &domain.IdempotencyKey{
			Key:          idempotencyKey,
			RequestHash:  requestHash,
			StatusCode:   status,
			ResponseBody: cw.buf.Bytes(),
		})
		if err != nil {
			logger.Warn("Failed to store idempotency key", zap.String("key", idempotencyKey), zap.Error(err))
		}
	}
}
