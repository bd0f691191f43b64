package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Prefix marks a tag or metafield value as carrying an image fingerprint.
const Prefix = "fpimg-"

const (
	// DefaultHexLength keeps 128 bits of the digest. 8 hex chars (32 bits) would hit a
	// 50% birthday collision around 77k images; 32 is negligible at catalog scale and
	// still short enough for Shopify's 255-char tag limit.
	DefaultHexLength = 32
	MinHexLength     = 8
	MaxHexLength     = sha256.Size * 2
)

// Hasher derives fingerprints truncated to a fixed number of hex chars.
type Hasher struct {
	hexLength int
}

// NewHasher returns a Hasher keeping hexLength hex chars of the SHA-256 digest.
func NewHasher(hexLength int) (Hasher, error) {
	if hexLength < MinHexLength || hexLength > MaxHexLength {
		return Hasher{}, fmt.Errorf("fingerprint length must be between %d and %d, got %d", MinHexLength, MaxHexLength, hexLength)
	}
	return Hasher{hexLength: hexLength}, nil
}

// Default is the Hasher used by Of.
var Default = Hasher{hexLength: DefaultHexLength}

// HexLength returns the number of digest chars kept after the prefix.
func (h Hasher) HexLength() int {
	if h.hexLength == 0 {
		return DefaultHexLength
	}
	return h.hexLength
}

// Of returns the fingerprint of sourceURL, or "" when sourceURL is blank.
func (h Hasher) Of(sourceURL string) string {
	if strings.TrimSpace(sourceURL) == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(sourceURL))
	return Prefix + hex.EncodeToString(sum[:])[:h.HexLength()]
}

// Of fingerprints sourceURL with the default length.
func Of(sourceURL string) string {
	return Default.Of(sourceURL)
}

// IsFingerprint reports whether s is a marker followed by a lowercase hex digest.
// Digests of any length are accepted so tags written under another length setting
// are still recognised.
func IsFingerprint(s string) bool {
	digest, ok := strings.CutPrefix(s, Prefix)
	if !ok || len(digest) < MinHexLength || len(digest) > MaxHexLength {
		return false
	}
	for _, r := range digest {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}
