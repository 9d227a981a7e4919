package story

import (
	"crypto/sha256"
	"encoding/hex"

	"storyweaver/internal/domain"
)

// RequestHash derives the content-addressed cache key for a generation
// request: SHA-256 over "articleText|readingLevel", hex-encoded. No text
// normalization is applied; any byte-level change produces a new key.
func RequestHash(articleText string, level domain.ReadingLevel) string {
	sum := sha256.Sum256([]byte(articleText + "|" + string(level)))
	return hex.EncodeToString(sum[:])
}
