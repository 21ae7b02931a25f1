// Package cache keeps parsed editions so that the same document is not
// parsed twice. Entries are keyed by a hash of the document text.
package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/ppiankov/crules/internal/rules"
)

// formatVersion changes whenever a parser change alters the shape of the
// edition built from the same text, invalidating every stored entry.
const formatVersion = "v1"

// Cache stores parsed editions. Cached editions are shared and must be
// treated as read-only.
type Cache interface {
	Get(key string) (*rules.Edition, bool)
	Set(key string, edition *rules.Edition) error
	Delete(key string) error
	Clear() error
}

// Key derives the cache key for a document's text
func Key(text string) string {
	hash := sha256.Sum256([]byte(text))
	return "crules-" + formatVersion + "-" + hex.EncodeToString(hash[:])
}
