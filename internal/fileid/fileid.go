// Package fileid derives deterministic article IDs from content file paths.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strconv"
)

const (
	prefix = "article-"
	// hashLen is the number of hex characters kept from the digest.
	hashLen = 16
)

// ArticleID returns a stable ID for the article at position index within the
// file at path. The same cleaned path and index always give the same ID.
// Files holding a single article use index 0.
func ArticleID(path string, index int) string {
	key := filepath.ToSlash(filepath.Clean(path))
	if index > 0 {
		key += "#" + strconv.Itoa(index)
	}
	hash := sha256.Sum256([]byte(key))
	return prefix + hex.EncodeToString(hash[:])[:hashLen]
}

// IsArticleID reports whether id has the shape produced by ArticleID.
func IsArticleID(id string) bool {
	if len(id) != len(prefix)+hashLen || id[:len(prefix)] != prefix {
		return false
	}
	_, err := hex.DecodeString(id[len(prefix):])
	return err == nil
}
