package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"time"
)

// Cache defines the interface for caching serialized analysis results
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a case fingerprint
func Key(fingerprint string) string {
	hash := sha256.Sum256([]byte(fingerprint))
	return "commtrace:v1:" + hex.EncodeToString(hash[:])
}

// Fingerprint summarizes the input files of a case so a cached result
// is reused only while none of them changed. Paths are sorted so map
// iteration order cannot vary the key.
func Fingerprint(files map[string]os.FileInfo) string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var buf []byte
	for _, p := range paths {
		info := files[p]
		buf = append(buf, fmt.Sprintf("%s|%d|%d\n", p, info.Size(), info.ModTime().UnixNano())...)
	}
	return string(buf)
}
