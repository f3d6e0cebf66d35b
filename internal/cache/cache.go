package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching rendered reports
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ReportKey derives a cache key from the raw dataset bytes and the scoring
// tuning. Any change to either invalidates the entry, so a sweep re-run only
// scores dataset/config pairs that actually changed.
func ReportKey(dataset []byte, tuning []byte) string {
	h := sha256.New()
	h.Write(dataset)
	h.Write([]byte{0})
	h.Write(tuning)
	return "fraudlens:v1:" + hex.EncodeToString(h.Sum(nil))
}
