package models

import (
	"time"
)

// Law represents a cached Lithuanian legal act fetched from e-TAR.
// Version carries the fetch timestamp and is stamped onto every derived
// article row in the vector index, so cache/index divergence is detectable.
type Law struct {
	ID        string                 `json:"law_id"`
	Title     string                 `json:"title"`
	FullText  string                 `json:"full_text,omitempty"`
	Version   string                 `json:"version"`
	ExpiresAt time.Time              `json:"expires_at"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Fresh reports whether the cached law is still within its TTL.
func (l *Law) Fresh(now time.Time) bool {
	return now.Before(l.ExpiresAt)
}

// FetchedLaw is the raw result returned by a text source collaborator
// before parsing and caching.
type FetchedLaw struct {
	ID        string    `json:"law_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	FullText  string    `json:"full_text"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CacheStats summarizes the state of the law/article cache.
type CacheStats struct {
	ActiveLaws    int64 `json:"active_laws"`
	TotalLaws     int64 `json:"total_laws"`
	TotalArticles int64 `json:"total_articles"`
}
