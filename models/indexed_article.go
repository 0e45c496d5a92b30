package models

// IndexedArticle is the searchable representation of an article in the
// vector index. ID is deterministic ({law_id}_art_{number}), so
// re-indexing a law overwrites its documents instead of duplicating them.
type IndexedArticle struct {
	ID            string  `json:"article_id"`
	LawID         string  `json:"law_id"`
	LawTitle      string  `json:"law_title"`
	ArticleNumber string  `json:"article_number"`
	ArticleTitle  string  `json:"article_title"`
	Category      string  `json:"category"`
	Content       string  `json:"content"`
	Version       string  `json:"version,omitempty"`
	Distance      float64 `json:"distance,omitempty"` // cosine distance, lower = more similar
}

// IndexStats summarizes the state of the vector index.
type IndexStats struct {
	TotalArticles int64 `json:"total_articles"`
}

// IndexDivergence flags a law whose cached version differs from the
// version stamped on its indexed articles.
type IndexDivergence struct {
	LawID        string `json:"law_id"`
	CacheVersion string `json:"cache_version"`
	IndexVersion string `json:"index_version"`
}
