package repository

import (
	"context"
	"fmt"
	"strings"

	"teisinisai-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// embeddingDimensions must match the vector(N) column in legal_articles
// and the embedding model's output size.
const embeddingDimensions = 768

// ArticleIndexRepository handles database operations for the pgvector
// article index
type ArticleIndexRepository struct {
	db *pgxpool.Pool
}

// NewArticleIndexRepository creates a new article index repository
func NewArticleIndexRepository(db *pgxpool.Pool) *ArticleIndexRepository {
	return &ArticleIndexRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float32) string {
	if len(embedding) == 0 {
		return "[]"
	}
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%.6f", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Upsert writes documents and their embeddings under deterministic ids.
// Re-indexing the same article overwrites the existing row.
func (r *ArticleIndexRepository) Upsert(
	ctx context.Context,
	docs []models.IndexedArticle,
	embeddings [][]float32,
) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("documents and embeddings length mismatch: %d vs %d", len(docs), len(embeddings))
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO legal_articles (
			id, law_id, law_title, article_number, article_title,
			category, content, version, embedding
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::vector)
		ON CONFLICT (id) DO UPDATE SET
			law_title = EXCLUDED.law_title,
			article_title = EXCLUDED.article_title,
			category = EXCLUDED.category,
			content = EXCLUDED.content,
			version = EXCLUDED.version,
			embedding = EXCLUDED.embedding,
			updated_at = now()`

	for i, doc := range docs {
		if len(embeddings[i]) != embeddingDimensions {
			return fmt.Errorf("embedding for %s must be %d dimensions, got %d",
				doc.ID, embeddingDimensions, len(embeddings[i]))
		}
		batch.Queue(query,
			doc.ID,
			doc.LawID,
			doc.LawTitle,
			doc.ArticleNumber,
			doc.ArticleTitle,
			doc.Category,
			doc.Content,
			doc.Version,
			formatVector(embeddings[i]),
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range docs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert indexed articles: %w", err)
		}
	}

	return nil
}

// Search returns the topK nearest documents by cosine distance,
// optionally restricted to one category. An empty result is not an error.
func (r *ArticleIndexRepository) Search(
	ctx context.Context,
	embedding []float32,
	topK int,
	category string,
) ([]models.IndexedArticle, error) {
	if len(embedding) != embeddingDimensions {
		return nil, fmt.Errorf("embedding must be %d dimensions, got %d", embeddingDimensions, len(embedding))
	}

	vectorStr := formatVector(embedding)

	var categoryFilter string
	var args []interface{}
	if category == "" {
		categoryFilter = "TRUE"
		args = []interface{}{vectorStr, topK}
	} else {
		categoryFilter = "category = $2"
		args = []interface{}{vectorStr, category, topK}
	}

	query := fmt.Sprintf(`
		SELECT
			id,
			law_id,
			law_title,
			article_number,
			article_title,
			category,
			content,
			version,
			embedding <=> $1::vector AS distance
		FROM legal_articles
		WHERE %s
		ORDER BY embedding <=> $1::vector
		LIMIT $%d`, categoryFilter, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query legal articles: %w", err)
	}
	defer rows.Close()

	var results []models.IndexedArticle
	for rows.Next() {
		var doc models.IndexedArticle
		err := rows.Scan(
			&doc.ID,
			&doc.LawID,
			&doc.LawTitle,
			&doc.ArticleNumber,
			&doc.ArticleTitle,
			&doc.Category,
			&doc.Content,
			&doc.Version,
			&doc.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan legal article: %w", err)
		}
		results = append(results, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating legal articles: %w", err)
	}

	return results, nil
}

// Count returns the total number of indexed documents.
func (r *ArticleIndexRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM legal_articles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count legal articles: %w", err)
	}
	return count, nil
}

// Clear drops all indexed documents. Destructive; used only for rebuilds.
func (r *ArticleIndexRepository) Clear(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `TRUNCATE legal_articles`)
	if err != nil {
		return fmt.Errorf("failed to clear legal articles: %w", err)
	}
	return nil
}

// DivergentLaws reports laws whose cached version differs from the
// version stamped on their indexed articles, including cached laws with
// no indexed articles at all. These need a re-index.
func (r *ArticleIndexRepository) DivergentLaws(ctx context.Context) ([]models.IndexDivergence, error) {
	query := `
		SELECT l.law_id, l.version, COALESCE(a.version, '')
		FROM law_cache l
		LEFT JOIN (
			SELECT law_id, MIN(version) AS version
			FROM legal_articles
			GROUP BY law_id
		) a USING (law_id)
		WHERE a.version IS DISTINCT FROM l.version
		ORDER BY l.law_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query index divergence: %w", err)
	}
	defer rows.Close()

	var divergences []models.IndexDivergence
	for rows.Next() {
		var d models.IndexDivergence
		if err := rows.Scan(&d.LawID, &d.CacheVersion, &d.IndexVersion); err != nil {
			return nil, fmt.Errorf("failed to scan index divergence: %w", err)
		}
		divergences = append(divergences, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating index divergence: %w", err)
	}

	return divergences, nil
}
