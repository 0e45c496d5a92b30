package repository

import (
	"context"
	"errors"
	"fmt"

	"teisinisai-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ArticleCacheRepository handles database operations for per-article lookups
type ArticleCacheRepository struct {
	db *pgxpool.Pool
}

// NewArticleCacheRepository creates a new article cache repository
func NewArticleCacheRepository(db *pgxpool.Pool) *ArticleCacheRepository {
	return &ArticleCacheRepository{db: db}
}

// GetArticle returns a cached article or (nil, nil) when absent.
// Articles carry no TTL of their own; staleness is managed at the law level.
func (r *ArticleCacheRepository) GetArticle(ctx context.Context, lawID, number string) (*models.Article, error) {
	article := &models.Article{LawID: lawID, Number: number}
	query := `
		SELECT article_title, content
		FROM article_cache
		WHERE law_id = $1 AND article_number = $2`

	err := r.db.QueryRow(ctx, query, lawID, number).Scan(&article.Title, &article.Content)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query article cache: %w", err)
	}

	return article, nil
}

// PutArticlesBatch upserts all articles in one round trip. Re-caching an
// existing (law_id, article_number) pair overwrites its content.
func (r *ArticleCacheRepository) PutArticlesBatch(ctx context.Context, articles []models.Article) error {
	if len(articles) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO article_cache (law_id, article_number, article_title, content)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (law_id, article_number) DO UPDATE SET
			article_title = EXCLUDED.article_title,
			content = EXCLUDED.content,
			updated_at = now()`

	for _, article := range articles {
		batch.Queue(query, article.LawID, article.Number, article.Title, article.Content)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range articles {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to cache articles batch: %w", err)
		}
	}

	return nil
}
