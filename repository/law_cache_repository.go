package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teisinisai-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LawCacheRepository handles database operations for the TTL'd law cache
type LawCacheRepository struct {
	db *pgxpool.Pool
}

// NewLawCacheRepository creates a new law cache repository
func NewLawCacheRepository(db *pgxpool.Pool) *LawCacheRepository {
	return &LawCacheRepository{db: db}
}

// GetLaw returns the cached law only while it is fresh. Expired and
// unknown laws both come back as (nil, nil); expired rows are left in
// place for PurgeExpired.
func (r *LawCacheRepository) GetLaw(ctx context.Context, lawID string) (*models.Law, error) {
	law := &models.Law{ID: lawID}
	query := `
		SELECT title, full_text, version, expires_at, metadata
		FROM law_cache
		WHERE law_id = $1 AND expires_at > now()`

	err := r.db.QueryRow(ctx, query, lawID).Scan(
		&law.Title,
		&law.FullText,
		&law.Version,
		&law.ExpiresAt,
		&law.Metadata,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query law cache: %w", err)
	}

	return law, nil
}

// PutLaw upserts a law and resets its expiry to now + ttl.
func (r *LawCacheRepository) PutLaw(ctx context.Context, law *models.Law, ttl time.Duration) error {
	law.ExpiresAt = time.Now().Add(ttl)

	query := `
		INSERT INTO law_cache (law_id, title, full_text, version, expires_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (law_id) DO UPDATE SET
			title = EXCLUDED.title,
			full_text = EXCLUDED.full_text,
			version = EXCLUDED.version,
			expires_at = EXCLUDED.expires_at,
			metadata = EXCLUDED.metadata`

	_, err := r.db.Exec(ctx, query,
		law.ID,
		law.Title,
		law.FullText,
		law.Version,
		law.ExpiresAt,
		law.Metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to cache law %s: %w", law.ID, err)
	}

	return nil
}

// Invalidate forces the law's expiry into the past so the next GetLaw
// misses. A no-op for unknown law ids.
func (r *LawCacheRepository) Invalidate(ctx context.Context, lawID string) error {
	_, err := r.db.Exec(ctx, `UPDATE law_cache SET expires_at = now() WHERE law_id = $1`, lawID)
	if err != nil {
		return fmt.Errorf("failed to invalidate law %s: %w", lawID, err)
	}
	return nil
}

// PurgeExpired deletes expired law rows and returns how many were removed.
// Reads never trigger this; it is an explicit maintenance operation.
func (r *LawCacheRepository) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM law_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired laws: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Stats reports fresh law count, total cached laws, and total cached articles.
func (r *LawCacheRepository) Stats(ctx context.Context) (*models.CacheStats, error) {
	stats := &models.CacheStats{}
	query := `
		SELECT
			(SELECT COUNT(*) FROM law_cache WHERE expires_at > now()),
			(SELECT COUNT(*) FROM law_cache),
			(SELECT COUNT(*) FROM article_cache)`

	err := r.db.QueryRow(ctx, query).Scan(&stats.ActiveLaws, &stats.TotalLaws, &stats.TotalArticles)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache stats: %w", err)
	}

	return stats, nil
}
