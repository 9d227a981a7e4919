package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"storyweaver/internal/domain"
	"storyweaver/internal/ports"
)

// PostgresStore persists aggregated articles and cached feed pages.
type PostgresStore struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.ArticleStore = (*PostgresStore)(nil)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Open connects to Postgres with the given DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// InsertArticles inserts the batch keyed on url_hash. Rows whose hash already
// exists are skipped silently; the returned count covers rows actually
// inserted.
func (s *PostgresStore) InsertArticles(ctx context.Context, articles []domain.Article) (int, error) {
	if s.db == nil || len(articles) == 0 {
		return 0, nil
	}

	builder := s.sb.
		Insert("articles").
		Columns("url_hash", "url", "title", "content", "source", "category", "published_at")

	for _, article := range articles {
		hash := article.URLHash
		if hash == "" {
			hash = article.DedupHash()
		}

		var publishedAt any
		if article.PublishedAt != nil {
			publishedAt = *article.PublishedAt
		}

		builder = builder.Values(hash, article.URL, article.Title, article.Content, article.Source, article.Category, publishedAt)
	}

	query, args, err := builder.Suffix("ON CONFLICT (url_hash) DO NOTHING").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert articles: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count inserted rows: %w", err)
	}

	return int(inserted), nil
}

// UpsertFeedCache stores the rendered feed payload under its cache key with
// an absolute expiry.
func (s *PostgresStore) UpsertFeedCache(ctx context.Context, key string, articles []domain.Article, expiresAt time.Time) error {
	if s.db == nil {
		return nil
	}

	payload, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("marshal feed payload: %w", err)
	}

	query, args, err := s.sb.
		Insert("feed_cache").
		Columns("cache_key", "payload", "expires_at").
		Values(key, payload, expiresAt).
		Suffix(`ON CONFLICT (cache_key) DO UPDATE
                SET payload = EXCLUDED.payload,
                    expires_at = EXCLUDED.expires_at,
                    updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert feed cache: %w", err)
	}

	return nil
}
