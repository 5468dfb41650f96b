// Package sqlstore provides a database/sql audit log implementing
// domain.Persistence, domain.TagSource and domain.TagWriter.
// It speaks to SQLite (modernc.org/sqlite) or PostgreSQL (lib/pq).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// Supported drivers, named as registered with database/sql.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown sql driver")

const timeLayout = time.RFC3339Nano

const schemaSQLite = `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		message_text TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS favorite_tasks (
		id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		used_count INTEGER NOT NULL DEFAULT 0,
		source_task_id INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		PRIMARY KEY (user_id, id)
	);

	CREATE TABLE IF NOT EXISTS dev_tags (
		id INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_messages_user ON messages(user_id, id);
	CREATE INDEX IF NOT EXISTS idx_dev_tags_user ON dev_tags(user_id);
`

const schemaPostgres = `
	CREATE TABLE IF NOT EXISTS messages (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		message_text TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS favorite_tasks (
		id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		used_count INTEGER NOT NULL DEFAULT 0,
		source_task_id BIGINT NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		PRIMARY KEY (user_id, id)
	);

	CREATE TABLE IF NOT EXISTS dev_tags (
		id BIGINT NOT NULL,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE INDEX IF NOT EXISTS idx_messages_user ON messages(user_id, id);
	CREATE INDEX IF NOT EXISTS idx_dev_tags_user ON dev_tags(user_id);
`

// Store is an SQL-backed audit log.
type Store struct {
	db     *sql.DB
	driver string
}

// Ensure Store implements the ports it serves.
var (
	_ domain.Persistence = (*Store)(nil)
	_ domain.TagSource   = (*Store)(nil)
	_ domain.TagWriter   = (*Store)(nil)
)

// Open connects to the database and creates the tables if needed.
// For sqlite, dsn is a file path.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// SQLite allows one writer at a time.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertMessage appends an audited message.
func (s *Store) UpsertMessage(ctx context.Context, rec domain.MessageRecord) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO messages (user_id, message_text, kind, created_at)
		VALUES ($1, $2, $3, $4)`),
		rec.UserID, rec.Text, string(rec.Kind), rec.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListMessages returns the user's messages, newest first.
func (s *Store) ListMessages(ctx context.Context, userID string, limit int) ([]domain.MessageRecord, error) {
	query := `
		SELECT user_id, message_text, kind, created_at
		FROM messages
		WHERE user_id = $1
		ORDER BY id DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.MessageRecord
	for rows.Next() {
		var rec domain.MessageRecord
		var kind, createdAt string
		if err := rows.Scan(&rec.UserID, &rec.Text, &kind, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		rec.Kind = domain.MessageKind(kind)
		rec.CreatedAt = parseTime(createdAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}

// SaveFavorite creates or updates a favorite.
func (s *Store) SaveFavorite(ctx context.Context, userID string, fav domain.FavoriteTask) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO favorite_tasks
			(id, user_id, name, description, category, used_count, source_task_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			category = excluded.category,
			used_count = excluded.used_count`),
		fav.ID, userID, fav.Name, fav.Description, fav.Category, fav.UsedCount,
		fav.SourceTaskID, fav.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save favorite: %w", err)
	}
	return nil
}

// DeleteFavorite removes a favorite. Deleting an unknown favorite is not an error.
func (s *Store) DeleteFavorite(ctx context.Context, userID, favoriteID string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		DELETE FROM favorite_tasks WHERE user_id = $1 AND id = $2`),
		userID, favoriteID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

// QueryTags returns the user's tags ordered by sort_order.
func (s *Store) QueryTags(ctx context.Context, userID string) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, name, color, icon, sort_order, is_active
		FROM dev_tags
		WHERE user_id = $1
		ORDER BY sort_order, id`), userID)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tags []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.Icon, &tag.SortOrder, &tag.IsActive); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

// ReplaceTags overwrites the user's tags in one transaction.
func (s *Store) ReplaceTags(ctx context.Context, userID string, tags []domain.Tag) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, s.rebind(`DELETE FROM dev_tags WHERE user_id = $1`), userID); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	for _, tag := range tags {
		_, err = tx.ExecContext(ctx, s.rebind(`
			INSERT INTO dev_tags (id, user_id, name, color, icon, sort_order, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`),
			tag.ID, userID, tag.Name, tag.Color, tag.Icon, tag.SortOrder, tag.IsActive)
		if err != nil {
			return fmt.Errorf("insert tag %q: %w", tag.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// rebind rewrites $N placeholders to ? for sqlite.
func (s *Store) rebind(query string) string {
	if s.driver != DriverSQLite {
		return query
	}
	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		if query[i] != '$' {
			b.WriteByte(query[i])
			continue
		}
		j := i + 1
		for j < len(query) && query[j] >= '0' && query[j] <= '9' {
			j++
		}
		if j == i+1 {
			b.WriteByte('$')
			continue
		}
		b.WriteByte('?')
		i = j - 1
	}
	return b.String()
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
