// Package sqlite is the sqlite-backed content repository.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure Go sqlite driver, no CGO

	"github.com/webntricks/unisearch/internal/content"
	"github.com/webntricks/unisearch/internal/domain"
)

var (
	_ content.Repository = (*Store)(nil)
	_ content.Searcher   = (*Store)(nil)
)

// Store reads the content catalog from a sqlite database.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the catalog database.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer; modernc.org/sqlite ignores some DSN params, so set
	// pragmas explicitly.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entities (
		id            INTEGER PRIMARY KEY,
		type          TEXT NOT NULL,
		status        TEXT NOT NULL,
		title         TEXT NOT NULL DEFAULT '',
		body          TEXT NOT NULL DEFAULT '',
		excerpt       TEXT NOT NULL DEFAULT '',
		author        TEXT NOT NULL DEFAULT '',
		permalink     TEXT NOT NULL DEFAULT '',
		thumbnail_url TEXT NOT NULL DEFAULT '',
		created_at    INTEGER NOT NULL DEFAULT 0,
		updated_at    INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_entities_type_status ON entities(type, status);

	CREATE TABLE IF NOT EXISTS terms (
		entity_id    INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		taxonomy     TEXT NOT NULL,
		slug         TEXT NOT NULL,
		hierarchical INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (entity_id, taxonomy, slug)
	);

	CREATE TABLE IF NOT EXISTS commerce (
		entity_id INTEGER PRIMARY KEY REFERENCES entities(id) ON DELETE CASCADE,
		sku       TEXT NOT NULL DEFAULT '',
		price     REAL NOT NULL DEFAULT 0,
		sales     INTEGER NOT NULL DEFAULT 0,
		reviews   INTEGER NOT NULL DEFAULT 0,
		rating    REAL NOT NULL DEFAULT 0,
		image_url TEXT NOT NULL DEFAULT ''
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// Ping checks database availability.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

const entityColumns = `id, type, status, title, body, excerpt, author,
	permalink, thumbnail_url, created_at, updated_at`

// Entity fetches a single entity with its taxonomy and commerce record.
func (s *Store) Entity(ctx context.Context, id int64) (domain.ContentEntity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entityColumns+` FROM entities WHERE id = ?`, id)

	e, err := scanEntity(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ContentEntity{}, fmt.Errorf("entity %d: %w", id, domain.ErrNotFound)
		}
		return domain.ContentEntity{}, fmt.Errorf("fetch entity %d: %w", id, err)
	}
	if err := s.hydrate(ctx, &e); err != nil {
		return domain.ContentEntity{}, err
	}
	return e, nil
}

// EntityPage returns one ID-ordered page of entities of the given types and
// status.
func (s *Store) EntityPage(
	ctx context.Context, types []string, status domain.EntityStatus, page, perPage int,
) ([]domain.ContentEntity, error) {
	if len(types) == 0 || page < 1 || perPage < 1 {
		return nil, nil
	}

	args := make([]any, 0, len(types)+3)
	for _, t := range types {
		args = append(args, t)
	}
	args = append(args, string(status), perPage, (page-1)*perPage)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entityColumns+` FROM entities
		 WHERE type IN (`+placeholders(len(types))+`) AND status = ?
		 ORDER BY id ASC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("page entities: %w", err)
	}
	defer rows.Close()

	entities, err := collectEntities(rows)
	if err != nil {
		return nil, err
	}
	for i := range entities {
		if err := s.hydrate(ctx, &entities[i]); err != nil {
			return nil, err
		}
	}
	return entities, nil
}

// TextSearch runs the repository's native text match for fallback search.
// Results are ordered by engagement counters (sales + reviews), descending.
func (s *Store) TextSearch(ctx context.Context, q content.TextQuery) ([]domain.ContentEntity, int, error) {
	where := []string{"e.status = ?"}
	args := []any{string(domain.StatusPublished)}

	if q.Text != "" {
		where = append(where, "(e.title LIKE ? OR e.body LIKE ? OR e.excerpt LIKE ?)")
		pattern := "%" + escapeLike(q.Text) + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if len(q.Types) > 0 {
		where = append(where, "e.type IN ("+placeholders(len(q.Types))+")")
		for _, t := range q.Types {
			args = append(args, t)
		}
	}
	for _, bucket := range []struct {
		slugs        []string
		hierarchical int
	}{
		{q.Categories, 1},
		{q.Tags, 0},
	} {
		if len(bucket.slugs) == 0 {
			continue
		}
		where = append(where,
			`EXISTS (SELECT 1 FROM terms t WHERE t.entity_id = e.id
			 AND t.hierarchical = `+fmt.Sprint(bucket.hierarchical)+`
			 AND t.slug IN (`+placeholders(len(bucket.slugs))+`))`)
		for _, slug := range bucket.slugs {
			args = append(args, slug)
		}
	}
	if q.PriceMin != nil {
		where = append(where, "c.price >= ?")
		args = append(args, *q.PriceMin)
	}
	if q.PriceMax != nil {
		where = append(where, "c.price <= ?")
		args = append(args, *q.PriceMax)
	}

	base := ` FROM entities e LEFT JOIN commerce c ON c.entity_id = e.id
		WHERE ` + strings.Join(where, " AND ")

	var found int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*)`+base, args...).Scan(&found); err != nil {
		return nil, 0, fmt.Errorf("count matches: %w", err)
	}

	limit := q.Limit
	if limit < 1 {
		limit = 24
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+prefixColumns("e")+base+`
		 ORDER BY COALESCE(c.sales, 0) + COALESCE(c.reviews, 0) DESC, e.id ASC
		 LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("text search: %w", err)
	}
	defer rows.Close()

	entities, err := collectEntities(rows)
	if err != nil {
		return nil, 0, err
	}
	for i := range entities {
		if err := s.hydrate(ctx, &entities[i]); err != nil {
			return nil, 0, err
		}
	}
	return entities, found, nil
}

// SaveEntity inserts or replaces an entity with its terms and commerce
// record. The repository owns mutations; the core uses this only for seeding
// and tests.
func (s *Store) SaveEntity(ctx context.Context, e domain.ContentEntity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO entities
		 (id, type, status, title, body, excerpt, author, permalink, thumbnail_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Type, string(e.Status), e.Title, e.Body, e.Excerpt, e.Author,
		e.Permalink, e.ThumbnailURL, e.CreatedAt.Unix(), e.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("save entity: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM terms WHERE entity_id = ?`, e.ID); err != nil {
		return fmt.Errorf("clear terms: %w", err)
	}
	for _, t := range e.Terms {
		h := 0
		if t.Hierarchical {
			h = 1
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO terms (entity_id, taxonomy, slug, hierarchical) VALUES (?, ?, ?, ?)`,
			e.ID, t.Taxonomy, t.Slug, h)
		if err != nil {
			return fmt.Errorf("save term: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM commerce WHERE entity_id = ?`, e.ID); err != nil {
		return fmt.Errorf("clear commerce: %w", err)
	}
	if c := e.Commerce; c != nil {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO commerce (entity_id, sku, price, sales, reviews, rating, image_url)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, c.SKU, c.Price, c.Sales, c.Reviews, c.Rating, c.ImageURL)
		if err != nil {
			return fmt.Errorf("save commerce: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteEntity removes an entity and its dependent rows.
func (s *Store) DeleteEntity(ctx context.Context, id int64) error {
	for _, q := range []string{
		`DELETE FROM terms WHERE entity_id = ?`,
		`DELETE FROM commerce WHERE entity_id = ?`,
		`DELETE FROM entities WHERE id = ?`,
	} {
		if _, err := s.db.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("delete entity %d: %w", id, err)
		}
	}
	return nil
}

func (s *Store) hydrate(ctx context.Context, e *domain.ContentEntity) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT taxonomy, slug, hierarchical FROM terms WHERE entity_id = ? ORDER BY taxonomy, slug`, e.ID)
	if err != nil {
		return fmt.Errorf("load terms: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t domain.TaxonomyTerm
		var h int
		if err := rows.Scan(&t.Taxonomy, &t.Slug, &h); err != nil {
			return fmt.Errorf("scan term: %w", err)
		}
		t.Hierarchical = h != 0
		e.Terms = append(e.Terms, t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate terms: %w", err)
	}

	var c domain.Commerce
	err = s.db.QueryRowContext(ctx,
		`SELECT sku, price, sales, reviews, rating, image_url FROM commerce WHERE entity_id = ?`, e.ID).
		Scan(&c.SKU, &c.Price, &c.Sales, &c.Reviews, &c.Rating, &c.ImageURL)
	switch err {
	case nil:
		e.Commerce = &c
	case sql.ErrNoRows:
	default:
		return fmt.Errorf("load commerce: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(r rowScanner) (domain.ContentEntity, error) {
	var e domain.ContentEntity
	var status string
	var created, updated int64
	err := r.Scan(&e.ID, &e.Type, &status, &e.Title, &e.Body, &e.Excerpt,
		&e.Author, &e.Permalink, &e.ThumbnailURL, &created, &updated)
	if err != nil {
		return domain.ContentEntity{}, err
	}
	e.Status = domain.EntityStatus(status)
	e.CreatedAt = time.Unix(created, 0).UTC()
	e.UpdatedAt = time.Unix(updated, 0).UTC()
	return e, nil
}

func collectEntities(rows *sql.Rows) ([]domain.ContentEntity, error) {
	var out []domain.ContentEntity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}
	return out, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func prefixColumns(alias string) string {
	cols := strings.Split(entityColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func escapeLike(s string) string {
	// sqlite LIKE treats % and _ as wildcards; neutralize user input.
	s = strings.ReplaceAll(s, "%", "")
	return strings.ReplaceAll(s, "_", "")
}
