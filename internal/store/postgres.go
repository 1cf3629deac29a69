package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore is a Postgres-backed Store, for deployments that want the
// compile API's model history to survive restarts and be shared across
// replicas. It talks to Postgres through database/sql using pgx's stdlib
// driver, which keeps it testable with sqlmock.
type PostgresStore struct {
	db        *sql.DB
	tableName string
}

// NewPostgresStore connects to Postgres and ensures the models table exists.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := newPostgresStore(db)
	if err := s.createTable(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func newPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, tableName: "fgac_models"}
}

func (s *PostgresStore) createTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			source TEXT NOT NULL,
			model_json JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create models table: %w", err)
	}

	indexQuery := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%s_name_created_at ON %s (name, created_at DESC)
	`, s.tableName, s.tableName)

	_, err := s.db.ExecContext(ctx, indexQuery)
	return err
}

func (s *PostgresStore) Put(ctx context.Context, m *Model) (string, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, source, model_json, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			source = EXCLUDED.source,
			model_json = EXCLUDED.model_json
	`, s.tableName)

	_, err := s.db.ExecContext(ctx, query, m.ID, m.Name, m.Source, m.JSON, m.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("postgres insert error: %w", err)
	}

	return m.ID, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Model, error) {
	query := fmt.Sprintf(`
		SELECT id, name, source, model_json, created_at FROM %s WHERE id = $1
	`, s.tableName)

	m, err := scanPostgresRow(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *PostgresStore) GetByName(ctx context.Context, name string) (*Model, error) {
	query := fmt.Sprintf(`
		SELECT id, name, source, model_json, created_at FROM %s
		WHERE name = $1 ORDER BY created_at DESC LIMIT 1
	`, s.tableName)

	m, err := scanPostgresRow(s.db.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*Model, int, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.tableName)
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres count error: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, source, model_json, created_at FROM %s
		ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, s.tableName)

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres list error: %w", err)
	}
	defer rows.Close()

	var models []*Model
	for rows.Next() {
		var m Model
		if err := rows.Scan(&m.ID, &m.Name, &m.Source, &m.JSON, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("postgres scan error: %w", err)
		}
		models = append(models, &m)
	}

	return models, total, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func scanPostgresRow(row *sql.Row) (*Model, error) {
	var m Model
	err := row.Scan(&m.ID, &m.Name, &m.Source, &m.JSON, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres query error: %w", err)
	}
	return &m, nil
}
