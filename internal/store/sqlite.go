package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a file-backed Store for single-node or offline use, where
// running Postgres is more operational overhead than the deployment needs.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) a SQLite database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createTable(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) createTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS fgac_models (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			source TEXT NOT NULL,
			model_json TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create models table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_fgac_models_name_created_at ON fgac_models (name, created_at DESC)
	`)
	return err
}

func (s *SQLiteStore) Put(ctx context.Context, m *Model) (string, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fgac_models (id, name, source, model_json, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			source = excluded.source,
			model_json = excluded.model_json
	`, m.ID, m.Name, m.Source, string(m.JSON), m.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("sqlite insert error: %w", err)
	}

	return m.ID, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Model, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, source, model_json, created_at FROM fgac_models WHERE id = ?
	`, id)
	return scanModel(row)
}

func (s *SQLiteStore) GetByName(ctx context.Context, name string) (*Model, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, source, model_json, created_at FROM fgac_models
		WHERE name = ? ORDER BY created_at DESC LIMIT 1
	`, name)
	return scanModel(row)
}

func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*Model, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fgac_models`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite count error: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, source, model_json, created_at FROM fgac_models
		ORDER BY created_at DESC LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite list error: %w", err)
	}
	defer rows.Close()

	var models []*Model
	for rows.Next() {
		var m Model
		var jsonStr string
		if err := rows.Scan(&m.ID, &m.Name, &m.Source, &jsonStr, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("sqlite scan error: %w", err)
		}
		m.JSON = []byte(jsonStr)
		models = append(models, &m)
	}

	return models, total, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanModel(row *sql.Row) (*Model, error) {
	var m Model
	var jsonStr string

	err := row.Scan(&m.ID, &m.Name, &m.Source, &jsonStr, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite query error: %w", err)
	}

	m.JSON = []byte(jsonStr)
	return &m, nil
}
