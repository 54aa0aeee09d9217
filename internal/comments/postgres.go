package comments

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore persists comments in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates the comments table if needed and returns the store.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			product_id TEXT NOT NULL,
			user_id    TEXT NOT NULL,
			user_name  TEXT NOT NULL DEFAULT '',
			content    TEXT NOT NULL,
			edited     BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create comments table: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS comments_product_id_idx ON comments (product_id)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create comments index: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) ListByProduct(ctx context.Context, productID string) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, user_id, user_name, content, edited, created_at, updated_at
		FROM comments WHERE product_id = $1 ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]Comment, 0)
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.ProductID, &c.UserID, &c.UserName, &c.Content, &c.Edited, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Comment, error) {
	var c Comment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, product_id, user_id, user_name, content, edited, created_at, updated_at
		FROM comments WHERE id = $1`, id).
		Scan(&c.ID, &c.ProductID, &c.UserID, &c.UserName, &c.Content, &c.Edited, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) Create(ctx context.Context, c *Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, product_id, user_id, user_name, content, edited, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.ProductID, c.UserID, c.UserName, c.Content, c.Edited, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, c *Comment) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE comments SET content = $2, edited = $3, updated_at = $4 WHERE id = $1`,
		c.ID, c.Content, c.Edited, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	if rows == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if rows == 0 {
		return ErrCommentNotFound
	}
	return nil
}
