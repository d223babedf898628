package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/erikaambiru/azure-devsecops-demo/internal/core/domain"
	"github.com/erikaambiru/azure-devsecops-demo/internal/core/ports"
)

const schema = `
	CREATE TABLE IF NOT EXISTS posts (
		id         TEXT PRIMARY KEY,
		body       TEXT NOT NULL CHECK (body <> ''),
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS posts_created_at_idx ON posts (created_at DESC);
`

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

var _ ports.PostRepository = (*PostgresRepo)(nil)

// EnsureSchema crée la table au démarrage (idempotent). En prod on passerait par des migrations.
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Save(ctx context.Context, post *domain.Post) error {
	q := `
		INSERT INTO posts (id, body, created_at)
		VALUES (@id, @body, @created_at)
	`
	args := pgx.NamedArgs{
		"id":         post.ID,
		"body":       post.Body,
		"created_at": post.CreatedAt,
	}

	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return r.handleError(err)
	}
	return nil
}

// List : ordre antéchronologique, id en second critère pour un ordre stable
func (r *PostgresRepo) List(ctx context.Context) ([]*domain.Post, error) {
	query := `
		SELECT id, body, created_at
		FROM posts
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*domain.Post{}
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.Body, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		posts = append(posts, &p)
	}
	return posts, rows.Err()
}

func (r *PostgresRepo) Delete(ctx context.Context, postID string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM posts WHERE id = $1", postID)
	if err != nil {
		return r.handleError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostgresRepo) handleError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23514": // check_violation
			return domain.ErrEmptyBody
		case "23505": // unique_violation
			return fmt.Errorf("duplicate post id: %w", err)
		}
	}
	return err
}
