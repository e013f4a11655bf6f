package posts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/roleboard/internal/common"
	"github.com/dmitrijs2005/roleboard/internal/dbx"
	"github.com/dmitrijs2005/roleboard/internal/server/models"
)

const (
	selectPosts = `SELECT id, title, content, created, author_id FROM posts`

	selectJoined = `SELECT p.id, p.title, p.content, p.created, p.author_id, u.username
		 FROM posts p
		 JOIN users u ON u.id = p.author_id`

	matchTerm = `(p.title ILIKE $1 ESCAPE '\' OR p.content ILIKE $1 ESCAPE '\')`
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query :=
		`INSERT INTO posts (title, content, author_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created
		 `

	err := r.db.QueryRowContext(ctx, query, post.Title, post.Content, post.AuthorID).
		Scan(&post.ID, &post.Created)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: author %d", common.ErrorNotFound, post.AuthorID)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	post.Created = post.Created.UTC()
	return post, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]models.Post, error) {
	query := selectPosts + `
		 ORDER BY id`

	return r.queryPosts(ctx, query)
}

func (r *PostgresRepository) ListByAuthor(ctx context.Context, authorID int64) ([]models.Post, error) {
	query := selectPosts + `
		 WHERE author_id = $1
		 ORDER BY id`

	return r.queryPosts(ctx, query, authorID)
}

func (r *PostgresRepository) ListJoinedAuthor(ctx context.Context) ([]models.PostRow, error) {
	query := selectJoined + `
		 ORDER BY p.id`

	return r.queryRows(ctx, query)
}

func (r *PostgresRepository) Search(ctx context.Context, pattern string, scope models.PostScope) ([]models.PostRow, error) {
	if scope.All() {
		query := selectJoined + `
		 WHERE ` + matchTerm + `
		 ORDER BY p.id`
		return r.queryRows(ctx, query, pattern)
	}

	query := selectJoined + `
		 WHERE p.author_id = $2 AND ` + matchTerm + `
		 ORDER BY p.id`
	return r.queryRows(ctx, query, pattern, scope.AuthorID())
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM posts`)
}

func (r *PostgresRepository) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM posts WHERE author_id = $1`, authorID)
}

func (r *PostgresRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) queryPosts(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Created, &p.AuthorID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		p.Created = p.Created.UTC()
		result = append(result, p)
	}

	return result, rowsErr(rows)
}

func (r *PostgresRepository) queryRows(ctx context.Context, query string, args ...any) ([]models.PostRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.PostRow
	for rows.Next() {
		var p models.PostRow
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Created, &p.AuthorID, &p.AuthorName); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		p.Created = p.Created.UTC()
		result = append(result, p)
	}

	return result, rowsErr(rows)
}

func rowsErr(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
