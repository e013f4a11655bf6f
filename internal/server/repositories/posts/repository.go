// Package posts declares the post repository contract and its PostgreSQL
// implementation. Every query takes user input only as bound arguments.
package posts

import (
	"context"

	"github.com/dmitrijs2005/roleboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	ListAll(ctx context.Context) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]models.Post, error)
	ListJoinedAuthor(ctx context.Context) ([]models.PostRow, error)

	// Search returns posts in scope whose title or content matches the LIKE
	// pattern case-insensitively, joined with the author username.
	Search(ctx context.Context, pattern string, scope models.PostScope) ([]models.PostRow, error)

	Count(ctx context.Context) (int64, error)
	CountByAuthor(ctx context.Context, authorID int64) (int64, error)
}
