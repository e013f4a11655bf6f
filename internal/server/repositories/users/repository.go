// Package users declares the account repository contract and its
// PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/roleboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByUsername(ctx context.Context, userName string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
