package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/roleboard/internal/common"
	"github.com/dmitrijs2005/roleboard/internal/dbx"
	"github.com/dmitrijs2005/roleboard/internal/logging"
	"github.com/dmitrijs2005/roleboard/internal/server/auth"
	"github.com/dmitrijs2005/roleboard/internal/server/models"
	"github.com/dmitrijs2005/roleboard/internal/server/repositories/repomanager"
)

// SeedResult counts the rows Seed inserted.
type SeedResult struct {
	Users int
	Posts int
}

// AdminService covers schema and account administration. It has no web
// surface.
type AdminService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	checker     auth.CredentialChecker
	logger      logging.Logger
}

func NewAdminService(db *sql.DB, m repomanager.RepositoryManager, checker auth.CredentialChecker, logger logging.Logger) *AdminService {
	return &AdminService{
		db:          db,
		repomanager: m,
		checker:     checker,
		logger:      logger.With("module", "admin"),
	}
}

// Migrate applies pending migrations.
func (s *AdminService) Migrate(ctx context.Context) error {
	if err := s.repomanager.RunMigrations(ctx, s.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// ResetSchema drops and recreates every table.
func (s *AdminService) ResetSchema(ctx context.Context) error {
	if err := s.repomanager.ResetSchema(ctx, s.db); err != nil {
		return fmt.Errorf("reset schema: %w", err)
	}
	s.logger.Info(ctx, "schema reset")
	return nil
}

// Seed inserts the demo accounts when there are no users and the demo posts
// when there are no posts, in one transaction.
func (s *AdminService) Seed(ctx context.Context) (SeedResult, error) {
	var res SeedResult

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		posts := s.repomanager.Posts(tx)

		n, err := users.Count(ctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		if n == 0 {
			for _, su := range seedUsers {
				secret, err := s.checker.Hash(su.Secret)
				if err != nil {
					return fmt.Errorf("hash secret: %w", err)
				}
				u := &models.User{UserName: su.UserName, Email: su.Email, Password: secret, Role: su.Role}
				if _, err := users.Create(ctx, u); err != nil {
					return fmt.Errorf("create user %s: %w", su.UserName, err)
				}
				res.Users++
			}
		}

		n, err = posts.Count(ctx)
		if err != nil {
			return fmt.Errorf("count posts: %w", err)
		}
		if n > 0 {
			return nil
		}

		authors := make(map[string]int64)
		for _, sp := range seedPosts {
			id, ok := authors[sp.Author]
			if !ok {
				u, err := users.GetUserByUsername(ctx, sp.Author)
				if err != nil {
					return fmt.Errorf("find author %s: %w", sp.Author, err)
				}
				id = u.ID
				authors[sp.Author] = id
			}
			p := &models.Post{Title: sp.Title, Content: sp.Content, AuthorID: id}
			if _, err := posts.Create(ctx, p); err != nil {
				return fmt.Errorf("create post %q: %w", sp.Title, err)
			}
			res.Posts++
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	s.logger.Info(ctx, "seed complete", "users", res.Users, "posts", res.Posts)
	return res, nil
}

// CreateUser adds an account. The role must be one of the known roles.
func (s *AdminService) CreateUser(ctx context.Context, username, email, secret, role string) (*models.User, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || secret == "" {
		return nil, fmt.Errorf("%w: username, email and secret are required", common.ErrInvalidInput)
	}

	r, err := models.ParseRole(role)
	if err != nil {
		return nil, err
	}

	stored, err := s.checker.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		UserName: username,
		Email:    email,
		Password: stored,
		Role:     r,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info(ctx, "user created", "username", u.UserName, "role", u.Role.String(), "id", u.ID)
	return u, nil
}

// DeleteUser removes an account with its posts and sessions.
func (s *AdminService) DeleteUser(ctx context.Context, username string) error {
	var id int64

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)

		u, err := users.GetUserByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		id = u.ID

		if err := users.Delete(ctx, u.ID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "user deleted", "username", username, "id", id)
	return nil
}

// ListPosts returns every post with its author, ordered by id.
func (s *AdminService) ListPosts(ctx context.Context) ([]models.PostRow, error) {
	rows, err := s.repomanager.Posts(s.db).ListJoinedAuthor(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return rows, nil
}
