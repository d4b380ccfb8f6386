// Package users declares the credential store contract and its SQL
// implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
)

// Repository persists user accounts. Lookups return common.ErrorNotFound
// when no row matches.
type Repository interface {
	// Create inserts user and fills its ID. A duplicate username yields
	// common.ErrConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	FindByUsername(ctx context.Context, userName string) (*models.User, error)

	// FindByUsernameOrEmail returns the oldest user matching either field.
	FindByUsernameOrEmail(ctx context.Context, userName, email string) (*models.User, error)

	// FindByUsernameAndEmail returns the user matching both fields.
	FindByUsernameAndEmail(ctx context.Context, userName, email string) (*models.User, error)

	UpdatePassword(ctx context.Context, userName string, passwordHash []byte) error

	// UpdateUsername renames the user with the given id. A name taken by
	// another row yields common.ErrConflict.
	UpdateUsername(ctx context.Context, userID int64, newUserName string) error
}
