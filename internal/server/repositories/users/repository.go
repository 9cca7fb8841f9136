// Package users declares the credential store: persistent user accounts with
// their password digests and roles.
package users

import (
	"context"

	"github.com/dmitrijs2005/taskmanager/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	// Update writes every mutable column of user, including PasswordHash.
	Update(ctx context.Context, user *models.User) (*models.User, error)
	// Delete fails with common.ErrInUse while tasks are assigned to the user.
	Delete(ctx context.Context, id int64) error
}
