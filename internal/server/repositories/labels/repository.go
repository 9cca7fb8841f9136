// Package labels stores the free-form tags attached to tasks.
package labels

import (
	"context"

	"github.com/dmitrijs2005/taskmanager/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, l *models.Label) (*models.Label, error)
	GetByID(ctx context.Context, id int64) (*models.Label, error)
	GetByName(ctx context.Context, name string) (*models.Label, error)
	List(ctx context.Context) ([]*models.Label, error)
	Update(ctx context.Context, l *models.Label) (*models.Label, error)
	// Delete fails with common.ErrInUse while the label is attached to a task.
	Delete(ctx context.Context, id int64) error
}
