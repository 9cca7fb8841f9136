// Package taskstatuses stores the workflow states a task can be in.
package taskstatuses

import (
	"context"

	"github.com/dmitrijs2005/taskmanager/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.TaskStatus) (*models.TaskStatus, error)
	GetByID(ctx context.Context, id int64) (*models.TaskStatus, error)
	GetBySlug(ctx context.Context, slug string) (*models.TaskStatus, error)
	List(ctx context.Context) ([]*models.TaskStatus, error)
	Update(ctx context.Context, s *models.TaskStatus) (*models.TaskStatus, error)
	// Delete fails with common.ErrInUse while tasks reference the status.
	Delete(ctx context.Context, id int64) error
}
