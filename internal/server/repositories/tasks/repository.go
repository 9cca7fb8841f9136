// Package tasks stores tasks together with their label assignments.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskmanager/internal/server/models"
)

type Repository interface {
	// Create inserts the task row. Labels are written with SetLabels.
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	// List returns tasks matching every non-zero field of f, ordered by id.
	List(ctx context.Context, f models.TaskFilter) ([]*models.Task, error)
	Update(ctx context.Context, t *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
	// SetLabels replaces the label set of a task. Run it in the same
	// transaction as the task write.
	SetLabels(ctx context.Context, taskID int64, labelIDs []int64) error
}
