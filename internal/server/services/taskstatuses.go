package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/repomanager"
)

type TaskStatusInput struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type TaskStatusPatch struct {
	Name Optional[string] `json:"name"`
	Slug Optional[string] `json:"slug"`
}

type TaskStatusService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTaskStatusService(db *sql.DB, m repomanager.RepositoryManager) *TaskStatusService {
	return &TaskStatusService{db: db, repomanager: m}
}

func validateStatus(name, slug string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be empty", common.ErrValidation)
	}
	if strings.TrimSpace(slug) == "" {
		return fmt.Errorf("%w: slug must not be empty", common.ErrValidation)
	}
	return nil
}

func (s *TaskStatusService) List(ctx context.Context) ([]*models.TaskStatus, error) {
	return s.repomanager.TaskStatuses(s.db).List(ctx)
}

func (s *TaskStatusService) Get(ctx context.Context, id int64) (*models.TaskStatus, error) {
	return s.repomanager.TaskStatuses(s.db).GetByID(ctx, id)
}

func (s *TaskStatusService) Create(ctx context.Context, in TaskStatusInput) (*models.TaskStatus, error) {
	if err := validateStatus(in.Name, in.Slug); err != nil {
		return nil, err
	}
	return s.repomanager.TaskStatuses(s.db).Create(ctx, &models.TaskStatus{Name: in.Name, Slug: in.Slug})
}

func (s *TaskStatusService) Update(ctx context.Context, id int64, p TaskStatusPatch) (*models.TaskStatus, error) {
	repo := s.repomanager.TaskStatuses(s.db)

	st, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name.Set {
		st.Name = p.Name.Value
	}
	if p.Slug.Set {
		st.Slug = p.Slug.Value
	}
	if err := validateStatus(st.Name, st.Slug); err != nil {
		return nil, err
	}
	return repo.Update(ctx, st)
}

// Delete fails with common.ErrInUse while tasks are in this status.
func (s *TaskStatusService) Delete(ctx context.Context, id int64) error {
	return s.repomanager.TaskStatuses(s.db).Delete(ctx, id)
}
