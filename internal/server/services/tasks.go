package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/dbx"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/repomanager"
)

type TaskInput struct {
	Index      *int64  `json:"index"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Status     string  `json:"status"`
	AssigneeID *int64  `json:"assignee_id"`
	LabelIDs   []int64 `json:"taskLabelIds"`
}

type TaskPatch struct {
	Index      Optional[*int64]  `json:"index"`
	Title      Optional[string]  `json:"title"`
	Content    Optional[string]  `json:"content"`
	Status     Optional[string]  `json:"status"`
	AssigneeID Optional[*int64]  `json:"assignee_id"`
	LabelIDs   Optional[[]int64] `json:"taskLabelIds"`
}

type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m}
}

func (s *TaskService) List(ctx context.Context, f models.TaskFilter) ([]*models.Task, error) {
	return s.repomanager.Tasks(s.db).List(ctx, f)
}

func (s *TaskService) Get(ctx context.Context, id int64) (*models.Task, error) {
	return s.repomanager.Tasks(s.db).GetByID(ctx, id)
}

func (s *TaskService) Create(ctx context.Context, in TaskInput) (*models.Task, error) {
	t := &models.Task{
		Index:      in.Index,
		Title:      in.Title,
		Content:    in.Content,
		AssigneeID: in.AssigneeID,
		LabelIDs:   dedupe(in.LabelIDs),
	}
	if err := s.resolve(ctx, t, in.Status); err != nil {
		return nil, err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)
		if _, err := repo.Create(ctx, t); err != nil {
			return err
		}
		return repo.SetLabels(ctx, t.ID, t.LabelIDs)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Update applies the fields present in p. Labels are replaced only when
// taskLabelIds was sent.
func (s *TaskService) Update(ctx context.Context, id int64, p TaskPatch) (*models.Task, error) {
	t, err := s.repomanager.Tasks(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := t.StatusSlug
	if p.Index.Set {
		t.Index = p.Index.Value
	}
	if p.Title.Set {
		t.Title = p.Title.Value
	}
	if p.Content.Set {
		t.Content = p.Content.Value
	}
	if p.Status.Set {
		status = p.Status.Value
	}
	if p.AssigneeID.Set {
		t.AssigneeID = p.AssigneeID.Value
	}
	if p.LabelIDs.Set {
		t.LabelIDs = dedupe(p.LabelIDs.Value)
	}
	if err := s.resolve(ctx, t, status); err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)
		if _, err := repo.Update(ctx, t); err != nil {
			return err
		}
		if p.LabelIDs.Set {
			return repo.SetLabels(ctx, t.ID, t.LabelIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	return s.repomanager.Tasks(s.db).Delete(ctx, id)
}

// resolve validates t and fills StatusID from the status slug.
func (s *TaskService) resolve(ctx context.Context, t *models.Task, status string) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", common.ErrValidation)
	}
	if status == "" {
		return fmt.Errorf("%w: status is required", common.ErrValidation)
	}

	st, err := s.repomanager.TaskStatuses(s.db).GetBySlug(ctx, status)
	if err != nil {
		return notFoundAsInvalid(err, "unknown status %q", status)
	}
	t.StatusID = st.ID
	t.StatusSlug = st.Slug

	if t.AssigneeID != nil {
		if _, err := s.repomanager.Users(s.db).GetByID(ctx, *t.AssigneeID); err != nil {
			return notFoundAsInvalid(err, "unknown assignee %d", *t.AssigneeID)
		}
	}

	labels := s.repomanager.Labels(s.db)
	for _, id := range t.LabelIDs {
		if _, err := labels.GetByID(ctx, id); err != nil {
			return notFoundAsInvalid(err, "unknown label %d", id)
		}
	}
	return nil
}

func notFoundAsInvalid(err error, format string, args ...any) error {
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%w: "+format, append([]any{common.ErrValidation}, args...)...)
	}
	return err
}

func dedupe(ids []int64) models.IDList {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
