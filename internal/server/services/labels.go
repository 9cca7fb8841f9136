package services

import (
	"context"
	"database/sql"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/repomanager"
)

const (
	minLabelName = 3
	maxLabelName = 1000
)

type LabelInput struct {
	Name string `json:"name"`
}

type LabelPatch struct {
	Name Optional[string] `json:"name"`
}

type LabelService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewLabelService(db *sql.DB, m repomanager.RepositoryManager) *LabelService {
	return &LabelService{db: db, repomanager: m}
}

func validateLabel(name string) error {
	if n := utf8.RuneCountInString(name); n < minLabelName || n > maxLabelName {
		return fmt.Errorf("%w: label name must be %d to %d characters", common.ErrValidation, minLabelName, maxLabelName)
	}
	return nil
}

func (s *LabelService) List(ctx context.Context) ([]*models.Label, error) {
	return s.repomanager.Labels(s.db).List(ctx)
}

func (s *LabelService) Get(ctx context.Context, id int64) (*models.Label, error) {
	return s.repomanager.Labels(s.db).GetByID(ctx, id)
}

func (s *LabelService) Create(ctx context.Context, in LabelInput) (*models.Label, error) {
	if err := validateLabel(in.Name); err != nil {
		return nil, err
	}
	return s.repomanager.Labels(s.db).Create(ctx, &models.Label{Name: in.Name})
}

func (s *LabelService) Update(ctx context.Context, id int64, p LabelPatch) (*models.Label, error) {
	repo := s.repomanager.Labels(s.db)

	l, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name.Set {
		if err := validateLabel(p.Name.Value); err != nil {
			return nil, err
		}
		l.Name = p.Name.Value
	}
	return repo.Update(ctx, l)
}

// Delete fails with common.ErrInUse while the label is attached to a task.
func (s *LabelService) Delete(ctx context.Context, id int64) error {
	return s.repomanager.Labels(s.db).Delete(ctx, id)
}
