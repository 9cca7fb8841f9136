package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/cryptox"
	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/auth"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/repomanager"
)

const (
	DefaultAdminEmail    = "hexlet@example.com"
	DefaultAdminPassword = "qwerty"
)

var (
	defaultStatuses = []models.TaskStatus{
		{Name: "Draft", Slug: "draft"},
		{Name: "To review", Slug: "to_review"},
		{Name: "To be fixed", Slug: "to_be_fixed"},
		{Name: "To publish", Slug: "to_publish"},
		{Name: "Published", Slug: "published"},
	}
	defaultLabels = []string{"feature", "bug"}
)

// Seeder creates the default admin, task statuses and labels. Running it
// again leaves existing rows untouched.
type Seeder struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      cryptox.Hasher
	log         logging.Logger
}

func NewSeeder(db *sql.DB, m repomanager.RepositoryManager, hasher cryptox.Hasher, l logging.Logger) *Seeder {
	return &Seeder{db: db, repomanager: m, hasher: hasher, log: l.With("module", "seed")}
}

func (s *Seeder) Seed(ctx context.Context) error {
	if err := s.seedAdmin(ctx); err != nil {
		return err
	}

	statuses := s.repomanager.TaskStatuses(s.db)
	for _, st := range defaultStatuses {
		_, err := statuses.GetBySlug(ctx, st.Slug)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		if _, err := statuses.Create(ctx, &st); err != nil && !errors.Is(err, common.ErrAlreadyExists) {
			return err
		}
		s.log.Info(ctx, "task status created", "slug", st.Slug)
	}

	labels := s.repomanager.Labels(s.db)
	for _, name := range defaultLabels {
		_, err := labels.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		if _, err := labels.Create(ctx, &models.Label{Name: name}); err != nil && !errors.Is(err, common.ErrAlreadyExists) {
			return err
		}
		s.log.Info(ctx, "label created", "name", name)
	}
	return nil
}

func (s *Seeder) seedAdmin(ctx context.Context) error {
	users := s.repomanager.Users(s.db)

	_, err := users.GetUserByLogin(ctx, DefaultAdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return err
	}

	digest, err := s.hasher.Hash(DefaultAdminPassword)
	if err != nil {
		return err
	}
	_, err = users.Create(ctx, &models.User{
		Email:        DefaultAdminEmail,
		PasswordHash: digest,
		Roles:        models.Roles{auth.RoleAdmin},
	})
	if err != nil && !errors.Is(err, common.ErrAlreadyExists) {
		return err
	}
	s.log.Warn(ctx, "default admin created, change its password", "email", DefaultAdminEmail)
	return nil
}
