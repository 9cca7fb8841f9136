package taskstatuses

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/dbx"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.TaskStatus) (*models.TaskStatus, error) {
	query :=
		`INSERT INTO task_statuses (name, slug)
		 VALUES ($1, $2)
		 RETURNING id, created_at`

	if err := r.db.QueryRowContext(ctx, query, s.Name, s.Slug).Scan(&s.ID, &s.CreatedAt); err != nil {
		return nil, dbx.Classify(err)
	}
	return s, nil
}

func (r *PostgresRepository) get(ctx context.Context, where string, arg any) (*models.TaskStatus, error) {
	query := `SELECT id, name, slug, created_at FROM task_statuses WHERE ` + where + ` = $1`

	s := &models.TaskStatus{}
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&s.ID, &s.Name, &s.Slug, &s.CreatedAt); err != nil {
		return nil, dbx.Classify(err)
	}
	return s, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.TaskStatus, error) {
	return r.get(ctx, "id", id)
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*models.TaskStatus, error) {
	return r.get(ctx, "slug", slug)
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.TaskStatus, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug, created_at FROM task_statuses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.TaskStatus
	for rows.Next() {
		s := &models.TaskStatus{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, s *models.TaskStatus) (*models.TaskStatus, error) {
	query :=
		`UPDATE task_statuses SET name = $2, slug = $3
		 WHERE id = $1
		 RETURNING created_at`

	if err := r.db.QueryRowContext(ctx, query, s.ID, s.Name, s.Slug).Scan(&s.CreatedAt); err != nil {
		return nil, dbx.Classify(err)
	}
	return s, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM task_statuses WHERE id = $1`, id)
	if err != nil {
		return dbx.Classify(err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("db error: %w", err)
	} else if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
