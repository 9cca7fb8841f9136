package labels

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

func (r *PostgresRepository) Create(ctx context.Context, l *models.Label) (*models.Label, error) {
	query := `INSERT INTO labels (name) VALUES ($1) RETURNING id, created_at`

	if err := r.db.QueryRowContext(ctx, query, l.Name).Scan(&l.ID, &l.CreatedAt); err != nil {
		return nil, dbx.Classify(err)
	}
	return l, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Label, error) {
	l := &models.Label{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM labels WHERE id = $1`, id).
		Scan(&l.ID, &l.Name, &l.CreatedAt)
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return l, nil
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Label, error) {
	l := &models.Label{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM labels WHERE name = $1`, name).
		Scan(&l.ID, &l.Name, &l.CreatedAt)
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return l, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Label, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM labels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Label
	for rows.Next() {
		l := &models.Label{}
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, l *models.Label) (*models.Label, error) {
	query := `UPDATE labels SET name = $2 WHERE id = $1 RETURNING created_at`

	if err := r.db.QueryRowContext(ctx, query, l.ID, l.Name).Scan(&l.CreatedAt); err != nil {
		return nil, dbx.Classify(err)
	}
	return l, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM labels WHERE id = $1`, id)
	if err != nil {
		return dbx.Classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
