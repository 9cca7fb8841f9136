package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/dbx"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
)

const selectTasks = `SELECT t.id, t.task_index, t.title, t.content, t.task_status_id, s.slug, t.assignee_id, t.created_at,
       COALESCE(string_agg(tl.label_id::text, ',' ORDER BY tl.label_id), '')
FROM tasks t
JOIN task_statuses s ON s.id = t.task_status_id
LEFT JOIN task_labels tl ON tl.task_id = t.id`

const groupTasks = `
GROUP BY t.id, s.slug
ORDER BY t.id`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*models.Task, error) {
	var (
		t        models.Task
		index    sql.NullInt64
		content  sql.NullString
		assignee sql.NullInt64
	)
	err := s.Scan(&t.ID, &index, &t.Title, &content, &t.StatusID, &t.StatusSlug, &assignee, &t.CreatedAt, &t.LabelIDs)
	if err != nil {
		return nil, err
	}
	if index.Valid {
		t.Index = &index.Int64
	}
	if assignee.Valid {
		t.AssigneeID = &assignee.Int64
	}
	t.Content = content.String
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	query :=
		`INSERT INTO tasks (task_index, title, content, task_status_id, assignee_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, t.Index, t.Title, nullString(t.Content), t.StatusID, t.AssigneeID).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return t, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	query := selectTasks + `
WHERE t.id = $1` + groupTasks

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return t, nil
}

// buildFilter renders the WHERE clause for f with positional arguments.
func buildFilter(f models.TaskFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.TitleCont != "" {
		conds = append(conds, "strpos(lower(t.title), lower("+arg(f.TitleCont)+")) > 0")
	}
	if f.AssigneeID != nil {
		conds = append(conds, "t.assignee_id = "+arg(*f.AssigneeID))
	}
	if f.Status != "" {
		conds = append(conds, "s.slug = "+arg(f.Status))
	}
	if f.LabelID != nil {
		conds = append(conds, "EXISTS (SELECT 1 FROM task_labels fl WHERE fl.task_id = t.id AND fl.label_id = "+arg(*f.LabelID)+")")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "\nWHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresRepository) List(ctx context.Context, f models.TaskFilter) ([]*models.Task, error) {
	where, args := buildFilter(f)

	rows, err := r.db.QueryContext(ctx, selectTasks+where+groupTasks, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, t *models.Task) (*models.Task, error) {
	query :=
		`UPDATE tasks
		 SET task_index = $2, title = $3, content = $4, task_status_id = $5, assignee_id = $6
		 WHERE id = $1
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, t.ID, t.Index, t.Title, nullString(t.Content), t.StatusID, t.AssigneeID).
		Scan(&t.CreatedAt)
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
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

func (r *PostgresRepository) SetLabels(ctx context.Context, taskID int64, labelIDs []int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM task_labels WHERE task_id = $1`, taskID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	for _, id := range labelIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO task_labels (task_id, label_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, taskID, id)
		if dbx.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: unknown label %d", common.ErrValidation, id)
		}
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}
