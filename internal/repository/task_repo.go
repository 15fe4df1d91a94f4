package repository

import (
	"context"
	"errors"
	"fmt"

	"taskmanager/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskFilter narrows ListByOwner. Zero values mean no filter; the owner scope
// is always applied by the query itself.
type TaskFilter struct {
	Status   domain.Status
	Priority domain.Priority
	Sort     string
}

// Sort keys accepted by ListByOwner. Anything else falls back to newest first.
const (
	SortDueDate  = "dueDate"
	SortPriority = "priority"
	SortStatus   = "status"
)

const taskColumns = `id, user_id, title, description, status, priority, due_date, created_at, updated_at`

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO tasks (id, user_id, title, description, status, priority, due_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		t.ID, t.UserID, t.Title, t.Description, t.Status, t.Priority, t.DueDate,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	var t domain.Task
	if err := scanTask(row, &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListByOwner returns the owner's tasks, optionally filtered by status and
// priority, ordered per the filter's sort key.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, f TaskFilter) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{ownerID}

	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		query += fmt.Sprintf(` AND priority = $%d`, len(args))
	}

	switch f.Sort {
	case SortDueDate:
		query += ` ORDER BY due_date ASC NULLS LAST`
	case SortPriority:
		query += ` ORDER BY CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC`
	case SortStatus:
		query += ` ORDER BY status ASC`
	default:
		query += ` ORDER BY created_at DESC`
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*domain.Task{}
	for rows.Next() {
		var t domain.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	return r.db.QueryRow(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, status = $3, priority = $4, due_date = $5, updated_at = now()
		 WHERE id = $6
		 RETURNING updated_at`,
		t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.ID,
	).Scan(&t.UpdatedAt)
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row, t *domain.Task) error {
	return row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}
