package persistence

import (
	"context"
	"fmt"
	"time"

	sharedDomain "github.com/felixgeelhaar/studybuddy/internal/shared/domain"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
	"github.com/google/uuid"
)

// SQLTaskRepository implements task.Repository on SQLite or Postgres.
type SQLTaskRepository struct {
	conn database.Connection
}

var (
	_ task.Repository                     = (*SQLTaskRepository)(nil)
	_ sharedDomain.Repository[*task.Task] = (*SQLTaskRepository)(nil)
)

// NewSQLTaskRepository creates a new task repository.
func NewSQLTaskRepository(conn database.Connection) *SQLTaskRepository {
	return &SQLTaskRepository{conn: conn}
}

const taskColumns = `id, subject, name, total_seconds, remaining_seconds, due_date,
       importance, hard_deadline, position, version, created_at, updated_at`

const upsertTask = `INSERT INTO tasks (` + taskColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    subject = excluded.subject,
    name = excluded.name,
    remaining_seconds = excluded.remaining_seconds,
    due_date = excluded.due_date,
    importance = excluded.importance,
    hard_deadline = excluded.hard_deadline,
    version = excluded.version,
    updated_at = excluded.updated_at`

// Save inserts or updates a task.
func (r *SQLTaskRepository) Save(ctx context.Context, t *task.Task) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, upsertTask,
		t.ID().String(),
		t.Subject(),
		t.Name(),
		int64(t.Total()/time.Second),
		int64(t.Remaining()/time.Second),
		t.DueDate().Format(database.DateLayout),
		t.Importance().Float64(),
		t.HardDeadline(),
		t.Position(),
		t.Version(),
		database.FormatTime(t.CreatedAt()),
		database.FormatTime(t.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("save task %s: %w", t.ID(), err)
	}
	return nil
}

// FindByID loads a task or returns task.ErrTaskNotFound.
func (r *SQLTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id.String())
	t, err := scanTask(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, fmt.Errorf("%w: %s", task.ErrTaskNotFound, id)
		}
		return nil, err
	}
	return t, nil
}

// FindAll returns every task in intake order.
func (r *SQLTaskRepository) FindAll(ctx context.Context) ([]*task.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY position, created_at`)
}

// FindOpen returns tasks that still have remaining time.
func (r *SQLTaskRepository) FindOpen(ctx context.Context) ([]*task.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE remaining_seconds > 0 ORDER BY position, created_at`)
}

// Delete removes a task. Deleting a missing task returns task.ErrTaskNotFound.
func (r *SQLTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `DELETE FROM tasks WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", task.ErrTaskNotFound, id)
	}
	return nil
}

// NextPosition returns one past the highest stored position.
func (r *SQLTaskRepository) NextPosition(ctx context.Context) (int, error) {
	var maxPos int
	err := database.ExecutorFromContext(ctx, r.conn).
		QueryRow(ctx, `SELECT COALESCE(MAX(position), 0) FROM tasks`).
		Scan(&maxPos)
	if err != nil {
		return 0, fmt.Errorf("next task position: %w", err)
	}
	return maxPos + 1, nil
}

func (r *SQLTaskRepository) list(ctx context.Context, query string) ([]*task.Task, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanTask(row database.Row) (*task.Task, error) {
	var (
		id, subject, name    string
		total, remaining     int64
		dueDate              string
		importance           float64
		hardDeadline         bool
		position, version    int
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &subject, &name, &total, &remaining, &dueDate,
		&importance, &hardDeadline, &position, &version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("task row %q: %w", id, err)
	}
	due, err := time.Parse(database.DateLayout, dueDate)
	if err != nil {
		return nil, fmt.Errorf("task %s due date: %w", id, err)
	}
	created, err := database.ParseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("task %s created_at: %w", id, err)
	}
	updated, err := database.ParseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("task %s updated_at: %w", id, err)
	}

	return task.Rehydrate(task.RehydrateParams{
		ID:           taskID,
		Subject:      subject,
		Name:         name,
		Total:        time.Duration(total) * time.Second,
		Remaining:    time.Duration(remaining) * time.Second,
		DueDate:      due,
		Importance:   task.Importance(importance),
		HardDeadline: hardDeadline,
		Position:     position,
		Version:      version,
		CreatedAt:    created,
		UpdatedAt:    updated,
	}), nil
}
