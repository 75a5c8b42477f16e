package sqlite

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	taskerrors "github.com/theapemachine/taskagent/pkg/errors"
	"github.com/theapemachine/taskagent/pkg/tasks"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	id           TEXT NOT NULL UNIQUE,
	user_id      TEXT NOT NULL,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	priority     TEXT NOT NULL,
	due_date     TEXT,
	created_at   TEXT,
	completed_at TEXT
);
CREATE INDEX IF NOT EXISTS tasks_user ON tasks (user_id, seq);
`

const columns = `id, user_id, title, description, status, priority, due_date, created_at, completed_at`

/*
TaskRepository persists tasks in a SQLite file through the pure Go driver,
so the binary keeps building without cgo.
*/
type TaskRepository struct {
	db *sql.DB
}

// Open creates the file if needed and applies the schema.
func Open(ctx context.Context, dsn string) (*TaskRepository, error) {
	db, err := sql.Open("sqlite", dsn)

	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}

	// SQLite serializes writers anyway; one connection also keeps
	// ":memory:" databases from splitting across the pool.
	db.SetMaxOpenConns(1)

	if _, err = db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	return &TaskRepository{db: db}, nil
}

func (repo *TaskRepository) Close() error {
	return repo.db.Close()
}

func formatTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}

	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func parseTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}

	parsed, err := time.Parse(time.RFC3339Nano, value.String)

	if err != nil {
		return nil, err
	}

	return &parsed, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (tasks.Task, error) {
	var (
		task                    tasks.Task
		status, priority        string
		due, created, completed sql.NullString
	)

	err := row.Scan(
		&task.ID, &task.UserID, &task.Title, &task.Description,
		&status, &priority, &due, &created, &completed,
	)

	if err != nil {
		return tasks.Task{}, err
	}

	task.Status = tasks.CanonicalStatus(status)
	task.Priority = tasks.CanonicalPriority(priority)

	if task.DueDate, err = parseTime(due); err != nil {
		return tasks.Task{}, err
	}

	if task.CreatedAt, err = parseTime(created); err != nil {
		return tasks.Task{}, err
	}

	if task.CompletedAt, err = parseTime(completed); err != nil {
		return tasks.Task{}, err
	}

	return task, nil
}

func (repo *TaskRepository) ListForUser(ctx context.Context, userID string) ([]tasks.Task, error) {
	rows, err := repo.db.QueryContext(
		ctx, `SELECT `+columns+` FROM tasks WHERE user_id = ? ORDER BY seq`, userID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := []tasks.Task{}

	for rows.Next() {
		task, err := scanTask(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, task)
	}

	return out, rows.Err()
}

func (repo *TaskRepository) Get(ctx context.Context, id string) (tasks.Task, error) {
	task, err := scanTask(repo.db.QueryRowContext(ctx, `SELECT `+columns+` FROM tasks WHERE id = ?`, id))

	if errors.Is(err, sql.ErrNoRows) {
		return tasks.Task{}, taskerrors.ErrTaskNotFound
	}

	return task, err
}

func (repo *TaskRepository) Create(ctx context.Context, task tasks.Task) (tasks.Task, error) {
	task.ID = cmp.Or(task.ID, uuid.NewString())
	task.Status = cmp.Or(task.Status, tasks.StatusTodo)
	task.Priority = cmp.Or(task.Priority, tasks.PriorityMedium)

	_, err := repo.db.ExecContext(
		ctx,
		`INSERT INTO tasks (`+columns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.UserID, task.Title, task.Description, string(task.Status), string(task.Priority),
		formatTime(task.DueDate), formatTime(task.CreatedAt), formatTime(task.CompletedAt),
	)

	if err != nil {
		return tasks.Task{}, fmt.Errorf("insert task: %w", err)
	}

	return task, nil
}

func (repo *TaskRepository) Update(ctx context.Context, task tasks.Task) (tasks.Task, error) {
	result, err := repo.db.ExecContext(
		ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?,
			due_date = ?, completed_at = ? WHERE id = ?`,
		task.Title, task.Description, string(task.Status), string(task.Priority),
		formatTime(task.DueDate), formatTime(task.CompletedAt), task.ID,
	)

	if err != nil {
		return tasks.Task{}, fmt.Errorf("update task: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return tasks.Task{}, taskerrors.ErrTaskNotFound
	}

	return task, nil
}

func (repo *TaskRepository) Delete(ctx context.Context, id string) error {
	result, err := repo.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)

	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return taskerrors.ErrTaskNotFound
	}

	return nil
}
