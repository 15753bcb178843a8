package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"taskhub/internal/model"
	"taskhub/internal/skill"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
    id             TEXT PRIMARY KEY,
    title          TEXT NOT NULL,
    description    TEXT,
    status         TEXT NOT NULL DEFAULT 'todo',
    priority       TEXT NOT NULL DEFAULT 'medium',
    skill_type     TEXT NOT NULL DEFAULT 'runbook',
    input_payload  TEXT,
    output_payload TEXT,
    created_at_ns  INTEGER NOT NULL,
    updated_at_ns  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks (created_at_ns DESC);
`

const sqliteTaskColumns = `id, title, description, status, priority, skill_type, input_payload, output_payload, created_at_ns, updated_at_ns`

// SQLiteTaskRepository stores tasks in a local SQLite file; payloads are JSON text.
type SQLiteTaskRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLiteTaskRepository opens path, creating parent directories as needed.
// ":memory:" gives a private in-process database.
func OpenSQLiteTaskRepository(path string, logger *zap.Logger) (*SQLiteTaskRepository, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("missing sqlite path")
	}
	if p != ":memory:" {
		p = filepath.Clean(p)
		if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", p, err)
	}
	// One connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	logger.Info("SQLite task store opened", zap.String("path", p))
	return &SQLiteTaskRepository{db: db, logger: logger}, nil
}

func (r *SQLiteTaskRepository) EnsureSchema(ctx context.Context) error {
	r.logger.Debug("Ensuring tasks schema")
	if _, err := r.db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		r.logger.Error("Failed to set busy timeout", zap.Error(err))
		return err
	}
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		r.logger.Error("Failed to create tasks schema", zap.Error(err))
		return err
	}
	r.logger.Info("Tasks schema ready")
	return nil
}

func (r *SQLiteTaskRepository) Create(ctx context.Context, t *model.Task) error {
	r.logger.Debug("Inserting task",
		zap.String("task_id", t.ID.String()),
		zap.String("title", t.Title),
		zap.String("skill_type", string(t.SkillType)),
	)
	input, err := encodePayload(t.InputPayload)
	if err != nil {
		return err
	}
	output, err := encodePayload(t.OutputPayload)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO tasks (`+sqliteTaskColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		t.ID.String(),
		t.Title,
		t.Description,
		string(t.Status),
		string(t.Priority),
		string(t.SkillType),
		input,
		output,
		t.CreatedAt.UnixNano(),
		t.UpdatedAt.UnixNano(),
	)
	if err != nil {
		r.logger.Error("Failed to insert task", zap.Error(err), zap.String("task_id", t.ID.String()))
		return err
	}
	r.logger.Info("Task inserted successfully", zap.String("task_id", t.ID.String()))
	return nil
}

func (r *SQLiteTaskRepository) List(ctx context.Context) ([]model.Task, error) {
	r.logger.Debug("Listing tasks")
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteTaskColumns+` FROM tasks ORDER BY created_at_ns DESC, rowid DESC`)
	if err != nil {
		r.logger.Error("Failed to query tasks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
		if err != nil {
			r.logger.Error("Failed to scan task row", zap.Error(err))
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate task rows", zap.Error(err))
		return nil, err
	}
	r.logger.Info("Tasks listed successfully", zap.Int("count", len(tasks)))
	return tasks, nil
}

func (r *SQLiteTaskRepository) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	r.logger.Debug("Fetching task", zap.String("task_id", id.String()))
	t, err := scanSQLiteTask(r.db.QueryRowContext(ctx,
		`SELECT `+sqliteTaskColumns+` FROM tasks WHERE id = ?`, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		r.logger.Error("Failed to fetch task", zap.Error(err), zap.String("task_id", id.String()))
		return nil, err
	}
	return t, nil
}

func (r *SQLiteTaskRepository) Update(ctx context.Context, id uuid.UUID, u model.TaskUpdate) (*model.Task, error) {
	r.logger.Debug("Updating task", zap.String("task_id", id.String()))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	t, err := scanSQLiteTask(tx.QueryRowContext(ctx,
		`SELECT `+sqliteTaskColumns+` FROM tasks WHERE id = ?`, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		r.logger.Error("Failed to load task for update", zap.Error(err), zap.String("task_id", id.String()))
		return nil, err
	}
	t.Apply(u, time.Now().UTC())

	input, err := encodePayload(t.InputPayload)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
UPDATE tasks
SET title = ?, description = ?, status = ?, priority = ?, skill_type = ?, input_payload = ?, updated_at_ns = ?
WHERE id = ?
`,
		t.Title, t.Description, string(t.Status), string(t.Priority), string(t.SkillType),
		input, t.UpdatedAt.UnixNano(), id.String(),
	); err != nil {
		r.logger.Error("Failed to update task", zap.Error(err), zap.String("task_id", id.String()))
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	r.logger.Info("Task updated successfully", zap.String("task_id", id.String()))
	return t, nil
}

func (r *SQLiteTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.logger.Debug("Deleting task", zap.String("task_id", id.String()))
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id.String())
	if err != nil {
		r.logger.Error("Failed to delete task", zap.Error(err), zap.String("task_id", id.String()))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	r.logger.Info("Task deleted", zap.String("task_id", id.String()))
	return nil
}

func (r *SQLiteTaskRepository) SaveOutput(ctx context.Context, id uuid.UUID, output map[string]any) (*model.Task, error) {
	r.logger.Debug("Saving skill output", zap.String("task_id", id.String()))
	encoded, err := encodePayload(output)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET output_payload = ?, updated_at_ns = ? WHERE id = ?`,
		encoded, time.Now().UTC().UnixNano(), id.String())
	if err != nil {
		r.logger.Error("Failed to save skill output", zap.Error(err), zap.String("task_id", id.String()))
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrTaskNotFound
	}
	r.logger.Info("Skill output saved", zap.String("task_id", id.String()))
	return r.Get(ctx, id)
}

func (r *SQLiteTaskRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteTaskRepository) Close() {
	_ = r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTask(row rowScanner) (*model.Task, error) {
	var (
		t                         model.Task
		id                        string
		status, priority, skillTy string
		description               sql.NullString
		input, output             sql.NullString
		createdNs, updatedNs      int64
	)
	if err := row.Scan(&id, &t.Title, &description, &status, &priority, &skillTy,
		&input, &output, &createdNs, &updatedNs); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("task id %q: %w", id, err)
	}
	t.ID = parsed
	if description.Valid {
		d := description.String
		t.Description = &d
	}
	t.Status = model.TaskStatus(status)
	t.Priority = model.TaskPriority(priority)
	t.SkillType = skill.Kind(skillTy)
	if t.InputPayload, err = decodePayload(input); err != nil {
		return nil, fmt.Errorf("task %s input_payload: %w", id, err)
	}
	if t.OutputPayload, err = decodePayload(output); err != nil {
		return nil, fmt.Errorf("task %s output_payload: %w", id, err)
	}
	t.CreatedAt = time.Unix(0, createdNs).UTC()
	t.UpdatedAt = time.Unix(0, updatedNs).UTC()
	return &t, nil
}

func encodePayload(p map[string]any) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode payload: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodePayload(s sql.NullString) (map[string]any, error) {
	if !s.Valid {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(s.String), &out); err != nil {
		return nil, err
	}
	return out, nil
}
