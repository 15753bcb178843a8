package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskhub/internal/model"
	"taskhub/internal/skill"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS tasks (
    id             UUID PRIMARY KEY,
    title          VARCHAR(255) NOT NULL,
    description    TEXT,
    status         VARCHAR(20)  NOT NULL DEFAULT 'todo',
    priority       VARCHAR(10)  NOT NULL DEFAULT 'medium',
    skill_type     VARCHAR(20)  NOT NULL DEFAULT 'runbook',
    input_payload  JSONB,
    output_payload JSONB,
    created_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks (created_at DESC);
`

const pgTaskColumns = `id, title, description, status, priority, skill_type, input_payload, output_payload, created_at, updated_at`

// PostgresTaskRepository stores tasks in PostgreSQL with JSONB payloads.
type PostgresTaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db, logger: logger}
}

func (r *PostgresTaskRepository) EnsureSchema(ctx context.Context) error {
	r.logger.Debug("Ensuring tasks schema")
	if _, err := r.db.Exec(ctx, pgSchema); err != nil {
		r.logger.Error("Failed to create tasks schema", zap.Error(err))
		return err
	}
	r.logger.Info("Tasks schema ready")
	return nil
}

func (r *PostgresTaskRepository) Create(ctx context.Context, t *model.Task) error {
	r.logger.Debug("Inserting task",
		zap.String("task_id", t.ID.String()),
		zap.String("title", t.Title),
		zap.String("skill_type", string(t.SkillType)),
	)
	query := `
        INSERT INTO tasks (` + pgTaskColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.db.Exec(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		string(t.Status),
		string(t.Priority),
		string(t.SkillType),
		t.InputPayload,
		t.OutputPayload,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.String("task_id", t.ID.String()),
		)
		return err
	}
	r.logger.Info("Task inserted successfully", zap.String("task_id", t.ID.String()))
	return nil
}

func (r *PostgresTaskRepository) List(ctx context.Context) ([]model.Task, error) {
	r.logger.Debug("Listing tasks")
	query := `SELECT ` + pgTaskColumns + ` FROM tasks ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query tasks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanPgTask(rows)
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

func (r *PostgresTaskRepository) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	r.logger.Debug("Fetching task", zap.String("task_id", id.String()))
	query := `SELECT ` + pgTaskColumns + ` FROM tasks WHERE id = $1`

	t, err := scanPgTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		r.logger.Error("Failed to fetch task", zap.Error(err), zap.String("task_id", id.String()))
		return nil, err
	}
	return t, nil
}

func (r *PostgresTaskRepository) Update(ctx context.Context, id uuid.UUID, u model.TaskUpdate) (*model.Task, error) {
	r.logger.Debug("Updating task", zap.String("task_id", id.String()))

	var updated *model.Task
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		t, err := scanPgTask(tx.QueryRow(ctx,
			`SELECT `+pgTaskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		t.Apply(u, time.Now().UTC())

		_, err = tx.Exec(ctx, `
            UPDATE tasks
            SET title = $2, description = $3, status = $4, priority = $5,
                skill_type = $6, input_payload = $7, updated_at = $8
            WHERE id = $1
        `,
			t.ID, t.Title, t.Description, string(t.Status), string(t.Priority),
			string(t.SkillType), t.InputPayload, t.UpdatedAt,
		)
		updated = t
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		r.logger.Error("Failed to update task", zap.Error(err), zap.String("task_id", id.String()))
		return nil, err
	}
	r.logger.Info("Task updated successfully", zap.String("task_id", id.String()))
	return updated, nil
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.logger.Debug("Deleting task", zap.String("task_id", id.String()))
	result, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete task", zap.Error(err), zap.String("task_id", id.String()))
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	r.logger.Info("Task deleted", zap.String("task_id", id.String()))
	return nil
}

func (r *PostgresTaskRepository) SaveOutput(ctx context.Context, id uuid.UUID, output map[string]any) (*model.Task, error) {
	r.logger.Debug("Saving skill output", zap.String("task_id", id.String()))
	query := `
        UPDATE tasks
        SET output_payload = $2, updated_at = $3
        WHERE id = $1
        RETURNING ` + pgTaskColumns

	t, err := scanPgTask(r.db.QueryRow(ctx, query, id, output, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		r.logger.Error("Failed to save skill output", zap.Error(err), zap.String("task_id", id.String()))
		return nil, err
	}
	r.logger.Info("Skill output saved", zap.String("task_id", id.String()))
	return t, nil
}

func (r *PostgresTaskRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *PostgresTaskRepository) Close() {
	r.db.Close()
}

func scanPgTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	var status, priority, skillType string
	if err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&status,
		&priority,
		&skillType,
		&t.InputPayload,
		&t.OutputPayload,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Status = model.TaskStatus(status)
	t.Priority = model.TaskPriority(priority)
	t.SkillType = skill.Kind(skillType)
	return &t, nil
}
