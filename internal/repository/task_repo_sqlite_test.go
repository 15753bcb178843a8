package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskhub/internal/model"
	"taskhub/internal/skill"
	"taskhub/pkg/config"
)

func newMemoryStore(t *testing.T) *SQLiteTaskRepository {
	t.Helper()
	store, err := OpenSQLiteTaskRepository(":memory:", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(context.Background()))
	t.Cleanup(store.Close)
	return store
}

func createTask(t *testing.T, store TaskStore, c model.TaskCreate, at time.Time) model.Task {
	t.Helper()
	task := model.NewTask(c, at)
	require.NoError(t, store.Create(context.Background(), &task))
	return task
}

func TestSQLite_CreateGetRoundTrip(t *testing.T) {
	store := newMemoryStore(t)
	desc := "edge fw at 95%"
	now := time.Date(2025, 3, 14, 9, 0, 0, 123, time.UTC)
	created := createTask(t, store, model.TaskCreate{
		Title:        "Investigate CPU",
		Description:  &desc,
		Priority:     model.PriorityHigh,
		InputPayload: map[string]any{"domain": "firewall", "symptom_category": "high_cpu"},
	}, now)

	got, err := store.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Investigate CPU", got.Title)
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)
	assert.Equal(t, model.StatusTodo, got.Status)
	assert.Equal(t, model.PriorityHigh, got.Priority)
	assert.Equal(t, skill.KindRunbook, got.SkillType)
	assert.Equal(t, "firewall", got.InputPayload["domain"])
	assert.Nil(t, got.OutputPayload)
	assert.True(t, now.Equal(got.CreatedAt))
}

func TestSQLite_ListNewestFirst(t *testing.T) {
	store := newMemoryStore(t)
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	first := createTask(t, store, model.TaskCreate{Title: "first"}, base)
	second := createTask(t, store, model.TaskCreate{Title: "second"}, base.Add(time.Minute))

	tasks, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, second.ID, tasks[0].ID)
	assert.Equal(t, first.ID, tasks[1].ID)
}

func TestSQLite_ListEmpty(t *testing.T) {
	tasks, err := newMemoryStore(t).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestSQLite_UpdatePartial(t *testing.T) {
	store := newMemoryStore(t)
	task := createTask(t, store, model.TaskCreate{Title: "t", Priority: model.PriorityLow}, time.Now().UTC())

	status := model.StatusInProgress
	updated, err := store.Update(context.Background(), task.ID, model.TaskUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, updated.Status)
	assert.Equal(t, model.PriorityLow, updated.Priority)

	got, err := store.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Equal(t, "t", got.Title)
}

func TestSQLite_SaveOutput(t *testing.T) {
	store := newMemoryStore(t)
	task := createTask(t, store, model.TaskCreate{Title: "t"}, time.Now().UTC())

	out := map[string]any{"skill_type": "runbook", "output": "# Runbook"}
	saved, err := store.SaveOutput(context.Background(), task.ID, out)
	require.NoError(t, err)
	assert.Equal(t, out, saved.OutputPayload)
}

func TestSQLite_MissingTask(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = store.Update(ctx, id, model.TaskUpdate{})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = store.SaveOutput(ctx, id, map[string]any{})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	assert.ErrorIs(t, store.Delete(ctx, id), ErrTaskNotFound)
}

func TestSQLite_Delete(t *testing.T) {
	store := newMemoryStore(t)
	task := createTask(t, store, model.TaskCreate{Title: "t"}, time.Now().UTC())

	require.NoError(t, store.Delete(context.Background(), task.ID))
	_, err := store.Get(context.Background(), task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestOpen_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasks.db")
	store, err := Open(context.Background(), config.DBConfig{Driver: "sqlite", Path: path}, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Ping(context.Background()))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DBConfig{Driver: "mysql"}, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported db driver")
}
