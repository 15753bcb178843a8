package mqhandler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"taskhub/internal/model"
	"taskhub/internal/repository"
	"taskhub/internal/service/task"
	"taskhub/internal/skill"
	"taskhub/pkg/util"
)

type fakeExecutor struct {
	err    error
	called uuid.UUID
}

func (f *fakeExecutor) ExecuteSkill(_ context.Context, id uuid.UUID) (*model.Task, error) {
	f.called = id
	if f.err != nil {
		return nil, f.err
	}
	return &model.Task{ID: id}, nil
}

func payload(id string) json.RawMessage {
	b, _ := json.Marshal(map[string]any{"task_id": id, "skill_type": "runbook"})
	return b
}

func TestHandle(t *testing.T) {
	id := uuid.New()

	cases := []struct {
		name      string
		raw       json.RawMessage
		execErr   error
		wantErr   bool
		retryable bool
		kind      string
	}{
		{name: "success", raw: payload(id.String())},
		{name: "busy is acked", raw: payload(id.String()), execErr: task.ErrTaskBusy},
		{name: "malformed json", raw: json.RawMessage(`{"task_id":`), wantErr: true, kind: "json_decode_error"},
		{name: "bad id", raw: payload("nope"), wantErr: true, kind: "invalid_task_id"},
		{name: "missing task", raw: payload(id.String()), execErr: repository.ErrTaskNotFound, wantErr: true, kind: "task_not_found"},
		{
			name: "validation", raw: payload(id.String()),
			execErr: &skill.ValidationError{Skill: skill.KindRunbook, Fields: []string{"domain"}},
			wantErr: true, kind: "skill_validation_error",
		},
		{
			name: "unknown domain", raw: payload(id.String()),
			execErr: &skill.NotFoundError{Field: "domain", Value: "x"},
			wantErr: true, kind: "skill_not_found",
		},
		{
			name: "store timeout", raw: payload(id.String()),
			execErr: context.DeadlineExceeded, wantErr: true, retryable: true, kind: "timeout",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exec := &fakeExecutor{err: tc.execErr}
			h := NewSkillRequestedHandler(exec, zap.NewNop())

			err := h.Handle(context.Background(), tc.raw)
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			retryable, kind := util.IsRetryableError(err)
			assert.Equal(t, tc.retryable, retryable)
			assert.Equal(t, tc.kind, kind)
		})
	}
}

func TestHandle_PassesTaskID(t *testing.T) {
	id := uuid.New()
	exec := &fakeExecutor{}
	assert.NoError(t, NewSkillRequestedHandler(exec, zap.NewNop()).Handle(context.Background(), payload(id.String())))
	assert.Equal(t, id, exec.called)
}
