package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	contracts "taskhub/contracts/mq"
	"taskhub/internal/model"
	"taskhub/internal/repository"
	"taskhub/internal/service/task"
	"taskhub/internal/skill"
	"taskhub/pkg/logger"
	"taskhub/pkg/util"
)

// SkillExecutor is satisfied by *task.Service.
type SkillExecutor interface {
	ExecuteSkill(ctx context.Context, id uuid.UUID) (*model.Task, error)
}

type SkillRequestedHandler struct {
	svc    SkillExecutor
	logger *zap.Logger
}

func NewSkillRequestedHandler(svc SkillExecutor, logger *zap.Logger) *SkillRequestedHandler {
	return &SkillRequestedHandler{svc: svc, logger: logger}
}

// Handle runs the requested task's skill. Failures that a redelivery cannot fix are
// wrapped with util.Permanent so the consumer dead-letters them.
func (h *SkillRequestedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	log := logger.WithTrace(ctx, h.logger)

	var p contracts.TaskSkillRequestedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error("Failed to unmarshal skill requested payload", zap.Error(err))
		return err
	}

	id, err := uuid.Parse(p.TaskID)
	if err != nil {
		log.Error("Skill request carries an invalid task id", zap.String("task_id", p.TaskID))
		return util.Permanent("invalid_task_id", fmt.Errorf("task id %q: %w", p.TaskID, err))
	}

	log = log.With(zap.String("task_id", p.TaskID), zap.String("skill_type", p.SkillType))
	log.Info("Processing skill request")

	_, err = h.svc.ExecuteSkill(ctx, id)
	var validation *skill.ValidationError
	var notFound *skill.NotFoundError
	switch {
	case err == nil:
		log.Info("Skill request completed")
		return nil
	case errors.Is(err, task.ErrTaskBusy):
		log.Info("Skipped skill request, execution already in progress")
		return nil
	case errors.Is(err, repository.ErrTaskNotFound):
		return util.Permanent("task_not_found", err)
	case errors.As(err, &validation), errors.As(err, &notFound):
		return util.Permanent("skill_"+skill.Outcome(err), err)
	default:
		return err
	}
}
