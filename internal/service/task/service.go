package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	contracts "taskhub/contracts/mq"
	"taskhub/internal/model"
	"taskhub/internal/repository"
	"taskhub/internal/skill"
	"taskhub/pkg/logger"
	"taskhub/pkg/metrics"
)

var (
	ErrInvalidTask = errors.New("invalid task")
	// ErrTaskBusy is returned when another execution holds the task's lock.
	ErrTaskBusy = errors.New("task skill execution already in progress")
	// ErrQueueUnavailable is returned by RequestSkill when no publisher is configured.
	ErrQueueUnavailable = errors.New("message queue not configured")
)

const maxTitleLen = 255

// EventPublisher is satisfied by *mq.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Locker is satisfied by *util.TaskLock.
type Locker interface {
	Acquire(ctx context.Context, taskID string) (release func(), ok bool)
}

type Service struct {
	store     repository.TaskStore
	publisher EventPublisher
	lock      Locker
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires the task store with optional publisher and lock; nil disables either.
func NewService(store repository.TaskStore, publisher EventPublisher, lock Locker, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		lock:      lock,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, c model.TaskCreate) (*model.Task, error) {
	c.Title = strings.TrimSpace(c.Title)
	if err := validateCreate(c); err != nil {
		return nil, err
	}

	t := model.NewTask(c, s.now())
	if err := s.store.Create(ctx, &t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.publish(ctx, contracts.RoutingTaskCreated, contracts.TaskCreatedPayload{
		TaskID:    t.ID.String(),
		Title:     t.Title,
		SkillType: t.SkillType.String(),
		Priority:  string(t.Priority),
		CreatedAt: t.CreatedAt,
	})
	return &t, nil
}

func (s *Service) List(ctx context.Context) ([]model.Task, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, u model.TaskUpdate) (*model.Task, error) {
	if u.Title != nil {
		trimmed := strings.TrimSpace(*u.Title)
		u.Title = &trimmed
	}
	if err := validateUpdate(u); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, id, u)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, contracts.RoutingTaskDeleted, contracts.TaskDeletedPayload{
		TaskID:    id.String(),
		DeletedAt: s.now(),
	})
	return nil
}

// ExecuteSkill runs the task's skill on its input payload and stores the envelope as
// the task's output payload. Skill errors are returned unchanged and leave the task as is.
func (s *Service) ExecuteSkill(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	log := logger.WithTrace(ctx, s.logger).With(zap.String("task_id", id.String()))

	if s.lock != nil {
		release, ok := s.lock.Acquire(ctx, id.String())
		if !ok {
			return nil, ErrTaskBusy
		}
		defer release()
	}

	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	env, err := skill.Execute(t.SkillType, t.InputPayload)
	metrics.RecordSkillExecution(t.SkillType.String(), skill.Outcome(err), time.Since(start))
	if err != nil {
		log.Warn("Skill execution rejected input",
			zap.String("skill_type", t.SkillType.String()),
			zap.Error(err),
		)
		return nil, err
	}

	updated, err := s.store.SaveOutput(ctx, id, env.Map())
	if err != nil {
		return nil, fmt.Errorf("save skill output: %w", err)
	}

	log.Info("Skill executed",
		zap.String("skill_type", env.SkillType),
		zap.Int("output_size", len(env.Output)),
	)
	s.publish(ctx, contracts.RoutingTaskSkillExecuted, contracts.TaskSkillExecutedPayload{
		TaskID:     id.String(),
		SkillType:  env.SkillType,
		OutputSize: len(env.Output),
		ExecutedAt: s.now(),
	})
	return updated, nil
}

// RequestSkill queues the task's skill for a worker. The task must exist.
func (s *Service) RequestSkill(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	if s.publisher == nil {
		return nil, ErrQueueUnavailable
	}
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	payload := contracts.TaskSkillRequestedPayload{
		TaskID:      id.String(),
		SkillType:   t.SkillType.String(),
		RequestedAt: s.now(),
	}
	if err := s.publisher.Publish(ctx, contracts.RoutingTaskSkillRequested, payload); err != nil {
		metrics.IncrementEventPublished(contracts.RoutingTaskSkillRequested, "error")
		return nil, fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}
	metrics.IncrementEventPublished(contracts.RoutingTaskSkillRequested, "ok")
	return t, nil
}

// Ping reports store health.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// publish sends an informational event; failures are logged only.
func (s *Service) publish(ctx context.Context, routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, payload); err != nil {
		metrics.IncrementEventPublished(routingKey, "error")
		logger.WithTrace(ctx, s.logger).Warn("Failed to publish event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		return
	}
	metrics.IncrementEventPublished(routingKey, "ok")
}

func validateCreate(c model.TaskCreate) error {
	var problems []string
	problems = append(problems, checkTitle(c.Title)...)
	if c.Status != "" && !c.Status.Valid() {
		problems = append(problems, fmt.Sprintf("status %q is not one of todo, in_progress, done", c.Status))
	}
	if c.Priority != "" && !c.Priority.Valid() {
		problems = append(problems, fmt.Sprintf("priority %q is not one of low, medium, high", c.Priority))
	}
	if c.SkillType != "" && !c.SkillType.Valid() {
		problems = append(problems, fmt.Sprintf("skill_type %q is not a known skill", c.SkillType))
	}
	return invalid(problems)
}

func validateUpdate(u model.TaskUpdate) error {
	var problems []string
	if u.Title != nil {
		problems = append(problems, checkTitle(*u.Title)...)
	}
	if u.Status != nil && !u.Status.Valid() {
		problems = append(problems, fmt.Sprintf("status %q is not one of todo, in_progress, done", *u.Status))
	}
	if u.Priority != nil && !u.Priority.Valid() {
		problems = append(problems, fmt.Sprintf("priority %q is not one of low, medium, high", *u.Priority))
	}
	if u.SkillType != nil && !u.SkillType.Valid() {
		problems = append(problems, fmt.Sprintf("skill_type %q is not a known skill", *u.SkillType))
	}
	return invalid(problems)
}

func checkTitle(title string) []string {
	switch {
	case title == "":
		return []string{"title is required"}
	case len([]rune(title)) > maxTitleLen:
		return []string{fmt.Sprintf("title must be at most %d characters", maxTitleLen)}
	}
	return nil
}

func invalid(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidTask, strings.Join(problems, "; "))
}
