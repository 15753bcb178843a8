package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskhub/internal/model"
)

// TaskService is the task workflow the HTTP layer drives.
type TaskService interface {
	Create(ctx context.Context, c model.TaskCreate) (*model.Task, error)
	List(ctx context.Context) ([]model.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, id uuid.UUID, u model.TaskUpdate) (*model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ExecuteSkill(ctx context.Context, id uuid.UUID) (*model.Task, error)
	RequestSkill(ctx context.Context, id uuid.UUID) (*model.Task, error)
}

type TaskHandler struct {
	svc    TaskService
	logger *zap.Logger
}

func NewTaskHandler(svc TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, logger: logger}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	h.logger.Info("CreateTask request received", zap.String("client_ip", c.ClientIP()))

	var req model.TaskCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("CreateTask: invalid body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	t, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "CreateTask", err)
		return
	}

	h.logger.Info("CreateTask: success", zap.String("task_id", t.ID.String()))
	c.JSON(http.StatusCreated, t)
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "ListTasks", err)
		return
	}
	h.logger.Debug("ListTasks: success", zap.Int("task_count", len(tasks)))
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := h.taskID(c, "GetTask")
	if !ok {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "GetTask", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := h.taskID(c, "UpdateTask")
	if !ok {
		return
	}

	var req model.TaskUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("UpdateTask: invalid body", zap.String("task_id", id.String()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	t, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, "UpdateTask", err)
		return
	}
	h.logger.Info("UpdateTask: success", zap.String("task_id", id.String()))
	c.JSON(http.StatusOK, t)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := h.taskID(c, "DeleteTask")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "DeleteTask", err)
		return
	}
	h.logger.Info("DeleteTask: success", zap.String("task_id", id.String()))
	c.Status(http.StatusNoContent)
}

// ExecuteTaskSkill runs the task's skill inline, or queues it when ?async=true.
func (h *TaskHandler) ExecuteTaskSkill(c *gin.Context) {
	id, ok := h.taskID(c, "ExecuteTaskSkill")
	if !ok {
		return
	}

	async, _ := strconv.ParseBool(c.DefaultQuery("async", "false"))
	h.logger.Info("ExecuteTaskSkill request received",
		zap.String("task_id", id.String()),
		zap.Bool("async", async),
	)

	if async {
		t, err := h.svc.RequestSkill(c.Request.Context(), id)
		if err != nil {
			respondError(c, h.logger, "ExecuteTaskSkill", err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"task_id":    t.ID,
			"skill_type": t.SkillType,
			"status":     "queued",
		})
		return
	}

	t, err := h.svc.ExecuteSkill(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "ExecuteTaskSkill", err)
		return
	}
	h.logger.Info("ExecuteTaskSkill: success", zap.String("task_id", id.String()))
	c.JSON(http.StatusOK, t)
}

func (h *TaskHandler) taskID(c *gin.Context, op string) (uuid.UUID, bool) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Warn(op+": invalid task id format", zap.String("task_id", raw))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return uuid.Nil, false
	}
	return id, true
}
