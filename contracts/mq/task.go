package mq

import "time"

// Routing keys on the events exchange.
const (
	RoutingTaskCreated        = "task.created"
	RoutingTaskSkillRequested = "task.skill_requested"
	RoutingTaskSkillExecuted  = "task.skill_executed"
	RoutingTaskDeleted        = "task.deleted"
)

// TaskCreatedPayload is published after a task row is inserted.
type TaskCreatedPayload struct {
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	SkillType string    `json:"skill_type"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskSkillRequestedPayload asks a worker to run the task's skill.
type TaskSkillRequestedPayload struct {
	TaskID      string    `json:"task_id"`
	SkillType   string    `json:"skill_type"`
	RequestedAt time.Time `json:"requested_at"`
}

// TaskSkillExecutedPayload reports a finished skill run.
type TaskSkillExecutedPayload struct {
	TaskID     string    `json:"task_id"`
	SkillType  string    `json:"skill_type"`
	OutputSize int       `json:"output_size"`
	ExecutedAt time.Time `json:"executed_at"`
}

type TaskDeletedPayload struct {
	TaskID    string    `json:"task_id"`
	DeletedAt time.Time `json:"deleted_at"`
}
