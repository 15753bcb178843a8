package model

import (
	"time"

	"github.com/google/uuid"

	"taskhub/internal/skill"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a tracked unit of work and the payloads of its skill run.
// InputPayload and OutputPayload are opaque JSON objects; nil means null.
type Task struct {
	ID            uuid.UUID      `json:"id"`
	Title         string         `json:"title"`
	Description   *string        `json:"description"`
	Status        TaskStatus     `json:"status"`
	Priority      TaskPriority   `json:"priority"`
	SkillType     skill.Kind     `json:"skill_type"`
	InputPayload  map[string]any `json:"input_payload"`
	OutputPayload map[string]any `json:"output_payload"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TaskCreate is the request body for creating a task. Blank enums take their defaults.
type TaskCreate struct {
	Title        string         `json:"title"`
	Description  *string        `json:"description"`
	Status       TaskStatus     `json:"status"`
	Priority     TaskPriority   `json:"priority"`
	SkillType    skill.Kind     `json:"skill_type"`
	InputPayload map[string]any `json:"input_payload"`
}

// TaskUpdate carries a partial update; nil fields are left unchanged.
type TaskUpdate struct {
	Title        *string        `json:"title"`
	Description  *string        `json:"description"`
	Status       *TaskStatus    `json:"status"`
	Priority     *TaskPriority  `json:"priority"`
	SkillType    *skill.Kind    `json:"skill_type"`
	InputPayload map[string]any `json:"input_payload"`
}

// NewTask builds a task from c with defaults applied and a fresh id.
func NewTask(c TaskCreate, now time.Time) Task {
	t := Task{
		ID:           uuid.New(),
		Title:        c.Title,
		Description:  c.Description,
		Status:       c.Status,
		Priority:     c.Priority,
		SkillType:    c.SkillType,
		InputPayload: c.InputPayload,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.SkillType == "" {
		t.SkillType = skill.KindRunbook
	}
	return t
}

// Apply copies the set fields of u onto t.
func (t *Task) Apply(u TaskUpdate, now time.Time) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = u.Description
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.SkillType != nil {
		t.SkillType = *u.SkillType
	}
	if u.InputPayload != nil {
		t.InputPayload = u.InputPayload
	}
	t.UpdatedAt = now
}
