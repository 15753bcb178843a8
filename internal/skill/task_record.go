package skill

import "strings"

// TaskRecord is the projection of a task that the prioritizer and daily summary read.
// Missing fields take defaults; nothing about a record is ever an error.
type TaskRecord struct {
	Title         string `json:"title"`
	Status        string `json:"status"`
	Priority      string `json:"priority"`
	Description   string `json:"description,omitempty"`
	Blocked       bool   `json:"blocked,omitempty"`
	BlockerReason string `json:"blocker_reason,omitempty"`
}

const (
	statusTodo       = "todo"
	statusInProgress = "in_progress"
	statusDone       = "done"

	priorityHigh   = "high"
	priorityMedium = "medium"
	priorityLow    = "low"
)

var priorityWeight = map[string]int{
	priorityHigh:   3,
	priorityMedium: 2,
	priorityLow:    1,
}

var statusWeight = map[string]int{
	statusInProgress: 3,
	statusTodo:       2,
	statusDone:       1,
}

func taskRecordFromMap(m map[string]any) TaskRecord {
	in := Input(m)
	return TaskRecord{
		Title:         in.String("title", ""),
		Status:        in.String("status", statusTodo),
		Priority:      in.String("priority", priorityMedium),
		Description:   in.String("description", ""),
		Blocked:       truthy(m["blocked"]),
		BlockerReason: in.String("blocker_reason", ""),
	}.normalized()
}

func (t TaskRecord) normalized() TaskRecord {
	if strings.TrimSpace(t.Title) == "" {
		t.Title = "Untitled"
	}
	if strings.TrimSpace(t.Status) == "" {
		t.Status = statusTodo
	}
	if strings.TrimSpace(t.Priority) == "" {
		t.Priority = priorityMedium
	}
	return t
}

func (t TaskRecord) status() string   { return strings.ToLower(strings.TrimSpace(t.Status)) }
func (t TaskRecord) priority() string { return strings.ToLower(strings.TrimSpace(t.Priority)) }

func (t TaskRecord) priorityWeight() int {
	if w, ok := priorityWeight[t.priority()]; ok {
		return w
	}
	return 1
}

func (t TaskRecord) statusWeight() int {
	if w, ok := statusWeight[t.status()]; ok {
		return w
	}
	return 1
}

// statusBucket maps unknown statuses onto todo.
func (t TaskRecord) statusBucket() string {
	switch s := t.status(); s {
	case statusInProgress, statusDone:
		return s
	default:
		return statusTodo
	}
}

// priorityBucket maps unknown priorities onto medium.
func (t TaskRecord) priorityBucket() string {
	switch p := t.priority(); p {
	case priorityHigh, priorityLow:
		return p
	default:
		return priorityMedium
	}
}
