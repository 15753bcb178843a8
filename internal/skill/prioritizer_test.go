package skill

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(tasks []TaskRecord) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestPrioritizeTasks_Empty(t *testing.T) {
	assert.Equal(t, "No tasks to prioritize.", PrioritizeTasks(nil))
	out, err := PrioritizeFromMap(map[string]any{"tasks": []any{}})
	require.NoError(t, err)
	assert.Equal(t, "No tasks to prioritize.", out)
}

func TestPrioritizeTasks_HighBeforeLow(t *testing.T) {
	out, err := PrioritizeFromMap(map[string]any{"tasks": []any{
		map[string]any{"title": "A", "priority": "low"},
		map[string]any{"title": "B", "priority": "high"},
	}})
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "**B**"), strings.Index(out, "**A**"))
	assert.Contains(t, out, "1. (!) **B** [TODO]\n   _Reason: high priority, ready to start_")
	assert.Contains(t, out, "2. (.) **A** [TODO]\n   _Reason: low priority, ready to start_")
}

func TestSortTasks_CompositeKey(t *testing.T) {
	tasks := []TaskRecord{
		{Title: "zeta", Priority: "medium", Status: "todo"},
		{Title: "Alpha", Priority: "medium", Status: "todo"},
		{Title: "done-high", Priority: "high", Status: "done"},
		{Title: "wip-high", Priority: "high", Status: "in_progress"},
		{Title: "mystery", Priority: "urgent", Status: "todo"},
		{Title: "low", Priority: "low", Status: "in_progress"},
		{Title: "wip-medium", Priority: "MEDIUM", Status: "In_Progress"},
	}
	sorted := SortTasks(tasks)
	assert.Equal(t, []string{
		"wip-high", "done-high",
		"wip-medium", "Alpha", "zeta",
		"low", "mystery",
	}, titles(sorted))

	// input untouched
	assert.Equal(t, "zeta", tasks[0].Title)
}

func TestSortTasks_Idempotent(t *testing.T) {
	tasks := []TaskRecord{
		{Title: "dup", Priority: "low", Description: "first"},
		{Title: "b", Priority: "high", Status: "done"},
		{Title: "DUP", Priority: "low", Description: "second"},
		{Title: "a", Priority: "high", Status: "done"},
		{Title: "dup", Priority: "low", Description: "third"},
	}
	once := SortTasks(tasks)
	twice := SortTasks(once)
	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"a", "b", "dup", "DUP", "dup"}, titles(once))
	assert.Equal(t, "first", once[2].Description)
}

func TestPrioritizeTasks_UnknownValues(t *testing.T) {
	out := PrioritizeTasks([]TaskRecord{{Title: "odd", Priority: "urgent", Status: "blocked"}})
	assert.Contains(t, out, "1. (-) **odd** [TODO]")
	assert.Contains(t, out, "_Reason: medium priority, ready to start_")
	assert.Contains(t, out, "- To Do: 1")
}

func TestPrioritizeTasks_Summary(t *testing.T) {
	freezeClock(t)
	out := PrioritizeTasks([]TaskRecord{
		{Title: "Low priority task", Status: "todo", Priority: "low"},
		{Title: "High priority task", Status: "todo", Priority: "high"},
		{Title: "In progress task", Status: "in_progress", Priority: "medium"},
		{Title: "Finished", Status: "done", Priority: "medium"},
	})

	assert.Contains(t, out, "# Task Priority List")
	assert.Contains(t, out, "**Generated:** 2025-03-14 09:26 UTC")
	assert.Contains(t, out, "**Total Tasks:** 4")
	assert.Contains(t, out, "- In Progress: 1\n- To Do: 2\n- Completed: 1")
	assert.Contains(t, out, "_Reason: medium priority, already in progress_")
	assert.Contains(t, out, "_Reason: medium priority, completed_")
	assert.True(t, strings.HasSuffix(out, "**Focus:** Start with task #1 and work down the list."))
}

func TestPrioritizeFromMap_MissingFieldsDefault(t *testing.T) {
	out, err := PrioritizeFromMap(map[string]any{"tasks": []any{
		map[string]any{},
		"not a task",
		map[string]any{"title": nil, "priority": 3},
	}})
	require.NoError(t, err)
	assert.Contains(t, out, "**Total Tasks:** 2")
	assert.Contains(t, out, "1. (-) **Untitled** [TODO]")
	assert.Contains(t, out, "2. (-) **Untitled** [TODO]")
}
