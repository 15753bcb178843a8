package skill

import (
	"fmt"
	"sort"
	"strings"
)

const noTasksToPrioritize = "No tasks to prioritize."

var priorityGlyph = map[string]string{
	priorityHigh:   "(!)",
	priorityMedium: "(-)",
	priorityLow:    "(.)",
}

var statusTag = map[string]string{
	statusInProgress: "[IN PROGRESS]",
	statusTodo:       "[TODO]",
	statusDone:       "[DONE]",
}

var priorityPhrase = map[string]string{
	priorityHigh:   "high priority",
	priorityMedium: "medium priority",
	priorityLow:    "low priority",
}

var statusPhrase = map[string]string{
	statusInProgress: "already in progress",
	statusTodo:       "ready to start",
	statusDone:       "completed",
}

// SortTasks returns a copy of tasks ordered by priority weight, then status weight
// (both descending), then case-insensitive title. Equal keys keep input order.
func SortTasks(tasks []TaskRecord) []TaskRecord {
	sorted := make([]TaskRecord, len(tasks))
	for i, t := range tasks {
		sorted[i] = t.normalized()
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if pa, pb := a.priorityWeight(), b.priorityWeight(); pa != pb {
			return pa > pb
		}
		if sa, sb := a.statusWeight(), b.statusWeight(); sa != sb {
			return sa > sb
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})
	return sorted
}

func reasoning(t TaskRecord) string {
	return priorityPhrase[t.priorityBucket()] + ", " + statusPhrase[t.statusBucket()]
}

// PrioritizeTasks renders the ordered task list with a reason per entry.
func PrioritizeTasks(tasks []TaskRecord) string {
	if len(tasks) == 0 {
		return noTasksToPrioritize
	}
	sorted := SortTasks(tasks)

	counts := map[string]int{}
	for _, t := range sorted {
		counts[t.statusBucket()]++
	}

	doc := &document{}
	doc.add(
		"# Task Priority List",
		"",
		"**Generated:** "+timestamp(),
		fmt.Sprintf("**Total Tasks:** %d", len(sorted)),
		"",
		"---",
		"",
		"## Prioritized Order",
		"",
	)
	for i, t := range sorted {
		doc.add(
			fmt.Sprintf("%d. %s **%s** %s", i+1, priorityGlyph[t.priorityBucket()], inline(t.Title), statusTag[t.statusBucket()]),
			"   _Reason: "+reasoning(t)+"_",
			"",
		)
	}
	doc.add(
		"---",
		"",
		"## Summary",
		fmt.Sprintf("- In Progress: %d", counts[statusInProgress]),
		fmt.Sprintf("- To Do: %d", counts[statusTodo]),
		fmt.Sprintf("- Completed: %d", counts[statusDone]),
		"",
		"**Focus:** Start with task #1 and work down the list.",
	)
	return doc.String()
}

// PrioritizeFromMap reads the "tasks" list from a raw payload.
func PrioritizeFromMap(data map[string]any) (string, error) {
	return PrioritizeTasks(Input(data).Tasks("tasks")), nil
}
