package skill

import (
	"fmt"
	"strings"
)

const (
	defaultTeamName = "Network Operations"
	nextUpLimit     = 3
)

// SummaryInput is the daily summary request. Empty Date means today.
type SummaryInput struct {
	Tasks    []TaskRecord
	Date     string
	TeamName string
}

type summaryGroups struct {
	completed  []TaskRecord
	inProgress []TaskRecord
	blocked    []TaskRecord
	todo       []TaskRecord
	nextUp     []TaskRecord
}

// groupTasks evaluates the blocked flag independently of status, so a task can be both
// blocked and in progress. Blocked todo items are kept out of todo, and unrecognised
// statuses land in no status group.
func groupTasks(tasks []TaskRecord) summaryGroups {
	var g summaryGroups
	for _, t := range tasks {
		switch t.status() {
		case statusDone:
			g.completed = append(g.completed, t)
		case statusInProgress:
			g.inProgress = append(g.inProgress, t)
		case statusTodo:
			if !t.Blocked {
				g.todo = append(g.todo, t)
			}
		}
		if t.Blocked {
			g.blocked = append(g.blocked, t)
		}
	}

	var urgent []TaskRecord
	for _, t := range g.todo {
		if t.priority() == priorityHigh {
			urgent = append(urgent, t)
		}
	}
	pool := g.todo
	if len(urgent) > 0 {
		pool = urgent
	}
	if len(pool) > nextUpLimit {
		pool = pool[:nextUpLimit]
	}
	g.nextUp = pool
	return g
}

func withPriorityTag(t TaskRecord) string {
	if t.priority() == priorityHigh {
		return "- " + inline(t.Title) + " [HIGH]"
	}
	return "- " + inline(t.Title)
}

func section(doc *document, heading, empty string, tasks []TaskRecord, line func(TaskRecord) string) {
	doc.add("## " + heading)
	if len(tasks) == 0 {
		doc.add("- _" + empty + "_")
	}
	for _, t := range tasks {
		doc.add(line(t))
	}
	doc.add("")
}

// GenerateDailySummary renders the Completed / In Progress / Blocked / Next Up report.
func GenerateDailySummary(in SummaryInput) string {
	if strings.TrimSpace(in.Date) == "" {
		in.Date = today()
	}
	if strings.TrimSpace(in.TeamName) == "" {
		in.TeamName = defaultTeamName
	}
	tasks := make([]TaskRecord, len(in.Tasks))
	for i, t := range in.Tasks {
		tasks[i] = t.normalized()
	}
	g := groupTasks(tasks)

	doc := &document{}
	doc.add(
		"# Daily Status Summary - "+inline(in.TeamName),
		"",
		"**Date:** "+inline(in.Date),
		"**Generated:** "+timestamp(),
		"",
		"---",
		"",
	)
	section(doc, "Completed", "No tasks completed", g.completed, func(t TaskRecord) string {
		return "- " + inline(t.Title)
	})
	section(doc, "In Progress", "No tasks in progress", g.inProgress, withPriorityTag)
	section(doc, "Blocked", "No blockers", g.blocked, func(t TaskRecord) string {
		if reason := inline(t.BlockerReason); reason != "" {
			return "- " + inline(t.Title) + " - " + reason
		}
		return "- " + inline(t.Title)
	})
	section(doc, "Next Up", "No pending tasks", g.nextUp, withPriorityTag)

	doc.add(
		"---",
		"",
		"## Quick Stats",
		"| Status | Count |",
		"|--------|-------|",
		fmt.Sprintf("| Completed | %d |", len(g.completed)),
		fmt.Sprintf("| In Progress | %d |", len(g.inProgress)),
		fmt.Sprintf("| Blocked | %d |", len(g.blocked)),
		fmt.Sprintf("| To Do | %d |", len(g.todo)),
		fmt.Sprintf("| **Total** | **%d** |", len(tasks)),
	)
	return doc.String()
}

// DailySummaryFromMap reads tasks, date and team_name from a raw payload.
func DailySummaryFromMap(data map[string]any) (string, error) {
	return GenerateDailySummary(summaryInputFrom(Input(data))), nil
}

func summaryInputFrom(in Input) SummaryInput {
	return SummaryInput{
		Tasks:    in.Tasks("tasks"),
		Date:     in.String("date", ""),
		TeamName: in.String("team_name", defaultTeamName),
	}
}
