package skill

import "strings"

const (
	AudienceManager = "manager"
	AudienceClient  = "client"

	defaultSeverity      = "P2"
	defaultIncidentState = "investigating"
	defaultUpdateEvery   = "1 hour"
)

var nextStepsByStatus = map[string][]string{
	"investigating": {
		"Continue analyzing logs and alerts",
		"Gather additional evidence",
		"Identify root cause",
	},
	"identified": {
		"Implement fix",
		"Test in staging environment",
		"Schedule production deployment",
	},
	"mitigating": {
		"Monitor service recovery",
		"Validate fix effectiveness",
		"Document resolution steps",
	},
	"resolved": {
		"Complete post-incident documentation",
		"Schedule post-mortem meeting",
		"Update runbooks if needed",
	},
}

var fallbackNextSteps = []string{"Continue investigation"}

var updateIntervalBySeverity = map[string]string{
	"P1": "30 minutes",
	"P2": "1 hour",
	"P3": "2 hours",
	"P4": "4 hours",
}

var defaultIncidentEvidence = []string{
	"Screenshots of error messages/alerts",
	"Relevant log entries with timestamps",
	"Timeline of events",
}

// IncidentInput holds the incident update fields. Empty optional fields take defaults.
type IncidentInput struct {
	IncidentTitle  string
	ImpactSummary  string
	Audience       string
	Severity       string
	CurrentStatus  string
	NextUpdateTime string
	ChecksDone     []string
	Evidence       []string
}

func (in IncidentInput) Validate() error {
	return requireFields(KindIncident,
		"incident_title", in.IncidentTitle,
		"impact_summary", in.ImpactSummary,
	)
}

func (in IncidentInput) withDefaults() IncidentInput {
	in.Audience = strings.ToLower(strings.TrimSpace(in.Audience))
	if in.Audience != AudienceClient {
		in.Audience = AudienceManager
	}
	if strings.TrimSpace(in.Severity) == "" {
		in.Severity = defaultSeverity
	}
	if strings.TrimSpace(in.CurrentStatus) == "" {
		in.CurrentStatus = defaultIncidentState
	}
	if strings.TrimSpace(in.NextUpdateTime) == "" {
		in.NextUpdateTime = nextUpdateFor(in.Severity)
	}
	return in
}

func nextUpdateFor(severity string) string {
	if d, ok := updateIntervalBySeverity[strings.ToUpper(strings.TrimSpace(severity))]; ok {
		return d
	}
	return defaultUpdateEvery
}

func nextStepsFor(status string) []string {
	if steps, ok := nextStepsByStatus[strings.ToLower(strings.TrimSpace(status))]; ok {
		return steps
	}
	return fallbackNextSteps
}

// GenerateIncidentUpdate renders a manager or client facing incident update.
func GenerateIncidentUpdate(in IncidentInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	in = in.withDefaults()
	steps := nextStepsFor(in.CurrentStatus)

	if in.Audience == AudienceClient {
		return renderClientUpdate(in, steps), nil
	}
	return renderManagerUpdate(in, steps), nil
}

// IncidentUpdateFromMap is GenerateIncidentUpdate over a raw payload.
func IncidentUpdateFromMap(data map[string]any) (string, error) {
	return GenerateIncidentUpdate(incidentInputFrom(Input(data)))
}

func incidentInputFrom(in Input) IncidentInput {
	return IncidentInput{
		IncidentTitle:  in.String("incident_title", ""),
		ImpactSummary:  in.String("impact_summary", ""),
		Audience:       in.String("audience", AudienceManager),
		Severity:       in.String("severity", defaultSeverity),
		CurrentStatus:  in.String("current_status", defaultIncidentState),
		NextUpdateTime: in.String("next_update_time", ""),
		ChecksDone:     in.StringList("checks_done"),
		Evidence:       in.StringList("evidence"),
	}
}

func renderManagerUpdate(in IncidentInput, steps []string) string {
	doc := &document{}
	doc.add(
		"# Incident Update: "+inline(in.IncidentTitle),
		"",
		"**Severity:** "+inline(in.Severity)+" | **Status:** "+label(in.CurrentStatus),
		"**Generated:** "+timestamp(),
		"",
		"## Impact Summary",
		block(in.ImpactSummary),
		"",
	)

	if len(in.ChecksDone) > 0 {
		doc.add("## Diagnostic Checks Completed")
		doc.add(bulletList(in.ChecksDone)...)
		doc.add("")
	}

	if len(in.Evidence) > 0 {
		doc.add("## Evidence Collected")
		doc.add(bulletList(in.Evidence)...)
	} else {
		doc.add("## Evidence To Collect")
		doc.add(bulletList(defaultIncidentEvidence)...)
	}
	doc.add("", "## Next Steps")
	doc.add(numberedList(steps)...)
	doc.add("", "**Next Update:** "+inline(in.NextUpdateTime))
	return doc.String()
}

// renderClientUpdate must not leak the severity code or internal wording.
func renderClientUpdate(in IncidentInput, steps []string) string {
	if len(steps) > 2 {
		steps = steps[:2]
	}
	doc := &document{}
	doc.add(
		"# Service Update: "+inline(in.IncidentTitle),
		"",
		"**Status:** "+label(in.CurrentStatus),
		"**Updated:** "+timestamp(),
		"",
		"## Current Situation",
		block(in.ImpactSummary),
		"",
		"## What We're Doing",
	)
	doc.add(bulletList(steps)...)
	doc.add(
		"",
		"We will provide another update in "+inline(in.NextUpdateTime)+".",
		"",
		"Thank you for your patience.",
	)
	return doc.String()
}
