package skill

import (
	"strings"
)

const (
	defaultAccessMode  = "gui_only"
	defaultEnvironment = "prod"

	// Used by the dispatcher when a task payload omits the keys entirely.
	defaultRunbookDomain  = "firewall"
	defaultRunbookSymptom = "high_cpu"
)

// RunbookInput selects a playbook entry. AccessMode and Environment are free text
// and only echoed in the header.
type RunbookInput struct {
	Domain          string
	SymptomCategory string
	AccessMode      string
	Environment     string
}

func (in RunbookInput) Validate() error {
	return requireFields(KindRunbook,
		"domain", in.Domain,
		"symptom_category", in.SymptomCategory,
	)
}

// resolve looks the domain up before the symptom; an unknown domain never reaches
// the symptom table.
func (in RunbookInput) resolve() (*Playbook, *Symptom, error) {
	domain := strings.ToLower(strings.TrimSpace(in.Domain))
	pb, ok := playbooks.byDomain[domain]
	if !ok {
		return nil, nil, &NotFoundError{
			Field:     "domain",
			Value:     in.Domain,
			Available: playbooks.domains(),
		}
	}

	symptom := strings.ToLower(strings.TrimSpace(in.SymptomCategory))
	s, ok := pb.symptom(symptom)
	if !ok {
		return nil, nil, &NotFoundError{
			Field:     "symptom_category",
			Value:     in.SymptomCategory,
			Domain:    pb.Domain,
			Available: pb.symptomKeys(),
		}
	}
	return pb, s, nil
}

// GenerateRunbook renders the safe troubleshooting runbook for a domain/symptom pair.
func GenerateRunbook(in RunbookInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	pb, symptom, err := in.resolve()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(in.AccessMode) == "" {
		in.AccessMode = defaultAccessMode
	}
	if strings.TrimSpace(in.Environment) == "" {
		in.Environment = defaultEnvironment
	}
	return renderRunbook(in, pb, symptom), nil
}

// RunbookFromMap is GenerateRunbook over a raw payload. Unlike the dispatcher it does
// not default the domain or symptom.
func RunbookFromMap(data map[string]any) (string, error) {
	return GenerateRunbook(runbookInputFrom(Input(data), "", ""))
}

func runbookInputFrom(in Input, domain, symptom string) RunbookInput {
	return RunbookInput{
		Domain:          in.String("domain", domain),
		SymptomCategory: in.String("symptom_category", symptom),
		AccessMode:      in.String("access_mode", defaultAccessMode),
		Environment:     in.String("environment", defaultEnvironment),
	}
}

func renderRunbook(in RunbookInput, pb *Playbook, s *Symptom) string {
	steps := make([]string, 0, len(s.DiagnosticSteps))
	for _, step := range s.DiagnosticSteps {
		steps = append(steps, step.Instruction)
	}

	doc := &document{}
	doc.add(
		"# Troubleshooting Runbook: "+strings.ToUpper(pb.Domain)+" - "+label(s.Key),
		"",
		"**Environment:** "+strings.ToUpper(inline(in.Environment))+" | **Access Mode:** "+inline(in.AccessMode),
		"**Generated:** "+timestamp(),
		"",
		"## Symptom Explanation",
		s.Explanation,
		"",
		"## Safe Diagnostic Steps",
	)
	doc.add(numberedList(steps)...)
	doc.add("", "## Evidence Checklist")
	doc.add(checkboxList(s.EvidenceChecklist)...)
	doc.add("", "## STOP Conditions (Escalate Immediately)")
	doc.add(bulletList(s.StopConditions)...)
	doc.add("", "**Escalation Path:** "+pb.EscalationPath)
	return doc.String()
}
