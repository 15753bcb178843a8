package skill

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed playbooks.yaml
var playbookYAML []byte

// DiagnosticStep is one read-only instruction. Mode records the access level the step
// needs; it is carried but never rendered.
type DiagnosticStep struct {
	Instruction string `yaml:"step"`
	Mode        string `yaml:"mode"`
}

type Symptom struct {
	Key               string           `yaml:"symptom"`
	Explanation       string           `yaml:"explanation"`
	DiagnosticSteps   []DiagnosticStep `yaml:"diagnostic_steps"`
	EvidenceChecklist []string         `yaml:"evidence_checklist"`
	StopConditions    []string         `yaml:"stop_conditions"`
}

type Playbook struct {
	Domain         string    `yaml:"domain"`
	Name           string    `yaml:"name"`
	EscalationPath string    `yaml:"escalation_path"`
	Symptoms       []Symptom `yaml:"symptoms"`
}

type playbookSet struct {
	ordered  []Playbook
	byDomain map[string]*Playbook
}

var playbooks = mustLoadPlaybooks(playbookYAML)

func mustLoadPlaybooks(data []byte) *playbookSet {
	set, err := loadPlaybooks(data)
	if err != nil {
		panic(fmt.Sprintf("skill: embedded playbooks: %v", err))
	}
	return set
}

func loadPlaybooks(data []byte) (*playbookSet, error) {
	var doc struct {
		Domains []Playbook `yaml:"domains"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode playbooks: %w", err)
	}
	if len(doc.Domains) == 0 {
		return nil, errors.New("no playbook domains defined")
	}

	set := &playbookSet{
		ordered:  doc.Domains,
		byDomain: make(map[string]*Playbook, len(doc.Domains)),
	}
	for i := range set.ordered {
		pb := &set.ordered[i]
		if pb.Domain == "" || pb.EscalationPath == "" {
			return nil, fmt.Errorf("playbook #%d: domain and escalation_path are required", i)
		}
		if _, dup := set.byDomain[pb.Domain]; dup {
			return nil, fmt.Errorf("duplicate playbook domain %q", pb.Domain)
		}
		seen := make(map[string]bool, len(pb.Symptoms))
		for _, s := range pb.Symptoms {
			if s.Key == "" || seen[s.Key] {
				return nil, fmt.Errorf("domain %q: missing or duplicate symptom %q", pb.Domain, s.Key)
			}
			if len(s.DiagnosticSteps) == 0 || len(s.EvidenceChecklist) == 0 || len(s.StopConditions) == 0 {
				return nil, fmt.Errorf("domain %q symptom %q: steps, evidence and stop conditions are required", pb.Domain, s.Key)
			}
			seen[s.Key] = true
		}
		set.byDomain[pb.Domain] = pb
	}
	return set, nil
}

func (s *playbookSet) domains() []string {
	out := make([]string, 0, len(s.ordered))
	for _, pb := range s.ordered {
		out = append(out, pb.Domain)
	}
	return out
}

func (p *Playbook) symptomKeys() []string {
	out := make([]string, 0, len(p.Symptoms))
	for _, s := range p.Symptoms {
		out = append(out, s.Key)
	}
	return out
}

func (p *Playbook) symptom(key string) (*Symptom, bool) {
	for i := range p.Symptoms {
		if p.Symptoms[i].Key == key {
			return &p.Symptoms[i], true
		}
	}
	return nil, false
}

// Domains lists the runbook domains in table order.
func Domains() []string {
	return playbooks.domains()
}

// SymptomsFor lists the symptom categories known for domain.
func SymptomsFor(domain string) ([]string, bool) {
	pb, ok := playbooks.byDomain[strings.ToLower(strings.TrimSpace(domain))]
	if !ok {
		return nil, false
	}
	return pb.symptomKeys(), true
}
