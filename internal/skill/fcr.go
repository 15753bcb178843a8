package skill

import (
	"fmt"
	"strings"
)

const (
	defaultChangeType = "firewall_rule"
	defaultRuleCount  = "single"
	defaultDirection  = "inbound"
	defaultRiskLevel  = "low"
)

// fcrTemplate is the content set for one change type. The description accepts
// {purpose}, {direction} and {rule_count}.
type fcrTemplate struct {
	description string
	tests       []string
	rollback    []string
}

var fcrTemplates = map[string]fcrTemplate{
	"firewall_rule": {
		description: "Add firewall rule to {direction} traffic for {purpose}. Rule count: {rule_count}.",
		tests: []string{
			"Verify rule syntax in staging/lab environment",
			"Confirm source/destination objects exist",
			"Test connectivity with rule in place (lab)",
			"Verify logging is enabled for new rule",
		},
		rollback: []string{
			"Remove newly added rule(s)",
			"Restore previous rule configuration if modified",
			"Verify traffic flow returns to pre-change state",
		},
	},
	"nat_change": {
		description: "Configure NAT translation for {purpose}. Direction: {direction}.",
		tests: []string{
			"Verify NAT translation in lab environment",
			"Confirm IP addresses are not in use elsewhere",
			"Test end-to-end connectivity through NAT",
		},
		rollback: []string{
			"Remove NAT translation entry",
			"Restore original NAT configuration",
			"Verify connectivity restored",
		},
	},
	"f5_ssl": {
		description: "Update F5 SSL profile/certificate for {purpose}.",
		tests: []string{
			"Validate certificate chain completeness",
			"Verify certificate expiry date",
			"Test SSL handshake in staging",
			"Confirm cipher suite compatibility",
		},
		rollback: []string{
			"Revert to previous SSL profile",
			"Restore previous certificate",
			"Verify SSL termination functional",
		},
	},
	"routing_change": {
		description: "Modify routing configuration for {purpose}. Direction: {direction}.",
		tests: []string{
			"Verify route does not conflict with existing routes",
			"Test reachability in lab environment",
			"Confirm BGP/OSPF adjacencies stable after change",
		},
		rollback: []string{
			"Remove added route(s)",
			"Restore previous routing configuration",
			"Verify routing table stable",
		},
	},
	"acl_update": {
		description: "Update access control list for {purpose}. Direction: {direction}.",
		tests: []string{
			"Verify ACL syntax",
			"Test ACL in lab environment",
			"Confirm no unintended traffic blocked",
		},
		rollback: []string{
			"Revert ACL to previous version",
			"Verify traffic flow restored",
		},
	},
	"vpn_config": {
		description: "Configure VPN settings for {purpose}.",
		tests: []string{
			"Verify tunnel parameters match peer",
			"Test tunnel establishment in lab",
			"Confirm encryption settings are compliant",
		},
		rollback: []string{
			"Disable new VPN configuration",
			"Restore previous VPN settings",
			"Verify tunnel stability",
		},
	},
}

type riskProfile struct {
	impact       string
	rollbackTime string
}

var riskProfiles = map[string]riskProfile{
	"low": {
		impact:       "Minimal impact expected. Change affects limited scope with no service disruption.",
		rollbackTime: "< 5 minutes",
	},
	"medium": {
		impact:       "Moderate impact possible. Brief connectivity interruption may occur during implementation.",
		rollbackTime: "5-15 minutes",
	},
	"high": {
		impact:       "Significant impact possible. Service disruption expected during maintenance window.",
		rollbackTime: "15-30 minutes",
	},
}

var preImplementationChecklist = []string{
	"Change reviewed and approved by team lead",
	"Rollback procedure documented and tested",
	"Maintenance window scheduled (if required)",
	"Stakeholders notified",
	"Monitoring alerts configured",
}

var fcrEvidenceChecklist = []string{
	"Pre-change configuration backup",
	"Screenshot of change implementation",
	"Post-change verification results",
	"Test results documentation",
}

// ChangeTypes lists the change types with a dedicated template.
func ChangeTypes() []string {
	return []string{"firewall_rule", "nat_change", "f5_ssl", "routing_change", "acl_update", "vpn_config"}
}

// FCRInput carries the change request fields. Only Purpose is required; the output is
// section content for the official form, not a replacement for it.
type FCRInput struct {
	Purpose     string
	ChangeType  string
	RuleCount   string
	Direction   string
	RiskLevel   string
	Environment string
}

func (in FCRInput) Validate() error {
	return requireFields(KindFCR, "purpose", in.Purpose)
}

func (in FCRInput) withDefaults() FCRInput {
	if strings.TrimSpace(in.ChangeType) == "" {
		in.ChangeType = defaultChangeType
	}
	if strings.TrimSpace(in.RuleCount) == "" {
		in.RuleCount = defaultRuleCount
	}
	if strings.TrimSpace(in.Direction) == "" {
		in.Direction = defaultDirection
	}
	if strings.TrimSpace(in.RiskLevel) == "" {
		in.RiskLevel = defaultRiskLevel
	}
	if strings.TrimSpace(in.Environment) == "" {
		in.Environment = defaultEnvironment
	}
	return in
}

// template falls back to the firewall rule set for unrecognised change types.
func (in FCRInput) template() fcrTemplate {
	if t, ok := fcrTemplates[strings.ToLower(strings.TrimSpace(in.ChangeType))]; ok {
		return t
	}
	return fcrTemplates[defaultChangeType]
}

func (in FCRInput) risk() riskProfile {
	if r, ok := riskProfiles[strings.ToLower(strings.TrimSpace(in.RiskLevel))]; ok {
		return r
	}
	return riskProfiles[defaultRiskLevel]
}

// GenerateFCRContent renders the seven FCR sections.
func GenerateFCRContent(in FCRInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	in = in.withDefaults()
	return renderFCR(in, in.template(), in.risk()), nil
}

// FCRContentFromMap is GenerateFCRContent over a raw payload.
func FCRContentFromMap(data map[string]any) (string, error) {
	return GenerateFCRContent(fcrInputFrom(Input(data)))
}

func fcrInputFrom(in Input) FCRInput {
	return FCRInput{
		Purpose:     in.String("purpose", ""),
		ChangeType:  in.String("change_type", defaultChangeType),
		RuleCount:   in.String("rule_count", defaultRuleCount),
		Direction:   in.String("direction", defaultDirection),
		RiskLevel:   in.String("risk_level", defaultRiskLevel),
		Environment: in.String("environment", defaultEnvironment),
	}
}

func renderFCR(in FCRInput, tpl fcrTemplate, risk riskProfile) string {
	purpose := inline(in.Purpose)
	description := strings.NewReplacer(
		"{purpose}", purpose,
		"{direction}", inline(in.Direction),
		"{rule_count}", inline(in.RuleCount),
	).Replace(tpl.description)

	env := strings.ToUpper(inline(in.Environment))
	changeLabel := label(in.ChangeType)

	doc := &document{}
	doc.add(
		"# FCR Section Content",
		"",
		"**Generated:** "+timestamp(),
		"**Change Type:** "+changeLabel,
		"**Environment:** "+env,
		"**Risk Level:** "+strings.ToUpper(inline(in.RiskLevel)),
		"",
		"---",
		"",
		"## 1. Purpose / Business Justification",
		block(in.Purpose),
		"",
		"## 2. Technical Description",
		description,
		"",
		"## 3. Tests Conducted",
	)
	doc.add(checkboxList(tpl.tests)...)
	doc.add(
		"",
		"## 4. Impact Assessment",
		risk.impact,
		"",
		"**Affected Systems:**",
		fmt.Sprintf("- %s %s infrastructure", env, changeLabel),
		"",
		"## 5. Rollback Procedure",
		"**Estimated Rollback Time:** "+risk.rollbackTime,
		"",
	)
	doc.add(numberedList(tpl.rollback)...)
	doc.add("", "## 6. Pre-Implementation Checklist")
	doc.add(checkboxList(preImplementationChecklist)...)
	doc.add("", "## 7. Evidence Checklist")
	doc.add(checkboxList(fcrEvidenceChecklist)...)
	return doc.String()
}
