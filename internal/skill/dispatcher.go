package skill

// Envelope is the uniform result of Execute.
type Envelope struct {
	SkillType string `json:"skill_type"`
	Output    string `json:"output"`
}

// Map converts the envelope into the shape stored in a task's output payload.
func (e Envelope) Map() map[string]any {
	return map[string]any{
		"skill_type": e.SkillType,
		"output":     e.Output,
	}
}

// Execute routes input to the generator for kind. An unknown kind is not an error: the
// envelope carries a readable message instead. Generator failures are returned as
// *ValidationError or *NotFoundError.
func Execute(kind Kind, input map[string]any) (Envelope, error) {
	in := Input(input)
	env := Envelope{SkillType: kind.String()}

	var (
		out string
		err error
	)
	switch kind {
	case KindIncident:
		out, err = GenerateIncidentUpdate(incidentInputFrom(in))
	case KindRunbook:
		out, err = GenerateRunbook(runbookInputFrom(in, defaultRunbookDomain, defaultRunbookSymptom))
	case KindFCR:
		out, err = GenerateFCRContent(fcrInputFrom(in))
	case KindPrioritizer:
		out = PrioritizeTasks(in.Tasks("tasks"))
	case KindDailySummary:
		out = GenerateDailySummary(summaryInputFrom(in))
	default:
		out = "Unknown skill type: " + inline(kind.String())
	}
	if err != nil {
		return Envelope{}, err
	}
	env.Output = out
	return env, nil
}
