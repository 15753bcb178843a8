package skill

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports every required field that was missing or blank.
type ValidationError struct {
	Skill  Kind
	Fields []string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f+" is required")
	}
	return fmt.Sprintf("invalid %s input: %s", e.Skill, strings.Join(msgs, ", "))
}

// NotFoundError is returned when a lookup key is absent from the static tables.
// Only the runbook generator produces it.
type NotFoundError struct {
	// Field is the input key that failed the lookup ("domain" or "symptom_category").
	Field     string
	Value     string
	Domain    string
	Available []string
}

func (e *NotFoundError) Error() string {
	if e.Field == "domain" {
		return fmt.Sprintf("no playbook found for domain %q, available: %s",
			e.Value, strings.Join(e.Available, ", "))
	}
	return fmt.Sprintf("unknown symptom %q for domain %q, available: %s",
		e.Value, e.Domain, strings.Join(e.Available, ", "))
}

// requireFields collects the names of blank values in declaration order.
func requireFields(kind Kind, pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{Skill: kind, Fields: missing}
}

// Outcome classifies an Execute error for metrics labels.
func Outcome(err error) string {
	var validation *ValidationError
	var notFound *NotFoundError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &validation):
		return "validation_error"
	case errors.As(err, &notFound):
		return "not_found"
	}
	return "error"
}
