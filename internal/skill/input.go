package skill

import (
	"fmt"
	"strconv"
	"strings"
)

// Input is the loosely-typed payload a skill receives, usually decoded from JSON.
type Input map[string]any

// String returns the value under key, or def when the key is absent or null.
// Non-string scalars are formatted rather than rejected.
func (in Input) String(key, def string) string {
	v, ok := in[key]
	if !ok || v == nil {
		return def
	}
	return scalarString(v)
}

// StringList accepts a JSON array (or a single string) and drops null elements.
func (in Input) StringList(key string) []string {
	switch v := in[key].(type) {
	case nil:
		return nil
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, scalarString(item))
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// Tasks decodes the task records under key. Entries that are not objects are skipped.
func (in Input) Tasks(key string) []TaskRecord {
	var raw []map[string]any
	switch v := in[key].(type) {
	case []TaskRecord:
		out := make([]TaskRecord, len(v))
		for i, t := range v {
			out[i] = t.normalized()
		}
		return out
	case []map[string]any:
		raw = v
	case []any:
		for _, item := range v {
			switch m := item.(type) {
			case map[string]any:
				raw = append(raw, m)
			case Input:
				raw = append(raw, m)
			}
		}
	}

	out := make([]TaskRecord, 0, len(raw))
	for _, m := range raw {
		out = append(out, taskRecordFromMap(m))
	}
	return out
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return false
	}
}
