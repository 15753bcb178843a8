package skill

import "strings"

// Kind identifies one of the text-generation skills.
type Kind string

const (
	KindIncident     Kind = "incident"
	KindRunbook      Kind = "runbook"
	KindFCR          Kind = "fcr"
	KindDailySummary Kind = "daily_summary"
	KindPrioritizer  Kind = "prioritizer"
)

var allKinds = []Kind{KindIncident, KindRunbook, KindFCR, KindDailySummary, KindPrioritizer}

// Kinds returns every known skill kind in a stable order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

func (k Kind) String() string { return string(k) }

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind normalises s and reports whether it names a known kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}
