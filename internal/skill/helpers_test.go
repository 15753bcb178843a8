package skill

import (
	"testing"
	"time"
	"unicode"

	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	prev := now
	now = func() time.Time { return fixedNow }
	t.Cleanup(func() { now = prev })
}

func assertPrintable(t *testing.T, out string) {
	t.Helper()
	for _, r := range out {
		if r != '\n' && unicode.IsControl(r) {
			assert.Failf(t, "control character in output", "found %U", r)
			return
		}
	}
}
