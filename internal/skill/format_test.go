package skill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	assert.Equal(t, "High Cpu", label("high_cpu"))
	assert.Equal(t, "F5 Ssl", label("f5_ssl"))
	assert.Equal(t, "Investigating", label("investigating"))
}

func TestBlockAndInline(t *testing.T) {
	assert.Equal(t, "line one\nline two", block("line one\r\nline two"))
	assert.Equal(t, "a b", block("a\tb"))
	assert.Equal(t, "bell", block("be\x07ll"))
	assert.Equal(t, "one two", inline(" one\ntwo\x1b "))
}

func TestLists(t *testing.T) {
	items := []string{"first", "second"}
	assert.Equal(t, []string{"- first", "- second"}, bulletList(items))
	assert.Equal(t, []string{"1. first", "2. second"}, numberedList(items))
	assert.Equal(t, []string{"- [ ] first", "- [ ] second"}, checkboxList(items))
	assert.Empty(t, bulletList(nil))
}

func TestTimestamp(t *testing.T) {
	freezeClock(t)
	assert.Equal(t, "2025-03-14 09:26 UTC", timestamp())
	assert.Equal(t, "2025-03-14", today())
}
