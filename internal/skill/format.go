package skill

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// now is the only wall-clock read in the package; tests replace it.
var now = time.Now

func timestamp() string {
	return now().UTC().Format("2006-01-02 15:04 UTC")
}

func today() string {
	return now().Format("2006-01-02")
}

var titleCaser = cases.Title(language.English)

// label turns an identifier such as "connectivity_loss" into "Connectivity Loss".
func label(key string) string {
	return titleCaser.String(strings.ReplaceAll(inline(key), "_", " "))
}

func bulletList(items []string) []string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+inline(item))
	}
	return lines
}

func numberedList(items []string) []string {
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, inline(item)))
	}
	return lines
}

func checkboxList(items []string) []string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- [ ] "+inline(item))
	}
	return lines
}

// block keeps line breaks but drops every other control character.
func block(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

// inline is block with line breaks folded into spaces, for headings and list items.
func inline(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(block(s), "\n", " "))
}

type document struct {
	lines []string
}

func (d *document) add(lines ...string) *document {
	d.lines = append(d.lines, lines...)
	return d
}

func (d *document) String() string {
	return strings.Join(d.lines, "\n")
}
