package report

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// diff prints the changed lines between before and after, prefixed with
// indent. File headers and hunk markers are dropped.
func (p *printer) diff(before, after []string, indent string, context int) {
	for _, l := range DiffLines(before, after, context) {
		switch {
		case strings.HasPrefix(l, "+"):
			l = p.st.plus.Render(l)
		case strings.HasPrefix(l, "-"):
			l = p.st.minus.Render(l)
		}
		p.println(indent + l)
	}
}

// DiffLines returns the body of the unified diff of two line lists.
func DiffLines(before, after []string, context int) []string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        withNewlines(before),
		B:        withNewlines(after),
		FromFile: "before",
		ToFile:   "after",
		Context:  context,
	})
	if err != nil || text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if len(lines) >= 2 && strings.HasPrefix(lines[0], "--- ") && strings.HasPrefix(lines[1], "+++ ") {
		lines = lines[2:]
	}
	var out []string
	for _, l := range lines {
		if strings.HasPrefix(l, "@@") {
			continue
		}
		out = append(out, strings.TrimRight(l, " \t\r"))
	}
	return out
}

func withNewlines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l + "\n"
	}
	return out
}
