package app

import (
	"fmt"
	"strings"

	"github.com/alchemmist/env-diff/internal/envdiff"
	"github.com/alchemmist/env-diff/internal/report"
	"github.com/alchemmist/env-diff/internal/snapshot"
)

type Change string

const (
	Added    Change = "new"
	Removed  Change = "deleted"
	Modified Change = "changed"
)

// Entry is one changed name of one category.
type Entry struct {
	Category snapshot.Category
	Change   Change
	Name     string
	Before   string
	After    string
}

// Entries flattens d in category order. Within a category deleted names come
// first, then new, then changed.
func Entries(d *envdiff.Diff) []Entry {
	var out []Entry
	out = appendEntries(out, snapshot.EnvVars, d.EnvVars, identity)
	out = appendEntries(out, snapshot.ShellVars, d.ShellVars, identity)
	out = appendEntries(out, snapshot.NormalArrays, d.NormalArrays, arrayFormatter(snapshot.NormalArrays))
	out = appendEntries(out, snapshot.AssocArrays, d.AssocArrays, arrayFormatter(snapshot.AssocArrays))
	out = appendEntries(out, snapshot.Functions, d.Functions, func(lines []string) string { return strings.Join(lines, "\n") })
	out = appendEntries(out, snapshot.Shopt, d.Shopt, identity)
	out = appendEntries(out, snapshot.SetOptions, d.SetOptions, identity)
	out = appendEntries(out, snapshot.Traps, d.Traps, identity)
	return out
}

func identity(s string) string { return s }

func arrayFormatter(c snapshot.Category) func(map[string]string) string {
	return func(v map[string]string) string { return report.FormatArray(c, v) }
}

func appendEntries[V any](out []Entry, c snapshot.Category, comp envdiff.Component[V], format func(V) string) []Entry {
	for _, name := range comp.Deleted {
		out = append(out, Entry{Category: c, Change: Removed, Name: name, Before: format(comp.Initial[name])})
	}
	for _, name := range comp.New {
		out = append(out, Entry{Category: c, Change: Added, Name: name, After: format(comp.Final[name])})
	}
	for _, name := range comp.Changed {
		out = append(out, Entry{
			Category: c,
			Change:   Modified,
			Name:     name,
			Before:   format(comp.Initial[name]),
			After:    format(comp.Final[name]),
		})
	}
	return out
}

// Summary is a one line rendering of the value the entry ends up with.
func (e Entry) Summary() string {
	v := e.After
	if e.Change == Removed {
		v = e.Before
	}
	return strings.ReplaceAll(v, "\n", "\\n")
}

// Detail renders the entry with its full before and after values.
func (e Entry) Detail() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s, %s)\n", e.Name, strings.ToLower(e.Category.Title()), e.Change)
	if e.Change != Added {
		fmt.Fprintf(&b, "before:\n%s\n", indent(e.Before))
	}
	if e.Change != Removed {
		fmt.Fprintf(&b, "after:\n%s\n", indent(e.After))
	}
	return b.String()
}

func indent(s string) string {
	return "    " + strings.ReplaceAll(s, "\n", "\n    ")
}
