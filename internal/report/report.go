// Package report prints a human readable account of an environment diff.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ryanuber/go-glob"

	"github.com/alchemmist/env-diff/internal/envdiff"
	"github.com/alchemmist/env-diff/internal/snapshot"
)

// Options controls how values are compared and which names are left out.
// All name lists hold glob patterns.
type Options struct {
	ColonLists         []string
	SpaceLists         []string
	IgnoreVariables    []string
	IgnoreNormalArrays []string
	IgnoreAssocArrays  []string
	// ListDiff shows list variables as a full diff of their elements
	// instead of added and removed sets.
	ListDiff bool
	// NoIgnore disables the ignore patterns.
	NoIgnore bool
}

type styles struct {
	banner   lipgloss.Style
	added    lipgloss.Style
	removed  lipgloss.Style
	modified lipgloss.Style
	name     lipgloss.Style
	plus     lipgloss.Style
	minus    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		banner:   r.NewStyle().Bold(true),
		added:    r.NewStyle().Underline(true).Foreground(lipgloss.Color("2")),
		removed:  r.NewStyle().Underline(true).Foreground(lipgloss.Color("1")),
		modified: r.NewStyle().Underline(true).Foreground(lipgloss.Color("3")),
		name:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
		plus:     r.NewStyle().Foreground(lipgloss.Color("2")),
		minus:    r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

type printer struct {
	w    io.Writer
	opts Options
	st   styles
	err  error
}

// Render writes the report for d to w. Colors are only used when w is a
// terminal.
func Render(w io.Writer, d *envdiff.Diff, opts Options) error {
	p := &printer{w: w, opts: opts, st: newStyles(lipgloss.NewRenderer(w))}
	p.variables(snapshot.EnvVars, d.EnvVars)
	p.variables(snapshot.ShellVars, d.ShellVars)
	p.arrays(snapshot.NormalArrays, d.NormalArrays, opts.IgnoreNormalArrays)
	p.arrays(snapshot.AssocArrays, d.AssocArrays, opts.IgnoreAssocArrays)
	p.functions(d.Functions)
	p.options(snapshot.Shopt, d.Shopt)
	p.options(snapshot.SetOptions, d.SetOptions)
	p.traps(d.Traps)
	return p.err
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) println(s string) {
	p.printf("%s\n", s)
}

func (p *printer) banner(c snapshot.Category) {
	p.println(p.st.banner.Render("================= " + c.Title() + " ================"))
}

func (p *printer) heading(style lipgloss.Style, text string) {
	p.println(style.Render(text))
}

// modified drops the names matching any ignore pattern.
func (p *printer) modified(names []string, ignore []string) []string {
	if p.opts.NoIgnore {
		return names
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if !matchAny(ignore, name) {
			out = append(out, name)
		}
	}
	return out
}

func (p *printer) variables(c snapshot.Category, comp envdiff.Component[string]) {
	changed := p.modified(comp.Changed, p.opts.IgnoreVariables)
	if len(comp.New)+len(comp.Deleted)+len(changed) == 0 {
		return
	}
	p.banner(c)
	if len(comp.New) > 0 {
		p.heading(p.st.added, "New variables")
		for _, name := range comp.New {
			p.printf("%s=%s\n", name, comp.Final[name])
		}
	}
	if len(comp.Deleted) > 0 {
		p.heading(p.st.removed, "Deleted variables")
		for _, name := range comp.Deleted {
			p.printf("%s=%s\n", name, comp.Initial[name])
		}
	}
	if len(changed) > 0 {
		p.heading(p.st.modified, "Modified variables")
		for _, name := range changed {
			p.variable(name, comp.Initial[name], comp.Final[name])
		}
	}
}

func (p *printer) variable(name, before, after string) {
	switch {
	case matchAny(p.opts.ColonLists, name):
		p.list(name, "colon", strings.Split(before, ":"), strings.Split(after, ":"))
	case matchAny(p.opts.SpaceLists, name):
		p.list(name, "space", strings.Split(before, " "), strings.Split(after, " "))
	case isExportedFunction(name):
		p.println(name)
		p.diff(strings.Split(before, "\n"), strings.Split(after, "\n"), "", 3)
	default:
		p.printf("%s:\n    OLD: %s\n    NEW: %s\n", name, before, after)
	}
}

// isExportedFunction reports whether name is the environment entry bash
// creates for an exported function.
func isExportedFunction(name string) bool {
	return strings.HasPrefix(name, "BASH_FUNC_") && strings.HasSuffix(name, "%%")
}

func (p *printer) list(name, kind string, before, after []string) {
	if p.opts.ListDiff {
		p.println(name)
		p.diff(placeholders(before), placeholders(after), "    ", max(len(before), len(after)))
		return
	}
	added, removed := setDifference(after, before), setDifference(before, after)
	p.printf("%s (%s-separated list using set comparison)\n", name, kind)
	if len(added) > 0 {
		p.println("    ADDED:")
		for _, e := range added {
			p.printf("        %s\n", e)
		}
	}
	if len(removed) > 0 {
		p.println("    REMOVED:")
		for _, e := range removed {
			p.printf("        %s\n", e)
		}
	}
	if len(added) == 0 && len(removed) == 0 {
		p.println("    (Before and after are different as lists but not as sets)")
		p.println("    (It could be that adding an element that was already there,)")
		p.println("    (or removing doubles, reordering, or adding separators)")
	}
}

func placeholders(elems []string) []string {
	out := make([]string, len(elems))
	for i, e := range elems {
		if e == "" {
			e = "(empty)"
		}
		out[i] = e
	}
	return out
}

// setDifference returns the distinct elements of a missing from b, in the
// order they first appear in a.
func setDifference(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, e := range b {
		inB[e] = struct{}{}
	}
	seen := map[string]struct{}{}
	var out []string
	for _, e := range a {
		if _, ok := inB[e]; ok {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

func (p *printer) arrays(c snapshot.Category, comp envdiff.Component[map[string]string], ignore []string) {
	changed := p.modified(comp.Changed, ignore)
	if len(comp.New)+len(comp.Deleted)+len(changed) == 0 {
		return
	}
	p.banner(c)
	if len(comp.New) > 0 {
		p.heading(p.st.added, "New arrays")
		for _, name := range comp.New {
			p.printf("%s: %s\n", name, FormatArray(c, comp.Final[name]))
		}
	}
	if len(comp.Deleted) > 0 {
		p.heading(p.st.removed, "Deleted arrays")
		for _, name := range comp.Deleted {
			p.printf("%s: %s\n", name, FormatArray(c, comp.Initial[name]))
		}
	}
	if len(changed) > 0 {
		p.heading(p.st.modified, "Modified arrays")
		for _, name := range changed {
			p.printf("Initial %s: %s\n", name, FormatArray(c, comp.Initial[name]))
			p.printf("Final   %s: %s\n", name, FormatArray(c, comp.Final[name]))
		}
	}
}

// FormatArray renders an array value as bash prints it in a compound
// assignment.
func FormatArray(c snapshot.Category, value map[string]string) string {
	keys := make([]string, 0, len(value))
	for k := range value {
		keys = append(keys, k)
	}
	if c == snapshot.NormalArrays {
		sort.Slice(keys, func(i, j int) bool {
			a, errA := strconv.Atoi(keys[i])
			b, errB := strconv.Atoi(keys[j])
			if errA != nil || errB != nil {
				return keys[i] < keys[j]
			}
			return a < b
		})
	} else {
		sort.Strings(keys)
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("[%s]=%s", k, strconv.Quote(value[k])))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (p *printer) functions(comp envdiff.Component[[]string]) {
	if comp.Empty() {
		return
	}
	p.banner(snapshot.Functions)
	if len(comp.New) > 0 {
		p.heading(p.st.added, "New functions")
		for _, name := range comp.New {
			p.println(p.st.name.Render(name + " ()"))
			for _, l := range comp.Final[name] {
				p.println(l)
			}
		}
	}
	if len(comp.Deleted) > 0 {
		p.heading(p.st.removed, "Deleted functions")
		for _, name := range comp.Deleted {
			p.println(name + " ()")
		}
	}
	if len(comp.Changed) > 0 {
		p.heading(p.st.modified, "Modified functions")
		for _, name := range comp.Changed {
			p.println(p.st.name.Render(name + " ()"))
			p.diff(comp.Initial[name], comp.Final[name], "", 3)
		}
	}
}

func (p *printer) options(c snapshot.Category, comp envdiff.Component[string]) {
	if comp.Empty() {
		return
	}
	p.banner(c)
	for _, name := range comp.Changed {
		p.printf("%s: %s -> %s\n", name, comp.Initial[name], comp.Final[name])
	}
	for _, name := range comp.New {
		p.printf("%s: (unset) -> %s\n", name, comp.Final[name])
	}
	for _, name := range comp.Deleted {
		p.printf("%s: %s -> (unset)\n", name, comp.Initial[name])
	}
}

func (p *printer) traps(comp envdiff.Component[string]) {
	if comp.Empty() {
		return
	}
	p.banner(snapshot.Traps)
	if len(comp.New) > 0 {
		p.heading(p.st.added, "New traps")
		for _, name := range comp.New {
			p.printf("%s: %s\n", name, comp.Final[name])
		}
	}
	if len(comp.Deleted) > 0 {
		p.heading(p.st.removed, "Deleted traps")
		for _, name := range comp.Deleted {
			p.println(name)
		}
	}
	if len(comp.Changed) > 0 {
		p.heading(p.st.modified, "Modified traps")
		for _, name := range comp.Changed {
			p.println(p.st.name.Render("trap on " + name))
			p.diff(strings.Split(comp.Initial[name], "\n"), strings.Split(comp.Final[name], "\n"), "    ", 3)
		}
	}
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if glob.Glob(pattern, name) {
			return true
		}
	}
	return false
}
