// Package codegen renders an environment diff as bash code that, when
// sourced into a session equal to the initial snapshot, reproduces the final
// one.
//
// A name that leaves one variable category and shows up in another is not
// unset and set again. An environment variable that becomes a plain shell
// variable is unexported, and any other migration lets the new category's
// statements establish the final state.
package codegen

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"pkt.systems/pslog"

	"github.com/alchemmist/env-diff/internal/envdiff"
	"github.com/alchemmist/env-diff/internal/snapshot"
)

const (
	bannerWidth   = 80
	expandAliases = "expand_aliases"
	aliasTable    = "BASH_ALIASES"

	// keyVar holds an associative key while its element is unset.
	keyVar = ReservedVarPrefix + "key"
)

// Options configures a Generator.
type Options struct {
	Policy Policy
	// TrapRemovals emits "trap - SIG" for traps that exist only in the
	// initial snapshot.
	TrapRemovals bool
}

// DefaultOptions protects the built in names and emits trap removals.
func DefaultOptions() Options {
	return Options{Policy: DefaultPolicy(), TrapRemovals: true}
}

// Generator turns diffs into bash scripts. It holds no per call state and
// may be reused.
type Generator struct {
	opts Options
}

// New returns a Generator using opts.
func New(opts Options) *Generator {
	return &Generator{opts: opts}
}

// Generate writes the script for d to w. Nothing is written unless the whole
// script was rendered.
func (g *Generator) Generate(ctx context.Context, w io.Writer, d *envdiff.Diff) error {
	e := &emitter{
		diff: d,
		opts: g.opts,
		log:  pslog.Ctx(ctx),
	}
	e.comment("Apply environment changes")
	for _, h := range handlers {
		if h.category == snapshot.Traps && !g.opts.TrapRemovals {
			h.deleted = nil
		}
		e.section(h)
	}
	_, err := io.WriteString(w, e.out.String())
	return err
}

// emitter accumulates statements for one Generate call.
type emitter struct {
	diff *envdiff.Diff
	opts Options
	log  pslog.Logger
	out  strings.Builder
}

func (e *emitter) line(format string, args ...any) {
	fmt.Fprintf(&e.out, format, args...)
	e.out.WriteByte('\n')
}

func (e *emitter) comment(text string) {
	for _, l := range strings.Split(text, "\n") {
		e.line("# %s", l)
	}
}

func (e *emitter) box(title string) {
	e.out.WriteByte('\n')
	e.line("%s", strings.Repeat("#", bannerWidth))
	e.comment(title)
	e.line("%s", strings.Repeat("#", bannerWidth))
}

func (e *emitter) section(h handler) {
	e.box(h.category.Title())
	changes := h.changes(e.diff)

	var deleted, created, changed []string
	if h.deleted != nil {
		deleted = e.keep(h, changes.DeletedNames())
	}
	if h.created != nil {
		created = e.keep(h, changes.NewNames())
	}
	if h.changed != nil || h.merge {
		changed = e.keep(h, changes.ChangedNames())
	}
	if len(deleted)+len(created)+len(changed) == 0 {
		return
	}

	if h.merge {
		created = mergeSorted(created, changed)
		changed = nil
	}

	if h.open != nil {
		h.open(e)
	}
	e.run(h.labels[0], deleted, h.deleted)
	e.run(h.labels[1], created, h.created)
	e.run(h.labels[2], changed, h.changed)
	if h.close != nil {
		h.close(e)
	}
}

func (e *emitter) run(label string, names []string, emit func(e *emitter, name string)) {
	if len(names) == 0 {
		return
	}
	if label != "" {
		e.comment(label)
	}
	for _, name := range names {
		emit(e, name)
	}
}

// keep filters out names the policy protects or that bash cannot assign to.
func (e *emitter) keep(h handler, names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if h.skip != nil {
			if reason := h.skip(e.opts.Policy, name); reason != "" {
				e.log.Debug("codegen skipping name", "category", h.category, "name", name, "reason", reason)
				continue
			}
		}
		out = append(out, name)
	}
	return out
}

// resetShape unsets name before it is recreated in category to when its old
// category stored a different shape of value. Assigning a scalar to an array
// only replaces element 0 and declare -A refuses to convert an indexed array.
func (e *emitter) resetShape(name string, to snapshot.Category) {
	from, ok := e.diff.PriorCategory(name)
	if !ok || from == to {
		return
	}
	if !from.IsArray() && !to.IsArray() {
		return
	}
	e.comment(fmt.Sprintf("%s was in %s", name, strings.ToLower(from.Title())))
	e.unset(name)
}

func (e *emitter) unset(name string) {
	e.line("unset -v %s", name)
}

func mergeSorted(a, b []string) []string {
	out := append(append(make([]string, 0, len(a)+len(b)), a...), b...)
	sort.Strings(out)
	return out
}

func quote(s string) string {
	return shellescape.Quote(s)
}
