package codegen

import (
	"slices"
	"sort"
	"strconv"

	"github.com/alchemmist/env-diff/internal/envdiff"
	"github.com/alchemmist/env-diff/internal/snapshot"
)

// handler emits the statements of one category. A nil action means the
// category has nothing to say for that kind of change.
type handler struct {
	category snapshot.Category
	changes  func(d *envdiff.Diff) envdiff.Changes
	skip     func(p Policy, name string) string

	labels  [3]string // deleted, new, changed
	merge   bool      // new and changed names form one sorted run
	open    func(e *emitter)
	deleted func(e *emitter, name string)
	created func(e *emitter, name string)
	changed func(e *emitter, name string)
	close   func(e *emitter)
}

var handlers = []handler{
	{
		category: snapshot.EnvVars,
		changes:  func(d *envdiff.Diff) envdiff.Changes { return d.EnvVars },
		skip:     skipVar,
		labels:   [3]string{"Deleted env vars", "New env vars", "Changed env vars"},
		deleted: func(e *emitter, name string) {
			if e.diff.Moved(snapshot.EnvVars, name) {
				e.comment("variable " + name + " is in another section, don't unset, just unexport")
				e.line("export -n %s", name)
				return
			}
			e.unset(name)
		},
		created: func(e *emitter, name string) {
			e.resetShape(name, snapshot.EnvVars)
			e.line("export %s=%s", name, quote(e.diff.EnvVars.Final[name]))
		},
		changed: func(e *emitter, name string) {
			e.line("export %s=%s", name, quote(e.diff.EnvVars.Final[name]))
		},
	},
	{
		category: snapshot.ShellVars,
		changes:  func(d *envdiff.Diff) envdiff.Changes { return d.ShellVars },
		skip:     skipVar,
		labels:   [3]string{"Deleted variables", "New variables", "Changed variables"},
		deleted: func(e *emitter, name string) {
			if e.diff.Moved(snapshot.ShellVars, name) {
				return
			}
			e.unset(name)
		},
		created: func(e *emitter, name string) {
			value := e.diff.ShellVars.Final[name]
			if e.diff.EnvVars.IsDeleted(name) && e.diff.EnvVars.Initial[name] == value {
				e.comment("variable " + name + " was unexported above, value unchanged")
				return
			}
			e.resetShape(name, snapshot.ShellVars)
			e.line("%s=%s", name, quote(value))
		},
		changed: func(e *emitter, name string) {
			e.line("%s=%s", name, quote(e.diff.ShellVars.Final[name]))
		},
	},
	arrayHandler(snapshot.NormalArrays, func(d *envdiff.Diff) *envdiff.Component[map[string]string] { return &d.NormalArrays }),
	arrayHandler(snapshot.AssocArrays, func(d *envdiff.Diff) *envdiff.Component[map[string]string] { return &d.AssocArrays }),
	{
		category: snapshot.Functions,
		changes:  func(d *envdiff.Diff) envdiff.Changes { return d.Functions },
		skip: func(p Policy, name string) string {
			if p.SkipFunc(name) {
				return "reserved function"
			}
			return ""
		},
		labels: [3]string{"Deleted functions", "New functions", "Changed functions"},
		open: func(e *emitter) {
			e.comment("Option expand_aliases must be off for function part\nin case the name of the function is an alias")
			e.line("shopt -u %s", expandAliases)
		},
		deleted: func(e *emitter, name string) {
			e.line("unset -f %s", name)
		},
		created: func(e *emitter, name string) {
			e.comment("Setting function " + name)
			e.function(name)
		},
		changed: func(e *emitter, name string) {
			e.function(name)
		},
		close: func(e *emitter) {
			shopt := e.diff.Shopt
			if shopt.Final[expandAliases] == snapshot.On && !slices.Contains(shopt.Changed, expandAliases) {
				e.line("shopt -s %s", expandAliases)
			}
		},
	},
	optionHandler(snapshot.Shopt, "shopt -s %s", "shopt -u %s", func(d *envdiff.Diff) *envdiff.Component[string] { return &d.Shopt }),
	optionHandler(snapshot.SetOptions, "shopt -so %s", "shopt -uo %s", func(d *envdiff.Diff) *envdiff.Component[string] { return &d.SetOptions }),
	{
		category: snapshot.Traps,
		changes:  func(d *envdiff.Diff) envdiff.Changes { return d.Traps },
		labels:   [3]string{"Deleted traps", "Set traps", ""},
		merge:    true,
		deleted: func(e *emitter, name string) {
			e.line("trap - %s", name)
		},
		created: func(e *emitter, name string) {
			e.line("trap -- %s %s", quote(e.diff.Traps.Final[name]), name)
		},
	},
}

func arrayHandler(c snapshot.Category, component func(d *envdiff.Diff) *envdiff.Component[map[string]string]) handler {
	declare := "declare -ga %s"
	if c == snapshot.AssocArrays {
		declare = "declare -gA %s"
	}
	return handler{
		category: c,
		changes:  func(d *envdiff.Diff) envdiff.Changes { return *component(d) },
		skip:     skipVar,
		labels:   [3]string{"Deleted arrays", "New arrays", "Changed arrays"},
		deleted: func(e *emitter, name string) {
			if e.diff.Moved(c, name) {
				return
			}
			if name == aliasTable {
				for _, key := range e.sortedKeys(c, component(e.diff).Initial[name]) {
					e.line("unalias %s", quote(key))
				}
				return
			}
			e.unset(name)
		},
		created: func(e *emitter, name string) {
			if name != aliasTable {
				e.resetShape(name, c)
			}
			e.line(declare, name)
			value := component(e.diff).Final[name]
			for _, key := range e.sortedKeys(c, value) {
				e.element(c, name, key, value[key])
			}
		},
		changed: func(e *emitter, name string) {
			comp := component(e.diff)
			keys := envdiff.CompareStrings(comp.Initial[name], comp.Final[name])
			set := append(append([]string{}, keys.New...), keys.Changed...)
			set = e.orderKeys(c, set)
			for _, key := range set {
				e.element(c, name, key, keys.Final[key])
			}
			removed := e.orderKeys(c, keys.Deleted)
			for _, key := range removed {
				if name == aliasTable {
					e.line("unalias %s", quote(key))
					continue
				}
				e.unsetElement(c, name, key)
			}
			if c == snapshot.AssocArrays && name != aliasTable && len(removed) > 0 {
				e.unset(keyVar)
			}
		},
	}
}

func optionHandler(c snapshot.Category, on, off string, component func(d *envdiff.Diff) *envdiff.Component[string]) handler {
	return handler{
		category: c,
		changes:  func(d *envdiff.Diff) envdiff.Changes { return *component(d) },
		labels:   [3]string{"", "", "Changed options"},
		changed: func(e *emitter, name string) {
			switch component(e.diff).Final[name] {
			case snapshot.On:
				e.line(on, name)
			case snapshot.Off:
				e.line(off, name)
			default:
				e.log.Debug("codegen skipping option with unknown value", "category", c, "name", name)
			}
		},
	}
}

func skipVar(p Policy, name string) string {
	if !IsIdentifier(name) {
		return "not an identifier"
	}
	if p.SkipVar(name) {
		return "protected variable"
	}
	return ""
}

// element assigns one array element. Indexed subscripts are written as
// numbers, associative keys are quoted.
func (e *emitter) element(c snapshot.Category, name, key, value string) {
	if c == snapshot.NormalArrays {
		e.line("%s[%s]=%s", name, key, quote(value))
		return
	}
	e.line("%s[%s]=%s", name, quote(key), quote(value))
}

// unsetElement removes one array element. unset expands the subscript
// again after quote removal, so an associative key is passed through keyVar
// and expanded exactly once.
func (e *emitter) unsetElement(c snapshot.Category, name, key string) {
	if c == snapshot.NormalArrays {
		e.line("unset -v %s", quote(name+"["+key+"]"))
		return
	}
	e.line("%s=%s", keyVar, quote(key))
	e.line("unset -v %s", quote(name+"[$"+keyVar+"]"))
}

func (e *emitter) function(name string) {
	e.line("%s () ", name)
	for _, l := range e.diff.Functions.Final[name] {
		e.line("%s", l)
	}
}

func (e *emitter) sortedKeys(c snapshot.Category, m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return e.orderKeys(c, keys)
}

// orderKeys sorts keys in place. Indexed array subscripts that are not
// numbers are dropped since bash would evaluate them arithmetically.
func (e *emitter) orderKeys(c snapshot.Category, keys []string) []string {
	if c != snapshot.NormalArrays {
		sort.Strings(keys)
		return keys
	}
	out := keys[:0]
	for _, k := range keys {
		if _, err := strconv.ParseUint(k, 10, 64); err != nil {
			e.log.Debug("codegen skipping non numeric index", "index", k)
			continue
		}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.ParseUint(out[i], 10, 64)
		b, _ := strconv.ParseUint(out[j], 10, 64)
		return a < b
	})
	return out
}
