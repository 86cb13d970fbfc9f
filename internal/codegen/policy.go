package codegen

import (
	"regexp"
	"strings"
)

// Bookkeeping prefixes used by the env-diff shell helpers.
const (
	ReservedVarPrefix = "_env_diff_"
)

var ReservedFuncPrefixes = []string{"_env-diff", "env-diff"}

// DefaultProtected lists names bash manages itself. Some are read-only and
// would abort the sourced script, the rest are meaningless to replay.
var DefaultProtected = []string{
	"EPOCHSECONDS",
	"SECONDS",
	"EPOCHREALTIME",
	"COLUMNS",
	"LINES",
	"RANDOM",
	"HISTCMD",
	"BASHPID",
	"SRANDOM",

	"BASH_SOURCE",
	"BASH_LINENO",
	"BASH_ARGC",
	"BASH_ARGV",
	"BASH_CMDS",
	"FUNCNAME",

	"PS1",

	"BASHOPTS",
	"EUID",
	"PPID",
	"SHELLOPTS",
	"UID",
	"BASH_VERSINFO",
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Policy decides which names never get statements.
type Policy struct {
	Protected    map[string]struct{}
	VarPrefixes  []string
	FuncPrefixes []string
}

// DefaultPolicy protects DefaultProtected and the env-diff bookkeeping
// prefixes.
func DefaultPolicy() Policy {
	return NewPolicy(DefaultProtected, []string{ReservedVarPrefix}, ReservedFuncPrefixes)
}

// NewPolicy builds a Policy from explicit name and prefix lists. The slices
// are copied.
func NewPolicy(protected, varPrefixes, funcPrefixes []string) Policy {
	p := Policy{
		Protected:    make(map[string]struct{}, len(protected)),
		VarPrefixes:  append([]string(nil), varPrefixes...),
		FuncPrefixes: append([]string(nil), funcPrefixes...),
	}
	for _, name := range protected {
		p.Protected[name] = struct{}{}
	}
	return p
}

// With returns a copy of p that also protects names.
func (p Policy) With(names ...string) Policy {
	protected := make([]string, 0, len(p.Protected)+len(names))
	for name := range p.Protected {
		protected = append(protected, name)
	}
	protected = append(protected, names...)
	return NewPolicy(protected, p.VarPrefixes, p.FuncPrefixes)
}

// SkipVar reports whether no statement may reference the variable or array.
func (p Policy) SkipVar(name string) bool {
	if _, ok := p.Protected[name]; ok {
		return true
	}
	return hasAnyPrefix(name, p.VarPrefixes)
}

// SkipFunc reports whether no statement may reference the function.
func (p Policy) SkipFunc(name string) bool {
	return hasAnyPrefix(name, p.FuncPrefixes)
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// IsIdentifier reports whether name can be assigned to in bash.
func IsIdentifier(name string) bool {
	return identifierRe.MatchString(name)
}
