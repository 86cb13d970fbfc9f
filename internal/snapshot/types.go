package snapshot

import "time"

// Files written by env-diff-save into a snapshot directory.
const (
	EnvVarsFile      = "env_vars.json"
	ShellVarsFile    = "shell_vars.json"
	AssocArraysFile  = "assoc_arrays.json"
	NormalArraysFile = "normal_arrays.json"
	ShoptFile        = "shopt.txt"
	SetOptionsFile   = "shopt_set.txt"
	FuncNamesFile    = "func_names.txt"
	TrapsFile        = "traps.json"
	FunctionsDir     = "functions"
	FuncFilePrefix   = "FUNC_"

	// LegacyFuncFilePrefix and LegacyFuncFileSuffix name function files
	// written by older versions of the capture helper.
	LegacyFuncFilePrefix = "BASH_FUNC_"
	LegacyFuncFileSuffix = ".bash"
)

// Toggle option values.
const (
	On  = "on"
	Off = "off"
)

// Category identifies one component of the shell environment.
type Category string

const (
	EnvVars      Category = "env_vars"
	ShellVars    Category = "shell_vars"
	NormalArrays Category = "normal_arrays"
	AssocArrays  Category = "assoc_arrays"
	Functions    Category = "functions"
	Shopt        Category = "shopt"
	SetOptions   Category = "shopt_set"
	Traps        Category = "traps"
)

// Categories lists every category in emission order.
var Categories = []Category{EnvVars, ShellVars, NormalArrays, AssocArrays, Functions, Shopt, SetOptions, Traps}

// VariableCategories are the mutually exclusive categories a name can
// migrate between.
var VariableCategories = []Category{EnvVars, ShellVars, NormalArrays, AssocArrays}

// Title returns the human readable section name.
func (c Category) Title() string {
	switch c {
	case EnvVars:
		return "ENVIRONMENT VARIABLES"
	case ShellVars:
		return "SHELL VARIABLES"
	case NormalArrays:
		return "NORMAL ARRAYS"
	case AssocArrays:
		return "ASSOC ARRAYS"
	case Functions:
		return "FUNCTIONS"
	case Shopt:
		return "SHOPT OPTIONS"
	case SetOptions:
		return "SET OPTIONS"
	case Traps:
		return "TRAPS"
	default:
		return string(c)
	}
}

// IsArray reports whether values of the category are arrays.
func (c Category) IsArray() bool {
	return c == NormalArrays || c == AssocArrays
}

// Snapshot is the saved state of one shell session.
type Snapshot struct {
	Dir          string
	EnvVars      map[string]string
	ShellVars    map[string]string
	NormalArrays map[string]map[string]string
	AssocArrays  map[string]map[string]string
	Functions    map[string][]string
	Shopt        map[string]string
	SetOptions   map[string]string
	Traps        map[string]string
}

// New returns an empty snapshot with every map allocated.
func New() Snapshot {
	return Snapshot{
		EnvVars:      map[string]string{},
		ShellVars:    map[string]string{},
		NormalArrays: map[string]map[string]string{},
		AssocArrays:  map[string]map[string]string{},
		Functions:    map[string][]string{},
		Shopt:        map[string]string{},
		SetOptions:   map[string]string{},
		Traps:        map[string]string{},
	}
}

// Record describes a saved snapshot directory in the data dir.
type Record struct {
	Name       string
	Dir        string
	CapturedAt time.Time
	Vars       int
	Functions  int
}
