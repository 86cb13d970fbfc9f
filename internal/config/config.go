package config

import (
	"github.com/alchemmist/env-diff/internal/codegen"
	"github.com/alchemmist/env-diff/internal/store"
)

const DataDirEnv = "ENV_DIFF_DATA_DIR"

type Config struct {
	DataDir    string        `mapstructure:"data_dir" yaml:"data_dir"`
	ColonLists []string      `mapstructure:"colon_lists" yaml:"colon_lists"`
	SpaceLists []string      `mapstructure:"space_lists" yaml:"space_lists"`
	Ignore     IgnoreConfig  `mapstructure:"ignore" yaml:"ignore"`
	Codegen    CodegenConfig `mapstructure:"codegen" yaml:"codegen"`
}

// IgnoreConfig holds glob patterns of names left out of the modified lists of
// the compare report.
type IgnoreConfig struct {
	Variables    []string `mapstructure:"variables" yaml:"variables"`
	NormalArrays []string `mapstructure:"normal_arrays" yaml:"normal_arrays"`
	AssocArrays  []string `mapstructure:"assoc_arrays" yaml:"assoc_arrays"`
}

type CodegenConfig struct {
	// Protected names are never referenced by generated code, in addition
	// to the built in list.
	Protected    []string `mapstructure:"protected" yaml:"protected"`
	TrapRemovals bool     `mapstructure:"trap_removals" yaml:"trap_removals"`
}

func Default() Config {
	return Config{
		DataDir:    store.DefaultDataDir(),
		ColonLists: []string{"PATH"},
		SpaceLists: []string{},
		Ignore: IgnoreConfig{
			Variables: []string{
				"BASHPID",
				"BASH_SUBSHELL",
				"EPOCHREALTIME",
				"EPOCHSECONDS",
				"RANDOM",
				"SRANDOM",
				"SECONDS",
			},
			NormalArrays: []string{"BASH_LINENO"},
			AssocArrays:  []string{"BASH_CMDS"},
		},
		Codegen: CodegenConfig{
			Protected:    []string{},
			TrapRemovals: true,
		},
	}
}

// CodegenOptions returns the generator options the configuration asks for.
func (c Config) CodegenOptions() codegen.Options {
	opts := codegen.DefaultOptions()
	opts.Policy = opts.Policy.With(c.Codegen.Protected...)
	opts.TrapRemovals = c.Codegen.TrapRemovals
	return opts
}
