package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath returns ~/.config/env-diff.yml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", "env-diff.yml"), nil
}

// Load reads configuration from path. If path is empty, uses
// DefaultConfigPath. A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("colon_lists", cfg.ColonLists)
	v.SetDefault("space_lists", cfg.SpaceLists)
	v.SetDefault("ignore.variables", cfg.Ignore.Variables)
	v.SetDefault("ignore.normal_arrays", cfg.Ignore.NormalArrays)
	v.SetDefault("ignore.assoc_arrays", cfg.Ignore.AssocArrays)
	v.SetDefault("codegen.protected", cfg.Codegen.Protected)
	v.SetDefault("codegen.trap_removals", cfg.Codegen.TrapRemovals)
	if err := v.BindEnv("data_dir", DataDirEnv); err != nil {
		return Config{}, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.DataDir = expandPath(cfg.DataDir)
	if strings.TrimSpace(cfg.DataDir) == "" {
		return Config{}, fmt.Errorf("data_dir must not be empty")
	}
	return cfg, nil
}

// WriteDefault writes the default configuration to path. An existing file is
// left alone.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config %s already exists", path)
	}
	raw, err := Marshal(Default())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}

func Marshal(cfg Config) ([]byte, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return raw, nil
}

func expandPath(value string) string {
	if value == "" {
		return value
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			value = filepath.Join(home, strings.TrimPrefix(value, "~"))
		}
	}
	return os.ExpandEnv(value)
}
