package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/alchemmist/env-diff/internal/snapshot"
)

// signatureLines is the number of leading lines of a function file that hold
// the "name () " header printed by declare -f. The body starts at "{".
const signatureLines = 1

// MissingFileError reports a snapshot directory, or a file inside one, that
// does not exist.
type MissingFileError struct {
	Dir  string
	File string
}

func (e *MissingFileError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("no saved environment at '%s'", e.Dir)
	}
	return fmt.Sprintf("directory '%s' does not appear to be a saved environment: missing '%s'", e.Dir, e.File)
}

func (e *MissingFileError) Unwrap() error {
	return os.ErrNotExist
}

// Load reads the snapshot saved in dir. Either every file is read or an error
// is returned; a partial snapshot is never handed out.
func Load(dir string) (snapshot.Snapshot, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return snapshot.Snapshot{}, &MissingFileError{Dir: dir}
		}
		return snapshot.Snapshot{}, err
	}
	if !fi.IsDir() {
		return snapshot.Snapshot{}, fmt.Errorf("snapshot path %s is not a directory", dir)
	}

	out := snapshot.New()
	out.Dir = dir
	if err := readJSON(dir, snapshot.EnvVarsFile, &out.EnvVars); err != nil {
		return snapshot.Snapshot{}, err
	}
	if err := readJSON(dir, snapshot.ShellVarsFile, &out.ShellVars); err != nil {
		return snapshot.Snapshot{}, err
	}
	if err := readJSON(dir, snapshot.AssocArraysFile, &out.AssocArrays); err != nil {
		return snapshot.Snapshot{}, err
	}
	if err := readJSON(dir, snapshot.NormalArraysFile, &out.NormalArrays); err != nil {
		return snapshot.Snapshot{}, err
	}
	if out.Shopt, err = readOptions(dir, snapshot.ShoptFile); err != nil {
		return snapshot.Snapshot{}, err
	}
	if out.SetOptions, err = readOptions(dir, snapshot.SetOptionsFile); err != nil {
		return snapshot.Snapshot{}, err
	}
	if out.Functions, err = readFunctions(dir); err != nil {
		return snapshot.Snapshot{}, err
	}
	if err := readJSON(dir, snapshot.TrapsFile, &out.Traps); err != nil {
		return snapshot.Snapshot{}, err
	}
	return out, nil
}

func readFile(dir, name string) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &MissingFileError{Dir: dir, File: name}
		}
		return nil, err
	}
	return b, nil
}

func readJSON[T any](dir, name string, v *T) error {
	b, err := readFile(dir, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return errors.Wrapf(err, "decoding %s", filepath.Join(dir, name))
	}
	return nil
}

func readOptions(dir, name string) (map[string]string, error) {
	b, err := readFile(dir, name)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	for i, line := range splitLines(string(b)) {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, errors.Errorf("decoding %s: line %d: expected '<name> <value>', got %q", filepath.Join(dir, name), i+1, line)
		}
		out[fields[0]] = fields[1]
	}
	return out, nil
}

func readFunctions(dir string) (map[string][]string, error) {
	b, err := readFile(dir, snapshot.FuncNamesFile)
	if err != nil {
		return nil, err
	}
	out := map[string][]string{}
	for i, name := range splitLines(string(b)) {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return nil, errors.Errorf("decoding %s: line %d: invalid function name %q", filepath.Join(dir, snapshot.FuncNamesFile), i+1, name)
		}
		src, err := readFunctionFile(dir, name)
		if err != nil {
			return nil, err
		}
		lines := splitLines(string(src))
		if len(lines) > signatureLines {
			lines = lines[signatureLines:]
		} else {
			lines = []string{}
		}
		out[name] = lines
	}
	return out, nil
}

func readFunctionFile(dir, name string) ([]byte, error) {
	primary := filepath.Join(snapshot.FunctionsDir, snapshot.FuncFilePrefix+name)
	b, err := readFile(dir, primary)
	if err == nil {
		return b, nil
	}
	var missing *MissingFileError
	if !errors.As(err, &missing) {
		return nil, err
	}
	legacy := filepath.Join(snapshot.FunctionsDir, snapshot.LegacyFuncFilePrefix+name+snapshot.LegacyFuncFileSuffix)
	if b, lerr := readFile(dir, legacy); lerr == nil {
		return b, nil
	}
	return nil, err
}

// splitLines splits on newlines without producing a trailing empty line for
// newline terminated input.
func splitLines(in string) []string {
	in = strings.TrimSuffix(in, "\n")
	if in == "" {
		return nil
	}
	lines := strings.Split(in, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
