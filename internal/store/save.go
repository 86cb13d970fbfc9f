package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alchemmist/env-diff/internal/snapshot"
)

// Save writes snap to dir in the layout env-diff-save produces.
func Save(dir string, snap snapshot.Snapshot) error {
	if err := os.MkdirAll(filepath.Join(dir, snapshot.FunctionsDir), defaultDirPerm); err != nil {
		return err
	}

	jsonFiles := []struct {
		name string
		v    any
	}{
		{snapshot.EnvVarsFile, orEmpty(snap.EnvVars)},
		{snapshot.ShellVarsFile, orEmpty(snap.ShellVars)},
		{snapshot.AssocArraysFile, orEmpty(snap.AssocArrays)},
		{snapshot.NormalArraysFile, orEmpty(snap.NormalArrays)},
		{snapshot.TrapsFile, orEmpty(snap.Traps)},
	}
	for _, f := range jsonFiles {
		if err := writeJSONAtomic(filepath.Join(dir, f.name), f.v); err != nil {
			return err
		}
	}

	if err := writeOptions(filepath.Join(dir, snapshot.ShoptFile), snap.Shopt); err != nil {
		return err
	}
	if err := writeOptions(filepath.Join(dir, snapshot.SetOptionsFile), snap.SetOptions); err != nil {
		return err
	}

	names := sortedKeys(snap.Functions)
	for _, name := range names {
		var b strings.Builder
		fmt.Fprintf(&b, "%s () \n", name)
		for _, line := range snap.Functions[name] {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		path := filepath.Join(dir, snapshot.FunctionsDir, snapshot.FuncFilePrefix+name)
		if err := writeFileAtomic(path, []byte(b.String())); err != nil {
			return err
		}
	}
	var list strings.Builder
	for _, name := range names {
		list.WriteString(name)
		list.WriteByte('\n')
	}
	return writeFileAtomic(filepath.Join(dir, snapshot.FuncNamesFile), []byte(list.String()))
}

func writeOptions(path string, opts map[string]string) error {
	var b strings.Builder
	for _, name := range sortedKeys(opts) {
		fmt.Fprintf(&b, "%s %s\n", name, opts[name])
	}
	return writeFileAtomic(path, []byte(b.String()))
}

func orEmpty[V any](m map[string]V) map[string]V {
	if m == nil {
		return map[string]V{}
	}
	return m
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeJSONAtomic(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, append(b, '\n'))
}

func writeFileAtomic(path string, b []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, defaultFilePerm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
