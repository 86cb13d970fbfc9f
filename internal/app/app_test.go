package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alchemmist/env-diff/internal/config"
	"github.com/alchemmist/env-diff/internal/snapshot"
	"github.com/alchemmist/env-diff/internal/store"
)

func testApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	return New(cfg)
}

func beforeSnapshot() snapshot.Snapshot {
	s := snapshot.New()
	s.EnvVars["EDITOR"] = "vi"
	s.EnvVars["PATH"] = "/usr/bin"
	s.ShellVars["RANDOM"] = "1"
	s.Functions["greet"] = []string{"{ ", "    echo hi", "}"}
	return s
}

func afterSnapshot() snapshot.Snapshot {
	s := snapshot.New()
	s.EnvVars["EDITOR"] = "nvim"
	s.EnvVars["PATH"] = "/opt/bin:/usr/bin"
	s.EnvVars["NEW"] = "1"
	s.ShellVars["RANDOM"] = "2"
	s.ShellVars["MY_TOKEN"] = "secret"
	return s
}

func saveDirs(t *testing.T) (string, string) {
	t.Helper()
	base := t.TempDir()
	before := filepath.Join(base, "before")
	after := filepath.Join(base, "after")
	if err := store.Save(before, beforeSnapshot()); err != nil {
		t.Fatalf("save before: %v", err)
	}
	if err := store.Save(after, afterSnapshot()); err != nil {
		t.Fatalf("save after: %v", err)
	}
	return before, after
}

func TestGenerateWritesScript(t *testing.T) {
	a := testApp(t)
	before, after := saveDirs(t)

	var out bytes.Buffer
	if err := a.Generate(context.Background(), before, after, &out); err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, want := range []string{
		"export NEW=1\n",
		"export EDITOR=nvim\n",
		"MY_TOKEN=secret\n",
		"unset -f greet\n",
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestGenerateHonorsConfiguredProtectedNames(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Codegen.Protected = []string{"MY_TOKEN"}
	a := New(cfg)
	before, after := saveDirs(t)

	var out bytes.Buffer
	if err := a.Generate(context.Background(), before, after, &out); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if strings.Contains(out.String(), "MY_TOKEN") {
		t.Fatalf("protected name leaked into output:\n%s", out.String())
	}
}

func TestGenerateMissingSnapshot(t *testing.T) {
	a := testApp(t)
	_, after := saveDirs(t)

	var out bytes.Buffer
	err := a.Generate(context.Background(), filepath.Join(t.TempDir(), "nope"), after, &out)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestCompareUsesConfiguredLists(t *testing.T) {
	a := testApp(t)
	before, after := saveDirs(t)

	var out bytes.Buffer
	if err := a.Compare(context.Background(), before, after, &out, CompareOptions{}); err != nil {
		t.Fatalf("compare: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "PATH (colon-separated list using set comparison)") {
		t.Fatalf("expected PATH set comparison:\n%s", got)
	}
	if strings.Contains(got, "RANDOM") {
		t.Fatalf("expected RANDOM to be ignored:\n%s", got)
	}

	out.Reset()
	if err := a.Compare(context.Background(), before, after, &out, CompareOptions{NoIgnore: true}); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !strings.Contains(out.String(), "RANDOM:") {
		t.Fatalf("expected RANDOM with --no-ignore:\n%s", out.String())
	}
}

func TestResolveByStoreName(t *testing.T) {
	a := testApp(t)
	if _, err := a.store.SaveSnapshot("morning", beforeSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	_, after := saveDirs(t)

	var out bytes.Buffer
	if err := a.Generate(context.Background(), "morning", after, &out); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out.String(), "export NEW=1") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestResolveLatestAlias(t *testing.T) {
	a := testApp(t)
	oldDir, err := a.store.SaveSnapshot("old", beforeSnapshot())
	if err != nil {
		t.Fatalf("save old: %v", err)
	}
	newDir, err := a.store.SaveSnapshot("new", afterSnapshot())
	if err != nil {
		t.Fatalf("save new: %v", err)
	}
	old := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	if err := os.Chtimes(filepath.Join(oldDir, snapshot.EnvVarsFile), old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	dir, err := a.resolve(LatestAlias)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if dir != newDir {
		t.Fatalf("expected %q, got %q", newDir, dir)
	}
}

func TestResolveLatestWithoutSnapshots(t *testing.T) {
	a := testApp(t)
	if _, err := a.resolve(LatestAlias); !errors.Is(err, ErrNoSnapshots) {
		t.Fatalf("expected ErrNoSnapshots, got %v", err)
	}
	if _, err := a.resolve("  "); err == nil {
		t.Fatal("expected error for empty argument")
	}
}

func TestImportAndList(t *testing.T) {
	a := testApp(t)
	before, _ := saveDirs(t)

	recs, err := a.ListSnapshots()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty store, got %#v", recs)
	}

	path, err := a.Import(context.Background(), "baseline", before)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if filepath.Base(path) != "baseline" {
		t.Fatalf("unexpected import path %q", path)
	}
	recs, err = a.ListSnapshots()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 || recs[0].Name != "baseline" || recs[0].Functions != 1 {
		t.Fatalf("unexpected records %#v", recs)
	}

	if _, err := a.Import(context.Background(), "broken", t.TempDir()); err == nil {
		t.Fatal("expected error importing a directory that is not a snapshot")
	}
}

func TestBrowseWithFZF(t *testing.T) {
	t.Setenv("PATH", withFakeFZF(t, "#!/bin/sh\nwhile IFS= read -r line; do\n  case \"$line\" in\n    *EDITOR*) printf '%s\\n' \"$line\" ;;\n  esac\ndone\n")+":"+os.Getenv("PATH"))
	a := testApp(t)
	before, after := saveDirs(t)

	var out bytes.Buffer
	if err := a.Browse(context.Background(), before, after, true, &out); err != nil {
		t.Fatalf("browse: %v", err)
	}
	want := "EDITOR (environment variables, changed)\nbefore:\n    vi\nafter:\n    nvim\n"
	if out.String() != want {
		t.Fatalf("unexpected detail:\n%q\nwant\n%q", out.String(), want)
	}
}

func TestBrowseWithoutDifferences(t *testing.T) {
	a := testApp(t)
	before, _ := saveDirs(t)

	var out bytes.Buffer
	err := a.Browse(context.Background(), before, before, true, &out)
	if err == nil || !strings.Contains(err.Error(), "no differences found") {
		t.Fatalf("expected no differences error, got %v", err)
	}
}
