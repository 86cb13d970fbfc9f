package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"pkt.systems/pslog"

	"github.com/alchemmist/env-diff/internal/codegen"
	"github.com/alchemmist/env-diff/internal/config"
	"github.com/alchemmist/env-diff/internal/envdiff"
	"github.com/alchemmist/env-diff/internal/report"
	"github.com/alchemmist/env-diff/internal/snapshot"
	"github.com/alchemmist/env-diff/internal/store"
)

// LatestAlias names the most recently captured snapshot in the store.
const LatestAlias = "last"

var ErrNoSnapshots = errors.New("no saved snapshots found")

type App struct {
	cfg   config.Config
	store *store.Store
	gen   *codegen.Generator
}

// CompareOptions are the per invocation switches of the compare report.
type CompareOptions struct {
	ListDiff bool
	NoIgnore bool
}

func New(cfg config.Config) *App {
	return &App{
		cfg:   cfg,
		store: store.New(cfg.DataDir),
		gen:   codegen.New(cfg.CodegenOptions()),
	}
}

// Diff loads the two snapshots named by initial and final and diffs them.
func (a *App) Diff(ctx context.Context, initial, final string) (*envdiff.Diff, error) {
	before, err := a.load(ctx, initial)
	if err != nil {
		return nil, err
	}
	after, err := a.load(ctx, final)
	if err != nil {
		return nil, err
	}
	return envdiff.New(before, after), nil
}

func (a *App) load(ctx context.Context, arg string) (snapshot.Snapshot, error) {
	dir, err := a.resolve(arg)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	pslog.Ctx(ctx).Debug("loading snapshot", "arg", arg, "dir", dir)
	return store.Load(dir)
}

// resolve maps a snapshot argument to a directory. LatestAlias picks the
// newest snapshot in the store.
func (a *App) resolve(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("empty snapshot argument")
	}
	if arg == LatestAlias {
		if fi, err := os.Stat(arg); err == nil && fi.IsDir() {
			return arg, nil
		}
		rec, err := a.store.LatestRecord()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", ErrNoSnapshots
			}
			return "", err
		}
		return rec.Dir, nil
	}
	return a.store.Resolve(arg), nil
}

// Generate writes the bash code that turns the initial environment into the
// final one.
func (a *App) Generate(ctx context.Context, initial, final string, w io.Writer) error {
	d, err := a.Diff(ctx, initial, final)
	if err != nil {
		return err
	}
	return a.gen.Generate(ctx, w, d)
}

// Compare writes a human readable report of the differences.
func (a *App) Compare(ctx context.Context, initial, final string, w io.Writer, opts CompareOptions) error {
	d, err := a.Diff(ctx, initial, final)
	if err != nil {
		return err
	}
	return report.Render(w, d, a.reportOptions(opts))
}

func (a *App) reportOptions(opts CompareOptions) report.Options {
	return report.Options{
		ColonLists:         a.cfg.ColonLists,
		SpaceLists:         a.cfg.SpaceLists,
		IgnoreVariables:    a.cfg.Ignore.Variables,
		IgnoreNormalArrays: a.cfg.Ignore.NormalArrays,
		IgnoreAssocArrays:  a.cfg.Ignore.AssocArrays,
		ListDiff:           opts.ListDiff,
		NoIgnore:           opts.NoIgnore,
	}
}

// ListSnapshots returns the saved snapshots, newest first.
func (a *App) ListSnapshots() ([]snapshot.Record, error) {
	return a.store.ListRecords()
}

// Import copies the snapshot directory dir into the store under name.
func (a *App) Import(ctx context.Context, name, dir string) (string, error) {
	snap, err := store.Load(dir)
	if err != nil {
		return "", err
	}
	path, err := a.store.SaveSnapshot(name, snap)
	if err != nil {
		return "", err
	}
	pslog.Ctx(ctx).Info("snapshot imported", "name", name, "dir", path)
	return path, nil
}

// Browse lets the user pick one change interactively and prints its before
// and after values to w.
func (a *App) Browse(ctx context.Context, initial, final string, useFZF bool, w io.Writer) error {
	d, err := a.Diff(ctx, initial, final)
	if err != nil {
		return err
	}
	entries := Entries(d)
	if len(entries) == 0 {
		return fmt.Errorf("no differences found")
	}
	var picked Entry
	if useFZF {
		picked, err = chooseEntryFZF(entries)
	} else {
		picked, err = chooseEntry(entries)
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, picked.Detail())
	return err
}
