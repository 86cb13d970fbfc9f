package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/alchemmist/env-diff/internal/snapshot"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644
)

// Store is a directory holding named snapshot directories.
type Store struct {
	baseDir string
	mu      sync.Mutex
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func DefaultDataDir() string {
	if v := strings.TrimSpace(os.Getenv("ENV_DIFF_DATA_DIR")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".env-diff"
	}
	return filepath.Join(home, ".local", "share", "env-diff")
}

// Resolve maps a command line argument to a snapshot directory. Existing
// directories win; otherwise the argument names a snapshot in the store.
func (s *Store) Resolve(arg string) string {
	if fi, err := os.Stat(arg); err == nil && fi.IsDir() {
		return arg
	}
	candidate := s.snapshotPath(arg)
	if fi, err := os.Stat(candidate); err == nil && fi.IsDir() {
		return candidate
	}
	return arg
}

// SaveSnapshot writes snap under the store using name as directory name.
func (s *Store) SaveSnapshot(name string, snap snapshot.Snapshot) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("empty snapshot name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.snapshotPath(name)
	if err := Save(dir, snap); err != nil {
		return "", err
	}
	return dir, nil
}

func (s *Store) ListRecords() ([]snapshot.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	records := make([]snapshot.Record, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(s.baseDir, e.Name())
		fi, err := os.Stat(filepath.Join(dir, snapshot.EnvVarsFile))
		if err != nil {
			continue
		}
		snap, err := Load(dir)
		if err != nil {
			continue
		}
		records = append(records, snapshot.Record{
			Name:       e.Name(),
			Dir:        dir,
			CapturedAt: fi.ModTime().UTC(),
			Vars:       len(snap.EnvVars) + len(snap.ShellVars) + len(snap.NormalArrays) + len(snap.AssocArrays),
			Functions:  len(snap.Functions),
		})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CapturedAt.Equal(records[j].CapturedAt) {
			return records[i].Name < records[j].Name
		}
		return records[i].CapturedAt.After(records[j].CapturedAt)
	})
	return records, nil
}

func (s *Store) LatestRecord() (snapshot.Record, error) {
	recs, err := s.ListRecords()
	if err != nil {
		return snapshot.Record{}, err
	}
	if len(recs) == 0 {
		return snapshot.Record{}, os.ErrNotExist
	}
	return recs[0], nil
}

func (s *Store) snapshotPath(name string) string {
	return filepath.Join(s.baseDir, sanitizeName(name))
}

func sanitizeName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_")
	out := replacer.Replace(strings.TrimSpace(name))
	if out == "" || out == "." || out == ".." {
		return "snapshot"
	}
	return out
}
