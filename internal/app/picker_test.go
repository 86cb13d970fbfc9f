package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alchemmist/env-diff/internal/envdiff"
	"github.com/alchemmist/env-diff/internal/snapshot"
)

func sampleEntries() []Entry {
	return []Entry{
		{Category: snapshot.EnvVars, Change: Modified, Name: "PATH", Before: "/bin", After: "/opt/bin:/bin"},
		{Category: snapshot.ShellVars, Change: Added, Name: "counter", After: "1"},
		{Category: snapshot.Functions, Change: Removed, Name: "greet", Before: "{ \n    echo hi\n}"},
	}
}

func TestEntriesOrder(t *testing.T) {
	d := envdiff.New(beforeSnapshot(), afterSnapshot())
	got := Entries(d)

	var names []string
	for _, e := range got {
		names = append(names, string(e.Change)+":"+e.Name)
	}
	want := "new:NEW changed:EDITOR changed:PATH new:MY_TOKEN changed:RANDOM deleted:greet"
	if strings.Join(names, " ") != want {
		t.Fatalf("unexpected entries: %v", names)
	}
	if got[5].Before != "{ \n    echo hi\n}" {
		t.Fatalf("unexpected function body %q", got[5].Before)
	}
}

func TestEntrySummaryAndDetail(t *testing.T) {
	e := sampleEntries()[2]
	if got := e.Summary(); got != `{ \n    echo hi\n}` {
		t.Fatalf("unexpected summary %q", got)
	}
	want := "greet (functions, deleted)\nbefore:\n    { \n        echo hi\n    }\n"
	if got := e.Detail(); got != want {
		t.Fatalf("unexpected detail %q", got)
	}
}

func TestFuzzyScore(t *testing.T) {
	if _, ok := fuzzyScore("pth", "path environment variables"); !ok {
		t.Fatal("expected subsequence match")
	}
	if _, ok := fuzzyScore("xyz", "path"); ok {
		t.Fatal("expected no match")
	}
	contiguous, _ := fuzzyScore("path", "path")
	scattered, _ := fuzzyScore("path", "p-a-t-h")
	if contiguous <= scattered {
		t.Fatalf("expected contiguous match to score higher: %d <= %d", contiguous, scattered)
	}
}

func TestTrim(t *testing.T) {
	if got := trim("abcdef", 10); got != "abcdef" {
		t.Fatalf("unexpected %q", got)
	}
	if got := trim("abcdef", 5); got != "ab..." {
		t.Fatalf("unexpected %q", got)
	}
	if got := trim("abcdef", 2); got != "ab" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestPickerFilterAndSelect(t *testing.T) {
	m := newPickerModel(sampleEntries())
	if len(m.visible) != 3 {
		t.Fatalf("expected all rows visible, got %d", len(m.visible))
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("greet")})
	m = next.(pickerModel)
	if len(m.visible) != 1 || m.visible[0].entry.Name != "greet" {
		t.Fatalf("unexpected filter result: %#v", m.visible)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(pickerModel)
	if m.selected != 2 {
		t.Fatalf("expected entry 2 selected, got %d", m.selected)
	}
}

func TestPickerChangeMarkerFilters(t *testing.T) {
	m := newPickerModel(sampleEntries())
	for query, want := range map[string]string{"~": "PATH", "+": "counter", "- gr": "greet"} {
		m.queryInput.SetValue(query)
		m.applyFilter()
		if len(m.visible) != 1 || m.visible[0].entry.Name != want {
			t.Fatalf("query %q: unexpected rows %#v", query, m.visible)
		}
	}
}

func TestEntryScorePrefersNameMatch(t *testing.T) {
	byName, ok := entryScore("fun", Entry{Category: snapshot.Functions, Change: Added, Name: "fun_x"})
	if !ok {
		t.Fatal("expected name match")
	}
	byCategory, ok := entryScore("fun", Entry{Category: snapshot.Functions, Change: Added, Name: "greet"})
	if !ok {
		t.Fatal("expected category match")
	}
	if byName <= byCategory {
		t.Fatalf("expected name match to rank higher: %d <= %d", byName, byCategory)
	}
}

func TestPickerViewShowsCountsAndValues(t *testing.T) {
	m := newPickerModel(sampleEntries())
	view := m.View()
	if !strings.Contains(view, "1 new  1 deleted  1 changed") {
		t.Fatalf("missing counts:\n%s", view)
	}
	if got := valueColumn(sampleEntries()[0]); got != "/bin -> /opt/bin:/bin" {
		t.Fatalf("unexpected value column %q", got)
	}
	if got := valueColumn(sampleEntries()[2]); got != `{ \n    echo hi\n}` {
		t.Fatalf("unexpected value column %q", got)
	}
}

func TestPickerNoMatch(t *testing.T) {
	m := newPickerModel(sampleEntries())
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("zzz")})
	m = next.(pickerModel)
	if !strings.Contains(m.View(), "No changes match query") {
		t.Fatalf("unexpected view:\n%s", m.View())
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if next.(pickerModel).selected != -1 {
		t.Fatal("expected nothing selected")
	}
}

func TestPickerCancel(t *testing.T) {
	m := newPickerModel(sampleEntries())
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !next.(pickerModel).cancelled {
		t.Fatal("expected cancel")
	}
}

func TestPickerResize(t *testing.T) {
	m := newPickerModel(sampleEntries())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m = next.(pickerModel)
	if w := m.table.Columns()[3].Width; w != 54 {
		t.Fatalf("expected value column width 54, got %d", w)
	}
}

func TestChooseEntryFZFSuccess(t *testing.T) {
	t.Setenv("PATH", withFakeFZF(t, "#!/bin/sh\nprintf '1\tSHELL VARIABLES\tnew\tcounter\t1\n'\n")+":"+os.Getenv("PATH"))

	selected, err := chooseEntryFZF(sampleEntries())
	if err != nil {
		t.Fatalf("chooseEntryFZF: %v", err)
	}
	if selected.Name != "counter" {
		t.Fatalf("expected counter, got %q", selected.Name)
	}
}

func TestChooseEntryFZFEmptySelection(t *testing.T) {
	t.Setenv("PATH", withFakeFZF(t, "#!/bin/sh\nexit 0\n")+":"+os.Getenv("PATH"))

	_, err := chooseEntryFZF(sampleEntries())
	if err == nil {
		t.Fatal("expected error for empty selection")
	}
	if !strings.Contains(err.Error(), "no entry selected") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestChooseEntryFZFCommandFailure(t *testing.T) {
	t.Setenv("PATH", withFakeFZF(t, "#!/bin/sh\nexit 130\n")+":"+os.Getenv("PATH"))

	_, err := chooseEntryFZF(sampleEntries())
	if err == nil {
		t.Fatal("expected command failure error")
	}
	if !strings.Contains(err.Error(), "fzf selection canceled or failed") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestChooseEntryFZFInvalidOutput(t *testing.T) {
	t.Setenv("PATH", withFakeFZF(t, "#!/bin/sh\nprintf '9\tx\n'\n")+":"+os.Getenv("PATH"))

	if _, err := chooseEntryFZF(sampleEntries()); err == nil {
		t.Fatal("expected error for out of range index")
	}
}

func withFakeFZF(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fzf")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake fzf: %v", err)
	}
	return dir
}
