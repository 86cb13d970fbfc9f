package envdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemmist/env-diff/internal/snapshot"
)

func TestCompareStrings(t *testing.T) {
	c := CompareStrings(
		map[string]string{"A": "1", "B": "2", "C": "3"},
		map[string]string{"B": "2", "C": "4", "D": "5"},
	)
	assert.Equal(t, []string{"D"}, c.New)
	assert.Equal(t, []string{"A"}, c.Deleted)
	assert.Equal(t, []string{"B", "C"}, c.Common)
	assert.Equal(t, []string{"C"}, c.Changed)
	assert.False(t, c.Empty())
	assert.True(t, c.IsNew("D"))
	assert.True(t, c.IsDeleted("A"))
	assert.False(t, c.IsNew("B"))
}

func TestCompareSortsNames(t *testing.T) {
	c := CompareStrings(nil, map[string]string{"zeta": "", "alpha": "", "Mid": ""})
	assert.Equal(t, []string{"Mid", "alpha", "zeta"}, c.New)
	assert.NotNil(t, c.Initial)
}

func TestCompareArraysDeepEquality(t *testing.T) {
	c := CompareArrays(
		map[string]map[string]string{"X": {"0": "a"}, "Y": {"k": "v"}},
		map[string]map[string]string{"X": {"0": "a"}, "Y": {"k": "w"}},
	)
	assert.Equal(t, []string{"Y"}, c.Changed)
}

func TestCompareFunctionsLineByLine(t *testing.T) {
	c := CompareFunctions(
		map[string][]string{"f": {"{ ", "    a", "}"}, "g": {"{ ", "}"}},
		map[string][]string{"f": {"{ ", "    b", "}"}, "g": {"{ ", "}"}},
	)
	assert.Equal(t, []string{"f"}, c.Changed)
}

func testSnapshot() snapshot.Snapshot {
	s := snapshot.New()
	s.EnvVars["HOME"] = "/home/me"
	s.ShellVars["x"] = "1"
	s.NormalArrays["arr"] = map[string]string{"0": "a", "3": "b"}
	s.AssocArrays["BASH_ALIASES"] = map[string]string{"ll": "ls -l"}
	s.Functions["f"] = []string{"{ ", "    :", "}"}
	s.Shopt["expand_aliases"] = snapshot.On
	s.SetOptions["errexit"] = snapshot.Off
	s.Traps["EXIT"] = "echo bye"
	return s
}

func TestDiffOfEqualSnapshotsIsEmpty(t *testing.T) {
	d := New(testSnapshot(), testSnapshot())
	require.True(t, d.Empty())
	for _, c := range snapshot.Categories {
		comp := d.Component(c)
		require.NotNil(t, comp, c)
		assert.Empty(t, comp.NewNames(), c)
		assert.Empty(t, comp.DeletedNames(), c)
		assert.Empty(t, comp.ChangedNames(), c)
	}
}

func TestMovedEnvToShellVar(t *testing.T) {
	before := snapshot.New()
	before.EnvVars["FOO"] = "1"
	after := snapshot.New()
	after.ShellVars["FOO"] = "1"

	d := New(before, after)
	assert.True(t, d.Moved(snapshot.EnvVars, "FOO"))
	assert.False(t, d.Moved(snapshot.ShellVars, "FOO"))

	prior, ok := d.PriorCategory("FOO")
	require.True(t, ok)
	assert.Equal(t, snapshot.EnvVars, prior)
}

func TestMovedBetweenArrayKinds(t *testing.T) {
	before := snapshot.New()
	before.NormalArrays["A"] = map[string]string{"0": "x"}
	after := snapshot.New()
	after.AssocArrays["A"] = map[string]string{"k": "x"}

	d := New(before, after)
	assert.True(t, d.Moved(snapshot.NormalArrays, "A"))
	assert.Empty(t, d.AssocArrays.Changed)
	assert.Equal(t, []string{"A"}, d.AssocArrays.New)
}

func TestNotMovedWhenSimplyDeleted(t *testing.T) {
	before := snapshot.New()
	before.EnvVars["GONE"] = "1"
	d := New(before, snapshot.New())
	assert.False(t, d.Moved(snapshot.EnvVars, "GONE"))
}

func TestFunctionsOptionsAndTrapsNeverMove(t *testing.T) {
	before := snapshot.New()
	before.Functions["n"] = []string{"{ ", "}"}
	before.Traps["n"] = "x"
	after := snapshot.New()
	after.ShellVars["n"] = "1"

	d := New(before, after)
	assert.False(t, d.Moved(snapshot.Functions, "n"))
	assert.False(t, d.Moved(snapshot.Traps, "n"))
	_, ok := d.PriorCategory("n")
	assert.False(t, ok)
}
