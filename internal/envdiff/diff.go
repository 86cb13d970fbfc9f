package envdiff

import (
	"slices"

	"github.com/alchemmist/env-diff/internal/snapshot"
)

// Diff holds the differences between two snapshots for every category. It is
// built once and only read afterwards.
type Diff struct {
	EnvVars      Component[string]
	ShellVars    Component[string]
	NormalArrays Component[map[string]string]
	AssocArrays  Component[map[string]string]
	Functions    Component[[]string]
	Shopt        Component[string]
	SetOptions   Component[string]
	Traps        Component[string]
}

func New(initial, final snapshot.Snapshot) *Diff {
	return &Diff{
		EnvVars:      CompareStrings(initial.EnvVars, final.EnvVars),
		ShellVars:    CompareStrings(initial.ShellVars, final.ShellVars),
		NormalArrays: CompareArrays(initial.NormalArrays, final.NormalArrays),
		AssocArrays:  CompareArrays(initial.AssocArrays, final.AssocArrays),
		Functions:    CompareFunctions(initial.Functions, final.Functions),
		Shopt:        CompareStrings(initial.Shopt, final.Shopt),
		SetOptions:   CompareStrings(initial.SetOptions, final.SetOptions),
		Traps:        CompareStrings(initial.Traps, final.Traps),
	}
}

// Component returns the value independent view of one category.
func (d *Diff) Component(c snapshot.Category) Changes {
	switch c {
	case snapshot.EnvVars:
		return d.EnvVars
	case snapshot.ShellVars:
		return d.ShellVars
	case snapshot.NormalArrays:
		return d.NormalArrays
	case snapshot.AssocArrays:
		return d.AssocArrays
	case snapshot.Functions:
		return d.Functions
	case snapshot.Shopt:
		return d.Shopt
	case snapshot.SetOptions:
		return d.SetOptions
	case snapshot.Traps:
		return d.Traps
	}
	return nil
}

// Empty reports whether the two snapshots are equal in every category.
func (d *Diff) Empty() bool {
	for _, c := range snapshot.Categories {
		if !d.Component(c).Empty() {
			return false
		}
	}
	return true
}

// Moved reports whether name, deleted from category from, reappears as a new
// name in another variable category. Functions, options and traps never move.
func (d *Diff) Moved(from snapshot.Category, name string) bool {
	if !slices.Contains(snapshot.VariableCategories, from) {
		return false
	}
	for _, c := range snapshot.VariableCategories {
		if c == from {
			continue
		}
		if d.Component(c).IsNew(name) {
			return true
		}
	}
	return false
}

// PriorCategory returns the variable category name was deleted from, if any.
func (d *Diff) PriorCategory(name string) (snapshot.Category, bool) {
	for _, c := range snapshot.VariableCategories {
		if d.Component(c).IsDeleted(name) {
			return c, true
		}
	}
	return "", false
}
