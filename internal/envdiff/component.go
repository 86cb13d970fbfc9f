// Package envdiff computes the differences between two shell environment
// snapshots, one component per snapshot category.
package envdiff

import (
	"maps"
	"slices"
	"sort"
)

// Component is the difference between the initial and final values of one
// category. All name slices are sorted.
type Component[V any] struct {
	Initial map[string]V
	Final   map[string]V
	New     []string
	Deleted []string
	Common  []string
	Changed []string
}

// Compare diffs two mappings of the same category. equal decides whether a
// common name changed.
func Compare[V any](initial, final map[string]V, equal func(a, b V) bool) Component[V] {
	c := Component[V]{
		Initial: initial,
		Final:   final,
		New:     []string{},
		Deleted: []string{},
		Common:  []string{},
		Changed: []string{},
	}
	if c.Initial == nil {
		c.Initial = map[string]V{}
	}
	if c.Final == nil {
		c.Final = map[string]V{}
	}
	for name, fv := range c.Final {
		iv, ok := c.Initial[name]
		if !ok {
			c.New = append(c.New, name)
			continue
		}
		c.Common = append(c.Common, name)
		if !equal(iv, fv) {
			c.Changed = append(c.Changed, name)
		}
	}
	for name := range c.Initial {
		if _, ok := c.Final[name]; !ok {
			c.Deleted = append(c.Deleted, name)
		}
	}
	sort.Strings(c.New)
	sort.Strings(c.Deleted)
	sort.Strings(c.Common)
	sort.Strings(c.Changed)
	return c
}

// CompareStrings diffs scalar valued categories.
func CompareStrings(initial, final map[string]string) Component[string] {
	return Compare(initial, final, func(a, b string) bool { return a == b })
}

// CompareArrays diffs array valued categories with deep equality.
func CompareArrays(initial, final map[string]map[string]string) Component[map[string]string] {
	return Compare(initial, final, func(a, b map[string]string) bool { return maps.Equal(a, b) })
}

// CompareFunctions diffs function bodies line by line.
func CompareFunctions(initial, final map[string][]string) Component[[]string] {
	return Compare(initial, final, func(a, b []string) bool { return slices.Equal(a, b) })
}

// Empty reports whether nothing was added, deleted or changed.
func (c Component[V]) Empty() bool {
	return len(c.New) == 0 && len(c.Deleted) == 0 && len(c.Changed) == 0
}

// IsNew reports whether name only exists in the final snapshot.
func (c Component[V]) IsNew(name string) bool {
	_, inInitial := c.Initial[name]
	_, inFinal := c.Final[name]
	return inFinal && !inInitial
}

// IsDeleted reports whether name only exists in the initial snapshot.
func (c Component[V]) IsDeleted(name string) bool {
	_, inInitial := c.Initial[name]
	_, inFinal := c.Final[name]
	return inInitial && !inFinal
}

// NewNames returns the sorted names only present in the final snapshot.
func (c Component[V]) NewNames() []string { return c.New }

// DeletedNames returns the sorted names only present in the initial snapshot.
func (c Component[V]) DeletedNames() []string { return c.Deleted }

// ChangedNames returns the sorted common names whose values differ.
func (c Component[V]) ChangedNames() []string { return c.Changed }

// Changes is the value independent view of a Component.
type Changes interface {
	NewNames() []string
	DeletedNames() []string
	ChangedNames() []string
	IsNew(name string) bool
	IsDeleted(name string) bool
	Empty() bool
}
