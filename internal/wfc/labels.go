package wfc

import (
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// LabelSet is a set of connection labels.
type LabelSet = mapset.Set[string]

// NewLabelSet creates a set holding the given labels.
func NewLabelSet(labels ...string) LabelSet {
	return mapset.Of(labels...)
}

// copyLabels returns an independent copy of s.
func copyLabels(s LabelSet) LabelSet {
	out := mapset.New[string]()
	s.Each(func(l string) {
		out.Put(l)
	})
	return out
}

// labelsEqual reports set equality.
func labelsEqual(a, b LabelSet) bool {
	if a.Size() != b.Size() {
		return false
	}
	equal := true
	a.Each(func(l string) {
		if !b.Has(l) {
			equal = false
		}
	})
	return equal
}

// labelsOverlap reports whether a and b share at least one label.
func labelsOverlap(a, b LabelSet) bool {
	small, large := a, b
	if small.Size() > large.Size() {
		small, large = large, small
	}
	found := false
	small.Each(func(l string) {
		if !found && large.Has(l) {
			found = true
		}
	})
	return found
}

// SortedLabels returns the members of s in lexical order.
func SortedLabels(s LabelSet) []string {
	out := make([]string, 0, s.Size())
	s.Each(func(l string) {
		out = append(out, l)
	})
	sort.Strings(out)
	return out
}

// Compatibility maps a connection label to the labels it may face across an
// edge. The mapping is directed; it is not made symmetric on load.
type Compatibility map[string]LabelSet

// NewCompatibility builds a table from plain label lists.
func NewCompatibility(table map[string][]string) Compatibility {
	c := make(Compatibility, len(table))
	for label, allowed := range table {
		c[label] = NewLabelSet(allowed...)
	}
	return c
}

// Labels returns every label that has an entry in the table. Edges start out
// offering this full set on both sides.
func (c Compatibility) Labels() LabelSet {
	all := mapset.New[string]()
	for label := range c {
		all.Put(label)
	}
	return all
}

// Allows reports whether label may face any label in offered. A label with no
// entry in the table is compatible with nothing.
func (c Compatibility) Allows(label string, offered LabelSet) bool {
	allowed, ok := c[label]
	if !ok {
		return false
	}
	return labelsOverlap(allowed, offered)
}

// CanConnect reports whether a single pair of labels may face each other.
func (c Compatibility) CanConnect(label, other string) bool {
	allowed, ok := c[label]
	if !ok {
		return false
	}
	return allowed.Has(other)
}
