package locks

import (
	"sort"
	"strings"
)

// Set is an unordered collection of locks.
type Set map[Lock]struct{}

// NewSet creates a set from the given locks.
func NewSet(ls ...Lock) Set {
	s := make(Set, len(ls))
	for _, l := range ls {
		s[l] = struct{}{}
	}
	return s
}

// Contains returns whether the set contains the given lock.
func (s Set) Contains(l Lock) bool {
	_, ok := s[l]
	return ok
}

// Intersects returns whether the two sets share at least one lock.
func (s Set) Intersects(other Set) bool {
	// iterate over the smaller set
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for l := range small {
		if _, ok := large[l]; ok {
			return true
		}
	}
	return false
}

// String returns the locks as a sorted, comma-separated list. Used for
// diagnostic log output only.
func (s Set) String() string {
	names := make([]string, 0, len(s))
	for l := range s {
		names = append(names, string(l))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// Conflicts implements the classic readers/writers rule for two declared
// intent pairs: a write conflicts with any other access to the same lock,
// while two reads never conflict.
func Conflicts(reads, writes, otherReads, otherWrites Set) bool {
	return writes.Intersects(otherWrites) ||
		writes.Intersects(otherReads) ||
		reads.Intersects(otherWrites)
}
