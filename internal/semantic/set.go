package semantic

import "sort"

// StringSet is the comparison unit for most node attributes. The zero value
// (nil) behaves as the empty set, so missing attributes default deterministically.
type StringSet map[string]bool

func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		if v != "" {
			s[v] = true
		}
	}
	return s
}

func (s StringSet) Add(value string) StringSet {
	if value == "" {
		return s
	}
	if s == nil {
		s = make(StringSet)
	}
	s[value] = true
	return s
}

func (s StringSet) Has(value string) bool {
	return s[value]
}

func (s StringSet) Len() int {
	return len(s)
}

// Diff returns the members of s that are absent from other.
func (s StringSet) Diff(other StringSet) StringSet {
	out := make(StringSet)
	for v := range s {
		if !other[v] {
			out[v] = true
		}
	}
	return out
}

func (s StringSet) Equal(other StringSet) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if !other[v] {
			return false
		}
	}
	return true
}

func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// CountMap tracks per-kind occurrence counts (control flow, comprehensions).
type CountMap map[string]int

func (m CountMap) Sum() int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

func (m CountMap) Equal(other CountMap) bool {
	for k, v := range m {
		if other[k] != v {
			return false
		}
	}
	for k, v := range other {
		if m[k] != v {
			return false
		}
	}
	return true
}

// ChangedKeys returns the sorted union of keys whose counts differ.
func (m CountMap) ChangedKeys(other CountMap) []string {
	seen := make(map[string]bool)
	for k := range m {
		if m[k] != other[k] {
			seen[k] = true
		}
	}
	for k := range other {
		if m[k] != other[k] {
			seen[k] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Increment adds n occurrences of key, allocating on first use so callers
// can accumulate into a nil map.
func (m CountMap) Increment(key string, n int) CountMap {
	if n == 0 {
		return m
	}
	if m == nil {
		m = make(CountMap)
	}
	m[key] += n
	return m
}
