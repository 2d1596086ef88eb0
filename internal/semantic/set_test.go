package semantic

import (
	"reflect"
	"testing"
)

func TestStringSetDiff(t *testing.T) {
	a := NewStringSet("x", "y", "z")
	b := NewStringSet("y")

	added := a.Diff(b)
	if !added.Has("x") || !added.Has("z") || added.Has("y") {
		t.Errorf("unexpected diff result: %v", added)
	}
	if got := b.Diff(a).Len(); got != 0 {
		t.Errorf("expected empty diff, got %d members", got)
	}
}

func TestStringSetEqualAndNilZeroValue(t *testing.T) {
	var empty StringSet
	if !empty.Equal(NewStringSet()) {
		t.Error("nil set should equal empty set")
	}
	if empty.Has("anything") {
		t.Error("nil set should contain nothing")
	}

	s := empty.Add("a")
	if !s.Has("a") {
		t.Error("Add on nil set should allocate")
	}
}

func TestStringSetSorted(t *testing.T) {
	s := NewStringSet("c", "a", "b")
	if got := s.Sorted(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("expected sorted slice, got %v", got)
	}
}

func TestCountMapChangedKeys(t *testing.T) {
	before := CountMap{"if": 2, "for": 1}
	after := CountMap{"if": 2, "for": 3, "while": 1}

	keys := before.ChangedKeys(after)
	if !reflect.DeepEqual(keys, []string{"for", "while"}) {
		t.Errorf("unexpected changed keys: %v", keys)
	}
	if before.Equal(after) {
		t.Error("maps with different counts should not be equal")
	}
	if !before.Equal(CountMap{"if": 2, "for": 1}) {
		t.Error("identical maps should be equal")
	}
}

func TestCountMapIncrement(t *testing.T) {
	var m CountMap
	m = m.Increment("if", 2)
	m = m.Increment("if", 1)
	m = m.Increment("for", 0)

	if m["if"] != 3 {
		t.Errorf("expected 3 occurrences of if, got %d", m["if"])
	}
	if _, ok := m["for"]; ok {
		t.Error("zero increments should not materialize a key")
	}
}

func TestCountMapSum(t *testing.T) {
	m := CountMap{"a": 2, "b": 3}
	if m.Sum() != 5 {
		t.Errorf("expected sum 5, got %d", m.Sum())
	}
	var nilMap CountMap
	if nilMap.Sum() != 0 {
		t.Error("nil map should sum to zero")
	}
}
