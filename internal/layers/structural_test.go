package layers

import (
	"strings"
	"testing"

	"semdiff/internal/semantic"
)

func eventTypes(events []semantic.Event) map[semantic.EventType]int {
	out := make(map[semantic.EventType]int)
	for _, e := range events {
		out[e.Type]++
	}
	return out
}

func findEvent(events []semantic.Event, t semantic.EventType) *semantic.Event {
	for i := range events {
		if events[i].Type == t {
			return &events[i]
		}
	}
	return nil
}

func TestStructuralFileAdded(t *testing.T) {
	layer := &Structural{}
	events := layer.Diff(DiffContext{
		Path:      "pkg/new.py",
		AfterText: "def hello():\n    pass\n",
		AfterNodes: semantic.NodeMap{
			"func:hello": semantic.NewNode(semantic.KindFunction, "hello", semantic.Attributes{}),
		},
	})

	types := eventTypes(events)
	if types[semantic.EventFileAdded] != 1 {
		t.Errorf("expected one file_added, got %v", types)
	}
	if types[semantic.EventNodeAdded] != 1 {
		t.Errorf("expected one node_added, got %v", types)
	}
}

func TestStructuralFileRemoved(t *testing.T) {
	layer := &Structural{}
	events := layer.Diff(DiffContext{
		Path:       "pkg/old.py",
		BeforeText: "def bye():\n    pass\n",
		BeforeNodes: semantic.NodeMap{
			"func:bye": semantic.NewNode(semantic.KindFunction, "bye", semantic.Attributes{}),
		},
	})

	types := eventTypes(events)
	if types[semantic.EventFileRemoved] != 1 {
		t.Errorf("expected one file_removed, got %v", types)
	}
	if types[semantic.EventNodeRemoved] != 1 {
		t.Errorf("expected one node_removed, got %v", types)
	}
}

func TestStructuralDependencyEventsListFullSet(t *testing.T) {
	layer := &Structural{}
	events := layer.Diff(DiffContext{
		Path:       "app.py",
		BeforeText: "import os",
		AfterText:  "import json\nimport sys",
		BeforeDeps: semantic.NewStringSet("os"),
		AfterDeps:  semantic.NewStringSet("json", "sys"),
	})

	added := findEvent(events, semantic.EventDependencyAdded)
	if added == nil {
		t.Fatal("expected dependency_added")
	}
	if !strings.Contains(added.Details, "json") || !strings.Contains(added.Details, "sys") {
		t.Errorf("added event should list the full set: %s", added.Details)
	}

	removed := findEvent(events, semantic.EventDependencyRemoved)
	if removed == nil {
		t.Fatal("expected dependency_removed")
	}
	if !strings.Contains(removed.Details, "os") {
		t.Errorf("removed event should mention os: %s", removed.Details)
	}
}

// Renames surface as one removal plus one addition over the id union.
func TestStructuralAddRemoveMirrorSymmetry(t *testing.T) {
	layer := &Structural{}
	before := semantic.NodeMap{
		"func:old": semantic.NewNode(semantic.KindFunction, "old", semantic.Attributes{}),
	}
	after := semantic.NodeMap{
		"func:new": semantic.NewNode(semantic.KindFunction, "new", semantic.Attributes{}),
	}

	forward := layer.Diff(DiffContext{
		Path: "m.py", BeforeText: "a", AfterText: "b",
		BeforeNodes: before, AfterNodes: after,
	})
	backward := layer.Diff(DiffContext{
		Path: "m.py", BeforeText: "b", AfterText: "a",
		BeforeNodes: after, AfterNodes: before,
	})

	ft, bt := eventTypes(forward), eventTypes(backward)
	if ft[semantic.EventNodeAdded] != 1 || ft[semantic.EventNodeRemoved] != 1 {
		t.Errorf("forward diff should have one added and one removed: %v", ft)
	}
	if ft[semantic.EventNodeAdded] != bt[semantic.EventNodeRemoved] ||
		ft[semantic.EventNodeRemoved] != bt[semantic.EventNodeAdded] {
		t.Errorf("reversed diff should mirror: forward=%v backward=%v", ft, bt)
	}
}

func TestStructuralDeterministicConfidence(t *testing.T) {
	layer := &Structural{}
	events := layer.Diff(DiffContext{
		Path:      "x.py",
		AfterText: "def f():\n    pass\n",
		AfterNodes: semantic.NodeMap{
			"func:f": semantic.NewNode(semantic.KindFunction, "f", semantic.Attributes{}),
		},
	})
	for _, e := range events {
		if e.Confidence != 1.0 {
			t.Errorf("deterministic layer events must carry confidence 1.0, got %f", e.Confidence)
		}
		if e.Layer != semantic.LayerStructural {
			t.Errorf("unexpected layer tag: %s", e.Layer)
		}
		if e.ID == "" {
			t.Error("events must carry a unique id")
		}
	}
}
