package layers

import (
	"strings"
	"testing"

	"semdiff/internal/semantic"
)

func TestBehavioralComplexityDirection(t *testing.T) {
	layer := &Behavioral{}
	before := semantic.NewNode(semantic.KindFunction, "f", semantic.Attributes{
		Source: "v1", ControlFlow: semantic.CountMap{"if": 1}, ReturnStatements: 1,
	})
	after := semantic.NewNode(semantic.KindFunction, "f", semantic.Attributes{
		Source: "v2", ControlFlow: semantic.CountMap{"if": 3, "for": 1}, ReturnStatements: 2,
	})

	ev := findEvent(layer.Diff(pairContext(before, after)), semantic.EventFunctionComplexityChanged)
	if ev == nil {
		t.Fatal("expected function_complexity_changed")
	}
	if !strings.Contains(ev.Details, "increased") {
		t.Errorf("expected increased direction: %s", ev.Details)
	}

	ev = findEvent(layer.Diff(pairContext(after, before)), semantic.EventFunctionComplexityChanged)
	if ev == nil || !strings.Contains(ev.Details, "decreased") {
		t.Errorf("reversed diff should report decreased: %v", ev)
	}
}

func TestBehavioralFunctionalTransitions(t *testing.T) {
	layer := &Behavioral{}
	plain := semantic.NewNode(semantic.KindFunction, "f", semantic.Attributes{Source: "v1"})
	functional := semantic.NewNode(semantic.KindFunction, "f", semantic.Attributes{
		Source: "v2", LambdaFunctions: 1, FPPatterns: semantic.CountMap{"map": 2},
	})

	adopted := layer.Diff(pairContext(plain, functional))
	if findEvent(adopted, semantic.EventFunctionalProgrammingAdopted) == nil {
		t.Error("expected functional_programming_adopted")
	}

	removed := layer.Diff(pairContext(functional, plain))
	if findEvent(removed, semantic.EventFunctionalProgrammingRemoved) == nil {
		t.Error("expected functional_programming_removed")
	}

	more := semantic.NewNode(semantic.KindFunction, "f", semantic.Attributes{
		Source: "v3", LambdaFunctions: 3, FPPatterns: semantic.CountMap{"map": 2},
	})
	changed := layer.Diff(pairContext(functional, more))
	if findEvent(changed, semantic.EventFunctionalProgrammingChanged) == nil {
		t.Error("expected functional_programming_changed")
	}
}

func TestBehavioralFileWideFunctionalAggregate(t *testing.T) {
	layer := &Behavioral{}

	// Two functions each gain a lambda without changing their own snippet, so
	// per-node checks are short-circuited; only the file aggregate moves.
	module := semantic.NewNode(semantic.KindModule, "m", semantic.Attributes{})
	beforeA := semantic.NewNode(semantic.KindFunction, "a", semantic.Attributes{Source: "same-a"})
	beforeB := semantic.NewNode(semantic.KindFunction, "b", semantic.Attributes{Source: "same-b"})
	afterA := semantic.NewNode(semantic.KindFunction, "a", semantic.Attributes{Source: "same-a", LambdaFunctions: 1})
	afterB := semantic.NewNode(semantic.KindFunction, "b", semantic.Attributes{Source: "same-b", LambdaFunctions: 1})

	events := layer.Diff(DiffContext{
		Path:        "m.js",
		BeforeText:  "v1",
		AfterText:   "v2",
		BeforeNodes: semantic.NodeMap{beforeA.ID: beforeA, beforeB.ID: beforeB, module.ID: module},
		AfterNodes:  semantic.NodeMap{afterA.ID: afterA, afterB.ID: afterB, module.ID: module},
	})

	ev := findEvent(events, semantic.EventFunctionalProgrammingAdopted)
	if ev == nil {
		t.Fatal("expected file-wide functional_programming_adopted")
	}
	if !strings.Contains(ev.Details, "file") {
		t.Errorf("aggregate event should be tagged file scope: %s", ev.Details)
	}
	if ev.NodeID != module.ID {
		t.Errorf("aggregate event should attach to the module node, got %s", ev.NodeID)
	}
}

func TestBehavioralOperatorAndLiteralDiffs(t *testing.T) {
	layer := &Behavioral{}
	before := semantic.NewNode(semantic.KindFunction, "f", semantic.Attributes{
		Source:          "v1",
		BinaryOps:       semantic.NewStringSet("+"),
		StringLiterals:  semantic.NewStringSet("hello"),
		BooleanLiterals: 1,
		Assertions:      0,
	})
	after := semantic.NewNode(semantic.KindFunction, "f", semantic.Attributes{
		Source:          "v2",
		BinaryOps:       semantic.NewStringSet("+", "*"),
		StringLiterals:  semantic.NewStringSet("hello", "world"),
		BooleanLiterals: 3,
		Assertions:      2,
	})

	types := eventTypes(layer.Diff(pairContext(before, after)))
	for _, want := range []semantic.EventType{
		semantic.EventBinaryOperatorUsageChanged,
		semantic.EventStringLiteralUsageChanged,
		semantic.EventBooleanLiteralUsageChanged,
		semantic.EventAssertionUsageChanged,
	} {
		if types[want] != 1 {
			t.Errorf("expected one %s, got %v", want, types)
		}
	}
}

func TestBehavioralClassShapeDiffs(t *testing.T) {
	layer := &Behavioral{}
	before := semantic.NewNode(semantic.KindClass, "C", semantic.Attributes{
		Source:     "v1",
		Methods:    semantic.NewStringSet("run"),
		Properties: semantic.NewStringSet("size"),
	})
	after := semantic.NewNode(semantic.KindClass, "C", semantic.Attributes{
		Source:     "v2",
		Methods:    semantic.NewStringSet("run", "stop"),
		Properties: semantic.NewStringSet("size", "limit"),
	})

	events := layer.Diff(pairContext(before, after))
	methods := findEvent(events, semantic.EventClassMethodsChanged)
	if methods == nil || !strings.Contains(methods.Details, "stop") {
		t.Errorf("expected class_methods_changed naming stop, got %v", methods)
	}
	attrs := findEvent(events, semantic.EventClassAttributesChanged)
	if attrs == nil || !strings.Contains(attrs.Details, "limit") {
		t.Errorf("expected class_attributes_changed naming limit, got %v", attrs)
	}
}

func TestBehavioralClassShapeRestrictedToClasses(t *testing.T) {
	layer := &Behavioral{}
	before := semantic.NewNode(semantic.KindFunction, "f", semantic.Attributes{
		Source: "v1", Methods: semantic.NewStringSet("x"),
	})
	after := semantic.NewNode(semantic.KindFunction, "f", semantic.Attributes{
		Source: "v2", Methods: semantic.NewStringSet("y"),
	})

	if findEvent(layer.Diff(pairContext(before, after)), semantic.EventClassMethodsChanged) != nil {
		t.Error("class shape diffs must be restricted to class nodes")
	}
}
