package semantic

import (
	"reflect"
	"testing"
)

func TestMakeNodeID(t *testing.T) {
	if id := MakeNodeID(KindFunction, "process"); id != "func:process" {
		t.Errorf("unexpected node id: %s", id)
	}
	if id := MakeNodeID(KindClass, "Worker"); id != "class:Worker" {
		t.Errorf("unexpected node id: %s", id)
	}
}

func TestComplexityScore(t *testing.T) {
	attrs := Attributes{
		ControlFlow:       CountMap{"if": 2, "for": 1},
		ReturnStatements:  2,
		YieldStatements:   1,
		ExceptionHandlers: NewStringSet("ValueError"),
		LambdaFunctions:   1,
		NestedClasses:     1,
	}
	if got := attrs.ComplexityScore(); got != 9 {
		t.Errorf("expected complexity 9, got %d", got)
	}

	var zero Attributes
	if zero.ComplexityScore() != 0 {
		t.Error("zero-value attributes should score zero")
	}
}

func TestFunctionalScore(t *testing.T) {
	attrs := Attributes{
		LambdaFunctions: 2,
		Comprehensions:  CountMap{"list": 1},
		FPPatterns:      CountMap{"map": 1, "filter": 1},
		FunctionalStyle: true,
	}
	if got := attrs.FunctionalScore(); got != 6 {
		t.Errorf("expected functional score 6, got %d", got)
	}
}

func TestHasExceptionHandling(t *testing.T) {
	withHandlers := Attributes{ExceptionHandlers: NewStringSet("IOError")}
	if !withHandlers.HasExceptionHandling() {
		t.Error("handler set should imply exception handling")
	}
	withTry := Attributes{HasTryCatch: true}
	if !withTry.HasExceptionHandling() {
		t.Error("try/catch flag should imply exception handling")
	}
	var none Attributes
	if none.HasExceptionHandling() {
		t.Error("zero value should not imply exception handling")
	}
}

func TestIDUnionAndSharedIDs(t *testing.T) {
	before := NodeMap{
		"func:a": NewNode(KindFunction, "a", Attributes{}),
		"func:b": NewNode(KindFunction, "b", Attributes{}),
	}
	after := NodeMap{
		"func:b": NewNode(KindFunction, "b", Attributes{}),
		"func:c": NewNode(KindFunction, "c", Attributes{}),
	}

	union := IDUnion(before, after)
	if !reflect.DeepEqual(union, []NodeID{"func:a", "func:b", "func:c"}) {
		t.Errorf("unexpected union: %v", union)
	}

	shared := SharedIDs(before, after)
	if !reflect.DeepEqual(shared, []NodeID{"func:b"}) {
		t.Errorf("unexpected shared ids: %v", shared)
	}
}
