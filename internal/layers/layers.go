// Package layers implements the staged change classifier. Each layer inspects
// the same before/after pair at a different granularity and emits typed
// events; layers are independent of one another and safe to run in isolation.
package layers

import (
	"fmt"
	"strings"

	"semdiff/internal/semantic"
)

// DiffContext carries one file change through the classifier stack.
type DiffContext struct {
	Path       string
	BeforeText string
	AfterText  string

	BeforeNodes semantic.NodeMap
	AfterNodes  semantic.NodeMap

	BeforeDeps semantic.StringSet
	AfterDeps  semantic.StringSet
}

// Differ is one classifier stage.
type Differ interface {
	Name() string
	Diff(ctx DiffContext) []semantic.Event
}

// DeterministicStack returns layers 1 through 5a in execution order. Layer 5b
// lives in the llm package because it carries provider state.
func DeterministicStack() []Differ {
	return []Differ{
		&Structural{},
		&Syntactic{},
		&Semantic{},
		&Behavioral{},
		NewPatternDetector(),
	}
}

// setDelta formats an added/removed pair for event details.
func setDelta(label string, added, removed semantic.StringSet) string {
	parts := make([]string, 0, 2)
	if added.Len() > 0 {
		parts = append(parts, fmt.Sprintf("added %s: %s", label, strings.Join(added.Sorted(), ", ")))
	}
	if removed.Len() > 0 {
		parts = append(parts, fmt.Sprintf("removed %s: %s", label, strings.Join(removed.Sorted(), ", ")))
	}
	return strings.Join(parts, "; ")
}
