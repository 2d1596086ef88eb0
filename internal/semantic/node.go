package semantic

import (
	"fmt"
	"sort"
)

// NodeKind classifies a named code entity.
type NodeKind string

const (
	KindFunction   NodeKind = "func"
	KindClass      NodeKind = "class"
	KindModule     NodeKind = "module"
	KindVariable   NodeKind = "var"
	KindBehavioral NodeKind = "behavior"
	KindMeta       NodeKind = "meta"
)

// NodeID is the stable cross-version identity of an entity: "<kind>:<name>".
// Identity is name-based; a rename therefore shows up as one removal plus one
// addition, never as a modification.
type NodeID string

func MakeNodeID(kind NodeKind, name string) NodeID {
	return NodeID(fmt.Sprintf("%s:%s", kind, name))
}

// Attributes is the closed attribute bag for one node. Every parser tier
// populates the same fields; zero values are the deterministic defaults, so
// downstream layers never need presence checks.
type Attributes struct {
	// Source is the entity's raw snippet in this file version.
	Source    string
	Signature string

	Decorators      StringSet
	IsAsync         bool
	IsGenerator     bool
	HasDefaults     bool
	FunctionalStyle bool

	// Class shape. Empty for non-class nodes.
	BaseClasses   StringSet
	Methods       StringSet
	Properties    StringSet
	NestedClasses int

	// Call graph and control flow.
	Calls       StringSet
	ControlFlow CountMap

	// Exception handling.
	ExceptionHandlers StringSet
	HasTryCatch       bool
	CatchTypes        StringSet

	ReturnStatements int
	YieldStatements  int
	LambdaFunctions  int
	Comprehensions   CountMap
	FPPatterns       CountMap

	GlobalStatements   StringSet
	NonlocalStatements StringSet

	// Fine-grained access and operator usage.
	AttributeAccess   StringSet
	SubscriptAccess   StringSet
	AssignmentTargets StringSet
	AugAssignOps      StringSet
	BinaryOps         StringSet
	UnaryOps          StringSet
	ComparisonOps     StringSet
	LogicalOps        StringSet

	StringLiterals  StringSet
	NumericLiterals StringSet
	BooleanLiterals int
	NullLiterals    int
	Assertions      int
}

// HasExceptionHandling is the compound predicate layers 3 and 4 share.
func (a *Attributes) HasExceptionHandling() bool {
	return len(a.ExceptionHandlers) > 0 || a.HasTryCatch
}

// ComplexityScore is the layer-4 composite scalar.
func (a *Attributes) ComplexityScore() int {
	return a.ControlFlow.Sum() +
		a.ReturnStatements +
		a.YieldStatements +
		len(a.ExceptionHandlers) +
		a.LambdaFunctions +
		a.NestedClasses
}

// FunctionalScore is the layer-4 functional-programming scalar.
func (a *Attributes) FunctionalScore() int {
	score := a.LambdaFunctions + a.Comprehensions.Sum() + a.FPPatterns.Sum()
	if a.FunctionalStyle {
		score++
	}
	return score
}

// Node is one named entity in one version of a file. Nodes are created during
// parse and never mutated afterwards.
type Node struct {
	ID         NodeID
	Kind       NodeKind
	Name       string
	Attributes Attributes
}

func NewNode(kind NodeKind, name string, attrs Attributes) *Node {
	return &Node{
		ID:         MakeNodeID(kind, name),
		Kind:       kind,
		Name:       name,
		Attributes: attrs,
	}
}

// NodeMap is one parsed file version keyed by node identity.
type NodeMap map[NodeID]*Node

// IDUnion returns the sorted union of identities across two versions.
func IDUnion(before, after NodeMap) []NodeID {
	seen := make(map[NodeID]bool, len(before)+len(after))
	for id := range before {
		seen[id] = true
	}
	for id := range after {
		seen[id] = true
	}
	ids := make([]NodeID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sortNodeIDs(ids)
	return ids
}

// SharedIDs returns the sorted identities present in both versions.
func SharedIDs(before, after NodeMap) []NodeID {
	ids := make([]NodeID, 0)
	for id := range before {
		if _, ok := after[id]; ok {
			ids = append(ids, id)
		}
	}
	sortNodeIDs(ids)
	return ids
}

func sortNodeIDs(ids []NodeID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
