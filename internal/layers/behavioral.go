package layers

import (
	"fmt"

	"semdiff/internal/semantic"
)

// Behavioral is layer 4: derived scalar scores and fine-grained usage diffs
// for shared nodes, plus a file-wide functional-style re-comparison.
type Behavioral struct{}

func (b *Behavioral) Name() string { return "behavioral" }

func (b *Behavioral) Diff(ctx DiffContext) []semantic.Event {
	var events []semantic.Event

	for _, id := range semantic.SharedIDs(ctx.BeforeNodes, ctx.AfterNodes) {
		before := ctx.BeforeNodes[id]
		after := ctx.AfterNodes[id]
		if before.Attributes.Source == after.Attributes.Source {
			continue
		}
		events = append(events, b.diffNode(ctx.Path, before, after)...)
	}

	events = append(events, b.diffFileFunctionalStyle(ctx)...)
	return events
}

func (b *Behavioral) diffNode(path string, before, after *semantic.Node) []semantic.Event {
	var events []semantic.Event
	ba, aa := &before.Attributes, &after.Attributes
	id := after.ID

	if bc, ac := ba.ComplexityScore(), aa.ComplexityScore(); bc != ac {
		direction := "increased"
		if ac < bc {
			direction = "decreased"
		}
		events = append(events, semantic.NewEvent(
			semantic.EventFunctionComplexityChanged, id, path, semantic.LayerBehavioral,
			fmt.Sprintf("complexity %s from %d to %d", direction, bc, ac)))
	}

	events = append(events, functionalTransition(path, id,
		ba.FunctionalScore(), aa.FunctionalScore(), "node")...)

	type setCheck struct {
		eventType semantic.EventType
		label     string
		before    semantic.StringSet
		after     semantic.StringSet
	}
	checks := []setCheck{
		{semantic.EventAttributeAccessChanged, "attribute accesses", ba.AttributeAccess, aa.AttributeAccess},
		{semantic.EventSubscriptAccessChanged, "subscript accesses", ba.SubscriptAccess, aa.SubscriptAccess},
		{semantic.EventAssignmentPatternChanged, "assignment targets", ba.AssignmentTargets, aa.AssignmentTargets},
		{semantic.EventAugmentedAssignmentChanged, "augmented assignment operators", ba.AugAssignOps, aa.AugAssignOps},
		{semantic.EventBinaryOperatorUsageChanged, "binary operators", ba.BinaryOps, aa.BinaryOps},
		{semantic.EventUnaryOperatorUsageChanged, "unary operators", ba.UnaryOps, aa.UnaryOps},
		{semantic.EventComparisonOperatorChanged, "comparison operators", ba.ComparisonOps, aa.ComparisonOps},
		{semantic.EventLogicalOperatorUsageChanged, "logical operators", ba.LogicalOps, aa.LogicalOps},
		{semantic.EventStringLiteralUsageChanged, "string literals", ba.StringLiterals, aa.StringLiterals},
		{semantic.EventNumericLiteralUsageChanged, "numeric literals", ba.NumericLiterals, aa.NumericLiterals},
	}
	for _, c := range checks {
		if c.before.Equal(c.after) {
			continue
		}
		events = append(events, semantic.NewEvent(
			c.eventType, id, path, semantic.LayerBehavioral,
			setDelta(c.label, c.after.Diff(c.before), c.before.Diff(c.after))))
	}

	if ba.BooleanLiterals != aa.BooleanLiterals {
		events = append(events, semantic.NewEvent(
			semantic.EventBooleanLiteralUsageChanged, id, path, semantic.LayerBehavioral,
			fmt.Sprintf("boolean literal count changed from %d to %d", ba.BooleanLiterals, aa.BooleanLiterals)))
	}
	if ba.NullLiterals != aa.NullLiterals {
		events = append(events, semantic.NewEvent(
			semantic.EventNullLiteralUsageChanged, id, path, semantic.LayerBehavioral,
			fmt.Sprintf("null literal count changed from %d to %d", ba.NullLiterals, aa.NullLiterals)))
	}
	if ba.Assertions != aa.Assertions {
		events = append(events, semantic.NewEvent(
			semantic.EventAssertionUsageChanged, id, path, semantic.LayerBehavioral,
			fmt.Sprintf("assertion count changed from %d to %d", ba.Assertions, aa.Assertions)))
	}

	if after.Kind == semantic.KindClass {
		if !ba.Methods.Equal(aa.Methods) {
			events = append(events, semantic.NewEvent(
				semantic.EventClassMethodsChanged, id, path, semantic.LayerBehavioral,
				setDelta("methods", aa.Methods.Diff(ba.Methods), ba.Methods.Diff(aa.Methods))))
		}
		if !ba.Properties.Equal(aa.Properties) {
			events = append(events, semantic.NewEvent(
				semantic.EventClassAttributesChanged, id, path, semantic.LayerBehavioral,
				setDelta("attributes", aa.Properties.Diff(ba.Properties), ba.Properties.Diff(aa.Properties))))
		}
	}

	return events
}

// diffFileFunctionalStyle aggregates the functional score over function-kind
// nodes on both sides. Closure and array-method idioms can shift net style
// without any single function crossing the per-node threshold.
func (b *Behavioral) diffFileFunctionalStyle(ctx DiffContext) []semantic.Event {
	beforeTotal := fileFunctionalScore(ctx.BeforeNodes)
	afterTotal := fileFunctionalScore(ctx.AfterNodes)
	if beforeTotal == afterTotal {
		return nil
	}

	moduleID := fileScopeID(ctx.AfterNodes)
	if moduleID == "" {
		moduleID = fileScopeID(ctx.BeforeNodes)
	}
	return functionalTransition(ctx.Path, moduleID, beforeTotal, afterTotal, "file")
}

func functionalTransition(path string, id semantic.NodeID, before, after int, scope string) []semantic.Event {
	switch {
	case before == 0 && after > 0:
		return []semantic.Event{semantic.NewEvent(
			semantic.EventFunctionalProgrammingAdopted, id, path, semantic.LayerBehavioral,
			fmt.Sprintf("functional style adopted at %s scope (score 0->%d)", scope, after))}
	case before > 0 && after == 0:
		return []semantic.Event{semantic.NewEvent(
			semantic.EventFunctionalProgrammingRemoved, id, path, semantic.LayerBehavioral,
			fmt.Sprintf("functional style removed at %s scope (score %d->0)", scope, before))}
	case before != after:
		return []semantic.Event{semantic.NewEvent(
			semantic.EventFunctionalProgrammingChanged, id, path, semantic.LayerBehavioral,
			fmt.Sprintf("functional style score changed at %s scope from %d to %d", scope, before, after))}
	}
	return nil
}

func fileFunctionalScore(nodes semantic.NodeMap) int {
	total := 0
	for _, n := range nodes {
		if n.Kind == semantic.KindFunction {
			total += n.Attributes.FunctionalScore()
		}
	}
	return total
}

func fileScopeID(nodes semantic.NodeMap) semantic.NodeID {
	for id, n := range nodes {
		if n.Kind == semantic.KindModule {
			return id
		}
	}
	return ""
}
