package layers

import (
	"fmt"
	"strings"

	"semdiff/internal/semantic"
)

// Semantic is layer 3: meaning-bearing attribute comparison for shared nodes.
// The gate skips nodes whose tracked semantic attributes are all unchanged, so
// cosmetic edits do not generate noise.
type Semantic struct{}

func (s *Semantic) Name() string { return "semantic" }

func (s *Semantic) Diff(ctx DiffContext) []semantic.Event {
	var events []semantic.Event

	for _, id := range semantic.SharedIDs(ctx.BeforeNodes, ctx.AfterNodes) {
		before := ctx.BeforeNodes[id]
		after := ctx.AfterNodes[id]
		if !semanticAttrsDiffer(&before.Attributes, &after.Attributes) {
			continue
		}
		events = append(events, s.diffNode(ctx.Path, before, after)...)
	}

	return events
}

func semanticAttrsDiffer(b, a *semantic.Attributes) bool {
	return b.Source != a.Source ||
		!b.Calls.Equal(a.Calls) ||
		b.ReturnStatements != a.ReturnStatements ||
		b.YieldStatements != a.YieldStatements ||
		!b.CatchTypes.Equal(a.CatchTypes) ||
		!b.ExceptionHandlers.Equal(a.ExceptionHandlers) ||
		b.HasTryCatch != a.HasTryCatch ||
		!b.GlobalStatements.Equal(a.GlobalStatements) ||
		!b.NonlocalStatements.Equal(a.NonlocalStatements) ||
		b.LambdaFunctions != a.LambdaFunctions ||
		b.IsGenerator != a.IsGenerator ||
		b.IsAsync != a.IsAsync ||
		!b.Comprehensions.Equal(a.Comprehensions)
}

func (s *Semantic) diffNode(path string, before, after *semantic.Node) []semantic.Event {
	var events []semantic.Event
	b, a := &before.Attributes, &after.Attributes
	id := after.ID

	if keys := b.ControlFlow.ChangedKeys(a.ControlFlow); len(keys) > 0 {
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %d->%d", k, b.ControlFlow[k], a.ControlFlow[k]))
		}
		events = append(events, semantic.NewEvent(
			semantic.EventControlFlowChanged, id, path, semantic.LayerSemantic,
			"control flow changed: "+strings.Join(parts, ", ")))
	}

	// Exactly one generator-transition event per node per diff.
	switch {
	case b.YieldStatements == 0 && a.YieldStatements > 0:
		events = append(events, semantic.NewEvent(
			semantic.EventFunctionMadeGenerator, id, path, semantic.LayerSemantic,
			fmt.Sprintf("%s became a generator (%d yield statements)", after.Name, a.YieldStatements)))
	case b.YieldStatements > 0 && a.YieldStatements == 0:
		events = append(events, semantic.NewEvent(
			semantic.EventGeneratorMadeFunction, id, path, semantic.LayerSemantic,
			fmt.Sprintf("%s is no longer a generator", after.Name)))
	case b.YieldStatements != a.YieldStatements:
		events = append(events, semantic.NewEvent(
			semantic.EventYieldPatternChanged, id, path, semantic.LayerSemantic,
			fmt.Sprintf("yield statements changed from %d to %d", b.YieldStatements, a.YieldStatements)))
	}

	if b.ReturnStatements != a.ReturnStatements {
		events = append(events, semantic.NewEvent(
			semantic.EventReturnPatternChanged, id, path, semantic.LayerSemantic,
			fmt.Sprintf("return statements changed from %d to %d", b.ReturnStatements, a.ReturnStatements)))
	}

	events = append(events, s.diffExceptionHandling(path, after.Name, id, b, a)...)

	if added := a.Calls.Diff(b.Calls); added.Len() > 0 {
		events = append(events, semantic.NewEvent(
			semantic.EventInternalCallAdded, id, path, semantic.LayerSemantic,
			"calls added: "+strings.Join(added.Sorted(), ", ")))
	}
	if removed := b.Calls.Diff(a.Calls); removed.Len() > 0 {
		events = append(events, semantic.NewEvent(
			semantic.EventInternalCallRemoved, id, path, semantic.LayerSemantic,
			"calls removed: "+strings.Join(removed.Sorted(), ", ")))
	}

	if keys := b.Comprehensions.ChangedKeys(a.Comprehensions); len(keys) > 0 {
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %d->%d", k, b.Comprehensions[k], a.Comprehensions[k]))
		}
		events = append(events, semantic.NewEvent(
			semantic.EventComprehensionUsageChanged, id, path, semantic.LayerSemantic,
			"comprehension usage changed: "+strings.Join(parts, ", ")))
	}

	if b.LambdaFunctions != a.LambdaFunctions {
		events = append(events, semantic.NewEvent(
			semantic.EventLambdaUsageChanged, id, path, semantic.LayerSemantic,
			fmt.Sprintf("lambda count changed from %d to %d", b.LambdaFunctions, a.LambdaFunctions)))
	}

	if !b.GlobalStatements.Equal(a.GlobalStatements) {
		events = append(events, semantic.NewEvent(
			semantic.EventGlobalScopeChanged, id, path, semantic.LayerSemantic,
			setDelta("global declarations",
				a.GlobalStatements.Diff(b.GlobalStatements),
				b.GlobalStatements.Diff(a.GlobalStatements))))
	}
	if !b.NonlocalStatements.Equal(a.NonlocalStatements) {
		events = append(events, semantic.NewEvent(
			semantic.EventNonlocalScopeChanged, id, path, semantic.LayerSemantic,
			setDelta("nonlocal declarations",
				a.NonlocalStatements.Diff(b.NonlocalStatements),
				b.NonlocalStatements.Diff(a.NonlocalStatements))))
	}

	return events
}

// diffExceptionHandling emits the compound added/removed event pairs. The two
// synonymous taxonomy members are both kept so existing event queries keep
// matching.
func (s *Semantic) diffExceptionHandling(path, name string, id semantic.NodeID, b, a *semantic.Attributes) []semantic.Event {
	var events []semantic.Event

	hadBefore := b.HasExceptionHandling()
	hasAfter := a.HasExceptionHandling()

	switch {
	case !hadBefore && hasAfter:
		detail := fmt.Sprintf("%s now handles exceptions", name)
		if a.CatchTypes.Len() > 0 {
			detail += " (catches: " + strings.Join(a.CatchTypes.Sorted(), ", ") + ")"
		}
		events = append(events,
			semantic.NewEvent(semantic.EventExceptionHandlingAdded, id, path, semantic.LayerSemantic, detail),
			semantic.NewEvent(semantic.EventErrorHandlingIntroduced, id, path, semantic.LayerSemantic, detail))
	case hadBefore && !hasAfter:
		detail := fmt.Sprintf("%s no longer handles exceptions", name)
		if b.CatchTypes.Len() > 0 {
			detail += " (previously caught: " + strings.Join(b.CatchTypes.Sorted(), ", ") + ")"
		}
		events = append(events,
			semantic.NewEvent(semantic.EventExceptionHandlingRemoved, id, path, semantic.LayerSemantic, detail),
			semantic.NewEvent(semantic.EventErrorHandlingRemoved, id, path, semantic.LayerSemantic, detail))
	case hadBefore && hasAfter && !b.CatchTypes.Equal(a.CatchTypes):
		events = append(events, semantic.NewEvent(
			semantic.EventExceptionHandlingChanged, id, path, semantic.LayerSemantic,
			setDelta("caught types", a.CatchTypes.Diff(b.CatchTypes), b.CatchTypes.Diff(a.CatchTypes))))
	}

	return events
}
