package layers

import (
	"fmt"
	"strings"

	"semdiff/internal/semantic"
)

// Syntactic is layer 2: declared-shape comparison for nodes present in both
// versions. Checks are independent, so one node can produce several events.
type Syntactic struct{}

func (s *Syntactic) Name() string { return "syntactic" }

func (s *Syntactic) Diff(ctx DiffContext) []semantic.Event {
	var events []semantic.Event

	for _, id := range semantic.SharedIDs(ctx.BeforeNodes, ctx.AfterNodes) {
		before := ctx.BeforeNodes[id]
		after := ctx.AfterNodes[id]
		if before.Attributes.Source == after.Attributes.Source {
			continue
		}
		events = append(events, s.diffNode(ctx.Path, before, after)...)
	}

	return events
}

func (s *Syntactic) diffNode(path string, before, after *semantic.Node) []semantic.Event {
	var events []semantic.Event
	b, a := &before.Attributes, &after.Attributes

	if b.Signature != a.Signature {
		events = append(events, semantic.NewEvent(
			semantic.EventSignatureChanged, after.ID, path, semantic.LayerSyntactic,
			fmt.Sprintf("signature changed from %q to %q", b.Signature, a.Signature)))
	}

	if added := a.Decorators.Diff(b.Decorators); added.Len() > 0 {
		events = append(events, semantic.NewEvent(
			semantic.EventDecoratorAdded, after.ID, path, semantic.LayerSyntactic,
			"decorators added: "+strings.Join(added.Sorted(), ", ")))
	}
	if removed := b.Decorators.Diff(a.Decorators); removed.Len() > 0 {
		events = append(events, semantic.NewEvent(
			semantic.EventDecoratorRemoved, after.ID, path, semantic.LayerSyntactic,
			"decorators removed: "+strings.Join(removed.Sorted(), ", ")))
	}

	switch {
	case !b.IsAsync && a.IsAsync:
		events = append(events, semantic.NewEvent(
			semantic.EventFunctionMadeAsync, after.ID, path, semantic.LayerSyntactic,
			fmt.Sprintf("%s became asynchronous", after.Name)))
	case b.IsAsync && !a.IsAsync:
		events = append(events, semantic.NewEvent(
			semantic.EventFunctionMadeSync, after.ID, path, semantic.LayerSyntactic,
			fmt.Sprintf("%s became synchronous", after.Name)))
	}

	if after.Kind == semantic.KindClass && !b.BaseClasses.Equal(a.BaseClasses) {
		events = append(events, semantic.NewEvent(
			semantic.EventInheritanceChanged, after.ID, path, semantic.LayerSyntactic,
			fmt.Sprintf("base classes changed from [%s] to [%s]",
				strings.Join(b.BaseClasses.Sorted(), ", "),
				strings.Join(a.BaseClasses.Sorted(), ", "))))
	}

	switch {
	case !b.HasDefaults && a.HasDefaults:
		events = append(events, semantic.NewEvent(
			semantic.EventDefaultParametersAdded, after.ID, path, semantic.LayerSyntactic,
			fmt.Sprintf("%s gained default parameter values", after.Name)))
	case b.HasDefaults && !a.HasDefaults:
		events = append(events, semantic.NewEvent(
			semantic.EventDefaultParametersRemoved, after.ID, path, semantic.LayerSyntactic,
			fmt.Sprintf("%s lost default parameter values", after.Name)))
	}

	return events
}
