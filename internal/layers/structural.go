package layers

import (
	"fmt"
	"strings"

	"semdiff/internal/semantic"
)

// Structural is layer 1: file existence, dependency set membership, and node
// identity presence. It never compares node contents.
type Structural struct{}

func (s *Structural) Name() string { return "structural" }

func (s *Structural) Diff(ctx DiffContext) []semantic.Event {
	var events []semantic.Event

	beforeEmpty := strings.TrimSpace(ctx.BeforeText) == ""
	afterEmpty := strings.TrimSpace(ctx.AfterText) == ""
	switch {
	case beforeEmpty && !afterEmpty:
		events = append(events, semantic.NewEvent(
			semantic.EventFileAdded, "", ctx.Path, semantic.LayerStructural,
			fmt.Sprintf("file %s created with %d nodes", ctx.Path, len(ctx.AfterNodes))))
	case !beforeEmpty && afterEmpty:
		events = append(events, semantic.NewEvent(
			semantic.EventFileRemoved, "", ctx.Path, semantic.LayerStructural,
			fmt.Sprintf("file %s removed", ctx.Path)))
	}

	if added := ctx.AfterDeps.Diff(ctx.BeforeDeps); added.Len() > 0 {
		events = append(events, semantic.NewEvent(
			semantic.EventDependencyAdded, "", ctx.Path, semantic.LayerStructural,
			"dependencies added: "+strings.Join(added.Sorted(), ", ")))
	}
	if removed := ctx.BeforeDeps.Diff(ctx.AfterDeps); removed.Len() > 0 {
		events = append(events, semantic.NewEvent(
			semantic.EventDependencyRemoved, "", ctx.Path, semantic.LayerStructural,
			"dependencies removed: "+strings.Join(removed.Sorted(), ", ")))
	}

	for _, id := range semantic.IDUnion(ctx.BeforeNodes, ctx.AfterNodes) {
		_, inBefore := ctx.BeforeNodes[id]
		_, inAfter := ctx.AfterNodes[id]
		switch {
		case !inBefore && inAfter:
			events = append(events, semantic.NewEvent(
				semantic.EventNodeAdded, id, ctx.Path, semantic.LayerStructural,
				fmt.Sprintf("node %s added", id)))
		case inBefore && !inAfter:
			events = append(events, semantic.NewEvent(
				semantic.EventNodeRemoved, id, ctx.Path, semantic.LayerStructural,
				fmt.Sprintf("node %s removed", id)))
		}
	}

	return events
}
