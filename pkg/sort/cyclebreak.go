// SPDX-License-Identifier: Apache-2.0

package sort

import (
	"strings"

	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
)

// applyCycleBreakers finds one cycle in edges and removes every edge on
// it that matches a known-benign pattern, returning the filtered edge
// list and the set of edges removed. Only catalog/explicit edges whose
// Reason names both ends of the dependency are ever candidates —
// custom edges, and explicit edges without a DependentStableID, are
// never filtered.
func applyCycleBreakers(nodes []node, edges []Constraint) ([]Constraint, []Constraint) {
	cycle := findCycle(len(nodes), edges)
	if cycle == nil {
		return edges, nil
	}
	inCycle := make(map[[2]int]bool, len(cycle))
	for i, from := range cycle {
		to := cycle[(i+1)%len(cycle)]
		inCycle[[2]int{from, to}] = true
	}

	var kept, removed []Constraint
	for _, e := range edges {
		if inCycle[[2]int{e.From, e.To}] && sequenceOwnershipFilter(nodes, e) {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	return kept, removed
}

// sequenceOwnershipFilter implements the one cycle-breaking rule: a
// catalog edge recording a sequence's auto-dependency on the
// table/column that owns it (e.g. a serial-style DEFAULT nextval(seq)
// column) is safe to drop on a cycle, since PostgreSQL creates the
// sequence and its owning column independently and only ties them
// together afterward via ALTER SEQUENCE ... OWNED BY.
func sequenceOwnershipFilter(nodes []node, e Constraint) bool {
	if e.Source != SourceCatalog || e.Reason == nil {
		return false
	}
	if e.Reason.DepType != catalog.DepAuto {
		return false
	}
	if !strings.HasPrefix(e.Reason.DependentStableID, "sequence:") {
		return false
	}
	if !strings.HasPrefix(e.Reason.ReferencedStableID, "table:") && !strings.HasPrefix(e.Reason.ReferencedStableID, "column:") {
		return false
	}
	if _, ok := nodes[e.To].Change.(*change.CreateSequence); !ok {
		return false
	}
	return true
}
