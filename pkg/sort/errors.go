// SPDX-License-Identifier: Apache-2.0

package sort

import (
	"fmt"
	"reflect"
	"strings"
)

// CycleNode describes one node on a detected cycle: its position in the
// phase's node list, the Go constructor that built its Change, and up to
// two stable IDs it creates — enough to recognize the offending object
// in a diagnostic without dumping the whole Change.
type CycleNode struct {
	Index       int
	Constructor string
	CreatedIDs  []string
}

// CycleEdge describes one edge between two consecutive cycle nodes:
// which constraint produced it, and — for catalog/explicit edges — the
// stable-ID pair it connects and whether a cycle-breaking filter
// considered and rejected it.
type CycleEdge struct {
	From, To     int
	Source       ConstraintSource
	Dependent    string
	Referenced   string
	FilterTried  bool
	FilterReason string
}

// CycleError is raised when a phase's dependency graph cannot be
// topologically sorted even after cycle-breaking filters run. It
// carries enough of the offending subgraph to let a caller print a
// useful diagnostic without re-deriving the sort.
type CycleError struct {
	Phase Phase
	Nodes []CycleNode
	Edges []CycleEdge
}

func (e *CycleError) Error() string {
	var names []string
	for _, n := range e.Nodes {
		names = append(names, fmt.Sprintf("%s(%s)", n.Constructor, strings.Join(n.CreatedIDs, ",")))
	}
	return fmt.Sprintf("sort: dependency cycle in %s phase: %s", e.Phase, strings.Join(names, " -> "))
}

// newCycleError builds a CycleError from the first cycle found in edges,
// describing each cycle edge's filter outcome for diagnostic purposes.
func newCycleError(phase Phase, nodes []node, edges []Constraint) error {
	cycle := findCycle(len(nodes), edges)
	if cycle == nil {
		// stableTopoSort failed but no cycle was found among the
		// supplied edges — unreachable by construction, but report
		// something actionable rather than panic.
		return fmt.Errorf("sort: %s phase could not be ordered and no cycle was found", phase)
	}

	cn := make([]CycleNode, len(cycle))
	for i, idx := range cycle {
		created := nodes[idx].Creates()
		if len(created) > 2 {
			created = created[:2]
		}
		cn[i] = CycleNode{
			Index:       idx,
			Constructor: reflect.TypeOf(nodes[idx].Change).Elem().Name(),
			CreatedIDs:  created,
		}
	}

	inCycle := make(map[[2]int]bool, len(cycle))
	for i, from := range cycle {
		to := cycle[(i+1)%len(cycle)]
		inCycle[[2]int{from, to}] = true
	}

	var ce []CycleEdge
	for _, e := range sortConstraints(edges) {
		if !inCycle[[2]int{e.From, e.To}] {
			continue
		}
		edge := CycleEdge{From: e.From, To: e.To, Source: e.Source}
		if e.Reason != nil {
			edge.Dependent = e.Reason.DependentStableID
			edge.Referenced = e.Reason.ReferencedStableID
		}
		if e.Source != SourceCustom && e.Reason != nil && e.Reason.DependentStableID != "" {
			edge.FilterTried = true
			if sequenceOwnershipFilter(nodes, e) {
				edge.FilterReason = "sequence_ownership: matched"
			} else {
				edge.FilterReason = "sequence_ownership: no match"
			}
		}
		ce = append(ce, edge)
	}

	return &CycleError{Phase: phase, Nodes: cn, Edges: ce}
}
