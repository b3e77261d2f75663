// SPDX-License-Identifier: Apache-2.0

// Package sort implements the sort engine: it takes the
// flat Change list the diff engine produced and orders it into an
// executable sequence. Ordering is governed by a fixed phase
// partition (drop, alter-revoke, alter-other, create, alter-grant),
// each phase internally ordered by a dependency graph built from
// pg_depend rows, each Change's own Requires(), and a small set of
// engine-specific rules — then concatenated in phase order.
package sort

import (
	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

// Phase is one of the fixed buckets a Change is sorted into before the
// per-phase dependency graph runs.
type Phase int

const (
	PhaseDrop Phase = iota
	PhaseAlterRevoke
	PhaseAlterOther
	PhaseCreate
	PhaseAlterGrant
)

func (p Phase) String() string {
	switch p {
	case PhaseDrop:
		return "drop"
	case PhaseAlterRevoke:
		return "alter_revoke"
	case PhaseAlterOther:
		return "alter_other"
	case PhaseCreate:
		return "create"
	case PhaseAlterGrant:
		return "alter_grant"
	default:
		return "unknown"
	}
}

// phases lists every Phase in final emission order.
var phases = []Phase{PhaseDrop, PhaseAlterRevoke, PhaseAlterOther, PhaseCreate, PhaseAlterGrant}

// classify assigns a Change to a Phase. GrantDefaultPrivileges and
// RevokeDefaultPrivileges are special-cased into the create phase even
// though their Operation() is alter: a standing ALTER DEFAULT PRIVILEGES
// declaration only takes effect on objects created after it runs, so it
// must be free to interleave with CREATE statements via the
// default-privilege-before-create custom edge — a fixed alter-after-
// create bucket could never satisfy that ordering.
func classify(c change.Change) Phase {
	switch c.(type) {
	case *change.GrantDefaultPrivileges, *change.RevokeDefaultPrivileges:
		return PhaseCreate
	}

	switch c.Operation() {
	case objtype.OpDrop:
		return PhaseDrop
	case objtype.OpCreate:
		return PhaseCreate
	default: // objtype.OpAlter
		switch c.Scope() {
		case objtype.ScopePrivilege:
			if isRevokeSemantic(c) {
				return PhaseAlterRevoke
			}
			return PhaseAlterGrant
		case objtype.ScopeComment:
			return PhaseAlterGrant
		default:
			return PhaseAlterOther
		}
	}
}

// isRevokeSemantic reports whether an alter-scoped-privilege Change
// removes access rather than granting it. Type-switched rather than read
// off Operation(), since every privilege/comment/owner Change reports
// Operation()==OpAlter regardless of grant/revoke direction.
func isRevokeSemantic(c change.Change) bool {
	switch c.(type) {
	case *change.RevokePrivilege, *change.RevokeGrantOption:
		return true
	default:
		return false
	}
}

// node wraps a Change as a graph vertex. Each phase's node slice
// preserves the relative order Sort received its Changes in, so
// stableTopoSort's index-based tie-breaking reproduces that order
// whenever the dependency graph leaves a choice.
type node struct {
	change.Change
}

// Sort orders changes into an executable sequence.
// depends is the merged pg_depend row set the diff that produced changes
// was run against (source and target catalogs' Depends, concatenated).
func Sort(changes change.Changes, depends []catalog.Depend) (change.Changes, error) {
	buckets := make(map[Phase][]node, len(phases))
	for _, c := range changes {
		p := classify(c)
		buckets[p] = append(buckets[p], node{Change: c})
	}

	var out change.Changes
	for _, p := range phases {
		nodes := buckets[p]
		if len(nodes) == 0 {
			continue
		}
		ordered, err := sortPhase(p, nodes, depends)
		if err != nil {
			return nil, err
		}
		out = append(out, ordered...)
	}
	return out, nil
}

// sortPhase builds one phase's dependency graph and runs the stable
// topological sort, retrying once with cycle-breaking filters applied if
// the first attempt finds a cycle.
func sortPhase(phase Phase, nodes []node, depends []catalog.Depend) (change.Changes, error) {
	edges := buildGraph(phase, nodes, depends)

	order, ok := stableTopoSort(len(nodes), edges)
	if !ok {
		filtered, removed := applyCycleBreakers(nodes, edges)
		if len(removed) > 0 {
			order, ok = stableTopoSort(len(nodes), filtered)
			edges = filtered
		}
		if !ok {
			return nil, newCycleError(phase, nodes, edges)
		}
	}

	out := make(change.Changes, len(order))
	for i, idx := range order {
		out[i] = nodes[idx].Change
	}
	return out, nil
}
