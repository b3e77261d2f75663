// SPDX-License-Identifier: Apache-2.0

package sort

import (
	"sort"
	"strings"

	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

// ConstraintSource names where a graph edge came from — used for
// diagnostics and to decide which edges a cycle-breaking filter is
// allowed to touch.
type ConstraintSource string

const (
	SourceCatalog  ConstraintSource = "catalog"
	SourceExplicit ConstraintSource = "explicit"
	SourceCustom   ConstraintSource = "custom"
)

// Reason carries the stable-ID pair a catalog or explicit edge was built
// from. Custom edges carry no Reason — they're never subject to
// cycle-breaking filters.
type Reason struct {
	DependentStableID  string
	ReferencedStableID string
	DepType             catalog.DepType // set for catalog edges, "" otherwise
}

// Constraint is one edge of a phase's dependency graph: From must be
// emitted before To.
type Constraint struct {
	Source ConstraintSource
	From   int
	To     int
	Reason *Reason
}

// buildGraph assembles every edge a phase's topological sort must honor.
func buildGraph(phase Phase, nodes []node, depends []catalog.Depend) []Constraint {
	edges := catalogEdges(nodes, depends)
	if phase == PhaseDrop {
		edges = invertEdges(edges)
	}
	edges = append(edges, explicitEdges(nodes)...)
	if phase == PhaseCreate {
		edges = append(edges, defaultPrivilegeBeforeCreateEdges(nodes)...)
	}
	return edges
}

// catalogEdges implements the catalog-edge rule: for each
// pg_depend row (dependent, referenced, deptype), add an edge from every
// node that creates or drops referenced to every node that creates,
// drops, or requires dependent. Rows touching an `unknown:`-prefixed
// stable ID are skipped, since such IDs name objects outside this run's
// scope.
func catalogEdges(nodes []node, depends []catalog.Depend) []Constraint {
	producedBy := map[string][]int{}
	consumedBy := map[string][]int{}
	for i, n := range nodes {
		for _, id := range n.Creates() {
			producedBy[id] = append(producedBy[id], i)
			consumedBy[id] = append(consumedBy[id], i)
		}
		for _, id := range n.Drops() {
			producedBy[id] = append(producedBy[id], i)
			consumedBy[id] = append(consumedBy[id], i)
		}
		for _, id := range n.Requires() {
			consumedBy[id] = append(consumedBy[id], i)
		}
	}

	var edges []Constraint
	for _, d := range depends {
		if strings.HasPrefix(d.DependentStableID, "unknown:") || strings.HasPrefix(d.ReferencedStableID, "unknown:") {
			continue
		}
		for _, p := range producedBy[d.ReferencedStableID] {
			for _, c := range consumedBy[d.DependentStableID] {
				if p == c {
					continue
				}
				edges = append(edges, Constraint{
					Source: SourceCatalog,
					From:   p,
					To:     c,
					Reason: &Reason{
						DependentStableID:  d.DependentStableID,
						ReferencedStableID: d.ReferencedStableID,
						DepType:             d.DepType,
					},
				})
			}
		}
	}
	return edges
}

// invertEdges swaps From/To on every edge, for the drop-phase rule:
// dependents must drop before the things they depend on, which is
// the reverse of the create-time build order the raw catalog edges
// express.
func invertEdges(edges []Constraint) []Constraint {
	out := make([]Constraint, len(edges))
	for i, e := range edges {
		out[i] = Constraint{Source: e.Source, From: e.To, To: e.From, Reason: e.Reason}
	}
	return out
}

// explicitEdges implements the explicit-edge rule: for every
// Change C and every stable ID r in C.Requires(), if some node P in this
// phase creates r, add an edge P -> C.
func explicitEdges(nodes []node) []Constraint {
	producedBy := map[string][]int{}
	for i, n := range nodes {
		for _, id := range n.Creates() {
			producedBy[id] = append(producedBy[id], i)
		}
	}

	var edges []Constraint
	for i, n := range nodes {
		for _, r := range n.Requires() {
			for _, p := range producedBy[r] {
				if p == i {
					continue
				}
				edges = append(edges, Constraint{
					Source: SourceExplicit,
					From:   p,
					To:     i,
					Reason: &Reason{ReferencedStableID: r},
				})
			}
		}
	}
	return edges
}

// defaultPrivilegeBeforeCreateEdges implements one custom rule: a
// GrantDefaultPrivileges/RevokeDefaultPrivileges whose
// (grantor, objtype, schema) matches a create's schema (a blank Schema
// on the Change matches every schema) and mapped object type must emit
// before that create. Creates of role and schema are excluded — they
// are dependencies of the default-privilege change (handled by the
// explicit edges above via Requires()), not subjects of this rule.
func defaultPrivilegeBeforeCreateEdges(nodes []node) []Constraint {
	var edges []Constraint
	for i, n := range nodes {
		objType, schema, ok := defaultPrivilegeTargetOf(n.Change)
		if !ok {
			continue
		}
		for j, m := range nodes {
			if i == j {
				continue
			}
			createSchema, createObjType, ok := createdObjectOf(m.Change)
			if !ok {
				continue
			}
			if createObjType != objType {
				continue
			}
			if schema != "" && schema != createSchema {
				continue
			}
			edges = append(edges, Constraint{Source: SourceCustom, From: i, To: j})
		}
	}
	return edges
}

// defaultPrivilegeTargetOf extracts the (objtype, schema) a
// default-privilege Change addresses; the grantor itself plays no part
// in this rule since it's already ordered via the explicit-edge
// Requires() dependency on ident.Role(grantor).
func defaultPrivilegeTargetOf(c change.Change) (objType, schema string, ok bool) {
	switch t := c.(type) {
	case *change.GrantDefaultPrivileges:
		return t.Target.ObjType, t.Target.Schema, true
	case *change.RevokeDefaultPrivileges:
		return t.Target.ObjType, t.Target.Schema, true
	default:
		return "", "", false
	}
}

// createdObjectOf extracts the (schema, defacl objtype code) of a
// create Change subject to the default-privilege-before-create rule.
// CreateRole and CreateSchema deliberately return ok=false: they are
// dependencies of a default-privilege change, never its subject.
func createdObjectOf(c change.Change) (schema, objType string, ok bool) {
	switch t := c.(type) {
	case *change.CreateTable:
		return t.Schema, objtype.DefaclObjType(objtype.KindTable), true
	case *change.CreateView:
		return t.Schema, objtype.DefaclObjType(objtype.KindView), true
	case *change.CreateMaterializedView:
		return t.Schema, objtype.DefaclObjType(objtype.KindMaterializedView), true
	case *change.CreateForeignTable:
		return t.Schema, objtype.DefaclObjType(objtype.KindForeignTable), true
	case *change.CreateSequence:
		return t.Schema, objtype.DefaclObjType(objtype.KindSequence), true
	case *change.CreateRoutine:
		return t.Schema, objtype.DefaclObjType(t.Kind()), true
	case *change.CreateType:
		return t.Schema, objtype.DefaclObjType(t.Kind()), true
	case *change.CreateDomain:
		return t.Schema, objtype.DefaclObjType(objtype.KindDomain), true
	default:
		return "", "", false
	}
}

// sortConstraints returns a copy of edges sorted by (From, To), giving
// Mermaid dumps and error messages a deterministic rendering order.
func sortConstraints(edges []Constraint) []Constraint {
	out := append([]Constraint{}, edges...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}
