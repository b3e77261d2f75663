// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"sort"
	"strings"

	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

// expandReplaceDependencies implements the replace-dependency
// expansion: after every per-kind diff has run, any stable ID that is
// both created and dropped by the combined Change list is a "replace
// root" (its own diff already decided to drop+create it). This pass
// walks pg_depend outward from each root and expands any transitive
// dependent that is not already being replaced, and that resolves to a
// replaceable object kind, into its own Drop+Create pair — so the root's
// destructive drop doesn't fail with a dependency error.
func expandReplaceDependencies(dctx *Context, source, target *catalog.Catalog, all change.Changes) change.Changes {
	created, dropped := map[string]bool{}, map[string]bool{}
	for _, c := range all {
		for _, id := range c.Creates() {
			created[id] = true
		}
		for _, id := range c.Drops() {
			dropped[id] = true
		}
	}

	replaced := map[string]bool{}
	var queue []string
	for id := range created {
		if dropped[id] {
			replaced[id] = true
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	dependents := dependentsIndex(source, target)

	var expansion change.Changes
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		next := append([]string{}, dependents[id]...)
		sort.Strings(next)
		for _, raw := range next {
			owner := ownerStableID(raw)
			if owner == "" || replaced[owner] {
				continue
			}
			rc, ok := replaceChange(dctx, source, target, owner)
			if !ok {
				continue
			}
			replaced[owner] = true
			expansion = append(expansion, rc...)
			queue = append(queue, owner)
		}
	}
	return append(all, expansion...)
}

// dependentsIndex inverts the pg_depend rows of both catalogs into
// referenced → []dependent, dropping any row that touches an
// `unknown:`-prefixed stable ID per the usual stable-ID normalization.
func dependentsIndex(source, target *catalog.Catalog) map[string][]string {
	idx := map[string][]string{}
	add := func(rows []catalog.Depend) {
		for _, d := range rows {
			if strings.HasPrefix(d.DependentStableID, "unknown:") || strings.HasPrefix(d.ReferencedStableID, "unknown:") {
				continue
			}
			idx[d.ReferencedStableID] = append(idx[d.ReferencedStableID], d.DependentStableID)
		}
	}
	add(source.Depends)
	add(target.Depends)
	return idx
}

// ownerStableID collapses a child stable ID (column:, constraint:,
// trigger:, rule:, rls_policy:) to its owning table's stable ID, and
// drops virtual-prefix IDs (comment:, acl:, defacl:, membership:) from
// traversal entirely.
func ownerStableID(id string) string {
	prefix, rest, ok := strings.Cut(id, ":")
	if !ok {
		return id
	}
	switch prefix {
	case "comment", "acl", "defacl", "membership":
		return ""
	case "column", "constraint", "trigger", "rule", "rls_policy":
		parts := strings.SplitN(rest, ".", 3)
		if len(parts) < 2 {
			return ""
		}
		return "table:" + parts[0] + "." + parts[1]
	default:
		return id
	}
}

// replaceChange builds the Drop+Create pair for a dependent's stable ID,
// looked up by its kind prefix across source (the Drop side) and target
// (the Create side). ok is false when the prefix isn't one of the
// replaceable kinds (table, view, materialized view, function/
// procedure, enum/range/composite type, domain), or the
// object is absent from either catalog — meaning the ordinary per-kind
// diff already produced the correct Changes for it.
func replaceChange(dctx *Context, source, target *catalog.Catalog, id string) (change.Changes, bool) {
	prefix, _, _ := strings.Cut(id, ":")

	switch prefix {
	case "table":
		s, inSource := source.Tables[id]
		t, inTarget := target.Tables[id]
		if !inSource || !inTarget {
			return nil, false
		}
		out := change.Changes{&change.DropTable{Schema: s.Schema, Name: s.Name, Cascade: true}}
		return append(out, createTableChanges(dctx, t)...), true
	case "view":
		s, inSource := source.Views[id]
		t, inTarget := target.Views[id]
		if !inSource || !inTarget {
			return nil, false
		}
		ref := viewRef(t)
		out := change.Changes{
			&change.DropView{Schema: s.Schema, Name: s.Name, Cascade: true},
			&change.CreateView{Schema: t.Schema, Name: t.Name, Owner: t.Owner, Definition: t.Definition},
		}
		out = append(out, commentChange(ref, "", t.Comment)...)
		return out, true
	case "materializedView":
		s, inSource := source.MaterializedViews[id]
		t, inTarget := target.MaterializedViews[id]
		if !inSource || !inTarget {
			return nil, false
		}
		out := change.Changes{&change.DropMaterializedView{Schema: s.Schema, Name: s.Name, Cascade: true}}
		return append(out, createMatViewChanges(t)...), true
	case "function", "procedure":
		s, inSource := source.Routines[id]
		t, inTarget := target.Routines[id]
		if !inSource || !inTarget {
			return nil, false
		}
		out := change.Changes{&change.DropRoutine{Schema: s.Schema, Name: s.Name, ArgSig: s.ArgSig,
			RoutineKind: string(s.Kind), Cascade: true}}
		return append(out, createRoutineChange(t)), true
	case "type":
		s, inSource := source.Types[id]
		t, inTarget := target.Types[id]
		if !inSource || !inTarget || !objtype.Replaceable(typeRef(t).Kind) {
			return nil, false
		}
		return change.Changes{&change.DropType{Schema: s.Schema, Name: s.Name, Cascade: true}, createTypeChange(t)}, true
	case "domain":
		s, inSource := source.Domains[id]
		t, inTarget := target.Domains[id]
		if !inSource || !inTarget {
			return nil, false
		}
		return change.Changes{&change.DropDomain{Schema: s.Schema, Name: s.Name, Cascade: true}, createDomainChange(t)}, true
	default:
		return nil, false
	}
}
