// SPDX-License-Identifier: Apache-2.0

// Package diff implements the diff engine: given a
// source and target Catalog, it produces the ordered-by-kind list of
// Changes that would migrate source toward target. The engine itself
// never touches a database; Catalogs are passive records produced by an
// external catalog.Extractor.
package diff

import (
	"sort"

	"github.com/pgdiffhq/catalogdiff/pkg/acl"
	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

// Context carries the per-run state every per-kind diff_<kind> function
// needs: the role that will execute the plan (stored here; no diff
// function reads it) and the target catalog's default-privilege lookup
// (newly created objects are compared against what the target database
// would already grant them for free).
type Context struct {
	CurrentUser string
	Defaults    *acl.State
}

// NewContext builds a diff Context from the target catalog. Its
// CurrentUser is carried on the Context but not consulted: no AlterOwner
// is emitted for a created object, whoever owns it.
func NewContext(target *catalog.Catalog) *Context {
	return &Context{
		CurrentUser: target.CurrentUser,
		Defaults:    target.DefaultACLState(),
	}
}

// kindDiffFunc is the per-kind entry point every diff_<kind>.go file
// registers into the dispatch table below.
type kindDiffFunc func(dctx *Context, source, target *catalog.Catalog) change.Changes

// DiffCatalogs is the top-level entry point: diff_catalogs(source,
// target) → Change[]. It dispatches to one
// diff_<kind> function per object kind, then runs the replace-
// dependency expansion pass over the combined result.
func DiffCatalogs(source, target *catalog.Catalog) change.Changes {
	all, dctx := DiffChanges(source, target)
	return ExpandReplaceDependencies(dctx, source, target, all)
}

// DiffChanges runs every diff_<kind> function and returns the raw,
// pre-expansion Change set together with the Context used to produce
// it. Callers that need to run a hook filter between diffing and
// replace-dependency expansion (the diff -> hook filter -> replace-
// dependency expansion ordering) use this instead of
// DiffCatalogs, then call ExpandReplaceDependencies themselves.
func DiffChanges(source, target *catalog.Catalog) (change.Changes, *Context) {
	dctx := NewContext(target)

	var all change.Changes
	for _, fn := range []kindDiffFunc{
		diffSchemas,
		diffRoles,
		diffTables,
		diffSequences,
		diffTypes,
		diffDomains,
		diffRoutines,
		diffViews,
		diffMaterializedViews,
		diffCollations,
		diffExtensions,
		diffLanguages,
		diffForeignDataWrappers,
		diffServers,
		diffUserMappings,
		diffForeignTables,
		diffDefaultPrivileges,
		diffPublications,
		diffSubscriptions,
		diffEventTriggers,
	} {
		all = append(all, fn(dctx, source, target)...)
	}

	return all, dctx
}

// ExpandReplaceDependencies is the exported entry point to the
// replace-dependency expansion pass, for callers that run it after an
// intervening hook-filter step instead of through DiffCatalogs.
func ExpandReplaceDependencies(dctx *Context, source, target *catalog.Catalog, changes change.Changes) change.Changes {
	return expandReplaceDependencies(dctx, source, target, changes)
}

// altered pairs the source and target record for a stable ID present in
// both catalogs.
type altered[T any] struct {
	ID     string
	Source T
	Target T
}

// sortedUnionKeys returns the union of two maps' keys, sorted, so every
// diff_<kind> iterates objects in deterministic stable-ID order.
func sortedUnionKeys[T any](a, b map[string]T) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// diffObjects partitions the union of two kind-maps into created,
// dropped and altered buckets by stable-ID set difference/intersection.
func diffObjects[T any](source, target map[string]T) (created, dropped []T, alts []altered[T]) {
	for _, id := range sortedUnionKeys(source, target) {
		s, inSource := source[id]
		t, inTarget := target[id]
		switch {
		case inTarget && !inSource:
			created = append(created, t)
		case inSource && !inTarget:
			dropped = append(dropped, s)
		default:
			alts = append(alts, altered[T]{ID: id, Source: s, Target: t})
		}
	}
	return
}

// sortedMapKeys returns a map's keys in sorted order, used whenever a
// privilege delta (keyed by grantee) must be iterated deterministically.
func sortedMapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// privilegeChanges computes the GRANT/REVOKE/REVOKE-GRANT-OPTION deltas
// between have and want, filtered against the effective default ACL for
// (owner, objType, schema), and renders them as Changes — the
// "privilege delta" step composed with the default-privilege algebra.
func privilegeChanges(dctx *Context, obj change.ObjectRef, owner string, objType acl.ObjType, schema string,
	have, want []catalog.Privilege) change.Changes {
	effective := dctx.Defaults.Effective(owner, objType, schema)
	delta := acl.ComputeDelta(have, want, effective)

	var out change.Changes
	for _, grantee := range sortedMapKeys(delta.Grant) {
		out = append(out, &change.GrantPrivilege{Object: obj, Grantee: grantee, Privileges: delta.Grant[grantee]})
	}
	for _, grantee := range sortedMapKeys(delta.Revoke) {
		out = append(out, &change.RevokePrivilege{Object: obj, Grantee: grantee, Privileges: delta.Revoke[grantee]})
	}
	for _, grantee := range sortedMapKeys(delta.RevokeGrantOption) {
		out = append(out, &change.RevokeGrantOption{Object: obj, Grantee: grantee, Privileges: delta.RevokeGrantOption[grantee]})
	}
	return out
}

// ownerChange returns an AlterOwner Change when newOwner is set and
// differs from currentOwner. It is called only for objects present in
// both catalogs and compares the two owners alone; ctx.CurrentUser plays
// no part.
func ownerChange(obj change.ObjectRef, currentOwner, newOwner string) change.Changes {
	if newOwner == "" || newOwner == currentOwner {
		return nil
	}
	return change.Changes{&change.AlterOwner{Object: obj, NewOwner: newOwner}}
}

// commentChange returns a SetComment Change when the comment differs.
func commentChange(obj change.ObjectRef, currentComment, newComment string) change.Changes {
	if currentComment == newComment {
		return nil
	}
	if newComment == "" {
		return change.Changes{&change.SetComment{Object: obj, Comment: nil}}
	}
	c := newComment
	return change.Changes{&change.SetComment{Object: obj, Comment: &c}}
}

// objectRef builds the ObjectRef cross-cutting Changes (GrantPrivilege,
// SetComment, AlterOwner) address their target through.
func objectRef(kind objtype.Kind, stableID, qualifiedName string) change.ObjectRef {
	return change.ObjectRef{
		Kind:           kind,
		StableID:       stableID,
		SQLObjectClass: sqlObjectClass(kind),
		QualifiedName:  qualifiedName,
	}
}

// sqlObjectClass maps a Kind to the keyword PostgreSQL's GRANT/COMMENT
// ON/ALTER ... OWNER TO clauses expect before the qualified name.
func sqlObjectClass(kind objtype.Kind) string {
	switch kind {
	case objtype.KindTable:
		return "TABLE"
	case objtype.KindView:
		return "VIEW"
	case objtype.KindMaterializedView:
		return "MATERIALIZED VIEW"
	case objtype.KindSequence:
		return "SEQUENCE"
	case objtype.KindSchema:
		return "SCHEMA"
	case objtype.KindFunction, objtype.KindAggregate:
		return "FUNCTION"
	case objtype.KindProcedure:
		return "PROCEDURE"
	case objtype.KindDomain:
		return "DOMAIN"
	case objtype.KindEnum, objtype.KindCompositeType, objtype.KindRange:
		return "TYPE"
	case objtype.KindForeignTable:
		return "FOREIGN TABLE"
	case objtype.KindForeignDataWrapper:
		return "FOREIGN DATA WRAPPER"
	case objtype.KindServer:
		return "FOREIGN SERVER"
	case objtype.KindLanguage:
		return "LANGUAGE"
	case objtype.KindCollation:
		return "COLLATION"
	case objtype.KindRole:
		return "ROLE"
	case objtype.KindConstraint:
		return "CONSTRAINT"
	case objtype.KindIndex:
		return "INDEX"
	case objtype.KindTrigger:
		return "TRIGGER"
	case objtype.KindRule:
		return "RULE"
	case objtype.KindRLSPolicy:
		return "POLICY"
	case objtype.KindColumn:
		return "COLUMN"
	case objtype.KindExtension:
		return "EXTENSION"
	case objtype.KindPublication:
		return "PUBLICATION"
	case objtype.KindSubscription:
		return "SUBSCRIPTION"
	case objtype.KindEventTrigger:
		return "EVENT TRIGGER"
	default:
		return ""
	}
}

// defaclObjType adapts objtype.DefaclObjType's string code to the
// pkg/acl.ObjType the default-privilege algebra expects.
func defaclObjType(kind objtype.Kind) acl.ObjType {
	return acl.ObjType(objtype.DefaclObjType(kind))
}
