// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"sort"

	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

// diffRoles handles pkg/catalog.Role. Roles carry no owner or ACL of
// their own; membership is diffed separately as a set of (role, member)
// edges since MemberOf records the "member of" direction.
func diffRoles(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.Roles, target.Roles)

	var out change.Changes
	for _, r := range created {
		out = append(out, &change.CreateRole{Name: r.Name, RoleAttrs: roleAttrs(r), MemberOf: r.MemberOf})
		out = append(out, commentChange(roleRef(r.StableID(), r.Name), "", r.Comment)...)
	}
	for _, r := range dropped {
		out = append(out, &change.DropRole{Name: r.Name})
	}
	for _, a := range altered {
		if roleAttrs(a.Source) != roleAttrs(a.Target) {
			out = append(out, &change.AlterRole{Name: a.Target.Name, RoleAttrs: roleAttrs(a.Target)})
		}
		out = append(out, commentChange(roleRef(a.ID, a.Target.Name), a.Source.Comment, a.Target.Comment)...)
		out = append(out, membershipChanges(a.Target.Name, a.Source.MemberOf, a.Target.MemberOf)...)
	}
	return out
}

func roleAttrs(r *catalog.Role) change.RoleAttrs {
	return change.RoleAttrs{
		Superuser:       r.Superuser,
		CreateDB:        r.CreateDB,
		CreateRole:      r.CreateRole,
		Login:           r.Login,
		Replication:     r.Replication,
		ConnectionLimit: r.ConnectionLimit,
	}
}

// membershipChanges diffs the set of groups member belongs to, emitting
// GrantMembership/RevokeMembership for each group added/removed.
func membershipChanges(member string, sourceGroups, targetGroups []string) change.Changes {
	have := make(map[string]struct{}, len(sourceGroups))
	for _, g := range sourceGroups {
		have[g] = struct{}{}
	}
	want := make(map[string]struct{}, len(targetGroups))
	for _, g := range targetGroups {
		want[g] = struct{}{}
	}

	var out change.Changes
	for _, g := range sortedSetKeys(want) {
		if _, ok := have[g]; !ok {
			out = append(out, &change.GrantMembership{Role: g, Member: member})
		}
	}
	for _, g := range sortedSetKeys(have) {
		if _, ok := want[g]; !ok {
			out = append(out, &change.RevokeMembership{Role: g, Member: member})
		}
	}
	return out
}

func sortedSetKeys(s map[string]struct{}) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func roleRef(stableID, name string) change.ObjectRef {
	return objectRef(objtype.KindRole, stableID, ident.Quote(name))
}
