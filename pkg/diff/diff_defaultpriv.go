// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"github.com/pgdiffhq/catalogdiff/pkg/acl"
	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
)

// diffDefaultPrivileges handles pkg/catalog.Catalog.DefaultPrivileges —
// the raw pg_default_acl rows, keyed by (grantor, objtype, schema). This
// is distinct from privilegeChanges, which diffs an individual object's
// Acl against the default-privilege baseline; here the baseline itself
// is what's being diffed, via ALTER DEFAULT PRIVILEGES.
func diffDefaultPrivileges(dctx *Context, source, target *catalog.Catalog) change.Changes {
	sourceByKey := indexDefaultPrivileges(source.DefaultPrivileges)
	targetByKey := indexDefaultPrivileges(target.DefaultPrivileges)

	var out change.Changes
	for _, k := range sortedUnionKeys(sourceByKey, targetByKey) {
		s, t := sourceByKey[k], targetByKey[k]
		have, want := s.Acl, t.Acl
		dpt := defaultPrivilegeTarget(t)
		if t.Grantor == "" {
			dpt = defaultPrivilegeTarget(s)
		}

		delta := acl.ComputeDelta(have, want, nil)
		for _, grantee := range sortedMapKeys(delta.Grant) {
			out = append(out, &change.GrantDefaultPrivileges{Target: dpt, Grantee: grantee, Privileges: delta.Grant[grantee]})
		}
		for _, grantee := range sortedMapKeys(delta.Revoke) {
			out = append(out, &change.RevokeDefaultPrivileges{Target: dpt, Grantee: grantee, Privileges: delta.Revoke[grantee]})
		}
		for _, grantee := range sortedMapKeys(delta.RevokeGrantOption) {
			out = append(out, &change.RevokeDefaultPrivileges{Target: dpt, Grantee: grantee, Privileges: delta.RevokeGrantOption[grantee]})
		}
	}
	return out
}

func defaultPrivilegeKey(e catalog.DefaultPrivilegeEntry) string {
	return string(e.ObjType) + "\x00" + e.Grantor + "\x00" + e.Schema
}

func indexDefaultPrivileges(entries []catalog.DefaultPrivilegeEntry) map[string]catalog.DefaultPrivilegeEntry {
	m := make(map[string]catalog.DefaultPrivilegeEntry, len(entries))
	for _, e := range entries {
		m[defaultPrivilegeKey(e)] = e
	}
	return m
}

func defaultPrivilegeTarget(e catalog.DefaultPrivilegeEntry) change.DefaultPrivilegeTarget {
	return change.DefaultPrivilegeTarget{Grantor: e.Grantor, ObjType: string(e.ObjType), Schema: e.Schema}
}
