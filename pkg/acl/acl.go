// SPDX-License-Identifier: Apache-2.0

// Package acl implements the default-privilege algebra: given a
// grantor/object-type/schema, it returns the ACL entries newly created
// objects of that type inherit, composed with
// PostgreSQL's own implicit defaults (owner gets ALL, PUBLIC gets USAGE
// on new types). The diff engine uses this to avoid emitting GRANT/REVOKE
// statements that would just restate what PostgreSQL already grants for
// free.
package acl

import "sort"

// ObjType mirrors pg_default_acl.defaclobjtype.
type ObjType string

const (
	Relation ObjType = "r" // tables, views
	Sequence ObjType = "S"
	Routine  ObjType = "f" // functions, procedures, aggregates
	Type     ObjType = "T"
	Schema   ObjType = "n"
)

// Privilege is a single grantee/privilege pair as it would appear in an
// ACL array, e.g. `grantee=SELECT/owner`.
type Privilege struct {
	Grantee   string // empty grantee means PUBLIC
	Priv      string
	Grantable bool
}

// DefaultEntry is one row of pg_default_acl, scoped to either the whole
// database (Schema == "") or a single schema.
type DefaultEntry struct {
	Grantor string
	ObjType ObjType
	Schema  string // "" means global
	Acl     []Privilege
}

// State is the set of default ACL entries in effect for a catalog,
// keyed by (grantor, objtype, schema|global).
type State struct {
	entries map[string][]DefaultEntry
}

func key(grantor string, objType ObjType, schema string) string {
	return grantor + "\x00" + string(objType) + "\x00" + schema
}

// NewState builds a default-privilege lookup from the catalog's raw
// default_privilege_state rows.
func NewState(entries []DefaultEntry) *State {
	s := &State{entries: map[string][]DefaultEntry{}}
	for _, e := range entries {
		k := key(e.Grantor, e.ObjType, e.Schema)
		s.entries[k] = append(s.entries[k], e)
	}
	return s
}

// builtinPublicUsage is PostgreSQL's implicit grant of USAGE on newly
// created types to PUBLIC, which is never explicit in pg_default_acl but
// must still be filtered out of diff output.
func builtinPublicUsage(objType ObjType) []Privilege {
	if objType == Type {
		return []Privilege{{Grantee: "", Priv: "USAGE", Grantable: false}}
	}
	return nil
}

// Effective returns the ACL a newly created object of objType in schema
// (owned by owner) would receive by default: the owner's implicit ALL,
// PostgreSQL's builtin PUBLIC grants, and any explicit default-privilege
// entries matching (grantor=owner, objType, schema) composed with the
// database-global entries for the same grantor/objType.
func (s *State) Effective(owner string, objType ObjType, schema string) []Privilege {
	result := []Privilege{{Grantee: owner, Priv: "ALL", Grantable: true}}
	result = append(result, builtinPublicUsage(objType)...)

	if s == nil {
		return result
	}

	for _, e := range s.entries[key(owner, objType, "")] {
		result = append(result, e.Acl...)
	}
	if schema != "" {
		for _, e := range s.entries[key(owner, objType, schema)] {
			result = append(result, e.Acl...)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Grantee != result[j].Grantee {
			return result[i].Grantee < result[j].Grantee
		}
		return result[i].Priv < result[j].Priv
	})
	return result
}

// Contains reports whether p is already part of the effective default ACL,
// i.e. whether granting it explicitly would be redundant.
func Contains(effective []Privilege, p Privilege) bool {
	for _, e := range effective {
		if e.Grantee == p.Grantee && e.Priv == p.Priv && e.Grantable == p.Grantable {
			return true
		}
		// ALL subsumes any single privilege at the same grantable level.
		if e.Grantee == p.Grantee && e.Priv == "ALL" && e.Grantable == p.Grantable {
			return true
		}
	}
	return false
}

// Delta computes the GRANT/REVOKE/REVOKE-GRANT-OPTION sets needed to move
// from `have` to `want`, grouped by grantee, after filtering both sides
// against the effective default ACL (so neither side restates the
// implicit owner/PUBLIC defaults).
type Delta struct {
	Grant             map[string][]string // grantee -> privileges to grant
	Revoke            map[string][]string // grantee -> privileges to revoke entirely
	RevokeGrantOption map[string][]string // grantee -> privileges to revoke WITH GRANT OPTION only
}

func NewDelta() *Delta {
	return &Delta{
		Grant:             map[string][]string{},
		Revoke:            map[string][]string{},
		RevokeGrantOption: map[string][]string{},
	}
}

func ComputeDelta(have, want, effective []Privilege) *Delta {
	d := NewDelta()

	haveByKey := indexByGranteePriv(have)
	wantByKey := indexByGranteePriv(want)

	for k, w := range wantByKey {
		if Contains(effective, Privilege{Grantee: k.grantee, Priv: k.priv, Grantable: w.Grantable}) {
			continue
		}
		h, existed := haveByKey[k]
		if !existed {
			d.Grant[k.grantee] = append(d.Grant[k.grantee], k.priv)
			continue
		}
		if h.Grantable && !w.Grantable {
			d.RevokeGrantOption[k.grantee] = append(d.RevokeGrantOption[k.grantee], k.priv)
		} else if !h.Grantable && w.Grantable {
			// Re-grant with grant option; PostgreSQL requires a fresh GRANT.
			d.Grant[k.grantee] = append(d.Grant[k.grantee], k.priv)
		}
	}

	for k := range haveByKey {
		if Contains(effective, haveByKey[k]) {
			continue
		}
		if _, stillWanted := wantByKey[k]; !stillWanted {
			d.Revoke[k.grantee] = append(d.Revoke[k.grantee], k.priv)
		}
	}

	for _, m := range []map[string][]string{d.Grant, d.Revoke, d.RevokeGrantOption} {
		for g := range m {
			sort.Strings(m[g])
		}
	}

	return d
}

type granteePriv struct {
	grantee, priv string
}

func indexByGranteePriv(privs []Privilege) map[granteePriv]Privilege {
	out := make(map[granteePriv]Privilege, len(privs))
	for _, p := range privs {
		out[granteePriv{p.Grantee, p.Priv}] = p
	}
	return out
}
