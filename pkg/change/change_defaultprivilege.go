// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"
	"strings"

	"github.com/pgdiffhq/catalogdiff/pkg/emit"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

func init() {
	register(NameGrantDefaultPrivileges, func() Named { return &GrantDefaultPrivileges{} })
	register(NameRevokeDefaultPrivileges, func() Named { return &RevokeDefaultPrivileges{} })
}

// DefaultPrivilegeTarget identifies the (grantor, objtype, schema) row an
// ALTER DEFAULT PRIVILEGES statement addresses, mirroring
// pg_default_acl — see pkg/acl's default-privilege algebra.
type DefaultPrivilegeTarget struct {
	Grantor string `json:"grantor,omitempty"`
	ObjType string `json:"obj_type"` // r, S, f, T, n
	Schema  string `json:"schema,omitempty"` // "" means database-global
}

func (t DefaultPrivilegeTarget) prefix(opts emit.Options) string {
	stmt := opts.Keyword("alter default privileges")
	if t.Grantor != "" {
		stmt += " " + opts.Keyword("for role") + " " + ident.Quote(t.Grantor)
	}
	if t.Schema != "" {
		stmt += " " + opts.Keyword("in schema") + " " + ident.Quote(t.Schema)
	}
	return stmt
}

func (t DefaultPrivilegeTarget) stableID(grantee string) string {
	return ident.DefaultACL(t.Grantor, t.ObjType, t.Schema, grantee)
}

func (t DefaultPrivilegeTarget) objTypeKeyword() string {
	switch t.ObjType {
	case "r":
		return "tables"
	case "S":
		return "sequences"
	case "f":
		return "functions"
	case "T":
		return "types"
	case "n":
		return "schemas"
	default:
		return "tables"
	}
}

func (t DefaultPrivilegeTarget) requires() []string {
	schema := ""
	if t.Schema != "" {
		schema = ident.Schema(t.Schema)
	}
	return sortedStrings(nonEmpty(ident.Role(t.Grantor), schema))
}

// GrantDefaultPrivileges installs a standing grant future objects of
// ObjType created by Grantor (in Schema, or database-wide) will receive
// automatically, via ALTER DEFAULT PRIVILEGES ... GRANT.
type GrantDefaultPrivileges struct {
	Target      DefaultPrivilegeTarget `json:"target"`
	Grantee     string                 `json:"grantee"` // "" means PUBLIC
	Privileges  []string               `json:"privileges"`
	GrantOption bool                   `json:"grant_option,omitempty"`
}

func (g *GrantDefaultPrivileges) ChangeName() Name             { return NameGrantDefaultPrivileges }
func (g *GrantDefaultPrivileges) Kind() objtype.Kind           { return objtype.KindSchema }
func (g *GrantDefaultPrivileges) Operation() objtype.Operation { return objtype.OpAlter }
func (g *GrantDefaultPrivileges) Scope() objtype.Scope         { return objtype.ScopePrivilege }
func (g *GrantDefaultPrivileges) Creates() []string {
	return []string{g.Target.stableID(g.Grantee)}
}
func (g *GrantDefaultPrivileges) Requires() []string {
	reqs := g.Target.requires()
	if g.Grantee != "" {
		reqs = sortedStrings(append(reqs, ident.Role(g.Grantee)))
	}
	return reqs
}
func (g *GrantDefaultPrivileges) Drops() []string { return nil }

func (g *GrantDefaultPrivileges) Emit(opts emit.Options) (string, error) {
	grantee := opts.Keyword("public")
	if g.Grantee != "" {
		grantee = ident.Quote(g.Grantee)
	}
	stmt := fmt.Sprintf("%s %s %s %s %s %s %s", g.Target.prefix(opts), opts.Keyword("grant"),
		strings.Join(g.Privileges, ", "), opts.Keyword("on"), opts.Keyword(g.Target.objTypeKeyword()),
		opts.Keyword("to"), grantee)
	if g.GrantOption {
		stmt += " " + opts.Keyword("with grant option")
	}
	return stmt + ";", nil
}

// RevokeDefaultPrivileges removes a standing default-privilege grant via
// ALTER DEFAULT PRIVILEGES ... REVOKE.
type RevokeDefaultPrivileges struct {
	Target     DefaultPrivilegeTarget `json:"target"`
	Grantee    string                 `json:"grantee"`
	Privileges []string               `json:"privileges"`
}

func (r *RevokeDefaultPrivileges) ChangeName() Name             { return NameRevokeDefaultPrivileges }
func (r *RevokeDefaultPrivileges) Kind() objtype.Kind           { return objtype.KindSchema }
func (r *RevokeDefaultPrivileges) Operation() objtype.Operation { return objtype.OpAlter }
func (r *RevokeDefaultPrivileges) Scope() objtype.Scope         { return objtype.ScopePrivilege }
func (r *RevokeDefaultPrivileges) Creates() []string            { return nil }
func (r *RevokeDefaultPrivileges) Requires() []string           { return r.Target.requires() }
func (r *RevokeDefaultPrivileges) Drops() []string {
	return []string{r.Target.stableID(r.Grantee)}
}

func (r *RevokeDefaultPrivileges) Emit(opts emit.Options) (string, error) {
	grantee := opts.Keyword("public")
	if r.Grantee != "" {
		grantee = ident.Quote(r.Grantee)
	}
	return fmt.Sprintf("%s %s %s %s %s %s %s;", r.Target.prefix(opts), opts.Keyword("revoke"),
		strings.Join(r.Privileges, ", "), opts.Keyword("on"), opts.Keyword(r.Target.objTypeKeyword()),
		opts.Keyword("from"), grantee), nil
}
