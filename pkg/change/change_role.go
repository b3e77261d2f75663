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
	register(NameCreateRole, func() Named { return &CreateRole{} })
	register(NameAlterRole, func() Named { return &AlterRole{} })
	register(NameDropRole, func() Named { return &DropRole{} })
	register(NameGrantMembership, func() Named { return &GrantMembership{} })
	register(NameRevokeMembership, func() Named { return &RevokeMembership{} })
}

// RoleAttrs is the set of boolean/integer role attributes shared by
// CreateRole and AlterRole.
type RoleAttrs struct {
	Superuser       bool `json:"superuser"`
	CreateDB        bool `json:"createdb"`
	CreateRole      bool `json:"createrole"`
	Login           bool `json:"login"`
	Replication     bool `json:"replication"`
	ConnectionLimit int  `json:"connection_limit"`
}

func (a RoleAttrs) clauses(opts emit.Options) []string {
	flag := func(on bool, yes, no string) string {
		if on {
			return opts.Keyword(yes)
		}
		return opts.Keyword(no)
	}
	return []string{
		flag(a.Superuser, "superuser", "nosuperuser"),
		flag(a.CreateDB, "createdb", "nocreatedb"),
		flag(a.CreateRole, "createrole", "nocreaterole"),
		flag(a.Login, "login", "nologin"),
		flag(a.Replication, "replication", "noreplication"),
		fmt.Sprintf("%s %d", opts.Keyword("connection limit"), a.ConnectionLimit),
	}
}

// CreateRole creates a login/group role.
type CreateRole struct {
	Name string `json:"name"`
	RoleAttrs
	MemberOf []string `json:"member_of,omitempty"`
}

func (c *CreateRole) ChangeName() Name             { return NameCreateRole }
func (c *CreateRole) Kind() objtype.Kind           { return objtype.KindRole }
func (c *CreateRole) Operation() objtype.Operation { return objtype.OpCreate }
func (c *CreateRole) Scope() objtype.Scope         { return objtype.ScopeObject }
func (c *CreateRole) Creates() []string            { return []string{ident.Role(c.Name)} }
func (c *CreateRole) Requires() []string {
	reqs := make([]string, len(c.MemberOf))
	for i, r := range c.MemberOf {
		reqs[i] = ident.Role(r)
	}
	return sortedStrings(reqs)
}
func (c *CreateRole) Drops() []string { return nil }

func (c *CreateRole) Emit(opts emit.Options) (string, error) {
	clauses := c.RoleAttrs.clauses(opts)
	if len(c.MemberOf) > 0 {
		quoted := make([]string, len(c.MemberOf))
		for i, r := range c.MemberOf {
			quoted[i] = ident.Quote(r)
		}
		clauses = append(clauses, opts.Keyword("in role")+" "+strings.Join(quoted, ", "))
	}
	return fmt.Sprintf("%s %s %s;", opts.Keyword("create role"), ident.Quote(c.Name),
		strings.Join(clauses, " ")), nil
}

// AlterRole updates a role's attributes.
type AlterRole struct {
	Name string `json:"name"`
	RoleAttrs
}

func (a *AlterRole) ChangeName() Name             { return NameAlterRole }
func (a *AlterRole) Kind() objtype.Kind           { return objtype.KindRole }
func (a *AlterRole) Operation() objtype.Operation { return objtype.OpAlter }
func (a *AlterRole) Scope() objtype.Scope         { return objtype.ScopeObject }
func (a *AlterRole) Creates() []string            { return nil }
func (a *AlterRole) Requires() []string           { return []string{ident.Role(a.Name)} }
func (a *AlterRole) Drops() []string              { return nil }

func (a *AlterRole) Emit(opts emit.Options) (string, error) {
	clauses := a.RoleAttrs.clauses(opts)
	return fmt.Sprintf("%s %s %s;", opts.Keyword("alter role"), ident.Quote(a.Name),
		strings.Join(clauses, " ")), nil
}

// DropRole drops a role.
type DropRole struct {
	Name string `json:"name"`
}

func (d *DropRole) ChangeName() Name             { return NameDropRole }
func (d *DropRole) Kind() objtype.Kind           { return objtype.KindRole }
func (d *DropRole) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropRole) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropRole) Creates() []string            { return nil }
func (d *DropRole) Requires() []string           { return nil }
func (d *DropRole) Drops() []string              { return []string{ident.Role(d.Name)} }

func (d *DropRole) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s;", opts.Keyword("drop role"), ident.Quote(d.Name)), nil
}

// GrantMembership adds Member to Role's membership.
type GrantMembership struct {
	Role   string `json:"role"`
	Member string `json:"member"`
}

func (g *GrantMembership) ChangeName() Name             { return NameGrantMembership }
func (g *GrantMembership) Kind() objtype.Kind           { return objtype.KindRole }
func (g *GrantMembership) Operation() objtype.Operation { return objtype.OpAlter }
func (g *GrantMembership) Scope() objtype.Scope         { return objtype.ScopeMembership }
func (g *GrantMembership) Creates() []string {
	return []string{ident.Membership(g.Role, g.Member)}
}
func (g *GrantMembership) Requires() []string {
	return sortedStrings([]string{ident.Role(g.Role), ident.Role(g.Member)})
}
func (g *GrantMembership) Drops() []string { return nil }

func (g *GrantMembership) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s;", opts.Keyword("grant"), ident.Quote(g.Role),
		opts.Keyword("to"), ident.Quote(g.Member)), nil
}

// RevokeMembership removes Member from Role's membership.
type RevokeMembership struct {
	Role   string `json:"role"`
	Member string `json:"member"`
}

func (r *RevokeMembership) ChangeName() Name             { return NameRevokeMembership }
func (r *RevokeMembership) Kind() objtype.Kind           { return objtype.KindRole }
func (r *RevokeMembership) Operation() objtype.Operation { return objtype.OpAlter }
func (r *RevokeMembership) Scope() objtype.Scope         { return objtype.ScopeMembership }
func (r *RevokeMembership) Creates() []string            { return nil }
func (r *RevokeMembership) Requires() []string {
	return sortedStrings([]string{ident.Role(r.Role), ident.Role(r.Member)})
}
func (r *RevokeMembership) Drops() []string {
	return []string{ident.Membership(r.Role, r.Member)}
}

func (r *RevokeMembership) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s;", opts.Keyword("revoke"), ident.Quote(r.Role),
		opts.Keyword("from"), ident.Quote(r.Member)), nil
}
