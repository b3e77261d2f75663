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
	register(NameGrantPrivilege, func() Named { return &GrantPrivilege{} })
	register(NameRevokePrivilege, func() Named { return &RevokePrivilege{} })
	register(NameRevokeGrantOption, func() Named { return &RevokeGrantOption{} })
	register(NameSetComment, func() Named { return &SetComment{} })
	register(NameAlterOwner, func() Named { return &AlterOwner{} })
}

// ObjectRef identifies the PostgreSQL object an ACL/comment/owner Change
// applies to: the textual `GRANT ... ON <SQLObjectClass> <QualifiedName>`
// fragment and the stable ID the sort engine should key edges on.
type ObjectRef struct {
	Kind          objtype.Kind `json:"kind"`
	StableID      string       `json:"stable_id"`
	SQLObjectClass string      `json:"sql_object_class"` // "TABLE", "SEQUENCE", "FUNCTION", "SCHEMA", ...
	QualifiedName string       `json:"qualified_name"`   // already-quoted, ready to splice
}

func (o ObjectRef) onClause(opts emit.Options) string {
	if o.SQLObjectClass == "" {
		return o.QualifiedName
	}
	return opts.Keyword(o.SQLObjectClass) + " " + o.QualifiedName
}

// GrantPrivilege grants one or more privileges to a grantee on an
// object, optionally WITH GRANT OPTION.
type GrantPrivilege struct {
	Object      ObjectRef `json:"object"`
	Grantee     string    `json:"grantee"` // "" means PUBLIC
	Privileges  []string  `json:"privileges"`
	GrantOption bool      `json:"grant_option,omitempty"`
}

func (g *GrantPrivilege) ChangeName() Name             { return NameGrantPrivilege }
func (g *GrantPrivilege) Kind() objtype.Kind           { return g.Object.Kind }
func (g *GrantPrivilege) Operation() objtype.Operation { return objtype.OpAlter }
func (g *GrantPrivilege) Scope() objtype.Scope         { return objtype.ScopePrivilege }

func (g *GrantPrivilege) granteeStableID() string {
	if g.Grantee == "" {
		return "role:PUBLIC"
	}
	return ident.Role(g.Grantee)
}

func (g *GrantPrivilege) Creates() []string {
	return []string{ident.ACL(g.Object.StableID, g.Grantee)}
}
func (g *GrantPrivilege) Requires() []string {
	return sortedStrings(nonEmpty(g.Object.StableID, g.granteeStableID()))
}
func (g *GrantPrivilege) Drops() []string { return nil }

func (g *GrantPrivilege) Emit(opts emit.Options) (string, error) {
	grantee := opts.Keyword("public")
	if g.Grantee != "" {
		grantee = ident.Quote(g.Grantee)
	}
	stmt := fmt.Sprintf("%s %s %s %s %s", opts.Keyword("grant"), strings.Join(g.Privileges, ", "),
		opts.Keyword("on"), g.Object.onClause(opts), opts.Keyword("to")+" "+grantee)
	if g.GrantOption {
		stmt += " " + opts.Keyword("with grant option")
	}
	return stmt + ";", nil
}

// RevokePrivilege fully revokes one or more privileges from a grantee.
type RevokePrivilege struct {
	Object     ObjectRef `json:"object"`
	Grantee    string    `json:"grantee"`
	Privileges []string  `json:"privileges"`
}

func (r *RevokePrivilege) ChangeName() Name             { return NameRevokePrivilege }
func (r *RevokePrivilege) Kind() objtype.Kind           { return r.Object.Kind }
func (r *RevokePrivilege) Operation() objtype.Operation { return objtype.OpAlter }
func (r *RevokePrivilege) Scope() objtype.Scope         { return objtype.ScopePrivilege }
func (r *RevokePrivilege) Creates() []string            { return nil }
func (r *RevokePrivilege) Requires() []string {
	return sortedStrings(nonEmpty(r.Object.StableID))
}
func (r *RevokePrivilege) Drops() []string {
	grantee := r.Grantee
	return []string{ident.ACL(r.Object.StableID, grantee)}
}

func (r *RevokePrivilege) Emit(opts emit.Options) (string, error) {
	grantee := opts.Keyword("public")
	if r.Grantee != "" {
		grantee = ident.Quote(r.Grantee)
	}
	return fmt.Sprintf("%s %s %s %s %s %s;", opts.Keyword("revoke"), strings.Join(r.Privileges, ", "),
		opts.Keyword("on"), r.Object.onClause(opts), opts.Keyword("from"), grantee), nil
}

// RevokeGrantOption downgrades a grant from WITH GRANT OPTION to a plain
// grant, without removing the underlying privilege.
type RevokeGrantOption struct {
	Object     ObjectRef `json:"object"`
	Grantee    string    `json:"grantee"`
	Privileges []string  `json:"privileges"`
}

func (r *RevokeGrantOption) ChangeName() Name             { return NameRevokeGrantOption }
func (r *RevokeGrantOption) Kind() objtype.Kind           { return r.Object.Kind }
func (r *RevokeGrantOption) Operation() objtype.Operation { return objtype.OpAlter }
func (r *RevokeGrantOption) Scope() objtype.Scope         { return objtype.ScopePrivilege }
func (r *RevokeGrantOption) Creates() []string            { return nil }
func (r *RevokeGrantOption) Requires() []string {
	return sortedStrings(nonEmpty(r.Object.StableID, ident.ACL(r.Object.StableID, r.Grantee)))
}
func (r *RevokeGrantOption) Drops() []string { return nil }

func (r *RevokeGrantOption) Emit(opts emit.Options) (string, error) {
	grantee := opts.Keyword("public")
	if r.Grantee != "" {
		grantee = ident.Quote(r.Grantee)
	}
	return fmt.Sprintf("%s %s %s %s %s %s %s;", opts.Keyword("revoke grant option for"),
		strings.Join(r.Privileges, ", "), opts.Keyword("on"), r.Object.onClause(opts),
		opts.Keyword("from"), grantee, opts.Keyword("cascade")), nil
}

// SetComment sets or clears (Comment == nil) a COMMENT ON for any
// commentable object. Comments are treated as a virtual,
// independently-sortable Change distinct from the object they annotate.
type SetComment struct {
	Object  ObjectRef `json:"object"`
	Comment *string   `json:"comment"`
}

func (s *SetComment) ChangeName() Name             { return NameSetComment }
func (s *SetComment) Kind() objtype.Kind           { return s.Object.Kind }
func (s *SetComment) Operation() objtype.Operation { return objtype.OpAlter }
func (s *SetComment) Scope() objtype.Scope         { return objtype.ScopeComment }
func (s *SetComment) Creates() []string            { return []string{ident.Comment(s.Object.StableID)} }
func (s *SetComment) Requires() []string           { return []string{s.Object.StableID} }
func (s *SetComment) Drops() []string              { return nil }

func (s *SetComment) Emit(opts emit.Options) (string, error) {
	value := opts.Keyword("null")
	if s.Comment != nil {
		value = ident.Literal(*s.Comment)
	}
	return fmt.Sprintf("%s %s %s %s;", opts.Keyword("comment on"), s.Object.onClause(opts),
		opts.Keyword("is"), value), nil
}

// AlterOwner reassigns an object's owner — applicable to any ownable
// kind (schema has its own AlterSchema, kept separate since ALTER SCHEMA
// uses a different clause shape than ALTER <kind> ... OWNER TO).
type AlterOwner struct {
	Object   ObjectRef `json:"object"`
	NewOwner string    `json:"new_owner"`
}

func (a *AlterOwner) ChangeName() Name             { return NameAlterOwner }
func (a *AlterOwner) Kind() objtype.Kind           { return a.Object.Kind }
func (a *AlterOwner) Operation() objtype.Operation { return objtype.OpAlter }
func (a *AlterOwner) Scope() objtype.Scope         { return objtype.ScopeOwner }
func (a *AlterOwner) Creates() []string            { return nil }
func (a *AlterOwner) Requires() []string {
	return sortedStrings(nonEmpty(a.Object.StableID, ident.Role(a.NewOwner)))
}
func (a *AlterOwner) Drops() []string { return nil }

func (a *AlterOwner) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s;", opts.Keyword("alter"), a.Object.onClause(opts),
		opts.Keyword("owner to"), ident.Quote(a.NewOwner)), nil
}
