// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"

	"github.com/pgdiffhq/catalogdiff/pkg/emit"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

func init() {
	register(NameCreateDomain, func() Named { return &CreateDomain{} })
	register(NameAlterDomain, func() Named { return &AlterDomain{} })
	register(NameDropDomain, func() Named { return &DropDomain{} })
}

// CreateDomain creates a domain type. Domain constraints are attached
// via their own (unnamed in PostgreSQL unless named) CHECK clauses
// listed inline, since a domain's constraints are not independently
// alterable the way a table's are.
type CreateDomain struct {
	Schema      string          `json:"schema"`
	Name        string          `json:"name"`
	Owner       string          `json:"owner,omitempty"`
	BaseType    string          `json:"base_type"`
	NotNull     bool            `json:"not_null"`
	Default     *string         `json:"default,omitempty"`
	Constraints []ConstraintDef `json:"constraints,omitempty"`
}

func (c *CreateDomain) ChangeName() Name             { return NameCreateDomain }
func (c *CreateDomain) Kind() objtype.Kind           { return objtype.KindDomain }
func (c *CreateDomain) Operation() objtype.Operation { return objtype.OpCreate }
func (c *CreateDomain) Scope() objtype.Scope         { return objtype.ScopeObject }
func (c *CreateDomain) Creates() []string            { return []string{ident.Domain(c.Schema, c.Name)} }
func (c *CreateDomain) Requires() []string {
	return sortedStrings(nonEmpty(ident.Schema(c.Schema), ident.Role(c.Owner)))
}
func (c *CreateDomain) Drops() []string { return nil }

func (c *CreateDomain) Emit(opts emit.Options) (string, error) {
	stmt := fmt.Sprintf("%s %s %s %s", opts.Keyword("create domain"), ident.QuoteQualified(c.Schema, c.Name),
		opts.Keyword("as"), c.BaseType)
	if c.NotNull {
		stmt += " " + opts.Keyword("not null")
	}
	if c.Default != nil {
		stmt += " " + opts.Keyword("default") + " " + *c.Default
	}
	for _, con := range c.Constraints {
		stmt += " " + con.render(opts)
	}
	return stmt + ";", nil
}

// AlterDomain changes a domain's NOT NULL or default — the only facets
// this Change alters in place. Check constraints are not altered through
// it: the diff replaces the whole domain (drop+create) when its
// constraints differ.
type AlterDomain struct {
	Schema      string  `json:"schema"`
	Name        string  `json:"name"`
	NewNotNull  *bool   `json:"new_not_null,omitempty"`
	NewDefault  *string `json:"new_default,omitempty"`
	DropDefault bool    `json:"drop_default,omitempty"`
}

func (a *AlterDomain) ChangeName() Name             { return NameAlterDomain }
func (a *AlterDomain) Kind() objtype.Kind           { return objtype.KindDomain }
func (a *AlterDomain) Operation() objtype.Operation { return objtype.OpAlter }
func (a *AlterDomain) Scope() objtype.Scope         { return objtype.ScopeObject }
func (a *AlterDomain) Creates() []string            { return nil }
func (a *AlterDomain) Requires() []string           { return []string{ident.Domain(a.Schema, a.Name)} }
func (a *AlterDomain) Drops() []string              { return nil }

func (a *AlterDomain) Emit(opts emit.Options) (string, error) {
	qualified := ident.QuoteQualified(a.Schema, a.Name)
	var stmts []string
	if a.NewNotNull != nil {
		verb := "drop not null"
		if *a.NewNotNull {
			verb = "set not null"
		}
		stmts = append(stmts, fmt.Sprintf("%s %s %s;", opts.Keyword("alter domain"), qualified, opts.Keyword(verb)))
	}
	if a.DropDefault {
		stmts = append(stmts, fmt.Sprintf("%s %s %s;", opts.Keyword("alter domain"), qualified, opts.Keyword("drop default")))
	} else if a.NewDefault != nil {
		stmts = append(stmts, fmt.Sprintf("%s %s %s %s;", opts.Keyword("alter domain"), qualified, opts.Keyword("set default"), *a.NewDefault))
	}
	return joinStatements(opts, stmts...), nil
}

// DropDomain drops a domain type.
type DropDomain struct {
	Schema  string `json:"schema"`
	Name    string `json:"name"`
	Cascade bool   `json:"cascade,omitempty"`
}

func (d *DropDomain) ChangeName() Name             { return NameDropDomain }
func (d *DropDomain) Kind() objtype.Kind           { return objtype.KindDomain }
func (d *DropDomain) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropDomain) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropDomain) Creates() []string            { return nil }
func (d *DropDomain) Requires() []string           { return nil }
func (d *DropDomain) Drops() []string              { return []string{ident.Domain(d.Schema, d.Name)} }

func (d *DropDomain) Emit(opts emit.Options) (string, error) {
	stmt := fmt.Sprintf("%s %s", opts.Keyword("drop domain"), ident.QuoteQualified(d.Schema, d.Name))
	if d.Cascade {
		stmt += " " + opts.Keyword("cascade")
	}
	return stmt + ";", nil
}
