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
	register(NameCreateTable, func() Named { return &CreateTable{} })
	register(NameAlterTable, func() Named { return &AlterTable{} })
	register(NameDropTable, func() Named { return &DropTable{} })
}

// ColumnDef is a column as it appears in a CREATE TABLE column list.
type ColumnDef struct {
	Name          string  `json:"name"`
	DataType      string  `json:"data_type"`
	NotNull       bool    `json:"not_null"`
	Default       *string `json:"default,omitempty"`
	GeneratedExpr *string `json:"generated_expr,omitempty"`
	Collation     string  `json:"collation,omitempty"`
}

func (c ColumnDef) render(opts emit.Options) string {
	parts := []string{ident.Quote(c.Name), c.DataType}
	if c.Collation != "" {
		parts = append(parts, opts.Keyword("collate")+" "+ident.Quote(c.Collation))
	}
	if c.GeneratedExpr != nil {
		parts = append(parts, fmt.Sprintf("%s (%s) %s", opts.Keyword("generated always as"),
			*c.GeneratedExpr, opts.Keyword("stored")))
	}
	if c.NotNull {
		parts = append(parts, opts.Keyword("not null"))
	}
	if c.Default != nil {
		parts = append(parts, opts.Keyword("default")+" "+*c.Default)
	}
	return strings.Join(parts, " ")
}

// CreateTable creates a bare table: columns only. Constraints, indexes,
// triggers, rules and policies are added as their own Change values so
// the sort engine can interleave them with cross-object dependencies
// (e.g. a foreign key waiting on the referenced table).
type CreateTable struct {
	Schema  string      `json:"schema"`
	Name    string      `json:"name"`
	Owner   string      `json:"owner,omitempty"`
	Columns []ColumnDef `json:"columns"`
}

func (c *CreateTable) ChangeName() Name             { return NameCreateTable }
func (c *CreateTable) Kind() objtype.Kind           { return objtype.KindTable }
func (c *CreateTable) Operation() objtype.Operation { return objtype.OpCreate }
func (c *CreateTable) Scope() objtype.Scope         { return objtype.ScopeObject }

func (c *CreateTable) tableID() string { return ident.Table(c.Schema, c.Name) }

func (c *CreateTable) Creates() []string {
	creates := []string{c.tableID()}
	for _, col := range c.Columns {
		creates = append(creates, ident.Column(c.Schema, c.Name, col.Name))
	}
	return creates
}
func (c *CreateTable) Requires() []string {
	return sortedStrings(nonEmpty(ident.Schema(c.Schema), ident.Role(c.Owner)))
}
func (c *CreateTable) Drops() []string { return nil }

func (c *CreateTable) Emit(opts emit.Options) (string, error) {
	cols := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		cols[i] = col.render(opts)
	}
	stmt := fmt.Sprintf("%s %s %s", opts.Keyword("create table"),
		ident.QuoteQualified(c.Schema, c.Name), opts.JoinColumns(cols, 1))
	return stmt + ";", nil
}

// AlterTable covers the table-level facets that are genuinely alterable
// in place: RLS enablement and rename. Owner changes go through the
// shared AlterOwner Change.
type AlterTable struct {
	Schema        string  `json:"schema"`
	Name          string  `json:"name"`
	RLSEnabled    *bool   `json:"rls_enabled,omitempty"`
	RLSForced     *bool   `json:"rls_forced,omitempty"`
	RenameTo      *string `json:"rename_to,omitempty"`
}

func (a *AlterTable) ChangeName() Name             { return NameAlterTable }
func (a *AlterTable) Kind() objtype.Kind           { return objtype.KindTable }
func (a *AlterTable) Operation() objtype.Operation { return objtype.OpAlter }
func (a *AlterTable) Scope() objtype.Scope         { return objtype.ScopeObject }
func (a *AlterTable) Creates() []string            { return nil }
func (a *AlterTable) Requires() []string {
	return []string{ident.Table(a.Schema, a.Name)}
}
func (a *AlterTable) Drops() []string { return nil }

func (a *AlterTable) Emit(opts emit.Options) (string, error) {
	qualified := ident.QuoteQualified(a.Schema, a.Name)
	var stmts []string
	if a.RLSEnabled != nil {
		verb := "disable"
		if *a.RLSEnabled {
			verb = "enable"
		}
		stmts = append(stmts, fmt.Sprintf("%s %s %s %s", opts.Keyword("alter table"), qualified,
			opts.Keyword(verb+" row level security"), ""))
	}
	if a.RLSForced != nil {
		verb := "no force"
		if *a.RLSForced {
			verb = "force"
		}
		stmts = append(stmts, fmt.Sprintf("%s %s %s", opts.Keyword("alter table"), qualified,
			opts.Keyword(verb+" row level security")))
	}
	if a.RenameTo != nil {
		stmts = append(stmts, fmt.Sprintf("%s %s %s %s", opts.Keyword("alter table"), qualified,
			opts.Keyword("rename to"), ident.Quote(*a.RenameTo)))
	}
	for i, s := range stmts {
		stmts[i] = strings.TrimSpace(s) + ";"
	}
	return strings.Join(stmts, "\n"), nil
}

// DropTable drops a table, optionally cascading to dependents.
type DropTable struct {
	Schema  string `json:"schema"`
	Name    string `json:"name"`
	Cascade bool   `json:"cascade,omitempty"`
}

func (d *DropTable) ChangeName() Name             { return NameDropTable }
func (d *DropTable) Kind() objtype.Kind           { return objtype.KindTable }
func (d *DropTable) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropTable) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropTable) Creates() []string            { return nil }
func (d *DropTable) Requires() []string           { return nil }
func (d *DropTable) Drops() []string              { return []string{ident.Table(d.Schema, d.Name)} }

func (d *DropTable) Emit(opts emit.Options) (string, error) {
	stmt := fmt.Sprintf("%s %s", opts.Keyword("drop table"), ident.QuoteQualified(d.Schema, d.Name))
	if d.Cascade {
		stmt += " " + opts.Keyword("cascade")
	}
	return stmt + ";", nil
}
