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
	register(NameAddColumn, func() Named { return &AddColumn{} })
	register(NameAlterColumn, func() Named { return &AlterColumn{} })
	register(NameDropColumn, func() Named { return &DropColumn{} })
}

// AddColumn adds a new column to an existing table.
type AddColumn struct {
	Schema string    `json:"schema"`
	Table  string    `json:"table"`
	Column ColumnDef `json:"column"`
}

func (a *AddColumn) ChangeName() Name             { return NameAddColumn }
func (a *AddColumn) Kind() objtype.Kind           { return objtype.KindColumn }
func (a *AddColumn) Operation() objtype.Operation { return objtype.OpCreate }
func (a *AddColumn) Scope() objtype.Scope         { return objtype.ScopeColumn }
func (a *AddColumn) Creates() []string {
	return []string{ident.Column(a.Schema, a.Table, a.Column.Name)}
}
func (a *AddColumn) Requires() []string { return []string{ident.Table(a.Schema, a.Table)} }
func (a *AddColumn) Drops() []string    { return nil }

func (a *AddColumn) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s;", opts.Keyword("alter table"),
		ident.QuoteQualified(a.Schema, a.Table), opts.Keyword("add column"), a.Column.render(opts)), nil
}

// AlterColumn changes one or more independently-alterable facets of an
// existing column: type, nullability, default. Each non-nil field
// becomes its own ALTER TABLE ... ALTER COLUMN clause, since PostgreSQL
// requires separate subcommands for TYPE vs SET/DROP NOT NULL vs
// SET/DROP DEFAULT.
type AlterColumn struct {
	Schema     string  `json:"schema"`
	Table      string  `json:"table"`
	Name       string  `json:"name"`
	NewType    *string `json:"new_type,omitempty"`
	NewNotNull *bool   `json:"new_not_null,omitempty"`
	// NewDefault set to a non-nil pointer-to-nil-string (i.e. *string
	// pointing at "") is ambiguous with "drop default"; DropDefault is
	// its own explicit flag instead.
	NewDefault  *string `json:"new_default,omitempty"`
	DropDefault bool    `json:"drop_default,omitempty"`
	RenameTo    *string `json:"rename_to,omitempty"`
}

func (a *AlterColumn) ChangeName() Name             { return NameAlterColumn }
func (a *AlterColumn) Kind() objtype.Kind           { return objtype.KindColumn }
func (a *AlterColumn) Operation() objtype.Operation { return objtype.OpAlter }
func (a *AlterColumn) Scope() objtype.Scope         { return objtype.ScopeColumn }
func (a *AlterColumn) Creates() []string            { return nil }
func (a *AlterColumn) Requires() []string {
	return []string{ident.Column(a.Schema, a.Table, a.Name)}
}
func (a *AlterColumn) Drops() []string { return nil }

func (a *AlterColumn) Emit(opts emit.Options) (string, error) {
	qualified := ident.QuoteQualified(a.Schema, a.Table)
	col := ident.Quote(a.Name)
	var subcommands []string

	if a.NewType != nil {
		subcommands = append(subcommands, fmt.Sprintf("%s %s %s %s",
			opts.Keyword("alter column"), col, opts.Keyword("type"), *a.NewType))
	}
	if a.NewNotNull != nil {
		verb := "drop not null"
		if *a.NewNotNull {
			verb = "set not null"
		}
		subcommands = append(subcommands, fmt.Sprintf("%s %s %s", opts.Keyword("alter column"), col, opts.Keyword(verb)))
	}
	if a.DropDefault {
		subcommands = append(subcommands, fmt.Sprintf("%s %s %s", opts.Keyword("alter column"), col, opts.Keyword("drop default")))
	} else if a.NewDefault != nil {
		subcommands = append(subcommands, fmt.Sprintf("%s %s %s %s", opts.Keyword("alter column"), col, opts.Keyword("set default"), *a.NewDefault))
	}

	var stmts []string
	for _, sub := range subcommands {
		stmts = append(stmts, fmt.Sprintf("%s %s %s;", opts.Keyword("alter table"), qualified, sub))
	}
	if a.RenameTo != nil {
		stmts = append(stmts, fmt.Sprintf("%s %s %s %s %s %s;", opts.Keyword("alter table"), qualified,
			opts.Keyword("rename column"), col, opts.Keyword("to"), ident.Quote(*a.RenameTo)))
	}
	return strings.Join(stmts, "\n"), nil
}

// DropColumn removes a column from a table.
type DropColumn struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Name   string `json:"name"`
}

func (d *DropColumn) ChangeName() Name             { return NameDropColumn }
func (d *DropColumn) Kind() objtype.Kind           { return objtype.KindColumn }
func (d *DropColumn) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropColumn) Scope() objtype.Scope         { return objtype.ScopeColumn }
func (d *DropColumn) Creates() []string            { return nil }
func (d *DropColumn) Requires() []string           { return nil }
func (d *DropColumn) Drops() []string {
	return []string{ident.Column(d.Schema, d.Table, d.Name)}
}

func (d *DropColumn) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s;", opts.Keyword("alter table"), ident.QuoteQualified(d.Schema, d.Table),
		opts.Keyword("drop column"), ident.Quote(d.Name)), nil
}
