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
	register(NameAddConstraint, func() Named { return &AddConstraint{} })
	register(NameDropConstraint, func() Named { return &DropConstraint{} })
}

// ConstraintDef is the definition body of a table constraint, rendered
// as the fragment that follows `CONSTRAINT <name>`. Constraints have no
// alter form — any change replaces via drop+add.
type ConstraintDef struct {
	Type              string   `json:"type"` // p, u, f, c, x
	Columns           []string `json:"columns,omitempty"`
	ReferencedSchema  string   `json:"referenced_schema,omitempty"`
	ReferencedTable   string   `json:"referenced_table,omitempty"`
	ReferencedColumns []string `json:"referenced_columns,omitempty"`
	OnDelete          string   `json:"on_delete,omitempty"`
	OnUpdate          string   `json:"on_update,omitempty"`
	CheckClause       string   `json:"check_clause,omitempty"`
	Deferrable        bool     `json:"deferrable,omitempty"`
	InitiallyDeferred bool     `json:"initially_deferred,omitempty"`
	NotValid          bool     `json:"not_valid,omitempty"`
}

func quoteCols(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = ident.Quote(c)
	}
	return strings.Join(quoted, ", ")
}

func (c ConstraintDef) render(opts emit.Options) string {
	var body string
	switch c.Type {
	case "p":
		body = fmt.Sprintf("%s (%s)", opts.Keyword("primary key"), quoteCols(c.Columns))
	case "u":
		body = fmt.Sprintf("%s (%s)", opts.Keyword("unique"), quoteCols(c.Columns))
	case "f":
		body = fmt.Sprintf("%s (%s) %s %s (%s)", opts.Keyword("foreign key"), quoteCols(c.Columns),
			opts.Keyword("references"), ident.QuoteQualified(c.ReferencedSchema, c.ReferencedTable),
			quoteCols(c.ReferencedColumns))
		if c.OnDelete != "" {
			body += " " + opts.Keyword("on delete") + " " + opts.Keyword(c.OnDelete)
		}
		if c.OnUpdate != "" {
			body += " " + opts.Keyword("on update") + " " + opts.Keyword(c.OnUpdate)
		}
	case "c":
		body = fmt.Sprintf("%s (%s)", opts.Keyword("check"), c.CheckClause)
	case "x":
		body = opts.Keyword("exclude") + " " + c.CheckClause
	}
	if c.Deferrable {
		body += " " + opts.Keyword("deferrable")
		if c.InitiallyDeferred {
			body += " " + opts.Keyword("initially deferred")
		}
	}
	if c.NotValid {
		body += " " + opts.Keyword("not valid")
	}
	return body
}

// AddConstraint adds a new constraint to a table.
type AddConstraint struct {
	Schema     string        `json:"schema"`
	Table      string        `json:"table"`
	Name       string        `json:"name"`
	Definition ConstraintDef `json:"definition"`
}

func (a *AddConstraint) ChangeName() Name             { return NameAddConstraint }
func (a *AddConstraint) Kind() objtype.Kind           { return objtype.KindConstraint }
func (a *AddConstraint) Operation() objtype.Operation { return objtype.OpCreate }
func (a *AddConstraint) Scope() objtype.Scope         { return objtype.ScopeConstraint }
func (a *AddConstraint) Creates() []string {
	return []string{ident.Constraint(a.Schema, a.Table, a.Name)}
}
func (a *AddConstraint) Requires() []string {
	reqs := []string{ident.Table(a.Schema, a.Table)}
	if a.Definition.Type == "f" {
		reqs = append(reqs, ident.Table(a.Definition.ReferencedSchema, a.Definition.ReferencedTable))
	}
	return sortedStrings(reqs)
}
func (a *AddConstraint) Drops() []string { return nil }

func (a *AddConstraint) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s %s;", opts.Keyword("alter table"),
		ident.QuoteQualified(a.Schema, a.Table), opts.Keyword("add constraint"), ident.Quote(a.Name),
		a.Definition.render(opts)), nil
}

// DropConstraint removes a constraint from a table.
type DropConstraint struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Name   string `json:"name"`
}

func (d *DropConstraint) ChangeName() Name             { return NameDropConstraint }
func (d *DropConstraint) Kind() objtype.Kind           { return objtype.KindConstraint }
func (d *DropConstraint) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropConstraint) Scope() objtype.Scope         { return objtype.ScopeConstraint }
func (d *DropConstraint) Creates() []string            { return nil }
func (d *DropConstraint) Requires() []string           { return nil }
func (d *DropConstraint) Drops() []string {
	return []string{ident.Constraint(d.Schema, d.Table, d.Name)}
}

func (d *DropConstraint) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s;", opts.Keyword("alter table"), ident.QuoteQualified(d.Schema, d.Table),
		opts.Keyword("drop constraint"), ident.Quote(d.Name)), nil
}
