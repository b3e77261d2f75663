// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"

	"github.com/pgdiffhq/catalogdiff/pkg/emit"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

func init() {
	register(NameCreateType, func() Named { return &CreateType{} })
	register(NameAlterType, func() Named { return &AlterType{} })
	register(NameDropType, func() Named { return &DropType{} })
}

// CreateType creates an enum, composite or range type, matching the
// shape of pkg/catalog.Type.
type CreateType struct {
	Schema   string            `json:"schema"`
	Name     string            `json:"name"`
	Owner    string            `json:"owner,omitempty"`
	TypeKind string            `json:"kind"` // enum, composite, range
	Labels   []string          `json:"labels,omitempty"`
	Columns  []CompositeColDef `json:"columns,omitempty"`
	Subtype  string            `json:"subtype,omitempty"`
}

// CompositeColDef is one attribute of a composite type.
type CompositeColDef struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

func (c *CreateType) ChangeName() Name { return NameCreateType }
func (c *CreateType) Kind() objtype.Kind {
	switch c.TypeKind {
	case "composite":
		return objtype.KindCompositeType
	case "range":
		return objtype.KindRange
	default:
		return objtype.KindEnum
	}
}
func (c *CreateType) Operation() objtype.Operation { return objtype.OpCreate }
func (c *CreateType) Scope() objtype.Scope         { return objtype.ScopeObject }
func (c *CreateType) Creates() []string            { return []string{ident.Type(c.Schema, c.Name)} }
func (c *CreateType) Requires() []string {
	return sortedStrings(nonEmpty(ident.Schema(c.Schema), ident.Role(c.Owner)))
}
func (c *CreateType) Drops() []string { return nil }

func (c *CreateType) Emit(opts emit.Options) (string, error) {
	qualified := ident.QuoteQualified(c.Schema, c.Name)
	switch c.TypeKind {
	case "enum":
		labels := make([]string, len(c.Labels))
		for i, l := range c.Labels {
			labels[i] = ident.Literal(l)
		}
		return fmt.Sprintf("%s %s %s (%s);", opts.Keyword("create type"), qualified,
			opts.Keyword("as enum"), joinComma(labels)), nil
	case "range":
		return fmt.Sprintf("%s %s %s (%s = %s);", opts.Keyword("create type"), qualified,
			opts.Keyword("as range"), opts.Keyword("subtype"), c.Subtype), nil
	default:
		cols := make([]string, len(c.Columns))
		for i, col := range c.Columns {
			cols[i] = ident.Quote(col.Name) + " " + col.DataType
		}
		return fmt.Sprintf("%s %s %s %s;", opts.Keyword("create type"), qualified,
			opts.Keyword("as"), opts.JoinColumns(cols, 1)), nil
	}
}

// AlterType covers the one enum facet PostgreSQL allows altering in
// place: adding a new label at a specific position. Composite/range
// types have no alterable facet
// at this engine's scope and replace via drop+create.
type AlterType struct {
	Schema     string `json:"schema"`
	Name       string `json:"name"`
	AddLabel   string `json:"add_label"`
	BeforeLabel string `json:"before_label,omitempty"`
	AfterLabel  string `json:"after_label,omitempty"`
}

func (a *AlterType) ChangeName() Name             { return NameAlterType }
func (a *AlterType) Kind() objtype.Kind           { return objtype.KindEnum }
func (a *AlterType) Operation() objtype.Operation { return objtype.OpAlter }
func (a *AlterType) Scope() objtype.Scope         { return objtype.ScopeObject }
func (a *AlterType) Creates() []string            { return nil }
func (a *AlterType) Requires() []string           { return []string{ident.Type(a.Schema, a.Name)} }
func (a *AlterType) Drops() []string              { return nil }

func (a *AlterType) Emit(opts emit.Options) (string, error) {
	stmt := fmt.Sprintf("%s %s %s %s", opts.Keyword("alter type"), ident.QuoteQualified(a.Schema, a.Name),
		opts.Keyword("add value"), ident.Literal(a.AddLabel))
	switch {
	case a.BeforeLabel != "":
		stmt += " " + opts.Keyword("before") + " " + ident.Literal(a.BeforeLabel)
	case a.AfterLabel != "":
		stmt += " " + opts.Keyword("after") + " " + ident.Literal(a.AfterLabel)
	}
	return stmt + ";", nil
}

// DropType drops an enum, composite or range type.
type DropType struct {
	Schema  string `json:"schema"`
	Name    string `json:"name"`
	Cascade bool   `json:"cascade,omitempty"`
}

func (d *DropType) ChangeName() Name             { return NameDropType }
func (d *DropType) Kind() objtype.Kind           { return objtype.KindEnum }
func (d *DropType) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropType) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropType) Creates() []string            { return nil }
func (d *DropType) Requires() []string           { return nil }
func (d *DropType) Drops() []string              { return []string{ident.Type(d.Schema, d.Name)} }

func (d *DropType) Emit(opts emit.Options) (string, error) {
	stmt := fmt.Sprintf("%s %s", opts.Keyword("drop type"), ident.QuoteQualified(d.Schema, d.Name))
	if d.Cascade {
		stmt += " " + opts.Keyword("cascade")
	}
	return stmt + ";", nil
}
