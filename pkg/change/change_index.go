// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"

	"github.com/pgdiffhq/catalogdiff/pkg/emit"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

func init() {
	register(NameCreateIndex, func() Named { return &CreateIndex{} })
	register(NameDropIndex, func() Named { return &DropIndex{} })
}

// CreateIndex creates an index on a table. Indexes have no alter form:
// any definition change replaces via drop+create.
type CreateIndex struct {
	Schema  string   `json:"schema"`
	Table   string   `json:"table"`
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique,omitempty"`
	Method  string   `json:"method,omitempty"`
	Where   string   `json:"where,omitempty"`
}

func (c *CreateIndex) ChangeName() Name             { return NameCreateIndex }
func (c *CreateIndex) Kind() objtype.Kind           { return objtype.KindIndex }
func (c *CreateIndex) Operation() objtype.Operation { return objtype.OpCreate }
func (c *CreateIndex) Scope() objtype.Scope         { return objtype.ScopeObject }
func (c *CreateIndex) Creates() []string            { return []string{ident.Index(c.Schema, c.Name)} }
func (c *CreateIndex) Requires() []string           { return []string{ident.Table(c.Schema, c.Table)} }
func (c *CreateIndex) Drops() []string              { return nil }

func (c *CreateIndex) Emit(opts emit.Options) (string, error) {
	kw := "create index"
	if c.Unique {
		kw = "create unique index"
	}
	method := c.Method
	if method == "" {
		method = "btree"
	}
	stmt := fmt.Sprintf("%s %s %s %s %s %s (%s)", opts.Keyword(kw), ident.Quote(c.Name),
		opts.Keyword("on"), ident.QuoteQualified(c.Schema, c.Table), opts.Keyword("using"),
		method, quoteCols(c.Columns))
	if c.Where != "" {
		stmt += " " + opts.Keyword("where") + " " + c.Where
	}
	return stmt + ";", nil
}

// DropIndex drops an index.
type DropIndex struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
}

func (d *DropIndex) ChangeName() Name             { return NameDropIndex }
func (d *DropIndex) Kind() objtype.Kind           { return objtype.KindIndex }
func (d *DropIndex) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropIndex) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropIndex) Creates() []string            { return nil }
func (d *DropIndex) Requires() []string           { return nil }
func (d *DropIndex) Drops() []string              { return []string{ident.Index(d.Schema, d.Name)} }

func (d *DropIndex) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s;", opts.Keyword("drop index"), ident.QuoteQualified(d.Schema, d.Name)), nil
}
