// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"

	"github.com/pgdiffhq/catalogdiff/pkg/emit"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

func init() {
	register(NameCreateView, func() Named { return &CreateView{} })
	register(NameAlterView, func() Named { return &AlterView{} })
	register(NameDropView, func() Named { return &DropView{} })
	register(NameCreateMaterializedView, func() Named { return &CreateMaterializedView{} })
	register(NameAlterMaterializedView, func() Named { return &AlterMaterializedView{} })
	register(NameDropMaterializedView, func() Named { return &DropMaterializedView{} })
}

// CreateView creates a non-materialized view.
type CreateView struct {
	Schema     string `json:"schema"`
	Name       string `json:"name"`
	Owner      string `json:"owner,omitempty"`
	Definition string `json:"definition"` // the SELECT body only, no CREATE VIEW prefix
}

func (c *CreateView) ChangeName() Name             { return NameCreateView }
func (c *CreateView) Kind() objtype.Kind           { return objtype.KindView }
func (c *CreateView) Operation() objtype.Operation { return objtype.OpCreate }
func (c *CreateView) Scope() objtype.Scope         { return objtype.ScopeObject }
func (c *CreateView) Creates() []string            { return []string{ident.View(c.Schema, c.Name)} }
func (c *CreateView) Requires() []string {
	return sortedStrings(nonEmpty(ident.Schema(c.Schema), ident.Role(c.Owner)))
}
func (c *CreateView) Drops() []string { return nil }

func (c *CreateView) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s;", opts.Keyword("create view"),
		ident.QuoteQualified(c.Schema, c.Name), opts.Keyword("as"), c.Definition), nil
}

// AlterView replaces a view's query text in place via CREATE OR REPLACE
// VIEW, which PostgreSQL allows as long as the output column set is
// unchanged (a wider change replaces via drop+create at the diff layer).
type AlterView struct {
	Schema     string `json:"schema"`
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

func (a *AlterView) ChangeName() Name             { return NameAlterView }
func (a *AlterView) Kind() objtype.Kind           { return objtype.KindView }
func (a *AlterView) Operation() objtype.Operation { return objtype.OpAlter }
func (a *AlterView) Scope() objtype.Scope         { return objtype.ScopeObject }
func (a *AlterView) Creates() []string            { return nil }
func (a *AlterView) Requires() []string           { return []string{ident.View(a.Schema, a.Name)} }
func (a *AlterView) Drops() []string              { return nil }

func (a *AlterView) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s;", opts.Keyword("create or replace view"),
		ident.QuoteQualified(a.Schema, a.Name), opts.Keyword("as"), a.Definition), nil
}

// DropView drops a non-materialized view.
type DropView struct {
	Schema  string `json:"schema"`
	Name    string `json:"name"`
	Cascade bool   `json:"cascade,omitempty"`
}

func (d *DropView) ChangeName() Name             { return NameDropView }
func (d *DropView) Kind() objtype.Kind           { return objtype.KindView }
func (d *DropView) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropView) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropView) Creates() []string            { return nil }
func (d *DropView) Requires() []string           { return nil }
func (d *DropView) Drops() []string              { return []string{ident.View(d.Schema, d.Name)} }

func (d *DropView) Emit(opts emit.Options) (string, error) {
	stmt := fmt.Sprintf("%s %s", opts.Keyword("drop view"), ident.QuoteQualified(d.Schema, d.Name))
	if d.Cascade {
		stmt += " " + opts.Keyword("cascade")
	}
	return stmt + ";", nil
}

// CreateMaterializedView creates a materialized view. Its own indexes
// are modeled as separate CreateIndex Changes requiring this one.
type CreateMaterializedView struct {
	Schema     string `json:"schema"`
	Name       string `json:"name"`
	Owner      string `json:"owner,omitempty"`
	Definition string `json:"definition"`
}

func (c *CreateMaterializedView) ChangeName() Name             { return NameCreateMaterializedView }
func (c *CreateMaterializedView) Kind() objtype.Kind           { return objtype.KindMaterializedView }
func (c *CreateMaterializedView) Operation() objtype.Operation { return objtype.OpCreate }
func (c *CreateMaterializedView) Scope() objtype.Scope         { return objtype.ScopeObject }
func (c *CreateMaterializedView) Creates() []string {
	return []string{ident.MaterializedView(c.Schema, c.Name)}
}
func (c *CreateMaterializedView) Requires() []string {
	return sortedStrings(nonEmpty(ident.Schema(c.Schema), ident.Role(c.Owner)))
}
func (c *CreateMaterializedView) Drops() []string { return nil }

func (c *CreateMaterializedView) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s;", opts.Keyword("create materialized view"),
		ident.QuoteQualified(c.Schema, c.Name), opts.Keyword("as"), c.Definition), nil
}

// AlterMaterializedView is a no-op placeholder kept for the alter scope:
// PostgreSQL has no ALTER ... AS for materialized views, so a definition
// change always replaces via drop+create at the diff layer. This Change
// exists only to carry owner-preserving facets a future extractor might
// expose (e.g. storage parameters) without widening the Name enum again.
type AlterMaterializedView struct {
	Schema          string            `json:"schema"`
	Name            string            `json:"name"`
	StorageSettings map[string]string `json:"storage_settings,omitempty"`
}

func (a *AlterMaterializedView) ChangeName() Name             { return NameAlterMaterializedView }
func (a *AlterMaterializedView) Kind() objtype.Kind           { return objtype.KindMaterializedView }
func (a *AlterMaterializedView) Operation() objtype.Operation { return objtype.OpAlter }
func (a *AlterMaterializedView) Scope() objtype.Scope         { return objtype.ScopeObject }
func (a *AlterMaterializedView) Creates() []string            { return nil }
func (a *AlterMaterializedView) Requires() []string {
	return []string{ident.MaterializedView(a.Schema, a.Name)}
}
func (a *AlterMaterializedView) Drops() []string { return nil }

func (a *AlterMaterializedView) Emit(opts emit.Options) (string, error) {
	if len(a.StorageSettings) == 0 {
		return "", nil
	}
	var kv []string
	for k, v := range a.StorageSettings {
		kv = append(kv, fmt.Sprintf("%s = %s", k, v))
	}
	return fmt.Sprintf("%s %s %s (%s);", opts.Keyword("alter materialized view"),
		ident.QuoteQualified(a.Schema, a.Name), opts.Keyword("set"), joinComma(kv)), nil
}

func joinComma(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

// DropMaterializedView drops a materialized view.
type DropMaterializedView struct {
	Schema  string `json:"schema"`
	Name    string `json:"name"`
	Cascade bool   `json:"cascade,omitempty"`
}

func (d *DropMaterializedView) ChangeName() Name             { return NameDropMaterializedView }
func (d *DropMaterializedView) Kind() objtype.Kind           { return objtype.KindMaterializedView }
func (d *DropMaterializedView) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropMaterializedView) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropMaterializedView) Creates() []string            { return nil }
func (d *DropMaterializedView) Requires() []string           { return nil }
func (d *DropMaterializedView) Drops() []string {
	return []string{ident.MaterializedView(d.Schema, d.Name)}
}

func (d *DropMaterializedView) Emit(opts emit.Options) (string, error) {
	stmt := fmt.Sprintf("%s %s", opts.Keyword("drop materialized view"), ident.QuoteQualified(d.Schema, d.Name))
	if d.Cascade {
		stmt += " " + opts.Keyword("cascade")
	}
	return stmt + ";", nil
}
