// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"

	"github.com/pgdiffhq/catalogdiff/pkg/emit"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

func init() {
	register(NameCreateTrigger, func() Named { return &CreateTrigger{} })
	register(NameDropTrigger, func() Named { return &DropTrigger{} })
	register(NameCreateRule, func() Named { return &CreateRule{} })
	register(NameDropRule, func() Named { return &DropRule{} })
	register(NameCreatePolicy, func() Named { return &CreatePolicy{} })
	register(NameAlterPolicy, func() Named { return &AlterPolicy{} })
	register(NameDropPolicy, func() Named { return &DropPolicy{} })
}

// CreateTrigger creates a trigger from its already-canonicalized
// pg_get_triggerdef text — the catalog record carries
// the full definition so this Change doesn't need to reconstruct BEFORE
// /AFTER/INSTEAD OF clauses itself.
type CreateTrigger struct {
	Schema     string `json:"schema"`
	Table      string `json:"table"`
	Name       string `json:"name"`
	Definition string `json:"definition"` // full CREATE TRIGGER statement body
}

func (c *CreateTrigger) ChangeName() Name             { return NameCreateTrigger }
func (c *CreateTrigger) Kind() objtype.Kind           { return objtype.KindTrigger }
func (c *CreateTrigger) Operation() objtype.Operation { return objtype.OpCreate }
func (c *CreateTrigger) Scope() objtype.Scope         { return objtype.ScopeObject }
func (c *CreateTrigger) Creates() []string {
	return []string{ident.Trigger(c.Schema, c.Table, c.Name)}
}
func (c *CreateTrigger) Requires() []string { return []string{ident.Table(c.Schema, c.Table)} }
func (c *CreateTrigger) Drops() []string    { return nil }

func (c *CreateTrigger) Emit(opts emit.Options) (string, error) {
	return c.Definition + ";", nil
}

// DropTrigger drops a trigger.
type DropTrigger struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Name   string `json:"name"`
}

func (d *DropTrigger) ChangeName() Name             { return NameDropTrigger }
func (d *DropTrigger) Kind() objtype.Kind           { return objtype.KindTrigger }
func (d *DropTrigger) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropTrigger) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropTrigger) Creates() []string            { return nil }
func (d *DropTrigger) Requires() []string           { return nil }
func (d *DropTrigger) Drops() []string {
	return []string{ident.Trigger(d.Schema, d.Table, d.Name)}
}

func (d *DropTrigger) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s;", opts.Keyword("drop trigger"), ident.Quote(d.Name),
		opts.Keyword("on"), ident.QuoteQualified(d.Schema, d.Table)), nil
}

// CreateRule creates a query rewrite rule from its canonical
// pg_get_ruledef text.
type CreateRule struct {
	Schema     string `json:"schema"`
	Table      string `json:"table"`
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

func (c *CreateRule) ChangeName() Name             { return NameCreateRule }
func (c *CreateRule) Kind() objtype.Kind           { return objtype.KindRule }
func (c *CreateRule) Operation() objtype.Operation { return objtype.OpCreate }
func (c *CreateRule) Scope() objtype.Scope         { return objtype.ScopeObject }
func (c *CreateRule) Creates() []string {
	return []string{ident.Rule(c.Schema, c.Table, c.Name)}
}
func (c *CreateRule) Requires() []string { return []string{ident.Table(c.Schema, c.Table)} }
func (c *CreateRule) Drops() []string    { return nil }

func (c *CreateRule) Emit(opts emit.Options) (string, error) { return c.Definition, nil }

// DropRule drops a query rewrite rule.
type DropRule struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Name   string `json:"name"`
}

func (d *DropRule) ChangeName() Name             { return NameDropRule }
func (d *DropRule) Kind() objtype.Kind           { return objtype.KindRule }
func (d *DropRule) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropRule) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropRule) Creates() []string            { return nil }
func (d *DropRule) Requires() []string           { return nil }
func (d *DropRule) Drops() []string {
	return []string{ident.Rule(d.Schema, d.Table, d.Name)}
}

func (d *DropRule) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s;", opts.Keyword("drop rule"), ident.Quote(d.Name),
		opts.Keyword("on"), ident.QuoteQualified(d.Schema, d.Table)), nil
}

// CreatePolicy creates a row-level-security policy.
type CreatePolicy struct {
	Schema     string   `json:"schema"`
	Table      string   `json:"table"`
	Name       string   `json:"name"`
	Permissive bool     `json:"permissive"`
	Command    string   `json:"command"`
	Roles      []string `json:"roles,omitempty"`
	Using      string   `json:"using,omitempty"`
	WithCheck  string   `json:"with_check,omitempty"`
}

func (c *CreatePolicy) ChangeName() Name             { return NameCreatePolicy }
func (c *CreatePolicy) Kind() objtype.Kind           { return objtype.KindRLSPolicy }
func (c *CreatePolicy) Operation() objtype.Operation { return objtype.OpCreate }
func (c *CreatePolicy) Scope() objtype.Scope         { return objtype.ScopeObject }
func (c *CreatePolicy) Creates() []string {
	return []string{ident.RLSPolicy(c.Schema, c.Table, c.Name)}
}
func (c *CreatePolicy) Requires() []string { return []string{ident.Table(c.Schema, c.Table)} }
func (c *CreatePolicy) Drops() []string    { return nil }

func (c *CreatePolicy) render(opts emit.Options) string {
	stmt := fmt.Sprintf("%s %s %s %s", opts.Keyword("create policy"), ident.Quote(c.Name),
		opts.Keyword("on"), ident.QuoteQualified(c.Schema, c.Table))
	if !c.Permissive {
		stmt += " " + opts.Keyword("as restrictive")
	}
	stmt += " " + opts.Keyword("for") + " " + opts.Keyword(c.Command)
	if len(c.Roles) > 0 {
		stmt += " " + opts.Keyword("to") + " " + quoteCols(c.Roles)
	}
	if c.Using != "" {
		stmt += " " + opts.Keyword("using") + " (" + c.Using + ")"
	}
	if c.WithCheck != "" {
		stmt += " " + opts.Keyword("with check") + " (" + c.WithCheck + ")"
	}
	return stmt
}

func (c *CreatePolicy) Emit(opts emit.Options) (string, error) { return c.render(opts) + ";", nil }

// AlterPolicy changes a policy's roles, USING or WITH CHECK expression —
// the facets PostgreSQL's ALTER POLICY actually supports; command and
// permissiveness are not alterable and replace via drop+create.
type AlterPolicy struct {
	Schema    string   `json:"schema"`
	Table     string   `json:"table"`
	Name      string   `json:"name"`
	Roles     []string `json:"roles,omitempty"`
	Using     string   `json:"using,omitempty"`
	WithCheck string   `json:"with_check,omitempty"`
}

func (a *AlterPolicy) ChangeName() Name             { return NameAlterPolicy }
func (a *AlterPolicy) Kind() objtype.Kind           { return objtype.KindRLSPolicy }
func (a *AlterPolicy) Operation() objtype.Operation { return objtype.OpAlter }
func (a *AlterPolicy) Scope() objtype.Scope         { return objtype.ScopeObject }
func (a *AlterPolicy) Creates() []string            { return nil }
func (a *AlterPolicy) Requires() []string {
	return []string{ident.RLSPolicy(a.Schema, a.Table, a.Name)}
}
func (a *AlterPolicy) Drops() []string { return nil }

func (a *AlterPolicy) Emit(opts emit.Options) (string, error) {
	stmt := fmt.Sprintf("%s %s %s %s", opts.Keyword("alter policy"), ident.Quote(a.Name),
		opts.Keyword("on"), ident.QuoteQualified(a.Schema, a.Table))
	if len(a.Roles) > 0 {
		stmt += " " + opts.Keyword("to") + " " + quoteCols(a.Roles)
	}
	if a.Using != "" {
		stmt += " " + opts.Keyword("using") + " (" + a.Using + ")"
	}
	if a.WithCheck != "" {
		stmt += " " + opts.Keyword("with check") + " (" + a.WithCheck + ")"
	}
	return stmt + ";", nil
}

// DropPolicy drops a row-level-security policy.
type DropPolicy struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Name   string `json:"name"`
}

func (d *DropPolicy) ChangeName() Name             { return NameDropPolicy }
func (d *DropPolicy) Kind() objtype.Kind           { return objtype.KindRLSPolicy }
func (d *DropPolicy) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropPolicy) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropPolicy) Creates() []string            { return nil }
func (d *DropPolicy) Requires() []string           { return nil }
func (d *DropPolicy) Drops() []string {
	return []string{ident.RLSPolicy(d.Schema, d.Table, d.Name)}
}

func (d *DropPolicy) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s;", opts.Keyword("drop policy"), ident.Quote(d.Name),
		opts.Keyword("on"), ident.QuoteQualified(d.Schema, d.Table)), nil
}
