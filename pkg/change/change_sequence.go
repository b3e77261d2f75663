// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"

	"github.com/pgdiffhq/catalogdiff/pkg/emit"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

func init() {
	register(NameCreateSequence, func() Named { return &CreateSequence{} })
	register(NameAlterSequence, func() Named { return &AlterSequence{} })
	register(NameDropSequence, func() Named { return &DropSequence{} })
}

// SequenceAttrs is the set of alterable sequence parameters.
type SequenceAttrs struct {
	DataType  string `json:"data_type,omitempty"`
	Increment int64  `json:"increment"`
	MinValue  int64  `json:"min_value"`
	MaxValue  int64  `json:"max_value"`
	Start     int64  `json:"start"`
	CacheSize int64  `json:"cache_size"`
	Cycle     bool   `json:"cycle"`
}

func (a SequenceAttrs) clauses(opts emit.Options, includeStart bool) []string {
	clauses := []string{}
	if a.DataType != "" {
		clauses = append(clauses, opts.Keyword("as")+" "+a.DataType)
	}
	clauses = append(clauses,
		fmt.Sprintf("%s %d", opts.Keyword("increment by"), a.Increment),
		fmt.Sprintf("%s %d", opts.Keyword("minvalue"), a.MinValue),
		fmt.Sprintf("%s %d", opts.Keyword("maxvalue"), a.MaxValue),
	)
	if includeStart {
		clauses = append(clauses, fmt.Sprintf("%s %d", opts.Keyword("start with"), a.Start))
	}
	clauses = append(clauses, fmt.Sprintf("%s %d", opts.Keyword("cache"), a.CacheSize))
	if a.Cycle {
		clauses = append(clauses, opts.Keyword("cycle"))
	} else {
		clauses = append(clauses, opts.Keyword("no cycle"))
	}
	return clauses
}

// CreateSequence creates a standalone sequence. Identity-column-owned
// sequences are created implicitly by their column's GENERATED clause
// and are not represented as a separate CreateSequence Change.
type CreateSequence struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
	Owner  string `json:"owner,omitempty"`
	SequenceAttrs
}

func (c *CreateSequence) ChangeName() Name             { return NameCreateSequence }
func (c *CreateSequence) Kind() objtype.Kind           { return objtype.KindSequence }
func (c *CreateSequence) Operation() objtype.Operation { return objtype.OpCreate }
func (c *CreateSequence) Scope() objtype.Scope         { return objtype.ScopeObject }
func (c *CreateSequence) Creates() []string {
	return []string{ident.Sequence(c.Schema, c.Name)}
}
func (c *CreateSequence) Requires() []string {
	return sortedStrings(nonEmpty(ident.Schema(c.Schema), ident.Role(c.Owner)))
}
func (c *CreateSequence) Drops() []string { return nil }

func (c *CreateSequence) Emit(opts emit.Options) (string, error) {
	clauses := c.SequenceAttrs.clauses(opts, true)
	stmt := fmt.Sprintf("%s %s", opts.Keyword("create sequence"), ident.QuoteQualified(c.Schema, c.Name))
	for _, cl := range clauses {
		stmt += " " + cl
	}
	return stmt + ";", nil
}

// AlterSequence updates a sequence's numeric parameters in place.
type AlterSequence struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
	SequenceAttrs
}

func (a *AlterSequence) ChangeName() Name             { return NameAlterSequence }
func (a *AlterSequence) Kind() objtype.Kind           { return objtype.KindSequence }
func (a *AlterSequence) Operation() objtype.Operation { return objtype.OpAlter }
func (a *AlterSequence) Scope() objtype.Scope         { return objtype.ScopeObject }
func (a *AlterSequence) Creates() []string            { return nil }
func (a *AlterSequence) Requires() []string {
	return []string{ident.Sequence(a.Schema, a.Name)}
}
func (a *AlterSequence) Drops() []string { return nil }

func (a *AlterSequence) Emit(opts emit.Options) (string, error) {
	clauses := a.SequenceAttrs.clauses(opts, false)
	stmt := fmt.Sprintf("%s %s", opts.Keyword("alter sequence"), ident.QuoteQualified(a.Schema, a.Name))
	for _, cl := range clauses {
		stmt += " " + cl
	}
	return stmt + ";", nil
}

// DropSequence drops a standalone sequence.
type DropSequence struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
}

func (d *DropSequence) ChangeName() Name             { return NameDropSequence }
func (d *DropSequence) Kind() objtype.Kind           { return objtype.KindSequence }
func (d *DropSequence) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropSequence) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropSequence) Creates() []string            { return nil }
func (d *DropSequence) Requires() []string           { return nil }
func (d *DropSequence) Drops() []string {
	return []string{ident.Sequence(d.Schema, d.Name)}
}

func (d *DropSequence) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s;", opts.Keyword("drop sequence"), ident.QuoteQualified(d.Schema, d.Name)), nil
}
