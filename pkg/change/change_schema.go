// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"

	"github.com/pgdiffhq/catalogdiff/pkg/emit"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

func init() {
	register(NameCreateSchema, func() Named { return &CreateSchema{} })
	register(NameAlterSchema, func() Named { return &AlterSchema{} })
	register(NameDropSchema, func() Named { return &DropSchema{} })
}

// CreateSchema creates a namespace.
type CreateSchema struct {
	Name  string `json:"name"`
	Owner string `json:"owner,omitempty"`
}

func (c *CreateSchema) ChangeName() Name              { return NameCreateSchema }
func (c *CreateSchema) Kind() objtype.Kind            { return objtype.KindSchema }
func (c *CreateSchema) Operation() objtype.Operation  { return objtype.OpCreate }
func (c *CreateSchema) Scope() objtype.Scope          { return objtype.ScopeObject }
func (c *CreateSchema) Creates() []string             { return []string{ident.Schema(c.Name)} }
func (c *CreateSchema) Requires() []string             { return nil }
func (c *CreateSchema) Drops() []string                { return nil }

func (c *CreateSchema) Emit(opts emit.Options) (string, error) {
	stmt := fmt.Sprintf("%s %s %s", opts.Keyword("create schema"), ident.Quote(c.Name), "")
	if c.Owner != "" {
		stmt = fmt.Sprintf("%s %s %s", opts.Keyword("create schema"), ident.Quote(c.Name),
			opts.Keyword("authorization")+" "+ident.Quote(c.Owner))
	}
	return stmt + ";", nil
}

// AlterSchema changes a schema's owner — the only alterable schema
// facet (rename is modeled as drop+create since it changes the
// stable ID).
type AlterSchema struct {
	Name     string `json:"name"`
	NewOwner string `json:"new_owner"`
}

func (a *AlterSchema) ChangeName() Name             { return NameAlterSchema }
func (a *AlterSchema) Kind() objtype.Kind           { return objtype.KindSchema }
func (a *AlterSchema) Operation() objtype.Operation { return objtype.OpAlter }
func (a *AlterSchema) Scope() objtype.Scope         { return objtype.ScopeOwner }
func (a *AlterSchema) Creates() []string            { return nil }
func (a *AlterSchema) Requires() []string           { return []string{ident.Schema(a.Name)} }
func (a *AlterSchema) Drops() []string              { return nil }

func (a *AlterSchema) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s;", opts.Keyword("alter schema"), ident.Quote(a.Name),
		opts.Keyword("owner to"), ident.Quote(a.NewOwner)), nil
}

// DropSchema drops a namespace and, when Cascade is set, everything it
// contains.
type DropSchema struct {
	Name    string `json:"name"`
	Cascade bool   `json:"cascade,omitempty"`
}

func (d *DropSchema) ChangeName() Name             { return NameDropSchema }
func (d *DropSchema) Kind() objtype.Kind           { return objtype.KindSchema }
func (d *DropSchema) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropSchema) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropSchema) Creates() []string            { return nil }
func (d *DropSchema) Requires() []string           { return nil }
func (d *DropSchema) Drops() []string              { return []string{ident.Schema(d.Name)} }

func (d *DropSchema) Emit(opts emit.Options) (string, error) {
	stmt := fmt.Sprintf("%s %s", opts.Keyword("drop schema"), ident.Quote(d.Name))
	if d.Cascade {
		stmt += " " + opts.Keyword("cascade")
	}
	return stmt + ";", nil
}
