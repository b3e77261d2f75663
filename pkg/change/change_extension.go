// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"

	"github.com/pgdiffhq/catalogdiff/pkg/emit"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

func init() {
	register(NameCreateExtension, func() Named { return &CreateExtension{} })
	register(NameAlterExtension, func() Named { return &AlterExtension{} })
	register(NameDropExtension, func() Named { return &DropExtension{} })
	register(NameCreateCollation, func() Named { return &CreateCollation{} })
	register(NameDropCollation, func() Named { return &DropCollation{} })
	register(NameCreateLanguage, func() Named { return &CreateLanguage{} })
	register(NameDropLanguage, func() Named { return &DropLanguage{} })
}

// CreateExtension installs an extension.
type CreateExtension struct {
	Name    string `json:"name"`
	Schema  string `json:"schema,omitempty"`
	Version string `json:"version,omitempty"`
}

func (c *CreateExtension) ChangeName() Name             { return NameCreateExtension }
func (c *CreateExtension) Kind() objtype.Kind           { return objtype.KindExtension }
func (c *CreateExtension) Operation() objtype.Operation { return objtype.OpCreate }
func (c *CreateExtension) Scope() objtype.Scope         { return objtype.ScopeObject }
func (c *CreateExtension) Creates() []string            { return []string{ident.Extension(c.Name)} }
func (c *CreateExtension) Requires() []string {
	return sortedStrings(nonEmpty(ident.Schema(c.Schema)))
}
func (c *CreateExtension) Drops() []string { return nil }

func (c *CreateExtension) Emit(opts emit.Options) (string, error) {
	stmt := fmt.Sprintf("%s %s", opts.Keyword("create extension"), ident.Quote(c.Name))
	if c.Schema != "" {
		stmt += " " + opts.Keyword("schema") + " " + ident.Quote(c.Schema)
	}
	if c.Version != "" {
		stmt += " " + opts.Keyword("version") + " " + ident.Literal(c.Version)
	}
	return stmt + ";", nil
}

// AlterExtension updates an installed extension's version.
type AlterExtension struct {
	Name       string `json:"name"`
	NewVersion string `json:"new_version"`
}

func (a *AlterExtension) ChangeName() Name             { return NameAlterExtension }
func (a *AlterExtension) Kind() objtype.Kind           { return objtype.KindExtension }
func (a *AlterExtension) Operation() objtype.Operation { return objtype.OpAlter }
func (a *AlterExtension) Scope() objtype.Scope         { return objtype.ScopeObject }
func (a *AlterExtension) Creates() []string            { return nil }
func (a *AlterExtension) Requires() []string           { return []string{ident.Extension(a.Name)} }
func (a *AlterExtension) Drops() []string              { return nil }

func (a *AlterExtension) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s %s %s;", opts.Keyword("alter extension"), ident.Quote(a.Name),
		opts.Keyword("update to"), ident.Literal(a.NewVersion)), nil
}

// DropExtension removes an installed extension.
type DropExtension struct {
	Name    string `json:"name"`
	Cascade bool   `json:"cascade,omitempty"`
}

func (d *DropExtension) ChangeName() Name             { return NameDropExtension }
func (d *DropExtension) Kind() objtype.Kind           { return objtype.KindExtension }
func (d *DropExtension) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropExtension) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropExtension) Creates() []string            { return nil }
func (d *DropExtension) Requires() []string           { return nil }
func (d *DropExtension) Drops() []string              { return []string{ident.Extension(d.Name)} }

func (d *DropExtension) Emit(opts emit.Options) (string, error) {
	stmt := fmt.Sprintf("%s %s", opts.Keyword("drop extension"), ident.Quote(d.Name))
	if d.Cascade {
		stmt += " " + opts.Keyword("cascade")
	}
	return stmt + ";", nil
}

// CreateCollation creates a collation.
type CreateCollation struct {
	Schema   string `json:"schema"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Locale   string `json:"locale"`
}

func (c *CreateCollation) ChangeName() Name             { return NameCreateCollation }
func (c *CreateCollation) Kind() objtype.Kind           { return objtype.KindCollation }
func (c *CreateCollation) Operation() objtype.Operation { return objtype.OpCreate }
func (c *CreateCollation) Scope() objtype.Scope         { return objtype.ScopeObject }
func (c *CreateCollation) Creates() []string {
	return []string{ident.Collation(c.Schema, c.Name)}
}
func (c *CreateCollation) Requires() []string { return []string{ident.Schema(c.Schema)} }
func (c *CreateCollation) Drops() []string    { return nil }

func (c *CreateCollation) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s (%s = %s, %s = %s);", opts.Keyword("create collation"),
		ident.QuoteQualified(c.Schema, c.Name), opts.Keyword("provider"), c.Provider,
		opts.Keyword("locale"), ident.Literal(c.Locale)), nil
}

// DropCollation drops a collation.
type DropCollation struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
}

func (d *DropCollation) ChangeName() Name             { return NameDropCollation }
func (d *DropCollation) Kind() objtype.Kind           { return objtype.KindCollation }
func (d *DropCollation) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropCollation) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropCollation) Creates() []string            { return nil }
func (d *DropCollation) Requires() []string           { return nil }
func (d *DropCollation) Drops() []string {
	return []string{ident.Collation(d.Schema, d.Name)}
}

func (d *DropCollation) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s;", opts.Keyword("drop collation"), ident.QuoteQualified(d.Schema, d.Name)), nil
}

// CreateLanguage registers a procedural language.
type CreateLanguage struct {
	Name    string `json:"name"`
	Trusted bool   `json:"trusted"`
}

func (c *CreateLanguage) ChangeName() Name             { return NameCreateLanguage }
func (c *CreateLanguage) Kind() objtype.Kind           { return objtype.KindLanguage }
func (c *CreateLanguage) Operation() objtype.Operation { return objtype.OpCreate }
func (c *CreateLanguage) Scope() objtype.Scope         { return objtype.ScopeObject }
func (c *CreateLanguage) Creates() []string            { return []string{ident.Language(c.Name)} }
func (c *CreateLanguage) Requires() []string           { return nil }
func (c *CreateLanguage) Drops() []string              { return nil }

func (c *CreateLanguage) Emit(opts emit.Options) (string, error) {
	kw := "create language"
	if c.Trusted {
		kw = "create trusted language"
	}
	return fmt.Sprintf("%s %s;", opts.Keyword(kw), ident.Quote(c.Name)), nil
}

// DropLanguage removes a procedural language.
type DropLanguage struct {
	Name string `json:"name"`
}

func (d *DropLanguage) ChangeName() Name             { return NameDropLanguage }
func (d *DropLanguage) Kind() objtype.Kind           { return objtype.KindLanguage }
func (d *DropLanguage) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropLanguage) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropLanguage) Creates() []string            { return nil }
func (d *DropLanguage) Requires() []string           { return nil }
func (d *DropLanguage) Drops() []string              { return []string{ident.Language(d.Name)} }

func (d *DropLanguage) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s;", opts.Keyword("drop language"), ident.Quote(d.Name)), nil
}
