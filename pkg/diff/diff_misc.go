// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

// diffCollations handles pkg/catalog.Collation. Provider and Locale have
// no Alter facet (ALTER COLLATION only supports REFRESH VERSION and
// rename, neither modeled here), so any change to either replaces via
// drop+create.
func diffCollations(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.Collations, target.Collations)

	var out change.Changes
	for _, c := range created {
		out = append(out, &change.CreateCollation{Schema: c.Schema, Name: c.Name, Provider: c.Provider, Locale: c.Locale})
		out = append(out, commentChange(collationRef(c), "", c.Comment)...)
	}
	for _, c := range dropped {
		out = append(out, &change.DropCollation{Schema: c.Schema, Name: c.Name})
	}
	for _, a := range altered {
		ref := collationRef(a.Target)
		if a.Source.Provider != a.Target.Provider || a.Source.Locale != a.Target.Locale {
			out = append(out, &change.DropCollation{Schema: a.Source.Schema, Name: a.Source.Name})
			out = append(out, &change.CreateCollation{Schema: a.Target.Schema, Name: a.Target.Name,
				Provider: a.Target.Provider, Locale: a.Target.Locale})
		}
		out = append(out, ownerChange(ref, a.Source.Owner, a.Target.Owner)...)
		out = append(out, commentChange(ref, a.Source.Comment, a.Target.Comment)...)
	}
	return out
}

func collationRef(c *catalog.Collation) change.ObjectRef {
	return objectRef(objtype.KindCollation, c.StableID(), ident.QuoteQualified(c.Schema, c.Name))
}

// diffExtensions handles pkg/catalog.Extension. Version is the one
// alterable facet, via ALTER EXTENSION ... UPDATE TO; Schema has no
// Alter path (moving an extension's objects between schemas is not
// modeled) and replaces via drop+create.
func diffExtensions(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.Extensions, target.Extensions)

	var out change.Changes
	for _, e := range created {
		out = append(out, &change.CreateExtension{Name: e.Name, Schema: e.Schema, Version: e.Version})
		out = append(out, commentChange(extensionRef(e), "", e.Comment)...)
	}
	for _, e := range dropped {
		out = append(out, &change.DropExtension{Name: e.Name, Cascade: false})
	}
	for _, a := range altered {
		ref := extensionRef(a.Target)
		switch {
		case a.Source.Schema != a.Target.Schema:
			out = append(out, &change.DropExtension{Name: a.Source.Name})
			out = append(out, &change.CreateExtension{Name: a.Target.Name, Schema: a.Target.Schema, Version: a.Target.Version})
		case a.Source.Version != a.Target.Version:
			out = append(out, &change.AlterExtension{Name: a.Target.Name, NewVersion: a.Target.Version})
		}
		out = append(out, commentChange(ref, a.Source.Comment, a.Target.Comment)...)
	}
	return out
}

func extensionRef(e *catalog.Extension) change.ObjectRef {
	return change.ObjectRef{Kind: objtype.KindExtension, StableID: e.StableID(), SQLObjectClass: "EXTENSION", QualifiedName: ident.Quote(e.Name)}
}

// diffLanguages handles pkg/catalog.Language. Trusted has no Alter
// facet, so a change replaces via drop+create.
func diffLanguages(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.Languages, target.Languages)

	var out change.Changes
	for _, l := range created {
		out = append(out, &change.CreateLanguage{Name: l.Name, Trusted: l.Trusted})
		out = append(out, commentChange(languageRef(l), "", l.Comment)...)
	}
	for _, l := range dropped {
		out = append(out, &change.DropLanguage{Name: l.Name})
	}
	for _, a := range altered {
		ref := languageRef(a.Target)
		if a.Source.Trusted != a.Target.Trusted {
			out = append(out, &change.DropLanguage{Name: a.Source.Name})
			out = append(out, &change.CreateLanguage{Name: a.Target.Name, Trusted: a.Target.Trusted})
		}
		out = append(out, ownerChange(ref, a.Source.Owner, a.Target.Owner)...)
		out = append(out, commentChange(ref, a.Source.Comment, a.Target.Comment)...)
	}
	return out
}

func languageRef(l *catalog.Language) change.ObjectRef {
	return objectRef(objtype.KindLanguage, l.StableID(), ident.Quote(l.Name))
}
