// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"github.com/pgdiffhq/catalogdiff/pkg/acl"
	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

// diffViews handles pkg/catalog.View. A definition change goes through
// CREATE OR REPLACE VIEW (AlterView) as long as the stable ID (schema +
// name) is unchanged — PostgreSQL itself enforces the output-column-set
// restriction at execution time, which this layer does not attempt to
// pre-validate.
func diffViews(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.Views, target.Views)

	var out change.Changes
	for _, v := range created {
		out = append(out, &change.CreateView{Schema: v.Schema, Name: v.Name, Owner: v.Owner, Definition: v.Definition})
		ref := viewRef(v)
		out = append(out, commentChange(ref, "", v.Comment)...)
		out = append(out, privilegeChanges(dctx, ref, v.Owner, acl.Relation, v.Schema, nil, v.Acl)...)
	}
	for _, v := range dropped {
		out = append(out, &change.DropView{Schema: v.Schema, Name: v.Name, Cascade: false})
	}
	for _, a := range altered {
		ref := viewRef(a.Target)
		if a.Source.Definition != a.Target.Definition {
			out = append(out, &change.AlterView{Schema: a.Target.Schema, Name: a.Target.Name, Definition: a.Target.Definition})
		}
		out = append(out, ownerChange(ref, a.Source.Owner, a.Target.Owner)...)
		out = append(out, commentChange(ref, a.Source.Comment, a.Target.Comment)...)
		out = append(out, privilegeChanges(dctx, ref, a.Target.Owner, acl.Relation, a.Target.Schema, a.Source.Acl, a.Target.Acl)...)
	}
	return out
}

func viewRef(v *catalog.View) change.ObjectRef {
	return objectRef(objtype.KindView, v.StableID(), ident.QuoteQualified(v.Schema, v.Name))
}

// diffMaterializedViews handles pkg/catalog.MaterializedView. PostgreSQL
// has no ALTER ... AS for materialized views, so any definition change
// replaces via drop+create; its indexes are diffed the same way a
// table's are.
func diffMaterializedViews(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.MaterializedViews, target.MaterializedViews)

	var out change.Changes
	for _, v := range created {
		out = append(out, createMatViewChanges(v)...)
		ref := matViewRef(v)
		out = append(out, commentChange(ref, "", v.Comment)...)
		out = append(out, privilegeChanges(dctx, ref, v.Owner, acl.Relation, v.Schema, nil, v.Acl)...)
	}
	for _, v := range dropped {
		out = append(out, &change.DropMaterializedView{Schema: v.Schema, Name: v.Name, Cascade: false})
	}
	for _, a := range altered {
		out = append(out, diffMatView(dctx, a.Source, a.Target)...)
	}
	return out
}

func createMatViewChanges(v *catalog.MaterializedView) change.Changes {
	out := change.Changes{&change.CreateMaterializedView{Schema: v.Schema, Name: v.Name, Owner: v.Owner, Definition: v.Definition}}
	for _, idx := range sortedByName(v.Indexes, func(i catalog.Index) string { return i.Name }) {
		out = append(out, createIndexChange(v.Schema, v.Name, idx))
	}
	return out
}

func diffMatView(dctx *Context, s, t *catalog.MaterializedView) change.Changes {
	ref := matViewRef(t)
	var out change.Changes

	if s.Definition != t.Definition {
		out = append(out, &change.DropMaterializedView{Schema: s.Schema, Name: s.Name})
		out = append(out, createMatViewChanges(t)...)
	} else {
		out = append(out, diffIndexes(t.Schema, t.Name, s.Indexes, t.Indexes)...)
	}

	out = append(out, ownerChange(ref, s.Owner, t.Owner)...)
	out = append(out, commentChange(ref, s.Comment, t.Comment)...)
	out = append(out, privilegeChanges(dctx, ref, t.Owner, acl.Relation, t.Schema, s.Acl, t.Acl)...)
	return out
}

func matViewRef(v *catalog.MaterializedView) change.ObjectRef {
	return objectRef(objtype.KindMaterializedView, v.StableID(), ident.QuoteQualified(v.Schema, v.Name))
}
