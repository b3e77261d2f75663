// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"reflect"
	"sort"

	"github.com/pgdiffhq/catalogdiff/pkg/acl"
	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

// diffDomains handles pkg/catalog.Domain. NOT NULL and DEFAULT are the
// only facets AlterDomain can change in place; BaseType or any
// constraint-list change forces a replace, since this engine's
// CreateDomain bundles constraints inline rather than tracking them as
// independently named sub-objects the way table constraints are.
func diffDomains(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.Domains, target.Domains)

	var out change.Changes
	for _, d := range created {
		out = append(out, createDomainChange(d))
		ref := domainRef(d)
		out = append(out, commentChange(ref, "", d.Comment)...)
		out = append(out, privilegeChanges(dctx, ref, d.Owner, acl.Type, d.Schema, nil, d.Acl)...)
	}
	for _, d := range dropped {
		out = append(out, &change.DropDomain{Schema: d.Schema, Name: d.Name, Cascade: false})
	}
	for _, a := range altered {
		out = append(out, diffDomain(dctx, a.Source, a.Target)...)
	}
	return out
}

func createDomainChange(d *catalog.Domain) change.Change {
	return &change.CreateDomain{Schema: d.Schema, Name: d.Name, Owner: d.Owner, BaseType: d.BaseType,
		NotNull: d.NotNull, Default: d.Default, Constraints: domainConstraintDefs(d.Constraints)}
}

func domainConstraintDefs(constraints map[string]catalog.Constraint) []change.ConstraintDef {
	names := make([]string, 0, len(constraints))
	for n := range constraints {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]change.ConstraintDef, len(names))
	for i, n := range names {
		out[i] = toConstraintDef(constraints[n])
	}
	return out
}

func diffDomain(dctx *Context, s, t *catalog.Domain) change.Changes {
	ref := domainRef(t)
	var out change.Changes

	if s.BaseType != t.BaseType || !reflect.DeepEqual(domainConstraintDefs(s.Constraints), domainConstraintDefs(t.Constraints)) {
		out = append(out, &change.DropDomain{Schema: s.Schema, Name: s.Name}, createDomainChange(t))
	} else {
		alterDomain := &change.AlterDomain{Schema: t.Schema, Name: t.Name}
		var dirty bool
		if s.NotNull != t.NotNull {
			nn := t.NotNull
			alterDomain.NewNotNull = &nn
			dirty = true
		}
		switch {
		case t.Default == nil && s.Default != nil:
			alterDomain.DropDefault = true
			dirty = true
		case t.Default != nil && !strPtrEqual(s.Default, t.Default):
			alterDomain.NewDefault = t.Default
			dirty = true
		}
		if dirty {
			out = append(out, alterDomain)
		}
	}

	out = append(out, ownerChange(ref, s.Owner, t.Owner)...)
	out = append(out, commentChange(ref, s.Comment, t.Comment)...)
	out = append(out, privilegeChanges(dctx, ref, t.Owner, acl.Type, t.Schema, s.Acl, t.Acl)...)
	return out
}

func domainRef(d *catalog.Domain) change.ObjectRef {
	return objectRef(objtype.KindDomain, d.StableID(), ident.QuoteQualified(d.Schema, d.Name))
}
