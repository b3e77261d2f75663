// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"github.com/pgdiffhq/catalogdiff/pkg/acl"
	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

// diffSchemas handles pkg/catalog.Schema: owner is alterable via
// AlterSchema, name is not (schemas with differing names are different
// stable IDs entirely, so no rename path exists at this layer).
func diffSchemas(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.Schemas, target.Schemas)

	var out change.Changes
	for _, s := range created {
		out = append(out, &change.CreateSchema{Name: s.Name, Owner: s.Owner})
		out = append(out, commentChange(schemaRef(s.StableID(), s.Name), "", s.Comment)...)
		out = append(out, privilegeChanges(dctx, schemaRef(s.StableID(), s.Name), s.Owner, acl.ObjType("n"), s.Name,
			nil, s.Acl)...)
	}
	for _, s := range dropped {
		out = append(out, &change.DropSchema{Name: s.Name, Cascade: false})
	}
	for _, a := range altered {
		ref := schemaRef(a.ID, a.Target.Name)
		if a.Source.Owner != a.Target.Owner {
			out = append(out, &change.AlterSchema{Name: a.Target.Name, NewOwner: a.Target.Owner})
		}
		out = append(out, commentChange(ref, a.Source.Comment, a.Target.Comment)...)
		out = append(out, privilegeChanges(dctx, ref, a.Target.Owner, acl.ObjType("n"), a.Target.Name,
			a.Source.Acl, a.Target.Acl)...)
	}
	return out
}

func schemaRef(stableID, name string) change.ObjectRef {
	return objectRef(objtype.KindSchema, stableID, ident.Quote(name))
}
