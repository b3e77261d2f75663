// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"reflect"

	"github.com/pgdiffhq/catalogdiff/pkg/acl"
	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

// diffForeignDataWrappers handles pkg/catalog.ForeignDataWrapper. Handler
// and Validator have no Alter facet; only Options can change in place.
func diffForeignDataWrappers(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.ForeignDataWrappers, target.ForeignDataWrappers)

	var out change.Changes
	for _, f := range created {
		out = append(out, &change.CreateForeignDataWrapper{Name: f.Name, Owner: f.Owner, Handler: f.Handler,
			Validator: f.Validator, Options: f.Options})
		ref := fdwRef(f)
		out = append(out, commentChange(ref, "", f.Comment)...)
	}
	for _, f := range dropped {
		out = append(out, &change.DropForeignDataWrapper{Name: f.Name})
	}
	for _, a := range altered {
		ref := fdwRef(a.Target)
		if a.Source.Handler != a.Target.Handler || a.Source.Validator != a.Target.Validator {
			out = append(out, &change.DropForeignDataWrapper{Name: a.Source.Name})
			out = append(out, &change.CreateForeignDataWrapper{Name: a.Target.Name, Owner: a.Target.Owner,
				Handler: a.Target.Handler, Validator: a.Target.Validator, Options: a.Target.Options})
		} else if !reflect.DeepEqual(a.Source.Options, a.Target.Options) {
			out = append(out, &change.AlterForeignDataWrapper{Name: a.Target.Name, Options: a.Target.Options})
		}
		out = append(out, ownerChange(ref, a.Source.Owner, a.Target.Owner)...)
		out = append(out, commentChange(ref, a.Source.Comment, a.Target.Comment)...)
	}
	return out
}

func fdwRef(f *catalog.ForeignDataWrapper) change.ObjectRef {
	return objectRef(objtype.KindForeignDataWrapper, f.StableID(), ident.Quote(f.Name))
}

// diffServers handles pkg/catalog.Server. FDW, Type and Version have no
// Alter facet; only Options can change in place.
func diffServers(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.Servers, target.Servers)

	var out change.Changes
	for _, s := range created {
		out = append(out, &change.CreateServer{Name: s.Name, Owner: s.Owner, FDW: s.FDW, Type: s.Type,
			Version: s.Version, Options: s.Options})
		ref := serverRef(s)
		out = append(out, commentChange(ref, "", s.Comment)...)
	}
	for _, s := range dropped {
		out = append(out, &change.DropServer{Name: s.Name})
	}
	for _, a := range altered {
		ref := serverRef(a.Target)
		if a.Source.FDW != a.Target.FDW || a.Source.Type != a.Target.Type || a.Source.Version != a.Target.Version {
			out = append(out, &change.DropServer{Name: a.Source.Name})
			out = append(out, &change.CreateServer{Name: a.Target.Name, Owner: a.Target.Owner, FDW: a.Target.FDW,
				Type: a.Target.Type, Version: a.Target.Version, Options: a.Target.Options})
		} else if !reflect.DeepEqual(a.Source.Options, a.Target.Options) {
			out = append(out, &change.AlterServer{Name: a.Target.Name, Options: a.Target.Options})
		}
		out = append(out, ownerChange(ref, a.Source.Owner, a.Target.Owner)...)
		out = append(out, commentChange(ref, a.Source.Comment, a.Target.Comment)...)
	}
	return out
}

func serverRef(s *catalog.Server) change.ObjectRef {
	return objectRef(objtype.KindServer, s.StableID(), ident.Quote(s.Name))
}

// diffUserMappings handles pkg/catalog.UserMapping. It carries no owner
// or comment, so only Options are compared.
func diffUserMappings(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.UserMappings, target.UserMappings)

	var out change.Changes
	for _, u := range created {
		out = append(out, &change.CreateUserMapping{Server: u.Server, User: u.User, Options: u.Options})
	}
	for _, u := range dropped {
		out = append(out, &change.DropUserMapping{Server: u.Server, User: u.User})
	}
	for _, a := range altered {
		if !reflect.DeepEqual(a.Source.Options, a.Target.Options) {
			out = append(out, &change.AlterUserMapping{Server: a.Target.Server, User: a.Target.User, Options: a.Target.Options})
		}
	}
	return out
}

// diffForeignTables handles pkg/catalog.ForeignTable. Columns and Server
// have no Alter facet modeled here, so either forces a replace; Options
// alone can change in place via ALTER FOREIGN TABLE.
func diffForeignTables(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.ForeignTables, target.ForeignTables)

	var out change.Changes
	for _, f := range created {
		out = append(out, &change.CreateForeignTable{Schema: f.Schema, Name: f.Name, Owner: f.Owner, Server: f.Server,
			Columns: toColumnDefs(f.Columns), Options: f.Options})
		ref := foreignTableRef(f)
		out = append(out, commentChange(ref, "", f.Comment)...)
		out = append(out, privilegeChanges(dctx, ref, f.Owner, acl.Relation, f.Schema, nil, f.Acl)...)
	}
	for _, f := range dropped {
		out = append(out, &change.DropForeignTable{Schema: f.Schema, Name: f.Name})
	}
	for _, a := range altered {
		out = append(out, diffForeignTable(dctx, a.Source, a.Target)...)
	}
	return out
}

func diffForeignTable(dctx *Context, s, t *catalog.ForeignTable) change.Changes {
	ref := foreignTableRef(t)
	var out change.Changes

	if s.Server != t.Server || !reflect.DeepEqual(toColumnDefs(s.Columns), toColumnDefs(t.Columns)) {
		out = append(out, &change.DropForeignTable{Schema: s.Schema, Name: s.Name})
		out = append(out, &change.CreateForeignTable{Schema: t.Schema, Name: t.Name, Owner: t.Owner, Server: t.Server,
			Columns: toColumnDefs(t.Columns), Options: t.Options})
	} else if !reflect.DeepEqual(s.Options, t.Options) {
		out = append(out, &change.AlterForeignTable{Schema: t.Schema, Name: t.Name, Options: t.Options})
	}

	out = append(out, ownerChange(ref, s.Owner, t.Owner)...)
	out = append(out, commentChange(ref, s.Comment, t.Comment)...)
	out = append(out, privilegeChanges(dctx, ref, t.Owner, acl.Relation, t.Schema, s.Acl, t.Acl)...)
	return out
}

func foreignTableRef(f *catalog.ForeignTable) change.ObjectRef {
	return objectRef(objtype.KindForeignTable, f.StableID(), ident.QuoteQualified(f.Schema, f.Name))
}
