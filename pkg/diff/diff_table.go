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

// diffTables handles pkg/catalog.Table and every sub-object that hangs
// off it: columns, constraints, indexes, triggers, rules and policies.
// None of constraints/indexes/triggers/rules have an Alter form, so any
// definition change for those replaces via drop+create; columns and the
// table itself have a genuinely alterable facet set.
func diffTables(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.Tables, target.Tables)

	var out change.Changes
	for _, t := range created {
		out = append(out, createTableChanges(dctx, t)...)
	}
	for _, t := range dropped {
		out = append(out, &change.DropTable{Schema: t.Schema, Name: t.Name, Cascade: false})
	}
	for _, a := range altered {
		out = append(out, diffTable(dctx, a.Source, a.Target)...)
	}
	return out
}

func createTableChanges(dctx *Context, t *catalog.Table) change.Changes {
	out := change.Changes{&change.CreateTable{
		Schema:  t.Schema,
		Name:    t.Name,
		Owner:   t.Owner,
		Columns: toColumnDefs(t.Columns),
	}}

	if t.RLSEnabled || t.RLSForced {
		enabled, forced := t.RLSEnabled, t.RLSForced
		out = append(out, &change.AlterTable{Schema: t.Schema, Name: t.Name, RLSEnabled: &enabled, RLSForced: &forced})
	}
	for _, c := range sortedByName(t.Constraints, func(c catalog.Constraint) string { return c.Name }) {
		out = append(out, createConstraintChange(t.Schema, t.Name, c))
	}
	for _, idx := range sortedByName(t.Indexes, func(i catalog.Index) string { return i.Name }) {
		out = append(out, createIndexChange(t.Schema, t.Name, idx))
	}
	for _, tr := range sortedByName(t.Triggers, func(tr catalog.Trigger) string { return tr.Name }) {
		out = append(out, createTriggerChange(t.Schema, t.Name, tr))
	}
	for _, p := range sortedByName(t.Policies, func(p catalog.RLSPolicy) string { return p.Name }) {
		out = append(out, createPolicyChange(t.Schema, t.Name, p))
	}
	for _, r := range sortedByName(t.Rules, func(r catalog.Rule) string { return r.Name }) {
		out = append(out, createRuleChange(t.Schema, t.Name, r))
	}

	tableRef := objectRef(objtype.KindTable, t.StableID(), ident.QuoteQualified(t.Schema, t.Name))
	out = append(out, commentChange(tableRef, "", t.Comment)...)
	out = append(out, privilegeChanges(dctx, tableRef, t.Owner, acl.Relation, t.Schema, nil, t.Acl)...)

	for _, col := range t.Columns {
		ref := columnRef(t.Schema, t.Name, col.Name)
		out = append(out, commentChange(ref, "", col.Comment)...)
		out = append(out, privilegeChanges(dctx, ref, "", acl.Relation, t.Schema, nil, col.Acl)...)
	}
	return out
}

func toColumnDefs(cols []catalog.Column) []change.ColumnDef {
	out := make([]change.ColumnDef, len(cols))
	for i, c := range cols {
		out[i] = change.ColumnDef{
			Name:          c.Name,
			DataType:      c.DataType,
			NotNull:       c.NotNull,
			Default:       c.Default,
			GeneratedExpr: c.GeneratedExpr,
			Collation:     c.Collation,
		}
	}
	return out
}

func diffTable(dctx *Context, s, t *catalog.Table) change.Changes {
	tableID := t.StableID()
	tableRef := objectRef(objtype.KindTable, tableID, ident.QuoteQualified(t.Schema, t.Name))

	var out change.Changes

	var rlsEnabled, rlsForced *bool
	if s.RLSEnabled != t.RLSEnabled {
		v := t.RLSEnabled
		rlsEnabled = &v
	}
	if s.RLSForced != t.RLSForced {
		v := t.RLSForced
		rlsForced = &v
	}
	if rlsEnabled != nil || rlsForced != nil {
		out = append(out, &change.AlterTable{Schema: t.Schema, Name: t.Name, RLSEnabled: rlsEnabled, RLSForced: rlsForced})
	}

	out = append(out, ownerChange(tableRef, s.Owner, t.Owner)...)
	out = append(out, commentChange(tableRef, s.Comment, t.Comment)...)
	out = append(out, privilegeChanges(dctx, tableRef, t.Owner, acl.Relation, t.Schema, s.Acl, t.Acl)...)

	out = append(out, diffColumns(dctx, t.Schema, t.Name, s.Columns, t.Columns)...)
	out = append(out, diffConstraints(t.Schema, t.Name, s.Constraints, t.Constraints)...)
	out = append(out, diffIndexes(t.Schema, t.Name, s.Indexes, t.Indexes)...)
	out = append(out, diffTriggers(t.Schema, t.Name, s.Triggers, t.Triggers)...)
	out = append(out, diffPolicies(t.Schema, t.Name, s.Policies, t.Policies)...)
	out = append(out, diffRules(t.Schema, t.Name, s.Rules, t.Rules)...)

	return out
}

// sortedByName returns a map's values sorted by the caller-supplied name
// extractor, giving a deterministic iteration order over the
// map[string]T sub-object collections pkg/catalog keys by object name.
func sortedByName[T any](m map[string]T, nameOf func(T) string) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return nameOf(out[i]) < nameOf(out[j]) })
	return out
}

func columnMap(cols []catalog.Column) map[string]catalog.Column {
	m := make(map[string]catalog.Column, len(cols))
	for _, c := range cols {
		m[c.Name] = c
	}
	return m
}

// identityEqual compares two possibly-nil Identity pointers by value.
func identityEqual(a, b *catalog.Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// diffColumns diffs a table's column list. Identity, GeneratedExpr and
// Collation have no AlterColumn facet (the non-alterable set for
// Column: {identity, generated_expr, collation}), so a change to any
// of those replaces the column via drop+add instead of an in-place alter.
func diffColumns(dctx *Context, schema, table string, sourceCols, targetCols []catalog.Column) change.Changes {
	created, dropped, altered := diffObjects(columnMap(sourceCols), columnMap(targetCols))
	sort.Slice(created, func(i, j int) bool { return created[i].Name < created[j].Name })
	sort.Slice(dropped, func(i, j int) bool { return dropped[i].Name < dropped[j].Name })
	sort.Slice(altered, func(i, j int) bool { return altered[i].ID < altered[j].ID })

	var out change.Changes
	for _, c := range created {
		out = append(out, &change.AddColumn{Schema: schema, Table: table, Column: toColumnDefs([]catalog.Column{c})[0]})
		ref := columnRef(schema, table, c.Name)
		out = append(out, commentChange(ref, "", c.Comment)...)
		out = append(out, privilegeChanges(dctx, ref, "", acl.Relation, schema, nil, c.Acl)...)
	}
	for _, c := range dropped {
		out = append(out, &change.DropColumn{Schema: schema, Table: table, Name: c.Name})
	}
	for _, a := range altered {
		s, t := a.Source, a.Target
		ref := columnRef(schema, table, t.Name)

		if !identityEqual(s.Identity, t.Identity) || !strPtrEqual(s.GeneratedExpr, t.GeneratedExpr) || s.Collation != t.Collation {
			out = append(out, &change.DropColumn{Schema: schema, Table: table, Name: s.Name})
			out = append(out, &change.AddColumn{Schema: schema, Table: table, Column: toColumnDefs([]catalog.Column{t})[0]})
			out = append(out, commentChange(ref, "", t.Comment)...)
			out = append(out, privilegeChanges(dctx, ref, "", acl.Relation, schema, nil, t.Acl)...)
			continue
		}

		alterCol := &change.AlterColumn{Schema: schema, Table: table, Name: t.Name}
		var dirty bool
		if s.DataType != t.DataType {
			dt := t.DataType
			alterCol.NewType = &dt
			dirty = true
		}
		if s.NotNull != t.NotNull {
			nn := t.NotNull
			alterCol.NewNotNull = &nn
			dirty = true
		}
		switch {
		case t.Default == nil && s.Default != nil:
			alterCol.DropDefault = true
			dirty = true
		case t.Default != nil && !strPtrEqual(s.Default, t.Default):
			alterCol.NewDefault = t.Default
			dirty = true
		}
		if dirty {
			out = append(out, alterCol)
		}

		out = append(out, commentChange(ref, s.Comment, t.Comment)...)
		out = append(out, privilegeChanges(dctx, ref, "", acl.Relation, schema, s.Acl, t.Acl)...)
	}
	return out
}

func columnRef(schema, table, name string) change.ObjectRef {
	return objectRef(objtype.KindColumn, ident.Column(schema, table, name),
		ident.Quote(name)+" on "+ident.QuoteQualified(schema, table))
}

func toConstraintDef(c catalog.Constraint) change.ConstraintDef {
	return change.ConstraintDef{
		Type:              string(c.Type),
		Columns:           c.Columns,
		ReferencedSchema:  c.ReferencedSchema,
		ReferencedTable:   c.ReferencedTable,
		ReferencedColumns: c.ReferencedColumns,
		OnDelete:          c.OnDelete,
		OnUpdate:          c.OnUpdate,
		CheckClause:       c.CheckClause,
		Deferrable:        c.Deferrable,
		InitiallyDeferred: c.InitiallyDeferred,
		NotValid:          !c.Validated,
	}
}

func createConstraintChange(schema, table string, c catalog.Constraint) change.Change {
	return &change.AddConstraint{Schema: schema, Table: table, Name: c.Name, Definition: toConstraintDef(c)}
}

func diffConstraints(schema, table string, source, target map[string]catalog.Constraint) change.Changes {
	created, dropped, altered := diffObjects(source, target)
	sort.Slice(created, func(i, j int) bool { return created[i].Name < created[j].Name })
	sort.Slice(dropped, func(i, j int) bool { return dropped[i].Name < dropped[j].Name })
	sort.Slice(altered, func(i, j int) bool { return altered[i].ID < altered[j].ID })

	var out change.Changes
	for _, c := range created {
		out = append(out, createConstraintChange(schema, table, c))
	}
	for _, c := range dropped {
		out = append(out, &change.DropConstraint{Schema: schema, Table: table, Name: c.Name})
	}
	for _, a := range altered {
		if reflect.DeepEqual(toConstraintDef(a.Source), toConstraintDef(a.Target)) {
			continue
		}
		out = append(out, &change.DropConstraint{Schema: schema, Table: table, Name: a.Source.Name})
		out = append(out, createConstraintChange(schema, table, a.Target))
	}
	return out
}

func createIndexChange(schema, table string, idx catalog.Index) change.Change {
	return &change.CreateIndex{Schema: schema, Table: table, Name: idx.Name, Columns: idx.Columns,
		Unique: idx.Unique, Method: idx.Method, Where: idx.Where}
}

func diffIndexes(schema, table string, source, target map[string]catalog.Index) change.Changes {
	created, dropped, altered := diffObjects(source, target)
	sort.Slice(created, func(i, j int) bool { return created[i].Name < created[j].Name })
	sort.Slice(dropped, func(i, j int) bool { return dropped[i].Name < dropped[j].Name })
	sort.Slice(altered, func(i, j int) bool { return altered[i].ID < altered[j].ID })

	var out change.Changes
	for _, idx := range created {
		out = append(out, createIndexChange(schema, table, idx))
	}
	for _, idx := range dropped {
		out = append(out, &change.DropIndex{Schema: schema, Name: idx.Name})
	}
	for _, a := range altered {
		if reflect.DeepEqual(a.Source, a.Target) {
			continue
		}
		out = append(out, &change.DropIndex{Schema: schema, Name: a.Source.Name})
		out = append(out, createIndexChange(schema, table, a.Target))
	}
	return out
}

func createTriggerChange(schema, table string, tr catalog.Trigger) change.Change {
	return &change.CreateTrigger{Schema: schema, Table: table, Name: tr.Name, Definition: tr.Definition}
}

func diffTriggers(schema, table string, source, target map[string]catalog.Trigger) change.Changes {
	created, dropped, altered := diffObjects(source, target)
	sort.Slice(created, func(i, j int) bool { return created[i].Name < created[j].Name })
	sort.Slice(dropped, func(i, j int) bool { return dropped[i].Name < dropped[j].Name })
	sort.Slice(altered, func(i, j int) bool { return altered[i].ID < altered[j].ID })

	var out change.Changes
	for _, tr := range created {
		out = append(out, createTriggerChange(schema, table, tr))
	}
	for _, tr := range dropped {
		out = append(out, &change.DropTrigger{Schema: schema, Table: table, Name: tr.Name})
	}
	for _, a := range altered {
		if a.Source.Definition == a.Target.Definition {
			continue
		}
		out = append(out, &change.DropTrigger{Schema: schema, Table: table, Name: a.Source.Name})
		out = append(out, createTriggerChange(schema, table, a.Target))
	}
	return out
}

func createRuleChange(schema, table string, r catalog.Rule) change.Change {
	return &change.CreateRule{Schema: schema, Table: table, Name: r.Name, Definition: r.Definition}
}

func diffRules(schema, table string, source, target map[string]catalog.Rule) change.Changes {
	created, dropped, altered := diffObjects(source, target)
	sort.Slice(created, func(i, j int) bool { return created[i].Name < created[j].Name })
	sort.Slice(dropped, func(i, j int) bool { return dropped[i].Name < dropped[j].Name })
	sort.Slice(altered, func(i, j int) bool { return altered[i].ID < altered[j].ID })

	var out change.Changes
	for _, r := range created {
		out = append(out, createRuleChange(schema, table, r))
	}
	for _, r := range dropped {
		out = append(out, &change.DropRule{Schema: schema, Table: table, Name: r.Name})
	}
	for _, a := range altered {
		// CREATE OR REPLACE RULE exists in PostgreSQL, but this engine has
		// no AlterRule variant; any definition change
		// replaces via drop+create instead.
		if a.Source.Definition == a.Target.Definition {
			continue
		}
		out = append(out, &change.DropRule{Schema: schema, Table: table, Name: a.Source.Name})
		out = append(out, createRuleChange(schema, table, a.Target))
	}
	return out
}

func createPolicyChange(schema, table string, p catalog.RLSPolicy) change.Change {
	return &change.CreatePolicy{Schema: schema, Table: table, Name: p.Name, Permissive: p.Permissive,
		Command: p.Command, Roles: p.Roles, Using: p.Using, WithCheck: p.WithCheck}
}

func diffPolicies(schema, table string, source, target map[string]catalog.RLSPolicy) change.Changes {
	created, dropped, altered := diffObjects(source, target)
	sort.Slice(created, func(i, j int) bool { return created[i].Name < created[j].Name })
	sort.Slice(dropped, func(i, j int) bool { return dropped[i].Name < dropped[j].Name })
	sort.Slice(altered, func(i, j int) bool { return altered[i].ID < altered[j].ID })

	var out change.Changes
	for _, p := range created {
		out = append(out, createPolicyChange(schema, table, p))
	}
	for _, p := range dropped {
		out = append(out, &change.DropPolicy{Schema: schema, Table: table, Name: p.Name})
	}
	for _, a := range altered {
		if a.Source.Command != a.Target.Command || a.Source.Permissive != a.Target.Permissive {
			out = append(out, &change.DropPolicy{Schema: schema, Table: table, Name: a.Source.Name})
			out = append(out, createPolicyChange(schema, table, a.Target))
			continue
		}
		if reflect.DeepEqual(a.Source.Roles, a.Target.Roles) && a.Source.Using == a.Target.Using &&
			a.Source.WithCheck == a.Target.WithCheck {
			continue
		}
		out = append(out, &change.AlterPolicy{Schema: schema, Table: table, Name: a.Target.Name,
			Roles: a.Target.Roles, Using: a.Target.Using, WithCheck: a.Target.WithCheck})
	}
	return out
}
