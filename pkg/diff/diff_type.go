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

// diffTypes handles pkg/catalog.Type (enum, composite and range types,
// which share the `type:` stable-ID prefix). Enum label additions are
// the one facet with a real Alter path — ALTER TYPE ... ADD VALUE — so
// an enum whose source labels form an ordered subsequence of the
// target's labels is altered in place; anything else (label removal or
// reordering, and any composite/range change) replaces via drop+create.
func diffTypes(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.Types, target.Types)

	var out change.Changes
	for _, t := range created {
		out = append(out, createTypeChange(t))
		ref := typeRef(t)
		out = append(out, commentChange(ref, "", t.Comment)...)
		out = append(out, privilegeChanges(dctx, ref, t.Owner, acl.Type, t.Schema, nil, t.Acl)...)
	}
	for _, t := range dropped {
		out = append(out, &change.DropType{Schema: t.Schema, Name: t.Name, Cascade: false})
	}
	for _, a := range altered {
		out = append(out, diffType(dctx, a.Source, a.Target)...)
	}
	return out
}

func createTypeChange(t *catalog.Type) change.Change {
	cols := make([]change.CompositeColDef, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = change.CompositeColDef{Name: c.Name, DataType: c.DataType}
	}
	return &change.CreateType{Schema: t.Schema, Name: t.Name, Owner: t.Owner, TypeKind: string(t.Kind),
		Labels: t.Labels, Columns: cols, Subtype: t.Subtype}
}

func diffType(dctx *Context, s, t *catalog.Type) change.Changes {
	ref := typeRef(t)
	var out change.Changes

	switch {
	case s.Kind != t.Kind:
		out = append(out, &change.DropType{Schema: s.Schema, Name: s.Name}, createTypeChange(t))
	case t.Kind == catalog.TypeEnum:
		labelChanges, ok := diffEnumLabels(t.Schema, t.Name, s.Labels, t.Labels)
		if !ok {
			out = append(out, &change.DropType{Schema: s.Schema, Name: s.Name}, createTypeChange(t))
		} else {
			out = append(out, labelChanges...)
		}
	default: // composite, range: no alterable facet, replace on any change
		if !reflect.DeepEqual(s.Columns, t.Columns) || s.Subtype != t.Subtype {
			out = append(out, &change.DropType{Schema: s.Schema, Name: s.Name}, createTypeChange(t))
		}
	}

	out = append(out, ownerChange(ref, s.Owner, t.Owner)...)
	out = append(out, commentChange(ref, s.Comment, t.Comment)...)
	out = append(out, privilegeChanges(dctx, ref, t.Owner, acl.Type, t.Schema, s.Acl, t.Acl)...)
	return out
}

// diffEnumLabels returns the ordered ALTER TYPE ... ADD VALUE changes
// needed to grow source into target's label sequence, or ok=false when
// source is not an order-preserving subsequence of target (a label was
// removed or reordered, which PostgreSQL cannot do in place).
func diffEnumLabels(schema, name string, source, target []string) (change.Changes, bool) {
	si := 0
	for _, tl := range target {
		if si < len(source) && source[si] == tl {
			si++
		}
	}
	if si != len(source) {
		return nil, false
	}

	var out change.Changes
	si = 0
	afterLabel := ""
	for _, tl := range target {
		if si < len(source) && source[si] == tl {
			afterLabel = tl
			si++
			continue
		}
		c := &change.AlterType{Schema: schema, Name: name, AddLabel: tl}
		switch {
		case si < len(source):
			c.BeforeLabel = source[si]
		case afterLabel != "":
			c.AfterLabel = afterLabel
		}
		out = append(out, c)
		afterLabel = tl
	}
	return out, true
}

func typeRef(t *catalog.Type) change.ObjectRef {
	kind := objtype.KindEnum
	switch t.Kind {
	case catalog.TypeComposite:
		kind = objtype.KindCompositeType
	case catalog.TypeRange:
		kind = objtype.KindRange
	}
	return objectRef(kind, t.StableID(), ident.QuoteQualified(t.Schema, t.Name))
}
