// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"github.com/pgdiffhq/catalogdiff/pkg/acl"
	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

// diffSequences handles pkg/catalog.Sequence. Sequences owned by an
// identity column (OwnedByTable != "") are created/dropped implicitly by
// their column's GENERATED ... AS IDENTITY clause — see CreateSequence's
// doc comment — so this diff skips them entirely and leaves their
// lifecycle to diffColumns.
func diffSequences(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.Sequences, target.Sequences)

	var out change.Changes
	for _, s := range created {
		if s.OwnedByTable != "" {
			continue
		}
		out = append(out, &change.CreateSequence{Schema: s.Schema, Name: s.Name, Owner: s.Owner, SequenceAttrs: sequenceAttrs(s)})
		ref := sequenceRef(s)
		out = append(out, commentChange(ref, "", s.Comment)...)
		out = append(out, privilegeChanges(dctx, ref, s.Owner, acl.Sequence, s.Schema, nil, s.Acl)...)
	}
	for _, s := range dropped {
		if s.OwnedByTable != "" {
			continue
		}
		out = append(out, &change.DropSequence{Schema: s.Schema, Name: s.Name})
	}
	for _, a := range altered {
		if a.Target.OwnedByTable != "" {
			continue
		}
		ref := sequenceRef(a.Target)
		if sequenceAttrs(a.Source) != sequenceAttrs(a.Target) {
			out = append(out, &change.AlterSequence{Schema: a.Target.Schema, Name: a.Target.Name, SequenceAttrs: sequenceAttrs(a.Target)})
		}
		out = append(out, ownerChange(ref, a.Source.Owner, a.Target.Owner)...)
		out = append(out, commentChange(ref, a.Source.Comment, a.Target.Comment)...)
		out = append(out, privilegeChanges(dctx, ref, a.Target.Owner, acl.Sequence, a.Target.Schema, a.Source.Acl, a.Target.Acl)...)
	}
	return out
}

func sequenceAttrs(s *catalog.Sequence) change.SequenceAttrs {
	return change.SequenceAttrs{
		DataType:  s.DataType,
		Increment: s.Increment,
		MinValue:  s.MinValue,
		MaxValue:  s.MaxValue,
		Start:     s.Start,
		CacheSize: s.CacheSize,
		Cycle:     s.Cycle,
	}
}

func sequenceRef(s *catalog.Sequence) change.ObjectRef {
	return objectRef(objtype.KindSequence, s.StableID(), ident.QuoteQualified(s.Schema, s.Name))
}
