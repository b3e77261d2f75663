// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"github.com/pgdiffhq/catalogdiff/pkg/acl"
	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

// diffRoutines handles pkg/catalog.Routine (function, procedure and
// aggregate, unified under one stable-ID family). Only a plain function
// can be replaced in place via CREATE OR REPLACE FUNCTION; procedures
// and aggregates have no such facility and always replace via
// drop+create, per AlterRoutine's doc comment.
func diffRoutines(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.Routines, target.Routines)

	var out change.Changes
	for _, r := range created {
		out = append(out, createRoutineChange(r))
		ref := routineRef(r)
		out = append(out, commentChange(ref, "", r.Comment)...)
		out = append(out, privilegeChanges(dctx, ref, r.Owner, acl.Routine, r.Schema, nil, r.Acl)...)
	}
	for _, r := range dropped {
		out = append(out, &change.DropRoutine{Schema: r.Schema, Name: r.Name, ArgSig: r.ArgSig, RoutineKind: string(r.Kind)})
	}
	for _, a := range altered {
		out = append(out, diffRoutine(dctx, a.Source, a.Target)...)
	}
	return out
}

func createRoutineChange(r *catalog.Routine) change.Change {
	return &change.CreateRoutine{Schema: r.Schema, Name: r.Name, Owner: r.Owner, RoutineKind: string(r.Kind),
		ArgSig: r.ArgSig, Arguments: r.Arguments, ReturnType: r.ReturnType, Language: r.Language,
		Volatility: r.Volatility, Body: r.Body, TransitionFunction: r.TransitionFunction, StateType: r.StateType,
		FinalFunction: r.FinalFunction, InitialCondition: r.InitialCondition}
}

func diffRoutine(dctx *Context, s, t *catalog.Routine) change.Changes {
	ref := routineRef(t)
	var out change.Changes

	bodyChanged := s.Arguments != t.Arguments || s.ReturnType != t.ReturnType || s.Language != t.Language ||
		s.Volatility != t.Volatility || s.Body != t.Body
	aggregateFieldsChanged := s.TransitionFunction != t.TransitionFunction || s.StateType != t.StateType ||
		s.FinalFunction != t.FinalFunction || s.InitialCondition != t.InitialCondition

	switch {
	case t.Kind != catalog.RoutineFunction && (bodyChanged || aggregateFieldsChanged):
		out = append(out, &change.DropRoutine{Schema: s.Schema, Name: s.Name, ArgSig: s.ArgSig, RoutineKind: string(s.Kind)},
			createRoutineChange(t))
	case bodyChanged:
		out = append(out, &change.AlterRoutine{Schema: t.Schema, Name: t.Name, ArgSig: t.ArgSig, Arguments: t.Arguments,
			ReturnType: t.ReturnType, Language: t.Language, Volatility: t.Volatility, Body: t.Body})
	}

	out = append(out, ownerChange(ref, s.Owner, t.Owner)...)
	out = append(out, commentChange(ref, s.Comment, t.Comment)...)
	out = append(out, privilegeChanges(dctx, ref, t.Owner, acl.Routine, t.Schema, s.Acl, t.Acl)...)
	return out
}

func routineRef(r *catalog.Routine) change.ObjectRef {
	kind := objtype.KindFunction
	class := "FUNCTION"
	switch r.Kind {
	case catalog.RoutineProcedure:
		kind = objtype.KindProcedure
		class = "PROCEDURE"
	case catalog.RoutineAggregate:
		kind = objtype.KindAggregate
		class = "FUNCTION" // PostgreSQL's GRANT/COMMENT treat aggregates as functions
	}
	return change.ObjectRef{
		Kind:           kind,
		StableID:       r.StableID(),
		SQLObjectClass: class,
		QualifiedName:  ident.QuoteQualified(r.Schema, r.Name) + "(" + r.ArgSig + ")",
	}
}
