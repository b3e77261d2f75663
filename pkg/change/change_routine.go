// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"

	"github.com/pgdiffhq/catalogdiff/pkg/emit"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

func init() {
	register(NameCreateRoutine, func() Named { return &CreateRoutine{} })
	register(NameAlterRoutine, func() Named { return &AlterRoutine{} })
	register(NameDropRoutine, func() Named { return &DropRoutine{} })
}

// CreateRoutine creates a function, procedure or aggregate — the three
// kinds unified under pkg/catalog.Routine since they share a stable-ID
// shape and differ only in keyword and a few aggregate-only fields.
type CreateRoutine struct {
	Schema             string `json:"schema"`
	Name               string `json:"name"`
	Owner              string `json:"owner,omitempty"`
	RoutineKind        string `json:"routine_kind"` // function, procedure, aggregate
	ArgSig             string `json:"arg_sig"`
	Arguments          string `json:"arguments"`
	ReturnType         string `json:"return_type,omitempty"`
	Language           string `json:"language,omitempty"`
	Volatility         string `json:"volatility,omitempty"`
	Body               string `json:"body,omitempty"`
	TransitionFunction string `json:"transition_function,omitempty"`
	StateType          string `json:"state_type,omitempty"`
	FinalFunction      string `json:"final_function,omitempty"`
	InitialCondition   string `json:"initial_condition,omitempty"`
}

func (c *CreateRoutine) ChangeName() Name { return NameCreateRoutine }
func (c *CreateRoutine) Kind() objtype.Kind {
	switch c.RoutineKind {
	case "procedure":
		return objtype.KindProcedure
	case "aggregate":
		return objtype.KindAggregate
	default:
		return objtype.KindFunction
	}
}
func (c *CreateRoutine) Operation() objtype.Operation { return objtype.OpCreate }
func (c *CreateRoutine) Scope() objtype.Scope         { return objtype.ScopeObject }
func (c *CreateRoutine) Creates() []string {
	return []string{c.stableID()}
}
func (c *CreateRoutine) Requires() []string {
	reqs := nonEmpty(ident.Schema(c.Schema), ident.Role(c.Owner))
	if c.RoutineKind == "aggregate" {
		reqs = append(reqs, nonEmpty(c.TransitionFunction, c.FinalFunction)...)
	}
	return sortedStrings(reqs)
}
func (c *CreateRoutine) Drops() []string { return nil }

func (c *CreateRoutine) stableID() string {
	switch c.RoutineKind {
	case "procedure":
		return ident.Procedure(c.Schema, c.Name, c.ArgSig)
	case "aggregate":
		return ident.Aggregate(c.Schema, c.Name, c.ArgSig)
	default:
		return ident.Function(c.Schema, c.Name, c.ArgSig)
	}
}

func (c *CreateRoutine) Emit(opts emit.Options) (string, error) {
	qualified := ident.QuoteQualified(c.Schema, c.Name)
	switch c.RoutineKind {
	case "procedure":
		return fmt.Sprintf("%s %s(%s) %s %s $$%s$$;", opts.Keyword("create procedure"), qualified,
			c.Arguments, opts.Keyword("language")+" "+c.Language, opts.Keyword("as"), c.Body), nil
	case "aggregate":
		stmt := fmt.Sprintf("%s %s(%s) (%s = %s", opts.Keyword("create aggregate"), qualified,
			c.Arguments, opts.Keyword("sfunc"), c.TransitionFunction)
		if c.StateType != "" {
			stmt += ", " + opts.Keyword("stype") + " = " + c.StateType
		}
		if c.FinalFunction != "" {
			stmt += ", " + opts.Keyword("finalfunc") + " = " + c.FinalFunction
		}
		if c.InitialCondition != "" {
			stmt += ", " + opts.Keyword("initcond") + " = " + ident.Literal(c.InitialCondition)
		}
		return stmt + ");", nil
	default:
		return fmt.Sprintf("%s %s(%s) %s %s %s %s %s $$%s$$;", opts.Keyword("create or replace function"),
			qualified, c.Arguments, opts.Keyword("returns"), c.ReturnType,
			opts.Keyword("language")+" "+c.Language, opts.Keyword(c.Volatility), opts.Keyword("as"), c.Body), nil
	}
}

// AlterRoutine replaces a function's body/return type/volatility in
// place via CREATE OR REPLACE; procedures and aggregates have no such
// facility and replace via drop+create at the diff layer.
type AlterRoutine struct {
	Schema     string `json:"schema"`
	Name       string `json:"name"`
	ArgSig     string `json:"arg_sig"`
	Arguments  string `json:"arguments"`
	ReturnType string `json:"return_type"`
	Language   string `json:"language"`
	Volatility string `json:"volatility"`
	Body       string `json:"body"`
}

func (a *AlterRoutine) ChangeName() Name             { return NameAlterRoutine }
func (a *AlterRoutine) Kind() objtype.Kind           { return objtype.KindFunction }
func (a *AlterRoutine) Operation() objtype.Operation { return objtype.OpAlter }
func (a *AlterRoutine) Scope() objtype.Scope         { return objtype.ScopeObject }
func (a *AlterRoutine) Creates() []string            { return nil }
func (a *AlterRoutine) Requires() []string {
	return []string{ident.Function(a.Schema, a.Name, a.ArgSig)}
}
func (a *AlterRoutine) Drops() []string { return nil }

func (a *AlterRoutine) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s(%s) %s %s %s %s %s $$%s$$;", opts.Keyword("create or replace function"),
		ident.QuoteQualified(a.Schema, a.Name), a.Arguments, opts.Keyword("returns"), a.ReturnType,
		opts.Keyword("language")+" "+a.Language, opts.Keyword(a.Volatility), opts.Keyword("as"), a.Body), nil
}

// DropRoutine drops a function, procedure or aggregate.
type DropRoutine struct {
	Schema      string `json:"schema"`
	Name        string `json:"name"`
	ArgSig      string `json:"arg_sig"`
	RoutineKind string `json:"routine_kind"`
	Cascade     bool   `json:"cascade,omitempty"`
}

func (d *DropRoutine) ChangeName() Name { return NameDropRoutine }
func (d *DropRoutine) Kind() objtype.Kind {
	switch d.RoutineKind {
	case "procedure":
		return objtype.KindProcedure
	case "aggregate":
		return objtype.KindAggregate
	default:
		return objtype.KindFunction
	}
}
func (d *DropRoutine) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropRoutine) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropRoutine) Creates() []string            { return nil }
func (d *DropRoutine) Requires() []string           { return nil }
func (d *DropRoutine) Drops() []string {
	switch d.RoutineKind {
	case "procedure":
		return []string{ident.Procedure(d.Schema, d.Name, d.ArgSig)}
	case "aggregate":
		return []string{ident.Aggregate(d.Schema, d.Name, d.ArgSig)}
	default:
		return []string{ident.Function(d.Schema, d.Name, d.ArgSig)}
	}
}

func (d *DropRoutine) Emit(opts emit.Options) (string, error) {
	kw := map[string]string{"procedure": "drop procedure", "aggregate": "drop aggregate"}[d.RoutineKind]
	if kw == "" {
		kw = "drop function"
	}
	stmt := fmt.Sprintf("%s %s(%s)", opts.Keyword(kw), ident.QuoteQualified(d.Schema, d.Name), d.ArgSig)
	if d.Cascade {
		stmt += " " + opts.Keyword("cascade")
	}
	return stmt + ";", nil
}
