// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"
	"strings"

	"github.com/pgdiffhq/catalogdiff/pkg/emit"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

func init() {
	register(NameCreatePublication, func() Named { return &CreatePublication{} })
	register(NameAlterPublication, func() Named { return &AlterPublication{} })
	register(NameDropPublication, func() Named { return &DropPublication{} })
	register(NameCreateSubscription, func() Named { return &CreateSubscription{} })
	register(NameAlterSubscription, func() Named { return &AlterSubscription{} })
	register(NameDropSubscription, func() Named { return &DropSubscription{} })
	register(NameCreateEventTrigger, func() Named { return &CreateEventTrigger{} })
	register(NameAlterEventTrigger, func() Named { return &AlterEventTrigger{} })
	register(NameDropEventTrigger, func() Named { return &DropEventTrigger{} })
}

// PublicationAttrs is the set of independently-alterable publication
// facets.
type PublicationAttrs struct {
	AllTables   bool     `json:"all_tables"`
	Tables      []string `json:"tables,omitempty"` // "schema.table"
	PubInsert   bool     `json:"pub_insert"`
	PubUpdate   bool     `json:"pub_update"`
	PubDelete   bool     `json:"pub_delete"`
	PubTruncate bool     `json:"pub_truncate"`
}

func (p PublicationAttrs) withClause(opts emit.Options) string {
	actions := []string{}
	if p.PubInsert {
		actions = append(actions, "insert")
	}
	if p.PubUpdate {
		actions = append(actions, "update")
	}
	if p.PubDelete {
		actions = append(actions, "delete")
	}
	if p.PubTruncate {
		actions = append(actions, "truncate")
	}
	if len(actions) == 0 {
		return ""
	}
	return " " + opts.Keyword("with (publish = ") + ident.Literal(joinComma(actions)) + ")"
}

// CreatePublication creates a logical-replication publication.
type CreatePublication struct {
	Name  string `json:"name"`
	Owner string `json:"owner,omitempty"`
	PublicationAttrs
}

func (c *CreatePublication) ChangeName() Name             { return NameCreatePublication }
func (c *CreatePublication) Kind() objtype.Kind           { return objtype.KindPublication }
func (c *CreatePublication) Operation() objtype.Operation { return objtype.OpCreate }
func (c *CreatePublication) Scope() objtype.Scope         { return objtype.ScopeObject }
func (c *CreatePublication) Creates() []string            { return []string{ident.Publication(c.Name)} }
func (c *CreatePublication) Requires() []string {
	reqs := nonEmpty(ident.Role(c.Owner))
	for _, t := range c.Tables {
		reqs = append(reqs, "table:"+t)
	}
	return sortedStrings(reqs)
}
func (c *CreatePublication) Drops() []string { return nil }

func (c *CreatePublication) Emit(opts emit.Options) (string, error) {
	stmt := fmt.Sprintf("%s %s", opts.Keyword("create publication"), ident.Quote(c.Name))
	if c.AllTables {
		stmt += " " + opts.Keyword("for all tables")
	} else if len(c.Tables) > 0 {
		stmt += " " + opts.Keyword("for table") + " " + quoteCols(c.Tables)
	}
	stmt += c.PublicationAttrs.withClause(opts)
	return stmt + ";", nil
}

// AlterPublication updates a publication's table set or publish actions.
type AlterPublication struct {
	Name string `json:"name"`
	PublicationAttrs
}

func (a *AlterPublication) ChangeName() Name             { return NameAlterPublication }
func (a *AlterPublication) Kind() objtype.Kind           { return objtype.KindPublication }
func (a *AlterPublication) Operation() objtype.Operation { return objtype.OpAlter }
func (a *AlterPublication) Scope() objtype.Scope         { return objtype.ScopeObject }
func (a *AlterPublication) Creates() []string            { return nil }
func (a *AlterPublication) Requires() []string           { return []string{ident.Publication(a.Name)} }
func (a *AlterPublication) Drops() []string              { return nil }

func (a *AlterPublication) Emit(opts emit.Options) (string, error) {
	stmt := fmt.Sprintf("%s %s", opts.Keyword("alter publication"), ident.Quote(a.Name))
	if a.AllTables {
		stmt += " " + opts.Keyword("set for all tables")
	} else if len(a.Tables) > 0 {
		stmt += " " + opts.Keyword("set table") + " " + quoteCols(a.Tables)
	}
	stmt += a.PublicationAttrs.withClause(opts)
	return stmt + ";", nil
}

// DropPublication drops a publication.
type DropPublication struct {
	Name string `json:"name"`
}

func (d *DropPublication) ChangeName() Name             { return NameDropPublication }
func (d *DropPublication) Kind() objtype.Kind           { return objtype.KindPublication }
func (d *DropPublication) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropPublication) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropPublication) Creates() []string            { return nil }
func (d *DropPublication) Requires() []string           { return nil }
func (d *DropPublication) Drops() []string              { return []string{ident.Publication(d.Name)} }

func (d *DropPublication) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s;", opts.Keyword("drop publication"), ident.Quote(d.Name)), nil
}

// CreateSubscription creates a logical-replication subscription. Conninfo
// embeds a connection string that may carry a password; Emit renders it
// as given, and RedactedEmit masks it.
type CreateSubscription struct {
	Name        string   `json:"name"`
	Owner       string   `json:"owner,omitempty"`
	Conninfo    string   `json:"conninfo"`
	Publication []string `json:"publication"`
	Enabled     bool     `json:"enabled"`
	TwoPhase    bool     `json:"two_phase"`
}

func (c *CreateSubscription) ChangeName() Name             { return NameCreateSubscription }
func (c *CreateSubscription) Kind() objtype.Kind           { return objtype.KindSubscription }
func (c *CreateSubscription) Operation() objtype.Operation { return objtype.OpCreate }
func (c *CreateSubscription) Scope() objtype.Scope         { return objtype.ScopeObject }
func (c *CreateSubscription) Creates() []string {
	return []string{ident.Subscription(c.Name)}
}
func (c *CreateSubscription) Requires() []string { return nonEmpty(ident.Role(c.Owner)) }
func (c *CreateSubscription) Drops() []string    { return nil }

func (c *CreateSubscription) emitFor(opts emit.Options, conninfo string) string {
	stmt := fmt.Sprintf("%s %s %s %s %s %s", opts.Keyword("create subscription"), ident.Quote(c.Name),
		opts.Keyword("connection"), ident.Literal(conninfo),
		opts.Keyword("publication"), quoteCols(c.Publication))
	opts2 := []string{fmt.Sprintf("%s = %t", "enabled", c.Enabled)}
	if c.TwoPhase {
		opts2 = append(opts2, "two_phase = true")
	}
	stmt += " " + opts.Keyword("with (") + joinComma(opts2) + ")"
	return stmt + ";"
}

func (c *CreateSubscription) Emit(opts emit.Options) (string, error) {
	return c.emitFor(opts, c.Conninfo), nil
}
func (c *CreateSubscription) RedactedEmit(opts emit.Options) (string, error) {
	redacted, hadPassword := redactConninfo(c.Conninfo)
	stmt := c.emitFor(opts, redacted)
	if hadPassword {
		stmt = conninfoRedactionWarning + stmt
	}
	return stmt, nil
}

// conninfoRedactionWarning is the warning comment prepended to the line
// preceding a subscription statement whose connection string had its
// password masked.
const conninfoRedactionWarning = "-- connection string password redacted for display; apply the unredacted plan to reach this state\n"

// redactConninfo masks the password= component of a libpq-style
// key=value conninfo string, replacing its value with the
// `password=__SENSITIVE_PASSWORD__` placeholder. hadPassword reports
// whether a password was actually present (and therefore masked), so
// callers only prepend the warning comment when it's true.
func redactConninfo(s string) (string, bool) {
	fields := strings.Fields(s)
	hadPassword := false
	for i, f := range fields {
		k, v, ok := strings.Cut(f, "=")
		if !ok || v == "" || !strings.EqualFold(k, "password") {
			continue
		}
		fields[i] = k + "=__SENSITIVE_PASSWORD__"
		hadPassword = true
	}
	return strings.Join(fields, " "), hadPassword
}

// AlterSubscription updates a subscription's connection info, publication
// set or enabled state. TwoPhase is not alterable and replaces via
// drop+create.
type AlterSubscription struct {
	Name        string    `json:"name"`
	NewConninfo *string   `json:"new_conninfo,omitempty"`
	Publication []string  `json:"publication,omitempty"`
	Enabled     *bool     `json:"enabled,omitempty"`
}

func (a *AlterSubscription) ChangeName() Name             { return NameAlterSubscription }
func (a *AlterSubscription) Kind() objtype.Kind           { return objtype.KindSubscription }
func (a *AlterSubscription) Operation() objtype.Operation { return objtype.OpAlter }
func (a *AlterSubscription) Scope() objtype.Scope         { return objtype.ScopeObject }
func (a *AlterSubscription) Creates() []string            { return nil }
func (a *AlterSubscription) Requires() []string           { return []string{ident.Subscription(a.Name)} }
func (a *AlterSubscription) Drops() []string              { return nil }

func (a *AlterSubscription) emitFor(opts emit.Options, conninfo *string) (string, error) {
	var stmts []string
	if conninfo != nil {
		stmts = append(stmts, fmt.Sprintf("%s %s %s %s;", opts.Keyword("alter subscription"), ident.Quote(a.Name),
			opts.Keyword("connection"), ident.Literal(*conninfo)))
	}
	if len(a.Publication) > 0 {
		stmts = append(stmts, fmt.Sprintf("%s %s %s %s;", opts.Keyword("alter subscription"), ident.Quote(a.Name),
			opts.Keyword("set publication"), quoteCols(a.Publication)))
	}
	if a.Enabled != nil {
		verb := "disable"
		if *a.Enabled {
			verb = "enable"
		}
		stmts = append(stmts, fmt.Sprintf("%s %s %s;", opts.Keyword("alter subscription"), ident.Quote(a.Name), opts.Keyword(verb)))
	}
	return joinStatements(opts, stmts...), nil
}

func (a *AlterSubscription) Emit(opts emit.Options) (string, error) {
	return a.emitFor(opts, a.NewConninfo)
}
func (a *AlterSubscription) RedactedEmit(opts emit.Options) (string, error) {
	if a.NewConninfo == nil {
		return a.emitFor(opts, nil)
	}
	redacted, hadPassword := redactConninfo(*a.NewConninfo)
	stmt, err := a.emitFor(opts, &redacted)
	if err != nil {
		return "", err
	}
	if hadPassword {
		stmt = conninfoRedactionWarning + stmt
	}
	return stmt, nil
}

// DropSubscription drops a subscription.
type DropSubscription struct {
	Name string `json:"name"`
}

func (d *DropSubscription) ChangeName() Name             { return NameDropSubscription }
func (d *DropSubscription) Kind() objtype.Kind           { return objtype.KindSubscription }
func (d *DropSubscription) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropSubscription) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropSubscription) Creates() []string            { return nil }
func (d *DropSubscription) Requires() []string           { return nil }
func (d *DropSubscription) Drops() []string              { return []string{ident.Subscription(d.Name)} }

func (d *DropSubscription) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s;", opts.Keyword("drop subscription"), ident.Quote(d.Name)), nil
}

// CreateEventTrigger registers an event trigger firing on DDL events.
type CreateEventTrigger struct {
	Name     string   `json:"name"`
	Owner    string   `json:"owner,omitempty"`
	Event    string   `json:"event"`
	Tags     []string `json:"tags,omitempty"`
	Function string   `json:"function"`
}

func (c *CreateEventTrigger) ChangeName() Name             { return NameCreateEventTrigger }
func (c *CreateEventTrigger) Kind() objtype.Kind           { return objtype.KindEventTrigger }
func (c *CreateEventTrigger) Operation() objtype.Operation { return objtype.OpCreate }
func (c *CreateEventTrigger) Scope() objtype.Scope         { return objtype.ScopeObject }
func (c *CreateEventTrigger) Creates() []string {
	return []string{ident.EventTrigger(c.Name)}
}
func (c *CreateEventTrigger) Requires() []string {
	return sortedStrings(nonEmpty(c.Function, ident.Role(c.Owner)))
}
func (c *CreateEventTrigger) Drops() []string { return nil }

func (c *CreateEventTrigger) Emit(opts emit.Options) (string, error) {
	stmt := fmt.Sprintf("%s %s %s %s", opts.Keyword("create event trigger"), ident.Quote(c.Name),
		opts.Keyword("on"), ident.Literal(c.Event))
	if len(c.Tags) > 0 {
		quoted := make([]string, len(c.Tags))
		for i, t := range c.Tags {
			quoted[i] = ident.Literal(t)
		}
		stmt += " " + opts.Keyword("when tag in") + " (" + joinComma(quoted) + ")"
	}
	stmt += " " + opts.Keyword("execute function") + " " + c.Function + "()"
	return stmt + ";", nil
}

// AlterEventTrigger enables or disables an event trigger — the only
// facet PostgreSQL allows altering in place.
type AlterEventTrigger struct {
	Name    string `json:"name"`
	Enabled string `json:"enabled"` // O, D, R, A
}

func (a *AlterEventTrigger) ChangeName() Name             { return NameAlterEventTrigger }
func (a *AlterEventTrigger) Kind() objtype.Kind           { return objtype.KindEventTrigger }
func (a *AlterEventTrigger) Operation() objtype.Operation { return objtype.OpAlter }
func (a *AlterEventTrigger) Scope() objtype.Scope         { return objtype.ScopeObject }
func (a *AlterEventTrigger) Creates() []string            { return nil }
func (a *AlterEventTrigger) Requires() []string           { return []string{ident.EventTrigger(a.Name)} }
func (a *AlterEventTrigger) Drops() []string              { return nil }

func (a *AlterEventTrigger) Emit(opts emit.Options) (string, error) {
	verbs := map[string]string{"O": "enable", "D": "disable", "R": "enable replica", "A": "enable always"}
	return fmt.Sprintf("%s %s %s;", opts.Keyword("alter event trigger"), ident.Quote(a.Name),
		opts.Keyword(verbs[a.Enabled])), nil
}

// DropEventTrigger removes an event trigger.
type DropEventTrigger struct {
	Name string `json:"name"`
}

func (d *DropEventTrigger) ChangeName() Name             { return NameDropEventTrigger }
func (d *DropEventTrigger) Kind() objtype.Kind           { return objtype.KindEventTrigger }
func (d *DropEventTrigger) Operation() objtype.Operation { return objtype.OpDrop }
func (d *DropEventTrigger) Scope() objtype.Scope         { return objtype.ScopeObject }
func (d *DropEventTrigger) Creates() []string            { return nil }
func (d *DropEventTrigger) Requires() []string           { return nil }
func (d *DropEventTrigger) Drops() []string              { return []string{ident.EventTrigger(d.Name)} }

func (d *DropEventTrigger) Emit(opts emit.Options) (string, error) {
	return fmt.Sprintf("%s %s;", opts.Keyword("drop event trigger"), ident.Quote(d.Name)), nil
}
