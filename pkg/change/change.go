// SPDX-License-Identifier: Apache-2.0

// Package change defines the Change family: the discriminated union
// of every create/alter/drop operation the diff engine can emit. A
// Change is a pure value — it carries no database handle and its Emit
// method is a string builder, never an executor. The shape mirrors a
// migration tool's Operation interface, with Start/Complete/Rollback
// collapsed into the single Emit step this engine's apply model calls
// for.
package change

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/pgdiffhq/catalogdiff/pkg/emit"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

// Change is implemented by every concrete operation in this package.
type Change interface {
	// Kind names the object kind this Change acts on.
	Kind() objtype.Kind
	// Operation is create, alter or drop.
	Operation() objtype.Operation
	// Scope narrows what part of the object is touched.
	Scope() objtype.Scope
	// Creates lists stable IDs this Change brings into existence.
	Creates() []string
	// Requires lists stable IDs that must already exist before this
	// Change can run (explicit edges consumed by the sort engine).
	Requires() []string
	// Drops lists stable IDs this Change removes.
	Drops() []string
	// Emit renders the SQL statement(s) for this Change, using opts to
	// control formatting. It never touches a database connection.
	Emit(opts emit.Options) (string, error)
}

// SensitiveChange is implemented by Changes whose Emit output would
// embed a secret (a password, a connection string). Planning and log
// output must call RedactedEmit instead of Emit when rendering for a
// human.
type SensitiveChange interface {
	Change
	RedactedEmit(opts emit.Options) (string, error)
}

// Name is the closed set of concrete Change variant tags used as the
// JSON discriminator key, one level more specific than Kind+Operation
// since e.g. "alter_table" splits into distinct variants per altered
// facet (owner, RLS, rename).
type Name string

const (
	NameCreateSchema Name = "create_schema"
	NameAlterSchema  Name = "alter_schema"
	NameDropSchema   Name = "drop_schema"

	NameCreateRole Name = "create_role"
	NameAlterRole  Name = "alter_role"
	NameDropRole   Name = "drop_role"

	NameCreateTable Name = "create_table"
	NameAlterTable  Name = "alter_table"
	NameDropTable   Name = "drop_table"

	NameAddColumn    Name = "add_column"
	NameAlterColumn  Name = "alter_column"
	NameDropColumn   Name = "drop_column"

	NameAddConstraint   Name = "add_constraint"
	NameDropConstraint  Name = "drop_constraint"

	NameCreateIndex Name = "create_index"
	NameDropIndex   Name = "drop_index"

	NameCreateTrigger Name = "create_trigger"
	NameDropTrigger   Name = "drop_trigger"

	NameCreateRule Name = "create_rule"
	NameDropRule   Name = "drop_rule"

	NameCreatePolicy Name = "create_policy"
	NameAlterPolicy  Name = "alter_policy"
	NameDropPolicy   Name = "drop_policy"

	NameCreateView Name = "create_view"
	NameAlterView  Name = "alter_view"
	NameDropView   Name = "drop_view"

	NameCreateMaterializedView Name = "create_materialized_view"
	NameAlterMaterializedView  Name = "alter_materialized_view"
	NameDropMaterializedView   Name = "drop_materialized_view"

	NameCreateSequence Name = "create_sequence"
	NameAlterSequence  Name = "alter_sequence"
	NameDropSequence   Name = "drop_sequence"

	NameCreateType Name = "create_type"
	NameAlterType  Name = "alter_type"
	NameDropType   Name = "drop_type"

	NameCreateDomain Name = "create_domain"
	NameAlterDomain  Name = "alter_domain"
	NameDropDomain   Name = "drop_domain"

	NameCreateRoutine Name = "create_routine"
	NameAlterRoutine  Name = "alter_routine"
	NameDropRoutine   Name = "drop_routine"

	NameCreateCollation Name = "create_collation"
	NameDropCollation   Name = "drop_collation"

	NameCreateExtension Name = "create_extension"
	NameAlterExtension  Name = "alter_extension"
	NameDropExtension   Name = "drop_extension"

	NameCreateLanguage Name = "create_language"
	NameDropLanguage   Name = "drop_language"

	NameCreateForeignDataWrapper Name = "create_foreign_data_wrapper"
	NameAlterForeignDataWrapper  Name = "alter_foreign_data_wrapper"
	NameDropForeignDataWrapper   Name = "drop_foreign_data_wrapper"

	NameCreateServer Name = "create_server"
	NameAlterServer  Name = "alter_server"
	NameDropServer   Name = "drop_server"

	NameCreateUserMapping Name = "create_user_mapping"
	NameAlterUserMapping  Name = "alter_user_mapping"
	NameDropUserMapping   Name = "drop_user_mapping"

	NameCreateForeignTable Name = "create_foreign_table"
	NameAlterForeignTable  Name = "alter_foreign_table"
	NameDropForeignTable   Name = "drop_foreign_table"

	NameCreatePublication Name = "create_publication"
	NameAlterPublication  Name = "alter_publication"
	NameDropPublication   Name = "drop_publication"

	NameCreateSubscription Name = "create_subscription"
	NameAlterSubscription  Name = "alter_subscription"
	NameDropSubscription   Name = "drop_subscription"

	NameCreateEventTrigger Name = "create_event_trigger"
	NameAlterEventTrigger  Name = "alter_event_trigger"
	NameDropEventTrigger   Name = "drop_event_trigger"

	NameSetComment      Name = "set_comment"
	NameGrantPrivilege  Name = "grant_privilege"
	NameRevokePrivilege Name = "revoke_privilege"
	NameRevokeGrantOption Name = "revoke_grant_option"
	NameGrantMembership Name = "grant_membership"
	NameRevokeMembership Name = "revoke_membership"
	NameAlterOwner      Name = "alter_owner"

	NameGrantDefaultPrivileges  Name = "grant_default_privileges"
	NameRevokeDefaultPrivileges Name = "revoke_default_privileges"
)

// Named is implemented by every concrete Change so the union (de)serializer
// can look up its discriminator without a type switch at the call site.
type Named interface {
	Change
	ChangeName() Name
}

// registry maps a discriminator tag to a zero-value constructor, filled
// in by each change_*.go file's init(). This mirrors the
// name-to-constructor dispatch pattern of a migration tool's own
// operation registry.
var registry = map[Name]func() Named{}

func register(n Name, ctor func() Named) {
	registry[n] = ctor
}

func fromName(n Name) (Named, error) {
	ctor, ok := registry[n]
	if !ok {
		return nil, fmt.Errorf("change: unknown change name %q", n)
	}
	return ctor(), nil
}

// Changes is an ordered list of Change, serialized as a JSON array of
// single-key objects (`{"create_table": {...}}`), the same
// discriminated-union encoding a migration tool uses for its own
// operation list.
type Changes []Change

func (cs *Changes) UnmarshalJSON(data []byte) error {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		*cs = Changes{}
		return nil
	}

	out := make([]Change, len(raw))
	for i, obj := range raw {
		if len(obj) != 1 {
			return fmt.Errorf("change: expected exactly one key in change object at index %d, got %d",
				i, len(obj))
		}
		var name Name
		var body json.RawMessage
		for k, v := range obj {
			name = Name(k)
			body = v
		}
		item, err := fromName(name)
		if err != nil {
			return err
		}
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(item); err != nil {
			return fmt.Errorf("change: decoding %q: %w", name, err)
		}
		out[i] = item
	}
	*cs = out
	return nil
}

func (cs Changes) MarshalJSON() ([]byte, error) {
	if len(cs) == 0 {
		return []byte(`[]`), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, c := range cs {
		if i != 0 {
			buf.WriteByte(',')
		}
		named, ok := c.(Named)
		if !ok {
			return nil, fmt.Errorf("change: %T does not implement Named", c)
		}
		buf.WriteString(`{"`)
		buf.WriteString(string(named.ChangeName()))
		buf.WriteString(`":`)
		raw, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("change: encoding %T: %w", c, err)
		}
		buf.Write(raw)
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// sortedStrings returns a new, sorted copy — used throughout this
// package so Creates/Requires/Drops are always deterministic regardless
// of how a concrete Change built its slice.
func sortedStrings(ss []string) []string {
	out := slices.Clone(ss)
	slices.Sort(out)
	return out
}

// nonEmpty filters a variadic list of stable IDs down to the non-empty
// ones, letting constructors pass conditionally-present IDs ("" for
// absent) without each needing its own filtering.
func nonEmpty(ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// joinStatements joins multiple statements with the emit option's
// statement separator, trimming any trailing empties.
func joinStatements(opts emit.Options, stmts ...string) string {
	out := make([]string, 0, len(stmts))
	for _, s := range stmts {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, opts.StatementSeparator())
}
