// SPDX-License-Identifier: Apache-2.0

// Package ident builds stable identifiers for catalog objects and quotes
// identifiers/literals the way PostgreSQL expects them in emitted DDL.
package ident

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Quote double-quotes a Postgres identifier when required, delegating to
// lib/pq's quoting rules so emitted DDL matches what the driver itself
// would produce for the same identifier.
func Quote(name string) string {
	return pq.QuoteIdentifier(name)
}

// QuoteQualified quotes a schema-qualified identifier, e.g. "public"."users".
func QuoteQualified(schema, name string) string {
	if schema == "" {
		return Quote(name)
	}
	return Quote(schema) + "." + Quote(name)
}

// Literal single-quotes a SQL string literal, doubling embedded quotes.
func Literal(s string) string {
	return pq.QuoteLiteral(s)
}

// Stable ID grammar. Each constructor is a pure string builder; stable
// IDs are compared only as strings and never parsed back into their
// constituent parts by this package.
const (
	unknownPrefix = "unknown:"
)

func Schema(schema string) string { return "schema:" + schema }
func Role(role string) string     { return "role:" + role }

func Table(schema, table string) string { return fmt.Sprintf("table:%s.%s", schema, table) }
func View(schema, view string) string   { return fmt.Sprintf("view:%s.%s", schema, view) }
func MaterializedView(schema, view string) string {
	return fmt.Sprintf("materializedView:%s.%s", schema, view)
}
func ForeignTable(schema, table string) string {
	return fmt.Sprintf("foreignTable:%s.%s", schema, table)
}

func Column(schema, table, column string) string {
	return fmt.Sprintf("column:%s.%s.%s", schema, table, column)
}

func Constraint(schema, table, name string) string {
	return fmt.Sprintf("constraint:%s.%s.%s", schema, table, name)
}

func Index(schema, index string) string { return fmt.Sprintf("index:%s.%s", schema, index) }
func Sequence(schema, name string) string {
	return fmt.Sprintf("sequence:%s.%s", schema, name)
}

// Type covers enums, ranges and composite types; they share the
// `type:` prefix.
func Type(schema, name string) string   { return fmt.Sprintf("type:%s.%s", schema, name) }
func Domain(schema, name string) string { return fmt.Sprintf("domain:%s.%s", schema, name) }

// Function builds a stable ID for a routine-like object including its
// argument signature, so overloaded routines get distinct IDs.
func Function(schema, name, argSig string) string {
	return fmt.Sprintf("function:%s.%s(%s)", schema, name, argSig)
}
func Procedure(schema, name, argSig string) string {
	return fmt.Sprintf("procedure:%s.%s(%s)", schema, name, argSig)
}
func Aggregate(schema, name, argSig string) string {
	return fmt.Sprintf("aggregate:%s.%s(%s)", schema, name, argSig)
}

func Trigger(schema, table, name string) string {
	return fmt.Sprintf("trigger:%s.%s.%s", schema, table, name)
}
func Rule(schema, table, name string) string {
	return fmt.Sprintf("rule:%s.%s.%s", schema, table, name)
}
func RLSPolicy(schema, table, name string) string {
	return fmt.Sprintf("rls_policy:%s.%s.%s", schema, table, name)
}

func Publication(name string) string  { return "publication:" + name }
func Subscription(name string) string { return "subscription:" + name }
func Extension(name string) string    { return "extension:" + name }
func Language(name string) string     { return "language:" + name }
func Collation(schema, name string) string {
	return fmt.Sprintf("collation:%s.%s", schema, name)
}
func ForeignDataWrapper(name string) string { return "foreignDataWrapper:" + name }
func Server(name string) string             { return "server:" + name }
func UserMapping(server, user string) string {
	return fmt.Sprintf("userMapping:%s.%s", server, user)
}
func EventTrigger(name string) string { return "eventTrigger:" + name }

// Virtual prefixes compose over any of the above stable IDs.

func Comment(id string) string { return "comment:" + id }

func ACL(id, grantee string) string {
	return fmt.Sprintf("acl:%s::grantee:%s", id, grantee)
}

// DefaultACL builds the stable ID for a default-privilege entry keyed by
// grantor, object type and scope (global or a specific schema).
func DefaultACL(grantor, objType, schemaScope, grantee string) string {
	scope := "global"
	if schemaScope != "" {
		scope = "schema:" + schemaScope
	}
	return fmt.Sprintf("defacl:%s:%s:%s:grantee:%s", grantor, objType, scope, grantee)
}

func Membership(role, member string) string {
	return fmt.Sprintf("membership:%s.%s", role, member)
}

// Unknown wraps a raw pg_depend identifier the extractor could not resolve
// to a known catalog object. Sort ignores edges touching unknown IDs.
func Unknown(raw string) string { return unknownPrefix + raw }

// IsUnknown reports whether a stable ID carries the `unknown:` prefix.
func IsUnknown(id string) bool { return strings.HasPrefix(id, unknownPrefix) }
