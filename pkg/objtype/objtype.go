// SPDX-License-Identifier: Apache-2.0

// Package objtype holds the shared vocabulary referenced by both the
// catalog model and the Change family: the closed set of PostgreSQL
// object kinds, the three Change operations, and the Change scopes.
// It exists as its own package so pkg/catalog and pkg/change can both
// depend on it without importing each other.
package objtype

// Kind is the closed set of PostgreSQL object kinds the engine models.
type Kind string

const (
	KindSchema             Kind = "schema"
	KindRole                Kind = "role"
	KindTable               Kind = "table"
	KindColumn              Kind = "column"
	KindConstraint          Kind = "constraint"
	KindIndex               Kind = "index"
	KindView                Kind = "view"
	KindMaterializedView    Kind = "materializedView"
	KindFunction            Kind = "function"
	KindProcedure           Kind = "procedure"
	KindAggregate           Kind = "aggregate"
	KindSequence            Kind = "sequence"
	KindEnum                Kind = "enum"
	KindCompositeType       Kind = "compositeType"
	KindRange               Kind = "range"
	KindDomain              Kind = "domain"
	KindCollation           Kind = "collation"
	KindExtension           Kind = "extension"
	KindLanguage            Kind = "language"
	KindForeignDataWrapper  Kind = "foreignDataWrapper"
	KindServer              Kind = "server"
	KindUserMapping         Kind = "userMapping"
	KindForeignTable        Kind = "foreignTable"
	KindPublication         Kind = "publication"
	KindSubscription        Kind = "subscription"
	KindEventTrigger        Kind = "eventTrigger"
	KindTrigger             Kind = "trigger"
	KindRule                Kind = "rule"
	KindRLSPolicy           Kind = "rlsPolicy"
)

// Operation is one of the three phases a Change belongs to.
type Operation string

const (
	OpCreate Operation = "create"
	OpAlter  Operation = "alter"
	OpDrop   Operation = "drop"
)

// Scope narrows what part of an object a Change touches.
type Scope string

const (
	ScopeObject     Scope = "object"
	ScopeColumn     Scope = "column"
	ScopeConstraint Scope = "constraint"
	ScopeComment    Scope = "comment"
	ScopePrivilege  Scope = "privilege"
	ScopeMembership Scope = "membership"
	ScopeOwner      Scope = "owner"
)

// DefaclObjType maps a catalog Kind to the one-letter code PostgreSQL
// uses in pg_default_acl.defaclobjtype, for the
// default-privilege-before-create rule. Kinds with no
// default-privilege analogue return "".
func DefaclObjType(k Kind) string {
	switch k {
	case KindTable, KindView, KindMaterializedView, KindForeignTable:
		return "r"
	case KindSequence:
		return "S"
	case KindFunction, KindProcedure, KindAggregate:
		return "f"
	case KindEnum, KindCompositeType, KindRange, KindDomain:
		return "T"
	case KindSchema:
		return "n"
	default:
		return ""
	}
}

// ReplaceableKinds are the object kinds the replace-dependency
// expansion is allowed to turn into a Drop+Create pair.
func Replaceable(k Kind) bool {
	switch k {
	case KindTable, KindView, KindMaterializedView, KindFunction, KindProcedure,
		KindEnum, KindRange, KindCompositeType, KindDomain:
		return true
	default:
		return false
	}
}

// DataCarrying reports whether dropping an object of this kind can
// destroy user data, for the plan's risk classification.
func DataCarrying(k Kind) bool {
	switch k {
	case KindTable, KindColumn, KindMaterializedView, KindSequence:
		return true
	default:
		return false
	}
}
