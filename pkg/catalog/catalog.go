// SPDX-License-Identifier: Apache-2.0

// Package catalog defines the typed container of all schema object
// collections a Catalog holds. A Catalog is produced by an external
// Extractor and never mutated by the core; the diff engine only ever
// reads from it.
package catalog

import (
	"context"

	"github.com/pgdiffhq/catalogdiff/pkg/acl"
	"github.com/pgdiffhq/catalogdiff/pkg/db"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

// DepType mirrors pg_depend.deptype.
type DepType string

const (
	DepNormal   DepType = "n"
	DepAuto     DepType = "a"
	DepInternal DepType = "i"
)

// Depend is a single pg_depend row, the catalog-edge contract consumed
// by the sort engine.
type Depend struct {
	DependentStableID  string
	ReferencedStableID string
	DepType            DepType
}

// Privilege is an ACL entry as extracted from the catalog (aclitem),
// re-exported here so callers don't need to import pkg/acl directly for
// the common case.
type Privilege = acl.Privilege

// Identified is implemented by every object record; identity_fields and
// data_fields partition a record into the stable-ID-forming keys and
// the rest.
type Identified interface {
	StableID() string
}

// Schema is a PostgreSQL namespace.
type Schema struct {
	Name    string
	Owner   string
	Comment string
	Acl     []Privilege
}

func (s *Schema) StableID() string { return "schema:" + s.Name }

// Role is a PostgreSQL role (user or group).
type Role struct {
	Name            string
	Superuser       bool
	CreateDB        bool
	CreateRole      bool
	Login           bool
	Replication     bool
	ConnectionLimit int
	MemberOf        []string // roles this role is a member of
	Comment         string
}

func (r *Role) StableID() string { return "role:" + r.Name }

// Column is a single table column.
type Column struct {
	Name          string
	Position      int
	DataType      string
	NotNull       bool
	Default       *string
	Identity      *Identity
	GeneratedExpr *string
	Collation     string
	Comment       string
	Acl           []Privilege
}

// Identity captures GENERATED ... AS IDENTITY configuration.
type Identity struct {
	Always    bool
	Start     int64
	Increment int64
	Minimum   int64
	Maximum   int64
	Cycle     bool
}

// ConstraintType is the closed set of constraint kinds.
type ConstraintType string

const (
	ConstraintPrimaryKey ConstraintType = "p"
	ConstraintUnique     ConstraintType = "u"
	ConstraintForeignKey ConstraintType = "f"
	ConstraintCheck      ConstraintType = "c"
	ConstraintExclusion  ConstraintType = "x"
)

// Constraint is a table constraint.
type Constraint struct {
	Name              string
	Type              ConstraintType
	Columns           []string
	ReferencedSchema  string
	ReferencedTable   string
	ReferencedColumns []string
	OnDelete          string
	OnUpdate          string
	CheckClause       string
	Deferrable        bool
	InitiallyDeferred bool
	Validated         bool
	Comment           string
}

// Index is a table index.
type Index struct {
	Name      string
	Columns   []string
	Unique    bool
	Method    string // btree, gin, gist, ...
	Where     string
	Comment   string
}

// Trigger is a row/statement trigger on a table.
type Trigger struct {
	Name       string
	Timing     string // BEFORE, AFTER, INSTEAD OF
	Events     []string
	Level      string // ROW, STATEMENT
	Function   string
	Condition  string
	Definition string // pg_get_triggerdef-style canonical text, used for emission
}

// RLSPolicy is a row-level-security policy on a table.
type RLSPolicy struct {
	Name       string
	Permissive bool
	Command    string // ALL, SELECT, INSERT, UPDATE, DELETE
	Roles      []string
	Using      string
	WithCheck  string
}

// Rule is a query rewrite rule on a table, emitted via its canonical
// pg_get_ruledef text.
type Rule struct {
	Name       string
	Definition string
}

// Table is a base table.
type Table struct {
	Schema      string
	Name        string
	Owner       string
	Columns     []Column
	Constraints map[string]Constraint
	Indexes     map[string]Index
	Triggers    map[string]Trigger
	Policies    map[string]RLSPolicy
	Rules       map[string]Rule
	RLSEnabled  bool
	RLSForced   bool
	Comment     string
	Acl         []Privilege
}

func (t *Table) StableID() string { return "table:" + t.Schema + "." + t.Name }

// View is a non-materialized view.
type View struct {
	Schema     string
	Name       string
	Owner      string
	Definition string
	Comment    string
	Acl        []Privilege
}

func (v *View) StableID() string { return "view:" + v.Schema + "." + v.Name }

// MaterializedView is a materialized view, including its own indexes.
type MaterializedView struct {
	Schema     string
	Name       string
	Owner      string
	Definition string
	Indexes    map[string]Index
	Comment    string
	Acl        []Privilege
}

func (m *MaterializedView) StableID() string {
	return "materializedView:" + m.Schema + "." + m.Name
}

// Sequence is a standalone or identity-backed sequence.
type Sequence struct {
	Schema       string
	Name         string
	Owner        string
	DataType     string
	Start        int64
	Increment    int64
	MinValue     int64
	MaxValue     int64
	Cycle        bool
	CacheSize    int64
	OwnedByTable string // "schema.table" or "" if unowned
	OwnedByCol   string
	Comment      string
	Acl          []Privilege
}

func (s *Sequence) StableID() string { return "sequence:" + s.Schema + "." + s.Name }

// TypeKind is the closed set of `type:`-prefixed object kinds.
type TypeKind string

const (
	TypeEnum      TypeKind = "enum"
	TypeComposite TypeKind = "composite"
	TypeRange     TypeKind = "range"
)

// Type models enums, composite types and range types, which share the
// `type:` stable-ID prefix.
type Type struct {
	Schema  string
	Name    string
	Owner   string
	Kind    TypeKind
	Labels  []string          // enum labels, in sort_order
	Columns []CompositeColumn // composite attributes, in position order
	Subtype string            // range base type
	Comment string
	Acl     []Privilege
}

type CompositeColumn struct {
	Name     string
	DataType string
}

func (t *Type) StableID() string { return "type:" + t.Schema + "." + t.Name }

// Domain is a domain type, kept distinct from Type because it is never
// alterable the same way (non-alterable set differs) and has its own
// stable-ID prefix.
type Domain struct {
	Schema      string
	Name        string
	Owner       string
	BaseType    string
	NotNull     bool
	Default     *string
	Constraints map[string]Constraint
	Comment     string
	Acl         []Privilege
}

func (d *Domain) StableID() string { return "domain:" + d.Schema + "." + d.Name }

// Routine covers functions, procedures and aggregates: all three share
// an argument-signature stable ID and an emission shape (CREATE OR
// REPLACE <kind> ... LANGUAGE ...), differing mainly in their object_type
// tag and, for aggregates, their transition/final function fields.
type RoutineKind string

const (
	RoutineFunction  RoutineKind = "function"
	RoutineProcedure RoutineKind = "procedure"
	RoutineAggregate RoutineKind = "aggregate"
)

type Routine struct {
	Schema     string
	Name       string
	Owner      string
	Kind       RoutineKind
	ArgSig     string // canonical argument signature, forms part of the stable ID
	Arguments  string // full CREATE-time argument list
	ReturnType string
	Language   string
	Volatility string // IMMUTABLE, STABLE, VOLATILE
	Body       string
	// Aggregate-only fields.
	TransitionFunction string
	StateType          string
	FinalFunction      string
	InitialCondition   string
	Comment            string
	Acl                []Privilege
}

func (r *Routine) StableID() string {
	switch r.Kind {
	case RoutineProcedure:
		return "procedure:" + r.Schema + "." + r.Name + "(" + r.ArgSig + ")"
	case RoutineAggregate:
		return "aggregate:" + r.Schema + "." + r.Name + "(" + r.ArgSig + ")"
	default:
		return "function:" + r.Schema + "." + r.Name + "(" + r.ArgSig + ")"
	}
}

// Collation is a collation definition.
type Collation struct {
	Schema   string
	Name     string
	Owner    string
	Provider string
	Locale   string
	Comment  string
}

func (c *Collation) StableID() string { return "collation:" + c.Schema + "." + c.Name }

// Extension is an installed extension.
type Extension struct {
	Name    string
	Schema  string
	Version string
	Comment string
}

func (e *Extension) StableID() string { return "extension:" + e.Name }

// Language is a procedural language.
type Language struct {
	Name    string
	Owner   string
	Trusted bool
	Comment string
}

func (l *Language) StableID() string { return "language:" + l.Name }

// ForeignDataWrapper describes an FDW.
type ForeignDataWrapper struct {
	Name       string
	Owner      string
	Handler    string
	Validator  string
	Options    map[string]string
	Comment    string
}

func (f *ForeignDataWrapper) StableID() string { return "foreignDataWrapper:" + f.Name }

// Server is a foreign server.
type Server struct {
	Name    string
	Owner   string
	FDW     string
	Type    string
	Version string
	Options map[string]string
	Comment string
}

func (s *Server) StableID() string { return "server:" + s.Name }

// UserMapping maps a local role to a foreign server identity.
type UserMapping struct {
	Server  string
	User    string
	Options map[string]string // may include "password"; masked on emission
}

func (u *UserMapping) StableID() string { return "userMapping:" + u.Server + "." + u.User }

// ForeignTable is a table backed by a foreign server.
type ForeignTable struct {
	Schema  string
	Name    string
	Owner   string
	Server  string
	Columns []Column
	Options map[string]string
	Comment string
	Acl     []Privilege
}

func (f *ForeignTable) StableID() string { return "foreignTable:" + f.Schema + "." + f.Name }

// Publication is a logical-replication publication.
type Publication struct {
	Name        string
	Owner       string
	AllTables   bool
	Tables      []string // "schema.table" entries when AllTables is false
	PubInsert   bool
	PubUpdate   bool
	PubDelete   bool
	PubTruncate bool
}

func (p *Publication) StableID() string { return "publication:" + p.Name }

// Subscription is a logical-replication subscription.
type Subscription struct {
	Name      string
	Owner     string
	Conninfo  string // masked on emission; see sensitive_info
	Publication []string
	Enabled   bool
	TwoPhase  bool // subscription's only non-alterable field; changing it replaces via drop+create
}

func (s *Subscription) StableID() string { return "subscription:" + s.Name }

// EventTrigger fires on DDL events.
type EventTrigger struct {
	Name     string
	Owner    string
	Event    string
	Tags     []string
	Function string
	Enabled  string // O, D, R, A
}

func (e *EventTrigger) StableID() string { return "eventTrigger:" + e.Name }

// DefaultPrivilegeEntry is a raw default_privilege_state row, re-exported
// from pkg/acl for the catalog's own field.
type DefaultPrivilegeEntry = acl.DefaultEntry

// Catalog is the unordered mapping from stable ID to typed object
// record. Extraction (turning a live database into a Catalog) is
// external to this package; Extractor names the collaborator.
type Catalog struct {
	Version int
	// ServerVersion is the extracted database's semver-formatted server
	// version (e.g. "v16.3"), used by CheckServerVersion to confirm the
	// diff engine's enum/identity-column assumptions hold.
	ServerVersion     string
	CurrentUser       string
	DefaultPrivileges []DefaultPrivilegeEntry
	Depends           []Depend

	Schemas             map[string]*Schema
	Roles               map[string]*Role
	Tables              map[string]*Table
	Views               map[string]*View
	MaterializedViews   map[string]*MaterializedView
	Sequences           map[string]*Sequence
	Types               map[string]*Type
	Domains             map[string]*Domain
	Routines            map[string]*Routine
	Collations          map[string]*Collation
	Extensions          map[string]*Extension
	Languages           map[string]*Language
	ForeignDataWrappers map[string]*ForeignDataWrapper
	Servers             map[string]*Server
	UserMappings        map[string]*UserMapping
	ForeignTables       map[string]*ForeignTable
	Publications        map[string]*Publication
	Subscriptions       map[string]*Subscription
	EventTriggers       map[string]*EventTrigger
}

// New returns an empty Catalog with every collection initialized, so
// callers can always range over them without nil checks.
func New() *Catalog {
	return &Catalog{
		Schemas:             map[string]*Schema{},
		Roles:               map[string]*Role{},
		Tables:              map[string]*Table{},
		Views:               map[string]*View{},
		MaterializedViews:   map[string]*MaterializedView{},
		Sequences:           map[string]*Sequence{},
		Types:               map[string]*Type{},
		Domains:             map[string]*Domain{},
		Routines:            map[string]*Routine{},
		Collations:          map[string]*Collation{},
		Extensions:          map[string]*Extension{},
		Languages:           map[string]*Language{},
		ForeignDataWrappers: map[string]*ForeignDataWrapper{},
		Servers:             map[string]*Server{},
		UserMappings:        map[string]*UserMapping{},
		ForeignTables:       map[string]*ForeignTable{},
		Publications:        map[string]*Publication{},
		Subscriptions:       map[string]*Subscription{},
		EventTriggers:       map[string]*EventTrigger{},
	}
}

// Extractor is the abstract collaborator that turns a live database
// connection into a Catalog. Its implementation (the catalog-extraction
// SQL queries against pg_catalog) is external to this module.
type Extractor interface {
	Extract(ctx context.Context, conn db.DB) (*Catalog, error)
}

// DefaultACLState builds the pkg/acl lookup for this catalog's default
// privilege rows.
func (c *Catalog) DefaultACLState() *acl.State {
	return acl.NewState(c.DefaultPrivileges)
}

// objtypeFor reports the objtype.Kind a Catalog collection corresponds
// to, used by diff/sort code that needs to go from a looked-up object
// back to its kind tag.
func objtypeFor(v Identified) objtype.Kind {
	switch x := v.(type) {
	case *Schema:
		return objtype.KindSchema
	case *Type:
		return map[TypeKind]objtype.Kind{TypeEnum: objtype.KindEnum,
			TypeComposite: objtype.KindCompositeType, TypeRange: objtype.KindRange}[x.Kind]
	case *Routine:
		return map[RoutineKind]objtype.Kind{RoutineFunction: objtype.KindFunction,
			RoutineProcedure: objtype.KindProcedure, RoutineAggregate: objtype.KindAggregate}[x.Kind]
	case *Role:
		return objtype.KindRole
	case *Table:
		return objtype.KindTable
	case *View:
		return objtype.KindView
	case *MaterializedView:
		return objtype.KindMaterializedView
	case *Sequence:
		return objtype.KindSequence
	case *Domain:
		return objtype.KindDomain
	case *Collation:
		return objtype.KindCollation
	case *Extension:
		return objtype.KindExtension
	case *Language:
		return objtype.KindLanguage
	case *ForeignDataWrapper:
		return objtype.KindForeignDataWrapper
	case *Server:
		return objtype.KindServer
	case *UserMapping:
		return objtype.KindUserMapping
	case *ForeignTable:
		return objtype.KindForeignTable
	case *Publication:
		return objtype.KindPublication
	case *Subscription:
		return objtype.KindSubscription
	case *EventTrigger:
		return objtype.KindEventTrigger
	default:
		return ""
	}
}

// ObjectKind returns the objtype.Kind for any identified catalog object.
func ObjectKind(v Identified) objtype.Kind { return objtypeFor(v) }
