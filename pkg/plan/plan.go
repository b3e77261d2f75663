// SPDX-License-Identifier: Apache-2.0

// Package plan assembles a sorted Change sequence into a Plan value:
// emitted SQL statements in execution order, a risk classification, an
// optional session prelude, and the
// source/target fingerprints that pin the plan to the exact catalog
// states it was built against.
package plan

import (
	"context"
	"strings"

	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/emit"
	"github.com/pgdiffhq/catalogdiff/pkg/fingerprint"
	"github.com/pgdiffhq/catalogdiff/pkg/hooks"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

// RiskLevel classifies a Plan by whether applying it can destroy user
// data.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskDataLoss RiskLevel = "data_loss"
)

// Risk carries the plan's risk level and, when data_loss, the specific
// statements responsible so a caller can surface them without
// re-deriving which Change triggered the classification.
type Risk struct {
	Level      RiskLevel
	Statements []string
}

// Plan is the assembled, ready-to-apply output of the sort+emit
// pipeline. SourceFingerprint/TargetFingerprint pin the plan to the
// exact catalog states it was built from, restricted to ScopeIDs;
// Apply recomputes and compares against them rather than trusting the
// plan's statements alone.
type Plan struct {
	Version           int
	ToolVersion       string
	SourceFingerprint string
	TargetFingerprint string
	ScopeIDs          []string
	Statements        []string
	Role              string
	Risk              Risk
}

// Options configures Build beyond the Changes/catalogs it's handed.
type Options struct {
	// Role, if set, prepends a SET ROLE <role> statement.
	Role string
	// Emit controls SQL formatting. The zero value uses emit.Default().
	Emit emit.Options
	// ToolVersion is recorded in the plan envelope for diagnostics; it
	// never participates in fingerprinting.
	ToolVersion string
	// Hooks optionally overrides each Change's own Emit via its
	// Serialize callback. The zero value runs every Change's own Emit
	// unmodified.
	Hooks hooks.Hooks
	// Ctx is passed to Hooks.Serialize. Defaults to context.Background()
	// when nil.
	Ctx context.Context
}

// Build assembles a Plan from a sorted Change sequence. changes must
// already be in the order pkg/sort.Sort produced — Build does not
// reorder them. source and target are the catalogs the diff that
// produced changes ran against; their restricted-scope fingerprints
// become Plan.Source/Plan.Target.
func Build(source, target *catalog.Catalog, changes change.Changes, opts Options) (*Plan, error) {
	emitOpts := opts.Emit
	if emitOpts == (emit.Options{}) {
		emitOpts = emit.Default()
	}
	ctx := opts.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	dctx := hooks.DiffContext{SourceCatalog: source, TargetCatalog: target}

	statements, err := emitStatements(ctx, changes, opts.Hooks, dctx, emitOpts)
	if err != nil {
		return nil, err
	}

	var prelude []string
	if needsCheckFunctionBodiesOff(changes) {
		prelude = append(prelude, "SET check_function_bodies = false")
	}
	if opts.Role != "" {
		prelude = append(prelude, "SET ROLE "+opts.Role)
	}
	statements = append(prelude, statements...)

	scopeIDs := fingerprint.ScopeIDs(changes)
	srcFP, err := fingerprint.Compute(source, scopeIDs)
	if err != nil {
		return nil, err
	}
	tgtFP, err := fingerprint.Compute(target, scopeIDs)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Version:           1,
		ToolVersion:       opts.ToolVersion,
		SourceFingerprint: srcFP,
		TargetFingerprint: tgtFP,
		ScopeIDs:          scopeIDs,
		Statements:        statements,
		Role:              opts.Role,
		Risk:              classifyRisk(changes, emitOpts),
	}, nil
}

// emitStatements runs h.Emit (which defers to c.Emit unless a
// Serialize hook overrides it) on every Change in order, splitting
// multi-statement results on the embedded statement separator so
// Plan.Statements is always one SQL statement per entry.
func emitStatements(ctx context.Context, changes change.Changes, h hooks.Hooks, dctx hooks.DiffContext, opts emit.Options) ([]string, error) {
	var out []string
	for _, c := range changes {
		sql, err := h.Emit(ctx, c, dctx, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, splitStatements(sql)...)
	}
	return out, nil
}

func splitStatements(sql string) []string {
	var out []string
	for _, stmt := range strings.Split(sql, ";") {
		if trimmed := strings.TrimSpace(stmt); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// needsCheckFunctionBodiesOff reports whether any Change creates or
// alters a routine body: functions, procedures and aggregates all
// count, since a CREATE/ALTER of any of them can fail
// validation against objects this same plan hasn't created yet.
func needsCheckFunctionBodiesOff(changes change.Changes) bool {
	for _, c := range changes {
		switch c.Kind() {
		case objtype.KindFunction, objtype.KindProcedure, objtype.KindAggregate:
			switch c.Operation() {
			case objtype.OpCreate, objtype.OpAlter:
				return true
			}
		}
	}
	return false
}

// classifyRisk inspects every Change's Drops() against the data-
// carrying ID categories: tables, columns, materialized views,
// sequences, and enum labels removed. Enum label
// removal has no direct Change representation (PostgreSQL cannot drop
// an enum label in place) — it surfaces as a DropType on an enum kind,
// emitted by the replace-dependency expansion (pkg/diff/replace.go)
// when the only way to remove a label is to drop and recreate the type.
func classifyRisk(changes change.Changes, opts emit.Options) Risk {
	var lossy []string
	for _, c := range changes {
		if !isDataLossChange(c) {
			continue
		}
		sql, err := c.Emit(opts)
		if err != nil {
			continue
		}
		lossy = append(lossy, splitStatements(sql)...)
	}
	if len(lossy) == 0 {
		return Risk{Level: RiskSafe}
	}
	return Risk{Level: RiskDataLoss, Statements: lossy}
}

func isDataLossChange(c change.Change) bool {
	if len(c.Drops()) == 0 {
		return false
	}
	if objtype.DataCarrying(c.Kind()) {
		return true
	}
	return c.Kind() == objtype.KindEnum && c.Operation() == objtype.OpDrop
}
