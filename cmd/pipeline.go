// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/db"
	"github.com/pgdiffhq/catalogdiff/pkg/diff"
	"github.com/pgdiffhq/catalogdiff/pkg/hooks"
	"github.com/pgdiffhq/catalogdiff/pkg/plan"
	"github.com/pgdiffhq/catalogdiff/pkg/sort"
)

// extractor is the catalog.Extractor every subcommand uses to turn a
// live connection into a Catalog. Held in a package variable (not
// a constant collaborator threaded through every function signature)
// so an embedder can override it via SetExtractor before calling
// Execute with a real pg_catalog implementation.
var extractor catalog.Extractor = unimplementedExtractor{}

// SetExtractor replaces the catalog.Extractor every subcommand uses.
// Call it before Execute.
func SetExtractor(e catalog.Extractor) {
	extractor = e
}

// connect opens a Postgres connection per pgURL: parse the URL with
// pq.ParseURL, fall back to the raw string if parsing fails, ping to
// fail fast, and apply an optional lock_timeout.
func connect(ctx context.Context, pgURL string, lockTimeoutMs int) (db.DB, func() error, error) {
	dsn, err := pq.ParseURL(pgURL)
	if err != nil {
		dsn = pgURL
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("catalogdiff: opening connection: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("catalogdiff: connecting: %w", err)
	}

	if lockTimeoutMs > 0 {
		if _, err := conn.ExecContext(ctx, fmt.Sprintf("SET lock_timeout to '%dms'", lockTimeoutMs)); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("catalogdiff: setting lock_timeout: %w", err)
		}
	}

	rdb := &db.RDB{DB: conn}
	return rdb, conn.Close, nil
}

// buildPlan runs the full pipeline: extract both catalogs, diff, apply
// the hook filter, expand replace-dependencies, sort, then build the
// Plan. It's the single place plan.go and sync.go both call into, so
// the two commands can't drift out of step with each other.
func buildPlan(ctx context.Context, sourceConn, targetConn db.DB, h hooks.Hooks, opts plan.Options) (*plan.Plan, *catalog.Catalog, *catalog.Catalog, error) {
	source, err := extractor.Extract(ctx, sourceConn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("catalogdiff: extracting source catalog: %w", err)
	}
	target, err := extractor.Extract(ctx, targetConn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("catalogdiff: extracting target catalog: %w", err)
	}

	changes, dctx := diff.DiffChanges(source, target)
	changes = h.ApplyFilter(ctx, changes, hooks.DiffContext{SourceCatalog: source, TargetCatalog: target})
	changes = diff.ExpandReplaceDependencies(dctx, source, target, changes)

	sorted, err := sort.Sort(changes, append(append([]catalog.Depend{}, source.Depends...), target.Depends...))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("catalogdiff: sorting changes: %w", err)
	}

	opts.Ctx = ctx
	opts.Hooks = h
	p, err := plan.Build(source, target, sorted, opts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("catalogdiff: building plan: %w", err)
	}
	return p, source, target, nil
}

// script joins a plan's statements the way apply's own renderer does
// (";\n\n" between statements, a trailing ";"), for human-readable CLI
// output that mirrors exactly what Apply will execute.
func script(statements []string) string {
	if len(statements) == 0 {
		return ""
	}
	return strings.Join(statements, ";\n\n") + ";"
}
