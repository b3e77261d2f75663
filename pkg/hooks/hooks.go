// SPDX-License-Identifier: Apache-2.0

// Package hooks implements the integration hook surface: two
// callbacks, Filter and Serialize, by which a collaborator can
// suppress or rewrite Changes without knowing anything about the
// diff/sort/emit internals that produced them.
package hooks

import (
	"context"

	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/emit"
)

// DiffContext is the read-only context every hook callback receives
// alongside the Change itself: the source and target catalogs the
// Change was derived from. The core never inspects hook internals; it
// only ever hands hooks this and the Change.
type DiffContext struct {
	SourceCatalog *catalog.Catalog
	TargetCatalog *catalog.Catalog
}

// Filter reports whether c should survive into the sorted plan.
// Returning false drops c before the replace-dependency expansion and
// sort passes run. A nil Filter keeps every Change.
type Filter func(ctx context.Context, c change.Change, dctx DiffContext) bool

// Serialize optionally overrides c's own Emit output. Returning
// ok == false means "no override": the Change's own Emit runs as
// usual. A nil Serialize never overrides anything.
type Serialize func(ctx context.Context, c change.Change, dctx DiffContext) (sql string, ok bool)

// Hooks bundles the two callbacks a caller wires into the pipeline
// between Diff and the replace-dependency expansion/sort passes.
// Either field may be left nil.
type Hooks struct {
	Filter    Filter
	Serialize Serialize
}

// ApplyFilter runs h.Filter over changes, keeping only the ones it
// accepts (or every Change, if h.Filter is nil). Hook callbacks must
// be pure with respect to the Change they receive and may not panic: a
// panic inside a hook is a programming error and bubbles up unchanged
// rather than being recovered here.
func (h Hooks) ApplyFilter(ctx context.Context, changes change.Changes, dctx DiffContext) change.Changes {
	if h.Filter == nil {
		return changes
	}

	kept := make(change.Changes, 0, len(changes))
	for _, c := range changes {
		if h.Filter(ctx, c, dctx) {
			kept = append(kept, c)
		}
	}
	return kept
}

// Emit renders c's SQL, preferring h.Serialize's override (if any) to
// c's own Emit. This is the single call site plan.Build should use in
// place of a bare c.Emit(opts) once hooks are wired into a caller's
// pipeline.
func (h Hooks) Emit(ctx context.Context, c change.Change, dctx DiffContext, opts emit.Options) (string, error) {
	if h.Serialize != nil {
		if sql, ok := h.Serialize(ctx, c, dctx); ok {
			return sql, nil
		}
	}
	return c.Emit(opts)
}
