// SPDX-License-Identifier: Apache-2.0

package hooks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/emit"
	"github.com/pgdiffhq/catalogdiff/pkg/hooks"
	"github.com/pgdiffhq/catalogdiff/pkg/testutils"
)

// transformerSerialize adapts a testutils.MockSQLTransformer into a
// hooks.Hooks Serialize function: it runs the Change's own Emit output
// through the transformer and reports ok only when the transformer
// actually had an override configured for that exact statement.
func transformerSerialize(t *testutils.MockSQLTransformer) func(context.Context, change.Change, hooks.DiffContext) (string, bool) {
	return func(ctx context.Context, c change.Change, dctx hooks.DiffContext) (string, bool) {
		base, err := c.Emit(emit.Default())
		if err != nil {
			return "", false
		}
		out, err := t.TransformSQL(base)
		if err != nil || out == base {
			return "", false
		}
		return out, true
	}
}

func TestApplyFilterKeepsEverythingWithNilFilter(t *testing.T) {
	t.Parallel()

	h := hooks.Hooks{}
	changes := change.Changes{
		&change.CreateSchema{Name: "public"},
		&change.CreateSchema{Name: "internal"},
	}

	kept := h.ApplyFilter(context.Background(), changes, hooks.DiffContext{})
	assert.Equal(t, changes, kept)
}

func TestApplyFilterDropsRejectedChanges(t *testing.T) {
	t.Parallel()

	// Supabase-style system-schema filtering: drop any Change touching
	// the "internal" schema before it reaches sort/plan.
	h := hooks.Hooks{
		Filter: func(ctx context.Context, c change.Change, dctx hooks.DiffContext) bool {
			s, ok := c.(*change.CreateSchema)
			return !ok || s.Name != "internal"
		},
	}
	changes := change.Changes{
		&change.CreateSchema{Name: "public"},
		&change.CreateSchema{Name: "internal"},
	}

	kept := h.ApplyFilter(context.Background(), changes, hooks.DiffContext{})
	require.Len(t, kept, 1)
	assert.Equal(t, "public", kept[0].(*change.CreateSchema).Name)
}

func TestEmitUsesChangesOwnEmitWhenSerializeDeclines(t *testing.T) {
	t.Parallel()

	h := hooks.Hooks{
		Serialize: func(ctx context.Context, c change.Change, dctx hooks.DiffContext) (string, bool) {
			return "", false
		},
	}
	c := &change.CreateSchema{Name: "public"}

	sql, err := h.Emit(context.Background(), c, hooks.DiffContext{}, emit.Default())
	require.NoError(t, err)

	want, err := c.Emit(emit.Default())
	require.NoError(t, err)
	assert.Equal(t, want, sql)
}

func TestEmitPrefersSerializeOverride(t *testing.T) {
	t.Parallel()

	c := &change.CreateSchema{Name: "public"}
	base, err := c.Emit(emit.Default())
	require.NoError(t, err)

	masked := `CREATE SCHEMA IF NOT EXISTS "public"; -- masked`
	transformer := testutils.NewMockSQLTransformer(map[string]string{base: masked})
	h := hooks.Hooks{Serialize: transformerSerialize(transformer)}

	sql, err := h.Emit(context.Background(), c, hooks.DiffContext{}, emit.Default())
	require.NoError(t, err)
	assert.Equal(t, masked, sql)
}

func TestEmitFallsBackWhenTransformerHasNoOverrideForStatement(t *testing.T) {
	t.Parallel()

	c := &change.CreateSchema{Name: "tenant"}
	transformer := testutils.NewMockSQLTransformer(map[string]string{
		"some other statement": "masked",
	})
	h := hooks.Hooks{Serialize: transformerSerialize(transformer)}

	sql, err := h.Emit(context.Background(), c, hooks.DiffContext{}, emit.Default())
	require.NoError(t, err)

	want, err := c.Emit(emit.Default())
	require.NoError(t, err)
	assert.Equal(t, want, sql)
}

func TestEmitFallsBackWhenTransformerErrors(t *testing.T) {
	t.Parallel()

	c := &change.CreateSchema{Name: "public"}
	base, err := c.Emit(emit.Default())
	require.NoError(t, err)

	transformer := testutils.NewMockSQLTransformer(map[string]string{base: testutils.MockSQLTransformerError})
	h := hooks.Hooks{Serialize: transformerSerialize(transformer)}

	sql, err := h.Emit(context.Background(), c, hooks.DiffContext{}, emit.Default())
	require.NoError(t, err)
	assert.Equal(t, base, sql)
}

func TestEmitFallsBackWhenSerializeDoesNotMatch(t *testing.T) {
	t.Parallel()

	h := hooks.Hooks{
		Serialize: func(ctx context.Context, c change.Change, dctx hooks.DiffContext) (string, bool) {
			return "", false
		},
	}
	c := &change.CreateSchema{Name: "tenant"}

	sql, err := h.Emit(context.Background(), c, hooks.DiffContext{}, emit.Default())
	require.NoError(t, err)

	want, err := c.Emit(emit.Default())
	require.NoError(t, err)
	assert.Equal(t, want, sql)
}
