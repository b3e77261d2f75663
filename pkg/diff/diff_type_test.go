// SPDX-License-Identifier: Apache-2.0

package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/diff"
	"github.com/pgdiffhq/catalogdiff/pkg/emit"
)

func enumCatalogs(sourceLabels, targetLabels []string) (*catalog.Catalog, *catalog.Catalog) {
	src, tgt := catalog.New(), catalog.New()
	src.Types["type:public.status"] = &catalog.Type{Schema: "public", Name: "status", Owner: "postgres", Kind: catalog.TypeEnum, Labels: sourceLabels}
	tgt.Types["type:public.status"] = &catalog.Type{Schema: "public", Name: "status", Owner: "postgres", Kind: catalog.TypeEnum, Labels: targetLabels}
	return src, tgt
}

func alterTypeChanges(t *testing.T, changes change.Changes) []*change.AlterType {
	t.Helper()
	var out []*change.AlterType
	for _, c := range changes {
		if at, ok := c.(*change.AlterType); ok {
			out = append(out, at)
		}
	}
	return out
}

// TestDiffEnumLabelsInsertsNewLabelBeforeNextSourceLabel is worked
// example S1: source public.status AS ENUM ('a','c'), target ('a','b','c').
func TestDiffEnumLabelsInsertsNewLabelBeforeNextSourceLabel(t *testing.T) {
	t.Parallel()

	src, tgt := enumCatalogs([]string{"a", "c"}, []string{"a", "b", "c"})
	changes := diff.DiffCatalogs(src, tgt)

	alters := alterTypeChanges(t, changes)
	require.Len(t, alters, 1)

	stmt, err := alters[0].Emit(emit.Default())
	require.NoError(t, err)
	assert.Equal(t, `ALTER TYPE "public"."status" ADD VALUE 'b' BEFORE 'c';`, stmt)
}

func TestDiffEnumLabelsAppendsTrailingLabelAfterLastSourceLabel(t *testing.T) {
	t.Parallel()

	src, tgt := enumCatalogs([]string{"a", "c"}, []string{"a", "c", "d"})
	changes := diff.DiffCatalogs(src, tgt)

	alters := alterTypeChanges(t, changes)
	require.Len(t, alters, 1)
	assert.Equal(t, "d", alters[0].AddLabel)
	assert.Equal(t, "c", alters[0].AfterLabel)
	assert.Empty(t, alters[0].BeforeLabel)
}

func TestDiffEnumLabelsInsertsMultipleLabelsBeforeSameSourceLabel(t *testing.T) {
	t.Parallel()

	src, tgt := enumCatalogs([]string{"c"}, []string{"a", "b", "c"})
	changes := diff.DiffCatalogs(src, tgt)

	alters := alterTypeChanges(t, changes)
	require.Len(t, alters, 2)
	assert.Equal(t, "a", alters[0].AddLabel)
	assert.Equal(t, "c", alters[0].BeforeLabel)
	assert.Equal(t, "b", alters[1].AddLabel)
	assert.Equal(t, "c", alters[1].BeforeLabel)
}

func TestDiffEnumLabelsReplacesOnRemoval(t *testing.T) {
	t.Parallel()

	src, tgt := enumCatalogs([]string{"a", "b", "c"}, []string{"a", "c"})
	changes := diff.DiffCatalogs(src, tgt)

	assert.Empty(t, alterTypeChanges(t, changes))
	var sawDrop, sawCreate bool
	for _, c := range changes {
		switch c.(type) {
		case *change.DropType:
			sawDrop = true
		case *change.CreateType:
			sawCreate = true
		}
	}
	assert.True(t, sawDrop, "removing a label must drop the type")
	assert.True(t, sawCreate, "removing a label must recreate the type")
}

func TestDiffEnumLabelsReplacesOnReorder(t *testing.T) {
	t.Parallel()

	src, tgt := enumCatalogs([]string{"a", "b"}, []string{"b", "a"})
	changes := diff.DiffCatalogs(src, tgt)

	assert.Empty(t, alterTypeChanges(t, changes))
	var sawDrop bool
	for _, c := range changes {
		if _, ok := c.(*change.DropType); ok {
			sawDrop = true
		}
	}
	assert.True(t, sawDrop, "reordering labels must drop+create the type")
}
