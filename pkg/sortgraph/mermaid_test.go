// SPDX-License-Identifier: Apache-2.0

package sortgraph_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgdiffhq/catalogdiff/pkg/sort"
	"github.com/pgdiffhq/catalogdiff/pkg/sortgraph"
)

func TestEnabledReflectsEnvVar(t *testing.T) {
	t.Setenv("CATALOGDIFF_DEBUG_GRAPH", "")
	assert.False(t, sortgraph.Enabled())

	t.Setenv("CATALOGDIFF_DEBUG_GRAPH", "1")
	assert.True(t, sortgraph.Enabled())
}

func TestDumpMermaidHighlightsCycleNodes(t *testing.T) {
	t.Parallel()

	nodes := []sortgraph.Node{{Index: 0, Label: "table:public.a"}, {Index: 1, Label: "table:public.b"}}
	constraints := []sort.Constraint{{From: 0, To: 1, Source: sort.SourceExplicit}}

	out := sortgraph.DumpMermaid(sort.PhaseCreate, nodes, constraints, []int{0})

	assert.Contains(t, out, "flowchart TD")
	assert.Contains(t, out, `n0["table:public.a"]:::cycle`)
	assert.Contains(t, out, `n1["table:public.b"]`)
	assert.Contains(t, out, "n0 -->|explicit| n1")
}

func TestWriteDumpFileProducesUniqueFilenames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	path1, err := sortgraph.WriteDumpFile(dir, sort.PhaseCreate, "flowchart TD\n")
	require.NoError(t, err)
	path2, err := sortgraph.WriteDumpFile(dir, sort.PhaseCreate, "flowchart TD\n")
	require.NoError(t, err)

	assert.NotEqual(t, path1, path2)
	assert.Equal(t, dir, filepath.Dir(path1))

	content, err := os.ReadFile(path1)
	require.NoError(t, err)
	assert.Equal(t, "flowchart TD\n", string(content))
}
