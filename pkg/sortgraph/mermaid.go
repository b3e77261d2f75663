// SPDX-License-Identifier: Apache-2.0

// Package sortgraph renders a pkg/sort phase's dependency graph as a
// Mermaid flowchart, for an optional debug dump. It never runs on its
// own; callers gate the dump behind the
// CATALOGDIFF_DEBUG_GRAPH environment variable and pass it whatever
// pkg/sort already computed.
package sortgraph

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pgdiffhq/catalogdiff/pkg/sort"
)

// debugEnvVar gates DumpMermaid's output; set to any non-empty value to
// enable the dump.
const debugEnvVar = "CATALOGDIFF_DEBUG_GRAPH"

// Enabled reports whether CATALOGDIFF_DEBUG_GRAPH is set.
func Enabled() bool {
	return os.Getenv(debugEnvVar) != ""
}

// Node is the minimal per-node description DumpMermaid needs: its index
// in the phase's node list and a label. Cycle membership is passed
// separately as DumpMermaid's cycleNodes.
type Node struct {
	Index int
	Label string
}

// DumpMermaid renders phase's dependency graph as a Mermaid flowchart,
// with cycleNodes highlighted. It's a pure string builder — callers
// decide whether to print, log, or write it to a file.
func DumpMermaid(phase sort.Phase, nodes []Node, constraints []sort.Constraint, cycleNodes []int) string {
	inCycle := make(map[int]bool, len(cycleNodes))
	for _, i := range cycleNodes {
		inCycle[i] = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "flowchart TD\n")
	fmt.Fprintf(&b, "  %%%% phase: %s\n", phase)

	for _, n := range nodes {
		label := sanitizeLabel(n.Label)
		if inCycle[n.Index] {
			fmt.Fprintf(&b, "  n%d[\"%s\"]:::cycle\n", n.Index, label)
		} else {
			fmt.Fprintf(&b, "  n%d[\"%s\"]\n", n.Index, label)
		}
	}

	for _, c := range constraints {
		style := "-->"
		if c.Source == sort.SourceCustom {
			style = "-.->"
		}
		fmt.Fprintf(&b, "  n%d %s|%s| n%d\n", c.From, style, c.Source, c.To)
	}

	b.WriteString("  classDef cycle fill:#f66,stroke:#900,stroke-width:2px;\n")
	return b.String()
}

func sanitizeLabel(s string) string {
	s = strings.ReplaceAll(s, `"`, `'`)
	return strings.ReplaceAll(s, "\n", " ")
}

// WriteDumpFile writes mermaid to a uniquely named file under dir and
// returns the path. The filename carries a random UUID rather than the
// phase name alone, since a concurrent diff run (or repeated cycle
// errors within one run) would otherwise collide on the same path.
func WriteDumpFile(dir string, phase sort.Phase, mermaid string) (string, error) {
	name := fmt.Sprintf("catalogdiff-sortgraph-%s-%s.mmd", phase, uuid.NewString())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(mermaid), 0o644); err != nil {
		return "", fmt.Errorf("sortgraph: writing dump file: %w", err)
	}
	return path, nil
}
