// SPDX-License-Identifier: Apache-2.0

package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/plan"
)

func emptyCatalogs() (*catalog.Catalog, *catalog.Catalog) {
	return catalog.New(), catalog.New()
}

func TestBuildSafePlanHasNoRisk(t *testing.T) {
	t.Parallel()

	src, tgt := emptyCatalogs()
	tgt.Tables["table:public.widgets"] = &catalog.Table{Schema: "public", Name: "widgets", Owner: "postgres"}
	changes := change.Changes{&change.CreateTable{Schema: "public", Name: "widgets", Owner: "postgres"}}

	p, err := plan.Build(src, tgt, changes, plan.Options{})
	require.NoError(t, err)
	assert.Equal(t, plan.RiskSafe, p.Risk.Level)
	assert.Empty(t, p.Risk.Statements)
	assert.Len(t, p.Statements, 1)
}

func TestBuildDropTableIsDataLoss(t *testing.T) {
	t.Parallel()

	src, tgt := emptyCatalogs()
	src.Tables["table:public.legacy"] = &catalog.Table{Schema: "public", Name: "legacy", Owner: "postgres"}
	changes := change.Changes{&change.DropTable{Schema: "public", Name: "legacy"}}

	p, err := plan.Build(src, tgt, changes, plan.Options{})
	require.NoError(t, err)
	assert.Equal(t, plan.RiskDataLoss, p.Risk.Level)
	require.Len(t, p.Risk.Statements, 1)
}

func TestBuildPrependsCheckFunctionBodiesOffForRoutines(t *testing.T) {
	t.Parallel()

	src, tgt := emptyCatalogs()
	changes := change.Changes{&change.CreateRoutine{Schema: "public", Name: "touch", RoutineKind: "function", Language: "plpgsql", Body: "begin return; end;"}}

	p, err := plan.Build(src, tgt, changes, plan.Options{})
	require.NoError(t, err)
	require.NotEmpty(t, p.Statements)
	assert.Equal(t, "SET check_function_bodies = false", p.Statements[0])
}

func TestBuildPrependsSetRole(t *testing.T) {
	t.Parallel()

	src, tgt := emptyCatalogs()
	changes := change.Changes{&change.CreateSchema{Name: "app"}}

	p, err := plan.Build(src, tgt, changes, plan.Options{Role: "migrator"})
	require.NoError(t, err)
	assert.Equal(t, "SET ROLE migrator", p.Statements[0])
	assert.Equal(t, "migrator", p.Role)
}

func TestBuildFingerprintsMatchScope(t *testing.T) {
	t.Parallel()

	src, tgt := emptyCatalogs()
	tgt.Schemas["schema:app"] = &catalog.Schema{Name: "app", Owner: "postgres"}
	changes := change.Changes{&change.CreateSchema{Name: "app", Owner: "postgres"}}

	p, err := plan.Build(src, tgt, changes, plan.Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, p.SourceFingerprint)
	assert.NotEmpty(t, p.TargetFingerprint)
	assert.NotEqual(t, p.SourceFingerprint, p.TargetFingerprint)
}

func TestBuildStatementsHaveNoTrailingSemicolons(t *testing.T) {
	t.Parallel()

	src, tgt := emptyCatalogs()
	changes := change.Changes{&change.CreateSchema{Name: "app", Owner: "postgres"}}

	p, err := plan.Build(src, tgt, changes, plan.Options{})
	require.NoError(t, err)
	for _, stmt := range p.Statements {
		assert.NotContains(t, stmt, ";")
	}
}
