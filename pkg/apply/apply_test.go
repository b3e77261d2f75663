// SPDX-License-Identifier: Apache-2.0

package apply_test

import (
	"context"
	gosql "database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errcode "github.com/pgdiffhq/catalogdiff/internal/testutils"
	"github.com/pgdiffhq/catalogdiff/pkg/apply"
	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/db"
	"github.com/pgdiffhq/catalogdiff/pkg/fingerprint"
	"github.com/pgdiffhq/catalogdiff/pkg/plan"
	"github.com/pgdiffhq/catalogdiff/pkg/testutils"
)

func fingerprintOf(cat *catalog.Catalog, scopeIDs []string) (string, error) {
	return fingerprint.Compute(cat, scopeIDs)
}

func TestMain(m *testing.M) {
	testutils.SharedTestMain(m)
}

func catalogWithTable(name string) *catalog.Catalog {
	cat := catalog.New()
	cat.Tables["table:public."+name] = &catalog.Table{Schema: "public", Name: name, Owner: "postgres"}
	return cat
}

func testPlan(t *testing.T, source, target *catalog.Catalog, statements []string) *plan.Plan {
	t.Helper()
	scopeIDs := []string{"table:public.widgets"}
	srcFP, err := fingerprintOf(source, scopeIDs)
	require.NoError(t, err)
	tgtFP, err := fingerprintOf(target, scopeIDs)
	require.NoError(t, err)
	return &plan.Plan{
		Version:           1,
		SourceFingerprint: srcFP,
		TargetFingerprint: tgtFP,
		ScopeIDs:          scopeIDs,
		Statements:        statements,
		Risk:              plan.Risk{Level: plan.RiskSafe},
	}
}

func TestApplyExecutesStatementsAndCommits(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(conn *gosql.DB, connStr string) {
		ctx := context.Background()
		rdb := &db.RDB{DB: conn}

		empty := catalog.New()
		withTable := catalogWithTable("widgets")
		p := testPlan(t, empty, withTable, []string{`CREATE TABLE widgets (id int)`})

		result, err := apply.Apply(ctx, p, rdb, &testutils.FakeExtractor{Catalog: empty}, apply.Options{})
		require.NoError(t, err)
		assert.Equal(t, apply.StateApplied, result.State)

		var exists bool
		err = conn.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'widgets')").Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

func TestApplyReturnsAlreadyAppliedWhenTargetMatches(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(conn *gosql.DB, connStr string) {
		ctx := context.Background()
		rdb := &db.RDB{DB: conn}

		empty := catalog.New()
		withTable := catalogWithTable("widgets")
		p := testPlan(t, empty, withTable, []string{`CREATE TABLE widgets (id int)`})

		// The target already reflects the plan's target state.
		result, err := apply.Apply(ctx, p, rdb, &testutils.FakeExtractor{Catalog: withTable}, apply.Options{})
		require.NoError(t, err)
		assert.Equal(t, apply.StateAlreadyApplied, result.State)

		var exists bool
		err = conn.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'widgets')").Scan(&exists)
		require.NoError(t, err)
		assert.False(t, exists, "already_applied must not execute any statement")
	})
}

func TestApplyReturnsFingerprintMismatchWhenTargetDrifted(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(conn *gosql.DB, connStr string) {
		ctx := context.Background()
		rdb := &db.RDB{DB: conn}

		empty := catalog.New()
		withTable := catalogWithTable("widgets")
		drifted := catalogWithTable("widgets")
		drifted.Tables["table:public.widgets"].Owner = "someone_else"

		p := testPlan(t, empty, withTable, []string{`CREATE TABLE widgets (id int)`})

		result, err := apply.Apply(ctx, p, rdb, &testutils.FakeExtractor{Catalog: drifted}, apply.Options{})
		require.NoError(t, err)
		assert.Equal(t, apply.StateFingerprintMismatch, result.State)
	})
}

func TestApplyRollsBackOnStatementFailure(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(conn *gosql.DB, connStr string) {
		ctx := context.Background()
		rdb := &db.RDB{DB: conn}

		empty := catalog.New()
		withTable := catalogWithTable("widgets")
		p := testPlan(t, empty, withTable, []string{
			`CREATE TABLE widgets (id int)`,
			`this is not valid sql`,
		})

		result, err := apply.Apply(ctx, p, rdb, &testutils.FakeExtractor{Catalog: empty}, apply.Options{})
		require.Error(t, err)
		assert.Equal(t, apply.StateFailed, result.State)
		assert.Contains(t, result.Script, "this is not valid sql")

		var exists bool
		err = conn.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'widgets')").Scan(&exists)
		require.NoError(t, err)
		assert.False(t, exists, "a rolled-back transaction must not leave partial state")
	})
}

func TestApplyRejectsDataLossPlanWithoutOverride(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(conn *gosql.DB, connStr string) {
		ctx := context.Background()
		rdb := &db.RDB{DB: conn}

		empty := catalog.New()
		withTable := catalogWithTable("widgets")
		p := testPlan(t, withTable, empty, []string{`DROP TABLE widgets`})
		p.Risk = plan.Risk{Level: plan.RiskDataLoss, Statements: p.Statements}

		result, err := apply.Apply(ctx, p, rdb, &testutils.FakeExtractor{Catalog: withTable}, apply.Options{})
		require.Error(t, err)
		assert.Equal(t, apply.StateFailed, result.State)
		assert.ErrorAs(t, err, &apply.ErrDataLossRejected{})
	})
}

func TestApplyRollsBackOnCheckConstraintViolation(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(conn *gosql.DB, connStr string) {
		ctx := context.Background()
		rdb := &db.RDB{DB: conn}

		empty := catalog.New()
		withTable := catalogWithTable("widgets")
		p := testPlan(t, empty, withTable, []string{
			`CREATE TABLE widgets (id int, price int CHECK (price > 0))`,
			`INSERT INTO widgets (id, price) VALUES (1, -5)`,
		})

		result, err := apply.Apply(ctx, p, rdb, &testutils.FakeExtractor{Catalog: empty}, apply.Options{})
		require.Error(t, err)
		assert.Equal(t, apply.StateFailed, result.State)

		var pqErr *pq.Error
		require.True(t, errors.As(err, &pqErr), "expected a *pq.Error, got %T", err)
		assert.Equal(t, errcode.CheckViolationErrorCode, pqErr.Code.Name())

		var exists bool
		err = conn.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'widgets')").Scan(&exists)
		require.NoError(t, err)
		assert.False(t, exists, "a rolled-back transaction must not leave the table it created behind either")
	})
}
