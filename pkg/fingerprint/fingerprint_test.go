// SPDX-License-Identifier: Apache-2.0

package fingerprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/fingerprint"
)

func withTable(schema, name string) *catalog.Catalog {
	cat := catalog.New()
	t := &catalog.Table{Schema: schema, Name: name, Owner: "postgres"}
	cat.Tables[t.StableID()] = t
	return cat
}

func TestComputeIsDeterministic(t *testing.T) {
	t.Parallel()

	cat := withTable("public", "widgets")
	ids := []string{"table:public.widgets"}

	a, err := fingerprint.Compute(cat, ids)
	require.NoError(t, err)
	b, err := fingerprint.Compute(cat, ids)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComputeIgnoresIDOrder(t *testing.T) {
	t.Parallel()

	cat := withTable("public", "widgets")
	cat.Schemas["schema:public"] = &catalog.Schema{Name: "public", Owner: "postgres"}

	forward, err := fingerprint.Compute(cat, []string{"schema:public", "table:public.widgets"})
	require.NoError(t, err)
	backward, err := fingerprint.Compute(cat, []string{"table:public.widgets", "schema:public"})
	require.NoError(t, err)
	assert.Equal(t, forward, backward)
}

func TestComputeChangesWithDifferentDataDiffer(t *testing.T) {
	t.Parallel()

	a := withTable("public", "widgets")
	b := withTable("public", "widgets")
	b.Tables["table:public.widgets"].Owner = "app_owner"

	ids := []string{"table:public.widgets"}
	fa, err := fingerprint.Compute(a, ids)
	require.NoError(t, err)
	fb, err := fingerprint.Compute(b, ids)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fb)
}

func TestComputeSkipsUnresolvedIDs(t *testing.T) {
	t.Parallel()

	cat := withTable("public", "widgets")
	withExtra, err := fingerprint.Compute(cat, []string{"table:public.widgets", "table:public.does_not_exist"})
	require.NoError(t, err)
	withoutExtra, err := fingerprint.Compute(cat, []string{"table:public.widgets"})
	require.NoError(t, err)
	assert.Equal(t, withoutExtra, withExtra)
}

func TestScopeIDsUnionsCreatesRequiresDrops(t *testing.T) {
	t.Parallel()

	changes := change.Changes{
		&change.CreateTable{Schema: "public", Name: "orders"},
		&change.AddConstraint{Schema: "public", Table: "orders", Name: "orders_customer_fk"},
		&change.DropTable{Schema: "public", Name: "legacy_orders"},
	}

	ids := fingerprint.ScopeIDs(changes)
	assert.Contains(t, ids, "table:public.orders")
	assert.Contains(t, ids, "table:public.legacy_orders")
	assert.Contains(t, ids, "constraint:public.orders.orders_customer_fk")
}

func TestComputeForChangesMatchesManualScope(t *testing.T) {
	t.Parallel()

	cat := withTable("public", "orders")
	changes := change.Changes{&change.CreateTable{Schema: "public", Name: "orders"}}

	got, err := fingerprint.ComputeForChanges(cat, changes)
	require.NoError(t, err)
	want, err := fingerprint.Compute(cat, fingerprint.ScopeIDs(changes))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
