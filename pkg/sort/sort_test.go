// SPDX-License-Identifier: Apache-2.0

package sort_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/sort"
)

func names(cs change.Changes) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c.(change.Named).ChangeName())
	}
	return out
}

func indexOf(cs change.Changes, pred func(change.Change) bool) int {
	for i, c := range cs {
		if pred(c) {
			return i
		}
	}
	return -1
}

func TestSortDropsBeforeCreates(t *testing.T) {
	t.Parallel()

	changes := change.Changes{
		&change.CreateTable{Schema: "public", Name: "orders"},
		&change.DropTable{Schema: "public", Name: "legacy_orders"},
		&change.CreateSchema{Name: "public"},
	}

	out, err := sort.Sort(changes, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"drop_table", "create_schema", "create_table"}, names(out))
}

func TestSortTableWaitsOnForeignKeyReference(t *testing.T) {
	t.Parallel()

	// orders references customers via a foreign key; the catalog records
	// that dependency even though neither Change's Requires() names the
	// other table directly.
	changes := change.Changes{
		&change.CreateTable{Schema: "public", Name: "orders"},
		&change.CreateTable{Schema: "public", Name: "customers"},
		&change.AddConstraint{Schema: "public", Table: "orders", Name: "orders_customer_fk"},
	}
	depends := []catalog.Depend{
		{DependentStableID: "constraint:public.orders.orders_customer_fk", ReferencedStableID: "table:public.customers", DepType: catalog.DepNormal},
	}

	out, err := sort.Sort(changes, depends)
	require.NoError(t, err)

	customersIdx := indexOf(out, func(c change.Change) bool {
		t, ok := c.(*change.CreateTable)
		return ok && t.Name == "customers"
	})
	fkIdx := indexOf(out, func(c change.Change) bool {
		_, ok := c.(*change.AddConstraint)
		return ok
	})
	require.NotEqual(t, -1, customersIdx)
	require.NotEqual(t, -1, fkIdx)
	assert.Less(t, customersIdx, fkIdx)
}

func TestSortDefaultPrivilegeBeforeMatchingCreate(t *testing.T) {
	t.Parallel()

	changes := change.Changes{
		&change.CreateTable{Schema: "app", Name: "widgets", Owner: "app_owner"},
		&change.GrantDefaultPrivileges{
			Target:     change.DefaultPrivilegeTarget{Grantor: "app_owner", ObjType: "r", Schema: "app"},
			Grantee:    "readonly",
			Privileges: []string{"SELECT"},
		},
		&change.CreateRole{Name: "app_owner"},
		&change.CreateSchema{Name: "app", Owner: "app_owner"},
	}

	out, err := sort.Sort(changes, nil)
	require.NoError(t, err)

	roleIdx := indexOf(out, func(c change.Change) bool { _, ok := c.(*change.CreateRole); return ok })
	schemaIdx := indexOf(out, func(c change.Change) bool { _, ok := c.(*change.CreateSchema); return ok })
	grantIdx := indexOf(out, func(c change.Change) bool { _, ok := c.(*change.GrantDefaultPrivileges); return ok })
	tableIdx := indexOf(out, func(c change.Change) bool { _, ok := c.(*change.CreateTable); return ok })

	require.NotEqual(t, -1, roleIdx)
	require.NotEqual(t, -1, schemaIdx)
	require.NotEqual(t, -1, grantIdx)
	require.NotEqual(t, -1, tableIdx)

	assert.Less(t, roleIdx, grantIdx, "role must exist before ALTER DEFAULT PRIVILEGES names it")
	assert.Less(t, schemaIdx, grantIdx, "schema must exist before ALTER DEFAULT PRIVILEGES names it")
	assert.Less(t, grantIdx, tableIdx, "default privileges must be installed before the table they apply to is created")
}

func TestSortBreaksSequenceOwnershipCycle(t *testing.T) {
	t.Parallel()

	changes := change.Changes{
		&change.CreateTable{Schema: "public", Name: "events", Columns: []change.ColumnDef{{Name: "id", DataType: "bigint"}}},
		&change.CreateSequence{Schema: "public", Name: "events_id_seq"},
	}
	// The sequence's default value expression requires the table's
	// column to not yet exist conceptually in neither direction, but
	// pg_depend records an auto dependency from the sequence back onto
	// the owning column once OWNED BY is set — the cycle this test
	// exercises.
	depends := []catalog.Depend{
		{DependentStableID: "sequence:public.events_id_seq", ReferencedStableID: "column:public.events.id", DepType: catalog.DepAuto},
		{DependentStableID: "table:public.events", ReferencedStableID: "sequence:public.events_id_seq", DepType: catalog.DepNormal},
	}

	out, err := sort.Sort(changes, depends)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestSortUnbreakableCycleReturnsCycleError(t *testing.T) {
	t.Parallel()

	changes := change.Changes{
		&change.CreateView{Schema: "public", Name: "a", Definition: "select 1"},
		&change.CreateView{Schema: "public", Name: "b", Definition: "select 1"},
	}
	depends := []catalog.Depend{
		{DependentStableID: "view:public.a", ReferencedStableID: "view:public.b", DepType: catalog.DepNormal},
		{DependentStableID: "view:public.b", ReferencedStableID: "view:public.a", DepType: catalog.DepNormal},
	}

	_, err := sort.Sort(changes, depends)
	require.Error(t, err)

	var cycleErr *sort.CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, sort.PhaseCreate, cycleErr.Phase)
	assert.Len(t, cycleErr.Nodes, 2)
}
