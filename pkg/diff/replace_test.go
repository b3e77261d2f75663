// SPDX-License-Identifier: Apache-2.0

package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/diff"
)

// ordersWithViewCatalogs builds the two sides of worked example S6: a
// public.orders table with a status column, and a public.orders_view
// view whose definition never changes between source and target but
// whose pg_depend row records it reading the status column.
func ordersWithViewCatalogs(columnDataType, columnCollation string) (*catalog.Catalog, *catalog.Catalog) {
	build := func(dataType, collation string) *catalog.Catalog {
		cat := catalog.New()
		cat.Tables["table:public.orders"] = &catalog.Table{
			Schema: "public", Name: "orders", Owner: "postgres",
			Columns: []catalog.Column{
				{Name: "id", Position: 1, DataType: "bigint", NotNull: true},
				{Name: "status", Position: 2, DataType: dataType, Collation: collation},
			},
		}
		cat.Views["view:public.orders_view"] = &catalog.View{
			Schema: "public", Name: "orders_view", Owner: "postgres",
			Definition: "SELECT id, status FROM public.orders",
		}
		cat.Depends = []catalog.Depend{
			{DependentStableID: "view:public.orders_view", ReferencedStableID: "column:public.orders.status", DepType: catalog.DepNormal},
		}
		return cat
	}
	return build("text", ""), build(columnDataType, columnCollation)
}

func viewChanges(changes change.Changes) (drops []*change.DropView, creates []*change.CreateView) {
	for _, c := range changes {
		switch v := c.(type) {
		case *change.DropView:
			drops = append(drops, v)
		case *change.CreateView:
			creates = append(creates, v)
		}
	}
	return
}

// TestReplaceExpansionCascadesColumnReplaceToDependentView is worked
// example S6: a column whose changed facets force a drop+add replace
// (not an in-place ALTER) cascades to a Drop+Create of the view that
// depends on it, even though diffViews itself sees no change.
func TestReplaceExpansionCascadesColumnReplaceToDependentView(t *testing.T) {
	t.Parallel()

	src, tgt := ordersWithViewCatalogs("varchar(20)", "C")
	changes := diff.DiffCatalogs(src, tgt)

	var sawColumnDrop, sawColumnAdd bool
	for _, c := range changes {
		switch v := c.(type) {
		case *change.DropColumn:
			if v.Name == "status" {
				sawColumnDrop = true
			}
		case *change.AddColumn:
			if v.Column.Name == "status" {
				sawColumnAdd = true
			}
		}
	}
	require.True(t, sawColumnDrop, "collation change must replace the column, not alter it in place")
	require.True(t, sawColumnAdd, "collation change must replace the column, not alter it in place")

	drops, creates := viewChanges(changes)
	require.Len(t, drops, 1, "the view must be dropped even though its own definition never changed")
	require.Len(t, creates, 1, "the view must be recreated even though its own definition never changed")
	assert.Equal(t, "orders_view", drops[0].Name)
	assert.Equal(t, "orders_view", creates[0].Name)
	assert.Equal(t, "SELECT id, status FROM public.orders", creates[0].Definition)
}

// TestReplaceExpansionLeavesViewAloneWhenColumnIsAltered confirms the
// counterpart: an in-place-alterable column change (type only, same
// collation) never triggers the cascade, since the column itself is
// never both created and dropped.
func TestReplaceExpansionLeavesViewAloneWhenColumnIsAltered(t *testing.T) {
	t.Parallel()

	src, tgt := ordersWithViewCatalogs("varchar(20)", "")
	changes := diff.DiffCatalogs(src, tgt)

	var sawAlterType bool
	for _, c := range changes {
		if v, ok := c.(*change.AlterColumn); ok && v.Name == "status" {
			require.NotNil(t, v.NewType)
			sawAlterType = true
		}
	}
	assert.True(t, sawAlterType)

	drops, creates := viewChanges(changes)
	assert.Empty(t, drops, "an in-place column alter must not cascade into a view replace")
	assert.Empty(t, creates, "an in-place column alter must not cascade into a view replace")
}
