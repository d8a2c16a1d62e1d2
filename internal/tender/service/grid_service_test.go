package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnsondatabase/tender-sub001/internal/tender/grid"
)

func TestGridQueryTotalsFollowFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.saveListing(t, baseRequest("T1"))
	require.NoError(t, env.svc.Transition.MarkFail(ctx, "u1", "Alice", "T1"))

	req := baseRequest("T2")
	req.HospitalName = "Bệnh viện Bạch Mai"
	env.saveListing(t, req)

	all := env.svc.Grid.Query(ctx, grid.Query{})
	assert.Len(t, all.Items, 4)
	assert.Equal(t, 280.0, all.Totals.TotalQuota)
	assert.Equal(t, 140.0, all.Totals.FailQuota)
	assert.Equal(t, 140.0, all.Totals.WaitingQuota)

	failed := env.svc.Grid.Query(ctx, grid.Query{
		Conditions: []grid.Condition{{Field: "code", Op: grid.OpEq, Value: "T1"}},
	})
	assert.Len(t, failed.Items, 2)
	assert.Equal(t, 140.0, failed.Totals.TotalQuota)
	assert.Equal(t, 140.0, failed.Totals.FailQuota)
	assert.Zero(t, failed.Totals.WaitingQuota)
}

func TestGridExportFiltered(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.saveListing(t, baseRequest("T1"))
	env.saveListing(t, baseRequest("T2"))

	q := grid.Query{Conditions: []grid.Condition{{Field: "code", Op: grid.OpEq, Value: "T1"}}}
	f, filename, err := env.svc.Grid.Export(ctx, q, ExportFiltered, grid.DefaultSettings())
	require.NoError(t, err)
	assert.Contains(t, filename, "line_items_")
	assert.Contains(t, filename, ".xlsx")

	rows, err := f.GetRows("LineItems")
	require.NoError(t, err)
	// Header plus the two T1 rows.
	require.Len(t, rows, 3)
	assert.Equal(t, "Material Code", rows[0][0])
	assert.NotContains(t, rows[0], "Unit Price") // default-hidden column stays out

	// Full scope ignores the filter.
	f, _, err = env.svc.Grid.Export(ctx, q, ExportAll, grid.DefaultSettings())
	require.NoError(t, err)
	rows, err = f.GetRows("LineItems")
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestGridExportRespectsColumnSettings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.saveListing(t, baseRequest("T1"))

	st := grid.DefaultSettings()
	for i := range st.Columns {
		st.Columns[i].Visible = st.Columns[i].Field == "material_code" || st.Columns[i].Field == "quota"
	}

	f, _, err := env.svc.Grid.Export(ctx, grid.Query{}, ExportFiltered, st)
	require.NoError(t, err)
	rows, err := f.GetRows("LineItems")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"Material Code", "Quota"}, rows[0])

	cell, err := f.GetCellValue("LineItems", "A2")
	require.NoError(t, err)
	assert.Equal(t, "M1", cell)
}

func TestGridExportNoVisibleColumns(t *testing.T) {
	env := newTestEnv(t)

	st := grid.DefaultSettings()
	for i := range st.Columns {
		st.Columns[i].Visible = false
	}
	_, _, err := env.svc.Grid.Export(context.Background(), grid.Query{}, ExportFiltered, st)
	assert.Error(t, err)
}
