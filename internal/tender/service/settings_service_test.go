package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnsondatabase/tender-sub001/internal/tender/grid"
	"github.com/johnsondatabase/tender-sub001/internal/tender/testutil"
)

func TestSettingsLoadDefaults(t *testing.T) {
	svc := NewSettingsService(testutil.NewMemKV(), testutil.Logger())

	got := svc.Load(context.Background(), "u1", "line_items")
	assert.Equal(t, grid.DefaultSettings(), got)
}

func TestSettingsRoundTrip(t *testing.T) {
	kv := testutil.NewMemKV()
	svc := NewSettingsService(kv, testutil.Logger())
	ctx := context.Background()

	st := grid.DefaultSettings()
	st.FixedColumnsLeft = 2
	st.Sort = &grid.SortConfig{Field: "quota", Direction: "desc"}
	for i := range st.Columns {
		if st.Columns[i].Field == "region" {
			st.Columns[i].Visible = false
			st.Columns[i].Width = 222
		}
	}
	require.NoError(t, svc.Save(ctx, "u1", "line_items", st))

	got := svc.Load(ctx, "u1", "line_items")
	assert.Equal(t, st, got)

	// Settings are namespaced per user and per view.
	assert.Equal(t, grid.DefaultSettings(), svc.Load(ctx, "u2", "line_items"))
	assert.Equal(t, grid.DefaultSettings(), svc.Load(ctx, "u1", "other_view"))
}

func TestSettingsCorruptFallsBack(t *testing.T) {
	kv := testutil.NewMemKV()
	kv.Data["tender:grid_settings:u1:line_items"] = "{not json"
	svc := NewSettingsService(kv, testutil.Logger())

	got := svc.Load(context.Background(), "u1", "line_items")
	assert.Equal(t, grid.DefaultSettings(), got)
}

func TestSettingsReset(t *testing.T) {
	kv := testutil.NewMemKV()
	svc := NewSettingsService(kv, testutil.Logger())
	ctx := context.Background()

	st := grid.DefaultSettings()
	st.FixedColumnsLeft = 3
	require.NoError(t, svc.Save(ctx, "u1", "line_items", st))
	require.NoError(t, svc.Reset(ctx, "u1", "line_items"))

	assert.Equal(t, grid.DefaultSettings(), svc.Load(ctx, "u1", "line_items"))
	assert.Empty(t, kv.Data)
}
