package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnsondatabase/tender-sub001/internal/tender/entity"
	"github.com/johnsondatabase/tender-sub001/internal/tender/repository"
)

func winRequest(mode string, quantities map[string]float64) *WinRequest {
	return &WinRequest{
		SignedDate: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2027, 8, 10, 0, 0, 0, 0, time.UTC),
		Mode:       mode,
		Quantities: quantities,
	}
}

func (e *testEnv) mustGet(t *testing.T, code string) (*entity.TenderListing, []entity.LineItem) {
	t.Helper()
	listing, items, err := e.svc.Listing.Get(context.Background(), code)
	require.NoError(t, err)
	return listing, items
}

func TestMarkWinFull(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.saveListing(t, baseRequest("T1"))

	require.NoError(t, env.svc.Transition.MarkWin(ctx, "u1", "Alice", "T1", winRequest(WinModeFull, nil)))

	listing, items := env.mustGet(t, "T1")
	assert.Equal(t, entity.StatusWin, listing.Status)
	require.NotNil(t, listing.SignedDate)
	require.NotNil(t, listing.EndDate)

	for _, it := range items {
		assert.Equal(t, entity.StatusWin, it.Status)
		assert.Equal(t, it.Quota, it.WonQuantity)
	}

	logs, _, err := env.svc.Listing.History(ctx, "T1", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, "status_change", logs[0].Action)
	assert.Equal(t, entity.StatusWaiting, logs[0].FromStatus)
	assert.Equal(t, entity.StatusWin, logs[0].ToStatus)
}

func TestMarkWinPartial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.saveListing(t, baseRequest("T1"))

	// M1 wins 60 of 100; M2 is absent from the map and defaults to quota.
	req := winRequest(WinModePartial, map[string]float64{"M1": 60})
	require.NoError(t, env.svc.Transition.MarkWin(ctx, "u1", "Alice", "T1", req))

	_, items := env.mustGet(t, "T1")
	byCode := map[string]entity.LineItem{}
	for _, it := range items {
		byCode[it.MaterialCode] = it
	}
	assert.Equal(t, 60.0, byCode["M1"].WonQuantity)
	assert.Equal(t, 40.0, byCode["M2"].WonQuantity)
	assert.Equal(t, entity.StatusWin, byCode["M1"].Status)
}

func TestMarkWinBadMode(t *testing.T) {
	env := newTestEnv(t)
	env.saveListing(t, baseRequest("T1"))

	err := env.svc.Transition.MarkWin(context.Background(), "u1", "Alice", "T1", winRequest("sideways", nil))
	require.Error(t, err)

	listing, _ := env.mustGet(t, "T1")
	assert.Equal(t, entity.StatusWaiting, listing.Status)
}

func TestMarkFailZeroesChildren(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.saveListing(t, baseRequest("T1"))

	require.NoError(t, env.svc.Transition.MarkFail(ctx, "u1", "Alice", "T1"))

	listing, items := env.mustGet(t, "T1")
	assert.Equal(t, entity.StatusFail, listing.Status)
	for _, it := range items {
		assert.Equal(t, entity.StatusFail, it.Status)
		assert.Zero(t, it.WonQuantity)
	}
}

func TestMarkWaitingRestoresBaseline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.saveListing(t, baseRequest("T1"))

	// Partial win, then back to waiting: every item mirrors its quota
	// again, the partial quantities are gone.
	req := winRequest(WinModePartial, map[string]float64{"M1": 10, "M2": 5})
	require.NoError(t, env.svc.Transition.MarkWin(ctx, "u1", "Alice", "T1", req))
	require.NoError(t, env.svc.Transition.MarkWaiting(ctx, "u1", "Alice", "T1"))

	listing, items := env.mustGet(t, "T1")
	assert.Equal(t, entity.StatusWaiting, listing.Status)
	for _, it := range items {
		assert.Equal(t, entity.StatusWaiting, it.Status)
		assert.Equal(t, it.Quota, it.WonQuantity)
	}
}

func TestIllegalTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.saveListing(t, baseRequest("T1"))

	// Waiting -> waiting is a no-op the machine rejects.
	require.Error(t, env.svc.Transition.MarkWaiting(ctx, "u1", "Alice", "T1"))

	// Fail -> win is not a legal edge; the tender has to pass through
	// waiting again.
	require.NoError(t, env.svc.Transition.MarkFail(ctx, "u1", "Alice", "T1"))
	err := env.svc.Transition.MarkWin(ctx, "u1", "Alice", "T1", winRequest(WinModeFull, nil))
	require.Error(t, err)

	listing, _ := env.mustGet(t, "T1")
	assert.Equal(t, entity.StatusFail, listing.Status)
}

func TestTransitionMissingCode(t *testing.T) {
	env := newTestEnv(t)
	err := env.svc.Transition.MarkFail(context.Background(), "u1", "Alice", "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateThenFailImmediately(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.saveListing(t, baseRequest("T1"))
	require.NoError(t, env.svc.Transition.MarkFail(ctx, "u1", "Alice", "T1"))

	logs, total, err := env.svc.Listing.History(ctx, "T1", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "status_change", logs[0].Action)
	assert.Equal(t, "create", logs[1].Action)

	// The quota survives for the fail-tier aggregates even though the won
	// quantity is zeroed.
	_, items := env.mustGet(t, "T1")
	var quota float64
	for _, it := range items {
		quota += it.Quota
		assert.Zero(t, it.WonQuantity)
	}
	assert.Equal(t, 140.0, quota)
}

func TestFullLifecycleRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.saveListing(t, baseRequest("T1"))

	require.NoError(t, env.svc.Transition.MarkWin(ctx, "u1", "Alice", "T1", winRequest(WinModeFull, nil)))
	require.NoError(t, env.svc.Transition.MarkFail(ctx, "u1", "Alice", "T1"))
	require.NoError(t, env.svc.Transition.MarkWaiting(ctx, "u1", "Alice", "T1"))

	listing, items := env.mustGet(t, "T1")
	assert.Equal(t, entity.StatusWaiting, listing.Status)
	for _, it := range items {
		assert.Equal(t, it.Quota, it.WonQuantity)
	}

	_, total, err := env.svc.Listing.History(ctx, "T1", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
}
