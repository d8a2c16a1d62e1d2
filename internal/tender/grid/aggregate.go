package grid

import "github.com/johnsondatabase/tender-sub001/internal/tender/entity"

// Totals are the footer aggregates, recomputed from the currently visible
// rows on every filter or sort change. Percentages are of TotalQuota and 0
// when TotalQuota is 0.
type Totals struct {
	TotalQuota   float64 `json:"total_quota"`
	WaitingQuota float64 `json:"waiting_quota"` // quota where status=waiting
	WinWon       float64 `json:"win_won"`       // won quantity where status=win
	FailQuota    float64 `json:"fail_quota"`    // quota where status=fail
	PartialLoss  float64 `json:"partial_loss"`  // quota(win) - won(win)

	WaitingPct     float64 `json:"waiting_pct"`
	WinPct         float64 `json:"win_pct"`
	FailPct        float64 `json:"fail_pct"`
	PartialLossPct float64 `json:"partial_loss_pct"`
}

// Aggregate computes the four quota tiers plus the derived partial loss.
func Aggregate(items []entity.LineItem) Totals {
	var t Totals
	var winQuota float64
	for _, item := range items {
		t.TotalQuota += item.Quota
		switch item.Status {
		case entity.StatusWaiting:
			t.WaitingQuota += item.Quota
		case entity.StatusWin:
			winQuota += item.Quota
			t.WinWon += item.WonQuantity
		case entity.StatusFail:
			t.FailQuota += item.Quota
		}
	}
	t.PartialLoss = winQuota - t.WinWon

	if t.TotalQuota > 0 {
		t.WaitingPct = t.WaitingQuota / t.TotalQuota * 100
		t.WinPct = t.WinWon / t.TotalQuota * 100
		t.FailPct = t.FailQuota / t.TotalQuota * 100
		t.PartialLossPct = t.PartialLoss / t.TotalQuota * 100
	}
	return t
}

// SelectionStats is the count/sum/min/max readout for the current cell-range
// selection. Independent of the filter-driven Totals.
type SelectionStats struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Selection computes stats over the numeric values of a cell-range
// selection.
func Selection(values []float64) SelectionStats {
	st := SelectionStats{Count: len(values)}
	for i, v := range values {
		st.Sum += v
		if i == 0 || v < st.Min {
			st.Min = v
		}
		if i == 0 || v > st.Max {
			st.Max = v
		}
	}
	return st
}
