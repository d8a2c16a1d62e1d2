// Package board projects a visible set of tender listings into the three
// kanban lanes (waiting / win / fail) and computes the per-card derived
// metrics shown on the board. Pure projection: all actions on a card are
// delegated back to callers keyed by the tender code.
package board

import (
	"math"
	"time"

	"github.com/johnsondatabase/tender-sub001/internal/tender/entity"
)

// Fulfillment tiers drive the card ring color.
const (
	TierNone    = "none"    // 0%
	TierPartial = "partial" // (0, 100)
	TierFull    = "full"    // >= 100%
)

// ItemStats is the aggregated line-item view of one tender, keyed by code.
type ItemStats struct {
	QuotaSum float64 `json:"quota_sum"`
	WonSum   float64 `json:"won_sum"`
}

// Card is one tender projected onto the board.
type Card struct {
	Listing entity.TenderListing `json:"listing"`

	TimeProgressPct float64 `json:"time_progress_pct"`
	DaysRemaining   int     `json:"days_remaining"`
	Expired         bool    `json:"expired"`

	QuotaSum        float64 `json:"quota_sum"`
	WonSum          float64 `json:"won_sum"`
	FulfillmentPct  float64 `json:"fulfillment_pct"`
	FulfillmentTier string  `json:"fulfillment_tier"`
}

// Lane is one status column.
type Lane struct {
	Status  string  `json:"status"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"` // of total visible records, all lanes
	Cards   []Card  `json:"cards"`
}

// View is the whole rendered board.
type View struct {
	Lanes []Lane `json:"lanes"`
	Total int    `json:"total"`
}

// laneFor maps a status to its lane; anything unrecognized lands in waiting.
func laneFor(status string) string {
	switch status {
	case entity.StatusWin, entity.StatusFail:
		return status
	}
	return entity.StatusWaiting
}

// TimeProgress returns percent elapsed of the signed..end contract window,
// clamped to [0, 100], the whole-day distance to the end date (absolute),
// and whether the contract is already past its end. A window with
// end <= start counts as fully elapsed.
func TimeProgress(signed, end *time.Time, now time.Time) (pct float64, daysRemaining int, expired bool) {
	if signed == nil || end == nil {
		return 0, 0, false
	}
	total := end.Sub(*signed)
	remaining := end.Sub(now)
	days := int(math.Abs(math.Floor(remaining.Hours() / 24)))
	expired = remaining < 0

	if total <= 0 {
		return 100, days, true
	}
	pct = now.Sub(*signed).Seconds() / total.Seconds() * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, days, expired
}

// Fulfillment computes the won/quota ratio percentage and its color tier.
func Fulfillment(stats ItemStats) (pct float64, tier string) {
	if stats.QuotaSum <= 0 {
		return 0, TierNone
	}
	pct = stats.WonSum / stats.QuotaSum * 100
	switch {
	case pct <= 0:
		tier = TierNone
	case pct >= 100:
		tier = TierFull
	default:
		tier = TierPartial
	}
	return pct, tier
}

// Build partitions the visible listings into the three lanes and derives the
// card metrics. Lane percentages use the total visible count across all
// lanes as denominator; the three lane counts always sum to Total.
func Build(listings []entity.TenderListing, stats map[string]ItemStats, now time.Time) View {
	lanes := map[string]*Lane{
		entity.StatusWaiting: {Status: entity.StatusWaiting, Cards: []Card{}},
		entity.StatusWin:     {Status: entity.StatusWin, Cards: []Card{}},
		entity.StatusFail:    {Status: entity.StatusFail, Cards: []Card{}},
	}

	for _, l := range listings {
		card := Card{Listing: l}
		card.TimeProgressPct, card.DaysRemaining, card.Expired = TimeProgress(l.SignedDate, l.EndDate, now)

		st := stats[l.Code]
		card.QuotaSum = st.QuotaSum
		card.WonSum = st.WonSum
		card.FulfillmentPct, card.FulfillmentTier = Fulfillment(st)

		lane := lanes[laneFor(l.Status)]
		lane.Cards = append(lane.Cards, card)
		lane.Count++
	}

	total := len(listings)
	view := View{Total: total}
	for _, status := range []string{entity.StatusWaiting, entity.StatusWin, entity.StatusFail} {
		lane := lanes[status]
		if total > 0 {
			lane.Percent = float64(lane.Count) / float64(total) * 100
		}
		view.Lanes = append(view.Lanes, *lane)
	}
	return view
}
