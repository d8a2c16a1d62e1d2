package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnsondatabase/tender-sub001/internal/tender/entity"
)

func datePtr(t time.Time) *time.Time { return &t }

func testRecords(now time.Time) []entity.TenderListing {
	return []entity.TenderListing{
		{Code: "T1", HospitalName: "A", Distributor: "X", Region: "North", Industry: "Pharma", CreatedDate: datePtr(now)},
		{Code: "T2", HospitalName: "B", Distributor: "X", Region: "South", Industry: "Pharma", CreatedDate: datePtr(now.AddDate(0, 0, -10))},
		{Code: "T3", HospitalName: "B", Distributor: "Y", Region: "South", Industry: "Devices", CreatedDate: datePtr(now)},
	}
}

func TestVisibleKeyword(t *testing.T) {
	now := time.Now()
	records := testRecords(now)

	got := Visible(records, State{Keyword: "pharma"}, now)
	require.Len(t, got, 2)
	assert.Equal(t, "T1", got[0].Code)
	assert.Equal(t, "T2", got[1].Code)

	// Case-insensitive across every searchable field.
	got = Visible(records, State{Keyword: "t3"}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "T3", got[0].Code)
}

func TestVisibleAndAcrossFieldsOrWithin(t *testing.T) {
	now := time.Now()
	records := testRecords(now)

	// OR within a field.
	got := Visible(records, State{Hospitals: []string{"A", "B"}}, now)
	assert.Len(t, got, 3)

	// AND across fields.
	got = Visible(records, State{Hospitals: []string{"B"}, Distributors: []string{"X"}}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "T2", got[0].Code)
}

func TestCascadingOptions(t *testing.T) {
	now := time.Now()
	records := []entity.TenderListing{
		{Code: "T1", HospitalName: "A", Distributor: "X"},
		{Code: "T2", HospitalName: "B", Distributor: "X"},
		{Code: "T3", HospitalName: "B", Distributor: "Y"},
	}

	// Selecting hospital=A narrows distributor options to X only.
	st := State{Hospitals: []string{"A"}}
	opts := AvailableOptions(records, st, now)
	assert.Equal(t, []string{"X"}, opts.Distributors)

	// But the hospital list itself is computed without its own filter.
	assert.Equal(t, []string{"A", "B"}, opts.Hospitals)

	// Clearing the hospital restores both distributors.
	st.Reset()
	opts = AvailableOptions(records, st, now)
	assert.Equal(t, []string{"X", "Y"}, opts.Distributors)
}

func TestOwnSelectionNeverHidden(t *testing.T) {
	now := time.Now()
	records := []entity.TenderListing{
		{Code: "T1", HospitalName: "A", Distributor: "X"},
		{Code: "T2", HospitalName: "B", Distributor: "Y"},
	}

	// Distributor Y is selected but hospital=A leaves no record backing it.
	// The selection must still be offered.
	st := State{Hospitals: []string{"A"}, Distributors: []string{"Y"}}
	opts := AvailableOptions(records, st, now)
	assert.Contains(t, opts.Distributors, "Y")
}

func TestDateBuckets(t *testing.T) {
	// Wednesday 2026-08-12.
	now := time.Date(2026, 8, 12, 15, 0, 0, 0, time.Local)

	assert.True(t, InBucket(now, BucketToday, now))
	assert.False(t, InBucket(now.AddDate(0, 0, -1), BucketToday, now))

	// Monday-start week: the previous Monday is in, the Sunday before is not.
	assert.True(t, InBucket(time.Date(2026, 8, 10, 0, 0, 0, 0, time.Local), BucketWeek, now))
	assert.False(t, InBucket(time.Date(2026, 8, 9, 23, 0, 0, 0, time.Local), BucketWeek, now))

	assert.True(t, InBucket(time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local), BucketMonth, now))
	assert.True(t, InBucket(time.Date(2026, 7, 1, 0, 0, 0, 0, time.Local), BucketQuarter, now))
	assert.False(t, InBucket(time.Date(2026, 6, 30, 0, 0, 0, 0, time.Local), BucketQuarter, now))
	assert.True(t, InBucket(time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local), BucketYear, now))
	assert.False(t, InBucket(time.Date(2025, 12, 31, 0, 0, 0, 0, time.Local), BucketYear, now))
}

func TestDateBucketFilter(t *testing.T) {
	now := time.Now()
	records := testRecords(now)

	// "today" keeps the two records created today.
	got := Visible(records, State{DateRanges: []string{BucketToday}}, now)
	assert.Len(t, got, 2)

	// A 10-day-old record is excluded by a week-only filter.
	got = Visible(records, State{DateRanges: []string{BucketWeek}}, now)
	for _, rec := range got {
		assert.NotEqual(t, "T2", rec.Code)
	}

	// Multiple buckets OR together.
	got = Visible(records, State{DateRanges: []string{BucketToday, BucketMonth, BucketYear}}, now)
	assert.GreaterOrEqual(t, len(got), 2)
}

func TestReset(t *testing.T) {
	st := State{
		Keyword:      "x",
		DateRanges:   []string{BucketToday},
		Hospitals:    []string{"A"},
		Distributors: []string{"X"},
		Regions:      []string{"North"},
		Industries:   []string{"Pharma"},
	}
	st.Reset()
	assert.Equal(t, State{}, st)
}
