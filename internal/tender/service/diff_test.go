package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnsondatabase/tender-sub001/internal/tender/entity"
)

func TestComputeDiffCreation(t *testing.T) {
	next := &entity.TenderListing{Code: "T1", HospitalName: "Alpha"}
	d := computeDiff(nil, nil, next, []entity.LineItem{{MaterialCode: "M1"}})
	assert.True(t, d.Empty())
}

func TestComputeDiffFields(t *testing.T) {
	d1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	prev := &entity.TenderListing{Code: "T1", HospitalName: "Alpha", Region: "North", CreatedDate: &d1}
	next := &entity.TenderListing{Code: "T1", HospitalName: "Beta", Region: "North", CreatedDate: &d2}

	d := computeDiff(prev, nil, next, nil)
	require.Len(t, d.Fields, 2)
	assert.Contains(t, d.Fields, "hospital: Alpha -> Beta")
	assert.Contains(t, d.Fields, "created_date: 2026-01-01 -> 2026-02-01")
}

func TestComputeDiffItems(t *testing.T) {
	prev := &entity.TenderListing{Code: "T1"}
	prevItems := []entity.LineItem{
		{MaterialCode: "M1", Quota: 50, WonQuantity: 50},
		{MaterialCode: "M2", Quota: 30, WonQuantity: 30},
	}
	nextItems := []entity.LineItem{
		{MaterialCode: "M1", Quota: 80, WonQuantity: 50},
		{MaterialCode: "M3", Quota: 10, WonQuantity: 10},
	}

	d := computeDiff(prev, prevItems, prev, nextItems)
	assert.Equal(t, []string{"M3"}, d.AddedItems)
	assert.Equal(t, []string{"M2"}, d.RemovedItems)
	assert.Equal(t, []string{"M1: quota 50 -> 80"}, d.ChangedItems)
	assert.False(t, d.Empty())

	text := d.Text()
	assert.Contains(t, text, "item added: M3")
	assert.Contains(t, text, "item removed: M2")
}

func TestComputeDiffNoChange(t *testing.T) {
	prev := &entity.TenderListing{Code: "T1", HospitalName: "Alpha"}
	items := []entity.LineItem{{MaterialCode: "M1", Quota: 50, WonQuantity: 50}}
	d := computeDiff(prev, items, prev, items)
	assert.True(t, d.Empty())
	assert.Empty(t, d.Text())
}
