package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/johnsondatabase/tender-sub001/internal/tender/entity"
)

// Diff describes what an editor save changed, purely for the audit trail.
// The write path never consults it: children are replaced wholesale whether
// or not anything differs.
type Diff struct {
	Fields       []string // "field: old -> new"
	AddedItems   []string // material codes
	RemovedItems []string
	ChangedItems []string // "M1: quota 50 -> 80"
}

func (d Diff) Empty() bool {
	return len(d.Fields) == 0 && len(d.AddedItems) == 0 && len(d.RemovedItems) == 0 && len(d.ChangedItems) == 0
}

// Text renders the diff as the one-line-per-change audit content.
func (d Diff) Text() string {
	var lines []string
	lines = append(lines, d.Fields...)
	for _, m := range d.AddedItems {
		lines = append(lines, "item added: "+m)
	}
	for _, m := range d.RemovedItems {
		lines = append(lines, "item removed: "+m)
	}
	lines = append(lines, d.ChangedItems...)
	return strings.Join(lines, "\n")
}

func dateString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// computeDiff compares the previously loaded record (nil on creation)
// against the submitted form, field by field on the parent and as a key-set
// diff on the line items keyed by material code.
func computeDiff(prev *entity.TenderListing, prevItems []entity.LineItem, next *entity.TenderListing, nextItems []entity.LineItem) Diff {
	var d Diff
	if prev == nil {
		return d // creation: no field diff, audit entry is written regardless
	}

	field := func(name, oldV, newV string) {
		if oldV != newV {
			d.Fields = append(d.Fields, fmt.Sprintf("%s: %s -> %s", name, oldV, newV))
		}
	}
	field("year", fmt.Sprint(prev.Year), fmt.Sprint(next.Year))
	field("hospital", prev.HospitalName, next.HospitalName)
	field("province", prev.Province, next.Province)
	field("region", prev.Region, next.Region)
	field("type", prev.Type, next.Type)
	field("distributor", prev.Distributor, next.Distributor)
	field("industry", prev.Industry, next.Industry)
	field("sales_rep", prev.SalesRep, next.SalesRep)
	field("manager", prev.Manager, next.Manager)
	field("status", prev.Status, next.Status)
	field("created_date", dateString(prev.CreatedDate), dateString(next.CreatedDate))
	field("signed_date", dateString(prev.SignedDate), dateString(next.SignedDate))
	field("end_date", dateString(prev.EndDate), dateString(next.EndDate))

	prevByCode := make(map[string]entity.LineItem, len(prevItems))
	for _, it := range prevItems {
		prevByCode[it.MaterialCode] = it
	}
	nextByCode := make(map[string]entity.LineItem, len(nextItems))
	for _, it := range nextItems {
		nextByCode[it.MaterialCode] = it
	}

	for _, it := range nextItems {
		old, ok := prevByCode[it.MaterialCode]
		if !ok {
			d.AddedItems = append(d.AddedItems, it.MaterialCode)
			continue
		}
		if old.Quota != it.Quota {
			d.ChangedItems = append(d.ChangedItems,
				fmt.Sprintf("%s: quota %v -> %v", it.MaterialCode, old.Quota, it.Quota))
		}
		if old.WonQuantity != it.WonQuantity {
			d.ChangedItems = append(d.ChangedItems,
				fmt.Sprintf("%s: won_quantity %v -> %v", it.MaterialCode, old.WonQuantity, it.WonQuantity))
		}
	}
	for _, it := range prevItems {
		if _, ok := nextByCode[it.MaterialCode]; !ok {
			d.RemovedItems = append(d.RemovedItems, it.MaterialCode)
		}
	}
	return d
}
