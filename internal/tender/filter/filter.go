// Package filter implements the cascading multi-select filter engine for the
// tender board. It is a pure function of (records, state, now): no network,
// no persistence.
//
// Semantics are Excel-style dependent filtering: within one field the
// selected values are OR'd, across fields they are AND'd, and the option
// list offered for each field is recomputed from the base record set with
// every filter applied except that field's own selection. A field can
// therefore never hide its own active selections.
package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/johnsondatabase/tender-sub001/internal/tender/entity"
)

// Field identifies one of the five cascading filter fields.
type Field string

const (
	FieldDateRange   Field = "date_range"
	FieldHospital    Field = "hospital"
	FieldDistributor Field = "distributor"
	FieldRegion      Field = "region"
	FieldIndustry    Field = "industry"

	// FieldNone disables the exclusion when computing the visible set.
	FieldNone Field = ""
)

// State holds the keyword plus the five selection sets. An empty slice means
// "no restriction from this field".
type State struct {
	Keyword      string   `json:"keyword"`
	DateRanges   []string `json:"date_ranges"` // bucket keys, see bucket.go
	Hospitals    []string `json:"hospitals"`
	Distributors []string `json:"distributors"`
	Regions      []string `json:"regions"`
	Industries   []string `json:"industries"`
}

// Reset clears the keyword and all five selection sets atomically.
func (s *State) Reset() {
	*s = State{}
}

func (s State) selection(f Field) []string {
	switch f {
	case FieldDateRange:
		return s.DateRanges
	case FieldHospital:
		return s.Hospitals
	case FieldDistributor:
		return s.Distributors
	case FieldRegion:
		return s.Regions
	case FieldIndustry:
		return s.Industries
	}
	return nil
}

func fieldValue(rec entity.TenderListing, f Field) string {
	switch f {
	case FieldHospital:
		return rec.HospitalName
	case FieldDistributor:
		return rec.Distributor
	case FieldRegion:
		return rec.Region
	case FieldIndustry:
		return rec.Industry
	}
	return ""
}

// searchableFields are the attributes covered by the keyword substring match.
func searchable(rec entity.TenderListing) []string {
	return []string{
		rec.Code,
		rec.HospitalName,
		rec.Province,
		rec.Region,
		rec.Type,
		rec.Distributor,
		rec.Industry,
		rec.SalesRep,
		rec.Manager,
	}
}

func matchKeyword(rec entity.TenderListing, keyword string) bool {
	if keyword == "" {
		return true
	}
	kw := strings.ToLower(strings.TrimSpace(keyword))
	for _, v := range searchable(rec) {
		if strings.Contains(strings.ToLower(v), kw) {
			return true
		}
	}
	return false
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// matches applies every filter except the excluded field's own selection.
func matches(rec entity.TenderListing, st State, exclude Field, now time.Time) bool {
	if !matchKeyword(rec, st.Keyword) {
		return false
	}
	if exclude != FieldDateRange && len(st.DateRanges) > 0 {
		if !InAnyBucket(rec.CreatedDate, st.DateRanges, now) {
			return false
		}
	}
	for _, f := range []Field{FieldHospital, FieldDistributor, FieldRegion, FieldIndustry} {
		if f == exclude {
			continue
		}
		sel := st.selection(f)
		if len(sel) > 0 && !contains(sel, fieldValue(rec, f)) {
			return false
		}
	}
	return true
}

// Visible returns the subset of records passing the keyword, the date-bucket
// predicate and all five selection sets.
func Visible(records []entity.TenderListing, st State, now time.Time) []entity.TenderListing {
	out := make([]entity.TenderListing, 0, len(records))
	for _, rec := range records {
		if matches(rec, st, FieldNone, now) {
			out = append(out, rec)
		}
	}
	return out
}

// Options holds the option values offered per filter field.
type Options struct {
	DateRanges   []string `json:"date_ranges"`
	Hospitals    []string `json:"hospitals"`
	Distributors []string `json:"distributors"`
	Regions      []string `json:"regions"`
	Industries   []string `json:"industries"`
}

// AvailableOptions recomputes, for each field, the option list from the base
// record set with every filter except that field's own selection applied.
// The field's current selections are always kept in its list even when no
// record backs them anymore, so a selection never disappears from under the
// user.
func AvailableOptions(records []entity.TenderListing, st State, now time.Time) Options {
	collect := func(f Field) []string {
		seen := make(map[string]struct{})
		for _, rec := range records {
			if !matches(rec, st, f, now) {
				continue
			}
			if v := fieldValue(rec, f); v != "" {
				seen[v] = struct{}{}
			}
		}
		for _, v := range st.selection(f) {
			seen[v] = struct{}{}
		}
		out := make([]string, 0, len(seen))
		for v := range seen {
			out = append(out, v)
		}
		sort.Strings(out)
		return out
	}

	dateRanges := make([]string, 0, 5)
	for _, b := range Buckets() {
		matched := false
		for _, rec := range records {
			if matches(rec, st, FieldDateRange, now) && rec.CreatedDate != nil && InBucket(*rec.CreatedDate, b, now) {
				matched = true
				break
			}
		}
		if matched || contains(st.DateRanges, b) {
			dateRanges = append(dateRanges, b)
		}
	}

	return Options{
		DateRanges:   dateRanges,
		Hospitals:    collect(FieldHospital),
		Distributors: collect(FieldDistributor),
		Regions:      collect(FieldRegion),
		Industries:   collect(FieldIndustry),
	}
}
