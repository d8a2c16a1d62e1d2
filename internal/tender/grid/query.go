package grid

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/johnsondatabase/tender-sub001/internal/tender/entity"
	"github.com/johnsondatabase/tender-sub001/internal/tender/filter"
)

// Condition operators supported by the per-column filters. Date columns
// additionally accept OpBucket with one of the filter package's preset
// bucket keys as Value, which the engine expands to a between condition.
const (
	OpEq       = "eq"
	OpNeq      = "neq"
	OpContains = "contains"
	OpGt       = "gt"
	OpLt       = "lt"
	OpBefore   = "before"
	OpAfter    = "after"
	OpBetween  = "between"
	OpBucket   = "bucket"
)

// Condition is one per-column value/condition filter.
type Condition struct {
	Field  string `json:"field"`
	Op     string `json:"op"`
	Value  string `json:"value"`
	Value2 string `json:"value2,omitempty"` // upper bound for between
}

// Query is one grid evaluation request: free-text search over the base
// dataset, the column conditions, and the single sort descriptor.
type Query struct {
	Search     string      `json:"search"`
	Conditions []Condition `json:"conditions"`
	Sort       *SortConfig `json:"sort,omitempty"`
}

const dateLayout = "2006-01-02"

// CellString renders a field of one row for search, export and eq/contains
// matching.
func CellString(item entity.LineItem, field string) string {
	switch field {
	case "material_code":
		return item.MaterialCode
	case "material_name":
		return item.MaterialName
	case "code":
		return item.Code
	case "hospital_name":
		return item.HospitalName
	case "province":
		return item.Province
	case "region":
		return item.Region
	case "unit":
		return item.Unit
	case "status":
		return item.Status
	case "quota":
		return strconv.FormatFloat(item.Quota, 'f', -1, 64)
	case "won_quantity":
		return strconv.FormatFloat(item.WonQuantity, 'f', -1, 64)
	case "unit_price":
		return strconv.FormatFloat(item.UnitPrice, 'f', -1, 64)
	case "created_date":
		return formatDate(item.CreatedDate)
	case "signed_date":
		return formatDate(item.SignedDate)
	case "end_date":
		return formatDate(item.EndDate)
	}
	return ""
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func numberValue(item entity.LineItem, field string) (float64, bool) {
	switch field {
	case "quota":
		return item.Quota, true
	case "won_quantity":
		return item.WonQuantity, true
	case "unit_price":
		return item.UnitPrice, true
	}
	return 0, false
}

func dateValue(item entity.LineItem, field string) (*time.Time, bool) {
	switch field {
	case "created_date":
		return item.CreatedDate, true
	case "signed_date":
		return item.SignedDate, true
	case "end_date":
		return item.EndDate, true
	}
	return nil, false
}

func matchSearch(item entity.LineItem, search string) bool {
	if search == "" {
		return true
	}
	kw := strings.ToLower(strings.TrimSpace(search))
	for _, c := range Canonical() {
		if strings.Contains(strings.ToLower(CellString(item, c.Field)), kw) {
			return true
		}
	}
	return false
}

func matchCondition(item entity.LineItem, cond Condition, now time.Time) bool {
	if t, ok := dateValue(item, cond.Field); ok {
		return matchDate(t, cond, now)
	}
	if n, ok := numberValue(item, cond.Field); ok {
		return matchNumber(n, cond)
	}
	v := strings.ToLower(CellString(item, cond.Field))
	want := strings.ToLower(cond.Value)
	switch cond.Op {
	case OpEq:
		return v == want
	case OpNeq:
		return v != want
	case OpContains:
		return strings.Contains(v, want)
	}
	return true
}

func matchNumber(n float64, cond Condition) bool {
	want, err := strconv.ParseFloat(cond.Value, 64)
	if err != nil {
		return true
	}
	switch cond.Op {
	case OpEq:
		return n == want
	case OpNeq:
		return n != want
	case OpGt:
		return n > want
	case OpLt:
		return n < want
	case OpBetween:
		upper, err := strconv.ParseFloat(cond.Value2, 64)
		if err != nil {
			return n >= want
		}
		return n >= want && n <= upper
	}
	return true
}

func matchDate(t *time.Time, cond Condition, now time.Time) bool {
	if cond.Op == OpBucket {
		return filter.InAnyBucket(t, []string{cond.Value}, now)
	}
	if t == nil {
		return false
	}
	parse := func(s string) (time.Time, bool) {
		v, err := time.ParseInLocation(dateLayout, s, now.Location())
		return v, err == nil
	}
	switch cond.Op {
	case OpBefore:
		if v, ok := parse(cond.Value); ok {
			return t.Before(v)
		}
	case OpAfter:
		if v, ok := parse(cond.Value); ok {
			return !t.Before(v)
		}
	case OpBetween:
		from, okFrom := parse(cond.Value)
		to, okTo := parse(cond.Value2)
		if !okFrom && !okTo {
			return true
		}
		if okFrom && t.Before(from) {
			return false
		}
		if okTo && !t.Before(to.AddDate(0, 0, 1)) { // inclusive end day
			return false
		}
		return true
	case OpEq:
		if v, ok := parse(cond.Value); ok {
			return t.Year() == v.Year() && t.YearDay() == v.YearDay()
		}
	}
	return true
}

// Apply evaluates a query against the base dataset: search first, then every
// column condition, then the sort descriptor. The input slice is never
// mutated.
func Apply(items []entity.LineItem, q Query, now time.Time) []entity.LineItem {
	out := make([]entity.LineItem, 0, len(items))
	for _, item := range items {
		if !matchSearch(item, q.Search) {
			continue
		}
		ok := true
		for _, cond := range q.Conditions {
			if !matchCondition(item, cond, now) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, item)
		}
	}

	if q.Sort != nil && q.Sort.Field != "" {
		field := q.Sort.Field
		desc := strings.EqualFold(q.Sort.Direction, "desc")
		sort.SliceStable(out, func(i, j int) bool {
			// Swap the operands rather than negating, so equal keys stay
			// non-less in both directions and stability holds.
			if desc {
				return rowLess(out[j], out[i], field)
			}
			return rowLess(out[i], out[j], field)
		})
	}
	return out
}

func rowLess(a, b entity.LineItem, field string) bool {
	if av, ok := numberValue(a, field); ok {
		bv, _ := numberValue(b, field)
		return av < bv
	}
	if av, ok := dateValue(a, field); ok {
		bv, _ := dateValue(b, field)
		switch {
		case av == nil:
			return bv != nil
		case bv == nil:
			return false
		default:
			return av.Before(*bv)
		}
	}
	return CellString(a, field) < CellString(b, field)
}
