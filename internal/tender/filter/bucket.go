package filter

import "time"

// Date bucket keys offered by the date-range filter and the grid's
// date-column presets. Buckets are calendar-local and evaluated against a
// caller-supplied "now" so they stay testable.
const (
	BucketToday   = "today"
	BucketWeek    = "week" // Monday-start
	BucketMonth   = "month"
	BucketQuarter = "quarter"
	BucketYear    = "year"
)

// Buckets lists every known bucket key in display order.
func Buckets() []string {
	return []string{BucketToday, BucketWeek, BucketMonth, BucketQuarter, BucketYear}
}

// BucketRange resolves a bucket key to its half-open [start, end) interval.
// Unknown keys return ok=false.
func BucketRange(bucket string, now time.Time) (start, end time.Time, ok bool) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch bucket {
	case BucketToday:
		return day, day.AddDate(0, 0, 1), true
	case BucketWeek:
		offset := (int(now.Weekday()) + 6) % 7 // days since Monday
		start = day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), true
	case BucketMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0), true
	case BucketQuarter:
		q := (int(now.Month()) - 1) / 3
		start = time.Date(now.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 3, 0), true
	case BucketYear:
		start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(1, 0, 0), true
	}
	return time.Time{}, time.Time{}, false
}

// InBucket reports whether t falls inside the given bucket relative to now.
func InBucket(t time.Time, bucket string, now time.Time) bool {
	start, end, ok := BucketRange(bucket, now)
	if !ok {
		return false
	}
	return !t.Before(start) && t.Before(end)
}

// InAnyBucket ORs InBucket across the selected bucket keys.
func InAnyBucket(t *time.Time, buckets []string, now time.Time) bool {
	if t == nil {
		return false
	}
	for _, b := range buckets {
		if InBucket(*t, b, now) {
			return true
		}
	}
	return false
}
