package store

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// apply filters, orders and limits docs in place. Backends that cannot push
// a query down to the server use it.
func apply(docs []Document, q Query) []Document {
	out := docs[:0]
	for _, d := range docs {
		if matches(d, q.Filters) {
			out = append(out, d)
		}
	}

	if q.OrderBy != "" {
		slices.SortStableFunc(out, func(a, b Document) int {
			c := compareValues(a.Data[q.OrderBy], b.Data[q.OrderBy])
			if q.Descending {
				return -c
			}
			return c
		})
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func matches(d Document, filters []Filter) bool {
	for _, f := range filters {
		v, ok := d.Data[f.Field]
		if !ok || !equalValues(v, f.Value) {
			return false
		}
	}
	return true
}

func equalValues(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// compareValues orders JSON values: missing values first, then numbers,
// timestamps and strings by their natural order.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return cmp.Compare(fa, fb)
		}
	}

	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	if ta, err := time.Parse(time.RFC3339Nano, sa); err == nil {
		if tb, err := time.Parse(time.RFC3339Nano, sb); err == nil {
			return ta.Compare(tb)
		}
	}
	return cmp.Compare(sa, sb)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
