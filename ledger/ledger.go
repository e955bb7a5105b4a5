// Package ledger derives merchant-facing views from a list of charge
// read models: status and search filters, stable pagination, revenue
// bucketing and summary metrics. Every function is pure; the caller
// supplies the charge list and, for time-scoped views, the reference
// "now".
package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/onchaincommerce/onchaincommerce/types"
)

// FilterStatus keeps charges whose latest timeline entry matches the
// given status. "all" (or empty) is the identity filter.
func FilterStatus(charges []types.Charge, status string) []types.Charge {
	if status == "" || strings.EqualFold(status, types.StatusAll) {
		return charges
	}

	out := make([]types.Charge, 0, len(charges))
	for _, c := range charges {
		if string(c.CurrentStatus()) == status {
			out = append(out, c)
		}
	}
	return out
}

// Search keeps charges whose id, order code, or first payment
// transaction id contains the term, case-insensitively. An empty term
// is the identity filter.
func Search(charges []types.Charge, term string) []types.Charge {
	if term == "" {
		return charges
	}
	needle := strings.ToLower(term)

	out := make([]types.Charge, 0, len(charges))
	for _, c := range charges {
		if strings.Contains(strings.ToLower(c.ID), needle) ||
			strings.Contains(strings.ToLower(c.Code), needle) {
			out = append(out, c)
			continue
		}
		if payment, ok := c.FirstPayment(); ok &&
			strings.Contains(strings.ToLower(payment.TransactionID), needle) {
			out = append(out, c)
		}
	}
	return out
}

// Paginate returns the 1-indexed page of the given size. Filtering
// must happen before pagination so page boundaries stay stable under
// filter changes; this function just slices. Out-of-range pages and
// non-positive arguments yield an empty page.
func Paginate(charges []types.Charge, pageSize, page int) []types.Charge {
	if pageSize <= 0 || page <= 0 {
		return nil
	}

	start := (page - 1) * pageSize
	if start >= len(charges) {
		return nil
	}

	end := start + pageSize
	if end > len(charges) {
		end = len(charges)
	}
	return charges[start:end]
}

// TotalPages reports how many pages a list of n charges spans.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 || n <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// Timeframe selects a revenue reporting window and, with it, the
// bucket granularity of the series.
type Timeframe string

const (
	TimeframeDay        Timeframe = "day"
	TimeframeWeek       Timeframe = "week"
	TimeframeMonth      Timeframe = "month"
	TimeframeYearToDate Timeframe = "ytd"
	TimeframeAllTime    Timeframe = "all"
)

// WindowStart returns the inclusive start of the timeframe's window
// relative to now. All-time has a zero start.
func (tf Timeframe) WindowStart(now time.Time) time.Time {
	switch tf {
	case TimeframeDay:
		return now.Add(-24 * time.Hour)
	case TimeframeWeek:
		return now.AddDate(0, 0, -7)
	case TimeframeMonth:
		return now.AddDate(0, 0, -30)
	case TimeframeYearToDate:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}
	}
}

// BucketKey derives the series bucket for a timestamp: calendar days
// for day- and week-scoped views, ISO week starts (Monday) for the
// month view, and year-month for year-to-date and all-time.
func (tf Timeframe) BucketKey(t time.Time) string {
	switch tf {
	case TimeframeDay, TimeframeWeek:
		return t.Format("2006-01-02")
	case TimeframeMonth:
		return weekStart(t).Format("2006-01-02")
	default:
		return t.Format("2006-01")
	}
}

func weekStart(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	start := t.AddDate(0, 0, -daysSinceMonday)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
}

func inWindow(t, start, now time.Time) bool {
	return !t.Before(start) && !t.After(now)
}

// Bucket is one point of a revenue series.
type Bucket struct {
	Key   string
	Total decimal.Decimal
}

// RevenueSeries restricts the charges to those completed within the
// timeframe's window, groups them by bucket key derived from the
// completion time, and sums local amounts per bucket. Malformed
// amounts contribute zero. The result is sorted ascending by key.
func RevenueSeries(charges []types.Charge, tf Timeframe, now time.Time) []Bucket {
	start := tf.WindowStart(now)

	totals := make(map[string]decimal.Decimal)
	for _, c := range charges {
		completedAt, ok := c.CompletedAt()
		if !ok || !inWindow(completedAt, start, now) {
			continue
		}
		key := tf.BucketKey(completedAt)
		totals[key] = totals[key].Add(c.Pricing.Local.Decimal())
	}

	keys := make([]string, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	series := make([]Bucket, 0, len(keys))
	for _, key := range keys {
		series = append(series, Bucket{Key: key, Total: totals[key]})
	}
	return series
}

// Summary holds the headline metrics for a timeframe.
type Summary struct {
	TotalRevenue      decimal.Decimal
	CompletedCount    int
	TotalCount        int
	AverageOrderValue decimal.Decimal
	ConversionRate    float64
}

// Summarize computes total revenue over completed charges in the
// window, average order value (zero when nothing completed, never a
// division error), and conversion rate in percent: completed over
// charges created or completed in the window (zero for an empty
// window, never above 100).
func Summarize(charges []types.Charge, tf Timeframe, now time.Time) Summary {
	start := tf.WindowStart(now)

	var s Summary
	s.TotalRevenue = decimal.Zero
	s.AverageOrderValue = decimal.Zero

	for _, c := range charges {
		completedAt, ok := c.CompletedAt()
		completed := ok && inWindow(completedAt, start, now)

		// Charges completed in the window but created before it count
		// toward the denominator too, so the rate stays within 100%.
		if completed || inWindow(c.CreatedAt, start, now) {
			s.TotalCount++
		}
		if !completed {
			continue
		}
		s.CompletedCount++
		s.TotalRevenue = s.TotalRevenue.Add(c.Pricing.Local.Decimal())
	}

	if s.CompletedCount > 0 {
		s.AverageOrderValue = s.TotalRevenue.Div(decimal.NewFromInt(int64(s.CompletedCount)))
	}
	if s.TotalCount > 0 {
		s.ConversionRate = float64(s.CompletedCount) / float64(s.TotalCount) * 100
	}
	return s
}

// NetworkDistribution counts completed charges in the window by the
// network of their first detected payment. Charges with no payment
// record yet are grouped under "unknown".
func NetworkDistribution(charges []types.Charge, tf Timeframe, now time.Time) map[string]int {
	start := tf.WindowStart(now)

	dist := make(map[string]int)
	for _, c := range charges {
		completedAt, ok := c.CompletedAt()
		if !ok || !inWindow(completedAt, start, now) {
			continue
		}
		network := "unknown"
		if payment, hasPayment := c.FirstPayment(); hasPayment && payment.Network != "" {
			network = payment.Network
		}
		dist[network]++
	}
	return dist
}
