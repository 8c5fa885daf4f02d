package analytics

import (
	"sort"
	"strings"
	"time"

	"butchery-analytics-service/internal/lineitem"
	"butchery-analytics-service/internal/orders"
)

const NoReasonProvided = "No reason provided"

type HourBucket struct {
	Hour   int `json:"hour"`
	Orders int `json:"orders"`
}

type StatusCount struct {
	Status     string  `json:"status"`
	BadgeKey   string  `json:"badgeKey"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type TrendPoint struct {
	Date                  string  `json:"date"`
	Orders                int     `json:"orders"`
	Revenue               float64 `json:"revenue"`
	AvgCompletionMinutes  float64 `json:"avgCompletionMinutes"`
	CompletionSampleCount int     `json:"completionSampleCount"`
}

type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

type RejectionStats struct {
	Policy   RejectionPolicy `json:"policy"`
	Total    int             `json:"total"`
	Rejected int             `json:"rejected"`
	Rate     float64         `json:"rate"`
	Reasons  []ReasonCount   `json:"reasons"`
}

// RejectionPolicy decides which statuses count as a rejection.
type RejectionPolicy string

const (
	RejectedOnly       RejectionPolicy = "rejectedOnly"
	RejectedOrDeclined RejectionPolicy = "rejectedOrDeclined"
)

func (p RejectionPolicy) Matches(o orders.Order) bool {
	if p == RejectedOrDeclined {
		return o.HasStatus(orders.StatusRejected, orders.StatusDeclined)
	}
	return o.HasStatus(orders.StatusRejected)
}

// PeakHours always returns 24 buckets, hour 0 through 23, in loc.
func PeakHours(list []orders.Order, loc *time.Location) []HourBucket {
	if loc == nil {
		loc = time.Local
	}
	buckets := make([]HourBucket, 24)
	for hour := range buckets {
		buckets[hour].Hour = hour
	}
	for _, o := range list {
		buckets[o.OrderTime.In(loc).Hour()].Orders++
	}
	return buckets
}

// StatusBreakdown groups by the status as written. BadgeKey is the
// lower-cased form for styling only.
func StatusBreakdown(list []orders.Order) []StatusCount {
	counts := make(map[string]int)
	for _, o := range list {
		counts[o.Status]++
	}

	out := make([]StatusCount, 0, len(counts))
	for status, count := range counts {
		out = append(out, StatusCount{
			Status:     status,
			BadgeKey:   strings.ToLower(strings.TrimSpace(status)),
			Count:      count,
			Percentage: float64(count) / float64(len(list)) * 100,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Status < out[j].Status
	})
	return out
}

// Trend buckets orders per calendar day in loc, oldest first. Revenue is
// the sum of resolved item revenue.
func Trend(list []orders.Order, revenue lineitem.RevenueSource, loc *time.Location) []TrendPoint {
	if loc == nil {
		loc = time.Local
	}
	type accumulator struct {
		point   TrendPoint
		minutes float64
	}
	byDate := make(map[string]*accumulator)
	for i := range list {
		o := &list[i]
		date := o.OrderTime.In(loc).Format("2006-01-02")
		acc, ok := byDate[date]
		if !ok {
			acc = &accumulator{point: TrendPoint{Date: date}}
			byDate[date] = acc
		}
		acc.point.Orders++
		for _, line := range lineitem.Build(o, revenue) {
			acc.point.Revenue += line.Revenue
		}
		if minutes, ok := o.PreparationMinutes(); ok {
			acc.minutes += minutes
			acc.point.CompletionSampleCount++
		}
	}

	out := make([]TrendPoint, 0, len(byDate))
	for _, acc := range byDate {
		if acc.point.CompletionSampleCount > 0 {
			acc.point.AvgCompletionMinutes = acc.minutes / float64(acc.point.CompletionSampleCount)
		}
		out = append(out, acc.point)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

// Rejections counts rejected orders under policy and ranks the five most
// frequent reasons.
func Rejections(list []orders.Order, policy RejectionPolicy) RejectionStats {
	stats := RejectionStats{Policy: policy, Total: len(list), Reasons: []ReasonCount{}}
	reasons := make(map[string]int)
	for _, o := range list {
		if !policy.Matches(o) {
			continue
		}
		stats.Rejected++
		reason := strings.TrimSpace(o.RejectionReason)
		if reason == "" {
			reason = NoReasonProvided
		}
		reasons[reason]++
	}
	if stats.Total > 0 {
		stats.Rate = float64(stats.Rejected) / float64(stats.Total) * 100
	}

	for reason, count := range reasons {
		stats.Reasons = append(stats.Reasons, ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(stats.Reasons, func(i, j int) bool {
		if stats.Reasons[i].Count != stats.Reasons[j].Count {
			return stats.Reasons[i].Count > stats.Reasons[j].Count
		}
		return stats.Reasons[i].Reason < stats.Reasons[j].Reason
	})
	if len(stats.Reasons) > topReasonsLimit {
		stats.Reasons = stats.Reasons[:topReasonsLimit]
	}
	return stats
}
