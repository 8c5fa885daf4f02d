package analytics

import (
	"testing"
	"time"

	"butchery-analytics-service/internal/orders"
	"butchery-analytics-service/internal/revenue"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 3, day, hour, minute, 0, 0, time.UTC)
}

func TestPeakHoursAlwaysTwentyFour(t *testing.T) {
	empty := PeakHours(nil, time.UTC)
	if len(empty) != 24 {
		t.Fatalf("expected 24 buckets, got %d", len(empty))
	}
	for hour, bucket := range empty {
		if bucket.Hour != hour || bucket.Orders != 0 {
			t.Fatalf("expected empty bucket %d, got %+v", hour, bucket)
		}
	}

	list := []orders.Order{
		{OrderID: "1", OrderTime: at(13, 9, 15)},
		{OrderID: "2", OrderTime: at(13, 9, 45)},
		{OrderID: "3", OrderTime: at(13, 23, 59)},
	}
	got := PeakHours(list, time.UTC)
	if len(got) != 24 || got[9].Orders != 2 || got[23].Orders != 1 {
		t.Fatalf("unexpected buckets %+v", got)
	}
}

func TestStatusBreakdownKeepsCase(t *testing.T) {
	list := []orders.Order{
		{OrderID: "1", Status: "Completed"},
		{OrderID: "2", Status: "completed"},
		{OrderID: "3", Status: "Completed"},
		{OrderID: "4", Status: "rejected"},
	}
	got := StatusBreakdown(list)
	if len(got) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(got))
	}
	if got[0].Status != "Completed" || got[0].BadgeKey != "completed" || got[0].Percentage != 50 {
		t.Fatalf("unexpected first status %+v", got[0])
	}
	if len(StatusBreakdown(nil)) != 0 {
		t.Fatal("expected no statuses for empty input")
	}
}

func TestTrend(t *testing.T) {
	start := at(12, 10, 0)
	end := at(12, 10, 30)
	list := []orders.Order{
		{OrderID: "1", OrderTime: at(13, 9, 0), Revenue: orders.Float(100), Items: []orders.OrderItem{{Name: "Chicken Breast", Quantity: 1}}, CompletionTime: orders.Float(20)},
		{OrderID: "2", OrderTime: at(12, 9, 0), Revenue: orders.Float(50), Items: []orders.OrderItem{{Name: "Rohu Fish", Quantity: 1}}, PreparationStartTime: &start, PreparationEndTime: &end},
		{OrderID: "3", OrderTime: at(12, 11, 0), Revenue: orders.Float(70), Items: []orders.OrderItem{{Name: "Rohu Fish", Quantity: 1}}},
	}
	got := Trend(list, revenue.NewResolver(), time.UTC)
	if len(got) != 2 {
		t.Fatalf("expected 2 days, got %d", len(got))
	}
	if got[0].Date != "2024-03-12" || got[1].Date != "2024-03-13" {
		t.Fatalf("expected ascending dates, got %s, %s", got[0].Date, got[1].Date)
	}
	if got[0].Orders != 2 || got[0].Revenue != 120 {
		t.Fatalf("unexpected first day %+v", got[0])
	}
	if got[0].AvgCompletionMinutes != 30 || got[0].CompletionSampleCount != 1 {
		t.Fatalf("expected order without timings to be excluded, got %+v", got[0])
	}
	if got[1].AvgCompletionMinutes != 20 {
		t.Fatalf("expected stored completion time, got %v", got[1].AvgCompletionMinutes)
	}
}

func TestRejectionPolicies(t *testing.T) {
	list := []orders.Order{
		{OrderID: "1", Status: "rejected", RejectionReason: "Out of stock"},
		{OrderID: "2", Status: "REJECTED", RejectionReason: "Out of stock"},
		{OrderID: "3", Status: "declined"},
		{OrderID: "4", Status: "completed"},
	}

	cases := []struct {
		name       string
		policy     RejectionPolicy
		rejected   int
		rate       float64
		topReason  string
		reasonRows int
	}{
		{name: "rejected only", policy: RejectedOnly, rejected: 2, rate: 50, topReason: "Out of stock", reasonRows: 1},
		{name: "rejected or declined", policy: RejectedOrDeclined, rejected: 3, rate: 75, topReason: "Out of stock", reasonRows: 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Rejections(list, tc.policy)
			if got.Rejected != tc.rejected || got.Rate != tc.rate {
				t.Fatalf("expected %d rejected at %v%%, got %d at %v%%", tc.rejected, tc.rate, got.Rejected, got.Rate)
			}
			if len(got.Reasons) != tc.reasonRows || got.Reasons[0].Reason != tc.topReason {
				t.Fatalf("unexpected reasons %+v", got.Reasons)
			}
		})
	}

	declined := Rejections(list, RejectedOrDeclined)
	if declined.Reasons[1].Reason != NoReasonProvided {
		t.Fatalf("expected missing reason to default, got %s", declined.Reasons[1].Reason)
	}
}

func TestRejectionReasonsCapAtFive(t *testing.T) {
	var list []orders.Order
	for i, reason := range []string{"a", "b", "c", "d", "e", "f", "f"} {
		list = append(list, orders.Order{OrderID: string(rune('0' + i)), Status: "rejected", RejectionReason: reason})
	}
	got := Rejections(list, RejectedOnly)
	if len(got.Reasons) != 5 {
		t.Fatalf("expected 5 reasons, got %d", len(got.Reasons))
	}
	if got.Reasons[0].Reason != "f" || got.Reasons[0].Count != 2 {
		t.Fatalf("expected most frequent reason first, got %+v", got.Reasons[0])
	}
	if empty := Rejections(nil, RejectedOnly); empty.Rate != 0 || len(empty.Reasons) != 0 {
		t.Fatalf("expected zeroed stats, got %+v", empty)
	}
}
