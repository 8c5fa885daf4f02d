package reconcile

import (
	"reflect"
	"testing"
	"time"

	"butchery-analytics-service/internal/orders"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
}

func order(id, butcher string, at time.Time, status string) orders.Order {
	return orders.Order{
		OrderID:   id,
		ButcherID: butcher,
		OrderTime: at,
		Status:    status,
		Items:     []orders.OrderItem{{Name: "Chicken Breast", Quantity: 1}},
	}
}

func ids(list []orders.Order) []string {
	out := make([]string, 0, len(list))
	for _, o := range list {
		out = append(out, o.Key())
	}
	return out
}

func TestReconcileDedupeFirstWins(t *testing.T) {
	at := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	list := []orders.Order{
		order("A", "kak", at, "pending"),
		order("A", "kak", at, "completed"),
	}
	got := Reconcile(list, Filter{Now: fixedNow, Location: time.UTC})
	if len(got) != 1 {
		t.Fatalf("expected 1 order, got %d", len(got))
	}
	if got[0].Status != "pending" {
		t.Fatalf("expected first submission to win, got %s", got[0].Status)
	}
}

func TestReconcileKeysIncludeButcher(t *testing.T) {
	at := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	list := []orders.Order{order("A", "kak", at, "pending"), order("A", "usaj", at, "pending")}
	if got := Reconcile(list, Filter{Now: fixedNow, Location: time.UTC}); len(got) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(got))
	}
}

func TestReconcileFiltersAndSorts(t *testing.T) {
	list := []orders.Order{
		order("1", "kak", time.Date(2024, 3, 13, 8, 0, 0, 0, time.UTC), "pending"),
		order("2", "usaj", time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC), "pending"),
		order("3", "kak", time.Date(2024, 3, 13, 23, 59, 0, 0, time.UTC), "completed"),
		order("4", "kak", time.Date(2024, 3, 12, 23, 0, 0, 0, time.UTC), "completed"),
	}

	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name:   "all",
			filter: Filter{ButcherID: AllButchers},
			want:   []string{"kak-3", "usaj-2", "kak-1", "kak-4"},
		},
		{
			name:   "butcher",
			filter: Filter{ButcherID: "kak"},
			want:   []string{"kak-3", "kak-1", "kak-4"},
		},
		{
			name:   "butcher today",
			filter: Filter{ButcherID: "kak", Window: Window{Kind: WindowToday}},
			want:   []string{"kak-3", "kak-1"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.filter.Now = fixedNow
			tc.filter.Location = time.UTC
			got := ids(Reconcile(list, tc.filter))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestReconcileIdempotent(t *testing.T) {
	at := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	list := []orders.Order{
		order("B", "kak", at, "pending"),
		order("A", "kak", at.Add(time.Hour), "pending"),
		order("B", "kak", at.Add(2*time.Hour), "rejected"),
		order("C", "usaj", at, "pending"),
	}
	filter := Filter{Now: fixedNow, Location: time.UTC}
	once := Reconcile(list, filter)
	twice := Reconcile(once, filter)
	if !reflect.DeepEqual(ids(once), ids(twice)) {
		t.Fatalf("expected %v, got %v", ids(once), ids(twice))
	}
}

func TestReconcileEmpty(t *testing.T) {
	got := Reconcile(nil, Filter{})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", got)
	}
}
