package reconcile

import (
	"sort"
	"strings"
	"time"

	"butchery-analytics-service/internal/orders"
)

// AllButchers disables the vendor filter.
const AllButchers = "all"

// Filter narrows a raw order collection. Now and Location default to the
// wall clock and the local zone.
type Filter struct {
	ButcherID string
	Window    Window
	Now       func() time.Time
	Location  *time.Location
}

// Reconcile filters by vendor and window, drops duplicate submissions and
// sorts the survivors most recent first.
func Reconcile(list []orders.Order, f Filter) []orders.Order {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	at := now()

	filtered := make([]orders.Order, 0, len(list))
	for _, o := range list {
		if !matchesButcher(o, f.ButcherID) {
			continue
		}
		if !f.Window.Contains(o.OrderTime, at, loc) {
			continue
		}
		filtered = append(filtered, o)
	}

	out := Dedupe(filtered)
	SortByOrderTime(out)
	return out
}

func matchesButcher(o orders.Order, butcherID string) bool {
	butcherID = strings.TrimSpace(butcherID)
	if butcherID == "" || butcherID == AllButchers {
		return true
	}
	return o.ButcherID == butcherID
}

// Dedupe keeps the first order seen for each butcherId-orderId key.
func Dedupe(list []orders.Order) []orders.Order {
	seen := make(map[string]struct{}, len(list))
	out := make([]orders.Order, 0, len(list))
	for _, o := range list {
		key := o.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, o)
	}
	return out
}

// SortByOrderTime orders the list most recent first, keeping input order
// between equal times.
func SortByOrderTime(list []orders.Order) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].OrderTime.After(list[j].OrderTime)
	})
}
