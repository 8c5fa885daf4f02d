package revenue

import (
	"math"
	"testing"

	"butchery-analytics-service/internal/lineitem"
	"butchery-analytics-service/internal/orders"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestResolvePrecedence(t *testing.T) {
	curry := orders.OrderItem{Name: "Fresh - Chicken Curry Cut - 500g", Quantity: 1, Unit: "kg", Size: "500g"}
	keema := orders.OrderItem{Name: "Mutton Keema", Quantity: 1, Unit: "kg", Size: "500g"}

	cases := []struct {
		name     string
		order    orders.Order
		item     string
		want     float64
		strategy string
	}{
		{
			name:     "canonical key",
			order:    orders.Order{Items: []orders.OrderItem{curry}, ItemRevenues: map[string]float64{"Chicken Curry Cut": 120, "Fresh - Chicken Curry Cut - 500g": 90}},
			item:     curry.Name,
			want:     120,
			strategy: StrategyCanonicalKey,
		},
		{
			name:     "raw key",
			order:    orders.Order{Items: []orders.OrderItem{curry}, ItemRevenues: map[string]float64{"Fresh - Chicken Curry Cut - 500g": 90}},
			item:     curry.Name,
			want:     90,
			strategy: StrategyRawKey,
		},
		{
			name:     "canonical scan",
			order:    orders.Order{Items: []orders.OrderItem{curry}, ItemRevenues: map[string]float64{"Premium - Chicken Curry Cut - 1kg": 70}},
			item:     curry.Name,
			want:     70,
			strategy: StrategyCanonicalScan,
		},
		{
			name:     "size qualified key",
			order:    orders.Order{Items: []orders.OrderItem{keema}, ItemRevenues: map[string]float64{"Mutton Keema_500g": 40}},
			item:     keema.Name,
			want:     40,
			strategy: StrategySizeKey,
		},
		{
			name:     "populated map without entry does not allocate",
			order:    orders.Order{Items: []orders.OrderItem{keema}, ItemRevenues: map[string]float64{"Rohu Fish": 80}, Revenue: orders.Float(300)},
			item:     keema.Name,
			want:     0,
			strategy: StrategyNone,
		},
		{
			name:     "empty map allocates by quantity",
			order:    orders.Order{Items: []orders.OrderItem{curry, keema}, ItemRevenues: map[string]float64{}, Revenue: orders.Float(100)},
			item:     keema.Name,
			want:     50,
			strategy: StrategyProportional,
		},
		{
			name:     "absent map allocates by quantity",
			order:    orders.Order{Items: []orders.OrderItem{curry, keema}, Revenue: orders.Float(100)},
			item:     keema.Name,
			want:     50,
			strategy: StrategyProportional,
		},
	}

	resolver := NewResolver()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, strategy := resolver.Resolve(&tc.order, tc.item)
			if !approx(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if strategy != tc.strategy {
				t.Fatalf("expected strategy %s, got %s", tc.strategy, strategy)
			}
		})
	}
}

func TestResolveItemUsesEachLineSize(t *testing.T) {
	order := orders.Order{
		Items: []orders.OrderItem{
			{Name: "Kozhi - Chicken Curry Cut - X", Quantity: 1, Size: "500g"},
			{Name: "Kozhi - Chicken Curry Cut - X", Quantity: 1, Size: "1kg"},
		},
		ItemRevenues: map[string]float64{"Chicken Curry Cut_500g": 100, "Chicken Curry Cut_1kg": 200},
	}

	resolver := NewResolver()
	cases := []struct {
		name string
		item orders.OrderItem
		want float64
	}{
		{name: "500g line", item: order.Items[0], want: 100},
		{name: "1kg line", item: order.Items[1], want: 200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, strategy := resolver.ResolveItem(&order, tc.item)
			if !approx(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if strategy != StrategySizeKey {
				t.Fatalf("expected strategy %s, got %s", StrategySizeKey, strategy)
			}
		})
	}

	total := 0.0
	for _, line := range lineitem.Build(&order, resolver) {
		total += line.Revenue
	}
	if !approx(total, 300) {
		t.Fatalf("expected line revenue total 300, got %v", total)
	}
}

func TestEmptyItemRevenuesAllocatesOrderRevenue(t *testing.T) {
	order := orders.Order{
		Items:        []orders.OrderItem{{Name: "Chicken Breast", Quantity: 2}, {Name: "Mutton Keema", Quantity: 2}},
		ItemRevenues: map[string]float64{},
		Revenue:      orders.Float(100),
	}
	for _, line := range lineitem.Build(&order, NewResolver()) {
		if !approx(line.Revenue, 50) {
			t.Fatalf("expected %s to carry 50, got %v", line.Name, line.Revenue)
		}
	}
}

func TestItemRevenueUnknownItem(t *testing.T) {
	order := orders.Order{
		Items:   []orders.OrderItem{{Name: "Chicken Breast", Quantity: 2}},
		Revenue: orders.Float(80),
	}
	if got := ItemRevenue(&order, "Rohu Fish"); got != 0 {
		t.Fatalf("expected 0 for an item not in the order, got %v", got)
	}
	if got := ItemRevenue(nil, "Rohu Fish"); got != 0 {
		t.Fatalf("expected 0 for nil order, got %v", got)
	}
}

func TestCustomStrategyOrder(t *testing.T) {
	order := orders.Order{
		Items:        []orders.OrderItem{{Name: "Fresh - Chicken Curry Cut - 500g", Quantity: 1}},
		ItemRevenues: map[string]float64{"Chicken Curry Cut": 120, "Fresh - Chicken Curry Cut - 500g": 90},
	}
	rawFirst := NewResolver(
		Strategy{Name: StrategyRawKey, Resolve: byRawKey},
		Strategy{Name: StrategyCanonicalKey, Resolve: byCanonicalKey},
	)
	got, strategy := rawFirst.Resolve(&order, "Fresh - Chicken Curry Cut - 500g")
	if got != 90 || strategy != StrategyRawKey {
		t.Fatalf("expected 90 via %s, got %v via %s", StrategyRawKey, got, strategy)
	}
}
