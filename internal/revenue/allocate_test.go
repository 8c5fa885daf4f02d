package revenue

import (
	"testing"

	"butchery-analytics-service/internal/orders"
)

func TestShare(t *testing.T) {
	cases := []struct {
		name     string
		quantity float64
		total    float64
		want     float64
	}{
		{name: "half", quantity: 2, total: 4, want: 0.5},
		{name: "zero total", quantity: 2, total: 0, want: 0},
		{name: "negative total", quantity: 2, total: -1, want: 0},
		{name: "zero quantity", quantity: 0, total: 5, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Share(tc.quantity, tc.total); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestOrderRevenue(t *testing.T) {
	cases := []struct {
		name  string
		order orders.Order
		want  float64
	}{
		{name: "stored revenue", order: orders.Order{Revenue: orders.Float(250), ItemRevenues: map[string]float64{"a": 10}}, want: 250},
		{name: "sum of item revenues", order: orders.Order{ItemRevenues: map[string]float64{"a": 10, "b": 15}}, want: 25},
		{name: "nothing recorded", order: orders.Order{}, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := OrderRevenue(&tc.order); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestAllocateSumsToOrderTotals(t *testing.T) {
	order := orders.Order{
		Items: []orders.OrderItem{
			{Name: "Chicken Breast", Quantity: 1},
			{Name: "Mutton Curry Cut", Quantity: 2},
			{Name: "Rohu Fish", Quantity: 3},
		},
		Revenue:      orders.Float(60),
		PickedWeight: orders.Float(4.5),
	}

	allocations := Allocate(&order)
	if len(allocations) != 3 {
		t.Fatalf("expected 3 allocations, got %d", len(allocations))
	}
	var revenue, weight float64
	for _, a := range allocations {
		revenue += a.Revenue
		weight += a.Weight
	}
	if !approx(revenue, 60) {
		t.Fatalf("expected revenue to sum to 60, got %v", revenue)
	}
	if !approx(weight, 4.5) {
		t.Fatalf("expected weight to sum to 4.5, got %v", weight)
	}
	if !approx(allocations[2].Revenue, 30) {
		t.Fatalf("expected Rohu Fish to take 30, got %v", allocations[2].Revenue)
	}
}

func TestAllocateZeroQuantities(t *testing.T) {
	order := orders.Order{
		Items:   []orders.OrderItem{{Name: "Chicken Breast"}, {Name: "Rohu Fish"}},
		Revenue: orders.Float(60),
	}
	for _, a := range Allocate(&order) {
		if a.Revenue != 0 || a.Share != 0 {
			t.Fatalf("expected zero allocation for %s, got %+v", a.Name, a)
		}
	}
}
