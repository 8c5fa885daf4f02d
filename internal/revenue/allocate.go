package revenue

import (
	"math"

	"butchery-analytics-service/internal/normalize"
	"butchery-analytics-service/internal/orders"
)

// Allocation is one item's proportional slice of an order.
type Allocation struct {
	Name    string
	Share   float64
	Weight  float64
	Revenue float64
}

// Share is quantity / total, or 0 when the total is not positive.
func Share(quantity float64, total float64) float64 {
	if total <= 0 || math.IsNaN(total) || math.IsNaN(quantity) {
		return 0
	}
	return quantity / total
}

// OrderRevenue is the stored order revenue, else the sum of recorded item
// revenues, else 0.
func OrderRevenue(o *orders.Order) float64 {
	if o == nil {
		return 0
	}
	if o.Revenue != nil && !math.IsNaN(*o.Revenue) {
		return *o.Revenue
	}
	total := 0.0
	for _, v := range o.ItemRevenues {
		if !math.IsNaN(v) {
			total += v
		}
	}
	return total
}

// OrderWeight is the picked weight when recorded, else the sum of item
// quantities.
func OrderWeight(o *orders.Order) float64 {
	if o == nil {
		return 0
	}
	if o.PickedWeight != nil && !math.IsNaN(*o.PickedWeight) {
		return *o.PickedWeight
	}
	return o.TotalQuantity()
}

// Allocate distributes order revenue and weight across items by quantity.
func Allocate(o *orders.Order) []Allocation {
	if o == nil || len(o.Items) == 0 {
		return nil
	}
	total := o.TotalQuantity()
	revenue := OrderRevenue(o)
	weight := OrderWeight(o)

	out := make([]Allocation, 0, len(o.Items))
	for _, item := range o.Items {
		share := Share(item.Quantity, total)
		out = append(out, Allocation{
			Name:    normalize.CanonicalName(item.Name),
			Share:   share,
			Weight:  weight * share,
			Revenue: revenue * share,
		})
	}
	return out
}
